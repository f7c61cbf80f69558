package domain

import "regexp"

// MeetingCode is the externally-issued meeting identifier rooms are keyed by.
type MeetingCode string

// Issued codes look like 111-222-333.
var meetingCodePattern = regexp.MustCompile(`^\d{3}-\d{3}-\d{3}$`)

func (c MeetingCode) Wellformed() bool {
	return meetingCodePattern.MatchString(string(c))
}

// Room holds a room's policy fields. Membership lists live in the store
// that owns the Room, not here.
type Room struct {
	Code     MeetingCode
	Host     ConnID // empty until the first member is admitted
	Locked   bool
	Passcode string // empty means no passcode check
}
