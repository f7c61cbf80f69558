package core

import "github.com/tmakov/Huddle/internal/domain"

// Entry is one ordered roster slot, active or waiting.
type Entry struct {
	ID   domain.ConnID `json:"id"`
	Name string        `json:"displayName"`
}

// RoomSnapshot is a read-only view of one room.
type RoomSnapshot struct {
	Code        domain.MeetingCode
	Host        domain.ConnID
	Locked      bool
	HasPasscode bool
	Active      []Entry
	Waiting     []Entry
}

// RoomChange reports what RemoveFromAll touched in one room.
type RoomChange struct {
	Code        domain.MeetingCode
	WasActive   bool
	WasWaiting  bool
	Active      []Entry
	Waiting     []Entry
	Host        domain.ConnID
	HostChanged bool
	Deleted     bool
}

// RoomInfo is the occupancy view exposed over the HTTP status endpoints.
type RoomInfo struct {
	Code        domain.MeetingCode `json:"code"`
	MemberCount int                `json:"memberCount"`
	Locked      bool               `json:"locked"`
}

// RoomStore is CRUD over rooms keyed by meeting code.
// Implementations keep list order stable: append on add, stable removal,
// untouched entries never reorder.
type RoomStore interface {
	// EnsureRoom returns the existing room or creates an empty one.
	EnsureRoom(code domain.MeetingCode) RoomSnapshot
	Snapshot(code domain.MeetingCode) (RoomSnapshot, bool)
	Info(code domain.MeetingCode) (RoomInfo, bool)
	List() []RoomInfo

	// SetPolicy stores the passcode/lock the creator's join payload
	// carried. No-op unless the room already exists.
	SetPolicy(code domain.MeetingCode, passcode string, locked bool)
	// CheckPasscode reports whether pass clears the room's policy.
	// A room without a passcode admits any value.
	CheckPasscode(code domain.MeetingCode, pass string) bool

	// AddActive appends if not already present; the first member of an
	// empty room becomes host. Returns the post-add snapshot.
	AddActive(code domain.MeetingCode, id domain.ConnID, name string) RoomSnapshot
	// AddWaiting appends if not already present; reports false on the
	// duplicate no-op.
	AddWaiting(code domain.MeetingCode, id domain.ConnID, name string) (RoomSnapshot, bool)
	// Promote moves id from waiting to active; reports false when id is
	// not waiting.
	Promote(code domain.MeetingCode, id domain.ConnID) (RoomSnapshot, bool)
	// RemoveFromAll scrubs id from every room's lists and reports every
	// room that changed. Rooms whose active list empties are deleted,
	// waiting list included.
	RemoveFromAll(id domain.ConnID) []RoomChange

	SetLock(code domain.MeetingCode, locked bool) bool
	// SetHost reassigns the host; reports false unless id is active.
	SetHost(code domain.MeetingCode, id domain.ConnID) bool
	IsHost(code domain.MeetingCode, id domain.ConnID) bool
	IsActive(code domain.MeetingCode, id domain.ConnID) bool
	IsWaiting(code domain.MeetingCode, id domain.ConnID) bool
}
