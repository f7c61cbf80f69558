// Package domain contains entity without logic, just meta-data
package domain

import (
	"errors"
	"unicode/utf8"
)

const (
	DefaultDisplayName = "Guest"
	MaxDisplayNameLen  = 36
	MaxChatMessageLen  = 2000
)

var ErrNameTooLong = errors.New("display name too long")

// ConnID identifies a live connection. Assigned at upgrade time, opaque.
type ConnID string

// Participant is the per-connection meta visible to a room roster.
// No transport or lifecycle logic here.
type Participant struct {
	ID         ConnID `json:"id"`
	Name       string `json:"displayName"`
	Muted      bool   `json:"muted"`
	CameraOff  bool   `json:"cameraOff"`
	HandRaised bool   `json:"handRaised"`
}

// NewParticipant avoids raw literals in adapters and keeps construction obvious.
// An empty name falls back to the guest default; an oversized one is clamped.
func NewParticipant(id ConnID, name string) *Participant {
	return &Participant{ID: id, Name: CleanDisplayName(name)}
}

// CleanDisplayName normalizes a user-supplied name to roster rules.
func CleanDisplayName(name string) string {
	if name == "" {
		return DefaultDisplayName
	}
	return TruncateOnRune(name, MaxDisplayNameLen)
}

// TruncateOnRune caps s at max bytes without splitting a rune.
func TruncateOnRune(s string, max int) string {
	if len(s) <= max {
		return s
	}
	for max > 0 && !utf8.RuneStart(s[max]) {
		max--
	}
	return s[:max]
}
