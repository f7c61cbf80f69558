// Package protocol defines the wire events of the signaling surface.
// Every frame is a JSON object carrying a "type" discriminator.
package protocol

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/tmakov/Huddle/internal/core"
	"github.com/tmakov/Huddle/internal/domain"
)

// Inbound event types.
const (
	EvJoin         = "join"
	EvJoinRequest  = "join-request"
	EvAdmit        = "admit"
	EvKick         = "kick"
	EvSignal       = "signal"
	EvChatMessage  = "chat-message"
	EvToggleAudio  = "toggle-audio"
	EvToggleVideo  = "toggle-video"
	EvToggleHand   = "toggle-hand"
	EvSendEmoji    = "send-emoji"
	EvToggleLock   = "toggle-lock"
	EvMuteAll      = "mute-all"
	EvStopVideoAll = "stop-video-all"
	EvTransferHost = "transfer-host"
	EvEndMeeting   = "end-meeting-for-all"
	EvSendCaption  = "send-caption"
	EvPing         = "ping"
)

// Outbound event types.
const (
	EvWelcome          = "welcome"
	EvRosterUpdate     = "roster-update"
	EvWaitingList      = "update-waiting-list"
	EvAdmitted         = "admitted"
	EvUserLeft         = "user-left"
	EvReceiveMessage   = "receive-message"
	EvReceiveCaption   = "receive-caption"
	EvAudioToggled     = "audio-toggled"
	EvVideoToggled     = "video-toggled"
	EvHandToggled      = "hand-toggled"
	EvEmoji            = "emoji"
	EvKicked           = "kicked"
	EvPasscodeRequired = "passcode-required"
	EvInvalidMeeting   = "invalid-meeting"
	EvMeetingEnded     = "meeting-ended"
	EvLockUpdate       = "lock-update"
	EvHostUpdate       = "update-host-id"
	EvForceMute        = "force-mute"
	EvForceStopVideo   = "force-stop-video"
	EvPong             = "pong"
)

// Envelope is the minimal view used to dispatch an inbound frame.
type Envelope struct {
	Type string `json:"type"`
}

// Join is the payload of both join and join-request. Passcode and Locked
// only matter on the creator path, where they become the room's policy.
type Join struct {
	Type        string `json:"type"`
	MeetingCode string `json:"meetingCode"`
	DisplayName string `json:"displayName"`
	Passcode    string `json:"passcode,omitempty"`
	Locked      bool   `json:"locked,omitempty"`
	Muted       bool   `json:"muted"`
	CameraOff   bool   `json:"cameraOff"`
}

// Target carries admit, kick and transfer-host.
type Target struct {
	Type   string        `json:"type"`
	Target domain.ConnID `json:"targetConnectionId"`
}

// Signal is a directed session-description/ICE payload. The payload is
// never parsed here; the relay is opaque to its shape.
type Signal struct {
	Type    string          `json:"type"`
	Target  domain.ConnID   `json:"targetConnectionId"`
	Payload json.RawMessage `json:"payload"`
}

type Chat struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type Toggle struct {
	Type     string `json:"type"`
	NewState bool   `json:"newState"`
}

type Emoji struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

type Lock struct {
	Type   string `json:"type"`
	Locked bool   `json:"locked"`
}

// Welcome tells a fresh connection its id and the STUN/TURN bootstrap.
type Welcome struct {
	Type       string             `json:"type"`
	ID         domain.ConnID      `json:"connectionId"`
	ICEServers []webrtc.ICEServer `json:"iceServers"`
}

type Member struct {
	ID          domain.ConnID `json:"id"`
	DisplayName string        `json:"displayName"`
	Muted       bool          `json:"muted"`
	CameraOff   bool          `json:"cameraOff"`
	HandRaised  bool          `json:"handRaised"`
}

// RosterUpdate is the full ordered active member list of one room.
type RosterUpdate struct {
	Type        string             `json:"type"`
	MeetingCode domain.MeetingCode `json:"meetingCode"`
	HostID      domain.ConnID      `json:"hostId"`
	Members     []Member           `json:"members"`
}

type WaitingList struct {
	Type        string             `json:"type"`
	MeetingCode domain.MeetingCode `json:"meetingCode"`
	Waiting     []core.Entry       `json:"waiting"`
}

type Admitted struct {
	Type        string             `json:"type"`
	MeetingCode domain.MeetingCode `json:"meetingCode"`
}

type UserLeft struct {
	Type string        `json:"type"`
	ID   domain.ConnID `json:"connectionId"`
}

// SignalOut is the relayed payload with the sender attached.
type SignalOut struct {
	Type    string          `json:"type"`
	Sender  domain.ConnID   `json:"senderId"`
	Payload json.RawMessage `json:"payload"`
}

type ChatOut struct {
	Type       string        `json:"type"`
	Text       string        `json:"text"`
	SenderID   domain.ConnID `json:"senderId"`
	SenderName string        `json:"senderName"`
	Timestamp  int64         `json:"timestamp"`
}

type CaptionOut struct {
	Type       string        `json:"type"`
	Text       string        `json:"text"`
	SenderID   domain.ConnID `json:"senderId"`
	SenderName string        `json:"senderName"`
}

type ToggleOut struct {
	Type     string        `json:"type"`
	ID       domain.ConnID `json:"connectionId"`
	NewState bool          `json:"newState"`
}

type EmojiOut struct {
	Type  string        `json:"type"`
	ID    domain.ConnID `json:"connectionId"`
	Emoji string        `json:"emoji"`
}

type LockUpdate struct {
	Type   string `json:"type"`
	Locked bool   `json:"locked"`
}

type HostUpdate struct {
	Type   string        `json:"type"`
	HostID domain.ConnID `json:"hostId"`
}

// Notice is a bare typed event: kicked, admitted-side rejections,
// meeting-ended, force-mute, force-stop-video, pong.
type Notice struct {
	Type string `json:"type"`
}
