package orch

import (
	"encoding/json"
	"time"

	"github.com/tmakov/Huddle/internal/core"
	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

// Relay forwards an opaque session-description/ICE payload to one named
// connection, unmodified except for the attached sender id. A target that
// already disconnected is a silent drop: the peer renegotiates through a
// fresh join, nothing is buffered here.
func (o *Orchestrator) Relay(sender, target domain.ConnID, payload json.RawMessage) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.send(target, protocol.SignalOut{Type: protocol.EvSignal, Sender: sender, Payload: payload})
}

// Chat fans a message out to every active member of the sender's room
// except the sender, which already has a local echo.
func (o *Orchestrator) Chat(id domain.ConnID, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap, p, ok := o.activeRoomLocked(id)
	if !ok {
		return
	}
	text = domain.TruncateOnRune(text, domain.MaxChatMessageLen)
	o.broadcastActive(snap, protocol.ChatOut{
		Type:       protocol.EvReceiveMessage,
		Text:       text,
		SenderID:   id,
		SenderName: p.Name,
		Timestamp:  time.Now().UnixMilli(),
	}, id)
}

// Caption is the ephemeral live-caption relay, room minus sender.
func (o *Orchestrator) Caption(id domain.ConnID, text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap, p, ok := o.activeRoomLocked(id)
	if !ok {
		return
	}
	o.broadcastActive(snap, protocol.CaptionOut{
		Type:       protocol.EvReceiveCaption,
		Text:       text,
		SenderID:   id,
		SenderName: p.Name,
	}, id)
}

// ToggleAudio records the sender's reported mute state and tells the rest
// of the room.
func (o *Orchestrator) ToggleAudio(id domain.ConnID, muted bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Registry.SetMuted(id, muted)
	o.toggleLocked(id, protocol.EvAudioToggled, muted)
}

func (o *Orchestrator) ToggleVideo(id domain.ConnID, cameraOff bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Registry.SetCameraOff(id, cameraOff)
	o.toggleLocked(id, protocol.EvVideoToggled, cameraOff)
}

func (o *Orchestrator) ToggleHand(id domain.ConnID, raised bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Registry.SetHandRaised(id, raised)
	o.toggleLocked(id, protocol.EvHandToggled, raised)
}

// Emoji is a stateless ephemeral reaction, room minus sender.
func (o *Orchestrator) Emoji(id domain.ConnID, emoji string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	snap, _, ok := o.activeRoomLocked(id)
	if !ok {
		return
	}
	o.broadcastActive(snap, protocol.EmojiOut{Type: protocol.EvEmoji, ID: id, Emoji: emoji}, id)
}

func (o *Orchestrator) toggleLocked(id domain.ConnID, event string, state bool) {
	snap, _, ok := o.activeRoomLocked(id)
	if !ok {
		return
	}
	o.broadcastActive(snap, protocol.ToggleOut{Type: event, ID: id, NewState: state}, id)
}

// activeRoomLocked resolves the sender's room and drops events from
// connections that are not active members of it.
func (o *Orchestrator) activeRoomLocked(id domain.ConnID) (core.RoomSnapshot, domain.Participant, bool) {
	code, ok := o.Registry.RoomOf(id)
	if !ok || !o.Rooms.IsActive(code, id) {
		return core.RoomSnapshot{}, domain.Participant{}, false
	}
	snap, ok := o.Rooms.Snapshot(code)
	if !ok {
		return core.RoomSnapshot{}, domain.Participant{}, false
	}
	p, _ := o.Registry.Get(id)
	return snap, p, true
}
