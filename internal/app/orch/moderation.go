package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

// Kick removes target from the host's room: target gets a dedicated
// kicked notice, the survivors get their departure events, then the
// target's transport is forced down.
func (o *Orchestrator) Kick(id, target domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	code, ok := o.hostRoom(id, "kick")
	if !ok {
		return
	}
	if target == id || !o.Rooms.IsActive(code, target) {
		return
	}
	o.send(target, protocol.Notice{Type: protocol.EvKicked})
	o.scrubLocked(target)
	if conn, ok := o.Registry.Conn(target); ok {
		conn.Close()
	}
	o.Registry.Cancel(target)
	log.Info().Str("module", "orch").Str("conn", string(target)).Str("room", string(code)).Msg("kicked")
}

// ToggleLock flips the room lock and announces the new state to everyone,
// host included.
func (o *Orchestrator) ToggleLock(id domain.ConnID, locked bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	code, ok := o.hostRoom(id, "toggle-lock")
	if !ok {
		return
	}
	o.Rooms.SetLock(code, locked)
	snap, _ := o.Rooms.Snapshot(code)
	o.broadcastActive(snap, protocol.LockUpdate{Type: protocol.EvLockUpdate, Locked: locked}, "")
	log.Info().Str("module", "orch").Str("room", string(code)).Bool("locked", locked).Msg("lock toggled")
}

// MuteAll asks every member but the host to mute itself. The directive is
// a compliance request: each client flips its own track and reports back
// through the ordinary toggle path.
func (o *Orchestrator) MuteAll(id domain.ConnID) {
	o.forceAll(id, "mute-all", protocol.EvForceMute)
}

// StopVideoAll is MuteAll for cameras.
func (o *Orchestrator) StopVideoAll(id domain.ConnID) {
	o.forceAll(id, "stop-video-all", protocol.EvForceStopVideo)
}

func (o *Orchestrator) forceAll(id domain.ConnID, action, event string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	code, ok := o.hostRoom(id, action)
	if !ok {
		return
	}
	snap, _ := o.Rooms.Snapshot(code)
	o.broadcastActive(snap, protocol.Notice{Type: event}, id)
}

// TransferHost hands moderation rights to another active member.
func (o *Orchestrator) TransferHost(id, target domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	code, ok := o.hostRoom(id, "transfer-host")
	if !ok {
		return
	}
	if !o.Rooms.SetHost(code, target) {
		return
	}
	snap, _ := o.Rooms.Snapshot(code)
	o.broadcastActive(snap, protocol.HostUpdate{Type: protocol.EvHostUpdate, HostID: target}, "")
}

// EndMeeting announces meeting-ended to everyone but the host; clients
// leave on their own, which empties and deletes the room.
func (o *Orchestrator) EndMeeting(id domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	code, ok := o.hostRoom(id, "end-meeting-for-all")
	if !ok {
		return
	}
	snap, _ := o.Rooms.Snapshot(code)
	o.broadcastActive(snap, protocol.Notice{Type: protocol.EvMeetingEnded}, id)
	log.Info().Str("module", "orch").Str("room", string(code)).Msg("meeting ended by host")
}
