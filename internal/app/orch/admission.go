package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/core"
	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

// Join is the host/creator entry path. The first connection to reach a
// not-yet-existing room is admitted directly and becomes host; its
// payload's passcode and lock become the room's policy. On an existing
// room the caller is admitted directly when the passcode clears and the
// room is unlocked, and queued behind the lock otherwise.
func (o *Orchestrator) Join(id domain.ConnID, p protocol.Join) {
	o.mu.Lock()
	defer o.mu.Unlock()

	code, ok := o.admissionChecks(id, p)
	if !ok {
		return
	}
	snap, exists := o.Rooms.Snapshot(code)
	if !exists {
		o.createAsHostLocked(id, code, p)
		return
	}
	if !o.Rooms.CheckPasscode(code, p.Passcode) {
		o.send(id, protocol.Notice{Type: protocol.EvPasscodeRequired})
		return
	}
	if snap.Locked {
		o.queueLocked(id, code, snap.Active, p)
		return
	}
	name := domain.CleanDisplayName(p.DisplayName)
	snap = o.Rooms.AddActive(code, id, name)
	o.Registry.SetRoom(id, code)
	o.sendRoster(snap.Code, snap.Host, snap.Active)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(code)).Msg("joined")
}

// JoinRequest is the joiner entry path: queue in the waiting room until a
// host admits. A request that reaches a not-yet-existing room falls
// through to the creator path.
func (o *Orchestrator) JoinRequest(id domain.ConnID, p protocol.Join) {
	o.mu.Lock()
	defer o.mu.Unlock()

	code, ok := o.admissionChecks(id, p)
	if !ok {
		return
	}
	snap, exists := o.Rooms.Snapshot(code)
	if !exists {
		o.createAsHostLocked(id, code, p)
		return
	}
	if !o.Rooms.CheckPasscode(code, p.Passcode) {
		o.send(id, protocol.Notice{Type: protocol.EvPasscodeRequired})
		return
	}
	o.queueLocked(id, code, snap.Active, p)
}

// Admit promotes one waiting connection. Host-only; admitting an id no
// longer in the waiting list is a no-op, so a duplicate admit emits
// nothing.
func (o *Orchestrator) Admit(id, target domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()

	code, ok := o.hostRoom(id, "admit")
	if !ok {
		return
	}
	snap, ok := o.Rooms.Promote(code, target)
	if !ok {
		return
	}
	o.Registry.SetRoom(target, code)
	o.send(target, protocol.Admitted{Type: protocol.EvAdmitted, MeetingCode: code})
	o.sendRoster(snap.Code, snap.Host, snap.Active)
	o.sendWaiting(snap.Code, snap.Active, snap.Waiting)
	log.Info().Str("module", "orch").Str("conn", string(target)).Str("room", string(code)).Msg("admitted")
}

// admissionChecks validates the meeting code, applies the payload's
// participant attributes, and detaches the connection from any previous
// room. Runs before any roster mutation.
func (o *Orchestrator) admissionChecks(id domain.ConnID, p protocol.Join) (domain.MeetingCode, bool) {
	code := domain.MeetingCode(p.MeetingCode)
	if !o.Directory.Valid(code) {
		o.send(id, protocol.Notice{Type: protocol.EvInvalidMeeting})
		return "", false
	}
	o.Registry.SetName(id, p.DisplayName)
	o.Registry.SetMuted(id, p.Muted)
	o.Registry.SetCameraOff(id, p.CameraOff)
	// Detach from every other room, waiting lists included. Rechecking
	// membership in the target room keeps a same-room rejoin a no-op.
	if !o.Rooms.IsActive(code, id) && !o.Rooms.IsWaiting(code, id) {
		o.scrubLocked(id)
	}
	return code, true
}

func (o *Orchestrator) createAsHostLocked(id domain.ConnID, code domain.MeetingCode, p protocol.Join) {
	o.Rooms.EnsureRoom(code)
	o.Rooms.SetPolicy(code, p.Passcode, p.Locked)
	snap := o.Rooms.AddActive(code, id, domain.CleanDisplayName(p.DisplayName))
	o.Registry.SetRoom(id, code)
	o.sendRoster(snap.Code, snap.Host, snap.Active)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(code)).Msg("created room as host")
}

// queueLocked puts id in the waiting room and shows the new list to every
// active member. A locked room with nobody left to approve is terminal
// for this attempt.
func (o *Orchestrator) queueLocked(id domain.ConnID, code domain.MeetingCode, active []core.Entry, p protocol.Join) {
	if len(active) == 0 {
		o.send(id, protocol.Notice{Type: protocol.EvInvalidMeeting})
		return
	}
	snap, added := o.Rooms.AddWaiting(code, id, domain.CleanDisplayName(p.DisplayName))
	if !added {
		return
	}
	o.sendWaiting(snap.Code, snap.Active, snap.Waiting)
	log.Info().Str("module", "orch").Str("conn", string(id)).Str("room", string(code)).Msg("waiting for admission")
}
