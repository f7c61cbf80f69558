// Package orch applies every inbound signaling event to the shared room
// state and fans the resulting events out to connections.
package orch

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/app"
	"github.com/tmakov/Huddle/internal/core"
	"github.com/tmakov/Huddle/internal/domain"
	"github.com/tmakov/Huddle/internal/protocol"
)

// Orchestrator serializes event application: every inbound event (join,
// signal, chat, moderation, disconnect) runs to completion under one
// mutex, including all broadcasts it triggers. Sends are fire-and-forget
// into buffered per-connection channels, so nothing blocks under the
// lock. That gives per-room arrival-order delivery without per-room
// locking.
type Orchestrator struct {
	mu sync.Mutex

	Registry   *app.Registry
	Rooms      core.RoomStore
	Directory  app.MeetingDirectory
	ICEServers []webrtc.ICEServer
}

// Connect registers a fresh connection and hands it its id plus the
// STUN/TURN bootstrap.
func (o *Orchestrator) Connect(id domain.ConnID, conn core.SignalConnection, cancel context.CancelFunc) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.Registry.Register(id, domain.NewParticipant(id, ""), conn, cancel)
	o.send(id, protocol.Welcome{Type: protocol.EvWelcome, ID: id, ICEServers: o.ICEServers})
}

// Disconnect runs lifecycle cleanup for a closed transport. It is safe to
// call more than once for the same id.
func (o *Orchestrator) Disconnect(id domain.ConnID) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.scrubLocked(id)
	o.Registry.Remove(id)
	log.Info().Str("module", "orch").Str("conn", string(id)).Msg("disconnect cleanup done")
}

// scrubLocked removes id from every room's bookkeeping and emits the
// departure events each affected room owes its members.
func (o *Orchestrator) scrubLocked(id domain.ConnID) {
	for _, ch := range o.Rooms.RemoveFromAll(id) {
		if ch.WasActive {
			// One user-left per remaining member so each tears down
			// exactly one peer connection.
			for _, m := range ch.Active {
				o.send(m.ID, protocol.UserLeft{Type: protocol.EvUserLeft, ID: id})
			}
			if len(ch.Active) > 0 {
				o.sendRoster(ch.Code, ch.Host, ch.Active)
				if ch.HostChanged {
					for _, m := range ch.Active {
						o.send(m.ID, protocol.HostUpdate{Type: protocol.EvHostUpdate, HostID: ch.Host})
					}
				}
			}
		}
		if ch.WasWaiting && !ch.Deleted {
			o.sendWaiting(ch.Code, ch.Active, ch.Waiting)
		}
	}
	o.Registry.SetRoom(id, "")
}

// send marshals and fire-and-forgets one event. An absent target is a
// race between disconnect and an in-flight event, not an error.
func (o *Orchestrator) send(id domain.ConnID, v any) {
	conn, ok := o.Registry.Conn(id)
	if !ok {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		log.Error().Err(err).Str("module", "orch").Msg("marshal event")
		return
	}
	if err := conn.TrySend(b); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("conn", string(id)).Msg("send dropped")
	}
}

func (o *Orchestrator) sendRoster(code domain.MeetingCode, host domain.ConnID, active []core.Entry) {
	ev := protocol.RosterUpdate{
		Type:        protocol.EvRosterUpdate,
		MeetingCode: code,
		HostID:      host,
		Members:     o.members(active),
	}
	for _, m := range active {
		o.send(m.ID, ev)
	}
}

func (o *Orchestrator) sendWaiting(code domain.MeetingCode, active, waiting []core.Entry) {
	ev := protocol.WaitingList{Type: protocol.EvWaitingList, MeetingCode: code, Waiting: waiting}
	for _, m := range active {
		o.send(m.ID, ev)
	}
}

// members merges the store's ordered roster with the registry-owned
// presence flags.
func (o *Orchestrator) members(active []core.Entry) []protocol.Member {
	out := make([]protocol.Member, 0, len(active))
	for _, e := range active {
		m := protocol.Member{ID: e.ID, DisplayName: e.Name}
		if p, ok := o.Registry.Get(e.ID); ok {
			m.Muted = p.Muted
			m.CameraOff = p.CameraOff
			m.HandRaised = p.HandRaised
		}
		out = append(out, m)
	}
	return out
}

func (o *Orchestrator) broadcastActive(snap core.RoomSnapshot, v any, except domain.ConnID) {
	for _, m := range snap.Active {
		if m.ID == except {
			continue
		}
		o.send(m.ID, v)
	}
}

// hostRoom resolves the requester's room and checks moderation
// authorization. Unauthorized requests are dropped with no reply so a
// stale client learns nothing about host identity.
func (o *Orchestrator) hostRoom(id domain.ConnID, action string) (domain.MeetingCode, bool) {
	code, ok := o.Registry.RoomOf(id)
	if !ok || !o.Rooms.IsHost(code, id) {
		log.Warn().Str("module", "orch").Str("conn", string(id)).Str("action", action).Msg("unauthorized moderation dropped")
		return "", false
	}
	return code, true
}
