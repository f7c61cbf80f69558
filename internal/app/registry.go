package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/core"
	"github.com/tmakov/Huddle/internal/domain"
)

type connEntry struct {
	Participant *domain.Participant
	Conn        core.SignalConnection
	Room        domain.MeetingCode
	Cancel      context.CancelFunc
}

// Registry holds the live connection set and the per-room-visible
// attributes of each connection. State dies with the process.
type Registry struct {
	mu    sync.RWMutex
	conns map[domain.ConnID]*connEntry
}

func NewRegistry() *Registry {
	return &Registry{conns: make(map[domain.ConnID]*connEntry)}
}

func (r *Registry) Register(id domain.ConnID, p *domain.Participant, conn core.SignalConnection, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.conns[id] = &connEntry{Participant: p, Conn: conn, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("name", p.Name).Msg("connection registered")
}

// Get returns a copy of the participant meta, never the shared struct.
func (r *Registry) Get(id domain.ConnID) (domain.Participant, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return domain.Participant{}, false
	}
	return *e.Participant, true
}

func (r *Registry) Conn(id domain.ConnID) (core.SignalConnection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok {
		return nil, false
	}
	return e.Conn, true
}

func (r *Registry) SetRoom(id domain.ConnID, code domain.MeetingCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.conns[id]
	if !ok {
		return false
	}
	e.Room = code
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Str("room", string(code)).Msg("bound to room")
	return true
}

func (r *Registry) RoomOf(id domain.ConnID) (domain.MeetingCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.conns[id]
	if !ok || e.Room == "" {
		return "", false
	}
	return e.Room, true
}

func (r *Registry) SetName(id domain.ConnID, name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.Participant.Name = domain.CleanDisplayName(name)
	}
}

func (r *Registry) SetMuted(id domain.ConnID, muted bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.Participant.Muted = muted
	}
}

func (r *Registry) SetCameraOff(id domain.ConnID, off bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.Participant.CameraOff = off
	}
}

func (r *Registry) SetHandRaised(id domain.ConnID, raised bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.conns[id]; ok {
		e.Participant.HandRaised = raised
	}
}

func (r *Registry) Remove(id domain.ConnID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.conns, id)
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("connection removed")
}

// Cancel aborts the connection's pump context, forcing the transport down.
func (r *Registry) Cancel(id domain.ConnID) bool {
	r.mu.RLock()
	e, ok := r.conns[id]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("conn", string(id)).Msg("connection canceled")
	return true
}
