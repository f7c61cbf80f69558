package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/tmakov/Huddle/internal/core"
	"github.com/tmakov/Huddle/internal/domain"
)

// roomState pairs the room's policy fields with its ordered rosters.
// Slices keep join order; removal is stable so survivors never reorder.
type roomState struct {
	room    *domain.Room
	active  []core.Entry
	waiting []core.Entry
}

// RoomStoreImpl is the in-memory RoomStore. Rooms are created lazily on
// first join attempt and deleted when their active list empties.
type RoomStoreImpl struct {
	mu    sync.RWMutex
	rooms map[domain.MeetingCode]*roomState
}

func NewRoomStore() *RoomStoreImpl {
	return &RoomStoreImpl{rooms: make(map[domain.MeetingCode]*roomState)}
}

func (s *RoomStoreImpl) EnsureRoom(code domain.MeetingCode) core.RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return snapshotLocked(s.ensureLocked(code))
}

func (s *RoomStoreImpl) ensureLocked(code domain.MeetingCode) *roomState {
	if st, ok := s.rooms[code]; ok {
		return st
	}
	st := &roomState{room: &domain.Room{Code: code}}
	s.rooms[code] = st
	log.Info().Str("module", "app.store").Str("room", string(code)).Msg("room created")
	return st
}

func (s *RoomStoreImpl) Snapshot(code domain.MeetingCode) (core.RoomSnapshot, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[code]
	if !ok {
		return core.RoomSnapshot{}, false
	}
	return snapshotLocked(st), true
}

func (s *RoomStoreImpl) Info(code domain.MeetingCode) (core.RoomInfo, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[code]
	if !ok {
		return core.RoomInfo{}, false
	}
	return core.RoomInfo{Code: code, MemberCount: len(st.active), Locked: st.room.Locked}, true
}

func (s *RoomStoreImpl) List() []core.RoomInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]core.RoomInfo, 0, len(s.rooms))
	for code, st := range s.rooms {
		out = append(out, core.RoomInfo{Code: code, MemberCount: len(st.active), Locked: st.room.Locked})
	}
	return out
}

// SetPolicy only touches rooms that already exist; creation goes through
// EnsureRoom so a policy write can never invent a room.
func (s *RoomStoreImpl) SetPolicy(code domain.MeetingCode, passcode string, locked bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rooms[code]
	if !ok {
		return
	}
	st.room.Passcode = passcode
	st.room.Locked = locked
}

func (s *RoomStoreImpl) CheckPasscode(code domain.MeetingCode, pass string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[code]
	if !ok {
		return true
	}
	return st.room.Passcode == "" || st.room.Passcode == pass
}

func (s *RoomStoreImpl) AddActive(code domain.MeetingCode, id domain.ConnID, name string) core.RoomSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ensureLocked(code)
	if indexOf(st.active, id) == -1 {
		st.active = append(st.active, core.Entry{ID: id, Name: name})
		if st.room.Host == "" {
			st.room.Host = id
		}
		log.Info().Str("module", "app.store").Str("room", string(code)).Str("conn", string(id)).Msg("member added")
	}
	return snapshotLocked(st)
}

func (s *RoomStoreImpl) AddWaiting(code domain.MeetingCode, id domain.ConnID, name string) (core.RoomSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.ensureLocked(code)
	if indexOf(st.waiting, id) != -1 || indexOf(st.active, id) != -1 {
		return snapshotLocked(st), false
	}
	st.waiting = append(st.waiting, core.Entry{ID: id, Name: name})
	log.Info().Str("module", "app.store").Str("room", string(code)).Str("conn", string(id)).Msg("queued in waiting list")
	return snapshotLocked(st), true
}

func (s *RoomStoreImpl) Promote(code domain.MeetingCode, id domain.ConnID) (core.RoomSnapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rooms[code]
	if !ok {
		return core.RoomSnapshot{}, false
	}
	i := indexOf(st.waiting, id)
	if i == -1 {
		return snapshotLocked(st), false
	}
	e := st.waiting[i]
	st.waiting = removeAt(st.waiting, i)
	st.active = append(st.active, e)
	if st.room.Host == "" {
		st.room.Host = id
	}
	log.Info().Str("module", "app.store").Str("room", string(code)).Str("conn", string(id)).Msg("promoted from waiting list")
	return snapshotLocked(st), true
}

// RemoveFromAll scans every room rather than trusting a cached room key,
// so a stale registry association can never leak a roster entry.
func (s *RoomStoreImpl) RemoveFromAll(id domain.ConnID) []core.RoomChange {
	s.mu.Lock()
	defer s.mu.Unlock()
	var changes []core.RoomChange
	for code, st := range s.rooms {
		ch := core.RoomChange{Code: code}
		if i := indexOf(st.active, id); i != -1 {
			st.active = removeAt(st.active, i)
			ch.WasActive = true
			if st.room.Host == id {
				st.room.Host = ""
				if len(st.active) > 0 {
					// Successor policy: earliest remaining joiner.
					st.room.Host = st.active[0].ID
					ch.HostChanged = true
				}
			}
		}
		if i := indexOf(st.waiting, id); i != -1 {
			st.waiting = removeAt(st.waiting, i)
			ch.WasWaiting = true
		}
		if !ch.WasActive && !ch.WasWaiting {
			continue
		}
		if len(st.active) == 0 && ch.WasActive {
			delete(s.rooms, code)
			ch.Deleted = true
			log.Info().Str("module", "app.store").Str("room", string(code)).Msg("room deleted, no members left")
		}
		ch.Active = copyEntries(st.active)
		ch.Waiting = copyEntries(st.waiting)
		ch.Host = st.room.Host
		changes = append(changes, ch)
	}
	return changes
}

func (s *RoomStoreImpl) SetLock(code domain.MeetingCode, locked bool) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rooms[code]
	if !ok {
		return false
	}
	st.room.Locked = locked
	return true
}

func (s *RoomStoreImpl) SetHost(code domain.MeetingCode, id domain.ConnID) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.rooms[code]
	if !ok || indexOf(st.active, id) == -1 {
		return false
	}
	st.room.Host = id
	log.Info().Str("module", "app.store").Str("room", string(code)).Str("conn", string(id)).Msg("host reassigned")
	return true
}

func (s *RoomStoreImpl) IsHost(code domain.MeetingCode, id domain.ConnID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[code]
	return ok && st.room.Host == id
}

func (s *RoomStoreImpl) IsActive(code domain.MeetingCode, id domain.ConnID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[code]
	return ok && indexOf(st.active, id) != -1
}

func (s *RoomStoreImpl) IsWaiting(code domain.MeetingCode, id domain.ConnID) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.rooms[code]
	return ok && indexOf(st.waiting, id) != -1
}

func snapshotLocked(st *roomState) core.RoomSnapshot {
	return core.RoomSnapshot{
		Code:        st.room.Code,
		Host:        st.room.Host,
		Locked:      st.room.Locked,
		HasPasscode: st.room.Passcode != "",
		Active:      copyEntries(st.active),
		Waiting:     copyEntries(st.waiting),
	}
}

func indexOf(list []core.Entry, id domain.ConnID) int {
	for i, e := range list {
		if e.ID == id {
			return i
		}
	}
	return -1
}

func removeAt(list []core.Entry, i int) []core.Entry {
	return append(list[:i], list[i+1:]...)
}

func copyEntries(list []core.Entry) []core.Entry {
	out := make([]core.Entry, len(list))
	copy(out, list)
	return out
}
