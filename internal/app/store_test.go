package app

import (
	"fmt"
	"testing"

	"github.com/tmakov/Huddle/internal/core"
	"github.com/tmakov/Huddle/internal/domain"
)

const code = domain.MeetingCode("111-222-333")

func ids(list []core.Entry) []string {
	out := make([]string, 0, len(list))
	for _, e := range list {
		out = append(out, string(e.ID))
	}
	return out
}

func wantOrder(t *testing.T, got []core.Entry, want ...string) {
	t.Helper()
	g := ids(got)
	if len(g) != len(want) {
		t.Fatalf("list=%v, want %v", g, want)
	}
	for i := range g {
		if g[i] != want[i] {
			t.Fatalf("list=%v, want %v", g, want)
		}
	}
}

func TestAddActiveKeepsJoinOrderAndDedupes(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	s.AddActive(code, "B", "Bob")
	s.AddActive(code, "C", "Cleo")
	snap := s.AddActive(code, "B", "Bob") // duplicate is a no-op
	wantOrder(t, snap.Active, "A", "B", "C")
}

func TestFirstMemberBecomesHost(t *testing.T) {
	s := NewRoomStore()
	snap := s.AddActive(code, "A", "Alice")
	if snap.Host != "A" {
		t.Fatalf("host=%q, want A", snap.Host)
	}
	snap = s.AddActive(code, "B", "Bob")
	if snap.Host != "A" {
		t.Fatalf("host=%q after second join, want A", snap.Host)
	}
}

func TestStableRemovalDoesNotReorderSurvivors(t *testing.T) {
	s := NewRoomStore()
	for _, id := range []string{"A", "B", "C", "D"} {
		s.AddActive(code, domain.ConnID(id), id)
	}
	changes := s.RemoveFromAll("B")
	if len(changes) != 1 {
		t.Fatalf("changes=%d, want 1", len(changes))
	}
	wantOrder(t, changes[0].Active, "A", "C", "D")
}

func TestRemoveHostReassignsEarliestSurvivor(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	s.AddActive(code, "B", "Bob")
	s.AddActive(code, "C", "Cleo")

	changes := s.RemoveFromAll("A")
	ch := changes[0]
	if !ch.HostChanged || ch.Host != "B" {
		t.Fatalf("host=%q changed=%v, want B true", ch.Host, ch.HostChanged)
	}
}

func TestEmptyRoomIsDeleted(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	s.AddWaiting(code, "W", "Waiter")

	changes := s.RemoveFromAll("A")
	if !changes[0].Deleted {
		t.Fatalf("room not marked deleted")
	}
	if _, ok := s.Snapshot(code); ok {
		t.Fatalf("empty room still present on next lookup")
	}
}

func TestWaitingEntryRemovedExactlyOnce(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	s.AddWaiting(code, "B", "Bob")

	snap, ok := s.Promote(code, "B")
	if !ok {
		t.Fatalf("promote failed")
	}
	wantOrder(t, snap.Active, "A", "B")
	wantOrder(t, snap.Waiting)

	if _, ok := s.Promote(code, "B"); ok {
		t.Fatalf("second promote of same id succeeded")
	}
	snap, _ = s.Snapshot(code)
	wantOrder(t, snap.Active, "A", "B")
}

func TestAddWaitingDedupes(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	if _, added := s.AddWaiting(code, "B", "Bob"); !added {
		t.Fatalf("first AddWaiting reported no-op")
	}
	if _, added := s.AddWaiting(code, "B", "Bob"); added {
		t.Fatalf("duplicate AddWaiting reported added")
	}
	// Already-active ids never queue.
	if _, added := s.AddWaiting(code, "A", "Alice"); added {
		t.Fatalf("active member queued in waiting list")
	}
}

func TestRemoveFromAllScansEveryRoom(t *testing.T) {
	s := NewRoomStore()
	other := domain.MeetingCode("444-555-666")
	s.AddActive(code, "A", "Alice")
	s.AddActive(code, "B", "Bob")
	s.AddActive(other, "X", "Xavi")
	s.AddWaiting(other, "B", "Bob")

	changes := s.RemoveFromAll("B")
	if len(changes) != 2 {
		t.Fatalf("changes=%d, want 2", len(changes))
	}
	for _, ch := range changes {
		switch ch.Code {
		case code:
			if !ch.WasActive || ch.WasWaiting {
				t.Fatalf("room %s: wasActive=%v wasWaiting=%v", ch.Code, ch.WasActive, ch.WasWaiting)
			}
		case other:
			if ch.WasActive || !ch.WasWaiting {
				t.Fatalf("room %s: wasActive=%v wasWaiting=%v", ch.Code, ch.WasActive, ch.WasWaiting)
			}
		default:
			t.Fatalf("unexpected room %s in changes", ch.Code)
		}
	}
}

func TestCheckPasscode(t *testing.T) {
	s := NewRoomStore()
	s.EnsureRoom(code)
	s.SetPolicy(code, "s3cret", false)
	cases := []struct {
		pass string
		want bool
	}{
		{"s3cret", true},
		{"wrong", false},
		{"", false},
	}
	for _, tc := range cases {
		t.Run(fmt.Sprintf("pass=%q", tc.pass), func(t *testing.T) {
			if got := s.CheckPasscode(code, tc.pass); got != tc.want {
				t.Fatalf("CheckPasscode(%q)=%v, want %v", tc.pass, got, tc.want)
			}
		})
	}
	if !s.CheckPasscode("999-999-999", "anything") {
		t.Fatalf("nonexistent room must not fail the passcode check")
	}
}

func TestSetHostRequiresActiveMember(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	s.AddWaiting(code, "B", "Bob")

	if s.SetHost(code, "B") {
		t.Fatalf("waiting entry accepted as host")
	}
	if s.SetHost(code, "ghost") {
		t.Fatalf("unknown id accepted as host")
	}
	s.AddActive(code, "C", "Cleo")
	if !s.SetHost(code, "C") {
		t.Fatalf("active member rejected as host")
	}
	if !s.IsHost(code, "C") {
		t.Fatalf("host not recorded")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	snap, _ := s.Snapshot(code)
	snap.Active[0].Name = "mutated"

	again, _ := s.Snapshot(code)
	if again.Active[0].Name != "Alice" {
		t.Fatalf("snapshot aliases store internals")
	}
}

func TestInfoAndList(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	s.AddActive(code, "B", "Bob")
	s.SetLock(code, true)

	info, ok := s.Info(code)
	if !ok || info.MemberCount != 2 || !info.Locked {
		t.Fatalf("info=%+v, want 2 members locked", info)
	}
	if got := len(s.List()); got != 1 {
		t.Fatalf("List()=%d rooms, want 1", got)
	}
	if _, ok := s.Info("000-000-000"); ok {
		t.Fatalf("Info invented a room")
	}
}

func TestSetPolicyNeedsExistingRoom(t *testing.T) {
	s := NewRoomStore()
	s.SetPolicy(code, "s3cret", true)
	if _, ok := s.Snapshot(code); ok {
		t.Fatalf("SetPolicy created a room")
	}

	s.EnsureRoom(code)
	s.SetPolicy(code, "s3cret", true)
	snap, ok := s.Snapshot(code)
	if !ok || !snap.Locked || !snap.HasPasscode {
		t.Fatalf("snapshot=%+v, want locked with passcode", snap)
	}
}

func TestIsWaiting(t *testing.T) {
	s := NewRoomStore()
	s.AddActive(code, "A", "Alice")
	s.AddWaiting(code, "B", "Bob")

	if !s.IsWaiting(code, "B") {
		t.Fatalf("queued member not reported waiting")
	}
	if s.IsWaiting(code, "A") {
		t.Fatalf("active member reported waiting")
	}
	s.Promote(code, "B")
	if s.IsWaiting(code, "B") {
		t.Fatalf("promoted member still reported waiting")
	}
	if s.IsWaiting("000-000-000", "B") {
		t.Fatalf("missing room reported a waiter")
	}
}
