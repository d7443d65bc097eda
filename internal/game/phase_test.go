package game

import (
	"slices"
	"testing"
	"time"
)

func TestPhaseSequence(t *testing.T) {
	small := map[Role]int{RoleWerewolf: 2, RoleSeer: 1, RoleWitch: 1, RoleVillager: 2}
	withCupid := map[Role]int{RoleWerewolf: 2, RoleSeer: 1, RoleWitch: 1, RoleHunter: 1, RoleCupid: 1, RoleVillager: 3}

	tests := []struct {
		name  string
		dealt map[Role]int
		turn  int
		want  []Phase
	}{
		{
			name:  "no cupid on turn 1",
			dealt: small,
			turn:  1,
			want:  []Phase{PhaseNightWerewolf, PhaseNightSeer, PhaseNightWitch, PhaseDayDiscussion, PhaseDayVote},
		},
		{
			name:  "cupid on turn 1",
			dealt: withCupid,
			turn:  1,
			want: []Phase{PhaseNightCupid, PhaseNightLovers, PhaseNightWerewolf, PhaseNightSeer,
				PhaseNightWitch, PhaseDayDiscussion, PhaseDayVote},
		},
		{
			name:  "cupid gone after turn 1",
			dealt: withCupid,
			turn:  2,
			want:  []Phase{PhaseNightWerewolf, PhaseNightSeer, PhaseNightWitch, PhaseDayDiscussion, PhaseDayVote},
		},
		{
			name:  "thief before cupid",
			dealt: map[Role]int{RoleThief: 1, RoleCupid: 1, RoleWerewolf: 2},
			turn:  1,
			want:  []Phase{PhaseNightThief, PhaseNightCupid, PhaseNightLovers, PhaseNightWerewolf, PhaseDayDiscussion, PhaseDayVote},
		},
		{
			name:  "day phases always present",
			dealt: map[Role]int{RoleVillager: 6},
			turn:  3,
			want:  []Phase{PhaseDayDiscussion, PhaseDayVote},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := PhaseSequence(tt.dealt, tt.turn); !slices.Equal(got, tt.want) {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// walk records every phase the session enters over the given turns.
func walk(t *testing.T, s *Session, turns int) map[int][]Phase {
	t.Helper()
	visited := map[int][]Phase{s.Turn(): {s.Phase()}}
	for s.Turn() <= turns {
		s.Transition(t0)
		if s.Over() {
			t.Fatalf("game ended unexpectedly at turn %d", s.Turn())
		}
		visited[s.Turn()] = append(visited[s.Turn()], s.Phase())
	}
	return visited
}

func TestNoCupidPhasesWithoutCupid(t *testing.T) {
	s := startedSession(t, 6)
	for turn, phases := range walk(t, s, 4) {
		if slices.Contains(phases, PhaseNightCupid) || slices.Contains(phases, PhaseNightLovers) {
			t.Errorf("turn %d entered a cupid phase: %v", turn, phases)
		}
	}
}

func TestCupidPhasesOnlyOnTurnOne(t *testing.T) {
	s := startedSession(t, 9)
	visited := walk(t, s, 3)

	if !slices.Contains(visited[1], PhaseNightCupid) || !slices.Contains(visited[1], PhaseNightLovers) {
		t.Errorf("turn 1 skipped cupid phases: %v", visited[1])
	}
	for turn := 2; turn <= 3; turn++ {
		if slices.Contains(visited[turn], PhaseNightCupid) || slices.Contains(visited[turn], PhaseNightLovers) {
			t.Errorf("turn %d entered a cupid phase: %v", turn, visited[turn])
		}
		if visited[turn][0] != PhaseNightWerewolf {
			t.Errorf("turn %d should open with night_werewolf, got %v", turn, visited[turn])
		}
	}
}

func TestAdvanceSetsDeadlines(t *testing.T) {
	s := startedSession(t, 9)
	now := t0
	want := map[Phase]time.Duration{
		PhaseNightLovers:   20 * time.Second,
		PhaseNightWerewolf: 45 * time.Second,
		PhaseNightSeer:     30 * time.Second,
		PhaseNightWitch:    30 * time.Second,
		PhaseDayDiscussion: 30 * time.Second,
		PhaseDayVote:       45 * time.Second,
	}
	for range want {
		now = now.Add(time.Minute)
		events := s.Transition(now)
		d := want[s.Phase()]
		if !s.Deadline().Equal(now.Add(d)) {
			t.Errorf("%s: expected deadline %v, got %v", s.Phase(), now.Add(d), s.Deadline())
		}
		changed, ok := events[0].(PhaseChanged)
		if !ok || changed.Phase != s.Phase() || changed.Duration != d {
			t.Errorf("%s: unexpected first event %#v", s.Phase(), events[0])
		}
	}
}

func TestDeadSeerKeepsPhase(t *testing.T) {
	s := startedSession(t, 6)
	s.Kill(byName(t, s, "p2").ID)

	s.Transition(t0)
	if s.Phase() != PhaseNightSeer {
		t.Fatalf("expected night_seer for a dead seer, got %s", s.Phase())
	}
	if !s.Satisfied() {
		t.Error("a phase without a living actor should be satisfied at once")
	}
}

func TestDiscussionOnlyEndsOnDeadline(t *testing.T) {
	s := startedSession(t, 6)
	advanceTo(t, s, PhaseDayDiscussion)
	if s.Satisfied() {
		t.Error("day discussion must not end early")
	}
}
