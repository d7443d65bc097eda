package game

import (
	"errors"
	"fmt"
	"testing"
	"time"
)

var t0 = time.Date(2024, 3, 1, 21, 0, 0, 0, time.UTC)

// noShuffle keeps the deck in RoleDeck order so tests know who holds what.
func noShuffle(int, func(i, j int)) {}

// seatedSession returns a Waiting session with players p0..p(n-1).
func seatedSession(t *testing.T, n int) *Session {
	t.Helper()
	s := NewSession("1234", Settings{Shuffle: noShuffle})
	for i := 0; i < n; i++ {
		if _, err := s.AddPlayer(fmt.Sprintf("p%d", i)); err != nil {
			t.Fatalf("AddPlayer(p%d) failed: %v", i, err)
		}
	}
	return s
}

// startedSession deals an unshuffled deck. With 6 players: p0 p1 wolves,
// p2 seer, p3 witch, p4 p5 villagers. With 9 players p4 is the hunter and
// p5 Cupid.
func startedSession(t *testing.T, n int) *Session {
	t.Helper()
	s := seatedSession(t, n)
	if _, err := s.Start(t0); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	return s
}

func byName(t *testing.T, s *Session, name string) *Player {
	t.Helper()
	p := s.PlayerByName(name)
	if p == nil {
		t.Fatalf("no player named %q", name)
	}
	return p
}

func act(t *testing.T, s *Session, actor string, a NightAction) []Event {
	t.Helper()
	events, err := s.SubmitNightAction(byName(t, s, actor).ID, a)
	if err != nil {
		t.Fatalf("%s %q failed: %v", actor, a.Action, err)
	}
	return events
}

// advanceTo transitions until the session reaches phase.
func advanceTo(t *testing.T, s *Session, phase Phase) []Event {
	t.Helper()
	var events []Event
	for i := 0; s.Phase() != phase; i++ {
		if i > 20 || s.Over() {
			t.Fatalf("never reached %s (at %s, over=%v)", phase, s.Phase(), s.Over())
		}
		events = append(events, s.Transition(t0)...)
	}
	return events
}

func deaths(events []Event) []string {
	var names []string
	for _, e := range events {
		if d, ok := e.(PlayerDied); ok {
			names = append(names, d.Username)
		}
	}
	return names
}

func TestAddPlayer(t *testing.T) {
	t.Run("rejects duplicate usernames", func(t *testing.T) {
		s := seatedSession(t, 2)
		if _, err := s.AddPlayer("p1"); !errors.Is(err, ErrUsernameTaken) {
			t.Errorf("expected ErrUsernameTaken, got %v", err)
		}
	})

	t.Run("rejects empty usernames", func(t *testing.T) {
		s := seatedSession(t, 0)
		if _, err := s.AddPlayer(""); !errors.Is(err, ErrInvalidUsername) {
			t.Errorf("expected ErrInvalidUsername, got %v", err)
		}
	})

	t.Run("rejects players beyond capacity", func(t *testing.T) {
		s := seatedSession(t, 16)
		if _, err := s.AddPlayer("late"); !errors.Is(err, ErrRoomFull) {
			t.Errorf("expected ErrRoomFull, got %v", err)
		}
	})

	t.Run("frees the seat of a player who left before the start", func(t *testing.T) {
		s := seatedSession(t, 16)
		s.RemovePlayer(byName(t, s, "p3").ID)
		if _, err := s.AddPlayer("p3"); err != nil {
			t.Fatalf("rejoin failed: %v", err)
		}
		roster := s.Roster()
		if roster.PlayerCount != 16 || roster.Players[15] != "p3" {
			t.Errorf("unexpected roster %+v", roster)
		}
	})

	t.Run("rejects joins after the start without touching the roster", func(t *testing.T) {
		s := startedSession(t, 6)
		before := s.Roster()
		if _, err := s.AddPlayer("late"); !errors.Is(err, ErrGameAlreadyStarted) {
			t.Errorf("expected ErrGameAlreadyStarted, got %v", err)
		}
		if after := s.Roster(); after.PlayerCount != before.PlayerCount {
			t.Errorf("roster changed: %+v -> %+v", before, after)
		}
	})
}

func TestStart(t *testing.T) {
	t.Run("needs six players", func(t *testing.T) {
		s := seatedSession(t, 5)
		if _, err := s.Start(t0); !errors.Is(err, ErrNotEnoughPlayers) {
			t.Fatalf("expected ErrNotEnoughPlayers, got %v", err)
		}
		if s.Started() || s.Phase() != PhaseWaiting {
			t.Error("failed start changed the session")
		}
	})

	t.Run("only once", func(t *testing.T) {
		s := startedSession(t, 6)
		if _, err := s.Start(t0); !errors.Is(err, ErrGameAlreadyStarted) {
			t.Errorf("expected ErrGameAlreadyStarted, got %v", err)
		}
	})

	t.Run("tells each player only their own role", func(t *testing.T) {
		s := seatedSession(t, 6)
		events, err := s.Start(t0)
		if err != nil {
			t.Fatal(err)
		}
		seen := map[PlayerID]int{}
		for _, e := range events {
			if ra, ok := e.(RoleAssigned); ok {
				seen[ra.Player]++
				if s.Player(ra.Player).Role != ra.Role {
					t.Errorf("player %d told %s but holds %s", ra.Player, ra.Role, s.Player(ra.Player).Role)
				}
			}
		}
		if len(seen) != 6 {
			t.Errorf("expected 6 role notices, got %d", len(seen))
		}
	})

	t.Run("enters the first night of turn 1", func(t *testing.T) {
		s := startedSession(t, 6)
		if s.Phase() != PhaseNightWerewolf || s.Turn() != 1 {
			t.Errorf("expected night_werewolf turn 1, got %s turn %d", s.Phase(), s.Turn())
		}
		if want := t0.Add(45 * time.Second); !s.Deadline().Equal(want) {
			t.Errorf("expected deadline %v, got %v", want, s.Deadline())
		}
	})
}

func TestWolvesLastWriterWins(t *testing.T) {
	s := startedSession(t, 6)
	act(t, s, "p0", NightAction{Action: ActionKill, Target: "p4"})
	if s.Satisfied() {
		t.Error("phase satisfied before every wolf acted")
	}
	act(t, s, "p1", NightAction{Action: ActionKill, Target: "p5"})

	if got := s.PendingWolfVictim(); got != byName(t, s, "p5").ID {
		t.Errorf("expected p5 as victim, got %d", got)
	}
	if !s.Satisfied() {
		t.Error("expected phase satisfied once all wolves acted")
	}
}

func TestRejectedActionsLeaveStateUnchanged(t *testing.T) {
	s := startedSession(t, 6)

	cases := []struct {
		name   string
		actor  string
		action NightAction
	}{
		{"villager kills", "p4", NightAction{Action: ActionKill, Target: "p5"}},
		{"seer out of phase", "p2", NightAction{Action: ActionSee, Target: "p0"}},
		{"witch out of phase", "p3", NightAction{Action: ActionPass}},
		{"wolf kills a stranger", "p0", NightAction{Action: ActionKill, Target: "nobody"}},
		{"wolf shoots", "p0", NightAction{Action: ActionShoot, Target: "p4"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := s.SubmitNightAction(byName(t, s, tc.actor).ID, tc.action)
			if !errors.Is(err, ErrInvalidAction) {
				t.Errorf("expected ErrInvalidAction, got %v", err)
			}
			if s.PendingWolfVictim() != NoPlayer || s.Phase() != PhaseNightWerewolf {
				t.Error("rejected action changed the session")
			}
		})
	}
}

func TestSeerLooksOncePerNight(t *testing.T) {
	s := startedSession(t, 6)
	advanceTo(t, s, PhaseNightSeer)

	events := act(t, s, "p2", NightAction{Action: ActionSee, Target: "p1"})
	if len(events) != 1 {
		t.Fatalf("expected one vision, got %v", events)
	}
	vision := events[0].(SeerVision)
	if vision.Target != "p1" || vision.Role != RoleWerewolf {
		t.Errorf("unexpected vision %+v", vision)
	}
	if s.SeerLastResult() != byName(t, s, "p1").ID {
		t.Error("seer result not recorded")
	}

	if _, err := s.SubmitNightAction(byName(t, s, "p2").ID, NightAction{Action: ActionSee, Target: "p4"}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected second look rejected, got %v", err)
	}
}

func TestWitchHealIsSingleUse(t *testing.T) {
	s := startedSession(t, 6)
	act(t, s, "p0", NightAction{Action: ActionKill, Target: "p4"})
	events := advanceTo(t, s, PhaseNightWitch)

	var told WitchVictim
	for _, e := range events {
		if wv, ok := e.(WitchVictim); ok {
			told = wv
		}
	}
	if told.Victim != "p4" || told.Witch != byName(t, s, "p3").ID {
		t.Fatalf("witch not told about p4: %+v", told)
	}

	act(t, s, "p3", NightAction{Action: ActionHeal})
	_, err := s.SubmitNightAction(byName(t, s, "p3").ID, NightAction{Action: ActionHeal})
	if !errors.Is(err, ErrInvalidAction) {
		t.Fatalf("expected second heal rejected, got %v", err)
	}
	if saved, _ := s.WitchFlags(); !saved {
		t.Error("first heal outcome lost")
	}

	events = advanceTo(t, s, PhaseDayDiscussion)
	if d := deaths(events); len(d) != 0 {
		t.Errorf("expected nobody dead after heal, got %v", d)
	}
	if !byName(t, s, "p4").Alive {
		t.Error("healed player died")
	}

	// The potion stays spent on later nights.
	advanceTo(t, s, PhaseNightWerewolf)
	act(t, s, "p0", NightAction{Action: ActionKill, Target: "p5"})
	advanceTo(t, s, PhaseNightWitch)
	if _, err := s.SubmitNightAction(byName(t, s, "p3").ID, NightAction{Action: ActionHeal}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected heal rejected on a later night, got %v", err)
	}
}

func TestWitchHealNeedsVictim(t *testing.T) {
	s := startedSession(t, 6)
	advanceTo(t, s, PhaseNightWitch)
	if _, err := s.SubmitNightAction(byName(t, s, "p3").ID, NightAction{Action: ActionHeal}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected heal without victim rejected, got %v", err)
	}
	if byName(t, s, "p3").WitchHealUsed {
		t.Error("rejected heal consumed the potion")
	}
}

func TestWitchPoisonKillsIndependently(t *testing.T) {
	s := startedSession(t, 6)
	act(t, s, "p0", NightAction{Action: ActionKill, Target: "p4"})
	advanceTo(t, s, PhaseNightWitch)
	act(t, s, "p3", NightAction{Action: ActionKill, Target: "p5"})

	if _, killed := s.WitchFlags(); !killed {
		t.Error("witch kill flag not set")
	}
	if s.Satisfied() {
		t.Error("witch with a usable heal should still be awaited")
	}
	act(t, s, "p3", NightAction{Action: ActionPass})
	if !s.Satisfied() {
		t.Error("witch pass should satisfy the phase")
	}

	events := s.Transition(t0)
	got := deaths(events)
	if len(got) != 2 || got[0] != "p4" || got[1] != "p5" {
		t.Errorf("expected p4 and p5 dead, got %v", got)
	}
	if s.PendingWolfVictim() != NoPlayer || s.PendingWitchVictim() != NoPlayer {
		t.Error("night state not cleared")
	}
	if saved, killed := s.WitchFlags(); saved || killed {
		t.Error("witch flags not cleared")
	}
}

func TestCupidPairsLovers(t *testing.T) {
	s := startedSession(t, 9)
	if s.Phase() != PhaseNightCupid {
		t.Fatalf("expected night_cupid, got %s", s.Phase())
	}

	if _, err := s.SubmitNightAction(byName(t, s, "p5").ID, NightAction{Action: ActionPair, Targets: []string{"p6"}}); !errors.Is(err, ErrInvalidAction) {
		t.Errorf("expected single target rejected, got %v", err)
	}

	act(t, s, "p5", NightAction{Action: ActionPair, Targets: []string{"p6", "p0"}})
	a, b := byName(t, s, "p6"), byName(t, s, "p0")
	if !a.IsLover || !b.IsLover || a.Partner != b.ID || b.Partner != a.ID {
		t.Errorf("lovers not bound symmetrically: %+v %+v", a, b)
	}

	events := s.Transition(t0)
	var bound []LoverBound
	for _, e := range events {
		if lb, ok := e.(LoverBound); ok {
			bound = append(bound, lb)
		}
	}
	if len(bound) != 2 || bound[0].Partner != "p0" || bound[1].Partner != "p6" {
		t.Errorf("unexpected lover notices %+v", bound)
	}

	act(t, s, "p6", NightAction{Action: ActionAck})
	if s.Satisfied() {
		t.Error("lovers phase satisfied before both acknowledged")
	}
	act(t, s, "p0", NightAction{Action: ActionAck})
	if !s.Satisfied() {
		t.Error("lovers phase not satisfied after both acknowledged")
	}
}

func TestThiefStealsRole(t *testing.T) {
	s := NewSession("1234", Settings{Shuffle: noShuffle, IncludeThief: true})
	for i := 0; i < 6; i++ {
		if _, err := s.AddPlayer(fmt.Sprintf("p%d", i)); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := s.Start(t0); err != nil {
		t.Fatal(err)
	}
	if s.Phase() != PhaseNightThief {
		t.Fatalf("expected night_thief, got %s", s.Phase())
	}

	events := act(t, s, "p4", NightAction{Action: ActionSteal, Target: "p2"})
	if byName(t, s, "p4").Role != RoleSeer || byName(t, s, "p2").Role != RoleThief {
		t.Error("roles not exchanged")
	}
	if len(events) != 2 {
		t.Errorf("expected both players re-notified, got %v", events)
	}
	if !s.Satisfied() {
		t.Error("thief phase not satisfied after acting")
	}
	if s.Dealt()[RoleThief] != 1 {
		t.Error("original deal must not change")
	}

	s.Transition(t0)
	if s.Phase() != PhaseNightWerewolf {
		t.Errorf("expected night_werewolf after thief, got %s", s.Phase())
	}
}

func TestDeadlineForcesAdvanceWithoutVictim(t *testing.T) {
	s := startedSession(t, 6)
	if s.Phase() != PhaseNightWerewolf {
		t.Fatalf("expected night_werewolf, got %s", s.Phase())
	}
	s.Transition(t0.Add(45 * time.Second))

	if s.Phase() != PhaseNightSeer {
		t.Errorf("expected night_seer, got %s", s.Phase())
	}
	if s.PendingWolfVictim() != NoPlayer {
		t.Error("victim recorded without a wolf action")
	}

	events := advanceTo(t, s, PhaseDayDiscussion)
	if d := deaths(events); len(d) != 0 {
		t.Errorf("expected a quiet night, got deaths %v", d)
	}
}

func TestDepartureDuringGame(t *testing.T) {
	s := startedSession(t, 6)
	events := s.RemovePlayer(byName(t, s, "p0").ID)
	if d := deaths(events); len(d) != 1 || d[0] != "p0" {
		t.Errorf("expected departing player to die, got %v", d)
	}
	if s.PresentCount() != 5 {
		t.Errorf("expected 5 present players, got %d", s.PresentCount())
	}

	events = s.RemovePlayer(byName(t, s, "p1").ID)
	var over GameOver
	for _, e := range events {
		if g, ok := e.(GameOver); ok {
			over = g
		}
	}
	if over.Winner != WinnerVillagers || !s.Over() {
		t.Errorf("expected villagers to win when the last wolf leaves, got %+v", over)
	}
	if _, err := s.SubmitNightAction(byName(t, s, "p2").ID, NightAction{Action: ActionSee, Target: "p4"}); !errors.Is(err, ErrGameOver) {
		t.Errorf("expected ErrGameOver after the end, got %v", err)
	}
}
