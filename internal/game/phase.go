package game

import (
	"slices"
	"time"
)

// Phase is a named stage of the day/night cycle.
type Phase string

// Phases in cycle order. Waiting is only ever the initial phase.
const (
	PhaseWaiting       Phase = "waiting"
	PhaseNightThief    Phase = "night_thief"
	PhaseNightCupid    Phase = "night_cupid"
	PhaseNightLovers   Phase = "night_lovers"
	PhaseNightWerewolf Phase = "night_werewolf"
	PhaseNightSeer     Phase = "night_seer"
	PhaseNightWitch    Phase = "night_witch"
	PhaseDayDiscussion Phase = "day_discussion"
	PhaseDayVote       Phase = "day_vote"
)

// String returns the wire name of the phase.
func (p Phase) String() string {
	return string(p)
}

// IsNight reports whether the phase belongs to the night.
func (p Phase) IsNight() bool {
	switch p {
	case PhaseNightThief, PhaseNightCupid, PhaseNightLovers,
		PhaseNightWerewolf, PhaseNightSeer, PhaseNightWitch:
		return true
	}
	return false
}

// DefaultPhaseDurations returns the deadline of every timed phase.
func DefaultPhaseDurations() map[Phase]time.Duration {
	return map[Phase]time.Duration{
		PhaseNightThief:    30 * time.Second,
		PhaseNightCupid:    30 * time.Second,
		PhaseNightLovers:   20 * time.Second,
		PhaseNightSeer:     30 * time.Second,
		PhaseNightWerewolf: 45 * time.Second,
		PhaseNightWitch:    30 * time.Second,
		PhaseDayDiscussion: 30 * time.Second,
		PhaseDayVote:       45 * time.Second,
	}
}

// PhaseSequence returns the ordered phases of one full cycle at the given
// turn for a table whose original deal is described by dealt. Phase
// presence depends on which roles were dealt, not on who is still alive.
func PhaseSequence(dealt map[Role]int, turn int) []Phase {
	seq := make([]Phase, 0, 8)
	if turn == 1 {
		if dealt[RoleThief] > 0 {
			seq = append(seq, PhaseNightThief)
		}
		if dealt[RoleCupid] > 0 {
			seq = append(seq, PhaseNightCupid, PhaseNightLovers)
		}
	}
	if dealt[RoleWerewolf] > 0 {
		seq = append(seq, PhaseNightWerewolf)
	}
	if dealt[RoleSeer] > 0 {
		seq = append(seq, PhaseNightSeer)
	}
	if dealt[RoleWitch] > 0 {
		seq = append(seq, PhaseNightWitch)
	}
	return append(seq, PhaseDayDiscussion, PhaseDayVote)
}

// PhaseSequence returns the cycle valid for this session at its current
// turn.
func (s *Session) PhaseSequence() []Phase {
	return PhaseSequence(s.dealt, s.turn)
}

// advancePhase moves to the next phase of the cycle and re-arms the
// deadline. Wrapping past the last phase starts a new turn; leaving Waiting
// enters turn 1.
func (s *Session) advancePhase(now time.Time) {
	seq := s.PhaseSequence()
	i := slices.Index(seq, s.phase)
	switch {
	case i < 0:
		if s.turn == 0 {
			s.turn = 1
		}
		s.phase = s.PhaseSequence()[0]
	case i+1 >= len(seq):
		s.turn++
		s.phase = s.PhaseSequence()[0]
	default:
		s.phase = seq[i+1]
	}

	clear(s.acted)
	s.deadline = time.Time{}
	if d, ok := s.settings.Durations[s.phase]; ok && d > 0 {
		s.deadline = now.Add(d)
	}
}

// PhaseDuration returns the configured deadline length of a phase, zero for
// untimed phases.
func (s *Session) PhaseDuration(p Phase) time.Duration {
	return s.settings.Durations[p]
}
