package game

import (
	"fmt"
	"slices"
)

// SubmitVote records a day vote. Only living players may vote, once per
// round, and only for a living player. The captain's choice is also kept
// aside to break ties.
func (s *Session) SubmitVote(voter PlayerID, target string) error {
	if s.over {
		return fmt.Errorf("%w: %w", ErrInvalidVote, ErrGameOver)
	}
	if !s.started || s.phase != PhaseDayVote {
		return fmt.Errorf("%w: voting is closed", ErrInvalidVote)
	}
	p := s.Player(voter)
	if p == nil || !p.Present || !p.Alive {
		return fmt.Errorf("%w: only living players vote", ErrInvalidVote)
	}
	if p.HasVotedThisRound {
		return fmt.Errorf("%w: already voted", ErrInvalidVote)
	}
	t := s.aliveTarget(target)
	if t == nil {
		return fmt.Errorf("%w: no living player named %q", ErrInvalidVote, target)
	}

	s.votes[p.ID] = t.ID
	p.HasVotedThisRound = true
	if p.IsCaptain {
		s.captainVote = t.ID
	}
	return nil
}

// ResolveVotes tallies the ballots and clears the ledger. Only ballots cast
// by players still alive, for players still alive, count. A single leader
// is eliminated. A tie is broken by a living captain when the captain voted
// for one of the tied players; otherwise nobody is eliminated.
func (s *Session) ResolveVotes() PlayerID {
	defer s.resetVotes()

	tally := make(map[PlayerID]int, len(s.votes))
	for voter, target := range s.votes {
		if !s.livingID(voter) || !s.livingID(target) {
			continue
		}
		tally[target]++
	}

	best := 0
	var leaders []PlayerID
	for target, n := range tally {
		switch {
		case n > best:
			best = n
			leaders = []PlayerID{target}
		case n == best:
			leaders = append(leaders, target)
		}
	}

	switch {
	case len(leaders) == 1:
		return leaders[0]
	case len(leaders) > 1:
		captain := s.Captain()
		if captain != nil && captain.Alive && slices.Contains(leaders, s.captainVote) {
			return s.captainVote
		}
	}
	return NoPlayer
}

func (s *Session) livingID(id PlayerID) bool {
	p := s.Player(id)
	return p != nil && p.Alive
}

func (s *Session) resetVotes() {
	clear(s.votes)
	s.captainVote = NoPlayer
	for _, p := range s.players {
		p.HasVotedThisRound = false
	}
}

// SetCaptain makes a living player the captain, replacing any previous one.
func (s *Session) SetCaptain(id PlayerID) error {
	p := s.Player(id)
	if p == nil || !p.Present || !p.Alive {
		return fmt.Errorf("%w: captain must be a living player", ErrInvalidAction)
	}
	for _, other := range s.players {
		other.IsCaptain = false
	}
	p.IsCaptain = true
	return nil
}

// Captain returns the captain, or nil.
func (s *Session) Captain() *Player {
	for _, p := range s.players {
		if p.IsCaptain {
			return p
		}
	}
	return nil
}
