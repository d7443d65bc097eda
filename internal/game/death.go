package game

// Kill marks a player dead and returns the resulting deaths. A lover's
// partner dies with them. A hunter who can still shoot gets a HunterRevenge
// event; the shot itself is a later, separate action.
func (s *Session) Kill(id PlayerID) []Event {
	p := s.Player(id)
	if p == nil || !p.Alive {
		return nil
	}
	p.Alive = false
	events := []Event{PlayerDied{Player: p.ID, Username: p.Username}}

	if p.Role == RoleHunter && p.HunterCanShoot && p.Present {
		s.pendingHunter = p.ID
		events = append(events, HunterRevenge{Hunter: p.ID})
	}
	if p.IsLover {
		events = append(events, s.Kill(p.Partner)...)
	}
	return events
}

// ResolveNightEnd applies the night's deaths: the wolves' victim unless the
// witch saved them, then the witch's poison target. All per-night state is
// cleared afterwards.
func (s *Session) ResolveNightEnd() []Event {
	var events []Event
	if s.pendingWolfVictim != NoPlayer && !s.witchSaved {
		events = append(events, s.Kill(s.pendingWolfVictim)...)
	}
	if s.pendingWitchVictim != NoPlayer {
		events = append(events, s.Kill(s.pendingWitchVictim)...)
	}

	s.pendingWolfVictim = NoPlayer
	s.pendingWitchVictim = NoPlayer
	s.witchSaved = false
	s.witchKilled = false
	return events
}
