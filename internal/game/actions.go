package game

import "fmt"

// Night action names as sent by clients.
const (
	ActionKill  = "kill"
	ActionSee   = "see"
	ActionHeal  = "heal"
	ActionPass  = "pass"
	ActionPair  = "pair"
	ActionSteal = "steal"
	ActionAck   = "ack"
	ActionShoot = "shoot"
)

// NightAction is a role-gated move. Target names a single player; Targets
// is only used by Cupid.
type NightAction struct {
	Action  string
	Target  string
	Targets []string
}

// SubmitNightAction validates a night action against the current phase and
// the actor's role and applies it. A rejected action returns an error
// wrapping ErrInvalidAction and changes nothing.
func (s *Session) SubmitNightAction(actor PlayerID, a NightAction) ([]Event, error) {
	p := s.Player(actor)
	if p == nil || !p.Present {
		return nil, fmt.Errorf("%w: unknown player", ErrInvalidAction)
	}
	if s.over {
		return nil, fmt.Errorf("%w: %w", ErrInvalidAction, ErrGameOver)
	}
	if !s.started {
		return nil, fmt.Errorf("%w: game has not started", ErrInvalidAction)
	}
	if a.Action == ActionShoot {
		return s.hunterShot(p, a.Target)
	}
	if !p.Alive {
		return nil, fmt.Errorf("%w: dead players cannot act", ErrInvalidAction)
	}

	switch {
	case s.phase == PhaseNightWerewolf && p.Role == RoleWerewolf && a.Action == ActionKill:
		return s.wolfKill(p, a.Target)
	case s.phase == PhaseNightSeer && p.Role == RoleSeer && a.Action == ActionSee:
		return s.seerLook(p, a.Target)
	case s.phase == PhaseNightWitch && p.Role == RoleWitch:
		return s.witchAct(p, a)
	case s.phase == PhaseNightCupid && p.Role == RoleCupid && a.Action == ActionPair:
		return s.cupidPair(p, a.Targets)
	case s.phase == PhaseNightThief && p.Role == RoleThief:
		return s.thiefAct(p, a)
	case s.phase == PhaseNightLovers && p.IsLover && a.Action == ActionAck:
		s.acted[p.ID] = true
		return nil, nil
	}
	return nil, fmt.Errorf("%w: %s cannot %q during %s", ErrInvalidAction, p.Role, a.Action, s.phase)
}

func (s *Session) wolfKill(wolf *Player, target string) ([]Event, error) {
	victim := s.aliveTarget(target)
	if victim == nil {
		return nil, fmt.Errorf("%w: no living player named %q", ErrInvalidAction, target)
	}
	// Last wolf to choose wins; no consensus is required.
	s.pendingWolfVictim = victim.ID
	s.acted[wolf.ID] = true
	return nil, nil
}

func (s *Session) seerLook(seer *Player, target string) ([]Event, error) {
	if s.acted[seer.ID] {
		return nil, fmt.Errorf("%w: already looked tonight", ErrInvalidAction)
	}
	t := s.aliveTarget(target)
	if t == nil || t.ID == seer.ID {
		return nil, fmt.Errorf("%w: cannot look at %q", ErrInvalidAction, target)
	}
	s.seerLastResult = t.ID
	s.acted[seer.ID] = true
	return []Event{SeerVision{Seer: seer.ID, Target: t.Username, Role: t.Role}}, nil
}

func (s *Session) witchAct(witch *Player, a NightAction) ([]Event, error) {
	switch a.Action {
	case ActionHeal:
		if witch.WitchHealUsed {
			return nil, fmt.Errorf("%w: heal potion already used", ErrInvalidAction)
		}
		if s.pendingWolfVictim == NoPlayer {
			return nil, fmt.Errorf("%w: nobody to heal", ErrInvalidAction)
		}
		s.witchSaved = true
		s.pendingWolfVictim = NoPlayer
		witch.WitchHealUsed = true
		return nil, nil
	case ActionKill:
		if witch.WitchKillUsed {
			return nil, fmt.Errorf("%w: poison already used", ErrInvalidAction)
		}
		t := s.aliveTarget(a.Target)
		if t == nil {
			return nil, fmt.Errorf("%w: no living player named %q", ErrInvalidAction, a.Target)
		}
		s.pendingWitchVictim = t.ID
		s.witchKilled = true
		witch.WitchKillUsed = true
		return nil, nil
	case ActionPass:
		s.acted[witch.ID] = true
		return nil, nil
	}
	return nil, fmt.Errorf("%w: witch cannot %q", ErrInvalidAction, a.Action)
}

func (s *Session) witchCanAct(w *Player) bool {
	canHeal := !w.WitchHealUsed && s.pendingWolfVictim != NoPlayer
	return canHeal || !w.WitchKillUsed
}

func (s *Session) cupidPair(cupid *Player, targets []string) ([]Event, error) {
	if s.loversBound {
		return nil, fmt.Errorf("%w: lovers already chosen", ErrInvalidAction)
	}
	if len(targets) != 2 || targets[0] == targets[1] {
		return nil, fmt.Errorf("%w: cupid must name two different players", ErrInvalidAction)
	}
	a, b := s.aliveTarget(targets[0]), s.aliveTarget(targets[1])
	if a == nil || b == nil {
		return nil, fmt.Errorf("%w: lovers must be living players", ErrInvalidAction)
	}

	a.IsLover, b.IsLover = true, true
	a.Partner, b.Partner = b.ID, a.ID
	s.lovers = [2]PlayerID{a.ID, b.ID}
	s.loversBound = true
	s.acted[cupid.ID] = true
	return nil, nil
}

func (s *Session) thiefAct(thief *Player, a NightAction) ([]Event, error) {
	if s.acted[thief.ID] {
		return nil, fmt.Errorf("%w: already acted tonight", ErrInvalidAction)
	}
	switch a.Action {
	case ActionPass:
		s.acted[thief.ID] = true
		return nil, nil
	case ActionSteal:
		t := s.aliveTarget(a.Target)
		if t == nil || t.ID == thief.ID {
			return nil, fmt.Errorf("%w: cannot steal from %q", ErrInvalidAction, a.Target)
		}
		thief.Role, t.Role = t.Role, thief.Role
		thief.HunterCanShoot = thief.Role == RoleHunter
		t.HunterCanShoot = false
		// The robbed player now holds the thief card and must not steal back.
		s.acted[thief.ID] = true
		s.acted[t.ID] = true
		return []Event{
			RoleAssigned{Player: thief.ID, Role: thief.Role},
			RoleAssigned{Player: t.ID, Role: t.Role},
		}, nil
	}
	return nil, fmt.Errorf("%w: thief cannot %q", ErrInvalidAction, a.Action)
}

func (s *Session) hunterShot(hunter *Player, target string) ([]Event, error) {
	if s.pendingHunter != hunter.ID || !hunter.HunterCanShoot {
		return nil, fmt.Errorf("%w: no shot to take", ErrInvalidAction)
	}
	t := s.aliveTarget(target)
	if t == nil || t.ID == hunter.ID {
		return nil, fmt.Errorf("%w: cannot shoot %q", ErrInvalidAction, target)
	}

	hunter.HunterCanShoot = false
	s.pendingHunter = NoPlayer
	events := s.Kill(t.ID)
	return append(events, s.settleVictory()...), nil
}

// loverPair returns the bound pair, or nil when Cupid chose nobody.
func (s *Session) loverPair() []*Player {
	if !s.loversBound {
		return nil
	}
	return []*Player{s.Player(s.lovers[0]), s.Player(s.lovers[1])}
}
