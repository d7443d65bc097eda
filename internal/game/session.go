package game

import (
	"fmt"
	"maps"
	"math/rand/v2"
	"time"
)

// Settings tunes a Session. The zero value of any field falls back to the
// defaults from DefaultSettings.
type Settings struct {
	MinPlayers   int
	MaxPlayers   int
	IncludeThief bool
	Durations    map[Phase]time.Duration
	// Shuffle permutes the role deck. Tests pin it for deterministic deals.
	Shuffle func(n int, swap func(i, j int))
}

// DefaultSettings returns the standard table limits and phase durations.
func DefaultSettings() Settings {
	return Settings{
		MinPlayers: 6,
		MaxPlayers: 16,
		Durations:  DefaultPhaseDurations(),
		Shuffle:    rand.Shuffle,
	}
}

func (st Settings) withDefaults() Settings {
	def := DefaultSettings()
	if st.MinPlayers <= 0 {
		st.MinPlayers = def.MinPlayers
	}
	if st.MaxPlayers <= 0 {
		st.MaxPlayers = def.MaxPlayers
	}
	if st.MaxPlayers < st.MinPlayers {
		st.MaxPlayers = st.MinPlayers
	}
	if st.Durations == nil {
		st.Durations = def.Durations
	} else {
		st.Durations = maps.Clone(st.Durations)
	}
	if st.Shuffle == nil {
		st.Shuffle = def.Shuffle
	}
	return st
}

// Roster is the public snapshot of who sits in a room.
type Roster struct {
	PlayerCount int
	MaxPlayers  int
	Players     []string
}

// Session is one game instance: its players, the phase cycle and all
// pending night and day state.
type Session struct {
	id       string
	settings Settings
	players  []*Player
	// dealt counts the roles of the original deal; it gates phase presence.
	dealt map[Role]int

	started  bool
	over     bool
	winner   Winner
	phase    Phase
	turn     int
	deadline time.Time
	acted    map[PlayerID]bool

	pendingWolfVictim  PlayerID
	pendingWitchVictim PlayerID
	witchSaved         bool
	witchKilled        bool

	lovers      [2]PlayerID
	loversBound bool

	seerLastResult PlayerID
	votes          map[PlayerID]PlayerID
	captainVote    PlayerID
	pendingHunter  PlayerID
}

// NewSession creates a session in the Waiting phase.
func NewSession(id string, settings Settings) *Session {
	return &Session{
		id:                 id,
		settings:           settings.withDefaults(),
		dealt:              make(map[Role]int),
		phase:              PhaseWaiting,
		acted:              make(map[PlayerID]bool),
		pendingWolfVictim:  NoPlayer,
		pendingWitchVictim: NoPlayer,
		lovers:             [2]PlayerID{NoPlayer, NoPlayer},
		seerLastResult:     NoPlayer,
		votes:              make(map[PlayerID]PlayerID),
		captainVote:        NoPlayer,
		pendingHunter:      NoPlayer,
	}
}

// ID returns the room identifier.
func (s *Session) ID() string { return s.id }

// Phase returns the current phase.
func (s *Session) Phase() Phase { return s.phase }

// Turn returns the current turn; 0 until the game starts.
func (s *Session) Turn() int { return s.turn }

// Started reports whether roles have been dealt.
func (s *Session) Started() bool { return s.started }

// Over reports whether a winner has been decided.
func (s *Session) Over() bool { return s.over }

// Winner returns the decided winner, WinnerNone while the game runs.
func (s *Session) Winner() Winner { return s.winner }

// Deadline returns when the current phase expires. The zero time means the
// phase has no deadline.
func (s *Session) Deadline() time.Time { return s.deadline }

// MaxPlayers returns the table capacity.
func (s *Session) MaxPlayers() int { return s.settings.MaxPlayers }

// Dealt returns how many of each role the original deal contained.
func (s *Session) Dealt() map[Role]int { return maps.Clone(s.dealt) }

// PendingWolfVictim returns the wolves' current choice for tonight.
func (s *Session) PendingWolfVictim() PlayerID { return s.pendingWolfVictim }

// PendingWitchVictim returns the witch's poison target for tonight.
func (s *Session) PendingWitchVictim() PlayerID { return s.pendingWitchVictim }

// WitchFlags reports whether the witch saved or poisoned someone tonight.
func (s *Session) WitchFlags() (saved, killed bool) { return s.witchSaved, s.witchKilled }

// SeerLastResult returns the last player the seer looked at.
func (s *Session) SeerLastResult() PlayerID { return s.seerLastResult }

// Lovers returns the pair bound by Cupid, if any.
func (s *Session) Lovers() (PlayerID, PlayerID, bool) {
	return s.lovers[0], s.lovers[1], s.loversBound
}

// Roster returns the public seat list in join order.
func (s *Session) Roster() Roster {
	present := s.Players()
	names := make([]string, 0, len(present))
	for _, p := range present {
		names = append(names, p.Username)
	}
	return Roster{
		PlayerCount: len(names),
		MaxPlayers:  s.settings.MaxPlayers,
		Players:     names,
	}
}

// AddPlayer seats a new player. Seating closes once the game has started.
func (s *Session) AddPlayer(username string) (PlayerID, error) {
	if s.started {
		return NoPlayer, ErrGameAlreadyStarted
	}
	if s.PresentCount() >= s.settings.MaxPlayers {
		return NoPlayer, ErrRoomFull
	}
	if username == "" {
		return NoPlayer, ErrInvalidUsername
	}
	if s.PlayerByName(username) != nil {
		return NoPlayer, fmt.Errorf("%w: %q", ErrUsernameTaken, username)
	}

	id := PlayerID(len(s.players))
	s.players = append(s.players, newPlayer(id, username))
	return id, nil
}

// RemovePlayer frees the seat of a departing player. Leaving a running game
// counts as a death: the lover cascade applies but a departing hunter does
// not get to shoot.
func (s *Session) RemovePlayer(id PlayerID) []Event {
	p := s.Player(id)
	if p == nil || !p.Present {
		return nil
	}
	p.Present = false

	if !s.started {
		p.Alive = false
		return nil
	}
	if s.over {
		return nil
	}

	events := s.Kill(id)
	if s.pendingHunter == id {
		s.pendingHunter = NoPlayer
		p.HunterCanShoot = false
	}
	return append(events, s.settleVictory()...)
}

// Start deals the roles and enters the first phase of turn 1.
func (s *Session) Start(now time.Time) ([]Event, error) {
	if s.started {
		return nil, ErrGameAlreadyStarted
	}
	seated := s.Players()
	n := len(seated)
	if n < s.settings.MinPlayers {
		return nil, fmt.Errorf("%w: need at least %d, have %d", ErrNotEnoughPlayers, s.settings.MinPlayers, n)
	}
	if n > s.settings.MaxPlayers {
		return nil, ErrRoomFull
	}

	deck, err := RoleDeck(n, s.settings.IncludeThief)
	if err != nil {
		return nil, err
	}
	s.settings.Shuffle(len(deck), func(i, j int) {
		deck[i], deck[j] = deck[j], deck[i]
	})

	events := make([]Event, 0, n+1)
	for i, p := range seated {
		p.Role = deck[i]
		p.HunterCanShoot = p.Role == RoleHunter
		s.dealt[p.Role]++
		events = append(events, RoleAssigned{Player: p.ID, Role: p.Role})
	}
	s.started = true

	return append(events, s.Transition(now)...), nil
}

// Transition is the single phase change path, used both when a phase is
// satisfied early and when its deadline expires. It settles the phase being
// left, moves on, applies entry effects and evaluates victory.
func (s *Session) Transition(now time.Time) []Event {
	if !s.started || s.over {
		return nil
	}

	var events []Event
	if s.pendingHunter != NoPlayer {
		if h := s.Player(s.pendingHunter); h != nil {
			h.HunterCanShoot = false
		}
		s.pendingHunter = NoPlayer
	}

	if s.phase == PhaseDayVote {
		if target := s.ResolveVotes(); target != NoPlayer {
			events = append(events, s.Kill(target)...)
		}
		if end := s.settleVictory(); end != nil {
			return append(events, end...)
		}
	}

	s.advancePhase(now)
	events = append(events, PhaseChanged{
		Phase:    s.phase,
		Turn:     s.turn,
		Duration: s.PhaseDuration(s.phase),
	})
	events = append(events, s.enterPhase()...)
	return append(events, s.settleVictory()...)
}

func (s *Session) enterPhase() []Event {
	var events []Event
	switch s.phase {
	case PhaseDayDiscussion:
		events = s.ResolveNightEnd()
	case PhaseNightWitch:
		victim := ""
		if v := s.Player(s.pendingWolfVictim); v != nil {
			victim = v.Username
		}
		for _, w := range s.aliveWithRole(RoleWitch) {
			events = append(events, WitchVictim{Witch: w.ID, Victim: victim})
		}
	case PhaseNightLovers:
		if !s.loversBound {
			break
		}
		for i, id := range s.lovers {
			p := s.Player(id)
			partner := s.Player(s.lovers[1-i])
			if p.Alive && partner != nil {
				events = append(events, LoverBound{Player: id, Partner: partner.Username})
			}
		}
	}
	return events
}

// Satisfied reports whether every actor the current phase waits for has
// acted. A phase whose gating role has no living holder is satisfied at
// once. DayDiscussion only ends on its deadline, and no phase ends early
// while a dead hunter still holds a shot.
func (s *Session) Satisfied() bool {
	if !s.started || s.over || s.pendingHunter != NoPlayer {
		return false
	}
	switch s.phase {
	case PhaseNightWerewolf:
		return s.allActed(s.aliveWithRole(RoleWerewolf))
	case PhaseNightSeer:
		return s.allActed(s.aliveWithRole(RoleSeer))
	case PhaseNightCupid:
		return s.allActed(s.aliveWithRole(RoleCupid))
	case PhaseNightThief:
		return s.allActed(s.aliveWithRole(RoleThief))
	case PhaseNightLovers:
		var lovers []*Player
		for _, p := range s.alivePlayers() {
			if p.IsLover {
				lovers = append(lovers, p)
			}
		}
		return s.allActed(lovers)
	case PhaseNightWitch:
		for _, w := range s.aliveWithRole(RoleWitch) {
			if !s.acted[w.ID] && s.witchCanAct(w) {
				return false
			}
		}
		return true
	case PhaseDayVote:
		for _, p := range s.alivePlayers() {
			if !p.HasVotedThisRound {
				return false
			}
		}
		return true
	}
	return false
}

func (s *Session) allActed(actors []*Player) bool {
	for _, p := range actors {
		if !s.acted[p.ID] {
			return false
		}
	}
	return true
}

func (s *Session) settleVictory() []Event {
	w := s.CheckVictory()
	if w == WinnerNone {
		return nil
	}
	s.over = true
	s.winner = w
	s.deadline = time.Time{}
	if h := s.Player(s.pendingHunter); h != nil {
		h.HunterCanShoot = false
	}
	s.pendingHunter = NoPlayer
	return []Event{GameOver{Winner: w}}
}
