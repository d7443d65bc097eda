package game

// PlayerID is a stable index into a Session's player arena. It stays valid
// for the whole life of the Session, including after the player leaves.
type PlayerID int

// NoPlayer marks an empty player reference.
const NoPlayer PlayerID = -1

// Player is the per-seat game state. Players are owned by their Session and
// only referenced elsewhere by PlayerID.
type Player struct {
	ID       PlayerID
	Username string
	Role     Role
	Alive    bool
	// Present is false once the connection behind the seat has left.
	Present bool

	IsLover bool
	Partner PlayerID

	HasVotedThisRound bool
	WitchHealUsed     bool
	WitchKillUsed     bool
	HunterCanShoot    bool
	IsCaptain         bool
}

func newPlayer(id PlayerID, username string) *Player {
	return &Player{
		ID:       id,
		Username: username,
		Alive:    true,
		Present:  true,
		Partner:  NoPlayer,
	}
}

// Player returns the seat with the given id, or nil.
func (s *Session) Player(id PlayerID) *Player {
	if id < 0 || int(id) >= len(s.players) {
		return nil
	}
	return s.players[id]
}

// PlayerByName looks up a present player by username.
func (s *Session) PlayerByName(username string) *Player {
	for _, p := range s.players {
		if p.Present && p.Username == username {
			return p
		}
	}
	return nil
}

// Players returns the present players in join order.
func (s *Session) Players() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Present {
			out = append(out, p)
		}
	}
	return out
}

// PresentCount returns how many seats still have a connection behind them.
func (s *Session) PresentCount() int {
	n := 0
	for _, p := range s.players {
		if p.Present {
			n++
		}
	}
	return n
}

func (s *Session) alivePlayers() []*Player {
	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		if p.Alive {
			out = append(out, p)
		}
	}
	return out
}

func (s *Session) aliveWithRole(r Role) []*Player {
	var out []*Player
	for _, p := range s.players {
		if p.Alive && p.Role == r {
			out = append(out, p)
		}
	}
	return out
}

// aliveTarget resolves a target username to a living player.
func (s *Session) aliveTarget(username string) *Player {
	p := s.PlayerByName(username)
	if p == nil || !p.Alive {
		return nil
	}
	return p
}
