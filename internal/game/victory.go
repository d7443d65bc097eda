package game

// Winner names the side that won.
type Winner string

// Possible outcomes. WinnerNobody covers a table where everyone died at once.
const (
	WinnerNone       Winner = ""
	WinnerWerewolves Winner = "werewolves"
	WinnerVillagers  Winner = "villagers"
	WinnerLovers     Winner = "lovers"
	WinnerNobody     Winner = "nobody"
)

// CheckVictory evaluates the win conditions on the living players.
//
// The lovers win when they are the last two alive, unless both are
// werewolves, in which case the wolves' own condition decides. Lovers are
// checked first so a mixed pair is not handed to the wolves by V <= W.
func (s *Session) CheckVictory() Winner {
	if !s.started {
		return WinnerNone
	}

	wolves, others := 0, 0
	for _, p := range s.alivePlayers() {
		if p.Role.IsWolf() {
			wolves++
		} else {
			others++
		}
	}

	if pair := s.loverPair(); pair != nil && wolves+others == 2 {
		a, b := pair[0], pair[1]
		if a.Alive && b.Alive && !(a.Role.IsWolf() && b.Role.IsWolf()) {
			return WinnerLovers
		}
	}

	switch {
	case wolves+others == 0:
		return WinnerNobody
	case wolves == 0:
		return WinnerVillagers
	case others <= wolves:
		return WinnerWerewolves
	}
	return WinnerNone
}
