// Package game implements the Loup-Garou session state machine: role
// assignment, the night/day phase cycle, night actions, voting, deaths and
// victory evaluation.
//
// A Session is not safe for concurrent use. The server package serializes
// every call for a room through that room's single event loop.
package game

import "fmt"

// Role is the secret role dealt to a player. The string value is the name
// shown to players.
type Role string

// Roles known to the game.
const (
	RoleNone       Role = ""
	RoleVillager   Role = "Villageois"
	RoleWerewolf   Role = "Loup-Garou"
	RoleWitch      Role = "Sorcière"
	RoleSeer       Role = "Voyante"
	RoleCupid      Role = "Cupidon"
	RoleHunter     Role = "Chasseur"
	RoleLittleGirl Role = "Petite Fille"
	RoleThief      Role = "Voleur"
)

// String returns the display name of the role.
func (r Role) String() string {
	return string(r)
}

// IsWolf reports whether the role plays for the werewolves.
func (r Role) IsWolf() bool {
	return r == RoleWerewolf
}

// RoleDeck builds the multiset of roles for a table of n players. The
// returned slice always has length n; seats without a special role are
// filled with villagers. With includeThief one villager seat becomes the
// Thief.
func RoleDeck(n int, includeThief bool) ([]Role, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: cannot deal roles to %d players", ErrNotEnoughPlayers, n)
	}

	var deck []Role
	switch {
	case n <= 8:
		deck = []Role{RoleWerewolf, RoleWerewolf, RoleSeer, RoleWitch}
	case n <= 12:
		deck = []Role{RoleWerewolf, RoleWerewolf, RoleSeer, RoleWitch, RoleHunter, RoleCupid}
	default:
		deck = []Role{RoleWerewolf, RoleWerewolf, RoleWerewolf, RoleSeer, RoleWitch, RoleHunter, RoleCupid, RoleLittleGirl}
	}

	if len(deck) > n {
		deck = deck[:n]
	}
	if includeThief && len(deck) < n {
		deck = append(deck, RoleThief)
	}
	for len(deck) < n {
		deck = append(deck, RoleVillager)
	}
	return deck, nil
}
