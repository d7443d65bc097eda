package game

import "time"

// Event is something the Session wants the outside world to learn. Events
// carrying a recipient are private to that player; the rest are public.
type Event interface {
	event()
}

// RoleAssigned tells one player the role they hold.
type RoleAssigned struct {
	Player PlayerID
	Role   Role
}

// PhaseChanged announces the phase just entered and its deadline length.
type PhaseChanged struct {
	Phase    Phase
	Turn     int
	Duration time.Duration
}

// PlayerDied announces a death.
type PlayerDied struct {
	Player   PlayerID
	Username string
}

// SeerVision reveals a target's role to the seer who asked.
type SeerVision struct {
	Seer   PlayerID
	Target string
	Role   Role
}

// WitchVictim tells the witch who the wolves picked. Victim is empty when
// the wolves picked nobody.
type WitchVictim struct {
	Witch  PlayerID
	Victim string
}

// LoverBound tells a lover who their partner is.
type LoverBound struct {
	Player  PlayerID
	Partner string
}

// HunterRevenge tells a dying hunter they may take one player with them.
type HunterRevenge struct {
	Hunter PlayerID
}

// GameOver announces the end of the game.
type GameOver struct {
	Winner Winner
}

func (RoleAssigned) event()  {}
func (PhaseChanged) event()  {}
func (PlayerDied) event()    {}
func (SeerVision) event()    {}
func (WitchVictim) event()   {}
func (LoverBound) event()    {}
func (HunterRevenge) event() {}
func (GameOver) event()      {}
