package game

import "errors"

// Rejections reported back to the offending client. A call that returns one
// of these leaves the Session unchanged.
var (
	ErrRoomFull           = errors.New("room is full")
	ErrGameAlreadyStarted = errors.New("game already started")
	ErrNotEnoughPlayers   = errors.New("not enough players")
	ErrUsernameTaken      = errors.New("username already taken in this room")
	ErrInvalidUsername    = errors.New("invalid username")
	ErrInvalidAction      = errors.New("invalid action")
	ErrInvalidVote        = errors.New("invalid vote")
	ErrGameOver           = errors.New("game is over")
)
