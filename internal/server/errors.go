package server

import "errors"

var (
	// ErrRoomNotFound is returned when joining a room id that is not open.
	ErrRoomNotFound = errors.New("room not found")
	// ErrAlreadyInRoom is returned when a client that already sits in a
	// room tries to create or join another one.
	ErrAlreadyInRoom = errors.New("already in a room")
	// ErrNotInRoom is returned for game messages from a client without a room.
	ErrNotInRoom = errors.New("not in a room")
	// ErrNoRoomAvailable is returned when every room id is in use.
	ErrNoRoomAvailable = errors.New("no room id available")
	// ErrShuttingDown is returned once the registry has begun to shut down.
	ErrShuttingDown = errors.New("server is shutting down")

	errRateLimited = errors.New("rate limit exceeded, message discarded")
)
