// Package server runs Loup-Garou rooms for clients connected over WebSocket
// or raw TCP.
//
// A Registry owns the connected clients and the room table. Each room is a
// single goroutine that serializes every membership change, game action and
// phase deadline for its game.Session, so the game package itself never
// needs locking. Clients speak newline-delimited JSON defined in the
// protocol package on both transports.
package server
