package server

import (
	"strings"

	"github.com/google/uuid"
)

// peer is a room member as the room sees it: a stable connection identity
// and a non-blocking way to deliver one frame.
type peer interface {
	ID() uuid.UUID
	Send(frame []byte) bool
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	if err == nil {
		return true
	}
	errStr := err.Error()
	return strings.Contains(errStr, "use of closed network connection") ||
		strings.Contains(errStr, "websocket: close sent") ||
		strings.Contains(errStr, "broken pipe") ||
		strings.Contains(errStr, "connection reset by peer")
}
