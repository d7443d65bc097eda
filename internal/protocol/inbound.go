// Package protocol defines the JSON messages exchanged between game clients
// and the server, and the newline-delimited framing that carries them.
package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Client to server message types.
const (
	TypeCreateRoom  = "create_room"
	TypeJoinRoom    = "join_room"
	TypeDisconnect  = "disconnect"
	TypeChat        = "chat"
	TypeStartGame   = "start_game"
	TypeNightAction = "night_action"
	TypeVote        = "vote"
)

var (
	// ErrMalformed reports a frame that is not a usable JSON message.
	ErrMalformed = errors.New("malformed message")
	// ErrUnknownType reports a well-formed message with an unsupported type.
	ErrUnknownType = errors.New("unknown message type")
)

// RoomID accepts both "1234" and 1234 on the wire and always encodes as a
// string.
type RoomID string

// UnmarshalJSON implements json.Unmarshaler.
func (r *RoomID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RoomID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("room_id must be a string or a number: %w", err)
	}
	if _, err := strconv.ParseInt(n.String(), 10, 64); err != nil {
		return fmt.Errorf("room_id must be an integer: %w", err)
	}
	*r = RoomID(n.String())
	return nil
}

// Inbound is any client message. Only the fields relevant to Type are set.
type Inbound struct {
	Type     string   `json:"type"`
	Username string   `json:"username,omitempty"`
	RoomID   RoomID   `json:"room_id,omitempty"`
	Content  string   `json:"content,omitempty"`
	Action   string   `json:"action,omitempty"`
	Target   string   `json:"target,omitempty"`
	Targets  []string `json:"targets,omitempty"`
}

// Decode parses one frame into an Inbound message and checks that the
// fields its type needs are present.
func Decode(frame []byte) (Inbound, error) {
	var msg Inbound
	if err := json.Unmarshal(frame, &msg); err != nil {
		return Inbound{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	msg.normalizeNames()

	switch msg.Type {
	case TypeCreateRoom:
		if msg.Username == "" {
			return msg, fmt.Errorf("%w: %s needs a username", ErrMalformed, msg.Type)
		}
	case TypeJoinRoom:
		if msg.Username == "" || msg.RoomID == "" {
			return msg, fmt.Errorf("%w: %s needs a username and a room_id", ErrMalformed, msg.Type)
		}
	case TypeNightAction:
		if msg.Action == "" {
			return msg, fmt.Errorf("%w: %s needs an action", ErrMalformed, msg.Type)
		}
	case TypeVote:
		if msg.Target == "" {
			return msg, fmt.Errorf("%w: %s needs a target", ErrMalformed, msg.Type)
		}
	case TypeDisconnect, TypeChat, TypeStartGame:
	case "":
		return msg, fmt.Errorf("%w: missing type", ErrMalformed)
	default:
		return msg, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}

// normalizeNames puts player names in NFC with surrounding blanks removed,
// so "Sébastien" typed on two keyboards is the same seat.
func (m *Inbound) normalizeNames() {
	m.Username = normalizeName(m.Username)
	m.Target = normalizeName(m.Target)
	for i, t := range m.Targets {
		m.Targets[i] = normalizeName(t)
	}
}

func normalizeName(s string) string {
	return norm.NFC.String(strings.TrimSpace(s))
}
