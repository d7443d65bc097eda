package protocol

import "encoding/json"

// Server to client message types.
const (
	TypeRoomCreated        = "room_created"
	TypeRoomJoined         = "room_joined"
	TypeRoomNotFound       = "room_not_found"
	TypeGameAlreadyStarted = "game_already_started"
	TypeRoomFull           = "room_full"
	TypePlayerJoined       = "player_joined"
	TypePlayerLeft         = "player_left"
	TypeGameStarted        = "game_started"
	TypePhaseChange        = "phase_change"
	TypePhaseTimer         = "phase_timer"
	TypeActionResult       = "action_result"
	TypeSeerResult         = "seer_result"
	TypePlayerDeath        = "player_death"
	TypeVictimInfo         = "victim_info"
	TypeLoverInfo          = "lover_info"
	TypeHunterRevenge      = "chasseur_revenge"
	TypeGameOver           = "game_over"
)

// PlayersInfo is the roster snapshot attached to room membership messages.
type PlayersInfo struct {
	PlayerCount int      `json:"player_count"`
	MaxPlayers  int      `json:"max_players"`
	Players     []string `json:"players"`
}

// RoomMessage covers room_created and room_joined.
type RoomMessage struct {
	Type        string      `json:"type"`
	RoomID      string      `json:"room_id"`
	PlayersInfo PlayersInfo `json:"players_info"`
}

// RosterMessage covers player_joined and player_left.
type RosterMessage struct {
	Type        string      `json:"type"`
	Username    string      `json:"username"`
	PlayersInfo PlayersInfo `json:"players_info"`
}

// Notice covers the rejection messages and chasseur_revenge, which only
// carry a human readable text.
type Notice struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Chat is relayed verbatim to the whole room.
type Chat struct {
	Type     string `json:"type"`
	Username string `json:"username"`
	Content  string `json:"content"`
}

// GameStarted tells one player their role.
type GameStarted struct {
	Type string `json:"type"`
	Role string `json:"role"`
}

// PhaseChange announces the phase just entered.
type PhaseChange struct {
	Type  string `json:"type"`
	Phase string `json:"phase"`
	Turn  int    `json:"turn"`
}

// PhaseTimer announces how many seconds the phase lasts.
type PhaseTimer struct {
	Type     string `json:"type"`
	Duration int    `json:"duration"`
}

// ActionResult answers a start_game, night_action or vote.
type ActionResult struct {
	Type    string `json:"type"`
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

// SeerResult reveals a role to the seer.
type SeerResult struct {
	Type   string `json:"type"`
	Target string `json:"target"`
	Role   string `json:"role"`
}

// PlayerDeath announces a death to the room.
type PlayerDeath struct {
	Type     string `json:"type"`
	Username string `json:"username"`
}

// VictimInfo tells the witch who the wolves chose.
type VictimInfo struct {
	Type   string `json:"type"`
	Victim string `json:"victim"`
}

// LoverInfo tells a lover who their partner is.
type LoverInfo struct {
	Type    string `json:"type"`
	Partner string `json:"partner"`
}

// GameOver names the winning side.
type GameOver struct {
	Type   string `json:"type"`
	Winner string `json:"winner"`
}

// Encode marshals an outbound message into a single frame.
func Encode(msg any) ([]byte, error) {
	return json.Marshal(msg)
}
