package ws

import (
	"encoding/json"
	"fmt"
)

// Relay -> client message types
const (
	MsgJoined       = "joined"
	MsgPlayerJoined = "player-joined"
	MsgPlayerLeft   = "player-left"
)

// Client -> room message types, relayed verbatim to the other members
const (
	MsgStart = "start"
	MsgInput = "input"
	MsgState = "state"
)

// Relayed reports whether the relay fans out messages of type t.
func Relayed(t string) bool {
	switch t {
	case MsgStart, MsgInput, MsgState:
		return true
	}
	return false
}

// Role is a connection's seat in a room.
type Role string

const (
	RoleP1        Role = "p1"
	RoleP2        Role = "p2"
	RoleSpectator Role = "spectator"
)

// Host reports whether the role runs the authoritative simulation.
func (r Role) Host() bool { return r == RoleP1 }

// Player reports whether the role drives an actor.
func (r Role) Player() bool { return r == RoleP1 || r == RoleP2 }

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
	// Raw is the frame as received, kept so the relay can forward it untouched.
	Raw []byte `json:"-"`
}

type JoinedPayload struct {
	Room string `json:"room"`
	Role Role   `json:"role"`
}

// PeerPayload is carried by player-joined and player-left.
type PeerPayload struct {
	Role Role   `json:"role"`
	ID   string `json:"id"`
}

type StartPayload struct {
	Room       string `json:"room"`
	Difficulty string `json:"difficulty"`
	TimeLeft   int    `json:"timeLeft"`
}

type Keys struct {
	LeftPressed     bool    `json:"leftPressed"`
	RightPressed    bool    `json:"rightPressed"`
	UpPressed       bool    `json:"upPressed"`
	DownPressed     bool    `json:"downPressed"`
	IsChargingPower bool    `json:"isChargingPower"`
	PowerLevel      float64 `json:"powerLevel"`
	Kick            bool    `json:"kick,omitempty"`
}

type InputPayload struct {
	Role Role   `json:"role"`
	Room string `json:"room"`
	Keys Keys   `json:"keys"`
}

type StatePayload struct {
	Room string          `json:"room"`
	Data json.RawMessage `json:"data"`
}

func Encode(msg Message) ([]byte, error) {
	return json.Marshal(msg)
}

func Decode(data []byte) (Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return Message{}, fmt.Errorf("decode message: %w", err)
	}
	if msg.Type == "" {
		return Message{}, fmt.Errorf("decode message: missing type")
	}
	return msg, nil
}

func NewMessage(typ string, payload any) (Message, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("encode %s payload: %w", typ, err)
	}
	return Message{
		Type:    typ,
		Payload: json.RawMessage(data),
	}, nil
}

// DecodePayload unmarshals msg's payload into v.
func DecodePayload[T any](msg Message) (T, error) {
	var v T
	if err := json.Unmarshal(msg.Payload, &v); err != nil {
		return v, fmt.Errorf("decode %s payload: %w", msg.Type, err)
	}
	return v, nil
}
