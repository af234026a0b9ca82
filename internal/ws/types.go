package ws

import (
	"encoding/json"
)

// MessageType represents the different kinds of messages a session socket carries
type MessageType string

const (
	// client -> server
	MessageTypeMove MessageType = "move"
	MessageTypeUndo MessageType = "undo"
	MessageTypeRedo MessageType = "redo"
	MessageTypeAI   MessageType = "ai"

	// server -> client
	MessageTypeState      MessageType = "state"
	MessageTypeSuggestion MessageType = "suggestion"
	MessageTypeError      MessageType = "error"
)

// Message represents a WebSocket message in our system
type Message struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MovePayload accepts either coordinate notation or explicit squares.
type MovePayload struct {
	Move      string `json:"move,omitempty"`
	From      string `json:"from,omitempty"`
	To        string `json:"to,omitempty"`
	Promotion string `json:"promotion,omitempty"`
}

type AIPayload struct {
	BudgetMs int  `json:"budgetMs,omitempty"`
	Apply    bool `json:"apply"`
}

type ErrorPayload struct {
	Error string `json:"error"`
}

// NewMessage marshals payload into a message of type t.
func NewMessage(t MessageType, payload any) (Message, error) {
	if payload == nil {
		return Message{Type: t}, nil
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return Message{}, err
	}
	return Message{Type: t, Payload: raw}, nil
}

func ErrorMessage(err error) Message {
	raw, _ := json.Marshal(ErrorPayload{Error: err.Error()})
	return Message{Type: MessageTypeError, Payload: raw}
}
