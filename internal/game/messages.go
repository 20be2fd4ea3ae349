package game

import (
	"encoding/json"
	"fmt"
)

// Message type for WebSocket communication between client and server.
type MessageType string

const (
	MsgTypeStart MessageType = "start" // Client starts a new game
	MsgTypeFlip  MessageType = "flip"  // Client flips a card
	MsgTypeMenu  MessageType = "menu"  // Client returns to the menu
	MsgTypeSound MessageType = "sound" // Client toggles sound
	MsgTypeState MessageType = "state" // Server sends the full session snapshot
	MsgTypeEvent MessageType = "event" // Server forwards a game event
	MsgTypeError MessageType = "error" // Server sends an error message
)

// WsMessage represents a WebSocket message.
type WsMessage struct {
	Type    MessageType     `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewWsMessage creates a new WsMessage with a marshaled payload.
func NewWsMessage(msgType MessageType, payload interface{}) (WsMessage, error) {
	if payload == nil {
		return WsMessage{Type: msgType}, nil
	}
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return WsMessage{}, fmt.Errorf("failed to marshal payload: %w", err)
	}
	return WsMessage{
		Type:    msgType,
		Payload: payloadBytes,
	}, nil
}

// Parse unmarshals the message payload into one of the message types (StartMessage, FlipMessage, etc.)
func (m *WsMessage) Parse() (any, error) {
	var target any
	switch m.Type {
	case MsgTypeStart:
		target = &StartMessage{}
	case MsgTypeFlip:
		target = &FlipMessage{}
	case MsgTypeMenu:
		target = &MenuMessage{}
	case MsgTypeSound:
		target = &SoundMessage{}
	case MsgTypeState:
		target = &StateMessage{}
	case MsgTypeEvent:
		target = &EventMessage{}
	case MsgTypeError:
		target = &ErrorMessage{}
	default:
		return nil, fmt.Errorf("unknown message type: %s", m.Type)
	}

	if len(m.Payload) == 0 {
		return target, nil
	}

	err := json.Unmarshal(m.Payload, target)
	return target, err
}

// StartMessage is the payload for MsgTypeStart
type StartMessage struct {
	Difficulty string `json:"difficulty"`
}

// FlipMessage is the payload for MsgTypeFlip
type FlipMessage struct {
	Position int `json:"position"`
}

// MenuMessage: empty.
type MenuMessage struct{}

// SoundMessage is the payload for MsgTypeSound
type SoundMessage struct {
	Enabled bool `json:"enabled"`
}

// StateMessage is the payload for MsgTypeState
type StateMessage struct {
	Snapshot Snapshot `json:"snapshot"`
}

// EventMessage is the payload for MsgTypeEvent.
// Payload is kept raw: decode it according to Kind with DecodePayload.
type EventMessage struct {
	Kind    EventKind       `json:"kind"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// NewEventMessage wraps a game event into a MsgTypeEvent message.
func NewEventMessage(ev Event) (WsMessage, error) {
	msg := EventMessage{Kind: ev.Kind}
	if ev.Payload != nil {
		raw, err := json.Marshal(ev.Payload)
		if err != nil {
			return WsMessage{}, fmt.Errorf("failed to marshal %s event: %w", ev.Kind, err)
		}
		msg.Payload = raw
	}
	return NewWsMessage(MsgTypeEvent, msg)
}

// DecodePayload unmarshals the event payload into the type matching Kind.
func (m *EventMessage) DecodePayload() (any, error) {
	var target any
	switch m.Kind {
	case EventMatchFound, EventMatchFailed:
		target = &MatchPayload{}
	case EventCardsHidden:
		target = &CardsHiddenPayload{}
	case EventPhaseComplete:
		target = &PhaseCompletePayload{}
	case EventPhaseStarted:
		target = &PhaseStartedPayload{}
	case EventGameStopped:
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown event kind: %s", m.Kind)
	}
	if len(m.Payload) == 0 {
		return target, nil
	}
	err := json.Unmarshal(m.Payload, target)
	return target, err
}

// ErrorMessage is the payload for MsgTypeError
type ErrorMessage struct {
	Message string `json:"message"`
}
