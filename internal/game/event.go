package game

import (
	"encoding/json"
	"time"
)

// EventType enum for event classification
type EventType uint8

const (
	EventTypeUnknown EventType = iota
	EventShipFired
	EventEnemyFired
	EventEnemyExploded
	EventShipDamaged
	EventEnemySpawned
	EventGameOver
	EventSessionRestarted
)

// EventVersion for backwards compatibility of the journal
const EventVersion uint8 = 1

// Event is a discrete named occurrence emitted by the simulation
type Event struct {
	Version   uint8     `json:"version"`
	Type      EventType `json:"type"`
	Name      string    `json:"name"`
	Timestamp int64     `json:"timestamp"` // Unix nano
	Sequence  uint64    `json:"sequence"`  // Assigned by the event log
	TickNum   uint64    `json:"tickNum"`
	SessionID string    `json:"sessionId"`
	Payload   []byte    `json:"payload"` // JSON-encoded payload
}

// String returns the wire name of the event
func (t EventType) String() string {
	switch t {
	case EventShipFired:
		return "ship-fired"
	case EventEnemyFired:
		return "enemy-fired"
	case EventEnemyExploded:
		return "enemy-exploded"
	case EventShipDamaged:
		return "ship-damaged"
	case EventEnemySpawned:
		return "enemy-spawned"
	case EventGameOver:
		return "game-over"
	case EventSessionRestarted:
		return "session-restarted"
	default:
		return "unknown"
	}
}

// Typed payloads for different event types

// FirePayload describes a shot leaving a muzzle
type FirePayload struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ExplodedPayload describes an enemy destroyed by fire or collision
type ExplodedPayload struct {
	Kind   string  `json:"kind"`
	Points int     `json:"points"` // 0 when destroyed by ramming
	Score  int     `json:"score"`
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Z      float64 `json:"z"`
	Rammed bool    `json:"rammed"`
}

// DamagePayload describes damage taken by the ship
type DamagePayload struct {
	Amount float64 `json:"amount"`
	Shield float64 `json:"shield"`
}

// SpawnPayload describes a new enemy
type SpawnPayload struct {
	Kind string  `json:"kind"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Z    float64 `json:"z"`
}

// GameOverPayload carries the final result
type GameOverPayload struct {
	Score   int     `json:"score"`
	Elapsed float64 `json:"elapsed"`
}

// EncodePayload marshals a payload to JSON bytes
func EncodePayload(payload interface{}) []byte {
	if payload == nil {
		return nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil
	}
	return data
}

// NewEvent creates a new event with the current timestamp
func NewEvent(eventType EventType, tickNum uint64, sessionID string, payload interface{}) Event {
	return Event{
		Version:   EventVersion,
		Type:      eventType,
		Name:      eventType.String(),
		Timestamp: time.Now().UnixNano(),
		TickNum:   tickNum,
		SessionID: sessionID,
		Payload:   EncodePayload(payload),
	}
}

// EventSink receives events after each tick. Implementations must not block.
type EventSink interface {
	HandleEvent(Event)
}

// EventSinkFunc adapts a function to EventSink
type EventSinkFunc func(Event)

func (f EventSinkFunc) HandleEvent(ev Event) { f(ev) }
