package game

import "time"

// EventKind identifies events emitted by the engine and the session.
type EventKind string

const (
	EventMatchFound    EventKind = "match_found"
	EventMatchFailed   EventKind = "match_failed"
	EventCardsHidden   EventKind = "cards_hidden"
	EventPhaseComplete EventKind = "phase_complete"
	EventPhaseStarted  EventKind = "phase_started"
	EventGameStopped   EventKind = "game_stopped"
)

// Event is a notification for the presentation layer. Payload holds one of the
// *Payload types below, matching Kind.
type Event struct {
	Kind    EventKind `json:"kind"`
	Payload any       `json:"payload,omitempty"`
}

// MatchPayload is carried by EventMatchFound and EventMatchFailed.
type MatchPayload struct {
	Positions [2]int `json:"positions"`
	Moves     int    `json:"moves"`
	Score     int    `json:"score"` // Session score after the result was applied.
}

// CardsHiddenPayload is carried by EventCardsHidden, once the reveal delay is over.
type CardsHiddenPayload struct {
	Positions [2]int `json:"positions"`
}

// PhaseCompletePayload is carried by EventPhaseComplete.
type PhaseCompletePayload struct {
	Phase          int `json:"phase"`
	Moves          int `json:"moves"`
	ElapsedSeconds int `json:"elapsed_seconds"`
	Score          int `json:"score"`
}

// PhaseStartedPayload is carried by EventPhaseStarted, for every new deck.
type PhaseStartedPayload struct {
	Phase      int        `json:"phase"`
	Difficulty Difficulty `json:"difficulty"`
	Pairs      int        `json:"pairs"`
}

// Listener receives events. Implementations are called synchronously, from
// within the engine or session call that produced the event.
type Listener interface {
	HandleEvent(ev Event)
}

// ListenerFunc adapts a function to the Listener interface.
type ListenerFunc func(ev Event)

func (f ListenerFunc) HandleEvent(ev Event) { f(ev) }

// Scheduler runs fn once after delay. The engine uses it for the reveal delay.
//
// Implementations must call fn from the same goroutine that drives the engine:
// the engine is not safe for concurrent use.
type Scheduler interface {
	AfterFunc(delay time.Duration, fn func())
}

// SchedulerFunc adapts a function to the Scheduler interface.
type SchedulerFunc func(delay time.Duration, fn func())

func (f SchedulerFunc) AfterFunc(delay time.Duration, fn func()) { f(delay, fn) }
