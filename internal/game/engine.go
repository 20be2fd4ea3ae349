package game

import (
	"fmt"
	"slices"
	"time"
)

// Status is the position of the engine in its flip/evaluate cycle.
type Status int

const (
	// StatusStopped: never started, or discarded.
	StatusStopped Status = iota
	// StatusIdle: no card face-up.
	StatusIdle
	// StatusAwaitingSecondFlip: one card face-up.
	StatusAwaitingSecondFlip
	// StatusEvaluating: two cards face-up, waiting for the reveal delay.
	StatusEvaluating
	// StatusPhaseComplete: all pairs matched. Terminal.
	StatusPhaseComplete
)

func (s Status) String() string {
	switch s {
	case StatusStopped:
		return "stopped"
	case StatusIdle:
		return "idle"
	case StatusAwaitingSecondFlip:
		return "awaiting_second_flip"
	case StatusEvaluating:
		return "evaluating"
	case StatusPhaseComplete:
		return "phase_complete"
	default:
		return "unknown"
	}
}

// Engine is the flip/match state machine of one deck.
//
// It owns the face-up and matched sets, the move counter and the phase clock.
// Results are reported to the Listener; the engine never touches the score.
// Engine is not safe for concurrent use: Flip, Tick and the scheduled reveal
// callbacks must all run on the same goroutine.
type Engine struct {
	listener    Listener
	scheduler   Scheduler
	revealDelay time.Duration

	deck     Deck
	faceUp   []int
	matched  map[string]bool
	order    []string // matched instance IDs, in the order they were matched
	moves    int
	elapsed  int
	running  bool // Clock is running.
	started  bool
	complete bool

	// generation is bumped on every Start and Discard, so reveal callbacks
	// scheduled for an earlier deck are ignored.
	generation   uint64
	pendingClear bool
}

// NewEngine creates a stopped engine. Call Start to deal a deck.
// If revealDelay is 0, DefaultRevealDelay is used.
func NewEngine(listener Listener, scheduler Scheduler, revealDelay time.Duration) *Engine {
	if revealDelay <= 0 {
		revealDelay = DefaultRevealDelay
	}
	if listener == nil {
		listener = ListenerFunc(func(Event) {})
	}
	return &Engine{
		listener:    listener,
		scheduler:   scheduler,
		revealDelay: revealDelay,
	}
}

// Start resets the engine to play the given deck and starts the clock.
func (e *Engine) Start(deck Deck) {
	e.generation++
	e.deck = deck
	e.faceUp = make([]int, 0, 2)
	e.matched = make(map[string]bool, len(deck))
	e.order = make([]string, 0, len(deck))
	e.moves = 0
	e.elapsed = 0
	e.started = true
	e.complete = false
	e.pendingClear = false
	e.running = len(deck) > 0
}

// Discard ends the lifecycle of the engine: later flips fail, ticks and
// pending reveal callbacks are ignored.
func (e *Engine) Discard() {
	e.generation++
	e.started = false
	e.running = false
	e.pendingClear = false
}

// Flip turns the card at position face-up.
//
// Flipping is silently ignored if two cards are already face-up, if the card
// is already face-up, or if it is matched. When the second card is turned,
// the pair is evaluated immediately and the result is sent to the listener.
func (e *Engine) Flip(position int) error {
	if !e.started {
		return ErrEngineStopped
	}
	if position < 0 || position >= len(e.deck) {
		return fmt.Errorf("%w: %d not in [0, %d)", ErrInvalidPosition, position, len(e.deck))
	}
	if len(e.faceUp) >= 2 || e.IsFaceUp(position) || e.matched[e.deck[position].InstanceID] {
		return nil
	}

	e.faceUp = append(e.faceUp, position)
	if len(e.faceUp) == 2 {
		e.evaluate()
	}
	e.checkInvariants()
	return nil
}

// evaluate resolves the two face-up cards and schedules them to be cleared.
func (e *Engine) evaluate() {
	positions := [2]int{e.faceUp[0], e.faceUp[1]}
	first, second := e.deck[positions[0]], e.deck[positions[1]]
	generation := e.generation
	e.moves++
	e.pendingClear = true

	if first.Identity == second.Identity {
		e.resolveMatch(positions, first, second)
	} else {
		e.listener.HandleEvent(Event{
			Kind:    EventMatchFailed,
			Payload: MatchPayload{Positions: positions, Moves: e.moves},
		})
	}

	// The listener may have discarded or restarted the engine.
	if generation == e.generation {
		e.scheduleClear(generation, positions)
	}
}

func (e *Engine) resolveMatch(positions [2]int, first, second CardInstance) {
	for _, card := range []CardInstance{first, second} {
		e.matched[card.InstanceID] = true
		e.order = append(e.order, card.InstanceID)
	}
	if len(e.matched) == len(e.deck) {
		e.complete = true
		e.running = false
	}
	e.listener.HandleEvent(Event{
		Kind:    EventMatchFound,
		Payload: MatchPayload{Positions: positions, Moves: e.moves},
	})
	if e.complete {
		e.listener.HandleEvent(Event{
			Kind: EventPhaseComplete,
			Payload: PhaseCompletePayload{
				Moves:          e.moves,
				ElapsedSeconds: e.elapsed,
			},
		})
	}
}

// scheduleClear hides the evaluated pair after the reveal delay. The callback
// clears at most once, and only if the engine still plays the same deck.
func (e *Engine) scheduleClear(generation uint64, positions [2]int) {
	if e.scheduler == nil {
		e.clearFaceUp(generation, positions)
		return
	}
	e.scheduler.AfterFunc(e.revealDelay, func() {
		e.clearFaceUp(generation, positions)
	})
}

func (e *Engine) clearFaceUp(generation uint64, positions [2]int) {
	if generation != e.generation || !e.pendingClear {
		return
	}
	e.pendingClear = false
	e.faceUp = e.faceUp[:0]
	e.listener.HandleEvent(Event{
		Kind:    EventCardsHidden,
		Payload: CardsHiddenPayload{Positions: positions},
	})
}

// Tick advances the phase clock by one second. It is a no-op once the phase
// is complete or the engine is stopped.
func (e *Engine) Tick() {
	if !e.running {
		return
	}
	e.elapsed++
}

func (e *Engine) checkInvariants() {
	if len(e.faceUp) > 2 {
		panic(fmt.Sprintf("match engine: %d cards face-up", len(e.faceUp)))
	}
	if len(e.matched) > len(e.deck) {
		panic(fmt.Sprintf("match engine: %d cards matched in a deck of %d", len(e.matched), len(e.deck)))
	}
}

// Status returns where the engine is in its cycle.
func (e *Engine) Status() Status {
	switch {
	case !e.started:
		return StatusStopped
	case e.complete:
		return StatusPhaseComplete
	case len(e.faceUp) == 2:
		return StatusEvaluating
	case len(e.faceUp) == 1:
		return StatusAwaitingSecondFlip
	default:
		return StatusIdle
	}
}

// Deck returns the deck being played. The caller must not modify it.
func (e *Engine) Deck() Deck {
	return e.deck
}

// FaceUp returns the positions currently face-up and not yet cleared.
func (e *Engine) FaceUp() []int {
	return slices.Clone(e.faceUp)
}

// IsFaceUp reports whether the card at position is currently face-up.
func (e *Engine) IsFaceUp(position int) bool {
	return slices.Contains(e.faceUp, position)
}

// Matched returns the matched instance IDs, in the order they were matched.
func (e *Engine) Matched() []string {
	return slices.Clone(e.order)
}

// IsMatched reports whether the card instance is part of a resolved pair.
func (e *Engine) IsMatched(instanceID string) bool {
	return e.matched[instanceID]
}

// Moves returns the number of evaluated pairs.
func (e *Engine) Moves() int {
	return e.moves
}

// ElapsedSeconds returns the phase clock.
func (e *Engine) ElapsedSeconds() int {
	return e.elapsed
}

// Complete reports whether every pair of the deck has been matched.
func (e *Engine) Complete() bool {
	return e.complete
}
