package game

import (
	"fmt"
	"math/rand/v2"
	"time"

	"k8s.io/klog/v2"
)

// SessionState is the part of a play session that survives phase changes.
type SessionState struct {
	Phase      int        `json:"phase"`
	Score      int        `json:"score"`
	Difficulty Difficulty `json:"difficulty"`
}

// SessionOptions configures a Session. Only Catalog is required.
type SessionOptions struct {
	Catalog     *Catalog
	Scheduler   Scheduler     // Used by every engine of the session, for the reveal delay.
	RevealDelay time.Duration // Defaults to DefaultRevealDelay.
	Observer    Listener      // Receives every event, after the session applied it.
	Rand        *rand.Rand    // Deck shuffling; defaults to a randomly seeded source.
}

// Session is the game controller of one player: it owns phase, score and
// difficulty, builds decks and creates one Engine per phase.
//
// Like Engine, it is not safe for concurrent use.
type Session struct {
	catalog     *Catalog
	scheduler   Scheduler
	revealDelay time.Duration
	observer    Listener
	rng         *rand.Rand

	state        SessionState
	engine       *Engine
	soundEnabled bool
}

// NewSession creates a session sitting at the menu, with the Easy difficulty selected.
func NewSession(opts SessionOptions) *Session {
	if opts.Catalog == nil {
		opts.Catalog = DefaultCatalog()
	}
	if opts.Observer == nil {
		opts.Observer = ListenerFunc(func(Event) {})
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	return &Session{
		catalog:      opts.Catalog,
		scheduler:    opts.Scheduler,
		revealDelay:  opts.RevealDelay,
		observer:     opts.Observer,
		rng:          opts.Rand,
		state:        SessionState{Difficulty: Easy},
		soundEnabled: true,
	}
}

// StartGame starts a new game at phase 1 with a zero score.
func (s *Session) StartGame(difficulty Difficulty) error {
	if !difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, string(difficulty))
	}
	s.discardEngine()
	s.state = SessionState{Phase: 1, Score: 0, Difficulty: difficulty}
	klog.V(1).Infof("Session: starting game, difficulty=%s", difficulty)
	return s.startPhase()
}

// startPhase builds the deck of the current phase and deals it to a fresh engine.
func (s *Session) startPhase() error {
	deck, err := BuildDeck(s.catalog, s.state.Difficulty, s.state.Phase, s.rng)
	if err != nil {
		return err
	}
	engine := NewEngine(nil, s.scheduler, s.revealDelay)
	engine.listener = ListenerFunc(func(ev Event) {
		// Events of a discarded engine must not reach the session.
		if engine != s.engine {
			return
		}
		s.handleEngineEvent(ev)
	})
	s.engine = engine
	engine.Start(deck)

	klog.V(1).Infof("Session: phase %d started with %d pairs", s.state.Phase, deck.Pairs())
	s.observer.HandleEvent(Event{
		Kind: EventPhaseStarted,
		Payload: PhaseStartedPayload{
			Phase:      s.state.Phase,
			Difficulty: s.state.Difficulty,
			Pairs:      deck.Pairs(),
		},
	})
	return nil
}

func (s *Session) handleEngineEvent(ev Event) {
	switch ev.Kind {
	case EventMatchFound:
		payload := ev.Payload.(MatchPayload)
		s.state.Score += MatchReward
		payload.Score = s.state.Score
		s.observer.HandleEvent(Event{Kind: ev.Kind, Payload: payload})

	case EventMatchFailed:
		payload := ev.Payload.(MatchPayload)
		s.state.Score = max(0, s.state.Score-MismatchPenalty)
		payload.Score = s.state.Score
		s.observer.HandleEvent(Event{Kind: ev.Kind, Payload: payload})

	case EventPhaseComplete:
		payload := ev.Payload.(PhaseCompletePayload)
		payload.Phase = s.state.Phase
		payload.Score = s.state.Score
		klog.V(1).Infof("Session: phase %d complete in %d moves, %ds", payload.Phase, payload.Moves, payload.ElapsedSeconds)
		s.observer.HandleEvent(Event{Kind: ev.Kind, Payload: payload})
		s.onPhaseComplete()

	default:
		s.observer.HandleEvent(ev)
	}
}

// onPhaseComplete advances to the next phase. Score carries over, moves and time reset.
func (s *Session) onPhaseComplete() {
	s.discardEngine()
	s.state.Phase++
	if err := s.startPhase(); err != nil {
		// Difficulty and phase were validated when the game started.
		panic(err)
	}
}

// ReturnToMenu abandons the current game. The difficulty stays selected, and
// the last phase and score remain readable until the next StartGame.
func (s *Session) ReturnToMenu() {
	if s.engine == nil {
		return
	}
	klog.V(1).Infof("Session: returning to menu at phase %d, score %d", s.state.Phase, s.state.Score)
	s.discardEngine()
	s.observer.HandleEvent(Event{Kind: EventGameStopped})
}

func (s *Session) discardEngine() {
	if s.engine == nil {
		return
	}
	s.engine.Discard()
	s.engine = nil
}

// Flip forwards a flip intent to the engine of the current phase.
func (s *Session) Flip(position int) error {
	if s.engine == nil {
		return ErrNoGame
	}
	return s.engine.Flip(position)
}

// Tick advances the clock of the current phase by one second, if a game is in progress.
func (s *Session) Tick() {
	if s.engine != nil {
		s.engine.Tick()
	}
}

// SelectDifficulty changes the difficulty used by the next StartGame.
func (s *Session) SelectDifficulty(difficulty Difficulty) error {
	if !difficulty.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDifficulty, string(difficulty))
	}
	s.state.Difficulty = difficulty
	return nil
}

// SetSound records whether the player wants sound cues. It has no effect on the game.
func (s *Session) SetSound(enabled bool) {
	s.soundEnabled = enabled
}

// SoundEnabled returns the sound preference.
func (s *Session) SoundEnabled() bool {
	return s.soundEnabled
}

// State returns phase, score and difficulty.
func (s *Session) State() SessionState {
	return s.state
}

// Playing reports whether a game is in progress.
func (s *Session) Playing() bool {
	return s.engine != nil
}

// Engine returns the engine of the current phase, or nil at the menu.
func (s *Session) Engine() *Engine {
	return s.engine
}

// Catalog returns the catalog decks are built from.
func (s *Session) Catalog() *Catalog {
	return s.catalog
}
