package game

import (
	"errors"
	"testing"
)

func newTestSession(seed uint64) (*Session, *eventRecorder, *manualScheduler) {
	events := &eventRecorder{}
	scheduler := &manualScheduler{}
	s := NewSession(SessionOptions{
		Scheduler: scheduler,
		Observer:  events,
		Rand:      newTestRand(seed),
	})
	return s, events, scheduler
}

// pairPositions returns, for every card identity of the deck, the two positions holding it.
func pairPositions(deck Deck) map[CardID][]int {
	positions := make(map[CardID][]int)
	for pos, card := range deck {
		positions[card.Identity] = append(positions[card.Identity], pos)
	}
	return positions
}

func flipPair(t *testing.T, s *Session, a, b int) {
	t.Helper()
	for _, pos := range []int{a, b} {
		if err := s.Flip(pos); err != nil {
			t.Fatalf("Flip(%d) failed: %v", pos, err)
		}
	}
}

func TestSessionEasyScenario(t *testing.T) {
	s, events, scheduler := newTestSession(5)
	if err := s.StartGame(Easy); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	deck := s.Engine().Deck()
	if len(deck) != 6 {
		t.Fatalf("Expected 6 cards, got %d", len(deck))
	}
	pairs := pairPositions(deck)

	// Match the pair of the first card.
	first := pairs[deck[0].Identity]
	flipPair(t, s, first[0], first[1])
	if st := s.State(); st.Score != 10 || s.Engine().Moves() != 1 {
		t.Fatalf("After a match: expected score 10 and 1 move, got score %d, %d moves", st.Score, s.Engine().Moves())
	}
	if !s.Engine().IsMatched(deck[first[0]].InstanceID) || !s.Engine().IsMatched(deck[first[1]].InstanceID) {
		t.Errorf("Both cards of the pair should be matched")
	}
	scheduler.runAll()

	// Flip two cards of different pairs.
	var others []CardID
	for id := range pairs {
		if id != deck[0].Identity {
			others = append(others, id)
		}
	}
	flipPair(t, s, pairs[others[0]][0], pairs[others[1]][0])
	if st := s.State(); st.Score != 8 || s.Engine().Moves() != 2 {
		t.Fatalf("After a mismatch: expected score 8 and 2 moves, got score %d, %d moves", st.Score, s.Engine().Moves())
	}
	scheduler.runAll()

	// Resolve the two remaining pairs.
	flipPair(t, s, pairs[others[0]][0], pairs[others[0]][1])
	scheduler.runAll()
	flipPair(t, s, pairs[others[1]][0], pairs[others[1]][1])

	if events.count(EventPhaseComplete) != 1 {
		t.Fatalf("Expected one phase_complete event, got %d", events.count(EventPhaseComplete))
	}
	for _, ev := range events.events {
		if ev.Kind == EventPhaseComplete {
			payload := ev.Payload.(PhaseCompletePayload)
			if payload.Phase != 1 || payload.Moves != 4 || payload.Score != 28 {
				t.Errorf("Unexpected phase_complete payload %+v", payload)
			}
		}
	}

	st := s.State()
	if st.Phase != 2 || st.Score != 28 || st.Difficulty != Easy {
		t.Errorf("Expected phase 2, score 28, easy; got %+v", st)
	}
	engine := s.Engine()
	if len(engine.Deck()) != 8 {
		t.Errorf("Expected 8 cards in phase 2, got %d", len(engine.Deck()))
	}
	if engine.Moves() != 0 || engine.ElapsedSeconds() != 0 || len(engine.FaceUp()) != 0 || len(engine.Matched()) != 0 {
		t.Errorf("Phase 2 must start from scratch")
	}
	if events.count(EventPhaseStarted) != 2 {
		t.Errorf("Expected 2 phase_started events, got %d", events.count(EventPhaseStarted))
	}
}

func TestSessionScoreNeverNegative(t *testing.T) {
	s, events, scheduler := newTestSession(6)
	if err := s.StartGame(Medium); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	deck := s.Engine().Deck()
	a := 0
	b := 1
	for deck[b].Identity == deck[a].Identity {
		b++
	}
	for range 3 {
		flipPair(t, s, a, b)
		scheduler.runAll()
		if score := s.State().Score; score != 0 {
			t.Fatalf("Expected score 0, got %d", score)
		}
	}
	if s.Engine().Moves() != 3 || events.count(EventMatchFailed) != 3 {
		t.Errorf("Expected 3 failed moves, got %d moves", s.Engine().Moves())
	}
}

func TestSessionPhaseGrowthCapped(t *testing.T) {
	s, _, scheduler := newTestSession(8)
	if err := s.StartGame(Medium); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	expectedCards := []int{8, 10, 12, 12, 12}
	for phase, expected := range expectedCards {
		engine := s.Engine()
		if got := len(engine.Deck()); got != expected {
			t.Fatalf("Phase %d: expected %d cards, got %d", phase+1, expected, got)
		}
		for _, positions := range pairPositions(engine.Deck()) {
			flipPair(t, s, positions[0], positions[1])
			scheduler.runAll()
		}
		if s.State().Phase != phase+2 {
			t.Fatalf("Expected phase %d, got %d", phase+2, s.State().Phase)
		}
	}
}

func TestSessionReturnToMenu(t *testing.T) {
	s, events, scheduler := newTestSession(9)
	if err := s.Flip(0); !errors.Is(err, ErrNoGame) {
		t.Errorf("Expected ErrNoGame before starting, got %v", err)
	}
	if err := s.StartGame(Hard); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	pairs := pairPositions(s.Engine().Deck())
	positions := pairs[s.Engine().Deck()[0].Identity]
	flipPair(t, s, positions[0], positions[1])
	scheduler.runAll()

	// Leave with a mismatch pending its reveal delay.
	deck := s.Engine().Deck()
	first, second := -1, -1
	for pos, card := range deck {
		if card.Identity == deck[0].Identity {
			continue
		}
		if first < 0 {
			first = pos
		} else if card.Identity != deck[first].Identity {
			second = pos
			break
		}
	}
	flipPair(t, s, first, second)
	s.ReturnToMenu()

	if s.Playing() {
		t.Fatalf("Session should be at the menu")
	}
	if err := s.Flip(0); !errors.Is(err, ErrNoGame) {
		t.Errorf("Expected ErrNoGame at the menu, got %v", err)
	}
	if events.count(EventGameStopped) != 1 {
		t.Errorf("Expected one game_stopped event, got %d", events.count(EventGameStopped))
	}
	if st := s.State(); st.Difficulty != Hard || st.Score != 8 {
		t.Errorf("Difficulty and last score are kept at the menu, got %+v", st)
	}

	// Start again: score and phase reset, and the stale reveal callback is ignored.
	if err := s.StartGame(Hard); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	if err := s.Flip(0); err != nil {
		t.Fatalf("Flip failed: %v", err)
	}
	numHidden := events.count(EventCardsHidden)
	scheduler.runAll()
	if !s.Engine().IsFaceUp(0) {
		t.Errorf("Stale reveal callback hid a card of the new game")
	}
	if events.count(EventCardsHidden) != numHidden {
		t.Errorf("Stale reveal callback emitted an event")
	}
	if st := s.State(); st.Phase != 1 || st.Score != 0 {
		t.Errorf("Expected phase 1 and score 0, got %+v", st)
	}
}

func TestSessionInvalidDifficulty(t *testing.T) {
	s, _, _ := newTestSession(10)
	if err := s.StartGame("legendary"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Errorf("Expected ErrInvalidDifficulty, got %v", err)
	}
	if err := s.SelectDifficulty("legendary"); !errors.Is(err, ErrInvalidDifficulty) {
		t.Errorf("Expected ErrInvalidDifficulty, got %v", err)
	}
	if s.Playing() {
		t.Errorf("No game should be in progress")
	}
	if err := s.SelectDifficulty(Medium); err != nil || s.State().Difficulty != Medium {
		t.Errorf("SelectDifficulty(medium): %v, %+v", err, s.State())
	}
}

func TestSessionTick(t *testing.T) {
	s, _, _ := newTestSession(12)
	s.Tick()
	if err := s.StartGame(Easy); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	for range 5 {
		s.Tick()
	}
	if got := s.Engine().ElapsedSeconds(); got != 5 {
		t.Errorf("Expected 5s, got %ds", got)
	}
}

func TestSessionSnapshotHidesCards(t *testing.T) {
	s, _, scheduler := newTestSession(13)
	snap := s.Snapshot()
	if snap.Playing || len(snap.Cards) != 0 || !snap.SoundEnabled {
		t.Errorf("Unexpected menu snapshot %+v", snap)
	}

	if err := s.StartGame(Easy); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}
	s.SetSound(false)
	deck := s.Engine().Deck()
	positions := pairPositions(deck)[deck[0].Identity]
	flipPair(t, s, positions[0], positions[1])
	scheduler.runAll()
	hidden := 0
	for hidden == positions[0] || hidden == positions[1] {
		hidden++
	}
	if err := s.Flip(hidden); err != nil {
		t.Fatalf("Flip failed: %v", err)
	}

	snap = s.Snapshot()
	if snap.SoundEnabled || !snap.Playing || snap.Moves != 1 || snap.Score != 10 || snap.Phase != 1 {
		t.Errorf("Unexpected snapshot %+v", snap)
	}
	if len(snap.Cards) != 6 {
		t.Fatalf("Expected 6 cards, got %d", len(snap.Cards))
	}
	for pos, view := range snap.Cards {
		visible := view.FaceUp || view.Matched
		if visible != (view.Card != nil) {
			t.Errorf("Position %d: visible=%v but card=%v", pos, visible, view.Card)
		}
		if view.Matched != (pos == positions[0] || pos == positions[1]) {
			t.Errorf("Position %d: matched=%v", pos, view.Matched)
		}
		if view.InstanceID != deck[pos].InstanceID {
			t.Errorf("Position %d: instance %q, expected %q", pos, view.InstanceID, deck[pos].InstanceID)
		}
	}
	if !snap.Cards[hidden].FaceUp || snap.Cards[hidden].Card.ID != deck[hidden].Identity {
		t.Errorf("Face-up card %d shows %v", hidden, snap.Cards[hidden].Card)
	}
	if snap.Cards[positions[0]].Card.ID != deck[0].Identity {
		t.Errorf("Matched card shows %v, expected card %s", snap.Cards[positions[0]].Card, deck[0].Identity)
	}
}
