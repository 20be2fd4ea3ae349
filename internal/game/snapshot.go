package game

// CardView is what the player can see of one board position.
// Card is only set when the card is face-up or matched.
type CardView struct {
	InstanceID string          `json:"instance_id"`
	FaceUp     bool            `json:"face_up"`
	Matched    bool            `json:"matched"`
	Card       *CardDefinition `json:"card,omitempty"`
}

// Snapshot is a read-only view of a session, safe to send to the player.
type Snapshot struct {
	SessionState
	Playing        bool       `json:"playing"`
	Status         string     `json:"status"`
	Moves          int        `json:"moves"`
	ElapsedSeconds int        `json:"elapsed_seconds"`
	Cards          []CardView `json:"cards"`
	SoundEnabled   bool       `json:"sound_enabled"`
}

// Snapshot returns the current view of the session.
func (s *Session) Snapshot() Snapshot {
	snap := Snapshot{
		SessionState: s.state,
		Playing:      s.engine != nil,
		Status:       StatusStopped.String(),
		SoundEnabled: s.soundEnabled,
	}
	if s.engine == nil {
		return snap
	}

	e := s.engine
	snap.Status = e.Status().String()
	snap.Moves = e.Moves()
	snap.ElapsedSeconds = e.ElapsedSeconds()
	snap.Cards = make([]CardView, len(e.Deck()))
	for pos, card := range e.Deck() {
		view := CardView{
			InstanceID: card.InstanceID,
			FaceUp:     e.IsFaceUp(pos),
			Matched:    e.IsMatched(card.InstanceID),
		}
		if view.FaceUp || view.Matched {
			if def, found := s.catalog.Lookup(card.Identity); found {
				view.Card = &def
			}
		}
		snap.Cards[pos] = view
	}
	return snap
}
