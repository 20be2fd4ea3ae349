package game

import "time"

// Version of the game.
// Bumping this number will eventually make clients reload the WASM.
//
// If you set this to an empty string, a random version number will be
// used, and force the reload of the WASM on every restart (the reload
// still only happens after the first page is loaded, so there is a delay).
// This is useful during development.
var Version = "v0.1.0"

// DefaultRevealDelay is how long an evaluated pair stays face-up before
// the engine accepts new flips.
const DefaultRevealDelay = time.Second

// Scoring: a match adds MatchReward, a mismatch removes MismatchPenalty,
// and the score never goes below zero.
const (
	MatchReward     = 10
	MismatchPenalty = 2
)
