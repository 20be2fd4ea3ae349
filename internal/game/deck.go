package game

import (
	"fmt"
	"math/rand/v2"
	"strings"
)

// Difficulty selects the base number of pairs of the first phase.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
)

// Difficulties lists the valid difficulties, easiest first.
var Difficulties = []Difficulty{Easy, Medium, Hard}

// basePairs is the number of pairs in phase 1 for each difficulty.
var basePairs = map[Difficulty]int{
	Easy:   3,
	Medium: 4,
	Hard:   6,
}

// difficultyAliases accepts the Portuguese menu labels.
var difficultyAliases = map[string]Difficulty{
	"facil":   Easy,
	"medio":   Medium,
	"dificil": Hard,
}

// ParseDifficulty converts a user supplied label into a Difficulty.
func ParseDifficulty(s string) (Difficulty, error) {
	label := strings.ToLower(strings.TrimSpace(s))
	if d := Difficulty(label); d.Valid() {
		return d, nil
	}
	if d, found := difficultyAliases[label]; found {
		return d, nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidDifficulty, s)
}

// Valid reports whether d is one of the known difficulties.
func (d Difficulty) Valid() bool {
	_, found := basePairs[d]
	return found
}

// CardInstance is one physical card of a deck. Exactly two instances share each Identity.
type CardInstance struct {
	InstanceID string `json:"instance_id"`
	Identity   CardID `json:"identity"`
}

// Deck is the ordered sequence of cards laid on the board. Positions are indices into it.
type Deck []CardInstance

// PairCount returns the number of pairs used for the given difficulty and phase:
// the base pairs of the difficulty, plus one per phase after the first, capped at
// the size of the catalog.
func PairCount(difficulty Difficulty, phase, catalogSize int) (int, error) {
	base, found := basePairs[difficulty]
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrInvalidDifficulty, string(difficulty))
	}
	if phase < 1 {
		return 0, fmt.Errorf("%w: %d", ErrInvalidPhase, phase)
	}
	// Compare before adding, so very large phases can't overflow.
	if phase-1 >= catalogSize-base {
		return catalogSize, nil
	}
	return base + phase - 1, nil
}

// BuildDeck builds the shuffled deck for the given difficulty and phase.
//
// The first PairCount entries of the catalog are used, each duplicated into a pair.
// Instance IDs are "<index>_<identity>", where index is the position before shuffling.
// The shuffle is a uniform Fisher-Yates permutation drawn from rng.
func BuildDeck(catalog *Catalog, difficulty Difficulty, phase int, rng *rand.Rand) (Deck, error) {
	pairs, err := PairCount(difficulty, phase, catalog.Len())
	if err != nil {
		return nil, err
	}

	deck := make(Deck, 0, 2*pairs)
	for range 2 {
		for _, card := range catalog.cards[:pairs] {
			deck = append(deck, CardInstance{
				InstanceID: fmt.Sprintf("%d_%s", len(deck), card.ID),
				Identity:   card.ID,
			})
		}
	}

	rng.Shuffle(len(deck), func(i, j int) { deck[i], deck[j] = deck[j], deck[i] })
	return deck, nil
}

// Pairs returns the number of pairs in the deck.
func (d Deck) Pairs() int {
	return len(d) / 2
}
