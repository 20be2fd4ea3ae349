package game

import (
	"fmt"
	"strconv"
)

// CardID identifies a card face. Both cards of a pair share the same CardID.
type CardID int

func (id CardID) String() string {
	return strconv.Itoa(int(id))
}

// CardDefinition is one entry of the catalog: the face of a card.
type CardDefinition struct {
	ID    CardID `json:"id"`
	Name  string `json:"name"`
	Image string `json:"image"` // URL or path of the card face image
}

// Catalog is the ordered, read-only list of card faces available to the deck builder.
// The order matters: decks always use the first N entries.
type Catalog struct {
	cards []CardDefinition
	byID  map[CardID]int
}

// DefaultCards are the faces the game ships with.
var DefaultCards = []CardDefinition{
	{ID: 1, Name: "Monica", Image: "https://i.imgur.com/ZT3qfXy.png"},
	{ID: 2, Name: "Cebolinha", Image: "https://i.imgur.com/6jT3h57.png"},
	{ID: 3, Name: "Cascao", Image: "https://i.imgur.com/rQ6YZwC.png"},
	{ID: 4, Name: "Magali", Image: "https://i.imgur.com/6AzG5J2.png"},
	{ID: 5, Name: "Franjinha", Image: "https://i.imgur.com/lA0ysZt.png"},
	{ID: 6, Name: "Chico Bento", Image: "https://i.imgur.com/WfJlh8Y.png"},
}

// NewCatalog validates and copies the given card definitions into a Catalog.
func NewCatalog(cards []CardDefinition) (*Catalog, error) {
	if len(cards) == 0 {
		return nil, ErrEmptyCatalog
	}
	c := &Catalog{
		cards: make([]CardDefinition, len(cards)),
		byID:  make(map[CardID]int, len(cards)),
	}
	copy(c.cards, cards)
	for i, card := range c.cards {
		if _, found := c.byID[card.ID]; found {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateCard, card.ID)
		}
		c.byID[card.ID] = i
	}
	return c, nil
}

// DefaultCatalog returns a Catalog with DefaultCards.
func DefaultCatalog() *Catalog {
	c, err := NewCatalog(DefaultCards)
	if err != nil {
		panic(err)
	}
	return c
}

// Len returns the number of distinct card faces.
func (c *Catalog) Len() int {
	return len(c.cards)
}

// Cards returns a copy of the catalog entries, in catalog order.
func (c *Catalog) Cards() []CardDefinition {
	out := make([]CardDefinition, len(c.cards))
	copy(out, c.cards)
	return out
}

// Lookup returns the definition of the card with the given id.
func (c *Catalog) Lookup(id CardID) (CardDefinition, bool) {
	idx, found := c.byID[id]
	if !found {
		return CardDefinition{}, false
	}
	return c.cards[idx], true
}
