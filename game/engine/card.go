package engine

import (
	"encoding/json"
	"fmt"
	"math/rand/v2"
)

// Suit is one of the four card suits
type Suit string

const (
	Hearts   Suit = "hearts"
	Diamonds Suit = "diamonds"
	Clubs    Suit = "clubs"
	Spades   Suit = "spades"
)

// Suits lists the suits in deck construction order
var Suits = [4]Suit{Hearts, Diamonds, Clubs, Spades}

// Color is the derived color of a card
type Color string

const (
	Red   Color = "red"
	Black Color = "black"
)

// Color returns red for hearts and diamonds, black otherwise
func (s Suit) Color() Color {
	if s == Hearts || s == Diamonds {
		return Red
	}
	return Black
}

// Symbol returns the printable suit glyph
func (s Suit) Symbol() string {
	switch s {
	case Hearts:
		return "♥"
	case Diamonds:
		return "♦"
	case Clubs:
		return "♣"
	case Spades:
		return "♠"
	default:
		return "?"
	}
}

// Valid reports whether s is one of the four suits
func (s Suit) Valid() bool {
	for _, known := range Suits {
		if s == known {
			return true
		}
	}
	return false
}

// Rank is a card rank, Ace=1 through King=13
type Rank int

const (
	Ace   Rank = 1
	Jack  Rank = 11
	Queen Rank = 12
	King  Rank = 13
)

var rankSymbols = [...]string{"", "A", "2", "3", "4", "5", "6", "7", "8", "9", "10", "J", "Q", "K"}

// String returns the rank symbol (A, 2..10, J, Q, K)
func (r Rank) String() string {
	if r < Ace || r > King {
		return fmt.Sprintf("Rank(%d)", int(r))
	}
	return rankSymbols[r]
}

// MarshalText encodes the rank as its symbol
func (r Rank) MarshalText() ([]byte, error) {
	if r < Ace || r > King {
		return nil, fmt.Errorf("invalid rank %d", int(r))
	}
	return []byte(rankSymbols[r]), nil
}

// UnmarshalText decodes a rank symbol
func (r *Rank) UnmarshalText(text []byte) error {
	parsed, err := ParseRank(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// ParseRank converts a rank symbol into a Rank
func ParseRank(s string) (Rank, error) {
	for i := Ace; i <= King; i++ {
		if rankSymbols[i] == s {
			return i, nil
		}
	}
	return 0, fmt.Errorf("invalid rank %q", s)
}

// Card is an immutable playing card value
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// Value returns the numeric rank, 1..13
func (c Card) Value() int {
	return int(c.Rank)
}

// Color returns the card's color
func (c Card) Color() Color {
	return c.Suit.Color()
}

// String renders the card as rank followed by suit glyph, e.g. "10♥"
func (c Card) String() string {
	return c.Rank.String() + c.Suit.Symbol()
}

// cardJSON carries the derived fields on the wire
type cardJSON struct {
	Suit  Suit  `json:"suit"`
	Rank  Rank  `json:"rank"`
	Value int   `json:"value"`
	Color Color `json:"color"`
}

// MarshalJSON includes the derived value and color
func (c Card) MarshalJSON() ([]byte, error) {
	return json.Marshal(cardJSON{Suit: c.Suit, Rank: c.Rank, Value: c.Value(), Color: c.Color()})
}

// UnmarshalJSON ignores the derived fields and validates the suit
func (c *Card) UnmarshalJSON(data []byte) error {
	var raw cardJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if !raw.Suit.Valid() {
		return fmt.Errorf("invalid suit %q", raw.Suit)
	}
	c.Suit = raw.Suit
	c.Rank = raw.Rank
	return nil
}

// NewDeck builds the 52-card deck as suits × ranks, in order
func NewDeck() []Card {
	deck := make([]Card, 0, DeckSize)
	for _, suit := range Suits {
		for rank := Ace; rank <= King; rank++ {
			deck = append(deck, Card{Suit: suit, Rank: rank})
		}
	}
	return deck
}

// Shuffle permutes the deck in place with Fisher–Yates
func Shuffle(deck []Card, rng *rand.Rand) {
	for i := len(deck) - 1; i > 0; i-- {
		j := rng.IntN(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
}

// newRand returns a deterministic generator for the given seed
func newRand(seed int64) *rand.Rand {
	return rand.New(rand.NewPCG(uint64(seed), uint64(seed)^0x9e3779b97f4a7c15))
}

// randomSeed picks a fresh non-zero seed
func randomSeed() int64 {
	for {
		if seed := rand.Int64(); seed != 0 {
			return seed
		}
	}
}
