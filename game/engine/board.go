package engine

import "fmt"

// Board holds the tableau columns, free cells, and foundation piles.
// Only the engine mutates a Board; everything handed out is a clone.
type Board struct {
	tableau     [NumTableau][]Card
	freeCells   [NumFreeCells]*Card
	foundations [NumFoundations][]Card
}

// Deal distributes the deck into the tableau: columns 0-3 get 7 cards, 4-7 get 6
func Deal(deck []Card) *Board {
	if len(deck) != DeckSize {
		panic(fmt.Sprintf("engine: deal needs %d cards, got %d", DeckSize, len(deck)))
	}
	b := &Board{}
	next := 0
	for col := 0; col < NumTableau; col++ {
		n := 6
		if col < 4 {
			n = 7
		}
		b.tableau[col] = make([]Card, 0, n+13)
		b.tableau[col] = append(b.tableau[col], deck[next:next+n]...)
		next += n
	}
	return b
}

// Clone returns a deep copy sharing no slices with b
func (b *Board) Clone() *Board {
	c := &Board{}
	for i, col := range b.tableau {
		c.tableau[i] = append([]Card(nil), col...)
	}
	for i, cell := range b.freeCells {
		if cell != nil {
			card := *cell
			c.freeCells[i] = &card
		}
	}
	for i, pile := range b.foundations {
		c.foundations[i] = append([]Card(nil), pile...)
	}
	return c
}

// Column returns a copy of tableau column i
func (b *Board) Column(i int) []Card {
	Tableau(i).mustValidate()
	return append([]Card(nil), b.tableau[i]...)
}

// FreeCell returns the card in free cell i, if any
func (b *Board) FreeCell(i int) (Card, bool) {
	FreeCell(i).mustValidate()
	if b.freeCells[i] == nil {
		return Card{}, false
	}
	return *b.freeCells[i], true
}

// Foundation returns a copy of foundation pile i
func (b *Board) Foundation(i int) []Card {
	Foundation(i).mustValidate()
	return append([]Card(nil), b.foundations[i]...)
}

// Top returns the accessible card at loc
func (b *Board) Top(loc Location) (Card, bool) {
	loc.mustValidate()
	switch loc.Zone {
	case ZoneTableau:
		return last(b.tableau[loc.Index])
	case ZoneFreeCell:
		return b.FreeCell(loc.Index)
	default:
		return last(b.foundations[loc.Index])
	}
}

// Height returns the number of cards at loc (0 or 1 for a free cell)
func (b *Board) Height(loc Location) int {
	loc.mustValidate()
	switch loc.Zone {
	case ZoneTableau:
		return len(b.tableau[loc.Index])
	case ZoneFreeCell:
		if b.freeCells[loc.Index] != nil {
			return 1
		}
		return 0
	default:
		return len(b.foundations[loc.Index])
	}
}

// EmptyFreeCells counts free cells holding no card
func (b *Board) EmptyFreeCells() int {
	n := 0
	for _, cell := range b.freeCells {
		if cell == nil {
			n++
		}
	}
	return n
}

// EmptyColumns counts tableau columns holding no card
func (b *Board) EmptyColumns() int {
	n := 0
	for _, col := range b.tableau {
		if len(col) == 0 {
			n++
		}
	}
	return n
}

// FoundationCount sums the cards on all foundations
func (b *Board) FoundationCount() int {
	n := 0
	for _, pile := range b.foundations {
		n += len(pile)
	}
	return n
}

// CardCount counts every card on the board
func (b *Board) CardCount() int {
	n := b.FoundationCount()
	for _, col := range b.tableau {
		n += len(col)
	}
	return n + NumFreeCells - b.EmptyFreeCells()
}

// tail returns the last n cards of tableau column col without copying
func (b *Board) tail(col, n int) []Card {
	cards := b.tableau[col]
	if n > len(cards) {
		return nil
	}
	return cards[len(cards)-n:]
}

// pop removes and returns the accessible card at loc
func (b *Board) pop(loc Location) Card {
	switch loc.Zone {
	case ZoneTableau:
		col := b.tableau[loc.Index]
		card := col[len(col)-1]
		b.tableau[loc.Index] = col[:len(col)-1]
		return card
	case ZoneFreeCell:
		card := *b.freeCells[loc.Index]
		b.freeCells[loc.Index] = nil
		return card
	default:
		pile := b.foundations[loc.Index]
		card := pile[len(pile)-1]
		b.foundations[loc.Index] = pile[:len(pile)-1]
		return card
	}
}

// push places card at loc
func (b *Board) push(loc Location, card Card) {
	switch loc.Zone {
	case ZoneTableau:
		b.tableau[loc.Index] = append(b.tableau[loc.Index], card)
	case ZoneFreeCell:
		b.freeCells[loc.Index] = &card
	default:
		b.foundations[loc.Index] = append(b.foundations[loc.Index], card)
	}
}

// moveRun relocates the last n cards of column from onto column to, preserving order
func (b *Board) moveRun(from, to, n int) {
	src := b.tableau[from]
	run := src[len(src)-n:]
	b.tableau[to] = append(b.tableau[to], run...)
	b.tableau[from] = src[:len(src)-n]
}

func last(cards []Card) (Card, bool) {
	if len(cards) == 0 {
		return Card{}, false
	}
	return cards[len(cards)-1], true
}
