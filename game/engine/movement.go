package engine

// DetectSequence returns the longest descending, alternating-color run that
// starts at row startRow of column. The run always contains the starting card;
// an out-of-range row yields nil.
func DetectSequence(column []Card, startRow int) []Card {
	if startRow < 0 || startRow >= len(column) {
		return nil
	}

	end := startRow + 1
	for end < len(column) {
		prev, next := column[end-1], column[end]
		if next.Value() != prev.Value()-1 || next.Color() == prev.Color() {
			break
		}
		end++
	}

	return append([]Card(nil), column[startRow:end]...)
}

// MaxMovableCards returns (1 + empty free cells) * 2^(empty columns)
func (b *Board) MaxMovableCards() int {
	return capacity(b.EmptyFreeCells(), b.EmptyColumns())
}

func capacity(freeCells, emptyColumns int) int {
	return (1 + freeCells) << emptyColumns
}

// CanMove reports whether a single card may be placed at target
func (b *Board) CanMove(card Card, target Location) bool {
	target.mustValidate()

	switch target.Zone {
	case ZoneFoundation:
		top, ok := last(b.foundations[target.Index])
		if !ok {
			return card.Rank == Ace
		}
		return card.Suit == top.Suit && card.Value() == top.Value()+1

	case ZoneTableau:
		top, ok := last(b.tableau[target.Index])
		if !ok {
			return true
		}
		return card.Value() == top.Value()-1 && card.Color() != top.Color()

	case ZoneFreeCell:
		return b.freeCells[target.Index] == nil
	}

	return false
}

// CanMoveSequence reports whether run may be moved onto target as a unit
func (b *Board) CanMoveSequence(run []Card, target Location) bool {
	return b.checkSequence(run, target) == ""
}

// checkSequence returns the rejection reason for moving run to target, or "" if legal
func (b *Board) checkSequence(run []Card, target Location) string {
	target.mustValidate()

	if len(run) == 0 {
		return ReasonEmptyRun
	}
	if target.Zone != ZoneTableau {
		if len(run) != 1 {
			return ReasonMultiCardTarget
		}
		if !b.CanMove(run[0], target) {
			return ReasonIllegalPlacement
		}
		return ""
	}
	if len(run) > b.MaxMovableCards() {
		return ReasonExceedsCapacity
	}
	if !b.CanMove(run[0], target) {
		return ReasonIllegalPlacement
	}
	return ""
}

// IsWon reports whether all 52 cards sit on the foundations
func (b *Board) IsWon() bool {
	return b.FoundationCount() == DeckSize
}

// sourceRun returns the run a selection at loc/row would pick up, or nil if
// nothing there is accessible
func (b *Board) sourceRun(loc Location, row int) []Card {
	loc.mustValidate()

	if loc.Zone != ZoneTableau {
		card, ok := b.Top(loc)
		if !ok {
			return nil
		}
		return []Card{card}
	}

	column := b.tableau[loc.Index]
	run := DetectSequence(column, row)
	// Only a run ending at the column top can be lifted
	if len(run) == 0 || row+len(run) != len(column) {
		return nil
	}
	return run
}

// isTail reports whether run is still exactly the accessible end of loc
func (b *Board) isTail(loc Location, run []Card) bool {
	if loc.Zone != ZoneTableau {
		if len(run) != 1 {
			return false
		}
		top, ok := b.Top(loc)
		return ok && top == run[0]
	}

	tail := b.tail(loc.Index, len(run))
	if tail == nil {
		return false
	}
	for i := range run {
		if tail[i] != run[i] {
			return false
		}
	}
	return true
}

// apply commits a validated move of run from source to target
func (b *Board) apply(source Location, run []Card, target Location) {
	if len(run) == 1 {
		b.push(target, b.pop(source))
		return
	}
	b.moveRun(source.Index, target.Index, len(run))
}
