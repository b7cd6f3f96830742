package board

// The functions below never modify the slices they are given. Each returns the
// next board collection and whether anything changed; untouched boards, columns
// and cards are shared with the previous collection.

// Find returns the board with the given id.
func Find(boards []Board, id string) (Board, bool) {
	if i := boardIndex(boards, id); i >= 0 {
		return boards[i], true
	}
	return Board{}, false
}

// AddBoard appends an empty board.
func AddBoard(boards []Board, id, name string) []Board {
	next := make([]Board, len(boards), len(boards)+1)
	copy(next, boards)
	return append(next, Board{ID: id, Name: name, Columns: []Column{}})
}

// AddColumn appends an empty column to the board.
func AddColumn(boards []Board, boardID, columnID, title string) ([]Board, bool) {
	bi := boardIndex(boards, boardID)
	if bi < 0 {
		return boards, false
	}
	b := boards[bi]
	cols := make([]Column, len(b.Columns), len(b.Columns)+1)
	copy(cols, b.Columns)
	b.Columns = append(cols, Column{ID: columnID, Title: title, Cards: []Card{}})
	return replaceBoard(boards, bi, b), true
}

// DeleteColumn removes the column and every card it holds.
func DeleteColumn(boards []Board, boardID, columnID string) ([]Board, bool) {
	bi := boardIndex(boards, boardID)
	if bi < 0 {
		return boards, false
	}
	b := boards[bi]
	ci := columnIndex(b.Columns, columnID)
	if ci < 0 {
		return boards, false
	}
	b.Columns = removeAt(b.Columns, ci)
	return replaceBoard(boards, bi, b), true
}

// AddCard appends card to the column. A card whose id is already on the board
// is refused so that a card never sits in two columns.
func AddCard(boards []Board, boardID, columnID string, card Card) ([]Board, bool) {
	return editColumn(boards, boardID, columnID, func(b Board, col Column) (Column, bool) {
		if b.HasCard(card.ID) {
			return col, false
		}
		col.Cards = insertAt(col.Cards, len(col.Cards), card)
		return col, true
	})
}

// UpdateCard replaces the card in place. The stored id is kept.
func UpdateCard(boards []Board, boardID, columnID, cardID string, updated Card) ([]Board, bool) {
	return editColumn(boards, boardID, columnID, func(_ Board, col Column) (Column, bool) {
		i := col.cardIndex(cardID)
		if i < 0 {
			return col, false
		}
		updated.ID = cardID
		cards := make([]Card, len(col.Cards))
		copy(cards, col.Cards)
		cards[i] = updated
		col.Cards = cards
		return col, true
	})
}

// DeleteCard removes the card, keeping the order of the rest.
func DeleteCard(boards []Board, boardID, columnID, cardID string) ([]Board, bool) {
	return editColumn(boards, boardID, columnID, func(_ Board, col Column) (Column, bool) {
		i := col.cardIndex(cardID)
		if i < 0 {
			return col, false
		}
		col.Cards = removeAt(col.Cards, i)
		return col, true
	})
}

// MoveCard takes the card out of the source column and inserts it into the
// destination column at destIndex. destIndex is clamped to the destination
// length after removal, so equal columns behave like ReorderCards.
func MoveCard(boards []Board, boardID, sourceColumnID, destColumnID, cardID string, destIndex int) ([]Board, bool) {
	bi := boardIndex(boards, boardID)
	if bi < 0 {
		return boards, false
	}
	b := boards[bi]
	si := columnIndex(b.Columns, sourceColumnID)
	di := columnIndex(b.Columns, destColumnID)
	if si < 0 || di < 0 {
		return boards, false
	}
	ci := b.Columns[si].cardIndex(cardID)
	if ci < 0 {
		return boards, false
	}
	card := b.Columns[si].Cards[ci]

	cols := make([]Column, len(b.Columns))
	copy(cols, b.Columns)
	cols[si].Cards = removeAt(cols[si].Cards, ci)
	cols[di].Cards = insertAt(cols[di].Cards, destIndex, card)
	b.Columns = cols
	return replaceBoard(boards, bi, b), true
}

// ReorderCards removes the card at sourceIndex and inserts it at destIndex of
// the shortened sequence. An out of range sourceIndex changes nothing.
func ReorderCards(boards []Board, boardID, columnID string, sourceIndex, destIndex int) ([]Board, bool) {
	return editColumn(boards, boardID, columnID, func(_ Board, col Column) (Column, bool) {
		if sourceIndex < 0 || sourceIndex >= len(col.Cards) {
			return col, false
		}
		card := col.Cards[sourceIndex]
		col.Cards = insertAt(removeAt(col.Cards, sourceIndex), destIndex, card)
		return col, true
	})
}

func editColumn(boards []Board, boardID, columnID string, fn func(Board, Column) (Column, bool)) ([]Board, bool) {
	bi := boardIndex(boards, boardID)
	if bi < 0 {
		return boards, false
	}
	b := boards[bi]
	ci := columnIndex(b.Columns, columnID)
	if ci < 0 {
		return boards, false
	}
	col, ok := fn(b, b.Columns[ci])
	if !ok {
		return boards, false
	}
	cols := make([]Column, len(b.Columns))
	copy(cols, b.Columns)
	cols[ci] = col
	b.Columns = cols
	return replaceBoard(boards, bi, b), true
}

func replaceBoard(boards []Board, i int, b Board) []Board {
	next := make([]Board, len(boards))
	copy(next, boards)
	next[i] = b
	return next
}

func boardIndex(boards []Board, id string) int {
	for i, b := range boards {
		if b.ID == id {
			return i
		}
	}
	return -1
}

func columnIndex(cols []Column, id string) int {
	for i, c := range cols {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// removeAt returns a new slice without element i.
func removeAt[T any](s []T, i int) []T {
	next := make([]T, 0, len(s)-1)
	next = append(next, s[:i]...)
	return append(next, s[i+1:]...)
}

// insertAt returns a new slice with v at index i, clamped to [0, len(s)].
func insertAt[T any](s []T, i int, v T) []T {
	if i < 0 {
		i = 0
	}
	if i > len(s) {
		i = len(s)
	}
	next := make([]T, 0, len(s)+1)
	next = append(next, s[:i]...)
	next = append(next, v)
	return append(next, s[i:]...)
}
