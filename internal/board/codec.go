package board

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Encode serializes the board collection in the persisted slot layout.
func Encode(boards []Board) ([]byte, error) {
	if boards == nil {
		boards = []Board{}
	}
	data, err := json.Marshal(boards)
	if err != nil {
		return nil, fmt.Errorf("error encoding boards json: %w", err)
	}
	return data, nil
}

// Decode parses a persisted slot. Empty content decodes to an empty collection,
// and missing or null columns and cards decode to empty sequences.
func Decode(data []byte) ([]Board, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return []Board{}, nil
	}
	var boards []Board
	if err := json.Unmarshal(data, &boards); err != nil {
		return nil, fmt.Errorf("error decoding boards json: %w", err)
	}
	if boards == nil {
		boards = []Board{}
	}
	for i := range boards {
		if boards[i].Columns == nil {
			boards[i].Columns = []Column{}
		}
		for j := range boards[i].Columns {
			if boards[i].Columns[j].Cards == nil {
				boards[i].Columns[j].Cards = []Card{}
			}
		}
	}
	return boards, nil
}

// Sanitize brings decoded boards back within what the mutations guarantee:
// priorities are normalized and a card id seen earlier on the same board is
// dropped. It rewrites boards in place and returns the number of cards dropped.
func Sanitize(boards []Board) int {
	dropped := 0
	for i := range boards {
		seen := map[string]bool{}
		for j := range boards[i].Columns {
			col := &boards[i].Columns[j]
			kept := col.Cards[:0]
			for _, card := range col.Cards {
				if seen[card.ID] {
					dropped++
					continue
				}
				seen[card.ID] = true
				card.Priority = NormalizePriority(string(card.Priority))
				kept = append(kept, card)
			}
			col.Cards = kept
		}
	}
	return dropped
}
