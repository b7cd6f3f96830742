// Package board holds the task-board data model and the pure state transitions
// applied to a board collection.
package board

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// DefaultCreator is recorded on cards created without an explicit creator.
const DefaultCreator = "User"

// ParsePriority accepts high, medium or low in any case.
func ParsePriority(s string) (Priority, error) {
	switch p := Priority(strings.ToLower(strings.TrimSpace(s))); p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return p, nil
	}
	return "", fmt.Errorf("invalid priority %q", s)
}

// NormalizePriority maps anything ParsePriority rejects to medium.
func NormalizePriority(s string) Priority {
	p, err := ParsePriority(s)
	if err != nil {
		return PriorityMedium
	}
	return p
}

type Card struct {
	ID          string   `json:"id" validate:"required"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Creator     string   `json:"creator"`
	Priority    Priority `json:"priority" validate:"oneof=high medium low"`
	DueDate     string   `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Assignee    string   `json:"assignee"`
}

type Column struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Cards []Card `json:"cards"`
}

type Board struct {
	ID      string   `json:"id"`
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// NewCard returns a card with the defaults used by the card form.
func NewCard(id, title string) Card {
	return Card{
		ID:       id,
		Title:    title,
		Creator:  DefaultCreator,
		Priority: PriorityMedium,
	}
}

// Validate checks the card is fit to be committed to a column.
func (c Card) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid card: %w", err)
	}
	return nil
}

// Column returns the column with the given id.
func (b Board) Column(id string) (Column, bool) {
	for _, col := range b.Columns {
		if col.ID == id {
			return col, true
		}
	}
	return Column{}, false
}

// HasCard reports whether any column of the board holds a card with the given id.
func (b Board) HasCard(id string) bool {
	for _, col := range b.Columns {
		if col.cardIndex(id) >= 0 {
			return true
		}
	}
	return false
}

func (c Column) cardIndex(id string) int {
	for i, card := range c.Cards {
		if card.ID == id {
			return i
		}
	}
	return -1
}
