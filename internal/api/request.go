package api

import (
	"encoding/json"
	"io"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/gmllt/taskboard/internal/board"
	"github.com/gmllt/taskboard/internal/logger"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

type boardRequest struct {
	Name string `json:"name" validate:"required"`
}

type columnRequest struct {
	Title string `json:"title" validate:"required"`
}

type cardRequest struct {
	Title       string `json:"title" validate:"required"`
	Description string `json:"description"`
	Creator     string `json:"creator"`
	Priority    string `json:"priority"`
	DueDate     string `json:"dueDate" validate:"omitempty,datetime=2006-01-02"`
	Assignee    string `json:"assignee"`
}

type moveRequest struct {
	SourceColumnID string `json:"source_column_id" validate:"required"`
	DestColumnID   string `json:"dest_column_id" validate:"required"`
	CardID         string `json:"card_id" validate:"required"`
	DestIndex      *int   `json:"dest_index" validate:"required"`
}

type reorderRequest struct {
	SourceIndex *int `json:"source_index" validate:"required"`
	DestIndex   *int `json:"dest_index" validate:"required"`
}

type searchRequest struct {
	Query string `json:"query"`
}

// decodeValidate decodes a JSON body into v and runs its validate tags.
func decodeValidate(r io.Reader, v any) error {
	if err := json.NewDecoder(r).Decode(v); err != nil {
		logger.Log.Debug("invalid json body", "error", err)
		return badRequest("Body is invalid json")
	}
	if err := validate.Struct(v); err != nil {
		logger.Log.Debug("invalid body", "error", err)
		return badRequest("Required fields missing or invalid")
	}
	return nil
}

func blank(s string) bool {
	return strings.TrimSpace(s) == ""
}

// card turns the form fields into a committed card, applying the form defaults.
func (req cardRequest) card(id string) (board.Card, error) {
	if blank(req.Title) {
		return board.Card{}, badRequest("Card title is required")
	}
	c := board.NewCard(id, req.Title)
	c.Description = req.Description
	c.DueDate = req.DueDate
	c.Assignee = req.Assignee
	if req.Creator != "" {
		c.Creator = req.Creator
	}
	if req.Priority != "" {
		p, err := board.ParsePriority(req.Priority)
		if err != nil {
			return board.Card{}, badRequest(err.Error())
		}
		c.Priority = p
	}
	if err := c.Validate(); err != nil {
		return board.Card{}, badRequest(err.Error())
	}
	return c, nil
}
