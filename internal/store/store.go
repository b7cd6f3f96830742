// Package store is the state container of the task boards. Every mutation
// derives a new snapshot from the current one, writes it to the durable slot
// and hands it to the subscribers.
package store

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/gmllt/taskboard/internal/board"
	"github.com/gmllt/taskboard/internal/logger"
	"github.com/gmllt/taskboard/internal/storage"
)

const defaultTimeout = 10 * time.Second

// Listener receives each newly published snapshot. It runs while the store is
// locked and must not call back into the store.
type Listener func(boards []board.Board)

type subscription struct {
	id int
	fn Listener
}

type Store struct {
	mu          sync.Mutex
	slot        storage.Slot
	ids         IDGenerator
	timeout     time.Duration
	log         *slog.Logger
	boards      []board.Board
	searchQuery string
	subs        []subscription
	nextSub     int
}

type Option func(*Store)

// WithIDs replaces the UUID generator.
func WithIDs(ids IDGenerator) Option {
	return func(s *Store) { s.ids = ids }
}

// WithTimeout bounds each read or write of the slot.
func WithTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.timeout = d
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.log = l }
}

// New builds a store from whatever the slot holds. An absent, empty or
// unreadable slot yields an empty collection.
func New(ctx context.Context, slot storage.Slot, opts ...Option) *Store {
	s := &Store{
		slot:    slot,
		ids:     UUIDs{},
		timeout: defaultTimeout,
		log:     logger.Log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.log = s.log.With("component", "store")
	s.boards = s.load(ctx)
	boardsGauge.Set(float64(len(s.boards)))
	return s
}

func (s *Store) load(ctx context.Context) []board.Board {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	data, err := s.slot.Load(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			s.log.Info("no saved boards, starting empty")
		} else {
			s.log.Warn("failed to load boards, starting empty", "error", err)
		}
		return []board.Board{}
	}
	boards, err := board.Decode(data)
	if err != nil {
		s.log.Warn("saved boards are malformed, starting empty", "error", err)
		return []board.Board{}
	}
	if dropped := board.Sanitize(boards); dropped > 0 {
		s.log.Warn("dropped cards with duplicate ids from saved boards", "dropped", dropped)
	}
	s.log.Info("boards loaded", "boards", len(boards))
	return boards
}

// List returns the current snapshot. Callers must not modify it.
func (s *Store) List() []board.Board {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.boards
}

func (s *Store) Find(boardID string) (board.Board, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return board.Find(s.boards, boardID)
}

func (s *Store) SearchQuery() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.searchQuery
}

func (s *Store) SetSearchQuery(query string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.searchQuery = query
}

// NewID hands out an id from the store's generator, for callers that build
// cards before adding them.
func (s *Store) NewID() string {
	return s.ids.NewID()
}

// Subscribe registers fn for every future snapshot. The returned func removes it.
func (s *Store) Subscribe(fn Listener) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextSub++
	id := s.nextSub
	s.subs = append(s.subs, subscription{id: id, fn: fn})
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i, sub := range s.subs {
			if sub.id == id {
				s.subs = append(s.subs[:i:i], s.subs[i+1:]...)
				return
			}
		}
	}
}

// AddBoard creates an empty board and returns its id.
func (s *Store) AddBoard(name string) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.ids.NewID()
	s.commit("add_board", board.AddBoard(s.boards, id, name), true)
	return id
}

// AddColumn appends an empty column and returns its id, or false when the
// board does not exist.
func (s *Store) AddColumn(boardID, title string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := board.Find(s.boards, boardID); !ok {
		return "", s.commit("add_column", s.boards, false)
	}
	id := s.ids.NewID()
	next, ok := board.AddColumn(s.boards, boardID, id, title)
	return id, s.commit("add_column", next, ok)
}

// AddCard appends card to the column. A card without an id gets a fresh one.
func (s *Store) AddCard(boardID, columnID string, card board.Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if card.ID == "" {
		card.ID = s.ids.NewID()
	}
	card.Priority = board.NormalizePriority(string(card.Priority))
	next, ok := board.AddCard(s.boards, boardID, columnID, card)
	return s.commit("add_card", next, ok)
}

func (s *Store) UpdateCard(boardID, columnID, cardID string, updated board.Card) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	updated.Priority = board.NormalizePriority(string(updated.Priority))
	next, ok := board.UpdateCard(s.boards, boardID, columnID, cardID, updated)
	return s.commit("update_card", next, ok)
}

func (s *Store) DeleteCard(boardID, columnID, cardID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := board.DeleteCard(s.boards, boardID, columnID, cardID)
	return s.commit("delete_card", next, ok)
}

func (s *Store) DeleteColumn(boardID, columnID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := board.DeleteColumn(s.boards, boardID, columnID)
	return s.commit("delete_column", next, ok)
}

func (s *Store) MoveCard(boardID, sourceColumnID, destColumnID, cardID string, destIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := board.MoveCard(s.boards, boardID, sourceColumnID, destColumnID, cardID, destIndex)
	return s.commit("move_card", next, ok)
}

func (s *Store) ReorderCards(boardID, columnID string, sourceIndex, destIndex int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, ok := board.ReorderCards(s.boards, boardID, columnID, sourceIndex, destIndex)
	return s.commit("reorder_cards", next, ok)
}

// commit installs next as the current snapshot, persists and publishes it.
// A failed write is logged and the snapshot is kept. Callers hold s.mu.
func (s *Store) commit(op string, next []board.Board, ok bool) bool {
	if !ok {
		mutationsTotal.WithLabelValues(op, "noop").Inc()
		s.log.Debug("lookup miss, nothing changed", "op", op)
		return false
	}
	mutationsTotal.WithLabelValues(op, "applied").Inc()
	s.boards = next
	boardsGauge.Set(float64(len(next)))
	s.persist(op)
	for _, sub := range s.subs {
		sub.fn(next)
	}
	return true
}

func (s *Store) persist(op string) {
	data, err := board.Encode(s.boards)
	if err == nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		err = s.slot.Save(ctx, data)
		cancel()
	}
	if err != nil {
		persistFailuresTotal.Inc()
		s.log.Warn("failed to persist boards, keeping in-memory state", "op", op, "error", err)
	}
}
