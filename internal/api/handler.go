// Package api exposes the board store over HTTP.
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gmllt/taskboard/internal/board"
	"github.com/gmllt/taskboard/internal/logger"
	"github.com/gmllt/taskboard/internal/store"
)

// BoardStore is the store surface the handlers use.
type BoardStore interface {
	List() []board.Board
	Find(boardID string) (board.Board, bool)
	SearchQuery() string
	SetSearchQuery(query string)
	NewID() string
	Subscribe(fn store.Listener) func()
	AddBoard(name string) string
	AddColumn(boardID, title string) (string, bool)
	AddCard(boardID, columnID string, card board.Card) bool
	UpdateCard(boardID, columnID, cardID string, updated board.Card) bool
	DeleteCard(boardID, columnID, cardID string) bool
	DeleteColumn(boardID, columnID string) bool
	MoveCard(boardID, sourceColumnID, destColumnID, cardID string, destIndex int) bool
	ReorderCards(boardID, columnID string, sourceIndex, destIndex int) bool
}

var _ BoardStore = (*store.Store)(nil)

type Handler struct {
	store BoardStore
}

func New(s BoardStore) *Handler {
	return &Handler{store: s}
}

// Router wires the API routes, the metrics endpoint and the static files.
func (h *Handler) Router(staticDir string) *mux.Router {
	r := mux.NewRouter()
	r.Use(Instrument)

	sub := r.PathPrefix("/api").Subrouter()
	sub.HandleFunc("/boards", h.ListBoards).Methods("GET")
	sub.HandleFunc("/boards", h.CreateBoard).Methods("POST")
	sub.HandleFunc("/boards/{board}", h.GetBoard).Methods("GET")
	sub.HandleFunc("/boards/{board}/move", h.MoveCard).Methods("POST")
	sub.HandleFunc("/boards/{board}/columns", h.CreateColumn).Methods("POST")
	sub.HandleFunc("/boards/{board}/columns/{column}", h.DeleteColumn).Methods("DELETE")
	sub.HandleFunc("/boards/{board}/columns/{column}/reorder", h.ReorderCards).Methods("POST")
	sub.HandleFunc("/boards/{board}/columns/{column}/cards", h.CreateCard).Methods("POST")
	sub.HandleFunc("/boards/{board}/columns/{column}/cards/{card}", h.UpdateCard).Methods("PUT")
	sub.HandleFunc("/boards/{board}/columns/{column}/cards/{card}", h.DeleteCard).Methods("DELETE")
	sub.HandleFunc("/search", h.GetSearch).Methods("GET")
	sub.HandleFunc("/search", h.SetSearch).Methods("PUT")
	sub.HandleFunc("/events", h.Events).Methods("GET")

	r.Handle("/metrics", promhttp.Handler()).Methods("GET")
	if staticDir != "" {
		r.PathPrefix("/").Handler(http.FileServer(http.Dir(staticDir)))
	}
	return r
}

type boardList struct {
	Boards  []board.Board `json:"boards"`
	Total   int           `json:"total"`
	Page    int           `json:"page"`
	HasNext bool          `json:"has_next"`
}

// ListBoards filters boards by name and returns one page of them. Without a
// q parameter the store's search query applies.
func (h *Handler) ListBoards(w http.ResponseWriter, r *http.Request) {
	params := r.URL.Query()
	query := h.store.SearchQuery()
	if params.Has("q") {
		query = params.Get("q")
	}
	page, err := intParam(params.Get("page"), 1)
	if err != nil {
		writeError(w, err)
		return
	}
	perPage, err := intParam(params.Get("per_page"), board.DefaultPageSize)
	if err != nil {
		writeError(w, err)
		return
	}

	filtered := board.Filter(h.store.List(), query)
	boards, hasNext := board.Paginate(filtered, page, perPage)
	writeJSON(w, http.StatusOK, boardList{
		Boards:  boards,
		Total:   len(filtered),
		Page:    max(page, 1),
		HasNext: hasNext,
	})
}

func (h *Handler) CreateBoard(w http.ResponseWriter, r *http.Request) {
	var req boardRequest
	if err := decodeValidate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if blank(req.Name) {
		writeError(w, badRequest("Board name is required"))
		return
	}
	id := h.store.AddBoard(req.Name)
	b, _ := h.store.Find(id)
	writeJSON(w, http.StatusCreated, b)
}

func (h *Handler) GetBoard(w http.ResponseWriter, r *http.Request) {
	b, ok := h.store.Find(mux.Vars(r)["board"])
	if !ok {
		writeError(w, notFound("Board not found"))
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) CreateColumn(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["board"]
	var req columnRequest
	if err := decodeValidate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if blank(req.Title) {
		writeError(w, badRequest("Column title is required"))
		return
	}
	id, ok := h.store.AddColumn(boardID, req.Title)
	if !ok {
		writeError(w, notFound("Board not found"))
		return
	}
	col, ok := h.findColumn(boardID, id)
	if !ok {
		// deleted by a concurrent request
		writeError(w, notFound("Column not found"))
		return
	}
	writeJSON(w, http.StatusCreated, col)
}

func (h *Handler) DeleteColumn(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.store.DeleteColumn(vars["board"], vars["column"]) {
		writeError(w, notFound("Column not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req cardRequest
	if err := decodeValidate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	card, err := req.card(h.store.NewID())
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.store.AddCard(vars["board"], vars["column"], card) {
		writeError(w, notFound("Column not found"))
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req cardRequest
	if err := decodeValidate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	card, err := req.card(vars["card"])
	if err != nil {
		writeError(w, err)
		return
	}
	if !h.store.UpdateCard(vars["board"], vars["column"], vars["card"], card) {
		writeError(w, notFound("Card not found"))
		return
	}
	writeJSON(w, http.StatusOK, card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	if !h.store.DeleteCard(vars["board"], vars["column"], vars["card"]) {
		writeError(w, notFound("Card not found"))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) MoveCard(w http.ResponseWriter, r *http.Request) {
	boardID := mux.Vars(r)["board"]
	var req moveRequest
	if err := decodeValidate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if !h.store.MoveCard(boardID, req.SourceColumnID, req.DestColumnID, req.CardID, *req.DestIndex) {
		writeError(w, notFound("Card not found"))
		return
	}
	b, _ := h.store.Find(boardID)
	writeJSON(w, http.StatusOK, b)
}

func (h *Handler) ReorderCards(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	var req reorderRequest
	if err := decodeValidate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	if !h.store.ReorderCards(vars["board"], vars["column"], *req.SourceIndex, *req.DestIndex) {
		if _, ok := h.findColumn(vars["board"], vars["column"]); ok {
			writeError(w, badRequest(fmt.Sprintf("source_index %d out of range", *req.SourceIndex)))
			return
		}
		writeError(w, notFound("Column not found"))
		return
	}
	col, ok := h.findColumn(vars["board"], vars["column"])
	if !ok {
		writeError(w, notFound("Column not found"))
		return
	}
	writeJSON(w, http.StatusOK, col)
}

func (h *Handler) GetSearch(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, searchRequest{Query: h.store.SearchQuery()})
}

func (h *Handler) SetSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := decodeValidate(r.Body, &req); err != nil {
		writeError(w, err)
		return
	}
	h.store.SetSearchQuery(req.Query)
	writeJSON(w, http.StatusOK, req)
}

func (h *Handler) findColumn(boardID, columnID string) (board.Column, bool) {
	b, ok := h.store.Find(boardID)
	if !ok {
		return board.Column{}, false
	}
	return b.Column(columnID)
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, badRequest(fmt.Sprintf("invalid number %q", raw))
	}
	return n, nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger.Log.Error("failed to encode response", "component", "http", "error", err)
	}
}

func writeError(w http.ResponseWriter, err error) {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		http.Error(w, statusErr.Message, statusErr.StatusCode)
		return
	}
	logger.Log.Error("request failed", "component", "http", "error", err)
	http.Error(w, "Internal error", http.StatusInternalServerError)
}
