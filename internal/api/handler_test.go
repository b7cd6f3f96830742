package api

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gmllt/taskboard/internal/board"
	"github.com/gmllt/taskboard/internal/storage"
	"github.com/gmllt/taskboard/internal/store"
)

func newTestRouter(t *testing.T) (*mux.Router, *store.Store) {
	t.Helper()
	s := store.New(context.Background(), storage.NewMemorySlot(), store.WithIDs(store.NewSequenceIDs("id")))
	return New(s).Router(""), s
}

func do(t *testing.T, router http.Handler, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, bytes.NewBufferString(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), rr.Body.String())
	return v
}

func TestCreateBoardHandler(t *testing.T) {
	router, s := newTestRouter(t)

	t.Run("successful request", func(t *testing.T) {
		rr := do(t, router, http.MethodPost, "/api/boards", `{"name": "Sprint 1"}`)
		require.Equal(t, http.StatusCreated, rr.Code)
		b := decode[board.Board](t, rr)
		assert.Equal(t, "Sprint 1", b.Name)
		assert.NotEmpty(t, b.ID)
		assert.Empty(t, b.Columns)
	})

	t.Run("invalid request body", func(t *testing.T) {
		rr := do(t, router, http.MethodPost, "/api/boards", `{ivalid json::}`)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("blank name", func(t *testing.T) {
		for _, body := range []string{`{}`, `{"name": ""}`, `{"name": "   "}`} {
			rr := do(t, router, http.MethodPost, "/api/boards", body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		}
	})

	assert.Len(t, s.List(), 1)
}

func TestListBoardsHandler(t *testing.T) {
	router, s := newTestRouter(t)
	for _, name := range []string{"Alpha", "beta", "alphabet", "gamma", "ALPS", "delta", "alpine"} {
		s.AddBoard(name)
	}

	rr := do(t, router, http.MethodGet, "/api/boards", "")
	require.Equal(t, http.StatusOK, rr.Code)
	list := decode[boardList](t, rr)
	assert.Equal(t, 7, list.Total)
	assert.Len(t, list.Boards, board.DefaultPageSize)
	assert.True(t, list.HasNext)

	rr = do(t, router, http.MethodGet, "/api/boards?q=alp&page=1&per_page=3", "")
	list = decode[boardList](t, rr)
	assert.Equal(t, 4, list.Total)
	assert.Len(t, list.Boards, 3)
	assert.True(t, list.HasNext)

	rr = do(t, router, http.MethodGet, "/api/boards?q=alp&page=2&per_page=3", "")
	list = decode[boardList](t, rr)
	require.Len(t, list.Boards, 1)
	assert.Equal(t, "alpine", list.Boards[0].Name)
	assert.False(t, list.HasNext)

	t.Run("stored search query applies", func(t *testing.T) {
		rr := do(t, router, http.MethodPut, "/api/search", `{"query": "ta"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		assert.Equal(t, "ta", s.SearchQuery())

		rr = do(t, router, http.MethodGet, "/api/search", "")
		assert.JSONEq(t, `{"query":"ta"}`, rr.Body.String())

		list := decode[boardList](t, do(t, router, http.MethodGet, "/api/boards", ""))
		assert.Equal(t, 2, list.Total) // beta, delta

		list = decode[boardList](t, do(t, router, http.MethodGet, "/api/boards?q=", ""))
		assert.Equal(t, 7, list.Total)
	})

	t.Run("page past the end", func(t *testing.T) {
		for _, page := range []string{"3", "1844674407370955163", "9223372036854775807"} {
			rr := do(t, router, http.MethodGet, "/api/boards?q=&page="+page, "")
			require.Equal(t, http.StatusOK, rr.Code, page)
			list := decode[boardList](t, rr)
			assert.Empty(t, list.Boards, page)
			assert.False(t, list.HasNext, page)
		}
	})

	t.Run("bad page", func(t *testing.T) {
		rr := do(t, router, http.MethodGet, "/api/boards?page=two", "")
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}

func TestGetBoardHandler(t *testing.T) {
	router, s := newTestRouter(t)
	id := s.AddBoard("Home")

	rr := do(t, router, http.MethodGet, "/api/boards/"+id, "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "Home", decode[board.Board](t, rr).Name)

	rr = do(t, router, http.MethodGet, "/api/boards/missing", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestColumnHandlers(t *testing.T) {
	router, s := newTestRouter(t)
	b := s.AddBoard("Home")

	rr := do(t, router, http.MethodPost, "/api/boards/"+b+"/columns", `{"title": "To Do"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	col := decode[board.Column](t, rr)
	assert.Equal(t, "To Do", col.Title)
	assert.Empty(t, col.Cards)

	rr = do(t, router, http.MethodPost, "/api/boards/"+b+"/columns", `{"title": " "}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/boards/missing/columns", `{"title": "To Do"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, http.MethodDelete, "/api/boards/"+b+"/columns/"+col.ID, "")
	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = do(t, router, http.MethodDelete, "/api/boards/"+b+"/columns/"+col.ID, "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

// racingStore deletes every column right after creating it, like a concurrent
// DELETE landing between the add and the read back.
type racingStore struct {
	*store.Store
}

func (r racingStore) AddColumn(boardID, title string) (string, bool) {
	id, ok := r.Store.AddColumn(boardID, title)
	if ok {
		r.Store.DeleteColumn(boardID, id)
	}
	return id, ok
}

func TestCreateColumnDeletedConcurrently(t *testing.T) {
	s := store.New(context.Background(), storage.NewMemorySlot(), store.WithIDs(store.NewSequenceIDs("id")))
	router := New(racingStore{s}).Router("")
	b := s.AddBoard("Home")

	rr := do(t, router, http.MethodPost, "/api/boards/"+b+"/columns", `{"title": "To Do"}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestCardHandlers(t *testing.T) {
	router, s := newTestRouter(t)
	b := s.AddBoard("Home")
	x, _ := s.AddColumn(b, "To Do")
	cardsURL := "/api/boards/" + b + "/columns/" + x + "/cards"

	rr := do(t, router, http.MethodPost, cardsURL, `{"title": "Write docs", "dueDate": "2024-05-01"}`)
	require.Equal(t, http.StatusCreated, rr.Code)
	card := decode[board.Card](t, rr)
	assert.NotEmpty(t, card.ID)
	assert.Equal(t, board.DefaultCreator, card.Creator)
	assert.Equal(t, board.PriorityMedium, card.Priority)

	t.Run("invalid cards", func(t *testing.T) {
		for _, body := range []string{
			`{"title": ""}`,
			`{"title": "  "}`,
			`{"title": "x", "priority": "urgent"}`,
			`{"title": "x", "dueDate": "someday"}`,
		} {
			rr := do(t, router, http.MethodPost, cardsURL, body)
			assert.Equal(t, http.StatusBadRequest, rr.Code, body)
		}
	})

	t.Run("unknown column", func(t *testing.T) {
		rr := do(t, router, http.MethodPost, "/api/boards/"+b+"/columns/missing/cards", `{"title": "x"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("update", func(t *testing.T) {
		rr := do(t, router, http.MethodPut, cardsURL+"/"+card.ID, `{"title": "Write more docs", "priority": "High", "assignee": "ana"}`)
		require.Equal(t, http.StatusOK, rr.Code)
		got, _ := s.Find(b)
		col, _ := got.Column(x)
		require.Len(t, col.Cards, 1)
		assert.Equal(t, card.ID, col.Cards[0].ID)
		assert.Equal(t, "Write more docs", col.Cards[0].Title)
		assert.Equal(t, board.PriorityHigh, col.Cards[0].Priority)
		assert.Equal(t, "ana", col.Cards[0].Assignee)

		rr = do(t, router, http.MethodPut, cardsURL+"/missing", `{"title": "x"}`)
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("delete", func(t *testing.T) {
		rr := do(t, router, http.MethodDelete, cardsURL+"/"+card.ID, "")
		assert.Equal(t, http.StatusNoContent, rr.Code)
		rr = do(t, router, http.MethodDelete, cardsURL+"/"+card.ID, "")
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})
}

func TestMoveAndReorderHandlers(t *testing.T) {
	router, s := newTestRouter(t)
	b := s.AddBoard("Home")
	x, _ := s.AddColumn(b, "To Do")
	y, _ := s.AddColumn(b, "Done")
	for _, id := range []string{"A", "B", "C", "D"} {
		require.True(t, s.AddCard(b, x, board.NewCard(id, id)))
	}

	rr := do(t, router, http.MethodPost, "/api/boards/"+b+"/columns/"+x+"/reorder", `{"source_index": 0, "dest_index": 2}`)
	require.Equal(t, http.StatusOK, rr.Code)
	col := decode[board.Column](t, rr)
	assert.Equal(t, []string{"B", "C", "A", "D"}, []string{col.Cards[0].ID, col.Cards[1].ID, col.Cards[2].ID, col.Cards[3].ID})

	rr = do(t, router, http.MethodPost, "/api/boards/"+b+"/columns/"+x+"/reorder", `{"dest_index": 2}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/boards/"+b+"/columns/"+x+"/reorder", `{"source_index": 9, "dest_index": 0}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/boards/"+b+"/columns/missing/reorder", `{"source_index": 0, "dest_index": 1}`)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	body := `{"source_column_id": "` + x + `", "dest_column_id": "` + y + `", "card_id": "A", "dest_index": 0}`
	rr = do(t, router, http.MethodPost, "/api/boards/"+b+"/move", body)
	require.Equal(t, http.StatusOK, rr.Code)
	moved := decode[board.Board](t, rr)
	require.Len(t, moved.Columns, 2)
	assert.Len(t, moved.Columns[0].Cards, 3)
	require.Len(t, moved.Columns[1].Cards, 1)
	assert.Equal(t, "A", moved.Columns[1].Cards[0].ID)

	rr = do(t, router, http.MethodPost, "/api/boards/"+b+"/move", body)
	assert.Equal(t, http.StatusNotFound, rr.Code)

	rr = do(t, router, http.MethodPost, "/api/boards/"+b+"/move", `{"card_id": "A"}`)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	router, _ := newTestRouter(t)
	do(t, router, http.MethodGet, "/api/boards", "")

	rr := do(t, router, http.MethodGet, "/metrics", "")
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `http_requests_total{method="GET",path="/api/boards",status="200"}`)
	assert.Contains(t, rr.Body.String(), "taskboard_store_boards")
}

func TestEventsHandler(t *testing.T) {
	router, s := newTestRouter(t)
	srv := httptest.NewServer(router)
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/api/events", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := bufio.NewScanner(resp.Body)
	nextData := func() string {
		for lines.Scan() {
			if data, ok := strings.CutPrefix(lines.Text(), "data: "); ok {
				return data
			}
		}
		t.Fatalf("stream ended: %v", lines.Err())
		return ""
	}

	assert.Equal(t, "[]", nextData())

	s.AddBoard("Live")
	var boards []board.Board
	require.NoError(t, json.Unmarshal([]byte(nextData()), &boards))
	require.Len(t, boards, 1)
	assert.Equal(t, "Live", boards[0].Name)
}
