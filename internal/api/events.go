package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gmllt/taskboard/internal/board"
)

// Events streams the board collection as server-sent events: the current
// snapshot first, then every published one. A slow client only ever gets the
// latest snapshot.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	updates := make(chan []board.Board, 1)
	cancel := h.store.Subscribe(func(boards []board.Board) {
		select {
		case <-updates:
		default:
		}
		updates <- boards
	})
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	if err := writeEvent(w, h.store.List()); err != nil {
		return
	}
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case boards := <-updates:
			if err := writeEvent(w, boards); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

func writeEvent(w http.ResponseWriter, boards []board.Board) error {
	data, err := json.Marshal(boards)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: boards\ndata: %s\n\n", data)
	return err
}
