package board

import "strings"

// DefaultPageSize is the number of boards shown per page of the board list.
const DefaultPageSize = 5

// Filter keeps the boards whose name contains query, ignoring case.
func Filter(boards []Board, query string) []Board {
	q := strings.ToLower(query)
	out := make([]Board, 0, len(boards))
	for _, b := range boards {
		if strings.Contains(strings.ToLower(b.Name), q) {
			out = append(out, b)
		}
	}
	return out
}

// Paginate returns the 1-based page of boards and whether another page follows.
func Paginate(boards []Board, page, perPage int) ([]Board, bool) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPageSize
	}
	// compare page counts first so (page-1)*perPage cannot overflow
	if len(boards) == 0 || page-1 > (len(boards)-1)/perPage {
		return []Board{}, false
	}
	start := (page - 1) * perPage
	end := min(start+perPage, len(boards))
	return boards[start:end], end < len(boards)
}
