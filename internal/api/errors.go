package api

// StatusError carries the HTTP status a handler failure should be reported with.
type StatusError struct {
	Message    string
	StatusCode int
}

func (e *StatusError) Error() string {
	return e.Message
}

func badRequest(msg string) *StatusError {
	return &StatusError{Message: msg, StatusCode: 400}
}

func notFound(msg string) *StatusError {
	return &StatusError{Message: msg, StatusCode: 404}
}
