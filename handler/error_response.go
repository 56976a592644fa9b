package handler

import "net/http"

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error {
	return e.err
}

// Error hands err to the error handler configured on Wrap, so domain errors
// are translated by the shared ErrorMapper instead of in every handler.
func Error(err error) Response {
	return errorResponse{err: err}
}
