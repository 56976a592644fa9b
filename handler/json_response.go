package handler

import (
	"encoding/json"
	"net/http"
)

// JSONResponse is the envelope of every JSON body: data on success, error
// otherwise, meta for paging and counts.
type JSONResponse struct {
	Data  any            `json:"data,omitempty"`
	Meta  map[string]any `json:"meta,omitempty"`
	Error *ErrorDetail   `json:"error,omitempty"`
}

// ErrorDetail is the error member of the envelope.
type ErrorDetail struct {
	Code    string              `json:"code,omitempty"`
	Message string              `json:"message,omitempty"`
	Details map[string][]string `json:"details,omitempty"`
}

type jsonResponse struct {
	status int
	body   JSONResponse
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSONOption configures JSON response
type JSONOption func(*jsonResponse)

// WithJSONStatus sets custom HTTP status code
func WithJSONStatus(status int) JSONOption {
	return func(r *jsonResponse) {
		r.status = status
	}
}

// WithJSONMeta adds metadata to response
func WithJSONMeta(meta map[string]any) JSONOption {
	return func(r *jsonResponse) {
		r.body.Meta = meta
	}
}

// JSON answers 200 with v as data. A JSONResponse is sent as is and an
// error is rendered like JSONError.
func JSON(v any, opts ...JSONOption) Response {
	switch val := v.(type) {
	case error:
		return JSONError(val, opts...)
	case JSONResponse:
		return newJSON(http.StatusOK, val, opts)
	default:
		return newJSON(http.StatusOK, JSONResponse{Data: v}, opts)
	}
}

// JSONError renders err without consulting an ErrorMapper: validation errors
// answer 422 with field details, HTTPErrors their own status, anything else
// a generic 500. Domain errors belong in Error so the mapper sees them.
func JSONError(err error, opts ...JSONOption) Response {
	info := (*ErrorMapper)(nil).Classify(err)
	return newJSON(info.StatusCode, errorBody(info), opts)
}

func errorBody(info ErrorInfo) JSONResponse {
	return JSONResponse{Error: &ErrorDetail{
		Code:    info.Key,
		Message: info.Message,
		Details: info.Details,
	}}
}

func newJSON(status int, body JSONResponse, opts []JSONOption) Response {
	r := &jsonResponse{status: status, body: body}
	for _, opt := range opts {
		opt(r)
	}
	return r
}
