package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/dmitrymomot/mango/pkg/logger"
	"github.com/dmitrymomot/mango/pkg/requestid"
)

const genericErrorMessage = "An error occurred processing your request"

// ErrorRule binds a domain error to its transport representation.
type ErrorRule struct {
	Target error
	Err    HTTPError

	// Expose puts err.Error() into the response message. Only for errors
	// whose text is safe to show to clients.
	Expose bool
}

// Map creates a rule that answers target with httpErr and a generic message.
func Map(target error, httpErr HTTPError) ErrorRule {
	return ErrorRule{Target: target, Err: httpErr}
}

// MapExposed creates a rule that answers target with httpErr and the error text.
func MapExposed(target error, httpErr HTTPError) ErrorRule {
	return ErrorRule{Target: target, Err: httpErr, Expose: true}
}

// fieldErrors is implemented by ValidationError and by validator.ValidationErrors.
type fieldErrors interface {
	error
	FieldErrors() map[string][]string
}

// ErrorInfo contains classified error information
type ErrorInfo struct {
	StatusCode int
	Key        string
	Message    string
	Details    map[string][]string
	LogLevel   slog.Level
}

// ErrorMapper is the single place where domain errors become HTTP statuses.
// Rules are matched in order with errors.Is.
type ErrorMapper struct {
	rules []ErrorRule
}

// NewErrorMapper creates a mapper from rules.
func NewErrorMapper(rules ...ErrorRule) *ErrorMapper {
	return &ErrorMapper{rules: rules}
}

// With returns a copy of the mapper extended with more rules.
func (m *ErrorMapper) With(rules ...ErrorRule) *ErrorMapper {
	out := &ErrorMapper{rules: make([]ErrorRule, 0, len(m.rules)+len(rules))}
	out.rules = append(out.rules, m.rules...)
	out.rules = append(out.rules, rules...)
	return out
}

// Classify maps err to its status, key and client message.
func (m *ErrorMapper) Classify(err error) ErrorInfo {
	info := ErrorInfo{
		StatusCode: http.StatusInternalServerError,
		Key:        "internal_error",
		Message:    genericErrorMessage,
	}

	var fieldErr fieldErrors
	var httpErr HTTPError

	switch {
	case errors.As(err, &fieldErr):
		info.StatusCode = http.StatusUnprocessableEntity
		info.Key = "validation_error"
		info.Message = fieldErr.Error()
		if details := fieldErr.FieldErrors(); len(details) > 0 {
			info.Details = details
		}
	case m.match(err, &info):
	case errors.As(err, &httpErr):
		info.StatusCode = httpErr.Code
		info.Key = httpErr.Key
		info.Message = http.StatusText(httpErr.Code)
	}

	info.LogLevel = determineLogLevel(info.StatusCode)
	return info
}

func (m *ErrorMapper) match(err error, info *ErrorInfo) bool {
	if m == nil {
		return false
	}
	for _, rule := range m.rules {
		if !errors.Is(err, rule.Target) {
			continue
		}
		info.StatusCode = rule.Err.Code
		info.Key = rule.Err.Key
		info.Message = http.StatusText(rule.Err.Code)
		if rule.Expose {
			info.Message = err.Error()
		}
		return true
	}
	return false
}

// Responder returns an http-level error writer for middlewares that run
// outside Wrap, such as the session gate and the authorization check.
func (m *ErrorMapper) Responder(log *slog.Logger) func(w http.ResponseWriter, r *http.Request, err error) {
	if log == nil {
		log = slog.Default()
	}
	return func(w http.ResponseWriter, r *http.Request, err error) {
		m.write(w, r, log, err)
	}
}

func (m *ErrorMapper) write(w http.ResponseWriter, r *http.Request, log *slog.Logger, err error) {
	info := m.Classify(err)
	logError(log, r, err, info)

	resp := jsonResponse{status: info.StatusCode, body: errorBody(info)}
	if renderErr := resp.Render(w, r); renderErr != nil {
		log.ErrorContext(r.Context(), "failed to render error response",
			logger.Error(renderErr),
			logger.Component("error_handler"),
		)
	}
}

func determineLogLevel(statusCode int) slog.Level {
	if statusCode >= http.StatusBadRequest && statusCode < http.StatusInternalServerError {
		return slog.LevelWarn
	}
	return slog.LevelError
}

func logError(log *slog.Logger, r *http.Request, err error, info ErrorInfo) {
	log.LogAttrs(r.Context(), info.LogLevel, "request error",
		logger.RequestID(requestid.FromContext(r.Context())),
		logger.Error(err),
		logger.Status(info.StatusCode),
		logger.Method(r.Method),
		logger.Path(r.URL.Path),
		logger.Component("error_handler"),
	)
}

// NewErrorHandler creates the JSON error handler used by Wrap.
// Configure it once in main.go and pass it to all modules.
func NewErrorHandler(m *ErrorMapper, log *slog.Logger) ErrorHandler[Context] {
	if log == nil {
		log = slog.Default()
	}
	return func(ctx Context, err error) {
		m.write(ctx.ResponseWriter(), ctx.Request(), log, err)
	}
}

var nopLogger = slog.New(slog.DiscardHandler)
