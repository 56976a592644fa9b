package handler_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/handler"
	"github.com/dmitrymomot/mango/pkg/binder"
	"github.com/dmitrymomot/mango/pkg/validator"
)

var (
	errExpired = errors.New("session.token_expired")
	errDenied  = errors.New("rbac.access_denied")
)

func testMapper() *handler.ErrorMapper {
	return handler.NewErrorMapper(
		handler.Map(errExpired, handler.NewHTTPError(http.StatusForbidden, "token_expired")),
		handler.MapExposed(errDenied, handler.NewHTTPError(http.StatusForbidden, "access_denied")),
	)
}

type errorBody struct {
	Error handler.ErrorDetail `json:"error"`
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) handler.ErrorDetail {
	t.Helper()
	var body errorBody
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body.Error
}

type greetRequest struct {
	Name string `json:"name"`
}

func TestWrap(t *testing.T) {
	t.Parallel()

	greet := func(ctx handler.Context, req greetRequest) handler.Response {
		if req.Name == "" {
			v := handler.NewValidationError()
			v.Add("name", "required")
			return handler.JSONError(v)
		}
		return handler.JSON(map[string]string{"hello": req.Name}, handler.WithJSONStatus(http.StatusCreated))
	}

	h := handler.Wrap(greet,
		handler.WithBinders[handler.Context, greetRequest](binder.JSON()),
		handler.WithErrorHandler[handler.Context, greetRequest](handler.NewErrorHandler(testMapper(), nil)),
	)

	t.Run("success", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"ann"}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusCreated, rec.Code)
		assert.JSONEq(t, `{"data":{"hello":"ann"}}`, rec.Body.String())
	})

	t.Run("validation error", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":""}`))
		req.Header.Set("Content-Type", "application/json")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
		detail := decodeError(t, rec)
		assert.Equal(t, "validation_error", detail.Code)
		assert.Equal(t, []string{"required"}, detail.Details["name"])
	})

	t.Run("binder error goes to error handler", func(t *testing.T) {
		t.Parallel()
		req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`nope`))
		req.Header.Set("Content-Type", "text/plain")
		rec := httptest.NewRecorder()
		h(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
		assert.Equal(t, "internal_error", decodeError(t, rec).Code)
	})

	t.Run("not applicable binder is skipped", func(t *testing.T) {
		t.Parallel()
		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodPost, "/", nil))

		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}

func TestWrap_NilResponseAndDecorators(t *testing.T) {
	t.Parallel()

	var order []string
	trace := func(name string) handler.Decorator[handler.Context, struct{}] {
		return func(next handler.HandlerFunc[handler.Context, struct{}]) handler.HandlerFunc[handler.Context, struct{}] {
			return func(ctx handler.Context, req struct{}) handler.Response {
				order = append(order, name)
				return next(ctx, req)
			}
		}
	}

	h := handler.Wrap(func(handler.Context, struct{}) handler.Response { return nil },
		handler.WithDecorators(trace("outer"), trace("inner")),
	)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, []string{"outer", "inner"}, order)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

type tenantContext struct {
	handler.Context
	tenant string
}

func TestWrap_CustomContext(t *testing.T) {
	t.Parallel()

	greet := func(ctx tenantContext, _ struct{}) handler.Response {
		return handler.JSON(map[string]string{"tenant": ctx.tenant})
	}

	t.Run("with factory", func(t *testing.T) {
		h := handler.Wrap(greet,
			handler.WithContextFactory[tenantContext, struct{}](func(w http.ResponseWriter, r *http.Request) tenantContext {
				return tenantContext{Context: handler.NewContext(w, r), tenant: "acme"}
			}),
		)

		rec := httptest.NewRecorder()
		h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"tenant":"acme"}}`, rec.Body.String())
	})

	t.Run("without factory panics", func(t *testing.T) {
		h := handler.Wrap(greet)
		assert.Panics(t, func() {
			h(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		})
	})
}

func TestErrorMapper_Classify(t *testing.T) {
	t.Parallel()
	m := testMapper()

	tests := []struct {
		name    string
		err     error
		status  int
		key     string
		message string
	}{
		{name: "mapped sentinel", err: errExpired, status: http.StatusForbidden, key: "token_expired", message: "Forbidden"},
		{name: "wrapped sentinel", err: fmt.Errorf("verify: %w", errExpired), status: http.StatusForbidden, key: "token_expired", message: "Forbidden"},
		{name: "exposed message", err: fmt.Errorf("%w: GET /users", errDenied), status: http.StatusForbidden, key: "access_denied", message: "rbac.access_denied: GET /users"},
		{name: "http error", err: handler.ErrConflict, status: http.StatusConflict, key: "conflict", message: "Conflict"},
		{name: "unknown error", err: errors.New("db down"), status: http.StatusInternalServerError, key: "internal_error", message: "An error occurred processing your request"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info := m.Classify(tt.err)
			assert.Equal(t, tt.status, info.StatusCode)
			assert.Equal(t, tt.key, info.Key)
			assert.Equal(t, tt.message, info.Message)
		})
	}

	var nilMapper *handler.ErrorMapper
	assert.Equal(t, http.StatusConflict, nilMapper.Classify(handler.ErrConflict).StatusCode)
}

func TestErrorMapper_With(t *testing.T) {
	t.Parallel()

	base := testMapper()
	extra := errors.New("user.not_found")
	extended := base.With(handler.Map(extra, handler.ErrNotFound))

	assert.Equal(t, http.StatusNotFound, extended.Classify(extra).StatusCode)
	assert.Equal(t, http.StatusInternalServerError, base.Classify(extra).StatusCode)
	assert.Equal(t, http.StatusForbidden, extended.Classify(errExpired).StatusCode)
}

func TestErrorMapper_Responder(t *testing.T) {
	t.Parallel()

	respond := testMapper().Responder(nil)
	rec := httptest.NewRecorder()
	respond(rec, httptest.NewRequest(http.MethodGet, "/users", nil), errExpired)

	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Equal(t, "application/json; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, "token_expired", decodeError(t, rec).Code)
}

func TestEmpty(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, handler.Empty().Render(rec, httptest.NewRequest(http.MethodDelete, "/", nil)))
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())

	rec = httptest.NewRecorder()
	require.NoError(t, handler.EmptyWithStatus(http.StatusAccepted).Render(rec, httptest.NewRequest(http.MethodPost, "/", nil)))
	assert.Equal(t, http.StatusAccepted, rec.Code)
}

func TestJSONError(t *testing.T) {
	t.Parallel()

	rec := httptest.NewRecorder()
	require.NoError(t, handler.JSONError(handler.ErrNotFound).Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "not_found", decodeError(t, rec).Code)

	rec = httptest.NewRecorder()
	resp := handler.JSON(handler.JSONResponse{Data: 1}, handler.WithJSONMeta(map[string]any{"total": 1}))
	require.NoError(t, resp.Render(rec, httptest.NewRequest(http.MethodGet, "/", nil)))
	assert.JSONEq(t, `{"data":1,"meta":{"total":1}}`, rec.Body.String())
}

func TestValidationError(t *testing.T) {
	t.Parallel()

	v := handler.NewValidationError()
	assert.True(t, v.IsEmpty())
	assert.Equal(t, "validation failed", v.Error())

	v.Add("password", "too short")
	v.Add("email", "invalid")
	v.Add("email", "taken")

	assert.False(t, v.IsEmpty())
	assert.True(t, v.Has("email"))
	assert.Equal(t, "invalid", v.Get("email"))
	assert.Equal(t, "validation error: email: invalid, password: too short", v.Error())
}

func TestErrorMapper_ClassifiesRuleErrors(t *testing.T) {
	t.Parallel()

	err := validator.Apply(validator.Required("name", ""))
	info := testMapper().Classify(fmt.Errorf("register: %w", err))

	assert.Equal(t, http.StatusUnprocessableEntity, info.StatusCode)
	assert.Equal(t, "validation_error", info.Key)
	assert.Equal(t, map[string][]string{"name": {"field is required"}}, info.Details)
}

func TestError_GoesThroughMapper(t *testing.T) {
	t.Parallel()

	expired := func(ctx handler.Context, _ struct{}) handler.Response {
		return handler.Error(fmt.Errorf("verify: %w", errExpired))
	}
	h := handler.Wrap(expired,
		handler.WithErrorHandler[handler.Context, struct{}](handler.NewErrorHandler(testMapper(), nil)),
	)

	rec := httptest.NewRecorder()
	h(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusForbidden, rec.Code)
	detail := decodeError(t, rec)
	assert.Equal(t, "token_expired", detail.Code)
	assert.Equal(t, http.StatusText(http.StatusForbidden), detail.Message)
}
