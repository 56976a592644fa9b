package requestid_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mango/pkg/requestid"
)

func TestMiddleware(t *testing.T) {
	t.Parallel()

	run := func(header string) (ctxID, respID string) {
		h := requestid.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctxID = requestid.FromContext(r.Context())
		}))
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if header != "" {
			req.Header.Set(requestid.Header, header)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return ctxID, rec.Header().Get(requestid.Header)
	}

	t.Run("generates id", func(t *testing.T) {
		ctxID, respID := run("")
		require.NotEmpty(t, ctxID)
		assert.Equal(t, ctxID, respID)
	})

	t.Run("reuses valid id", func(t *testing.T) {
		ctxID, respID := run("req-123_abc")
		assert.Equal(t, "req-123_abc", ctxID)
		assert.Equal(t, "req-123_abc", respID)
	})

	t.Run("replaces invalid ids", func(t *testing.T) {
		for _, bad := range []string{"a b", "x/y", "<script>", strings.Repeat("a", 129)} {
			ctxID, _ := run(bad)
			assert.NotEqual(t, bad, ctxID)
			assert.NotEmpty(t, ctxID)
		}
	})
}

func TestLoggerExtractor(t *testing.T) {
	t.Parallel()

	ex := requestid.LoggerExtractor()

	_, ok := ex(context.Background())
	assert.False(t, ok)

	attr, ok := ex(requestid.WithContext(context.Background(), "abc"))
	assert.True(t, ok)
	assert.Equal(t, "request_id", attr.Key)
	assert.Equal(t, "abc", attr.Value.String())
}
