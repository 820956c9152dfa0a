package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextValues(t *testing.T) {
	t.Run("request id", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), RequestIDKey, "test-123")
		assert.Equal(t, "test-123", GetRequestID(ctx))
		assert.Equal(t, "", GetRequestID(context.Background()))
		assert.Equal(t, "", GetRequestID(context.WithValue(context.Background(), RequestIDKey, 12345)))
	})

	t.Run("client ip", func(t *testing.T) {
		ctx := context.WithValue(context.Background(), ClientIPKey, "192.168.1.1")
		assert.Equal(t, "192.168.1.1", GetClientIP(ctx))
		assert.Equal(t, "", GetClientIP(context.WithValue(context.Background(), ClientIPKey, []byte("ip"))))
	})

	t.Run("user id", func(t *testing.T) {
		id, ok := GetUserID(WithUserID(context.Background(), 42))
		assert.True(t, ok)
		assert.Equal(t, int64(42), id)

		_, ok = GetUserID(context.Background())
		assert.False(t, ok)
	})
}

func tagMiddleware(tag string, order *[]string) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChain(t *testing.T) {
	t.Run("first middleware is outermost", func(t *testing.T) {
		var order []string
		h := New(tagMiddleware("a", &order), tagMiddleware("b", &order)).ThenFunc(func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		})

		h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"a", "b", "handler"}, order)
	})

	t.Run("nil handler answers 404", func(t *testing.T) {
		rec := httptest.NewRecorder()
		New().Then(nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("append does not modify the original", func(t *testing.T) {
		var order []string
		base := New(tagMiddleware("a", &order))
		extended := base.Append(tagMiddleware("b", &order))

		noop := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
		base.Then(noop).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"a"}, order)

		order = nil
		extended.Then(noop).ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, []string{"a", "b"}, order)
	})
}
