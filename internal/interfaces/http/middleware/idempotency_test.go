package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pos/backend/internal/infrastructure/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newIdempotentRouter(t *testing.T, status *int) (*gin.Engine, *cache.InMemoryIdempotencyStore, *int) {
	t.Helper()
	store := cache.NewInMemoryIdempotencyStore(time.Hour)
	t.Cleanup(func() { _ = store.Close() })

	calls := 0
	router := gin.New()
	router.Use(RequestID())
	router.POST("/api/v1/sales", Idempotency(store, time.Minute), func(c *gin.Context) {
		calls++
		c.Status(*status)
	})
	router.POST("/api/v1/sales/bulk", Idempotency(store, time.Minute), func(c *gin.Context) {
		calls++
		c.Status(*status)
	})
	return router, store, &calls
}

func sendSale(router *gin.Engine, path, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, nil)
	if key != "" {
		req.Header.Set(IdempotencyKeyHeader, key)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency(t *testing.T) {
	t.Run("repeated key is rejected", func(t *testing.T) {
		status := http.StatusCreated
		router, _, calls := newIdempotentRouter(t, &status)

		assert.Equal(t, http.StatusCreated, sendSale(router, "/api/v1/sales", "k-1").Code)
		w := sendSale(router, "/api/v1/sales", "k-1")
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Contains(t, w.Body.String(), "DUPLICATE_REQUEST")
		assert.Equal(t, 1, *calls)
	})

	t.Run("keys are scoped per route", func(t *testing.T) {
		status := http.StatusCreated
		router, _, calls := newIdempotentRouter(t, &status)

		assert.Equal(t, http.StatusCreated, sendSale(router, "/api/v1/sales", "k-2").Code)
		assert.Equal(t, http.StatusCreated, sendSale(router, "/api/v1/sales/bulk", "k-2").Code)
		assert.Equal(t, 2, *calls)
	})

	t.Run("requests without key are not deduplicated", func(t *testing.T) {
		status := http.StatusCreated
		router, store, calls := newIdempotentRouter(t, &status)

		sendSale(router, "/api/v1/sales", "")
		sendSale(router, "/api/v1/sales", "")
		assert.Equal(t, 2, *calls)
		assert.Zero(t, store.Size())
	})

	t.Run("failed request releases the key", func(t *testing.T) {
		status := http.StatusUnprocessableEntity
		router, store, calls := newIdempotentRouter(t, &status)

		assert.Equal(t, http.StatusUnprocessableEntity, sendSale(router, "/api/v1/sales", "k-3").Code)
		assert.Zero(t, store.Size())

		status = http.StatusCreated
		assert.Equal(t, http.StatusCreated, sendSale(router, "/api/v1/sales", "k-3").Code)
		assert.Equal(t, 2, *calls)
	})

	t.Run("oversized key", func(t *testing.T) {
		status := http.StatusCreated
		router, _, calls := newIdempotentRouter(t, &status)

		w := sendSale(router, "/api/v1/sales", strings.Repeat("k", MaxIdempotencyKeyLength+1))
		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Zero(t, *calls)
	})
}

type failingStore struct{}

func (failingStore) MarkProcessed(context.Context, string, time.Duration) (bool, error) {
	return false, errors.New("redis down")
}
func (failingStore) IsProcessed(context.Context, string) (bool, error) { return false, nil }
func (failingStore) Release(context.Context, string) error             { return nil }
func (failingStore) Close() error                                      { return nil }

func TestIdempotency_StoreFailureFailsOpen(t *testing.T) {
	router := gin.New()
	router.POST("/api/v1/sales", Idempotency(failingStore{}, time.Minute), func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	w := sendSale(router, "/api/v1/sales", "k-4")
	require.Equal(t, http.StatusCreated, w.Code)
}
