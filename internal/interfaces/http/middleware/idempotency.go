package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/pos/backend/internal/domain/shared"
	"github.com/pos/backend/internal/infrastructure/logger"
	"github.com/pos/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

const (
	// IdempotencyKeyHeader is the client-chosen key of a sale submission
	IdempotencyKeyHeader = "Idempotency-Key"
	// MaxIdempotencyKeyLength bounds the key stored per request
	MaxIdempotencyKeyLength = 255
)

// Idempotency rejects a repeated Idempotency-Key with 409 while the first
// use is within ttl. Requests without the header pass through. A request that
// does not end in 2xx releases its key so the client can retry.
//
// When the store itself fails the request proceeds unguarded and the failure
// is logged.
func Idempotency(store shared.IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyKeyHeader)
		if key == "" {
			c.Next()
			return
		}
		requestID := c.GetString("request_id")
		if len(key) > MaxIdempotencyKeyLength {
			c.AbortWithStatusJSON(http.StatusBadRequest, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeBadRequest, "Idempotency-Key is too long", requestID))
			return
		}

		log := logger.GetGinLogger(c)
		scoped := c.Request.Method + " " + c.FullPath() + " " + key
		ctx := c.Request.Context()

		isNew, err := store.MarkProcessed(ctx, scoped, ttl)
		if err != nil {
			log.Error("idempotency store unavailable, request not deduplicated",
				zap.String("idempotency_key", key), zap.Error(err))
			c.Next()
			return
		}
		if !isNew {
			log.Info("duplicate request rejected", zap.String("idempotency_key", key))
			c.AbortWithStatusJSON(http.StatusConflict, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeDuplicateRequest, "A request with this Idempotency-Key was already processed", requestID))
			return
		}

		c.Next()

		if status := c.Writer.Status(); status < 200 || status >= 300 {
			// the client's context may already be gone
			if err := store.Release(context.WithoutCancel(ctx), scoped); err != nil {
				log.Warn("failed to release idempotency key", zap.String("idempotency_key", key), zap.Error(err))
			}
		}
	}
}
