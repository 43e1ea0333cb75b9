package middleware

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/polkiloo/shoutout/internal/domain/errors"
	"github.com/polkiloo/shoutout/internal/domain/model"
)

// IdempotencyKeyHeader lets clients name a retryable request explicitly.
const IdempotencyKeyHeader = "Idempotency-Key"

const replayedHeader = "Idempotent-Replayed"

// IdempotencyStore persists request outcomes between retries.
type IdempotencyStore interface {
	Reserve(ctx context.Context, key string, ttl time.Duration) (bool, error)
	Get(ctx context.Context, key string) (*model.IdempotentResponse, error)
	Complete(ctx context.Context, key string, resp model.IdempotentResponse, ttl time.Duration) error
	Release(ctx context.Context, key string) error
}

type recordingWriter struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *recordingWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *recordingWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// IdempotencyOption tunes Idempotent for one route.
type IdempotencyOption func(*idempotencyOptions)

type idempotencyOptions struct {
	explicitKeyOnly bool
}

// ExplicitKeyOnly protects a route only when the client sends Idempotency-Key.
// Routes where the same body may legitimately be posted twice use it.
func ExplicitKeyOnly() IdempotencyOption {
	return func(o *idempotencyOptions) { o.explicitKeyOnly = true }
}

// Idempotent makes a mutating endpoint safe to retry. The first request for a key
// runs the handler, a concurrent duplicate gets 409, a later duplicate receives the
// stored response. Only successful responses are stored; any other outcome
// releases the key so the client can retry once the cause is fixed.
//
// The key covers the caller, method and path together with the Idempotency-Key
// header, or the SHA-256 of the body when the header is absent. When the store is
// unreachable the request proceeds unprotected.
func Idempotent(store IdempotencyStore, ttl time.Duration, logger *slog.Logger, opts ...IdempotencyOption) gin.HandlerFunc {
	var options idempotencyOptions
	for _, opt := range opts {
		opt(&options)
	}

	return func(c *gin.Context) {
		if options.explicitKeyOnly && c.GetHeader(IdempotencyKeyHeader) == "" {
			c.Next()
			return
		}

		key, err := requestKey(c)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "unreadable request body"})
			return
		}
		ctx := c.Request.Context()

		reserved, err := store.Reserve(ctx, key, ttl)
		if err != nil {
			logger.Warn("idempotency store unavailable", slog.String("error", err.Error()))
			c.Next()
			return
		}

		if !reserved {
			replay(c, store, key, logger)
			return
		}

		writer := &recordingWriter{ResponseWriter: c.Writer}
		c.Writer = writer
		c.Next()

		// the request context may already be cancelled by the client
		storeCtx := context.WithoutCancel(ctx)
		status := writer.Status()
		if status < http.StatusOK || status >= http.StatusMultipleChoices {
			if err := store.Release(storeCtx, key); err != nil {
				logger.Warn("release idempotency key failed", slog.String("error", err.Error()))
			}
			return
		}
		resp := model.IdempotentResponse{
			Status:      status,
			ContentType: writer.Header().Get("Content-Type"),
			Body:        writer.body.Bytes(),
		}
		if err := store.Complete(storeCtx, key, resp, ttl); err != nil {
			logger.Warn("store idempotent response failed", slog.String("error", err.Error()))
		}
	}
}

func replay(c *gin.Context, store IdempotencyStore, key string, logger *slog.Logger) {
	record, err := store.Get(c.Request.Context(), key)
	switch {
	case errors.Is(err, domainErrors.ErrNotFound):
		// expired between reserve and get
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": domainErrors.ErrRequestInFlight.Error()})
	case err != nil:
		logger.Warn("read idempotency record failed", slog.String("error", err.Error()))
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	case !record.Completed:
		c.AbortWithStatusJSON(http.StatusConflict, gin.H{"error": domainErrors.ErrRequestInFlight.Error()})
	default:
		c.Header(replayedHeader, "true")
		c.Data(record.Status, record.ContentType, record.Body)
		c.Abort()
	}
}

func requestKey(c *gin.Context) (string, error) {
	var userID int64
	if identity, ok := Identity(c); ok {
		userID = identity.UserID
	}

	discriminator := c.GetHeader(IdempotencyKeyHeader)
	if discriminator == "" {
		body, err := io.ReadAll(c.Request.Body)
		if err != nil {
			return "", err
		}
		_ = c.Request.Body.Close()
		c.Request.Body = io.NopCloser(bytes.NewReader(body))
		sum := sha256.Sum256(body)
		discriminator = "body:" + hex.EncodeToString(sum[:])
	}

	raw := fmt.Sprintf("%d|%s|%s|%s", userID, c.Request.Method, c.Request.URL.Path, discriminator)
	sum := sha256.Sum256([]byte(raw))
	return hex.EncodeToString(sum[:]), nil
}
