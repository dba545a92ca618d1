package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
)

// IdempotencyHeaderKey carries the client-chosen key that makes a mutating
// request safe to retry.
const IdempotencyHeaderKey = "Idempotency-Key"

// ErrNoRecord indicates no stored response for the given idempotency key.
var ErrNoRecord = errors.New("no idempotency record")

// IdempotencyStore persists finished responses keyed by idempotency key.
type IdempotencyStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
}

// RedisStore is an IdempotencyStore backed by redis.
type RedisStore struct {
	client *redis.Client
}

// NewRedisStore returns a RedisStore for the given redis address.
func NewRedisStore(address string) *RedisStore {
	return &RedisStore{
		client: redis.NewClient(&redis.Options{Addr: address}),
	}
}

// Get returns the stored response for key.
func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return "", ErrNoRecord
	}

	return value, err
}

// Set stores the response for key with the given ttl.
func (s *RedisStore) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return s.client.Set(ctx, key, value, ttl).Err()
}

type storedResponse struct {
	Status int    `json:"status"`
	Body   string `json:"body"`
}

type bodyRecorder struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (r *bodyRecorder) Write(b []byte) (int, error) {
	r.body.Write(b)
	return r.ResponseWriter.Write(b)
}

// Idempotency replays the stored response for a repeated mutating request
// carrying the same Idempotency-Key. Requests without the header pass through
// untouched. Only successful responses are stored; a failed attempt may be
// retried with the same key.
func Idempotency(store IdempotencyStore, ttl time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader(IdempotencyHeaderKey)
		if key == "" || c.Request.Method == http.MethodGet {
			c.Next()
			return
		}

		l := zerolog.Ctx(c.Request.Context())

		storeKey := "idempotency:" + c.Request.Method + ":" + c.Request.URL.Path + ":" + key

		value, err := store.Get(c.Request.Context(), storeKey)
		switch {
		case err == nil:
			var stored storedResponse
			if err := json.Unmarshal([]byte(value), &stored); err == nil {
				c.Header("Idempotent-Replayed", "true")
				c.Data(stored.Status, "application/json", []byte(stored.Body))
				c.Abort()

				return
			}

			l.Error().Err(err).Str("key", storeKey).Msg("corrupt idempotency record, reprocessing")
		case err != ErrNoRecord:
			l.Error().Err(err).Str("key", storeKey).Msg("idempotency store unavailable, processing without replay")
		}

		recorder := &bodyRecorder{ResponseWriter: c.Writer, body: &bytes.Buffer{}}
		c.Writer = recorder

		c.Next()

		if c.Writer.Status() >= http.StatusInternalServerError {
			return
		}

		stored, err := json.Marshal(storedResponse{
			Status: c.Writer.Status(),
			Body:   recorder.body.String(),
		})
		if err != nil {
			l.Error().Err(err).Send()
			return
		}

		if err := store.Set(c.Request.Context(), storeKey, string(stored), ttl); err != nil {
			l.Error().Err(err).Str("key", storeKey).Msg("failed to store idempotency record")
		}
	}
}
