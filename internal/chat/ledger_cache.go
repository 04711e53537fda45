// Package chat orchestrates a conversation turn: intent classification, flow
// routing, and dispatch to the diagnosis or appointment pipeline.
package chat

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/arogyamitra/health-chatbot/internal/ledger"
)

// ErrLedgerNotFound marks a conversation id with no cached ledger.
var ErrLedgerNotFound = errors.New("chat: ledger not found")

// LedgerCache keeps a server-side copy of each conversation's ledger in
// Redis. The client's submitted ledger stays authoritative; the cache exists
// for report generation and operational inspection.
type LedgerCache struct {
	redis  *redis.Client
	tracer trace.Tracer
	ttl    time.Duration
}

func NewLedgerCache(client *redis.Client, ttl time.Duration) *LedgerCache {
	if client == nil {
		panic("chat: redis client cannot be nil")
	}
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &LedgerCache{
		redis:  client,
		tracer: otel.Tracer("healthchatbot.internal.chat.cache"),
		ttl:    ttl,
	}
}

func (c *LedgerCache) Save(ctx context.Context, conversationID string, l ledger.Ledger) error {
	ctx, span := c.tracer.Start(ctx, "chat.save_ledger")
	defer span.End()

	data, err := json.Marshal(l)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: marshal ledger failed: %w", err)
	}
	if err := c.redis.Set(ctx, ledgerKey(conversationID), data, c.ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("chat: persist ledger failed: %w", err)
	}
	return nil
}

func (c *LedgerCache) Load(ctx context.Context, conversationID string) (ledger.Ledger, error) {
	ctx, span := c.tracer.Start(ctx, "chat.load_ledger")
	defer span.End()

	data, err := c.redis.Get(ctx, ledgerKey(conversationID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrLedgerNotFound
		}
		span.RecordError(err)
		return nil, fmt.Errorf("chat: load ledger failed: %w", err)
	}

	var l ledger.Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("chat: decode ledger failed: %w", err)
	}
	return l, nil
}

func ledgerKey(id string) string {
	return fmt.Sprintf("ledger:%s", id)
}
