package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"crypto-macro-dashboard/internal/domain"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/trace"
)

// RedisLister is the slice of the go-redis client the repository needs.
type RedisLister interface {
	RPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd
	LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd
	LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd
}

// ConversationRepository keeps per-chat advisor history in a capped Redis
// list, newest at the tail.
type ConversationRepository struct {
	client  RedisLister
	tracer  trace.Tracer
	maxKeep int64
}

func NewConversationRepository(client RedisLister, tracer trace.Tracer, maxKeep int) *ConversationRepository {
	if maxKeep <= 0 {
		maxKeep = 100
	}
	return &ConversationRepository{client: client, tracer: tracer, maxKeep: int64(maxKeep)}
}

func conversationKey(chatID int64) string {
	return fmt.Sprintf("conversation:%d", chatID)
}

func (r *ConversationRepository) AppendMessage(ctx context.Context, chatID int64, role, content string) error {
	ctx, span := r.tracer.Start(ctx, "conversation-repo.append-message")
	defer span.End()

	msg := domain.ConversationMessage{
		Role:      role,
		Content:   content,
		CreatedAt: time.Now().UTC(),
	}
	data, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to encode conversation message: %w", err)
	}

	key := conversationKey(chatID)
	if err := r.client.RPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("failed to append conversation message: %w", err)
	}
	// Cap the list so long-running chats do not grow without bound
	if err := r.client.LTrim(ctx, key, -r.maxKeep, -1).Err(); err != nil {
		return fmt.Errorf("failed to trim conversation history: %w", err)
	}
	return nil
}

// RecentMessages returns up to limit messages, oldest-first for prompt building.
func (r *ConversationRepository) RecentMessages(ctx context.Context, chatID int64, limit int) ([]domain.ConversationMessage, error) {
	ctx, span := r.tracer.Start(ctx, "conversation-repo.recent-messages")
	defer span.End()

	if limit <= 0 {
		return nil, nil
	}

	raw, err := r.client.LRange(ctx, conversationKey(chatID), int64(-limit), -1).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load conversation history: %w", err)
	}

	var messages []domain.ConversationMessage
	for _, entry := range raw {
		var m domain.ConversationMessage
		if err := json.Unmarshal([]byte(entry), &m); err != nil {
			// Skip undecodable entries rather than dropping the whole history
			continue
		}
		messages = append(messages, m)
	}
	return messages, nil
}
