// Package events publishes group transaction notifications on Redis pub/sub.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"finance_tracker/internal/domain"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// GroupTransactionEventsChannel is the Redis channel every group transaction event goes to
const GroupTransactionEventsChannel = "group_transaction_events"

// Event types
const (
	GroupTransactionCreated = "group_transaction.created"
	GroupTransactionUpdated = "group_transaction.updated"
	GroupTransactionDeleted = "group_transaction.deleted"
)

// GroupTransactionEvent is the payload published after a committed group mutation
type GroupTransactionEvent struct {
	ID                 string                      `json:"id"`         // Event id (uuid)
	EventType          string                      `json:"event_type"` // group_transaction.created, .updated, .deleted
	GroupID            uint                        `json:"group_id"`
	GroupTransactionID uint                        `json:"group_transaction_id"`
	MemberID           uint                        `json:"member_id"`
	ActorID            uint                        `json:"actor_id"`
	Type               domain.GroupTransactionType `json:"type"`
	Source             domain.GroupExpenseSource   `json:"source,omitempty"`
	Amount             decimal.Decimal             `json:"amount"`
	GroupBalance       decimal.Decimal             `json:"group_balance"`
	Timestamp          time.Time                   `json:"timestamp"`
}

// Publisher sends group transaction events
type Publisher interface {
	PublishGroupTransaction(ctx context.Context, event *GroupTransactionEvent) error
}

// RedisPublisher publishes on GroupTransactionEventsChannel
type RedisPublisher struct {
	rdb *redis.Client
}

// NewRedisPublisher returns a publisher backed by rdb
func NewRedisPublisher(rdb *redis.Client) *RedisPublisher {
	return &RedisPublisher{rdb: rdb}
}

// PublishGroupTransaction stamps and publishes the event
func (p *RedisPublisher) PublishGroupTransaction(ctx context.Context, event *GroupTransactionEvent) error {
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	event.Timestamp = time.Now().UTC()

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	if err := p.rdb.Publish(ctx, GroupTransactionEventsChannel, payload).Err(); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	logrus.WithFields(logrus.Fields{
		"event_id":   event.ID,
		"event_type": event.EventType,
		"group_id":   event.GroupID,
	}).Debug("Group transaction event published")
	return nil
}

// NewGroupTransactionEvent builds the event for a committed row
func NewGroupTransactionEvent(eventType string, tx domain.GroupTransaction, actorID uint, groupBalance decimal.Decimal) *GroupTransactionEvent {
	return &GroupTransactionEvent{
		EventType:          eventType,
		GroupID:            tx.GroupID,
		GroupTransactionID: tx.ID,
		MemberID:           tx.MemberID,
		ActorID:            actorID,
		Type:               tx.Type,
		Source:             tx.Source,
		Amount:             tx.Amount,
		GroupBalance:       groupBalance,
	}
}

// Nop drops every event. Used when no Redis is configured.
type Nop struct{}

// PublishGroupTransaction implements Publisher
func (Nop) PublishGroupTransaction(context.Context, *GroupTransactionEvent) error { return nil }
