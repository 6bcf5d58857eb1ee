package labour

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// EventWriter appends an immutable business event for an assignment inside
// the caller's transaction.
type EventWriter interface {
	Append(ctx context.Context, tx pgx.Tx, assignmentID string, eventType string, payload map[string]any) error
}

// OutboxWriter enqueues a transactional outbox message.
type OutboxWriter interface {
	Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error
}

// PGEventStore writes assignment_events rows.
type PGEventStore struct{}

func (PGEventStore) Append(ctx context.Context, tx pgx.Tx, assignmentID string, eventType string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("labour: marshal event payload: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO assignment_events (assignment_id, type, payload) VALUES ($1, $2, $3::jsonb)`,
		assignmentID, eventType, body); err != nil {
		return fmt.Errorf("labour: insert event: %w", err)
	}
	return nil
}

// PGOutbox writes outbox rows picked up by the downstream dispatcher.
type PGOutbox struct{}

func (PGOutbox) Enqueue(ctx context.Context, tx pgx.Tx, topic string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("labour: marshal outbox payload: %w", err)
	}
	if _, err := tx.Exec(ctx, `INSERT INTO outbox (topic, payload) VALUES ($1, $2::jsonb)`, topic, body); err != nil {
		return fmt.Errorf("labour: enqueue outbox: %w", err)
	}
	return nil
}
