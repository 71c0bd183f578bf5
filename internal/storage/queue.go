package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"forgefit/internal/models"
)

// Durable offline queue, backed by the offline_queue table. Operations are
// upserted by their deterministic id, so re-enqueueing the same action
// collapses into one row.

func (s *Storage) Enqueue(ctx context.Context, op models.OfflineOperation) error {
	payload, err := json.Marshal(op)
	if err != nil {
		return fmt.Errorf("encoding operation %s: %w", op.ID, err)
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT OR REPLACE INTO offline_queue (id, kind, payload, enqueued_at) VALUES (?, ?, ?, ?)",
		op.ID, string(op.Kind), string(payload), op.EnqueuedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("enqueueing operation %s: %w", op.ID, err)
	}
	s.log.WithField("op", op.ID).Debug("operation enqueued")
	return nil
}

// Pending returns all queued operations in ascending enqueue order.
func (s *Storage) Pending(ctx context.Context) ([]models.OfflineOperation, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM offline_queue ORDER BY enqueued_at ASC, id ASC",
	)
	if err != nil {
		return nil, fmt.Errorf("querying offline queue: %w", err)
	}
	defer rows.Close()

	var ops []models.OfflineOperation
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("scanning queued operation: %w", err)
		}
		var op models.OfflineOperation
		if err := json.Unmarshal([]byte(payload), &op); err != nil {
			return nil, fmt.Errorf("decoding queued operation: %w", err)
		}
		ops = append(ops, op)
	}
	return ops, rows.Err()
}

// Ack removes a confirmed-successful operation from the queue.
func (s *Storage) Ack(ctx context.Context, opID string) error {
	_, err := s.db.ExecContext(ctx, "DELETE FROM offline_queue WHERE id = ?", opID)
	if err != nil {
		return fmt.Errorf("dequeuing operation %s: %w", opID, err)
	}
	return nil
}

// DiscardSessionOps drops every queued operation belonging to a session.
// Used when a session is cancelled before ever syncing.
func (s *Storage) DiscardSessionOps(ctx context.Context, sessionID models.ItemID) error {
	ops, err := s.Pending(ctx)
	if err != nil {
		return err
	}
	for _, op := range ops {
		if opSessionID(op) != sessionID {
			continue
		}
		if err := s.Ack(ctx, op.ID); err != nil {
			return err
		}
	}
	return nil
}

func opSessionID(op models.OfflineOperation) models.ItemID {
	switch {
	case op.CreateSession != nil:
		return op.CreateSession.SessionID
	case op.UpsertItem != nil:
		return op.UpsertItem.SessionID
	case op.InsertSetLog != nil:
		return op.InsertSetLog.SessionID
	case op.FinalizeSession != nil:
		return op.FinalizeSession.SessionID
	default:
		return ""
	}
}
