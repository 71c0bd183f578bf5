// Package offline holds the durable operation queue and its idempotent
// replay. Every user action that must reach the persistence layer is
// enqueued first; a sync pass replays the queue in enqueue order and
// removes only confirmed-successful operations, so retries after a dropped
// connection never duplicate writes.
package offline

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"forgefit/internal/models"

	"github.com/sirupsen/logrus"
	"go.uber.org/multierr"
)

// Queue is the durable operation log. Enqueue upserts by operation id, so
// re-enqueueing the same action is a no-op.
type Queue interface {
	Enqueue(ctx context.Context, op models.OfflineOperation) error
	Pending(ctx context.Context) ([]models.OfflineOperation, error)
	Ack(ctx context.Context, opID string) error
}

// Persister is the persistence collaborator the queue replays into.
type Persister interface {
	SessionExists(ctx context.Context, id models.ItemID) (bool, error)
	SetLogExists(ctx context.Context, itemID models.ItemID, setIndex int) (bool, error)
	CreateSession(ctx context.Context, p models.CreateSessionPayload) error
	UpsertItem(ctx context.Context, p models.UpsertItemPayload) error
	InsertSetLog(ctx context.Context, p models.InsertSetLogPayload) error
	FinalizeSession(ctx context.Context, p models.FinalizeSessionPayload) error
}

// Probe checks network availability. It is advisory: a probe error counts
// as online so retries are never starved by a broken probe.
type Probe func(ctx context.Context) (bool, error)

// Report summarizes one sync pass.
type Report struct {
	Synced         int
	AlreadyApplied int
	Failed         int
	Skipped        bool // probe said offline, nothing attempted
	Errors         error
}

// Sync replays the queue in ascending enqueue-timestamp order. Create and
// insert operations precheck existence first; a unique-constraint failure
// on the write itself is likewise treated as already-applied success.
// Every other failure is recorded and leaves the operation queued for the
// next pass — one bad operation never aborts the batch. The pass can be
// cancelled between operations without corruption.
func Sync(ctx context.Context, queue Queue, persister Persister, probe Probe, log *logrus.Entry) (Report, error) {
	var report Report

	if probe != nil {
		online, err := probe(ctx)
		if err != nil {
			log.WithError(err).Warn("network probe failed, assuming online")
		} else if !online {
			report.Skipped = true
			return report, nil
		}
	}

	ops, err := queue.Pending(ctx)
	if err != nil {
		return report, fmt.Errorf("loading pending operations: %w", err)
	}
	sort.SliceStable(ops, func(i, j int) bool {
		if !ops[i].EnqueuedAt.Equal(ops[j].EnqueuedAt) {
			return ops[i].EnqueuedAt.Before(ops[j].EnqueuedAt)
		}
		return ops[i].ID < ops[j].ID
	})

	for _, op := range ops {
		if ctx.Err() != nil {
			// Interrupted between operations: everything not yet acked
			// simply stays queued.
			return report, ctx.Err()
		}
		opLog := log.WithFields(logrus.Fields{"op": op.ID, "kind": op.Kind})

		applied, err := apply(ctx, persister, op)
		switch {
		case err != nil:
			report.Failed++
			report.Errors = multierr.Append(report.Errors, fmt.Errorf("%s: %w", op.ID, err))
			opLog.WithError(err).Warn("operation failed, keeping queued")
			continue
		case applied:
			report.AlreadyApplied++
			opLog.Debug("operation already applied")
		default:
			report.Synced++
			opLog.Debug("operation synced")
		}

		if err := queue.Ack(ctx, op.ID); err != nil {
			// Not acked means it will replay next pass; idempotency makes
			// that safe.
			report.Errors = multierr.Append(report.Errors, fmt.Errorf("ack %s: %w", op.ID, err))
			opLog.WithError(err).Warn("failed to dequeue operation")
		}
	}
	return report, nil
}

// apply performs one operation. alreadyApplied reports that the effect had
// landed from a prior attempt.
func apply(ctx context.Context, persister Persister, op models.OfflineOperation) (alreadyApplied bool, err error) {
	switch op.Kind {
	case models.OpCreateSession:
		if op.CreateSession == nil {
			return false, fmt.Errorf("missing create_session payload")
		}
		exists, err := persister.SessionExists(ctx, op.CreateSession.SessionID)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
		return classifyWrite(persister.CreateSession(ctx, *op.CreateSession))

	case models.OpUpsertItem:
		if op.UpsertItem == nil {
			return false, fmt.Errorf("missing upsert_item payload")
		}
		return classifyWrite(persister.UpsertItem(ctx, *op.UpsertItem))

	case models.OpInsertSetLog:
		if op.InsertSetLog == nil {
			return false, fmt.Errorf("missing insert_set_log payload")
		}
		exists, err := persister.SetLogExists(ctx, op.InsertSetLog.ItemID, op.InsertSetLog.SetIndex)
		if err != nil {
			return false, err
		}
		if exists {
			return true, nil
		}
		return classifyWrite(persister.InsertSetLog(ctx, *op.InsertSetLog))

	case models.OpFinalizeSession:
		if op.FinalizeSession == nil {
			return false, fmt.Errorf("missing finalize_session payload")
		}
		return classifyWrite(persister.FinalizeSession(ctx, *op.FinalizeSession))

	default:
		return false, fmt.Errorf("unknown operation kind %q", op.Kind)
	}
}

// classifyWrite reclassifies a unique-constraint violation as success: the
// effect already landed from a prior attempt.
func classifyWrite(err error) (alreadyApplied bool, out error) {
	if err == nil {
		return false, nil
	}
	if IsUniqueViolation(err) {
		return true, nil
	}
	return false, err
}

// IsUniqueViolation matches the duplicate-key errors libsql/sqlite return.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "UNIQUE constraint failed") ||
		strings.Contains(msg, "SQLITE_CONSTRAINT") ||
		strings.Contains(msg, "duplicate key")
}
