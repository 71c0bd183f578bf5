package offline

import (
	"time"

	"forgefit/internal/models"
)

// Operation constructors. Each id is deterministic, derived from the real
// persistence identifiers, never from a locally-fabricated one — enqueueing
// the same action twice yields the same operation id and the queue's
// upsert collapses them.

func NewCreateSessionOp(p models.CreateSessionPayload, now time.Time) models.OfflineOperation {
	return models.OfflineOperation{
		ID:            models.CreateSessionOpID(p.SessionID),
		Kind:          models.OpCreateSession,
		EnqueuedAt:    now,
		CreateSession: &p,
	}
}

func NewUpsertItemOp(p models.UpsertItemPayload, now time.Time) models.OfflineOperation {
	return models.OfflineOperation{
		ID:         models.UpsertItemOpID(p.ItemID),
		Kind:       models.OpUpsertItem,
		EnqueuedAt: now,
		UpsertItem: &p,
	}
}

func NewInsertSetLogOp(p models.InsertSetLogPayload, now time.Time) models.OfflineOperation {
	return models.OfflineOperation{
		ID:           models.InsertSetLogOpID(p.ItemID, p.SetIndex),
		Kind:         models.OpInsertSetLog,
		EnqueuedAt:   now,
		InsertSetLog: &p,
	}
}

func NewFinalizeSessionOp(p models.FinalizeSessionPayload, now time.Time) models.OfflineOperation {
	return models.OfflineOperation{
		ID:              models.FinalizeSessionOpID(p.SessionID),
		Kind:            models.OpFinalizeSession,
		EnqueuedAt:      now,
		FinalizeSession: &p,
	}
}
