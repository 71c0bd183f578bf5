package models

import (
	"fmt"
	"time"
)

// OperationKind tags the offline operation union.
type OperationKind string

const (
	OpCreateSession   OperationKind = "create_session"
	OpUpsertItem      OperationKind = "upsert_item"
	OpInsertSetLog    OperationKind = "insert_set_log"
	OpFinalizeSession OperationKind = "finalize_session"
)

type CreateSessionPayload struct {
	SessionID  ItemID    `json:"sessionId"`
	TemplateID string    `json:"templateId"`
	Label      string    `json:"label,omitempty"`
	StartedAt  time.Time `json:"startedAt"`
}

type UpsertItemPayload struct {
	ItemID     ItemID `json:"itemId"`
	SessionID  ItemID `json:"sessionId"`
	ExerciseID string `json:"exerciseId"`
	OrderIndex int    `json:"orderIndex"`
	Status     string `json:"status"` // planned | performed | skipped
	SkipReason string `json:"skipReason,omitempty"`
}

type InsertSetLogPayload struct {
	ItemID    ItemID    `json:"itemId"`
	SessionID ItemID    `json:"sessionId"`
	SetIndex  int       `json:"setIndex"`
	Weight    float64   `json:"weight"`
	Reps      int       `json:"reps"`
	RPE       *float64  `json:"rpe,omitempty"`
	LoggedAt  time.Time `json:"loggedAt"`
}

type FinalizeSessionPayload struct {
	SessionID       ItemID    `json:"sessionId"`
	EndedAt         time.Time `json:"endedAt"`
	DurationSeconds int       `json:"durationSeconds"`
	TotalSets       int       `json:"totalSets"`
	TotalVolume     float64   `json:"totalVolume"`
}

// OfflineOperation is one not-yet-persisted write. Exactly one payload
// field is set, matching Kind. The ID is deterministic, derived from the
// real upstream identifiers, so replaying the same action twice enqueues
// the same operation.
type OfflineOperation struct {
	ID         string        `json:"id"`
	Kind       OperationKind `json:"kind"`
	EnqueuedAt time.Time     `json:"enqueuedAt"`

	CreateSession   *CreateSessionPayload   `json:"createSession,omitempty"`
	UpsertItem      *UpsertItemPayload      `json:"upsertItem,omitempty"`
	InsertSetLog    *InsertSetLogPayload    `json:"insertSetLog,omitempty"`
	FinalizeSession *FinalizeSessionPayload `json:"finalizeSession,omitempty"`
}

// Deterministic operation ids. These double as idempotency keys: the queue
// upserts by id, so re-enqueueing the same action is a no-op.

func CreateSessionOpID(sessionID ItemID) string {
	return fmt.Sprintf("create_session:%s", sessionID)
}

func UpsertItemOpID(itemID ItemID) string {
	return fmt.Sprintf("upsert_item:%s", itemID)
}

func InsertSetLogOpID(itemID ItemID, setIndex int) string {
	return fmt.Sprintf("insert_set_log:%s:%d", itemID, setIndex)
}

func FinalizeSessionOpID(sessionID ItemID) string {
	return fmt.Sprintf("finalize_session:%s", sessionID)
}
