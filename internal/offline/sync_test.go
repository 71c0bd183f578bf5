package offline

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"forgefit/internal/models"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log.WithField("component", "test")
}

// fakeQueue is an in-memory Queue with the same upsert-by-id semantics as
// the durable one.
type fakeQueue struct {
	ops []models.OfflineOperation
}

func (q *fakeQueue) Enqueue(_ context.Context, op models.OfflineOperation) error {
	for i, existing := range q.ops {
		if existing.ID == op.ID {
			q.ops[i] = op
			return nil
		}
	}
	q.ops = append(q.ops, op)
	return nil
}

func (q *fakeQueue) Pending(_ context.Context) ([]models.OfflineOperation, error) {
	return append([]models.OfflineOperation(nil), q.ops...), nil
}

func (q *fakeQueue) Ack(_ context.Context, opID string) error {
	for i, op := range q.ops {
		if op.ID == opID {
			q.ops = append(q.ops[:i], q.ops[i+1:]...)
			return nil
		}
	}
	return nil
}

// fakePersister records applied operations and can be told to fail.
type fakePersister struct {
	sessions map[models.ItemID]bool
	items    map[models.ItemID]models.UpsertItemPayload
	setLogs  map[string]bool
	applied  []string

	failWith map[string]error
}

func newFakePersister() *fakePersister {
	return &fakePersister{
		sessions: make(map[models.ItemID]bool),
		items:    make(map[models.ItemID]models.UpsertItemPayload),
		setLogs:  make(map[string]bool),
		failWith: make(map[string]error),
	}
}

func setLogKey(itemID models.ItemID, setIndex int) string {
	return fmt.Sprintf("%s:%d", itemID, setIndex)
}

func (p *fakePersister) SessionExists(_ context.Context, id models.ItemID) (bool, error) {
	return p.sessions[id], nil
}

func (p *fakePersister) SetLogExists(_ context.Context, itemID models.ItemID, setIndex int) (bool, error) {
	return p.setLogs[setLogKey(itemID, setIndex)], nil
}

func (p *fakePersister) CreateSession(_ context.Context, payload models.CreateSessionPayload) error {
	if err := p.failWith["create_session"]; err != nil {
		return err
	}
	p.sessions[payload.SessionID] = true
	p.applied = append(p.applied, "create_session")
	return nil
}

func (p *fakePersister) UpsertItem(_ context.Context, payload models.UpsertItemPayload) error {
	if err := p.failWith["upsert_item"]; err != nil {
		return err
	}
	p.items[payload.ItemID] = payload
	p.applied = append(p.applied, "upsert_item")
	return nil
}

func (p *fakePersister) InsertSetLog(_ context.Context, payload models.InsertSetLogPayload) error {
	if err := p.failWith["insert_set_log"]; err != nil {
		return err
	}
	p.setLogs[setLogKey(payload.ItemID, payload.SetIndex)] = true
	p.applied = append(p.applied, "insert_set_log")
	return nil
}

func (p *fakePersister) FinalizeSession(_ context.Context, payload models.FinalizeSessionPayload) error {
	if err := p.failWith["finalize_session"]; err != nil {
		return err
	}
	p.applied = append(p.applied, "finalize_session")
	return nil
}

func seedSessionOps(t *testing.T, queue *fakeQueue) {
	t.Helper()
	base := time.Date(2026, 3, 2, 18, 0, 0, 0, time.UTC)
	ctx := context.Background()

	require.NoError(t, queue.Enqueue(ctx, NewCreateSessionOp(models.CreateSessionPayload{
		SessionID: "sess-1", TemplateID: "push_day", StartedAt: base,
	}, base)))
	require.NoError(t, queue.Enqueue(ctx, NewUpsertItemOp(models.UpsertItemPayload{
		ItemID: "item-1", SessionID: "sess-1", ExerciseID: "bench_press", OrderIndex: 1, Status: "planned",
	}, base.Add(time.Second))))
	require.NoError(t, queue.Enqueue(ctx, NewInsertSetLogOp(models.InsertSetLogPayload{
		ItemID: "item-1", SessionID: "sess-1", SetIndex: 1, Weight: 60, Reps: 8, LoggedAt: base,
	}, base.Add(2*time.Second))))
	require.NoError(t, queue.Enqueue(ctx, NewFinalizeSessionOp(models.FinalizeSessionPayload{
		SessionID: "sess-1", EndedAt: base.Add(time.Hour), DurationSeconds: 3600, TotalSets: 1, TotalVolume: 480,
	}, base.Add(3*time.Second))))
}

func TestSyncReplaysInEnqueueOrder(t *testing.T) {
	queue := &fakeQueue{}
	persister := newFakePersister()
	seedSessionOps(t, queue)

	report, err := Sync(context.Background(), queue, persister, nil, testLog())
	require.NoError(t, err)
	assert.Equal(t, 4, report.Synced)
	assert.Zero(t, report.Failed)
	assert.NoError(t, report.Errors)
	assert.Empty(t, queue.ops, "successful operations must be dequeued")
	assert.Equal(t, []string{"create_session", "upsert_item", "insert_set_log", "finalize_session"}, persister.applied)
}

func TestSyncTwiceIsIdempotent(t *testing.T) {
	queue := &fakeQueue{}
	persister := newFakePersister()
	seedSessionOps(t, queue)

	_, err := Sync(context.Background(), queue, persister, nil, testLog())
	require.NoError(t, err)

	// Same actions enqueued again, e.g. a retry after a crash mid-ack.
	seedSessionOps(t, queue)
	report, err := Sync(context.Background(), queue, persister, nil, testLog())
	require.NoError(t, err)

	// The prechecked kinds detect the earlier apply; upserts and the
	// finalize update are naturally safe to repeat.
	assert.Equal(t, 2, report.AlreadyApplied)
	assert.Equal(t, 2, report.Synced)
	assert.Zero(t, report.Failed)
	assert.Empty(t, queue.ops)
}

func TestSyncFailureKeepsOperationQueued(t *testing.T) {
	queue := &fakeQueue{}
	persister := newFakePersister()
	persister.failWith["upsert_item"] = errors.New("connection reset")
	seedSessionOps(t, queue)

	report, err := Sync(context.Background(), queue, persister, nil, testLog())
	require.NoError(t, err, "one bad operation must not abort the pass")
	assert.Equal(t, 3, report.Synced)
	assert.Equal(t, 1, report.Failed)
	assert.ErrorContains(t, report.Errors, "connection reset")

	// Only the failed operation is still queued; the next pass drains it.
	require.Len(t, queue.ops, 1)
	assert.Equal(t, models.OpUpsertItem, queue.ops[0].Kind)

	delete(persister.failWith, "upsert_item")
	report, err = Sync(context.Background(), queue, persister, nil, testLog())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Synced)
	assert.Empty(t, queue.ops)
}

func TestSyncTreatsUniqueViolationAsApplied(t *testing.T) {
	queue := &fakeQueue{}
	persister := newFakePersister()
	persister.failWith["insert_set_log"] = errors.New("UNIQUE constraint failed: set_logs.session_item_id")
	seedSessionOps(t, queue)

	report, err := Sync(context.Background(), queue, persister, nil, testLog())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Synced)
	assert.Equal(t, 1, report.AlreadyApplied)
	assert.Zero(t, report.Failed)
	assert.Empty(t, queue.ops)
}

func TestSyncProbe(t *testing.T) {
	queue := &fakeQueue{}
	persister := newFakePersister()
	seedSessionOps(t, queue)

	offline := func(context.Context) (bool, error) { return false, nil }
	report, err := Sync(context.Background(), queue, persister, offline, testLog())
	require.NoError(t, err)
	assert.True(t, report.Skipped)
	assert.Len(t, queue.ops, 4, "nothing attempted while offline")

	// A broken probe counts as online so retries are never starved.
	broken := func(context.Context) (bool, error) { return false, errors.New("probe exploded") }
	report, err = Sync(context.Background(), queue, persister, broken, testLog())
	require.NoError(t, err)
	assert.False(t, report.Skipped)
	assert.Equal(t, 4, report.Synced)
}

func TestSyncStopsBetweenOperationsOnCancel(t *testing.T) {
	queue := &fakeQueue{}
	persister := newFakePersister()
	seedSessionOps(t, queue)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Sync(ctx, queue, persister, nil, testLog())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, queue.ops, 4, "cancelled pass leaves everything queued")
}

func TestSyncRejectsMalformedOperations(t *testing.T) {
	queue := &fakeQueue{}
	require.NoError(t, queue.Enqueue(context.Background(), models.OfflineOperation{
		ID: "bogus", Kind: models.OpCreateSession, EnqueuedAt: time.Now(),
	}))

	report, err := Sync(context.Background(), queue, newFakePersister(), nil, testLog())
	require.NoError(t, err)
	assert.Equal(t, 1, report.Failed)
	assert.ErrorContains(t, report.Errors, "missing create_session payload")
}

func TestIsUniqueViolation(t *testing.T) {
	assert.True(t, IsUniqueViolation(errors.New("UNIQUE constraint failed: sessions.id")))
	assert.True(t, IsUniqueViolation(errors.New("SQLITE_CONSTRAINT: constraint failed")))
	assert.True(t, IsUniqueViolation(errors.New("duplicate key value violates unique constraint")))
	assert.False(t, IsUniqueViolation(errors.New("connection reset")))
	assert.False(t, IsUniqueViolation(nil))
}

func TestOperationIDsAreDeterministic(t *testing.T) {
	now := time.Now()
	a := NewInsertSetLogOp(models.InsertSetLogPayload{ItemID: "item-1", SetIndex: 3}, now)
	b := NewInsertSetLogOp(models.InsertSetLogPayload{ItemID: "item-1", SetIndex: 3}, now.Add(time.Hour))
	assert.Equal(t, a.ID, b.ID, "same action must map to the same operation id")
	assert.Equal(t, "insert_set_log:item-1:3", a.ID)

	c := NewInsertSetLogOp(models.InsertSetLogPayload{ItemID: "item-1", SetIndex: 4}, now)
	assert.NotEqual(t, a.ID, c.ID)
}
