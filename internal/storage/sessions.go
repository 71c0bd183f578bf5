package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"forgefit/internal/models"
)

// Persistence collaborator operations. Every write is keyed by the stable
// identifier the caller propagates; nothing here re-derives ids.

func (s *Storage) CreateSession(ctx context.Context, p models.CreateSessionPayload) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO sessions (id, template_id, label, started_at) VALUES (?, ?, ?, ?)",
		string(p.SessionID), p.TemplateID, p.Label, p.StartedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("creating session: %w", err)
	}
	s.log.WithField("session", p.SessionID).Debug("session created")
	return nil
}

func (s *Storage) UpsertItem(ctx context.Context, p models.UpsertItemPayload) error {
	_, err := s.db.ExecContext(ctx, `
        INSERT INTO session_items (id, session_id, exercise_id, order_index, status, skip_reason)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT (session_id, exercise_id) DO UPDATE SET
            status = excluded.status,
            skip_reason = excluded.skip_reason`,
		string(p.ItemID), string(p.SessionID), p.ExerciseID, p.OrderIndex, p.Status, p.SkipReason,
	)
	if err != nil {
		return fmt.Errorf("upserting session item: %w", err)
	}
	return nil
}

func (s *Storage) InsertSetLog(ctx context.Context, p models.InsertSetLogPayload) error {
	var rpe sql.NullFloat64
	if p.RPE != nil {
		rpe = sql.NullFloat64{Float64: *p.RPE, Valid: true}
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO set_logs (session_item_id, set_index, weight, reps, rpe, logged_at) VALUES (?, ?, ?, ?, ?, ?)",
		string(p.ItemID), p.SetIndex, p.Weight, p.Reps, rpe, p.LoggedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("inserting set log: %w", err)
	}
	return nil
}

func (s *Storage) FinalizeSession(ctx context.Context, p models.FinalizeSessionPayload) error {
	_, err := s.db.ExecContext(ctx,
		"UPDATE sessions SET ended_at = ?, duration_seconds = ?, total_sets = ?, total_volume = ? WHERE id = ?",
		p.EndedAt.UTC().Format(time.RFC3339), p.DurationSeconds, p.TotalSets, p.TotalVolume, string(p.SessionID),
	)
	if err != nil {
		return fmt.Errorf("finalizing session: %w", err)
	}
	return nil
}

func (s *Storage) SessionExists(ctx context.Context, id models.ItemID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM sessions WHERE id = ?)", string(id),
	).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("checking session existence: %w", err)
	}
	return exists, nil
}

func (s *Storage) SetLogExists(ctx context.Context, itemID models.ItemID, setIndex int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM set_logs WHERE session_item_id = ? AND set_index = ?)",
		string(itemID), setIndex,
	).Scan(&exists)
	if err != nil && err != sql.ErrNoRows {
		return false, fmt.Errorf("checking set log existence: %w", err)
	}
	return exists, nil
}

// RecentBestSets returns each exercise's best set (by estimated 1RM) from
// completed sessions in the given window. Feeds the plan builder's
// loading suggestion.
func (s *Storage) RecentBestSets(ctx context.Context, since time.Time) (map[string]models.SetSample, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT si.exercise_id, sl.weight, sl.reps, COALESCE(sl.rpe, 0)
        FROM set_logs sl
        JOIN session_items si ON si.id = sl.session_item_id
        JOIN sessions se ON se.id = si.session_id
        WHERE se.ended_at IS NOT NULL AND sl.logged_at >= ?`,
		since.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return nil, fmt.Errorf("querying recent sets: %w", err)
	}
	defer rows.Close()

	best := make(map[string]models.SetSample)
	for rows.Next() {
		var exerciseID string
		var sample models.SetSample
		if err := rows.Scan(&exerciseID, &sample.Weight, &sample.Reps, &sample.RPE); err != nil {
			return nil, fmt.Errorf("scanning recent set: %w", err)
		}
		current, ok := best[exerciseID]
		if !ok || e1rm(sample) > e1rm(current) {
			best[exerciseID] = sample
		}
	}
	return best, rows.Err()
}

// LastSessionSets returns every set of the most recent completed session
// for the given template, grouped by exercise. Feeds progression
// evaluation.
func (s *Storage) LastSessionSets(ctx context.Context, templateID string) (map[string][]models.SetSample, error) {
	var sessionID string
	err := s.db.QueryRowContext(ctx, `
        SELECT id FROM sessions
        WHERE template_id = ? AND ended_at IS NOT NULL
        ORDER BY started_at DESC
        LIMIT 1`, templateID,
	).Scan(&sessionID)
	if err == sql.ErrNoRows {
		return map[string][]models.SetSample{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying last session: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
        SELECT si.exercise_id, sl.weight, sl.reps, COALESCE(sl.rpe, 0)
        FROM set_logs sl
        JOIN session_items si ON si.id = sl.session_item_id
        WHERE si.session_id = ?
        ORDER BY si.exercise_id, sl.set_index`, sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("querying last session sets: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.SetSample)
	for rows.Next() {
		var exerciseID string
		var sample models.SetSample
		if err := rows.Scan(&exerciseID, &sample.Weight, &sample.Reps, &sample.RPE); err != nil {
			return nil, fmt.Errorf("scanning last session set: %w", err)
		}
		out[exerciseID] = append(out[exerciseID], sample)
	}
	return out, rows.Err()
}

// PreviousBests aggregates all-time bests per exercise, for PR detection
// at session end.
func (s *Storage) PreviousBests(ctx context.Context) (map[string]models.PreviousBests, error) {
	rows, err := s.db.QueryContext(ctx, `
        SELECT si.exercise_id, si.session_id, sl.weight, sl.reps
        FROM set_logs sl
        JOIN session_items si ON si.id = sl.session_item_id
        JOIN sessions se ON se.id = si.session_id
        WHERE se.ended_at IS NOT NULL`,
	)
	if err != nil {
		return nil, fmt.Errorf("querying historical sets: %w", err)
	}
	defer rows.Close()

	type sessionKey struct{ exercise, session string }
	bests := make(map[string]models.PreviousBests)
	volumes := make(map[sessionKey]float64)
	maxWeights := make(map[string]float64)
	repsAt := make(map[string][]models.SetSample)

	for rows.Next() {
		var exerciseID, sessionID string
		var weight float64
		var reps int
		if err := rows.Scan(&exerciseID, &sessionID, &weight, &reps); err != nil {
			return nil, fmt.Errorf("scanning historical set: %w", err)
		}
		b := bests[exerciseID]
		if weight > b.MaxWeight {
			b.MaxWeight = weight
		}
		if e := e1rm(models.SetSample{Weight: weight, Reps: reps}); e > b.BestE1RM {
			b.BestE1RM = e
		}
		bests[exerciseID] = b
		volumes[sessionKey{exerciseID, sessionID}] += weight * float64(reps)
		if weight > maxWeights[exerciseID] {
			maxWeights[exerciseID] = weight
		}
		repsAt[exerciseID] = append(repsAt[exerciseID], models.SetSample{Weight: weight, Reps: reps})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for key, volume := range volumes {
		b := bests[key.exercise]
		if volume > b.BestSessionVolume {
			b.BestSessionVolume = volume
		}
		bests[key.exercise] = b
	}
	for exerciseID, samples := range repsAt {
		b := bests[exerciseID]
		for _, sample := range samples {
			if sample.Weight >= maxWeights[exerciseID]*0.9 && sample.Reps > b.MaxRepsNearMax {
				b.MaxRepsNearMax = sample.Reps
			}
		}
		bests[exerciseID] = b
	}
	return bests, nil
}

func e1rm(s models.SetSample) float64 {
	if s.Reps == 0 {
		return 0
	}
	return s.Weight * (1 + float64(s.Reps)/30)
}
