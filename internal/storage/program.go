package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"forgefit/internal/models"
)

// SaveProgramPlan stores a frozen four-week block and its resolved
// calendar days in one transaction. The newest plan is the current one.
func (s *Storage) SaveProgramPlan(ctx context.Context, planID models.ItemID, plan models.FourWeekProgramPlan, days []models.ProgramDay) error {
	payload, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("encoding program plan: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		"INSERT INTO program_plans (id, created_at, payload) VALUES (?, ?, ?)",
		string(planID), plan.CreatedAt.UTC().Format(time.RFC3339), string(payload),
	); err != nil {
		tx.Rollback()
		return fmt.Errorf("inserting program plan: %w", err)
	}
	for _, day := range days {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO program_days (plan_id, week, weekday, date, template_id, label) VALUES (?, ?, ?, ?, ?, ?)",
			string(planID), day.Week, day.Weekday, day.Date, day.TemplateID, day.Label,
		); err != nil {
			tx.Rollback()
			return fmt.Errorf("inserting program day: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing program plan: %w", err)
	}
	s.log.WithField("plan", planID).Info("program plan saved")
	return nil
}

// CurrentProgramPlan loads the most recently created block, or ErrNotFound.
func (s *Storage) CurrentProgramPlan(ctx context.Context) (models.ItemID, models.FourWeekProgramPlan, error) {
	var id, payload string
	err := s.db.QueryRowContext(ctx,
		"SELECT id, payload FROM program_plans ORDER BY created_at DESC LIMIT 1",
	).Scan(&id, &payload)
	if err == sql.ErrNoRows {
		return "", models.FourWeekProgramPlan{}, ErrNotFound
	}
	if err != nil {
		return "", models.FourWeekProgramPlan{}, fmt.Errorf("querying program plan: %w", err)
	}
	var plan models.FourWeekProgramPlan
	if err := json.Unmarshal([]byte(payload), &plan); err != nil {
		return "", models.FourWeekProgramPlan{}, fmt.Errorf("decoding program plan: %w", err)
	}
	return models.ItemID(id), plan, nil
}

// ProgramDays returns the resolved calendar for a plan, in date order.
func (s *Storage) ProgramDays(ctx context.Context, planID models.ItemID) ([]models.ProgramDay, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT week, weekday, date, template_id, label FROM program_days WHERE plan_id = ? ORDER BY date ASC",
		string(planID),
	)
	if err != nil {
		return nil, fmt.Errorf("querying program days: %w", err)
	}
	defer rows.Close()

	var days []models.ProgramDay
	for rows.Next() {
		var day models.ProgramDay
		if err := rows.Scan(&day.Week, &day.Weekday, &day.Date, &day.TemplateID, &day.Label); err != nil {
			return nil, fmt.Errorf("scanning program day: %w", err)
		}
		days = append(days, day)
	}
	return days, rows.Err()
}

// ProgramDayFor finds the scheduled day matching a local calendar date, or
// ErrNotFound when the date is a rest day or outside the block.
func (s *Storage) ProgramDayFor(ctx context.Context, planID models.ItemID, localDate string) (models.ProgramDay, error) {
	var day models.ProgramDay
	err := s.db.QueryRowContext(ctx,
		"SELECT week, weekday, date, template_id, label FROM program_days WHERE plan_id = ? AND date = ?",
		string(planID), localDate,
	).Scan(&day.Week, &day.Weekday, &day.Date, &day.TemplateID, &day.Label)
	if err == sql.ErrNoRows {
		return models.ProgramDay{}, ErrNotFound
	}
	if err != nil {
		return models.ProgramDay{}, fmt.Errorf("querying program day: %w", err)
	}
	return day, nil
}
