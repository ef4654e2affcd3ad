package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/yourusername/kotoba-tracker/internal/models"
)

const scheduleColumns = "id, user_id, study_days, review_days, created_at, updated_at"

// GetOrCreateSchedule returns the user's schedule, creating the default
// policy on first access.
func (r *Postgres) GetOrCreateSchedule(ctx context.Context, userID string) (*models.Schedule, error) {
	query := fmt.Sprintf(`SELECT %s FROM schedules WHERE user_id = $1`, scheduleColumns)

	var schedule models.Schedule
	err := r.GetContext(ctx, &schedule, query, userID)
	if err == nil {
		return &schedule, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get schedule (user_id: %s): %w", userID, err)
	}

	return r.createDefaultSchedule(ctx, userID)
}

func (r *Postgres) createDefaultSchedule(ctx context.Context, userID string) (*models.Schedule, error) {
	def := models.DefaultSchedule(userID)

	// ON CONFLICT keeps a concurrent first access from failing on the
	// user_id unique constraint; whoever lost the race reads the winner's row.
	query := fmt.Sprintf(`
		INSERT INTO schedules (id, user_id, study_days, review_days)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING %s`, scheduleColumns)

	var schedule models.Schedule
	err := r.GetContext(ctx, &schedule, query, uuid.NewString(), userID, def.StudyDays, def.ReviewDays)
	if err != nil {
		return nil, fmt.Errorf("create default schedule (user_id: %s): %w", userID, err)
	}

	return &schedule, nil
}

// UpsertSchedule replaces both policy fields wholesale and, in the same
// transaction, resets the user's review ledger anchored at referenceDate.
// Changing the policy invalidates what "already reviewed" meant under the
// old one.
func (r *Postgres) UpsertSchedule(ctx context.Context, userID string, studyDays int, reviewDays []int64, referenceDate string) (*models.Schedule, error) {
	var schedule models.Schedule

	err := r.RunInTx(ctx, func(tx *Postgres) error {
		query := fmt.Sprintf(`
			INSERT INTO schedules (id, user_id, study_days, review_days)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (user_id) DO UPDATE
			SET study_days = EXCLUDED.study_days,
			    review_days = EXCLUDED.review_days,
			    updated_at = now()
			RETURNING %s`, scheduleColumns)

		if err := tx.GetContext(ctx, &schedule, query, uuid.NewString(), userID, studyDays, pq.Int64Array(reviewDays)); err != nil {
			return fmt.Errorf("upsert schedule (user_id: %s, study_days: %d): %w", userID, studyDays, err)
		}

		if _, err := tx.ResetReview(ctx, userID, referenceDate); err != nil {
			return err
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return &schedule, nil
}
