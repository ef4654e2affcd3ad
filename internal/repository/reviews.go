package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/yourusername/kotoba-tracker/internal/models"
)

const reviewColumns = "id, user_id, review_date, word_book_reviews, kanji_book_reviews, created_at, updated_at"

func reviewColumn(kind models.BookKind) string {
	if kind == models.KindKanjiBook {
		return "kanji_book_reviews"
	}
	return "word_book_reviews"
}

// GetOrCreateReview returns the user's ledger unchanged, even when its
// review_date differs from referenceDate. Staleness is corrected only by an
// explicit reset or a schedule change. Absent rows are created empty,
// anchored at referenceDate.
func (r *Postgres) GetOrCreateReview(ctx context.Context, userID, referenceDate string) (*models.Review, error) {
	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE user_id = $1`, reviewColumns)

	var review models.Review
	err := r.GetContext(ctx, &review, query, userID)
	if err == nil {
		return &review, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get review (user_id: %s): %w", userID, err)
	}

	create := fmt.Sprintf(`
		INSERT INTO reviews (id, user_id, review_date, word_book_reviews, kanji_book_reviews)
		VALUES ($1, $2, $3, '{}', '{}')
		ON CONFLICT (user_id) DO UPDATE SET user_id = EXCLUDED.user_id
		RETURNING %s`, reviewColumns)

	err = r.GetContext(ctx, &review, create, uuid.NewString(), userID, referenceDate)
	if err != nil {
		return nil, fmt.Errorf("create review (user_id: %s, review_date: %s): %w", userID, referenceDate, err)
	}

	return &review, nil
}

// AddBookReview adds bookID to the kind's id set. The guarded array_append
// runs as one atomic statement, so concurrent calls never lose updates and
// repeating the same id is a no-op.
func (r *Postgres) AddBookReview(ctx context.Context, userID, referenceDate string, kind models.BookKind, bookID string) (*models.Review, error) {
	if _, err := r.GetOrCreateReview(ctx, userID, referenceDate); err != nil {
		return nil, err
	}

	column := reviewColumn(kind)
	update := fmt.Sprintf(`
		UPDATE reviews
		SET %[1]s = array_append(%[1]s, $1), updated_at = now()
		WHERE user_id = $2 AND NOT ($1 = ANY(%[1]s))`, column)

	if _, err := r.ExecContext(ctx, update, bookID, userID); err != nil {
		return nil, fmt.Errorf("add book review (user_id: %s, kind: %s, book_id: %s): %w", userID, kind, bookID, err)
	}

	query := fmt.Sprintf(`SELECT %s FROM reviews WHERE user_id = $1`, reviewColumns)
	var review models.Review
	if err := r.GetContext(ctx, &review, query, userID); err != nil {
		return nil, fmt.Errorf("get review after add (user_id: %s): %w", userID, err)
	}

	return &review, nil
}

// ResetReview unconditionally clears both id sets and re-anchors the ledger
// at referenceDate, creating the row if absent.
func (r *Postgres) ResetReview(ctx context.Context, userID, referenceDate string) (*models.Review, error) {
	query := fmt.Sprintf(`
		INSERT INTO reviews (id, user_id, review_date, word_book_reviews, kanji_book_reviews)
		VALUES ($1, $2, $3, '{}', '{}')
		ON CONFLICT (user_id) DO UPDATE
		SET review_date = EXCLUDED.review_date,
		    word_book_reviews = '{}',
		    kanji_book_reviews = '{}',
		    updated_at = now()
		RETURNING %s`, reviewColumns)

	var review models.Review
	err := r.GetContext(ctx, &review, query, uuid.NewString(), userID, referenceDate)
	if err != nil {
		return nil, fmt.Errorf("reset review (user_id: %s, review_date: %s): %w", userID, referenceDate, err)
	}

	return &review, nil
}
