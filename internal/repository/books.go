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

const bookColumns = "id, user_id, title, status, show_front, created_date, created_at, updated_at"

// Table names keyed by book kind; the word and kanji paths share all query
// logic and differ only here.
func bookTable(kind models.BookKind) string {
	if kind == models.KindKanjiBook {
		return "kanji_books"
	}
	return "word_books"
}

func itemTable(kind models.BookKind) (table, fk string) {
	if kind == models.KindKanjiBook {
		return "kanjis", "kanji_book_id"
	}
	return "words", "word_book_id"
}

// FindBooksByDateRange returns the user's books of the given kind whose
// created_date falls in the closed interval [startDate, endDate], newest
// first.
func (r *Postgres) FindBooksByDateRange(ctx context.Context, userID string, kind models.BookKind, startDate, endDate string) ([]models.Book, error) {
	query := r.psql.Select(bookColumns).
		From(bookTable(kind)).
		Where("user_id = ?", userID).
		Where("created_date >= ?", startDate).
		Where("created_date <= ?", endDate).
		OrderBy("created_date DESC, created_at DESC")

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build SQL query (user_id: %s, kind: %s): %w", userID, kind, err)
	}

	var books []models.Book
	if err := r.SelectContext(ctx, &books, sql, args...); err != nil {
		return nil, fmt.Errorf("find books by date range (user_id: %s, kind: %s, start: %s, end: %s): %w", userID, kind, startDate, endDate, err)
	}

	return books, nil
}

// FindBooksByDates returns the user's books of the given kind created on any
// of the listed calendar dates, newest first.
func (r *Postgres) FindBooksByDates(ctx context.Context, userID string, kind models.BookKind, dates []string) ([]models.Book, error) {
	if len(dates) == 0 {
		return nil, nil
	}

	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1 AND created_date = ANY($2)
		ORDER BY created_date DESC, created_at DESC`, bookColumns, bookTable(kind))

	var books []models.Book
	if err := r.SelectContext(ctx, &books, query, userID, pq.StringArray(dates)); err != nil {
		return nil, fmt.Errorf("find books by dates (user_id: %s, kind: %s): %w", userID, kind, err)
	}

	return books, nil
}

// CountItems counts items across the given books of one kind, optionally
// filtered by item status. An empty status counts everything.
func (r *Postgres) CountItems(ctx context.Context, kind models.BookKind, bookIDs []string, status string) (int, error) {
	if len(bookIDs) == 0 {
		return 0, nil
	}

	table, fk := itemTable(kind)
	query := r.psql.Select("COUNT(*)").
		From(table).
		Where(fmt.Sprintf("%s = ANY(?)", fk), pq.StringArray(bookIDs))
	if status != "" {
		query = query.Where("status = ?", status)
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build SQL query (kind: %s): %w", kind, err)
	}

	var count int
	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("count items (kind: %s, books: %d, status: %s): %w", kind, len(bookIDs), status, err)
	}

	return count, nil
}

// GetBook fetches a single book of the given kind regardless of owner.
// Callers compare UserID themselves; absence maps to models.ErrNotFound.
func (r *Postgres) GetBook(ctx context.Context, kind models.BookKind, bookID string) (*models.Book, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, bookColumns, bookTable(kind))

	var book models.Book
	err := r.GetContext(ctx, &book, query, bookID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get book (kind: %s, book_id: %s): %w", kind, bookID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get book (kind: %s, book_id: %s): %w", kind, bookID, err)
	}

	return &book, nil
}

// CreateBook inserts a new book and fills in its generated id.
func (r *Postgres) CreateBook(ctx context.Context, kind models.BookKind, book *models.Book) error {
	if book.ID == "" {
		book.ID = uuid.NewString()
	}

	query := r.psql.Insert(bookTable(kind)).
		Columns("id", "user_id", "title", "status", "show_front", "created_date").
		Values(book.ID, book.UserID, book.Title, book.Status, book.ShowFront, book.CreatedDate).
		Suffix("RETURNING created_at, updated_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (user_id: %s, kind: %s): %w", book.UserID, kind, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&book.CreatedAt, &book.UpdatedAt); err != nil {
		return fmt.Errorf("create book (user_id: %s, kind: %s, title: %s): %w", book.UserID, kind, book.Title, err)
	}

	return nil
}

// ListBooks returns all of the user's books of one kind, newest first.
func (r *Postgres) ListBooks(ctx context.Context, userID string, kind models.BookKind) ([]models.Book, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM %s
		WHERE user_id = $1
		ORDER BY created_date DESC, created_at DESC`, bookColumns, bookTable(kind))

	var books []models.Book
	if err := r.SelectContext(ctx, &books, query, userID); err != nil {
		return nil, fmt.Errorf("list books (user_id: %s, kind: %s): %w", userID, kind, err)
	}

	return books, nil
}
