package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"

	"github.com/yourusername/kotoba-tracker/internal/models"
)

// itemQueryBase aliases the per-kind item schemas onto the shared Item
// shape, joining the owning book for its user_id.
func itemQueryBase(kind models.BookKind) string {
	if kind == models.KindKanjiBook {
		return `
		SELECT i.id, i.kanji_book_id AS book_id, b.user_id, i.kanji AS front, i.meaning,
		       i.onyomi AS reading, i.kunyomi AS alt_reading, i.status, i.created_at, i.updated_at
		FROM kanjis i JOIN kanji_books b ON b.id = i.kanji_book_id`
	}
	return `
		SELECT i.id, i.word_book_id AS book_id, b.user_id, i.japanese AS front, i.meaning,
		       i.pronunciation AS reading, '' AS alt_reading, i.status, i.created_at, i.updated_at
		FROM words i JOIN word_books b ON b.id = i.word_book_id`
}

// CreateItem inserts a new item into its book's table, filling in the
// generated id and timestamps.
func (r *Postgres) CreateItem(ctx context.Context, kind models.BookKind, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	table, fk := itemTable(kind)
	var query squirrel.InsertBuilder
	if kind == models.KindKanjiBook {
		query = r.psql.Insert(table).
			Columns("id", fk, "kanji", "meaning", "onyomi", "kunyomi", "status").
			Values(item.ID, item.BookID, item.Front, item.Meaning, item.Reading, item.AltReading, item.Status)
	} else {
		query = r.psql.Insert(table).
			Columns("id", fk, "japanese", "meaning", "pronunciation", "status").
			Values(item.ID, item.BookID, item.Front, item.Meaning, item.Reading, item.Status)
	}
	query = query.Suffix("RETURNING created_at, updated_at")

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (kind: %s, book_id: %s): %w", kind, item.BookID, err)
	}

	if err := r.QueryRowxContext(ctx, sql, args...).Scan(&item.CreatedAt, &item.UpdatedAt); err != nil {
		return fmt.Errorf("create item (kind: %s, book_id: %s): %w", kind, item.BookID, err)
	}

	return nil
}

// GetItem fetches a single item of the given kind regardless of owner.
// Callers compare UserID themselves; absence maps to models.ErrNotFound.
func (r *Postgres) GetItem(ctx context.Context, kind models.BookKind, itemID string) (*models.Item, error) {
	query := itemQueryBase(kind) + ` WHERE i.id = $1`

	var item models.Item
	err := r.GetContext(ctx, &item, query, itemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get item (kind: %s, item_id: %s): %w", kind, itemID, models.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get item (kind: %s, item_id: %s): %w", kind, itemID, err)
	}

	return &item, nil
}

// ListItems returns a book's items, newest first.
func (r *Postgres) ListItems(ctx context.Context, kind models.BookKind, bookID string) ([]models.Item, error) {
	query := itemQueryBase(kind) + ` WHERE b.id = $1 ORDER BY i.created_at DESC`

	var items []models.Item
	if err := r.SelectContext(ctx, &items, query, bookID); err != nil {
		return nil, fmt.Errorf("list items (kind: %s, book_id: %s): %w", kind, bookID, err)
	}

	return items, nil
}

// UpdateItemStatus flips an item between learning and learned.
func (r *Postgres) UpdateItemStatus(ctx context.Context, kind models.BookKind, itemID, status string) error {
	table, _ := itemTable(kind)
	query := r.psql.Update(table).
		Set("status", status).
		Set("updated_at", squirrel.Expr("now()")).
		Where("id = ?", itemID)

	sql, args, err := query.ToSql()
	if err != nil {
		return fmt.Errorf("build SQL query (kind: %s, item_id: %s): %w", kind, itemID, err)
	}

	if _, err := r.ExecContext(ctx, sql, args...); err != nil {
		return fmt.Errorf("update item status (kind: %s, item_id: %s, status: %s): %w", kind, itemID, status, err)
	}

	return nil
}
