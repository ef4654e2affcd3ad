package models

import (
	"time"

	"github.com/lib/pq"
)

// BookKind selects between the two collection flavors. Word books and kanji
// books share one shape and one code path; the kind only picks tables and
// review columns.
type BookKind string

const (
	KindWordBook  BookKind = "word_book"
	KindKanjiBook BookKind = "kanji_book"
)

func (k BookKind) Valid() bool {
	return k == KindWordBook || k == KindKanjiBook
}

// Item status values shared by words and kanjis.
const (
	StatusLearning = "learning"
	StatusLearned  = "learned"
)

// Schedule is the per-user windowing policy, unique on user id. StudyDays is
// the size of the first-pass study window in days; ReviewDays holds the
// spaced-repetition checkpoint offsets, each in days before the reference
// date.
type Schedule struct {
	ID         string        `db:"id"`
	UserID     string        `db:"user_id"`
	StudyDays  int           `db:"study_days"`
	ReviewDays pq.Int64Array `db:"review_days"`
	CreatedAt  time.Time     `db:"created_at"`
	UpdatedAt  time.Time     `db:"updated_at"`
}

// DefaultSchedule returns the policy bootstrapped on first access.
func DefaultSchedule(userID string) *Schedule {
	return &Schedule{
		UserID:     userID,
		StudyDays:  2,
		ReviewDays: pq.Int64Array{7, 14, 28},
	}
}

// Review is the per-user idempotency ledger, unique on user id. The id sets
// record which books were already handled for ReviewDate; a stale ReviewDate
// is tolerated until an explicit reset or a schedule change re-anchors it.
type Review struct {
	ID               string         `db:"id"`
	UserID           string         `db:"user_id"`
	ReviewDate       string         `db:"review_date"`
	WordBookReviews  pq.StringArray `db:"word_book_reviews"`
	KanjiBookReviews pq.StringArray `db:"kanji_book_reviews"`
	CreatedAt        time.Time      `db:"created_at"`
	UpdatedAt        time.Time      `db:"updated_at"`
}

// ReviewedSet returns the id set matching the kind.
func (r *Review) ReviewedSet(kind BookKind) []string {
	if kind == KindKanjiBook {
		return r.KanjiBookReviews
	}
	return r.WordBookReviews
}

// Book is a word book or kanji book. CreatedDate is the calendar date the
// scheduling logic works with, distinct from the CreatedAt timestamp.
type Book struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"user_id"`
	Title       string    `db:"title" json:"title"`
	Status      string    `db:"status" json:"status"`
	ShowFront   bool      `db:"show_front" json:"show_front"`
	CreatedDate string    `db:"created_date" json:"created_date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}

// Item is a study entry inside a book: a vocabulary word or a single kanji.
// Front holds the Japanese form (the word, or the glyph); Reading its primary
// reading (pronunciation for words, onyomi for kanjis); AltReading the
// kunyomi, always empty for words. UserID is the owning book's user, joined
// in on reads for ownership checks.
type Item struct {
	ID         string    `db:"id"`
	BookID     string    `db:"book_id"`
	UserID     string    `db:"user_id"`
	Front      string    `db:"front"`
	Meaning    string    `db:"meaning"`
	Reading    string    `db:"reading"`
	AltReading string    `db:"alt_reading"`
	Status     string    `db:"status"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

// StudyStatistics aggregates item counts across the study-window books of one
// kind. ReviewDate echoes the ledger's current anchor so clients can show
// staleness.
type StudyStatistics struct {
	Total      int    `json:"total"`
	Learning   int    `json:"learning"`
	ReviewDate string `json:"review_date"`
}

// ScheduledBooks is the result of a scheduled-listing query: books still in
// the first-pass study window, books due for review and not yet handled this
// cycle, and the study-side statistics.
type ScheduledBooks struct {
	Study           []Book          `json:"study"`
	Review          []Book          `json:"review"`
	StudyStatistics StudyStatistics `json:"study_statistics"`
}
