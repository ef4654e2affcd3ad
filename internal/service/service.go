package service

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/yourusername/kotoba-tracker/internal/models"
	"github.com/yourusername/kotoba-tracker/internal/service/window"
	"github.com/yourusername/kotoba-tracker/pkg/dateutil"
)

// Repository is the storage surface the engine needs. The Postgres
// implementation lives in internal/repository; tests substitute stubs.
type Repository interface {
	GetOrCreateSchedule(ctx context.Context, userID string) (*models.Schedule, error)
	UpsertSchedule(ctx context.Context, userID string, studyDays int, reviewDays []int64, referenceDate string) (*models.Schedule, error)

	GetOrCreateReview(ctx context.Context, userID, referenceDate string) (*models.Review, error)
	AddBookReview(ctx context.Context, userID, referenceDate string, kind models.BookKind, bookID string) (*models.Review, error)
	ResetReview(ctx context.Context, userID, referenceDate string) (*models.Review, error)

	FindBooksByDateRange(ctx context.Context, userID string, kind models.BookKind, startDate, endDate string) ([]models.Book, error)
	FindBooksByDates(ctx context.Context, userID string, kind models.BookKind, dates []string) ([]models.Book, error)
	CountItems(ctx context.Context, kind models.BookKind, bookIDs []string, status string) (int, error)
	GetBook(ctx context.Context, kind models.BookKind, bookID string) (*models.Book, error)
	CreateBook(ctx context.Context, kind models.BookKind, book *models.Book) error
	ListBooks(ctx context.Context, userID string, kind models.BookKind) ([]models.Book, error)

	CreateItem(ctx context.Context, kind models.BookKind, item *models.Item) error
	GetItem(ctx context.Context, kind models.BookKind, itemID string) (*models.Item, error)
	ListItems(ctx context.Context, kind models.BookKind, bookID string) ([]models.Item, error)
	UpdateItemStatus(ctx context.Context, kind models.BookKind, itemID, status string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// GetSchedule returns the user's schedule, bootstrapping the default policy
// (two study days, checkpoints at 7, 14 and 28) on first access.
func (s *Service) GetSchedule(ctx context.Context, userID string) (*models.Schedule, error) {
	return s.repo.GetOrCreateSchedule(ctx, userID)
}

// UpsertSchedule replaces the windowing policy wholesale and resets the
// review ledger anchored at referenceDate. Both policy fields always travel
// together since they jointly define the windowing.
func (s *Service) UpsertSchedule(ctx context.Context, userID string, studyDays int, reviewDays []int64, referenceDate string) (*models.Schedule, error) {
	if err := validateReferenceDate(referenceDate); err != nil {
		return nil, err
	}
	if studyDays < 0 {
		return nil, fmt.Errorf("study_days must be non-negative, got %d: %w", studyDays, models.ErrInvalidArgument)
	}
	for _, d := range reviewDays {
		if d <= 0 {
			return nil, fmt.Errorf("review_days elements must be positive, got %d: %w", d, models.ErrInvalidArgument)
		}
	}

	schedule, err := s.repo.UpsertSchedule(ctx, userID, studyDays, reviewDays, referenceDate)
	if err != nil {
		return nil, err
	}

	zap.S().Infow("schedule updated, review ledger reset",
		"user_id", userID, "study_days", studyDays, "review_days", reviewDays, "reference_date", referenceDate)

	return schedule, nil
}

// ListScheduledBooks computes, for the given reference date, which of the
// user's books of one kind are in the first-pass study window and which sit
// on a review checkpoint, minus the ones already handled this cycle. Study
// statistics aggregate item counts over the study-window books only.
func (s *Service) ListScheduledBooks(ctx context.Context, userID string, kind models.BookKind, referenceDate string) (*models.ScheduledBooks, error) {
	if err := validateReferenceDate(referenceDate); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown book kind %q: %w", kind, models.ErrInvalidArgument)
	}

	schedule, err := s.repo.GetOrCreateSchedule(ctx, userID)
	if err != nil {
		return nil, err
	}

	review, err := s.repo.GetOrCreateReview(ctx, userID, referenceDate)
	if err != nil {
		return nil, err
	}

	studyRange := window.StudyWindow(schedule, referenceDate)
	checkpoints := window.ReviewCheckpoints(schedule, referenceDate)

	studyBooks, err := s.repo.FindBooksByDateRange(ctx, userID, kind, studyRange.Start, studyRange.End)
	if err != nil {
		return nil, err
	}
	if studyBooks == nil {
		studyBooks = []models.Book{}
	}

	dueBooks, err := s.repo.FindBooksByDates(ctx, userID, kind, checkpoints)
	if err != nil {
		return nil, err
	}

	reviewed := make(map[string]struct{})
	for _, id := range review.ReviewedSet(kind) {
		reviewed[id] = struct{}{}
	}

	reviewBooks := make([]models.Book, 0, len(dueBooks))
	for _, book := range dueBooks {
		if _, ok := reviewed[book.ID]; !ok {
			reviewBooks = append(reviewBooks, book)
		}
	}

	stats, err := s.studyStatistics(ctx, kind, studyBooks, review.ReviewDate)
	if err != nil {
		return nil, err
	}

	return &models.ScheduledBooks{
		Study:           studyBooks,
		Review:          reviewBooks,
		StudyStatistics: *stats,
	}, nil
}

func (s *Service) studyStatistics(ctx context.Context, kind models.BookKind, studyBooks []models.Book, reviewDate string) (*models.StudyStatistics, error) {
	ids := make([]string, 0, len(studyBooks))
	for _, book := range studyBooks {
		ids = append(ids, book.ID)
	}

	total, err := s.repo.CountItems(ctx, kind, ids, "")
	if err != nil {
		return nil, err
	}

	learning, err := s.repo.CountItems(ctx, kind, ids, models.StatusLearning)
	if err != nil {
		return nil, err
	}

	return &models.StudyStatistics{
		Total:      total,
		Learning:   learning,
		ReviewDate: reviewDate,
	}, nil
}

// MarkReviewed records that the user handled a due book for referenceDate,
// so it is not surfaced again until a reset. Repeated calls with the same
// book are no-ops after the first; retries are always safe.
func (s *Service) MarkReviewed(ctx context.Context, userID string, kind models.BookKind, bookID, referenceDate string) (*models.Review, error) {
	if err := validateReferenceDate(referenceDate); err != nil {
		return nil, err
	}
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown book kind %q: %w", kind, models.ErrInvalidArgument)
	}

	// Ownership check before any mutation.
	book, err := s.repo.GetBook(ctx, kind, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, fmt.Errorf("book %s belongs to another user: %w", bookID, models.ErrForbidden)
	}

	return s.repo.AddBookReview(ctx, userID, referenceDate, kind, bookID)
}

// ResetReview clears both id sets and re-anchors the ledger at
// referenceDate. This is the only correction for a stale ledger outside of a
// schedule change.
func (s *Service) ResetReview(ctx context.Context, userID, referenceDate string) (*models.Review, error) {
	if err := validateReferenceDate(referenceDate); err != nil {
		return nil, err
	}

	return s.repo.ResetReview(ctx, userID, referenceDate)
}

// CreateBook stores a new word or kanji book for the user. The created date
// defaults to the caller-supplied reference date when absent, and new books
// start in learning status.
func (s *Service) CreateBook(ctx context.Context, userID string, kind models.BookKind, title string, showFront bool, createdDate string) (*models.Book, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown book kind %q: %w", kind, models.ErrInvalidArgument)
	}
	if title == "" {
		return nil, fmt.Errorf("title is required: %w", models.ErrInvalidArgument)
	}
	if err := validateReferenceDate(createdDate); err != nil {
		return nil, err
	}

	book := &models.Book{
		UserID:      userID,
		Title:       title,
		Status:      models.StatusLearning,
		ShowFront:   showFront,
		CreatedDate: createdDate,
	}
	if err := s.repo.CreateBook(ctx, kind, book); err != nil {
		return nil, err
	}

	return book, nil
}

// ListBooks returns all of the user's books of one kind.
func (s *Service) ListBooks(ctx context.Context, userID string, kind models.BookKind) ([]models.Book, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown book kind %q: %w", kind, models.ErrInvalidArgument)
	}
	return s.repo.ListBooks(ctx, userID, kind)
}

// CreateItem adds a word or kanji entry to one of the user's books, after
// the same ownership check as markReviewed. New items start in learning
// status, so they count toward the study statistics immediately.
func (s *Service) CreateItem(ctx context.Context, userID string, kind models.BookKind, bookID, front, meaning, reading, altReading string) (*models.Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown book kind %q: %w", kind, models.ErrInvalidArgument)
	}
	if front == "" || meaning == "" {
		return nil, fmt.Errorf("front and meaning are required: %w", models.ErrInvalidArgument)
	}

	book, err := s.repo.GetBook(ctx, kind, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, fmt.Errorf("book %s belongs to another user: %w", bookID, models.ErrForbidden)
	}

	item := &models.Item{
		BookID:     bookID,
		UserID:     userID,
		Front:      front,
		Meaning:    meaning,
		Reading:    reading,
		AltReading: altReading,
		Status:     models.StatusLearning,
	}
	if err := s.repo.CreateItem(ctx, kind, item); err != nil {
		return nil, err
	}

	return item, nil
}

// ListItems returns a book's items after an ownership check.
func (s *Service) ListItems(ctx context.Context, userID string, kind models.BookKind, bookID string) ([]models.Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown book kind %q: %w", kind, models.ErrInvalidArgument)
	}

	book, err := s.repo.GetBook(ctx, kind, bookID)
	if err != nil {
		return nil, err
	}
	if book.UserID != userID {
		return nil, fmt.Errorf("book %s belongs to another user: %w", bookID, models.ErrForbidden)
	}

	return s.repo.ListItems(ctx, kind, bookID)
}

// UpdateItemStatus flips an item between learning and learned, which moves
// it between the study statistics counters.
func (s *Service) UpdateItemStatus(ctx context.Context, userID string, kind models.BookKind, itemID, status string) (*models.Item, error) {
	if !kind.Valid() {
		return nil, fmt.Errorf("unknown book kind %q: %w", kind, models.ErrInvalidArgument)
	}
	if status != models.StatusLearning && status != models.StatusLearned {
		return nil, fmt.Errorf("status must be %s or %s, got %q: %w", models.StatusLearning, models.StatusLearned, status, models.ErrInvalidArgument)
	}

	item, err := s.repo.GetItem(ctx, kind, itemID)
	if err != nil {
		return nil, err
	}
	if item.UserID != userID {
		return nil, fmt.Errorf("item %s belongs to another user: %w", itemID, models.ErrForbidden)
	}

	if err := s.repo.UpdateItemStatus(ctx, kind, itemID, status); err != nil {
		return nil, err
	}
	item.Status = status

	return item, nil
}

func validateReferenceDate(date string) error {
	if !dateutil.IsValidDateString(date) {
		return fmt.Errorf("date %q is not a valid YYYY-MM-DD calendar date: %w", date, models.ErrInvalidArgument)
	}
	return nil
}
