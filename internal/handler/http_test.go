package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/kotoba-tracker/internal/models"
)

type serviceStub struct {
	schedule  *models.Schedule
	review    *models.Review
	scheduled *models.ScheduledBooks
	err       error
}

func (s *serviceStub) GetSchedule(context.Context, string) (*models.Schedule, error) {
	return s.schedule, s.err
}

func (s *serviceStub) UpsertSchedule(context.Context, string, int, []int64, string) (*models.Schedule, error) {
	return s.schedule, s.err
}

func (s *serviceStub) ListScheduledBooks(context.Context, string, models.BookKind, string) (*models.ScheduledBooks, error) {
	return s.scheduled, s.err
}

func (s *serviceStub) MarkReviewed(context.Context, string, models.BookKind, string, string) (*models.Review, error) {
	return s.review, s.err
}

func (s *serviceStub) ResetReview(context.Context, string, string) (*models.Review, error) {
	return s.review, s.err
}

func (s *serviceStub) CreateBook(context.Context, string, models.BookKind, string, bool, string) (*models.Book, error) {
	return &models.Book{ID: "book-1"}, s.err
}

func (s *serviceStub) ListBooks(context.Context, string, models.BookKind) ([]models.Book, error) {
	return nil, s.err
}

func (s *serviceStub) CreateItem(_ context.Context, _ string, _ models.BookKind, bookID, front, meaning, reading, altReading string) (*models.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Item{
		ID:         "item-1",
		BookID:     bookID,
		Front:      front,
		Meaning:    meaning,
		Reading:    reading,
		AltReading: altReading,
		Status:     models.StatusLearning,
	}, nil
}

func (s *serviceStub) ListItems(context.Context, string, models.BookKind, string) ([]models.Item, error) {
	return nil, s.err
}

func (s *serviceStub) UpdateItemStatus(_ context.Context, _ string, _ models.BookKind, itemID, status string) (*models.Item, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.Item{ID: itemID, Status: status}, nil
}

func newRouter(stub *serviceStub) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	NewHTTPHandler(stub).Register(r)
	return r
}

func doRequest(r *gin.Engine, method, path, body string, withUser bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if withUser {
		req.Header.Set("X-User-ID", "user-1")
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMissingUserHeader(t *testing.T) {
	r := newRouter(&serviceStub{})
	w := doRequest(r, http.MethodGet, "/schedules", "", false)
	if w.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", w.Code)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"invalid argument", models.ErrInvalidArgument, http.StatusBadRequest},
		{"forbidden", models.ErrForbidden, http.StatusForbidden},
		{"not found", models.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := newRouter(&serviceStub{err: tt.err})
			body := `{"book_id":"book-1","current_date":"2026-01-15"}`
			w := doRequest(r, http.MethodPost, "/schedules/word-books/review", body, true)
			if w.Code != tt.want {
				t.Errorf("status = %d, want %d", w.Code, tt.want)
			}
		})
	}
}

func TestMarkReviewedRequiresBody(t *testing.T) {
	r := newRouter(&serviceStub{})
	w := doRequest(r, http.MethodPost, "/schedules/word-books/review", `{"current_date":"2026-01-15"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing book_id", w.Code)
	}
}

func TestListScheduledResponseShape(t *testing.T) {
	stub := &serviceStub{
		scheduled: &models.ScheduledBooks{
			Study:  []models.Book{{ID: "study-book", CreatedDate: "2026-01-14"}},
			Review: []models.Book{{ID: "due-book", CreatedDate: "2026-01-08"}},
			StudyStatistics: models.StudyStatistics{
				Total:      5,
				Learning:   3,
				ReviewDate: "2026-01-15",
			},
		},
	}
	r := newRouter(stub)

	w := doRequest(r, http.MethodGet, "/schedules/word-books?current_date=2026-01-15", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var resp struct {
		Study  []models.Book `json:"study"`
		Review []models.Book `json:"review"`
		Stats  struct {
			Total      int    `json:"total"`
			Learning   int    `json:"learning"`
			ReviewDate string `json:"review_date"`
		} `json:"study_statistics"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if len(resp.Study) != 1 || resp.Study[0].ID != "study-book" {
		t.Errorf("study = %+v", resp.Study)
	}
	if len(resp.Review) != 1 || resp.Review[0].ID != "due-book" {
		t.Errorf("review = %+v", resp.Review)
	}
	if resp.Stats.Total != 5 || resp.Stats.Learning != 3 || resp.Stats.ReviewDate != "2026-01-15" {
		t.Errorf("study_statistics = %+v", resp.Stats)
	}
}

func TestCreateItemResponseShapes(t *testing.T) {
	r := newRouter(&serviceStub{})

	w := doRequest(r, http.MethodPost, "/word-books/book-1/words",
		`{"japanese":"食べる","meaning":"to eat","pronunciation":"たべる"}`, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("word item status = %d, want 201", w.Code)
	}
	var word map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &word); err != nil {
		t.Fatalf("unmarshal word response: %v", err)
	}
	if word["japanese"] != "食べる" || word["pronunciation"] != "たべる" || word["word_book_id"] != "book-1" {
		t.Errorf("word response = %v", word)
	}

	w = doRequest(r, http.MethodPost, "/kanji-books/book-2/kanjis",
		`{"kanji":"食","meaning":"eat","onyomi":"ショク","kunyomi":"た.べる"}`, true)
	if w.Code != http.StatusCreated {
		t.Fatalf("kanji item status = %d, want 201", w.Code)
	}
	var kanji map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &kanji); err != nil {
		t.Fatalf("unmarshal kanji response: %v", err)
	}
	if kanji["kanji"] != "食" || kanji["onyomi"] != "ショク" || kanji["kunyomi"] != "た.べる" || kanji["kanji_book_id"] != "book-2" {
		t.Errorf("kanji response = %v", kanji)
	}
}

func TestCreateItemRequiresMeaning(t *testing.T) {
	r := newRouter(&serviceStub{})
	w := doRequest(r, http.MethodPost, "/word-books/book-1/words", `{"japanese":"食べる"}`, true)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400 for missing meaning", w.Code)
	}
}

func TestReviewResponseArraysNeverNull(t *testing.T) {
	stub := &serviceStub{
		review: &models.Review{ID: "review-1", UserID: "user-1", ReviewDate: "2026-01-15"},
	}
	r := newRouter(stub)

	w := doRequest(r, http.MethodPost, "/schedules/review/reset?current_date=2026-01-15", "", true)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if strings.Contains(body, "null") {
		t.Errorf("empty id sets must serialize as [], got %s", body)
	}
}
