package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/kotoba-tracker/internal/models"
)

// Service is the engine surface the HTTP layer drives.
type Service interface {
	GetSchedule(ctx context.Context, userID string) (*models.Schedule, error)
	UpsertSchedule(ctx context.Context, userID string, studyDays int, reviewDays []int64, referenceDate string) (*models.Schedule, error)
	ListScheduledBooks(ctx context.Context, userID string, kind models.BookKind, referenceDate string) (*models.ScheduledBooks, error)
	MarkReviewed(ctx context.Context, userID string, kind models.BookKind, bookID, referenceDate string) (*models.Review, error)
	ResetReview(ctx context.Context, userID, referenceDate string) (*models.Review, error)
	CreateBook(ctx context.Context, userID string, kind models.BookKind, title string, showFront bool, createdDate string) (*models.Book, error)
	ListBooks(ctx context.Context, userID string, kind models.BookKind) ([]models.Book, error)
	CreateItem(ctx context.Context, userID string, kind models.BookKind, bookID, front, meaning, reading, altReading string) (*models.Item, error)
	ListItems(ctx context.Context, userID string, kind models.BookKind, bookID string) ([]models.Item, error)
	UpdateItemStatus(ctx context.Context, userID string, kind models.BookKind, itemID, status string) (*models.Item, error)
}

type HTTPHandler struct {
	service Service
}

func NewHTTPHandler(service Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// Register wires all routes onto the router. Authentication happens
// upstream; requests arrive with the caller's identity in X-User-ID.
func (h *HTTPHandler) Register(r *gin.Engine) {
	api := r.Group("/", requireUserID())

	api.GET("/schedules", h.getSchedule)
	api.POST("/schedules", h.upsertSchedule)
	api.GET("/schedules/word-books", h.listScheduled(models.KindWordBook))
	api.GET("/schedules/kanji-books", h.listScheduled(models.KindKanjiBook))
	api.POST("/schedules/word-books/review", h.markReviewed(models.KindWordBook))
	api.POST("/schedules/kanji-books/review", h.markReviewed(models.KindKanjiBook))
	api.POST("/schedules/review/reset", h.resetReview)

	api.GET("/word-books", h.listBooks(models.KindWordBook))
	api.POST("/word-books", h.createBook(models.KindWordBook))
	api.GET("/kanji-books", h.listBooks(models.KindKanjiBook))
	api.POST("/kanji-books", h.createBook(models.KindKanjiBook))

	api.GET("/word-books/:id/words", h.listItems(models.KindWordBook))
	api.POST("/word-books/:id/words", h.createItem(models.KindWordBook))
	api.GET("/kanji-books/:id/kanjis", h.listItems(models.KindKanjiBook))
	api.POST("/kanji-books/:id/kanjis", h.createItem(models.KindKanjiBook))
	api.PATCH("/words/:id", h.updateItemStatus(models.KindWordBook))
	api.PATCH("/kanjis/:id", h.updateItemStatus(models.KindKanjiBook))
}

func requireUserID() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing X-User-ID header"})
			return
		}
		c.Set("userID", userID)
		c.Next()
	}
}

func userID(c *gin.Context) string {
	return c.GetString("userID")
}

type scheduleRequest struct {
	StudyDays   int     `json:"study_days"`
	ReviewDays  []int64 `json:"review_days"`
	CurrentDate string  `json:"current_date" binding:"required"`
}

type scheduleResponse struct {
	ID         string  `json:"id"`
	StudyDays  int     `json:"study_days"`
	ReviewDays []int64 `json:"review_days"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toScheduleResponse(s *models.Schedule) scheduleResponse {
	return scheduleResponse{
		ID:         s.ID,
		StudyDays:  s.StudyDays,
		ReviewDays: []int64(s.ReviewDays),
		CreatedAt:  s.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  s.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
	}
}

type reviewResponse struct {
	ID               string   `json:"id"`
	UserID           string   `json:"user_id"`
	ReviewDate       string   `json:"review_date"`
	WordBookReviews  []string `json:"word_book_reviews"`
	KanjiBookReviews []string `json:"kanji_book_reviews"`
}

func toReviewResponse(r *models.Review) reviewResponse {
	return reviewResponse{
		ID:               r.ID,
		UserID:           r.UserID,
		ReviewDate:       r.ReviewDate,
		WordBookReviews:  emptyIfNil(r.WordBookReviews),
		KanjiBookReviews: emptyIfNil(r.KanjiBookReviews),
	}
}

// emptyIfNil keeps the JSON arrays as [] rather than null.
func emptyIfNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func (h *HTTPHandler) getSchedule(c *gin.Context) {
	schedule, err := h.service.GetSchedule(c.Request.Context(), userID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponse(schedule))
}

func (h *HTTPHandler) upsertSchedule(c *gin.Context) {
	var req scheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	schedule, err := h.service.UpsertSchedule(c.Request.Context(), userID(c), req.StudyDays, req.ReviewDays, req.CurrentDate)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toScheduleResponse(schedule))
}

func (h *HTTPHandler) listScheduled(kind models.BookKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		result, err := h.service.ListScheduledBooks(c.Request.Context(), userID(c), kind, c.Query("current_date"))
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"study":            result.Study,
			"review":           result.Review,
			"study_statistics": result.StudyStatistics,
		})
	}
}

type markReviewedRequest struct {
	BookID      string `json:"book_id" binding:"required"`
	CurrentDate string `json:"current_date" binding:"required"`
}

func (h *HTTPHandler) markReviewed(kind models.BookKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req markReviewedRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		review, err := h.service.MarkReviewed(c.Request.Context(), userID(c), kind, req.BookID, req.CurrentDate)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, toReviewResponse(review))
	}
}

func (h *HTTPHandler) resetReview(c *gin.Context) {
	review, err := h.service.ResetReview(c.Request.Context(), userID(c), c.Query("current_date"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toReviewResponse(review))
}

type createBookRequest struct {
	Title       string `json:"title" binding:"required"`
	ShowFront   *bool  `json:"show_front"`
	CurrentDate string `json:"current_date" binding:"required"`
}

func (h *HTTPHandler) createBook(kind models.BookKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createBookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		showFront := true
		if req.ShowFront != nil {
			showFront = *req.ShowFront
		}

		book, err := h.service.CreateBook(c.Request.Context(), userID(c), kind, req.Title, showFront, req.CurrentDate)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, book)
	}
}

func (h *HTTPHandler) listBooks(kind models.BookKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		books, err := h.service.ListBooks(c.Request.Context(), userID(c), kind)
		if err != nil {
			writeError(c, err)
			return
		}
		if books == nil {
			books = []models.Book{}
		}
		c.JSON(http.StatusOK, books)
	}
}

// createItemRequest covers both kinds; the kind picks which fields map onto
// the item's front and readings.
type createItemRequest struct {
	Japanese      string `json:"japanese"`
	Pronunciation string `json:"pronunciation"`
	Kanji         string `json:"kanji"`
	Onyomi        string `json:"onyomi"`
	Kunyomi       string `json:"kunyomi"`
	Meaning       string `json:"meaning" binding:"required"`
}

func itemResponse(kind models.BookKind, item *models.Item) gin.H {
	resp := gin.H{
		"id":         item.ID,
		"meaning":    item.Meaning,
		"status":     item.Status,
		"created_at": item.CreatedAt,
		"updated_at": item.UpdatedAt,
	}
	if kind == models.KindKanjiBook {
		resp["kanji_book_id"] = item.BookID
		resp["kanji"] = item.Front
		resp["onyomi"] = item.Reading
		resp["kunyomi"] = item.AltReading
	} else {
		resp["word_book_id"] = item.BookID
		resp["japanese"] = item.Front
		resp["pronunciation"] = item.Reading
	}
	return resp
}

func (h *HTTPHandler) createItem(kind models.BookKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req createItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		front, reading, altReading := req.Japanese, req.Pronunciation, ""
		if kind == models.KindKanjiBook {
			front, reading, altReading = req.Kanji, req.Onyomi, req.Kunyomi
		}

		item, err := h.service.CreateItem(c.Request.Context(), userID(c), kind, c.Param("id"), front, req.Meaning, reading, altReading)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusCreated, itemResponse(kind, item))
	}
}

func (h *HTTPHandler) listItems(kind models.BookKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		items, err := h.service.ListItems(c.Request.Context(), userID(c), kind, c.Param("id"))
		if err != nil {
			writeError(c, err)
			return
		}
		resp := make([]gin.H, 0, len(items))
		for i := range items {
			resp = append(resp, itemResponse(kind, &items[i]))
		}
		c.JSON(http.StatusOK, resp)
	}
}

type updateItemStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func (h *HTTPHandler) updateItemStatus(kind models.BookKind) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req updateItemStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		item, err := h.service.UpdateItemStatus(c.Request.Context(), userID(c), kind, c.Param("id"), req.Status)
		if err != nil {
			writeError(c, err)
			return
		}
		c.JSON(http.StatusOK, itemResponse(kind, item))
	}
}

func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, models.ErrInvalidArgument):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, models.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		zap.S().Errorw("request failed", "path", c.FullPath(), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
