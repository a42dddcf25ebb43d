package handlers

import (
	"net/http"
	"strconv"

	"github.com/example/lingopath/internal/service"

	"github.com/gin-gonic/gin"
)

// ReviewHandler exposes the spaced-repetition operations
type ReviewHandler struct {
	Service *service.ReviewService
}

// NewReviewHandler creates the handler
func NewReviewHandler(svc *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{Service: svc}
}

type recordReviewRequest struct {
	UserID  string `json:"user_id"`
	ItemID  string `json:"item_id"`
	Quality int    `json:"quality"`
}

// RecordReview applies one review outcome
func (h *ReviewHandler) RecordReview(c *gin.Context) {
	var req recordReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" || req.ItemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and item_id are required"})
		return
	}

	record, err := h.Service.RecordReview(c.Request.Context(), req.UserID, req.ItemID, req.Quality)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, record)
}

// DueItems returns the user's due reviews, most overdue first
func (h *ReviewHandler) DueItems(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a non-negative integer"})
			return
		}
		limit = parsed
	}

	records, err := h.Service.DueItems(c.Request.Context(), userID, limit)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}

// WeakItems returns the user's weakest reviews, lowest ease first
func (h *ReviewHandler) WeakItems(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	records, err := h.Service.WeakItems(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": records})
}

// MasteryLevel returns the derived 0-100 mastery score for an item
func (h *ReviewHandler) MasteryLevel(c *gin.Context) {
	userID := c.Query("user_id")
	itemID := c.Query("item_id")
	if userID == "" || itemID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and item_id are required"})
		return
	}

	mastery, err := h.Service.MasteryLevel(c.Request.Context(), userID, itemID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"mastery_level": mastery})
}
