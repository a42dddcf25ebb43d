package handlers

import (
	"net/http"
	"strconv"

	"github.com/example/lingopath/internal/service"

	"github.com/gin-gonic/gin"
)

// PerformanceHandler exposes attempt recording and difficulty queries
type PerformanceHandler struct {
	Service *service.PerformanceService
}

// NewPerformanceHandler creates the handler
func NewPerformanceHandler(svc *service.PerformanceService) *PerformanceHandler {
	return &PerformanceHandler{Service: svc}
}

type recordAttemptRequest struct {
	UserID           string  `json:"user_id"`
	SkillID          string  `json:"skill_id"`
	ItemID           string  `json:"item_id"`
	Correct          bool    `json:"correct"`
	TimeSpentSeconds float64 `json:"time_spent_seconds"`
}

// RecordAttempt folds one exercise outcome into the performance record
func (h *PerformanceHandler) RecordAttempt(c *gin.Context) {
	var req recordAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" || req.SkillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and skill_id are required"})
		return
	}
	if req.TimeSpentSeconds < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "time_spent_seconds must not be negative"})
		return
	}

	err := h.Service.RecordAttempt(c.Request.Context(), req.UserID, req.SkillID, req.ItemID, req.Correct, req.TimeSpentSeconds)
	if err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// CalculateDifficulty recommends a difficulty for the next exercise
func (h *PerformanceHandler) CalculateDifficulty(c *gin.Context) {
	userID := c.Query("user_id")
	skillID := c.Query("skill_id")
	if userID == "" || skillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and skill_id are required"})
		return
	}

	base, err := strconv.Atoi(c.DefaultQuery("base", "3"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base must be an integer"})
		return
	}

	adjustment, err := h.Service.CalculateDifficulty(c.Request.Context(), userID, skillID, c.Query("item_id"), base)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, adjustment)
}

// WeakAreas returns the item IDs in a skill that need extra practice
func (h *PerformanceHandler) WeakAreas(c *gin.Context) {
	userID := c.Query("user_id")
	skillID := c.Query("skill_id")
	if userID == "" || skillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and skill_id are required"})
		return
	}

	items, err := h.Service.WeakAreas(c.Request.Context(), userID, skillID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"item_ids": items})
}

// ShouldReview reports whether a skill is due for a refresher
func (h *PerformanceHandler) ShouldReview(c *gin.Context) {
	userID := c.Query("user_id")
	skillID := c.Query("skill_id")
	if userID == "" || skillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and skill_id are required"})
		return
	}

	days, err := strconv.Atoi(c.DefaultQuery("days_since_last_review", "0"))
	if err != nil || days < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "days_since_last_review must be a non-negative integer"})
		return
	}

	review, err := h.Service.ShouldReviewSkill(c.Request.Context(), userID, skillID, days)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"should_review": review})
}

// LearningSpeed returns the pacing multiplier for a skill
func (h *PerformanceHandler) LearningSpeed(c *gin.Context) {
	userID := c.Query("user_id")
	skillID := c.Query("skill_id")
	if userID == "" || skillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and skill_id are required"})
		return
	}

	speed, err := h.Service.LearningSpeed(c.Request.Context(), userID, skillID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"learning_speed": speed})
}
