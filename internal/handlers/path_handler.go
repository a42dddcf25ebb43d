package handlers

import (
	"net/http"

	"github.com/example/lingopath/internal/path"
	"github.com/example/lingopath/internal/service"

	"github.com/gin-gonic/gin"
)

// PathHandler exposes the course content and progression operations
type PathHandler struct {
	Service *service.PathService
}

// NewPathHandler creates the handler
func NewPathHandler(svc *service.PathService) *PathHandler {
	return &PathHandler{Service: svc}
}

// GetPath returns the course content tree
func (h *PathHandler) GetPath(c *gin.Context) {
	c.JSON(http.StatusOK, h.Service.GetPath())
}

// GetProgress returns the user's progression document, initializing it on
// first contact
func (h *PathHandler) GetProgress(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	progress, err := h.Service.GetProgress(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

type updateSkillRequest struct {
	UserID       string `json:"user_id"`
	SkillID      string `json:"skill_id"`
	Crowns       *int   `json:"crowns"`
	MasteryLevel *int   `json:"mastery_level"`
	Completed    *bool  `json:"completed"`
}

// UpdateSkillProgress applies a partial skill update with propagation
func (h *PathHandler) UpdateSkillProgress(c *gin.Context) {
	var req updateSkillRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" || req.SkillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and skill_id are required"})
		return
	}

	progress, err := h.Service.UpdateSkillProgress(c.Request.Context(), req.UserID, req.SkillID, path.SkillUpdate{
		Crowns:       req.Crowns,
		MasteryLevel: req.MasteryLevel,
		Completed:    req.Completed,
	})
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, progress)
}

// IsSkillUnlocked reads the current lock flag for a skill
func (h *PathHandler) IsSkillUnlocked(c *gin.Context) {
	userID := c.Query("user_id")
	skillID := c.Query("skill_id")
	if userID == "" || skillID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id and skill_id are required"})
		return
	}

	unlocked, err := h.Service.IsSkillUnlocked(c.Request.Context(), userID, skillID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"unlocked": unlocked})
}

// NextUnlockedSkill returns the first unlocked, uncompleted skill
func (h *PathHandler) NextUnlockedSkill(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	skill, err := h.Service.NextUnlockedSkill(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, skill)
}
