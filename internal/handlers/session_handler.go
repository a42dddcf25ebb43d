package handlers

import (
	"net/http"
	"strconv"

	"github.com/example/lingopath/internal/session"

	"github.com/gin-gonic/gin"
)

// SessionHandler exposes practice session generation
type SessionHandler struct {
	Builder *session.Builder
}

// NewSessionHandler creates the handler
func NewSessionHandler(builder *session.Builder) *SessionHandler {
	return &SessionHandler{Builder: builder}
}

// Build generates a practice session from due reviews and weak areas
func (h *SessionHandler) Build(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	count, err := strconv.Atoi(c.DefaultQuery("count", "10"))
	if err != nil || count < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "count must be a non-negative integer"})
		return
	}

	base, err := strconv.Atoi(c.DefaultQuery("base", "3"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "base must be an integer"})
		return
	}

	s, err := h.Builder.Build(c.Request.Context(), userID, c.Query("skill_id"), count, base)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, s)
}
