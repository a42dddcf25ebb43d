package handlers

import (
	"net/http"

	"github.com/example/lingopath/internal/service"

	"github.com/gin-gonic/gin"
)

// EconomyHandler exposes the XP and heart operations
type EconomyHandler struct {
	Service *service.EconomyService
	Paths   *service.PathService
}

// NewEconomyHandler creates the handler
func NewEconomyHandler(svc *service.EconomyService, paths *service.PathService) *EconomyHandler {
	return &EconomyHandler{Service: svc, Paths: paths}
}

// GetState returns the user's economy, creating it on first contact
func (h *EconomyHandler) GetState(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	state, err := h.Service.GetState(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "xp_progress": h.Service.XPProgressFor(state)})
}

type addXPRequest struct {
	UserID string `json:"user_id"`
	Amount int    `json:"amount"`
}

// AddXP grants experience points
func (h *EconomyHandler) AddXP(c *gin.Context) {
	var req addXPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	state, result, err := h.Service.AddXP(c.Request.Context(), req.UserID, req.Amount)
	if err != nil {
		fail(c, err)
		return
	}

	// A level-up can open level-gated content
	if result.LeveledUp && h.Paths != nil {
		if _, err := h.Paths.RecomputeUnlocks(c.Request.Context(), req.UserID); err != nil {
			fail(c, err)
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"state": state, "level_up": result})
}

type heartRequest struct {
	UserID string `json:"user_id"`
}

func (h *EconomyHandler) heartOp(c *gin.Context, op func(userID string) error) {
	var req heartRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.UserID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	if err := op(req.UserID); err != nil {
		fail(c, err)
	}
}

// LoseHeart spends one heart
func (h *EconomyHandler) LoseHeart(c *gin.Context) {
	h.heartOp(c, func(userID string) error {
		state, err := h.Service.LoseHeart(c.Request.Context(), userID)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, state)
		return nil
	})
}

// RegenerateHearts credits hearts for elapsed regeneration intervals
func (h *EconomyHandler) RegenerateHearts(c *gin.Context) {
	h.heartOp(c, func(userID string) error {
		state, err := h.Service.RegenerateHearts(c.Request.Context(), userID)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, state)
		return nil
	})
}

// EarnHeart adds one reward heart
func (h *EconomyHandler) EarnHeart(c *gin.Context) {
	h.heartOp(c, func(userID string) error {
		state, err := h.Service.EarnHeart(c.Request.Context(), userID)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, state)
		return nil
	})
}

// RestoreAllHearts refills hearts to the cap
func (h *EconomyHandler) RestoreAllHearts(c *gin.Context) {
	h.heartOp(c, func(userID string) error {
		state, err := h.Service.RestoreAllHearts(c.Request.Context(), userID)
		if err != nil {
			return err
		}
		c.JSON(http.StatusOK, state)
		return nil
	})
}

// TimeUntilNextHeart reports milliseconds until the next heart
func (h *EconomyHandler) TimeUntilNextHeart(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	ms, err := h.Service.TimeUntilNextHeart(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"milliseconds": ms})
}

// HasHearts reports whether the user can attempt practice
func (h *EconomyHandler) HasHearts(c *gin.Context) {
	userID := c.Query("user_id")
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}

	ok, err := h.Service.HasHearts(c.Request.Context(), userID)
	if err != nil {
		fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"has_hearts": ok})
}
