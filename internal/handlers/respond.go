package handlers

import (
	"errors"
	"net/http"

	"github.com/example/lingopath/internal/adaptive"
	"github.com/example/lingopath/internal/database"
	"github.com/example/lingopath/internal/economy"
	"github.com/example/lingopath/internal/path"
	"github.com/example/lingopath/internal/srs"

	"github.com/gin-gonic/gin"
)

// statusFor maps engine and storage errors onto HTTP status codes:
// caller input errors are 400, missing records 404, concurrency conflicts
// that survived retries 409, the rest 500.
func statusFor(err error) int {
	switch {
	case errors.Is(err, srs.ErrInvalidQuality),
		errors.Is(err, adaptive.ErrInvalidDifficulty),
		errors.Is(err, path.ErrInvalidCrowns),
		errors.Is(err, path.ErrInvalidMastery),
		errors.Is(err, economy.ErrNegativeAmount):
		return http.StatusBadRequest
	case errors.Is(err, path.ErrUnknownSkill),
		errors.Is(err, database.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, database.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	c.JSON(statusFor(err), gin.H{"error": err.Error()})
}
