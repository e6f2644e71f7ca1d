package http

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/comitanigiacomo/habit-league/internal/core/domain"
)

func handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrWriteFailed):
		c.JSON(http.StatusBadGateway, gin.H{"error": domain.ErrWriteFailed.Error(), "details": err.Error()})

	case errors.Is(err, domain.ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})

	case errors.Is(err, domain.ErrInvalidDate),
		errors.Is(err, domain.ErrInvalidViewMode),
		errors.Is(err, domain.ErrInvalidDirection):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})

	case errors.Is(err, domain.ErrEntryNotFound) || errors.Is(err, domain.ErrHabitNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "resource not found"})

	case errors.Is(err, domain.ErrEntryWithoutID):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "entry cannot be addressed",
			"message": err.Error(),
		})

	case errors.Is(err, domain.ErrEntryConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "entry conflict",
			"message": "the entry was changed elsewhere, refresh and retry",
		})

	case errors.Is(err, domain.ErrSourceUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": "habit backend unavailable"})

	default:
		log.Printf("[ERROR] Request %s %s failed: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
