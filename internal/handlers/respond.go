package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"bio-clicker-backend/internal/models"
)

// respondError maps a domain rejection to its HTTP status. Anything
// that is not an AppError is logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		if appErr.Cause != nil {
			log.Printf("%s %s: %v", c.Request.Method, c.Request.URL.Path, appErr)
		}
		c.JSON(appErr.Status, gin.H{"error": appErr.Message, "code": appErr.Code})
		return
	}

	log.Printf("%s %s: unexpected error: %v", c.Request.Method, c.Request.URL.Path, err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
}
