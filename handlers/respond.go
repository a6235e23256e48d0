package handlers

import (
	"errors"
	"log"
	"net/http"

	"restaurant-pos/services"
	"restaurant-pos/statemachine"

	"github.com/gin-gonic/gin"
)

// writeError maps domain errors to status codes in one place. Storage
// failures are logged and surfaced as a generic 500 without internal detail.
func writeError(c *gin.Context, err error) {
	var (
		ve *services.ValidationError
		nf *services.NotFoundError
		de *services.DuplicateError
		te *statemachine.TransitionError
	)
	switch {
	case errors.As(err, &ve):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.As(err, &nf):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.As(err, &de):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.As(err, &te):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		log.Printf("storage error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
