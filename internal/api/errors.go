package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"equitystek/server/internal/domainerr"
)

// respondError maps domain errors to status codes. Anything unrecognised is
// logged and reported as a 500 without details.
func (h *Handler) respondError(c *gin.Context, err error) {
	var invalid *domainerr.InvalidInputError
	if errors.As(err, &invalid) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "field": invalid.Field})
		return
	}
	if limit, ok := domainerr.AsPlanLimit(err); ok {
		c.JSON(http.StatusConflict, gin.H{
			"error":          err.Error(),
			"code":           "plan_limit_exceeded",
			"plan":           limit.PlanName,
			"max_properties": limit.MaxProperties,
			"requested":      limit.Requested,
		})
		return
	}

	switch {
	case errors.Is(err, domainerr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, domainerr.ErrSubscriptionRequired):
		c.JSON(http.StatusPaymentRequired, gin.H{"error": err.Error(), "code": "subscription_required"})
	default:
		h.logger.WithError(err).WithFields(requestFields(c)).Error("Request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// respondBindError reports a malformed or invalid request body.
func (h *Handler) respondBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			fields[fe.Field()] = fe.Tag()
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request parameters", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
}
