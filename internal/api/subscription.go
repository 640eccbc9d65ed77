package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type SubscribeRequest struct {
	PlanCode string `json:"plan_code" binding:"required"`
}

type QuoteRequest struct {
	Delta *int `json:"delta" binding:"required"`
}

func (h *Handler) ListPlans(c *gin.Context) {
	plans, err := h.service.ListPlans(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

func (h *Handler) GetSubscription(c *gin.Context) {
	ownerID, err := parseID(c, "owner_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	sub, err := h.service.GetSubscription(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) Subscribe(c *gin.Context) {
	ownerID, err := parseID(c, "owner_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	sub, err := h.service.Subscribe(c.Request.Context(), ownerID, req.PlanCode)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

func (h *Handler) QuotePropertyChange(c *gin.Context) {
	ownerID, err := parseID(c, "owner_id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	quote, err := h.service.QuotePropertyChange(c.Request.Context(), ownerID, *req.Delta)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, quote)
}
