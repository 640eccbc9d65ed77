package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/models"
	"equitystek/server/internal/tradesperson"
)

const dateLayout = "2006-01-02"

type MaintenanceRequest struct {
	TradespersonID      *int64           `json:"tradesperson_id" binding:"omitempty,gt=0"`
	Category            string           `json:"category" binding:"required,maintenance_category"`
	Description         string           `json:"description"`
	Cost                *decimal.Decimal `json:"cost" binding:"required"`
	EstimatedValueAdded *decimal.Decimal `json:"estimated_value_added"`
	CompletedDate       string           `json:"completed_date" binding:"omitempty,datetime=2006-01-02"`
}

func (r MaintenanceRequest) toModel() (*models.MaintenanceEvent, error) {
	e := &models.MaintenanceEvent{
		TradespersonID:      r.TradespersonID,
		Category:            models.MaintenanceCategory(r.Category),
		Description:         r.Description,
		Cost:                *r.Cost,
		EstimatedValueAdded: nullDecimal(r.EstimatedValueAdded),
	}
	if r.CompletedDate != "" {
		date, err := time.Parse(dateLayout, r.CompletedDate)
		if err != nil {
			return nil, domainerr.Invalid("completed_date", "must be a YYYY-MM-DD date")
		}
		e.CompletedDate = &date
	}
	return e, nil
}

// MaintenanceView is a ledger row with its tradesperson name resolved.
type MaintenanceView struct {
	models.MaintenanceEvent
	Tradesperson *tradesperson.Resolution `json:"tradesperson,omitempty"`
}

func (h *Handler) ListMaintenance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	events, err := h.service.ListMaintenance(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}

	// Names that take too long come back as pending instead of holding the page.
	ctx, cancel := context.WithTimeout(c.Request.Context(), h.nameTimeout)
	defer cancel()

	views := make([]MaintenanceView, len(events))
	for i, e := range events {
		views[i] = MaintenanceView{MaintenanceEvent: e}
		if e.TradespersonID == nil || h.names == nil {
			continue
		}
		res, err := h.names.ResolveName(ctx, *e.TradespersonID)
		if err != nil {
			h.logger.WithError(err).WithField("tradesperson_id", *e.TradespersonID).Warn("Failed to resolve tradesperson")
			continue
		}
		views[i].Tradesperson = &res
	}
	c.JSON(http.StatusOK, views)
}

func (h *Handler) CreateMaintenance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}
	e, err := req.toModel()
	if err != nil {
		h.respondError(c, err)
		return
	}

	e.PropertyID = id
	event, err := h.service.AddMaintenance(c.Request.Context(), e)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, event)
}

func (h *Handler) UpdateMaintenance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req MaintenanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}
	e, err := req.toModel()
	if err != nil {
		h.respondError(c, err)
		return
	}

	e.ID = id
	event, err := h.service.UpdateMaintenance(c.Request.Context(), e)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *Handler) DeleteMaintenance(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	if err := h.service.DeleteMaintenance(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type TradespersonRequest struct {
	Name  string `json:"name" binding:"required"`
	Trade string `json:"trade" binding:"required"`
	Phone string `json:"phone"`
	Email string `json:"email" binding:"omitempty,email"`
}

func (h *Handler) ListTradespersons(c *gin.Context) {
	people, err := h.tradespersons.ListTradespersons(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, people)
}

func (h *Handler) CreateTradesperson(c *gin.Context) {
	var req TradespersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	person := &models.Tradesperson{
		Name:  req.Name,
		Trade: req.Trade,
		Phone: req.Phone,
		Email: req.Email,
	}
	if err := h.tradespersons.CreateTradesperson(c.Request.Context(), person); err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, person)
}
