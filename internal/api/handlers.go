package api

import (
	"context"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"equitystek/server/internal/domainerr"
	"equitystek/server/internal/models"
	"equitystek/server/internal/portfolio"
	"equitystek/server/internal/tradesperson"
)

// TradespersonStore is the directory storage behind the tradesperson routes.
type TradespersonStore interface {
	CreateTradesperson(ctx context.Context, t *models.Tradesperson) error
	ListTradespersons(ctx context.Context) ([]models.Tradesperson, error)
}

type Handler struct {
	service       *portfolio.Service
	tradespersons TradespersonStore
	names         tradesperson.NameResolver
	logger        *logrus.Logger
	nameTimeout   time.Duration
}

func NewHandler(service *portfolio.Service, tradespersons TradespersonStore, names tradesperson.NameResolver, logger *logrus.Logger) *Handler {
	if logger == nil {
		logger = logrus.New()
		logger.SetFormatter(&logrus.JSONFormatter{})
		logger.SetOutput(os.Stdout)
	}

	return &Handler{
		service:       service,
		tradespersons: tradespersons,
		names:         names,
		logger:        logger,
		nameTimeout:   250 * time.Millisecond,
	}
}

type ownerQuery struct {
	OwnerID int64 `form:"owner_id" binding:"required,gt=0"`
}

type PropertyRequest struct {
	OwnerID       int64            `json:"owner_id"`
	Name          string           `json:"name" binding:"required"`
	Address       string           `json:"address"`
	City          string           `json:"city"`
	PostalCode    string           `json:"postal_code"`
	PropertyType  string           `json:"property_type" binding:"required,property_type"`
	SquareFeet    int              `json:"square_feet" binding:"required,gt=0"`
	Bedrooms      *int             `json:"bedrooms" binding:"omitempty,gte=0"`
	Bathrooms     *decimal.Decimal `json:"bathrooms"`
	YearBuilt     *int             `json:"year_built" binding:"omitempty,gt=0"`
	PurchasePrice *decimal.Decimal `json:"purchase_price"`
	Latitude      *float64         `json:"latitude"`
	Longitude     *float64         `json:"longitude"`
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(*d)
}

func (r PropertyRequest) toModel() *models.Property {
	return &models.Property{
		OwnerID:       r.OwnerID,
		Name:          r.Name,
		Address:       r.Address,
		City:          r.City,
		PostalCode:    r.PostalCode,
		PropertyType:  models.PropertyType(r.PropertyType),
		SquareFeet:    r.SquareFeet,
		Bedrooms:      r.Bedrooms,
		Bathrooms:     nullDecimal(r.Bathrooms),
		YearBuilt:     r.YearBuilt,
		PurchasePrice: nullDecimal(r.PurchasePrice),
		Latitude:      r.Latitude,
		Longitude:     r.Longitude,
	}
}

func parseID(c *gin.Context, name string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, domainerr.Invalid(name, "must be a positive integer")
	}
	return id, nil
}

func (h *Handler) ListProperties(c *gin.Context) {
	var query ownerQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.respondBindError(c, err)
		return
	}

	properties, err := h.service.ListProperties(c.Request.Context(), query.OwnerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, properties)
}

func (h *Handler) CreateProperty(c *gin.Context) {
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	result, err := h.service.AddProperty(c.Request.Context(), req.toModel())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, result)
}

func (h *Handler) GetProperty(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	property, err := h.service.GetProperty(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) UpdateProperty(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req PropertyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondBindError(c, err)
		return
	}

	p := req.toModel()
	p.ID = id
	property, err := h.service.UpdateProperty(c.Request.Context(), p)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, property)
}

func (h *Handler) DeleteProperty(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	quote, err := h.service.RemoveProperty(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"deleted": id, "quote": quote})
}

func (h *Handler) GetValuation(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	valuation, err := h.service.ValueProperty(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, valuation)
}

func (h *Handler) GetPortfolio(c *gin.Context) {
	ownerID, err := parseID(c, "owner_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	summary, err := h.service.Summary(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (h *Handler) GetPortfolioMap(c *gin.Context) {
	ownerID, err := parseID(c, "owner_id")
	if err != nil {
		h.respondError(c, err)
		return
	}

	m, err := h.service.Map(c.Request.Context(), ownerID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}
