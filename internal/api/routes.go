package api

import (
	"fmt"
	"sync"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"equitystek/server/internal/metrics"
	"equitystek/server/internal/models"
)

var registerOnce sync.Once

// RegisterValidators adds the enum tags used by the request structs to gin's
// validator.
func RegisterValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		validations := map[string]validator.Func{
			"property_type": func(fl validator.FieldLevel) bool {
				return models.PropertyType(fl.Field().String()).IsValid()
			},
			"maintenance_category": func(fl validator.FieldLevel) bool {
				return models.MaintenanceCategory(fl.Field().String()).IsValid()
			},
		}
		for tag, fn := range validations {
			if err := v.RegisterValidation(tag, fn); err != nil {
				panic(fmt.Sprintf("failed to register %s validation: %v", tag, err))
			}
		}
	})
}

type RouterOptions struct {
	CORSOrigins []string
	Metrics     *metrics.Metrics
	// Gatherer serves /metrics; nil uses the default registry
	Gatherer prometheus.Gatherer
	Logger   *logrus.Logger
}

// NewRouter builds the gin engine with middleware and every route mounted.
func NewRouter(handler *Handler, opts RouterOptions) *gin.Engine {
	RegisterValidators()

	logger := opts.Logger
	if logger == nil {
		logger = handler.logger
	}

	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(RequestLogger(logger, opts.Metrics))
	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", requestIDHeader},
		ExposeHeaders:    []string{requestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	gatherer := opts.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))

	SetupRoutes(router, handler)
	return router
}

func SetupRoutes(router *gin.Engine, handler *Handler) {
	api := router.Group("/api")
	{
		api.GET("/properties", handler.ListProperties)
		api.POST("/properties", handler.CreateProperty)
		api.GET("/properties/:id", handler.GetProperty)
		api.PUT("/properties/:id", handler.UpdateProperty)
		api.DELETE("/properties/:id", handler.DeleteProperty)
		api.GET("/properties/:id/valuation", handler.GetValuation)
		api.GET("/properties/:id/maintenance", handler.ListMaintenance)
		api.POST("/properties/:id/maintenance", handler.CreateMaintenance)

		api.PUT("/maintenance/:id", handler.UpdateMaintenance)
		api.DELETE("/maintenance/:id", handler.DeleteMaintenance)

		api.GET("/tradespersons", handler.ListTradespersons)
		api.POST("/tradespersons", handler.CreateTradesperson)

		api.GET("/plans", handler.ListPlans)

		owners := api.Group("/owners/:owner_id")
		owners.GET("/subscription", handler.GetSubscription)
		owners.PUT("/subscription", handler.Subscribe)
		owners.POST("/subscription/quote", handler.QuotePropertyChange)
		owners.GET("/portfolio", handler.GetPortfolio)
		owners.GET("/portfolio/map", handler.GetPortfolioMap)
	}
}
