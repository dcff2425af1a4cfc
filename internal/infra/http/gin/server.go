package ginserver

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	gin "github.com/gin-gonic/gin"

	"rentcar/internal/infra/config"
	"rentcar/internal/infra/obs"
)

type QuoteHTTP interface {
	Hourly(c *gin.Context)
	Daily(c *gin.Context)
}

type BookingCheckHTTP interface {
	Check(c *gin.Context)
	CheckDays(c *gin.Context)
}

type AvailabilityHTTP interface {
	NextAvailable(c *gin.Context)
}

type Handlers struct {
	Quotes       QuoteHTTP
	BookingCheck BookingCheckHTTP
	Availability AvailabilityHTTP
}

func NewServer(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *http.Server {
	mode := configureGinMode(cfg.Env)
	if obsMW.Logger != nil {
		obsMW.Logger.Info("gin initialized", "mode", mode)
	}
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           NewRouter(cfg, obsMW, health, h),
		ReadHeaderTimeout: 5 * time.Second,
	}
}

// NewRouter builds the gin engine without binding a listener.
func NewRouter(cfg config.Config, obsMW obs.Middleware, health obs.HealthHandlers, h Handlers) *gin.Engine {
	router := gin.New()
	router.Use(obsMW.RequestID())
	router.Use(obsMW.AccessLog())
	router.Use(obsMW.Recovery())
	router.Use(cors.New(corsConfig(cfg)))

	registerSwaggerRoutes(router)

	router.GET("/livez", health.Livez)
	router.GET("/readyz", health.Readyz)

	api := router.Group("/api/v1")
	if h.Quotes != nil {
		api.POST("/quotes", h.Quotes.Hourly)
		api.POST("/quotes/days", h.Quotes.Daily)
	}
	if h.BookingCheck != nil {
		api.POST("/listings/:id/booking-checks", h.BookingCheck.Check)
		api.POST("/listings/:id/day-booking-checks", h.BookingCheck.CheckDays)
	}
	if h.Availability != nil {
		api.GET("/listings/:id/availability/next", h.Availability.NextAvailable)
	}
	return router
}

func corsConfig(cfg config.Config) cors.Config {
	c := cors.Config{
		AllowOrigins:  cfg.CORSOrigins,
		AllowMethods:  []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID"},
		ExposeHeaders: []string{"Content-Length", "Content-Type", "X-Request-ID"},
		MaxAge:        12 * time.Hour,
	}
	if cfg.CORSAllowAll || len(cfg.CORSOrigins) == 0 {
		c.AllowOrigins = nil
		c.AllowAllOrigins = true
	}
	return c
}

func configureGinMode(env string) string {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "debug":
		gin.SetMode(gin.DebugMode)
		return gin.DebugMode
	case "test", "testing":
		gin.SetMode(gin.TestMode)
		return gin.TestMode
	default:
		gin.SetMode(gin.ReleaseMode)
		return gin.ReleaseMode
	}
}
