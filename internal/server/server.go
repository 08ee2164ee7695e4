package server

import (
	"database/sql"
	"net/http"
	"time"

	"github.com/Fadil369/brainsait-healthcare-platform/internal/cache"

	log "github.com/sirupsen/logrus"

	"github.com/labstack/echo/v4"
)

// AppInfo is the static service identity returned by the root endpoint.
type AppInfo struct {
	Name     string
	Version  string
	Region   string
	Currency string
	Language string
}

type Server struct {
	db    *sql.DB
	cache *cache.ProductCache
	info  AppInfo
}

func NewServer(db *sql.DB, productCache *cache.ProductCache, info AppInfo) *Server {
	return &Server{
		db:    db,
		cache: productCache,
		info:  info,
	}
}

// Root reports the service identity and platform defaults.
func (s *Server) Root(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"message":   s.info.Name,
		"version":   s.info.Version,
		"region":    s.info.Region,
		"currency":  s.info.Currency,
		"language":  s.info.Language,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// HealthCheck is the liveness probe; it touches no dependencies.
func (s *Server) HealthCheck(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":    "healthy",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

// ReadyCheck is the readiness probe: Postgres must answer, and Redis too when
// it is configured.
func (s *Server) ReadyCheck(c echo.Context) error {
	if err := s.db.Ping(); err != nil {
		log.WithField("error", err).Error("Readiness check failed: database is down")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "database connection error",
		})
	}

	if err := s.cache.Ping(c.Request().Context()); err != nil {
		log.WithField("error", err).Error("Readiness check failed: cache is down")
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "cache connection error",
		})
	}

	return c.JSON(http.StatusOK, map[string]string{
		"status":    "ready",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
