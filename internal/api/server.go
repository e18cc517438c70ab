// Package api provides the HTTP API of the scraper.
package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/Lllllllleong/secfilingflow/internal/filing"
	"github.com/Lllllllleong/secfilingflow/internal/models"
	"github.com/Lllllllleong/secfilingflow/internal/services"
	"github.com/Lllllllleong/secfilingflow/internal/store"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

// ServiceName is reported by the root endpoint.
const ServiceName = "sec-filing-scraper"

// Scraper runs one extraction session.
type Scraper interface {
	Process(ctx context.Context, req *models.ScrapeRequest) (*models.ScrapeResponse, error)
}

// Config holds HTTP server configuration.
type Config struct {
	Host         string
	Port         int
	Version      string
	DisplayLimit int
}

// Server provides the HTTP endpoints.
type Server struct {
	echo    *echo.Echo
	scraper Scraper
	store   store.Store
	metrics http.Handler
	config  *Config
}

// NewServer creates a new HTTP server. metricsHandler may be nil.
func NewServer(scraper Scraper, st store.Store, metricsHandler http.Handler, cfg *Config) (*Server, error) {
	if scraper == nil {
		return nil, fmt.Errorf("scraper cannot be nil")
	}
	if st == nil {
		return nil, fmt.Errorf("store cannot be nil")
	}
	if cfg == nil {
		cfg = &Config{Port: 8080}
	}
	if cfg.Version == "" {
		cfg.Version = "dev"
	}
	if cfg.DisplayLimit <= 0 {
		cfg.DisplayLimit = services.DefaultDisplayLimit
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = httpErrorHandler(e)

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())
	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			err := next(c)
			if err != nil {
				c.Error(err)
			}
			slog.Info("http request",
				"method", c.Request().Method,
				"uri", c.Request().RequestURI,
				"status", c.Response().Status,
				"duration", time.Since(start),
				"requestId", c.Response().Header().Get(echo.HeaderXRequestID),
			)
			return nil
		}
	})

	s := &Server{
		echo:    e,
		scraper: scraper,
		store:   st,
		metrics: metricsHandler,
		config:  cfg,
	}
	s.registerRoutes()
	return s, nil
}

func (s *Server) registerRoutes() {
	s.echo.GET("/", s.handleRoot)
	s.echo.GET("/healthz", s.handleHealth)
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/sections", s.handleSections)
	s.echo.POST("/detect-filing-type", s.handleDetectFilingType)
	s.echo.POST("/scrape", s.handleScrape)

	filings := s.echo.Group("/filings")
	filings.GET("", s.handleListFilings)
	filings.GET("/:filingId/sessions", s.handleListSessions)
	filings.GET("/:filingId/sessions/:sessionId/sections", s.handleListSections)
	filings.GET("/:filingId/sessions/:sessionId/sections/:sectionId", s.handleGetSection)

	if s.metrics != nil {
		s.echo.GET("/metrics", echo.WrapHandler(s.metrics))
	}
}

// Handler exposes the router, e.g. to a Cloud Functions entry point.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// SetPort changes the listen port used by Start.
func (s *Server) SetPort(port int) {
	s.config.Port = port
}

// Start starts the HTTP server.
func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
	slog.Info("starting http server", "addr", addr)
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	slog.Info("shutting down http server")
	return s.echo.Shutdown(ctx)
}

// RootResponse is the response body for GET /.
type RootResponse struct {
	Service string `json:"service"`
	Version string `json:"version"`
}

// HealthResponse is the response body for GET /healthz.
type HealthResponse struct {
	Status             string `json:"status"`
	DatastoreAvailable bool   `json:"datastore_available"`
}

func (s *Server) handleRoot(c echo.Context) error {
	return c.JSON(http.StatusOK, RootResponse{Service: ServiceName, Version: s.config.Version})
}

// handleHealth reports liveness. A failing datastore is reported, not fatal.
func (s *Server) handleHealth(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 3*time.Second)
	defer cancel()

	available := true
	if err := s.store.Ping(ctx); err != nil {
		slog.Warn("datastore ping failed", "error", err)
		available = false
	}
	return c.JSON(http.StatusOK, HealthResponse{Status: "ok", DatastoreAvailable: available})
}

func (s *Server) handleSections(c echo.Context) error {
	return c.JSON(http.StatusOK, filing.Vocabulary())
}

func (s *Server) handleDetectFilingType(c echo.Context) error {
	var req models.DetectFilingTypeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.FilingURL == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "filing_url is required")
	}
	return c.JSON(http.StatusOK, models.DetectFilingTypeResponse{
		FilingURL:  req.FilingURL,
		FilingType: string(filing.DetectKind(req.FilingURL)),
		FilingID:   filing.ID(req.FilingURL),
	})
}

func (s *Server) handleScrape(c echo.Context) error {
	var req models.ScrapeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	resp, err := s.scraper.Process(c.Request().Context(), &req)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleListFilings(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	filings, err := s.store.ListFilings(c.Request().Context(), limit)
	if err != nil {
		return err
	}
	if filings == nil {
		filings = []models.Filing{}
	}
	return c.JSON(http.StatusOK, filings)
}

func (s *Server) handleListSessions(c echo.Context) error {
	limit, err := limitParam(c)
	if err != nil {
		return err
	}
	sessions, err := s.store.ListSessions(c.Request().Context(), c.Param("filingId"), limit)
	if err != nil {
		return err
	}
	if sessions == nil {
		sessions = []models.Session{}
	}
	return c.JSON(http.StatusOK, sessions)
}

// handleListSections returns display copies; the single-section endpoint
// serves full content.
func (s *Server) handleListSections(c echo.Context) error {
	records, err := s.store.ListSections(c.Request().Context(), c.Param("filingId"), c.Param("sessionId"))
	if err != nil {
		return err
	}
	out := make([]models.SectionRecord, len(records))
	for i, rec := range records {
		rec.Content = services.Truncate(rec.Content, s.config.DisplayLimit)
		out[i] = rec
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleGetSection(c echo.Context) error {
	rec, err := s.store.GetSection(c.Request().Context(), c.Param("filingId"), c.Param("sessionId"), c.Param("sectionId"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rec)
}

func limitParam(c echo.Context) (int, error) {
	raw := c.QueryParam("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "limit must be a non-negative integer")
	}
	return limit, nil
}

// httpErrorHandler maps domain errors onto status codes and hides the cause
// of unexpected failures.
func httpErrorHandler(e *echo.Echo) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		var he *echo.HTTPError
		switch {
		case errors.As(err, &he):
		case errors.Is(err, services.ErrInvalidRequest):
			he = echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, store.ErrNotFound):
			he = echo.NewHTTPError(http.StatusNotFound, "not found")
		default:
			slog.Error("request failed", "uri", c.Request().RequestURI, "error", err)
			he = echo.NewHTTPError(http.StatusInternalServerError, "internal server error")
		}
		e.DefaultHTTPErrorHandler(he, c)
	}
}
