// Package web serves the operational endpoints: health, metrics and a live cycle stream.
package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/vadiminshakov/navarb/internal/events"
)

const (
	heartbeatInterval = 30 * time.Second
	defaultHistory    = 50
	maxHistory        = 500
)

type cycleSource interface {
	Last() (events.CycleReport, bool)
	Subscribe() chan events.CycleReport
	Unsubscribe(ch chan events.CycleReport)
}

type historySource interface {
	Recent(limit int) ([]events.CycleReport, error)
}

// Server exposes /healthz, /metrics, /cycles/stream and optionally /cycles.
type Server struct {
	addr     string
	cycles   cycleSource
	gatherer prometheus.Gatherer
	logger   *zap.Logger

	// a cycle older than staleAfter makes /healthz report unhealthy
	staleAfter time.Duration
	echo       *echo.Echo
}

// NewServer creates a server bound to addr.
func NewServer(addr string, cycles cycleSource, gatherer prometheus.Gatherer, staleAfter time.Duration, logger *zap.Logger) *Server {
	s := &Server{
		addr:       addr,
		cycles:     cycles,
		gatherer:   gatherer,
		logger:     logger,
		staleAfter: staleAfter,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})))
	e.GET("/cycles/stream", s.handleCycleStream)
	s.echo = e

	return s
}

// EnableHistory serves the journaled cycles on GET /cycles?limit=N, newest first.
func (s *Server) EnableHistory(h historySource) {
	s.echo.GET("/cycles", func(c echo.Context) error {
		limit := defaultHistory
		if v := c.QueryParam("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return echo.NewHTTPError(http.StatusBadRequest, "limit must be a positive integer")
			}
			limit = min(n, maxHistory)
		}

		reports, err := h.Recent(limit)
		if err != nil {
			s.logger.Error("failed to read cycle journal", zap.Error(err))
			return echo.NewHTTPError(http.StatusInternalServerError, "journal unavailable")
		}
		if reports == nil {
			reports = []events.CycleReport{}
		}
		return c.JSON(http.StatusOK, reports)
	})
}

// Handler returns the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start runs the HTTP server (blocking) and shuts it down when ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	s.echo.Server.ReadHeaderTimeout = 5 * time.Second

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.echo.Shutdown(shutdownCtx)
	}()

	s.logger.Info("ops server listening", zap.String("addr", s.addr))
	if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return errors.Wrap(err, "ops server")
	}
	return nil
}

type healthResponse struct {
	Status    string              `json:"status"`
	LastCycle *events.CycleReport `json:"last_cycle,omitempty"`
}

func (s *Server) handleHealth(c echo.Context) error {
	last, ok := s.cycles.Last()
	if !ok {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "starting"})
	}
	if s.staleAfter > 0 && time.Since(last.Timestamp) > s.staleAfter {
		return c.JSON(http.StatusServiceUnavailable, healthResponse{Status: "stale", LastCycle: &last})
	}
	return c.JSON(http.StatusOK, healthResponse{Status: "ok", LastCycle: &last})
}

func (s *Server) handleCycleStream(c echo.Context) error {
	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)

	ch := s.cycles.Subscribe()
	defer s.cycles.Unsubscribe(ch)

	send := func(r events.CycleReport) error {
		payload, err := json.Marshal(r)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: cycle\ndata: %s\n\n", payload); err != nil {
			return err
		}
		w.Flush()
		return nil
	}

	if last, ok := s.cycles.Last(); ok {
		if err := send(last); err != nil {
			return nil
		}
	}

	// send a comment heartbeat so proxies keep the connection open
	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-c.Request().Context().Done():
			return nil
		case <-heartbeat.C:
			fmt.Fprint(w, ": ping\n\n")
			w.Flush()
		case r, open := <-ch:
			if !open {
				return nil
			}
			if err := send(r); err != nil {
				s.logger.Debug("cycle stream closed", zap.Error(err))
				return nil
			}
		}
	}
}
