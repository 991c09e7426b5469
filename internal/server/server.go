package server

import (
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/agent/core"
	"github.com/pndinxx/courserank/internal/agent/telemetry"
)

// Run boots the HTTP API: builds the orchestrator from config and serves
// until the listener fails. addr overrides the configured listen address
// when non-empty.
func Run(cfg *config.Config, addr string) error {
	e := newEcho()

	reg := prometheus.NewRegistry()
	tele := telemetry.New(cfg.Telemetry, reg)

	ctx := context.Background()
	orch, err := core.NewOrchestrator(ctx, cfg, tele, nil)
	if err != nil {
		return err
	}

	e.GET("/healthz", func(c echo.Context) error { return c.String(http.StatusOK, "ok") })
	if cfg.Telemetry.Enabled {
		e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(reg, promhttp.HandlerOpts{})))
	}

	h := &RankHandler{Orch: orch}
	h.Register(e.Group("/api"))

	if addr == "" {
		addr = cfg.Server.Address
	}
	if addr == "" {
		addr = ":8080"
	}
	log.Printf("listening on %s", addr)
	return e.Start(addr)
}

// newEcho builds the echo instance with recovery, CORS and a unified JSON
// error handler that logs every failed request.
func newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	baseLogger := log.New(log.Writer(), "[HTTP] ", log.LstdFlags)
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		code := http.StatusInternalServerError
		msg := err.Error()
		if he, ok := err.(*echo.HTTPError); ok {
			code = he.Code
			if he.Message != nil {
				msg = fmt.Sprint(he.Message)
			}
		}
		req := c.Request()
		baseLogger.Printf("%d %s %s from %s: %v", code, req.Method, req.URL.Path, c.RealIP(), err)
		if !c.Response().Committed {
			_ = c.JSON(code, map[string]interface{}{"error": msg})
		}
	}

	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders: []string{"Content-Type"},
	}))
	return e
}
