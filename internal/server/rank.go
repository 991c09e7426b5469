package server

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/pndinxx/courserank/internal/agent/core"
)

// RankHandler exposes the course ranking pipeline over HTTP.
type RankHandler struct {
	Orch *core.Orchestrator
}

func (h *RankHandler) Register(g *echo.Group) {
	g.POST("/query", h.query)
	g.POST("/analyze", h.analyze)
	g.POST("/recommend", h.recommend)
	g.POST("/tierlist/:list/reset", h.reset)
	g.GET("/tierlist/:list/image", h.image)
	g.GET("/tierlist/:list/counts", h.counts)
	g.GET("/rankings/search", h.search)
}

// QueryRequest is the free-text entry point; intent classification decides
// which chain runs.
type QueryRequest struct {
	Query string `json:"query"`
	List  string `json:"list"`
}

func (r *QueryRequest) normalize() error {
	r.Query = strings.TrimSpace(r.Query)
	if r.Query == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "query is required")
	}
	if r.List == "" {
		r.List = "default"
	}
	return nil
}

func (h *RankHandler) query(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.normalize(); err != nil {
		return err
	}
	res, err := h.Orch.Process(c.Request().Context(), req.Query, req.List)
	if err != nil {
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *RankHandler) analyze(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.normalize(); err != nil {
		return err
	}
	rec := core.IntentRecord{Intent: core.IntentAnalyze, Keywords: req.Query}
	res, err := h.Orch.Analyze(c.Request().Context(), rec, req.List)
	if err != nil {
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *RankHandler) recommend(c echo.Context) error {
	var req QueryRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if err := req.normalize(); err != nil {
		return err
	}
	rec := core.IntentRecord{Intent: core.IntentRecommend, Keywords: req.Query}
	res, err := h.Orch.Recommend(c.Request().Context(), rec)
	if err != nil {
		return pipelineError(err)
	}
	return c.JSON(http.StatusOK, res)
}

func (h *RankHandler) reset(c echo.Context) error {
	list := c.Param("list")
	if err := h.Orch.TierList().Reset(c.Request().Context(), list); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{"list": list, "status": "reset"})
}

func (h *RankHandler) image(c echo.Context) error {
	list := c.Param("list")
	data, err := h.Orch.TierList().Canvas(c.Request().Context(), list)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.Blob(http.StatusOK, "image/png", data)
}

func (h *RankHandler) counts(c echo.Context) error {
	list := c.Param("list")
	counts, err := h.Orch.TierList().Counts(c.Request().Context(), list)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"list": list, "counts": counts})
}

func (h *RankHandler) search(c echo.Context) error {
	arc := h.Orch.Archive()
	if arc == nil {
		return echo.NewHTTPError(http.StatusNotFound, "archive disabled")
	}
	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}
	limit, _ := strconv.Atoi(c.QueryParam("limit"))
	docs, err := arc.Search(c.Request().Context(), q, limit)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"query": q, "results": docs})
}

// pipelineError maps pipeline failure categories to HTTP status codes. No
// evidence is the caller's problem (unknown course), model failure is ours.
func pipelineError(err error) error {
	switch {
	case errors.Is(err, core.ErrNoEvidence):
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrAllModelsFailed):
		return echo.NewHTTPError(http.StatusBadGateway, err.Error())
	default:
		var perr *core.ParseError
		if errors.As(err, &perr) {
			return echo.NewHTTPError(http.StatusBadGateway, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}
