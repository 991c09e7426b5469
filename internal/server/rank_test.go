package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/pndinxx/courserank/internal/agent/core"
)

func httpCode(t *testing.T, err error) int {
	t.Helper()
	he, ok := err.(*echo.HTTPError)
	if !ok {
		t.Fatalf("err = %v, want *echo.HTTPError", err)
	}
	return he.Code
}

func TestPipelineErrorMapping(t *testing.T) {
	noEvidence := fmt.Errorf("%w for %q", core.ErrNoEvidence, "x")
	if code := httpCode(t, pipelineError(noEvidence)); code != http.StatusNotFound {
		t.Fatalf("no evidence mapped to %d, want 404", code)
	}

	allFailed := fmt.Errorf("%w for role judge", core.ErrAllModelsFailed)
	if code := httpCode(t, pipelineError(allFailed)); code != http.StatusBadGateway {
		t.Fatalf("model failure mapped to %d, want 502", code)
	}

	parseErr := fmt.Errorf("synthesize: %w", &core.ParseError{Raw: "x", Err: fmt.Errorf("bad json")})
	if code := httpCode(t, pipelineError(parseErr)); code != http.StatusBadGateway {
		t.Fatalf("parse failure mapped to %d, want 502", code)
	}

	if code := httpCode(t, pipelineError(fmt.Errorf("disk full"))); code != http.StatusInternalServerError {
		t.Fatalf("unknown failure mapped to %d, want 500", code)
	}
}

func TestQueryRequestNormalize(t *testing.T) {
	r := QueryRequest{Query: "  微積分  "}
	if err := r.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if r.Query != "微積分" || r.List != "default" {
		t.Fatalf("normalized = %+v", r)
	}

	empty := QueryRequest{Query: "   "}
	if err := empty.normalize(); err == nil {
		t.Fatalf("blank query accepted")
	}
}
