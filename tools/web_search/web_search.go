package web_search

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/pndinxx/courserank/tools/web_search/googlecse"
	"github.com/pndinxx/courserank/tools/web_search/models"
	"github.com/pndinxx/courserank/tools/web_search/serper"
)

// WebSearcher issues one query against a single search backend and returns
// normalized results. Zero results is a valid outcome, not an error.
type WebSearcher interface {
	Search(ctx context.Context, q string, k int) ([]models.Result, error)
}

type Provider string

const (
	GoogleCSEProvider Provider = "googlecse"
	SerperProvider    Provider = "serper"
)

var ErrUnsupportedProvider = errors.New("unsupported provider")

type Options struct {
	APIKey   string
	EngineID string // googlecse only
	Timeout  time.Duration
}

func NewWebSearcher(provider Provider, opts Options) (WebSearcher, error) {
	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	httpc := &http.Client{Timeout: timeout}
	switch provider {
	case GoogleCSEProvider:
		return googlecse.Search{ApiKey: opts.APIKey, EngineID: opts.EngineID, Client: httpc}, nil
	case SerperProvider:
		return serper.Search{ApiKey: opts.APIKey, Client: httpc}, nil
	default:
		return nil, ErrUnsupportedProvider
	}
}
