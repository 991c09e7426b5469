package core

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-shiori/go-readability"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/agent/telemetry"
	"github.com/pndinxx/courserank/tools/web_search"
	"github.com/pndinxx/courserank/utils"
)

// GatherMode selects the query template: broad review-hunting for analysis,
// narrower recommendation phrasing for recommend.
type GatherMode string

const (
	ModeAnalysis  GatherMode = "analysis"
	ModeRecommend GatherMode = "recommend"
)

type namedSearcher struct {
	name     string
	searcher web_search.WebSearcher
}

// Gatherer queries the configured search providers and normalizes their
// heterogeneous results into snippets, de-duplicated by link.
type Gatherer struct {
	cfg       config.SearchConfig
	searchers []namedSearcher
	enrich    *http.Client
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewGatherer wires one searcher per provider that has credentials
// configured. Zero configured providers is valid: Gather then always
// returns an empty list.
func NewGatherer(cfg config.SearchConfig, tele *telemetry.Telemetry, logger *log.Logger) (*Gatherer, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[SEARCH] ", log.LstdFlags)
	}
	g := &Gatherer{
		cfg:       cfg,
		telemetry: tele,
		logger:    logger,
	}
	if cfg.GoogleCSE.APIKey != "" && cfg.GoogleCSE.EngineID != "" {
		s, err := web_search.NewWebSearcher(web_search.GoogleCSEProvider, web_search.Options{
			APIKey:   cfg.GoogleCSE.APIKey,
			EngineID: cfg.GoogleCSE.EngineID,
			Timeout:  cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		g.searchers = append(g.searchers, namedSearcher{name: "googlecse", searcher: s})
	}
	if cfg.Serper.APIKey != "" {
		s, err := web_search.NewWebSearcher(web_search.SerperProvider, web_search.Options{
			APIKey:  cfg.Serper.APIKey,
			Timeout: cfg.Timeout,
		})
		if err != nil {
			return nil, err
		}
		g.searchers = append(g.searchers, namedSearcher{name: "serper", searcher: s})
	}
	if cfg.Enrich.Enabled {
		g.enrich = &http.Client{Timeout: cfg.Enrich.Timeout}
	}
	return g, nil
}

// NewGathererWith builds a gatherer around explicit searchers. Used by
// tests and by callers injecting their own providers.
func NewGathererWith(cfg config.SearchConfig, tele *telemetry.Telemetry, logger *log.Logger, searchers map[string]web_search.WebSearcher) *Gatherer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SEARCH] ", log.LstdFlags)
	}
	g := &Gatherer{cfg: cfg, telemetry: tele, logger: logger}
	for name, s := range searchers {
		g.searchers = append(g.searchers, namedSearcher{name: name, searcher: s})
	}
	if cfg.Enrich.Enabled {
		g.enrich = &http.Client{Timeout: cfg.Enrich.Timeout}
	}
	return g
}

func (g *Gatherer) query(keywords string, mode GatherMode) string {
	suffix := g.cfg.AnalysisSuffix
	if mode == ModeRecommend {
		suffix = g.cfg.RecommendSuffix
	}
	parts := []string{}
	if g.cfg.QueryPrefix != "" {
		parts = append(parts, g.cfg.QueryPrefix)
	}
	parts = append(parts, keywords)
	if suffix != "" {
		parts = append(parts, suffix)
	}
	return strings.Join(parts, " ")
}

// Gather queries every configured provider and returns de-duplicated
// snippets in provider-call order. Failed providers contribute nothing;
// an empty result is a valid terminal outcome, never an error.
func (g *Gatherer) Gather(ctx context.Context, keywords string, mode GatherMode) []Snippet {
	q := g.query(keywords, mode)
	k := g.cfg.ResultCount
	if k <= 0 {
		k = 8
	}

	var snippets []Snippet
	seen := make(map[string]bool)
	for _, ns := range g.searchers {
		results, err := ns.searcher.Search(ctx, q, k)
		if err != nil {
			g.telemetry.RecordSearch(ns.name, "error", 0)
			g.logger.Printf("search via %s failed: %v", ns.name, err)
			continue
		}
		g.telemetry.RecordSearch(ns.name, "ok", len(results))
		for _, r := range results {
			if r.URL != "" && seen[r.URL] {
				continue
			}
			if r.URL != "" {
				seen[r.URL] = true
			}
			snippets = append(snippets, Snippet{
				SourceLabel: ns.name,
				Title:       r.Title,
				Body:        r.Snippet,
				Link:        r.URL,
			})
		}
	}

	if g.enrich != nil {
		g.enrichThin(ctx, snippets)
	}
	return snippets
}

// enrichThin replaces bodies shorter than the configured threshold with a
// readability-extracted excerpt of the linked page. Any fetch or extraction
// failure leaves the original snippet untouched.
func (g *Gatherer) enrichThin(ctx context.Context, snippets []Snippet) {
	for i := range snippets {
		s := &snippets[i]
		if s.Link == "" || len([]rune(s.Body)) >= g.cfg.Enrich.MinSnippetRunes {
			continue
		}
		excerpt, err := g.fetchExcerpt(ctx, s.Link)
		if err != nil {
			g.logger.Printf("enrich %s failed: %v", s.Link, err)
			continue
		}
		if excerpt != "" {
			s.Body = excerpt
		}
	}
}

func (g *Gatherer) fetchExcerpt(ctx context.Context, link string) (string, error) {
	u, err := url.Parse(link)
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, "GET", link, nil)
	if err != nil {
		return "", err
	}
	resp, err := g.enrich.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d", resp.StatusCode)
	}
	article, err := readability.FromReader(resp.Body, u)
	if err != nil {
		return "", err
	}
	return utils.Truncate(article.TextContent, g.cfg.Enrich.MaxExcerptRunes), nil
}
