package core

import (
	"context"
	"fmt"
	"io"
	"log"
	"strings"
	"sync"
	"testing"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/tierlist"
	"github.com/pndinxx/courserank/tools/web_search"
	"github.com/pndinxx/courserank/tools/web_search/models"
)

// scriptProvider routes Generate through a test-supplied function and
// counts calls per model.
type scriptProvider struct {
	mu       sync.Mutex
	calls    map[string]int
	generate func(prompt, model string) (string, error)
}

func newScriptProvider(generate func(prompt, model string) (string, error)) *scriptProvider {
	return &scriptProvider{calls: make(map[string]int), generate: generate}
}

func (p *scriptProvider) Generate(ctx context.Context, prompt, model string) (string, error) {
	p.mu.Lock()
	p.calls[model]++
	p.mu.Unlock()
	return p.generate(prompt, model)
}

func (p *scriptProvider) AvailableModels() []string { return []string{"primary", "backup"} }

func (p *scriptProvider) callCount(model string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[model]
}

func (p *scriptProvider) totalCalls() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, c := range p.calls {
		n += c
	}
	return n
}

// stubSearcher returns fixed results or a fixed error.
type stubSearcher struct {
	results []models.Result
	err     error
	calls   int
}

func (s *stubSearcher) Search(ctx context.Context, q string, k int) ([]models.Result, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return s.results, nil
}

var _ web_search.WebSearcher = (*stubSearcher)(nil)

func quietLogger() *log.Logger {
	return log.New(io.Discard, "", 0)
}

func testRouting() config.LLMRoutingConfig {
	return config.LLMRoutingConfig{
		Roles: map[string][]string{
			RoleManager:     {"primary"},
			RoleCleaner:     {"primary"},
			RoleSynthesizer: {"primary"},
			RoleHunter:      {"primary"},
			RoleFixer:       {"backup"},
			"judge":         {"primary"},
		},
		Fallback: "backup",
	}
}

func newTestRouter(p *scriptProvider) *ModelRouter {
	return NewModelRouter(testRouting(), p, nil, quietLogger())
}

func newTestTierService(t *testing.T) *tierlist.Service {
	t.Helper()
	store, err := tierlist.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return tierlist.NewServiceWithStore(store, nil, nil, quietLogger())
}

func testSearchConfig() config.SearchConfig {
	return config.SearchConfig{
		ResultCount:     8,
		QueryPrefix:     "北科大",
		AnalysisSuffix:  "評價 心得",
		RecommendSuffix: "推薦 甜涼 好過",
	}
}

// respondByStage dispatches on distinctive prompt fragments so one
// provider can play every pipeline role in an end-to-end test.
func respondByStage(stages map[string]string) func(prompt, model string) (string, error) {
	return func(prompt, model string) (string, error) {
		for marker, response := range stages {
			if marker != "" && strings.Contains(prompt, marker) {
				return response, nil
			}
		}
		return "", fmt.Errorf("no scripted response for prompt %q", prompt)
	}
}
