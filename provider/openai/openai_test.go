package openai_provider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pndinxx/courserank/config"
)

func testConfig(baseURL string) config.LLMProvider {
	return config.LLMProvider{
		Type:    "openai",
		APIKey:  "test-key",
		BaseURL: baseURL,
		Models: map[string]config.LLMModel{
			"mini": {Name: "mini", APIName: "gpt-4o-mini"},
		},
	}
}

func TestGenerateReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("auth header = %q", got)
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"回覆"}}]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	out, err := c.Generate(context.Background(), "你好", "mini")
	if err != nil {
		t.Fatalf("Generate: %v", err)
	}
	if out != "回覆" {
		t.Fatalf("got %q", out)
	}
}

func TestGenerateNoChoicesIsAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices":[]}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	if _, err := c.Generate(context.Background(), "你好", "mini"); err == nil {
		t.Fatalf("empty choices accepted")
	}
}
