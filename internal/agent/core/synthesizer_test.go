package core

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/pndinxx/courserank/internal/tierlist"
)

func newTestSynthesizer(p *scriptProvider) *Synthesizer {
	router := newTestRouter(p)
	return NewSynthesizer(router, NewGuardrail(router), quietLogger())
}

func sampleVerdicts() map[string]JudgeVerdict {
	return map[string]JudgeVerdict{
		"strict": {Tier: tierlist.TierB, Score: 75, Comment: "作業偏重"},
		"sweet":  {Tier: tierlist.TierS, Score: 95, Comment: "超甜"},
	}
}

func TestSynthesizeClampsScoreIntoTierBand(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return `{"rank": "神課", "tier": "A", "score": 95, "reason": "綜合評價佳", "tags": ["甜"], "details": "..."}`, nil
	})
	s := newTestSynthesizer(p)

	v, err := s.Synthesize(context.Background(), "微積分", sampleVerdicts())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if v.Tier != tierlist.TierA {
		t.Fatalf("tier = %s, want A", v.Tier)
	}
	if v.Score != 89 {
		t.Fatalf("score = %d, want 89 (clamped into the A band)", v.Score)
	}
}

func TestSynthesizeNormalizesUnknownTier(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return `{"rank": "普", "tier": "不明", "score": 90, "reason": "", "tags": [], "details": ""}`, nil
	})
	s := newTestSynthesizer(p)

	v, err := s.Synthesize(context.Background(), "課程", sampleVerdicts())
	if err != nil {
		t.Fatalf("Synthesize: %v", err)
	}
	if v.Tier != tierlist.TierC {
		t.Fatalf("tier = %s, want C", v.Tier)
	}
	if v.Score != 69 {
		t.Fatalf("score = %d, want 69 (clamped into the C band)", v.Score)
	}
}

func TestSynthesizeSurfacesModelFailure(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return "", fmt.Errorf("unavailable")
	})
	s := newTestSynthesizer(p)

	_, err := s.Synthesize(context.Background(), "課程", sampleVerdicts())
	if !errors.Is(err, ErrAllModelsFailed) {
		t.Fatalf("err = %v, want ErrAllModelsFailed", err)
	}
}

func TestSynthesizeSurfacesParseFailure(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return "完全不是 JSON", nil
	})
	s := newTestSynthesizer(p)

	_, err := s.Synthesize(context.Background(), "課程", sampleVerdicts())
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("err = %v, want *ParseError", err)
	}
}

func TestFormatVerdictsIsDeterministic(t *testing.T) {
	a := formatVerdicts(sampleVerdicts())
	for i := 0; i < 10; i++ {
		if b := formatVerdicts(sampleVerdicts()); a != b {
			t.Fatalf("verdict formatting is order dependent:\n%s\nvs\n%s", a, b)
		}
	}
}
