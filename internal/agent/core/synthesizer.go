package core

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"
)

// Synthesizer merges the judge panel's verdicts into one final ranking.
// Unlike the judges it is allowed to fail: a verdict that cannot be parsed
// even after repair surfaces as an error instead of a silent default,
// because the final verdict drives canvas placement.
type Synthesizer struct {
	router    *ModelRouter
	guardrail *Guardrail
	logger    *log.Logger
}

func NewSynthesizer(router *ModelRouter, guardrail *Guardrail, logger *log.Logger) *Synthesizer {
	if logger == nil {
		logger = log.New(log.Writer(), "[SYNTH] ", log.LstdFlags)
	}
	return &Synthesizer{router: router, guardrail: guardrail, logger: logger}
}

const synthesizerPrompt = `你是最終裁決者。以下是多位評審對「%s」的評價：
%s
請綜合所有意見，給出最終裁決。tier 與 score 必須一致（S>=90, A:80-89, B:70-79, C:60-69, D<60）。
請嚴格按照此 JSON 格式輸出，不要輸出其他文字：
{"rank": "稱號", "tier": "S/A/B/C/D", "score": 整數, "reason": "綜合理由", "tags": ["標籤"], "details": "詳細說明"}`

// Synthesize consolidates the panel verdicts into one normalized final
// verdict. The emitted tier is authoritative; the score is clamped into
// that tier's band when the model lets them drift apart.
func (s *Synthesizer) Synthesize(ctx context.Context, topic string, verdicts map[string]JudgeVerdict) (SynthesizedVerdict, error) {
	prompt := fmt.Sprintf(synthesizerPrompt, topic, formatVerdicts(verdicts))
	raw, err := s.router.Invoke(ctx, RoleSynthesizer, prompt)
	if err != nil {
		return SynthesizedVerdict{}, fmt.Errorf("synthesize %q: %w", topic, err)
	}

	var v SynthesizedVerdict
	if err := s.guardrail.ParseOrRepair(ctx, raw, &v); err != nil {
		return SynthesizedVerdict{}, fmt.Errorf("synthesize %q: %w", topic, err)
	}
	v.Normalize()
	return v, nil
}

// formatVerdicts renders the panel verdicts deterministically, sorted by
// judge id so identical panels always produce the same prompt.
func formatVerdicts(verdicts map[string]JudgeVerdict) string {
	ids := make([]string, 0, len(verdicts))
	for id := range verdicts {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	lines := make([]string, 0, len(ids))
	for _, id := range ids {
		v := verdicts[id]
		lines = append(lines, fmt.Sprintf("%s: tier=%s score=%d 評語=%s", id, v.Tier, v.Score, v.Comment))
	}
	return strings.Join(lines, "\n")
}
