package core

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/tierlist"
	"github.com/pndinxx/courserank/utils"
)

const defaultJudgeTimeout = 45 * time.Second

// maxVerdictCommentRunes bounds the comment kept when a judge's output is
// used verbatim as the fallback comment.
const maxVerdictCommentRunes = 120

// Panel fans one curated evidence document out to every configured judge
// persona concurrently. Each judge gets its own timeout so one stalled
// model does not hold the whole panel.
type Panel struct {
	router    *ModelRouter
	guardrail *Guardrail
	judges    []config.JudgePersona
	timeout   time.Duration
	logger    *log.Logger
}

func NewPanel(cfg config.AgentsConfig, router *ModelRouter, guardrail *Guardrail, logger *log.Logger) *Panel {
	if logger == nil {
		logger = log.New(log.Writer(), "[PANEL] ", log.LstdFlags)
	}
	timeout := cfg.JudgeTimeout
	if timeout <= 0 {
		timeout = defaultJudgeTimeout
	}
	return &Panel{
		router:    router,
		guardrail: guardrail,
		judges:    cfg.Judges,
		timeout:   timeout,
		logger:    logger,
	}
}

const judgePrompt = `%s
請根據以下資料，對「%s」給出評價。
資料：%s
請嚴格按照此 JSON 格式輸出，不要輸出其他文字：
{"tier": "S/A/B/C/D", "score": 0-100 的整數, "comment": "一句話短評"}`

// Evaluate runs every judge persona against the curated text and returns a
// verdict per judge id. A judge never fails the panel: unusable output
// collapses to the neutral default verdict.
func (p *Panel) Evaluate(ctx context.Context, topic, curated string) map[string]JudgeVerdict {
	verdicts := make(map[string]JudgeVerdict, len(p.judges))
	var mu sync.Mutex
	var wg sync.WaitGroup
	for _, persona := range p.judges {
		wg.Add(1)
		go func(persona config.JudgePersona) {
			defer wg.Done()
			jctx, cancel := context.WithTimeout(ctx, p.timeout)
			defer cancel()
			v := p.evaluateOne(jctx, persona, topic, curated)
			mu.Lock()
			verdicts[persona.ID] = v
			mu.Unlock()
		}(persona)
	}
	wg.Wait()
	return verdicts
}

// evaluateOne runs a single persona. On router failure the raw text is
// empty and the default verdict carries an empty comment; on parse failure
// the raw output survives, truncated, as the comment.
func (p *Panel) evaluateOne(ctx context.Context, persona config.JudgePersona, topic, curated string) JudgeVerdict {
	prompt := fmt.Sprintf(judgePrompt, persona.Description, topic, curated)
	raw, err := p.router.Invoke(ctx, persona.Role, prompt)
	if err != nil {
		p.logger.Printf("judge %s failed: %v", persona.ID, err)
		return DefaultVerdict("")
	}

	var v JudgeVerdict
	if err := p.guardrail.Parse(raw, &v); err != nil {
		p.logger.Printf("judge %s output unparseable, using default verdict", persona.ID)
		return DefaultVerdict(raw)
	}
	if !tierlist.Valid(string(v.Tier)) {
		p.logger.Printf("judge %s emitted unknown tier %q, using default verdict", persona.ID, v.Tier)
		return DefaultVerdict(raw)
	}
	return v
}

// DefaultVerdict is the neutral C/70 verdict substituted for unusable judge
// output. The raw output is kept, truncated, so the synthesizer still sees
// what the judge actually said.
func DefaultVerdict(raw string) JudgeVerdict {
	return JudgeVerdict{
		Tier:    tierlist.TierC,
		Score:   70,
		Comment: utils.Truncate(raw, maxVerdictCommentRunes),
	}
}
