package core

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/agent/telemetry"
	"github.com/pndinxx/courserank/internal/archive"
	"github.com/pndinxx/courserank/internal/tierlist"
	"github.com/pndinxx/courserank/provider"
)

// Orchestrator wires the full pipeline: classify, gather, then either the
// analysis chain (curate, judge, synthesize, place) or the recommendation
// chain (hunt). It owns no model logic of its own.
type Orchestrator struct {
	classifier  *IntentClassifier
	gatherer    *Gatherer
	curator     *Curator
	panel       *Panel
	synthesizer *Synthesizer
	hunter      *Hunter
	tiers       *tierlist.Service
	archive     *archive.Archive
	telemetry   *telemetry.Telemetry
	logger      *log.Logger
}

// NewOrchestrator builds the full pipeline from config. The provider is
// shared by every role; routing decides which of its models each role
// actually calls.
func NewOrchestrator(ctx context.Context, cfg *config.Config, tele *telemetry.Telemetry, logger *log.Logger) (*Orchestrator, error) {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}

	p, err := provider.NewLLMProvider(cfg.LLM)
	if err != nil {
		return nil, fmt.Errorf("llm provider: %w", err)
	}
	router := NewModelRouter(cfg.LLM.Routing, p, tele, nil)
	guardrail := NewGuardrail(router)

	gatherer, err := NewGatherer(cfg.Search, tele, nil)
	if err != nil {
		return nil, fmt.Errorf("search: %w", err)
	}
	tiers, err := tierlist.NewService(ctx, cfg.TierList, tele, nil)
	if err != nil {
		return nil, err
	}
	arc, err := archive.New(cfg.Archive, nil)
	if err != nil {
		return nil, err
	}

	return &Orchestrator{
		classifier:  NewIntentClassifier(router, guardrail, nil),
		gatherer:    gatherer,
		curator:     NewCurator(router, nil),
		panel:       NewPanel(cfg.Agents, router, guardrail, nil),
		synthesizer: NewSynthesizer(router, guardrail, nil),
		hunter:      NewHunter(router, guardrail, nil),
		tiers:       tiers,
		archive:     arc,
		telemetry:   tele,
		logger:      logger,
	}, nil
}

// NewOrchestratorWith assembles an orchestrator from prebuilt components.
// Used by tests to substitute stubs for any stage.
func NewOrchestratorWith(classifier *IntentClassifier, gatherer *Gatherer, curator *Curator, panel *Panel, synthesizer *Synthesizer, hunter *Hunter, tiers *tierlist.Service, arc *archive.Archive, tele *telemetry.Telemetry, logger *log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.New(log.Writer(), "[ORCH] ", log.LstdFlags)
	}
	return &Orchestrator{
		classifier:  classifier,
		gatherer:    gatherer,
		curator:     curator,
		panel:       panel,
		synthesizer: synthesizer,
		hunter:      hunter,
		tiers:       tiers,
		archive:     arc,
		telemetry:   tele,
		logger:      logger,
	}
}

// ProcessResult is the union of the two pipeline outcomes. Exactly one of
// Analysis or Recommend is set, matching Intent.
type ProcessResult struct {
	Intent    Intent           `json:"intent"`
	Analysis  *AnalysisResult  `json:"analysis,omitempty"`
	Recommend *RecommendResult `json:"recommend,omitempty"`
}

// Process classifies the user text and dispatches to the matching chain.
// list selects the tier canvas analysis results get placed on.
func (o *Orchestrator) Process(ctx context.Context, userText, list string) (*ProcessResult, error) {
	rec := o.classifier.Classify(ctx, userText)
	o.logger.Printf("intent=%s keywords=%q (%s)", rec.Intent, rec.Keywords, rec.Rationale)

	if rec.Intent == IntentAnalyze {
		res, err := o.Analyze(ctx, rec, list)
		if err != nil {
			return nil, err
		}
		return &ProcessResult{Intent: IntentAnalyze, Analysis: res}, nil
	}
	res, err := o.Recommend(ctx, rec)
	if err != nil {
		return nil, err
	}
	return &ProcessResult{Intent: IntentRecommend, Recommend: res}, nil
}

// Analyze runs the full scoring chain for one course or teacher and
// places the final verdict on the tier canvas. A full tier row is not an
// error: the verdict still comes back, flagged unplaced.
func (o *Orchestrator) Analyze(ctx context.Context, rec IntentRecord, list string) (*AnalysisResult, error) {
	started := time.Now()

	snippets := o.gatherer.Gather(ctx, rec.Keywords, ModeAnalysis)
	if len(snippets) == 0 {
		o.telemetry.RecordPipeline("analyze", "no_evidence", time.Since(started))
		return nil, fmt.Errorf("%w for %q", ErrNoEvidence, rec.Keywords)
	}

	curated := o.curator.Curate(ctx, rec.Keywords, snippets)
	verdicts := o.panel.Evaluate(ctx, rec.Keywords, curated)
	final, err := o.synthesizer.Synthesize(ctx, rec.Keywords, verdicts)
	if err != nil {
		o.telemetry.RecordPipeline("analyze", "error", time.Since(started))
		return nil, err
	}

	result := &AnalysisResult{
		ID:        uuid.New().String(),
		Query:     rec.Keywords,
		List:      list,
		Intent:    rec,
		Snippets:  snippets,
		Curated:   curated,
		Verdicts:  verdicts,
		Final:     final,
		CreatedAt: started,
	}

	placed, err := o.tiers.Place(ctx, list, rec.Keywords, final.Tier)
	if err != nil {
		o.telemetry.RecordPipeline("analyze", "error", time.Since(started))
		return nil, fmt.Errorf("place verdict: %w", err)
	}
	result.Placed = placed
	if !placed {
		result.PlacementNote = fmt.Sprintf("tier %s row is full", final.Tier)
	}

	o.archive.Store(ctx, archive.VerdictDoc{
		ID:        result.ID,
		List:      list,
		Label:     rec.Keywords,
		Tier:      string(final.Tier),
		Score:     final.Score,
		RankTitle: final.RankTitle,
		Reason:    final.Reason,
		Tags:      final.Tags,
		CreatedAt: started,
	})

	result.ProcessingTime = time.Since(started)
	o.telemetry.RecordPipeline("analyze", "ok", result.ProcessingTime)
	return result, nil
}

// Recommend runs the lightweight recommendation chain: gather then hunt,
// no curation, no judges, no canvas mutation.
func (o *Orchestrator) Recommend(ctx context.Context, rec IntentRecord) (*RecommendResult, error) {
	started := time.Now()

	snippets := o.gatherer.Gather(ctx, rec.Keywords, ModeRecommend)
	if len(snippets) == 0 {
		o.telemetry.RecordPipeline("recommend", "no_evidence", time.Since(started))
		return nil, fmt.Errorf("%w for %q", ErrNoEvidence, rec.Keywords)
	}

	items, err := o.hunter.Hunt(ctx, rec.Keywords, snippets)
	if err != nil {
		o.telemetry.RecordPipeline("recommend", "error", time.Since(started))
		return nil, err
	}

	res := &RecommendResult{
		ID:             uuid.New().String(),
		Query:          rec.Keywords,
		Items:          items,
		Snippets:       snippets,
		ProcessingTime: time.Since(started),
		CreatedAt:      started,
	}
	o.telemetry.RecordPipeline("recommend", "ok", res.ProcessingTime)
	return res, nil
}

// TierList exposes the tier canvas service for the HTTP layer.
func (o *Orchestrator) TierList() *tierlist.Service { return o.tiers }

// Archive exposes the verdict archive for the HTTP layer. May be nil.
func (o *Orchestrator) Archive() *archive.Archive { return o.archive }
