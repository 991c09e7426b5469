package core

import (
	"context"
	"errors"
	"testing"

	"github.com/pndinxx/courserank/internal/tierlist"
	"github.com/pndinxx/courserank/tools/web_search"
	"github.com/pndinxx/courserank/tools/web_search/models"
)

// pipelineStages maps a distinctive fragment of each stage's prompt to a
// scripted model response, so one provider plays every role.
func analyzeStages() map[string]string {
	return map[string]string{
		"意圖分類器": `{"intent": "analyze", "keywords": "微積分 羅仁傑", "rationale": "含課名與老師"}`,
		"資料清理專家": "清理後的討論資料",
		"請根據以下資料": `{"tier": "A", "score": 85, "comment": "整體不錯"}`,
		"最終裁決者":  `{"rank": "甜課", "tier": "A", "score": 85, "reason": "評審一致好評", "tags": ["甜"], "details": "..."}`,
	}
}

func newTestOrchestrator(t *testing.T, p *scriptProvider, searcher web_search.WebSearcher) *Orchestrator {
	t.Helper()
	router := newTestRouter(p)
	guardrail := NewGuardrail(router)

	searchers := map[string]web_search.WebSearcher{}
	if searcher != nil {
		searchers["stub"] = searcher
	}
	gatherer := NewGathererWith(testSearchConfig(), nil, quietLogger(), searchers)

	return NewOrchestratorWith(
		NewIntentClassifier(router, guardrail, quietLogger()),
		gatherer,
		NewCurator(router, quietLogger()),
		NewPanel(testPanelConfig(), router, guardrail, quietLogger()),
		NewSynthesizer(router, guardrail, quietLogger()),
		NewHunter(router, guardrail, quietLogger()),
		newTestTierService(t),
		nil,
		nil,
		quietLogger(),
	)
}

func evidence() *stubSearcher {
	return &stubSearcher{results: []models.Result{
		{Title: "羅仁傑微積分心得", URL: "https://ptt.cc/a", Snippet: "上課認真，考試不難"},
		{Title: "微積分選課討論", URL: "https://dcard.tw/b", Snippet: "作業量適中"},
	}}
}

func TestProcessAnalyzeEndToEnd(t *testing.T) {
	p := newScriptProvider(respondByStage(analyzeStages()))
	o := newTestOrchestrator(t, p, evidence())

	res, err := o.Process(context.Background(), "微積分 羅仁傑 怎麼樣", "zh")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Intent != IntentAnalyze || res.Analysis == nil {
		t.Fatalf("result = %+v, want analysis branch", res)
	}

	a := res.Analysis
	if a.Final.Tier != tierlist.TierA || a.Final.Score != 85 {
		t.Fatalf("final verdict = %+v", a.Final)
	}
	if len(a.Verdicts) != 2 {
		t.Fatalf("got %d judge verdicts, want 2", len(a.Verdicts))
	}
	if !a.Placed {
		t.Fatalf("verdict was not placed on the canvas")
	}
	if a.ID == "" {
		t.Fatalf("analysis result has no id")
	}

	counts, err := o.TierList().Counts(context.Background(), "zh")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	if counts[tierlist.TierA] != 1 {
		t.Fatalf("counts[A] = %d, want 1", counts[tierlist.TierA])
	}
}

func TestAnalyzeHaltsWithoutEvidence(t *testing.T) {
	p := newScriptProvider(respondByStage(analyzeStages()))
	o := newTestOrchestrator(t, p, &stubSearcher{})

	rec := IntentRecord{Intent: IntentAnalyze, Keywords: "不存在的課"}
	_, err := o.Analyze(context.Background(), rec, "zh")
	if !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("err = %v, want ErrNoEvidence", err)
	}
	if p.totalCalls() != 0 {
		t.Fatalf("models were called %d times despite empty evidence", p.totalCalls())
	}

	counts, cerr := o.TierList().Counts(context.Background(), "zh")
	if cerr != nil {
		t.Fatalf("Counts: %v", cerr)
	}
	for tier, n := range counts {
		if n != 0 {
			t.Fatalf("counts[%s] = %d, canvas touched on a halted run", tier, n)
		}
	}
}

func TestAnalyzeFullRowReturnsUnplacedVerdict(t *testing.T) {
	p := newScriptProvider(respondByStage(analyzeStages()))
	o := newTestOrchestrator(t, p, evidence())
	ctx := context.Background()

	blank := tierlist.BlankCanvas().Bounds()
	layout := tierlist.NewLayout(blank.Dx(), blank.Dy())
	capacity := 0
	for {
		x, _ := layout.Position(tierlist.TierA, capacity)
		if !layout.Fits(x) {
			break
		}
		capacity++
	}
	for i := 0; i < capacity; i++ {
		if ok, err := o.TierList().Place(ctx, "zh", "填充", tierlist.TierA); err != nil || !ok {
			t.Fatalf("fill %d: ok=%v err=%v", i, ok, err)
		}
	}

	rec := IntentRecord{Intent: IntentAnalyze, Keywords: "微積分 羅仁傑"}
	res, err := o.Analyze(ctx, rec, "zh")
	if err != nil {
		t.Fatalf("Analyze on a full row must not fail: %v", err)
	}
	if res.Placed {
		t.Fatalf("verdict reported as placed on a full row")
	}
	if res.PlacementNote == "" {
		t.Fatalf("unplaced verdict carries no note")
	}
}

func TestProcessRecommendEndToEnd(t *testing.T) {
	stages := map[string]string{
		"意圖分類器": `{"intent": "recommend", "keywords": "程式類涼課", "rationale": "模糊需求"}`,
		"選課情報員": `[{"teacher": "林老師", "subject": "程式設計", "reason": "甜又涼", "stars": 5}]`,
	}
	p := newScriptProvider(respondByStage(stages))
	o := newTestOrchestrator(t, p, evidence())

	res, err := o.Process(context.Background(), "有什麼程式類的涼課", "zh")
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Intent != IntentRecommend || res.Recommend == nil {
		t.Fatalf("result = %+v, want recommend branch", res)
	}
	if len(res.Recommend.Items) != 1 || res.Recommend.Items[0].Teacher != "林老師" {
		t.Fatalf("items = %+v", res.Recommend.Items)
	}

	counts, err := o.TierList().Counts(context.Background(), "zh")
	if err != nil {
		t.Fatalf("Counts: %v", err)
	}
	for tier, n := range counts {
		if n != 0 {
			t.Fatalf("counts[%s] = %d, recommend run touched the canvas", tier, n)
		}
	}
}

func TestRecommendHaltsWithoutEvidence(t *testing.T) {
	p := newScriptProvider(respondByStage(nil))
	o := newTestOrchestrator(t, p, &stubSearcher{})

	rec := IntentRecord{Intent: IntentRecommend, Keywords: "涼課"}
	_, err := o.Recommend(context.Background(), rec)
	if !errors.Is(err, ErrNoEvidence) {
		t.Fatalf("err = %v, want ErrNoEvidence", err)
	}
	if p.totalCalls() != 0 {
		t.Fatalf("models were called despite empty evidence")
	}
}
