package core

import (
	"context"
	"fmt"
	"testing"
)

func newTestClassifier(p *scriptProvider) *IntentClassifier {
	router := newTestRouter(p)
	return NewIntentClassifier(router, NewGuardrail(router), quietLogger())
}

func TestClassifyParsesIntent(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return `{"intent": "analyze", "keywords": "羅仁傑", "rationale": "輸入含老師姓名"}`, nil
	})
	c := newTestClassifier(p)

	rec := c.Classify(context.Background(), "微積分 羅仁傑 怎麼樣")
	if rec.Intent != IntentAnalyze {
		t.Fatalf("intent = %s, want analyze", rec.Intent)
	}
	if rec.Keywords != "羅仁傑" {
		t.Fatalf("keywords = %q", rec.Keywords)
	}
}

func TestClassifyModelFailureDefaultsToRecommend(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return "", fmt.Errorf("unavailable")
	})
	c := newTestClassifier(p)

	rec := c.Classify(context.Background(), "有什麼涼課")
	if rec.Intent != IntentRecommend {
		t.Fatalf("intent = %s, want recommend fallback", rec.Intent)
	}
	if rec.Keywords != "有什麼涼課" {
		t.Fatalf("keywords = %q, want the raw input", rec.Keywords)
	}
}

func TestClassifyUnknownIntentDefaultsToRecommend(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return `{"intent": "chat", "keywords": "嗨", "rationale": "打招呼"}`, nil
	})
	c := newTestClassifier(p)

	rec := c.Classify(context.Background(), "嗨")
	if rec.Intent != IntentRecommend || rec.Keywords != "嗨" {
		t.Fatalf("rec = %+v, want recommend fallback on unknown intent", rec)
	}
}

func TestClassifyEmptyKeywordsFallBackToInput(t *testing.T) {
	p := newScriptProvider(func(prompt, model string) (string, error) {
		return `{"intent": "analyze", "keywords": "  ", "rationale": ""}`, nil
	})
	c := newTestClassifier(p)

	rec := c.Classify(context.Background(), "微積分")
	if rec.Keywords != "微積分" {
		t.Fatalf("keywords = %q, want the raw input", rec.Keywords)
	}
}
