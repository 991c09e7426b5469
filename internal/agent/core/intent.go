package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// IntentClassifier turns free-text user input into a structured intent.
// It never fails outward: a bad classification degrades to the recommend
// branch with the raw input as keywords, the cheaper of the two pipelines.
type IntentClassifier struct {
	router    *ModelRouter
	guardrail *Guardrail
	logger    *log.Logger
}

func NewIntentClassifier(router *ModelRouter, guardrail *Guardrail, logger *log.Logger) *IntentClassifier {
	if logger == nil {
		logger = log.New(log.Writer(), "[INTENT] ", log.LstdFlags)
	}
	return &IntentClassifier{router: router, guardrail: guardrail, logger: logger}
}

const intentPrompt = `你是選課系統的意圖分類器。使用者輸入：「%s」。

判斷使用者想要：
- "analyze"：針對特定課程或老師查評價（輸入包含明確的課名或老師姓名）
- "recommend"：想找某類別的好課或好老師（輸入是類別或模糊需求）

keywords 填入最適合拿去搜尋的關鍵字：分析模式時優先抽出老師姓名，推薦模式時填課程類別。

請務必輸出純 JSON：
{"intent": "analyze 或 recommend", "keywords": "搜尋關鍵字", "rationale": "一句話理由"}`

// Classify builds the classification prompt, invokes the manager role and
// parses one-shot (no repair call, for speed). Parse failure, an unknown
// intent or an empty keyword field all fall back to safe defaults.
func (c *IntentClassifier) Classify(ctx context.Context, userText string) IntentRecord {
	fallback := IntentRecord{Intent: IntentRecommend, Keywords: userText, Rationale: "fallback"}

	raw, err := c.router.Invoke(ctx, RoleManager, fmt.Sprintf(intentPrompt, userText))
	if err != nil {
		c.logger.Printf("classification failed, defaulting to recommend: %v", err)
		return fallback
	}

	var rec IntentRecord
	if err := c.guardrail.Parse(raw, &rec); err != nil {
		c.logger.Printf("classification output unparseable, defaulting to recommend: %v", err)
		return fallback
	}
	if rec.Intent != IntentAnalyze && rec.Intent != IntentRecommend {
		return fallback
	}
	if strings.TrimSpace(rec.Keywords) == "" {
		rec.Keywords = userText
	}
	return rec
}
