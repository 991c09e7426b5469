package core

import (
	"context"
	"fmt"
	"log"
)

// Hunter turns raw search evidence into a list of concrete course
// recommendations. It skips curation and the judge panel: recommendation
// quality depends on breadth, not on adversarial scoring.
type Hunter struct {
	router    *ModelRouter
	guardrail *Guardrail
	logger    *log.Logger
}

func NewHunter(router *ModelRouter, guardrail *Guardrail, logger *log.Logger) *Hunter {
	if logger == nil {
		logger = log.New(log.Writer(), "[HUNTER] ", log.LstdFlags)
	}
	return &Hunter{router: router, guardrail: guardrail, logger: logger}
}

const hunterPrompt = `你是選課情報員。使用者的需求：「%s」。
以下是搜尋到的討論資料：
%s
請從資料中找出最多 5 門值得推薦的課程。只推薦資料中真實出現的課程與老師，不要編造。
請嚴格按照此 JSON 格式輸出一個陣列，不要輸出其他文字：
[{"teacher": "老師姓名", "subject": "課程名稱", "reason": "推薦理由", "stars": 1-5 的整數}]`

// Hunt extracts recommendations from the gathered snippets. An empty list
// is a valid outcome, distinct from an error: the evidence may genuinely
// contain no recommendable course.
func (h *Hunter) Hunt(ctx context.Context, query string, snippets []Snippet) ([]Recommendation, error) {
	prompt := fmt.Sprintf(hunterPrompt, query, JoinSnippets(snippets))
	raw, err := h.router.Invoke(ctx, RoleHunter, prompt)
	if err != nil {
		return nil, fmt.Errorf("hunt %q: %w", query, err)
	}

	var items []Recommendation
	if err := h.guardrail.ParseOrRepair(ctx, raw, &items); err != nil {
		return nil, fmt.Errorf("hunt %q: %w", query, err)
	}
	return items, nil
}
