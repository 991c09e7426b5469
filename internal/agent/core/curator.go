package core

import (
	"context"
	"fmt"
	"log"
	"strings"
)

// Curator filters raw snippets into a denser evidence document under the
// cleaner role. Curation is an optimization, not a required step: on model
// failure the raw concatenation passes through unchanged.
type Curator struct {
	router *ModelRouter
	logger *log.Logger
}

func NewCurator(router *ModelRouter, logger *log.Logger) *Curator {
	if logger == nil {
		logger = log.New(log.Writer(), "[CURATOR] ", log.LstdFlags)
	}
	return &Curator{router: router, logger: logger}
}

// JoinSnippets flattens snippets into the text block embedded in prompts.
func JoinSnippets(snippets []Snippet) string {
	lines := make([]string, 0, len(snippets))
	for _, s := range snippets {
		body := strings.ReplaceAll(s.Body, "\n", " ")
		lines = append(lines, fmt.Sprintf("標題:%s \n内容:%s", s.Title, body))
	}
	return strings.Join(lines, "\n---\n")
}

const curatorPrompt = `你是資料清理專家。查詢目標：「%s」。
請過濾掉廣告、無關資訊，只保留關於課程評價、老師教學風格、分數甜度的真實討論。
保留原文內容，不要改寫或摘要；PTT 與 Dcard 的討論請優先保留。
原始資料：%s
請直接輸出結果：`

// Curate asks the cleaner role to filter the snippets down to
// topic-relevant source text, preserving rather than summarizing it.
func (c *Curator) Curate(ctx context.Context, topic string, snippets []Snippet) string {
	raw := JoinSnippets(snippets)
	text, err := c.router.Invoke(ctx, RoleCleaner, fmt.Sprintf(curatorPrompt, topic, raw))
	if err != nil {
		c.logger.Printf("curation failed, passing raw snippets through: %v", err)
		return raw
	}
	return text
}
