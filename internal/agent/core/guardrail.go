package core

import (
	"context"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Guardrail is the parse-then-repair step applied to model output that is
// expected to be structured data. Exactly one repair call, never recursive:
// the bounded retry is a deliberate cost cap.
type Guardrail struct {
	router *ModelRouter
}

func NewGuardrail(router *ModelRouter) *Guardrail {
	return &Guardrail{router: router}
}

// StripFences removes markdown code-fence markers around model output.
func StripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// Parse attempts a single strict parse with no repair call. Used where
// latency matters more than recovery, e.g. intent classification.
func (g *Guardrail) Parse(raw string, out any) error {
	if strings.TrimSpace(raw) == "" {
		return &ParseError{Raw: raw, Err: fmt.Errorf("empty output")}
	}
	if err := json.Unmarshal([]byte(StripFences(raw)), out); err != nil {
		return &ParseError{Raw: raw, Err: err}
	}
	return nil
}

// ParseOrRepair attempts a strict parse; on failure it issues one fixer
// call asking the model to emit corrected JSON, then parses once more.
func (g *Guardrail) ParseOrRepair(ctx context.Context, raw string, out any) error {
	firstErr := g.Parse(raw, out)
	if firstErr == nil {
		return nil
	}
	if strings.TrimSpace(raw) == "" {
		return firstErr
	}

	prompt := fmt.Sprintf("你是JSON修復工具。請修正以下錯誤格式並輸出純JSON:\n%s", raw)
	fixed, err := g.router.Invoke(ctx, RoleFixer, prompt)
	if err != nil {
		g.router.telemetry.RecordRepair("error")
		return firstErr
	}
	// The failed first parse may have partially populated out; clear it so
	// fields the repaired JSON omits do not keep stale values.
	zeroValue(out)
	if err := json.Unmarshal([]byte(StripFences(fixed)), out); err != nil {
		g.router.telemetry.RecordRepair("failed")
		return &ParseError{Raw: raw, Err: err}
	}
	g.router.telemetry.RecordRepair("ok")
	return nil
}

func zeroValue(out any) {
	v := reflect.ValueOf(out)
	if v.Kind() != reflect.Ptr || v.IsNil() {
		return
	}
	v.Elem().Set(reflect.Zero(v.Elem().Type()))
}
