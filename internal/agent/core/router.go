package core

import (
	"context"
	"fmt"
	"log"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/agent/telemetry"
	"github.com/pndinxx/courserank/provider"
)

// RoutePolicy is an ordered list of model names to attempt for one role.
// The retry strategy is data, not control flow.
type RoutePolicy struct {
	Models []string
}

// ModelRouter resolves abstract roles to concrete models and applies the
// fallback chain. It never panics outward: callers get generated text or an
// error wrapping ErrAllModelsFailed, and decide locally how to degrade.
type ModelRouter struct {
	provider  provider.LLMProvider
	policies  map[string]RoutePolicy
	fallback  string
	telemetry *telemetry.Telemetry
	logger    *log.Logger
}

// NewModelRouter builds the role-to-model binding from routing config. The
// binding is immutable for the process lifetime. Every role's attempt list
// ends with the shared fallback model.
func NewModelRouter(cfg config.LLMRoutingConfig, p provider.LLMProvider, tele *telemetry.Telemetry, logger *log.Logger) *ModelRouter {
	if logger == nil {
		logger = log.New(log.Writer(), "[ROUTER] ", log.LstdFlags)
	}
	policies := make(map[string]RoutePolicy, len(cfg.Roles))
	for role, models := range cfg.Roles {
		policies[role] = RoutePolicy{Models: withFallback(models, cfg.Fallback)}
	}
	return &ModelRouter{
		provider:  p,
		policies:  policies,
		fallback:  cfg.Fallback,
		telemetry: tele,
		logger:    logger,
	}
}

func withFallback(models []string, fallback string) []string {
	out := make([]string, 0, len(models)+1)
	out = append(out, models...)
	if len(out) == 0 || out[len(out)-1] != fallback {
		out = append(out, fallback)
	}
	return out
}

// Policy returns the attempt list for a role. Roles without an explicit
// binding get the fallback model alone.
func (r *ModelRouter) Policy(role string) RoutePolicy {
	if p, ok := r.policies[role]; ok {
		return p
	}
	return RoutePolicy{Models: []string{r.fallback}}
}

// Invoke runs the prompt against the role's models in order, returning the
// first successful generation. Quota, transport and unknown-model errors
// are all treated as the same failure category: try the next model.
func (r *ModelRouter) Invoke(ctx context.Context, role, prompt string) (string, error) {
	policy := r.Policy(role)
	var lastErr error
	for i, model := range policy.Models {
		if i > 0 {
			r.telemetry.RecordFallback(role)
		}
		text, err := r.provider.Generate(ctx, prompt, model)
		if err != nil {
			r.telemetry.RecordModelCall(role, model, "error")
			r.logger.Printf("role %s model %s failed: %v", role, model, err)
			lastErr = err
			if ctx.Err() != nil {
				break
			}
			continue
		}
		r.telemetry.RecordModelCall(role, model, "ok")
		return text, nil
	}
	return "", fmt.Errorf("%w for role %s: %v", ErrAllModelsFailed, role, lastErr)
}
