package config

import (
	"strings"
	"testing"
	"time"
)

func TestRoutingValidateRequiresFallback(t *testing.T) {
	r := LLMRoutingConfig{Roles: map[string][]string{"manager": {"m"}}}
	if err := r.Validate(); err == nil {
		t.Fatalf("missing fallback accepted")
	}
	r.Fallback = "m"
	if err := r.Validate(); err != nil {
		t.Fatalf("valid routing rejected: %v", err)
	}
}

func TestRoutingValidateRejectsEmptyRole(t *testing.T) {
	r := LLMRoutingConfig{
		Roles:    map[string][]string{"manager": {}},
		Fallback: "m",
	}
	if err := r.Validate(); err == nil {
		t.Fatalf("empty role model list accepted")
	}
}

func TestAgentsValidateCapsJudges(t *testing.T) {
	a := AgentsConfig{JudgeTimeout: time.Second}
	for i := 0; i < 5; i++ {
		a.Judges = append(a.Judges, JudgePersona{ID: string(rune('a' + i)), Role: "judge"})
	}
	if err := a.Validate(); err == nil {
		t.Fatalf("5 judges accepted, want at most 4")
	}
	a.Judges = a.Judges[:4]
	if err := a.Validate(); err != nil {
		t.Fatalf("4 judges rejected: %v", err)
	}
}

func TestAgentsValidateRejectsDuplicateIDs(t *testing.T) {
	a := AgentsConfig{Judges: []JudgePersona{
		{ID: "x", Role: "judge"},
		{ID: "x", Role: "judge"},
	}}
	if err := a.Validate(); err == nil || !strings.Contains(err.Error(), "duplicate") {
		t.Fatalf("duplicate judge ids accepted: %v", err)
	}
}

func TestTierListValidateBackends(t *testing.T) {
	if err := (TierListConfig{Backend: "file", DataDir: "./data"}).Validate(); err != nil {
		t.Fatalf("file backend rejected: %v", err)
	}
	if err := (TierListConfig{Backend: "file"}).Validate(); err == nil {
		t.Fatalf("file backend without data_dir accepted")
	}
	if err := (TierListConfig{Backend: "redis", Redis: RedisConfig{Host: "localhost", Port: "6379"}}).Validate(); err != nil {
		t.Fatalf("redis backend rejected: %v", err)
	}
	if err := (TierListConfig{Backend: "s3"}).Validate(); err == nil {
		t.Fatalf("unknown backend accepted")
	}
}

func TestArchiveValidate(t *testing.T) {
	if err := (ArchiveConfig{Enabled: true}).Validate(); err == nil {
		t.Fatalf("enabled archive without index path accepted")
	}
	if err := (ArchiveConfig{Enabled: false}).Validate(); err != nil {
		t.Fatalf("disabled archive rejected: %v", err)
	}
}
