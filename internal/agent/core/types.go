package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/pndinxx/courserank/internal/tierlist"
)

// Pipeline roles. Every model call is tagged with one of these; the model
// router resolves each to an ordered model attempt list.
const (
	RoleManager     = "manager"
	RoleCleaner     = "cleaner"
	RoleSynthesizer = "synthesizer"
	RoleFixer       = "fixer"
	RoleHunter      = "hunter"
)

// Intent is the classified purpose of a user request.
type Intent string

const (
	IntentAnalyze   Intent = "analyze"
	IntentRecommend Intent = "recommend"
)

// IntentRecord is the structured output of the intent classifier.
type IntentRecord struct {
	Intent    Intent `json:"intent"`
	Keywords  string `json:"keywords"`
	Rationale string `json:"rationale"`
}

// Snippet is one normalized search result. Uniqueness is enforced by Link.
type Snippet struct {
	SourceLabel string `json:"source_label"`
	Title       string `json:"title"`
	Body        string `json:"body"`
	Link        string `json:"link"`
}

// JudgeVerdict is the structured output of one judge persona.
type JudgeVerdict struct {
	Tier    tierlist.Tier `json:"tier"`
	Score   int           `json:"score"`
	Comment string        `json:"comment"`
}

// SynthesizedVerdict is the consolidated verdict of the synthesizer,
// extending the judge shape with derived fields.
type SynthesizedVerdict struct {
	RankTitle  string            `json:"rank"`
	Tier       tierlist.Tier     `json:"tier"`
	Score      int               `json:"score"`
	Reason     string            `json:"reason"`
	Tags       []string          `json:"tags"`
	Details    string            `json:"details"`
	SubRatings map[string]string `json:"sub_ratings,omitempty"`
}

// Normalize coerces the tier to the canonical alphabet and clamps the score
// into that tier's declared band. The tier is authoritative when the two
// disagree.
func (v *SynthesizedVerdict) Normalize() {
	v.Tier = tierlist.Normalize(string(v.Tier))
	v.Score = tierlist.ClampScore(v.Tier, v.Score)
}

// Recommendation is one entry of the hunter's list output.
type Recommendation struct {
	Teacher string `json:"teacher"`
	Subject string `json:"subject"`
	Reason  string `json:"reason"`
	Stars   Stars  `json:"stars"`
}

// Stars is a 1-5 recommendation strength. Models emit it inconsistently as
// a number or a string, so it unmarshals from either, defaulting to 3.
type Stars int

func (s *Stars) UnmarshalJSON(data []byte) error {
	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*s = clampStars(n)
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		if n, err := strconv.Atoi(strings.TrimSpace(str)); err == nil {
			*s = clampStars(n)
			return nil
		}
	}
	*s = 3
	return nil
}

func clampStars(n int) Stars {
	if n < 1 {
		return 1
	}
	if n > 5 {
		return 5
	}
	return Stars(n)
}

// AnalysisResult is the outcome of one full analyze run.
type AnalysisResult struct {
	ID             string                  `json:"id"`
	Query          string                  `json:"query"`
	List           string                  `json:"list"`
	Intent         IntentRecord            `json:"intent"`
	Snippets       []Snippet               `json:"snippets"`
	Curated        string                  `json:"curated"`
	Verdicts       map[string]JudgeVerdict `json:"verdicts"`
	Final          SynthesizedVerdict      `json:"final"`
	Placed         bool                    `json:"placed"`
	PlacementNote  string                  `json:"placement_note,omitempty"`
	ProcessingTime time.Duration           `json:"processing_time"`
	CreatedAt      time.Time               `json:"created_at"`
}

// RecommendResult is the outcome of one recommend run.
type RecommendResult struct {
	ID             string           `json:"id"`
	Query          string           `json:"query"`
	Items          []Recommendation `json:"items"`
	Snippets       []Snippet        `json:"snippets"`
	ProcessingTime time.Duration    `json:"processing_time"`
	CreatedAt      time.Time        `json:"created_at"`
}

// ErrNoEvidence reports that every configured search provider returned
// nothing; the pipeline halts before any model scoring.
var ErrNoEvidence = errors.New("no evidence found")

// ErrAllModelsFailed reports that every model in a role's attempt list
// failed.
var ErrAllModelsFailed = errors.New("all models failed")

// ParseError reports that model output could not be parsed as structured
// data, even after the bounded repair attempt.
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparseable model output: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
