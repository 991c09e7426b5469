package archive

import (
	"context"
	"io"
	"log"
	"path/filepath"
	"testing"
	"time"

	"github.com/pndinxx/courserank/config"
)

func newTestArchive(t *testing.T) *Archive {
	t.Helper()
	cfg := config.ArchiveConfig{
		Enabled:   true,
		IndexPath: filepath.Join(t.TempDir(), "rankings.bleve"),
	}
	a, err := New(cfg, log.New(io.Discard, "", 0))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestDisabledArchiveIsNil(t *testing.T) {
	a, err := New(config.ArchiveConfig{Enabled: false}, nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if a != nil {
		t.Fatalf("disabled archive is not nil")
	}
	// nil receiver must be safe
	a.Store(context.Background(), VerdictDoc{ID: "x"})
	if docs, err := a.Search(context.Background(), "anything", 5); err != nil || docs != nil {
		t.Fatalf("nil archive search: docs=%v err=%v", docs, err)
	}
}

func TestStoreAndSearch(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	a.Store(ctx, VerdictDoc{
		ID:        "v1",
		List:      "zh",
		Label:     "calculus luo",
		Tier:      "A",
		Score:     85,
		RankTitle: "sweet",
		Reason:    "judges agreed",
		Tags:      []string{"sweet"},
		CreatedAt: time.Now().UTC(),
	})
	a.Store(ctx, VerdictDoc{
		ID:    "v2",
		List:  "zh",
		Label: "linear algebra chen",
		Tier:  "C",
		Score: 65,
	})

	docs, err := a.Search(ctx, "calculus", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 1 {
		t.Fatalf("got %d docs, want 1", len(docs))
	}
	if docs[0].ID != "v1" || docs[0].Tier != "A" || docs[0].Score != 85 {
		t.Fatalf("doc = %+v", docs[0])
	}
}

func TestSearchByTier(t *testing.T) {
	a := newTestArchive(t)
	ctx := context.Background()

	a.Store(ctx, VerdictDoc{ID: "v1", Label: "calculus", Tier: "A", Score: 85})
	a.Store(ctx, VerdictDoc{ID: "v2", Label: "physics", Tier: "D", Score: 40})

	docs, err := a.Search(ctx, "tier:D", 10)
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(docs) != 1 || docs[0].ID != "v2" {
		t.Fatalf("docs = %+v, want only the D verdict", docs)
	}
}
