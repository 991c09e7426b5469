package archive

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/blevesearch/bleve"

	"github.com/pndinxx/courserank/config"
)

// VerdictDoc is the indexed record of one finished analysis run. The
// archive is the system's long-term memory: past verdicts stay searchable
// after the canvas has filled up or been reset.
type VerdictDoc struct {
	ID        string    `json:"id"`
	List      string    `json:"list"`
	Label     string    `json:"label"`
	Tier      string    `json:"tier"`
	Score     int       `json:"score"`
	RankTitle string    `json:"rank_title"`
	Reason    string    `json:"reason"`
	Tags      []string  `json:"tags"`
	CreatedAt time.Time `json:"created_at"`
}

// Archive wraps a bleve full-text index over verdict documents. All
// methods are nil-receiver safe so a disabled archive costs callers
// nothing.
type Archive struct {
	index  bleve.Index
	logger *log.Logger
}

// New opens the index at the configured path, creating it on first run.
// Returns nil when the archive is disabled.
func New(cfg config.ArchiveConfig, logger *log.Logger) (*Archive, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[ARCHIVE] ", log.LstdFlags)
	}

	var index bleve.Index
	var err error
	if _, serr := os.Stat(cfg.IndexPath); os.IsNotExist(serr) {
		index, err = bleve.New(cfg.IndexPath, bleve.NewIndexMapping())
	} else {
		index, err = bleve.Open(cfg.IndexPath)
	}
	if err != nil {
		return nil, fmt.Errorf("open archive index: %w", err)
	}
	return &Archive{index: index, logger: logger}, nil
}

// Store indexes one verdict. Failures are logged, never propagated: the
// archive is best effort and must not fail a finished pipeline run.
func (a *Archive) Store(ctx context.Context, doc VerdictDoc) {
	if a == nil {
		return
	}
	if err := a.index.Index(doc.ID, doc); err != nil {
		a.logger.Printf("index verdict %s failed: %v", doc.ID, err)
	}
}

// Search runs a query-string search over past verdicts and returns the
// matched documents, newest first by score.
func (a *Archive) Search(ctx context.Context, query string, limit int) ([]VerdictDoc, error) {
	if a == nil {
		return nil, nil
	}
	if limit <= 0 {
		limit = 10
	}
	req := bleve.NewSearchRequestOptions(bleve.NewQueryStringQuery(query), limit, 0, false)
	req.Fields = []string{"*"}
	res, err := a.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("archive search: %w", err)
	}

	docs := make([]VerdictDoc, 0, len(res.Hits))
	for _, hit := range res.Hits {
		docs = append(docs, docFromFields(hit.ID, hit.Fields))
	}
	return docs, nil
}

// Close releases the underlying index files.
func (a *Archive) Close() error {
	if a == nil {
		return nil
	}
	return a.index.Close()
}

func docFromFields(id string, fields map[string]interface{}) VerdictDoc {
	doc := VerdictDoc{ID: id}
	if v, ok := fields["list"].(string); ok {
		doc.List = v
	}
	if v, ok := fields["label"].(string); ok {
		doc.Label = v
	}
	if v, ok := fields["tier"].(string); ok {
		doc.Tier = v
	}
	if v, ok := fields["score"].(float64); ok {
		doc.Score = int(v)
	}
	if v, ok := fields["rank_title"].(string); ok {
		doc.RankTitle = v
	}
	if v, ok := fields["reason"].(string); ok {
		doc.Reason = v
	}
	switch tags := fields["tags"].(type) {
	case string:
		doc.Tags = []string{tags}
	case []interface{}:
		for _, t := range tags {
			if s, ok := t.(string); ok {
				doc.Tags = append(doc.Tags, s)
			}
		}
	}
	if v, ok := fields["created_at"].(string); ok {
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			doc.CreatedAt = ts
		}
	}
	return doc
}
