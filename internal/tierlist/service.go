package tierlist

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"sync"

	"github.com/pndinxx/courserank/config"
	"github.com/pndinxx/courserank/internal/agent/telemetry"
)

// Service owns all tier canvas mutation. Every placement for a given list
// runs under that list's mutex, so concurrent requests against one list
// serialize instead of racing on the counter and the persisted canvas.
type Service struct {
	store     Store
	templates map[string]string
	renderer  *CardRenderer
	telemetry *telemetry.Telemetry
	logger    *log.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewService builds the tier list service on the configured store backend.
func NewService(ctx context.Context, cfg config.TierListConfig, tele *telemetry.Telemetry, logger *log.Logger) (*Service, error) {
	var store Store
	var err error
	switch cfg.Backend {
	case "redis":
		store, err = NewRedisStore(ctx, cfg.Redis)
	default:
		store, err = NewFileStore(cfg.DataDir)
	}
	if err != nil {
		return nil, fmt.Errorf("tierlist store: %w", err)
	}
	if logger == nil {
		logger = log.New(log.Writer(), "[TIER] ", log.LstdFlags)
	}
	return &Service{
		store:     store,
		templates: cfg.Templates,
		renderer:  NewCardRenderer(cfg.FontPaths),
		telemetry: tele,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}, nil
}

// NewServiceWithStore builds a service around an existing store. Used by
// tests and by callers that manage the store lifecycle themselves.
func NewServiceWithStore(store Store, templates map[string]string, tele *telemetry.Telemetry, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.Writer(), "[TIER] ", log.LstdFlags)
	}
	return &Service{
		store:     store,
		templates: templates,
		renderer:  NewCardRenderer(nil),
		telemetry: tele,
		logger:    logger,
		locks:     make(map[string]*sync.Mutex),
	}
}

func (s *Service) lock(list string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[list]
	if !ok {
		l = &sync.Mutex{}
		s.locks[list] = l
	}
	return l
}

// loadCanvas returns the persisted canvas for the list, falling back to the
// configured template, falling back to a synthesized blank canvas. The
// boolean reports whether counters should be trusted: a canvas that could
// not be decoded restarts the list from its template with zeroed counters.
func (s *Service) loadCanvas(ctx context.Context, list string) (*image.RGBA, bool, error) {
	data, err := s.store.LoadCanvas(ctx, list)
	if err == nil {
		canvas, derr := DecodeCanvas(data)
		if derr == nil {
			return canvas, true, nil
		}
		s.logger.Printf("canvas for %s unreadable, restarting from template: %v", list, derr)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	if path, ok := s.templates[list]; ok && path != "" {
		canvas, terr := LoadTemplate(path)
		if terr == nil {
			return canvas, false, nil
		}
		s.logger.Printf("template for %s unreadable, synthesizing blank: %v", list, terr)
	}
	return BlankCanvas(), false, nil
}

// Place composites a card for the label into the tier row of the list.
// It returns false without touching canvas or counters when the row is
// full; rejected calls are idempotent.
func (s *Service) Place(ctx context.Context, list, label string, tier Tier) (bool, error) {
	tier = Normalize(string(tier))
	l := s.lock(list)
	l.Lock()
	defer l.Unlock()

	canvas, trusted, err := s.loadCanvas(ctx, list)
	if err != nil {
		return false, err
	}
	counts := ZeroCounts()
	if trusted {
		counts, err = s.store.LoadCounts(ctx, list)
		if err != nil {
			return false, err
		}
	}

	bounds := canvas.Bounds()
	layout := NewLayout(bounds.Dx(), bounds.Dy())
	x, y := layout.Position(tier, counts[tier])
	if !layout.Fits(x) {
		s.telemetry.RecordRejection(list, string(tier))
		s.logger.Printf("row %s of list %s is full, rejecting %q", tier, list, label)
		return false, nil
	}

	card := s.renderer.Render(label, layout.CardSize)
	Composite(canvas, card, x, y)

	data, err := EncodeCanvas(canvas)
	if err != nil {
		return false, err
	}
	counts[tier]++
	if err := s.store.Save(ctx, list, data, counts); err != nil {
		return false, fmt.Errorf("persist canvas: %w", err)
	}
	s.telemetry.RecordPlacement(list, string(tier))
	return true, nil
}

// Counts returns the current per-tier counters for a list. Reads run under
// the list mutex so a placement mid-save is never observed half-written,
// and a list whose canvas is gone or unreadable reports zero counters, the
// same state the next placement will restart from.
func (s *Service) Counts(ctx context.Context, list string) (Counts, error) {
	l := s.lock(list)
	l.Lock()
	defer l.Unlock()

	_, trusted, err := s.loadCanvas(ctx, list)
	if err != nil {
		return nil, err
	}
	if !trusted {
		return ZeroCounts(), nil
	}
	return s.store.LoadCounts(ctx, list)
}

// Canvas returns the current canvas PNG for a list, synthesizing the
// template or blank canvas when nothing has been placed yet.
func (s *Service) Canvas(ctx context.Context, list string) ([]byte, error) {
	l := s.lock(list)
	l.Lock()
	defer l.Unlock()

	canvas, _, err := s.loadCanvas(ctx, list)
	if err != nil {
		return nil, err
	}
	return EncodeCanvas(canvas)
}

// Reset deletes the persisted canvas and zeroes the counters for a list.
func (s *Service) Reset(ctx context.Context, list string) error {
	l := s.lock(list)
	l.Lock()
	defer l.Unlock()
	return s.store.Reset(ctx, list)
}
