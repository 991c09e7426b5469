package tierlist

import "strings"

// Tier is one of five ordinal quality buckets, S (best) through D (worst).
// It doubles as the canvas row selector.
type Tier string

const (
	TierS Tier = "S"
	TierA Tier = "A"
	TierB Tier = "B"
	TierC Tier = "C"
	TierD Tier = "D"
)

// Tiers lists the canonical alphabet in row order, top to bottom.
var Tiers = [5]Tier{TierS, TierA, TierB, TierC, TierD}

// Normalize upper-cases the input and coerces anything outside the five
// canonical letters to TierC.
func Normalize(raw string) Tier {
	switch Tier(strings.ToUpper(strings.TrimSpace(raw))) {
	case TierS:
		return TierS
	case TierA:
		return TierA
	case TierB:
		return TierB
	case TierC:
		return TierC
	case TierD:
		return TierD
	default:
		return TierC
	}
}

// Valid reports whether raw is exactly one of the five canonical letters,
// ignoring case and surrounding space.
func Valid(raw string) bool {
	switch Tier(strings.ToUpper(strings.TrimSpace(raw))) {
	case TierS, TierA, TierB, TierC, TierD:
		return true
	}
	return false
}

// RowIndex returns the fixed row of a tier, top to bottom. Unknown tiers
// land on the C row, matching Normalize.
func RowIndex(t Tier) int {
	switch t {
	case TierS:
		return 0
	case TierA:
		return 1
	case TierB:
		return 2
	case TierC:
		return 3
	case TierD:
		return 4
	default:
		return 3
	}
}

// ScoreBand returns the inclusive numeric score range declared for a tier:
// S>=90, A 80-89, B 70-79, C 60-69, D<60.
func ScoreBand(t Tier) (int, int) {
	switch t {
	case TierS:
		return 90, 100
	case TierA:
		return 80, 89
	case TierB:
		return 70, 79
	case TierC:
		return 60, 69
	default:
		return 0, 59
	}
}

// ClampScore forces score into the band of the given tier. The tier is
// authoritative; the score yields.
func ClampScore(t Tier, score int) int {
	lo, hi := ScoreBand(t)
	if score < lo {
		return lo
	}
	if score > hi {
		return hi
	}
	return score
}

// Layout holds the placement geometry for one canvas. All values derive
// from the canvas dimensions the same way for every list.
type Layout struct {
	Width    int
	Height   int
	RowH     int
	StartX   int
	CardSize int
	Padding  int
}

// NewLayout derives placement geometry from canvas dimensions: five equal
// rows, cards start at 28% of the width, card edge is 85% of the row
// height, 10px gap between cards.
func NewLayout(w, h int) Layout {
	rowH := h / 5
	return Layout{
		Width:    w,
		Height:   h,
		RowH:     rowH,
		StartX:   int(float64(w) * 0.28),
		CardSize: int(float64(rowH) * 0.85),
		Padding:  10,
	}
}

// Position computes the top-left corner for the nth card (count = cards
// already placed) in the given tier's row.
func (l Layout) Position(t Tier, count int) (x, y int) {
	row := RowIndex(t)
	x = l.StartX + count*(l.CardSize+l.Padding)
	y = row*l.RowH + (l.RowH-l.CardSize)/2
	return x, y
}

// Fits reports whether a card placed at x stays inside the canvas. Rows
// have a hard finite capacity: an overflowing card is rejected, never
// wrapped or shrunk.
func (l Layout) Fits(x int) bool {
	return x+l.CardSize <= l.Width
}
