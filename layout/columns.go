package layout

import (
	"fmt"
	"math"
	"sort"

	"github.com/tsawler/cvlayout/model"
)

// Column represents a detected text column on a page.
type Column struct {
	// Page the column belongs to (0-based, set by the caller)
	Page int

	// Index of the column (0-based, left to right)
	Index int

	// Horizontal extent; XStart < XEnd, tightened to actual token bounds
	// after assignment and merging
	XStart, XEnd float64

	// Tokens assigned to this column by x-midpoint
	Tokens []model.Token

	// SectionHint biases section matching for the first heading line of the
	// column. Set only by the multi-section-header re-splitting pre-pass.
	SectionHint string
}

// Width returns the horizontal extent of the column.
func (c Column) Width() float64 {
	return c.XEnd - c.XStart
}

// ColumnConfig holds configuration for the projection-histogram detector.
type ColumnConfig struct {
	// MinGapWidth is the minimum valley run length, in page units, for a
	// low-density run to count as a column gutter.
	// Zero means dynamic: max(3, 2% of page width).
	MinGapWidth float64

	// MinWordsPerColumn is the minimum token count for a column to survive.
	// Default: 4.
	MinWordsPerColumn int

	// DynamicMinWords raises the survival floor to 4% of the page token
	// count when that is larger than MinWordsPerColumn. Default: true.
	DynamicMinWords bool

	// SmoothWindow is the moving-average kernel width for histogram
	// smoothing. Default: 5.
	SmoothWindow int

	// ValleyDepth is the smoothed-density fraction (relative to the
	// histogram maximum) below which a bin counts as valley. Default: 0.30.
	ValleyDepth float64

	// Bins overrides the histogram resolution. Zero means one bin per page
	// unit (the tight detector); the coarse gutter detector passes a fixed
	// count such as 400.
	Bins int
}

// DefaultColumnConfig returns sensible default configuration.
func DefaultColumnConfig() ColumnConfig {
	return ColumnConfig{
		MinGapWidth:       0, // dynamic
		MinWordsPerColumn: 4,
		DynamicMinWords:   true,
		SmoothWindow:      5,
		ValleyDepth:       0.30,
		Bins:              0, // one bin per unit
	}
}

// ColumnDetector detects multi-column layouts via x-projection gap analysis.
type ColumnDetector struct {
	config ColumnConfig
}

// NewColumnDetector creates a column detector with default configuration.
func NewColumnDetector() *ColumnDetector {
	return &ColumnDetector{config: DefaultColumnConfig()}
}

// NewColumnDetectorWithConfig creates a column detector with custom configuration.
func NewColumnDetectorWithConfig(config ColumnConfig) *ColumnDetector {
	if config.MinWordsPerColumn <= 0 {
		config.MinWordsPerColumn = 4
	}
	if config.SmoothWindow <= 0 {
		config.SmoothWindow = 5
	}
	if config.ValleyDepth <= 0 {
		config.ValleyDepth = 0.30
	}
	return &ColumnDetector{config: config}
}

// Detect partitions the page's tokens into columns. An empty token list
// yields no columns; ambiguous layouts degrade to a single full-width
// column. Detect returns an error only for an unusable page width.
func (d *ColumnDetector) Detect(tokens []model.Token, pageWidth float64) ([]Column, error) {
	cols, _, err := d.detect(tokens, pageWidth)
	return cols, err
}

// detect is the full detection pass; it additionally reports the split
// confidence (deepest valley strength) used by the region detector.
func (d *ColumnDetector) detect(tokens []model.Token, pageWidth float64) ([]Column, float64, error) {
	if math.IsNaN(pageWidth) || pageWidth <= 0 {
		return nil, 0, fmt.Errorf("column detection: invalid page width %v", pageWidth)
	}
	if len(tokens) == 0 {
		return nil, 0, nil
	}

	hist, scale := d.buildHistogram(tokens, pageWidth)
	smoothed := smooth(hist, d.config.SmoothWindow)

	valleys, confidence := d.findValleys(smoothed, scale, pageWidth)
	if len(valleys) == 0 {
		return []Column{d.fullPageColumn(tokens, pageWidth)}, 1.0, nil
	}

	splits := make([]float64, len(valleys))
	for i, v := range valleys {
		splits[i] = v.mid
	}

	groups := assignBySplits(tokens, splits)

	cols := d.filterAndMerge(groups, len(tokens))
	if len(cols) == 0 {
		return []Column{d.fullPageColumn(tokens, pageWidth)}, 1.0, nil
	}
	if len(cols) == 1 {
		confidence = 1.0
	}

	return cols, confidence, nil
}

// buildHistogram builds the x-density histogram: each bin covered by a
// token's [x0, x1) span is incremented once per token.
func (d *ColumnDetector) buildHistogram(tokens []model.Token, pageWidth float64) ([]float64, float64) {
	bins := d.config.Bins
	if bins <= 0 {
		bins = int(pageWidth)
	}
	if bins < 1 {
		bins = 1
	}
	scale := float64(bins) / pageWidth

	hist := make([]float64, bins)
	for _, t := range tokens {
		b0 := clampBin(int(t.X0*scale), bins)
		b1 := clampBin(int(math.Ceil(t.X1*scale))-1, bins)
		if b1 < b0 {
			b1 = b0
		}
		for b := b0; b <= b1; b++ {
			hist[b]++
		}
	}
	return hist, scale
}

func clampBin(b, bins int) int {
	if b < 0 {
		return 0
	}
	if b >= bins {
		return bins - 1
	}
	return b
}

// smooth applies a centered moving average to suppress single-bin noise.
func smooth(hist []float64, window int) []float64 {
	if window <= 1 || len(hist) == 0 {
		out := make([]float64, len(hist))
		copy(out, hist)
		return out
	}
	half := window / 2
	out := make([]float64, len(hist))
	for i := range hist {
		lo := i - half
		if lo < 0 {
			lo = 0
		}
		hi := i + half
		if hi >= len(hist) {
			hi = len(hist) - 1
		}
		sum := 0.0
		for j := lo; j <= hi; j++ {
			sum += hist[j]
		}
		out[i] = sum / float64(hi-lo+1)
	}
	return out
}

// valley is a maximal low-density bin run wide enough to be a gutter.
type valley struct {
	mid      float64 // split point in page units
	strength float64 // 1 - minDensity/maxDensity, in [0,1]
}

// findValleys locates gutter candidates between the first and last occupied
// bins. Leading and trailing page margins never count as valleys.
func (d *ColumnDetector) findValleys(smoothed []float64, scale, pageWidth float64) ([]valley, float64) {
	maxDensity := 0.0
	firstInk, lastInk := -1, -1
	for i, v := range smoothed {
		if v > maxDensity {
			maxDensity = v
		}
		if v > 0 {
			if firstInk < 0 {
				firstInk = i
			}
			lastInk = i
		}
	}
	if maxDensity == 0 || firstInk < 0 {
		return nil, 0
	}

	threshold := maxDensity * d.config.ValleyDepth

	minGap := d.config.MinGapWidth
	if minGap <= 0 {
		minGap = math.Max(3, pageWidth*0.02)
	}
	minGapBins := int(math.Round(minGap * scale))
	if minGapBins < 1 {
		minGapBins = 1
	}

	var valleys []valley
	confidence := 0.0
	runStart := -1
	runMin := math.MaxFloat64

	flush := func(end int) {
		if runStart < 0 {
			return
		}
		if end-runStart >= minGapBins {
			mid := (float64(runStart) + float64(end)) / 2 / scale
			strength := 1 - runMin/maxDensity
			valleys = append(valleys, valley{mid: mid, strength: strength})
			if strength > confidence {
				confidence = strength
			}
		}
		runStart = -1
		runMin = math.MaxFloat64
	}

	for i := firstInk; i <= lastInk; i++ {
		if smoothed[i] <= threshold {
			if runStart < 0 {
				runStart = i
			}
			if smoothed[i] < runMin {
				runMin = smoothed[i]
			}
		} else {
			flush(i)
		}
	}
	flush(lastInk + 1)

	return valleys, confidence
}

// assignBySplits distributes tokens to the intervals delimited by the split
// points, by token x-midpoint.
func assignBySplits(tokens []model.Token, splits []float64) [][]model.Token {
	groups := make([][]model.Token, len(splits)+1)
	for _, t := range tokens {
		idx := sort.SearchFloat64s(splits, t.MidX())
		groups[idx] = append(groups[idx], t)
	}
	return groups
}

// filterAndMerge drops columns below the survival floor, folds their tokens
// into the nearest surviving column, and tightens bounds to token extents.
func (d *ColumnDetector) filterAndMerge(groups [][]model.Token, total int) []Column {
	required := d.config.MinWordsPerColumn
	if d.config.DynamicMinWords {
		dynamic := int(math.Ceil(float64(total) * 0.04))
		if dynamic > required {
			required = dynamic
		}
	}

	type slot struct {
		tokens []model.Token
		center float64
	}

	var surviving []slot
	var rejected []slot
	for _, g := range groups {
		if len(g) == 0 {
			continue
		}
		lo, hi := tokenXBounds(g)
		s := slot{tokens: g, center: (lo + hi) / 2}
		if len(g) >= required {
			surviving = append(surviving, s)
		} else {
			rejected = append(rejected, s)
		}
	}

	if len(surviving) == 0 {
		return nil
	}

	for _, r := range rejected {
		best := 0
		bestDist := math.MaxFloat64
		for i, s := range surviving {
			dist := math.Abs(s.center - r.center)
			if dist < bestDist {
				bestDist = dist
				best = i
			}
		}
		surviving[best].tokens = append(surviving[best].tokens, r.tokens...)
	}

	cols := make([]Column, 0, len(surviving))
	for _, s := range surviving {
		lo, hi := tokenXBounds(s.tokens)
		cols = append(cols, Column{XStart: lo, XEnd: hi, Tokens: s.tokens})
	}
	sort.SliceStable(cols, func(i, j int) bool { return cols[i].XStart < cols[j].XStart })
	for i := range cols {
		cols[i].Index = i
	}
	return cols
}

// fullPageColumn is the conservative fallback: one column spanning the page.
func (d *ColumnDetector) fullPageColumn(tokens []model.Token, pageWidth float64) Column {
	return Column{
		Index:  0,
		XStart: 0,
		XEnd:   pageWidth,
		Tokens: tokens,
	}
}

func tokenXBounds(tokens []model.Token) (lo, hi float64) {
	lo = tokens[0].X0
	hi = tokens[0].X1
	for _, t := range tokens[1:] {
		if t.X0 < lo {
			lo = t.X0
		}
		if t.X1 > hi {
			hi = t.X1
		}
	}
	return lo, hi
}
