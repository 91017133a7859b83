package layout

import (
	"sort"
	"strings"
	"unicode/utf8"

	"github.com/tsawler/cvlayout/model"
)

// Line is a single text line within one column, with the metrics used by
// heading detection.
type Line struct {
	// Index is the line's position within its column (0-based, dense,
	// top to bottom)
	Index int

	// Text is the assembled and normalized line text
	Text string

	// BBox is the bounding box over member tokens
	BBox model.BBox

	// Tokens are the member tokens, sorted left to right
	Tokens []model.Token

	// CharCount and WordCount are simple text statistics
	CharCount int
	WordCount int

	// AvgFontSize is the geometric font-size proxy: mean token height
	AvgFontSize float64

	// AvgSpanFontSize is the mean of backend-reported font sizes; zero when
	// the backend reports none
	AvgSpanFontSize float64

	// BoldRatio is the fraction of tokens flagged bold
	BoldRatio float64

	// SpaceAbove and SpaceBelow are vertical gaps to the neighbouring lines
	// in the same column; zero for boundary lines
	SpaceAbove float64
	SpaceBelow float64

	// DominantFont is the most common token font name (empty when unknown)
	DominantFont string
}

// EffectiveFontSize returns the span font size when the backend reported
// one, otherwise the geometric proxy.
func (l Line) EffectiveFontSize() float64 {
	if l.AvgSpanFontSize > 0 {
		return l.AvgSpanFontSize
	}
	return l.AvgFontSize
}

// Width returns the horizontal extent of the line.
func (l Line) Width() float64 {
	return l.BBox.Width()
}

// IsEmpty reports whether the line has no text content.
func (l Line) IsEmpty() bool {
	return strings.TrimSpace(l.Text) == ""
}

// LineConfig holds configuration for line building.
type LineConfig struct {
	// YTolerance is the slack, in page units, allowed when testing a token's
	// vertical overlap against the open line group. Default: 2.0.
	YTolerance float64
}

// DefaultLineConfig returns sensible default configuration.
func DefaultLineConfig() LineConfig {
	return LineConfig{YTolerance: 2.0}
}

// LineBuilder groups a column's tokens into text lines.
//
// The overlap test runs against the most recently opened group only, not
// all groups. In reading order that keeps the pass linear and prevents a
// wide token from stitching together two stacked lines through a third.
type LineBuilder struct {
	config LineConfig
}

// NewLineBuilder creates a line builder with default configuration.
func NewLineBuilder() *LineBuilder {
	return &LineBuilder{config: DefaultLineConfig()}
}

// NewLineBuilderWithConfig creates a line builder with custom configuration.
func NewLineBuilderWithConfig(config LineConfig) *LineBuilder {
	if config.YTolerance <= 0 {
		config.YTolerance = 2.0
	}
	return &LineBuilder{config: config}
}

// lineGroup is an open cluster of vertically overlapping tokens.
type lineGroup struct {
	top, bottom float64
	tokens      []model.Token
}

// Build clusters the column's tokens into lines, assembles text, computes
// metrics, and returns the lines sorted top to bottom with dense indexes.
func (b *LineBuilder) Build(tokens []model.Token) []Line {
	if len(tokens) == 0 {
		return nil
	}

	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	tol := b.config.YTolerance
	var groups []*lineGroup
	for _, tok := range sorted {
		var open *lineGroup
		if len(groups) > 0 {
			open = groups[len(groups)-1]
		}
		if open != nil && !(tok.Y1 < open.top-tol || tok.Y0 > open.bottom+tol) {
			open.tokens = append(open.tokens, tok)
			if tok.Y0 < open.top {
				open.top = tok.Y0
			}
			if tok.Y1 > open.bottom {
				open.bottom = tok.Y1
			}
			continue
		}
		groups = append(groups, &lineGroup{top: tok.Y0, bottom: tok.Y1, tokens: []model.Token{tok}})
	}

	lines := make([]Line, 0, len(groups))
	for _, g := range groups {
		lines = append(lines, b.finishGroup(g))
	}

	sort.SliceStable(lines, func(i, j int) bool {
		if lines[i].BBox.Top != lines[j].BBox.Top {
			return lines[i].BBox.Top < lines[j].BBox.Top
		}
		return lines[i].BBox.X0 < lines[j].BBox.X0
	})
	for i := range lines {
		lines[i].Index = i
	}

	b.computeSpacing(lines)
	return lines
}

// finishGroup orders a group's tokens, assembles its text, and computes the
// per-line metrics.
func (b *LineBuilder) finishGroup(g *lineGroup) Line {
	sort.SliceStable(g.tokens, func(i, j int) bool {
		return g.tokens[i].X0 < g.tokens[j].X0
	})

	var sb strings.Builder
	for i, tok := range g.tokens {
		if i > 0 {
			sb.WriteByte(' ')
		}
		sb.WriteString(tok.Text)
	}
	text := NormalizeLineText(sb.String())

	bbox := g.tokens[0].BBox()
	for _, tok := range g.tokens[1:] {
		bbox = bbox.Union(tok.BBox())
	}

	var heightSum, spanSum float64
	spanCount := 0
	boldCount := 0
	fontCounts := make(map[string]int)
	for _, tok := range g.tokens {
		heightSum += tok.Height()
		if tok.FontSize > 0 {
			spanSum += tok.FontSize
			spanCount++
		}
		if tok.Bold {
			boldCount++
		}
		if tok.FontName != "" {
			fontCounts[tok.FontName]++
		}
	}

	n := float64(len(g.tokens))
	line := Line{
		Text:        text,
		BBox:        bbox,
		Tokens:      g.tokens,
		CharCount:   utf8.RuneCountInString(text),
		WordCount:   len(strings.Fields(text)),
		AvgFontSize: heightSum / n,
		BoldRatio:   float64(boldCount) / n,
	}
	if spanCount > 0 {
		line.AvgSpanFontSize = spanSum / float64(spanCount)
	}
	line.DominantFont = dominantKey(fontCounts)
	return line
}

// dominantKey returns the most frequent key; ties break lexicographically
// so the result is deterministic.
func dominantKey(counts map[string]int) string {
	best := ""
	bestCount := 0
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if counts[k] > bestCount {
			best = k
			bestCount = counts[k]
		}
	}
	return best
}

// computeSpacing fills SpaceAbove/SpaceBelow as gaps to the adjacent lines.
func (b *LineBuilder) computeSpacing(lines []Line) {
	for i := range lines {
		if i > 0 {
			gap := lines[i].BBox.Top - lines[i-1].BBox.Bottom
			if gap < 0 {
				gap = 0
			}
			lines[i].SpaceAbove = gap
			lines[i-1].SpaceBelow = gap
		}
	}
}

// Boundaries converts the line geometry to its serialized form.
func (l Line) Boundaries() model.LineBoundaries {
	return model.LineBoundaries{
		X0:     l.BBox.X0,
		X1:     l.BBox.X1,
		Top:    l.BBox.Top,
		Bottom: l.BBox.Bottom,
		Width:  l.BBox.Width(),
		Height: l.BBox.Height(),
	}
}

// Metrics converts the line metrics to their serialized form.
func (l Line) Metrics() model.LineMetrics {
	return model.LineMetrics{
		AvgFontSize:     l.AvgFontSize,
		AvgSpanFontSize: l.AvgSpanFontSize,
		BoldRatio:       l.BoldRatio,
		SpaceAbove:      l.SpaceAbove,
		SpaceBelow:      l.SpaceBelow,
		LineWidth:       l.BBox.Width(),
	}
}

// Properties converts the line statistics to their serialized form.
func (l Line) Properties() model.LineProperties {
	return model.LineProperties{CharCount: l.CharCount, WordCount: l.WordCount}
}
