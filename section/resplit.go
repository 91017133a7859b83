package section

import (
	"sort"

	"github.com/tsawler/cvlayout/layout"
	"github.com/tsawler/cvlayout/model"
)

// Resplitter fixes pages where two adjacent column headers were fused into
// one extracted line. The gap detector cannot separate such columns because
// the gutter only opens a few lines below the fused header, so when a line
// carries two or more recognized section names the whole page is re-split
// at the midpoints between those names instead.
type Resplitter struct {
	matcher  *Matcher
	builder  *layout.LineBuilder
	minWords int
}

// NewResplitter builds a re-splitter sharing the segmenter's matcher.
// minWords is the per-column survival floor, mirroring the gap detector's.
func NewResplitter(matcher *Matcher, builder *layout.LineBuilder, minWords int) *Resplitter {
	if minWords <= 0 {
		minWords = layout.DefaultColumnConfig().MinWordsPerColumn
	}
	return &Resplitter{matcher: matcher, builder: builder, minWords: minWords}
}

// Apply scans the page's blocks for a fused multi-header line and, when one
// is found, reassigns the entire page's tokens to columns split at the
// header positions. The boolean reports whether a re-split happened; when
// it did not, the original blocks come back untouched.
func (r *Resplitter) Apply(page model.Page, blocks []Block) ([]Block, bool) {
	matches := r.findFusedHeader(blocks)
	if len(matches) < 2 {
		return blocks, false
	}

	splits := make([]float64, len(matches)-1)
	for i := 0; i < len(matches)-1; i++ {
		splits[i] = (matches[i].approxX + matches[i+1].approxX) / 2
	}

	groups := make([][]model.Token, len(matches))
	for _, tok := range page.Tokens {
		at := sort.SearchFloat64s(splits, tok.MidX())
		groups[at] = append(groups[at], tok)
	}
	for _, g := range groups {
		if len(g) < r.minWords {
			// The fused header did not correspond to real columns; keep the
			// gap detector's answer.
			return blocks, false
		}
	}

	out := make([]Block, 0, len(groups))
	for i, g := range groups {
		x0, x1 := tokenSpan(g)
		out = append(out, Block{
			Page:        page.Number,
			ColumnIndex: i,
			XStart:      x0,
			XEnd:        x1,
			SectionHint: matches[i].canonical,
			Lines:       r.builder.Build(g),
		})
	}
	return out, true
}

type headerMatch struct {
	canonical string
	approxX   float64
}

// findFusedHeader returns the per-column header positions from the topmost
// line recognized as a fused multi-section header, or nil. A name's x
// position is estimated from its character offset scaled into the line's
// bounding box.
func (r *Resplitter) findFusedHeader(blocks []Block) []headerMatch {
	for _, block := range blocks {
		for _, line := range block.Lines {
			found, complete := r.matcher.MatchAll(line.Text)
			if !complete || len(found) < 2 {
				continue
			}
			n := len(line.Text)
			if n == 0 {
				continue
			}
			out := make([]headerMatch, len(found))
			for i, m := range found {
				out[i] = headerMatch{
					canonical: m.Canonical,
					approxX:   line.BBox.X0 + float64(m.Offset)/float64(n)*line.Width(),
				}
			}
			sort.SliceStable(out, func(i, j int) bool { return out[i].approxX < out[j].approxX })
			return out
		}
	}
	return nil
}

func tokenSpan(tokens []model.Token) (float64, float64) {
	x0, x1 := tokens[0].X0, tokens[0].X1
	for _, t := range tokens[1:] {
		if t.X0 < x0 {
			x0 = t.X0
		}
		if t.X1 > x1 {
			x1 = t.X1
		}
	}
	return x0, x1
}
