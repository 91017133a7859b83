package section

import (
	"sort"
	"strings"
	"unicode"

	"github.com/tsawler/cvlayout/layout"
)

// Block is one column's worth of built lines, the unit the segmenter walks.
type Block struct {
	Page        int
	ColumnIndex int
	XStart      float64
	XEnd        float64
	SectionHint string
	Lines       []layout.Line
}

// Width returns the column span, never less than zero.
func (b Block) Width() float64 {
	if b.XEnd <= b.XStart {
		return 0
	}
	return b.XEnd - b.XStart
}

// Candidate is a line provisionally flagged as a section boundary.
type Candidate struct {
	Page        int
	ColumnIndex int
	LineIndex   int
	Text        string
	Canon       string

	FontSize       float64
	SpaceAbove     float64
	BoldRatio      float64
	WidthRatio     float64
	UppercaseRatio float64
	WordCount      int
}

// key identifies the candidate's line within the document.
func (c Candidate) key() lineKey {
	return lineKey{c.Page, c.ColumnIndex, c.LineIndex}
}

type lineKey struct {
	page, column, line int
}

// UppercaseRatio is the fraction of letters in s that are upper case.
// Lines without letters score 0.
func UppercaseRatio(s string) float64 {
	letters, upper := 0, 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsUpper(r) {
				upper++
			}
		}
	}
	if letters == 0 {
		return 0
	}
	return float64(upper) / float64(letters)
}

// CollectCandidates keyword-matches every line in every block against the
// vocabulary. It overshoots on purpose: a keyword quoted mid-sentence still
// lands here, and FilterOutliers removes it afterwards by comparing its
// visual metrics against the column's other candidates.
func CollectCandidates(blocks []Block, matcher *Matcher) []Candidate {
	var candidates []Candidate
	for _, block := range blocks {
		width := block.Width()
		for _, line := range block.Lines {
			canonical, ok := matcher.Guess(line.Text)
			if !ok {
				continue
			}
			widthRatio := 0.0
			if width > 0 {
				widthRatio = line.Width() / width
			}
			candidates = append(candidates, Candidate{
				Page:           block.Page,
				ColumnIndex:    block.ColumnIndex,
				LineIndex:      line.Index,
				Text:           line.Text,
				Canon:          canonical,
				FontSize:       line.EffectiveFontSize(),
				SpaceAbove:     line.SpaceAbove,
				BoldRatio:      line.BoldRatio,
				WidthRatio:     widthRatio,
				UppercaseRatio: UppercaseRatio(line.Text),
				WordCount:      len(strings.Fields(line.Text)),
			})
		}
	}
	return candidates
}

// FilterOutliers rejects candidates whose visual metrics fall below the
// medians of their own column's candidates. The rule is asymmetric by
// design: a candidate survives if it is bold, or mostly uppercase, or not
// small-font — rejection requires every weak signal to coincide on a long
// line. A missed heading silently merges two sections, while a false one
// only mis-splits a boundary, so recall wins.
func FilterOutliers(candidates []Candidate) []Candidate {
	type colKey struct {
		page, column int
	}
	byColumn := make(map[colKey][]Candidate)
	order := make([]colKey, 0)
	for _, c := range candidates {
		k := colKey{c.Page, c.ColumnIndex}
		if _, seen := byColumn[k]; !seen {
			order = append(order, k)
		}
		byColumn[k] = append(byColumn[k], c)
	}

	kept := make([]Candidate, 0, len(candidates))
	for _, k := range order {
		group := byColumn[k]
		medFont := median(group, func(c Candidate) float64 { return c.FontSize })
		medSpace := median(group, func(c Candidate) float64 { return c.SpaceAbove })
		medUpper := median(group, func(c Candidate) float64 { return c.UppercaseRatio })
		medBold := median(group, func(c Candidate) float64 { return c.BoldRatio })

		for _, c := range group {
			reject := c.WordCount > 6 && c.WidthRatio > 0.9 &&
				below(c.FontSize, medFont, 0.70) &&
				below(c.SpaceAbove, medSpace, 0.50) &&
				below(c.UppercaseRatio, medUpper, 0.70) &&
				below(c.BoldRatio, medBold, 0.50)
			if !reject {
				kept = append(kept, c)
			}
		}
	}
	return kept
}

// below reports value < frac*median. A zero median means the whole column
// shares the weak signal, which is no evidence against the candidate.
func below(value, med, frac float64) bool {
	if med <= 0 {
		return false
	}
	return value < med*frac
}

func median(group []Candidate, metric func(Candidate) float64) float64 {
	if len(group) == 0 {
		return 0
	}
	vals := make([]float64, len(group))
	for i, c := range group {
		vals[i] = metric(c)
	}
	sort.Float64s(vals)
	mid := len(vals) / 2
	if len(vals)%2 == 1 {
		return vals[mid]
	}
	return (vals[mid-1] + vals[mid]) / 2
}
