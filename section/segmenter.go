package section

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/tsawler/cvlayout/layout"
	"github.com/tsawler/cvlayout/learn"
	"github.com/tsawler/cvlayout/model"
)

// SegmenterConfig holds the unknown-heading heuristics. The defaults come
// from calibration on real resumes; they are exposed because a different
// token supplier (for instance OCR with inflated glyph boxes) shifts the
// font-size distribution.
type SegmenterConfig struct {
	// MaxHeadingWords and MaxHeadingChars bound how long an unmatched line
	// may be and still count as a possible heading.
	MaxHeadingWords int
	MaxHeadingChars int

	// FontRatio is the factor over the column's median font size that makes
	// a line visually prominent.
	FontRatio float64

	// BoldThreshold and UppercaseThreshold are the alternative prominence
	// signals: fraction of bold tokens, fraction of uppercase letters.
	BoldThreshold      float64
	UppercaseThreshold float64

	Logger *slog.Logger
}

// DefaultSegmenterConfig returns the calibrated defaults.
func DefaultSegmenterConfig() SegmenterConfig {
	return SegmenterConfig{
		MaxHeadingWords:    7,
		MaxHeadingChars:    48,
		FontRatio:          1.15,
		BoldThreshold:      0.35,
		UppercaseThreshold: 0.8,
	}
}

// Segmenter partitions column-grouped lines into named sections.
type Segmenter struct {
	matcher *Matcher
	vocab   *learn.Vocabulary
	config  SegmenterConfig
	logger  *slog.Logger
}

// NewSegmenter creates a segmenter with default configuration.
func NewSegmenter(vocab *learn.Vocabulary) *Segmenter {
	return NewSegmenterWithConfig(vocab, DefaultSegmenterConfig())
}

// NewSegmenterWithConfig creates a segmenter with explicit configuration.
func NewSegmenterWithConfig(vocab *learn.Vocabulary, config SegmenterConfig) *Segmenter {
	def := DefaultSegmenterConfig()
	if config.MaxHeadingWords <= 0 {
		config.MaxHeadingWords = def.MaxHeadingWords
	}
	if config.MaxHeadingChars <= 0 {
		config.MaxHeadingChars = def.MaxHeadingChars
	}
	if config.FontRatio <= 0 {
		config.FontRatio = def.FontRatio
	}
	if config.BoldThreshold <= 0 {
		config.BoldThreshold = def.BoldThreshold
	}
	if config.UppercaseThreshold <= 0 {
		config.UppercaseThreshold = def.UppercaseThreshold
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Segmenter{
		matcher: NewMatcher(vocab),
		vocab:   vocab,
		config:  config,
		logger:  logger,
	}
}

// Matcher exposes the segmenter's keyword matcher, shared with the
// re-splitting pre-pass so both see the same learned vocabulary.
func (s *Segmenter) Matcher() *Matcher { return s.matcher }

// accumulator is the segmentation state machine: one open section at a
// time, flushed whenever a new heading is accepted.
type accumulator struct {
	current model.Section
	done    []model.Section
}

func newAccumulator() *accumulator {
	return &accumulator{current: model.Section{Name: ContactSection}}
}

func (a *accumulator) open(name string) {
	a.flush()
	a.current = model.Section{Name: name}
}

func (a *accumulator) append(line model.SectionLine) {
	a.current.Lines = append(a.current.Lines, line)
}

// flush emits the open section when it has content.
func (a *accumulator) flush() {
	if len(a.current.Lines) > 0 {
		a.done = append(a.done, a.current)
	}
	a.current = model.Section{}
}

// Segment walks the blocks in reading order and returns the merged section
// list plus the count of unmatched probable headings. Reading order is
// pages first, then columns left to right, then lines top to bottom. The
// document is assumed to open with a contact block, so content before the
// first accepted heading lands in "Contact Information".
func (s *Segmenter) Segment(ctx context.Context, blocks []Block) ([]model.Section, int) {
	ordered := make([]Block, len(blocks))
	copy(ordered, blocks)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Page != ordered[j].Page {
			return ordered[i].Page < ordered[j].Page
		}
		return ordered[i].XStart < ordered[j].XStart
	})

	accepted := make(map[lineKey]Candidate)
	for _, c := range FilterOutliers(CollectCandidates(ordered, s.matcher)) {
		accepted[c.key()] = c
	}

	acc := newAccumulator()
	var unknown []model.SectionLine

	for _, block := range ordered {
		medFont, medSpace := blockMedians(block.Lines)
		hintPending := block.SectionHint != ""

		for _, line := range block.Lines {
			rec := sectionLine(block, line)

			cand, isAccepted := accepted[lineKey{block.Page, block.ColumnIndex, line.Index}]
			isHeadingish := s.looksLikeHeading(line, medFont, medSpace)

			// Several section names concatenated on one visual line: learn
			// each as a variant and stage the line for review. New sections
			// are not opened from this path; the re-splitting pre-pass is
			// the component that acts on it, and any fused header it could
			// not resolve stays flagged here.
			if isAccepted || isHeadingish {
				if matches, complete := s.matcher.MatchAll(line.Text); complete && len(matches) >= 2 {
					names := make([]string, len(matches))
					for i, mt := range matches {
						names[i] = mt.Canonical
						if err := s.vocab.AddVariant(mt.Canonical, mt.Text, true); err != nil {
							s.logger.Warn("variant learn failed", "heading", mt.Text, "error", err)
						}
					}
					s.matcher.Refresh()
					rec.Text = fmt.Sprintf("[MULTI-SECTION: %s]", strings.Join(names, " | "))
					unknown = append(unknown, rec)
					continue
				}
			}

			if isAccepted {
				acc.open(cand.Canon)
				hintPending = false
				continue
			}

			// The pre-pass already vouched for the hinted column, so its top
			// line only needs to look prominent; a first line never has
			// spacing above it.
			if hintPending && line.Index == 0 && (isHeadingish || s.prominent(line, medFont)) {
				// The re-split pre-pass already identified which section
				// this column belongs to; trust it for the top line.
				acc.open(block.SectionHint)
				hintPending = false
				continue
			}

			if !isHeadingish {
				acc.append(rec)
				continue
			}

			// Embedding classification, when configured. An exact variant
			// cannot reach this point, so any hit here is a learned one.
			if canonical, score, ok := s.vocab.FindMatchingSection(ctx, line.Text); ok {
				s.logger.Debug("heading classified", "text", line.Text, "section", canonical, "score", score)
				if err := s.vocab.AddVariant(canonical, line.Text, false); err != nil {
					s.logger.Warn("variant learn failed", "heading", line.Text, "error", err)
				}
				s.matcher.Refresh()
				acc.open(canonical)
				continue
			}

			unknown = append(unknown, rec)
		}
	}
	acc.flush()

	sections := mergeSections(acc.done)
	if len(unknown) > 0 {
		sections = append(sections, model.Section{Name: UnknownSection, Lines: unknown})
	}
	return sections, len(unknown)
}

// looksLikeHeading is the unknown-heading test: short, visually prominent
// and preceded by at least median spacing — or explicitly colon-terminated.
func (s *Segmenter) looksLikeHeading(line layout.Line, medFont, medSpace float64) bool {
	text := strings.TrimSpace(line.Text)
	if text == "" {
		return false
	}
	if strings.HasSuffix(text, ":") {
		return true
	}
	if len(strings.Fields(text)) > s.config.MaxHeadingWords || len(text) > s.config.MaxHeadingChars {
		return false
	}
	return s.prominent(line, medFont) && line.SpaceAbove >= medSpace
}

// prominent reports whether a line stands out visually from its column:
// oversized font, bold, or mostly uppercase.
func (s *Segmenter) prominent(line layout.Line, medFont float64) bool {
	return (medFont > 0 && line.EffectiveFontSize() >= s.config.FontRatio*medFont) ||
		line.BoldRatio >= s.config.BoldThreshold ||
		UppercaseRatio(strings.TrimSpace(line.Text)) >= s.config.UppercaseThreshold
}

// blockMedians computes the median effective font size and space-above over
// all lines of a block.
func blockMedians(lines []layout.Line) (font, space float64) {
	if len(lines) == 0 {
		return 0, 0
	}
	fonts := make([]float64, len(lines))
	spaces := make([]float64, len(lines))
	for i, l := range lines {
		fonts[i] = l.EffectiveFontSize()
		spaces[i] = l.SpaceAbove
	}
	sort.Float64s(fonts)
	sort.Float64s(spaces)
	return medianOf(fonts), medianOf(spaces)
}

func medianOf(sorted []float64) float64 {
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

// sectionLine attaches block provenance to a built line.
func sectionLine(block Block, line layout.Line) model.SectionLine {
	return model.SectionLine{
		Page:        block.Page,
		ColumnIndex: block.ColumnIndex,
		LineIndex:   line.Index,
		Text:        line.Text,
		Boundaries:  line.Boundaries(),
		Properties:  line.Properties(),
		Metrics:     line.Metrics(),
	}
}

// mergeSections folds same-named sections together, preserving the order of
// first appearance and the emission order of their lines.
func mergeSections(sections []model.Section) []model.Section {
	index := make(map[string]int)
	merged := make([]model.Section, 0, len(sections))
	for _, sec := range sections {
		if at, seen := index[sec.Name]; seen {
			merged[at].Lines = append(merged[at].Lines, sec.Lines...)
			continue
		}
		index[sec.Name] = len(merged)
		merged = append(merged, sec)
	}
	return merged
}
