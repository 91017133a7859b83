// Package cvlayout provides a fluent API for turning positioned resume text
// tokens into named, ordered sections.
//
// Basic usage:
//
//	doc, err := cvlayout.New().Parse(ctx, pages)
//	if err != nil {
//	    // handle error
//	}
//	for _, s := range doc.Simplified() {
//	    fmt.Println(s.Name, len(s.Lines))
//	}
//
// With options:
//
//	doc, err := cvlayout.NewWithVocabulary(vocab).
//	    WithRegions().
//	    WithMaxTokens(200_000).
//	    Parse(ctx, pages)
//
// For advanced use cases, the lower-level layout and section packages are
// also available.
package cvlayout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/tsawler/cvlayout/contact"
	"github.com/tsawler/cvlayout/layout"
	"github.com/tsawler/cvlayout/learn"
	"github.com/tsawler/cvlayout/model"
	"github.com/tsawler/cvlayout/section"
)

// ErrTooManyTokens is returned when the input exceeds the configured token
// ceiling. A single runaway document should fail fast instead of stalling a
// whole batch in the sort-heavy stages.
var ErrTooManyTokens = errors.New("token count exceeds configured ceiling")

// Parser runs the full layout pipeline: column/region detection, line
// building, the multi-header re-splitting pre-pass, and section
// segmentation. Each configuration method returns a new Parser instance,
// making it safe for concurrent use and allowing method chaining.
type Parser struct {
	vocab   *learn.Vocabulary
	options ParseOptions
}

// New creates a parser over the built-in section vocabulary only.
func New() *Parser {
	return NewWithVocabulary(nil)
}

// NewWithVocabulary creates a parser over a shared vocabulary, typically
// one backed by a persistent store so learned variants survive runs. A nil
// vocabulary falls back to the built-in sections.
func NewWithVocabulary(vocab *learn.Vocabulary) *Parser {
	if vocab == nil {
		vocab = learn.NewVocabulary(section.DefaultSeeds(), nil, learn.Options{})
	}
	return &Parser{vocab: vocab, options: defaultOptions()}
}

// clone creates a copy of the Parser with copied options. This ensures
// immutability - each chain method returns a new instance.
func (p *Parser) clone() *Parser {
	return &Parser{vocab: p.vocab, options: p.options.clone()}
}

// WithRegions enables hybrid-layout detection: the page is split into
// stacked bands before column detection, so a single-column header above a
// two-column body is handled correctly.
func (p *Parser) WithRegions() *Parser {
	n := p.clone()
	n.options.useRegions = true
	return n
}

// WithMaxTokens sets a per-document token ceiling; Parse returns
// ErrTooManyTokens beyond it. Zero means unlimited.
func (p *Parser) WithMaxTokens(limit int) *Parser {
	n := p.clone()
	n.options.maxTokens = limit
	return n
}

// WithColumnConfig replaces the column detection configuration.
func (p *Parser) WithColumnConfig(config layout.ColumnConfig) *Parser {
	n := p.clone()
	n.options.columns = config
	n.options.regions.Columns = config
	return n
}

// WithRegionConfig replaces the hybrid-layout band detection configuration
// and implies WithRegions.
func (p *Parser) WithRegionConfig(config layout.RegionConfig) *Parser {
	n := p.clone()
	n.options.regions = config
	n.options.useRegions = true
	return n
}

// WithLineConfig replaces the line building configuration.
func (p *Parser) WithLineConfig(config layout.LineConfig) *Parser {
	n := p.clone()
	n.options.lines = config
	return n
}

// WithSegmenterConfig replaces the heading heuristics configuration.
func (p *Parser) WithSegmenterConfig(config section.SegmenterConfig) *Parser {
	n := p.clone()
	n.options.segmenter = config
	return n
}

// WithoutContact disables the contact extraction pass.
func (p *Parser) WithoutContact() *Parser {
	n := p.clone()
	n.options.extractContact = false
	return n
}

// WithLogger sets the logger for degradation warnings.
func (p *Parser) WithLogger(logger *slog.Logger) *Parser {
	n := p.clone()
	n.options.logger = logger
	return n
}

// Parse runs the pipeline over the pages in order and returns the
// segmented document. Empty input yields a well-formed empty document, not
// an error; malformed token geometry and a breached token ceiling are the
// only failure modes.
func (p *Parser) Parse(ctx context.Context, pages []model.Page) (*model.Document, error) {
	if err := model.ValidatePages(pages); err != nil {
		return nil, err
	}
	if p.options.maxTokens > 0 {
		total := 0
		for _, page := range pages {
			total += len(page.Tokens)
		}
		if total > p.options.maxTokens {
			return nil, fmt.Errorf("%w: %d tokens", ErrTooManyTokens, total)
		}
	}

	logger := p.options.logger
	if logger == nil {
		logger = slog.Default()
	}

	builder := layout.NewLineBuilderWithConfig(p.options.lines)
	segmenter := section.NewSegmenterWithConfig(p.vocab, p.options.segmenter)
	resplitter := section.NewResplitter(segmenter.Matcher(), builder, p.options.columns.MinWordsPerColumn)

	var blocks []section.Block
	linesTotal := 0
	for _, page := range pages {
		pageBlocks, err := p.pageBlocks(page, builder)
		if err != nil {
			return nil, err
		}
		if resplit, ok := resplitter.Apply(page, pageBlocks); ok {
			logger.Debug("page re-split at fused header", "page", page.Number)
			pageBlocks = resplit
		}
		for _, b := range pageBlocks {
			linesTotal += len(b.Lines)
		}
		blocks = append(blocks, pageBlocks...)
	}

	sections, unknownCount := segmenter.Segment(ctx, blocks)

	doc := &model.Document{
		Meta: model.Meta{
			Pages:           len(pages),
			Columns:         len(blocks),
			Sections:        len(sections),
			LinesTotal:      linesTotal,
			UnknownHeadings: unknownCount,
		},
		Sections: sections,
	}
	if p.options.extractContact {
		c := contact.NewExtractor().Extract(doc)
		doc.Contact = &c
	}
	return doc, nil
}

// ParseSimplified is Parse followed by the lossless flat projection.
func (p *Parser) ParseSimplified(ctx context.Context, pages []model.Page) ([]model.SimplifiedSection, error) {
	doc, err := p.Parse(ctx, pages)
	if err != nil {
		return nil, err
	}
	return doc.Simplified(), nil
}

// pageBlocks detects the page's columns (or region bands) and builds lines.
func (p *Parser) pageBlocks(page model.Page, builder *layout.LineBuilder) ([]section.Block, error) {
	if len(page.Tokens) == 0 {
		return nil, nil
	}

	var columns []layout.Column
	if p.options.useRegions {
		detector := layout.NewRegionDetectorWithConfig(p.options.regions)
		regions, err := detector.Segment(page.Tokens, page.Width, page.Height)
		if err != nil {
			return nil, err
		}
		for _, region := range regions {
			columns = append(columns, region.Columns...)
		}
	} else {
		detector := layout.NewColumnDetectorWithConfig(p.options.columns)
		cols, err := detector.Detect(page.Tokens, page.Width)
		if err != nil {
			return nil, err
		}
		columns = cols
	}

	blocks := make([]section.Block, 0, len(columns))
	for i, col := range columns {
		blocks = append(blocks, section.Block{
			Page:        page.Number,
			ColumnIndex: i,
			XStart:      col.XStart,
			XEnd:        col.XEnd,
			SectionHint: col.SectionHint,
			Lines:       builder.Build(col.Tokens),
		})
	}
	return blocks, nil
}
