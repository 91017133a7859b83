package cvlayout

import (
	"log/slog"

	"github.com/tsawler/cvlayout/layout"
	"github.com/tsawler/cvlayout/section"
)

// ParseOptions holds configuration for a parse run.
type ParseOptions struct {
	// Layout detection
	columns    layout.ColumnConfig
	regions    layout.RegionConfig
	lines      layout.LineConfig
	useRegions bool

	// Segmentation
	segmenter section.SegmenterConfig

	// Processing limits
	maxTokens int // 0 means unlimited

	// Extras
	extractContact bool
	logger         *slog.Logger
}

// defaultOptions returns the default parse options: gap-based column
// detection, contact extraction on, no token ceiling.
func defaultOptions() ParseOptions {
	return ParseOptions{
		columns:        layout.DefaultColumnConfig(),
		regions:        layout.DefaultRegionConfig(),
		lines:          layout.DefaultLineConfig(),
		segmenter:      section.DefaultSegmenterConfig(),
		useRegions:     false,
		maxTokens:      0,
		extractContact: true,
	}
}

// clone creates a copy of ParseOptions. All fields are value types, so a
// plain copy is deep enough.
func (o ParseOptions) clone() ParseOptions {
	return o
}
