package layout

import (
	"fmt"
	"math"
	"regexp"
	"sort"

	"github.com/tsawler/cvlayout/model"
)

// Region is a horizontal band of the page with its own column structure.
// Resumes frequently mix a single-column header band with a two-column body;
// segmenting into regions first lets each band be column-split independently.
type Region struct {
	// Vertical extent of the band (top-origin: YStart < YEnd)
	YStart, YEnd float64

	// NumColumns detected within the band
	NumColumns int

	// ColumnBoundaries are the [xStart, xEnd] pairs of the band's columns,
	// left to right
	ColumnBoundaries [][2]float64

	// Confidence reflects the valley-depth strength of the column split
	// within this band, in [0,1]. Single-column bands report 1.0.
	Confidence float64

	// Tokens assigned to this band
	Tokens []model.Token

	// Columns are the band's detected columns
	Columns []Column
}

// RegionConfig holds configuration for page-into-regions segmentation.
type RegionConfig struct {
	// MinBandGap is the vertical whitespace, in page units, that separates
	// two bands. Default: 24.
	MinBandGap float64

	// MergeConfidence is the minimum split confidence for two adjacent
	// bands with identical column counts to be merged. Default: 0.7.
	MergeConfidence float64

	// Columns configures the per-band column detection.
	Columns ColumnConfig
}

// DefaultRegionConfig returns sensible default configuration.
func DefaultRegionConfig() RegionConfig {
	return RegionConfig{
		MinBandGap:      24,
		MergeConfidence: 0.7,
		Columns:         DefaultColumnConfig(),
	}
}

// RegionDetector segments a page into stacked bands before column detection.
type RegionDetector struct {
	config  RegionConfig
	columns *ColumnDetector
}

// NewRegionDetector creates a region detector with default configuration.
func NewRegionDetector() *RegionDetector {
	return NewRegionDetectorWithConfig(DefaultRegionConfig())
}

// NewRegionDetectorWithConfig creates a region detector with custom configuration.
func NewRegionDetectorWithConfig(config RegionConfig) *RegionDetector {
	if config.MinBandGap <= 0 {
		config.MinBandGap = 24
	}
	if config.MergeConfidence <= 0 {
		config.MergeConfidence = 0.7
	}
	return &RegionDetector{
		config:  config,
		columns: NewColumnDetectorWithConfig(config.Columns),
	}
}

// ruledLine matches tokens that are purely horizontal-rule glyphs.
var ruledLine = regexp.MustCompile(`^[-_=~─━┄┈]{3,}$`)

// Segment splits the page into stacked regions at horizontal separators
// (ruled-line tokens or vertical whitespace gaps) and runs column detection
// independently per region. Adjacent regions with identical column counts
// and strong split confidence are merged back together.
func (d *RegionDetector) Segment(tokens []model.Token, pageWidth, pageHeight float64) ([]Region, error) {
	if math.IsNaN(pageWidth) || pageWidth <= 0 {
		return nil, fmt.Errorf("region segmentation: invalid page width %v", pageWidth)
	}
	if len(tokens) == 0 {
		return nil, nil
	}

	bands := d.splitBands(tokens, pageWidth)

	regions := make([]Region, 0, len(bands))
	for _, band := range bands {
		cols, conf, err := d.columns.detect(band, pageWidth)
		if err != nil {
			return nil, err
		}
		regions = append(regions, makeRegion(band, cols, conf))
	}

	regions = d.mergeAdjacent(regions, pageWidth)
	return regions, nil
}

// splitBands groups tokens into vertical bands. A new band starts when the
// vertical gap to the previous token exceeds MinBandGap, or at a full-width
// ruled-line token. The rule tokens themselves are separators, not content,
// and are dropped.
func (d *RegionDetector) splitBands(tokens []model.Token, pageWidth float64) [][]model.Token {
	sorted := make([]model.Token, len(tokens))
	copy(sorted, tokens)
	sort.SliceStable(sorted, func(i, j int) bool {
		if sorted[i].Y0 != sorted[j].Y0 {
			return sorted[i].Y0 < sorted[j].Y0
		}
		return sorted[i].X0 < sorted[j].X0
	})

	var bands [][]model.Token
	var current []model.Token
	bandBottom := 0.0

	for _, tok := range sorted {
		if ruledLine.MatchString(tok.Text) && tok.Width() >= pageWidth*0.5 {
			// A full-width rule delimits bands but is not content.
			if len(current) > 0 {
				bands = append(bands, current)
				current = nil
			}
			if tok.Y1 > bandBottom {
				bandBottom = tok.Y1
			}
			continue
		}

		if len(current) == 0 {
			current = append(current, tok)
			bandBottom = tok.Y1
			continue
		}

		gap := tok.Y0 - bandBottom
		if gap >= d.config.MinBandGap {
			bands = append(bands, current)
			current = []model.Token{tok}
			bandBottom = tok.Y1
			continue
		}

		current = append(current, tok)
		if tok.Y1 > bandBottom {
			bandBottom = tok.Y1
		}
	}
	if len(current) > 0 {
		bands = append(bands, current)
	}
	return bands
}

func makeRegion(band []model.Token, cols []Column, conf float64) Region {
	yStart, yEnd := band[0].Y0, band[0].Y1
	for _, t := range band[1:] {
		if t.Y0 < yStart {
			yStart = t.Y0
		}
		if t.Y1 > yEnd {
			yEnd = t.Y1
		}
	}
	if len(cols) <= 1 {
		conf = 1.0
	}
	boundaries := make([][2]float64, len(cols))
	for i, c := range cols {
		boundaries[i] = [2]float64{c.XStart, c.XEnd}
	}
	return Region{
		YStart:           yStart,
		YEnd:             yEnd,
		NumColumns:       len(cols),
		ColumnBoundaries: boundaries,
		Confidence:       conf,
		Tokens:           band,
		Columns:          cols,
	}
}

// mergeAdjacent folds together neighbouring regions that agree on column
// count with high confidence, re-running detection on the combined tokens.
func (d *RegionDetector) mergeAdjacent(regions []Region, pageWidth float64) []Region {
	if len(regions) < 2 {
		return regions
	}

	merged := []Region{regions[0]}
	for _, r := range regions[1:] {
		last := &merged[len(merged)-1]
		if r.NumColumns == last.NumColumns &&
			r.Confidence > d.config.MergeConfidence &&
			last.Confidence > d.config.MergeConfidence {
			combined := append(append([]model.Token{}, last.Tokens...), r.Tokens...)
			cols, conf, err := d.columns.detect(combined, pageWidth)
			if err == nil && len(cols) == r.NumColumns {
				*last = makeRegion(combined, cols, conf)
				continue
			}
		}
		merged = append(merged, r)
	}
	return merged
}
