package layout

import (
	"testing"

	"github.com/tsawler/cvlayout/model"
)

// hybridPageTokens builds a header band (single column) stacked above a
// two-column body band, separated by a wide vertical gap.
func hybridPageTokens() []model.Token {
	var tokens []model.Token

	// Header band: full-width rows at the top.
	for row := 0; row < 3; row++ {
		y0 := 50 + float64(row)*16
		y1 := y0 + 12
		tokens = append(tokens,
			makeToken(72, 300, y0, y1, "header-a"),
			makeToken(310, 540, y0, y1, "header-b"),
		)
	}

	// Body band: two clusters, starting 60 units below the header.
	for row := 0; row < 6; row++ {
		y0 := 160 + float64(row)*20
		y1 := y0 + 12
		tokens = append(tokens,
			makeToken(72, 170, y0, y1, "left-a"),
			makeToken(175, 290, y0, y1, "left-b"),
			makeToken(322, 420, y0, y1, "right-a"),
			makeToken(425, 540, y0, y1, "right-b"),
		)
	}
	return tokens
}

func TestRegionDetector_EmptyInput(t *testing.T) {
	detector := NewRegionDetector()

	regions, err := detector.Segment(nil, 612, 792)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 0 {
		t.Errorf("expected no regions, got %d", len(regions))
	}
}

func TestRegionDetector_HybridLayout(t *testing.T) {
	detector := NewRegionDetector()
	tokens := hybridPageTokens()

	regions, err := detector.Segment(tokens, 612, 792)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected 2 regions, got %d", len(regions))
	}

	header, body := regions[0], regions[1]
	if header.YStart >= body.YStart {
		t.Error("regions should be ordered top to bottom")
	}
	if header.NumColumns != 1 {
		t.Errorf("expected single-column header band, got %d columns", header.NumColumns)
	}
	if body.NumColumns != 2 {
		t.Errorf("expected two-column body band, got %d columns", body.NumColumns)
	}

	total := 0
	for _, r := range regions {
		total += len(r.Tokens)
	}
	if total != len(tokens) {
		t.Errorf("regions should partition all %d tokens, got %d", len(tokens), total)
	}

	if body.Confidence <= 0 || body.Confidence > 1 {
		t.Errorf("body confidence out of range: %v", body.Confidence)
	}
	if len(body.ColumnBoundaries) != 2 {
		t.Errorf("expected 2 boundary pairs, got %d", len(body.ColumnBoundaries))
	}
}

func TestRegionDetector_MergesMatchingBands(t *testing.T) {
	detector := NewRegionDetector()

	// Two single-column paragraphs separated by a wide gap: both bands have
	// one column with full confidence, so they merge back together.
	var tokens []model.Token
	for row := 0; row < 4; row++ {
		y0 := 50 + float64(row)*16
		tokens = append(tokens, makeToken(72, 540, y0, y0+12, "para-one"))
	}
	for row := 0; row < 4; row++ {
		y0 := 200 + float64(row)*16
		tokens = append(tokens, makeToken(72, 540, y0, y0+12, "para-two"))
	}

	regions, err := detector.Segment(tokens, 612, 792)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 1 {
		t.Fatalf("expected merged single region, got %d", len(regions))
	}
	if regions[0].NumColumns != 1 {
		t.Errorf("expected 1 column, got %d", regions[0].NumColumns)
	}
	if len(regions[0].Tokens) != len(tokens) {
		t.Errorf("merged region should hold all tokens")
	}
}

func TestRegionDetector_RuledSeparator(t *testing.T) {
	detector := NewRegionDetector()

	// A ruled line splits two bands that sit closer than MinBandGap.
	var tokens []model.Token
	for row := 0; row < 4; row++ {
		y0 := 50 + float64(row)*16
		tokens = append(tokens,
			makeToken(72, 170, y0, y0+12, "top-left"),
			makeToken(175, 290, y0, y0+12, "top-left2"),
			makeToken(322, 420, y0, y0+12, "top-right"),
			makeToken(425, 540, y0, y0+12, "top-right2"),
		)
	}
	tokens = append(tokens, makeToken(72, 540, 120, 122, "------------"))
	for row := 0; row < 4; row++ {
		y0 := 130 + float64(row)*16
		tokens = append(tokens, makeToken(72, 540, y0, y0+12, "bottom"))
	}

	regions, err := detector.Segment(tokens, 612, 792)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(regions) != 2 {
		t.Fatalf("expected rule to split regions, got %d", len(regions))
	}
	if regions[0].NumColumns != 2 {
		t.Errorf("expected 2 columns above the rule, got %d", regions[0].NumColumns)
	}
	if regions[1].NumColumns != 1 {
		t.Errorf("expected 1 column below the rule, got %d", regions[1].NumColumns)
	}
	for i, region := range regions {
		for _, tok := range region.Tokens {
			if tok.Text == "------------" {
				t.Errorf("region %d kept the separator token as content", i)
			}
		}
	}
	if got := len(regions[0].Tokens) + len(regions[1].Tokens); got != len(tokens)-1 {
		t.Errorf("regions hold %d tokens, want %d", got, len(tokens)-1)
	}
}
