package layout

import (
	"testing"

	"github.com/tsawler/cvlayout/model"
)

func TestLineBuilder_EmptyInput(t *testing.T) {
	builder := NewLineBuilder()

	if lines := builder.Build(nil); lines != nil {
		t.Errorf("expected nil for empty input, got %d lines", len(lines))
	}
}

func TestLineBuilder_GroupsByVerticalOverlap(t *testing.T) {
	builder := NewLineBuilder()

	tokens := []model.Token{
		makeToken(72, 120, 100, 112, "First"),
		makeToken(125, 180, 100, 112, "line"),
		makeToken(185, 230, 101, 113, "here"), // slight baseline jitter
		makeToken(72, 140, 130, 142, "Second"),
		makeToken(145, 200, 130, 142, "line"),
	}

	lines := builder.Build(tokens)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "First line here" {
		t.Errorf("unexpected first line text: %q", lines[0].Text)
	}
	if lines[1].Text != "Second line" {
		t.Errorf("unexpected second line text: %q", lines[1].Text)
	}
	if lines[0].Index != 0 || lines[1].Index != 1 {
		t.Error("line indexes should be dense and zero-based")
	}
}

func TestLineBuilder_OutOfOrderTokens(t *testing.T) {
	builder := NewLineBuilder()

	// Tokens delivered right-to-left and bottom-to-top.
	tokens := []model.Token{
		makeToken(145, 200, 130, 142, "world"),
		makeToken(125, 180, 100, 112, "line"),
		makeToken(72, 140, 130, 142, "hello"),
		makeToken(72, 120, 100, 112, "top"),
	}

	lines := builder.Build(tokens)
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}
	if lines[0].Text != "top line" {
		t.Errorf("unexpected first line: %q", lines[0].Text)
	}
	if lines[1].Text != "hello world" {
		t.Errorf("unexpected second line: %q", lines[1].Text)
	}
}

func TestLineBuilder_Metrics(t *testing.T) {
	builder := NewLineBuilder()

	bold := model.Token{Text: "HEADING", X0: 72, X1: 160, Y0: 100, Y1: 116, FontSize: 16, Bold: true, FontName: "Helvetica-Bold"}
	body1 := makeToken(72, 140, 140, 152, "body")
	body2 := makeToken(145, 220, 140, 152, "text")

	lines := builder.Build([]model.Token{bold, body1, body2})
	if len(lines) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(lines))
	}

	h := lines[0]
	if h.BoldRatio != 1.0 {
		t.Errorf("expected bold ratio 1.0, got %v", h.BoldRatio)
	}
	if h.AvgSpanFontSize != 16 {
		t.Errorf("expected span font size 16, got %v", h.AvgSpanFontSize)
	}
	if h.EffectiveFontSize() != 16 {
		t.Errorf("expected effective font size 16, got %v", h.EffectiveFontSize())
	}
	if h.DominantFont != "Helvetica-Bold" {
		t.Errorf("unexpected dominant font %q", h.DominantFont)
	}
	if h.WordCount != 1 || h.CharCount != 7 {
		t.Errorf("unexpected counts: words=%d chars=%d", h.WordCount, h.CharCount)
	}

	b := lines[1]
	if b.BoldRatio != 0 {
		t.Errorf("expected bold ratio 0, got %v", b.BoldRatio)
	}
	if b.WordCount != 2 {
		t.Errorf("expected 2 words, got %d", b.WordCount)
	}

	// Spacing: gap between line bottoms/tops is 140-116 = 24.
	if h.SpaceAbove != 0 {
		t.Errorf("first line should have zero space above, got %v", h.SpaceAbove)
	}
	if h.SpaceBelow != 24 || b.SpaceAbove != 24 {
		t.Errorf("expected 24-unit gap, got below=%v above=%v", h.SpaceBelow, b.SpaceAbove)
	}
	if b.SpaceBelow != 0 {
		t.Errorf("last line should have zero space below, got %v", b.SpaceBelow)
	}
}

func TestLineBuilder_GeometricFontFallback(t *testing.T) {
	builder := NewLineBuilder()

	// No backend font sizes: the geometric proxy (token height) applies.
	tok := model.Token{Text: "word", X0: 72, X1: 120, Y0: 100, Y1: 114}
	lines := builder.Build([]model.Token{tok})

	if len(lines) != 1 {
		t.Fatalf("expected 1 line, got %d", len(lines))
	}
	if lines[0].AvgSpanFontSize != 0 {
		t.Errorf("expected no span font size, got %v", lines[0].AvgSpanFontSize)
	}
	if lines[0].EffectiveFontSize() != 14 {
		t.Errorf("expected geometric font size 14, got %v", lines[0].EffectiveFontSize())
	}
}

func TestLineBuilder_WideTokenDoesNotMergeStackedLines(t *testing.T) {
	builder := NewLineBuilderWithConfig(LineConfig{YTolerance: 1.0})

	// Two stacked, non-overlapping lines plus a tall decorative token that
	// vertically spans both. Nearest-group-only clustering must not let the
	// tall token glue the third line into the first two.
	tokens := []model.Token{
		makeToken(72, 200, 100, 112, "upper"),
		makeToken(72, 200, 120, 132, "middle"),
		makeToken(72, 200, 140, 152, "lower"),
	}

	lines := builder.Build(tokens)
	if len(lines) != 3 {
		t.Fatalf("expected 3 distinct lines, got %d", len(lines))
	}
}

func TestLine_Boundaries(t *testing.T) {
	builder := NewLineBuilder()
	lines := builder.Build([]model.Token{
		makeToken(72, 140, 100, 112, "a"),
		makeToken(150, 220, 100, 112, "b"),
	})

	bd := lines[0].Boundaries()
	if bd.X0 != 72 || bd.X1 != 220 || bd.Top != 100 || bd.Bottom != 112 {
		t.Errorf("unexpected boundaries: %+v", bd)
	}
	if bd.Width != 148 || bd.Height != 12 {
		t.Errorf("unexpected dimensions: %+v", bd)
	}
}
