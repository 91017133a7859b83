package section

import (
	"context"
	"testing"

	"github.com/tsawler/cvlayout/layout"
	"github.com/tsawler/cvlayout/model"
)

func tok(x0, x1, y0, y1 float64, text string) model.Token {
	return model.Token{Text: text, X0: x0, X1: x1, Y0: y0, Y1: y1}
}

// fusedHeaderPage builds a page whose two column headers were extracted as
// one line, with left and right body clusters below them.
func fusedHeaderPage() (model.Page, []Block) {
	tokens := []model.Token{
		// Fused header band.
		tok(50, 150, 20, 30, "EXPERIENCE"),
		tok(320, 380, 20, 30, "SKILLS"),
		// Left body.
		tok(50, 100, 50, 60, "Acme"),
		tok(105, 150, 50, 60, "Corp"),
		tok(50, 110, 70, 80, "Backend"),
		tok(115, 160, 70, 80, "work"),
		// Right body.
		tok(320, 340, 50, 60, "Go"),
		tok(345, 400, 50, 60, "Postgres"),
		tok(320, 380, 70, 80, "Kubernetes"),
		tok(320, 350, 90, 100, "Linux"),
	}
	page := model.Page{Number: 1, Width: 600, Height: 800, Tokens: tokens}

	// What the gap detector hands over when the fused header bridges the
	// gutter: one column, with the two headers joined on line 0.
	builder := layout.NewLineBuilder()
	blocks := []Block{{
		Page: 1, ColumnIndex: 0, XStart: 50, XEnd: 400,
		Lines: builder.Build(tokens),
	}}
	return page, blocks
}

func TestResplitFusedHeader(t *testing.T) {
	page, blocks := fusedHeaderPage()
	m := newTestMatcher()
	r := NewResplitter(m, layout.NewLineBuilder(), 4)

	out, split := r.Apply(page, blocks)
	if !split {
		t.Fatal("fused header page was not re-split")
	}
	if len(out) != 2 {
		t.Fatalf("got %d blocks, want 2", len(out))
	}

	left, right := out[0], out[1]
	if left.SectionHint != "Experience" || right.SectionHint != "Skills" {
		t.Fatalf("hints = %q, %q", left.SectionHint, right.SectionHint)
	}

	// Token partition: every page token in exactly one block.
	total := 0
	for _, b := range out {
		for _, line := range b.Lines {
			total += len(line.Tokens)
		}
	}
	if total != len(page.Tokens) {
		t.Errorf("re-split covers %d tokens, want %d", total, len(page.Tokens))
	}

	// The left column's top line is its own header again.
	if left.Lines[0].Text != "EXPERIENCE" {
		t.Errorf("left top line = %q, want EXPERIENCE", left.Lines[0].Text)
	}
	if right.Lines[0].Text != "SKILLS" {
		t.Errorf("right top line = %q, want SKILLS", right.Lines[0].Text)
	}
	if left.XEnd >= right.XStart {
		t.Errorf("columns overlap: left ends %v, right starts %v", left.XEnd, right.XStart)
	}
}

func TestResplitMinWordsFallback(t *testing.T) {
	page, blocks := fusedHeaderPage()
	m := newTestMatcher()
	// Floor above what either side can muster.
	r := NewResplitter(m, layout.NewLineBuilder(), 8)

	out, split := r.Apply(page, blocks)
	if split {
		t.Fatal("re-split happened despite the min-words floor")
	}
	if len(out) != 1 || out[0].ColumnIndex != blocks[0].ColumnIndex {
		t.Fatalf("original blocks not preserved: %+v", out)
	}
}

func TestResplitLeavesOrdinaryPagesAlone(t *testing.T) {
	tokens := []model.Token{
		tok(50, 150, 20, 30, "EXPERIENCE"),
		tok(50, 100, 50, 60, "Acme"),
		tok(105, 150, 50, 60, "Corp"),
	}
	page := model.Page{Number: 1, Width: 600, Height: 800, Tokens: tokens}
	builder := layout.NewLineBuilder()
	blocks := []Block{{Page: 1, ColumnIndex: 0, XStart: 50, XEnd: 150, Lines: builder.Build(tokens)}}

	out, split := NewResplitter(newTestMatcher(), builder, 2).Apply(page, blocks)
	if split {
		t.Fatal("single-header page was re-split")
	}
	if len(out) != 1 {
		t.Fatalf("blocks changed: %+v", out)
	}
}

func TestResplitEndToEndWithSegmenter(t *testing.T) {
	page, blocks := fusedHeaderPage()
	seg := newTestSegmenter()
	r := NewResplitter(seg.Matcher(), layout.NewLineBuilder(), 4)

	out, split := r.Apply(page, blocks)
	if !split {
		t.Fatal("expected re-split")
	}
	sections, _ := seg.Segment(context.Background(), out)

	names := sectionNames(sections)
	var exp, skills []string
	for _, s := range sections {
		switch s.Name {
		case "Experience":
			exp = sectionTexts(s)
		case "Skills":
			skills = sectionTexts(s)
		}
	}
	if exp == nil || skills == nil {
		t.Fatalf("sections = %v, want Experience and Skills", names)
	}
	if len(exp) != 2 || exp[0] != "Acme Corp" {
		t.Errorf("Experience lines = %v", exp)
	}
	if len(skills) != 3 || skills[0] != "Go Postgres" {
		t.Errorf("Skills lines = %v", skills)
	}
}
