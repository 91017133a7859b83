package cvlayout

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"testing"

	"github.com/tsawler/cvlayout/model"
)

// wordsAt lays the words out left to right on one text row.
func wordsAt(y float64, words ...string) []model.Token {
	toks := make([]model.Token, 0, len(words))
	x := 72.0
	for _, w := range words {
		width := 7 * float64(len(w))
		toks = append(toks, model.Token{Text: w, X0: x, X1: x + width, Y0: y, Y1: y + 10})
		x += width + 5
	}
	return toks
}

func resumePage() model.Page {
	var tokens []model.Token
	rows := [][]string{
		{"JOHN", "SMITH"},
		{"SUMMARY"},
		{"Senior", "engineer", "with", "5", "years", "experience."},
		{"EXPERIENCE"},
		{"Acme", "Corp", "-", "Backend", "Developer"},
		{"EDUCATION"},
		{"BS", "Computer", "Science"},
	}
	y := 72.0
	for _, row := range rows {
		tokens = append(tokens, wordsAt(y, row...)...)
		y += 22
	}
	return model.Page{Number: 1, Width: 612, Height: 792, Tokens: tokens}
}

func TestParseResume(t *testing.T) {
	doc, err := New().Parse(context.Background(), []model.Page{resumePage()})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []struct {
		name string
		line string
	}{
		{"Contact Information", "JOHN SMITH"},
		{"Summary", "Senior engineer with 5 years experience."},
		{"Experience", "Acme Corp - Backend Developer"},
		{"Education", "BS Computer Science"},
	}
	if len(doc.Sections) != len(want) {
		names := make([]string, len(doc.Sections))
		for i, s := range doc.Sections {
			names[i] = s.Name
		}
		t.Fatalf("sections = %v, want 4", names)
	}
	for i, w := range want {
		s := doc.Sections[i]
		if s.Name != w.name {
			t.Errorf("section %d = %q, want %q", i, s.Name, w.name)
		}
		if len(s.Lines) != 1 || s.Lines[0].Text != w.line {
			t.Errorf("section %q lines = %+v, want [%q]", w.name, s.Lines, w.line)
		}
	}

	if doc.Meta.Pages != 1 || doc.Meta.Sections != 4 || doc.Meta.LinesTotal != 7 {
		t.Errorf("meta = %+v", doc.Meta)
	}
	if doc.Meta.UnknownHeadings != 0 {
		t.Errorf("unknown headings = %d, want 0", doc.Meta.UnknownHeadings)
	}
	if doc.Contact.Name != "JOHN SMITH" {
		t.Errorf("contact name = %q", doc.Contact.Name)
	}
}

func TestParseIdempotent(t *testing.T) {
	pages := []model.Page{resumePage()}

	first, err := New().Parse(context.Background(), pages)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	a, err := json.Marshal(first)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		doc, err := New().Parse(context.Background(), pages)
		if err != nil {
			t.Fatalf("Parse run %d: %v", i, err)
		}
		b, err := json.Marshal(doc)
		if err != nil {
			t.Fatal(err)
		}
		if string(a) != string(b) {
			t.Fatalf("run %d output differs", i)
		}
	}
}

func TestParseEmptyInput(t *testing.T) {
	doc, err := New().Parse(context.Background(), nil)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(doc.Sections) != 0 || doc.Meta.LinesTotal != 0 {
		t.Fatalf("empty input produced %+v", doc)
	}

	empty := model.Page{Number: 1, Width: 612, Height: 792}
	doc, err = New().Parse(context.Background(), []model.Page{empty})
	if err != nil {
		t.Fatalf("Parse empty page: %v", err)
	}
	if len(doc.Sections) != 0 {
		t.Fatalf("empty page produced sections: %+v", doc.Sections)
	}
}

func TestParseMalformedToken(t *testing.T) {
	page := resumePage()
	page.Tokens[0].X0 = math.NaN()

	_, err := New().Parse(context.Background(), []model.Page{page})
	if !errors.Is(err, model.ErrMalformedToken) {
		t.Fatalf("expected ErrMalformedToken, got %v", err)
	}
}

func TestParseTokenCeiling(t *testing.T) {
	_, err := New().WithMaxTokens(3).Parse(context.Background(), []model.Page{resumePage()})
	if !errors.Is(err, ErrTooManyTokens) {
		t.Fatalf("expected ErrTooManyTokens, got %v", err)
	}
}

func TestParserChainIsImmutable(t *testing.T) {
	base := New()
	limited := base.WithMaxTokens(3)

	if _, err := base.Parse(context.Background(), []model.Page{resumePage()}); err != nil {
		t.Fatalf("base parser affected by chained option: %v", err)
	}
	if _, err := limited.Parse(context.Background(), []model.Page{resumePage()}); !errors.Is(err, ErrTooManyTokens) {
		t.Fatal("chained option lost")
	}
}

func TestParseWithoutContact(t *testing.T) {
	doc, err := New().WithoutContact().Parse(context.Background(), []model.Page{resumePage()})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Contact != nil {
		t.Errorf("contact = %+v, want nil", doc.Contact)
	}
}

func TestParseSimplified(t *testing.T) {
	simplified, err := New().ParseSimplified(context.Background(), []model.Page{resumePage()})
	if err != nil {
		t.Fatalf("ParseSimplified: %v", err)
	}
	if len(simplified) != 4 {
		t.Fatalf("got %d sections", len(simplified))
	}
	if simplified[1].Name != "Summary" || simplified[1].Lines[0] != "Senior engineer with 5 years experience." {
		t.Errorf("simplified[1] = %+v", simplified[1])
	}
}

func TestParseTwoColumn(t *testing.T) {
	var tokens []model.Token
	// Left column: x 72..252; right column: x 360..540. Gutter ~108 units.
	leftRows := [][]string{{"EXPERIENCE"}, {"Acme", "Corp", "role"}, {"More", "detail", "here"}}
	y := 72.0
	for _, row := range leftRows {
		tokens = append(tokens, wordsAt(y, row...)...)
		y += 22
	}
	rightRows := []string{"SKILLS", "Go", "Postgres", "Kubernetes"}
	y = 72.0
	for _, w := range rightRows {
		width := 7 * float64(len(w))
		tokens = append(tokens, model.Token{Text: w, X0: 360, X1: 360 + width, Y0: y, Y1: y + 10})
		y += 22
	}
	page := model.Page{Number: 1, Width: 612, Height: 792, Tokens: tokens}

	doc, err := New().Parse(context.Background(), []model.Page{page})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if doc.Meta.Columns != 2 {
		t.Fatalf("columns = %d, want 2", doc.Meta.Columns)
	}

	byName := map[string][]string{}
	for _, s := range doc.Sections {
		for _, l := range s.Lines {
			byName[s.Name] = append(byName[s.Name], l.Text)
		}
	}
	if got := byName["Experience"]; len(got) != 2 {
		t.Errorf("Experience lines = %v", got)
	}
	if got := byName["Skills"]; len(got) != 3 {
		t.Errorf("Skills lines = %v", got)
	}
}
