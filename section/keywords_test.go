package section

import (
	"strings"
	"testing"

	"github.com/tsawler/cvlayout/learn"
)

func newTestMatcher() *Matcher {
	return NewMatcher(learn.NewVocabulary(DefaultSeeds(), nil, learn.Options{}))
}

func TestNormalizeHeading(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Experience", "Experience"},
		{"EXPERIENCE:", "EXPERIENCE"},
		{"• Skills •", "Skills"},
		{"Skills & Abilities", "Skills and Abilities"},
		{"P R O F I L E", "PROFILE"},
		{"Éducation", "Education"},
		{"Work  |  History", "Work History"},
		{"  spaced   out  ", "spaced out"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := NormalizeHeading(tt.in); got != tt.want {
				t.Fatalf("NormalizeHeading(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

// Every literal variant must resolve to its canonical name as written, in
// upper case, and letter-spaced.
func TestHeadingRoundTrip(t *testing.T) {
	m := newTestMatcher()
	for _, seed := range DefaultSeeds() {
		for _, v := range seed.Variants {
			forms := []string{
				v,
				strings.ToUpper(v),
				strings.Join(strings.Split(strings.ToUpper(v), ""), " "),
			}
			for _, form := range forms {
				got, ok := m.Guess(form)
				if !ok || got != seed.Canonical {
					t.Errorf("Guess(%q) = (%q, %v), want (%q, true)", form, got, ok, seed.Canonical)
				}
			}
		}
	}
}

func TestGuessRejectsSentences(t *testing.T) {
	m := newTestMatcher()
	sentences := []string{
		"the company's experience in the field",
		"Senior engineer with 5 years experience.",
		"gained valuable skills during this role",
		"",
	}
	for _, s := range sentences {
		if got, ok := m.Guess(s); ok {
			t.Errorf("Guess(%q) = %q, want no match", s, got)
		}
	}
}

func TestMatchAllFusedHeaders(t *testing.T) {
	m := newTestMatcher()

	tests := []struct {
		in       string
		want     []string
		complete bool
	}{
		{"EXPERIENCE SKILLS", []string{"Experience", "Skills"}, true},
		{"EXPERIENCE & EDUCATION", []string{"Experience", "Education"}, true},
		{"WORK EXPERIENCE SKILLS", []string{"Experience", "Skills"}, true},
		{"EXPERIENCE", []string{"Experience"}, true},
		{"years of experience required", []string{"Experience"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			matches, complete := m.MatchAll(tt.in)
			if complete != tt.complete {
				t.Fatalf("complete = %v, want %v", complete, tt.complete)
			}
			if len(matches) != len(tt.want) {
				t.Fatalf("matches = %+v, want %v", matches, tt.want)
			}
			for i, want := range tt.want {
				if matches[i].Canonical != want {
					t.Errorf("match %d = %q, want %q", i, matches[i].Canonical, want)
				}
			}
		})
	}
}

func TestMatchAllPrefersLongestRun(t *testing.T) {
	m := newTestMatcher()
	matches, complete := m.MatchAll("WORK EXPERIENCE")
	if !complete || len(matches) != 1 || matches[0].Canonical != "Experience" {
		t.Fatalf("matches = %+v complete=%v, want single Experience", matches, complete)
	}
	if matches[0].Offset != 0 {
		t.Errorf("offset = %d, want 0", matches[0].Offset)
	}
}

func TestMatcherRefreshPicksUpLearnedVariants(t *testing.T) {
	vocab := learn.NewVocabulary(DefaultSeeds(), nil, learn.Options{})
	m := NewMatcher(vocab)

	if _, ok := m.Guess("T-O-O-L-I-N-G  I-N-V-E-N-T-O-R-Y"); ok {
		t.Fatal("variant matched before it was learned")
	}
	if err := vocab.AddVariant("Skills", "tooling inventory", false); err != nil {
		t.Fatalf("add variant: %v", err)
	}
	m.Refresh()
	if got, ok := m.Guess("T-O-O-L-I-N-G  I-N-V-E-N-T-O-R-Y"); !ok || got != "Skills" {
		t.Fatalf("Guess after refresh = (%q, %v), want (Skills, true)", got, ok)
	}
}
