package section

import (
	"strings"
	"sync"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/tsawler/cvlayout/learn"
)

// Canonical section names, in the order they are registered with the
// vocabulary. ContactSection is also the segmenter's implicit first section.
const (
	ContactSection = "Contact Information"
	UnknownSection = "Unknown Sections"
)

// DefaultSeeds returns the built-in canonical sections and their literal
// phrase variants. Variants are matched after normalization, so casing,
// trailing colons and letter-spacing do not need separate entries here.
func DefaultSeeds() []learn.Seed {
	return []learn.Seed{
		{Canonical: ContactSection, Variants: []string{
			"contact", "contact info", "contact information", "contact details",
			"personal information", "personal details", "personal data", "personal profile",
			"about me", "bio data", "biodata",
		}},
		{Canonical: "Summary", Variants: []string{
			"summary", "professional summary", "executive summary", "career summary",
			"profile", "profile summary", "career profile", "professional profile",
			"objective", "career objective", "professional objective", "objective statement",
			"overview", "career overview", "introduction", "highlights", "career highlights",
			"summary of qualifications", "statement of purpose",
		}},
		{Canonical: "Skills", Variants: []string{
			"skills", "skill set", "skillset", "key skills", "core skills", "technical skills",
			"soft skills", "hard skills", "skills and abilities", "skills and interests",
			"core competencies", "competencies", "areas of expertise", "expertise",
			"technical expertise", "technical proficiencies", "proficiencies",
			"technologies", "technology stack", "tech stack", "tools and technologies",
			"strengths", "key strengths", "qualifications", "technical qualifications",
			"computer skills", "it skills", "programming languages",
		}},
		{Canonical: "Experience", Variants: []string{
			"experience", "work experience", "professional experience", "employment",
			"employment history", "work history", "career history", "job history",
			"professional background", "professional history", "relevant experience",
			"industry experience", "internships", "internship experience",
			"work experience and internships", "experience and employment",
		}},
		{Canonical: "Projects", Variants: []string{
			"projects", "project", "key projects", "personal projects", "academic projects",
			"side projects", "selected projects", "project experience", "project work",
			"portfolio", "notable projects", "open source projects", "open source contributions",
		}},
		{Canonical: "Education", Variants: []string{
			"education", "educational background", "educational qualifications",
			"academic background", "academic qualifications", "academic history",
			"academics", "academic record", "education and training", "training",
			"qualifications and education", "coursework", "relevant coursework",
			"schooling", "degrees",
		}},
		{Canonical: "Certifications", Variants: []string{
			"certifications", "certification", "certificates", "certificate",
			"professional certifications", "licenses", "licenses and certifications",
			"certifications and licenses", "credentials", "professional development",
			"courses", "courses and certifications", "online courses",
		}},
		{Canonical: "Achievements", Variants: []string{
			"achievements", "accomplishments", "awards", "honors", "honours",
			"awards and honors", "awards and achievements", "honors and awards",
			"accolades", "recognition", "notable achievements", "key achievements",
			"scholarships", "scholarships and awards",
		}},
		{Canonical: "Publications", Variants: []string{
			"publications", "publication", "papers", "selected publications",
			"journal publications", "conference papers", "articles", "books",
			"patents", "patents and publications",
		}},
		{Canonical: "Research", Variants: []string{
			"research", "research experience", "research interests", "research work",
			"research projects", "thesis", "dissertation",
		}},
		{Canonical: "Languages", Variants: []string{
			"languages", "language", "languages known", "language skills",
			"language proficiency", "spoken languages", "foreign languages",
		}},
		{Canonical: "Volunteer", Variants: []string{
			"volunteer", "volunteering", "volunteer experience", "volunteer work",
			"community service", "community involvement", "social work",
			"extracurricular activities", "extracurriculars", "co-curricular activities",
			"leadership", "leadership experience", "activities",
		}},
		{Canonical: "Hobbies", Variants: []string{
			"hobbies", "interests", "hobbies and interests", "interests and hobbies",
			"personal interests", "outside interests",
		}},
		{Canonical: "Additional Information", Variants: []string{
			"additional information", "additional details", "miscellaneous",
			"other information", "additional", "addendum", "annexure",
			"availability", "work authorization",
		}},
		{Canonical: "References", Variants: []string{
			"references", "reference", "referees", "references available upon request",
			"references available on request",
		}},
		{Canonical: "Declarations", Variants: []string{
			"declaration", "declarations", "statement of declaration",
		}},
	}
}

// headingCleaner folds diacritics so "Éducation" matches "education".
var headingCleaner = transform.Chain(
	norm.NFKD,
	runes.Remove(runes.In(unicode.Mn)),
	norm.NFC,
)

// NormalizeHeading canonicalizes a heading for vocabulary lookup: decorative
// separators dropped, "&" expanded, letter-spaced text collapsed, diacritics
// folded, and everything outside [A-Za-z0-9\s:.-] removed. The result keeps
// the original casing; lookups fold case themselves.
func NormalizeHeading(text string) string {
	if folded, _, err := transform.String(headingCleaner, text); err == nil {
		text = folded
	}
	text = strings.NewReplacer("•", " ", "·", " ", "|", " ", "&", " and ").Replace(text)

	fields := strings.Fields(text)
	if collapsed, ok := collapseLetterSpacing(fields); ok {
		fields = collapsed
	}

	var b strings.Builder
	for i, f := range fields {
		if i > 0 {
			b.WriteByte(' ')
		}
		for _, r := range f {
			switch {
			case r >= 'A' && r <= 'Z', r >= 'a' && r <= 'z', r >= '0' && r <= '9':
				b.WriteRune(r)
			case r == ':' || r == '.' || r == '-':
				b.WriteRune(r)
			}
		}
	}
	out := strings.Join(strings.Fields(b.String()), " ")
	return strings.TrimSuffix(out, ":")
}

// collapseLetterSpacing rejoins stylized headings like "P R O F I L E".
// It fires only when every token is a single alphabetic rune, so ordinary
// short words ("IT Skills") are untouched.
func collapseLetterSpacing(fields []string) ([]string, bool) {
	if len(fields) < 3 {
		return nil, false
	}
	var b strings.Builder
	for _, f := range fields {
		r := []rune(f)
		if len(r) != 1 || !unicode.IsLetter(r[0]) {
			return nil, false
		}
		b.WriteRune(r[0])
	}
	return []string{b.String()}, true
}

// despace strips everything except lowercase letters and digits, the most
// aggressive fold. "E-X-P-E-R-I-E-N-C-E" and "Experience" collide here.
func despace(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// Match is one recognized section name inside a heading line.
type Match struct {
	Canonical string
	Text      string // the matched slice of the original line
	Offset    int    // byte offset of the match within the original line
}

// Matcher resolves heading text to canonical section names through the
// vocabulary. It layers three lookups: normalized exact match, despaced
// match, and a token-run scan that recognizes several concatenated section
// names on one line.
type Matcher struct {
	vocab *learn.Vocabulary

	mu       sync.Mutex
	despaced map[string]string
	maxRun   int
	indexed  int // variant count at last reindex
}

// NewMatcher builds a matcher over the vocabulary.
func NewMatcher(vocab *learn.Vocabulary) *Matcher {
	m := &Matcher{vocab: vocab}
	m.reindex()
	return m
}

// reindex rebuilds the despaced lookup table from the current vocabulary.
// Cheap enough to re-run whenever the vocabulary has grown.
func (m *Matcher) reindex() {
	m.mu.Lock()
	defer m.mu.Unlock()

	idx := make(map[string]string)
	maxRun := 1
	total := 0
	for _, canonical := range m.vocab.Canonicals() {
		for _, v := range m.vocab.Variants(canonical) {
			total++
			key := despace(v)
			if key == "" {
				continue
			}
			if _, taken := idx[key]; !taken {
				idx[key] = canonical
			}
			if n := len(strings.Fields(v)); n > maxRun {
				maxRun = n
			}
		}
	}
	m.despaced = idx
	m.maxRun = maxRun
	m.indexed = total
}

func (m *Matcher) lookupDespaced(s string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	canonical, ok := m.despaced[despace(s)]
	return canonical, ok
}

// Refresh re-reads the vocabulary if variants were learned since the last
// index build.
func (m *Matcher) Refresh() {
	total := 0
	for _, c := range m.vocab.Canonicals() {
		total += len(m.vocab.Variants(c))
	}
	m.mu.Lock()
	stale := total != m.indexed
	m.mu.Unlock()
	if stale {
		m.reindex()
	}
}

// Guess resolves a heading to a canonical section name. It tries the
// normalized exact lookup, then the despaced lookup, then the token-run
// scan — the last only succeeds when every word of the line participates in
// a match, so keywords quoted inside sentences do not count.
func (m *Matcher) Guess(text string) (string, bool) {
	normalized := NormalizeHeading(text)
	if normalized == "" {
		return "", false
	}
	if canonical, ok := m.vocab.FindExact(normalized); ok {
		return canonical, true
	}
	if canonical, ok := m.lookupDespaced(normalized); ok {
		return canonical, true
	}
	matches, complete := m.MatchAll(text)
	if complete && len(matches) > 0 {
		return matches[0].Canonical, true
	}
	return "", false
}

// MatchAll scans the line for concatenated section names. It returns the
// matches in left-to-right order and whether every word of the line took
// part in some match. Only a complete cover is trustworthy: "5 years of
// experience" contains the Experience keyword but is not a heading.
func (m *Matcher) MatchAll(text string) ([]Match, bool) {
	words := splitWords(text)
	if len(words) == 0 {
		return nil, false
	}

	m.mu.Lock()
	maxRun := m.maxRun
	m.mu.Unlock()

	var matches []Match
	complete := true
	for i := 0; i < len(words); {
		matched := false
		limit := maxRun
		if rest := len(words) - i; rest < limit {
			limit = rest
		}
		// Longest run first so "work experience" beats "experience".
		for n := limit; n >= 1 && !matched; n-- {
			phrase := joinWords(words[i : i+n])
			canonical, ok := m.vocab.FindExact(NormalizeHeading(phrase))
			if !ok {
				canonical, ok = m.lookupDespaced(phrase)
			}
			if ok {
				matches = append(matches, Match{
					Canonical: canonical,
					Text:      phrase,
					Offset:    words[i].offset,
				})
				i += n
				matched = true
			}
		}
		if !matched {
			complete = false
			i++
		}
	}
	return matches, complete
}

type word struct {
	text   string
	offset int
}

// splitWords tokenizes on whitespace and the separator glyphs that join
// concatenated headings, keeping byte offsets into the original string.
func splitWords(text string) []word {
	isSep := func(r rune) bool {
		return unicode.IsSpace(r) || r == '|' || r == '&' || r == '•' || r == '·' || r == '/'
	}
	var words []word
	start := -1
	for i, r := range text {
		if isSep(r) {
			if start >= 0 {
				words = append(words, word{text: text[start:i], offset: start})
				start = -1
			}
			continue
		}
		if start < 0 {
			start = i
		}
	}
	if start >= 0 {
		words = append(words, word{text: text[start:], offset: start})
	}
	return words
}

func joinWords(ws []word) string {
	parts := make([]string, len(ws))
	for i, w := range ws {
		parts[i] = w.text
	}
	return strings.Join(parts, " ")
}
