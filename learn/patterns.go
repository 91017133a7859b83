package learn

import "strings"

// patternRule maps content words in a heading to the canonical section they
// indicate. Rules are checked in order and the first hit wins, so the more
// specific rules sit first.
type patternRule struct {
	canonical  string
	confidence float64
	words      []string
}

// patternRules is ordered. Keep it deterministic: the segmenter and the
// proposal gate both depend on the same heading always resolving the same
// way.
var patternRules = []patternRule{
	{"Experience", 0.90, []string{"engineer", "developer", "manager", "analyst", "consultant", "architect", "director", "specialist"}},
	{"Experience", 0.75, []string{"experience", "employment", "career", "work history"}},
	{"Education", 0.80, []string{"university", "college", "degree", "bachelor", "master", "phd", "diploma", "academic"}},
	{"Certifications", 0.80, []string{"certified", "certification", "license", "licensure", "credential"}},
	{"Skills", 0.75, []string{"skill", "expertise", "competenc", "proficienc", "technologies", "tooling"}},
	{"Achievements", 0.75, []string{"award", "achievement", "honor", "honour", "accomplishment"}},
	{"Languages", 0.75, []string{"language", "fluent", "bilingual", "multilingual"}},
	{"Volunteer", 0.75, []string{"volunteer", "volunteering", "community service"}},
	{"Publications", 0.75, []string{"publication", "published", "paper", "journal"}},
	{"Projects", 0.70, []string{"project", "portfolio"}},
}

// LearnFromPattern infers a canonical section for a heading from content-word
// patterns, without any vocabulary lookup. It returns the section, a rule
// confidence, and whether any rule matched.
func LearnFromPattern(text string) (string, float64, bool) {
	folded := " " + foldKey(text) + " "
	for _, rule := range patternRules {
		for _, w := range rule.words {
			if strings.Contains(folded, w) {
				return rule.canonical, rule.confidence, true
			}
		}
	}
	return "", 0, false
}
