package learn

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"
)

// Default tuning values. All of them are empirical and exposed through
// Options so deployments can recalibrate for a different embedding model.
const (
	DefaultClassifyThreshold    = 0.68
	DefaultProposeMinFrequency  = 3
	DefaultProposeMinConfidence = 0.80
)

// Seed is a built-in canonical section with its initial phrase variants.
type Seed struct {
	Canonical string
	Variants  []string
}

// Entry is the in-memory state of one canonical section.
type Entry struct {
	Canonical           string
	Variants            []string
	ConfidenceThreshold float64
}

// Options configures a Vocabulary.
type Options struct {
	// ClassifyThreshold is the minimum embedding similarity for
	// FindMatchingSection to accept a non-exact match. Default: 0.68.
	ClassifyThreshold float64

	// ProposeMinFrequency is the minimum cross-document frequency before a
	// new canonical section may be created. Default: 3.
	ProposeMinFrequency int

	// ProposeMinConfidence is the similarity above which a proposed section
	// is considered redundant with an existing one. Default: 0.80.
	ProposeMinConfidence float64

	// Classifier enables embedding classification. Nil disables it; that
	// is a configuration fact, not an error.
	Classifier Classifier

	// Logger for store-degradation warnings. Nil means slog.Default().
	Logger *slog.Logger
}

func (o *Options) defaults() {
	if o.ClassifyThreshold <= 0 {
		o.ClassifyThreshold = DefaultClassifyThreshold
	}
	if o.ProposeMinFrequency <= 0 {
		o.ProposeMinFrequency = DefaultProposeMinFrequency
	}
	if o.ProposeMinConfidence <= 0 {
		o.ProposeMinConfidence = DefaultProposeMinConfidence
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
}

// Vocabulary is the process-wide section vocabulary: built-in seeds plus
// everything learned from the backing store. Reads are cheap; writes are
// serialized and flushed to the store before returning.
type Vocabulary struct {
	mu             sync.RWMutex
	order          []string          // canonical names, first-appearance order
	entries        map[string]*Entry // canonical name -> entry
	variantIndex   map[string]string // folded variant -> canonical name
	falsePositives map[string]bool   // folded heading -> marked
	store          Store             // nil = in-memory only
	opts           Options
	logger         *slog.Logger
}

// NewVocabulary builds a vocabulary from the seeds and replays the backing
// store. A corrupt store is logged and ignored: the vocabulary falls back
// to the built-in sections only. The store may be nil for in-memory use.
func NewVocabulary(seeds []Seed, store Store, opts Options) *Vocabulary {
	opts.defaults()
	v := &Vocabulary{
		entries:        make(map[string]*Entry),
		variantIndex:   make(map[string]string),
		falsePositives: make(map[string]bool),
		store:          store,
		opts:           opts,
		logger:         opts.Logger,
	}

	for _, s := range seeds {
		v.ensureEntry(s.Canonical)
		for _, variant := range s.Variants {
			v.indexVariant(s.Canonical, variant)
		}
	}

	if store != nil {
		records, err := store.Load()
		if err != nil {
			v.logger.Warn("vocabulary store unreadable, using built-in sections only", "error", err)
		} else {
			for _, rec := range records {
				if rec.IsFalsePositive() {
					v.falsePositives[foldKey(rec.Header)] = true
					continue
				}
				if rec.Canonical == "" {
					continue
				}
				v.ensureEntry(rec.Canonical)
				v.indexVariant(rec.Canonical, rec.Header)
			}
		}
	}

	return v
}

// ensureEntry registers a canonical name, preserving first-appearance order.
// Caller holds the write path exclusively (construction or locked mutation).
func (v *Vocabulary) ensureEntry(canonical string) *Entry {
	if e, ok := v.entries[canonical]; ok {
		return e
	}
	e := &Entry{Canonical: canonical}
	v.entries[canonical] = e
	v.order = append(v.order, canonical)
	v.indexVariant(canonical, canonical)
	return e
}

func (v *Vocabulary) indexVariant(canonical, variant string) {
	key := foldKey(variant)
	if key == "" {
		return
	}
	e := v.entries[canonical]
	if _, taken := v.variantIndex[key]; !taken {
		v.variantIndex[key] = canonical
	}
	for _, existing := range e.Variants {
		if foldKey(existing) == key {
			return
		}
	}
	e.Variants = append(e.Variants, variant)
}

// Canonicals returns the canonical section names in first-appearance order.
func (v *Vocabulary) Canonicals() []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	out := make([]string, len(v.order))
	copy(out, v.order)
	return out
}

// Variants returns a copy of the variant list for a canonical section.
func (v *Vocabulary) Variants(canonical string) []string {
	v.mu.RLock()
	defer v.mu.RUnlock()
	e, ok := v.entries[canonical]
	if !ok {
		return nil
	}
	out := make([]string, len(e.Variants))
	copy(out, e.Variants)
	return out
}

// FindExact resolves a phrase through the variant index only.
func (v *Vocabulary) FindExact(phrase string) (string, bool) {
	v.mu.RLock()
	defer v.mu.RUnlock()
	canonical, ok := v.variantIndex[foldKey(phrase)]
	return canonical, ok
}

// FindMatchingSection resolves a heading to a canonical section. An exact
// variant match scores 1.0. Otherwise, when a classifier is configured, the
// heading is scored against every section's combined keyword corpus and the
// best match at or above the threshold wins.
func (v *Vocabulary) FindMatchingSection(ctx context.Context, heading string) (string, float64, bool) {
	if canonical, ok := v.FindExact(heading); ok {
		return canonical, 1.0, true
	}
	if v.opts.Classifier == nil {
		return "", 0, false
	}

	v.mu.RLock()
	type corpus struct {
		canonical string
		text      string
		threshold float64
	}
	corpora := make([]corpus, 0, len(v.order))
	for _, name := range v.order {
		e := v.entries[name]
		threshold := e.ConfidenceThreshold
		if threshold <= 0 {
			threshold = v.opts.ClassifyThreshold
		}
		corpora = append(corpora, corpus{
			canonical: name,
			text:      name + " " + strings.Join(e.Variants, " "),
			threshold: threshold,
		})
	}
	v.mu.RUnlock()

	bestName := ""
	bestScore := 0.0
	for _, c := range corpora {
		score, err := v.opts.Classifier.Score(ctx, heading, c.text)
		if err != nil {
			v.logger.Warn("embedding classification failed", "heading", heading, "error", err)
			return "", 0, false
		}
		if score >= c.threshold && score > bestScore {
			bestName = c.canonical
			bestScore = score
		}
	}
	if bestName == "" {
		return "", 0, false
	}
	return bestName, bestScore, true
}

// AddVariant appends a phrase to a canonical section's variant list and
// flushes it to the store. Adding an already-known variant is a no-op.
// When the canonical section does not exist and autoLearn is set, the
// pattern learner is consulted for a legitimate home first; without one the
// variant is rejected.
func (v *Vocabulary) AddVariant(canonical, variant string, autoLearn bool) error {
	v.mu.Lock()
	_, exists := v.entries[canonical]
	v.mu.Unlock()

	if !exists {
		if !autoLearn {
			return fmt.Errorf("unknown canonical section %q", canonical)
		}
		learned, _, ok := LearnFromPattern(variant)
		if !ok {
			return fmt.Errorf("unknown canonical section %q and no pattern match for %q", canonical, variant)
		}
		canonical = learned
	}

	v.mu.Lock()
	v.ensureEntry(canonical)
	before := len(v.entries[canonical].Variants)
	v.indexVariant(canonical, variant)
	changed := len(v.entries[canonical].Variants) != before
	v.mu.Unlock()

	if !changed || v.store == nil {
		return nil
	}
	return v.store.Append(Record{Canonical: canonical, Header: variant})
}

// MarkFalsePositive permanently excludes a heading from future proposals.
func (v *Vocabulary) MarkFalsePositive(heading string) error {
	key := foldKey(heading)
	v.mu.Lock()
	already := v.falsePositives[key]
	v.falsePositives[key] = true
	v.mu.Unlock()

	if already || v.store == nil {
		return nil
	}
	return v.store.Append(FalsePositiveRecord(heading))
}

// IsFalsePositive reports whether the heading was previously rejected.
func (v *Vocabulary) IsFalsePositive(heading string) bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.falsePositives[foldKey(heading)]
}

// genericWords are single words too vague to name a section.
var genericWords = map[string]bool{
	"details":     true,
	"information": true,
	"misc":        true,
	"other":       true,
	"general":     true,
}

// companySuffixes betray an employer name, not a section heading.
var companySuffixes = []string{"inc", "inc.", "corp", "corp.", "ltd", "ltd.", "llc", "gmbh", "co.", "pvt"}

// ProposeNewSection gates the creation of an entirely new canonical section
// from batch observations. The heading must recur across documents, must
// not be a known false positive, must not be redundant with an existing
// section, and must not look like a data row rather than a heading. On
// acceptance the section is created and persisted.
func (v *Vocabulary) ProposeNewSection(ctx context.Context, heading string, frequency int, contextLines []string) bool {
	if frequency < v.opts.ProposeMinFrequency {
		return false
	}
	if v.IsFalsePositive(heading) {
		return false
	}
	if looksLikeFalsePositive(heading, contextLines) {
		return false
	}

	// Redundant with an existing section?
	if _, ok := v.FindExact(heading); ok {
		return false
	}
	if v.opts.Classifier != nil {
		if _, score, ok := v.FindMatchingSection(ctx, heading); ok && score >= v.opts.ProposeMinConfidence {
			return false
		}
	}
	if learned, _, ok := LearnFromPattern(heading); ok {
		// The pattern learner already has a home for it: record the
		// variant there instead of creating a duplicate section.
		if err := v.AddVariant(learned, heading, true); err != nil {
			v.logger.Warn("variant learn failed", "heading", heading, "error", err)
		}
		return false
	}

	canonical := titleCase(heading)
	v.mu.Lock()
	v.ensureEntry(canonical)
	v.mu.Unlock()

	if v.store != nil {
		if err := v.store.Append(Record{Canonical: canonical, Header: heading}); err != nil {
			v.logger.Warn("vocabulary persist failed", "canonical", canonical, "error", err)
		}
	}
	return true
}

// looksLikeFalsePositive applies the cheap heuristics that catch data rows
// and employer names masquerading as headings.
func looksLikeFalsePositive(heading string, contextLines []string) bool {
	trimmed := strings.TrimSpace(heading)
	if len(trimmed) <= 2 {
		return true
	}
	for _, r := range trimmed {
		if unicode.IsDigit(r) {
			return true
		}
	}

	words := strings.Fields(strings.ToLower(trimmed))
	if len(words) == 1 && genericWords[strings.TrimSuffix(words[0], ":")] {
		return true
	}
	if len(words) > 0 {
		last := strings.TrimSuffix(words[len(words)-1], ",")
		for _, suffix := range companySuffixes {
			if last == suffix {
				return true
			}
		}
	}

	// Context lines averaging under 3 words suggest a table or data rows,
	// not a section body.
	if len(contextLines) > 0 {
		total := 0
		for _, line := range contextLines {
			total += len(strings.Fields(line))
		}
		if float64(total)/float64(len(contextLines)) < 3 {
			return true
		}
	}
	return false
}

func titleCase(s string) string {
	words := strings.Fields(strings.ToLower(strings.TrimSuffix(strings.TrimSpace(s), ":")))
	for i, w := range words {
		r := []rune(w)
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}
	return strings.Join(words, " ")
}
