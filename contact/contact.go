// Package contact extracts contact details (name, email, phone, links,
// location) from the top of a parsed resume. It works on plain line text,
// so it runs after line building and is independent of layout decisions.
package contact

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/tsawler/cvlayout/model"
)

var (
	emailRe    = regexp.MustCompile(`[A-Za-z0-9._%+\-]+@[A-Za-z0-9.\-]+\.[A-Za-z]{2,}`)
	phoneRe    = regexp.MustCompile(`(?:\+?\d{1,3}[\s.\-]?)?(?:\(\d{2,4}\)[\s.\-]?)?\d{3}[\s.\-]?\d{3,4}[\s.\-]?\d{0,4}`)
	linkedinRe = regexp.MustCompile(`(?i)(?:https?://)?(?:[a-z]{2,3}\.)?linkedin\.com/(?:in|pub|profile)/[A-Za-z0-9\-_%]+`)
	githubRe   = regexp.MustCompile(`(?i)(?:https?://)?(?:www\.)?github\.com/[A-Za-z0-9\-_]+`)
	// "City, ST" or "City, Country" with both parts capitalized.
	locationRe = regexp.MustCompile(`\b([A-Z][a-zA-Z.\-]+(?: [A-Z][a-zA-Z.\-]+)*),\s*([A-Z]{2}|[A-Z][a-zA-Z]+)\b`)
)

// Extractor pulls contact fields out of document lines.
type Extractor struct {
	// MaxLines bounds how far into the document the extractor looks for a
	// name and location; emails and links are searched everywhere.
	// Default: 10.
	MaxLines int
}

// NewExtractor returns an extractor with default configuration.
func NewExtractor() *Extractor {
	return &Extractor{MaxLines: 10}
}

// Extract scans the document's lines for contact details. Missing fields
// stay empty; extraction never fails.
func (e *Extractor) Extract(doc *model.Document) model.Contact {
	var texts []string
	for _, sec := range doc.Sections {
		for _, line := range sec.Lines {
			texts = append(texts, line.Text)
		}
	}
	return e.ExtractFromLines(texts)
}

// ExtractFromLines scans raw line texts in document order.
func (e *Extractor) ExtractFromLines(lines []string) model.Contact {
	maxLines := e.MaxLines
	if maxLines <= 0 {
		maxLines = 10
	}

	var c model.Contact
	for i, text := range lines {
		if c.Email == "" {
			c.Email = emailRe.FindString(text)
		}
		if c.LinkedIn == "" {
			c.LinkedIn = linkedinRe.FindString(text)
		}
		if c.GitHub == "" {
			if m := githubRe.FindString(text); m != "" && !strings.Contains(strings.ToLower(m), "linkedin") {
				c.GitHub = m
			}
		}
		if c.Phone == "" {
			c.Phone = findPhone(text)
		}
		if i < maxLines {
			if c.Name == "" && looksLikeName(text) {
				c.Name = strings.TrimSpace(text)
			}
			if c.Location == "" {
				if m := locationRe.FindString(text); m != "" && !strings.Contains(text, "@") {
					c.Location = m
				}
			}
		}
	}
	return c
}

// findPhone returns the first digit run that plausibly is a phone number:
// 7 to 15 digits once separators are stripped.
func findPhone(text string) string {
	for _, m := range phoneRe.FindAllString(text, -1) {
		digits := 0
		for _, r := range m {
			if unicode.IsDigit(r) {
				digits++
			}
		}
		if digits >= 7 && digits <= 15 {
			return strings.TrimSpace(m)
		}
	}
	return ""
}

// looksLikeName accepts short lines of capitalized words with no digits or
// contact syntax. Resume names are almost always the first such line.
func looksLikeName(text string) bool {
	text = strings.TrimSpace(text)
	if text == "" || strings.ContainsAny(text, "@:/|,") {
		return false
	}
	words := strings.Fields(text)
	if len(words) < 2 || len(words) > 4 {
		return false
	}
	for _, w := range words {
		r := []rune(w)
		if !unicode.IsLetter(r[0]) || !unicode.IsUpper(r[0]) {
			return false
		}
		for _, rr := range r {
			if unicode.IsDigit(rr) {
				return false
			}
		}
	}
	return true
}
