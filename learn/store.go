package learn

import (
	"errors"
	"strings"
)

// ErrStoreCorrupt is returned by a Store whose persisted state cannot be
// parsed. Callers fall back to the built-in vocabulary rather than aborting.
var ErrStoreCorrupt = errors.New("vocabulary store corrupt")

// attrFalsePositive marks a record as a false-positive heading rather than
// a learned variant.
const attrFalsePositive = "false_positive"

// Record is one persisted vocabulary fact: a variant learned for a
// canonical section, or (when the false_positive attribute is set) a
// heading that must never be proposed again.
type Record struct {
	Canonical  string            `json:"canonical"`
	Header     string            `json:"header"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// IsFalsePositive reports whether the record marks a rejected heading.
func (r Record) IsFalsePositive() bool {
	return r.Attributes[attrFalsePositive] == "true"
}

// FalsePositiveRecord builds the record persisted when a heading is marked
// as a confirmed non-section.
func FalsePositiveRecord(header string) Record {
	return Record{
		Header:     header,
		Attributes: map[string]string{attrFalsePositive: "true"},
	}
}

// Store persists vocabulary records. Load returns all records in a stable
// order; Append flushes one record synchronously.
type Store interface {
	Load() ([]Record, error)
	Append(rec Record) error
	Close() error
}

// foldKey normalizes a phrase for variant lookup: lowercase with collapsed
// whitespace and no trailing colon.
func foldKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.TrimSuffix(s, ":")
	return strings.Join(strings.Fields(s), " ")
}
