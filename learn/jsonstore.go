package learn

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
)

// falsePositivesKey is the reserved dictionary key holding rejected headings.
const falsePositivesKey = "_false_positives"

// jsonEntry is the on-disk shape of one canonical section.
type jsonEntry struct {
	Variants            []string `json:"variants"`
	ConfidenceThreshold float64  `json:"confidence_threshold,omitempty"`
}

// JSONStore persists the vocabulary as a single JSON dictionary of
// canonical name to variants. Appends rewrite the whole file atomically
// (temp file plus rename), so it suits a single writer.
type JSONStore struct {
	mu   sync.Mutex
	path string
	data map[string]*jsonEntry
}

// OpenJSONStore opens or creates a JSON dictionary store at path.
func OpenJSONStore(path string) (*JSONStore, error) {
	s := &JSONStore{path: path, data: make(map[string]*jsonEntry)}

	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vocabulary store %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrStoreCorrupt, path, err)
	}
	for k, e := range s.data {
		if e == nil {
			s.data[k] = &jsonEntry{}
		}
	}
	return s, nil
}

// Load returns all persisted records, canonicals sorted for stable order.
func (s *JSONStore) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.data))
	for name := range s.data {
		names = append(names, name)
	}
	sort.Strings(names)

	var records []Record
	for _, name := range names {
		entry := s.data[name]
		if name == falsePositivesKey {
			for _, v := range entry.Variants {
				records = append(records, FalsePositiveRecord(v))
			}
			continue
		}
		for _, v := range entry.Variants {
			records = append(records, Record{Canonical: name, Header: v})
		}
	}
	return records, nil
}

// Append adds a record and rewrites the file synchronously.
func (s *JSONStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := rec.Canonical
	if rec.IsFalsePositive() {
		key = falsePositivesKey
	}
	entry := s.data[key]
	if entry == nil {
		entry = &jsonEntry{}
		s.data[key] = entry
	}
	for _, v := range entry.Variants {
		if foldKey(v) == foldKey(rec.Header) {
			return nil // idempotent
		}
	}
	entry.Variants = append(entry.Variants, rec.Header)

	return s.flush()
}

// flush writes the dictionary atomically. Caller holds the lock.
func (s *JSONStore) flush() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("encode vocabulary store: %w", err)
	}

	dir := filepath.Dir(s.path)
	tmp, err := os.CreateTemp(dir, ".vocab-*")
	if err != nil {
		return fmt.Errorf("write vocabulary store: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write vocabulary store: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write vocabulary store: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("write vocabulary store: %w", err)
	}
	return nil
}

// Close is a no-op for the JSON store; every Append already flushed.
func (s *JSONStore) Close() error { return nil }
