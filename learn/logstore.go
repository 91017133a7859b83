package learn

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

// LogStore persists the vocabulary as an append-only JSON-lines log, one
// Record per line. Appends are O(1) and safe to interleave across processes
// at the cost of possible near-duplicate entries; Consolidate rewrites the
// log deduplicated.
type LogStore struct {
	mu   sync.Mutex
	path string
	f    *os.File
}

// OpenLogStore opens or creates a JSON-lines log store at path.
func OpenLogStore(path string) (*LogStore, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open vocabulary log %s: %w", path, err)
	}
	return &LogStore{path: path, f: f}, nil
}

// Load reads every record in append order. A torn final line (crash during
// a write) is ignored; a malformed line anywhere else marks the store
// corrupt.
func (s *LogStore) Load() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read vocabulary log %s: %w", s.path, err)
	}

	var records []Record
	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	badAt := -1
	lineNo := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		lineNo++
		if len(line) == 0 {
			continue
		}
		var rec Record
		if err := json.Unmarshal(line, &rec); err != nil {
			if badAt >= 0 {
				return nil, fmt.Errorf("%w: %s line %d", ErrStoreCorrupt, s.path, badAt)
			}
			badAt = lineNo
			continue
		}
		if badAt >= 0 {
			// A parseable line after a bad one means the damage was not
			// just a torn tail.
			return nil, fmt.Errorf("%w: %s line %d", ErrStoreCorrupt, s.path, badAt)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read vocabulary log %s: %w", s.path, err)
	}
	return records, nil
}

// Append writes one record and syncs it to disk before returning.
func (s *LogStore) Append(rec Record) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode vocabulary record: %w", err)
	}
	raw = append(raw, '\n')
	if _, err := s.f.Write(raw); err != nil {
		return fmt.Errorf("append vocabulary log: %w", err)
	}
	return s.f.Sync()
}

// Consolidate rewrites the log with duplicate records removed, preserving
// first-appearance order. Intended to run between batches, not concurrently
// with other writers.
func (s *LogStore) Consolidate() error {
	records, err := s.Load()
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	seen := make(map[string]bool)
	var buf bytes.Buffer
	for _, rec := range records {
		key := rec.Canonical + "\x00" + foldKey(rec.Header)
		if rec.IsFalsePositive() {
			key = "\x00fp\x00" + foldKey(rec.Header)
		}
		if seen[key] {
			continue
		}
		seen[key] = true
		raw, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("encode vocabulary record: %w", err)
		}
		buf.Write(raw)
		buf.WriteByte('\n')
	}

	if err := os.WriteFile(s.path+".tmp", buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("consolidate vocabulary log: %w", err)
	}
	if err := os.Rename(s.path+".tmp", s.path); err != nil {
		return fmt.Errorf("consolidate vocabulary log: %w", err)
	}

	// Reopen the append handle against the new file.
	if err := s.f.Close(); err != nil {
		return err
	}
	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("reopen vocabulary log: %w", err)
	}
	s.f = f
	return nil
}

// Close releases the append handle.
func (s *LogStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.f.Close()
}
