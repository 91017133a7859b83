// Package learn maintains the section vocabulary: the persistent mapping of
// canonical section names to accepted phrase variants, plus the set of
// headings confirmed to be false positives.
//
// The vocabulary is loaded once at startup and mutated in place; every
// successful learn is flushed synchronously to the backing store, so a crash
// mid-batch never loses prior learning. Three store backends are provided:
// a whole-file JSON dictionary, an append-only JSON-lines log (safe for
// interleaved writers), and a SQLite database.
//
// Unknown headings can be classified against the vocabulary three ways:
// exact variant lookup, rule-based pattern matching (no model required), and
// optional embedding similarity via an injected Embedder. The embedding path
// is a construction-time capability: when no classifier is configured the
// vocabulary simply skips it.
package learn
