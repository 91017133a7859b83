// Package section turns column-grouped text lines into named resume
// sections. It runs in three stages: keyword-match every line against the
// section vocabulary (deliberately overshooting), reject candidate headings
// that are statistical outliers against their column's medians, then walk
// the lines in reading order with a small state machine that opens a section
// at each accepted heading and appends everything else to the open one.
//
// Headings that match no keyword but still look like headings are routed to
// a synthetic "Unknown Sections" bucket, or, when an embedding classifier is
// configured, resolved against the learned vocabulary. Lines carrying two
// concatenated column headers trigger a column re-splitting pre-pass before
// segmentation proper.
//
// The whole package is deterministic: fixed tokens and a frozen vocabulary
// always produce byte-identical output.
package section
