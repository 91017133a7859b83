// Package layout analyzes the physical layout of a resume page. Given the
// positioned tokens of one page it determines the column structure
// (projection-histogram gap analysis, with an optional region variant for
// hybrid layouts), groups tokens into text lines, and computes the per-line
// metrics that heading detection relies on.
//
// Detection never fails on well-formed input: when the column structure is
// ambiguous the detectors degrade to a single full-width column rather than
// returning an error. Malformed geometry is rejected earlier, at the model
// validation boundary.
package layout
