// Package model defines the core data types shared across the cvlayout
// pipeline: positioned text tokens as delivered by an extraction backend,
// page geometry, and the structured document (sections, lines, contact
// details) produced by segmentation.
//
// Coordinates use a top-origin system: Y0 is the top edge of a token and
// Y1 its bottom edge, with Y increasing down the page. Both native text
// extraction and OCR backends must deliver tokens in this shape.
//
// Token validation happens at the ingestion boundary (ValidateToken,
// ValidatePage). Downstream numeric code (histogram binning, median
// computation) assumes validated geometry and never re-checks.
package model
