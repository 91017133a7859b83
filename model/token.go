package model

import (
	"errors"
	"fmt"
	"math"
)

// ErrMalformedToken is returned when a token carries NaN, negative, or
// inverted coordinates. Validation happens once, at the ingestion boundary.
var ErrMalformedToken = errors.New("malformed token geometry")

// Token is a single positioned word as delivered by an extraction backend
// (native PDF/DOCX text layer or OCR). Tokens are immutable and scoped to
// one page.
type Token struct {
	Text     string  `json:"text"`
	X0       float64 `json:"x0"`
	X1       float64 `json:"x1"`
	Y0       float64 `json:"y0"` // top edge
	Y1       float64 `json:"y1"` // bottom edge
	FontSize float64 `json:"font_size,omitempty"`
	FontName string  `json:"font_name,omitempty"`
	Bold     bool    `json:"is_bold,omitempty"`
}

// BBox returns the token's bounding box.
func (t Token) BBox() BBox {
	return BBox{X0: t.X0, X1: t.X1, Top: t.Y0, Bottom: t.Y1}
}

// MidX returns the horizontal midpoint of the token.
func (t Token) MidX() float64 {
	return (t.X0 + t.X1) / 2
}

// Width returns the horizontal extent of the token.
func (t Token) Width() float64 {
	return t.X1 - t.X0
}

// Height returns the vertical extent of the token, used as the geometric
// font-size proxy when the backend reports no font size.
func (t Token) Height() float64 {
	return t.Y1 - t.Y0
}

// Validate checks token geometry. Coordinates must be finite, non-negative,
// and non-inverted (X0 <= X1, Y0 <= Y1).
func (t Token) Validate() error {
	coords := [...]float64{t.X0, t.X1, t.Y0, t.Y1}
	for _, c := range coords {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return fmt.Errorf("%w: non-finite coordinate in %q", ErrMalformedToken, t.Text)
		}
		if c < 0 {
			return fmt.Errorf("%w: negative coordinate %v in %q", ErrMalformedToken, c, t.Text)
		}
	}
	if t.X0 > t.X1 {
		return fmt.Errorf("%w: inverted x span [%v, %v] in %q", ErrMalformedToken, t.X0, t.X1, t.Text)
	}
	if t.Y0 > t.Y1 {
		return fmt.Errorf("%w: inverted y span [%v, %v] in %q", ErrMalformedToken, t.Y0, t.Y1, t.Text)
	}
	if math.IsNaN(t.FontSize) || t.FontSize < 0 {
		return fmt.Errorf("%w: bad font size %v in %q", ErrMalformedToken, t.FontSize, t.Text)
	}
	return nil
}

// Page holds the tokens of a single page together with its dimensions.
// Page numbers are zero-based and assigned by the caller; ordering of the
// page list is preserved throughout the pipeline.
type Page struct {
	Number int     `json:"page"`
	Width  float64 `json:"page_width"`
	Height float64 `json:"page_height"`
	Tokens []Token `json:"tokens"`
}

// Validate checks the page dimensions and every token on the page.
func (p Page) Validate() error {
	if math.IsNaN(p.Width) || math.IsNaN(p.Height) || p.Width <= 0 || p.Height <= 0 {
		return fmt.Errorf("%w: page %d has dimensions %vx%v", ErrMalformedToken, p.Number, p.Width, p.Height)
	}
	for i, tok := range p.Tokens {
		if err := tok.Validate(); err != nil {
			return fmt.Errorf("page %d token %d: %w", p.Number, i, err)
		}
	}
	return nil
}

// ValidatePages validates an ordered list of pages.
func ValidatePages(pages []Page) error {
	for _, p := range pages {
		if err := p.Validate(); err != nil {
			return err
		}
	}
	return nil
}
