package model

// LineBoundaries is the serialized geometry of a built line.
type LineBoundaries struct {
	X0     float64 `json:"x0"`
	X1     float64 `json:"x1"`
	Top    float64 `json:"top"`
	Bottom float64 `json:"bottom"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// LineProperties carries simple text statistics for a line.
type LineProperties struct {
	CharCount int `json:"char_count"`
	WordCount int `json:"word_count"`
}

// LineMetrics carries the visual metrics used by heading detection.
// AvgFontSize is the geometric proxy (mean token height); AvgSpanFontSize
// is the mean of backend-reported font sizes, preferred when present.
type LineMetrics struct {
	AvgFontSize     float64 `json:"avg_font_size"`
	AvgSpanFontSize float64 `json:"avg_span_font_size"`
	BoldRatio       float64 `json:"bold_ratio"`
	SpaceAbove      float64 `json:"space_above"`
	SpaceBelow      float64 `json:"space_below"`
	LineWidth       float64 `json:"line_width"`
}

// SectionLine is one line of content attributed to a section, with its page
// and column of origin attached.
type SectionLine struct {
	Page        int            `json:"page"`
	ColumnIndex int            `json:"column_index"`
	LineIndex   int            `json:"line_index"`
	Text        string         `json:"text"`
	Boundaries  LineBoundaries `json:"boundaries"`
	Properties  LineProperties `json:"properties"`
	Metrics     LineMetrics    `json:"metrics"`
}

// Section is a named group of content lines. Name is the canonical section
// name; sections with the same name are merged in first-appearance order.
type Section struct {
	Name  string        `json:"section"`
	Lines []SectionLine `json:"lines"`
}

// Contact holds the contact details extracted from the contact block.
type Contact struct {
	Name     string `json:"name,omitempty"`
	Email    string `json:"email,omitempty"`
	Phone    string `json:"phone,omitempty"`
	Location string `json:"location,omitempty"`
	LinkedIn string `json:"linkedin,omitempty"`
	GitHub   string `json:"github,omitempty"`
}

// IsEmpty reports whether no contact field was populated.
func (c Contact) IsEmpty() bool {
	return c == Contact{}
}

// Meta summarizes a parsed document.
type Meta struct {
	Pages           int `json:"pages"`
	Columns         int `json:"columns"`
	Sections        int `json:"sections"`
	LinesTotal      int `json:"lines_total"`
	UnknownHeadings int `json:"unknown_headings_count"`
}

// Document is the full parse result for one resume.
type Document struct {
	Meta     Meta      `json:"meta"`
	Sections []Section `json:"sections"`
	Contact  *Contact  `json:"contact,omitempty"`
}

// SimplifiedSection is the flattened projection of a Section.
type SimplifiedSection struct {
	Name  string   `json:"section"`
	Lines []string `json:"lines"`
}

// Simplified derives the flat section/text projection from the full result.
// It is a pure map over the existing structure; no information is computed
// that the full output does not already contain.
func (d *Document) Simplified() []SimplifiedSection {
	if d == nil {
		return nil
	}
	out := make([]SimplifiedSection, 0, len(d.Sections))
	for _, s := range d.Sections {
		texts := make([]string, 0, len(s.Lines))
		for _, ln := range s.Lines {
			texts = append(texts, ln.Text)
		}
		out = append(out, SimplifiedSection{Name: s.Name, Lines: texts})
	}
	return out
}

// TotalLines returns the number of lines across all sections.
func (d *Document) TotalLines() int {
	if d == nil {
		return 0
	}
	total := 0
	for _, s := range d.Sections {
		total += len(s.Lines)
	}
	return total
}
