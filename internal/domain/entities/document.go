package entities

import "strings"

// Run is one styled span of text within a document paragraph.
type Run struct {
	Text string
	Bold bool
}

// Paragraph is one paragraph of the authoring document, as an ordered
// sequence of styled runs. Non-paragraph document content (tables,
// section breaks) is never represented here.
type Paragraph struct {
	Runs []Run
}

// Text concatenates the paragraph's runs and trims surrounding
// whitespace.
func (p Paragraph) Text() string {
	var b strings.Builder
	for _, r := range p.Runs {
		b.WriteString(r.Text)
	}
	return strings.TrimSpace(b.String())
}

// LeadingBold reports whether the paragraph's first run is bold. The
// authoring convention marks a correct answer option by making the
// option line bold, which always includes its first run.
func (p Paragraph) LeadingBold() bool {
	return len(p.Runs) > 0 && p.Runs[0].Bold
}
