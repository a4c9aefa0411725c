package export

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/jsphweid/jianpu/model"
	"github.com/pkg/errors"
)

const (
	svgNamespace = "http://www.w3.org/2000/svg"
	ink          = "#000000"
	fontFamily   = "sans-serif"
	fontSize     = 24
	strokeWidth  = 2
)

type svgDoc struct {
	XMLName xml.Name    `xml:"svg"`
	Xmlns   string      `xml:"xmlns,attr"`
	Width   float64     `xml:"width,attr"`
	Height  float64     `xml:"height,attr"`
	Texts   []svgText   `xml:"text"`
	Lines   []svgLine   `xml:"line"`
	Circles []svgCircle `xml:"circle"`
}

type svgText struct {
	X          float64 `xml:"x,attr"`
	Y          float64 `xml:"y,attr"`
	Dy         string  `xml:"dy,attr"`
	TextAnchor string  `xml:"text-anchor,attr"`
	FontFamily string  `xml:"font-family,attr"`
	FontSize   int     `xml:"font-size,attr"`
	Fill       string  `xml:"fill,attr"`
	Text       string  `xml:",chardata"`
}

type svgLine struct {
	X1          float64 `xml:"x1,attr"`
	Y1          float64 `xml:"y1,attr"`
	X2          float64 `xml:"x2,attr"`
	Y2          float64 `xml:"y2,attr"`
	Stroke      string  `xml:"stroke,attr"`
	StrokeWidth int     `xml:"stroke-width,attr"`
}

type svgCircle struct {
	Cx   float64 `xml:"cx,attr"`
	Cy   float64 `xml:"cy,attr"`
	R    float64 `xml:"r,attr"`
	Fill string  `xml:"fill,attr"`
}

// WriteSVG serializes a drawing as a standalone SVG image. Glyphs are
// centered on their point.
func WriteSVG(w io.Writer, d model.Drawing) error {
	doc := svgDoc{
		Xmlns:  svgNamespace,
		Width:  d.Canvas.Width,
		Height: d.Canvas.Height,
	}
	for _, g := range d.Glyphs {
		doc.Texts = append(doc.Texts, svgText{
			X: g.X, Y: g.Y, Dy: "0.35em",
			TextAnchor: "middle",
			FontFamily: fontFamily,
			FontSize:   fontSize,
			Fill:       ink,
			Text:       g.Text,
		})
	}
	for _, l := range d.Lines {
		doc.Lines = append(doc.Lines, svgLine{X1: l.X1, Y1: l.Y1, X2: l.X2, Y2: l.Y2, Stroke: ink, StrokeWidth: strokeWidth})
	}
	for _, c := range d.Circles {
		doc.Circles = append(doc.Circles, svgCircle{Cx: c.X, Cy: c.Y, R: c.R, Fill: ink})
	}

	if _, err := io.WriteString(w, xml.Header); err != nil {
		return errors.Wrap(err, "writing svg")
	}
	enc := xml.NewEncoder(w)
	enc.Indent("", "  ")
	if err := enc.Encode(doc); err != nil {
		return errors.Wrap(err, "writing svg")
	}
	return errors.Wrap(enc.Flush(), "writing svg")
}

var (
	unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
	whitespace  = regexp.MustCompile(`\s+`)
)

// NormalizeName keeps letters, digits, underscores and dashes, joining words
// with underscores.
func NormalizeName(text string) string {
	text = unsafeChars.ReplaceAllString(strings.TrimSpace(text), "")
	return whitespace.ReplaceAllString(strings.TrimSpace(text), "_")
}

// SectionFileName names the image of one block: Album_Title_Section_N.svg,
// with N counted from one. An empty album is left out and an empty title
// becomes Untitled.
func SectionFileName(album, title string, index int) string {
	t := NormalizeName(title)
	if t == "" {
		t = "Untitled"
	}
	name := fmt.Sprintf("%s_Section_%d.svg", t, index+1)
	if a := NormalizeName(album); a != "" {
		name = a + "_" + name
	}
	return name
}
