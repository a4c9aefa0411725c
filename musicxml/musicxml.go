package musicxml

import (
	"encoding/xml"
	"io"
	"math"
	"os"

	"github.com/pkg/errors"
	"golang.org/x/net/html/charset"
)

// Doc holds the parts of a score-partwise document this project reads.
type Doc struct {
	XMLName       xml.Name `xml:"score-partwise"`
	WorkTitle     string   `xml:"work>work-title"`
	MovementTitle string   `xml:"movement-title"`
	Parts         []Part   `xml:"part"`
}

type Part struct {
	ID       string    `xml:"id,attr"`
	Measures []Measure `xml:"measure"`
}

// Measure keeps its children in document order; backup and forward only
// make sense relative to the notes around them.
type Measure struct {
	Number string
	Events []interface{}
}

type Attributes struct {
	Divisions int  `xml:"divisions"`
	Key       *Key `xml:"key"`
}

type Key struct {
	Fifths int    `xml:"fifths"`
	Mode   string `xml:"mode"`
}

type Note struct {
	Pitch    *Pitch    `xml:"pitch"`
	Rest     *struct{} `xml:"rest"`
	Chord    *struct{} `xml:"chord"`
	Grace    *struct{} `xml:"grace"`
	Duration int       `xml:"duration"`
	Voice    string    `xml:"voice"`
	Ties     []Tie     `xml:"tie"`
}

type Tie struct {
	Type string `xml:"type,attr"`
}

type Pitch struct {
	Step   string  `xml:"step"`
	Alter  float64 `xml:"alter"`
	Octave int     `xml:"octave"`
}

type Backup struct {
	Duration int `xml:"duration"`
}

type Forward struct {
	Duration int `xml:"duration"`
}

type Sound struct {
	Tempo float64 `xml:"tempo,attr"`
}

type Direction struct {
	Sound *Sound `xml:"sound"`
}

var steps = map[string]int{"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11}

// Key returns the MIDI number of the pitch, or -1 for an unknown step.
func (p *Pitch) Key() int {
	n, ok := steps[p.Step]
	if !ok {
		return -1
	}
	return n + (p.Octave+1)*12 + int(math.Round(p.Alter))
}

func (n Note) tieStop() bool {
	stop := false
	for _, t := range n.Ties {
		if t.Type == "start" {
			return false
		}
		if t.Type == "stop" {
			stop = true
		}
	}
	return stop
}

func (m *Measure) UnmarshalXML(d *xml.Decoder, start xml.StartElement) error {
	for _, attr := range start.Attr {
		if attr.Name.Local == "number" {
			m.Number = attr.Value
		}
	}

	for {
		token, err := d.Token()
		if err != nil {
			return err
		}
		switch t := token.(type) {
		case xml.EndElement:
			return nil
		case xml.StartElement:
			var v interface{}
			switch t.Name.Local {
			case "attributes":
				v = &Attributes{}
			case "note":
				v = &Note{}
			case "backup":
				v = &Backup{}
			case "forward":
				v = &Forward{}
			case "sound":
				v = &Sound{}
			case "direction":
				v = &Direction{}
			default:
				if err := d.Skip(); err != nil {
					return err
				}
				continue
			}
			if err := d.DecodeElement(v, &t); err != nil {
				return err
			}
			m.Events = append(m.Events, v)
		}
	}
}

func Decode(r io.Reader) (*Doc, error) {
	var doc Doc
	dec := xml.NewDecoder(r)
	dec.CharsetReader = charset.NewReaderLabel
	if err := dec.Decode(&doc); err != nil {
		return nil, errors.Wrap(err, "could not decode musicxml")
	}
	return &doc, nil
}

func ReadFile(path string) (*Doc, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "could not open musicxml file")
	}
	defer f.Close()
	return Decode(f)
}
