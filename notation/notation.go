package notation

import (
	"math"
	"strings"

	"github.com/jsphweid/jianpu/chord"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/pitch"
	"github.com/jsphweid/jianpu/util"
	"github.com/sirupsen/logrus"
)

const (
	flat       = 'b'
	sharp      = '#'
	natural    = 'n'
	high       = '\''
	doubleHigh = '"'
	low        = ','
	dot        = '.'
	halve      = '_'
	sixteenth  = '='
	extension  = '-'
)

// unicode spellings accepted alongside the ascii ones
var aliases = map[rune]rune{
	'♭': flat,
	'♯': sharp,
	'♮': natural,
}

const barGlyphs = "|:"

// square brackets are the only group delimiters; parentheses are free text
const (
	groupOpen  = '['
	groupClose = ']'
)

// past this many halvings the duration would underflow to zero
const maxHalvings = 16

type modifiers struct {
	flats, sharps, naturals int
	high, doubleHigh, low   int
	dots, halves            int
	sixteenths, extensions  int
}

func modifierOf(r rune) (rune, bool) {
	if a, ok := aliases[r]; ok {
		r = a
	}
	switch r {
	case flat, sharp, natural, high, doubleHigh, low, dot, halve, sixteenth, extension:
		return r, true
	}
	return r, false
}

func (m *modifiers) add(r rune) {
	switch r {
	case flat:
		m.flats++
	case sharp:
		m.sharps++
	case natural:
		m.naturals++
	case high:
		m.high++
	case doubleHigh:
		m.doubleHigh++
	case low:
		m.low++
	case dot:
		m.dots++
	case halve:
		m.halves++
	case sixteenth:
		m.sixteenths++
	case extension:
		m.extensions++
	}
}

func (m modifiers) accidental() int {
	if m.naturals > 0 {
		return 0
	}
	return m.sharps - m.flats
}

func (m modifiers) octave() int {
	return m.high + 2*m.doubleHigh - m.low
}

// duration composes in a fixed order: halve, sixteenth override, add
// extensions, then dot. Saved documents depend on this order.
func (m modifiers) duration() float64 {
	d := math.Pow(0.5, float64(util.Min(m.halves, maxHalvings)))
	if m.sixteenths > 0 {
		d = 0.25
	}
	d += float64(m.extensions)
	if m.dots > 0 {
		d *= 1.5
	}
	return d
}

func (m modifiers) flags() model.RenderFlags {
	level := util.Min(m.halves, 2)
	if m.sixteenths > 0 {
		level = 2
	}
	return model.RenderFlags{
		BeamLevel:      level,
		Dotted:         m.dots > 0,
		ExtensionCount: m.extensions,
	}
}

type scanner struct {
	runes   []rune
	pos     int
	key     model.Key
	tokens  []model.Token
	total   float64
	skipped int
}

// Parse tokenizes melody text against key. Characters the grammar does not
// reserve are skipped, so any input yields a (possibly empty) token list.
// The total counts note durations only; rests keep their time for playback
// but add nothing to it.
func Parse(text string, key model.Key) ([]model.Token, float64) {
	s := &scanner{runes: []rune(text), key: key}
	for s.pos < len(s.runes) {
		switch r := s.runes[s.pos]; {
		case strings.ContainsRune(barGlyphs, r):
			s.scanBar()
		case r == groupOpen:
			s.scanGroup()
		case r >= '1' && r <= '7':
			s.scanNote()
		case r == '0':
			s.scanRest()
		default:
			s.pos++
			if r != ' ' && r != '\n' && r != '\t' && r != '\r' {
				s.skipped++
			}
		}
	}
	if s.skipped > 0 {
		logrus.WithField("skipped", s.skipped).Debug("notation: skipped unreserved characters")
	}
	return s.tokens, s.total
}

func (s *scanner) scanBar() {
	start := s.pos
	for s.pos < len(s.runes) && strings.ContainsRune(barGlyphs, s.runes[s.pos]) {
		s.pos++
	}
	s.tokens = append(s.tokens, model.BarToken(string(s.runes[start:s.pos])))
}

func (s *scanner) scanGroup() {
	start := s.pos
	for end := start + 1; end < len(s.runes); end++ {
		if s.runes[end] == groupClose {
			s.tokens = append(s.tokens, model.BarToken(string(s.runes[start:end+1])))
			s.pos = end + 1
			return
		}
	}
	// unclosed opener
	s.pos++
	s.skipped++
}

func (s *scanner) scanModifiers() modifiers {
	var m modifiers
	for s.pos < len(s.runes) {
		r, ok := modifierOf(s.runes[s.pos])
		if !ok {
			break
		}
		m.add(r)
		s.pos++
	}
	return m
}

func (s *scanner) scanNote() {
	start := s.pos
	degree := int(s.runes[s.pos] - '0')
	s.pos++
	m := s.scanModifiers()

	accidental := m.accidental()
	octave := m.octave()
	note := model.NoteEvent{
		Degree:        degree,
		Accidental:    accidental,
		OctaveOffset:  octave,
		Duration:      m.duration(),
		PitchIndex:    pitch.PitchIndex(degree, octave),
		AbsolutePitch: pitch.ToAbsolutePitch(s.key, degree, accidental, octave),
		DisplayLabel:  s.key.DegreeLabels[degree-1] + pitch.AccidentalSuffix(accidental),
		SourceText:    string(s.runes[start:s.pos]),
		Flags:         m.flags(),
	}
	s.tokens = append(s.tokens, model.NoteToken(note))
	s.total += note.Duration
}

func (s *scanner) scanRest() {
	start := s.pos
	s.pos++
	m := s.scanModifiers()
	rest := model.RestEvent{
		Duration:   m.duration(),
		SourceText: string(s.runes[start:s.pos]),
		Flags:      m.flags(),
	}
	s.tokens = append(s.tokens, model.RestToken(rest))
}

// ParseChords splits a chords block into glyphs without musical meaning.
func ParseChords(content string) []string {
	return chord.SplitGlyphs(content)
}

// Notes keeps only the note events of a token list.
func Notes(tokens []model.Token) []model.NoteEvent {
	var res []model.NoteEvent
	for _, t := range tokens {
		if t.Kind == model.KindNote {
			res = append(res, *t.Note)
		}
	}
	return res
}

// Format re-emits tokens as notation text, one space between tokens.
func Format(tokens []model.Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		switch t.Kind {
		case model.KindNote:
			parts = append(parts, t.Note.SourceText)
		case model.KindRest:
			parts = append(parts, t.Rest.SourceText)
		case model.KindBar:
			parts = append(parts, t.Bar.Marker)
		}
	}
	return strings.Join(parts, " ")
}
