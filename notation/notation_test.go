package notation

import (
	"strings"
	"testing"

	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/scale"
	"github.com/stretchr/testify/assert"
)

var cMajor = scale.MustKeyAt(0)

func parseOne(t *testing.T, text string) model.NoteEvent {
	tokens, _ := Parse(text, cMajor)
	notes := Notes(tokens)
	if !assert.Len(t, notes, 1, "parsing %q", text) {
		t.FailNow()
	}
	return notes[0]
}

func TestDurationComposition(t *testing.T) {
	cases := []struct {
		text string
		want float64
	}{
		{"1", 1.0},
		{"1_", 0.5},
		{"1__", 0.25},
		{"1-", 2.0},
		{"1--", 3.0},
		{"1---", 4.0},
		{"1.", 1.5},
		{"1_.", 0.75},
		{"1=", 0.25},
		{"1_=", 0.25},
		{"1__=", 0.25},
		{"1-.", 3.0},
		{"1_-", 1.5},
	}
	for _, c := range cases {
		t.Run(c.text, func(t *testing.T) {
			assert.Equal(t, c.want, parseOne(t, c.text).Duration)
		})
	}
}

func TestDurationStaysPositive(t *testing.T) {
	n := parseOne(t, "1"+strings.Repeat("_", 40))
	assert.Greater(t, n.Duration, 0.0)
}

func TestOctaveMarkers(t *testing.T) {
	assert := assert.New(t)

	n := parseOne(t, "1'")
	assert.Equal(1, n.OctaveOffset)
	assert.Equal(7, n.PitchIndex)

	n = parseOne(t, "1,,")
	assert.Equal(-2, n.OctaveOffset)
	assert.Equal(-14, n.PitchIndex)

	n = parseOne(t, `3"`)
	assert.Equal(2, n.OctaveOffset)
	assert.Equal(16, n.PitchIndex)
	assert.Equal(88, n.AbsolutePitch)

	n = parseOne(t, `1"'`+",")
	assert.Equal(2, n.OctaveOffset)
}

func TestSimpleMelodyInC(t *testing.T) {
	tokens, total := Parse("1 2 3 1' 5,", cMajor)
	notes := Notes(tokens)

	var labels []string
	var indexes []int
	for _, n := range notes {
		labels = append(labels, n.DisplayLabel)
		indexes = append(indexes, n.PitchIndex)
	}

	assert := assert.New(t)
	assert.Len(tokens, 5)
	assert.Equal([]string{"C", "D", "E", "C", "G"}, labels)
	assert.Equal([]int{0, 1, 2, 7, -3}, indexes)
	assert.Equal(5.0, total)
}

func TestAccidentals(t *testing.T) {
	assert := assert.New(t)

	n := parseOne(t, "4#")
	assert.Equal(1, n.Accidental)
	assert.Equal("F#", n.DisplayLabel)
	assert.Equal(66, n.AbsolutePitch)
	assert.Equal(3, n.PitchIndex, "sharp must not move the staff position")

	n = parseOne(t, "7b")
	assert.Equal(-1, n.Accidental)
	assert.Equal("Bb", n.DisplayLabel)
	assert.Equal(70, n.AbsolutePitch)

	n = parseOne(t, "4♯")
	assert.Equal(1, n.Accidental)

	n = parseOne(t, "4#n")
	assert.Equal(0, n.Accidental, "natural wins")
	assert.Equal("F", n.DisplayLabel)

	n = parseOne(t, "4♮b")
	assert.Equal(0, n.Accidental)

	n = parseOne(t, "2#b")
	assert.Equal(0, n.Accidental)
	assert.Equal("D", n.DisplayLabel)
}

func TestLabelsFollowKey(t *testing.T) {
	tokens, _ := Parse("1 3 7", scale.MustKeyAt(2))
	notes := Notes(tokens)

	assert := assert.New(t)
	assert.Equal("D", notes[0].DisplayLabel)
	assert.Equal("F#", notes[1].DisplayLabel)
	assert.Equal("C#", notes[2].DisplayLabel)
	assert.Equal(62, notes[0].AbsolutePitch)

	tokens, _ = Parse("1 5#", scale.MustKeyAt(scale.NumbersOnly))
	notes = Notes(tokens)
	assert.Equal("1", notes[0].DisplayLabel)
	assert.Equal("5#", notes[1].DisplayLabel)
	assert.Equal(68, notes[1].AbsolutePitch)
}

func TestRenderFlags(t *testing.T) {
	assert := assert.New(t)
	assert.Equal(model.RenderFlags{}, parseOne(t, "1").Flags)
	assert.Equal(model.RenderFlags{BeamLevel: 1}, parseOne(t, "1_").Flags)
	assert.Equal(model.RenderFlags{BeamLevel: 2}, parseOne(t, "1___").Flags)
	assert.Equal(model.RenderFlags{BeamLevel: 2}, parseOne(t, "1=").Flags)
	assert.Equal(model.RenderFlags{BeamLevel: 1, Dotted: true}, parseOne(t, "1_.").Flags)
	assert.Equal(model.RenderFlags{ExtensionCount: 3}, parseOne(t, "1---").Flags)
}

func TestBarsAndGroups(t *testing.T) {
	tokens, total := Parse("|: 1 2 | 3 :| [1. 5 ] ||", cMajor)

	var kinds []model.TokenKind
	var markers []string
	for _, tok := range tokens {
		kinds = append(kinds, tok.Kind)
		if tok.Kind == model.KindBar {
			markers = append(markers, tok.Bar.Marker)
		}
	}

	assert := assert.New(t)
	assert.Equal([]model.TokenKind{
		model.KindBar, model.KindNote, model.KindNote, model.KindBar,
		model.KindNote, model.KindBar, model.KindBar, model.KindBar,
	}, kinds)
	assert.Equal([]string{"|:", "|", ":|", "[1. 5 ]", "||"}, markers)
	assert.Equal(3.0, total, "notes inside a bracket group are opaque")
}

func TestUnclosedGroupIsSkipped(t *testing.T) {
	tokens, _ := Parse("( 1 2", cMajor)
	assert.Len(t, Notes(tokens), 2)
}

func TestRests(t *testing.T) {
	tokens, total := Parse("1 0 0_ 2", cMajor)

	assert := assert.New(t)
	assert.Len(tokens, 4)
	assert.Equal(model.KindRest, tokens[1].Kind)
	assert.Equal(1.0, tokens[1].Rest.Duration)
	assert.Equal(0.5, tokens[2].Rest.Duration)
	assert.Equal(1, tokens[2].Rest.Flags.BeamLevel)
	assert.Equal(2.0, total, "rests do not count toward the total")

	_, total = Parse("1 0 0 0 2", cMajor)
	assert.Equal(2.0, total)
}

func TestParenthesesAreFreeText(t *testing.T) {
	tokens, total := Parse("(1 2 3) 5", cMajor)

	assert := assert.New(t)
	assert.Len(tokens, 4)
	assert.Len(Notes(tokens), 4)
	assert.Equal(4.0, total)
	assert.Equal("1 2 3 5", Format(tokens))
}

func TestGarbageNeverFails(t *testing.T) {
	inputs := []string{
		"",
		"hello world",
		"8 9 ? ! ~",
		"]]]))",
		"#b'',,..__==--",
		"\x00\xff\xfe",
		"1\xff2",
	}
	for _, in := range inputs {
		assert.NotPanics(t, func() { Parse(in, cMajor) }, "input %q", in)
	}

	tokens, total := Parse("hello 8 9 world", cMajor)
	assert.Empty(t, tokens)
	assert.Equal(t, 0.0, total)

	tokens, _ = Parse("1\xff2", cMajor)
	assert.Len(t, Notes(tokens), 2)
}

func TestSourceTextAndFormat(t *testing.T) {
	tokens, _ := Parse("1_.  2'#   | 0-", cMajor)

	assert := assert.New(t)
	assert.Equal("1_.", tokens[0].Note.SourceText)
	assert.Equal("2'#", tokens[1].Note.SourceText)
	assert.Equal("1_. 2'# | 0-", Format(tokens))
}

func TestParseChords(t *testing.T) {
	assert.Equal(t, []string{"A", "m", " ", "F"}, ParseChords("Am F"))
}
