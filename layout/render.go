package layout

import (
	"strings"

	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/util"
)

const (
	dotRadius     = 1.5
	octaveGap     = 5.0
	octaveAbove   = 14.0
	octaveBelow   = 6.0
	durationDotDx = 10.0
	dashHalfWidth = 4.0
	beamOffset    = 8.0
	beamGap       = 3.0
	chordsRowY    = 40.0
	chordsHeight  = 60.0
)

type placed struct {
	x, y float64
	ok   bool
}

// Render turns tokens into draw primitives on a canvas sized by
// ComputeCanvas. Rests only carry time and are not drawn.
func Render(tokens []model.Token, horizontalSpacing, verticalScale float64) model.Drawing {
	horizontalSpacing, verticalScale = sanitize(horizontalSpacing, verticalScale)
	canvas := ComputeCanvas(tokens, horizontalSpacing, verticalScale)
	d := model.Drawing{Canvas: canvas}

	positions := make([]placed, len(tokens))
	step := 0
	for i, t := range tokens {
		switch t.Kind {
		case model.KindNote:
			x, y := PositionOf(step, *t.Note, canvas.BaselineY, horizontalSpacing, verticalScale)
			positions[i] = placed{x, y, true}
			d.Glyphs = append(d.Glyphs, model.Glyph{X: x, Y: y, Text: t.Note.DisplayLabel})
			drawOctave(&d, x, y, t.Note.OctaveOffset)
			drawDuration(&d, x, y, t.Note.Flags, horizontalSpacing)
			step++
		case model.KindBar:
			x := constants.CanvasPadding + (float64(step)-0.5)*horizontalSpacing
			x = util.Min(util.Max(x, constants.CanvasPadding/2), canvas.Width-constants.CanvasPadding/2)
			d.Glyphs = append(d.Glyphs, model.Glyph{X: x, Y: canvas.BaselineY, Text: t.Bar.Marker})
		}
	}

	for _, b := range Beams(tokens) {
		from, to := positions[b.From], positions[b.To]
		y := util.Max(from.y, to.y) + beamOffset
		for l := 0; l < b.Level; l++ {
			ly := y + float64(l)*beamGap
			d.Lines = append(d.Lines, model.Line{X1: from.x, Y1: ly, X2: to.x, Y2: ly})
		}
	}
	return d
}

func drawOctave(d *model.Drawing, x, y float64, octave int) {
	for k := 0; k < octave; k++ {
		d.Circles = append(d.Circles, model.Circle{X: x, Y: y - octaveAbove - float64(k)*octaveGap, R: dotRadius})
	}
	for k := 0; k < -octave; k++ {
		d.Circles = append(d.Circles, model.Circle{X: x, Y: y + octaveBelow + float64(k)*octaveGap, R: dotRadius})
	}
}

// extension dashes share the note's own step
func drawDuration(d *model.Drawing, x, y float64, flags model.RenderFlags, horizontalSpacing float64) {
	if flags.Dotted {
		d.Circles = append(d.Circles, model.Circle{X: x + durationDotDx, Y: y, R: dotRadius})
	}
	n := flags.ExtensionCount
	for k := 1; k <= n; k++ {
		cx := x + horizontalSpacing*float64(k)/float64(n+1)
		d.Lines = append(d.Lines, model.Line{X1: cx - dashHalfWidth, Y1: y, X2: cx + dashHalfWidth, Y2: y})
	}
}

// RenderChords lays a chords block out on a single row, one glyph per step.
// Whitespace keeps its step but draws nothing.
func RenderChords(glyphs []string, horizontalSpacing float64) model.Drawing {
	horizontalSpacing, _ = sanitize(horizontalSpacing, 0)
	d := model.Drawing{Canvas: model.Canvas{
		Width:     rowWidth(len(glyphs), horizontalSpacing),
		Height:    chordsHeight,
		BaselineY: chordsRowY,
	}}
	for i, g := range glyphs {
		if strings.TrimSpace(g) == "" {
			continue
		}
		d.Glyphs = append(d.Glyphs, model.Glyph{
			X:    constants.CanvasPadding + float64(i)*horizontalSpacing,
			Y:    chordsRowY,
			Text: g,
		})
	}
	return d
}
