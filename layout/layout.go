package layout

import (
	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/util"
)

// sanitize defaults non-positive spacing and negative scale. A zero scale is
// kept and flattens the drawing onto the baseline.
func sanitize(horizontalSpacing, verticalScale float64) (float64, float64) {
	if !(horizontalSpacing > 0) {
		horizontalSpacing = constants.DefaultHorizontalSpacing
	}
	if !(verticalScale >= 0) {
		verticalScale = constants.DefaultVerticalScale
	}
	return horizontalSpacing, verticalScale
}

// Steps counts tokens that take a horizontal slot. Only notes do.
func Steps(tokens []model.Token) int {
	n := 0
	for _, t := range tokens {
		if t.Kind == model.KindNote {
			n++
		}
	}
	return n
}

func pitchIndexes(tokens []model.Token) []int {
	var res []int
	for _, t := range tokens {
		if t.Kind == model.KindNote {
			res = append(res, t.Note.PitchIndex)
		}
	}
	return res
}

// rowWidth spans steps slots from the first x to the last, padded on both
// sides.
func rowWidth(steps int, horizontalSpacing float64) float64 {
	return util.Max(constants.MinCanvasWidth,
		2*constants.CanvasPadding+float64(steps-1)*horizontalSpacing)
}

// ComputeCanvas sizes the drawing. Width grows with the note count and height
// follows the spread of staff positions, so accidentals never change it. The
// fixed empty-canvas size applies only when there are no notes.
func ComputeCanvas(tokens []model.Token, horizontalSpacing, verticalScale float64) model.Canvas {
	horizontalSpacing, verticalScale = sanitize(horizontalSpacing, verticalScale)

	indexes := pitchIndexes(tokens)
	if len(indexes) == 0 {
		return model.Canvas{
			Width:     constants.EmptyCanvasWidth,
			Height:    constants.EmptyCanvasHeight,
			BaselineY: constants.EmptyCanvasBaseline,
		}
	}

	lo, hi := util.MinMax(indexes)
	return model.Canvas{
		Width:     rowWidth(len(indexes), horizontalSpacing),
		Height:    float64(hi-lo)*verticalScale + 2*constants.VerticalPadding,
		BaselineY: constants.VerticalPadding + float64(hi)*verticalScale,
	}
}

// PositionOf places the step-th note. Higher staff positions get
// smaller y.
func PositionOf(index int, note model.NoteEvent, baselineY, horizontalSpacing, verticalScale float64) (float64, float64) {
	horizontalSpacing, verticalScale = sanitize(horizontalSpacing, verticalScale)
	x := constants.CanvasPadding + float64(index)*horizontalSpacing
	y := baselineY - float64(note.PitchIndex)*verticalScale
	return x, y
}

type Beam struct {
	From  int
	To    int
	Level int
}

// Beams pairs consecutive notes that share a beam level of at least one.
// Bars and rests between them are passed over. From and To index tokens.
func Beams(tokens []model.Token) []Beam {
	var res []Beam
	prev := -1
	for i, t := range tokens {
		if t.Kind != model.KindNote {
			continue
		}
		if prev >= 0 {
			level := tokens[prev].Note.Flags.BeamLevel
			if level >= 1 && level == t.Note.Flags.BeamLevel {
				res = append(res, Beam{From: prev, To: i, Level: level})
			}
		}
		prev = i
	}
	return res
}
