package pitch

import (
	"math"
	"strings"

	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/util"
	"github.com/pkg/errors"
)

var ErrUnmappable = errors.New("pitch has no diatonic degree in this key")

// SemitoneOffset is the major-scale interval of degrees 1..7 above the root.
var SemitoneOffset = [7]int{0, 2, 4, 5, 7, 9, 11}

// degreeOfSemitone inverts SemitoneOffset; zero marks a chromatic residue.
var degreeOfSemitone = [12]int{1, 0, 2, 0, 3, 4, 0, 5, 0, 6, 0, 7}

// Fragment is the part of a note that can be recovered from an absolute pitch.
type Fragment struct {
	Degree       int
	Accidental   int
	OctaveOffset int
}

// DiatonicOffset maps degree 1..7 to staff steps 0..6.
func DiatonicOffset(degree int) int {
	return degree - 1
}

// PitchIndex is the staff position used for vertical layout. Accidentals do
// not move it.
func PitchIndex(degree, octaveOffset int) int {
	return octaveOffset*7 + DiatonicOffset(degree)
}

func RootSemitone(key model.Key) int {
	return constants.ReferencePitch + key.RootPitchClass
}

// ToAbsolutePitch returns the MIDI-style semitone number of a degree in key.
func ToAbsolutePitch(key model.Key, degree, accidental, octaveOffset int) int {
	return RootSemitone(key) + SemitoneOffset[util.Mod(degree-1, 7)] + 12*octaveOffset + accidental
}

// FromAbsolutePitch finds the unaltered degree and octave of an absolute
// pitch. Chromatic residues return ErrUnmappable; the caller decides whether
// to approximate or drop.
func FromAbsolutePitch(key model.Key, absolutePitch int) (Fragment, error) {
	relative := absolutePitch - RootSemitone(key)
	octave := util.FloorDiv(relative, 12)
	semitone := util.Mod(relative, 12)
	degree := degreeOfSemitone[semitone]
	if degree == 0 {
		return Fragment{OctaveOffset: octave}, errors.Wrapf(ErrUnmappable, "residue %d", semitone)
	}
	return Fragment{Degree: degree, OctaveOffset: octave}, nil
}

// Residue is the Euclidean semitone of absolutePitch above the key's root.
func Residue(key model.Key, absolutePitch int) int {
	return util.Mod(absolutePitch-RootSemitone(key), 12)
}

// OctaveMarkers renders an octave offset as repeated ' (up) or , (down).
func OctaveMarkers(octaveOffset int) string {
	if octaveOffset > 0 {
		return strings.Repeat("'", octaveOffset)
	}
	return strings.Repeat(",", -octaveOffset)
}

func AccidentalSuffix(accidental int) string {
	if accidental > 0 {
		return strings.Repeat("#", accidental)
	}
	return strings.Repeat("b", -accidental)
}

// FormatToken writes a degree back out in notation grammar.
func FormatToken(degree, accidental, octaveOffset int) string {
	var sb strings.Builder
	sb.WriteByte(byte('0' + degree))
	sb.WriteString(AccidentalSuffix(accidental))
	sb.WriteString(OctaveMarkers(octaveOffset))
	return sb.String()
}

func MidiToFrequency(n float64) float64 {
	return 440 * math.Pow(2, (n-69)/12)
}

func FrequencyToMidi(hz float64) float64 {
	return 69 + 12*math.Log2(hz/440)
}
