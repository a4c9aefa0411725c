package scale

import (
	"github.com/jsphweid/jianpu/model"
	"github.com/pkg/errors"
)

var ErrOutOfRangeKey = errors.New("key index out of range")

// NumbersOnly is the index of the identity key whose labels are the digits
// themselves. Its root is always C.
const NumbersOnly = 12

// keys follows the circle of fifths: sharps ascending from C, then flats.
// Stored documents persist these indexes.
var keys = []model.Key{
	{Name: "C Major", RootPitchClass: 0, DegreeLabels: [7]string{"C", "D", "E", "F", "G", "A", "B"}},
	{Name: "G Major", RootPitchClass: 7, DegreeLabels: [7]string{"G", "A", "B", "C", "D", "E", "F#"}},
	{Name: "D Major", RootPitchClass: 2, DegreeLabels: [7]string{"D", "E", "F#", "G", "A", "B", "C#"}},
	{Name: "A Major", RootPitchClass: 9, DegreeLabels: [7]string{"A", "B", "C#", "D", "E", "F#", "G#"}},
	{Name: "E Major", RootPitchClass: 4, DegreeLabels: [7]string{"E", "F#", "G#", "A", "B", "C#", "D#"}},
	{Name: "B Major", RootPitchClass: 11, DegreeLabels: [7]string{"B", "C#", "D#", "E", "F#", "G#", "A#"}},
	{Name: "F# Major", RootPitchClass: 6, DegreeLabels: [7]string{"F#", "G#", "A#", "B", "C#", "D#", "E#"}},
	{Name: "Db Major", RootPitchClass: 1, DegreeLabels: [7]string{"Db", "Eb", "F", "Gb", "Ab", "Bb", "C"}},
	{Name: "Ab Major", RootPitchClass: 8, DegreeLabels: [7]string{"Ab", "Bb", "C", "Db", "Eb", "F", "G"}},
	{Name: "Eb Major", RootPitchClass: 3, DegreeLabels: [7]string{"Eb", "F", "G", "Ab", "Bb", "C", "D"}},
	{Name: "Bb Major", RootPitchClass: 10, DegreeLabels: [7]string{"Bb", "C", "D", "Eb", "F", "G", "A"}},
	{Name: "F Major", RootPitchClass: 5, DegreeLabels: [7]string{"F", "G", "A", "Bb", "C", "D", "E"}},
	{Name: "Numbers Only", RootPitchClass: 0, DegreeLabels: [7]string{"1", "2", "3", "4", "5", "6", "7"}},
}

func Count() int {
	return len(keys)
}

// All returns a copy of the catalog in index order.
func All() []model.Key {
	res := make([]model.Key, len(keys))
	copy(res, keys)
	return res
}

func KeyAt(index int) (model.Key, error) {
	if index < 0 || index >= len(keys) {
		return model.Key{}, errors.Wrapf(ErrOutOfRangeKey, "index %d", index)
	}
	return keys[index], nil
}

// MustKeyAt is for indexes that were already validated.
func MustKeyAt(index int) model.Key {
	k, err := KeyAt(index)
	if err != nil {
		panic(err)
	}
	return k
}

// IndexOfFifths maps a signed key-signature fifths count to a catalog index.
// Values without an entry fall back to C so key detection never blocks a load.
func IndexOfFifths(fifths int) int {
	if fifths < -7 || fifths > 7 {
		return 0
	}
	pc := ((fifths*7)%12 + 12) % 12
	for i, k := range keys[:NumbersOnly] {
		if k.RootPitchClass == pc {
			return i
		}
	}
	return 0
}

// Fifths is the signed key-signature count for a catalog index, preferring
// flats for Db, Eb, Ab and Bb. Numbers Only reports 0.
func Fifths(index int) int {
	if index < 0 || index >= NumbersOnly {
		return 0
	}
	f := (keys[index].RootPitchClass * 7) % 12
	if f > 6 {
		f -= 12
	}
	return f
}
