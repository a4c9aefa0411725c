package importer

import (
	"math"
	"strings"

	"github.com/jsphweid/jianpu/chord"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/pitch"
	"github.com/jsphweid/jianpu/scale"
	"github.com/jsphweid/jianpu/util"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrNoNotes = errors.New("no notes found")

// Placeholder stands in for a source note that could not be read.
const Placeholder = "?"

const restDegree = "0"

type Result struct {
	Text             string
	DetectedKeyIndex int
}

// chromatic residues are spelled as a sharpened lower neighbour
var chromatic = map[int]string{
	1:  "1#",
	3:  "2#",
	6:  "4#",
	8:  "5#",
	10: "6#",
}

type bucket struct {
	beats  float64
	suffix string
}

// longest first
var buckets = []bucket{
	{4, "---"},
	{3, "--"},
	{2, "-"},
	{1.5, "."},
	{1, ""},
	{0.75, "_."},
	{0.5, "_"},
	{0.25, "__"},
}

// Quantize snaps a duration in quarter notes to the nearest notation bucket.
// Nothing carries over to the next note.
func Quantize(beats float64) (float64, string) {
	for i := 0; i < len(buckets)-1; i++ {
		threshold := (buckets[i].beats + buckets[i+1].beats) / 2
		if beats >= threshold {
			return buckets[i].beats, buckets[i].suffix
		}
	}
	last := buckets[len(buckets)-1]
	return last.beats, last.suffix
}

// DetectKey prefers a valid forced index, then the score's fifths, then C.
func DetectKey(score model.Score, forcedKeyIndex *int) int {
	if forcedKeyIndex != nil {
		if _, err := scale.KeyAt(*forcedKeyIndex); err == nil {
			return *forcedKeyIndex
		}
		logrus.WithField("keyIndex", *forcedKeyIndex).Debug("import: ignoring out of range forced key")
	}
	if score.Fifths != nil {
		return scale.IndexOfFifths(*score.Fifths)
	}
	return 0
}

// melody picks the voice with the most notes. Ties go to the earlier voice.
func melody(score model.Score) (model.Voice, bool) {
	best, most := -1, 0
	for i, v := range score.Voices {
		if n := v.NoteCount(); n > most {
			best, most = i, n
		}
	}
	if best < 0 {
		return model.Voice{}, false
	}
	return score.Voices[best], true
}

// ReducedChords names the chords of a voice in onset order, lowest pitch
// first. Import keeps only the first note of each.
func ReducedChords(voice model.Voice) []string {
	onsets := chord.Onsets(voice.Events)
	res := make([]string, 0, len(onsets))
	for _, start := range util.GetKeys(onsets) {
		res = append(res, onsets[start])
	}
	return res
}

func malformed(e model.ScoreEvent) bool {
	if math.IsNaN(e.Duration) || math.IsInf(e.Duration, 0) || e.Duration <= 0 {
		return true
	}
	return !e.Rest && (e.Pitch < 0 || e.Pitch > 127)
}

func noteToken(key model.Key, e model.ScoreEvent) (string, bool) {
	frag, err := pitch.FromAbsolutePitch(key, e.Pitch)
	if err == nil {
		return pitch.FormatToken(frag.Degree, frag.Accidental, frag.OctaveOffset), false
	}
	residue := pitch.Residue(key, e.Pitch)
	return chromatic[residue] + pitch.OctaveMarkers(frag.OctaveOffset), true
}

// Import reduces the voice of score with the most notes to notation text.
// Only the melodic line is kept: chord members are skipped.
func Import(score model.Score, forcedKeyIndex *int) (Result, error) {
	voice, ok := melody(score)
	if !ok {
		return Result{}, ErrNoNotes
	}

	keyIndex := DetectKey(score, forcedKeyIndex)
	key := scale.MustKeyAt(keyIndex)

	var parts []string
	var beats []float64
	var approximated, placeholders, skipped int
	measure := 0
	for _, e := range voice.Events {
		if e.ChordMember {
			skipped++
			continue
		}
		if e.Measure != 0 {
			if measure != 0 && e.Measure != measure && len(parts) > 0 {
				parts = append(parts, "|")
			}
			measure = e.Measure
		}
		if malformed(e) {
			parts = append(parts, Placeholder)
			placeholders++
			continue
		}

		quantized, suffix := Quantize(e.Duration)
		beats = append(beats, quantized)
		if e.Rest {
			parts = append(parts, restDegree+suffix)
			continue
		}
		token, approx := noteToken(key, e)
		if approx {
			approximated++
		}
		parts = append(parts, token+suffix)
	}

	logrus.WithFields(logrus.Fields{
		"key":          key.Name,
		"voice":        voice.Name,
		"chordMembers": skipped,
		"chords":       ReducedChords(voice),
		"beats":        util.Sum(beats),
		"approximated": approximated,
		"placeholders": placeholders,
	}).Debug("import: reduced score")

	return Result{Text: strings.Join(parts, " "), DetectedKeyIndex: keyIndex}, nil
}
