package chord

import (
	"fmt"
	"sort"

	"github.com/jsphweid/jianpu/model"
)

// onsets closer than this (in quarter notes) count as simultaneous
const onsetTolerance = 1.0 / 64

// SplitGlyphs breaks a chords block into its characters. Chords carry no
// musical meaning; each character is drawn as-is.
func SplitGlyphs(content string) []string {
	var res []string
	for _, r := range content {
		res = append(res, string(r))
	}
	return res
}

// CreateChordKey names a set of sounding pitches, lowest first.
func CreateChordKey(notes []int) string {
	sorted := append([]int(nil), notes...)
	sort.Ints(sorted)
	var res string
	for i, note := range sorted {
		res += fmt.Sprintf("%v", note)
		if i < len(sorted)-1 {
			res += "-"
		}
	}
	return res
}

// MarkMembers sorts events by onset and flags every sounding note that shares
// an onset with an earlier one. The first note at each onset stays melodic.
func MarkMembers(events []model.ScoreEvent) []model.ScoreEvent {
	res := append([]model.ScoreEvent(nil), events...)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Start < res[j].Start
	})

	lastOnset := -1.0
	seen := false
	for i := range res {
		if res[i].Rest {
			continue
		}
		if seen && res[i].Start-lastOnset < onsetTolerance {
			res[i].ChordMember = true
			continue
		}
		lastOnset = res[i].Start
		seen = true
	}
	return res
}

// Onsets maps each start time shared by more than one sounding note to the
// chord name of those notes.
func Onsets(events []model.ScoreEvent) map[float64]string {
	pressed := make(map[float64][]int)
	for _, e := range events {
		if !e.Rest {
			pressed[e.Start] = append(pressed[e.Start], e.Pitch)
		}
	}
	res := make(map[float64]string)
	for start, notes := range pressed {
		if len(notes) > 1 {
			res[start] = CreateChordKey(notes)
		}
	}
	return res
}
