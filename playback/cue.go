package playback

import "time"

type chordHit struct {
	pitches []int
	at      time.Duration
	length  time.Duration
}

// I IV I in C around middle C
var cue = []chordHit{
	{[]int{60, 64, 67}, 0, 800 * time.Millisecond},
	{[]int{65, 69, 72}, time.Second, 800 * time.Millisecond},
	{[]int{60, 64, 67}, 2 * time.Second, 1500 * time.Millisecond},
}

// ReferenceCue is the chord progression played before recording so the
// singer hears the key. Beats are seconds, as at 60 BPM.
func ReferenceCue() []ScheduledNote {
	var res []ScheduledNote
	for _, h := range cue {
		for _, p := range h.pitches {
			res = append(res, ScheduledNote{
				Pitch:    p,
				Beat:     h.at.Seconds(),
				Beats:    h.length.Seconds(),
				Start:    h.at,
				Duration: h.length,
			})
		}
	}
	return res
}
