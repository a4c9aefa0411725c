package playback

import (
	"time"

	"github.com/jsphweid/jianpu/model"
)

// ScheduledNote is one sounding note placed on an absolute timeline. Beat and
// Beats are in quarter notes; Start and Duration are at the schedule tempo.
type ScheduledNote struct {
	Pitch    int
	Beat     float64
	Beats    float64
	Start    time.Duration
	Duration time.Duration
}

func beatDuration(tempoBPM int) time.Duration {
	if tempoBPM <= 0 {
		tempoBPM = 120
	}
	return time.Minute / time.Duration(tempoBPM)
}

// Schedule lays tokens end to end. Rests advance time; bars take none.
func Schedule(tokens []model.Token, tempoBPM int) []ScheduledNote {
	beat := beatDuration(tempoBPM)
	var res []ScheduledNote
	var cursor float64
	for _, t := range tokens {
		switch t.Kind {
		case model.KindNote:
			res = append(res, ScheduledNote{
				Pitch:    t.Note.AbsolutePitch,
				Beat:     cursor,
				Beats:    t.Note.Duration,
				Start:    time.Duration(cursor * float64(beat)),
				Duration: time.Duration(t.Note.Duration * float64(beat)),
			})
			cursor += t.Note.Duration
		case model.KindRest:
			cursor += t.Rest.Duration
		}
	}
	return res
}

// Length is when the last scheduled note stops sounding.
func Length(notes []ScheduledNote) time.Duration {
	var end time.Duration
	for _, n := range notes {
		if e := n.Start + n.Duration; e > end {
			end = e
		}
	}
	return end
}
