package model

// Score is the structured shape every import front end produces. Times and
// durations are measured in quarter notes.
type Score struct {
	Title    string  `json:"title,omitempty"`
	Fifths   *int    `json:"fifths,omitempty"`
	TempoBPM float64 `json:"tempoBPM,omitempty"`
	Voices   []Voice `json:"voices"`
}

type Voice struct {
	Name   string       `json:"name,omitempty"`
	Events []ScoreEvent `json:"events"`
}

type ScoreEvent struct {
	Rest        bool    `json:"rest,omitempty"`
	Pitch       int     `json:"pitch"`
	Start       float64 `json:"start"`
	Duration    float64 `json:"duration"`
	ChordMember bool    `json:"chordMember,omitempty"`

	// NOTE: zero when the source has no measure information
	Measure int `json:"measure,omitempty"`
}

// NoteCount counts the non-rest events of the voice, chord members included.
func (v Voice) NoteCount() int {
	n := 0
	for _, e := range v.Events {
		if !e.Rest {
			n++
		}
	}
	return n
}
