package musicxml

import (
	"github.com/jsphweid/jianpu/model"
)

type partReader struct {
	divisions float64
	cursor    float64
	lastStart float64
	fifths    *int
	tempo     float64
	events    []model.ScoreEvent
}

func (pr *partReader) quarters(duration int) float64 {
	return float64(duration) / pr.divisions
}

func primaryVoice(voice string) bool {
	return voice == "" || voice == "1"
}

func (pr *partReader) readNote(n *Note, measure int) {
	if n.Grace != nil {
		return
	}
	if !primaryVoice(n.Voice) {
		if n.Chord == nil {
			pr.cursor += pr.quarters(n.Duration)
		}
		return
	}

	start := pr.cursor
	if n.Chord != nil {
		start = pr.lastStart
	} else {
		pr.lastStart = pr.cursor
		pr.cursor += pr.quarters(n.Duration)
	}

	event := model.ScoreEvent{
		Rest:        n.Rest != nil,
		Start:       start,
		Duration:    pr.quarters(n.Duration),
		ChordMember: n.Chord != nil,
		Measure:     measure,
	}
	switch {
	case n.Rest != nil:
	case n.Pitch != nil:
		event.Pitch = n.Pitch.Key()
	default:
		event.Pitch = -1
	}

	// a tied continuation lengthens the note it continues
	if n.tieStop() && n.Chord == nil {
		for i := len(pr.events) - 1; i >= 0; i-- {
			prev := &pr.events[i]
			if !prev.ChordMember && !prev.Rest {
				if prev.Pitch == event.Pitch {
					prev.Duration += event.Duration
					return
				}
				break
			}
		}
	}
	pr.events = append(pr.events, event)
}

func (pr *partReader) readMeasure(m Measure, number int) {
	for _, ev := range m.Events {
		switch v := ev.(type) {
		case *Attributes:
			if v.Divisions > 0 {
				pr.divisions = float64(v.Divisions)
			}
			if v.Key != nil && pr.fifths == nil {
				f := v.Key.Fifths
				pr.fifths = &f
			}
		case *Note:
			pr.readNote(v, number)
		case *Backup:
			pr.cursor -= pr.quarters(v.Duration)
		case *Forward:
			pr.cursor += pr.quarters(v.Duration)
		case *Sound:
			if pr.tempo == 0 && v.Tempo > 0 {
				pr.tempo = v.Tempo
			}
		case *Direction:
			if v.Sound != nil && pr.tempo == 0 && v.Sound.Tempo > 0 {
				pr.tempo = v.Sound.Tempo
			}
		}
	}
}

// ToScore makes one voice per part from its first notated voice. Measures
// are numbered by position so pickup bars and "X1" style numbers still
// separate.
func ToScore(doc *Doc) model.Score {
	score := model.Score{Title: doc.WorkTitle}
	if score.Title == "" {
		score.Title = doc.MovementTitle
	}

	for _, part := range doc.Parts {
		pr := &partReader{divisions: 1}
		for i, m := range part.Measures {
			pr.readMeasure(m, i+1)
		}
		if score.Fifths == nil {
			score.Fifths = pr.fifths
		}
		if score.TempoBPM == 0 {
			score.TempoBPM = pr.tempo
		}
		score.Voices = append(score.Voices, model.Voice{Name: part.ID, Events: pr.events})
	}
	return score
}
