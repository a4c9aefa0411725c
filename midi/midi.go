package midi

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/jsphweid/jianpu/chord"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/playback"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// ExportResolution is the ticks per quarter note of written files.
const ExportResolution = 480

// gaps shorter than this between melody notes are not written as rests
const minRest = 0.125

func ReadMidiFile(filepath string) (*smf.SMF, error) {
	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "Error reading midi file")
	}
	return Read(bytes.NewReader(dat))
}

// Read parses a standard MIDI file. The decoder can panic on corrupt input
// (https://github.com/gomidi/midi/issues/20), which is reported as an error.
func Read(r io.Reader) (s *smf.SMF, e error) {
	defer func() {
		if rec := recover(); rec != nil {
			s = nil
			e = errors.Errorf("Error parsing midi file... %v", rec)
		}
	}()

	res, err := smf.ReadFrom(r)
	if err != nil {
		return nil, errors.Wrap(err, "Error parsing midi file")
	}
	return res, nil
}

func resolution(s *smf.SMF) float64 {
	if mt, ok := s.TimeFormat.(smf.MetricTicks); ok && mt.Resolution() > 0 {
		return float64(mt.Resolution())
	}
	return 960
}

type pending struct {
	start int64
	key   uint8
}

type trackReader struct {
	resolution float64
	fifths     *int
	meter      float64
	tempo      float64
}

// readMeta keeps the first key signature, meter and tempo seen.
func (tr *trackReader) readMeta(msg smf.Message) {
	var key, num, denom uint8
	var isMajor, isFlat bool
	if tr.fifths == nil && msg.GetMetaKeySig(&key, &num, &isMajor, &isFlat) {
		f := int(num)
		if isFlat {
			f = -f
		}
		tr.fifths = &f
	}
	if tr.meter == 0 && msg.GetMetaMeter(&num, &denom) && denom > 0 {
		tr.meter = float64(num) * 4 / float64(denom)
	}
	var bpm float64
	if tr.tempo == 0 && msg.GetMetaTempo(&bpm) && bpm > 0 {
		tr.tempo = bpm
	}
}

func (tr *trackReader) readNotes(track smf.Track) []model.ScoreEvent {
	var absTicks int64
	var open []pending
	var events []model.ScoreEvent

	closeNote := func(key uint8) {
		for i, p := range open {
			if p.key == key {
				events = append(events, model.ScoreEvent{
					Pitch:    int(key),
					Start:    float64(p.start) / tr.resolution,
					Duration: float64(absTicks-p.start) / tr.resolution,
				})
				open = append(open[:i], open[i+1:]...)
				return
			}
		}
	}

	for _, event := range track {
		absTicks += int64(event.Delta)
		var channel, key, velocity uint8
		switch {
		case event.Message.GetNoteOn(&channel, &key, &velocity) && velocity > 0:
			open = append(open, pending{start: absTicks, key: key})
		case event.Message.GetNoteOn(&channel, &key, &velocity),
			event.Message.GetNoteOff(&channel, &key, &velocity):
			closeNote(key)
		default:
			tr.readMeta(event.Message)
		}
	}
	return events
}

// withRests marks chord members and fills silent gaps of the melodic line.
func withRests(events []model.ScoreEvent) []model.ScoreEvent {
	var res []model.ScoreEvent
	var cursor float64
	for _, e := range chord.MarkMembers(events) {
		if !e.ChordMember {
			if gap := e.Start - cursor; gap >= minRest {
				res = append(res, model.ScoreEvent{Rest: true, Start: cursor, Duration: gap})
			}
			cursor = e.Start + e.Duration
		}
		res = append(res, e)
	}
	return res
}

func numberMeasures(events []model.ScoreEvent, beatsPerMeasure float64) {
	if beatsPerMeasure <= 0 {
		beatsPerMeasure = 4
	}
	for i := range events {
		events[i].Measure = int(events[i].Start/beatsPerMeasure+1e-9) + 1
	}
}

// ToScore turns every track holding notes into one voice.
func ToScore(s *smf.SMF) model.Score {
	var score model.Score
	tr := &trackReader{resolution: resolution(s)}

	var voices [][]model.ScoreEvent
	for _, track := range s.Tracks {
		if events := tr.readNotes(track); len(events) > 0 {
			voices = append(voices, events)
		}
	}

	for i, events := range voices {
		events = withRests(events)
		numberMeasures(events, tr.meter)
		score.Voices = append(score.Voices, model.Voice{
			Name:   fmt.Sprintf("track %d", i+1),
			Events: events,
		})
	}
	score.Fifths = tr.fifths
	score.TempoBPM = tr.tempo

	logrus.WithFields(logrus.Fields{
		"tracks": len(s.Tracks),
		"voices": len(score.Voices),
	}).Debug("midi: read score")
	return score
}

type edge struct {
	tick uint32
	on   bool
	key  uint8
}

func ticks(beats float64) uint32 {
	if beats <= 0 {
		return 0
	}
	return uint32(beats*ExportResolution + 0.5)
}

// keySignature builds a major key meta message from a signed fifths count.
func keySignature(fifths int) smf.Message {
	root := uint8(((fifths*7)%12 + 12) % 12)
	num := fifths
	if num < 0 {
		num = -num
	}
	return smf.MetaKey(root, true, uint8(num), fifths < 0)
}

// WriteSchedule writes notes as a single-track standard MIDI file.
func WriteSchedule(w io.Writer, notes []playback.ScheduledNote, tempoBPM int, fifths int) error {
	var edges []edge
	for _, n := range notes {
		if n.Pitch < 0 || n.Pitch > 127 {
			continue
		}
		edges = append(edges,
			edge{tick: ticks(n.Beat), on: true, key: uint8(n.Pitch)},
			edge{tick: ticks(n.Beat + n.Beats), on: false, key: uint8(n.Pitch)},
		)
	}
	// offs before ons so repeated pitches retrigger
	sort.SliceStable(edges, func(i, j int) bool {
		if edges[i].tick != edges[j].tick {
			return edges[i].tick < edges[j].tick
		}
		return !edges[i].on && edges[j].on
	})

	if tempoBPM <= 0 {
		tempoBPM = 120
	}
	var track smf.Track
	track.Add(0, smf.MetaTempo(float64(tempoBPM)))
	track.Add(0, keySignature(fifths))
	var last uint32
	for _, e := range edges {
		if e.on {
			track.Add(e.tick-last, gomidi.NoteOn(0, e.key, 100))
		} else {
			track.Add(e.tick-last, gomidi.NoteOff(0, e.key))
		}
		last = e.tick
	}
	track.Close(0)

	s := smf.New()
	s.TimeFormat = smf.MetricTicks(ExportResolution)
	if err := s.Add(track); err != nil {
		return errors.Wrap(err, "could not add track")
	}
	_, err := s.WriteTo(w)
	return errors.Wrap(err, "could not write midi file")
}
