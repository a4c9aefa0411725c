package capture

import (
	"math"
	"time"

	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/pitch"
	"github.com/sirupsen/logrus"
)

// Detection is one reading from the pitch detector. A zero Frequency means
// silence.
type Detection struct {
	Frequency float64
	Clarity   float64
	At        time.Time
}

type Config struct {
	MinClarity   float64
	MinFrequency float64
	MaxFrequency float64
	Stability    time.Duration
	Refractory   time.Duration
}

func DefaultConfig() Config {
	return Config{
		MinClarity:   constants.MinClarity,
		MinFrequency: constants.MinFrequency,
		MaxFrequency: constants.MaxFrequency,
		Stability:    constants.StabilityWindow,
		Refractory:   constants.RefractoryPeriod,
	}
}

// Debouncer turns a noisy stream of detections into committed notes. A pitch
// must hold for the stability window before it commits. A committed tone
// that keeps sounding, or drops out for less than the refractory period, is
// not committed again.
type Debouncer struct {
	cfg Config

	candidate int
	since     time.Time
	held      bool

	committed bool
	lastPitch int
	lastHeard time.Time
}

func NewDebouncer(cfg Config) *Debouncer {
	return &Debouncer{cfg: cfg, candidate: -1}
}

func (d *Debouncer) accept(det Detection) bool {
	if math.IsNaN(det.Frequency) || math.IsNaN(det.Clarity) {
		return false
	}
	return det.Clarity >= d.cfg.MinClarity &&
		det.Frequency >= d.cfg.MinFrequency &&
		det.Frequency <= d.cfg.MaxFrequency
}

// Reset forgets the current candidate, as if silence was heard.
func (d *Debouncer) Reset() {
	d.candidate = -1
	d.held = false
}

// Feed returns the rounded MIDI pitch when det completes a stable note.
func (d *Debouncer) Feed(det Detection) (int, bool) {
	if !d.accept(det) {
		d.Reset()
		return 0, false
	}

	p := int(math.Round(pitch.FrequencyToMidi(det.Frequency)))
	if p != d.candidate {
		d.candidate = p
		d.since = det.At
		d.held = d.committed && p == d.lastPitch && det.At.Sub(d.lastHeard) < d.cfg.Refractory
	}
	if d.held {
		d.lastHeard = det.At
		return 0, false
	}
	if det.At.Sub(d.since) < d.cfg.Stability {
		return 0, false
	}

	d.held = true
	d.committed = true
	d.lastPitch = p
	d.lastHeard = det.At
	return p, true
}

// Commit turns a committed pitch into a notation token for key. Chromatic
// pitches are dropped rather than guessed.
func Commit(key model.Key, midiPitch int) (string, bool) {
	frag, err := pitch.FromAbsolutePitch(key, midiPitch)
	if err != nil {
		logrus.WithFields(logrus.Fields{"pitch": midiPitch, "key": key.Name}).Debug("capture: dropping chromatic pitch")
		return "", false
	}
	return pitch.FormatToken(frag.Degree, frag.Accidental, frag.OctaveOffset), true
}
