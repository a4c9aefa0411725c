package playback

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Synth is the tone generator collaborator.
type Synth interface {
	NoteOn(pitch int) error
	NoteOff(pitch int) error
}

// Player plays one schedule at a time. Starting a new schedule stops the
// current one first; stopping twice is harmless.
type Player struct {
	synth Synth

	mu       sync.Mutex
	timers   []*time.Timer
	sounding map[int]int
	session  int
	finished chan struct{}
}

func NewPlayer(synth Synth) *Player {
	return &Player{synth: synth, sounding: make(map[int]int)}
}

// Start schedules notes relative to now and returns a channel closed once the
// last note has been released or the session is stopped.
func (p *Player) Start(notes []ScheduledNote) <-chan struct{} {
	p.Stop()

	p.mu.Lock()
	defer p.mu.Unlock()
	p.session++
	session := p.session
	finished := make(chan struct{})
	p.finished = finished

	if len(notes) == 0 {
		close(finished)
		p.finished = nil
		return finished
	}

	for _, n := range notes {
		n := n
		p.timers = append(p.timers,
			time.AfterFunc(n.Start, func() { p.on(session, n.Pitch) }),
			time.AfterFunc(n.Start+n.Duration, func() { p.off(session, n.Pitch) }),
		)
	}
	p.timers = append(p.timers, time.AfterFunc(Length(notes), func() { p.finish(session) }))
	return finished
}

func (p *Player) on(session, pitch int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if session != p.session {
		return
	}
	if err := p.synth.NoteOn(pitch); err != nil {
		logrus.WithError(err).WithField("pitch", pitch).Warn("playback: note on failed")
		return
	}
	p.sounding[pitch]++
}

func (p *Player) off(session, pitch int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if session != p.session || p.sounding[pitch] == 0 {
		return
	}
	p.release(pitch)
}

func (p *Player) release(pitch int) {
	if err := p.synth.NoteOff(pitch); err != nil {
		logrus.WithError(err).WithField("pitch", pitch).Warn("playback: note off failed")
	}
	p.sounding[pitch]--
	if p.sounding[pitch] <= 0 {
		delete(p.sounding, pitch)
	}
}

func (p *Player) finish(session int) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if session != p.session || p.finished == nil {
		return
	}
	for pitch, n := range p.sounding {
		for i := 0; i < n; i++ {
			p.release(pitch)
		}
	}
	close(p.finished)
	p.finished = nil
	p.timers = nil
}

// Stop cancels pending events and silences every sounding note.
func (p *Player) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, t := range p.timers {
		t.Stop()
	}
	p.timers = nil
	// late timer callbacks see a stale session and do nothing
	p.session++
	for pitch, n := range p.sounding {
		for i := 0; i < n; i++ {
			p.release(pitch)
		}
	}
	if p.finished != nil {
		close(p.finished)
		p.finished = nil
	}
}

func (p *Player) Playing() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.finished != nil
}
