package capture

import (
	"context"
	"sync"
	"time"

	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/scale"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Sampler is the capture device together with its pitch detector. Sample is
// called once per frame.
type Sampler interface {
	Sample() (Detection, error)
	Close() error
}

// Target is what the loop reads from the live cell at the top of every
// frame: the key to resolve against and the block to write into.
type Target struct {
	KeyIndex int
	Block    int
}

// Recorder runs one capture session at a time. Callbacks run on the loop's
// goroutine and must not call Stop.
type Recorder struct {
	Config   Config
	Interval time.Duration

	live    func() Target
	onToken func(Target, string)
	onError func(error)

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

func NewRecorder(live func() Target, onToken func(Target, string), onError func(error)) *Recorder {
	return &Recorder{
		Config:   DefaultConfig(),
		Interval: constants.FrameInterval,
		live:     live,
		onToken:  onToken,
		onError:  onError,
	}
}

// Start tears down any running session before polling s. The returned
// channel is closed once the loop has exited and released s.
func (r *Recorder) Start(ctx context.Context, s Sampler) <-chan struct{} {
	r.Stop()

	r.mu.Lock()
	defer r.mu.Unlock()
	ctx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	r.cancel = cancel
	r.done = done
	go r.loop(ctx, s, done)
	return done
}

// Stop cancels the session and waits until the loop has exited and released
// the sampler. Stopping a stopped recorder does nothing.
func (r *Recorder) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel == nil {
		return
	}
	r.cancel()
	<-r.done
	r.cancel = nil
	r.done = nil
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.done == nil {
		return false
	}
	select {
	case <-r.done:
		return false
	default:
		return true
	}
}

func (r *Recorder) loop(ctx context.Context, s Sampler, done chan struct{}) {
	defer close(done)
	defer func() {
		if err := s.Close(); err != nil {
			logrus.WithError(err).Warn("capture: closing sampler")
		}
	}()

	deb := NewDebouncer(r.Config)
	ticker := time.NewTicker(r.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
		// the ticker and cancellation can be ready together
		if ctx.Err() != nil {
			return
		}

		target := r.live()
		det, err := s.Sample()
		if err != nil {
			if r.onError != nil {
				r.onError(errors.Wrap(err, "capture: sampling failed"))
			}
			return
		}
		p, ok := deb.Feed(det)
		if !ok {
			continue
		}
		key, err := scale.KeyAt(target.KeyIndex)
		if err != nil {
			continue
		}
		if token, ok := Commit(key, p); ok {
			r.onToken(target, token)
		}
	}
}
