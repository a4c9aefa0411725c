package session

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bep/debounce"
	"github.com/jsphweid/jianpu/capture"
	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/db"
	"github.com/jsphweid/jianpu/document"
	"github.com/jsphweid/jianpu/importer"
	"github.com/jsphweid/jianpu/layout"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/playback"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrSaveInProgress = errors.New("a save is already in progress")

// Controller owns the edited document and everything derived from it. Every
// mutation goes through edit, which reparses all blocks and republishes the
// live capture target.
type Controller struct {
	store db.Store
	owner string

	// OnError receives failures from background work: capture, autosave.
	OnError func(error)
	// CueLength is how long PlayCue waits before recording may start.
	CueLength time.Duration

	mu     sync.Mutex
	doc    *document.Document
	parsed []document.ParsedBlock
	active int
	saving bool

	autosave func(func())
	live     atomic.Pointer[capture.Target]
	recorder *capture.Recorder
	player   *playback.Player
}

func New(store db.Store, owner string, synth playback.Synth) *Controller {
	c := &Controller{store: store, owner: owner, CueLength: constants.CueLength}
	c.replace(document.New(), 0)
	c.recorder = capture.NewRecorder(c.Target, c.captured, c.report)
	if synth != nil {
		c.player = playback.NewPlayer(synth)
	}
	return c
}

// UseSynth replaces the playback target, stopping anything still playing.
func (c *Controller) UseSynth(synth playback.Synth) {
	c.StopPlayback()
	c.mu.Lock()
	defer c.mu.Unlock()
	c.player = playback.NewPlayer(synth)
}

// EnableAutosave saves a titled document once edits pause for delay.
func (c *Controller) EnableAutosave(delay time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.autosave = debounce.New(delay)
}

func (c *Controller) report(err error) {
	logrus.WithError(err).Warn("session")
	if c.OnError != nil {
		c.OnError(err)
	}
}

// replace installs d and recomputes derived state. Callers hold mu, except New.
func (c *Controller) replace(d *document.Document, active int) {
	c.doc = d
	c.parsed = document.Parse(d)
	if active < 0 || active >= len(d.Blocks) {
		active = len(d.Blocks) - 1
	}
	c.active = active
	c.live.Store(&capture.Target{KeyIndex: d.KeyIndex, Block: active})
}

// edit applies fn to a copy of the document. A failing fn leaves state untouched.
func (c *Controller) edit(fn func(d *document.Document) error) error {
	return c.editActive(func(d *document.Document) (int, error) {
		return c.active, fn(d)
	})
}

// editActive is edit for changes that also move the active block. fn runs
// with mu held.
func (c *Controller) editActive(fn func(d *document.Document) (int, error)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := c.doc.Clone()
	active, err := fn(next)
	if err != nil {
		return err
	}
	c.replace(next, active)
	if c.autosave != nil && next.Title != "" {
		c.autosave(c.autosaveNow)
	}
	return nil
}

func (c *Controller) autosaveNow() {
	err := c.Save(context.Background())
	if err != nil && !errors.Is(err, ErrSaveInProgress) {
		c.report(errors.Wrap(err, "autosave"))
	}
}

func (c *Controller) Document() *document.Document {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.doc.Clone()
}

func (c *Controller) Parsed() []document.ParsedBlock {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]document.ParsedBlock(nil), c.parsed...)
}

// Target is the live cell read by the capture loop on every frame.
func (c *Controller) Target() capture.Target {
	return *c.live.Load()
}

func (c *Controller) ActiveBlock() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

func (c *Controller) SetActiveBlock(i int) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if i < 0 || i >= len(c.doc.Blocks) {
		return errors.Wrapf(document.ErrNoSuchBlock, "block %d", i)
	}
	c.active = i
	c.live.Store(&capture.Target{KeyIndex: c.doc.KeyIndex, Block: i})
	return nil
}

func (c *Controller) SetContent(i int, content string) error {
	return c.edit(func(d *document.Document) error { return d.SetContent(i, content) })
}

func (c *Controller) AppendToBlock(i int, token string) error {
	return c.edit(func(d *document.Document) error { return d.AppendToBlock(i, token) })
}

func (c *Controller) AddBlock(at int, t model.BlockType) error {
	return c.edit(func(d *document.Document) error {
		d.AddBlock(at, t)
		return nil
	})
}

func (c *Controller) RemoveBlock(i int) error {
	return c.edit(func(d *document.Document) error { return d.RemoveBlock(i) })
}

func (c *Controller) MoveBlock(from, to int) error {
	return c.edit(func(d *document.Document) error { return d.MoveBlock(from, to) })
}

func (c *Controller) SetKey(index int) error {
	return c.edit(func(d *document.Document) error { return d.SetKey(index) })
}

func (c *Controller) SetSettings(s model.Settings) error {
	return c.edit(func(d *document.Document) error {
		d.SetSettings(s)
		return nil
	})
}

func (c *Controller) SetTempo(bpm int) error {
	return c.edit(func(d *document.Document) error {
		d.SetTempo(bpm)
		return nil
	})
}

func (c *Controller) SetMeta(title, album string) error {
	return c.edit(func(d *document.Document) error {
		d.Title = title
		d.Album = album
		return nil
	})
}

// Import appends the imported melody as a new block, makes it active and
// switches to the detected key. A score without notes changes nothing.
func (c *Controller) Import(score model.Score, forcedKeyIndex *int) (importer.Result, error) {
	res, err := importer.Import(score, forcedKeyIndex)
	if err != nil {
		return res, err
	}
	return res, c.editActive(func(d *document.Document) (int, error) {
		if err := d.SetKey(res.DetectedKeyIndex); err != nil {
			return 0, err
		}
		d.Blocks = append(d.Blocks, model.Block{Type: model.MelodyBlock, Content: res.Text})
		return len(d.Blocks) - 1, nil
	})
}

// Layout renders every block with the current settings.
func (c *Controller) Layout() []model.Drawing {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := c.doc.Settings
	res := make([]model.Drawing, len(c.parsed))
	for i, p := range c.parsed {
		if p.Type == model.ChordsBlock {
			res[i] = layout.RenderChords(p.Glyphs, s.HorizontalSpacing)
			continue
		}
		res[i] = layout.Render(p.Tokens, s.HorizontalSpacing, s.VerticalScale)
	}
	return res
}

func (c *Controller) captured(target capture.Target, token string) {
	if err := c.AppendToBlock(target.Block, token); err != nil {
		logrus.WithError(err).WithField("block", target.Block).Debug("session: dropping captured token")
	}
}

// PlayCue switches to C and plays the reference cue, returning after
// CueLength or when ctx ends. Recording starts after it.
func (c *Controller) PlayCue(ctx context.Context) error {
	c.mu.Lock()
	player := c.player
	wait := c.CueLength
	c.mu.Unlock()
	if player == nil {
		return errors.New("no synth configured")
	}
	if err := c.SetKey(constants.DefaultKeyIndex); err != nil {
		return err
	}
	player.Start(playback.ReferenceCue())

	t := time.NewTimer(wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		player.Stop()
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// StartRecording ends any running capture session and starts polling s. The
// returned channel is closed when the session ends for any reason.
func (c *Controller) StartRecording(ctx context.Context, s capture.Sampler) <-chan struct{} {
	return c.recorder.Start(ctx, s)
}

func (c *Controller) StopRecording() {
	c.recorder.Stop()
}

func (c *Controller) Recording() bool {
	return c.recorder.Recording()
}

// Play schedules every melody block back to back and returns a channel closed
// when playback ends.
func (c *Controller) Play() (<-chan struct{}, error) {
	c.mu.Lock()
	player := c.player
	if player == nil {
		c.mu.Unlock()
		return nil, errors.New("no synth configured")
	}
	var tokens []model.Token
	for _, p := range c.parsed {
		tokens = append(tokens, p.Tokens...)
	}
	tempo := c.doc.TempoBPM
	c.mu.Unlock()
	return player.Start(playback.Schedule(tokens, tempo)), nil
}

func (c *Controller) StopPlayback() {
	c.mu.Lock()
	player := c.player
	c.mu.Unlock()
	if player != nil {
		player.Stop()
	}
}

// Save stores the document. Only one save runs at a time; a second caller
// gets ErrSaveInProgress.
func (c *Controller) Save(ctx context.Context) error {
	c.mu.Lock()
	rec, err := c.doc.Record(c.owner)
	if err != nil {
		c.mu.Unlock()
		return err
	}
	if c.saving {
		c.mu.Unlock()
		return ErrSaveInProgress
	}
	c.saving = true
	c.mu.Unlock()

	err = c.store.Save(ctx, rec)

	c.mu.Lock()
	c.saving = false
	c.mu.Unlock()
	return err
}

func (c *Controller) Saving() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.saving
}

// Load replaces the document with a stored one. On failure the current
// document stays.
func (c *Controller) Load(ctx context.Context, title, album string) error {
	rec, err := c.store.Load(ctx, c.owner, title, album)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.replace(document.FromRecord(rec), 0)
	return nil
}

func (c *Controller) Delete(ctx context.Context, title, album string) error {
	return c.store.Delete(ctx, c.owner, title, album)
}

func (c *Controller) List(ctx context.Context) ([]model.DocumentSummary, error) {
	return c.store.List(ctx, c.owner)
}

// Close ends capture and playback sessions.
func (c *Controller) Close() {
	c.StopRecording()
	c.StopPlayback()
}
