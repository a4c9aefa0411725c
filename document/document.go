package document

import (
	"strings"

	"github.com/jsphweid/jianpu/constants"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/notation"
	"github.com/jsphweid/jianpu/scale"
	"github.com/pkg/errors"
)

var (
	ErrMissingTitle = errors.New("a title is required to save")
	ErrNoSuchBlock  = errors.New("no such block")
)

// Document is the single mutable source of truth for an edited piece. Parsed
// output is always derived from it with Parse, never stored on it.
type Document struct {
	Title    string
	Album    string
	KeyIndex int
	TempoBPM int
	Blocks   []model.Block
	Settings model.Settings
}

func DefaultSettings() model.Settings {
	return model.Settings{
		HorizontalSpacing: constants.DefaultHorizontalSpacing,
		VerticalScale:     constants.DefaultVerticalScale,
	}
}

func New() *Document {
	return &Document{
		KeyIndex: constants.DefaultKeyIndex,
		TempoBPM: constants.DefaultTempoBPM,
		Blocks:   []model.Block{{Type: model.MelodyBlock}},
		Settings: DefaultSettings(),
	}
}

func (d *Document) Clone() *Document {
	c := *d
	c.Blocks = append([]model.Block(nil), d.Blocks...)
	return &c
}

func (d *Document) Key() model.Key {
	return scale.MustKeyAt(d.KeyIndex)
}

func (d *Document) checkBlock(i int) error {
	if i < 0 || i >= len(d.Blocks) {
		return errors.Wrapf(ErrNoSuchBlock, "block %d of %d", i, len(d.Blocks))
	}
	return nil
}

func (d *Document) SetContent(i int, content string) error {
	if err := d.checkBlock(i); err != nil {
		return err
	}
	d.Blocks[i].Content = content
	return nil
}

// AppendToBlock adds a token to the end of a block, space separated.
func (d *Document) AppendToBlock(i int, token string) error {
	if err := d.checkBlock(i); err != nil {
		return err
	}
	content := d.Blocks[i].Content
	if strings.TrimSpace(content) != "" && !strings.HasSuffix(content, " ") {
		content += " "
	}
	d.Blocks[i].Content = content + token
	return nil
}

// AddBlock inserts an empty block after index at, or at the end when at is out of range.
func (d *Document) AddBlock(at int, t model.BlockType) int {
	if t != model.ChordsBlock {
		t = model.MelodyBlock
	}
	b := model.Block{Type: t}
	if at < 0 || at >= len(d.Blocks) {
		d.Blocks = append(d.Blocks, b)
		return len(d.Blocks) - 1
	}
	d.Blocks = append(d.Blocks[:at+1], append([]model.Block{b}, d.Blocks[at+1:]...)...)
	return at + 1
}

// RemoveBlock deletes a block. The last remaining block is cleared instead.
func (d *Document) RemoveBlock(i int) error {
	if err := d.checkBlock(i); err != nil {
		return err
	}
	if len(d.Blocks) == 1 {
		d.Blocks[0] = model.Block{Type: model.MelodyBlock}
		return nil
	}
	d.Blocks = append(d.Blocks[:i], d.Blocks[i+1:]...)
	return nil
}

func (d *Document) MoveBlock(from, to int) error {
	if err := d.checkBlock(from); err != nil {
		return err
	}
	if err := d.checkBlock(to); err != nil {
		return err
	}
	b := d.Blocks[from]
	d.Blocks = append(d.Blocks[:from], d.Blocks[from+1:]...)
	d.Blocks = append(d.Blocks[:to], append([]model.Block{b}, d.Blocks[to:]...)...)
	return nil
}

func (d *Document) SetKey(index int) error {
	if _, err := scale.KeyAt(index); err != nil {
		return err
	}
	d.KeyIndex = index
	return nil
}

// SetSettings replaces layout settings. Non-positive spacing and negative
// scale keep the current values; a zero scale draws every note on one line.
func (d *Document) SetSettings(s model.Settings) {
	if s.HorizontalSpacing > 0 {
		d.Settings.HorizontalSpacing = s.HorizontalSpacing
	}
	if s.VerticalScale >= 0 {
		d.Settings.VerticalScale = s.VerticalScale
	}
}

func (d *Document) SetTempo(bpm int) {
	if bpm > 0 {
		d.TempoBPM = bpm
	}
}

// ParsedBlock is the derived view of one block.
type ParsedBlock struct {
	Type          model.BlockType `json:"type"`
	Tokens        []model.Token   `json:"tokens,omitempty"`
	TotalDuration float64         `json:"totalDuration"`
	Glyphs        []string        `json:"glyphs,omitempty"`
}

func ParseBlock(b model.Block, key model.Key) ParsedBlock {
	if b.Type == model.ChordsBlock {
		return ParsedBlock{Type: b.Type, Glyphs: notation.ParseChords(b.Content)}
	}
	tokens, total := notation.Parse(b.Content, key)
	return ParsedBlock{Type: model.MelodyBlock, Tokens: tokens, TotalDuration: total}
}

// Parse recomputes every block from scratch against the document key.
func Parse(d *Document) []ParsedBlock {
	key := d.Key()
	res := make([]ParsedBlock, len(d.Blocks))
	for i, b := range d.Blocks {
		res[i] = ParseBlock(b, key)
	}
	return res
}

func (d *Document) Envelope() model.Envelope {
	return model.Envelope{Blocks: append([]model.Block(nil), d.Blocks...), Settings: d.Settings}
}

func (d *Document) Record(owner string) (model.DocumentRecord, error) {
	if strings.TrimSpace(d.Title) == "" {
		return model.DocumentRecord{}, ErrMissingTitle
	}
	return model.DocumentRecord{
		Owner:    owner,
		Title:    d.Title,
		Album:    d.Album,
		KeyIndex: d.KeyIndex,
		TempoBPM: d.TempoBPM,
		Envelope: d.Envelope(),
	}, nil
}

// FromRecord rebuilds a document, defaulting anything the record left out.
func FromRecord(r model.DocumentRecord) *Document {
	d := New()
	d.Title = r.Title
	d.Album = r.Album
	if _, err := scale.KeyAt(r.KeyIndex); err == nil {
		d.KeyIndex = r.KeyIndex
	}
	d.SetTempo(r.TempoBPM)
	if len(r.Envelope.Blocks) > 0 {
		d.Blocks = append([]model.Block(nil), r.Envelope.Blocks...)
	}
	if r.Envelope.Settings != (model.Settings{}) {
		d.SetSettings(r.Envelope.Settings)
	}
	return d
}
