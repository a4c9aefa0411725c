package document

import (
	"bytes"
	"encoding/json"

	"github.com/jsphweid/jianpu/model"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func Encode(blocks []model.Block, settings model.Settings) ([]byte, error) {
	if blocks == nil {
		blocks = []model.Block{}
	}
	data, err := json.Marshal(model.Envelope{Blocks: blocks, Settings: settings})
	return data, errors.Wrap(err, "encoding envelope")
}

// decoded carries settings as pointers so an explicit zero survives
// normalization.
type decoded struct {
	blocks            []model.Block
	horizontalSpacing *float64
	verticalScale     *float64
}

type decoder func([]byte) (decoded, error)

// Decode tries the current envelope first and then each older shape in turn.
// Anything left over becomes a single melody block holding the raw content.
func Decode(data []byte) model.Envelope {
	for _, dec := range []struct {
		name string
		fn   decoder
	}{
		{"envelope", decodeEnvelope},
		{"strings", decodeStrings},
		{"mixed", decodeMixed},
	} {
		d, err := dec.fn(data)
		if err == nil {
			return normalize(d)
		}
		logrus.WithError(err).WithField("shape", dec.name).Debug("envelope: shape did not match")
	}
	return normalize(decoded{blocks: []model.Block{{Type: model.MelodyBlock, Content: rawContent(data)}}})
}

func strict(data []byte, v interface{}) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("trailing data")
	}
	return nil
}

// envelopeShape is strict about top-level keys only. Blocks and settings are
// decoded leniently below it.
type envelopeShape struct {
	Blocks   *json.RawMessage `json:"blocks"`
	Settings *json.RawMessage `json:"settings"`
}

// settingsShape also reads kerning, the older name for horizontal spacing.
type settingsShape struct {
	HorizontalSpacing *float64 `json:"horizontalSpacing"`
	Kerning           *float64 `json:"kerning"`
	VerticalScale     *float64 `json:"verticalScale"`
}

type blockShape struct {
	Type    *model.BlockType `json:"type"`
	Content *string          `json:"content"`
}

func (b blockShape) block() (model.Block, error) {
	if b.Content == nil {
		return model.Block{}, errors.New("block without content")
	}
	t := model.MelodyBlock
	if b.Type != nil {
		switch *b.Type {
		case model.MelodyBlock, model.ChordsBlock:
			t = *b.Type
		default:
			return model.Block{}, errors.Errorf("unknown block type %q", *b.Type)
		}
	}
	return model.Block{Type: t, Content: *b.Content}, nil
}

// decodeEnvelope accepts blocks as objects, plain strings or a mix of both,
// and envelopes written before settings existed.
func decodeEnvelope(data []byte) (decoded, error) {
	var shape envelopeShape
	if err := strict(data, &shape); err != nil {
		return decoded{}, err
	}
	if shape.Blocks == nil {
		return decoded{}, errors.New("no blocks")
	}
	var items []json.RawMessage
	if err := json.Unmarshal(*shape.Blocks, &items); err != nil {
		return decoded{}, errors.Wrap(err, "blocks")
	}
	blocks, err := decodeItems(items)
	if err != nil {
		return decoded{}, err
	}
	d := decoded{blocks: blocks}
	if shape.Settings != nil {
		var s settingsShape
		if err := json.Unmarshal(*shape.Settings, &s); err != nil {
			logrus.WithError(err).Debug("envelope: ignoring unreadable settings")
			return d, nil
		}
		d.horizontalSpacing = s.HorizontalSpacing
		if d.horizontalSpacing == nil {
			d.horizontalSpacing = s.Kerning
		}
		d.verticalScale = s.VerticalScale
	}
	return d, nil
}

func decodeStrings(data []byte) (decoded, error) {
	var contents []string
	if err := strict(data, &contents); err != nil {
		return decoded{}, err
	}
	var d decoded
	for _, c := range contents {
		d.blocks = append(d.blocks, model.Block{Type: model.MelodyBlock, Content: c})
	}
	return d, nil
}

func decodeMixed(data []byte) (decoded, error) {
	var items []json.RawMessage
	if err := strict(data, &items); err != nil {
		return decoded{}, err
	}
	blocks, err := decodeItems(items)
	if err != nil {
		return decoded{}, err
	}
	return decoded{blocks: blocks}, nil
}

func decodeItems(items []json.RawMessage) ([]model.Block, error) {
	var blocks []model.Block
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil {
			blocks = append(blocks, model.Block{Type: model.MelodyBlock, Content: s})
			continue
		}
		var shape blockShape
		if err := json.Unmarshal(item, &shape); err != nil {
			return nil, err
		}
		block, err := shape.block()
		if err != nil {
			return nil, err
		}
		blocks = append(blocks, block)
	}
	return blocks, nil
}

func rawContent(data []byte) string {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s
	}
	return string(data)
}

// normalize fills defaults. Spacing must be positive; a vertical scale of
// zero is kept and renders flat.
func normalize(d decoded) model.Envelope {
	env := model.Envelope{Blocks: d.blocks, Settings: DefaultSettings()}
	if len(env.Blocks) == 0 {
		env.Blocks = []model.Block{{Type: model.MelodyBlock}}
	}
	if d.horizontalSpacing != nil && *d.horizontalSpacing > 0 {
		env.Settings.HorizontalSpacing = *d.horizontalSpacing
	}
	if d.verticalScale != nil && *d.verticalScale >= 0 {
		env.Settings.VerticalScale = *d.verticalScale
	}
	return env
}
