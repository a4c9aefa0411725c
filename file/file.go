package file

import (
	"io"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/jsphweid/jianpu/midi"
	"github.com/jsphweid/jianpu/model"
	"github.com/jsphweid/jianpu/musicxml"
	"github.com/pkg/errors"
)

var ErrUnsupportedFormat = errors.New("unsupported score format")

type Format string

const (
	FormatMidi     Format = "midi"
	FormatMusicXML Format = "musicxml"
)

func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".mid", ".midi":
		return FormatMidi, nil
	case ".xml", ".musicxml":
		return FormatMusicXML, nil
	}
	return "", errors.Wrap(ErrUnsupportedFormat, path)
}

// ReadScore loads any supported score file into the import shape.
func ReadScore(path string) (model.Score, error) {
	format, err := FormatOf(path)
	if err != nil {
		return model.Score{}, err
	}
	switch format {
	case FormatMidi:
		s, err := midi.ReadMidiFile(path)
		if err != nil {
			return model.Score{}, err
		}
		return midi.ToScore(s), nil
	default:
		doc, err := musicxml.ReadFile(path)
		if err != nil {
			return model.Score{}, err
		}
		return musicxml.ToScore(doc), nil
	}
}

func ParseFormat(name string) (Format, error) {
	switch f := Format(strings.ToLower(name)); f {
	case FormatMidi, FormatMusicXML:
		return f, nil
	case "mid":
		return FormatMidi, nil
	case "xml":
		return FormatMusicXML, nil
	}
	return "", errors.Wrap(ErrUnsupportedFormat, name)
}

// DecodeScore reads a score of the given format from r.
func DecodeScore(r io.Reader, format Format) (model.Score, error) {
	switch format {
	case FormatMidi:
		s, err := midi.Read(r)
		if err != nil {
			return model.Score{}, err
		}
		return midi.ToScore(s), nil
	case FormatMusicXML:
		doc, err := musicxml.Decode(r)
		if err != nil {
			return model.Score{}, err
		}
		return musicxml.ToScore(doc), nil
	}
	return model.Score{}, errors.Wrap(ErrUnsupportedFormat, string(format))
}

// GatherScorePaths walks root for score files. maxNum of 0 means no limit.
func GatherScorePaths(root string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if _, err := FormatOf(s); err == nil {
			if maxNum == 0 || len(res) < maxNum {
				res = append(res, s)
			}
		}
		return nil
	}
	if err := filepath.WalkDir(root, walk); err != nil {
		return nil, errors.Wrapf(err, "could not walk %s", root)
	}
	return res, nil
}

func CreateFileNumMap(paths []string) map[uint32]string {
	res := make(map[uint32]string)
	for i, v := range paths {
		res[uint32(i)] = v
	}
	return res
}
