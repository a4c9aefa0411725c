package identity

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

const fileName = "owner-id"

// LoadOrCreate returns the owner id kept in dir, creating one on first use.
func LoadOrCreate(dir string) (string, error) {
	path := filepath.Join(dir, fileName)
	data, err := os.ReadFile(path)
	if err == nil {
		if id, perr := uuid.Parse(strings.TrimSpace(string(data))); perr == nil {
			return id.String(), nil
		}
	} else if !os.IsNotExist(err) {
		return "", errors.Wrapf(err, "reading %s", path)
	}

	id := uuid.New().String()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", errors.Wrapf(err, "creating %s", dir)
	}
	if err := os.WriteFile(path, []byte(id+"\n"), 0o600); err != nil {
		return "", errors.Wrapf(err, "writing %s", path)
	}
	return id, nil
}

// DefaultDir is the jianpu directory under the user config dir.
func DefaultDir() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "locating config dir")
	}
	return filepath.Join(dir, "jianpu"), nil
}
