package stats

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"github.com/ghodss/yaml"
	"github.com/pkg/errors"
)

// Write persists s at path. The extension selects the format: .db and
// .sqlite append the run to a sqlite store, .json writes JSON, and
// anything else writes YAML.
func Write(ctx context.Context, path string, s *Statistics) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		store, err := OpenStore(path)
		if err != nil {
			return err
		}
		defer store.Close()
		return store.Save(ctx, s)
	case ".json":
		data, err := json.MarshalIndent(s, "", "  ")
		if err != nil {
			return errors.Wrap(err, "encoding statistics")
		}
		return writeFile(path, data)
	default:
		data, err := yaml.Marshal(s)
		if err != nil {
			return errors.Wrap(err, "encoding statistics")
		}
		return writeFile(path, data)
	}
}

// Read loads statistics written by Write. For sqlite stores the most
// recent run is returned.
func Read(ctx context.Context, path string) (*Statistics, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".db", ".sqlite":
		store, err := OpenStore(path)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		return store.Latest(ctx)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading statistics %s", path)
	}
	var s Statistics
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, errors.Wrapf(err, "decoding statistics %s", path)
	}
	return &s, nil
}

func writeFile(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.Wrapf(err, "creating directory for %s", path)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return errors.Wrapf(err, "writing statistics %s", path)
	}
	return nil
}
