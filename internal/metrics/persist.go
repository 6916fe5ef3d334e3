package metrics

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
	"github.com/tidwall/pretty"
)

// WriteSnapshot replaces path with snap. The content goes to a sibling
// temporary file first so readers never see a partial document.
func WriteSnapshot(fs afero.Fs, path string, snap *Snapshot) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := fs.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating metrics directory: %w", err)
		}
	}

	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encoding metrics snapshot: %w", err)
	}

	tmp := path + ".tmp"
	if err := afero.WriteFile(fs, tmp, pretty.Pretty(raw), 0o644); err != nil {
		return fmt.Errorf("writing metrics snapshot: %w", err)
	}
	if err := fs.Rename(tmp, path); err != nil {
		_ = fs.Remove(tmp)
		return fmt.Errorf("replacing metrics snapshot: %w", err)
	}
	return nil
}

// ReadSnapshot loads a snapshot file. A missing file returns (nil, nil): no
// metrics were written yet.
func ReadSnapshot(fs afero.Fs, path string) (*Snapshot, error) {
	raw, err := afero.ReadFile(fs, path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return nil, fmt.Errorf("decoding metrics snapshot %s: %w", path, err)
	}
	return &snap, nil
}
