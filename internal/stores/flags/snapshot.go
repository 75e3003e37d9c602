package flags

import (
	"os"
	"path/filepath"

	"emperror.dev/errors"
	"github.com/ethanbaker/flagdash/pkg/flags"
	"github.com/goccy/go-json"
)

// readSnapshot loads the flags stored at path. A missing file yields
// os.ErrNotExist.
func readSnapshot(path string) ([]*flags.Flag, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}

	var records []*flags.Flag
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, errors.Wrap(err, "failed to parse snapshot")
	}

	return records, nil
}

// writeSnapshot replaces the file at path with the given flags. The data is
// written to a sibling temp file first so a failed write never truncates
// the previous snapshot.
func writeSnapshot(path string, records []*flags.Flag) error {
	if records == nil {
		records = []*flags.Flag{}
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create snapshot directory")
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.Wrap(err, "failed to create temp snapshot")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.Wrap(err, "failed to write snapshot")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "failed to close snapshot")
	}

	return errors.Wrap(os.Rename(tmp.Name(), path), "failed to replace snapshot")
}
