package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"hellchannel/internal/drops"
	"hellchannel/internal/fetcherr"
)

// FileStore keeps the snapshot as a JSON file, typically inside a checkout
// that something else commits and pushes.
type FileStore struct {
	path string
}

func NewFileStore(path string) FileStore {
	return FileStore{path: path}
}

func (s FileStore) Name() string {
	return fmt.Sprintf("file(%s)", s.path)
}

// Publish replaces the file atomically.
func (s FileStore) Publish(ctx context.Context, events []drops.DropEvent) error {
	data, err := Encode(events)
	if err != nil {
		return err
	}

	dir := filepath.Dir(s.path)
	err = os.MkdirAll(dir, 0755)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".snapshot-*.json")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	_, err = tmp.Write(data)
	if err != nil {
		tmp.Close()
		return err
	}
	err = tmp.Close()
	if err != nil {
		return err
	}
	return os.Rename(tmp.Name(), s.path)
}

func (s FileStore) FetchLatest(ctx context.Context) ([]drops.RawRecord, error) {
	op := fmt.Sprintf("%s.fetch-latest", s.Name())

	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil, fetcherr.New(fetcherr.NotFound, op, err)
	}
	if err != nil {
		return nil, fetcherr.New(fetcherr.Network, op, err)
	}
	return Decode(op, data)
}
