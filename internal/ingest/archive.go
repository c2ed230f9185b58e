package ingest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"ttvdrops/internal/assert"
	"ttvdrops/internal/gqljson"

	"github.com/cespare/xxhash/v2"
)

// Archiver keeps a copy of every recognized live payload on disk so it can be replayed later.
// Files are laid out as <dir>/<shape>/<hash>.json, the same payload always lands in the same file.
type Archiver struct {
	dir string
}

func NewArchiver(dir string) Archiver {
	assert.NotEmptyStr(dir)
	return Archiver{dir: dir}
}

// Save writes the payload and returns the path it was written to.
func (a Archiver) Save(shape string, payload gqljson.Value) (string, error) {
	compact, err := payload.MarshalJSON()
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", shape, err)
	}

	dir := filepath.Join(a.dir, shape)
	path := filepath.Join(dir, fmt.Sprintf("%016x.json", xxhash.Sum64(compact)))
	if _, err := os.Stat(path); err == nil {
		return path, nil
	}

	var pretty bytes.Buffer
	err = json.Indent(&pretty, compact, "", "  ")
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", shape, err)
	}
	pretty.WriteByte('\n')

	err = os.MkdirAll(dir, 0777)
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", shape, err)
	}
	// write then rename so a replay never sees half a file
	tmp, err := os.CreateTemp(dir, ".archive-*")
	if err != nil {
		return "", fmt.Errorf("archive %s: %w", shape, err)
	}
	_, err = tmp.Write(pretty.Bytes())
	closeErr := tmp.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil {
		err = os.Rename(tmp.Name(), path)
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("archive %s: %w", shape, err)
	}
	return path, nil
}
