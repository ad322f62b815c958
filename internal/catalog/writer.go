package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefaultPath is where the snapshot is written when no path is configured.
const DefaultPath = "model_prices.json"

// Encode writes s as two-space indented JSON. Non-ASCII and HTML characters
// are written literally and no trailing newline is added.
func Encode(w io.Writer, s *Snapshot) error {
	if s.Models == nil {
		s.Models = []Model{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("encoding snapshot: %w", err)
	}

	_, err := w.Write(bytes.TrimSuffix(buf.Bytes(), []byte("\n")))
	return err
}

// Write truncates path and writes s to it. The write is not atomic: a
// failure part way through can leave a partial file.
func Write(s *Snapshot, path string) (err error) {
	if path == "" {
		path = DefaultPath
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing snapshot %s: %w", path, cerr)
		}
	}()

	if err := Encode(f, s); err != nil {
		return fmt.Errorf("writing snapshot %s: %w", path, err)
	}
	return nil
}

// Load reads a snapshot previously written by Write.
func Load(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading snapshot: %w", err)
	}

	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing snapshot %s: %w", path, err)
	}
	return &s, nil
}
