package ir

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"featgraph/internal/fault"
)

// WriteJSON writes the record as indented JSON.
func WriteJSON(w io.Writer, r *Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(r); err != nil {
		return fmt.Errorf("failed to encode record: %w", err)
	}
	return nil
}

// ReadJSON decodes a record written by WriteJSON.
func ReadJSON(rd io.Reader) (*Record, error) {
	var r Record
	if err := json.NewDecoder(rd).Decode(&r); err != nil {
		return nil, fmt.Errorf("failed to decode record: %w", err)
	}
	return &r, nil
}

// WriteBinary writes the record's binary encoding.
func WriteBinary(w io.Writer, r *Record) error {
	b, err := r.MarshalBinary()
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}

// Path places the output for sourceFile under dir, mirroring the unit's
// relative path and appending ext. Absolute and parent-relative unit
// paths are folded under dir.
func Path(dir, sourceFile, ext string) string {
	rel := filepath.ToSlash(filepath.Clean("/" + filepath.ToSlash(sourceFile)))
	rel = strings.TrimPrefix(rel, "/")
	return filepath.Join(dir, filepath.FromSlash(rel)) + ext
}

// WriteFile creates path, including missing directories, and fills it
// with write. Failures are HostIO errors.
func WriteFile(path string, write func(io.Writer) error) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fault.New(fault.KindHostIO, "mkdir", err).WithUnit(path)
	}
	f, err := os.Create(path)
	if err != nil {
		return fault.New(fault.KindHostIO, "create", err).WithUnit(path)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = fault.New(fault.KindHostIO, "close", cerr).WithUnit(path)
		}
	}()
	if err := write(f); err != nil {
		return fault.New(fault.KindHostIO, "write", err).WithUnit(path)
	}
	return nil
}

// ReadFile loads a record from a .pb or .json file.
func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fault.New(fault.KindHostIO, "read", err).WithUnit(path)
	}
	if strings.HasSuffix(path, ".json") {
		return ReadJSON(bytes.NewReader(data))
	}
	var r Record
	if err := r.UnmarshalBinary(data); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}
	return &r, nil
}
