package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"rescuelink/pkg/types"
)

// FileBackend keeps the document as pretty-printed JSON in a single file.
// The revision check is only atomic with respect to writers that share the
// same Locker.
type FileBackend struct {
	path string
}

func NewFileBackend(path string) *FileBackend {
	return &FileBackend{path: path}
}

func (b *FileBackend) Name() string {
	return "file"
}

func (b *FileBackend) Load(ctx context.Context) (*types.Document, error) {
	data, err := os.ReadFile(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, types.ErrDocumentNotExist
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", b.path, err)
	}

	doc := new(types.Document)
	if err := json.Unmarshal(data, doc); err != nil {
		return nil, fmt.Errorf("parse %s: %w", b.path, err)
	}

	return doc, nil
}

func (b *FileBackend) Save(ctx context.Context, doc *types.Document) error {
	current, err := b.Load(ctx)
	switch {
	case errors.Is(err, types.ErrDocumentNotExist):
		if doc.Revision != 0 {
			return types.ErrRevisionConflict
		}
	case err != nil:
		return err
	case current.Revision != doc.Revision:
		return types.ErrRevisionConflict
	}

	next := *doc
	next.Revision = doc.Revision + 1

	data, err := json.MarshalIndent(&next, "", "    ")
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	if err := writeFileAtomic(b.path, data); err != nil {
		return err
	}

	doc.Revision = next.Revision
	return nil
}

func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("replace %s: %w", path, err)
	}

	return nil
}
