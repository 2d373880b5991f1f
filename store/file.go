package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/weftlabs/weft/core"
)

// FileBackend stores each prompt aggregate as a JSON file in a directory.
// File names: {id}.json with path separators and colons sanitized.
type FileBackend struct {
	dir string
	mu  sync.RWMutex
}

// NewFileBackend creates a file-based backend rooted at dir.
func NewFileBackend(dir string) (*FileBackend, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("file backend: %w", err)
	}
	return &FileBackend{dir: dir}, nil
}

func (f *FileBackend) filename(id string) string {
	safe := strings.ReplaceAll(strings.ReplaceAll(id, string(filepath.Separator), "_"), ":", "_")
	return filepath.Join(f.dir, safe+".json")
}

// GetPrompt implements Backend.
func (f *FileBackend) GetPrompt(ctx context.Context, id string) (*core.Prompt, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	data, err := os.ReadFile(f.filename(id))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, core.ErrNotFound
		}
		return nil, err
	}
	var p core.Prompt
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("file backend decode: %w", err)
	}
	return &p, nil
}

// PutPrompt implements Backend. The file is written via a temp-file rename
// so a crash never leaves a half-written aggregate behind.
func (f *FileBackend) PutPrompt(ctx context.Context, p *core.Prompt) error {
	if p == nil || p.ID == "" {
		return fmt.Errorf("file backend: prompt id required")
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("file backend encode: %w", err)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	path := f.filename(p.ID)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// DeletePrompt implements Backend.
func (f *FileBackend) DeletePrompt(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	err := os.Remove(f.filename(id))
	if os.IsNotExist(err) {
		return core.ErrNotFound
	}
	return err
}

// ListPrompts implements Backend by scanning the directory.
func (f *FileBackend) ListPrompts(ctx context.Context, filter Filter) ([]*core.Prompt, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	entries, err := os.ReadDir(f.dir)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	limit := filter.Limit
	if limit <= 0 {
		limit = 1000
	}
	offset := filter.Offset
	var out []*core.Prompt
	for _, name := range names {
		data, err := os.ReadFile(filepath.Join(f.dir, name))
		if err != nil {
			continue
		}
		var p core.Prompt
		if err := json.Unmarshal(data, &p); err != nil {
			continue
		}
		if !matches(&p, filter) {
			continue
		}
		if offset > 0 {
			offset--
			continue
		}
		out = append(out, &p)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

var _ Backend = (*FileBackend)(nil)
