package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

const fileSchemaVersion = 1

// settleDelay gives external writers time to finish before the file is
// re-read.
const settleDelay = 25 * time.Millisecond

type fileDocument struct {
	SchemaVersion int               `json:"schemaVersion"`
	Values        map[string]string `json:"values"`
}

// FileOption configures a File store.
type FileOption func(*File)

// WithFileLogger routes watcher diagnostics to logger.
func WithFileLogger(logger *slog.Logger) FileOption {
	return func(f *File) {
		if logger != nil {
			f.logger = logger
		}
	}
}

// File keeps values in a JSON document on disk. Writes replace the document
// atomically; Watch reloads it when another process edits the file.
type File struct {
	path   string
	logger *slog.Logger

	mu     sync.RWMutex
	values map[string]string
}

// NewFile opens (or initialises) the JSON document at path.
func NewFile(path string, options ...FileOption) (*File, error) {
	if path == "" {
		return nil, errors.New("store: file path is required")
	}
	f := &File{
		path:   filepath.Clean(path),
		logger: slog.Default(),
		values: make(map[string]string),
	}
	for _, opt := range options {
		if opt != nil {
			opt(f)
		}
	}
	if err := f.Reload(); err != nil {
		return nil, err
	}
	return f, nil
}

// Path returns the location of the backing document.
func (f *File) Path() string {
	return f.path
}

func (f *File) Get(_ context.Context, key string) ([]byte, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	value, ok := f.values[key]
	if !ok {
		return nil, ErrNotFound
	}
	return []byte(value), nil
}

func (f *File) Set(_ context.Context, key string, value []byte) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	previous, existed := f.values[key]
	f.values[key] = string(value)
	if err := f.saveLocked(); err != nil {
		if existed {
			f.values[key] = previous
		} else {
			delete(f.values, key)
		}
		return err
	}
	return nil
}

func (f *File) Delete(_ context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	previous, existed := f.values[key]
	if !existed {
		return nil
	}
	delete(f.values, key)
	if err := f.saveLocked(); err != nil {
		f.values[key] = previous
		return err
	}
	return nil
}

// Reload replaces the in-memory state with the document on disk. A missing
// file yields an empty store.
func (f *File) Reload() error {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			f.mu.Lock()
			f.values = make(map[string]string)
			f.mu.Unlock()
			return nil
		}
		return fmt.Errorf("store: read %s: %w", f.path, err)
	}

	var doc fileDocument
	if len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("store: decode %s: %w", f.path, err)
		}
		if doc.SchemaVersion != 0 && doc.SchemaVersion != fileSchemaVersion {
			return fmt.Errorf("store: %s has schema version %d, expected %d", f.path, doc.SchemaVersion, fileSchemaVersion)
		}
	}
	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	f.mu.Lock()
	f.values = doc.Values
	f.mu.Unlock()
	return nil
}

// Watch reloads the document whenever the file changes on disk. It blocks
// until ctx is cancelled. The parent directory is watched so atomic
// replacements are observed too.
func (f *File) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("store: cannot initialize filesystem watcher: %w", err)
	}
	defer func() {
		_ = watcher.Close()
	}()

	dir := filepath.Dir(f.path)
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("store: cannot setup filesystem watch on %s: %w", dir, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != f.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) && !event.Has(fsnotify.Remove) {
				continue
			}
			time.Sleep(settleDelay)
			if err := f.Reload(); err != nil {
				f.logger.Error("store: reload after change failed", "path", f.path, "error", err)
				continue
			}
			f.logger.Debug("store: reloaded", "path", f.path, "op", event.Op.String())
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			f.logger.Error("store: watcher error", "path", f.path, "error", err)
		}
	}
}

func (f *File) saveLocked() error {
	doc := fileDocument{SchemaVersion: fileSchemaVersion, Values: f.values}
	payload, err := json.MarshalIndent(doc, "", "\t")
	if err != nil {
		return fmt.Errorf("store: encode %s: %w", f.path, err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o755); err != nil {
		return fmt.Errorf("store: mkdir for %s: %w", f.path, err)
	}
	tmpPath := filepath.Join(
		filepath.Dir(f.path),
		fmt.Sprintf(".%s.%d", filepath.Base(f.path), os.Getpid()),
	)
	if err := os.WriteFile(tmpPath, payload, 0o644); err != nil {
		return fmt.Errorf("store: write %s: %w", tmpPath, err)
	}
	if err := os.Rename(tmpPath, f.path); err != nil {
		return fmt.Errorf("store: replace %s: %w", f.path, err)
	}
	return nil
}
