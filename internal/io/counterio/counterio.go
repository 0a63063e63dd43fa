// Package counterio keeps counters of permanent keys on disk. File
// counters keep one text file per kind in a directory of a supplier
// prefix. Key-value counters keep all prefixes in one badger store that is
// shared by workers of a process.
package counterio

import (
	"bufio"
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"sync"

	"github.com/gnames/gncurator/internal/ent/counter"
	"github.com/gnames/gncurator/internal/ent/key"
	"github.com/gnames/gncurator/internal/ent/kv"
	"github.com/gnames/gnsys"
	"github.com/google/renameio/v2"
)

type fileCounters struct {
	mu  sync.Mutex
	dir string
}

// NewFile creates counters kept in files of a prefix directory under the
// root directory.
func NewFile(root, prefix string) (counter.Counters, error) {
	dir := filepath.Join(root, prefix)
	if err := gnsys.MakeDir(dir); err != nil {
		slog.Error("Cannot create counters directory", "error", err, "dir", dir)
		return nil, err
	}
	return &fileCounters{dir: dir}, nil
}

// FileFactory returns a factory of file counters under a root directory.
func FileFactory(root string) counter.Factory {
	return func(prefix string) (counter.Counters, error) {
		return NewFile(root, prefix)
	}
}

// Read returns the last allocated value of a kind.
func (f *fileCounters) Read(kind key.Kind) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.read(kind)
}

// Increment writes the next value of a kind. The file is replaced
// atomically.
func (f *fileCounters) Increment(kind key.Kind) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	n, err := f.read(kind)
	if err != nil {
		return 0, err
	}
	n++

	data := []byte(strconv.Itoa(n) + "\n")
	if err = renameio.WriteFile(f.path(kind), data, 0644); err != nil {
		slog.Error("Cannot write counter", "error", err, "path", f.path(kind))
		return 0, err
	}
	return n, nil
}

func (f *fileCounters) path(kind key.Kind) string {
	return filepath.Join(f.dir, string(kind)+".txt")
}

func (f *fileCounters) read(kind key.Kind) (int, error) {
	data, err := os.ReadFile(f.path(kind))
	if os.IsNotExist(err) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	sc := bufio.NewScanner(bytes.NewReader(data))
	if !sc.Scan() {
		return 0, nil
	}
	line := bytes.TrimSpace(sc.Bytes())
	if len(line) == 0 {
		return 0, nil
	}
	n, err := strconv.Atoi(string(line))
	if err != nil {
		return 0, fmt.Errorf("counter file %s: %w", f.path(kind), err)
	}
	return n, nil
}

type kvCounters struct {
	store  kv.KeyVal
	prefix string
}

// NewKV creates counters of a prefix kept in an open key-value store.
func NewKV(store kv.KeyVal, prefix string) counter.Counters {
	return &kvCounters{store: store, prefix: prefix}
}

// KVFactory returns a factory of counters that share one key-value store.
func KVFactory(store kv.KeyVal) counter.Factory {
	return func(prefix string) (counter.Counters, error) {
		return NewKV(store, prefix), nil
	}
}

// Read returns the last allocated value of a kind.
func (c *kvCounters) Read(kind key.Kind) (int, error) {
	val, err := c.store.GetValue(c.key(kind))
	if err != nil || val == nil {
		return 0, err
	}
	return strconv.Atoi(string(val))
}

// Increment allocates the next value of a kind.
func (c *kvCounters) Increment(kind key.Kind) (int, error) {
	return c.store.Increment(c.key(kind))
}

func (c *kvCounters) key(kind key.Kind) []byte {
	return []byte(c.prefix + "/" + string(kind))
}
