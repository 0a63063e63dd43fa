// Package counter allocates permanent keys. Every kind of entity has its
// own monotone counter; allocated values are prefixed with a supplier
// prefix so that concurrent workers never produce the same key.
package counter

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gnames/gncurator/internal/ent/key"
)

// ErrCounterUnavailable means that a counter cannot be read or written.
var ErrCounterUnavailable = errors.New("counter unavailable")

// Counters keep the last allocated value for every kind of entity.
type Counters interface {
	// Read returns the last allocated value of a kind, 0 if nothing was
	// allocated yet.
	Read(kind key.Kind) (int, error)

	// Increment atomically allocates the next value of a kind and returns
	// it.
	Increment(kind key.Kind) (int, error)
}

// Factory creates counters that belong to a supplier prefix.
type Factory func(prefix string) (Counters, error)

// Allocator converts counter values into permanent keys.
type Allocator struct {
	counters Counters
	prefix   string
}

// NewAllocator creates an Allocator for a supplier prefix.
func NewAllocator(c Counters, prefix string) *Allocator {
	return &Allocator{counters: c, prefix: prefix}
}

// Prefix returns the supplier prefix of the allocator.
func (a *Allocator) Prefix() string {
	return a.prefix
}

// Next allocates a new permanent key value of a kind.
func (a *Allocator) Next(kind key.Kind) (string, error) {
	n, err := a.counters.Increment(kind)
	if err != nil {
		return "", fmt.Errorf("%w: %s: %w", ErrCounterUnavailable, kind, err)
	}
	return a.prefix + strconv.Itoa(n), nil
}

// Prefixes returns supplier prefixes for n workers. Every prefix is the
// base, a suffix made of digits 1-9 only, and a terminating 0. The
// terminator makes keys of different prefixes distinct whatever the number
// of workers was in the run that produced them.
func Prefixes(base string, n int) []string {
	if n < 1 {
		n = 1
	}
	res := make([]string, 0, n)
	for i := 1; len(res) < n; i++ {
		s := strconv.Itoa(i)
		if strings.ContainsRune(s, '0') {
			continue
		}
		res = append(res, base+s+"0")
	}
	return res
}
