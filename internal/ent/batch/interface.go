// Package batch describes reading, writing and uploading of curated
// batches.
package batch

import (
	"context"

	"github.com/gnames/gncurator/internal/ent/curator"
	"github.com/gnames/gncurator/internal/ent/finder"
	"github.com/gnames/gncurator/internal/ent/row"
)

// Reader reads rows of an input file.
type Reader interface {
	// Read returns all rows of a file in their original order.
	Read(path string) ([]row.Row, error)
}

// Writer saves a curated batch.
type Writer interface {
	// Write saves rows, index tables and the log of a batch. The name
	// becomes a part of every output file name.
	Write(name string, res *curator.Result) error
}

// Uploader adds a curated batch to a store.
type Uploader interface {
	// Upload writes all entities of a batch.
	Upload(ctx context.Context, res *curator.Result) error
}

// Mirror is a relational copy of curated data. It is a store for
// curation and receives curated batches.
type Mirror interface {
	finder.Store
	Uploader

	// Close releases the connection.
	Close() error
}
