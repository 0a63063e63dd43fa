package gncurator

import "context"

// GNcurator is an interface for curation of bibliographic metadata.
type GNcurator interface {
	// Curate resolves rows of input files against each other and against
	// the store, assigns permanent keys and saves curated batches. Every
	// file is one batch.
	Curate(ctx context.Context, files []string) error
}
