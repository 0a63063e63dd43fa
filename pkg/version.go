package gncurator

var (
	// Version of gncurator.
	Version = "v0.1.0"

	// Build timestamp.
	Build = "n/a"
)
