package config

import (
	"os"
	"path/filepath"
	"time"
)

// StoreType is a kind of store of curated data.
type StoreType string

const (
	// StoreNone means that every batch is curated without a store.
	StoreNone StoreType = "none"

	// StoreSQLite is a relational mirror kept in a SQLite file.
	StoreSQLite StoreType = "sqlite"

	// StorePostgres is a relational mirror kept in PostgreSQL.
	StorePostgres StoreType = "postgres"

	// StoreSparql is a SPARQL endpoint of a triplestore.
	StoreSparql StoreType = "sparql"
)

// CounterType is a kind of storage for counters of permanent keys.
type CounterType string

const (
	// CounterFile keeps one text file per kind and prefix.
	CounterFile CounterType = "file"

	// CounterKV keeps counters in a key-value store.
	CounterKV CounterType = "badger"

	// CounterMemory keeps counters only while the program runs.
	CounterMemory CounterType = "memory"
)

// Config is a struct that holds configuration parameters for the package.
type Config struct {
	// CacheDir is a root directory for counters and local stores.
	CacheDir string

	// OutputDir is a directory for curated data, index tables and logs.
	OutputDir string

	// CounterDir is a directory of counters.
	CounterDir string

	// CounterType determines how counters are kept.
	CounterType CounterType

	// Prefix is the supplier prefix. Workers extend it with their own
	// suffixes.
	Prefix string

	// WorkersNum is a number of concurrent workers. Every worker curates
	// whole files.
	WorkersNum int

	// Separator splits identifier lists. Empty value means white spaces.
	Separator string

	// StoreType determines where existing entities are looked for.
	StoreType StoreType

	// SqlitePath is a path to a SQLite mirror.
	SqlitePath string

	// PgHost is a host name for PostgreSQL.
	PgHost string

	// PgUser is a user name for PostgreSQL.
	PgUser string

	// PgPass is a password for PostgreSQL.
	PgPass string

	// PgDB is a database name for PostgreSQL.
	PgDB string

	// SparqlURL is the endpoint of a triplestore.
	SparqlURL string

	// Retries is a number of retries of a failed store request.
	Retries int

	// Timeout limits every store request.
	Timeout time.Duration

	// Rate limits store requests per second. Zero means no limit.
	Rate float64

	// StopFile is a path to a file that stops curation before the next
	// input file when it appears.
	StopFile string

	// Upload is true if curated batches are written to the relational
	// mirror.
	Upload bool
}

// Option type allows to change settings for Config.
type Option func(*Config)

// OptCacheDir sets a root directory for counters and local stores.
func OptCacheDir(d string) Option {
	return func(cfg *Config) {
		cfg.CacheDir = d
		cfg.CounterDir = filepath.Join(d, "counters")
		cfg.SqlitePath = filepath.Join(d, "mirror.sqlite")
	}
}

// OptOutputDir sets a directory for curated data.
func OptOutputDir(d string) Option {
	return func(cfg *Config) {
		cfg.OutputDir = d
	}
}

// OptCounterDir sets a directory of counters.
func OptCounterDir(d string) Option {
	return func(cfg *Config) {
		cfg.CounterDir = d
	}
}

// OptCounterType sets a storage of counters.
func OptCounterType(t CounterType) Option {
	return func(cfg *Config) {
		cfg.CounterType = t
	}
}

// OptPrefix sets the supplier prefix.
func OptPrefix(p string) Option {
	return func(cfg *Config) {
		cfg.Prefix = p
	}
}

// OptWorkersNum sets a number of concurrent workers.
func OptWorkersNum(n int) Option {
	return func(cfg *Config) {
		cfg.WorkersNum = n
	}
}

// OptSeparator sets a separator of identifier lists.
func OptSeparator(s string) Option {
	return func(cfg *Config) {
		cfg.Separator = s
	}
}

// OptStoreType sets a store of curated data.
func OptStoreType(t StoreType) Option {
	return func(cfg *Config) {
		cfg.StoreType = t
	}
}

// OptSqlitePath sets a path to a SQLite mirror.
func OptSqlitePath(p string) Option {
	return func(cfg *Config) {
		cfg.SqlitePath = p
	}
}

// OptPgHost sets host name for PostgreSQL
func OptPgHost(h string) Option {
	return func(cfg *Config) {
		cfg.PgHost = h
	}
}

// OptPgUser sets user for PostgreSQL
func OptPgUser(u string) Option {
	return func(cfg *Config) {
		cfg.PgUser = u
	}
}

// OptPgPass sets password for PostgreSQL
func OptPgPass(p string) Option {
	return func(cfg *Config) {
		cfg.PgPass = p
	}
}

// OptPgDB sets database name for PostgreSQL
func OptPgDB(d string) Option {
	return func(cfg *Config) {
		cfg.PgDB = d
	}
}

// OptSparqlURL sets a SPARQL endpoint.
func OptSparqlURL(u string) Option {
	return func(cfg *Config) {
		cfg.SparqlURL = u
	}
}

// OptRetries sets a number of retries of store requests.
func OptRetries(n int) Option {
	return func(cfg *Config) {
		cfg.Retries = n
	}
}

// OptTimeout sets a timeout of store requests.
func OptTimeout(d time.Duration) Option {
	return func(cfg *Config) {
		cfg.Timeout = d
	}
}

// OptRate sets a limit of store requests per second.
func OptRate(r float64) Option {
	return func(cfg *Config) {
		cfg.Rate = r
	}
}

// OptStopFile sets a path of the stop file.
func OptStopFile(p string) Option {
	return func(cfg *Config) {
		cfg.StopFile = p
	}
}

// OptUpload enables uploading of curated batches to the mirror.
func OptUpload(b bool) Option {
	return func(cfg *Config) {
		cfg.Upload = b
	}
}

// New creates a Config with default values changed by options.
func New(opts ...Option) Config {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		cacheDir = os.TempDir()
	}
	cacheDir = filepath.Join(cacheDir, "gncurator")

	res := Config{
		CacheDir:    cacheDir,
		OutputDir:   "curated",
		CounterDir:  filepath.Join(cacheDir, "counters"),
		CounterType: CounterFile,
		Prefix:      "06",
		WorkersNum:  1,
		StoreType:   StoreSQLite,
		SqlitePath:  filepath.Join(cacheDir, "mirror.sqlite"),
		PgHost:      "0.0.0.0",
		PgUser:      "postgres",
		PgPass:      "postgres",
		PgDB:        "gncurator",
		SparqlURL:   "http://localhost:8890/sparql",
		Retries:     5,
		Timeout:     30 * time.Second,
		StopFile:    "stop.out",
	}

	for _, opt := range opts {
		opt(&res)
	}

	return res
}
