// Package config provides configuration management for comparasub.
//
// This package has no I/O dependencies (no file operations, no network
// calls); loading from files and the environment lives in
// internal/ioconfig.
//
// # Configuration Sources
//
// Precedence (highest to lowest): CLI flags > env vars > config.yaml >
// defaults.
//
// # Design Principles
//
//   - Default config (from New()) is always valid - no validation needed
//   - All mutations go through Option functions - the only way to modify
//     Config
//   - Invalid options are rejected with a warning - config remains in a
//     valid state
//   - ToOptions() converts persistent fields (those in config.yaml)
//   - Environment variables match ToOptions() fields exactly
//
// # Persistent vs Runtime Fields
//
// Persistent fields (in ToOptions, config.yaml, and env vars):
//   - Database: engine, host, port, user, password, database, ssl_mode
//   - Subset: ref_genome_db_id, method_link_id, out_dir
//   - Log: level, format, destination
//   - General: jobs_number
//
// Runtime-only fields (CLI flags only):
//   - Subset.Source, Destination, SeqRegionFile, GenomeDBIDs, Force,
//     Verify (per-run)
//   - HomeDir (set once at startup)
//
// # Environment Variables
//
// Use the COMPARASUB_ prefix with underscores for nesting:
//
//	COMPARASUB_DATABASE_HOST=localhost
//	COMPARASUB_DATABASE_PORT=3306
//	COMPARASUB_LOG_LEVEL=info
//	COMPARASUB_JOBS_NUMBER=8
package config

import (
	"runtime"
)

// Engine names accepted by the database layer.
const (
	EngineMySQL    = "mysql"
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"
)

// Config represents the complete comparasub configuration.
type Config struct {
	// Database contains server connection settings.
	Database DatabaseConfig `mapstructure:"database" yaml:"database"`

	// Subset contains settings specific to the subset command.
	Subset SubsetConfig `mapstructure:"subset" yaml:"subset"`

	Log LogConfig `mapstructure:"log" yaml:"log"`

	// JobsNumber is the number of concurrent workers for the closure
	// verifier. The subset pipeline itself is strictly sequential.
	JobsNumber int `mapstructure:"jobs_number" yaml:"jobs_number"`

	// HomeDir determines where config, cache and logs directories
	// reside. It is set by the CLI during init; there is no default.
	HomeDir string `mapstructure:"-" yaml:"-"`
}

// DatabaseConfig contains connection parameters for the server engines.
// The sqlite engine ignores everything except Engine; its source and
// destination are file paths.
type DatabaseConfig struct {
	// Engine selects the database dialect: mysql, postgres or sqlite.
	Engine string `mapstructure:"engine" yaml:"engine"`

	// Host is the database server hostname or IP address.
	Host string `mapstructure:"host" yaml:"host"`

	// Port is the database server port. 0 means the engine default
	// (3306 for mysql, 5432 for postgres).
	Port int `mapstructure:"port" yaml:"port"`

	// User is the database username.
	User string `mapstructure:"user" yaml:"user"`

	// Password is the database password.
	Password string `mapstructure:"password" yaml:"password"`

	// Database names the postgres database hosting the source and
	// destination schemas. The mysql engine addresses schemas as
	// databases directly and ignores it.
	Database string `mapstructure:"database" yaml:"database"`

	// SSLMode specifies the SSL connection mode for postgres.
	// Valid values: "disable", "require", "verify-ca", "verify-full"
	SSLMode string `mapstructure:"ssl_mode" yaml:"ssl_mode"`
}

// SubsetConfig contains settings specific to the subset command.
type SubsetConfig struct {
	// RefGenomeDBID is the genome_db id of the reference genome the
	// seed-region windows are scoped to. Conventionally 1, but source
	// schemas are free to number differently.
	RefGenomeDBID int64 `mapstructure:"ref_genome_db_id" yaml:"ref_genome_db_id"`

	// MethodLinkID locates the alignment MethodLinkSpeciesSets joining
	// the reference with each companion genome.
	MethodLinkID int64 `mapstructure:"method_link_id" yaml:"method_link_id"`

	// OutDir receives the emitted per-genome seed-region files.
	OutDir string `mapstructure:"out_dir" yaml:"out_dir"`

	// Source and Destination name the schemas (mysql: databases;
	// postgres: schemas; sqlite: file paths). Runtime-only.
	Source      string `mapstructure:"-" yaml:"-"`
	Destination string `mapstructure:"-" yaml:"-"`

	// SeqRegionFile is the path of the input seed-region list.
	// Runtime-only.
	SeqRegionFile string `mapstructure:"-" yaml:"-"`

	// GenomeDBIDs lists companion genome_db ids to subset against the
	// reference. Empty means every source genome except the reference.
	// Runtime-only.
	GenomeDBIDs []int64 `mapstructure:"-" yaml:"-"`

	// Force skips the destructive-replace confirmation prompt.
	// Runtime-only.
	Force bool `mapstructure:"-" yaml:"-"`

	// Verify runs the closure check after a successful build.
	// Runtime-only.
	Verify bool `mapstructure:"-" yaml:"-"`
}

// LogConfig provides typical settings for application logs.
type LogConfig struct {
	// Format can be 'json' or 'text'.
	Format string `mapstructure:"format"      yaml:"format"`
	// Level of logging -- 'error', 'warn', 'info', 'debug'
	Level string `mapstructure:"level"       yaml:"level"`
	// Destination can be a log file (in the default place), stderr or
	// stdout.
	Destination string `mapstructure:"destination" yaml:"destination"`
}

// New creates a Config with sensible default values.
// The returned config is always valid and ready to use.
// Default values can be overridden using Option functions via Update().
func New() *Config {
	return &Config{
		Database: DatabaseConfig{
			Engine:  EngineMySQL,
			Host:    "localhost",
			SSLMode: "disable",
		},
		Subset: SubsetConfig{
			RefGenomeDBID: 1,
			MethodLinkID:  1,
			OutDir:        ".",
		},
		Log: LogConfig{
			Format:      "json",
			Level:       "info",
			Destination: "file",
		},
		JobsNumber: runtime.NumCPU(),
	}
}

// EffectivePort resolves Port against the engine default.
func (d DatabaseConfig) EffectivePort() int {
	if d.Port > 0 {
		return d.Port
	}
	switch d.Engine {
	case EnginePostgres:
		return 5432
	default:
		return 3306
	}
}
