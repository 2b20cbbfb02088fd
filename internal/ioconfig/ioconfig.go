// Package ioconfig loads the application configuration from the
// config file and COMPARASUB_* environment variables. It is the
// impure counterpart of pkg/config, which stays free of I/O.
package ioconfig

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/comparadb/comparasub/internal/iofs"
	"github.com/comparadb/comparasub/pkg/config"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Load reads config.yaml from the config directory, applies
// COMPARASUB_* environment variables on top and returns the result
// merged over the built-in defaults.
//
// Precedence (highest to lowest): env vars > config.yaml > defaults.
// CLI flags are applied later by the commands themselves.
func Load(homeDir string) (*config.Config, error) {
	path := config.ConfigFilePath(homeDir)

	v := viper.New()
	v.SetConfigFile(path)
	initEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, iofs.ReadFileError(path, err)
	}

	var fileCfg config.Config
	if err := v.Unmarshal(&fileCfg); err != nil {
		return nil, iofs.ReadFileError(path, err)
	}

	cfg := config.New()
	cfg.Update(fileCfg.ToOptions())
	cfg.Update([]config.Option{config.OptHomeDir(homeDir)})
	return cfg, nil
}

// initEnvVars binds every persistent config field to its
// COMPARASUB_* environment variable. Explicit bindings make the
// variables visible to Unmarshal even when the corresponding key is
// absent from the config file.
func initEnvVars(v *viper.Viper) {
	v.SetEnvPrefix("COMPARASUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	_ = v.BindEnv("database.engine", "COMPARASUB_DATABASE_ENGINE")
	_ = v.BindEnv("database.host", "COMPARASUB_DATABASE_HOST")
	_ = v.BindEnv("database.port", "COMPARASUB_DATABASE_PORT")
	_ = v.BindEnv("database.user", "COMPARASUB_DATABASE_USER")
	_ = v.BindEnv("database.password", "COMPARASUB_DATABASE_PASSWORD")
	_ = v.BindEnv("database.database", "COMPARASUB_DATABASE_DATABASE")
	_ = v.BindEnv("database.ssl_mode", "COMPARASUB_DATABASE_SSL_MODE")

	_ = v.BindEnv("subset.ref_genome_db_id",
		"COMPARASUB_SUBSET_REF_GENOME_DB_ID")
	_ = v.BindEnv("subset.method_link_id",
		"COMPARASUB_SUBSET_METHOD_LINK_ID")
	_ = v.BindEnv("subset.out_dir", "COMPARASUB_SUBSET_OUT_DIR")

	_ = v.BindEnv("log.level", "COMPARASUB_LOG_LEVEL")
	_ = v.BindEnv("log.format", "COMPARASUB_LOG_FORMAT")
	_ = v.BindEnv("log.destination", "COMPARASUB_LOG_DESTINATION")

	_ = v.BindEnv("jobs_number", "COMPARASUB_JOBS_NUMBER")

	v.AutomaticEnv()
}

// ValidateConfigFile checks that a config file is well-formed YAML
// and uses only known settings. Viper ignores unknown keys, so this
// is what catches misspelled settings before they are silently
// dropped.
func ValidateConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return iofs.ReadFileError(path, err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var cfg config.Config
	err = dec.Decode(&cfg)
	// An all-comments file decodes to EOF and is a valid config.
	if err != nil && !errors.Is(err, io.EOF) {
		return iofs.ReadFileError(path,
			fmt.Errorf("malformed config: %w", err))
	}
	return nil
}
