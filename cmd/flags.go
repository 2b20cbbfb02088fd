package cmd

import (
	"fmt"
	"strings"

	"github.com/comparadb/comparasub/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// connFlags is the database connection flag set shared by the subset
// and verify commands.
type connFlags struct {
	engine   string
	host     string
	port     int
	user     string
	password string
	database string
	sslMode  string
}

// register adds the connection flags to a command.
func (f *connFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&f.engine, "engine", "e", "mysql",
		"database engine: mysql, postgres or sqlite")
	cmd.Flags().StringVar(&f.host, "host", "",
		"database server host")
	cmd.Flags().IntVar(&f.port, "port", 0,
		"database server port (0 = engine default)")
	cmd.Flags().StringVarP(&f.user, "user", "u", "",
		"database user")
	cmd.Flags().StringVarP(&f.password, "password", "p", "",
		"database password")
	cmd.Flags().StringVar(&f.database, "database", "",
		"postgres database hosting the source and destination schemas")
	cmd.Flags().StringVar(&f.sslMode, "ssl-mode", "",
		"postgres ssl mode: disable, require, verify-ca, verify-full")
}

// options converts the connection flags that were explicitly set into
// config options. Flags that stayed at their defaults never clobber
// values from the config file or environment.
func (f *connFlags) options(cmd *cobra.Command) []config.Option {
	var opts []config.Option

	if cmd.Flags().Changed("engine") {
		opts = append(opts, config.OptDatabaseEngine(f.engine))
	}
	if cmd.Flags().Changed("host") {
		opts = append(opts, config.OptDatabaseHost(f.host))
	}
	if cmd.Flags().Changed("port") {
		opts = append(opts, config.OptDatabasePort(f.port))
	}
	if cmd.Flags().Changed("user") {
		opts = append(opts, config.OptDatabaseUser(f.user))
	}
	if cmd.Flags().Changed("password") {
		opts = append(opts, config.OptDatabasePassword(f.password))
	}
	if cmd.Flags().Changed("database") {
		opts = append(opts, config.OptDatabaseDatabase(f.database))
	}
	if cmd.Flags().Changed("ssl-mode") {
		opts = append(opts, config.OptDatabaseSSLMode(f.sslMode))
	}

	return opts
}

// checkServerSettings rejects a run against a server engine without
// the settings a connection needs. The sqlite engine works on files
// and skips the check.
func checkServerSettings(cfg *config.Config) error {
	if cfg.Database.Engine == config.EngineSQLite {
		return nil
	}

	var missing []string
	if cfg.Database.Host == "" {
		missing = append(missing, "--host")
	}
	if cfg.Database.User == "" {
		missing = append(missing, "--user")
	}
	if cfg.Database.Password == "" {
		missing = append(missing, "--password")
	}
	if len(missing) == 0 {
		return nil
	}

	gn.Warn("The <em>%s</em> engine needs %s, either as flags, "+
		"COMPARASUB_* variables or config file settings.",
		cfg.Database.Engine, strings.Join(missing, ", "))
	return fmt.Errorf("missing connection settings: %s",
		strings.Join(missing, ", "))
}
