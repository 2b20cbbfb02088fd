/*
Copyright © 2025 Dmitry Mozzherin <dmozzherin@gmail.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/comparadb/comparasub/internal/iodb"
	"github.com/comparadb/comparasub/internal/ioconfig"
	"github.com/comparadb/comparasub/internal/iofs"
	"github.com/comparadb/comparasub/internal/iologger"
	app "github.com/comparadb/comparasub/pkg"
	"github.com/comparadb/comparasub/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

var (
	homeDir string
	cfg     *config.Config
)

// getRootCmd assembles the root command with its subcommands.
// Extracted as a function so tests get independent instances.
func getRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Version: fmt.Sprintf("version: %s\nbuild:   %s", app.Version, app.Build),
		Use:     "comparasub",
		Short: "comparasub cuts small test subsets out of " +
			"comparative-genomics databases",
		Long: `comparasub builds a small, referentially consistent copy of a
Compara-style comparative-genomics database, suitable as a test fixture.

A run clones the structural schema of the source into a fresh
destination, copies the subset of rows reachable from seed-region
windows on a reference genome, and emits per-genome seed-region files
that hand the subset's alignment footprint to the next tool in the
chain.

Engines:
  - mysql:    source and destination are two databases on one server
  - postgres: source and destination are two schemas in one database
  - sqlite:   source and destination are two files

Configuration precedence (highest to lowest):
  1. CLI flags (--host, --port, ...)
  2. Environment variables (COMPARASUB_*)
  3. Config file (~/.config/comparasub/config.yaml)
  4. Built-in defaults

Environment variables mirror the config file settings; nested fields
use underscores (database.host becomes COMPARASUB_DATABASE_HOST).`,
		PersistentPreRunE: bootstrap,
		RunE:              runRoot,
		SilenceErrors:     true,
		SilenceUsage:      true,
	}

	// Remove the automatic "comparasub version" prefix
	rootCmd.SetVersionTemplate("{{.Version}}\n")

	// Override version flag to use -V (consistent with other projects)
	rootCmd.Flags().BoolP("version", "V", false, "version for comparasub")

	rootCmd.AddCommand(getSubsetCmd())
	rootCmd.AddCommand(getVerifyCmd())
	rootCmd.AddCommand(getRegionsCmd())

	return rootCmd
}

func bootstrap(cmd *cobra.Command, args []string) error {
	var err error
	homeDir, err = os.UserHomeDir()
	if err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureDirs(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Initialize logging with hardcoded defaults
	// Will be reconfigured later with user's config settings
	defaultLog := config.LogConfig{
		Format:      "json",
		Level:       "info",
		Destination: "file",
	}
	if err = iologger.Init(config.LogDir(homeDir), defaultLog, false); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if err = iofs.EnsureConfigFile(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	gn.Info(
		"Configuration files are available at <em>%s</em>",
		config.ConfigDir(homeDir),
	)

	// Viper drops unknown settings silently; catch typos first.
	if err = ioconfig.ValidateConfigFile(config.ConfigFilePath(homeDir)); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	if cfg, err = ioconfig.Load(homeDir); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	// Reconfigure logging with user's settings, appending to the file
	// the default configuration already opened.
	if err = reconfigureLogging(cfg); err != nil {
		gn.PrintErrorMessage(err)
		return err
	}

	slog.Info("Configuration loaded",
		"config_file", config.ConfigFilePath(homeDir))

	return nil
}

// reconfigureLogging reinitializes the logger with the loaded
// configuration.
func reconfigureLogging(cfg *config.Config) error {
	logDir := config.LogDir(cfg.HomeDir)
	return iologger.Init(logDir, cfg.Log, true)
}

func runRoot(cmd *cobra.Command, args []string) error {
	return cmd.Help()
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main().
func Execute() {
	if err := getRootCmd().Execute(); err != nil {
		os.Exit(exitCode(err))
	}
}

// exitCode maps an error to the process exit code. A failed
// structural-copy subprocess propagates its decoded exit status;
// everything else exits 1.
func exitCode(err error) int {
	var se *iodb.StructureError
	if errors.As(err, &se) && se.Status > 0 {
		return se.Status
	}
	return 1
}
