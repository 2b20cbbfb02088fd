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
	"context"
	"errors"

	"github.com/comparadb/comparasub/internal/ioclone"
	"github.com/comparadb/comparasub/internal/iodb"
	"github.com/comparadb/comparasub/internal/iofs"
	"github.com/comparadb/comparasub/internal/iosubset"
	"github.com/comparadb/comparasub/internal/ioverify"
	"github.com/comparadb/comparasub/pkg/compara"
	"github.com/comparadb/comparasub/pkg/config"
	"github.com/gnames/gn"
	"github.com/gnames/gnsys"
	"github.com/spf13/cobra"
)

// subsetParams carries the per-run subset flag values.
type subsetParams struct {
	source      string
	destination string
	regionFile  string
	refGenome   int64
	methodLink  int64
	genomeIDs   []int64
	outDir      string
	force       bool
	verify      bool
}

// getSubsetCmd returns the subset command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getSubsetCmd() *cobra.Command {
	var conn connFlags
	var p subsetParams

	subsetCmd := &cobra.Command{
		Use:   "subset",
		Short: "Build a referentially consistent subset of a source database",
		Long: `Build a new destination database holding a small, referentially
consistent subset of a source comparative-genomics database.

This command:
  1. Connects to the engine with one connection that sees both the
     source and the destination schema
  2. Clones the source's table structure into an empty destination,
     prompting before an existing destination is replaced
  3. Copies the registry tables and every alignment, synteny, homology
     and family row reachable from the seed-region windows on the
     reference genome, child tables after their parents
  4. Re-derives the method_link_species_set registry for the genomes
     that were kept
  5. Emits one seed-region file per companion genome into --out-dir,
     describing the copied alignment footprint on that genome

The seed-region file lists windows on the reference genome, either as
JSON ([{"name": "chr1", "start": 1000000, "end": 1100000}, ...]) or
in the legacy bracketed-list form ([chr1, 1000000, 1100000] lines).

Examples:
  # two companion genomes out of a mysql compara database
  comparasub subset -s ensembl_compara -d compara_test \
    -r seeds.json --host db1 -u compara -p secret -g 2 -g 3

  # sqlite files; replace the destination and check closure after
  comparasub subset -e sqlite -s compara.db -d subset.db \
    -r seeds.json --force --verify`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runSubset(cmd, &conn, &p)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	conn.register(subsetCmd)

	subsetCmd.Flags().StringVarP(&p.source, "source", "s", "",
		"source to subset (mysql: database, postgres: schema, sqlite: file)")
	subsetCmd.Flags().StringVarP(&p.destination, "destination", "d", "",
		"destination to create")
	subsetCmd.Flags().StringVarP(&p.regionFile, "seq-region-file", "r", "",
		"seed-region file scoping the subset")
	subsetCmd.Flags().Int64Var(&p.refGenome, "ref-genome-db", 1,
		"genome_db id of the reference genome")
	subsetCmd.Flags().Int64SliceVarP(&p.genomeIDs, "genome-db", "g", nil,
		"companion genome_db ids (repeatable; default: all but the reference)")
	subsetCmd.Flags().Int64Var(&p.methodLink, "method-link-id", 1,
		"method_link id of the alignment method")
	subsetCmd.Flags().StringVarP(&p.outDir, "out-dir", "o", ".",
		"directory receiving the emitted seed-region files")
	subsetCmd.Flags().BoolVarP(&p.force, "force", "f", false,
		"replace an existing destination without confirmation")
	subsetCmd.Flags().BoolVar(&p.verify, "verify", false,
		"run the closure check after the build")

	_ = subsetCmd.MarkFlagRequired("source")
	_ = subsetCmd.MarkFlagRequired("destination")
	_ = subsetCmd.MarkFlagRequired("seq-region-file")

	return subsetCmd
}

func runSubset(cmd *cobra.Command, conn *connFlags, p *subsetParams) error {
	ctx := context.Background()

	opts := conn.options(cmd)
	opts = append(opts,
		config.OptSubsetSource(p.source),
		config.OptSubsetDestination(p.destination),
		config.OptSubsetSeqRegionFile(p.regionFile),
		config.OptSubsetForce(p.force),
		config.OptSubsetVerify(p.verify),
	)
	if cmd.Flags().Changed("ref-genome-db") {
		opts = append(opts, config.OptSubsetRefGenomeDBID(p.refGenome))
	}
	if cmd.Flags().Changed("method-link-id") {
		opts = append(opts, config.OptSubsetMethodLinkID(p.methodLink))
	}
	if cmd.Flags().Changed("out-dir") {
		opts = append(opts, config.OptSubsetOutDir(p.outDir))
	}
	if len(p.genomeIDs) > 0 {
		opts = append(opts, config.OptSubsetGenomeDBIDs(p.genomeIDs))
	}
	cfg.Update(opts)

	if err := checkServerSettings(cfg); err != nil {
		return err
	}

	if err := gnsys.MakeDir(cfg.Subset.OutDir); err != nil {
		return iofs.CreateDirError(cfg.Subset.OutDir, err)
	}

	op, err := iodb.NewOperator(cfg.Database.Engine)
	if err != nil {
		return err
	}

	// The pipeline is strictly sequential on one connection.
	err = op.Connect(ctx, &cfg.Database,
		cfg.Subset.Source, cfg.Subset.Destination, 1)
	if err != nil {
		return err
	}
	defer op.Close()

	if cfg.Database.Engine == config.EngineSQLite {
		gn.Info("Opened <em>%s</em> with <em>%s</em> attached as source",
			cfg.Subset.Destination, cfg.Subset.Source)
	} else {
		gn.Info("Connected to database: <em>%s@%s:%d</em>",
			cfg.Database.User, cfg.Database.Host,
			cfg.Database.EffectivePort())
	}

	cloner := ioclone.NewCloner(op, cfg.Subset.Destination, cfg.Subset.Force)
	if err := cloner.Clone(ctx); err != nil {
		// A declined replace prompt is a clean exit.
		if errors.Is(err, compara.ErrAborted) {
			return nil
		}
		return err
	}

	builder := iosubset.NewSubsetter(op, cfg)
	if _, err := builder.Build(ctx); err != nil {
		return err
	}

	if cfg.Subset.Verify {
		verifier := ioverify.NewVerifier(op, cfg.JobsNumber)
		rep, err := verifier.Verify(ctx)
		if err != nil {
			return err
		}
		if n := rep.Violations(); n > 0 {
			return ioverify.NotClosedError(n)
		}
		return nil
	}

	gn.Info("Run '<em>comparasub verify -e %s -d %s</em>' to re-check "+
		"referential closure any time.",
		cfg.Database.Engine, cfg.Subset.Destination)

	return nil
}
