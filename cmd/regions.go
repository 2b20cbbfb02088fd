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
	"github.com/comparadb/comparasub/pkg/regions"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getRegionsCmd returns the regions command with its subcommands.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getRegionsCmd() *cobra.Command {
	regionsCmd := &cobra.Command{
		Use:   "regions",
		Short: "Inspect and transform seed-region files",
		Long: `Utilities for the seed-region files that drive a subset run and
that the run emits for companion genomes.

Both the canonical JSON form and the legacy bracketed-list form are
accepted on input; output is always canonical JSON.`,
	}

	regionsCmd.AddCommand(getRegionsCheckCmd())
	regionsCmd.AddCommand(getRegionsMergeCmd())

	return regionsCmd
}

// getRegionsCheckCmd returns the regions check subcommand.
func getRegionsCheckCmd() *cobra.Command {
	var out string

	checkCmd := &cobra.Command{
		Use:   "check <file>",
		Short: "Validate a seed-region file and print its canonical form",
		Long: `Parse a seed-region file, validate every record, and print the
list back in the canonical JSON form. Legacy bracketed-list files are
normalized in the process, so check doubles as a converter.

Examples:
  comparasub regions check seeds.json
  comparasub regions check legacy_seeds.txt -o seeds.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRegionsCheck(cmd, args[0], out)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	checkCmd.Flags().StringVarP(&out, "out", "o", "",
		"write the canonical form to a file instead of stdout")

	return checkCmd
}

func runRegionsCheck(cmd *cobra.Command, path, out string) error {
	rr, err := regions.ParseFile(path)
	if err != nil {
		return err
	}

	gn.Info("Seed-region file <em>%s</em> is valid, %d regions", path, len(rr))

	if out != "" {
		if err := regions.WriteFile(out, rr); err != nil {
			return err
		}
		gn.Info("Canonical form written to <em>%s</em>", out)
		return nil
	}
	return regions.Write(cmd.OutOrStdout(), rr)
}

// getRegionsMergeCmd returns the regions merge subcommand.
func getRegionsMergeCmd() *cobra.Command {
	var out string
	var flank int64

	mergeCmd := &cobra.Command{
		Use:   "merge <file>",
		Short: "Merge nearby intervals into consolidated seed regions",
		Long: `Collapse intervals that lie close together on the same sequence
region, the same way the subset run consolidates alignment footprints
before emitting companion seed-region files.

Each interval is notionally extended by --flank bases on both sides;
runs whose extended forms touch become a single record spanning the
original coordinates.

Examples:
  comparasub regions merge footprints.json
  comparasub regions merge footprints.json --flank 50000 -o seeds.json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runRegionsMerge(cmd, args[0], out, flank)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	mergeCmd.Flags().StringVarP(&out, "out", "o", "",
		"write the merged list to a file instead of stdout")
	mergeCmd.Flags().Int64Var(&flank, "flank", regions.DefaultFlank,
		"context in bases assumed around each interval")

	return mergeCmd
}

func runRegionsMerge(cmd *cobra.Command, path, out string, flank int64) error {
	rr, err := regions.ParseFile(path)
	if err != nil {
		return err
	}

	merged := regions.Merge(rr, flank)

	if out != "" {
		if err := regions.WriteFile(out, merged); err != nil {
			return err
		}
		gn.Info("Merged %d regions into %d, written to <em>%s</em>",
			len(rr), len(merged), out)
		return nil
	}
	return regions.Write(cmd.OutOrStdout(), merged)
}
