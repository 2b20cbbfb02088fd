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

	"github.com/comparadb/comparasub/internal/iodb"
	"github.com/comparadb/comparasub/internal/ioverify"
	"github.com/comparadb/comparasub/pkg/config"
	"github.com/gnames/gn"
	"github.com/spf13/cobra"
)

// getVerifyCmd returns the verify command.
// Extracted as a function to facilitate testing and dynamic
// command registration.
func getVerifyCmd() *cobra.Command {
	var conn connFlags
	var destination string
	var jobs int

	verifyCmd := &cobra.Command{
		Use:   "verify",
		Short: "Check the referential closure of a subset destination",
		Long: `Walk every foreign-key edge of the subset schema in a destination
and count child rows whose reference resolves to no parent row.

A destination produced by the subset command is expected to be closed:
every foreign-key value points at a row that was also copied. NULL
references are no reference, and on the legacy zero-as-null columns
(member.sequence_id, homology_member.peptide_member_id) a 0 means the
same.

Edges are independent and checked concurrently; --jobs bounds the
in-flight count queries.

Examples:
  comparasub verify -d compara_test --host db1 -u compara -p secret
  comparasub verify -e sqlite -d subset.db -j 4`,
		RunE: func(cmd *cobra.Command, args []string) error {
			err := runVerify(cmd, &conn, destination, jobs)
			if err != nil {
				gn.PrintErrorMessage(err)
			}
			return err
		},
	}

	conn.register(verifyCmd)

	verifyCmd.Flags().StringVarP(&destination, "destination", "d", "",
		"destination to check")
	verifyCmd.Flags().IntVarP(&jobs, "jobs", "j", 0,
		"concurrent edge checks (0 = number of CPUs)")

	_ = verifyCmd.MarkFlagRequired("destination")

	return verifyCmd
}

func runVerify(
	cmd *cobra.Command,
	conn *connFlags,
	destination string,
	jobs int,
) error {
	ctx := context.Background()

	opts := conn.options(cmd)
	opts = append(opts, config.OptSubsetDestination(destination))
	if cmd.Flags().Changed("jobs") {
		opts = append(opts, config.OptJobsNumber(jobs))
	}
	cfg.Update(opts)

	if err := checkServerSettings(cfg); err != nil {
		return err
	}

	op, err := iodb.NewOperator(cfg.Database.Engine)
	if err != nil {
		return err
	}

	// Destination-only session; the pool serves the concurrent checks.
	err = op.Connect(ctx, &cfg.Database, "",
		cfg.Subset.Destination, cfg.JobsNumber)
	if err != nil {
		return err
	}
	defer op.Close()

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
