// Package ioclone implements the structural clone stage: it makes the
// destination an empty copy of the source's table structure. This is an
// impure I/O package that implements the compara.SchemaCloner contract.
package ioclone

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/comparadb/comparasub/pkg/compara"
	"github.com/comparadb/comparasub/pkg/db"
)

// cloner implements the compara.SchemaCloner interface on top of a
// connected database operator.
type cloner struct {
	op    db.Operator
	dst   string
	force bool
	in    io.Reader
	out   io.Writer
}

// NewCloner creates a new SchemaCloner. The operator must already be
// connected. The destination name appears in the confirmation prompt;
// force skips the prompt and replaces an existing destination.
func NewCloner(op db.Operator, destination string, force bool) compara.SchemaCloner {
	return &cloner{
		op:    op,
		dst:   destination,
		force: force,
		in:    os.Stdin,
		out:   os.Stdout,
	}
}

// Clone builds the empty destination structure. An existing destination
// is dropped first, after confirmation unless force is set; declining
// the prompt returns compara.ErrAborted with nothing written.
func (c *cloner) Clone(ctx context.Context) error {
	exists, err := c.op.DestinationExists(ctx)
	if err != nil {
		return ExistsCheckError(c.dst, err)
	}

	if exists {
		if c.force {
			slog.Info("replacing destination", "destination", c.dst,
				"force", true)
		} else {
			ok, err := c.confirm()
			if err != nil {
				return err
			}
			if !ok {
				fmt.Fprintln(c.out,
					"Aborted. No changes made to the database.")
				return compara.ErrAborted
			}
		}

		if err := c.op.DropDestination(ctx); err != nil {
			return err
		}
		slog.Info("destination dropped", "destination", c.dst)
	}

	if err := c.op.CreateDestination(ctx); err != nil {
		return err
	}

	if err := c.op.CopyStructure(ctx); err != nil {
		return err
	}

	slog.Info("destination structure created", "destination", c.dst)
	return nil
}

// confirm asks whether an existing destination may be replaced. Only
// "yes" or "y" continues.
func (c *cloner) confirm() (bool, error) {
	fmt.Fprintf(c.out, "\nWarning: destination %s already exists.\n", c.dst)
	fmt.Fprintln(c.out, "Continuing will drop ALL its tables and data.")
	fmt.Fprint(c.out, "\nDo you want to continue? (yes/no): ")

	reader := bufio.NewReader(c.in)
	response, err := reader.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return false, PromptError(err)
	}

	response = strings.TrimSpace(strings.ToLower(response))
	return response == "yes" || response == "y", nil
}
