// Command catalogctl validates and previews the authored package catalog.
package main

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"agency/internal/catalog"
)

type rootOptions struct {
	dir string
}

func main() {
	if err := newRootCmd(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd(out, errOut io.Writer) *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "catalogctl",
		Short:         "Validate and preview the package catalog",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.SetOut(out)
	root.SetErr(errOut)
	root.PersistentFlags().StringVar(&opts.dir, "dir", "", "catalog directory (default: embedded sample)")

	root.AddCommand(
		newValidateCmd(opts),
		newCardsCmd(opts),
		newJSONLDCmd(opts),
		newLabelCmd(opts),
	)
	return root
}

func (o *rootOptions) source() fs.FS {
	if o.dir == "" {
		return catalog.Embedded()
	}
	return os.DirFS(o.dir)
}

func (o *rootOptions) load(ctx context.Context) (*catalog.Catalog, error) {
	c, err := catalog.Load(ctx, o.source())
	if err != nil {
		return nil, fmt.Errorf("load catalog: %w", err)
	}
	return c, nil
}
