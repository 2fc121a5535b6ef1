package catalog

import (
	"bytes"
	"context"
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sort"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	pstrings "agency/pkg/platform/strings"
)

//go:embed data/*.yaml
var embedded embed.FS

// maxParallelFiles bounds concurrent YAML decoding.
const maxParallelFiles = 8

// Embedded returns the catalog that ships with the binary.
func Embedded() fs.FS {
	sub, err := fs.Sub(embedded, "data")
	if err != nil {
		panic(err)
	}
	return sub
}

// Load parses every *.yaml file at the root of fsys and merges them in file
// name order. Unknown keys are decode errors so authoring typos fail loudly.
// Load does not run Validate; callers decide whether issues are fatal.
func Load(ctx context.Context, fsys fs.FS) (*Catalog, error) {
	names, err := fs.Glob(fsys, "*.yaml")
	if err != nil {
		return nil, fmt.Errorf("list catalog files: %w", err)
	}
	sort.Strings(names)
	if len(names) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}

	parts := make([]Catalog, len(names))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, name := range names {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := fs.ReadFile(fsys, name)
			if err != nil {
				return fmt.Errorf("read %s: %w", name, err)
			}
			part, err := decodeFile(data)
			if err != nil {
				return fmt.Errorf("decode %s: %w", name, err)
			}
			parts[i] = part
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	merged := &Catalog{}
	for _, part := range parts {
		merged.Bundles = append(merged.Bundles, part.Bundles...)
		merged.AddOns = append(merged.AddOns, part.AddOns...)
	}
	for i := range merged.Bundles {
		merged.Bundles[i].Tags = pstrings.DedupeAndTrimLower(merged.Bundles[i].Tags)
	}
	return merged, nil
}

// decodeFile accepts multi-document YAML; each document may carry bundles,
// add-ons or both.
func decodeFile(data []byte) (Catalog, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var out Catalog
	for {
		var doc Catalog
		err := dec.Decode(&doc)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return Catalog{}, err
		}
		out.Bundles = append(out.Bundles, doc.Bundles...)
		out.AddOns = append(out.AddOns, doc.AddOns...)
	}
	return out, nil
}
