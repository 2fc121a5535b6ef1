package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"agency/internal/catalog"
	"agency/internal/catalog/adapters"
	"agency/internal/pricing"
)

func newCardsCmd(root *rootOptions) *cobra.Command {
	var (
		featured     []string
		service      string
		limit        int
		featureLimit int
	)
	cmd := &cobra.Command{
		Use:   "cards",
		Short: "Print package cards as the grid would render them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.load(cmd.Context())
			if err != nil {
				return err
			}
			cards := adapters.ToPackageGrid(c.Bundles, adapters.GridOptions{
				CardOptions:   adapters.CardOptions{FeatureLimit: featureLimit},
				FeaturedSlugs: featured,
				Service:       service,
				Limit:         limit,
			})
			return writeJSON(cmd.OutOrStdout(), cards)
		},
	}
	cmd.Flags().StringSliceVar(&featured, "featured", nil, "slugs to pin first, in order")
	cmd.Flags().StringVar(&service, "service", "", "only bundles for this service")
	cmd.Flags().IntVar(&limit, "limit", 0, "maximum cards (0 = all)")
	cmd.Flags().IntVar(&featureLimit, "feature-limit", adapters.DefaultFeatureLimit, "features shown per card")
	return cmd
}

func newJSONLDCmd(root *rootOptions) *cobra.Command {
	var (
		opts   adapters.JSONLDOptions
		script bool
	)
	cmd := &cobra.Command{
		Use:   "jsonld [slug]",
		Short: "Print structured data for one package, or the package list",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := root.load(cmd.Context())
			if err != nil {
				return err
			}
			var doc any
			if len(args) == 1 {
				b, ok := c.BundleBySlug(args[0])
				if !ok {
					return fmt.Errorf("package %s not found", args[0])
				}
				doc = adapters.ToServiceJSONLD(b, opts)
			} else {
				doc = adapters.ToItemListJSONLD(adapters.SortBundles(c.Bundles, nil), opts)
			}

			out := cmd.OutOrStdout()
			if script {
				tag, err := adapters.ScriptTag(doc)
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(out, tag)
				return err
			}
			data, err := adapters.MarshalJSONLD(doc)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(out, string(data))
			return err
		},
	}
	cmd.Flags().StringVar(&opts.BaseURL, "base-url", "http://localhost:3000", "site origin for absolute URLs")
	cmd.Flags().StringVar(&opts.ProviderName, "provider", "", "organization named as the service provider")
	cmd.Flags().BoolVar(&script, "script", false, "wrap the output in a script tag")
	return cmd
}

func newLabelCmd(root *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "label",
		Short: "Print the resolved price label of every bundle and add-on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.load(cmd.Context())
			if err != nil {
				return err
			}
			return writeLabels(cmd.OutOrStdout(), c)
		},
	}
}

func writeLabels(out io.Writer, c *catalog.Catalog) error {
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tID\tLABEL")
	for _, b := range adapters.SortBundles(c.Bundles, nil) {
		label := "-"
		if m, ok := adapters.ResolvePrice(b); ok {
			label = pricing.StartingAtLabel(m)
		}
		fmt.Fprintf(tw, "bundle\t%s\t%s\n", b.Slug, label)
	}
	for _, a := range c.AddOns {
		fmt.Fprintf(tw, "add-on\t%s\t%s\n", a.ID, adapters.ToAddOnCard(a).PriceLabel)
	}
	return tw.Flush()
}

func writeJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
