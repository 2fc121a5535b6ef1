package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"agency/internal/catalog"
)

func newValidateCmd(root *rootOptions) *cobra.Command {
	var (
		strict  bool
		jsonOut bool
	)
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check schema and cross-record rules; exits non-zero on errors",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := root.load(cmd.Context())
			if err != nil {
				return err
			}
			report := catalog.Validate(c)
			out := cmd.OutOrStdout()

			if jsonOut {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for _, issue := range report.Errors {
					fmt.Fprintf(out, "error   %s\n", issue)
				}
				for _, issue := range report.Warnings {
					fmt.Fprintf(out, "warning %s\n", issue)
				}
				fmt.Fprintf(out, "%d bundle(s), %d add-on(s): %d error(s), %d warning(s)\n",
					len(c.Bundles), len(c.AddOns), len(report.Errors), len(report.Warnings))
			}

			if !report.OK() {
				return fmt.Errorf("catalog has %d error(s)", len(report.Errors))
			}
			if strict && len(report.Warnings) > 0 {
				return fmt.Errorf("catalog has %d warning(s) in strict mode", len(report.Warnings))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "treat warnings as errors")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "print the report as JSON")
	return cmd
}
