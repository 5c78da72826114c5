package cmd

import (
	"github.com/cineverse-labs/cineverse/internal/catalog"
	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/spf13/cobra"
)

func newBrowseCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "browse",
		Short: "Load the home catalog section by section",
		Long: `Loads every catalog section in order, one request at a time.

In text mode each section is printed as soon as it is ready, so rows appear
progressively from top to bottom. A section the model could not fill is shown
as having no movies.`,
		Example: `  # Load the built-in catalog with Gemini
  cineverse browse

  # Use a custom catalog and print YAML once everything is loaded
  cineverse browse --catalog ./catalog.yaml --format yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			defs, err := loadDefinitions(opts.catalogPath)
			if err != nil {
				return err
			}
			gw, err := newGateway(opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			loader := catalog.NewLoader(gw, defs, func(_ int, section models.Section) {
				if format == formatText {
					renderSection(out, section)
				}
			})
			loader.Run(cmd.Context())

			if err := cmd.Context().Err(); err != nil {
				return err
			}
			if format == formatYAML {
				return writeYAML(out, map[string]any{"sections": loader.Sections()})
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text or yaml)")

	return cmd
}
