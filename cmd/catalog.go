package cmd

import (
	"github.com/cineverse-labs/cineverse/internal/catalog"
	"github.com/spf13/cobra"
)

func newCatalogCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "Print the catalog sections as YAML",
		Long: `Prints the sections the home view loads, in display order.

The output can be edited and passed back with --catalog.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			defs, err := loadDefinitions(opts.catalogPath)
			if err != nil {
				return err
			}
			data, err := catalog.Marshal(defs)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
