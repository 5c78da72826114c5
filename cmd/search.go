package cmd

import (
	"fmt"
	"strings"

	"github.com/cineverse-labs/cineverse/internal/search"
	"github.com/spf13/cobra"
)

func newSearchCmd(opts *options) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Ask the model for movies matching a query",
		Example: `  # Find a movie and similar ones
  cineverse search Interstellar

  # Free-form queries work too
  cineverse search "feel-good sports dramas" --format yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := validateFormat(format); err != nil {
				return err
			}
			gw, err := newGateway(opts)
			if err != nil {
				return err
			}

			controller := search.NewController(gw, nil)
			if !controller.Submit(cmd.Context(), strings.Join(args, " ")) {
				return fmt.Errorf("search query is empty")
			}

			state := controller.State()
			out := cmd.OutOrStdout()
			if format == formatYAML {
				return writeYAML(out, state)
			}
			renderSearch(out, state)
			if state.Status == search.StatusError {
				return fmt.Errorf("search failed")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&format, "format", "f", formatText, "Output format (text or yaml)")

	return cmd
}
