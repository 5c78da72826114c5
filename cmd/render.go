package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/cineverse-labs/cineverse/internal/search"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatYAML = "yaml"
)

func validateFormat(format string) error {
	if format != formatText && format != formatYAML {
		return fmt.Errorf("unsupported format %q (use %s or %s)", format, formatText, formatYAML)
	}
	return nil
}

func writeYAML(w io.Writer, v any) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode yaml: %w", err)
	}
	return enc.Close()
}

func renderSection(w io.Writer, s models.Section) {
	fmt.Fprintf(w, "\n== %s ==\n", s.Title)
	switch {
	case s.Loading:
		fmt.Fprintln(w, "  loading...")
	case len(s.Movies) == 0:
		fmt.Fprintln(w, "  No movies found for this section.")
	default:
		renderCards(w, s.Movies)
	}
}

func renderCards(w io.Writer, movies []models.Movie) {
	for _, m := range movies {
		fmt.Fprintf(w, "  %-28s %s (%s)  %s  %s\n", "["+m.ID+"]", m.Title, m.Year, m.Rating, m.Genre)
	}
}

func renderSearch(w io.Writer, state search.State) {
	switch state.Status {
	case search.StatusLoading:
		fmt.Fprintf(w, "\nSearching for %q...\n", state.Query)
	case search.StatusError:
		fmt.Fprintln(w, "\nSomething went wrong while searching. Try again.")
	case search.StatusSuccess:
		if state.Empty() {
			fmt.Fprintln(w, "\nNo results found for your search.")
			fmt.Fprintln(w, "Try searching for a different movie or genre.")
			return
		}
		fmt.Fprintf(w, "\n== %s ==\n", state.Title)
		renderCards(w, state.Results)
	}
}

func renderDetail(w io.Writer, m models.Movie) {
	fmt.Fprintf(w, "\n%s (%s)\n", m.Title, m.Year)
	fmt.Fprintf(w, "  Rating:   %s\n", m.Rating)
	fmt.Fprintf(w, "  Genre:    %s\n", m.Genre)
	fmt.Fprintf(w, "  Language: %s\n", m.Language)
	fmt.Fprintf(w, "  Director: %s\n", m.Director)
	if len(m.Cast) > 0 {
		fmt.Fprintf(w, "  Cast:     %s\n", strings.Join(m.Cast, ", "))
	}
	fmt.Fprintf(w, "  Poster:   %s\n", m.PosterURL(models.DetailWidth, models.DetailHeight))
	if m.Playable() {
		fmt.Fprintf(w, "  Video:    %s\n", m.VideoURL)
	}
	fmt.Fprintf(w, "\n  %s\n", m.Description)
}
