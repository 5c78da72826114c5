package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/cineverse-labs/cineverse/internal/providers"
)

// requiredFields are the string fields every generated movie must carry
var requiredFields = []string{"title", "year", "rating", "genre", "description", "language", "director"}

// MovieListSchema is the structured output requested from the provider:
// an array of movie objects with every field required.
func MovieListSchema() *providers.Schema {
	props := make(map[string]*providers.Schema, len(requiredFields)+1)
	for _, name := range requiredFields {
		props[name] = &providers.Schema{Type: providers.TypeString}
	}
	props["cast"] = &providers.Schema{
		Type:  providers.TypeArray,
		Items: &providers.Schema{Type: providers.TypeString},
	}

	required := append(append([]string(nil), requiredFields...), "cast")
	return &providers.Schema{
		Type: providers.TypeArray,
		Items: &providers.Schema{
			Type:       providers.TypeObject,
			Properties: props,
			Required:   required,
		},
	}
}

var errEmptyResponse = errors.New("empty response")

// generatedMovie mirrors the schema; pointers tell a missing field from an empty one
type generatedMovie struct {
	Title       *string   `json:"title"`
	Year        *string   `json:"year"`
	Rating      *string   `json:"rating"`
	Genre       *string   `json:"genre"`
	Description *string   `json:"description"`
	Language    *string   `json:"language"`
	Director    *string   `json:"director"`
	Cast        *[]string `json:"cast"`
}

func (g generatedMovie) validate() error {
	fields := []struct {
		name  string
		value *string
	}{
		{"title", g.Title},
		{"year", g.Year},
		{"rating", g.Rating},
		{"genre", g.Genre},
		{"description", g.Description},
		{"language", g.Language},
		{"director", g.Director},
	}
	for _, f := range fields {
		if f.value == nil {
			return fmt.Errorf("missing required field %q", f.name)
		}
	}
	if g.Cast == nil {
		return fmt.Errorf("missing required field %q", "cast")
	}
	return nil
}

func (g generatedMovie) toMovie() models.Movie {
	return models.Movie{
		Title:       *g.Title,
		Year:        *g.Year,
		Rating:      *g.Rating,
		Genre:       *g.Genre,
		Description: *g.Description,
		Language:    *g.Language,
		Director:    *g.Director,
		Cast:        append([]string{}, (*g.Cast)...),
	}
}

// parseMovies decodes the provider's text into movies without IDs. Any
// element failing the schema rejects the whole response.
func parseMovies(text string) ([]models.Movie, error) {
	payload := extractJSON(text)
	if payload == "" {
		return nil, errEmptyResponse
	}

	// Decoding into typed fields rejects numbers where strings are expected
	// and anything left over after the array
	var raw []generatedMovie
	if err := json.Unmarshal([]byte(payload), &raw); err != nil {
		return nil, fmt.Errorf("failed to decode movie list: %w", err)
	}

	movies := make([]models.Movie, 0, len(raw))
	for i, item := range raw {
		if err := item.validate(); err != nil {
			return nil, fmt.Errorf("movie %d: %w", i, err)
		}
		movies = append(movies, item.toMovie())
	}
	return movies, nil
}

// extractJSON strips markdown code fences some models wrap around JSON,
// whether the fence spans several lines or sits on one
func extractJSON(text string) string {
	text = strings.TrimSpace(text)
	rest, fenced := strings.CutPrefix(text, "```")
	if !fenced {
		return text
	}

	// The language tag runs up to the first newline or the start of the payload
	i := strings.IndexAny(rest, "\n[{")
	if i < 0 {
		return ""
	}
	rest = rest[i:]
	if body, _, closed := strings.Cut(rest, "```"); closed {
		rest = body
	}
	return strings.TrimSpace(rest)
}
