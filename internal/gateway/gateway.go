// Package gateway turns category and search requests into generation calls
// and validated, uniquely identified movie records.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync/atomic"
	"time"
	"unicode"

	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/cineverse-labs/cineverse/internal/providers"
	"github.com/mozillazg/go-unidecode"
)

const (
	// CategoryCount is how many movies a category fetch asks for
	CategoryCount = 6
	// SearchCount is how many movies a search asks for
	SearchCount = 8
	// CategoryTemperature keeps catalog rows varied between sessions
	CategoryTemperature = 0.7

	searchPrefix = "search"
)

var (
	// ErrNoProvider is returned by SearchByQuery when the gateway has nothing to call
	ErrNoProvider = errors.New("no generation provider configured")
	// ErrProviderPanic wraps a panic raised inside the provider
	ErrProviderPanic = errors.New("generation provider panicked")
)

// Gateway issues structured generation requests and returns movie records.
// Generation failures never reach callers; they degrade to an empty list.
type Gateway struct {
	provider providers.Provider
	model    string
	now      func() time.Time
	seq      atomic.Uint64
}

// Option configures a Gateway
type Option func(*Gateway)

// WithModel overrides the provider's default model
func WithModel(model string) Option {
	return func(g *Gateway) {
		g.model = model
	}
}

// WithClock replaces time.Now for ID stamps
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) {
		g.now = now
	}
}

// New returns a gateway backed by provider
func New(provider providers.Provider, opts ...Option) *Gateway {
	g := &Gateway{
		provider: provider,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// FetchByCategory returns up to CategoryCount movies for a catalog category.
// An empty result covers both "nothing found" and any generation failure.
func (g *Gateway) FetchByCategory(ctx context.Context, category string) []models.Movie {
	movies, err := g.generate(ctx, providers.Config{
		Model:          g.model,
		Prompt:         buildCategoryPrompt(category, CategoryCount),
		Temperature:    providers.Float64(CategoryTemperature),
		ResponseSchema: MovieListSchema(),
	}, CategoryCount)
	if err != nil {
		slog.Error("Error fetching movies", "category", category, "err", err)
		return []models.Movie{}
	}

	g.assignIDs(categoryPrefix(category), movies)
	slog.Debug("Fetched category", "category", category, "count", len(movies))
	return movies
}

// SearchByQuery returns up to SearchCount movies for a free-text query.
// Generation failures give an empty result; an error is returned only when
// something unexpected escaped the provider.
func (g *Gateway) SearchByQuery(ctx context.Context, query string) ([]models.Movie, error) {
	movies, err := g.generate(ctx, providers.Config{
		Model:          g.model,
		Prompt:         buildSearchPrompt(query, SearchCount),
		ResponseSchema: MovieListSchema(),
	}, SearchCount)
	if err != nil {
		if errors.Is(err, ErrNoProvider) || errors.Is(err, ErrProviderPanic) {
			return nil, err
		}
		slog.Error("Error searching movies", "query", query, "err", err)
		return []models.Movie{}, nil
	}

	g.assignIDs(searchPrefix, movies)
	slog.Debug("Searched movies", "query", query, "count", len(movies))
	return movies, nil
}

func (g *Gateway) generate(ctx context.Context, config providers.Config, limit int) (movies []models.Movie, err error) {
	if g.provider == nil {
		return nil, ErrNoProvider
	}

	defer func() {
		if r := recover(); r != nil {
			movies = nil
			err = fmt.Errorf("%w: %v", ErrProviderPanic, r)
		}
	}()

	text, err := g.provider.GenerateText(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to generate movies: %w", err)
	}

	movies, err = parseMovies(text)
	if err != nil {
		return nil, err
	}
	if len(movies) > limit {
		movies = movies[:limit]
	}
	return movies, nil
}

// assignIDs stamps every movie with prefix-index-millis-sequence. The
// sequence is taken once per call so rapid repeated calls never collide.
func (g *Gateway) assignIDs(prefix string, movies []models.Movie) {
	stamp := g.now().UnixMilli()
	call := g.seq.Add(1)
	for i := range movies {
		movies[i].ID = fmt.Sprintf("%s-%d-%d-%d", prefix, i, stamp, call)
	}
}

// categoryPrefix folds the category to ASCII letters and digits
func categoryPrefix(category string) string {
	folded := unidecode.Unidecode(category)
	var sb strings.Builder
	for _, r := range folded {
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r)) {
			sb.WriteRune(r)
		}
	}
	prefix := sb.String()
	switch {
	case prefix == "":
		return "category"
	case strings.EqualFold(prefix, searchPrefix):
		return "category-" + prefix
	}
	return prefix
}
