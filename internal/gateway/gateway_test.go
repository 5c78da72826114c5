package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/cineverse-labs/cineverse/internal/providers"
	"github.com/cineverse-labs/cineverse/internal/providers/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func movieJSON(n int) string {
	items := make([]string, n)
	for i := range items {
		items[i] = fmt.Sprintf(`{"title":"Movie %d","year":"2020","rating":"8.1","genre":"Drama","description":"A film.","language":"Hindi","director":"D","cast":["A","B","C"]}`, i)
	}
	return "[" + strings.Join(items, ",") + "]"
}

func fixedClock() func() time.Time {
	return func() time.Time { return time.UnixMilli(1700000000000) }
}

func TestFetchByCategory(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)

	provider.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, config providers.Config) (string, error) {
			assert.Contains(t, config.Prompt, `"Bollywood"`)
			assert.Contains(t, config.Prompt, "list of 6 popular")
			require.NotNil(t, config.Temperature)
			assert.Equal(t, CategoryTemperature, *config.Temperature)
			require.NotNil(t, config.ResponseSchema)
			assert.Equal(t, providers.TypeArray, config.ResponseSchema.Type)
			return movieJSON(3), nil
		})

	g := New(provider, WithClock(fixedClock()))
	movies := g.FetchByCategory(context.Background(), "Bollywood")

	require.Len(t, movies, 3)
	assert.Equal(t, "Bollywood-0-1700000000000-1", movies[0].ID)
	assert.Equal(t, "Bollywood-2-1700000000000-1", movies[2].ID)
	assert.Equal(t, "Movie 1", movies[1].Title)
	assert.Equal(t, []string{"A", "B", "C"}, movies[1].Cast)
	assert.Empty(t, movies[0].ImageURL)
	assert.Empty(t, movies[0].VideoURL)
}

func TestFetchByCategoryCapsCount(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GenerateText(gomock.Any(), gomock.Any()).Return(movieJSON(9), nil)

	movies := New(provider).FetchByCategory(context.Background(), "Kids Cartoon")
	assert.Len(t, movies, CategoryCount)
}

func TestSearchByQuery(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().
		GenerateText(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, config providers.Config) (string, error) {
			assert.Contains(t, config.Prompt, `"Interstellar"`)
			assert.Contains(t, config.Prompt, "Recommend 8 movies")
			assert.Nil(t, config.Temperature)
			return movieJSON(10), nil
		})

	movies, err := New(provider, WithClock(fixedClock())).SearchByQuery(context.Background(), "Interstellar")
	require.NoError(t, err)
	require.Len(t, movies, SearchCount)
	for _, m := range movies {
		assert.True(t, strings.HasPrefix(m.ID, "search-"), m.ID)
	}
}

func TestGenerationFailuresBecomeEmpty(t *testing.T) {
	tests := []struct {
		name string
		text string
		err  error
	}{
		{name: "provider error", err: errors.New("network down")},
		{name: "empty text", text: ""},
		{name: "whitespace text", text: "   \n"},
		{name: "not json", text: "Sorry, I can't help with that."},
		{name: "object instead of array", text: `{"title":"x"}`},
		{name: "missing required field", text: `[{"title":"A","year":"1","rating":"1","genre":"g","description":"d","language":"l","cast":[]}]`},
		{name: "missing cast", text: `[{"title":"A","year":"1","rating":"1","genre":"g","description":"d","language":"l","director":"x"}]`},
		{name: "wrong field type", text: `[{"title":"A","year":1999,"rating":"1","genre":"g","description":"d","language":"l","director":"x","cast":[]}]`},
		{name: "null field", text: `[{"title":null,"year":"1","rating":"1","genre":"g","description":"d","language":"l","director":"x","cast":[]}]`},
		{name: "trailing text", text: movieJSON(1) + " trailing garbage"},
		{name: "second array", text: movieJSON(1) + movieJSON(1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			provider := mocks.NewMockProvider(ctrl)
			provider.EXPECT().GenerateText(gomock.Any(), gomock.Any()).Return(tt.text, tt.err).Times(2)

			g := New(provider)
			movies := g.FetchByCategory(context.Background(), "Bollywood")
			assert.NotNil(t, movies)
			assert.Empty(t, movies)

			results, err := g.SearchByQuery(context.Background(), "anything")
			assert.NoError(t, err)
			assert.NotNil(t, results)
			assert.Empty(t, results)
		})
	}
}

func TestCodeFencedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GenerateText(gomock.Any(), gomock.Any()).Return("```json\n"+movieJSON(2)+"\n```", nil)

	movies := New(provider).FetchByCategory(context.Background(), "Bollywood")
	assert.Len(t, movies, 2)
}

func TestSingleLineFencedResponse(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GenerateText(gomock.Any(), gomock.Any()).Return("```json "+movieJSON(2)+" ```", nil)

	movies := New(provider).FetchByCategory(context.Background(), "Bollywood")
	assert.Len(t, movies, 2)
}

func TestIDsUniqueAcrossRapidCalls(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GenerateText(gomock.Any(), gomock.Any()).Return(movieJSON(6), nil).AnyTimes()

	// A frozen clock proves uniqueness does not depend on wall time
	g := New(provider, WithClock(fixedClock()))
	seen := map[string]bool{}
	for i := 0; i < 5; i++ {
		for _, m := range g.FetchByCategory(context.Background(), "Latest Movies 2024") {
			assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
			seen[m.ID] = true
		}
		results, err := g.SearchByQuery(context.Background(), "q")
		require.NoError(t, err)
		for _, m := range results {
			assert.False(t, seen[m.ID], "duplicate id %s", m.ID)
			seen[m.ID] = true
		}
	}
	assert.Len(t, seen, 60)
}

func TestSearchUnexpectedFailures(t *testing.T) {
	t.Run("no provider", func(t *testing.T) {
		g := New(nil)
		_, err := g.SearchByQuery(context.Background(), "q")
		assert.ErrorIs(t, err, ErrNoProvider)
		assert.Empty(t, g.FetchByCategory(context.Background(), "Bollywood"))
	})

	t.Run("provider panic", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		provider := mocks.NewMockProvider(ctrl)
		provider.EXPECT().
			GenerateText(gomock.Any(), gomock.Any()).
			DoAndReturn(func(context.Context, providers.Config) (string, error) {
				panic("boom")
			}).
			Times(2)

		g := New(provider)
		_, err := g.SearchByQuery(context.Background(), "q")
		assert.ErrorIs(t, err, ErrProviderPanic)
		assert.Empty(t, g.FetchByCategory(context.Background(), "Bollywood"))
	})
}

func TestRoundTripKeepsOnlySchemaFields(t *testing.T) {
	ctrl := gomock.NewController(t)
	provider := mocks.NewMockProvider(ctrl)
	provider.EXPECT().GenerateText(gomock.Any(), gomock.Any()).Return(`[{"title":"A","year":"1","rating":"1","genre":"g","description":"d","language":"l","director":"x","cast":["p","q","r"],"imageUrl":"http://evil"}]`, nil)

	movies := New(provider).FetchByCategory(context.Background(), "Bollywood")
	require.Len(t, movies, 1)

	data, err := json.Marshal(movies[0])
	require.NoError(t, err)
	var fields map[string]any
	require.NoError(t, json.Unmarshal(data, &fields))

	expected := append([]string{"id", "cast"}, requiredFields...)
	assert.Len(t, fields, len(expected))
	for _, name := range expected {
		assert.Contains(t, fields, name)
	}
}

func TestCategoryPrefix(t *testing.T) {
	tests := []struct {
		category string
		expected string
	}{
		{"Bollywood", "Bollywood"},
		{"Latest Movies 2024", "LatestMovies2024"},
		{"Kids & Cartoons", "KidsCartoons"},
		{"Café Noir", "CafeNoir"},
		{"search", "category-search"},
		{"Search", "category-Search"},
		{"!!!", "category"},
	}

	for _, tt := range tests {
		t.Run(tt.category, func(t *testing.T) {
			assert.Equal(t, tt.expected, categoryPrefix(tt.category))
		})
	}
}

func TestMovieListSchemaRequiresEveryField(t *testing.T) {
	schema := MovieListSchema()
	require.NotNil(t, schema.Items)
	assert.ElementsMatch(t, append([]string{"cast"}, requiredFields...), schema.Items.Required)
	assert.Equal(t, providers.TypeArray, schema.Items.Properties["cast"].Type)
	assert.Equal(t, providers.TypeString, schema.Items.Properties["cast"].Items.Type)
}

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "plain", input: " [1] ", expected: "[1]"},
		{name: "fenced", input: "```json\n[1]\n```", expected: "[1]"},
		{name: "bare fence", input: "```\n[1]\n```\ntrailing", expected: "[1]"},
		{name: "single line fence", input: "```json [1] ```", expected: "[1]"},
		{name: "single line bare fence", input: "```[{\"a\":1}]```", expected: `[{"a":1}]`},
		{name: "unclosed fence", input: "```json\n[1]", expected: "[1]"},
		{name: "fence only", input: "```json```", expected: ""},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, extractJSON(tt.input))
		})
	}
}
