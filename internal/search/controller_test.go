package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubSearcher struct {
	results []models.Movie
	err     error
	queries []string
}

func (s *stubSearcher) SearchByQuery(_ context.Context, query string) ([]models.Movie, error) {
	s.queries = append(s.queries, query)
	return s.results, s.err
}

// gatedSearcher blocks each call until the test releases it
type gatedSearcher struct {
	mu      sync.Mutex
	started chan string
	release map[string]chan []models.Movie
	ctxs    map[string]context.Context
}

func newGatedSearcher() *gatedSearcher {
	return &gatedSearcher{
		started: make(chan string, 4),
		release: map[string]chan []models.Movie{},
		ctxs:    map[string]context.Context{},
	}
}

func (g *gatedSearcher) gate(query string) chan []models.Movie {
	g.mu.Lock()
	defer g.mu.Unlock()
	ch, ok := g.release[query]
	if !ok {
		ch = make(chan []models.Movie, 1)
		g.release[query] = ch
	}
	return ch
}

func (g *gatedSearcher) SearchByQuery(ctx context.Context, query string) ([]models.Movie, error) {
	ch := g.gate(query)
	g.mu.Lock()
	g.ctxs[query] = ctx
	g.mu.Unlock()
	g.started <- query
	return <-ch, nil
}

func (g *gatedSearcher) ctx(query string) context.Context {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.ctxs[query]
}

func TestSubmitIgnoresBlankQueries(t *testing.T) {
	tests := []struct {
		name  string
		query string
	}{
		{name: "empty", query: ""},
		{name: "spaces", query: "   "},
		{name: "tabs and newlines", query: "\t\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			searcher := &stubSearcher{}
			changes := 0
			c := NewController(searcher, func(State) { changes++ })

			assert.False(t, c.Submit(context.Background(), tt.query))
			assert.Equal(t, State{Status: StatusIdle}, c.State())
			assert.Empty(t, searcher.queries)
			assert.Zero(t, changes)
		})
	}
}

func TestSubmitSuccess(t *testing.T) {
	searcher := &stubSearcher{results: []models.Movie{{ID: "search-0-1-1", Title: "Interstellar"}}}
	var statuses []Status
	c := NewController(searcher, func(s State) { statuses = append(statuses, s.Status) })

	assert.True(t, c.Submit(context.Background(), "  Interstellar "))

	state := c.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, "Interstellar", state.Query)
	assert.Equal(t, `Search Results for "Interstellar"`, state.Title)
	require.Len(t, state.Results, 1)
	assert.Equal(t, []string{"Interstellar"}, searcher.queries)
	assert.Equal(t, []Status{StatusLoading, StatusSuccess}, statuses)
	assert.True(t, state.Active())
	assert.False(t, state.Empty())
}

func TestSubmitZeroResultsIsSuccess(t *testing.T) {
	c := NewController(&stubSearcher{}, nil)
	c.Submit(context.Background(), "nothing matches")

	state := c.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.NotNil(t, state.Results)
	assert.True(t, state.Empty())
}

func TestSubmitError(t *testing.T) {
	c := NewController(&stubSearcher{err: errors.New("unexpected")}, nil)
	c.Submit(context.Background(), "Interstellar")

	state := c.State()
	assert.Equal(t, StatusError, state.Status)
	assert.Nil(t, state.Results)
}

func TestGoHome(t *testing.T) {
	tests := []struct {
		name     string
		searcher *stubSearcher
	}{
		{name: "from success", searcher: &stubSearcher{results: []models.Movie{{ID: "1"}}}},
		{name: "from error", searcher: &stubSearcher{err: errors.New("x")}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewController(tt.searcher, nil)
			c.Submit(context.Background(), "q")

			c.GoHome()
			first := c.State()
			assert.Equal(t, State{Status: StatusIdle}, first)

			c.GoHome()
			assert.Equal(t, first, c.State())
		})
	}
}

func TestGoHomeWhenIdleDoesNotNotify(t *testing.T) {
	changes := 0
	c := NewController(&stubSearcher{}, func(State) { changes++ })
	c.GoHome()
	c.GoHome()
	assert.Zero(t, changes)
}

func TestLatestSubmitWins(t *testing.T) {
	searcher := newGatedSearcher()
	c := NewController(searcher, nil)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Submit(context.Background(), "first")
	}()
	require.Equal(t, "first", <-searcher.started)

	wg.Add(1)
	go func() {
		defer wg.Done()
		c.Submit(context.Background(), "second")
	}()
	require.Equal(t, "second", <-searcher.started)

	// The superseded call sees its context cancelled
	select {
	case <-searcher.ctx("first").Done():
	case <-time.After(time.Second):
		t.Fatal("first search context was not cancelled")
	}

	searcher.gate("second") <- []models.Movie{{ID: "s"}}
	searcher.gate("first") <- []models.Movie{{ID: "f"}}
	wg.Wait()

	state := c.State()
	assert.Equal(t, StatusSuccess, state.Status)
	assert.Equal(t, "second", state.Query)
	require.Len(t, state.Results, 1)
	assert.Equal(t, "s", state.Results[0].ID)
}

func TestGoHomeDiscardsInFlightSearch(t *testing.T) {
	searcher := newGatedSearcher()
	c := NewController(searcher, nil)

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.Submit(context.Background(), "slow")
	}()
	<-searcher.started
	assert.Equal(t, StatusLoading, c.State().Status)

	c.GoHome()
	searcher.gate("slow") <- []models.Movie{{ID: "late"}}
	<-done

	assert.Equal(t, State{Status: StatusIdle}, c.State())
}
