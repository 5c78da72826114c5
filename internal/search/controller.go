// Package search runs the free-text search session state machine.
//
//	Idle --Submit--> Loading --resolve--> Success
//	                 Loading --fail-----> Error
//	Success|Error|Loading --GoHome--> Idle
//
// A newer Submit or GoHome supersedes any call still in flight: its context
// is cancelled and whatever it returns is discarded (last writer wins).
package search

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/cineverse-labs/cineverse/internal/models"
)

// Status is the state of the search session
type Status string

const (
	StatusIdle    Status = "IDLE"
	StatusLoading Status = "LOADING"
	StatusSuccess Status = "SUCCESS"
	StatusError   Status = "ERROR"
)

// Searcher is the gateway operation the controller depends on
type Searcher interface {
	SearchByQuery(ctx context.Context, query string) ([]models.Movie, error)
}

// State is a read-only snapshot of the session
type State struct {
	Status Status `json:"status" yaml:"status"`
	Query  string `json:"query,omitempty" yaml:"query,omitempty"`
	Title  string `json:"title,omitempty" yaml:"title,omitempty"`

	// Results is only meaningful when Status is StatusSuccess
	Results []models.Movie `json:"results,omitempty" yaml:"results,omitempty"`
}

// Active reports whether the search view should replace the catalog view
func (s State) Active() bool {
	return s.Status != StatusIdle
}

// Empty reports a successful search that found nothing
func (s State) Empty() bool {
	return s.Status == StatusSuccess && len(s.Results) == 0
}

// ResultsTitle is the heading shown above search results
func ResultsTitle(query string) string {
	return fmt.Sprintf("Search Results for %q", query)
}

// Controller owns the single search session
type Controller struct {
	searcher Searcher
	onChange func(State)

	mu         sync.Mutex
	state      State
	generation uint64
	cancel     context.CancelFunc
}

// NewController returns an idle controller. onChange, when set, is called
// with every new state in the order the states were applied; it runs under
// the controller's lock and must not call back into the controller.
func NewController(searcher Searcher, onChange func(State)) *Controller {
	return &Controller{
		searcher: searcher,
		onChange: onChange,
		state:    State{Status: StatusIdle},
	}
}

// State returns the current session snapshot
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

func (c *Controller) snapshot() State {
	s := c.state
	s.Results = models.CloneMovies(s.Results)
	return s
}

// Submit starts a search and blocks until it resolves or is superseded.
// An empty or whitespace-only query is ignored and Submit returns false.
func (c *Controller) Submit(ctx context.Context, query string) bool {
	query = strings.TrimSpace(query)
	if query == "" {
		return false
	}

	c.mu.Lock()
	c.supersede()
	generation := c.generation
	callCtx, cancel := context.WithCancel(ctx)
	c.cancel = cancel
	c.state = State{Status: StatusLoading, Query: query, Title: ResultsTitle(query)}
	c.publish()
	c.mu.Unlock()

	slog.Info("Search submitted", "query", query)
	results, err := c.searcher.SearchByQuery(callCtx, query)
	cancel()

	c.mu.Lock()
	defer c.mu.Unlock()
	if generation != c.generation {
		slog.Debug("Discarding superseded search", "query", query)
		return true
	}
	c.cancel = nil

	if err != nil {
		slog.Error("Search failed", "query", query, "err", err)
		c.state = State{Status: StatusError, Query: query, Title: ResultsTitle(query)}
	} else {
		if results == nil {
			results = []models.Movie{}
		}
		c.state = State{
			Status:  StatusSuccess,
			Query:   query,
			Title:   ResultsTitle(query),
			Results: models.CloneMovies(results),
		}
		slog.Info("Search resolved", "query", query, "results", len(results))
	}
	c.publish()
	return true
}

// GoHome returns the session to Idle and drops any results. Calling it again
// leaves the state unchanged.
func (c *Controller) GoHome() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.supersede()
	if c.state.Status == StatusIdle {
		return
	}
	c.state = State{Status: StatusIdle}
	c.publish()
}

// supersede invalidates the in-flight call, if any. Callers hold mu.
func (c *Controller) supersede() {
	c.generation++
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// publish notifies the observer while mu is held, which keeps notifications
// in the same order as the state changes.
func (c *Controller) publish() {
	if c.onChange != nil {
		c.onChange(c.snapshot())
	}
}
