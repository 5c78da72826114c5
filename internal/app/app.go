// Package app owns the session state. The loader, search controller and
// upload registry are the only writers; every change is published as a new
// immutable View that presenters read without locking.
package app

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/cineverse-labs/cineverse/internal/catalog"
	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/cineverse-labs/cineverse/internal/search"
	"github.com/cineverse-labs/cineverse/internal/uploads"
)

// Gateway is what the session needs from the content provider gateway
type Gateway interface {
	catalog.Fetcher
	search.Searcher
}

// Presenter renders views and receives view-level side effects
type Presenter interface {
	Render(view View)
	ScrollToTop()
}

// View is a read-only snapshot of everything the presentation layer shows.
// A new View replaces the old one on every change; never mutate one.
type View struct {
	Sections   []models.Section `json:"sections" yaml:"sections"`
	Uploads    []models.Movie   `json:"uploads" yaml:"uploads"`
	Searching  bool             `json:"searching" yaml:"searching"`
	Search     search.State     `json:"search" yaml:"search"`
	Selected   *models.Movie    `json:"selected,omitempty" yaml:"selected,omitempty"`
	UploadOpen bool             `json:"upload_open" yaml:"upload_open"`
}

// App coordinates one browsing session
type App struct {
	loader    *catalog.Loader
	search    *search.Controller
	uploads   *uploads.Registry
	presenter Presenter

	mu          sync.Mutex
	searchState search.State
	selected    *models.Movie
	uploadOpen  bool

	view atomic.Pointer[View]
}

// New wires a session. presenter may be nil.
func New(gateway Gateway, defs []catalog.Definition, registry *uploads.Registry, presenter Presenter) *App {
	a := &App{
		uploads:     registry,
		presenter:   presenter,
		searchState: search.State{Status: search.StatusIdle},
	}
	a.loader = catalog.NewLoader(gateway, defs, func(int, models.Section) {
		a.publish(nil)
	})
	a.search = search.NewController(gateway, func(state search.State) {
		a.publish(func() { a.searchState = state })
	})

	initial := a.buildView()
	a.view.Store(&initial)
	return a
}

// View returns the latest published snapshot
func (a *App) View() View {
	return *a.view.Load()
}

// LoadCatalog fills the catalog sections in order. It blocks until every
// section is loaded and does nothing after the first call.
func (a *App) LoadCatalog(ctx context.Context) bool {
	return a.loader.Run(ctx)
}

// CatalogDone is closed when catalog loading has finished
func (a *App) CatalogDone() <-chan struct{} {
	return a.loader.Done()
}

// SubmitSearch runs a search session; blank queries are ignored
func (a *App) SubmitSearch(ctx context.Context, query string) bool {
	return a.search.Submit(ctx, query)
}

// GoHome leaves search and returns to the top of the catalog
func (a *App) GoHome() {
	a.search.GoHome()
	if a.presenter != nil {
		a.presenter.ScrollToTop()
	}
}

// OpenUpload shows the upload dialog
func (a *App) OpenUpload() {
	a.publish(func() { a.uploadOpen = true })
}

// CloseUpload hides the upload dialog
func (a *App) CloseUpload() {
	a.publish(func() { a.uploadOpen = false })
}

// SubmitUpload adds a user movie. On success the dialog closes and the new
// movie is opened in the detail view. A form missing its title or
// description leaves everything as it was.
func (a *App) SubmitUpload(ctx context.Context, form models.UploadForm, thumbnail, video *uploads.Media, progress uploads.ProgressFunc) (models.Movie, error) {
	movie, err := a.uploads.Submit(ctx, form, thumbnail, video, progress)
	if err != nil {
		if !errors.Is(err, uploads.ErrMissingFields) {
			slog.Error("Upload failed", "title", form.Title, "err", err)
		}
		return models.Movie{}, err
	}

	selected := movie
	a.publish(func() {
		a.uploadOpen = false
		a.selected = &selected
	})
	return movie, nil
}

// Select opens a movie in the detail view; nil closes it
func (a *App) Select(movie *models.Movie) {
	var selected *models.Movie
	if movie != nil {
		m := models.CloneMovies([]models.Movie{*movie})[0]
		selected = &m
	}
	a.publish(func() { a.selected = selected })
}

// SelectByID opens the movie with the given ID from anywhere in the view
func (a *App) SelectByID(id string) bool {
	movie, ok := a.View().Find(id)
	if !ok {
		return false
	}
	a.Select(&movie)
	return true
}

// Close ends the session and releases uploaded media
func (a *App) Close() error {
	return a.uploads.Close()
}

// publish applies mutate and swaps in a freshly built view. Holding mu for
// the whole step keeps renders in the same order as the changes.
func (a *App) publish(mutate func()) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if mutate != nil {
		mutate()
	}
	view := a.buildView()
	a.view.Store(&view)
	if a.presenter != nil {
		a.presenter.Render(view)
	}
}

func (a *App) buildView() View {
	view := View{
		Sections:   a.loader.Sections(),
		Uploads:    a.uploads.List(),
		Searching:  a.searchState.Active(),
		Search:     a.searchState,
		UploadOpen: a.uploadOpen,
	}
	if a.selected != nil {
		m := *a.selected
		view.Selected = &m
	}
	return view
}

// Find looks a movie up across uploads, search results and sections
func (v View) Find(id string) (models.Movie, bool) {
	for _, m := range v.Uploads {
		if m.ID == id {
			return m, true
		}
	}
	if v.Search.Status == search.StatusSuccess {
		for _, m := range v.Search.Results {
			if m.ID == id {
				return m, true
			}
		}
	}
	for _, s := range v.Sections {
		for _, m := range s.Movies {
			if m.ID == id {
				return m, true
			}
		}
	}
	return models.Movie{}, false
}
