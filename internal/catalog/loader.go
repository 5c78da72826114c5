package catalog

import (
	"context"
	"log/slog"
	"sync"

	"github.com/cineverse-labs/cineverse/internal/models"
)

// Fetcher is the gateway operation the loader depends on
type Fetcher interface {
	FetchByCategory(ctx context.Context, category string) []models.Movie
}

// Phase is the loader's position in its one-shot pipeline
type Phase int

const (
	// PhasePending means Run has not been called
	PhasePending Phase = iota
	// PhaseLoading means sections are being fetched
	PhaseLoading
	// PhaseDone means every section has been committed
	PhaseDone
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseLoading:
		return "loading"
	case PhaseDone:
		return "done"
	default:
		return "unknown"
	}
}

// CommitFunc observes a section right after its movies were applied
type CommitFunc func(index int, section models.Section)

// Loader fills catalog sections one at a time, in order. Section i+1 is not
// requested until section i has been committed, and a commit sets the movies
// and clears the loading flag in a single state replacement.
type Loader struct {
	fetcher  Fetcher
	onCommit CommitFunc

	mu       sync.RWMutex
	sections []models.Section
	phase    Phase
	next     int

	once sync.Once
	done chan struct{}
}

// NewLoader returns a loader for defs with every section empty and loading
func NewLoader(fetcher Fetcher, defs []Definition, onCommit CommitFunc) *Loader {
	return &Loader{
		fetcher:  fetcher,
		onCommit: onCommit,
		sections: NewSections(defs),
		done:     make(chan struct{}),
	}
}

// Run loads every section. Only the first call does any work; later calls
// return false immediately. If ctx is cancelled the loop stops before the
// next request and the remaining sections stay loading.
func (l *Loader) Run(ctx context.Context) bool {
	ran := false
	l.once.Do(func() {
		ran = true
		l.run(ctx)
	})
	return ran
}

func (l *Loader) run(ctx context.Context) {
	defer close(l.done)

	l.mu.Lock()
	l.phase = PhaseLoading
	total := len(l.sections)
	l.mu.Unlock()

	slog.Info("Loading catalog", "sections", total)
	for i := 0; i < total; i++ {
		if err := ctx.Err(); err != nil {
			slog.Warn("Catalog loading stopped", "loaded", i, "sections", total, "err", err)
			return
		}

		query := l.sectionQuery(i)
		movies := l.fetcher.FetchByCategory(ctx, query)
		if movies == nil {
			movies = []models.Movie{}
		}
		section := l.commit(i, movies)
		slog.Info("Section loaded", "section", section.Title, "movies", len(section.Movies))

		if l.onCommit != nil {
			l.onCommit(i, section.Clone())
		}
	}

	l.mu.Lock()
	l.phase = PhaseDone
	l.mu.Unlock()
}

func (l *Loader) sectionQuery(i int) string {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.sections[i].Query
}

// commit replaces the sections slice rather than mutating it, so snapshots
// already handed out never change underneath their readers.
func (l *Loader) commit(i int, movies []models.Movie) models.Section {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]models.Section, len(l.sections))
	copy(next, l.sections)
	next[i] = models.Section{
		Title:   l.sections[i].Title,
		Query:   l.sections[i].Query,
		Movies:  models.CloneMovies(movies),
		Loading: false,
	}
	l.sections = next
	l.next = i + 1
	return next[i]
}

// Sections returns a snapshot of every section in catalog order
func (l *Loader) Sections() []models.Section {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]models.Section, len(l.sections))
	for i, s := range l.sections {
		out[i] = s.Clone()
	}
	return out
}

// Phase reports where the pipeline is and how many sections are committed
func (l *Loader) Phase() (Phase, int) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.phase, l.next
}

// Done is closed once Run has returned
func (l *Loader) Done() <-chan struct{} {
	return l.done
}
