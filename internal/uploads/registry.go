// Package uploads keeps the movies a user added during the session. Nothing
// here leaves the process: media is held in a session blob store and the
// progress shown while "uploading" is driven by a timer, not by I/O.
package uploads

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/cineverse-labs/cineverse/internal/models"
	"github.com/cineverse-labs/cineverse/internal/storage"
)

const (
	IDPrefix = "upload"

	DefaultGenre    = "Action"
	DefaultLanguage = "Hindi"
	DefaultRating   = "Unrated"
	DefaultDirector = "Unknown"

	// DefaultTickInterval paces the simulated progress, 10% per tick
	DefaultTickInterval = 300 * time.Millisecond
	progressStep        = 10
)

var (
	// ErrMissingFields rejects a form without a title or description
	ErrMissingFields = errors.New("title and description are required")
	// ErrClosed is returned once the session has ended
	ErrClosed = errors.New("upload registry is closed")
)

// Media is a file picked by the user
type Media struct {
	Name    string
	Content io.Reader
}

// ProgressFunc receives the simulated percentage, 10 through 100
type ProgressFunc func(percent int)

// Registry holds the session's uploaded movies, newest first
type Registry struct {
	blobs *storage.BlobStore
	tick  time.Duration
	now   func() time.Time

	mu     sync.RWMutex
	movies []models.Movie
	refs   []string
	closed bool
}

// Option configures a Registry
type Option func(*Registry)

// WithTickInterval changes the simulated progress pace; zero means instant
func WithTickInterval(d time.Duration) Option {
	return func(r *Registry) {
		r.tick = d
	}
}

// WithClock replaces time.Now for IDs and the default year
func WithClock(now func() time.Time) Option {
	return func(r *Registry) {
		r.now = now
	}
}

// New returns an empty registry that stores media in blobs
func New(blobs *storage.BlobStore, opts ...Option) *Registry {
	r := &Registry{
		blobs:  blobs,
		tick:   DefaultTickInterval,
		now:    time.Now,
		movies: []models.Movie{},
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Submit validates the form, runs the simulated upload, and prepends the new
// movie. An invalid form returns ErrMissingFields and changes nothing.
func (r *Registry) Submit(ctx context.Context, form models.UploadForm, thumbnail, video *Media, progress ProgressFunc) (models.Movie, error) {
	if strings.TrimSpace(form.Title) == "" || strings.TrimSpace(form.Description) == "" {
		return models.Movie{}, ErrMissingFields
	}
	if r.isClosed() {
		return models.Movie{}, ErrClosed
	}

	if err := r.simulateProgress(ctx, progress); err != nil {
		return models.Movie{}, err
	}

	movie := r.buildMovie(form)

	var refs []string
	if thumbnail != nil {
		blob, err := r.blobs.Put(thumbnail.Name, thumbnail.Content)
		if err != nil {
			return models.Movie{}, fmt.Errorf("failed to keep thumbnail: %w", err)
		}
		if !blob.IsImage() {
			slog.Warn("Thumbnail does not look like an image", "name", blob.Name, "mime", blob.MIMEType)
		}
		movie.ImageURL = blob.URL
		refs = append(refs, blob.URL)
	}
	if video != nil {
		blob, err := r.blobs.Put(video.Name, video.Content)
		if err != nil {
			r.release(refs)
			return models.Movie{}, fmt.Errorf("failed to keep video: %w", err)
		}
		if !blob.IsVideo() {
			slog.Warn("Video does not look like a video", "name", blob.Name, "mime", blob.MIMEType)
		}
		movie.VideoURL = blob.URL
		refs = append(refs, blob.URL)
	}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		r.release(refs)
		return models.Movie{}, ErrClosed
	}
	next := make([]models.Movie, 0, len(r.movies)+1)
	next = append(next, movie)
	next = append(next, r.movies...)
	r.movies = next
	r.refs = append(r.refs, refs...)
	r.mu.Unlock()

	slog.Info("Movie uploaded", "id", movie.ID, "title", movie.Title, "media", len(refs))
	return movie, nil
}

func (r *Registry) simulateProgress(ctx context.Context, progress ProgressFunc) error {
	for pct := progressStep; pct <= 100; pct += progressStep {
		if r.tick > 0 {
			timer := time.NewTimer(r.tick)
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}
		if progress != nil {
			progress(pct)
		}
	}
	return nil
}

func (r *Registry) buildMovie(form models.UploadForm) models.Movie {
	now := r.now()
	return models.Movie{
		ID:          fmt.Sprintf("%s-%d", IDPrefix, now.UnixMilli()),
		Title:       strings.TrimSpace(form.Title),
		Year:        orDefault(form.Year, strconv.Itoa(now.Year())),
		Rating:      orDefault(form.Rating, DefaultRating),
		Genre:       orDefault(form.Genre, DefaultGenre),
		Description: strings.TrimSpace(form.Description),
		Language:    orDefault(form.Language, DefaultLanguage),
		Director:    orDefault(form.Director, DefaultDirector),
		Cast:        SplitCast(form.Cast),
	}
}

// SplitCast turns "A, B ,C" into [A B C]; blank input gives an empty list
func SplitCast(input string) []string {
	cast := []string{}
	if strings.TrimSpace(input) == "" {
		return cast
	}
	for _, name := range strings.Split(input, ",") {
		if name = strings.TrimSpace(name); name != "" {
			cast = append(cast, name)
		}
	}
	return cast
}

func orDefault(value, fallback string) string {
	if v := strings.TrimSpace(value); v != "" {
		return v
	}
	return fallback
}

// List returns the uploads, newest first
func (r *Registry) List() []models.Movie {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return models.CloneMovies(r.movies)
}

// Len is the number of uploads
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.movies)
}

// Close ends the session: every media reference is released and further
// submissions fail with ErrClosed.
func (r *Registry) Close() error {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil
	}
	r.closed = true
	refs := r.refs
	r.refs = nil
	r.movies = []models.Movie{}
	r.mu.Unlock()

	return r.release(refs)
}

func (r *Registry) release(refs []string) error {
	var errs []error
	for _, ref := range refs {
		if err := r.blobs.Delete(ref); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (r *Registry) isClosed() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closed
}
