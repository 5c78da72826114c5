package models

import (
	"fmt"
	"unicode/utf16"
)

// Movie is the unit of content shown on cards and in the detail view
type Movie struct {
	ID          string   `json:"id" yaml:"id"`
	Title       string   `json:"title" yaml:"title"`
	Year        string   `json:"year" yaml:"year"`
	Rating      string   `json:"rating" yaml:"rating"`
	Genre       string   `json:"genre" yaml:"genre"`
	Description string   `json:"description" yaml:"description"`
	Language    string   `json:"language" yaml:"language"`
	Director    string   `json:"director" yaml:"director"`
	Cast        []string `json:"cast" yaml:"cast"`
	ImageURL    string   `json:"imageUrl,omitempty" yaml:"imageUrl,omitempty"`
	VideoURL    string   `json:"videoUrl,omitempty" yaml:"videoUrl,omitempty"`
}

// Artwork sizes used by the card grid and the detail view
const (
	CardWidth    = 300
	CardHeight   = 450
	DetailWidth  = 800
	DetailHeight = 600
)

// PosterURL returns the uploaded thumbnail when there is one, otherwise a
// placeholder image seeded from the title so the same movie always gets the
// same picture.
func (m Movie) PosterURL(width, height int) string {
	if m.ImageURL != "" {
		return m.ImageURL
	}
	seed := 0
	for _, unit := range utf16.Encode([]rune(m.Title)) {
		seed += int(unit)
	}
	return fmt.Sprintf("https://picsum.photos/seed/%d/%d/%d", seed, width, height)
}

// Playable reports whether the movie carries its own video
func (m Movie) Playable() bool {
	return m.VideoURL != ""
}

// Section is a named row of movies on the catalog view
type Section struct {
	Title   string  `json:"title" yaml:"title"`
	Query   string  `json:"query" yaml:"query"`
	Movies  []Movie `json:"movies" yaml:"movies"`
	Loading bool    `json:"loading" yaml:"loading"`
}

// Clone returns a copy that shares no slices with s
func (s Section) Clone() Section {
	s.Movies = CloneMovies(s.Movies)
	return s
}

// CloneMovies copies a movie slice, including each cast list
func CloneMovies(movies []Movie) []Movie {
	if movies == nil {
		return nil
	}
	out := make([]Movie, len(movies))
	for i, m := range movies {
		if m.Cast != nil {
			m.Cast = append([]string(nil), m.Cast...)
		}
		out[i] = m
	}
	return out
}

// UploadForm holds the fields a user fills in when adding a movie
type UploadForm struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Year        string `json:"year"`
	Genre       string `json:"genre"`
	Director    string `json:"director"`
	Cast        string `json:"cast"` // comma separated
	Language    string `json:"language"`
	Rating      string `json:"rating"`
}
