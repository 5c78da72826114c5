// Package catalog defines the fixed row layout of the home view and loads it
// section by section.
package catalog

import (
	"fmt"
	"os"

	"github.com/cineverse-labs/cineverse/internal/models"
	"gopkg.in/yaml.v3"
)

// Definition names a section and the category sent to the gateway for it
type Definition struct {
	Title string `yaml:"title"`
	Query string `yaml:"query"`
}

// File is the on-disk layout of a catalog override
type File struct {
	Sections []Definition `yaml:"sections"`
}

// Default returns the built-in catalog in display order
func Default() []Definition {
	return []Definition{
		{Title: "Latest Trending Movies", Query: "Latest Movies 2024"},
		{Title: "Bollywood Hits", Query: "Bollywood"},
		{Title: "Hollywood Hindi Dubbed", Query: "Hollywood Hindi Dubbed"},
		{Title: "South Indian Blockbusters", Query: "South Movies"},
		{Title: "Kids & Cartoons", Query: "Kids Cartoon"},
	}
}

// LoadFile reads a catalog override from a YAML file
func LoadFile(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a YAML catalog
func Parse(data []byte) ([]Definition, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if len(f.Sections) == 0 {
		return nil, fmt.Errorf("catalog has no sections")
	}
	for i, d := range f.Sections {
		if d.Title == "" || d.Query == "" {
			return nil, fmt.Errorf("catalog section %d needs both title and query", i)
		}
	}
	return f.Sections, nil
}

// Marshal renders definitions in the same YAML layout Parse accepts
func Marshal(defs []Definition) ([]byte, error) {
	return yaml.Marshal(File{Sections: defs})
}

// NewSections builds the initial state: every section empty and loading
func NewSections(defs []Definition) []models.Section {
	sections := make([]models.Section, len(defs))
	for i, d := range defs {
		sections[i] = models.Section{
			Title:   d.Title,
			Query:   d.Query,
			Movies:  []models.Movie{},
			Loading: true,
		}
	}
	return sections
}
