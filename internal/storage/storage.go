// Package storage keeps uploaded media in memory for the life of a session
// and hands out blob: references to it.
package storage

import (
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
	"github.com/spf13/afero"
)

// URLPrefix starts every reference handed out by the store
const URLPrefix = "blob:cineverse/"

const blobDir = "/blobs"

// ErrBlobNotFound is returned for references the store does not hold
var ErrBlobNotFound = errors.New("blob not found")

// Blob describes one stored file
type Blob struct {
	URL      string `json:"url"`
	Name     string `json:"name"`
	MIMEType string `json:"mime_type"`
	Size     int64  `json:"size"`
}

// IsImage reports whether the sniffed content is an image
func (b Blob) IsImage() bool {
	return strings.HasPrefix(b.MIMEType, "image/")
}

// IsVideo reports whether the sniffed content is a video
func (b Blob) IsVideo() bool {
	return strings.HasPrefix(b.MIMEType, "video/")
}

// BlobStore maps blob references to media held on an afero filesystem
type BlobStore struct {
	fs    afero.Fs
	blobs map[string]Blob
	mu    sync.RWMutex
}

// New returns a store backed by memory only
func New() *BlobStore {
	return NewWithFs(afero.NewMemMapFs())
}

// NewWithFs returns a store backed by fs
func NewWithFs(fs afero.Fs) *BlobStore {
	return &BlobStore{
		fs:    fs,
		blobs: make(map[string]Blob),
	}
}

// Put stores the content of r and returns its reference
func (s *BlobStore) Put(name string, r io.Reader) (Blob, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Blob{}, fmt.Errorf("failed to read %s: %w", name, err)
	}

	id := uuid.NewString()
	if err := s.fs.MkdirAll(blobDir, 0755); err != nil {
		return Blob{}, fmt.Errorf("failed to create blob directory: %w", err)
	}
	if err := afero.WriteFile(s.fs, path.Join(blobDir, id), data, 0644); err != nil {
		return Blob{}, fmt.Errorf("failed to store %s: %w", name, err)
	}

	blob := Blob{
		URL:      URLPrefix + id,
		Name:     name,
		MIMEType: mimetype.Detect(data).String(),
		Size:     int64(len(data)),
	}

	s.mu.Lock()
	s.blobs[blob.URL] = blob
	s.mu.Unlock()

	return blob, nil
}

// Get returns the metadata and content behind a reference
func (s *BlobStore) Get(url string) (Blob, []byte, error) {
	s.mu.RLock()
	blob, exists := s.blobs[url]
	s.mu.RUnlock()
	if !exists {
		return Blob{}, nil, fmt.Errorf("%w: %s", ErrBlobNotFound, url)
	}

	data, err := afero.ReadFile(s.fs, s.pathFor(url))
	if err != nil {
		return Blob{}, nil, fmt.Errorf("failed to read blob %s: %w", url, err)
	}
	return blob, data, nil
}

// GetAll returns every live blob keyed by reference
func (s *BlobStore) GetAll() map[string]Blob {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make(map[string]Blob, len(s.blobs))
	for k, v := range s.blobs {
		result[k] = v
	}
	return result
}

// Delete releases a reference and frees its content
func (s *BlobStore) Delete(url string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.blobs[url]; !exists {
		return fmt.Errorf("%w: %s", ErrBlobNotFound, url)
	}
	delete(s.blobs, url)
	if err := s.fs.Remove(s.pathFor(url)); err != nil {
		return fmt.Errorf("failed to remove blob %s: %w", url, err)
	}
	return nil
}

// Len is the number of live references
func (s *BlobStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}

func (s *BlobStore) pathFor(url string) string {
	return path.Join(blobDir, strings.TrimPrefix(url, URLPrefix))
}
