package repositories

import (
	"context"
	"sync"

	"github.com/ezanim/backend/internal/models"
)

// NewMemoryVideoRequestStore returns a VideoRequestStore backed by an
// in-memory map. Suitable for tests and single-process deployments; updates
// are last-writer-wins.
func NewMemoryVideoRequestStore() *MemoryVideoRequestStore {
	return &MemoryVideoRequestStore{requests: make(map[string]models.VideoRequest)}
}

// MemoryVideoRequestStore implements VideoRequestStore with a mutex-guarded map.
type MemoryVideoRequestStore struct {
	mu       sync.RWMutex
	requests map[string]models.VideoRequest
}

// Create persists a new request record.
func (s *MemoryVideoRequestStore) Create(_ context.Context, request models.VideoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.ID]; ok {
		return ErrConflict
	}
	s.requests[request.ID] = request
	return nil
}

// Get retrieves a request by id.
func (s *MemoryVideoRequestStore) Get(_ context.Context, id string) (models.VideoRequest, error) {
	s.mu.RLock()
	request, ok := s.requests[id]
	s.mu.RUnlock()
	if !ok {
		return models.VideoRequest{}, ErrNotFound
	}
	return request, nil
}

// Update replaces an existing request record.
func (s *MemoryVideoRequestStore) Update(_ context.Context, request models.VideoRequest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.requests[request.ID]; !ok {
		return ErrNotFound
	}
	s.requests[request.ID] = request
	return nil
}

// NewMemoryVideoStore returns a VideoStore backed by an in-memory map keyed
// by the owning request id.
func NewMemoryVideoStore() *MemoryVideoStore {
	return &MemoryVideoStore{videos: make(map[string]models.Video)}
}

// MemoryVideoStore implements VideoStore with a mutex-guarded map.
type MemoryVideoStore struct {
	mu     sync.RWMutex
	videos map[string]models.Video
}

// Save upserts a video record for its owning request.
func (s *MemoryVideoStore) Save(_ context.Context, video models.Video) error {
	s.mu.Lock()
	s.videos[video.VideoRequestID] = video
	s.mu.Unlock()
	return nil
}

// FindByRequestID retrieves the video rendered for a request, if any.
func (s *MemoryVideoStore) FindByRequestID(_ context.Context, videoRequestID string) (models.Video, error) {
	s.mu.RLock()
	video, ok := s.videos[videoRequestID]
	s.mu.RUnlock()
	if !ok {
		return models.Video{}, ErrNotFound
	}
	return video, nil
}
