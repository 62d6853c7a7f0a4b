// Package session holds each user's latest search results and pagination
// cursor in memory. State lives for process uptime only; a missing entry
// is a normal condition handled with a "run a new search" reply, not an
// internal error.
package session

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/soundpull/soundpull/core/logger"
	"github.com/soundpull/soundpull/internal/music"
	"github.com/soundpull/soundpull/internal/paging"
)

var (
	// ErrNotFound reports that a user has no live search session.
	ErrNotFound = errors.New("session: not found")
	// ErrInvalidPage reports a page cursor outside [0, pageCount).
	ErrInvalidPage = errors.New("session: invalid page")
)

// Session is one user's cached search: the original query, the ordered
// results as returned by the provider, and the current page cursor.
// Results are immutable after Put; their index order is the addressing
// scheme used by select buttons.
type Session struct {
	Owner       int64
	Query       string
	Results     []music.Track
	CurrentPage int
}

// Store is a concurrency-safe per-user session map. Operations on
// distinct keys never block each other beyond the map lock itself.
type Store struct {
	mu       sync.RWMutex
	pageSize int
	sessions map[int64]*Session
}

// NewStore creates an empty Store using the given page size for cursor
// validation.
func NewStore(pageSize int) *Store {
	if pageSize <= 0 {
		pageSize = paging.DefaultPageSize
	}
	return &Store{
		pageSize: pageSize,
		sessions: make(map[int64]*Session),
	}
}

// PageSize returns the page size the store validates cursors against.
func (s *Store) PageSize() int {
	return s.pageSize
}

// Put replaces any existing session for owner with a fresh one at page 0.
// The results slice is copied so later mutations by the caller cannot
// reach stored state.
func (s *Store) Put(owner int64, query string, results []music.Track) {
	tracks := make([]music.Track, len(results))
	copy(tracks, results)

	s.mu.Lock()
	s.sessions[owner] = &Session{
		Owner:       owner,
		Query:       query,
		Results:     tracks,
		CurrentPage: 0,
	}
	s.mu.Unlock()

	logger.SESS.Debug("session stored",
		slog.String("event", "put"),
		slog.Int64("user_id", owner),
		slog.Int("results", len(tracks)),
	)
}

// Get returns a snapshot of the owner's session or ErrNotFound.
func (s *Store) Get(owner int64) (Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[owner]
	if !ok {
		return Session{}, ErrNotFound
	}
	return *sess, nil
}

// Track resolves a stable address index into the owner's result list.
func (s *Store) Track(owner int64, addressIndex int) (music.Track, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, ok := s.sessions[owner]
	if !ok {
		return music.Track{}, ErrNotFound
	}
	if addressIndex < 0 || addressIndex >= len(sess.Results) {
		return music.Track{}, ErrInvalidPage
	}
	return sess.Results[addressIndex], nil
}

// SetPage moves the owner's cursor, failing with ErrInvalidPage when the
// target page is outside the session's page range.
func (s *Store) SetPage(owner int64, page int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.sessions[owner]
	if !ok {
		return ErrNotFound
	}
	if page < 0 || page >= paging.PageCount(len(sess.Results), s.pageSize) {
		return ErrInvalidPage
	}
	sess.CurrentPage = page
	return nil
}

// Clear removes the owner's session. Clearing an absent session is a no-op.
func (s *Store) Clear(owner int64) {
	s.mu.Lock()
	_, existed := s.sessions[owner]
	delete(s.sessions, owner)
	s.mu.Unlock()

	if existed {
		logger.SESS.Debug("session cleared",
			slog.String("event", "clear"),
			slog.Int64("user_id", owner),
		)
	}
}
