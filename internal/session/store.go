package session

import (
	"strings"
	"sync"
	"time"

	"github.com/rs/xid"

	"siteforge_server/internal/types"
)

const (
	// DefaultHistoryLimit bounds History when the caller passes limit <= 0.
	DefaultHistoryLimit = 10

	// previewLen is how much of the artifact markup goes into a saved
	// project's preview text.
	previewLen = 200
)

// Store is the per-user record of generated artifacts. It is the only
// process-wide mutable state in the service; the in-memory implementation
// below can be swapped for a persistent one without touching callers.
type Store interface {
	GetOrCreate(userID string) types.UserSession
	RecordProject(userID string, artifact types.Artifact, name string) (string, error)
	History(userID string, limit int) []types.SavedProject
}

// MemoryStore keeps sessions in a map guarded by a RWMutex. Keys are
// partitioned per user, so concurrent access to different users never
// conflicts; same-key writes are last-write-wins, acceptable for a
// convenience cache.
type MemoryStore struct {
	mu       sync.RWMutex
	sessions map[string]*types.UserSession
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions: make(map[string]*types.UserSession),
	}
}

// GetOrCreate returns the session for userID, creating it lazily on first
// reference. The returned value is a copy; callers cannot mutate store state.
func (s *MemoryStore) GetOrCreate(userID string) types.UserSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	return *s.getOrCreateLocked(userID)
}

func (s *MemoryStore) getOrCreateLocked(userID string) *types.UserSession {
	if sess, ok := s.sessions[userID]; ok {
		return sess
	}
	sess := &types.UserSession{
		UserID:    userID,
		CreatedAt: time.Now(),
		Projects:  []types.SavedProject{},
	}
	s.sessions[userID] = sess
	return sess
}

// RecordProject prepends a new saved project and trims the history to
// MaxSavedProjects, dropping the oldest entries.
func (s *MemoryStore) RecordProject(userID string, artifact types.Artifact, name string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", ErrMissingUserID
	}
	if name == "" {
		name = "Untitled project"
	}

	project := types.SavedProject{
		ID:        xid.New().String(),
		Name:      name,
		Preview:   preview(artifact.HTML),
		Timestamp: time.Now(),
		Artifact:  artifact,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	sess := s.getOrCreateLocked(userID)
	sess.Projects = append([]types.SavedProject{project}, sess.Projects...)
	if len(sess.Projects) > types.MaxSavedProjects {
		sess.Projects = sess.Projects[:types.MaxSavedProjects]
	}
	return project.ID, nil
}

// History returns up to limit saved projects, most recent first. An unknown
// or empty userID yields an empty slice rather than an error.
func (s *MemoryStore) History(userID string, limit int) []types.SavedProject {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	sess, ok := s.sessions[userID]
	if !ok {
		return []types.SavedProject{}
	}
	n := len(sess.Projects)
	if n > limit {
		n = limit
	}
	out := make([]types.SavedProject, n)
	copy(out, sess.Projects[:n])
	return out
}

func preview(markup string) string {
	if len(markup) <= previewLen {
		return markup
	}
	return markup[:previewLen] + "..."
}
