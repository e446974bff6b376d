package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Harshitk-cp/relgraph/internal/domain"
)

// userGraph is one user's adjacency structure: outgoing edges by subject key,
// kept in insertion order, plus an identity index for idempotent inserts.
type userGraph struct {
	outgoing map[string][]domain.Edge
	identity map[string]struct{}
	seq      int64
}

func newUserGraph() *userGraph {
	return &userGraph{
		outgoing: make(map[string][]domain.Edge),
		identity: make(map[string]struct{}),
	}
}

// MemoryStore keeps every user's graph in process memory. Graphs are created
// lazily on the first write and dropped only by Reset.
type MemoryStore struct {
	mu     sync.RWMutex
	graphs map[string]*userGraph
	closed bool
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{graphs: make(map[string]*userGraph)}
}

func (s *MemoryStore) AddEdges(ctx context.Context, userID string, edges []domain.Edge) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}
	if len(edges) == 0 {
		return 0, nil
	}

	g, ok := s.graphs[userID]
	if !ok {
		g = newUserGraph()
		s.graphs[userID] = g
	}

	added := 0
	for _, e := range edges {
		id := e.IdentityKey()
		if _, exists := g.identity[id]; exists {
			continue
		}
		g.seq++
		e.UserID = userID
		e.Seq = g.seq
		if e.CreatedAt.IsZero() {
			e.CreatedAt = time.Now().UTC()
		}
		g.identity[id] = struct{}{}
		g.outgoing[e.Subject.Key] = append(g.outgoing[e.Subject.Key], e)
		added++
	}
	return added, nil
}

func (s *MemoryStore) GetEdges(ctx context.Context, userID string, subjectKey string) ([]domain.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	g, ok := s.graphs[userID]
	if !ok {
		return nil, nil
	}
	out := make([]domain.Edge, len(g.outgoing[subjectKey]))
	copy(out, g.outgoing[subjectKey])
	return out, nil
}

func (s *MemoryStore) GetAllEdges(ctx context.Context, userID string) ([]domain.Edge, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	g, ok := s.graphs[userID]
	if !ok {
		return nil, nil
	}
	var out []domain.Edge
	for _, edges := range g.outgoing {
		out = append(out, edges...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Seq < out[j].Seq })
	return out, nil
}

func (s *MemoryStore) HasEdge(ctx context.Context, userID string, e domain.Edge) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false, ErrClosed
	}

	g, ok := s.graphs[userID]
	if !ok {
		return false, nil
	}
	_, exists := g.identity[e.IdentityKey()]
	return exists, nil
}

func (s *MemoryStore) Reset(ctx context.Context, userID string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return 0, ErrClosed
	}

	g, ok := s.graphs[userID]
	if !ok {
		return 0, nil
	}
	delete(s.graphs, userID)
	return len(g.identity), nil
}

func (s *MemoryStore) ListUserIDs(ctx context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return nil, ErrClosed
	}

	ids := make([]string, 0, len(s.graphs))
	for id := range s.graphs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (s *MemoryStore) Ping(ctx context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *MemoryStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}
