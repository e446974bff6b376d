package domain

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidEdge is returned for a triple that is empty after canonicalization
	// or that relates an entity to itself.
	ErrInvalidEdge = errors.New("invalid edge")

	// ErrGraphCorruption is returned when a write would leave a family or social
	// edge without its inverse. The write is rejected as a whole.
	ErrGraphCorruption = errors.New("graph corruption")
)

// SelfKey is the canonical key of the conversation owner.
const SelfKey = "@self"

// Entity is a person, place or thing inside one user's graph. Two entities are
// equal iff their keys match; Name keeps the mention as first written.
type Entity struct {
	Key  string `json:"key"`
	Name string `json:"name"`
}

func (e Entity) IsSelf() bool {
	return e.Key == SelfKey
}

// Triple is a raw fact handed over by the extraction adapter.
type Triple struct {
	Entity1  string `json:"entity1"`
	Relation string `json:"relation"`
	Entity2  string `json:"entity2"`
	Type     string `json:"type,omitempty"`
}

type Edge struct {
	UserID   string   `json:"user_id"`
	Subject  Entity   `json:"subject"`
	Relation Relation `json:"relation"`
	Category Category `json:"category"`
	Object   Entity   `json:"object"`
	// Inverse marks an edge written as the reciprocal of an asserted one.
	Inverse bool `json:"inverse,omitempty"`
	// Seq orders a user's edges by insertion. Assigned by the store.
	Seq       int64     `json:"seq"`
	CreatedAt time.Time `json:"created_at"`
}

// IdentityKey is what makes two edges the same edge within one user's graph.
func (e Edge) IdentityKey() string {
	return e.Subject.Key + "\x00" + e.Relation.Key() + "\x00" + e.Object.Key
}

// PathStep is one hop of an inference path: To is the Relation of From.
type PathStep struct {
	From     Entity   `json:"from"`
	Relation Relation `json:"relation"`
	To       Entity   `json:"to"`
}

// InferenceResult is either Found, carrying the derived label, or not found.
// Path is exposed for debugging and is not part of the query contract.
type InferenceResult struct {
	Found      bool         `json:"found"`
	Kind       RelationKind `json:"kind,omitempty"`
	Label      string       `json:"relation,omitempty"`
	PathLength int          `json:"path_length,omitempty"`
	Path       []PathStep   `json:"path,omitempty"`
}

func NotFound() InferenceResult {
	return InferenceResult{}
}

type Rejection struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

type IngestResult struct {
	Stored     int         `json:"stored"`
	Rejected   int         `json:"rejected"`
	Rejections []Rejection `json:"rejections,omitempty"`
}

// Violation describes a reciprocal edge whose inverse is missing from the store.
type Violation struct {
	Edge    Edge `json:"edge"`
	Missing Edge `json:"missing"`
}

// EdgeStore persists directed labeled edges per user. Implementations must make
// AddEdges atomic and idempotent on Edge.IdentityKey, and must return edges in
// insertion (Seq) order.
type EdgeStore interface {
	AddEdges(ctx context.Context, userID string, edges []Edge) (int, error)
	GetEdges(ctx context.Context, userID string, subjectKey string) ([]Edge, error)
	GetAllEdges(ctx context.Context, userID string) ([]Edge, error)
	HasEdge(ctx context.Context, userID string, e Edge) (bool, error)
	Reset(ctx context.Context, userID string) (int, error)
	ListUserIDs(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
	Close() error
}
