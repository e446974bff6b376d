package service

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/relgraph/internal/canon"
	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/relation"
	"go.uber.org/zap"
)

// GraphWriter turns raw triples into edges and writes them. It does not lock;
// callers serialize writes per user.
type GraphWriter struct {
	store  domain.EdgeStore
	canon  *canon.Canonicalizer
	norm   *relation.Normalizer
	logger *zap.Logger
}

func NewGraphWriter(store domain.EdgeStore, c *canon.Canonicalizer, n *relation.Normalizer, logger *zap.Logger) *GraphWriter {
	return &GraphWriter{
		store:  store,
		canon:  c,
		norm:   n,
		logger: logger,
	}
}

// BuildEdge canonicalizes both entities and normalizes the relation of t. It
// returns ErrInvalidEdge when an entity or the relation is empty afterwards, or
// when both entities are the same.
func (w *GraphWriter) BuildEdge(userID string, t domain.Triple) (domain.Edge, error) {
	subject := w.canon.Canonicalize(userID, t.Entity1)
	object := w.canon.Canonicalize(userID, t.Entity2)
	rel, category := w.norm.NormalizeWithHint(t.Relation, t.Type)

	switch {
	case subject.Key == "":
		return domain.Edge{}, fmt.Errorf("%w: empty subject", domain.ErrInvalidEdge)
	case object.Key == "":
		return domain.Edge{}, fmt.Errorf("%w: empty object", domain.ErrInvalidEdge)
	case rel.Empty():
		return domain.Edge{}, fmt.Errorf("%w: empty relation", domain.ErrInvalidEdge)
	case subject.Key == object.Key:
		return domain.Edge{}, fmt.Errorf("%w: %q relates to itself", domain.ErrInvalidEdge, subject.Key)
	}

	return domain.Edge{
		UserID:   userID,
		Subject:  subject,
		Relation: rel,
		Category: category,
		Object:   object,
	}, nil
}

// InverseEdge returns (object, inverse(relation), subject) for edges whose
// category is stored reciprocally. The inverse keeps the forward category, so
// a generic relation hinted as family gets a self-inverse family edge.
func InverseEdge(e domain.Edge) (domain.Edge, bool) {
	if !domain.ReciprocalCategories[e.Category] {
		return domain.Edge{}, false
	}
	return domain.Edge{
		UserID:   e.UserID,
		Subject:  e.Object,
		Relation: relation.Inverse(e.Relation),
		Category: e.Category,
		Object:   e.Subject,
		Inverse:  true,
	}, true
}

// WithInverses appends to each forward edge its inverse when one is due.
func WithInverses(forward []domain.Edge) []domain.Edge {
	out := make([]domain.Edge, 0, 2*len(forward))
	for _, e := range forward {
		out = append(out, e)
		if inv, ok := InverseEdge(e); ok {
			out = append(out, inv)
		}
	}
	return out
}

// CheckReciprocal verifies that every reciprocal edge of a batch travels with
// its inverse. A failure means the write path is broken, not the input.
func CheckReciprocal(batch []domain.Edge) error {
	ids := make(map[string]struct{}, len(batch))
	for _, e := range batch {
		ids[e.IdentityKey()] = struct{}{}
	}
	for _, e := range batch {
		inv, ok := InverseEdge(e)
		if !ok {
			continue
		}
		if _, found := ids[inv.IdentityKey()]; !found {
			return fmt.Errorf("%w: %s %s %s has no inverse %s", domain.ErrGraphCorruption,
				e.Subject.Key, e.Relation, e.Object.Key, inv.Relation)
		}
	}
	return nil
}

// Write checks batch and stores it atomically. Nothing is written when the
// check fails.
func (w *GraphWriter) Write(ctx context.Context, userID string, batch []domain.Edge) (int, error) {
	if len(batch) == 0 {
		return 0, nil
	}
	if err := CheckReciprocal(batch); err != nil {
		w.logger.Error("rejecting batch", zap.String("user_id", userID), zap.Error(err))
		return 0, err
	}
	n, err := w.store.AddEdges(ctx, userID, batch)
	if err != nil {
		return 0, fmt.Errorf("store edges: %w", err)
	}
	return n, nil
}

// AddEdge builds, expands and writes a single fact.
func (w *GraphWriter) AddEdge(ctx context.Context, userID, subject, rel, object string) (int, error) {
	e, err := w.BuildEdge(userID, domain.Triple{Entity1: subject, Relation: rel, Entity2: object})
	if err != nil {
		return 0, err
	}
	return w.Write(ctx, userID, WithInverses([]domain.Edge{e}))
}
