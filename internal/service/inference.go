package service

import (
	"context"
	"fmt"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/relation"
	"go.uber.org/zap"
)

const (
	DefaultMaxHops = 3
	maxHopsCeiling = 3
)

// ClampHops keeps a configured hop bound inside 1..3. Longer compositions are
// not attempted.
func ClampHops(n int) int {
	switch {
	case n <= 0:
		return DefaultMaxHops
	case n > maxHopsCeiling:
		return maxHopsCeiling
	}
	return n
}

// InferenceEngine answers "what is B to A" by composing the relations along a
// shortest path from A to B.
type InferenceEngine struct {
	store   domain.EdgeStore
	maxHops int
	logger  *zap.Logger
}

func NewInferenceEngine(store domain.EdgeStore, maxHops int, logger *zap.Logger) *InferenceEngine {
	return &InferenceEngine{
		store:   store,
		maxHops: ClampHops(maxHops),
		logger:  logger,
	}
}

func (e *InferenceEngine) MaxHops() int {
	return e.maxHops
}

type visit struct {
	key   string
	depth int
}

// Infer runs a breadth-first search from a over outgoing edges. Every node is
// visited once and neighbours are expanded in insertion order, so among
// equally short paths the first one discovered wins. Each traversed edge
// (cur, r, next) contributes the step "next is the inverse(r) of cur".
func (e *InferenceEngine) Infer(ctx context.Context, userID string, a, b domain.Entity) (domain.InferenceResult, error) {
	if a.Key == "" || b.Key == "" || a.Key == b.Key {
		return domain.NotFound(), nil
	}

	parent := make(map[string]domain.Edge)
	visited := map[string]bool{a.Key: true}
	queue := []visit{{key: a.Key}}

	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		if cur.depth >= e.maxHops {
			continue
		}

		edges, err := e.store.GetEdges(ctx, userID, cur.key)
		if err != nil {
			return domain.NotFound(), fmt.Errorf("load edges of %q: %w", cur.key, err)
		}
		for _, edge := range edges {
			next := edge.Object.Key
			if visited[next] {
				continue
			}
			visited[next] = true
			parent[next] = edge
			if next == b.Key {
				return e.compose(ctx, userID, a.Key, b.Key, parent)
			}
			queue = append(queue, visit{key: next, depth: cur.depth + 1})
		}
	}
	return domain.NotFound(), nil
}

func (e *InferenceEngine) compose(ctx context.Context, userID, from, to string, parent map[string]domain.Edge) (domain.InferenceResult, error) {
	var path []domain.Edge
	for k := to; k != from; {
		edge := parent[k]
		path = append(path, edge)
		k = edge.Subject.Key
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}

	steps := make([]domain.Relation, len(path))
	explained := make([]domain.PathStep, len(path))
	for i, edge := range path {
		steps[i] = relation.Inverse(edge.Relation)
		explained[i] = domain.PathStep{From: edge.Subject, Relation: steps[i], To: edge.Object}
	}

	derived, composed := relation.Compose(steps)
	if !composed {
		e.logger.Debug("no composition rule for path",
			zap.String("user_id", userID),
			zap.Int("hops", len(steps)),
			zap.String("fallback", derived.Name))
	}

	gender, err := e.genderOf(ctx, userID, to)
	if err != nil {
		return domain.NotFound(), err
	}
	if len(steps) == 1 && gender == domain.GenderUnknown {
		gender = steps[0].Gender
	}

	return domain.InferenceResult{
		Found:      true,
		Kind:       derived.Kind,
		Label:      relation.Label(derived, gender),
		PathLength: len(steps),
		Path:       explained,
	}, nil
}

// genderOf reads an entity's gender off its first gendered outgoing edge.
func (e *InferenceEngine) genderOf(ctx context.Context, userID, key string) (domain.Gender, error) {
	edges, err := e.store.GetEdges(ctx, userID, key)
	if err != nil {
		return domain.GenderUnknown, fmt.Errorf("load edges of %q: %w", key, err)
	}
	for _, edge := range edges {
		if edge.Relation.Gender != domain.GenderUnknown {
			return edge.Relation.Gender, nil
		}
	}
	return domain.GenderUnknown, nil
}
