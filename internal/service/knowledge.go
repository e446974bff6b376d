package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"unicode"

	"github.com/Harshitk-cp/relgraph/internal/canon"
	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/relation"
	"go.uber.org/zap"
)

var (
	ErrUserRequired  = errors.New("user id is required")
	ErrInvalidUserID = errors.New("user id contains control characters")
)

type Options struct {
	MaxHops        int
	FoldDiacritics bool
	// Vocabulary overrides the built-in keyword tables when set.
	Vocabulary *relation.Vocabulary
}

// CategoryGroup is one section of a grouped relationship listing.
type CategoryGroup struct {
	Category domain.Category `json:"category"`
	Edges    []domain.Edge   `json:"edges"`
}

type Stats struct {
	IngestBatches   int64 `json:"ingest_batches"`
	EdgesStored     int64 `json:"edges_stored"`
	TriplesRejected int64 `json:"triples_rejected"`
	Queries         int64 `json:"queries"`
	QueriesFound    int64 `json:"queries_found"`
	Resets          int64 `json:"resets"`

	// LastAuditViolations is the total found by the most recent full audit pass.
	LastAuditViolations int64 `json:"last_audit_violations"`
}

// KnowledgeService is the entry point for ingest and relationship queries. Each
// user's graph is guarded by its own lock: an ingest batch holds it exclusively,
// reads share it.
type KnowledgeService struct {
	store  domain.EdgeStore
	canon  *canon.Canonicalizer
	writer *GraphWriter
	engine *InferenceEngine
	locks  *userLocks
	logger *zap.Logger

	ingestBatches       atomic.Int64
	edgesStored         atomic.Int64
	triplesRejected     atomic.Int64
	queries             atomic.Int64
	queriesFound        atomic.Int64
	resets              atomic.Int64
	lastAuditViolations atomic.Int64
}

func NewKnowledgeService(store domain.EdgeStore, opts Options, logger *zap.Logger) *KnowledgeService {
	c := canon.New(opts.FoldDiacritics)
	n := relation.NewNormalizer(opts.Vocabulary)
	return &KnowledgeService{
		store:  store,
		canon:  c,
		writer: NewGraphWriter(store, c, n, logger.Named("writer")),
		engine: NewInferenceEngine(store, opts.MaxHops, logger.Named("inference")),
		locks:  newUserLocks(),
		logger: logger,
	}
}

func checkUser(userID string) error {
	if strings.TrimSpace(userID) == "" {
		return ErrUserRequired
	}
	if strings.IndexFunc(userID, unicode.IsControl) >= 0 {
		return ErrInvalidUserID
	}
	return nil
}

// Ingest stores a batch of triples as one atomic write. Malformed triples are
// dropped and reported; they never fail the batch.
func (s *KnowledgeService) Ingest(ctx context.Context, userID string, triples []domain.Triple) (domain.IngestResult, error) {
	if err := checkUser(userID); err != nil {
		return domain.IngestResult{}, err
	}

	defer s.locks.lock(userID)()

	var (
		result  domain.IngestResult
		forward []domain.Edge
	)
	for i, t := range triples {
		e, err := s.writer.BuildEdge(userID, t)
		if err != nil {
			result.Rejections = append(result.Rejections, domain.Rejection{Index: i, Reason: err.Error()})
			continue
		}
		forward = append(forward, e)
	}
	result.Rejected = len(result.Rejections)

	stored, err := s.writer.Write(ctx, userID, WithInverses(forward))
	if err != nil {
		return domain.IngestResult{}, err
	}
	result.Stored = stored

	s.ingestBatches.Add(1)
	s.edgesStored.Add(int64(stored))
	s.triplesRejected.Add(int64(result.Rejected))

	s.logger.Info("ingested triples",
		zap.String("user_id", userID),
		zap.Int("triples", len(triples)),
		zap.Int("stored", result.Stored),
		zap.Int("rejected", result.Rejected))
	return result, nil
}

// AddEdge writes a single fact. Unlike Ingest it returns ErrInvalidEdge for a
// malformed triple.
func (s *KnowledgeService) AddEdge(ctx context.Context, userID, subject, rel, object string) (int, error) {
	if err := checkUser(userID); err != nil {
		return 0, err
	}
	defer s.locks.lock(userID)()

	n, err := s.writer.AddEdge(ctx, userID, subject, rel, object)
	if err != nil {
		return 0, err
	}
	s.edgesStored.Add(int64(n))
	return n, nil
}

// Query derives what entityB is to entityA. No answer is a NotFound result,
// not an error.
func (s *KnowledgeService) Query(ctx context.Context, userID, entityA, entityB string) (domain.InferenceResult, error) {
	if err := checkUser(userID); err != nil {
		return domain.NotFound(), err
	}
	a := s.canon.Canonicalize(userID, entityA)
	b := s.canon.Canonicalize(userID, entityB)

	defer s.locks.rlock(userID)()

	res, err := s.engine.Infer(ctx, userID, a, b)
	if err != nil {
		return domain.NotFound(), err
	}

	s.queries.Add(1)
	if res.Found {
		s.queriesFound.Add(1)
	}
	s.logger.Debug("relationship query",
		zap.String("user_id", userID),
		zap.String("from", a.Key),
		zap.String("to", b.Key),
		zap.Bool("found", res.Found),
		zap.Int("hops", res.PathLength))
	return res, nil
}

// ListAll returns every edge of the user in insertion order.
func (s *KnowledgeService) ListAll(ctx context.Context, userID string) ([]domain.Edge, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	defer s.locks.rlock(userID)()

	return s.store.GetAllEdges(ctx, userID)
}

// ListGrouped returns the user's edges grouped by category, in the order
// summaries are rendered. Empty categories are left out.
func (s *KnowledgeService) ListGrouped(ctx context.Context, userID string) ([]CategoryGroup, error) {
	edges, err := s.ListAll(ctx, userID)
	if err != nil {
		return nil, err
	}
	byCat := make(map[domain.Category][]domain.Edge)
	for _, e := range edges {
		byCat[e.Category] = append(byCat[e.Category], e)
	}
	groups := make([]CategoryGroup, 0, len(byCat))
	for _, cat := range domain.Categories {
		if len(byCat[cat]) > 0 {
			groups = append(groups, CategoryGroup{Category: cat, Edges: byCat[cat]})
		}
	}
	return groups, nil
}

// Relations returns the direct outgoing edges of one entity.
func (s *KnowledgeService) Relations(ctx context.Context, userID, entity string) ([]domain.Edge, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	key := s.canon.Key(userID, entity)
	if key == "" {
		return nil, nil
	}

	defer s.locks.rlock(userID)()

	return s.store.GetEdges(ctx, userID, key)
}

// Reset deletes the user's whole graph and reports how many edges went.
func (s *KnowledgeService) Reset(ctx context.Context, userID string) (int, error) {
	if err := checkUser(userID); err != nil {
		return 0, err
	}
	defer s.locks.lock(userID)()

	n, err := s.store.Reset(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("reset graph: %w", err)
	}
	s.resets.Add(1)
	s.logger.Info("graph reset", zap.String("user_id", userID), zap.Int("deleted", n))
	return n, nil
}

// Audit lists stored reciprocal edges whose inverse is missing.
func (s *KnowledgeService) Audit(ctx context.Context, userID string) ([]domain.Violation, error) {
	if err := checkUser(userID); err != nil {
		return nil, err
	}
	defer s.locks.rlock(userID)()

	edges, err := s.store.GetAllEdges(ctx, userID)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]struct{}, len(edges))
	for _, e := range edges {
		ids[e.IdentityKey()] = struct{}{}
	}

	var violations []domain.Violation
	for _, e := range edges {
		inv, ok := InverseEdge(e)
		if !ok {
			continue
		}
		if _, found := ids[inv.IdentityKey()]; !found {
			violations = append(violations, domain.Violation{Edge: e, Missing: inv})
		}
	}
	return violations, nil
}

// Users lists every user with a stored graph.
func (s *KnowledgeService) Users(ctx context.Context) ([]string, error) {
	return s.store.ListUserIDs(ctx)
}

func (s *KnowledgeService) MaxHops() int {
	return s.engine.MaxHops()
}

func (s *KnowledgeService) Stats() Stats {
	return Stats{
		IngestBatches:       s.ingestBatches.Load(),
		EdgesStored:         s.edgesStored.Load(),
		TriplesRejected:     s.triplesRejected.Load(),
		Queries:             s.queries.Load(),
		QueriesFound:        s.queriesFound.Load(),
		Resets:              s.resets.Load(),
		LastAuditViolations: s.lastAuditViolations.Load(),
	}
}

// Label renders a stored edge's relation for display.
func Label(e domain.Edge) string {
	return relation.Label(e.Relation, e.Relation.Gender)
}
