package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/store"
	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func newTestKnowledge(t *testing.T) (*KnowledgeService, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	ks := NewKnowledgeService(st, Options{MaxHops: 3, FoldDiacritics: true}, zap.NewNop())
	return ks, st
}

func mustIngest(t *testing.T, ks *KnowledgeService, userID string, triples ...domain.Triple) domain.IngestResult {
	t.Helper()
	res, err := ks.Ingest(context.Background(), userID, triples)
	if err != nil {
		t.Fatalf("Ingest: %v", err)
	}
	return res
}

func tr(e1, rel, e2 string) domain.Triple {
	return domain.Triple{Entity1: e1, Relation: rel, Entity2: e2}
}

func TestKnowledge_SiblingThenSpouse(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1", tr("yo", "hermano", "juan"), tr("juan", "esposo", "maria"))

	res, err := ks.Query(context.Background(), "u1", "yo", "maria")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !res.Found {
		t.Fatal("expected relationship to be found")
	}
	if res.Kind != domain.KindSiblingInLaw {
		t.Fatalf("expected sibling_in_law, got %s", res.Kind)
	}
	if res.Label != "cuñada" {
		t.Fatalf("expected label cuñada, got %q", res.Label)
	}
	if res.PathLength != 2 {
		t.Fatalf("expected path length 2, got %d", res.PathLength)
	}
}

func TestKnowledge_SpouseThenSibling(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1", tr("yo", "esposa", "ana"), tr("ana", "hermana", "pedro"))

	res, err := ks.Query(context.Background(), "u1", "yo", "pedro")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !res.Found || res.Kind != domain.KindSiblingInLaw {
		t.Fatalf("expected sibling_in_law, got %+v", res)
	}
	if res.Label != "cuñado/a" {
		t.Fatalf("expected neutral label, got %q", res.Label)
	}
	if res.Path[0].Relation.Kind != domain.KindSpouse || res.Path[1].Relation.Kind != domain.KindSibling {
		t.Fatalf("expected steps spouse, sibling; got %+v", res.Path)
	}
}

func TestKnowledge_ChildStoresParentInverse(t *testing.T) {
	ks, st := newTestKnowledge(t)
	res := mustIngest(t, ks, "u1", tr("yo", "hijo", "Encarna"))
	if res.Stored != 2 {
		t.Fatalf("expected forward and inverse stored, got %d", res.Stored)
	}

	inverse := domain.Edge{
		Subject:  domain.Entity{Key: "encarna"},
		Relation: domain.Relation{Kind: domain.KindParent},
		Object:   domain.Entity{Key: domain.SelfKey},
	}
	ok, err := st.HasEdge(context.Background(), "u1", inverse)
	if err != nil || !ok {
		t.Fatalf("expected (encarna, parent, self) to exist, got %v, %v", ok, err)
	}

	q, err := ks.Query(context.Background(), "u1", "yo", "encarna")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !q.Found || q.Kind != domain.KindParent || q.PathLength != 1 {
		t.Fatalf("expected direct parent, got %+v", q)
	}
	if q.Label != "padre/madre" {
		t.Fatalf("expected neutral parent label, got %q", q.Label)
	}
}

func TestKnowledge_ParentSiblingIsAuntUncle(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1", tr("yo", "hija", "carlos"), tr("carlos", "hermano", "rosa"))

	res, err := ks.Query(context.Background(), "u1", "yo", "rosa")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !res.Found || res.Kind != domain.KindAuntUncle {
		t.Fatalf("expected aunt_uncle, got %+v", res)
	}
}

func TestKnowledge_NotFound(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1",
		tr("yo", "amigo", "a"),
		tr("a", "amigo", "b"),
		tr("b", "amigo", "c"),
		tr("c", "amigo", "d"),
	)
	ctx := context.Background()

	tests := []struct {
		name, from, to string
	}{
		{"self to self", "yo", "yo"},
		{"self aliases", "yo", "me"},
		{"beyond hop bound", "yo", "d"},
		{"unknown entity", "yo", "zoe"},
		{"unknown source", "zoe", "a"},
		{"empty entity", "yo", "   "},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ks.Query(ctx, "u1", tc.from, tc.to)
			if err != nil {
				t.Fatalf("expected no error, got %v", err)
			}
			if res.Found {
				t.Fatalf("expected NotFound, got %+v", res)
			}
		})
	}
}

func TestKnowledge_UncomposablePathDegradesToGeneric(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1",
		tr("yo", "amigo", "a"),
		tr("a", "amigo", "b"),
		tr("b", "amigo", "c"),
	)

	res, err := ks.Query(context.Background(), "u1", "yo", "c")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !res.Found || res.Kind != domain.KindGeneric {
		t.Fatalf("expected generic fallback, got %+v", res)
	}
	want := "relacionado a través de amigo/a, amigo/a y amigo/a"
	if res.Label != want {
		t.Fatalf("expected %q, got %q", want, res.Label)
	}
	if res.PathLength != 3 {
		t.Fatalf("expected 3 hops, got %d", res.PathLength)
	}
}

func TestKnowledge_UnknownVocabularyRoundTrips(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	res := mustIngest(t, ks, "u1", tr("luis", "padrino", "yo"))
	if res.Stored != 1 {
		t.Fatalf("expected only the forward edge for category other, got %d", res.Stored)
	}

	edges, err := ks.ListAll(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(edges) != 1 {
		t.Fatalf("expected 1 edge, got %d", len(edges))
	}
	if diff := cmp.Diff(domain.Generic("padrino"), edges[0].Relation); diff != "" {
		t.Fatalf("relation mismatch (-want +got):\n%s", diff)
	}
	if edges[0].Category != domain.CategoryOther {
		t.Fatalf("expected category other, got %s", edges[0].Category)
	}

	q, _ := ks.Query(context.Background(), "u1", "luis", "yo")
	if !q.Found || q.Label != "padrino" {
		t.Fatalf("expected generic single hop labelled padrino, got %+v", q)
	}
}

func TestKnowledge_CategoryHintOnGeneric(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	res := mustIngest(t, ks, "u1", domain.Triple{Entity1: "luis", Relation: "padrino", Entity2: "ana", Type: "familia"})
	if res.Stored != 2 {
		t.Fatalf("expected hinted generic family edge to get an inverse, got %d", res.Stored)
	}

	out, err := ks.Relations(context.Background(), "u1", "ana")
	if err != nil {
		t.Fatalf("Relations: %v", err)
	}
	if len(out) != 1 || out[0].Relation != domain.Generic("padrino") || out[0].Category != domain.CategoryFamily {
		t.Fatalf("expected self-inverse family padrino edge, got %+v", out)
	}

	// A hint never overrides a known kind.
	mustIngest(t, ks, "u1", domain.Triple{Entity1: "ana", Relation: "jefa", Entity2: "rosa", Type: "familia"})
	out, _ = ks.Relations(context.Background(), "u1", "ana")
	if out[len(out)-1].Category != domain.CategoryProfessional {
		t.Fatalf("expected professional category, got %s", out[len(out)-1].Category)
	}
}

func TestKnowledge_Idempotent(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	batch := []domain.Triple{tr("yo", "hermano", "juan"), tr("juan", "esposo", "maria")}

	first := mustIngest(t, ks, "u1", batch...)
	before, _ := ks.ListAll(context.Background(), "u1")

	second := mustIngest(t, ks, "u1", batch...)
	after, _ := ks.ListAll(context.Background(), "u1")

	if first.Stored != 4 || second.Stored != 0 {
		t.Fatalf("expected 4 then 0 stored, got %d then %d", first.Stored, second.Stored)
	}
	if diff := cmp.Diff(before, after); diff != "" {
		t.Fatalf("edge set changed on re-ingest (-before +after):\n%s", diff)
	}

	// The same fact phrased with a different gender form is still the same edge.
	third := mustIngest(t, ks, "u1", tr("yo", "hermana", "Juan"))
	if third.Stored != 0 {
		t.Fatalf("expected no new edges, got %d", third.Stored)
	}
}

func TestKnowledge_InverseInvariant(t *testing.T) {
	ks, st := newTestKnowledge(t)
	mustIngest(t, ks, "u1",
		tr("yo", "esposo", "ana"),
		tr("ana", "madre", "lucia"),
		tr("yo", "abuelo", "pablo"),
		tr("yo", "tío", "sara"),
		tr("yo", "amiga", "eva"),
		tr("yo", "jefe", "tomas"),
		tr("yo", "vive en", "madrid"),
		tr("yo", "propietario", "coche"),
	)
	ctx := context.Background()

	edges, _ := ks.ListAll(ctx, "u1")
	for _, e := range edges {
		inv, due := InverseEdge(e)
		if !due {
			continue
		}
		ok, err := st.HasEdge(ctx, "u1", inv)
		if err != nil || !ok {
			t.Fatalf("missing inverse of %s %s %s", e.Subject.Key, e.Relation, e.Object.Key)
		}
	}

	violations, err := ks.Audit(ctx, "u1")
	if err != nil {
		t.Fatalf("Audit: %v", err)
	}
	if len(violations) != 0 {
		t.Fatalf("expected clean audit, got %+v", violations)
	}

	// Professional, location and possession edges are stored one way only.
	out, _ := ks.Relations(ctx, "u1", "tomas")
	if len(out) != 0 {
		t.Fatalf("expected no reciprocal professional edge, got %+v", out)
	}
}

func TestKnowledge_SpouseInverseTakesOppositeGender(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1", tr("juan", "esposo", "maria"))

	out, err := ks.Relations(context.Background(), "u1", "maria")
	if err != nil {
		t.Fatalf("Relations: %v", err)
	}
	if len(out) != 1 || out[0].Relation.Gender != domain.GenderFemale || !out[0].Inverse {
		t.Fatalf("expected female inverse spouse edge, got %+v", out)
	}
	if Label(out[0]) != "esposa" {
		t.Fatalf("expected label esposa, got %q", Label(out[0]))
	}
}

func TestKnowledge_Rejections(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	res := mustIngest(t, ks, "u1",
		tr("", "hermano", "juan"),
		tr("yo", "hermano", "juan"),
		tr("yo", "   ", "juan"),
		tr("yo", "hermano", "me"),
		tr("juan", "amigo", "\x00\x01"),
	)

	if res.Stored != 2 {
		t.Fatalf("expected 2 stored, got %d", res.Stored)
	}
	if res.Rejected != 4 {
		t.Fatalf("expected 4 rejected, got %d", res.Rejected)
	}
	wantIdx := []int{0, 2, 3, 4}
	for i, r := range res.Rejections {
		if r.Index != wantIdx[i] {
			t.Fatalf("rejection %d: expected index %d, got %d", i, wantIdx[i], r.Index)
		}
		if r.Reason == "" {
			t.Fatalf("rejection %d has no reason", i)
		}
	}
}

func TestKnowledge_AddEdgeInvalid(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	_, err := ks.AddEdge(context.Background(), "u1", "yo", "hermano", "yo")
	if !errors.Is(err, domain.ErrInvalidEdge) {
		t.Fatalf("expected ErrInvalidEdge, got %v", err)
	}

	n, err := ks.AddEdge(context.Background(), "u1", "yo", "hermano", "juan")
	if err != nil || n != 2 {
		t.Fatalf("expected 2 edges, got %d, %v", n, err)
	}
}

func TestKnowledge_UserRequired(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	ctx := context.Background()

	if _, err := ks.Ingest(ctx, " ", []domain.Triple{tr("yo", "hermano", "juan")}); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired from Ingest, got %v", err)
	}
	if _, err := ks.Query(ctx, "", "yo", "juan"); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired from Query, got %v", err)
	}
	if _, err := ks.Reset(ctx, ""); !errors.Is(err, ErrUserRequired) {
		t.Fatalf("expected ErrUserRequired from Reset, got %v", err)
	}
}

func TestKnowledge_UserIDWithControlCharacters(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	ctx := context.Background()
	mustIngest(t, ks, "a", tr("yo", "amigo", "luis"))

	if _, err := ks.Ingest(ctx, "a\x00b", []domain.Triple{tr("x", "hermano", "y")}); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID from Ingest, got %v", err)
	}
	if _, err := ks.ListAll(ctx, "a\nb"); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID from ListAll, got %v", err)
	}
	if _, err := ks.Reset(ctx, "a\x00"); !errors.Is(err, ErrInvalidUserID) {
		t.Fatalf("expected ErrInvalidUserID from Reset, got %v", err)
	}

	edges, err := ks.ListAll(ctx, "a")
	if err != nil {
		t.Fatalf("ListAll: %v", err)
	}
	if len(edges) != 2 {
		t.Fatalf("expected user a to keep its 2 edges, got %d", len(edges))
	}
}

func TestKnowledge_DiacriticsFold(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1", tr("Yo", "Hermana", "María"))

	res, err := ks.Query(context.Background(), "u1", "yo", "maria")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !res.Found || res.Kind != domain.KindSibling {
		t.Fatalf("expected sibling via folded key, got %+v", res)
	}
	if res.Path[0].To.Name != "María" {
		t.Fatalf("expected display name to keep accents, got %q", res.Path[0].To.Name)
	}
}

func TestKnowledge_TieBreakPrefersEarliestEdges(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1",
		tr("yo", "hermano", "juan"),
		tr("yo", "amigo", "pedro"),
		tr("juan", "esposo", "maria"),
		tr("pedro", "amigo", "maria"),
	)

	res, err := ks.Query(context.Background(), "u1", "yo", "maria")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Kind != domain.KindSiblingInLaw || res.Path[0].To.Key != "juan" {
		t.Fatalf("expected path through juan, got %+v", res)
	}
}

func TestKnowledge_Deterministic(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1",
		tr("yo", "hijo", "carlos"),
		tr("carlos", "hermano", "rosa"),
		tr("rosa", "madre", "alba"),
	)

	first, err := ks.Query(context.Background(), "u1", "yo", "alba")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !first.Found || first.Kind != domain.KindCousin {
		t.Fatalf("expected cousin, got %+v", first)
	}
	for i := 0; i < 10; i++ {
		again, _ := ks.Query(context.Background(), "u1", "yo", "alba")
		if diff := cmp.Diff(first, again); diff != "" {
			t.Fatalf("query %d differs (-first +again):\n%s", i, diff)
		}
	}
}

func TestKnowledge_ListGrouped(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1",
		tr("yo", "vive en", "madrid"),
		tr("luis", "padrino", "yo"),
		tr("yo", "amigo", "eva"),
		tr("yo", "hermano", "juan"),
	)

	groups, err := ks.ListGrouped(context.Background(), "u1")
	if err != nil {
		t.Fatalf("ListGrouped: %v", err)
	}
	var order []domain.Category
	for _, g := range groups {
		order = append(order, g.Category)
	}
	want := []domain.Category{domain.CategoryFamily, domain.CategorySocial, domain.CategoryLocation, domain.CategoryOther}
	if diff := cmp.Diff(want, order); diff != "" {
		t.Fatalf("group order mismatch (-want +got):\n%s", diff)
	}
	if len(groups[0].Edges) != 2 {
		t.Fatalf("expected forward and inverse family edges, got %d", len(groups[0].Edges))
	}
}

func TestKnowledge_Reset(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	mustIngest(t, ks, "u1", tr("yo", "hermano", "juan"))
	mustIngest(t, ks, "u2", tr("yo", "hermano", "juan"))

	n, err := ks.Reset(context.Background(), "u1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 deleted, got %d", n)
	}
	res, _ := ks.Query(context.Background(), "u1", "yo", "juan")
	if res.Found {
		t.Fatal("expected empty graph after reset")
	}
	res, _ = ks.Query(context.Background(), "u2", "yo", "juan")
	if !res.Found {
		t.Fatal("expected other users to keep their graph")
	}

	stats := ks.Stats()
	if stats.Resets != 1 || stats.IngestBatches != 2 || stats.EdgesStored != 4 {
		t.Fatalf("unexpected stats %+v", stats)
	}
}

func TestKnowledge_HopBound(t *testing.T) {
	st := store.NewMemoryStore()
	ks := NewKnowledgeService(st, Options{MaxHops: 1}, zap.NewNop())
	mustIngest(t, ks, "u1", tr("yo", "hermano", "juan"), tr("juan", "esposo", "maria"))

	res, _ := ks.Query(context.Background(), "u1", "yo", "maria")
	if res.Found {
		t.Fatalf("expected 2-hop path to be out of bound, got %+v", res)
	}
	if got := NewKnowledgeService(st, Options{MaxHops: 9}, zap.NewNop()).MaxHops(); got != 3 {
		t.Fatalf("expected hop bound clamped to 3, got %d", got)
	}
}

func TestKnowledge_ConcurrentUsers(t *testing.T) {
	ks, _ := newTestKnowledge(t)
	ctx := context.Background()

	var g errgroup.Group
	for u := 0; u < 8; u++ {
		userID := fmt.Sprintf("user-%d", u)
		for i := 0; i < 10; i++ {
			i := i
			g.Go(func() error {
				_, err := ks.Ingest(ctx, userID, []domain.Triple{
					tr("yo", "hermano", fmt.Sprintf("h%d", i)),
					tr(fmt.Sprintf("h%d", i), "esposa", fmt.Sprintf("e%d", i)),
				})
				return err
			})
			g.Go(func() error {
				res, err := ks.Query(ctx, userID, "yo", fmt.Sprintf("e%d", i))
				if err != nil {
					return err
				}
				// A query sees either nothing or the whole batch.
				if res.Found && res.Kind != domain.KindSiblingInLaw {
					return fmt.Errorf("partial batch observed: %+v", res)
				}
				return nil
			})
		}
	}
	if err := g.Wait(); err != nil {
		t.Fatalf("concurrent ingest/query: %v", err)
	}

	for u := 0; u < 8; u++ {
		edges, _ := ks.ListAll(ctx, fmt.Sprintf("user-%d", u))
		if len(edges) != 40 {
			t.Fatalf("user-%d: expected 40 edges, got %d", u, len(edges))
		}
	}
}
