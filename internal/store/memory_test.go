package store

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/relgraph/internal/domain"
)

func edge(subject string, kind domain.RelationKind, object string) domain.Edge {
	return domain.Edge{
		Subject:  domain.Entity{Key: subject, Name: subject},
		Relation: domain.Relation{Kind: kind},
		Category: domain.CategoryFamily,
		Object:   domain.Entity{Key: object, Name: object},
	}
}

// exerciseEdgeStore runs the behaviour every EdgeStore backend must share.
func exerciseEdgeStore(t *testing.T, s domain.EdgeStore) {
	t.Helper()
	ctx := context.Background()

	batch := []domain.Edge{
		edge(domain.SelfKey, domain.KindSibling, "juan"),
		edge("juan", domain.KindSibling, domain.SelfKey),
		edge("juan", domain.KindSpouse, "maria"),
		edge("maria", domain.KindSpouse, "juan"),
	}

	n, err := s.AddEdges(ctx, "u1", batch)
	if err != nil {
		t.Fatalf("AddEdges: %v", err)
	}
	if n != 4 {
		t.Fatalf("expected 4 edges stored, got %d", n)
	}

	n, err = s.AddEdges(ctx, "u1", batch)
	if err != nil {
		t.Fatalf("AddEdges again: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected re-insert to store nothing, got %d", n)
	}

	// Gender is not part of edge identity.
	gendered := edge("juan", domain.KindSpouse, "maria")
	gendered.Relation.Gender = domain.GenderMale
	n, err = s.AddEdges(ctx, "u1", []domain.Edge{gendered})
	if err != nil {
		t.Fatalf("AddEdges gendered: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected gendered duplicate to be ignored, got %d", n)
	}

	out, err := s.GetEdges(ctx, "u1", "juan")
	if err != nil {
		t.Fatalf("GetEdges: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 outgoing edges for juan, got %d", len(out))
	}
	if out[0].Relation.Kind != domain.KindSibling || out[1].Relation.Kind != domain.KindSpouse {
		t.Fatalf("expected insertion order sibling, spouse; got %s, %s", out[0].Relation.Kind, out[1].Relation.Kind)
	}
	if out[0].Seq >= out[1].Seq {
		t.Fatalf("expected increasing seq, got %d then %d", out[0].Seq, out[1].Seq)
	}
	if out[0].UserID != "u1" {
		t.Fatalf("expected user id to be set, got %q", out[0].UserID)
	}

	all, err := s.GetAllEdges(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAllEdges: %v", err)
	}
	if len(all) != 4 {
		t.Fatalf("expected 4 edges, got %d", len(all))
	}
	for i := 1; i < len(all); i++ {
		if all[i-1].Seq >= all[i].Seq {
			t.Fatalf("GetAllEdges not in insertion order at %d", i)
		}
	}
	if all[0].Subject.Key != domain.SelfKey {
		t.Fatalf("expected first edge to start at self, got %s", all[0].Subject.Key)
	}

	ok, err := s.HasEdge(ctx, "u1", edge("maria", domain.KindSpouse, "juan"))
	if err != nil || !ok {
		t.Fatalf("expected HasEdge true, got %v, %v", ok, err)
	}
	ok, err = s.HasEdge(ctx, "u1", edge("maria", domain.KindSibling, "juan"))
	if err != nil || ok {
		t.Fatalf("expected HasEdge false, got %v, %v", ok, err)
	}
	ok, err = s.HasEdge(ctx, "u2", edge("maria", domain.KindSpouse, "juan"))
	if err != nil || ok {
		t.Fatalf("expected edges to be scoped per user, got %v, %v", ok, err)
	}

	if _, err := s.AddEdges(ctx, "u2", []domain.Edge{edge("ana", domain.KindFriend, "luis")}); err != nil {
		t.Fatalf("AddEdges u2: %v", err)
	}
	ids, err := s.ListUserIDs(ctx)
	if err != nil {
		t.Fatalf("ListUserIDs: %v", err)
	}
	if len(ids) != 2 || ids[0] != "u1" || ids[1] != "u2" {
		t.Fatalf("expected [u1 u2], got %v", ids)
	}

	deleted, err := s.Reset(ctx, "u1")
	if err != nil {
		t.Fatalf("Reset: %v", err)
	}
	if deleted != 4 {
		t.Fatalf("expected 4 edges deleted, got %d", deleted)
	}
	all, err = s.GetAllEdges(ctx, "u1")
	if err != nil {
		t.Fatalf("GetAllEdges after reset: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected empty graph after reset, got %d edges", len(all))
	}
	other, err := s.GetAllEdges(ctx, "u2")
	if err != nil {
		t.Fatalf("GetAllEdges u2: %v", err)
	}
	if len(other) != 1 {
		t.Fatalf("expected reset to leave u2 alone, got %d edges", len(other))
	}

	// A reset user can be written again.
	n, err = s.AddEdges(ctx, "u1", batch[:1])
	if err != nil || n != 1 {
		t.Fatalf("expected re-ingest after reset to store 1, got %d, %v", n, err)
	}

	if err := s.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}
}

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	exerciseEdgeStore(t, s)
}

func TestMemoryStore_GetEdgesReturnsCopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	_, _ = s.AddEdges(ctx, "u1", []domain.Edge{edge("a", domain.KindFriend, "b")})

	out, _ := s.GetEdges(ctx, "u1", "a")
	out[0].Object.Key = "mutated"

	again, _ := s.GetEdges(ctx, "u1", "a")
	if again[0].Object.Key != "b" {
		t.Fatalf("expected stored edge to be unaffected, got %s", again[0].Object.Key)
	}
}

func TestMemoryStore_UnknownUser(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	out, err := s.GetEdges(ctx, "nobody", "a")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(out) != 0 {
		t.Fatalf("expected no edges, got %d", len(out))
	}
	n, err := s.Reset(ctx, "nobody")
	if err != nil || n != 0 {
		t.Fatalf("expected reset of unknown user to delete 0, got %d, %v", n, err)
	}
}

func TestMemoryStore_Closed(t *testing.T) {
	s := NewMemoryStore()
	if err := s.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	_, err := s.AddEdges(context.Background(), "u1", []domain.Edge{edge("a", domain.KindFriend, "b")})
	if !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	if err := s.Ping(context.Background()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed from Ping, got %v", err)
	}
}
