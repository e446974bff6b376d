package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Harshitk-cp/relgraph/internal/canon"
	"github.com/Harshitk-cp/relgraph/internal/domain"
	"github.com/Harshitk-cp/relgraph/internal/relation"
	"github.com/Harshitk-cp/relgraph/internal/store"
	"go.uber.org/zap"
)

func newTestWriter() (*GraphWriter, *store.MemoryStore) {
	st := store.NewMemoryStore()
	return NewGraphWriter(st, canon.New(true), relation.NewNormalizer(nil), zap.NewNop()), st
}

func TestGraphWriter_BuildEdge(t *testing.T) {
	w, _ := newTestWriter()

	e, err := w.BuildEdge("u1", tr("  Yo ", "Esposa", " Ana  María "))
	if err != nil {
		t.Fatalf("BuildEdge: %v", err)
	}
	if e.Subject.Key != domain.SelfKey {
		t.Fatalf("expected self subject, got %q", e.Subject.Key)
	}
	if e.Object.Key != "ana maria" || e.Object.Name != "Ana María" {
		t.Fatalf("unexpected object %+v", e.Object)
	}
	if e.Relation.Kind != domain.KindSpouse || e.Relation.Gender != domain.GenderFemale {
		t.Fatalf("unexpected relation %+v", e.Relation)
	}
	if e.Category != domain.CategoryFamily {
		t.Fatalf("expected family, got %s", e.Category)
	}
}

func TestGraphWriter_BuildEdgeInvalid(t *testing.T) {
	w, _ := newTestWriter()
	tests := []struct {
		name   string
		triple domain.Triple
	}{
		{"empty subject", tr("", "hermano", "juan")},
		{"blank object", tr("juan", "hermano", " \t ")},
		{"empty relation", tr("juan", "", "ana")},
		{"self loop", tr("mi", "amigo", "yo")},
		{"same entity", tr("Juan", "amigo", "JUAN")},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := w.BuildEdge("u1", tc.triple)
			if !errors.Is(err, domain.ErrInvalidEdge) {
				t.Fatalf("expected ErrInvalidEdge, got %v", err)
			}
		})
	}
}

func TestInverseEdge(t *testing.T) {
	forward := domain.Edge{
		Subject:  domain.Entity{Key: "juan"},
		Relation: domain.Relation{Kind: domain.KindParent, Gender: domain.GenderMale},
		Category: domain.CategoryFamily,
		Object:   domain.Entity{Key: "luis"},
	}
	inv, ok := InverseEdge(forward)
	if !ok {
		t.Fatal("expected family edge to have an inverse")
	}
	if inv.Subject.Key != "luis" || inv.Object.Key != "juan" || inv.Relation.Kind != domain.KindChild || !inv.Inverse {
		t.Fatalf("unexpected inverse %+v", inv)
	}
	if inv.Relation.Gender != domain.GenderUnknown {
		t.Fatalf("expected child gender to be unknown, got %s", inv.Relation.Gender)
	}

	forward.Relation = domain.Relation{Kind: domain.KindOwner}
	forward.Category = domain.CategoryPossession
	if _, ok := InverseEdge(forward); ok {
		t.Fatal("expected possession edge to be stored one way")
	}
}

func TestCheckReciprocal(t *testing.T) {
	forward := domain.Edge{
		Subject:  domain.Entity{Key: "a"},
		Relation: domain.Relation{Kind: domain.KindFriend},
		Category: domain.CategorySocial,
		Object:   domain.Entity{Key: "b"},
	}
	if err := CheckReciprocal(WithInverses([]domain.Edge{forward})); err != nil {
		t.Fatalf("expected expanded batch to pass, got %v", err)
	}
	if err := CheckReciprocal([]domain.Edge{forward}); !errors.Is(err, domain.ErrGraphCorruption) {
		t.Fatalf("expected ErrGraphCorruption, got %v", err)
	}
}

func TestGraphWriter_WriteRejectsCorruptBatch(t *testing.T) {
	w, st := newTestWriter()
	ctx := context.Background()

	ok := domain.Edge{
		Subject:  domain.Entity{Key: "x"},
		Relation: domain.Relation{Kind: domain.KindOwner},
		Category: domain.CategoryPossession,
		Object:   domain.Entity{Key: "y"},
	}
	broken := domain.Edge{
		Subject:  domain.Entity{Key: "a"},
		Relation: domain.Relation{Kind: domain.KindSibling},
		Category: domain.CategoryFamily,
		Object:   domain.Entity{Key: "b"},
	}

	_, err := w.Write(ctx, "u1", []domain.Edge{ok, broken})
	if !errors.Is(err, domain.ErrGraphCorruption) {
		t.Fatalf("expected ErrGraphCorruption, got %v", err)
	}
	all, _ := st.GetAllEdges(ctx, "u1")
	if len(all) != 0 {
		t.Fatalf("expected store untouched, got %d edges", len(all))
	}
}
