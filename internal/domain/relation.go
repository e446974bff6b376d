package domain

import "strings"

type Category string

const (
	CategoryFamily       Category = "family"
	CategorySocial       Category = "social"
	CategoryProfessional Category = "professional"
	CategoryLocation     Category = "location"
	CategoryPossession   Category = "possession"
	CategoryOther        Category = "other"
)

// Categories lists every category in the order relationship summaries are grouped.
var Categories = []Category{
	CategoryFamily,
	CategorySocial,
	CategoryProfessional,
	CategoryLocation,
	CategoryPossession,
	CategoryOther,
}

func ValidCategory(c string) bool {
	switch Category(c) {
	case CategoryFamily, CategorySocial, CategoryProfessional,
		CategoryLocation, CategoryPossession, CategoryOther:
		return true
	}
	return false
}

// ReciprocalCategories are the categories whose edges are always stored together
// with their inverse.
var ReciprocalCategories = map[Category]bool{
	CategoryFamily: true,
	CategorySocial: true,
}

type Gender string

const (
	GenderUnknown Gender = ""
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
)

// Opposite returns the other gender, or GenderUnknown when g is unknown.
func (g Gender) Opposite() Gender {
	switch g {
	case GenderMale:
		return GenderFemale
	case GenderFemale:
		return GenderMale
	}
	return GenderUnknown
}

type RelationKind string

const (
	KindSpouse           RelationKind = "spouse"
	KindPartner          RelationKind = "partner"
	KindParent           RelationKind = "parent"
	KindChild            RelationKind = "child"
	KindSibling          RelationKind = "sibling"
	KindGrandparent      RelationKind = "grandparent"
	KindGrandchild       RelationKind = "grandchild"
	KindGreatGrandparent RelationKind = "great_grandparent"
	KindGreatGrandchild  RelationKind = "great_grandchild"
	KindAuntUncle        RelationKind = "aunt_uncle"
	KindNieceNephew      RelationKind = "niece_nephew"
	KindCousin           RelationKind = "cousin"
	KindSiblingInLaw     RelationKind = "sibling_in_law"
	KindParentInLaw      RelationKind = "parent_in_law"
	KindChildInLaw       RelationKind = "child_in_law"
	KindStepParent       RelationKind = "step_parent"
	KindStepChild        RelationKind = "step_child"

	KindFriend       RelationKind = "friend"
	KindNeighbor     RelationKind = "neighbor"
	KindAcquaintance RelationKind = "acquaintance"

	KindBoss      RelationKind = "boss"
	KindEmployee  RelationKind = "employee"
	KindColleague RelationKind = "colleague"
	KindWorksAt   RelationKind = "works_at"
	KindEmployer  RelationKind = "employer"

	KindResidesIn  RelationKind = "resides_in"
	KindResidence  RelationKind = "residence"
	KindBornIn     RelationKind = "born_in"
	KindBirthplace RelationKind = "birthplace"

	KindOwner     RelationKind = "owner"
	KindBelongsTo RelationKind = "belongs_to"

	// KindGeneric is the escape hatch for vocabulary the tables do not know.
	// The raw label travels in Relation.Name.
	KindGeneric RelationKind = "generic"
)

// Relation is the canonical label of a directed edge. An edge (S, r, O) reads
// "S is the r of O"; Gender describes S.
type Relation struct {
	Kind   RelationKind `json:"kind"`
	Name   string       `json:"name,omitempty"`
	Gender Gender       `json:"gender,omitempty"`
}

func Generic(name string) Relation {
	return Relation{Kind: KindGeneric, Name: name}
}

func (r Relation) IsGeneric() bool {
	return r.Kind == KindGeneric
}

// Key identifies the relation for edge identity. Gender is deliberately not part
// of it: "esposo" and "cónyuge" between the same two people are the same edge.
func (r Relation) Key() string {
	if r.Kind == KindGeneric {
		return string(KindGeneric) + ":" + r.Name
	}
	return string(r.Kind)
}

// Empty reports whether the relation carries no usable label.
func (r Relation) Empty() bool {
	if r.Kind == "" {
		return true
	}
	return r.Kind == KindGeneric && strings.TrimSpace(r.Name) == ""
}

func (r Relation) String() string {
	if r.Kind == KindGeneric {
		return "generic(" + r.Name + ")"
	}
	return string(r.Kind)
}
