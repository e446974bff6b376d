package relation

import (
	"strings"

	"github.com/Harshitk-cp/relgraph/internal/domain"
)

// step pairs read: X is the First of A, B is the Second of X.
type step struct {
	First, Second domain.RelationKind
}

// compositionRules give what B is to A for two adjacent step relations. Pairs
// that could mean several things are left out and degrade to a generic phrase:
// a grandparent's child may be a parent or an aunt, a parent's spouse may be
// the other parent or a step-parent, a spouse's child may be one's own child.
var compositionRules = map[step]domain.RelationKind{
	{domain.KindParent, domain.KindParent}:       domain.KindGrandparent,
	{domain.KindParent, domain.KindSibling}:      domain.KindAuntUncle,
	{domain.KindParent, domain.KindSiblingInLaw}: domain.KindAuntUncle,
	{domain.KindParent, domain.KindChild}:        domain.KindSibling,
	{domain.KindParent, domain.KindGrandparent}:  domain.KindGreatGrandparent,
	{domain.KindParent, domain.KindNieceNephew}:  domain.KindCousin,
	{domain.KindChild, domain.KindChild}:         domain.KindGrandchild,
	{domain.KindChild, domain.KindSpouse}:        domain.KindChildInLaw,
	{domain.KindChild, domain.KindPartner}:       domain.KindChildInLaw,
	{domain.KindChild, domain.KindSibling}:       domain.KindChild,
	{domain.KindChild, domain.KindGrandchild}:    domain.KindGreatGrandchild,
	{domain.KindSibling, domain.KindSibling}:     domain.KindSibling,
	{domain.KindSibling, domain.KindParent}:      domain.KindParent,
	{domain.KindSibling, domain.KindChild}:       domain.KindNieceNephew,
	{domain.KindSibling, domain.KindSpouse}:      domain.KindSiblingInLaw,
	{domain.KindSibling, domain.KindPartner}:     domain.KindSiblingInLaw,
	{domain.KindSibling, domain.KindGrandparent}: domain.KindGrandparent,
	{domain.KindSpouse, domain.KindSibling}:      domain.KindSiblingInLaw,
	{domain.KindSpouse, domain.KindParent}:       domain.KindParentInLaw,
	{domain.KindPartner, domain.KindSibling}:     domain.KindSiblingInLaw,
	{domain.KindPartner, domain.KindParent}:      domain.KindParentInLaw,
	{domain.KindGrandparent, domain.KindParent}:  domain.KindGreatGrandparent,
	{domain.KindGrandchild, domain.KindChild}:    domain.KindGreatGrandchild,
	{domain.KindGrandchild, domain.KindSibling}:  domain.KindGrandchild,
	{domain.KindAuntUncle, domain.KindChild}:     domain.KindCousin,
	{domain.KindAuntUncle, domain.KindSpouse}:    domain.KindAuntUncle,
	{domain.KindNieceNephew, domain.KindSibling}: domain.KindNieceNephew,
	{domain.KindCousin, domain.KindSibling}:      domain.KindCousin,
	{domain.KindCousin, domain.KindParent}:       domain.KindAuntUncle,
	{domain.KindSiblingInLaw, domain.KindChild}:  domain.KindNieceNephew,
	{domain.KindParentInLaw, domain.KindChild}:   domain.KindSiblingInLaw,
	{domain.KindParentInLaw, domain.KindSpouse}:  domain.KindParentInLaw,
	{domain.KindChildInLaw, domain.KindChild}:    domain.KindGrandchild,
	{domain.KindFriend, domain.KindFriend}:       domain.KindAcquaintance,
	{domain.KindColleague, domain.KindColleague}: domain.KindColleague,
	{domain.KindColleague, domain.KindBoss}:      domain.KindBoss,
	{domain.KindColleague, domain.KindEmployer}:  domain.KindEmployer,
	{domain.KindBoss, domain.KindEmployee}:       domain.KindColleague,
}

// ComposePair returns the rule result for two adjacent step relations.
func ComposePair(first, second domain.RelationKind) (domain.RelationKind, bool) {
	k, ok := compositionRules[step{first, second}]
	return k, ok
}

// Compose folds the step relations of a path left to right into one relation.
// A single step is returned as is. When some pair has no rule the result is a
// generic relation whose name reads "relacionado a través de <a> y <b>", and
// composed is false.
func Compose(steps []domain.Relation) (r domain.Relation, composed bool) {
	if len(steps) == 0 {
		return domain.Relation{}, false
	}
	if len(steps) == 1 {
		return domain.Relation{Kind: steps[0].Kind, Name: steps[0].Name}, true
	}

	acc := steps[0].Kind
	for _, s := range steps[1:] {
		next, ok := ComposePair(acc, s.Kind)
		if !ok {
			return domain.Generic(ThroughPhrase(steps)), false
		}
		acc = next
	}
	return domain.Relation{Kind: acc}, true
}

// ThroughPhrase renders the fallback wording for a path the rules cannot fold.
func ThroughPhrase(steps []domain.Relation) string {
	names := make([]string, len(steps))
	for i, s := range steps {
		names[i] = Label(s, domain.GenderUnknown)
	}
	var b strings.Builder
	b.WriteString("relacionado a través de ")
	for i, n := range names {
		switch {
		case i == 0:
		case i == len(names)-1:
			b.WriteString(" y ")
		default:
			b.WriteString(", ")
		}
		b.WriteString(n)
	}
	return b.String()
}
