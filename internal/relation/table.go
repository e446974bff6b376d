package relation

import "github.com/Harshitk-cp/relgraph/internal/domain"

// KindInfo is the rule table row for one relation kind.
type KindInfo struct {
	Category domain.Category
	Inverse  domain.RelationKind
	// OppositeInverseGender marks pairs such as esposo/esposa where the inverse
	// edge is written with the opposite gender form.
	OppositeInverseGender bool
	Labels                Labels
}

// Labels are the Spanish surface forms of a kind.
type Labels struct {
	Male    string
	Female  string
	Neutral string
}

func (l Labels) For(g domain.Gender) string {
	switch g {
	case domain.GenderMale:
		return l.Male
	case domain.GenderFemale:
		return l.Female
	}
	return l.Neutral
}

var kinds = map[domain.RelationKind]KindInfo{
	domain.KindSpouse:           {domain.CategoryFamily, domain.KindSpouse, true, Labels{"esposo", "esposa", "cónyuge"}},
	domain.KindPartner:          {domain.CategoryFamily, domain.KindPartner, true, Labels{"novio", "novia", "pareja"}},
	domain.KindParent:           {domain.CategoryFamily, domain.KindChild, false, Labels{"padre", "madre", "padre/madre"}},
	domain.KindChild:            {domain.CategoryFamily, domain.KindParent, false, Labels{"hijo", "hija", "hijo/a"}},
	domain.KindSibling:          {domain.CategoryFamily, domain.KindSibling, false, Labels{"hermano", "hermana", "hermano/a"}},
	domain.KindGrandparent:      {domain.CategoryFamily, domain.KindGrandchild, false, Labels{"abuelo", "abuela", "abuelo/a"}},
	domain.KindGrandchild:       {domain.CategoryFamily, domain.KindGrandparent, false, Labels{"nieto", "nieta", "nieto/a"}},
	domain.KindGreatGrandparent: {domain.CategoryFamily, domain.KindGreatGrandchild, false, Labels{"bisabuelo", "bisabuela", "bisabuelo/a"}},
	domain.KindGreatGrandchild:  {domain.CategoryFamily, domain.KindGreatGrandparent, false, Labels{"bisnieto", "bisnieta", "bisnieto/a"}},
	domain.KindAuntUncle:        {domain.CategoryFamily, domain.KindNieceNephew, false, Labels{"tío", "tía", "tío/a"}},
	domain.KindNieceNephew:      {domain.CategoryFamily, domain.KindAuntUncle, false, Labels{"sobrino", "sobrina", "sobrino/a"}},
	domain.KindCousin:           {domain.CategoryFamily, domain.KindCousin, false, Labels{"primo", "prima", "primo/a"}},
	domain.KindSiblingInLaw:     {domain.CategoryFamily, domain.KindSiblingInLaw, false, Labels{"cuñado", "cuñada", "cuñado/a"}},
	domain.KindParentInLaw:      {domain.CategoryFamily, domain.KindChildInLaw, false, Labels{"suegro", "suegra", "suegro/a"}},
	domain.KindChildInLaw:       {domain.CategoryFamily, domain.KindParentInLaw, false, Labels{"yerno", "nuera", "yerno/nuera"}},
	domain.KindStepParent:       {domain.CategoryFamily, domain.KindStepChild, false, Labels{"padrastro", "madrastra", "padrastro/madrastra"}},
	domain.KindStepChild:        {domain.CategoryFamily, domain.KindStepParent, false, Labels{"hijastro", "hijastra", "hijastro/a"}},

	domain.KindFriend:       {domain.CategorySocial, domain.KindFriend, false, Labels{"amigo", "amiga", "amigo/a"}},
	domain.KindNeighbor:     {domain.CategorySocial, domain.KindNeighbor, false, Labels{"vecino", "vecina", "vecino/a"}},
	domain.KindAcquaintance: {domain.CategorySocial, domain.KindAcquaintance, false, Labels{"conocido", "conocida", "conocido/a"}},

	domain.KindBoss:      {domain.CategoryProfessional, domain.KindEmployee, false, Labels{"jefe", "jefa", "jefe/a"}},
	domain.KindEmployee:  {domain.CategoryProfessional, domain.KindBoss, false, Labels{"empleado", "empleada", "empleado/a"}},
	domain.KindColleague: {domain.CategoryProfessional, domain.KindColleague, false, Labels{"compañero de trabajo", "compañera de trabajo", "colega"}},
	domain.KindWorksAt:   {domain.CategoryProfessional, domain.KindEmployer, false, Labels{"trabaja en", "trabaja en", "trabaja en"}},
	domain.KindEmployer:  {domain.CategoryProfessional, domain.KindWorksAt, false, Labels{"empleador", "empleadora", "empleador"}},

	domain.KindResidesIn:  {domain.CategoryLocation, domain.KindResidence, false, Labels{"vive en", "vive en", "vive en"}},
	domain.KindResidence:  {domain.CategoryLocation, domain.KindResidesIn, false, Labels{"residencia de", "residencia de", "residencia de"}},
	domain.KindBornIn:     {domain.CategoryLocation, domain.KindBirthplace, false, Labels{"nació en", "nació en", "nació en"}},
	domain.KindBirthplace: {domain.CategoryLocation, domain.KindBornIn, false, Labels{"lugar de nacimiento de", "lugar de nacimiento de", "lugar de nacimiento de"}},

	domain.KindOwner:     {domain.CategoryPossession, domain.KindBelongsTo, false, Labels{"propietario", "propietaria", "propietario/a"}},
	domain.KindBelongsTo: {domain.CategoryPossession, domain.KindOwner, false, Labels{"pertenece a", "pertenece a", "pertenece a"}},
}

// Info returns the table row for kind. Generic and unknown kinds report false.
func Info(kind domain.RelationKind) (KindInfo, bool) {
	info, ok := kinds[kind]
	return info, ok
}

// CategoryOf returns the table category of r, CategoryOther for generic relations.
func CategoryOf(r domain.Relation) domain.Category {
	if info, ok := kinds[r.Kind]; ok {
		return info.Category
	}
	return domain.CategoryOther
}

// Inverse maps a relation to its inverse. Relations without a known inverse,
// generic ones included, are their own inverse. That is a simplification, not a
// claim of symmetry.
func Inverse(r domain.Relation) domain.Relation {
	info, ok := kinds[r.Kind]
	if !ok {
		return domain.Relation{Kind: r.Kind, Name: r.Name}
	}
	inv := domain.Relation{Kind: info.Inverse}
	if info.OppositeInverseGender {
		inv.Gender = r.Gender.Opposite()
	}
	return inv
}

// Label renders r in Spanish for an entity of gender g.
func Label(r domain.Relation, g domain.Gender) string {
	if info, ok := kinds[r.Kind]; ok {
		return info.Labels.For(g)
	}
	return r.Name
}

// Kinds returns every kind in the table.
func Kinds() []domain.RelationKind {
	out := make([]domain.RelationKind, 0, len(kinds))
	for k := range kinds {
		out = append(out, k)
	}
	return out
}
