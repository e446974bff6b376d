package relation

import (
	"github.com/Harshitk-cp/relgraph/internal/domain"
)

// Keyword maps a (diacritic-folded, lower-case) word sequence to a kind and the
// gender it implies for the edge subject.
type Keyword struct {
	Text   string
	Kind   domain.RelationKind
	Gender domain.Gender
}

const (
	m = domain.GenderMale
	f = domain.GenderFemale
	u = domain.GenderUnknown
)

var familyKeywords = []Keyword{
	{"esposo", domain.KindSpouse, m},
	{"esposa", domain.KindSpouse, f},
	{"marido", domain.KindSpouse, m},
	{"conyuge", domain.KindSpouse, u},
	{"casado con", domain.KindSpouse, m},
	{"casada con", domain.KindSpouse, f},
	{"husband", domain.KindSpouse, m},
	{"wife", domain.KindSpouse, f},
	{"spouse", domain.KindSpouse, u},

	{"novio", domain.KindPartner, m},
	{"novia", domain.KindPartner, f},
	{"pareja", domain.KindPartner, u},
	{"boyfriend", domain.KindPartner, m},
	{"girlfriend", domain.KindPartner, f},
	{"partner", domain.KindPartner, u},

	{"padre", domain.KindParent, m},
	{"madre", domain.KindParent, f},
	{"papa", domain.KindParent, m},
	{"mama", domain.KindParent, f},
	{"progenitor", domain.KindParent, u},
	{"father", domain.KindParent, m},
	{"mother", domain.KindParent, f},
	{"parent", domain.KindParent, u},

	{"hijo", domain.KindChild, m},
	{"hija", domain.KindChild, f},
	{"son of", domain.KindChild, m},
	{"daughter", domain.KindChild, f},
	{"child", domain.KindChild, u},

	{"hermano", domain.KindSibling, m},
	{"hermana", domain.KindSibling, f},
	{"brother", domain.KindSibling, m},
	{"sister", domain.KindSibling, f},
	{"sibling", domain.KindSibling, u},

	{"abuelo", domain.KindGrandparent, m},
	{"abuela", domain.KindGrandparent, f},
	{"grandfather", domain.KindGrandparent, m},
	{"grandmother", domain.KindGrandparent, f},
	{"grandparent", domain.KindGrandparent, u},

	{"nieto", domain.KindGrandchild, m},
	{"nieta", domain.KindGrandchild, f},
	{"grandson", domain.KindGrandchild, m},
	{"granddaughter", domain.KindGrandchild, f},
	{"grandchild", domain.KindGrandchild, u},

	{"bisabuelo", domain.KindGreatGrandparent, m},
	{"bisabuela", domain.KindGreatGrandparent, f},
	{"great grandfather", domain.KindGreatGrandparent, m},
	{"great grandmother", domain.KindGreatGrandparent, f},

	{"bisnieto", domain.KindGreatGrandchild, m},
	{"bisnieta", domain.KindGreatGrandchild, f},
	{"great grandson", domain.KindGreatGrandchild, m},
	{"great granddaughter", domain.KindGreatGrandchild, f},

	{"tio", domain.KindAuntUncle, m},
	{"tia", domain.KindAuntUncle, f},
	{"uncle", domain.KindAuntUncle, m},
	{"aunt", domain.KindAuntUncle, f},

	{"sobrino", domain.KindNieceNephew, m},
	{"sobrina", domain.KindNieceNephew, f},
	{"nephew", domain.KindNieceNephew, m},
	{"niece", domain.KindNieceNephew, f},

	{"primo", domain.KindCousin, m},
	{"prima", domain.KindCousin, f},
	{"cousin", domain.KindCousin, u},

	{"cunado", domain.KindSiblingInLaw, m},
	{"cunada", domain.KindSiblingInLaw, f},
	{"brother in law", domain.KindSiblingInLaw, m},
	{"sister in law", domain.KindSiblingInLaw, f},

	{"suegro", domain.KindParentInLaw, m},
	{"suegra", domain.KindParentInLaw, f},
	{"father in law", domain.KindParentInLaw, m},
	{"mother in law", domain.KindParentInLaw, f},

	{"yerno", domain.KindChildInLaw, m},
	{"nuera", domain.KindChildInLaw, f},
	{"son in law", domain.KindChildInLaw, m},
	{"daughter in law", domain.KindChildInLaw, f},

	{"padrastro", domain.KindStepParent, m},
	{"madrastra", domain.KindStepParent, f},
	{"stepfather", domain.KindStepParent, m},
	{"stepmother", domain.KindStepParent, f},

	{"hijastro", domain.KindStepChild, m},
	{"hijastra", domain.KindStepChild, f},
	{"stepson", domain.KindStepChild, m},
	{"stepdaughter", domain.KindStepChild, f},
}

var socialKeywords = []Keyword{
	{"amigo", domain.KindFriend, m},
	{"amiga", domain.KindFriend, f},
	{"compadre", domain.KindFriend, m},
	{"comadre", domain.KindFriend, f},
	{"friend", domain.KindFriend, u},

	{"vecino", domain.KindNeighbor, m},
	{"vecina", domain.KindNeighbor, f},
	{"neighbor", domain.KindNeighbor, u},
	{"neighbour", domain.KindNeighbor, u},

	{"conocido", domain.KindAcquaintance, m},
	{"conocida", domain.KindAcquaintance, f},
	{"acquaintance", domain.KindAcquaintance, u},
}

var professionalKeywords = []Keyword{
	{"jefe", domain.KindBoss, m},
	{"jefa", domain.KindBoss, f},
	{"supervisor", domain.KindBoss, u},
	{"supervisora", domain.KindBoss, f},
	{"boss", domain.KindBoss, u},
	{"manager", domain.KindBoss, u},

	{"empleado", domain.KindEmployee, m},
	{"empleada", domain.KindEmployee, f},
	{"subordinado", domain.KindEmployee, m},
	{"subordinada", domain.KindEmployee, f},
	{"employee", domain.KindEmployee, u},

	{"companero de trabajo", domain.KindColleague, m},
	{"companera de trabajo", domain.KindColleague, f},
	{"colega", domain.KindColleague, u},
	{"coworker", domain.KindColleague, u},
	{"colleague", domain.KindColleague, u},

	{"trabaja en", domain.KindWorksAt, u},
	{"trabaja para", domain.KindWorksAt, u},
	{"works at", domain.KindWorksAt, u},
	{"works for", domain.KindWorksAt, u},

	{"empleador", domain.KindEmployer, m},
	{"empleadora", domain.KindEmployer, f},
	{"employer", domain.KindEmployer, u},
}

var locationKeywords = []Keyword{
	{"vive en", domain.KindResidesIn, u},
	{"reside en", domain.KindResidesIn, u},
	{"lives in", domain.KindResidesIn, u},
	{"residencia de", domain.KindResidence, u},
	{"hogar de", domain.KindResidence, u},
	{"home of", domain.KindResidence, u},

	{"nacio en", domain.KindBornIn, u},
	{"born in", domain.KindBornIn, u},
	{"lugar de nacimiento de", domain.KindBirthplace, u},
	{"birthplace of", domain.KindBirthplace, u},
}

var possessionKeywords = []Keyword{
	{"propietario", domain.KindOwner, m},
	{"propietaria", domain.KindOwner, f},
	{"dueno", domain.KindOwner, m},
	{"duena", domain.KindOwner, f},
	{"tiene", domain.KindOwner, u},
	{"posee", domain.KindOwner, u},
	{"owner", domain.KindOwner, u},
	{"owns", domain.KindOwner, u},

	{"pertenece a", domain.KindBelongsTo, u},
	{"pertenece", domain.KindBelongsTo, u},
	{"belongs to", domain.KindBelongsTo, u},
}

// categoryOrder is the matching order; the first category with a hit wins.
var categoryOrder = []domain.Category{
	domain.CategoryFamily,
	domain.CategorySocial,
	domain.CategoryProfessional,
	domain.CategoryLocation,
	domain.CategoryPossession,
}

// DefaultVocabulary returns a fresh copy of the built-in keyword tables.
func DefaultVocabulary() *Vocabulary {
	v := &Vocabulary{byCategory: make(map[domain.Category][]Keyword)}
	v.byCategory[domain.CategoryFamily] = append([]Keyword(nil), familyKeywords...)
	v.byCategory[domain.CategorySocial] = append([]Keyword(nil), socialKeywords...)
	v.byCategory[domain.CategoryProfessional] = append([]Keyword(nil), professionalKeywords...)
	v.byCategory[domain.CategoryLocation] = append([]Keyword(nil), locationKeywords...)
	v.byCategory[domain.CategoryPossession] = append([]Keyword(nil), possessionKeywords...)
	return v
}

// categoryHints maps the optional triple "type" to a category.
var categoryHints = map[string]domain.Category{
	"familia":      domain.CategoryFamily,
	"family":       domain.CategoryFamily,
	"familiar":     domain.CategoryFamily,
	"social":       domain.CategorySocial,
	"amistad":      domain.CategorySocial,
	"profesional":  domain.CategoryProfessional,
	"professional": domain.CategoryProfessional,
	"trabajo":      domain.CategoryProfessional,
	"laboral":      domain.CategoryProfessional,
	"ubicacion":    domain.CategoryLocation,
	"lugar":        domain.CategoryLocation,
	"location":     domain.CategoryLocation,
	"posesion":     domain.CategoryPossession,
	"propiedad":    domain.CategoryPossession,
	"possession":   domain.CategoryPossession,
	"otro":         domain.CategoryOther,
	"other":        domain.CategoryOther,
}
