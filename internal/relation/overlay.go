package relation

import (
	"fmt"
	"os"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"gopkg.in/yaml.v3"
)

// overlayEntry is one keyword in a vocabulary overlay file:
//
//	family:
//	  - keyword: hermanastro
//	    kind: sibling
//	    gender: male
type overlayEntry struct {
	Keyword string `yaml:"keyword"`
	Kind    string `yaml:"kind"`
	Gender  string `yaml:"gender"`
}

// LoadOverlay reads a YAML overlay from path and adds its keywords to v.
func LoadOverlay(path string, v *Vocabulary) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read vocabulary overlay: %w", err)
	}
	return ApplyOverlay(data, v)
}

// ApplyOverlay adds the keywords of a YAML overlay document to v. Nothing is
// added when any entry is invalid.
func ApplyOverlay(data []byte, v *Vocabulary) (int, error) {
	var doc map[string][]overlayEntry
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return 0, fmt.Errorf("parse vocabulary overlay: %w", err)
	}

	type pending struct {
		category domain.Category
		kw       Keyword
	}
	var adds []pending
	for cat, entries := range doc {
		if !domain.ValidCategory(cat) || domain.Category(cat) == domain.CategoryOther {
			return 0, fmt.Errorf("vocabulary overlay: unknown category %q", cat)
		}
		for i, e := range entries {
			g, err := parseGender(e.Gender)
			if err != nil {
				return 0, fmt.Errorf("vocabulary overlay: %s[%d]: %w", cat, i, err)
			}
			adds = append(adds, pending{
				category: domain.Category(cat),
				kw:       Keyword{Text: e.Keyword, Kind: domain.RelationKind(e.Kind), Gender: g},
			})
		}
	}

	scratch := &Vocabulary{byCategory: make(map[domain.Category][]Keyword)}
	for _, p := range adds {
		if err := scratch.Add(p.category, p.kw); err != nil {
			return 0, fmt.Errorf("vocabulary overlay: %w", err)
		}
	}
	for cat, kws := range scratch.byCategory {
		v.byCategory[cat] = append(v.byCategory[cat], kws...)
	}
	return len(adds), nil
}

func parseGender(s string) (domain.Gender, error) {
	switch s {
	case "", "unknown":
		return domain.GenderUnknown, nil
	case "male", "m":
		return domain.GenderMale, nil
	case "female", "f":
		return domain.GenderFemale, nil
	}
	return domain.GenderUnknown, fmt.Errorf("unknown gender %q", s)
}
