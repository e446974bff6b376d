// Package relation holds the relation vocabulary, the inverse rule table and the
// composition rules used by inference. Everything here is static data plus the
// lookups over it; nothing touches storage.
package relation

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/Harshitk-cp/relgraph/internal/canon"
	"github.com/Harshitk-cp/relgraph/internal/domain"
)

// Vocabulary is the per-category keyword table used by Normalize.
type Vocabulary struct {
	byCategory map[domain.Category][]Keyword
}

// Add registers an extra keyword. The keyword's kind must be known and must
// belong to category.
func (v *Vocabulary) Add(category domain.Category, kw Keyword) error {
	info, ok := kinds[kw.Kind]
	if !ok {
		return fmt.Errorf("unknown relation kind %q", kw.Kind)
	}
	if info.Category != category {
		return fmt.Errorf("relation kind %q belongs to %s, not %s", kw.Kind, info.Category, category)
	}
	text := strings.Join(tokenize(kw.Text), " ")
	if text == "" {
		return fmt.Errorf("empty keyword for kind %q", kw.Kind)
	}
	kw.Text = text
	v.byCategory[category] = append(v.byCategory[category], kw)
	return nil
}

// Keywords returns the keywords registered for category.
func (v *Vocabulary) Keywords(category domain.Category) []Keyword {
	return v.byCategory[category]
}

// Match finds the keyword for raw: categories are tried in a fixed order and the
// first one with any hit wins; inside it the longest keyword wins.
func (v *Vocabulary) Match(raw string) (Keyword, domain.Category, bool) {
	tokens := tokenize(raw)
	if len(tokens) == 0 {
		return Keyword{}, "", false
	}
	for _, cat := range categoryOrder {
		var best Keyword
		found := false
		for _, kw := range v.byCategory[cat] {
			if !containsPhrase(tokens, strings.Fields(kw.Text)) {
				continue
			}
			if !found || len(kw.Text) > len(best.Text) {
				best = kw
				found = true
			}
		}
		if found {
			return best, cat, true
		}
	}
	return Keyword{}, "", false
}

type Normalizer struct {
	vocab *Vocabulary
}

func NewNormalizer(vocab *Vocabulary) *Normalizer {
	if vocab == nil {
		vocab = DefaultVocabulary()
	}
	return &Normalizer{vocab: vocab}
}

// Normalize maps a raw relation label to a canonical relation and its category.
// Unknown vocabulary is not an error: it becomes Generic(raw) in CategoryOther.
// An empty label yields an empty generic relation.
func (n *Normalizer) Normalize(raw string) (domain.Relation, domain.Category) {
	return n.NormalizeWithHint(raw, "")
}

// NormalizeWithHint is Normalize with the optional category hint carried by a
// triple. The hint only ever applies to generic relations.
func (n *Normalizer) NormalizeWithHint(raw, hint string) (domain.Relation, domain.Category) {
	if kw, _, ok := n.vocab.Match(raw); ok {
		r := domain.Relation{Kind: kw.Kind, Gender: kw.Gender}
		return r, CategoryOf(r)
	}
	r := domain.Generic(strings.ToLower(strings.Join(strings.Fields(raw), " ")))
	if cat, ok := ParseCategoryHint(hint); ok {
		return r, cat
	}
	return r, domain.CategoryOther
}

// ParseCategoryHint maps the optional triple type ("familia", "social", ...) to a
// category.
func ParseCategoryHint(hint string) (domain.Category, bool) {
	key := strings.Join(tokenize(hint), " ")
	if key == "" {
		return "", false
	}
	if cat, ok := categoryHints[key]; ok {
		return cat, true
	}
	if domain.ValidCategory(key) {
		return domain.Category(key), true
	}
	return "", false
}

// tokenize lower-cases, folds diacritics and splits on anything that is not a
// letter or digit, so "Hermana_mayor" and "hermana-mayor" both give
// ["hermana", "mayor"].
func tokenize(s string) []string {
	s = canon.Fold(strings.ToLower(s))
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// containsPhrase reports whether phrase occurs in tokens as consecutive whole
// words. A token also matches its plural ("hermanos", "padres").
func containsPhrase(tokens, phrase []string) bool {
	if len(phrase) == 0 || len(phrase) > len(tokens) {
		return false
	}
	for i := 0; i+len(phrase) <= len(tokens); i++ {
		ok := true
		for j, w := range phrase {
			if !wordMatches(tokens[i+j], w) {
				ok = false
				break
			}
		}
		if ok {
			return true
		}
	}
	return false
}

func wordMatches(token, word string) bool {
	return token == word || token == word+"s" || token == word+"es"
}
