// Package canon turns raw entity mentions into stable per-user keys.
package canon

import (
	"strings"
	"unicode"

	"github.com/Harshitk-cp/relgraph/internal/domain"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// selfTokens are the first-person mentions that resolve to the conversation owner.
var selfTokens = map[string]bool{
	"yo":    true,
	"me":    true,
	"mi":    true,
	"mío":   true,
	"mía":   true,
	"mio":   true,
	"mia":   true,
	"@self": true,
}

type Canonicalizer struct {
	foldDiacritics bool
}

// New returns a canonicalizer. With foldDiacritics set, "María" and "maria"
// collapse to the same key; the limitation that two different people sharing a
// name collapse too is accepted.
func New(foldDiacritics bool) *Canonicalizer {
	return &Canonicalizer{foldDiacritics: foldDiacritics}
}

// Canonicalize never fails: unknown input becomes its own entity. An input that
// is empty after cleanup yields an entity with an empty key, which the writer
// rejects. userID is accepted for scoping symmetry; keys are only ever compared
// within one user's graph.
func (c *Canonicalizer) Canonicalize(userID, raw string) domain.Entity {
	name := collapseSpaces(stripControl(raw))
	key := strings.ToLower(name)
	folded := Fold(key)
	// Self mentions match regardless of accents, even when keys keep them.
	if selfTokens[key] || selfTokens[folded] {
		return domain.Entity{Key: domain.SelfKey, Name: name}
	}
	if c.foldDiacritics {
		key = folded
	}
	return domain.Entity{Key: key, Name: name}
}

// Key is Canonicalize without the display name.
func (c *Canonicalizer) Key(userID, raw string) string {
	return c.Canonicalize(userID, raw).Key
}

var foldChain = func() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Fold strips combining marks: "cuñada" becomes "cunada", "tío" becomes "tio".
func Fold(s string) string {
	out, _, err := transform.String(foldChain(), s)
	if err != nil {
		return s
	}
	return out
}

func stripControl(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) && r != '\t' && r != '\n' {
			return -1
		}
		return r
	}, s)
}

func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
