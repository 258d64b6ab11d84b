package world

import (
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Normalize case-folds s and strips diacritics so "Puerta" matches "puérta".
func Normalize(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		stripped = strings.TrimSpace(s)
	}
	return cases.Fold().String(stripped)
}

// Matches returns every candidate whose normalized form contains the
// normalized fragment, in candidate order.
func Matches(fragment string, candidates []string) []string {
	var out []string
	for _, i := range matchIndexes(fragment, candidates) {
		out = append(out, candidates[i])
	}
	return out
}

func matchIndexes(fragment string, candidates []string) []int {
	needle := Normalize(fragment)
	var hits []int
	for i, c := range candidates {
		if strings.Contains(Normalize(c), needle) {
			hits = append(hits, i)
		}
	}
	return hits
}

// Resolve returns the index of the single candidate matching fragment.
// When no candidate contains the whole fragment, a trailing " #N" picks the
// N-th (1-based) member of the match set of the rest.
func Resolve(fragment string, candidates []string) (int, error) {
	hits := matchIndexes(fragment, candidates)
	if len(hits) == 0 {
		if base, nth := splitOrdinal(fragment); nth > 0 {
			hits = matchIndexes(base, candidates)
			if nth > len(hits) {
				return -1, ErrNotFound
			}
			return hits[nth-1], nil
		}
	}
	switch len(hits) {
	case 0:
		return -1, ErrNotFound
	case 1:
		return hits[0], nil
	default:
		return -1, ErrAmbiguous
	}
}

// splitOrdinal separates a trailing "#N" selector from fragment. nth is 0
// when there is none.
func splitOrdinal(fragment string) (string, int) {
	trimmed := strings.TrimSpace(fragment)
	idx := strings.LastIndex(trimmed, "#")
	if idx < 0 || idx == len(trimmed)-1 {
		return trimmed, 0
	}
	n, err := strconv.Atoi(trimmed[idx+1:])
	if err != nil || n < 1 {
		return trimmed, 0
	}
	return strings.TrimSpace(trimmed[:idx]), n
}

// ResolveExit finds the exit of r named by fragment.
func ResolveExit(r *Room, fragment string) (*Exit, error) {
	idx, err := Resolve(fragment, r.ExitNames())
	if err != nil {
		return nil, err
	}
	return r.Exits[idx], nil
}

// ResolveItem finds the item of items named by fragment.
func ResolveItem(items []*Item, fragment string) (*Item, error) {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	idx, err := Resolve(fragment, names)
	if err != nil {
		return nil, err
	}
	return items[idx], nil
}
