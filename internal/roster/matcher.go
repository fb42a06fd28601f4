package roster

import "strings"

// Matcher resolves a schedule name to a roster email. Implementations are
// best-effort and may mismatch.
type Matcher interface {
	Match(name string) (email string, ok bool)
}

type indexedPerson struct {
	normalized string
	words      []string
	email      string
}

// NameMatcher matches names in three passes: exact normalized name, then
// every significant word of the query present as a whole word, then at
// least two significant words in common. Words of two letters or fewer are
// not significant. Comparison ignores case and accents.
type NameMatcher struct {
	people []indexedPerson
}

// NewNameMatcher indexes people in the given order; earlier entries win ties.
func NewNameMatcher(people []Person) *NameMatcher {
	m := &NameMatcher{people: make([]indexedPerson, 0, len(people))}
	for _, p := range people {
		n := normalize(p.Name)
		m.people = append(m.people, indexedPerson{
			normalized: n,
			words:      strings.Fields(n),
			email:      p.Email,
		})
	}
	return m
}

// Match implements Matcher.
func (m *NameMatcher) Match(name string) (string, bool) {
	query := normalize(name)
	if query == "" {
		return "", false
	}
	for _, p := range m.people {
		if p.normalized == query {
			return p.email, true
		}
	}

	var significant []string
	for _, w := range strings.Fields(query) {
		if len([]rune(w)) > 2 {
			significant = append(significant, w)
		}
	}
	if len(significant) == 0 {
		return "", false
	}

	for _, p := range m.people {
		if countShared(significant, p.words) == len(significant) {
			return p.email, true
		}
	}
	if len(significant) >= 2 {
		for _, p := range m.people {
			if countShared(significant, p.words) >= 2 {
				return p.email, true
			}
		}
	}
	return "", false
}

func countShared(query, words []string) int {
	n := 0
	for _, q := range query {
		for _, w := range words {
			if q == w {
				n++
				break
			}
		}
	}
	return n
}
