package state

import (
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// NewID returns a unique, time-ordered identifier. It never fails: if the
// v7 generator errors, a random v4 id is returned instead.
func NewID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// NormalizeName folds a display name for case-insensitive matching.
// Names are composed to NFC first so that Vietnamese diacritics typed in
// different forms compare equal.
func NormalizeName(s string) string {
	return cases.Fold().String(norm.NFC.String(strings.TrimSpace(s)))
}

func trimSpace(s string) string { return strings.TrimSpace(s) }

// idSet tracks identifiers already in use within one collection.
type idSet map[string]struct{}

func newIDSet[T any](items []T, id func(T) string) idSet {
	s := make(idSet, len(items))
	for _, it := range items {
		if v := id(it); v != "" {
			s[v] = struct{}{}
		}
	}
	return s
}

// claim returns want if it is non-empty and free, otherwise a fresh id.
// The returned id is marked as taken.
func (s idSet) claim(want string) string {
	want = trimSpace(want)
	if want == "" {
		want = NewID()
	}
	if _, taken := s[want]; taken {
		want = NewID()
	}
	s[want] = struct{}{}
	return want
}
