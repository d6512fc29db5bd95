// Package search filters collections by a free-text term matched against a
// chosen set of string fields.
package search

import (
	"strings"

	"github.com/samber/lo"
)

// Field reads one searchable string field from an item. ok is false when the
// field is absent on that item; absent fields never match.
type Field[T any] func(item T) (value string, ok bool)

// String builds a Field from a plain string accessor. Empty strings count as
// present, so they only match the empty term.
func String[T any](get func(T) string) Field[T] {
	return func(item T) (string, bool) {
		return get(item), true
	}
}

// Ptr builds a Field from an optional string accessor.
func Ptr[T any](get func(T) *string) Field[T] {
	return func(item T) (string, bool) {
		v := get(item)
		if v == nil {
			return "", false
		}
		return *v, true
	}
}

// Filter returns the items whose configured fields contain term as a
// case-insensitive substring. An empty term returns items unchanged.
//
// Matching lower-cases both sides and nothing else: accents are significant,
// so "perez" does not match "Pérez".
func Filter[T any](items []T, term string, fields []Field[T]) []T {
	if term == "" {
		return items
	}
	needle := strings.ToLower(term)
	return lo.Filter(items, func(item T, _ int) bool {
		return matches(item, needle, fields)
	})
}

// matches reports whether any field of item contains needle, which must
// already be lower-cased.
func matches[T any](item T, needle string, fields []Field[T]) bool {
	for _, field := range fields {
		value, ok := field(item)
		if !ok {
			continue
		}
		if strings.Contains(strings.ToLower(value), needle) {
			return true
		}
	}
	return false
}
