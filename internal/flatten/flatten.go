// Package flatten turns nested extraction JSON into ordered field records.
package flatten

import (
	"strings"
	"unicode"

	"ogarx/internal/domain"
	"ogarx/internal/jsonvalue"
)

// ListSeparator joins the elements of a list value into one field value.
const ListSeparator = ", "

// Flatten walks v depth-first in key order and emits one record per
// non-object leaf. The category is derived once from the top-level key and
// inherited unchanged by everything below it. Lists are a single leaf: their
// elements are joined with ListSeparator and never descended into.
//
// Returned records carry no source metadata.
func Flatten(v jsonvalue.Value, parentField, parentCategory string) []domain.FlatRecord {
	if !v.IsObject() {
		return []domain.FlatRecord{{
			Category: parentCategory,
			Field:    parentField,
			Value:    Stringify(v),
		}}
	}

	var out []domain.FlatRecord
	for _, m := range v.Fields() {
		category := parentCategory
		if category == "" {
			category = CategoryLabel(m.Key)
		}
		if m.Value.IsObject() {
			out = append(out, Flatten(m.Value, m.Key, category)...)
			continue
		}
		out = append(out, domain.FlatRecord{
			Category: category,
			Field:    m.Key,
			Value:    Stringify(m.Value),
		})
	}
	return out
}

// Paths is the two-column variant: every leaf is named by its dotted key
// path (vehicule.details.couleur) and no category is set.
func Paths(v jsonvalue.Value, parentKey string) []domain.FlatRecord {
	if !v.IsObject() {
		return []domain.FlatRecord{{Field: parentKey, Value: Stringify(v)}}
	}

	var out []domain.FlatRecord
	for _, m := range v.Fields() {
		key := m.Key
		if parentKey != "" {
			key = parentKey + "." + m.Key
		}
		if m.Value.IsObject() {
			out = append(out, Paths(m.Value, key)...)
			continue
		}
		out = append(out, domain.FlatRecord{Field: key, Value: Stringify(m.Value)})
	}
	return out
}

// Stringify renders a leaf. Lists are joined element by element; an empty
// list gives the empty string. Objects inside a list come out as compact
// JSON, so their fields are not addressable in the output.
func Stringify(v jsonvalue.Value) string {
	if v.Kind() != jsonvalue.Array {
		return v.Text()
	}
	parts := make([]string, 0, v.Len())
	for _, item := range v.Items() {
		parts = append(parts, item.Text())
	}
	return strings.Join(parts, ListSeparator)
}

// CategoryLabel converts a JSON key into a display label: underscores become
// spaces and each word is title-cased ("informations_compagnie" ->
// "Informations Compagnie"). A letter is upper-cased when it follows a
// character without case, and lower-cased otherwise.
func CategoryLabel(key string) string {
	var b strings.Builder
	b.Grow(len(key))
	prevCased := false
	for _, r := range strings.ReplaceAll(key, "_", " ") {
		if isCased(r) {
			if prevCased {
				b.WriteRune(unicode.ToLower(r))
			} else {
				b.WriteRune(unicode.ToTitle(r))
			}
			prevCased = true
			continue
		}
		b.WriteRune(r)
		prevCased = false
	}
	return b.String()
}

func isCased(r rune) bool {
	return unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
}
