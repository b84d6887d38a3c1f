// Package changeset computes field-level diffs between two flat snapshots of
// an entity. The resulting change list is shown to the user before an edit is
// committed and embedded into the audit record alongside the change reason.
package changeset

import (
	"fmt"
	"reflect"
	"sort"
)

// FieldChange records one changed field.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue any    `json:"old_value"`
	NewValue any    `json:"new_value"`
}

// Diff compares two flat maps and returns the list of changed fields, sorted
// by field name. Only top-level values are compared. Slices are compared by
// value-set equality: a reordered but otherwise equal slice is not a change.
// Keys present only in new are reported as a change from nil.
func Diff(oldFlat, newFlat map[string]any) []FieldChange {
	var changes []FieldChange
	for field, newVal := range newFlat {
		oldVal, ok := oldFlat[field]
		if !ok {
			changes = append(changes, FieldChange{Field: field, OldValue: nil, NewValue: newVal})
			continue
		}
		if !equal(oldVal, newVal) {
			changes = append(changes, FieldChange{Field: field, OldValue: oldVal, NewValue: newVal})
		}
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Field < changes[j].Field })
	return changes
}

func equal(a, b any) bool {
	av := reflect.ValueOf(a)
	bv := reflect.ValueOf(b)
	if av.Kind() == reflect.Slice && bv.Kind() == reflect.Slice {
		return sliceSetEqual(av, bv)
	}
	return reflect.DeepEqual(a, b)
}

// sliceSetEqual compares two slices as multiset-insensitive value sets.
// Elements are keyed by their string form, which is sufficient for the ID
// lists and scalar arrays that flow through entity forms.
func sliceSetEqual(a, b reflect.Value) bool {
	as := make(map[string]struct{}, a.Len())
	for i := 0; i < a.Len(); i++ {
		as[fmt.Sprint(a.Index(i).Interface())] = struct{}{}
	}
	bs := make(map[string]struct{}, b.Len())
	for i := 0; i < b.Len(); i++ {
		bs[fmt.Sprint(b.Index(i).Interface())] = struct{}{}
	}
	if len(as) != len(bs) {
		return false
	}
	for k := range as {
		if _, ok := bs[k]; !ok {
			return false
		}
	}
	return true
}
