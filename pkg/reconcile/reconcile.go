// Package reconcile computes the add/remove delta between a current and a
// desired set of linked-entity IDs. It is used for every many-to-many
// relation in the system (manager-branch, warehouse-branch, supplier-branch,
// supplier-manager, manager-warehouse).
package reconcile

import "github.com/google/uuid"

// Delta is the result of diffing current against desired assignments.
type Delta struct {
	ToAdd    []uuid.UUID
	ToRemove []uuid.UUID
}

// Empty reports whether the delta contains no work.
func (d Delta) Empty() bool {
	return len(d.ToAdd) == 0 && len(d.ToRemove) == 0
}

// Diff returns desired−current as ToAdd and current−desired as ToRemove.
// Inputs are deduplicated first; callers may pass raw form payloads without
// cleaning them. Diff(S, S) yields an empty delta. No ordering guarantee.
func Diff(current, desired []uuid.UUID) Delta {
	cur := toSet(current)
	des := toSet(desired)

	var d Delta
	for id := range des {
		if _, ok := cur[id]; !ok {
			d.ToAdd = append(d.ToAdd, id)
		}
	}
	for id := range cur {
		if _, ok := des[id]; !ok {
			d.ToRemove = append(d.ToRemove, id)
		}
	}
	return d
}

func toSet(ids []uuid.UUID) map[uuid.UUID]struct{} {
	set := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
