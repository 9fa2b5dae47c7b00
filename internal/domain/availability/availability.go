// Package availability answers which tables can seat a party for a window.
// It is pure: the SQL adapters express the same predicate in their queries
// and the storage contract suite checks they agree with it.
package availability

import (
	"sort"

	"table-booking/internal/domain/reservation"
	"table-booking/internal/domain/table"

	"github.com/google/uuid"
)

// FindCandidates returns the tables that are available, seat at least
// minCapacity, and have no active reservation overlapping slot. Smallest
// capacity first, ties by table number.
func FindCandidates(
	tables []*table.Table,
	reservations []*reservation.Reservation,
	minCapacity int,
	slot reservation.TimeSlot,
) []*table.Table {
	busy := make(map[uuid.UUID]struct{})
	for _, r := range reservations {
		if r.TableID() == nil || !r.IsActive() {
			continue
		}
		if r.Slot().Overlaps(slot) {
			busy[*r.TableID()] = struct{}{}
		}
	}

	candidates := make([]*table.Table, 0, len(tables))
	for _, t := range tables {
		if !t.IsAvailable() || t.Capacity() < minCapacity {
			continue
		}
		if _, taken := busy[t.ID()]; taken {
			continue
		}
		candidates = append(candidates, t)
	}

	Sort(candidates)
	return candidates
}

// Sort orders tables by capacity ascending, then by number.
func Sort(tables []*table.Table) {
	sort.SliceStable(tables, func(i, j int) bool {
		if tables[i].Capacity() != tables[j].Capacity() {
			return tables[i].Capacity() < tables[j].Capacity()
		}
		return tables[i].Number() < tables[j].Number()
	})
}

// PickBest prefers the first exact-capacity candidate, then the smallest
// sufficient one. candidates must already be in FindCandidates order.
func PickBest(candidates []*table.Table, partySize int) (*table.Table, bool) {
	for _, t := range candidates {
		if t.Capacity() == partySize {
			return t, true
		}
	}
	for _, t := range candidates {
		if t.Capacity() >= partySize {
			return t, true
		}
	}
	return nil, false
}
