package schedule

import (
	"sort"

	"github.com/google/uuid"
)

// Inventory indexes the table set for a single detection run.
type Inventory struct {
	tables   map[uuid.UUID]*Table
	bySize   []*Table
	maxCap   int
	totalCap int
}

// NewInventory builds the lookup once per run. The table slice is not
// mutated; nil entries and tables without a valid id are skipped.
func NewInventory(tables []*Table) *Inventory {
	inv := &Inventory{
		tables: make(map[uuid.UUID]*Table, len(tables)),
	}

	for _, t := range tables {
		if t == nil || t.ID == uuid.Nil {
			continue
		}
		inv.tables[t.ID] = t
		inv.bySize = append(inv.bySize, t)
		inv.totalCap += t.Capacity
		if t.Capacity > inv.maxCap {
			inv.maxCap = t.Capacity
		}
	}

	sort.Slice(inv.bySize, func(i, j int) bool {
		if inv.bySize[i].Capacity != inv.bySize[j].Capacity {
			return inv.bySize[i].Capacity < inv.bySize[j].Capacity
		}
		return inv.bySize[i].ID.String() < inv.bySize[j].ID.String()
	})

	return inv
}

// CapacityOf returns the capacity of a table, and whether the table exists.
func (inv *Inventory) CapacityOf(id uuid.UUID) (int, bool) {
	t, ok := inv.tables[id]
	if !ok {
		return 0, false
	}
	return t.Capacity, true
}

// MaxCapacity is the largest single-table capacity, 0 for an empty inventory.
func (inv *Inventory) MaxCapacity() int {
	return inv.maxCap
}

// TotalCapacity is the venue-wide sum of table capacities.
func (inv *Inventory) TotalCapacity() int {
	return inv.totalCap
}

// Len reports the number of indexed tables.
func (inv *Inventory) Len() int {
	return len(inv.tables)
}

// SmallestFitting returns the lowest-capacity table seating at least guests,
// skipping the excluded table. Ties break on table id so repeated runs pick
// the same target.
func (inv *Inventory) SmallestFitting(guests int, exclude *uuid.UUID) (*Table, bool) {
	for _, t := range inv.bySize {
		if exclude != nil && t.ID == *exclude {
			continue
		}
		if t.Capacity >= guests {
			return t, true
		}
	}
	return nil, false
}
