package reconcile

const (
	// ReorderPointMin is the inclusive lower bound of the reorder band.
	ReorderPointMin = 20
	// ReorderPointMax is the exclusive upper bound of the reorder band.
	ReorderPointMax = 50
)

// ComputeHealth counts stock units over active items. An item whose note
// embeds size variations contributes one unit per variation, otherwise the
// item is a single unit.
func ComputeHealth(items []ItemRecord) InventoryHealthStats {
	var stats InventoryHealthStats
	for _, item := range items {
		if !item.Active() {
			continue
		}
		if units, ok := ParseNote(item.Note).Units(); ok {
			for _, u := range units {
				stats.add(u.Stock)
			}
			continue
		}
		stats.add(item.Stock)
	}
	return stats
}

func (s *InventoryHealthStats) add(stock int) {
	s.TotalItemVariants++
	switch {
	case stock == 0:
		s.OutOfStock++
	case stock >= ReorderPointMin && stock < ReorderPointMax:
		s.AtReorderPoint++
	}
}
