package reconcile

import "github.com/shopspring/decimal"

// Reconcile derives the ledger row for one item from its order counts.
// EndingInventory is reported as computed, negative values included; only
// Available is floored at zero.
func Reconcile(item ItemRecord, counts OrderCounts) ReconciledRow {
	ending := item.BeginningInventory + item.Purchases - counts.Released + item.Returns
	available := ending - counts.Unreleased
	if available < 0 {
		available = 0
	}

	unitPrice := item.UnitPrice
	if unitPrice.IsZero() {
		unitPrice = item.Price
	}
	total := item.TotalAmount
	if total.IsZero() {
		total = unitPrice.Mul(decimal.NewFromInt(int64(ending)))
	}

	return ReconciledRow{
		ItemID:             item.ID,
		Name:               orDefault(item.Name, DefaultItemName),
		Size:               orDefault(item.Size, DefaultSize),
		BeginningInventory: item.BeginningInventory,
		Unreleased:         counts.Unreleased,
		Purchases:          item.Purchases,
		Released:           counts.Released,
		Returns:            item.Returns,
		Available:          available,
		EndingInventory:    ending,
		UnitPrice:          unitPrice,
		TotalAmount:        total,
		Status:             StatusFor(available),
	}
}

// ReconcileAll produces one row per item, in input order, indexing the orders once.
func ReconcileAll(items []ItemRecord, orders []OrderRecord, w *Window) []ReconciledRow {
	idx := NewOrderIndex(orders)
	rows := make([]ReconciledRow, 0, len(items))
	for _, item := range items {
		rows = append(rows, Reconcile(item, idx.Count(item.Name, item.Size, w)))
	}
	return rows
}

// StatusFor maps a stock quantity onto its stock band.
func StatusFor(stock int) StockStatus {
	switch {
	case stock <= 0:
		return StatusOutOfStock
	case stock < ReorderPointMin:
		return StatusCritical
	case stock < ReorderPointMax:
		return StatusAtReorderPoint
	default:
		return StatusAboveThreshold
	}
}
