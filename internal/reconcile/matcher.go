package reconcile

import (
	"strings"
	"time"
)

type bucket int

const (
	bucketNone bucket = iota
	bucketUnreleased
	bucketReleased
)

func classify(status OrderStatus) bucket {
	switch OrderStatus(strings.ToLower(strings.TrimSpace(string(status)))) {
	case OrderPending, OrderProcessing:
		return bucketUnreleased
	case OrderCompleted, OrderClaimed:
		return bucketReleased
	default:
		return bucketNone
	}
}

// comparisonDate picks the date an order is windowed on. Released orders use
// the first present of updatedAt, completedAt, claimedDate, createdAt.
func comparisonDate(o OrderRecord, b bucket) *time.Time {
	if b == bucketReleased {
		for _, d := range []*time.Time{o.UpdatedAt, o.CompletedAt, o.ClaimedDate, o.CreatedAt} {
			if d != nil && !d.IsZero() {
				return d
			}
		}
		return nil
	}
	if o.CreatedAt != nil && !o.CreatedAt.IsZero() {
		return o.CreatedAt
	}
	return nil
}

// Contains reports whether t falls inside the window at day granularity.
// A nil window contains everything; a nil date is outside any window.
func (w *Window) Contains(t *time.Time) bool {
	if w == nil {
		return true
	}
	if t == nil {
		return false
	}
	day := truncateDay(*t)
	if !w.Start.IsZero() && day.Before(truncateDay(w.Start)) {
		return false
	}
	if !w.End.IsZero() && day.After(truncateDay(w.End)) {
		return false
	}
	return true
}

// truncateDay maps t to its UTC calendar day.
func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func orderMatches(o OrderRecord, nameKey, sizeKey string) bool {
	for _, line := range o.Items {
		if NormalizeName(line.Name) == nameKey && NormalizeSize(line.Size) == sizeKey {
			return true
		}
	}
	return false
}

func tally(counts *OrderCounts, o OrderRecord, w *Window) {
	b := classify(o.Status)
	if b == bucketNone {
		return
	}
	if !w.Contains(comparisonDate(o, b)) {
		return
	}
	if b == bucketReleased {
		counts.Released++
		return
	}
	counts.Unreleased++
}

// CountOrders counts the orders referencing an item-size, each order at most once.
// It scans every order; ReconcileAll uses OrderIndex instead.
func CountOrders(itemName, itemSize string, orders []OrderRecord, w *Window) OrderCounts {
	nameKey := NormalizeName(itemName)
	sizeKey := NormalizeSize(itemSize)
	var counts OrderCounts
	for _, o := range orders {
		if orderMatches(o, nameKey, sizeKey) {
			tally(&counts, o, w)
		}
	}
	return counts
}

type lineKey struct {
	name string
	size string
}

// OrderIndex maps normalized (name, size) pairs to the orders that mention them.
type OrderIndex struct {
	orders []OrderRecord
	byKey  map[lineKey][]int
}

// NewOrderIndex indexes orders once so item lookups do not rescan the order set.
func NewOrderIndex(orders []OrderRecord) *OrderIndex {
	idx := &OrderIndex{orders: orders, byKey: make(map[lineKey][]int)}
	for pos, o := range orders {
		seen := make(map[lineKey]struct{}, len(o.Items))
		for _, line := range o.Items {
			k := lineKey{name: NormalizeName(line.Name), size: NormalizeSize(line.Size)}
			if _, dup := seen[k]; dup {
				continue
			}
			seen[k] = struct{}{}
			idx.byKey[k] = append(idx.byKey[k], pos)
		}
	}
	return idx
}

// Count returns the same result as CountOrders over the indexed orders.
func (idx *OrderIndex) Count(itemName, itemSize string, w *Window) OrderCounts {
	var counts OrderCounts
	if idx == nil {
		return counts
	}
	k := lineKey{name: NormalizeName(itemName), size: NormalizeSize(itemSize)}
	for _, pos := range idx.byKey[k] {
		tally(&counts, idx.orders[pos], w)
	}
	return counts
}
