package reconcile

import (
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func at(s string) *time.Time {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		panic(err)
	}
	return &t
}

func june() *Window {
	return &Window{
		Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC),
	}
}

func TestCountOrdersReleasedWithSizeCode(t *testing.T) {
	orders := []OrderRecord{{
		ID:        "o1",
		Status:    OrderCompleted,
		Items:     LineItems{{Name: "Polo", Size: "Small (S)", Quantity: 2}},
		CreatedAt: at("2024-05-20T08:00:00Z"),
		UpdatedAt: at("2024-06-10T15:30:00Z"),
	}}
	counts := CountOrders("Polo", "Small", orders, june())
	require.Equal(t, OrderCounts{Released: 1}, counts)
}

func TestCountOrdersBuckets(t *testing.T) {
	line := LineItems{{Name: "polo", Size: "small"}}
	orders := []OrderRecord{
		{ID: "1", Status: OrderPending, Items: line, CreatedAt: at("2024-06-02T00:00:00Z")},
		{ID: "2", Status: "Processing", Items: line, CreatedAt: at("2024-06-03T00:00:00Z")},
		{ID: "3", Status: OrderClaimed, Items: line, ClaimedDate: at("2024-06-04T00:00:00Z")},
		{ID: "4", Status: OrderCancelled, Items: line, CreatedAt: at("2024-06-05T00:00:00Z")},
		{ID: "5", Status: "refunded", Items: line, CreatedAt: at("2024-06-05T00:00:00Z")},
	}
	require.Equal(t, OrderCounts{Unreleased: 2, Released: 1}, CountOrders("Polo", "Small", orders, june()))
}

func TestCountOrdersOncePerOrder(t *testing.T) {
	orders := []OrderRecord{{
		ID:     "1",
		Status: OrderPending,
		Items: LineItems{
			{Name: "Polo", Size: "Small"},
			{Name: "POLO", Size: "Small (S)"},
		},
		CreatedAt: at("2024-06-02T00:00:00Z"),
	}}
	require.Equal(t, 1, CountOrders("Polo", "Small", orders, nil).Unreleased)
}

func TestCountOrdersWindowBoundaries(t *testing.T) {
	line := LineItems{{Name: "Polo", Size: "M"}}
	orders := []OrderRecord{
		{ID: "first-day", Status: OrderPending, Items: line, CreatedAt: at("2024-06-01T00:00:00Z")},
		{ID: "last-day-late", Status: OrderPending, Items: line, CreatedAt: at("2024-06-30T23:59:59Z")},
		{ID: "before", Status: OrderPending, Items: line, CreatedAt: at("2024-05-31T23:59:59Z")},
		{ID: "after", Status: OrderPending, Items: line, CreatedAt: at("2024-07-01T00:00:00Z")},
	}
	require.Equal(t, 2, CountOrders("Polo", "M", orders, june()).Unreleased)
	require.Equal(t, 4, CountOrders("Polo", "M", orders, nil).Unreleased)
}

func TestCountOrdersReleasedDatePriority(t *testing.T) {
	line := LineItems{{Name: "Polo", Size: "M"}}
	orders := []OrderRecord{
		// updatedAt wins even though createdAt is inside the window.
		{ID: "a", Status: OrderCompleted, Items: line, CreatedAt: at("2024-06-05T00:00:00Z"), UpdatedAt: at("2024-07-05T00:00:00Z")},
		// completion timestamp used when updatedAt is missing.
		{ID: "b", Status: OrderCompleted, Items: line, CreatedAt: at("2024-05-05T00:00:00Z"), CompletedAt: at("2024-06-05T00:00:00Z")},
		// createdAt is the last resort.
		{ID: "c", Status: OrderClaimed, Items: line, CreatedAt: at("2024-06-06T00:00:00Z")},
	}
	require.Equal(t, OrderCounts{Released: 2}, CountOrders("Polo", "M", orders, june()))
}

func TestCountOrdersMissingDates(t *testing.T) {
	orders := []OrderRecord{
		{ID: "1", Status: OrderPending, Items: LineItems{{Name: "Polo", Size: "M"}}},
		{ID: "2", Status: OrderCompleted, Items: LineItems{{Name: "Polo", Size: "M"}}},
	}
	require.Equal(t, OrderCounts{}, CountOrders("Polo", "M", orders, june()))
	require.Equal(t, OrderCounts{Unreleased: 1, Released: 1}, CountOrders("Polo", "M", orders, nil))
}

func TestCountOrdersIgnoresOtherSizes(t *testing.T) {
	orders := []OrderRecord{{
		ID:        "1",
		Status:    OrderPending,
		Items:     LineItems{{Name: "Polo", Size: "Medium (M)"}},
		CreatedAt: at("2024-06-02T00:00:00Z"),
	}}
	require.Equal(t, OrderCounts{}, CountOrders("Polo", "Small", orders, nil))
}

func TestOrderIndexMatchesScan(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	names := []string{"Polo", " polo", "Skirt", "Necktie"}
	sizes := []string{"Small", "Small (S)", "Medium", "M", ""}
	statuses := []OrderStatus{OrderPending, OrderProcessing, OrderCompleted, OrderClaimed, OrderCancelled, "unknown"}
	base := time.Date(2024, time.May, 20, 0, 0, 0, 0, time.UTC)

	orders := make([]OrderRecord, 0, 300)
	for i := 0; i < 300; i++ {
		lines := make(LineItems, rng.Intn(4))
		for j := range lines {
			lines[j] = OrderLineItem{Name: names[rng.Intn(len(names))], Size: sizes[rng.Intn(len(sizes))], Quantity: 1}
		}
		o := OrderRecord{ID: fmt.Sprint(i), Status: statuses[rng.Intn(len(statuses))], Items: lines}
		if rng.Intn(5) > 0 {
			created := base.Add(time.Duration(rng.Intn(60*24)) * time.Hour)
			o.CreatedAt = &created
		}
		if rng.Intn(2) == 0 {
			updated := base.Add(time.Duration(rng.Intn(60*24)) * time.Hour)
			o.UpdatedAt = &updated
		}
		orders = append(orders, o)
	}

	idx := NewOrderIndex(orders)
	for _, w := range []*Window{nil, june()} {
		for _, name := range names {
			for _, size := range sizes {
				require.Equal(t, CountOrders(name, size, orders, w), idx.Count(name, size, w), "%s/%s", name, size)
			}
		}
	}
}

func TestWindowContains(t *testing.T) {
	var nilWindow *Window
	require.True(t, nilWindow.Contains(nil))
	require.False(t, june().Contains(nil))
	open := &Window{Start: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC)}
	require.True(t, open.Contains(at("2030-01-01T00:00:00Z")))
}

func TestWindowContainsComparesUTCDays(t *testing.T) {
	// 02:00 on June 1st in UTC+5 is still May 31st in UTC.
	early := at("2024-06-01T02:00:00+05:00")
	require.False(t, june().Contains(early))

	// 22:00 on June 30th in UTC-4 is already July 1st in UTC.
	late := at("2024-06-30T22:00:00-04:00")
	require.False(t, june().Contains(late))

	inside := at("2024-06-01T08:00:00+05:00")
	require.True(t, june().Contains(inside))

	orders := []OrderRecord{{ID: "1", Status: OrderPending, Items: LineItems{{Name: "Polo", Size: "Small"}}, CreatedAt: early}}
	require.Equal(t, OrderCounts{}, CountOrders("Polo", "Small", orders, june()))
}
