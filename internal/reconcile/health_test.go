package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestComputeHealthEmbeddedVariations(t *testing.T) {
	items := []ItemRecord{{
		ID:    "1",
		Stock: 99,
		Note:  `{"kind":"sizeVariations","variations":[{"size":"S","stock":0},{"size":"M","stock":25}]}`,
	}}
	require.Equal(t, InventoryHealthStats{TotalItemVariants: 2, OutOfStock: 1, AtReorderPoint: 1}, ComputeHealth(items))
}

func TestComputeHealthBands(t *testing.T) {
	items := []ItemRecord{
		{ID: "1", Stock: 0},
		{ID: "2", Stock: 19},
		{ID: "3", Stock: 20},
		{ID: "4", Stock: 49},
		{ID: "5", Stock: 50},
		{ID: "6", Stock: 3, Note: "restock before June"},
	}
	require.Equal(t, InventoryHealthStats{TotalItemVariants: 6, OutOfStock: 1, AtReorderPoint: 2}, ComputeHealth(items))
}

func TestComputeHealthSkipsInactive(t *testing.T) {
	inactive := false
	active := true
	items := []ItemRecord{
		{ID: "1", Stock: 0, IsActive: &inactive, Note: `{"kind":"sizeVariations","variations":[{"size":"S","stock":0}]}`},
		{ID: "2", Stock: 0, IsActive: &inactive},
		{ID: "3", Stock: 25, IsActive: &active},
	}
	require.Equal(t, InventoryHealthStats{TotalItemVariants: 1, AtReorderPoint: 1}, ComputeHealth(items))
}

func TestComputeHealthMalformedNote(t *testing.T) {
	items := []ItemRecord{
		{ID: "1", Stock: 0, Note: `{"kind":"sizeVariations","variations":[`},
		{ID: "2", Stock: 30, Note: `{"kind":"sizeVariations","variations":[]}`},
		{ID: "3", Stock: 30, Note: `{"kind":"other","variations":[{"size":"S","stock":0}]}`},
	}
	require.Equal(t, InventoryHealthStats{TotalItemVariants: 3, OutOfStock: 1, AtReorderPoint: 2}, ComputeHealth(items))
}

func TestComputeHealthEmpty(t *testing.T) {
	require.Equal(t, InventoryHealthStats{}, ComputeHealth(nil))
}
