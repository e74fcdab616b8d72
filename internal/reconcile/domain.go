package reconcile

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockStatus enumerates the stock bands shown on item rows.
type StockStatus string

const (
	// StatusAboveThreshold indicates healthy stock.
	StatusAboveThreshold StockStatus = "AboveThreshold"
	// StatusAtReorderPoint indicates replenishment is due soon.
	StatusAtReorderPoint StockStatus = "AtReorderPoint"
	// StatusCritical indicates stock below the reorder band.
	StatusCritical StockStatus = "Critical"
	// StatusOutOfStock indicates no stock left.
	StatusOutOfStock StockStatus = "OutOfStock"
)

// OrderStatus enumerates order lifecycle values.
type OrderStatus string

const (
	OrderPending    OrderStatus = "pending"
	OrderProcessing OrderStatus = "processing"
	OrderCompleted  OrderStatus = "completed"
	OrderClaimed    OrderStatus = "claimed"
	OrderCancelled  OrderStatus = "cancelled"
)

// Fallback values applied to incomplete item rows.
const (
	DefaultItemName = "Unknown Item"
	DefaultItemType = "Uniform"
	DefaultCategory = "General"
	DefaultSize     = "N/A"
)

// ItemRecord is one persisted inventory row.
type ItemRecord struct {
	ID                 string          `json:"id"`
	Name               string          `json:"name"`
	ItemType           string          `json:"itemType"`
	EducationLevel     string          `json:"educationLevel"`
	Category           string          `json:"category"`
	Size               string          `json:"size"`
	Material           string          `json:"material"`
	Image              string          `json:"image,omitempty"`
	Stock              int             `json:"stock"`
	Price              decimal.Decimal `json:"price"`
	BeginningInventory int             `json:"beginningInventory"`
	Purchases          int             `json:"purchases"`
	Returns            int             `json:"returns"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Status             StockStatus     `json:"status"`
	IsActive           *bool           `json:"isActive,omitempty"`
	CreatedAt          time.Time       `json:"createdAt"`
	UpdatedAt          time.Time       `json:"updatedAt"`
	Note               string          `json:"note,omitempty"`
}

// Active reports whether the item participates in health statistics.
// Only an explicit false deactivates an item.
func (i ItemRecord) Active() bool {
	return i.IsActive == nil || *i.IsActive
}

// OrderLineItem is one product line inside an order.
type OrderLineItem struct {
	Name     string          `json:"name"`
	Size     string          `json:"size"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// OrderRecord is one customer order snapshot. Nil dates are absent or unparsable.
type OrderRecord struct {
	ID          string      `json:"id"`
	OrderNumber string      `json:"orderNumber"`
	Status      OrderStatus `json:"status"`
	Items       LineItems   `json:"items"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	UpdatedAt   *time.Time  `json:"updatedAt,omitempty"`
	CompletedAt *time.Time  `json:"completedAt,omitempty"`
	ClaimedDate *time.Time  `json:"claimedDate,omitempty"`
}

// ItemGroup is a product with its size variations.
type ItemGroup struct {
	GroupKey       string       `json:"groupKey"`
	Name           string       `json:"name"`
	ItemType       string       `json:"itemType"`
	EducationLevel string       `json:"educationLevel"`
	Category       string       `json:"category"`
	Image          string       `json:"image,omitempty"`
	Variations     []ItemRecord `json:"variations"`
	TotalStock     int          `json:"totalStock"`
}

// ReconciledRow is the ledger entry for one item-size row.
type ReconciledRow struct {
	ItemID             string          `json:"itemId"`
	Name               string          `json:"name"`
	Size               string          `json:"size"`
	BeginningInventory int             `json:"beginningInventory"`
	Unreleased         int             `json:"unreleased"`
	Purchases          int             `json:"purchases"`
	Released           int             `json:"released"`
	Returns            int             `json:"returns"`
	Available          int             `json:"available"`
	EndingInventory    int             `json:"endingInventory"`
	UnitPrice          decimal.Decimal `json:"unitPrice"`
	TotalAmount        decimal.Decimal `json:"totalAmount"`
	Status             StockStatus     `json:"status"`
}

// InventoryHealthStats summarises stock health over active items.
type InventoryHealthStats struct {
	TotalItemVariants int `json:"totalItemVariants"`
	AtReorderPoint    int `json:"atReorderPoint"`
	OutOfStock        int `json:"outOfStock"`
}

// Window bounds order dates, inclusive on both ends at day granularity.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// OrderCounts holds the matcher output for one item-size.
type OrderCounts struct {
	Unreleased int `json:"unreleased"`
	Released   int `json:"released"`
}

// Snapshot is the immutable input of one reconciliation pass.
type Snapshot struct {
	Items   []ItemRecord  `json:"items"`
	Orders  []OrderRecord `json:"orders"`
	TakenAt time.Time     `json:"takenAt"`
}

// Report bundles every output of one reconciliation pass.
type Report struct {
	Groups      []ItemGroup          `json:"groups"`
	Rows        []ReconciledRow      `json:"rows"`
	Health      InventoryHealthStats `json:"health"`
	Window      *Window              `json:"window,omitempty"`
	GeneratedAt time.Time            `json:"generatedAt"`
}
