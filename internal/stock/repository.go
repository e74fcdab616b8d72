package stock

import (
	"context"
	_ "embed"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/uniformdesk/uniformdesk/internal/platform/db"
	"github.com/uniformdesk/uniformdesk/internal/reconcile"
)

// Schema creates the tables Repository reads from.
//
//go:embed schema.sql
var Schema string

// Repository reads uniform items and orders from PostgreSQL.
type Repository struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// NewRepository constructs Repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, now: time.Now}
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

const listItemsSQL = `
SELECT id::text, COALESCE(name, ''), COALESCE(item_type, ''), COALESCE(education_level, ''),
       COALESCE(category, ''), COALESCE(size, ''), COALESCE(material, ''), COALESCE(image, ''),
       COALESCE(stock, 0), COALESCE(price, 0)::text,
       COALESCE(beginning_inventory, 0), COALESCE(purchases, 0), COALESCE(returns, 0),
       COALESCE(unit_price, 0)::text, COALESCE(total_amount, 0)::text,
       COALESCE(status, ''), is_active, created_at, updated_at, COALESCE(note, '')
FROM uniform_items
ORDER BY created_at, id`

const listOrdersSQL = `
SELECT id::text, COALESCE(order_number, ''), COALESCE(status, ''), COALESCE(items::text, ''),
       created_at, updated_at, completed_at, claimed_date
FROM uniform_orders
ORDER BY created_at NULLS LAST, id`

// Snapshot loads items and orders inside one read-only repeatable-read
// transaction so both lists describe the same moment.
func (r *Repository) Snapshot(ctx context.Context) (reconcile.Snapshot, error) {
	if r == nil || r.pool == nil {
		return reconcile.Snapshot{}, ErrSourceUnavailable
	}
	var (
		items  []reconcile.ItemRecord
		orders []reconcile.OrderRecord
	)
	err := db.WithReadOnlyTx(ctx, r.pool, func(tx pgx.Tx) error {
		var err error
		if items, err = listItems(ctx, tx); err != nil {
			return err
		}
		orders, err = listOrders(ctx, tx)
		return err
	})
	if err != nil {
		return reconcile.Snapshot{}, fmt.Errorf("stock: snapshot: %w", err)
	}
	return reconcile.Snapshot{Items: items, Orders: orders, TakenAt: r.now().UTC()}, nil
}

func listItems(ctx context.Context, q querier) ([]reconcile.ItemRecord, error) {
	rows, err := q.Query(ctx, listItemsSQL)
	if err != nil {
		return nil, fmt.Errorf("stock: list items: %w", err)
	}
	defer rows.Close()

	var items []reconcile.ItemRecord
	for rows.Next() {
		var (
			item                       reconcile.ItemRecord
			price, unitPrice, totalAmt string
			status                     string
			createdAt, updatedAt       *time.Time
		)
		if err := rows.Scan(
			&item.ID, &item.Name, &item.ItemType, &item.EducationLevel,
			&item.Category, &item.Size, &item.Material, &item.Image,
			&item.Stock, &price,
			&item.BeginningInventory, &item.Purchases, &item.Returns,
			&unitPrice, &totalAmt,
			&status, &item.IsActive, &createdAt, &updatedAt, &item.Note,
		); err != nil {
			return nil, fmt.Errorf("stock: scan item: %w", err)
		}
		item.Price = parseDecimal(price)
		item.UnitPrice = parseDecimal(unitPrice)
		item.TotalAmount = parseDecimal(totalAmt)
		item.Status = reconcile.StockStatus(status)
		if createdAt != nil {
			item.CreatedAt = createdAt.UTC()
		}
		if updatedAt != nil {
			item.UpdatedAt = updatedAt.UTC()
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stock: list items: %w", err)
	}
	return items, nil
}

func listOrders(ctx context.Context, q querier) ([]reconcile.OrderRecord, error) {
	rows, err := q.Query(ctx, listOrdersSQL)
	if err != nil {
		return nil, fmt.Errorf("stock: list orders: %w", err)
	}
	defer rows.Close()

	var orders []reconcile.OrderRecord
	for rows.Next() {
		var (
			order  reconcile.OrderRecord
			status string
			items  string
		)
		if err := rows.Scan(
			&order.ID, &order.OrderNumber, &status, &items,
			&order.CreatedAt, &order.UpdatedAt, &order.CompletedAt, &order.ClaimedDate,
		); err != nil {
			return nil, fmt.Errorf("stock: scan order: %w", err)
		}
		for _, d := range []*time.Time{order.CreatedAt, order.UpdatedAt, order.CompletedAt, order.ClaimedDate} {
			if d != nil {
				*d = d.UTC()
			}
		}
		order.Status = reconcile.OrderStatus(strings.ToLower(strings.TrimSpace(status)))
		order.Items = reconcile.DecodeLineItems([]byte(items))
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("stock: list orders: %w", err)
	}
	return orders, nil
}

func parseDecimal(raw string) decimal.Decimal {
	d, err := decimal.NewFromString(strings.TrimSpace(raw))
	if err != nil {
		return decimal.Zero
	}
	return d
}
