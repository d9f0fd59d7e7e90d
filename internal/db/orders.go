package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

// CreateOrder persists an order with its computed price breakdown and line
// items in one transaction. IDs are assigned here.
func (db *Database) CreateOrder(ctx context.Context, order *models.Order) error {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	order.ID = uuid.New().String()
	order.Status = models.OrderStatusPending

	err = tx.QueryRow(ctx, `
        INSERT INTO orders
            (id, user_id, status, supplier_cost, transport_cost, customs_cost, margin, total, currency)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        RETURNING created_at, updated_at
    `, order.ID, order.UserID, order.Status,
		order.SupplierCost, order.TransportCost, order.CustomsCost, order.Margin, order.Total,
		order.Currency,
	).Scan(&order.CreatedAt, &order.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}

	for i := range order.Items {
		item := &order.Items[i]
		item.ID = uuid.New().String()
		item.OrderID = order.ID
		_, err = tx.Exec(ctx, `
            INSERT INTO order_items
                (id, order_id, product_id, product_name, quantity, unit_price_krw, line_total, line_supplier_cost)
            VALUES
                ($1, $2, $3, $4, $5, $6, $7, $8)
        `, item.ID, item.OrderID, item.ProductID, item.ProductName,
			item.Quantity, item.UnitPriceKRW, item.LineTotal, item.LineSupplierCost)
		if err != nil {
			return fmt.Errorf("failed to insert order item: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit order: %w", err)
	}
	return nil
}

const orderColumns = `id, user_id, status, supplier_cost, transport_cost, customs_cost,
       margin, total, currency, created_at, updated_at`

func scanOrder(row pgx.Row) (models.Order, error) {
	var o models.Order
	err := row.Scan(
		&o.ID, &o.UserID, &o.Status,
		&o.SupplierCost, &o.TransportCost, &o.CustomsCost, &o.Margin, &o.Total,
		&o.Currency, &o.CreatedAt, &o.UpdatedAt,
	)
	return o, err
}

// GetOrder loads an order with its items. When userID is non-empty the order
// must belong to that user.
func (db *Database) GetOrder(ctx context.Context, orderID, userID string) (*models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`
	args := []interface{}{orderID}
	if userID != "" {
		query += " AND user_id = $2"
		args = append(args, userID)
	}

	o, err := scanOrder(db.Pool.QueryRow(ctx, query, args...))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("order %s not found", orderID)
		}
		return nil, fmt.Errorf("failed to query order %s: %w", orderID, err)
	}

	items, err := db.getOrderItems(ctx, o.ID)
	if err != nil {
		return nil, err
	}
	o.Items = items
	return &o, nil
}

// ListOrders returns orders newest first. An empty userID lists all orders
// (admin view); a non-empty one restricts to that user.
func (db *Database) ListOrders(ctx context.Context, userID string, limit, offset int) ([]models.Order, error) {
	query := `SELECT ` + orderColumns + ` FROM orders`
	args := []interface{}{}
	idx := 1
	if userID != "" {
		query += fmt.Sprintf(" WHERE user_id = $%d", idx)
		args = append(args, userID)
		idx++
	}
	query += fmt.Sprintf(" ORDER BY created_at DESC LIMIT $%d OFFSET $%d", idx, idx+1)
	args = append(args, limit, offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating orders: %w", err)
	}

	for i := range orders {
		items, err := db.getOrderItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (db *Database) getOrderItems(ctx context.Context, orderID string) ([]models.OrderItem, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT id, order_id, product_id, product_name, quantity, unit_price_krw, line_total, line_supplier_cost
        FROM order_items
        WHERE order_id = $1
        ORDER BY id
    `, orderID)
	if err != nil {
		return nil, fmt.Errorf("failed to query order items: %w", err)
	}
	defer rows.Close()

	items := []models.OrderItem{}
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.OrderID, &it.ProductID, &it.ProductName,
			&it.Quantity, &it.UnitPriceKRW, &it.LineTotal, &it.LineSupplierCost); err != nil {
			return nil, fmt.Errorf("failed to scan order item: %w", err)
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// UpdateOrderStatus moves an order to the given status. The caller has
// already validated the transition; the WHERE clause re-checks the current
// status so concurrent updates cannot skip a stage.
func (db *Database) UpdateOrderStatus(ctx context.Context, orderID string, from, to models.OrderStatus) error {
	result, err := db.Pool.Exec(ctx, `
        UPDATE orders
        SET status = $3, updated_at = CURRENT_TIMESTAMP
        WHERE id = $1 AND status = $2
    `, orderID, from, to)
	if err != nil {
		return fmt.Errorf("failed to update order status: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("order %s not in status %s", orderID, from)
	}
	return nil
}
