package services

import (
	"context"
	"errors"

	"streetkitchen/db"
	"streetkitchen/models"

	"github.com/jackc/pgx/v5"
)

// PgOrderStore persists orders through db.Pool.
type PgOrderStore struct{}

// CreateOrder writes the header, every line and the first tracking row in
// one transaction. On success o.ID and the timestamps are filled in.
func (PgOrderStore) CreateOrder(ctx context.Context, o *models.Order) error {
	return db.WithTx(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
			INSERT INTO orders (
				reference, vendor_id, customer_id, delivery_name, delivery_phone,
				delivery_address, pincode, special_instructions, payment_method, status,
				subtotal, discount_total, tax_amount, delivery_fee, total_price
			) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
			RETURNING id, created_at, updated_at`,
			o.Reference, o.VendorID, o.CustomerID, o.DeliveryName, o.DeliveryPhone,
			o.DeliveryAddress, o.Pincode, o.SpecialInstructions, o.PaymentMethod, o.Status,
			o.Subtotal, o.DiscountTotal, o.TaxAmount, o.DeliveryFee, o.TotalPrice,
		).Scan(&o.ID, &o.CreatedAt, &o.UpdatedAt)
		if err != nil {
			return err
		}

		batch := &pgx.Batch{}
		for _, it := range o.Items {
			batch.Queue(`
				INSERT INTO order_items (
					order_id, item_type, menu_item_id, combo_id, custom_combo_id,
					name, quantity, unit_price, line_total
				) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
				o.ID, it.Kind, it.MenuItemID, it.ComboID, it.CustomComboID,
				it.Name, it.Quantity, it.UnitPrice, it.LineTotal,
			)
		}
		batch.Queue(`INSERT INTO order_tracking (order_id, status, note) VALUES ($1, $2, $3)`,
			o.ID, o.Status, "order placed")
		return tx.SendBatch(ctx, batch).Close()
	})
}

const orderColumns = `o.id, o.reference, o.vendor_id, v.vendor_code, o.customer_id,
	o.delivery_name, o.delivery_phone, o.delivery_address, o.pincode, o.special_instructions,
	o.payment_method, o.status, o.subtotal, o.discount_total, o.tax_amount, o.delivery_fee,
	o.total_price, o.created_at, o.updated_at`

func scanOrder(row pgx.Row) (*models.Order, error) {
	var o models.Order
	err := row.Scan(&o.ID, &o.Reference, &o.VendorID, &o.VendorCode, &o.CustomerID,
		&o.DeliveryName, &o.DeliveryPhone, &o.DeliveryAddress, &o.Pincode, &o.SpecialInstructions,
		&o.PaymentMethod, &o.Status, &o.Subtotal, &o.DiscountTotal, &o.TaxAmount, &o.DeliveryFee,
		&o.TotalPrice, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &o, nil
}

// GetOrder returns an order with its lines.
func GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	o, err := scanOrder(db.Pool.QueryRow(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN vendors v ON v.id = o.vendor_id
		WHERE o.id = $1`, orderID))
	if err != nil {
		return nil, err
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, item_type, menu_item_id, combo_id, custom_combo_id, name, quantity, unit_price, line_total
		FROM order_items WHERE order_id = $1 ORDER BY id`, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it models.OrderItem
		if err := rows.Scan(&it.ID, &it.Kind, &it.MenuItemID, &it.ComboID, &it.CustomComboID,
			&it.Name, &it.Quantity, &it.UnitPrice, &it.LineTotal); err != nil {
			return nil, err
		}
		o.Items = append(o.Items, it)
	}
	return o, rows.Err()
}

// ListVendorOrders returns the vendor's most recent orders without lines.
func ListVendorOrders(ctx context.Context, vendorID int64, limit int) ([]models.Order, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders o JOIN vendors v ON v.id = o.vendor_id
		WHERE o.vendor_id = $1
		ORDER BY o.created_at DESC
		LIMIT $2`, vendorID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *o)
	}
	return out, rows.Err()
}

// GetDailyStats aggregates a vendor's orders for date (YYYY-MM-DD).
func GetDailyStats(ctx context.Context, vendorID int64, date string) (*models.DailyStats, error) {
	s := models.DailyStats{Date: date}
	err := db.Pool.QueryRow(ctx, `
		SELECT
			COUNT(*)::int,
			COUNT(*) FILTER (WHERE status = 'cancelled')::int,
			COALESCE(SUM(subtotal) FILTER (WHERE status <> 'cancelled'), 0),
			COALESCE(SUM(discount_total) FILTER (WHERE status <> 'cancelled'), 0),
			COALESCE(SUM(tax_amount) FILTER (WHERE status <> 'cancelled'), 0),
			COALESCE(SUM(delivery_fee) FILTER (WHERE status <> 'cancelled'), 0),
			COALESCE(SUM(total_price) FILTER (WHERE status <> 'cancelled'), 0)
		FROM orders
		WHERE vendor_id = $1 AND created_at::date = $2::date`,
		vendorID, date,
	).Scan(&s.OrdersCount, &s.CancelledCount, &s.Subtotal, &s.DiscountTotal,
		&s.TaxAmount, &s.DeliveryFees, &s.Revenue)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
