package services

import (
	"context"
	"errors"
	"fmt"

	"streetkitchen/db"
	"streetkitchen/models"

	"github.com/jackc/pgx/v5"
	log "github.com/sirupsen/logrus"
)

const (
	OrderStatusDraft      = "draft"
	OrderStatusPending    = "pending"
	OrderStatusPlaced     = "placed"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusDispatched = "dispatched"
	OrderStatusDelivered  = "delivered"
	OrderStatusCancelled  = "cancelled"
)

// orderFlow is the normal forward path of an order.
var orderFlow = []string{
	OrderStatusDraft,
	OrderStatusPending,
	OrderStatusPlaced,
	OrderStatusConfirmed,
	OrderStatusDispatched,
	OrderStatusDelivered,
}

func IsKnownStatus(s string) bool {
	return s == OrderStatusCancelled || flowIndex(s) >= 0
}

func IsTerminalStatus(s string) bool {
	return s == OrderStatusDelivered || s == OrderStatusCancelled
}

func flowIndex(s string) int {
	for i, st := range orderFlow {
		if st == s {
			return i
		}
	}
	return -1
}

// ValidStatusTransition allows one step forward along the flow, or
// cancellation from any non-terminal status.
func ValidStatusTransition(from, to string) bool {
	if !IsKnownStatus(from) || !IsKnownStatus(to) || IsTerminalStatus(from) {
		return false
	}
	if to == OrderStatusCancelled {
		return true
	}
	return flowIndex(to) == flowIndex(from)+1
}

// CustomerMessageForOrderStatus returns the short text sent to a customer
// when their order reaches status.
func CustomerMessageForOrderStatus(o *models.Order, status string) string {
	total := o.TotalPrice.StringFixed(2)
	switch status {
	case OrderStatusPlaced:
		return fmt.Sprintf("Order #%d placed. Total: ₹%s", o.ID, total)
	case OrderStatusConfirmed:
		return fmt.Sprintf("Order #%d confirmed by the kitchen. Total: ₹%s", o.ID, total)
	case OrderStatusDispatched:
		return fmt.Sprintf("Order #%d is on the way.", o.ID)
	case OrderStatusDelivered:
		return fmt.Sprintf("Order #%d delivered. Enjoy your meal!", o.ID)
	case OrderStatusCancelled:
		return fmt.Sprintf("Order #%d was cancelled.", o.ID)
	default:
		return ""
	}
}

// UpdateOrderStatus moves an order to newStatus and appends a tracking row.
// The current row is locked so concurrent updates serialize.
func UpdateOrderStatus(ctx context.Context, orderID int64, newStatus, note string) (*models.Order, error) {
	if !IsKnownStatus(newStatus) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidStatusTransition, newStatus)
	}

	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var fromStatus string
	err = tx.QueryRow(ctx, `SELECT status FROM orders WHERE id = $1 FOR UPDATE`, orderID).Scan(&fromStatus)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	if !ValidStatusTransition(fromStatus, newStatus) {
		return nil, fmt.Errorf("%w: %q to %q", ErrInvalidStatusTransition, fromStatus, newStatus)
	}

	if _, err = tx.Exec(ctx, `
		UPDATE orders SET status = $1, updated_at = now() WHERE id = $2`,
		newStatus, orderID,
	); err != nil {
		return nil, err
	}
	if _, err = tx.Exec(ctx, `
		INSERT INTO order_tracking (order_id, status, note) VALUES ($1, $2, $3)`,
		orderID, newStatus, note,
	); err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.WithFields(log.Fields{
		"order_id": orderID,
		"from":     fromStatus,
		"to":       newStatus,
	}).Info("Order status changed")

	return GetOrder(ctx, orderID)
}

// ListOrderTracking returns the status history of an order, oldest first.
func ListOrderTracking(ctx context.Context, orderID int64) ([]models.OrderTracking, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, order_id, status, note, created_at
		FROM order_tracking WHERE order_id = $1
		ORDER BY created_at, id`,
		orderID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.OrderTracking
	for rows.Next() {
		var t models.OrderTracking
		if err := rows.Scan(&t.ID, &t.OrderID, &t.Status, &t.Note, &t.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
