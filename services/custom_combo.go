package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"streetkitchen/db"
	"streetkitchen/models"

	"github.com/jackc/pgx/v5"
)

type CustomComboItemInput struct {
	MenuItemID int64
	Quantity   int
}

type CreateCustomComboInput struct {
	VendorID    int64
	CustomerID  *int64
	SessionKey  string
	Title       string
	Description string
	Items       []CustomComboItemInput
}

// CreateCustomCombo stores a customer-built combo. Items must be positive
// quantities of the vendor's own menu items. Rule checks happen when the
// combo is validated or ordered, not here.
func CreateCustomCombo(ctx context.Context, in CreateCustomComboInput) (*models.CustomCombo, error) {
	if len(in.Items) == 0 {
		return nil, fmt.Errorf("%w: custom combo needs at least one item", ErrInvalidInput)
	}
	ids := make([]int64, 0, len(in.Items))
	for _, it := range in.Items {
		if it.Quantity <= 0 {
			return nil, fmt.Errorf("%w: menu item #%d has quantity %d", ErrInvalidQuantity, it.MenuItemID, it.Quantity)
		}
		ids = append(ids, it.MenuItemID)
	}
	menu, err := GetMenuItemsByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, it := range in.Items {
		m, ok := menu[it.MenuItemID]
		if !ok {
			return nil, fmt.Errorf("%w: menu item #%d", ErrUnknownItem, it.MenuItemID)
		}
		if m.VendorID != in.VendorID {
			return nil, fmt.Errorf("%w: %s", ErrCrossVendorItem, m.Name)
		}
	}

	title := strings.TrimSpace(in.Title)
	if title == "" {
		title = "My combo"
	}

	var id int64
	err = db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO custom_combos (vendor_id, customer_id, session_key, title, description)
			VALUES ($1, $2, NULLIF($3, ''), $4, NULLIF($5, ''))
			RETURNING id`,
			in.VendorID, in.CustomerID, in.SessionKey, title, in.Description,
		).Scan(&id); err != nil {
			return err
		}
		batch := &pgx.Batch{}
		for _, it := range in.Items {
			batch.Queue(`
				INSERT INTO custom_combo_items (custom_combo_id, menu_item_id, quantity)
				VALUES ($1, $2, $3)`,
				id, it.MenuItemID, it.Quantity,
			)
		}
		return tx.SendBatch(ctx, batch).Close()
	})
	if err != nil {
		return nil, err
	}
	return GetCustomCombo(ctx, id)
}

// GetCustomCombo loads a combo with its items priced at current menu prices.
func GetCustomCombo(ctx context.Context, id int64) (*models.CustomCombo, error) {
	var c models.CustomCombo
	var sessionKey, description *string
	err := db.Pool.QueryRow(ctx, `
		SELECT id, vendor_id, customer_id, session_key, title, description, created_at
		FROM custom_combos WHERE id = $1`, id,
	).Scan(&c.ID, &c.VendorID, &c.CustomerID, &sessionKey, &c.Title, &description, &c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrCustomComboNotFound
		}
		return nil, err
	}
	if sessionKey != nil {
		c.SessionKey = *sessionKey
	}
	if description != nil {
		c.Description = *description
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT i.menu_item_id, m.vendor_id, m.name, m.price, m.is_available, i.quantity
		FROM custom_combo_items i
		JOIN menu_items m ON m.id = i.menu_item_id
		WHERE i.custom_combo_id = $1
		ORDER BY i.id`, id,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var it models.CustomComboItem
		if err := rows.Scan(&it.MenuItemID, &it.VendorID, &it.Name, &it.Price, &it.IsAvailable, &it.Quantity); err != nil {
			return nil, err
		}
		c.Items = append(c.Items, it)
	}
	return &c, rows.Err()
}

// ValidateStoredCustomCombo checks a saved combo against the vendor's
// active rules and returns the violation messages.
func ValidateStoredCustomCombo(ctx context.Context, id int64) (*models.CustomCombo, []string, error) {
	c, err := GetCustomCombo(ctx, id)
	if err != nil {
		return nil, nil, err
	}
	rules, err := ListActiveComboRules(ctx, c.VendorID)
	if err != nil {
		return nil, nil, err
	}
	return c, ValidateCustomCombo(c.Items, rules), nil
}
