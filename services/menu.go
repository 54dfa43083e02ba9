package services

import (
	"context"
	"fmt"
	"strings"

	"streetkitchen/db"
	"streetkitchen/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

var menuCategories = map[string]bool{
	models.CategoryIdli:    true,
	models.CategoryChutney: true,
	models.CategorySambar:  true,
	models.CategoryOther:   true,
}

func scanMenuItems(rows pgx.Rows) ([]models.MenuItem, error) {
	defer rows.Close()
	var items []models.MenuItem
	for rows.Next() {
		var it models.MenuItem
		if err := rows.Scan(&it.ID, &it.VendorID, &it.Name, &it.Category, &it.Price, &it.IsAvailable); err != nil {
			return nil, err
		}
		items = append(items, it)
	}
	return items, rows.Err()
}

// ListMenuByVendor returns the vendor's menu ordered by category and name.
func ListMenuByVendor(ctx context.Context, vendorID int64, onlyAvailable bool) ([]models.MenuItem, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT id, vendor_id, name, category, price, is_available FROM menu_items
		WHERE vendor_id = $1 AND (is_available OR NOT $2)
		ORDER BY category, name`,
		vendorID, onlyAvailable,
	)
	if err != nil {
		return nil, err
	}
	return scanMenuItems(rows)
}

// GetMenuItemsByIDs loads menu items regardless of vendor; callers check
// ownership themselves.
func GetMenuItemsByIDs(ctx context.Context, ids []int64) (map[int64]models.MenuItem, error) {
	out := make(map[int64]models.MenuItem, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := db.Pool.Query(ctx, `
		SELECT id, vendor_id, name, category, price, is_available FROM menu_items
		WHERE id = ANY($1)`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	items, err := scanMenuItems(rows)
	if err != nil {
		return nil, err
	}
	for _, it := range items {
		out[it.ID] = it
	}
	return out, nil
}

func AddMenuItem(ctx context.Context, vendorID int64, category, name string, price decimal.Decimal) (int64, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if category == "" {
		category = models.CategoryOther
	}
	if !menuCategories[category] {
		return 0, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, category)
	}
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if price.IsNegative() {
		return 0, fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}

	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO menu_items (vendor_id, category, name, price) VALUES ($1, $2, $3, $4)
		RETURNING id`,
		vendorID, category, strings.TrimSpace(name), price.Round(2),
	).Scan(&id)
	return id, err
}

func SetMenuItemAvailability(ctx context.Context, vendorID, itemID int64, available bool) error {
	tag, err := db.Pool.Exec(ctx, `
		UPDATE menu_items SET is_available = $1 WHERE id = $2 AND vendor_id = $3`,
		available, itemID, vendorID,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: menu item #%d", ErrUnknownItem, itemID)
	}
	return nil
}
