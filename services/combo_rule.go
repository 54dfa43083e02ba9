package services

import (
	"context"
	"errors"
	"fmt"

	"streetkitchen/db"
	"streetkitchen/models"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ListActiveComboRules returns the active rules bound to the vendor's menu items.
func ListActiveComboRules(ctx context.Context, vendorID int64) ([]models.ComboRule, error) {
	rows, err := db.Pool.Query(ctx, `
		SELECT r.id, r.menu_item_id, m.name, m.vendor_id, r.min_quantity, r.discount_percentage, r.is_active
		FROM combo_rules r
		JOIN menu_items m ON m.id = r.menu_item_id
		WHERE m.vendor_id = $1 AND r.is_active
		ORDER BY m.name, r.min_quantity`,
		vendorID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []models.ComboRule
	for rows.Next() {
		var r models.ComboRule
		if err := rows.Scan(&r.ID, &r.MenuItemID, &r.MenuItemName, &r.VendorID,
			&r.MinQuantity, &r.DiscountPercentage, &r.IsActive); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

// AddComboRule binds a new rule to one of the vendor's menu items.
func AddComboRule(ctx context.Context, vendorID, menuItemID int64, minQuantity int, discountPercentage decimal.Decimal) (int64, error) {
	if minQuantity <= 0 {
		return 0, fmt.Errorf("%w: min quantity must be > 0", ErrInvalidInput)
	}
	if discountPercentage.IsNegative() || discountPercentage.GreaterThan(hundred) {
		return 0, fmt.Errorf("%w: discount percentage must be between 0 and 100", ErrInvalidInput)
	}

	var id int64
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO combo_rules (menu_item_id, min_quantity, discount_percentage)
		SELECT id, $3, $4 FROM menu_items WHERE id = $1 AND vendor_id = $2
		RETURNING id`,
		menuItemID, vendorID, minQuantity, discountPercentage.Round(2),
	).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("%w: menu item #%d", ErrUnknownItem, menuItemID)
	}
	if err != nil {
		return 0, fmt.Errorf("add combo rule for item #%d: %w", menuItemID, err)
	}
	return id, nil
}

func SetComboRuleActive(ctx context.Context, ruleID int64, active bool) error {
	tag, err := db.Pool.Exec(ctx, `UPDATE combo_rules SET is_active = $1 WHERE id = $2`, active, ruleID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: #%d", ErrComboRuleNotFound, ruleID)
	}
	return nil
}
