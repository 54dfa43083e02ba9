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

const comboSelect = `
	SELECT c.id, c.name, COALESCE(c.description, ''), c.price, c.is_available,
	       COALESCE(array_agg(cv.vendor_id) FILTER (WHERE cv.vendor_id IS NOT NULL), '{}')
	FROM combos c
	LEFT JOIN combo_vendors cv ON cv.combo_id = c.id`

func scanCombos(rows pgx.Rows) ([]models.Combo, error) {
	defer rows.Close()
	var out []models.Combo
	for rows.Next() {
		var c models.Combo
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.Price, &c.IsAvailable, &c.VendorIDs); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func GetCombosByIDs(ctx context.Context, ids []int64) (map[int64]models.Combo, error) {
	out := make(map[int64]models.Combo, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := db.Pool.Query(ctx, comboSelect+`
		WHERE c.id = ANY($1)
		GROUP BY c.id`,
		ids,
	)
	if err != nil {
		return nil, err
	}
	combos, err := scanCombos(rows)
	if err != nil {
		return nil, err
	}
	for _, c := range combos {
		out[c.ID] = c
	}
	return out, nil
}

// ListCombosForVendor returns the available predefined combos a vendor sells.
func ListCombosForVendor(ctx context.Context, vendorID int64) ([]models.Combo, error) {
	rows, err := db.Pool.Query(ctx, comboSelect+`
		WHERE c.is_available AND EXISTS (
			SELECT 1 FROM combo_vendors x WHERE x.combo_id = c.id AND x.vendor_id = $1
		)
		GROUP BY c.id
		ORDER BY c.name`,
		vendorID,
	)
	if err != nil {
		return nil, err
	}
	return scanCombos(rows)
}

// AddCombo creates a predefined combo and links it to vendorIDs.
func AddCombo(ctx context.Context, name, description string, price decimal.Decimal, vendorIDs []int64) (int64, error) {
	if strings.TrimSpace(name) == "" {
		return 0, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if price.IsNegative() {
		return 0, fmt.Errorf("%w: price must be >= 0", ErrInvalidInput)
	}

	var id int64
	err := db.WithTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx, `
			INSERT INTO combos (name, description, price) VALUES ($1, $2, $3)
			RETURNING id`,
			strings.TrimSpace(name), description, price.Round(2),
		).Scan(&id); err != nil {
			return err
		}
		_, err := tx.Exec(ctx, `
			INSERT INTO combo_vendors (combo_id, vendor_id)
			SELECT $1, unnest($2::bigint[])
			ON CONFLICT DO NOTHING`,
			id, vendorIDs,
		)
		return err
	})
	return id, err
}
