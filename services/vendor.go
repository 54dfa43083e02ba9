package services

import (
	"context"
	"errors"

	"streetkitchen/db"
	"streetkitchen/models"

	"github.com/jackc/pgx/v5"
)

const vendorCodeConstraint = "vendors_vendor_code_key"

// PgVendorStore implements VendorCodeStore over db.Pool.
type PgVendorStore struct{}

func (PgVendorStore) MaxVendorCodeSuffix(ctx context.Context, prefix string) (int, error) {
	var max int64
	err := db.Pool.QueryRow(ctx, `
		SELECT COALESCE(MAX(substring(vendor_code FROM $2::int)::bigint), 0)
		FROM vendors
		WHERE vendor_code ~ $1`,
		vendorCodePattern(prefix), len(prefix)+1,
	).Scan(&max)
	return int(max), err
}

func (PgVendorStore) InsertVendor(ctx context.Context, in models.CreateVendorInput, code string) (*models.Vendor, error) {
	v := models.Vendor{
		Name:           in.Name,
		City:           in.City,
		Pincode:        in.Pincode,
		OwnerName:      in.OwnerName,
		Code:           code,
		TelegramChatID: in.TelegramChatID,
		WebhookURL:     in.WebhookURL,
		IsActive:       true,
	}
	err := db.Pool.QueryRow(ctx, `
		INSERT INTO vendors (name, city, pincode, owner_name, vendor_code, telegram_chat_id, webhook_url)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
		RETURNING id, created_at`,
		in.Name, in.City, in.Pincode, in.OwnerName, code, in.TelegramChatID, in.WebhookURL,
	).Scan(&v.ID, &v.CreatedAt)
	if err != nil {
		if db.IsUniqueViolation(err, vendorCodeConstraint) {
			return nil, ErrVendorCodeTaken
		}
		return nil, err
	}
	return &v, nil
}

const vendorColumns = `id, name, COALESCE(city, ''), COALESCE(pincode, ''), COALESCE(owner_name, ''),
	vendor_code, telegram_chat_id, COALESCE(webhook_url, ''), is_active, created_at`

func scanVendor(row pgx.Row) (*models.Vendor, error) {
	var v models.Vendor
	err := row.Scan(&v.ID, &v.Name, &v.City, &v.Pincode, &v.OwnerName,
		&v.Code, &v.TelegramChatID, &v.WebhookURL, &v.IsActive, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrVendorNotFound
		}
		return nil, err
	}
	return &v, nil
}

// GetVendorByCode returns an active vendor by its code.
func GetVendorByCode(ctx context.Context, code string) (*models.Vendor, error) {
	return scanVendor(db.Pool.QueryRow(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE upper(vendor_code) = upper($1) AND is_active`, code))
}

func GetVendorByID(ctx context.Context, id int64) (*models.Vendor, error) {
	return scanVendor(db.Pool.QueryRow(ctx,
		`SELECT `+vendorColumns+` FROM vendors WHERE id = $1`, id))
}

func ListVendors(ctx context.Context) ([]models.Vendor, error) {
	rows, err := db.Pool.Query(ctx, `SELECT `+vendorColumns+` FROM vendors WHERE is_active ORDER BY vendor_code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Vendor
	for rows.Next() {
		v, err := scanVendor(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *v)
	}
	return out, rows.Err()
}
