package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

// ErrSettingsMissing marks an absent price_settings row. The pricing flow
// treats it the same as a non-positive rate: refuse to quote.
var ErrSettingsMissing = errors.New("price settings row missing")

// GetPriceSettings loads the singleton pricing configuration row
func (db *Database) GetPriceSettings(ctx context.Context) (*models.PriceSettings, error) {
	var s models.PriceSettings
	err := db.Pool.QueryRow(ctx, `
        SELECT exchange_rate, euro_rate, transport_base, transport_per_kg,
               customs_rate, margin_rate, updated_at
        FROM price_settings
        WHERE id = 1
    `).Scan(&s.ExchangeRate, &s.EuroRate, &s.TransportBase, &s.TransportPerKg,
		&s.CustomsRate, &s.MarginRate, &s.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSettingsMissing
		}
		return nil, fmt.Errorf("failed to query price settings: %w", err)
	}
	return &s, nil
}

// UpdatePriceSettings replaces the singleton pricing configuration row
func (db *Database) UpdatePriceSettings(ctx context.Context, req models.UpdatePriceSettingsRequest) error {
	result, err := db.Pool.Exec(ctx, `
        UPDATE price_settings
        SET exchange_rate = $1,
            euro_rate = $2,
            transport_base = $3,
            transport_per_kg = $4,
            customs_rate = $5,
            margin_rate = $6,
            updated_at = CURRENT_TIMESTAMP
        WHERE id = 1
    `, req.ExchangeRate, req.EuroRate, req.TransportBase, req.TransportPerKg,
		req.CustomsRate, req.MarginRate)
	if err != nil {
		return fmt.Errorf("failed to update price settings: %w", err)
	}
	if result.RowsAffected() == 0 {
		return ErrSettingsMissing
	}
	return nil
}
