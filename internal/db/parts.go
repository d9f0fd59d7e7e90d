package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/fitment"
	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

const partColumns = `part_id, name, part_number, COALESCE(oem_number, ''), COALESCE(brand, ''),
       category, supplier_price_krw, stock_quantity, created_at, updated_at`

func scanPart(row pgx.Row) (models.Part, error) {
	var p models.Part
	err := row.Scan(
		&p.ID, &p.Name, &p.PartNumber, &p.OEMNumber, &p.Brand,
		&p.Category, &p.SupplierPriceKRW, &p.StockQuantity,
		&p.CreatedAt, &p.UpdatedAt,
	)
	return p, err
}

// CreateVehicle inserts a vehicle definition and returns its ID
func (db *Database) CreateVehicle(ctx context.Context, v models.Vehicle) (int, error) {
	var vehicleID int
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO vehicles (make, model, year_start, year_end, engine)
        VALUES ($1, $2, $3, $4, $5)
        RETURNING vehicle_id
    `, v.Make, v.Model, v.YearStart, v.YearEnd, v.Engine).Scan(&vehicleID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert vehicle: %w", err)
	}
	return vehicleID, nil
}

// GetVehicle loads a vehicle by ID
func (db *Database) GetVehicle(ctx context.Context, vehicleID int) (*models.Vehicle, error) {
	var v models.Vehicle
	err := db.Pool.QueryRow(ctx, `
        SELECT vehicle_id, make, model, year_start, year_end, COALESCE(engine, ''), created_at
        FROM vehicles WHERE vehicle_id = $1
    `, vehicleID).Scan(&v.ID, &v.Make, &v.Model, &v.YearStart, &v.YearEnd, &v.Engine, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("vehicle %d: %w", vehicleID, fitment.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query vehicle %d: %w", vehicleID, err)
	}
	return &v, nil
}

// ListVehicles returns all vehicles, optionally filtered by make
func (db *Database) ListVehicles(ctx context.Context, make string) ([]models.Vehicle, error) {
	query := `
        SELECT vehicle_id, make, model, year_start, year_end, COALESCE(engine, ''), created_at
        FROM vehicles
    `
	args := []interface{}{}
	if make != "" {
		query += " WHERE make ILIKE $1"
		args = append(args, make)
	}
	query += " ORDER BY make, model, year_start"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query vehicles: %w", err)
	}
	defer rows.Close()

	vehicles := []models.Vehicle{}
	for rows.Next() {
		var v models.Vehicle
		if err := rows.Scan(&v.ID, &v.Make, &v.Model, &v.YearStart, &v.YearEnd, &v.Engine, &v.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan vehicle: %w", err)
		}
		vehicles = append(vehicles, v)
	}
	return vehicles, rows.Err()
}

// VehicleExists reports whether a vehicle row exists
func (db *Database) VehicleExists(ctx context.Context, vehicleID int) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx, `SELECT COUNT(1) FROM vehicles WHERE vehicle_id = $1`, vehicleID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check vehicle %d: %w", vehicleID, err)
	}
	return count > 0, nil
}

// CreatePart inserts a part and returns its ID
func (db *Database) CreatePart(ctx context.Context, p models.Part) (int, error) {
	var partID int
	err := db.Pool.QueryRow(ctx, `
        INSERT INTO parts (name, part_number, oem_number, brand, category, supplier_price_krw, stock_quantity)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING part_id
    `, p.Name, p.PartNumber, p.OEMNumber, p.Brand, p.Category, p.SupplierPriceKRW, p.StockQuantity).Scan(&partID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert part: %w", err)
	}
	return partID, nil
}

// GetPart loads a part by ID. A missing part yields fitment.ErrNotFound so
// callers can distinguish it from a plain incompatibility.
func (db *Database) GetPart(ctx context.Context, partID int) (*models.Part, error) {
	row := db.Pool.QueryRow(ctx, `SELECT `+partColumns+` FROM parts WHERE part_id = $1`, partID)
	p, err := scanPart(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("part %d: %w", partID, fitment.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to query part %d: %w", partID, err)
	}
	return &p, nil
}

// ListParts returns all parts of a category (or all parts when empty)
func (db *Database) ListParts(ctx context.Context, category models.PartCategory) ([]models.Part, error) {
	query := `SELECT ` + partColumns + ` FROM parts`
	args := []interface{}{}
	if category != "" {
		query += " WHERE category = $1"
		args = append(args, category)
	}
	query += " ORDER BY part_id"

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query parts: %w", err)
	}
	defer rows.Close()

	parts := []models.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// FitmentExists reports whether a (part, vehicle) pair is linked
func (db *Database) FitmentExists(ctx context.Context, partID, vehicleID int) (bool, error) {
	var count int
	err := db.Pool.QueryRow(ctx,
		`SELECT COUNT(1) FROM fitments WHERE part_id = $1 AND vehicle_id = $2`,
		partID, vehicleID).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check fitment (%d,%d): %w", partID, vehicleID, err)
	}
	return count > 0, nil
}

// ListPartsForVehicle joins parts through the fitments relation, narrowed by
// an optional case-insensitive search over name/part number/OEM number and an
// optional exact category. The returned total counts the filtered set before
// limit/offset are applied.
func (db *Database) ListPartsForVehicle(ctx context.Context, vehicleID int, q fitment.ListPartsQuery) (models.PartListResult, error) {
	where := "WHERE f.vehicle_id = $1"
	args := []interface{}{vehicleID}
	idx := 2

	if q.Search != "" {
		where += fmt.Sprintf(" AND (p.name ILIKE $%d OR p.part_number ILIKE $%d OR p.oem_number ILIKE $%d)", idx, idx, idx)
		args = append(args, "%"+q.Search+"%")
		idx++
	}
	if q.Category != "" {
		where += fmt.Sprintf(" AND p.category = $%d", idx)
		args = append(args, q.Category)
		idx++
	}

	var total int
	countQuery := `
        SELECT COUNT(*)
        FROM parts p
        JOIN fitments f ON f.part_id = p.part_id
        ` + where
	if err := db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return models.PartListResult{}, fmt.Errorf("failed to count parts for vehicle %d: %w", vehicleID, err)
	}

	query := fmt.Sprintf(`
        SELECT p.part_id, p.name, p.part_number, COALESCE(p.oem_number, ''), COALESCE(p.brand, ''),
               p.category, p.supplier_price_krw, p.stock_quantity, p.created_at, p.updated_at
        FROM parts p
        JOIN fitments f ON f.part_id = p.part_id
        %s
        ORDER BY p.part_id
        LIMIT $%d OFFSET $%d
    `, where, idx, idx+1)
	args = append(args, q.Limit, q.Offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return models.PartListResult{}, fmt.Errorf("failed to query parts for vehicle %d: %w", vehicleID, err)
	}
	defer rows.Close()

	parts := []models.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return models.PartListResult{}, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}
	if err := rows.Err(); err != nil {
		return models.PartListResult{}, fmt.Errorf("error iterating parts: %w", err)
	}
	return models.PartListResult{Parts: parts, Total: total}, nil
}

// ListCompatiblePartsByCategory returns parts of a category linked to the
// vehicle, used to suggest alternatives on a negative compatibility answer.
func (db *Database) ListCompatiblePartsByCategory(ctx context.Context, vehicleID int, category models.PartCategory, limit int) ([]models.Part, error) {
	rows, err := db.Pool.Query(ctx, `
        SELECT p.part_id, p.name, p.part_number, COALESCE(p.oem_number, ''), COALESCE(p.brand, ''),
               p.category, p.supplier_price_krw, p.stock_quantity, p.created_at, p.updated_at
        FROM parts p
        JOIN fitments f ON f.part_id = p.part_id
        WHERE f.vehicle_id = $1 AND p.category = $2
        ORDER BY p.part_id
        LIMIT $3
    `, vehicleID, category, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query alternative parts: %w", err)
	}
	defer rows.Close()

	parts := []models.Part{}
	for rows.Next() {
		p, err := scanPart(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan part: %w", err)
		}
		parts = append(parts, p)
	}
	return parts, rows.Err()
}

// InsertFitments persists a seed plan. The fitments table carries a composite
// unique key on (part_id, vehicle_id); ON CONFLICT DO NOTHING makes re-seeding
// idempotent. Returns the number of newly inserted pairs.
func (db *Database) InsertFitments(ctx context.Context, pairs []fitment.Pair) (int, error) {
	tx, err := db.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	inserted := 0
	for _, pair := range pairs {
		tag, err := tx.Exec(ctx, `
            INSERT INTO fitments (part_id, vehicle_id)
            VALUES ($1, $2)
            ON CONFLICT (part_id, vehicle_id) DO NOTHING
        `, pair.PartID, pair.VehicleID)
		if err != nil {
			return 0, fmt.Errorf("failed to insert fitment (%d,%d): %w", pair.PartID, pair.VehicleID, err)
		}
		inserted += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("failed to commit fitments: %w", err)
	}
	return inserted, nil
}
