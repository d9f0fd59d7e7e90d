package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/koridirect/koridirect/backend/storefront-service/internal/models"
)

// CreateProduct inserts a new product and returns its ID
func (db *Database) CreateProduct(ctx context.Context, product models.Product) (int, error) {
	var productID int
	query := `
        INSERT INTO products
            (name, description, category, supplier_price_krw, weight_kg, in_stock, is_active)
        VALUES
            ($1, $2, $3, $4, $5, $6, $7)
        RETURNING product_id
    `
	err := db.Pool.QueryRow(ctx, query,
		product.Name,
		product.Description,
		product.Category,
		product.SupplierPriceKRW,
		product.WeightKg,
		product.InStock,
		product.IsActive,
	).Scan(&productID)
	if err != nil {
		return 0, fmt.Errorf("failed to insert product: %w", err)
	}
	return productID, nil
}

// GetProduct loads a single active product by ID
func (db *Database) GetProduct(ctx context.Context, productID int) (*models.Product, error) {
	query := `
        SELECT product_id, product_uuid, name, COALESCE(description, ''), category,
               supplier_price_krw, COALESCE(weight_kg, 0), in_stock, is_active,
               created_at, updated_at
        FROM products
        WHERE product_id = $1 AND is_active = true
    `
	var p models.Product
	err := db.Pool.QueryRow(ctx, query, productID).Scan(
		&p.ID, &p.UUID, &p.Name, &p.Description, &p.Category,
		&p.SupplierPriceKRW, &p.WeightKg, &p.InStock, &p.IsActive,
		&p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("product %d not found", productID)
		}
		return nil, fmt.Errorf("failed to query product %d: %w", productID, err)
	}

	images, err := db.GetProductImageURLs(ctx, p.ID)
	if err != nil {
		p.ImageUrls = []string{}
	} else {
		p.ImageUrls = images
	}
	return &p, nil
}

// ListProducts returns active products, optionally narrowed by category and a
// case-insensitive name search, with pagination.
func (db *Database) ListProducts(ctx context.Context, category models.ProductCategory, search string, limit, offset int) ([]models.Product, int, error) {
	where := "WHERE is_active = true"
	args := []interface{}{}
	idx := 1

	if category != "" {
		where += fmt.Sprintf(" AND category = $%d", idx)
		args = append(args, category)
		idx++
	}
	if search != "" {
		where += fmt.Sprintf(" AND (name ILIKE $%d OR description ILIKE $%d)", idx, idx)
		args = append(args, "%"+search+"%")
		idx++
	}

	var total int
	countQuery := "SELECT COUNT(*) FROM products " + where
	if err := db.Pool.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count products: %w", err)
	}

	query := fmt.Sprintf(`
        SELECT product_id, product_uuid, name, COALESCE(description, ''), category,
               supplier_price_krw, COALESCE(weight_kg, 0), in_stock, is_active,
               created_at, updated_at
        FROM products %s
        ORDER BY product_id
        LIMIT $%d OFFSET $%d
    `, where, idx, idx+1)
	args = append(args, limit, offset)

	rows, err := db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query products: %w", err)
	}
	defer rows.Close()

	products := []models.Product{}
	for rows.Next() {
		var p models.Product
		if err := rows.Scan(
			&p.ID, &p.UUID, &p.Name, &p.Description, &p.Category,
			&p.SupplierPriceKRW, &p.WeightKg, &p.InStock, &p.IsActive,
			&p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan product: %w", err)
		}
		p.ImageUrls = []string{}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("error iterating products: %w", err)
	}
	return products, total, nil
}

// UpdateProduct updates an existing product
func (db *Database) UpdateProduct(ctx context.Context, productID int, product models.Product) error {
	query := `
        UPDATE products
        SET name = $2,
            description = $3,
            category = $4,
            supplier_price_krw = $5,
            weight_kg = $6,
            in_stock = $7,
            is_active = $8,
            updated_at = CURRENT_TIMESTAMP
        WHERE product_id = $1
    `
	result, err := db.Pool.Exec(ctx, query,
		productID,
		product.Name,
		product.Description,
		product.Category,
		product.SupplierPriceKRW,
		product.WeightKg,
		product.InStock,
		product.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to update product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("product with ID %d not found", productID)
	}
	return nil
}

// DeleteProduct soft deletes a product by setting is_active to false
func (db *Database) DeleteProduct(ctx context.Context, productID int) error {
	query := `
        UPDATE products
        SET is_active = false,
            updated_at = CURRENT_TIMESTAMP
        WHERE product_id = $1 AND is_active = true
    `
	result, err := db.Pool.Exec(ctx, query, productID)
	if err != nil {
		return fmt.Errorf("failed to delete product: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("product with ID %d not found or already deleted", productID)
	}
	return nil
}

// AddProductImage links an image URL to a product, appended after existing images
func (db *Database) AddProductImage(ctx context.Context, productID int, imageURL string) error {
	query := `
        INSERT INTO product_images (product_id, image_url, display_order)
        VALUES ($1, $2, (
            SELECT COALESCE(MAX(display_order), 0) + 1
            FROM product_images
            WHERE product_id = $1
        ))
    `
	if _, err := db.Pool.Exec(ctx, query, productID, imageURL); err != nil {
		return fmt.Errorf("failed to insert product image: %w", err)
	}
	return nil
}

// GetProductImageURLs retrieves the image URLs for a product in display order
func (db *Database) GetProductImageURLs(ctx context.Context, productID int) ([]string, error) {
	rows, err := db.Pool.Query(ctx,
		`SELECT image_url FROM product_images WHERE product_id = $1 ORDER BY display_order, image_id`,
		productID)
	if err != nil {
		return nil, fmt.Errorf("failed to query product images: %w", err)
	}
	defer rows.Close()

	urls := []string{}
	for rows.Next() {
		var url string
		if err := rows.Scan(&url); err != nil {
			return nil, fmt.Errorf("failed to scan product image: %w", err)
		}
		urls = append(urls, url)
	}
	return urls, rows.Err()
}
