package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
	"github.com/shopspring/decimal"
)

type ProductInput struct {
	Name              string
	Description       string
	Benefits          string
	Ingredients       string
	UsageInstructions string
	Price             decimal.Decimal
	StockCount        int
	ImageURL          string
	IsActive          bool
}

type ProductFilter struct {
	ActiveOnly bool
}

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

const productColumns = `id, name, description, benefits, ingredients, usage_instructions,
		price, stock_count, image_url, is_active, created_at, updated_at`

func scanProduct(row interface{ Scan(...any) error }, p *models.Product) error {
	return row.Scan(
		&p.ID,
		&p.Name,
		&p.Description,
		&p.Benefits,
		&p.Ingredients,
		&p.UsageInstructions,
		&p.Price,
		&p.StockCount,
		&p.ImageURL,
		&p.IsActive,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
}

func (r *ProductRepository) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	product := &models.Product{}

	query := `
		INSERT INTO products (name, description, benefits, ingredients, usage_instructions,
			price, stock_count, image_url, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW(), NOW())
		RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query,
		in.Name, in.Description, in.Benefits, in.Ingredients, in.UsageInstructions,
		in.Price, in.StockCount, in.ImageURL, in.IsActive)
	if err := scanProduct(row, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	product := &models.Product{}

	query := `SELECT ` + productColumns + ` FROM products WHERE id = $1`

	if err := scanProduct(r.db.QueryRowContext(ctx, query, id), product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("get product: %w", err)
	}

	return product, nil
}

// Update overwrites every editable column. There is no version check, so the
// last writer wins.
func (r *ProductRepository) Update(ctx context.Context, id uuid.UUID, in ProductInput) (*models.Product, error) {
	product := &models.Product{}

	query := `
		UPDATE products
		SET name = $1, description = $2, benefits = $3, ingredients = $4,
		    usage_instructions = $5, price = $6, stock_count = $7, image_url = $8,
		    is_active = $9, updated_at = NOW()
		WHERE id = $10
		RETURNING ` + productColumns

	row := r.db.QueryRowContext(ctx, query,
		in.Name, in.Description, in.Benefits, in.Ingredients, in.UsageInstructions,
		in.Price, in.StockCount, in.ImageURL, in.IsActive, id)
	if err := scanProduct(row, product); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("update product: %w", err)
	}

	return product, nil
}

func (r *ProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM products WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete product: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrProductNotFound
	}

	return nil
}

func (r *ProductRepository) List(ctx context.Context, filter ProductFilter, req PageRequest) (*OffsetPage[models.Product], error) {
	req = req.Normalize()

	where := ""
	if filter.ActiveOnly {
		where = "WHERE is_active"
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM products `+where).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count products: %w", err)
	}

	query := `SELECT ` + productColumns + `
		FROM products ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, req.PageSize, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	var products []models.Product
	for rows.Next() {
		var product models.Product
		if err := scanProduct(rows, &product); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		products = append(products, product)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(products, total, req), nil
}
