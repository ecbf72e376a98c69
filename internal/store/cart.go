package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
)

type CartRepository struct {
	db *sql.DB
}

func NewCartRepository(db *sql.DB) *CartRepository {
	return &CartRepository{db: db}
}

const cartSelect = `
		SELECT ci.id, ci.user_id, ci.product_id, ci.quantity, ci.created_at,
		       p.name, p.price, p.image_url, p.is_active
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id`

func scanCartItem(row interface{ Scan(...any) error }, item *models.CartItem) error {
	return row.Scan(
		&item.ID,
		&item.UserID,
		&item.ProductID,
		&item.Quantity,
		&item.CreatedAt,
		&item.Product.Name,
		&item.Product.Price,
		&item.Product.ImageURL,
		&item.Product.IsActive,
	)
}

func (r *CartRepository) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	return listCartItems(ctx, r.db, userID)
}

func listCartItems(ctx context.Context, q database.DBTX, userID uuid.UUID) ([]models.CartItem, error) {
	rows, err := q.QueryContext(ctx, cartSelect+`
		WHERE ci.user_id = $1
		ORDER BY ci.created_at ASC, ci.id ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list cart items: %w", err)
	}
	defer rows.Close()

	items := []models.CartItem{}
	for rows.Next() {
		var item models.CartItem
		if err := scanCartItem(rows, &item); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

// Add inserts the product into the cart or increases the quantity of the
// existing row for the same product.
func (r *CartRepository) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, database.ErrInvalidQuantity
	}

	var id uuid.UUID
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO cart_items (user_id, product_id, quantity, created_at)
		 VALUES ($1, $2, $3, NOW())
		 ON CONFLICT (user_id, product_id) DO UPDATE
		 SET quantity = cart_items.quantity + EXCLUDED.quantity
		 RETURNING id`,
		userID, productID, quantity).Scan(&id)
	if err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, database.ErrProductNotFound
		}
		return nil, fmt.Errorf("add cart item: %w", err)
	}

	return r.get(ctx, userID, id)
}

func (r *CartRepository) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	if quantity < 1 {
		return nil, database.ErrInvalidQuantity
	}

	result, err := r.db.ExecContext(ctx,
		`UPDATE cart_items SET quantity = $1 WHERE id = $2 AND user_id = $3`,
		quantity, itemID, userID)
	if err != nil {
		return nil, fmt.Errorf("update cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return nil, database.ErrCartItemNotFound
	}

	return r.get(ctx, userID, itemID)
}

func (r *CartRepository) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	result, err := r.db.ExecContext(ctx,
		`DELETE FROM cart_items WHERE id = $1 AND user_id = $2`, itemID, userID)
	if err != nil {
		return fmt.Errorf("remove cart item: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrCartItemNotFound
	}

	return nil
}

func (r *CartRepository) get(ctx context.Context, userID, itemID uuid.UUID) (*models.CartItem, error) {
	item := &models.CartItem{}
	row := r.db.QueryRowContext(ctx, cartSelect+`
		WHERE ci.id = $1 AND ci.user_id = $2`, itemID, userID)
	if err := scanCartItem(row, item); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrCartItemNotFound
		}
		return nil, fmt.Errorf("get cart item: %w", err)
	}
	return item, nil
}

// lockCartItems locks the user's rows among ids and returns their quantities.
func lockCartItems(ctx context.Context, tx *sql.Tx, userID uuid.UUID, ids []string) (map[uuid.UUID]int, error) {
	rows, err := tx.QueryContext(ctx,
		`SELECT id, quantity FROM cart_items
		 WHERE user_id = $1 AND id = ANY($2::uuid[])
		 FOR UPDATE`, userID, pq.Array(ids))
	if err != nil {
		return nil, fmt.Errorf("lock cart items: %w", err)
	}
	defer rows.Close()

	locked := make(map[uuid.UUID]int, len(ids))
	for rows.Next() {
		var id uuid.UUID
		var quantity int
		if err := rows.Scan(&id, &quantity); err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		locked[id] = quantity
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return locked, nil
}

func removeCartItems(ctx context.Context, tx *sql.Tx, userID uuid.UUID, ids []string) error {
	_, err := tx.ExecContext(ctx,
		`DELETE FROM cart_items WHERE user_id = $1 AND id = ANY($2::uuid[])`, userID, pq.Array(ids))
	if err != nil {
		return fmt.Errorf("remove ordered cart items: %w", err)
	}
	return nil
}
