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

type CreateOrderRequest struct {
	UserID      uuid.UUID
	TotalAmount decimal.Decimal
	Items       []OrderItemRequest
}

// OrderItemRequest carries the product name and price captured from the cart
// so the order keeps them even if the product changes later. CartItemID names
// the cart row the line was read from; uuid.Nil means the line has none.
type OrderItemRequest struct {
	CartItemID  uuid.UUID
	ProductID   uuid.UUID
	ProductName string
	UnitPrice   decimal.Decimal
	Quantity    int
}

type StatusUpdate struct {
	PaymentStatus  *string
	DeliveryStatus *string
}

type OrderRepository struct {
	db *sql.DB
}

func NewOrderRepository(db *sql.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

const orderColumns = `id, user_id, total_amount, payment_status, delivery_status, created_at, updated_at`

func scanOrder(row interface{ Scan(...any) error }, o *models.Order) error {
	return row.Scan(
		&o.ID,
		&o.UserID,
		&o.TotalAmount,
		&o.PaymentStatus,
		&o.DeliveryStatus,
		&o.CreatedAt,
		&o.UpdatedAt,
	)
}

// CreateFromCart writes the order and its line items and removes the cart rows
// they came from, in a single transaction. The cart rows are locked first and
// must still hold the ordered quantities, otherwise ErrCartChanged is
// returned and nothing is written. Rows added to the cart meanwhile are kept.
func (r *OrderRepository) CreateFromCart(ctx context.Context, req CreateOrderRequest) (*models.Order, error) {
	var order *models.Order
	cartIDs := cartItemIDs(req.Items)

	err := database.WithRetry(ctx, r.db, database.DefaultTxOptions(), func(tx *sql.Tx) error {
		if len(cartIDs) > 0 {
			locked, err := lockCartItems(ctx, tx, req.UserID, cartIDs)
			if err != nil {
				return err
			}
			if !sameQuantities(locked, req.Items) {
				return database.ErrCartChanged
			}
		}

		order = &models.Order{}
		err := scanOrder(tx.QueryRowContext(ctx,
			`INSERT INTO orders (user_id, total_amount, payment_status, delivery_status, created_at, updated_at)
			 VALUES ($1, $2, $3, $4, NOW(), NOW())
			 RETURNING `+orderColumns,
			req.UserID, req.TotalAmount, models.PaymentStatusPending, models.DeliveryStatusPending), order)
		if err != nil {
			return fmt.Errorf("create order: %w", err)
		}

		for _, item := range req.Items {
			if item.Quantity < 1 {
				return database.ErrInvalidQuantity
			}

			subtotal := item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity)))
			productID := item.ProductID

			var line models.OrderItem
			err = tx.QueryRowContext(ctx,
				`INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity, subtotal, created_at)
				 VALUES ($1, $2, $3, $4, $5, $6, NOW())
				 RETURNING id, created_at`,
				order.ID, productID, item.ProductName, item.UnitPrice, item.Quantity, subtotal).Scan(&line.ID, &line.CreatedAt)
			if err != nil {
				if database.IsForeignKeyViolation(err) {
					return database.ErrProductNotFound
				}
				return fmt.Errorf("create order item: %w", err)
			}

			line.OrderID = order.ID
			line.ProductID = &productID
			line.ProductName = item.ProductName
			line.UnitPrice = item.UnitPrice
			line.Quantity = item.Quantity
			line.Subtotal = subtotal
			order.Items = append(order.Items, line)
		}

		if len(cartIDs) == 0 {
			return nil
		}
		return removeCartItems(ctx, tx, req.UserID, cartIDs)
	})

	if err != nil {
		return nil, err
	}

	return order, nil
}

func cartItemIDs(items []OrderItemRequest) []string {
	ids := make([]string, 0, len(items))
	for _, item := range items {
		if item.CartItemID != uuid.Nil {
			ids = append(ids, item.CartItemID.String())
		}
	}
	return ids
}

func sameQuantities(locked map[uuid.UUID]int, items []OrderItemRequest) bool {
	matched := 0
	for _, item := range items {
		if item.CartItemID == uuid.Nil {
			continue
		}
		quantity, ok := locked[item.CartItemID]
		if !ok || quantity != item.Quantity {
			return false
		}
		matched++
	}
	return matched == len(locked)
}

func (r *OrderRepository) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	order := &models.Order{}

	query := `SELECT ` + orderColumns + ` FROM orders WHERE id = $1`

	if err := scanOrder(r.db.QueryRowContext(ctx, query, id), order); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	items, err := r.items(ctx, id)
	if err != nil {
		return nil, err
	}
	order.Items = items

	return order, nil
}

// GetForUser hides other users' orders behind ErrOrderNotFound.
func (r *OrderRepository) GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	order, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.UserID != userID {
		return nil, database.ErrOrderNotFound
	}
	return order, nil
}

func (r *OrderRepository) items(ctx context.Context, orderID uuid.UUID) ([]models.OrderItem, error) {
	query := `
		SELECT id, order_id, product_id, product_name, unit_price, quantity, subtotal, created_at
		FROM order_items
		WHERE order_id = $1
		ORDER BY created_at, id`

	rows, err := r.db.QueryContext(ctx, query, orderID)
	if err != nil {
		return nil, fmt.Errorf("get order items: %w", err)
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		var productID uuid.NullUUID
		err := rows.Scan(
			&item.ID,
			&item.OrderID,
			&productID,
			&item.ProductName,
			&item.UnitPrice,
			&item.Quantity,
			&item.Subtotal,
			&item.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("scan order item: %w", err)
		}
		if productID.Valid {
			item.ProductID = &productID.UUID
		}
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return items, nil
}

func (r *OrderRepository) ListForUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*CursorPage[models.Order], error) {
	cursorData, err := DecodeCursor(cursor)
	if err != nil {
		return nil, err
	}

	if limit < 1 || limit > MaxPageSize {
		limit = DefaultPageSize
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		WHERE user_id = $1
		  AND (created_at, id) < ($2, $3)
		ORDER BY created_at DESC, id DESC
		LIMIT $4`

	rows, err := r.db.QueryContext(ctx, query, userID, cursorData.CreatedAt, cursorData.ID, limit+1)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	orders := []models.Order{}
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	hasMore := len(orders) > limit
	if hasMore {
		orders = orders[:limit]
	}

	var nextCursor string
	if hasMore && len(orders) > 0 {
		lastOrder := orders[len(orders)-1]
		nextCursor = EncodeCursor(OrderCursor{
			CreatedAt: lastOrder.CreatedAt,
			ID:        lastOrder.ID,
		})
	}

	return &CursorPage[models.Order]{
		Items:      orders,
		NextCursor: nextCursor,
		HasMore:    hasMore,
	}, nil
}

func (r *OrderRepository) List(ctx context.Context, req PageRequest) (*OffsetPage[models.Order], error) {
	req = req.Normalize()

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM orders`).Scan(&total); err != nil {
		return nil, fmt.Errorf("count orders: %w", err)
	}

	query := `SELECT ` + orderColumns + `
		FROM orders
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, req.PageSize, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		var order models.Order
		if err := scanOrder(rows, &order); err != nil {
			return nil, fmt.Errorf("scan order: %w", err)
		}
		orders = append(orders, order)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(orders, total, req), nil
}

// UpdateStatus changes whichever statuses are set; nil fields keep their
// current value.
func (r *OrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, upd StatusUpdate) (*models.Order, error) {
	order := &models.Order{}

	query := `
		UPDATE orders
		SET payment_status = COALESCE($1, payment_status),
		    delivery_status = COALESCE($2, delivery_status),
		    updated_at = NOW()
		WHERE id = $3
		RETURNING ` + orderColumns

	err := scanOrder(r.db.QueryRowContext(ctx, query, upd.PaymentStatus, upd.DeliveryStatus, id), order)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrOrderNotFound
		}
		if database.IsCheckViolation(err) {
			return nil, fmt.Errorf("update order status: invalid status: %w", err)
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return order, nil
}
