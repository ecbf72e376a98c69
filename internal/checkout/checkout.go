// Package checkout turns a cart into an order and the chat message that
// announces it to the shop.
package checkout

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/config"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
)

var (
	ErrEmptyCart          = errors.New("cart is empty")
	ErrIncompleteProfile  = errors.New("profile is missing delivery details")
	ErrProductUnavailable = errors.New("cart contains a product that is no longer available")
)

// IncompleteProfileError lists the profile fields that must be filled in
// before an order can be placed.
type IncompleteProfileError struct {
	Missing []string
}

func (e *IncompleteProfileError) Error() string {
	return fmt.Sprintf("%s: %s", ErrIncompleteProfile, strings.Join(e.Missing, ", "))
}

func (e *IncompleteProfileError) Is(target error) bool { return target == ErrIncompleteProfile }

type CartReader interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
}

type ProfileReader interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type OrderCreator interface {
	CreateFromCart(ctx context.Context, req store.CreateOrderRequest) (*models.Order, error)
}

type Receipt struct {
	Order       *models.Order `json:"order"`
	Message     string        `json:"message"`
	RedirectURL string        `json:"redirect_url"`
}

type Service struct {
	cart     CartReader
	profiles ProfileReader
	orders   OrderCreator
	cfg      config.CheckoutConfig
	logger   *slog.Logger
}

func NewService(cart CartReader, profiles ProfileReader, orders OrderCreator, cfg config.CheckoutConfig, logger *slog.Logger) *Service {
	return &Service{cart: cart, profiles: profiles, orders: orders, cfg: cfg, logger: logger}
}

func customerFrom(p *models.Profile) (Customer, error) {
	c := Customer{
		Name:    strings.TrimSpace(p.FullName),
		Phone:   strings.TrimSpace(p.Phone),
		Address: strings.TrimSpace(p.Address),
	}

	var missing []string
	if c.Name == "" {
		missing = append(missing, "full_name")
	}
	if c.Phone == "" {
		missing = append(missing, "phone")
	}
	if c.Address == "" {
		missing = append(missing, "address")
	}
	if len(missing) > 0 {
		return Customer{}, &IncompleteProfileError{Missing: missing}
	}

	return c, nil
}

// PlaceOrder validates the cart and the profile, writes the order and returns
// the chat link the client should open. Nothing is written when validation
// fails.
func (s *Service) PlaceOrder(ctx context.Context, userID uuid.UUID) (*Receipt, error) {
	items, err := s.cart.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load cart: %w", err)
	}
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	profile, err := s.profiles.Get(ctx, userID)
	if errors.Is(err, database.ErrProfileNotFound) {
		return nil, &IncompleteProfileError{Missing: []string{"full_name", "phone", "address"}}
	}
	if err != nil {
		return nil, fmt.Errorf("load profile: %w", err)
	}

	customer, err := customerFrom(profile)
	if err != nil {
		return nil, err
	}

	lines := make([]Line, 0, len(items))
	req := store.CreateOrderRequest{UserID: userID, Items: make([]store.OrderItemRequest, 0, len(items))}
	for _, item := range items {
		if !item.Product.IsActive {
			return nil, ErrProductUnavailable
		}
		if item.Quantity < 1 {
			return nil, database.ErrInvalidQuantity
		}

		lines = append(lines, Line{Name: item.Product.Name, UnitPrice: item.Product.Price, Quantity: item.Quantity})
		req.Items = append(req.Items, store.OrderItemRequest{
			CartItemID:  item.ID,
			ProductID:   item.ProductID,
			ProductName: item.Product.Name,
			UnitPrice:   item.Product.Price,
			Quantity:    item.Quantity,
		})
	}

	total := Total(lines)
	req.TotalAmount = total

	order, err := s.orders.CreateFromCart(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("place order: %w", err)
	}

	message := ComposeMessage(order, customer, lines, total)

	s.logger.InfoContext(ctx, "order placed",
		slog.String("order_id", order.ID.String()),
		slog.String("user_id", userID.String()),
		slog.String("total", total.StringFixed(2)),
		slog.Int("lines", len(lines)),
	)

	return &Receipt{
		Order:       order,
		Message:     message,
		RedirectURL: DeepLink(s.cfg.ChatBaseURL, s.cfg.ChatRecipient, message),
	}, nil
}
