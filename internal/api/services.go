package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/auth"
	"github.com/safar/go-storefront/internal/catalog"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/media"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
)

type TokenVerifier interface {
	ValidateToken(token string) (*auth.Claims, error)
}

type ProductService interface {
	List(ctx context.Context, filter store.ProductFilter, req store.PageRequest) (*store.OffsetPage[models.Product], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	GetActive(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Create(ctx context.Context, in store.ProductInput) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, in store.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	UploadImage(ctx context.Context, owner uuid.UUID, f media.File) (string, error)
}

type BlogService interface {
	List(ctx context.Context, filter store.BlogFilter, req store.PageRequest) (*store.OffsetPage[models.Blog], error)
	Get(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	GetPublished(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	Create(ctx context.Context, authorID uuid.UUID, draft catalog.BlogDraft) (*catalog.BlogResult, error)
	Update(ctx context.Context, editor, id uuid.UUID, draft catalog.BlogDraft) (*catalog.BlogResult, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

type CartStore interface {
	List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error)
	Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error)
	UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error)
	Remove(ctx context.Context, userID, itemID uuid.UUID) error
}

type ProfileStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Profile, error)
	Upsert(ctx context.Context, id uuid.UUID, in store.ProfileInput) (*models.Profile, error)
	IsAdmin(ctx context.Context, id uuid.UUID) (bool, error)
}

type OrderStore interface {
	Get(ctx context.Context, id uuid.UUID) (*models.Order, error)
	GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error)
	ListForUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*store.CursorPage[models.Order], error)
	List(ctx context.Context, req store.PageRequest) (*store.OffsetPage[models.Order], error)
	UpdateStatus(ctx context.Context, id uuid.UUID, upd store.StatusUpdate) (*models.Order, error)
}

type CheckoutService interface {
	PlaceOrder(ctx context.Context, userID uuid.UUID) (*checkout.Receipt, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}
