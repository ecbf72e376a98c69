package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/catalog"
	"github.com/safar/go-storefront/internal/checkout"
	"github.com/safar/go-storefront/internal/media"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockProductService struct{ mock.Mock }

func (m *MockProductService) List(ctx context.Context, filter store.ProductFilter, req store.PageRequest) (*store.OffsetPage[models.Product], error) {
	args := m.Called(ctx, filter, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.OffsetPage[models.Product]), args.Error(1)
}

func (m *MockProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) GetActive(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Create(ctx context.Context, in store.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Update(ctx context.Context, id uuid.UUID, in store.ProductInput) (*models.Product, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Product), args.Error(1)
}

func (m *MockProductService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockProductService) UploadImage(ctx context.Context, owner uuid.UUID, f media.File) (string, error) {
	args := m.Called(ctx, owner, f)
	return args.String(0), args.Error(1)
}

type MockBlogService struct{ mock.Mock }

func (m *MockBlogService) List(ctx context.Context, filter store.BlogFilter, req store.PageRequest) (*store.OffsetPage[models.Blog], error) {
	args := m.Called(ctx, filter, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.OffsetPage[models.Blog]), args.Error(1)
}

func (m *MockBlogService) Get(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Blog), args.Error(1)
}

func (m *MockBlogService) GetPublished(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Blog), args.Error(1)
}

func (m *MockBlogService) Create(ctx context.Context, authorID uuid.UUID, draft catalog.BlogDraft) (*catalog.BlogResult, error) {
	args := m.Called(ctx, authorID, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.BlogResult), args.Error(1)
}

func (m *MockBlogService) Update(ctx context.Context, editor, id uuid.UUID, draft catalog.BlogDraft) (*catalog.BlogResult, error) {
	args := m.Called(ctx, editor, id, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.BlogResult), args.Error(1)
}

func (m *MockBlogService) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

type MockCartStore struct{ mock.Mock }

func (m *MockCartStore) List(ctx context.Context, userID uuid.UUID) ([]models.CartItem, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.CartItem), args.Error(1)
}

func (m *MockCartStore) Add(ctx context.Context, userID, productID uuid.UUID, quantity int) (*models.CartItem, error) {
	args := m.Called(ctx, userID, productID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartStore) UpdateQuantity(ctx context.Context, userID, itemID uuid.UUID, quantity int) (*models.CartItem, error) {
	args := m.Called(ctx, userID, itemID, quantity)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.CartItem), args.Error(1)
}

func (m *MockCartStore) Remove(ctx context.Context, userID, itemID uuid.UUID) error {
	return m.Called(ctx, userID, itemID).Error(0)
}

type MockProfileStore struct{ mock.Mock }

func (m *MockProfileStore) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileStore) Upsert(ctx context.Context, id uuid.UUID, in store.ProfileInput) (*models.Profile, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileStore) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

type MockOrderStore struct{ mock.Mock }

func (m *MockOrderStore) Get(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) GetForUser(ctx context.Context, userID, id uuid.UUID) (*models.Order, error) {
	args := m.Called(ctx, userID, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

func (m *MockOrderStore) ListForUser(ctx context.Context, userID uuid.UUID, cursor string, limit int) (*store.CursorPage[models.Order], error) {
	args := m.Called(ctx, userID, cursor, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.CursorPage[models.Order]), args.Error(1)
}

func (m *MockOrderStore) List(ctx context.Context, req store.PageRequest) (*store.OffsetPage[models.Order], error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*store.OffsetPage[models.Order]), args.Error(1)
}

func (m *MockOrderStore) UpdateStatus(ctx context.Context, id uuid.UUID, upd store.StatusUpdate) (*models.Order, error) {
	args := m.Called(ctx, id, upd)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Order), args.Error(1)
}

type MockCheckoutService struct{ mock.Mock }

func (m *MockCheckoutService) PlaceOrder(ctx context.Context, userID uuid.UUID) (*checkout.Receipt, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*checkout.Receipt), args.Error(1)
}
