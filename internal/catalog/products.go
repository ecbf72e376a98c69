// Package catalog holds the product and blog services behind the storefront
// and the admin panels. Lists are served through the cache and every mutation
// invalidates the namespace, so the next list reflects the change.
package catalog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/cache"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/media"
	"github.com/safar/go-storefront/internal/models"
	"github.com/safar/go-storefront/internal/store"
)

type ProductStore interface {
	Create(ctx context.Context, in store.ProductInput) (*models.Product, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Product, error)
	Update(ctx context.Context, id uuid.UUID, in store.ProductInput) (*models.Product, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter store.ProductFilter, req store.PageRequest) (*store.OffsetPage[models.Product], error)
}

type ProductService struct {
	products ProductStore
	images   *media.Uploader
	cache    *cache.Namespace
	logger   *slog.Logger
}

func NewProductService(products ProductStore, images *media.Uploader, ns *cache.Namespace, logger *slog.Logger) *ProductService {
	return &ProductService{products: products, images: images, cache: ns, logger: logger}
}

func (s *ProductService) List(ctx context.Context, filter store.ProductFilter, req store.PageRequest) (*store.OffsetPage[models.Product], error) {
	req = req.Normalize()
	key := fmt.Sprintf("active=%t:page=%d:size=%d", filter.ActiveOnly, req.Page, req.PageSize)

	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*store.OffsetPage[models.Product], error) {
		return s.products.List(ctx, filter, req)
	})
}

func (s *ProductService) Get(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	return s.products.Get(ctx, id)
}

// GetActive hides inactive products from the storefront.
func (s *ProductService) GetActive(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	p, err := s.products.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.IsActive {
		return nil, database.ErrProductNotFound
	}
	return p, nil
}

func (s *ProductService) Create(ctx context.Context, in store.ProductInput) (*models.Product, error) {
	p, err := s.products.Create(ctx, in)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger)
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id uuid.UUID, in store.ProductInput) (*models.Product, error) {
	p, err := s.products.Update(ctx, id, in)
	if err != nil {
		return nil, err
	}
	invalidate(ctx, s.cache, s.logger)
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.products.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger)
	return nil
}

// UploadImage stores a product picture in the product bucket and returns its
// public URL. The product row is not touched.
func (s *ProductService) UploadImage(ctx context.Context, owner uuid.UUID, f media.File) (string, error) {
	m, err := s.images.Upload(ctx, owner.String(), f)
	if err != nil {
		return "", err
	}
	return m.URL, nil
}

func invalidate(ctx context.Context, ns *cache.Namespace, logger *slog.Logger) {
	if err := ns.Invalidate(ctx); err != nil {
		logger.ErrorContext(ctx, "list cache not invalidated", slog.String("namespace", ns.Name()), slog.Any("error", err))
	}
}
