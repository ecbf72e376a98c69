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

type BlogStore interface {
	Create(ctx context.Context, authorID uuid.UUID, in store.BlogInput) (*models.Blog, error)
	Get(ctx context.Context, id uuid.UUID) (*models.Blog, error)
	Update(ctx context.Context, id uuid.UUID, in store.BlogInput) (*models.Blog, error)
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter store.BlogFilter, req store.PageRequest) (*store.OffsetPage[models.Blog], error)
}

// BlogDraft is what the editor submits. Files are new uploads; Keep, when not
// nil, replaces the saved media list so entries can be removed.
type BlogDraft struct {
	Title       string
	Content     string
	Excerpt     string
	IsPublished bool
	Keep        *models.MediaList
	Files       []media.File
}

type BlogResult struct {
	Blog   *models.Blog `json:"blog"`
	Notice string       `json:"notice,omitempty"`
}

type BlogService struct {
	blogs    BlogStore
	uploader *media.Uploader
	cache    *cache.Namespace
	logger   *slog.Logger
}

func NewBlogService(blogs BlogStore, uploader *media.Uploader, ns *cache.Namespace, logger *slog.Logger) *BlogService {
	return &BlogService{blogs: blogs, uploader: uploader, cache: ns, logger: logger}
}

func (s *BlogService) List(ctx context.Context, filter store.BlogFilter, req store.PageRequest) (*store.OffsetPage[models.Blog], error) {
	req = req.Normalize()
	key := fmt.Sprintf("published=%t:page=%d:size=%d", filter.PublishedOnly, req.Page, req.PageSize)

	return cache.Fetch(ctx, s.cache, key, func(ctx context.Context) (*store.OffsetPage[models.Blog], error) {
		return s.blogs.List(ctx, filter, req)
	})
}

func (s *BlogService) Get(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	return s.blogs.Get(ctx, id)
}

func (s *BlogService) GetPublished(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	b, err := s.blogs.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !b.IsPublished {
		return nil, database.ErrBlogNotFound
	}
	return b, nil
}

type attached struct {
	media  models.MediaList
	keys   []string
	notice string
}

// attach caps the staged images against what the post already holds and
// uploads the survivors. Nothing is written to the database here.
func (s *BlogService) attach(ctx context.Context, owner uuid.UUID, existing models.MediaList, files []media.File) (attached, error) {
	capped := media.ApplyImageCap(existing, files)
	if capped.Rejected > 0 {
		s.logger.InfoContext(ctx, "staged images dropped", slog.Int("rejected", capped.Rejected))
	}

	batch, err := s.uploader.UploadAll(ctx, owner.String(), capped.Accepted)
	if err != nil {
		return attached{}, fmt.Errorf("upload blog media: %w", err)
	}

	out := make(models.MediaList, 0, len(existing)+len(batch.Media))
	out = append(out, existing...)
	out = append(out, batch.Media...)

	return attached{media: out, keys: batch.Keys, notice: capped.Notice}, nil
}

// discard removes objects uploaded for a write that did not reach the
// database.
func (s *BlogService) discard(ctx context.Context, keys []string) {
	if len(keys) == 0 {
		return
	}
	if err := s.uploader.Remove(ctx, keys); err != nil {
		s.logger.WarnContext(ctx, "orphaned blog media left in bucket",
			slog.Any("keys", keys),
			slog.Any("error", err),
		)
	}
}

func (s *BlogService) Create(ctx context.Context, authorID uuid.UUID, draft BlogDraft) (*BlogResult, error) {
	var existing models.MediaList
	if draft.Keep != nil {
		existing = *draft.Keep
	}

	att, err := s.attach(ctx, authorID, existing, draft.Files)
	if err != nil {
		return nil, err
	}

	blog, err := s.blogs.Create(ctx, authorID, store.BlogInput{
		Title:       draft.Title,
		Content:     draft.Content,
		Excerpt:     draft.Excerpt,
		Media:       att.media,
		IsPublished: draft.IsPublished,
	})
	if err != nil {
		s.discard(ctx, att.keys)
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger)
	return &BlogResult{Blog: blog, Notice: att.notice}, nil
}

func (s *BlogService) Update(ctx context.Context, editor, id uuid.UUID, draft BlogDraft) (*BlogResult, error) {
	current, err := s.blogs.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	existing := current.Media
	if draft.Keep != nil {
		existing = *draft.Keep
	}

	att, err := s.attach(ctx, editor, existing, draft.Files)
	if err != nil {
		return nil, err
	}

	blog, err := s.blogs.Update(ctx, id, store.BlogInput{
		Title:       draft.Title,
		Content:     draft.Content,
		Excerpt:     draft.Excerpt,
		Media:       att.media,
		IsPublished: draft.IsPublished,
	})
	if err != nil {
		s.discard(ctx, att.keys)
		return nil, err
	}

	invalidate(ctx, s.cache, s.logger)
	return &BlogResult{Blog: blog, Notice: att.notice}, nil
}

func (s *BlogService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.blogs.Delete(ctx, id); err != nil {
		return err
	}
	invalidate(ctx, s.cache, s.logger)
	return nil
}
