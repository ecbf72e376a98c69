package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/safar/go-storefront/internal/database"
	"github.com/safar/go-storefront/internal/models"
)

type BlogInput struct {
	Title       string
	Content     string
	Excerpt     string
	Media       models.MediaList
	IsPublished bool
}

type BlogFilter struct {
	PublishedOnly bool
}

type BlogRepository struct {
	db *sql.DB
}

func NewBlogRepository(db *sql.DB) *BlogRepository {
	return &BlogRepository{db: db}
}

const blogColumns = `id, title, content, excerpt, media, is_published, author_id, created_at, updated_at`

func scanBlog(row interface{ Scan(...any) error }, b *models.Blog) error {
	return row.Scan(
		&b.ID,
		&b.Title,
		&b.Content,
		&b.Excerpt,
		&b.Media,
		&b.IsPublished,
		&b.AuthorID,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
}

func (r *BlogRepository) Create(ctx context.Context, authorID uuid.UUID, in BlogInput) (*models.Blog, error) {
	blog := &models.Blog{}

	query := `
		INSERT INTO blogs (title, content, excerpt, media, is_published, author_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + blogColumns

	row := r.db.QueryRowContext(ctx, query,
		in.Title, in.Content, in.Excerpt, in.Media, in.IsPublished, authorID)
	if err := scanBlog(row, blog); err != nil {
		return nil, fmt.Errorf("create blog: %w", err)
	}

	return blog, nil
}

func (r *BlogRepository) Get(ctx context.Context, id uuid.UUID) (*models.Blog, error) {
	blog := &models.Blog{}

	query := `SELECT ` + blogColumns + ` FROM blogs WHERE id = $1`

	if err := scanBlog(r.db.QueryRowContext(ctx, query, id), blog); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrBlogNotFound
		}
		return nil, fmt.Errorf("get blog: %w", err)
	}

	return blog, nil
}

func (r *BlogRepository) Update(ctx context.Context, id uuid.UUID, in BlogInput) (*models.Blog, error) {
	blog := &models.Blog{}

	query := `
		UPDATE blogs
		SET title = $1, content = $2, excerpt = $3, media = $4, is_published = $5, updated_at = NOW()
		WHERE id = $6
		RETURNING ` + blogColumns

	row := r.db.QueryRowContext(ctx, query,
		in.Title, in.Content, in.Excerpt, in.Media, in.IsPublished, id)
	if err := scanBlog(row, blog); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrBlogNotFound
		}
		return nil, fmt.Errorf("update blog: %w", err)
	}

	return blog, nil
}

func (r *BlogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM blogs WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete blog: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}

	if rowsAffected == 0 {
		return database.ErrBlogNotFound
	}

	return nil
}

func (r *BlogRepository) List(ctx context.Context, filter BlogFilter, req PageRequest) (*OffsetPage[models.Blog], error) {
	req = req.Normalize()

	where := ""
	if filter.PublishedOnly {
		where = "WHERE is_published"
	}

	var total int64
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM blogs `+where).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count blogs: %w", err)
	}

	query := `SELECT ` + blogColumns + `
		FROM blogs ` + where + `
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2`

	rows, err := r.db.QueryContext(ctx, query, req.PageSize, req.Offset())
	if err != nil {
		return nil, fmt.Errorf("list blogs: %w", err)
	}
	defer rows.Close()

	var blogs []models.Blog
	for rows.Next() {
		var blog models.Blog
		if err := scanBlog(rows, &blog); err != nil {
			return nil, fmt.Errorf("scan blog: %w", err)
		}
		blogs = append(blogs, blog)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return newOffsetPage(blogs, total, req), nil
}
