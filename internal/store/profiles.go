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

type ProfileInput struct {
	FullName string
	Phone    string
	Address  string
}

type ProfileRepository struct {
	db *sql.DB
}

func NewProfileRepository(db *sql.DB) *ProfileRepository {
	return &ProfileRepository{db: db}
}

func (r *ProfileRepository) Get(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	profile := &models.Profile{}

	query := `
		SELECT id, full_name, phone, address, is_admin, created_at, updated_at
		FROM profiles
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Phone,
		&profile.Address,
		&profile.IsAdmin,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrProfileNotFound
		}
		return nil, fmt.Errorf("get profile: %w", err)
	}

	return profile, nil
}

// Upsert creates the profile on first save. is_admin is never written here;
// it is granted out of band.
func (r *ProfileRepository) Upsert(ctx context.Context, id uuid.UUID, in ProfileInput) (*models.Profile, error) {
	profile := &models.Profile{}

	query := `
		INSERT INTO profiles (id, full_name, phone, address, is_admin, created_at, updated_at)
		VALUES ($1, $2, $3, $4, FALSE, NOW(), NOW())
		ON CONFLICT (id) DO UPDATE
		SET full_name = EXCLUDED.full_name,
		    phone = EXCLUDED.phone,
		    address = EXCLUDED.address,
		    updated_at = NOW()
		RETURNING id, full_name, phone, address, is_admin, created_at, updated_at`

	err := r.db.QueryRowContext(ctx, query, id, in.FullName, in.Phone, in.Address).Scan(
		&profile.ID,
		&profile.FullName,
		&profile.Phone,
		&profile.Address,
		&profile.IsAdmin,
		&profile.CreatedAt,
		&profile.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("upsert profile: %w", err)
	}

	return profile, nil
}

func (r *ProfileRepository) IsAdmin(ctx context.Context, id uuid.UUID) (bool, error) {
	var isAdmin bool
	err := r.db.QueryRowContext(ctx,
		`SELECT is_admin FROM profiles WHERE id = $1`, id).Scan(&isAdmin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("check admin: %w", err)
	}
	return isAdmin, nil
}
