package db

import (
	"context"

	"github.com/Aashish1107/TravelAgent/internal/model"
)

// Nullable text columns are read through COALESCE so model.User can carry
// plain strings; writes go through NULLIF to keep NULL in the table.
const userColumns = `
	id, email, COALESCE(password_hash, ''), COALESCE(first_name, ''), COALESCE(last_name, ''),
	COALESCE(profile_image_url, ''), COALESCE(provider_id, ''), is_verified, created_at, updated_at
`

func (db *Postgres) EnsureAuthSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS users (
			id BIGSERIAL PRIMARY KEY,
			email TEXT NOT NULL UNIQUE,
			password_hash TEXT,
			first_name TEXT,
			last_name TEXT,
			profile_image_url TEXT,
			provider_id TEXT UNIQUE,
			is_verified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			CONSTRAINT users_credential_present CHECK (password_hash IS NOT NULL OR provider_id IS NOT NULL)
		)
		`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) CreateUser(ctx context.Context, user model.NewUser) (*model.User, error) {
	query := `
		INSERT INTO users (email, password_hash, first_name, last_name, is_verified, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), FALSE, NOW(), NOW())
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, user.Email, user.PasswordHash, user.FirstName, user.LastName))
}

// UpsertUserByProviderID provisions a verified, password-less user for a
// federated profile. A concurrent first login for the same email links the
// provider id to the existing row instead of failing on the unique index.
// A conflict on provider_id is not handled here; callers look the provider
// id up first.
func (db *Postgres) UpsertUserByProviderID(ctx context.Context, profile model.FederatedProfile) (*model.User, error) {
	query := `
		INSERT INTO users (email, first_name, last_name, profile_image_url, provider_id, is_verified, created_at, updated_at)
		VALUES ($1, NULLIF($2, ''), NULLIF($3, ''), NULLIF($4, ''), $5, TRUE, NOW(), NOW())
		ON CONFLICT (email) DO UPDATE
		SET provider_id = COALESCE(users.provider_id, EXCLUDED.provider_id),
			updated_at = NOW()
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query,
		profile.Email,
		profile.FirstName,
		profile.LastName,
		profile.PictureURL,
		profile.ProviderID,
	))
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByProviderID(ctx context.Context, providerID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE provider_id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, providerID))
}

func (db *Postgres) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.FirstName,
		&user.LastName,
		&user.ProfileImageURL,
		&user.ProviderID,
		&user.IsVerified,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
