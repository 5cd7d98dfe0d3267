package db

import (
	"context"
	"encoding/json"

	"github.com/Aashish1107/TravelAgent/internal/model"
)

const tripColumns = `
	id, user_id, name, COALESCE(description, ''), start_date, end_date,
	COALESCE(locations, 'null'::jsonb), is_public, created_at, updated_at
`

func (db *Postgres) EnsureTravelSchema(ctx context.Context) error {
	queries := []string{
		`
		CREATE TABLE IF NOT EXISTS trips (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			name TEXT NOT NULL,
			description TEXT,
			start_date TIMESTAMPTZ,
			end_date TIMESTAMPTZ,
			locations JSONB,
			is_public BOOLEAN NOT NULL DEFAULT FALSE,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS trips_user_id_idx ON trips(user_id)`,
		`
		CREATE TABLE IF NOT EXISTS saved_spots (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			spot_id TEXT NOT NULL,
			name TEXT NOT NULL,
			description TEXT,
			latitude NUMERIC(10, 8) NOT NULL,
			longitude NUMERIC(11, 8) NOT NULL,
			rating NUMERIC(2, 1),
			image_url TEXT,
			address TEXT,
			distance NUMERIC(8, 2),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS saved_spots_user_id_idx ON saved_spots(user_id)`,
		`
		CREATE TABLE IF NOT EXISTS travel_searches (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			location TEXT NOT NULL,
			latitude NUMERIC(10, 8),
			longitude NUMERIC(11, 8),
			search_type TEXT NOT NULL CHECK (search_type IN ('tourist', 'weather', 'both')),
			results JSONB,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS travel_searches_user_created_idx ON travel_searches(user_id, created_at DESC)`,
		`
		CREATE TABLE IF NOT EXISTS agent_conversations (
			id BIGSERIAL PRIMARY KEY,
			user_id BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
			agent_type TEXT NOT NULL,
			message TEXT NOT NULL,
			response TEXT,
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
		`,
		`CREATE INDEX IF NOT EXISTS agent_conversations_user_created_idx ON agent_conversations(user_id, created_at DESC)`,
	}

	for _, query := range queries {
		if _, err := db.Pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

func (db *Postgres) CreateTrip(ctx context.Context, userID int64, req model.CreateTripRequest) (*model.Trip, error) {
	query := `
		INSERT INTO trips (user_id, name, description, start_date, end_date, locations, is_public, created_at, updated_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, $6, $7, NOW(), NOW())
		RETURNING ` + tripColumns
	return scanTrip(db.Pool.QueryRow(ctx, query,
		userID,
		req.Name,
		req.Description,
		req.StartDate,
		req.EndDate,
		nullableJSON(req.Locations),
		req.IsPublic,
	))
}

func (db *Postgres) ListTrips(ctx context.Context, userID int64) ([]model.Trip, error) {
	query := `
		SELECT ` + tripColumns + `
		FROM trips
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.Trip{}
	for rows.Next() {
		trip, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *trip)
	}
	return list, rows.Err()
}

// UpdateTrip returns pgx.ErrNoRows when the trip does not exist or belongs to
// another user.
func (db *Postgres) UpdateTrip(ctx context.Context, userID, tripID int64, req model.UpdateTripRequest) (*model.Trip, error) {
	query := `
		UPDATE trips
		SET
			name = COALESCE($3, name),
			description = COALESCE($4, description),
			start_date = COALESCE($5, start_date),
			end_date = COALESCE($6, end_date),
			locations = COALESCE($7, locations),
			is_public = COALESCE($8, is_public),
			updated_at = NOW()
		WHERE id = $1 AND user_id = $2
		RETURNING ` + tripColumns
	return scanTrip(db.Pool.QueryRow(ctx, query,
		tripID,
		userID,
		req.Name,
		req.Description,
		req.StartDate,
		req.EndDate,
		nullableJSON(req.Locations),
		req.IsPublic,
	))
}

func (db *Postgres) DeleteTrip(ctx context.Context, userID, tripID int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM trips WHERE id = $1 AND user_id = $2`, tripID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanTrip(row rowScanner) (*model.Trip, error) {
	var trip model.Trip
	var locations []byte
	err := row.Scan(
		&trip.ID,
		&trip.UserID,
		&trip.Name,
		&trip.Description,
		&trip.StartDate,
		&trip.EndDate,
		&locations,
		&trip.IsPublic,
		&trip.CreatedAt,
		&trip.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	trip.Locations = json.RawMessage(locations)
	return &trip, nil
}

func nullableJSON(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	return []byte(raw)
}
