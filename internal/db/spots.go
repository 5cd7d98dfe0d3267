package db

import (
	"context"

	"github.com/Aashish1107/TravelAgent/internal/model"
)

const spotColumns = `
	id, user_id, spot_id, name, COALESCE(description, ''), latitude::float8, longitude::float8,
	rating::float8, COALESCE(image_url, ''), COALESCE(address, ''), distance::float8, created_at
`

func (db *Postgres) SaveSpot(ctx context.Context, userID int64, req model.SaveSpotRequest) (*model.SavedSpot, error) {
	query := `
		INSERT INTO saved_spots (user_id, spot_id, name, description, latitude, longitude, rating, image_url, address, distance, created_at)
		VALUES ($1, $2, $3, NULLIF($4, ''), $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''), $10, NOW())
		RETURNING ` + spotColumns
	return scanSpot(db.Pool.QueryRow(ctx, query,
		userID,
		req.SpotID,
		req.Name,
		req.Description,
		*req.Latitude,
		*req.Longitude,
		req.Rating,
		req.ImageURL,
		req.Address,
		req.Distance,
	))
}

func (db *Postgres) ListSavedSpots(ctx context.Context, userID int64) ([]model.SavedSpot, error) {
	query := `
		SELECT ` + spotColumns + `
		FROM saved_spots
		WHERE user_id = $1
		ORDER BY created_at DESC
	`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.SavedSpot{}
	for rows.Next() {
		spot, err := scanSpot(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *spot)
	}
	return list, rows.Err()
}

func (db *Postgres) DeleteSavedSpot(ctx context.Context, userID, spotID int64) (bool, error) {
	tag, err := db.Pool.Exec(ctx, `DELETE FROM saved_spots WHERE id = $1 AND user_id = $2`, spotID, userID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanSpot(row rowScanner) (*model.SavedSpot, error) {
	var spot model.SavedSpot
	err := row.Scan(
		&spot.ID,
		&spot.UserID,
		&spot.SpotID,
		&spot.Name,
		&spot.Description,
		&spot.Latitude,
		&spot.Longitude,
		&spot.Rating,
		&spot.ImageURL,
		&spot.Address,
		&spot.Distance,
		&spot.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &spot, nil
}
