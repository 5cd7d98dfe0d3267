package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Aashish1107/TravelAgent/internal/model"
)

const searchColumns = `
	id, user_id, location, latitude::float8, longitude::float8, search_type,
	COALESCE(results, 'null'::jsonb), created_at
`

func (db *Postgres) CreateTravelSearch(ctx context.Context, userID int64, search model.NewTravelSearch) (*model.TravelSearch, error) {
	var results any
	if !search.Results.Empty() {
		raw, err := json.Marshal(search.Results)
		if err != nil {
			return nil, fmt.Errorf("encode search results: %w", err)
		}
		results = raw
	}

	query := `
		INSERT INTO travel_searches (user_id, location, latitude, longitude, search_type, results, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW())
		RETURNING ` + searchColumns
	return scanSearch(db.Pool.QueryRow(ctx, query,
		userID,
		search.Location,
		search.Latitude,
		search.Longitude,
		search.SearchType,
		results,
	))
}

func (db *Postgres) ListTravelSearches(ctx context.Context, userID int64) ([]model.TravelSearch, error) {
	query := `
		SELECT ` + searchColumns + `
		FROM travel_searches
		WHERE user_id = $1
		ORDER BY created_at DESC, id DESC
	`
	rows, err := db.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	list := []model.TravelSearch{}
	for rows.Next() {
		search, err := scanSearch(rows)
		if err != nil {
			return nil, err
		}
		list = append(list, *search)
	}
	return list, rows.Err()
}

func scanSearch(row rowScanner) (*model.TravelSearch, error) {
	var search model.TravelSearch
	var results []byte
	err := row.Scan(
		&search.ID,
		&search.UserID,
		&search.Location,
		&search.Latitude,
		&search.Longitude,
		&search.SearchType,
		&results,
		&search.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	search.Results = json.RawMessage(results)
	return &search, nil
}
