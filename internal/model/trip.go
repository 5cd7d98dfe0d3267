package model

import (
	"encoding/json"
	"time"
)

type Trip struct {
	ID          int64           `json:"id"`
	UserID      int64           `json:"userId"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Locations   json.RawMessage `json:"locations" swaggertype:"object"`
	IsPublic    bool            `json:"isPublic"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

type CreateTripRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Locations   json.RawMessage `json:"locations" swaggertype:"object"`
	IsPublic    bool            `json:"isPublic"`
}

// UpdateTripRequest only touches the fields that are present.
type UpdateTripRequest struct {
	Name        *string         `json:"name"`
	Description *string         `json:"description"`
	StartDate   *time.Time      `json:"startDate"`
	EndDate     *time.Time      `json:"endDate"`
	Locations   json.RawMessage `json:"locations" swaggertype:"object"`
	IsPublic    *bool           `json:"isPublic"`
}
