package model

import "time"

type SavedSpot struct {
	ID          int64     `json:"id"`
	UserID      int64     `json:"userId"`
	SpotID      string    `json:"spotId"`
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	Rating      *float64  `json:"rating,omitempty"`
	ImageURL    string    `json:"imageUrl,omitempty"`
	Address     string    `json:"address,omitempty"`
	Distance    *float64  `json:"distance,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
}

type SaveSpotRequest struct {
	SpotID      string   `json:"spotId" binding:"required"`
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Latitude    *float64 `json:"latitude" binding:"required"`
	Longitude   *float64 `json:"longitude" binding:"required"`
	Rating      *float64 `json:"rating"`
	ImageURL    string   `json:"imageUrl"`
	Address     string   `json:"address"`
	Distance    *float64 `json:"distance"`
}
