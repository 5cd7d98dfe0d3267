package model

import (
	"encoding/json"
	"time"
)

const (
	SearchTypeTourist = "tourist"
	SearchTypeWeather = "weather"
	SearchTypeBoth    = "both"
)

type LocationSearchRequest struct {
	Location   string   `json:"location" binding:"required"`
	Latitude   *float64 `json:"latitude"`
	Longitude  *float64 `json:"longitude"`
	SearchType string   `json:"searchType" binding:"required" enums:"tourist,weather,both"`
}

// SearchResults is what the agents answered for one search. A part is left
// out when it was not asked for or the agent could not be reached.
type SearchResults struct {
	Spots   json.RawMessage `json:"spots,omitempty" swaggertype:"array,object"`
	Weather *Weather        `json:"weather,omitempty"`
}

func (r *SearchResults) Empty() bool {
	return r == nil || (len(r.Spots) == 0 && r.Weather == nil)
}

type NewTravelSearch struct {
	Location   string
	Latitude   *float64
	Longitude  *float64
	SearchType string
	Results    *SearchResults
}

type TravelSearch struct {
	ID         int64           `json:"id"`
	UserID     int64           `json:"userId"`
	Location   string          `json:"location"`
	Latitude   *float64        `json:"latitude"`
	Longitude  *float64        `json:"longitude"`
	SearchType string          `json:"searchType"`
	Results    json.RawMessage `json:"results" swaggertype:"object"`
	CreatedAt  time.Time       `json:"createdAt"`
}

type LocationSearchResponse struct {
	Success  bool           `json:"success"`
	SearchID int64          `json:"searchId"`
	Message  string         `json:"message"`
	Data     *SearchResults `json:"data"`
}
