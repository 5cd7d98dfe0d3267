package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"go.uber.org/zap"
)

type SearchRepo interface {
	CreateTravelSearch(ctx context.Context, userID int64, search model.NewTravelSearch) (*model.TravelSearch, error)
	ListTravelSearches(ctx context.Context, userID int64) ([]model.TravelSearch, error)
}

// SearchAgent is the part of the agent service a location search uses.
type SearchAgent interface {
	IsConfigured() bool
	FindTouristSpots(ctx context.Context, location string, lat, lng *float64) (json.RawMessage, error)
	GetWeatherAt(ctx context.Context, location string, lat, lng *float64) (*model.Weather, error)
}

// SearchService records a user's location searches and asks the agents for
// spots and weather. Agent failures degrade the answer, never the request.
type SearchService struct {
	repo   SearchRepo
	agent  SearchAgent
	logger *zap.Logger
}

func NewSearchService(repo SearchRepo, agent SearchAgent, logger *zap.Logger) *SearchService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SearchService{repo: repo, agent: agent, logger: logger}
}

func (s *SearchService) Search(ctx context.Context, userID int64, req model.LocationSearchRequest) (*model.TravelSearch, *model.SearchResults, error) {
	req.Location = strings.TrimSpace(req.Location)
	if req.Location == "" {
		return nil, nil, ErrInvalidInput
	}
	switch req.SearchType {
	case model.SearchTypeTourist, model.SearchTypeWeather, model.SearchTypeBoth:
	default:
		return nil, nil, ErrInvalidInput
	}
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, nil, ErrInvalidInput
	}
	if req.Latitude != nil && (*req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180) {
		return nil, nil, ErrInvalidInput
	}

	results := s.lookup(ctx, userID, req)

	search, err := s.repo.CreateTravelSearch(ctx, userID, model.NewTravelSearch{
		Location:   req.Location,
		Latitude:   req.Latitude,
		Longitude:  req.Longitude,
		SearchType: req.SearchType,
		Results:    results,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create travel search: %w", err)
	}
	if results.Empty() {
		results = nil
	}
	return search, results, nil
}

func (s *SearchService) History(ctx context.Context, userID int64) ([]model.TravelSearch, error) {
	return s.repo.ListTravelSearches(ctx, userID)
}

func (s *SearchService) lookup(ctx context.Context, userID int64, req model.LocationSearchRequest) *model.SearchResults {
	results := &model.SearchResults{}
	wantSpots := req.SearchType == model.SearchTypeTourist || req.SearchType == model.SearchTypeBoth
	wantWeather := req.SearchType == model.SearchTypeWeather || req.SearchType == model.SearchTypeBoth
	configured := s.agent != nil && s.agent.IsConfigured()

	if wantSpots && configured {
		spots, err := s.agent.FindTouristSpots(ctx, req.Location, req.Latitude, req.Longitude)
		if err != nil {
			s.logger.Warn("agent tourist lookup failed",
				zap.String("location", req.Location),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		} else {
			results.Spots = spots
		}
	}

	if wantWeather {
		if configured {
			weather, err := s.agent.GetWeatherAt(ctx, req.Location, req.Latitude, req.Longitude)
			if err == nil {
				results.Weather = weather
			} else {
				s.logger.Warn("agent weather lookup failed, using fallback",
					zap.String("location", req.Location),
					zap.Int64("user_id", userID),
					zap.Error(err),
				)
			}
		}
		if results.Weather == nil {
			results.Weather = fallbackWeather(req.Location)
		}
	}
	return results
}
