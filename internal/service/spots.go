package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/model"
)

type SpotRepo interface {
	SaveSpot(ctx context.Context, userID int64, req model.SaveSpotRequest) (*model.SavedSpot, error)
	ListSavedSpots(ctx context.Context, userID int64) ([]model.SavedSpot, error)
	DeleteSavedSpot(ctx context.Context, userID, spotID int64) (bool, error)
}

type SpotService struct {
	repo SpotRepo
}

func NewSpotService(repo SpotRepo) *SpotService {
	return &SpotService{repo: repo}
}

func (s *SpotService) SaveSpot(ctx context.Context, userID int64, req model.SaveSpotRequest) (*model.SavedSpot, error) {
	if strings.TrimSpace(req.SpotID) == "" || strings.TrimSpace(req.Name) == "" {
		return nil, ErrInvalidInput
	}
	if req.Latitude == nil || req.Longitude == nil {
		return nil, ErrInvalidInput
	}
	if *req.Latitude < -90 || *req.Latitude > 90 || *req.Longitude < -180 || *req.Longitude > 180 {
		return nil, ErrInvalidInput
	}
	spot, err := s.repo.SaveSpot(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("save spot: %w", err)
	}
	return spot, nil
}

func (s *SpotService) ListSavedSpots(ctx context.Context, userID int64) ([]model.SavedSpot, error) {
	return s.repo.ListSavedSpots(ctx, userID)
}

func (s *SpotService) RemoveSavedSpot(ctx context.Context, userID, spotID int64) error {
	deleted, err := s.repo.DeleteSavedSpot(ctx, userID, spotID)
	if err != nil {
		return fmt.Errorf("remove spot: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}
