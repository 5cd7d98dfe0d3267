package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/Aashish1107/TravelAgent/internal/db"
	"github.com/Aashish1107/TravelAgent/internal/model"
)

type TripRepo interface {
	CreateTrip(ctx context.Context, userID int64, req model.CreateTripRequest) (*model.Trip, error)
	ListTrips(ctx context.Context, userID int64) ([]model.Trip, error)
	UpdateTrip(ctx context.Context, userID, tripID int64, req model.UpdateTripRequest) (*model.Trip, error)
	DeleteTrip(ctx context.Context, userID, tripID int64) (bool, error)
}

// TripService only ever acts on behalf of the authenticated user id passed in
// by the caller.
type TripService struct {
	repo TripRepo
}

func NewTripService(repo TripRepo) *TripService {
	return &TripService{repo: repo}
}

func (s *TripService) CreateTrip(ctx context.Context, userID int64, req model.CreateTripRequest) (*model.Trip, error) {
	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		return nil, ErrInvalidInput
	}
	if err := validateTripDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := validateLocations(req.Locations); err != nil {
		return nil, err
	}
	trip, err := s.repo.CreateTrip(ctx, userID, req)
	if err != nil {
		return nil, fmt.Errorf("create trip: %w", err)
	}
	return trip, nil
}

func (s *TripService) ListTrips(ctx context.Context, userID int64) ([]model.Trip, error) {
	return s.repo.ListTrips(ctx, userID)
}

func (s *TripService) UpdateTrip(ctx context.Context, userID, tripID int64, req model.UpdateTripRequest) (*model.Trip, error) {
	if req.Name != nil && strings.TrimSpace(*req.Name) == "" {
		return nil, ErrInvalidInput
	}
	if err := validateTripDates(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := validateLocations(req.Locations); err != nil {
		return nil, err
	}
	trip, err := s.repo.UpdateTrip(ctx, userID, tripID, req)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update trip: %w", err)
	}
	return trip, nil
}

func (s *TripService) DeleteTrip(ctx context.Context, userID, tripID int64) error {
	deleted, err := s.repo.DeleteTrip(ctx, userID, tripID)
	if err != nil {
		return fmt.Errorf("delete trip: %w", err)
	}
	if !deleted {
		return ErrNotFound
	}
	return nil
}

func validateTripDates(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return ErrInvalidInput
	}
	return nil
}

func validateLocations(raw json.RawMessage) error {
	if len(raw) == 0 {
		return nil
	}
	if !json.Valid(raw) {
		return ErrInvalidInput
	}
	return nil
}
