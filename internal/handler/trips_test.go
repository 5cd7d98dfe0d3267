package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"sync"
	"testing"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"github.com/Aashish1107/TravelAgent/internal/service"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeTripRepo struct {
	mu     sync.Mutex
	nextID int64
	trips  map[int64]model.Trip
}

func (f *fakeTripRepo) CreateTrip(_ context.Context, userID int64, req model.CreateTripRequest) (*model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	trip := model.Trip{ID: f.nextID, UserID: userID, Name: req.Name, Locations: req.Locations}
	f.trips[trip.ID] = trip
	return &trip, nil
}

func (f *fakeTripRepo) ListTrips(_ context.Context, userID int64) ([]model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := []model.Trip{}
	for _, trip := range f.trips {
		if trip.UserID == userID {
			out = append(out, trip)
		}
	}
	return out, nil
}

func (f *fakeTripRepo) UpdateTrip(_ context.Context, userID, tripID int64, req model.UpdateTripRequest) (*model.Trip, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok || trip.UserID != userID {
		return nil, pgx.ErrNoRows
	}
	if req.Name != nil {
		trip.Name = *req.Name
	}
	f.trips[tripID] = trip
	return &trip, nil
}

func (f *fakeTripRepo) DeleteTrip(_ context.Context, userID, tripID int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	trip, ok := f.trips[tripID]
	if !ok || trip.UserID != userID {
		return false, nil
	}
	delete(f.trips, tripID)
	return true, nil
}

func TestTripsAreScopedToAuthenticatedUser(t *testing.T) {
	ts := newTestServer(t)
	repo := &fakeTripRepo{trips: map[int64]model.Trip{}}
	verifier := service.NewAuthService(ts.users, ts.tokens, nil, nil, nil)
	trips := NewTripHandler(service.NewTripService(repo), zap.NewNop())

	api := ts.router.Group("/api/trips", RequireAuth(verifier))
	api.POST("", trips.CreateTrip)
	api.GET("", trips.ListTrips)
	api.PUT("/:id", trips.UpdateTrip)
	api.DELETE("/:id", trips.DeleteTrip)

	alice := ts.register(t, "alice@example.com", "correct horse")
	mallory := ts.register(t, "mallory@example.com", "correct horse")

	// a user id in the body is ignored
	w := ts.do(http.MethodPost, "/api/trips", map[string]any{"name": "Lisbon", "userId": mallory.User.ID}, bearer(alice.AccessToken))
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created model.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &created))
	assert.Equal(t, alice.User.ID, created.UserID)
	path := "/api/trips/" + strconv.FormatInt(created.ID, 10)

	w = ts.do(http.MethodGet, "/api/trips", nil, bearer(mallory.AccessToken))
	assert.JSONEq(t, `[]`, w.Body.String())

	w = ts.do(http.MethodPut, path, map[string]any{"name": "Mine now"}, bearer(mallory.AccessToken))
	assert.Equal(t, http.StatusNotFound, w.Code)
	w = ts.do(http.MethodDelete, path, nil, bearer(mallory.AccessToken))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = ts.do(http.MethodPut, path, map[string]any{"name": "Porto"}, bearer(alice.AccessToken))
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"name":"Porto"`)

	w = ts.do(http.MethodDelete, path, nil, bearer(alice.AccessToken))
	assert.Equal(t, http.StatusOK, w.Code)

	w = ts.do(http.MethodGet, "/api/trips", nil, nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = ts.do(http.MethodDelete, "/api/trips/abc", nil, bearer(alice.AccessToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateTripValidation(t *testing.T) {
	ts := newTestServer(t)
	repo := &fakeTripRepo{trips: map[int64]model.Trip{}}
	verifier := service.NewAuthService(ts.users, ts.tokens, nil, nil, nil)
	trips := NewTripHandler(service.NewTripService(repo), zap.NewNop())
	ts.router.POST("/api/trips", RequireAuth(verifier), trips.CreateTrip)

	alice := ts.register(t, "alice@example.com", "correct horse")

	w := ts.do(http.MethodPost, "/api/trips", map[string]any{"description": "no name"}, bearer(alice.AccessToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = ts.do(http.MethodPost, "/api/trips", map[string]any{
		"name":      "Backwards",
		"startDate": "2026-05-10T00:00:00Z",
		"endDate":   "2026-05-01T00:00:00Z",
	}, bearer(alice.AccessToken))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
