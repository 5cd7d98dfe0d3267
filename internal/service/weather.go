package service

import (
	"context"
	"strings"

	"github.com/Aashish1107/TravelAgent/internal/model"
	"go.uber.org/zap"
)

type WeatherClient interface {
	IsConfigured() bool
	GetWeather(ctx context.Context, location string) (*model.Weather, error)
}

type WeatherService struct {
	client WeatherClient
	logger *zap.Logger
}

func NewWeatherService(client WeatherClient, logger *zap.Logger) *WeatherService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WeatherService{client: client, logger: logger}
}

// GetWeather asks the agent service and falls back to a canned forecast when
// it is unreachable. userID is 0 for anonymous callers.
func (s *WeatherService) GetWeather(ctx context.Context, location string, userID int64) (*model.Weather, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		return nil, ErrInvalidInput
	}

	if s.client != nil && s.client.IsConfigured() {
		weather, err := s.client.GetWeather(ctx, location)
		if err == nil {
			return weather, nil
		}
		s.logger.Warn("agent weather lookup failed, using fallback",
			zap.String("location", location),
			zap.Int64("user_id", userID),
			zap.Error(err),
		)
	}
	return fallbackWeather(location), nil
}

func fallbackWeather(location string) *model.Weather {
	return &model.Weather{
		Location:    location,
		Temperature: 18,
		Description: "Partly Cloudy",
		Humidity:    65,
		WindSpeed:   12,
		Visibility:  10,
		FeelsLike:   20,
		HourlyForecast: []model.HourlyForecast{
			{Time: "15:00", Temperature: 19, Icon: "sun"},
			{Time: "16:00", Temperature: 18, Icon: "cloud"},
			{Time: "17:00", Temperature: 17, Icon: "cloud-sun"},
			{Time: "18:00", Temperature: 16, Icon: "cloud-rain"},
		},
	}
}
