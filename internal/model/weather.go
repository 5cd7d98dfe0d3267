package model

type Weather struct {
	Location       string           `json:"location"`
	Temperature    float64          `json:"temperature"`
	Description    string           `json:"description"`
	Humidity       float64          `json:"humidity"`
	WindSpeed      float64          `json:"windSpeed"`
	Visibility     float64          `json:"visibility"`
	FeelsLike      float64          `json:"feelsLike"`
	HourlyForecast []HourlyForecast `json:"hourlyForecast"`
}

type HourlyForecast struct {
	Time        string  `json:"time"`
	Temperature float64 `json:"temperature"`
	Icon        string  `json:"icon"`
}
