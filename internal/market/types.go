package market

import "context"

// Quote is the canonical snapshot for one instrument. All price-like and
// percentage-like fields are already scaled; no provider fixed-point units
// leave this package.
type Quote struct {
	Code              string  `json:"code"`
	Title             string  `json:"title"`
	Price             float64 `json:"price"`
	PercentChange     float64 `json:"percent_change"`
	Change            float64 `json:"change"`
	Amplitude         float64 `json:"amplitude"`
	Open              float64 `json:"open"`
	PrevClose         float64 `json:"prev_close"`
	High              float64 `json:"high"`
	Low               float64 `json:"low"`
	Volume            float64 `json:"volume"`
	Amount            float64 `json:"amount"`
	TurnoverRate      float64 `json:"turnover_rate"`
	PE                float64 `json:"pe"`
	PB                float64 `json:"pb"`
	VolumeRatio       float64 `json:"volume_ratio"`
	FiveMinutePercent float64 `json:"five_minute_percent"`
	TotalValue        float64 `json:"total_value"`
	CirculatingValue  float64 `json:"circulating_value"`
	Speed             float64 `json:"speed"`
	SixtyDayPercent   float64 `json:"sixty_day_percent"`
	YearToDatePercent float64 `json:"year_to_date_percent"`
}

// Placeholder is the quote shown for a code before its first successful fetch.
func Placeholder(code string) Quote {
	return Quote{Code: code, Title: code}
}

// Fetcher returns quotes for a batch of user codes.
//
//go:generate mockgen -package=refresh_test -destination=../refresh/mock_fetcher_test.go stock-watch/internal/market Fetcher
type Fetcher interface {
	Fetch(ctx context.Context, codes []string) ([]Quote, error)
}
