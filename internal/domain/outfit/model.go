package outfit

import "time"

// ItemRef is an outfit item as referenced by a calendar day. Name, ImageURL
// and Category are only present on freshly saved records.
type ItemRef struct {
	ClothingID int64   `json:"clothingId"`
	SortOrder  int     `json:"sortOrder"`
	Name       *string `json:"name,omitempty"`
	ImageURL   *string `json:"imageUrl,omitempty"`
	Category   *string `json:"category,omitempty"`
}

// DayRecord is one calendar day as received from the backend.
type DayRecord struct {
	Date               string    `json:"date"`
	Items              []ItemRef `json:"items"`
	FeedbackScore      *float64  `json:"feedbackScore,omitempty"`
	WeatherTemp        *float64  `json:"weatherTemp,omitempty"`
	Condition          *string   `json:"condition,omitempty"`
	WeatherFeelsLike   *float64  `json:"weatherFeelsLike,omitempty"`
	WeatherCloudAmount *float64  `json:"weatherCloudAmount,omitempty"`
	RecoStrategy       *string   `json:"recoStrategy,omitempty"`
}

// MonthlyRecord is the decoded monthly outfit payload.
type MonthlyRecord struct {
	Year  int         `json:"year"`
	Month int         `json:"month"`
	Days  []DayRecord `json:"days"`
}

// ClothingSummary is the lookup projection returned by the batch summary call.
type ClothingSummary struct {
	ClothingID int64   `json:"clothingId"`
	Name       *string `json:"name"`
	ImageURL   *string `json:"imageUrl"`
	Category   *string `json:"category"`
}

// ItemView is a denormalized item ready for the calendar.
type ItemView struct {
	ClothingID int64   `json:"clothingId"`
	SortOrder  int     `json:"sortOrder"`
	Name       *string `json:"name"`
	ImageURL   *string `json:"imageUrl"`
	Category   *string `json:"category"`
	Favorited  bool    `json:"favorited"`
}

// DayView is a calendar day ready for display. Date is always YYYY-MM-DD and
// Items are ordered by SortOrder.
type DayView struct {
	Date               string     `json:"date"`
	Items              []ItemView `json:"items"`
	FeedbackScore      *float64   `json:"feedbackScore"`
	WeatherTemp        *float64   `json:"weatherTemp"`
	Condition          *string    `json:"condition"`
	WeatherFeelsLike   *float64   `json:"weatherFeelsLike"`
	WeatherCloudAmount *float64   `json:"weatherCloudAmount"`
	RecoStrategy       *string    `json:"recoStrategy"`
}

// MonthlyView is ordered by Date with at most one record per date. Values are
// shared between snapshots and must not be modified.
type MonthlyView []DayView

// Status tracks the lifecycle of a monthly sync.
type Status string

const (
	StatusIdle    Status = "idle"
	StatusLoading Status = "loading"
	StatusError   Status = "error"
)

// Query selects the month to load. A nil Favorites keeps the current set and
// a nil RecentlySaved keeps the current overlay.
type Query struct {
	Year          int
	Month         int
	Favorites     []int64
	RecentlySaved *DayRecord
}

// State is the consumer facing snapshot of a monthly sync. Days keeps the last
// good view while loading or after an error.
type State struct {
	Status    Status         `json:"status"`
	Error     string         `json:"error,omitempty"`
	IsLoading bool           `json:"isLoading"`
	Year      int            `json:"year"`
	Month     int            `json:"month"`
	Days      MonthlyView    `json:"days"`
	Raw       *MonthlyRecord `json:"rawMonthly"`
}

// Config wires runtime knobs for the outfit domain.
type Config struct {
	SummaryCacheTTL time.Duration
	SessionIdleTTL  time.Duration
}
