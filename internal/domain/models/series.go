package models

import "time"

// Observation is one daily credit-rate sample enriched with the macro indicators
// closest to its date.
type Observation struct {
	Category   string    `json:"category"`
	Date       time.Time `json:"date"`
	Rate       float64   `json:"rate"`
	PolicyRate float64   `json:"policy_rate"` // SELIC
	PriceIndex float64   `json:"price_index"` // IPCA
	Weekday    int       `json:"weekday"`     // 0 = Sunday
	DayOfYear  int       `json:"day_of_year"`
}

// SeriesSource tells where a category history came from.
type SeriesSource string

const (
	SourceFetched     SeriesSource = "fetched"
	SourceSynthesized SeriesSource = "synthesized"
)

// CategoryHistory is the ordered series of one category. Never mutated after it is
// published; reloads replace it.
type CategoryHistory struct {
	Category     string        `json:"category"`
	Source       SeriesSource  `json:"source"`
	LoadedAt     time.Time     `json:"loaded_at"`
	Observations []Observation `json:"observations"`
}

// Len returns the number of observations.
func (h CategoryHistory) Len() int { return len(h.Observations) }

// Last returns the most recent observation.
func (h CategoryHistory) Last() (Observation, bool) {
	if len(h.Observations) == 0 {
		return Observation{}, false
	}
	return h.Observations[len(h.Observations)-1], true
}

// SeriesPoint is a raw (date, value) sample as returned by the upstream source.
type SeriesPoint struct {
	Date  time.Time
	Value float64
}

// DateRange is an inclusive calendar range.
type DateRange struct {
	From time.Time
	To   time.Time
}

// LastYears returns the range [now - years, now].
func LastYears(now time.Time, years int) DateRange {
	return DateRange{From: now.AddDate(-years, 0, 0), To: now}
}

// ForecastPoint is one forward-looking predicted rate.
type ForecastPoint struct {
	Date          time.Time `json:"date"`
	PredictedRate float64   `json:"predicted_rate"`
	Confidence    float64   `json:"confidence"`
}

// Forecast groups the points produced for a category in one call.
type Forecast struct {
	Category    string          `json:"category"`
	Days        int             `json:"days"`
	Points      []ForecastPoint `json:"points"`
	GeneratedAt time.Time       `json:"generated_at"`
}

// Indicators are the latest macro indicator levels known to the store.
type Indicators struct {
	PolicyRate float64   `json:"policy_rate"`
	PriceIndex float64   `json:"price_index"`
	AsOf       time.Time `json:"as_of"`
}
