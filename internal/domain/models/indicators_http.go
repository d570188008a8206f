package models

// Requests and responses for the indicator HTTP endpoints. Defined in domain
// for consistency and reuse. Date fields travel as YYYY-MM-DD strings; empty
// means "use the default range".

type SMARequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	StartDate  string `query:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `query:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Window     int    `query:"window" json:"window" default:"20" validate:"gte=1,lte=200"`
	OmitWarmup bool   `query:"omit_warmup" json:"omit_warmup"`
}

type EMARequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	StartDate  string `query:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `query:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Window     int    `query:"window" json:"window" default:"20" validate:"gte=1,lte=200"`
	OmitWarmup bool   `query:"omit_warmup" json:"omit_warmup"`
}

type RSIRequest struct {
	Symbol     string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	StartDate  string `query:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string `query:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Period     int    `query:"period" json:"period" default:"14" validate:"gte=1,lte=100"`
	OmitWarmup bool   `query:"omit_warmup" json:"omit_warmup"`
}

type MACDRequest struct {
	Symbol       string `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	StartDate    string `query:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate      string `query:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	FastPeriod   int    `query:"fast_period" json:"fast_period" default:"12" validate:"gte=1,lte=100"`
	SlowPeriod   int    `query:"slow_period" json:"slow_period" default:"26" validate:"gte=1,lte=200"`
	SignalPeriod int    `query:"signal_period" json:"signal_period" default:"9" validate:"gte=1,lte=100"`
	OmitWarmup   bool   `query:"omit_warmup" json:"omit_warmup"`
}

type BollingerRequest struct {
	Symbol     string  `query:"symbol" json:"symbol" validate:"required,min=1,max=10"`
	StartDate  string  `query:"start_date" json:"start_date" validate:"omitempty,datetime=2006-01-02"`
	EndDate    string  `query:"end_date" json:"end_date" validate:"omitempty,datetime=2006-01-02"`
	Period     int     `query:"period" json:"period" default:"20" validate:"gte=1,lte=200"`
	StdDev     float64 `query:"std_dev" json:"std_dev" default:"2.0" validate:"gte=0.1,lte=5.0"`
	OmitWarmup bool    `query:"omit_warmup" json:"omit_warmup"`
}

// IndicatorPoint is one date-aligned output value.
type IndicatorPoint struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

type MACDPoint struct {
	Date      string  `json:"date"`
	MACD      float64 `json:"macd"`
	Signal    float64 `json:"signal"`
	Histogram float64 `json:"histogram"`
}

type BollingerPoint struct {
	Date   string  `json:"date"`
	Upper  float64 `json:"upper"`
	Middle float64 `json:"middle"`
	Lower  float64 `json:"lower"`
}

// IndicatorResponse is the payload for single-line indicators (SMA, EMA, RSI).
// StartDate/EndDate are the effective range after tier clamping.
type IndicatorResponse struct {
	Symbol     string                 `json:"symbol"`
	Indicator  string                 `json:"indicator"`
	Parameters map[string]interface{} `json:"parameters"`
	DataPoints int                    `json:"data_points"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Data       []IndicatorPoint       `json:"data"`
}

type MACDResponse struct {
	Symbol     string                 `json:"symbol"`
	Indicator  string                 `json:"indicator"`
	Parameters map[string]interface{} `json:"parameters"`
	DataPoints int                    `json:"data_points"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Data       []MACDPoint            `json:"data"`
}

type BollingerResponse struct {
	Symbol     string                 `json:"symbol"`
	Indicator  string                 `json:"indicator"`
	Parameters map[string]interface{} `json:"parameters"`
	DataPoints int                    `json:"data_points"`
	StartDate  string                 `json:"start_date"`
	EndDate    string                 `json:"end_date"`
	Data       []BollingerPoint       `json:"data"`
}

// StocksResponse lists the distinct symbols in the dataset.
type StocksResponse struct {
	Symbols []string `json:"symbols"`
	Count   int      `json:"count"`
}

// UserLimitsResponse reports the caller's tier policy and today's usage.
type UserLimitsResponse struct {
	Tier           string   `json:"tier"`
	RequestsPerDay int64    `json:"requests_per_day"`
	Unlimited      bool     `json:"unlimited"`
	LookbackDays   int      `json:"lookback_days"`
	Indicators     []string `json:"indicators"`
	UsedToday      int64    `json:"used_today"`
	Remaining      int64    `json:"remaining"`
	ResetAt        string   `json:"reset_at"`
}

// HealthResponse reports service readiness.
type HealthResponse struct {
	Status        string `json:"status"`
	Version       string `json:"version"`
	Environment   string `json:"environment"`
	DatasetLoaded bool   `json:"dataset_loaded"`
	Records       int    `json:"records"`
	Symbols       int    `json:"symbols"`
	MinDate       string `json:"min_date,omitempty"`
	MaxDate       string `json:"max_date,omitempty"`
	CacheBackend  string `json:"cache_backend"`
	CacheHealthy  bool   `json:"cache_healthy"`
}
