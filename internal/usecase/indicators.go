package usecase

import (
	"context"
	"time"

	"github.com/zengarv/StockInsightAPI/internal/dataset"
	"github.com/zengarv/StockInsightAPI/internal/domain/models"
	"github.com/zengarv/StockInsightAPI/internal/domain/repository"
	"github.com/zengarv/StockInsightAPI/internal/indicator"
	svccache "github.com/zengarv/StockInsightAPI/internal/service/cache"
	"github.com/zengarv/StockInsightAPI/internal/service/ratelimit"
	"github.com/zengarv/StockInsightAPI/internal/tier"
	"github.com/zengarv/StockInsightAPI/pkg/logger"
	"github.com/zengarv/StockInsightAPI/pkg/util"
)

// IndicatorsUseCase runs the per-request pipeline shared by all indicator
// endpoints: tier gate, rate limit, range resolution, cache, compute.
type IndicatorsUseCase struct {
	store   *dataset.Store
	tiers   *tier.Table
	limiter *ratelimit.DailyLimiter
	cache   *svccache.IndicatorCache
	metrics repository.Metrics
	log     *logger.Logger
	now     func() time.Time
}

func NewIndicatorsUseCase(
	store *dataset.Store,
	tiers *tier.Table,
	limiter *ratelimit.DailyLimiter,
	cache *svccache.IndicatorCache,
	metrics repository.Metrics,
	log *logger.Logger,
) *IndicatorsUseCase {
	return &IndicatorsUseCase{
		store:   store,
		tiers:   tiers,
		limiter: limiter,
		cache:   cache,
		metrics: metrics,
		log:     log,
		now:     time.Now,
	}
}

// admit enforces tier access and the daily quota, in that order: a request
// for an indicator outside the caller's plan fails without consuming quota.
func (uc *IndicatorsUseCase) admit(ctx context.Context, id models.Identity, name string) (tier.Policy, error) {
	policy := uc.tiers.Lookup(id.Tier)
	if !policy.Allows(name) {
		uc.metrics.RecordError("indicator_not_allowed")
		return policy, models.NewDomainErrorf(models.ErrCodeIndicatorNotAllowed,
			"indicator %s is not available on the %s tier", name, policy.Tier)
	}

	decision, err := uc.limiter.Check(ctx, id)
	if err != nil {
		return policy, err
	}
	if !decision.Allowed {
		uc.metrics.RecordRateLimit(string(id.Tier), "rejected")
		return policy, decision.Exceeded()
	}
	uc.metrics.RecordRateLimit(string(id.Tier), "allowed")
	return policy, nil
}

// resolveRange parses the request dates and clamps them to the tier's
// lookback horizon. Missing dates default to the furthest allowed range.
func (uc *IndicatorsUseCase) resolveRange(startDate, endDate string, policy tier.Policy) (time.Time, time.Time, error) {
	var start, end time.Time
	if startDate != "" {
		t, ok := util.ParseDate(startDate)
		if !ok {
			return time.Time{}, time.Time{}, models.NewDomainErrorf(models.ErrCodeInvalidParameter,
				"start_date %q is not a valid YYYY-MM-DD date", startDate)
		}
		start = t
	}
	if endDate != "" {
		t, ok := util.ParseDate(endDate)
		if !ok {
			return time.Time{}, time.Time{}, models.NewDomainErrorf(models.ErrCodeInvalidParameter,
				"end_date %q is not a valid YYYY-MM-DD date", endDate)
		}
		end = t
	}
	return uc.store.ClampRange(start, end, policy.LookbackDays, uc.now())
}

// timeCompute wraps one indicator computation with a duration metric.
func (uc *IndicatorsUseCase) timeCompute(name string, fn func() error) error {
	started := uc.now()
	err := fn()
	uc.metrics.RecordCompute(name, time.Since(started).Seconds())
	return err
}

// singleLine services SMA, EMA and RSI, which share a response shape and
// differ only in the compute function and warmup length.
func (uc *IndicatorsUseCase) singleLine(
	ctx context.Context,
	id models.Identity,
	name, symbol, startDate, endDate string,
	params map[string]interface{},
	warmup int,
	omitWarmup bool,
	compute func(models.Series) ([]float64, error),
) (*models.IndicatorResponse, error) {
	policy, err := uc.admit(ctx, id, name)
	if err != nil {
		return nil, err
	}
	start, end, err := uc.resolveRange(startDate, endDate, policy)
	if err != nil {
		return nil, err
	}

	key := svccache.Key(symbol, name, params)
	resp := &models.IndicatorResponse{}
	if !uc.cacheGetRange(ctx, key, start, end, resp) {
		series, err := uc.store.GetSeries(symbol, start, end)
		if err != nil {
			return nil, err
		}
		var values []float64
		if err := uc.timeCompute(name, func() error {
			var cerr error
			values, cerr = compute(series)
			return cerr
		}); err != nil {
			return nil, err
		}

		*resp = models.IndicatorResponse{
			Symbol:     symbol,
			Indicator:  name,
			Parameters: params,
			DataPoints: len(values),
			StartDate:  util.FormatDate(start),
			EndDate:    util.FormatDate(end),
			Data:       alignPoints(series.Dates, values),
		}
		uc.cache.Set(ctx, rangeKey(key, start, end), resp)
	}

	if omitWarmup {
		resp.Data = trimPoints(resp.Data, warmup)
		resp.DataPoints = len(resp.Data)
	}
	return resp, nil
}

func (uc *IndicatorsUseCase) SMA(ctx context.Context, id models.Identity, req *models.SMARequest) (*models.IndicatorResponse, error) {
	return uc.singleLine(ctx, id, indicator.NameSMA, req.Symbol, req.StartDate, req.EndDate,
		map[string]interface{}{"window": req.Window}, req.Window-1, req.OmitWarmup,
		func(s models.Series) ([]float64, error) { return indicator.SMA(s, req.Window) })
}

func (uc *IndicatorsUseCase) EMA(ctx context.Context, id models.Identity, req *models.EMARequest) (*models.IndicatorResponse, error) {
	return uc.singleLine(ctx, id, indicator.NameEMA, req.Symbol, req.StartDate, req.EndDate,
		map[string]interface{}{"window": req.Window}, req.Window-1, req.OmitWarmup,
		func(s models.Series) ([]float64, error) { return indicator.EMA(s, req.Window) })
}

func (uc *IndicatorsUseCase) RSI(ctx context.Context, id models.Identity, req *models.RSIRequest) (*models.IndicatorResponse, error) {
	return uc.singleLine(ctx, id, indicator.NameRSI, req.Symbol, req.StartDate, req.EndDate,
		map[string]interface{}{"period": req.Period}, req.Period, req.OmitWarmup,
		func(s models.Series) ([]float64, error) { return indicator.RSI(s, req.Period) })
}

func (uc *IndicatorsUseCase) MACD(ctx context.Context, id models.Identity, req *models.MACDRequest) (*models.MACDResponse, error) {
	policy, err := uc.admit(ctx, id, indicator.NameMACD)
	if err != nil {
		return nil, err
	}
	start, end, err := uc.resolveRange(req.StartDate, req.EndDate, policy)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"fast_period":   req.FastPeriod,
		"slow_period":   req.SlowPeriod,
		"signal_period": req.SignalPeriod,
	}
	key := svccache.Key(req.Symbol, indicator.NameMACD, params)
	resp := &models.MACDResponse{}
	if !uc.cacheGetRange(ctx, key, start, end, resp) {
		series, err := uc.store.GetSeries(req.Symbol, start, end)
		if err != nil {
			return nil, err
		}
		var macd, sig, hist []float64
		if err := uc.timeCompute(indicator.NameMACD, func() error {
			var cerr error
			macd, sig, hist, cerr = indicator.MACD(series, req.FastPeriod, req.SlowPeriod, req.SignalPeriod)
			return cerr
		}); err != nil {
			return nil, err
		}

		points := make([]models.MACDPoint, len(macd))
		for i := range macd {
			points[i] = models.MACDPoint{
				Date:      util.FormatDate(series.Dates[i]),
				MACD:      macd[i],
				Signal:    sig[i],
				Histogram: hist[i],
			}
		}
		*resp = models.MACDResponse{
			Symbol:     req.Symbol,
			Indicator:  indicator.NameMACD,
			Parameters: params,
			DataPoints: len(points),
			StartDate:  util.FormatDate(start),
			EndDate:    util.FormatDate(end),
			Data:       points,
		}
		uc.cache.Set(ctx, rangeKey(key, start, end), resp)
	}

	if req.OmitWarmup {
		warmup := req.SlowPeriod + req.SignalPeriod - 2
		if warmup < len(resp.Data) {
			resp.Data = resp.Data[warmup:]
		} else {
			resp.Data = nil
		}
		resp.DataPoints = len(resp.Data)
	}
	return resp, nil
}

func (uc *IndicatorsUseCase) Bollinger(ctx context.Context, id models.Identity, req *models.BollingerRequest) (*models.BollingerResponse, error) {
	policy, err := uc.admit(ctx, id, indicator.NameBollinger)
	if err != nil {
		return nil, err
	}
	start, end, err := uc.resolveRange(req.StartDate, req.EndDate, policy)
	if err != nil {
		return nil, err
	}

	params := map[string]interface{}{
		"period":  req.Period,
		"std_dev": req.StdDev,
	}
	key := svccache.Key(req.Symbol, indicator.NameBollinger, params)
	resp := &models.BollingerResponse{}
	if !uc.cacheGetRange(ctx, key, start, end, resp) {
		series, err := uc.store.GetSeries(req.Symbol, start, end)
		if err != nil {
			return nil, err
		}
		var upper, middle, lower []float64
		if err := uc.timeCompute(indicator.NameBollinger, func() error {
			var cerr error
			upper, middle, lower, cerr = indicator.Bollinger(series, req.Period, req.StdDev)
			return cerr
		}); err != nil {
			return nil, err
		}

		points := make([]models.BollingerPoint, len(middle))
		for i := range middle {
			points[i] = models.BollingerPoint{
				Date:   util.FormatDate(series.Dates[i]),
				Upper:  upper[i],
				Middle: middle[i],
				Lower:  lower[i],
			}
		}
		*resp = models.BollingerResponse{
			Symbol:     req.Symbol,
			Indicator:  indicator.NameBollinger,
			Parameters: params,
			DataPoints: len(points),
			StartDate:  util.FormatDate(start),
			EndDate:    util.FormatDate(end),
			Data:       points,
		}
		uc.cache.Set(ctx, rangeKey(key, start, end), resp)
	}

	if req.OmitWarmup {
		warmup := req.Period - 1
		if warmup < len(resp.Data) {
			resp.Data = resp.Data[warmup:]
		} else {
			resp.Data = nil
		}
		resp.DataPoints = len(resp.Data)
	}
	return resp, nil
}

// Stocks lists every symbol in the dataset. Free for all tiers and not
// counted against quota.
func (uc *IndicatorsUseCase) Stocks(_ context.Context) *models.StocksResponse {
	symbols := uc.store.Symbols()
	return &models.StocksResponse{Symbols: symbols, Count: len(symbols)}
}

// Limits reports the caller's tier policy and today's usage without
// consuming a request.
func (uc *IndicatorsUseCase) Limits(ctx context.Context, id models.Identity) (*models.UserLimitsResponse, error) {
	policy := uc.tiers.Lookup(id.Tier)
	status, err := uc.limiter.Status(ctx, id)
	if err != nil {
		return nil, err
	}
	return &models.UserLimitsResponse{
		Tier:           string(policy.Tier),
		RequestsPerDay: policy.DailyQuota,
		Unlimited:      status.Unlimited,
		LookbackDays:   policy.LookbackDays,
		Indicators:     policy.IndicatorNames(),
		UsedToday:      status.Used,
		Remaining:      status.Remaining,
		ResetAt:        status.ResetAt.Format(time.RFC3339),
	}, nil
}

// cacheGetRange reads the cached response for one (key, effective range)
// pair. The effective range is part of the cache identity: the same
// parameters over different clamped ranges are distinct results.
func (uc *IndicatorsUseCase) cacheGetRange(ctx context.Context, key string, start, end time.Time, dest interface{}) bool {
	return uc.cache.Get(ctx, rangeKey(key, start, end), dest)
}

func rangeKey(key string, start, end time.Time) string {
	return key + ":" + util.FormatDate(start) + "_" + util.FormatDate(end)
}

func alignPoints(dates []time.Time, values []float64) []models.IndicatorPoint {
	points := make([]models.IndicatorPoint, len(values))
	for i := range values {
		points[i] = models.IndicatorPoint{Date: util.FormatDate(dates[i]), Value: values[i]}
	}
	return points
}

func trimPoints(points []models.IndicatorPoint, warmup int) []models.IndicatorPoint {
	if warmup >= len(points) {
		return nil
	}
	if warmup < 0 {
		warmup = 0
	}
	return points[warmup:]
}
