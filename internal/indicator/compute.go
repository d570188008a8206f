package indicator

import (
	"github.com/zengarv/StockInsightAPI/internal/domain/models"
)

// requireClose guards every indicator: computation never starts on a series
// without a close-price column.
func requireClose(s models.Series) error {
	if !s.HasClose {
		return models.ErrMissingColumn("close")
	}
	return nil
}

// SMA computes the simple moving average of the close prices.
func SMA(s models.Series, window int) ([]float64, error) {
	if err := requireClose(s); err != nil {
		return nil, err
	}
	return RollingMean(s.Closes, window), nil
}

// EMA computes the exponential moving average of the close prices.
func EMA(s models.Series, window int) ([]float64, error) {
	if err := requireClose(s); err != nil {
		return nil, err
	}
	return EWMA(s.Closes, window), nil
}

// RSI computes the relative strength index over the given period.
//
// Gains and losses are split from the one-step close deltas (delta[0] is
// treated as 0) and averaged with the shrinking rolling window. When the
// average loss is exactly 0 the value saturates to 100 instead of dividing
// by zero; that covers index 0, where both averages are 0.
func RSI(s models.Series, period int) ([]float64, error) {
	if err := requireClose(s); err != nil {
		return nil, err
	}

	closes := s.Closes
	gains := make([]float64, len(closes))
	losses := make([]float64, len(closes))
	for i := 1; i < len(closes); i++ {
		delta := closes[i] - closes[i-1]
		if delta > 0 {
			gains[i] = delta
		} else {
			losses[i] = -delta
		}
	}

	avgGains := RollingMean(gains, period)
	avgLosses := RollingMean(losses, period)

	out := make([]float64, len(closes))
	for i := range out {
		if avgLosses[i] == 0 {
			out[i] = 100
			continue
		}
		rs := avgGains[i] / avgLosses[i]
		out[i] = 100 - 100/(1+rs)
	}
	return out, nil
}

// MACD computes the MACD line, signal line, and histogram. The three outputs
// are date-aligned with the input.
func MACD(s models.Series, fast, slow, signal int) (macd, sig, hist []float64, err error) {
	if err := requireClose(s); err != nil {
		return nil, nil, nil, err
	}

	fastEMA := EWMA(s.Closes, fast)
	slowEMA := EWMA(s.Closes, slow)

	macd = make([]float64, len(s.Closes))
	for i := range macd {
		macd[i] = fastEMA[i] - slowEMA[i]
	}

	sig = EWMA(macd, signal)

	hist = make([]float64, len(macd))
	for i := range hist {
		hist[i] = macd[i] - sig[i]
	}
	return macd, sig, hist, nil
}

// Bollinger computes the upper, middle, and lower bands: a rolling mean
// plus/minus the rolling sample standard deviation scaled by mult.
func Bollinger(s models.Series, period int, mult float64) (upper, middle, lower []float64, err error) {
	if err := requireClose(s); err != nil {
		return nil, nil, nil, err
	}

	middle = RollingMean(s.Closes, period)
	sd := RollingStdDev(s.Closes, period)

	upper = make([]float64, len(middle))
	lower = make([]float64, len(middle))
	for i := range middle {
		upper[i] = middle[i] + sd[i]*mult
		lower[i] = middle[i] - sd[i]*mult
	}
	return upper, middle, lower, nil
}
