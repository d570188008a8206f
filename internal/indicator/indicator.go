// Package indicator provides technical indicator calculations over daily
// close series.
//
// All calculations are full-length: the output slice has one value per input
// value, with trailing windows shrinking at the head of the series instead of
// emitting nulls. Inputs are never mutated. Window and period parameters must
// be >= 1; callers validate them before reaching this package.
package indicator

// Indicator names as they appear in requests, cache keys, and tier policies.
const (
	NameSMA       = "sma"
	NameEMA       = "ema"
	NameRSI       = "rsi"
	NameMACD      = "macd"
	NameBollinger = "bollinger"
)

// Names returns all known indicator names.
func Names() []string {
	return []string{NameSMA, NameEMA, NameRSI, NameMACD, NameBollinger}
}

// Known reports whether name is a supported indicator.
func Known(name string) bool {
	switch name {
	case NameSMA, NameEMA, NameRSI, NameMACD, NameBollinger:
		return true
	}
	return false
}
