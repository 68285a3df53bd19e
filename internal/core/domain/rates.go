package domain

import (
	"sort"

	"github.com/shopspring/decimal"
)

type TimeInterval string

const (
	TimeIntervalHour    TimeInterval = "hour"
	TimeIntervalDay     TimeInterval = "day"
	TimeIntervalWeek    TimeInterval = "week"
	TimeIntervalMonth   TimeInterval = "month"
	TimeIntervalQuarter TimeInterval = "quarter"
	TimeIntervalYear    TimeInterval = "year"
	TimeIntervalMax     TimeInterval = "max"
)

// IsValid ...
func (i TimeInterval) IsValid() bool {
	switch i {
	case TimeIntervalHour, TimeIntervalDay, TimeIntervalWeek, TimeIntervalMonth,
		TimeIntervalQuarter, TimeIntervalYear, TimeIntervalMax:
		return true
	}
	return false
}

// ExchangeRate is the indicative value of one unit of FromCurrency in
// ToCurrency at Timestamp
type ExchangeRate struct {
	ID           string          `json:"id"`
	FromCurrency CurrencyCode    `json:"fromCurrency"`
	ToCurrency   CurrencyCode    `json:"toCurrency"`
	Value        decimal.Decimal `json:"value"`
	ValidTo      int64           `json:"validTo"`
	Timestamp    int64           `json:"timestamp"`
}

// HistoricalExchangeRates maps time interval, from currency and to currency
// to the series of rates in the interval
type HistoricalExchangeRates map[TimeInterval]map[CurrencyCode]map[CurrencyCode][]ExchangeRate

// Rates returns the series of the given interval and pair, oldest first
func (h HistoricalExchangeRates) Rates(
	interval TimeInterval, from, to CurrencyCode,
) []ExchangeRate {
	rates := h[interval][from][to]
	res := make([]ExchangeRate, len(rates))
	copy(res, rates)
	sort.SliceStable(res, func(i, j int) bool {
		return res[i].Timestamp < res[j].Timestamp
	})
	return res
}
