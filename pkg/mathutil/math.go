package mathutil

import (
	"errors"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrNegativeAmount ...
	ErrNegativeAmount = errors.New("amount must not be negative")
	// ErrTooPrecise ...
	ErrTooPrecise = errors.New("amount has more decimals than its precision")
)

// ToMinorUnits converts an amount expressed in main units (ie. BTC) to the
// corresponding integer amount of minor units (ie. satoshis) for the given
// precision. Amounts with more decimals than the precision are rejected.
func ToMinorUnits(amount decimal.Decimal, precision int32) (*big.Int, error) {
	if amount.IsNegative() {
		return nil, ErrNegativeAmount
	}
	shifted := amount.Shift(precision)
	if !shifted.Equal(shifted.Truncate(0)) {
		return nil, ErrTooPrecise
	}
	return shifted.BigInt(), nil
}

// FromMinorUnits converts an integer amount of minor units to main units
func FromMinorUnits(amount *big.Int, precision int32) decimal.Decimal {
	return decimal.NewFromBigInt(amount, -precision)
}

// ToSatoshis is ToMinorUnits for 8 decimal amounts fitting an int64
func ToSatoshis(amount decimal.Decimal) (int64, error) {
	sats, err := ToMinorUnits(amount, 8)
	if err != nil {
		return 0, err
	}
	return sats.Int64(), nil
}

// FromSatoshis is FromMinorUnits for 8 decimal amounts
func FromSatoshis(sats int64) decimal.Decimal {
	return decimal.New(sats, -8)
}

// RoundUp rounds the amount towards +infinity at the given precision
func RoundUp(amount decimal.Decimal, precision int32) decimal.Decimal {
	return amount.RoundCeil(precision)
}

// RoundDown rounds the amount towards -infinity at the given precision
func RoundDown(amount decimal.Decimal, precision int32) decimal.Decimal {
	return amount.RoundFloor(precision)
}

// Sum returns the sum of all given amounts
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}
