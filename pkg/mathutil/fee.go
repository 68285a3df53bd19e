package mathutil

import (
	"math/big"

	"github.com/shopspring/decimal"
)

const (
	gweiDecimals = 9
	weiDecimals  = 18
)

// GweiToWei converts a gas price expressed in gwei to wei
func GweiToWei(gwei decimal.Decimal) *big.Int {
	return gwei.Shift(gweiDecimals).Truncate(0).BigInt()
}

// EthToWei converts an amount of ether to wei
func EthToWei(eth decimal.Decimal) *big.Int {
	return eth.Shift(weiDecimals).Truncate(0).BigInt()
}

// EthFee returns the fee in ether paid for a transaction consuming gasLimit
// gas at gasPrice gwei
func EthFee(gasPriceGwei decimal.Decimal, gasLimit uint64) decimal.Decimal {
	return gasPriceGwei.
		Mul(decimal.NewFromBigInt(new(big.Int).SetUint64(gasLimit), 0)).
		Shift(-gweiDecimals)
}

// BtcFee returns the fee in satoshis for a transaction of the given virtual
// size at feeRate sats/vbyte, rounded up to the next satoshi
func BtcFee(vsize int, satsPerVByte decimal.Decimal) int64 {
	return satsPerVByte.Mul(decimal.NewFromInt(int64(vsize))).
		Ceil().IntPart()
}

// ApplyFeeRate splits a gross amount in the fee charged at feeRate, rounded
// up at the given precision, and the net amount left
func ApplyFeeRate(
	gross, feeRate decimal.Decimal, precision int32,
) (net, fee decimal.Decimal) {
	fee = RoundUp(gross.Mul(feeRate), precision)
	net = gross.Sub(fee)
	return
}
