package composer

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/application/wallet"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/pkg/mathutil"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

// DustThreshold is the minimum value in satoshis of a change output. Lower
// change is left to miners.
const DustThreshold = 546

// ComposeBtcOpts is the struct given to ComposeBtcTransaction.
// FeeRate is expressed in sats/vbyte. Change is sent to the address of
// ChangeAccountID, or of the sending account if empty.
type ComposeBtcOpts struct {
	FromAccountID   string
	ChangeAccountID string
	Destination     string
	Amount          decimal.Decimal
	FeeRate         decimal.Decimal
	SendMax         bool
}

type utxoSelection struct {
	inputs []domain.Unspent
	amount int64
	fee    int64
	change int64
	vsize  int
}

// ComposeBtcTransaction composes a transfer from a non custodial Bitcoin
// account. Unspents are selected largest first and the fee is the
// estimated virtual size of the transaction times the fee rate.
func (s *Service) ComposeBtcTransaction(
	ctx context.Context, opts ComposeBtcOpts,
) (*domain.ComposedTransaction, error) {
	account, err := s.getAccount(
		opts.FromAccountID, isNonCustodial(domain.CurrencyBTC),
		"is not a non custodial BTC account",
	)
	if err != nil {
		return nil, err
	}

	changeAccount := account
	if len(opts.ChangeAccountID) > 0 && opts.ChangeAccountID != account.ID {
		if changeAccount, err = s.getAccount(
			opts.ChangeAccountID, func(a domain.Account) bool {
				return isNonCustodial(domain.CurrencyBTC)(a) &&
					a.Network == account.Network
			}, "cannot receive change",
		); err != nil {
			return nil, err
		}
	}

	if !wallet.IsValidAddress(domain.CurrencyBTC, opts.Destination, account.Network) {
		return nil, domain.ErrInvalidAddress.WithMessage(
			"invalid bitcoin %s address %s", account.Network, opts.Destination,
		)
	}
	if !opts.FeeRate.IsPositive() {
		return nil, domain.ErrInvalidArgument.WithMessage("fee rate must be positive")
	}
	if !opts.SendMax {
		if err := validateAmount(opts.Amount, domain.CurrencyBTC); err != nil {
			return nil, err
		}
	}

	params, _ := domain.BtcNetworkParams(account.Network)
	destType, err := hdwallet.ScriptTypeOfAddress(opts.Destination, params)
	if err != nil {
		return nil, domain.ErrInvalidAddress.Wrap(err)
	}
	inType, err := wallet.BtcScriptType(account.Type)
	if err != nil {
		return nil, err
	}
	changeType, err := wallet.BtcScriptType(changeAccount.Type)
	if err != nil {
		return nil, err
	}

	unspents, err := s.transactions.ListUnspents(ctx, account.ID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(unspents, func(i, j int) bool {
		return unspents[i].Value.GreaterThan(unspents[j].Value)
	})

	available, _ := mathutil.ToSatoshis(
		mathutil.RoundDown(decimal.Max(account.AvailableBalance, decimal.Zero), 8),
	)
	estimator := feeEstimator{inType, destType, changeType, opts.FeeRate}

	var selection *utxoSelection
	if opts.SendMax {
		selection, err = selectAll(unspents, available, estimator)
	} else {
		amount, _ := mathutil.ToSatoshis(opts.Amount)
		selection, err = selectLargestFirst(unspents, amount, available, estimator)
	}
	if err != nil {
		return nil, err
	}

	tx := domain.NewComposedTransaction(domain.TransactionTypeCrypto, account)
	tx.Destination = opts.Destination
	tx.Amount = mathutil.FromSatoshis(selection.amount)
	tx.Fee = mathutil.FromSatoshis(selection.fee)
	tx.Btc = &domain.BtcPayload{
		ChangeAccountID: changeAccount.ID,
		ChangeAddress:   changeAccount.Address(),
		Change:          mathutil.FromSatoshis(selection.change),
		FeeRate:         opts.FeeRate,
		VSize:           selection.vsize,
		Inputs:          selection.inputs,
	}
	return tx, nil
}

type feeEstimator struct {
	inType     int
	destType   int
	changeType int
	feeRate    decimal.Decimal
}

// estimate returns the virtual size and fee of a transaction spending
// numInputs with or without a change output
func (e feeEstimator) estimate(numInputs int, withChange bool) (int, int64) {
	inTypes := make([]int, numInputs)
	for i := range inTypes {
		inTypes[i] = e.inType
	}
	outTypes := []int{e.destType}
	if withChange {
		outTypes = append(outTypes, e.changeType)
	}
	vsize := hdwallet.EstimateTxSize(inTypes, nil, nil, outTypes, nil)
	return vsize, mathutil.BtcFee(vsize, e.feeRate)
}

func selectLargestFirst(
	unspents []domain.Unspent, amount, available int64, e feeEstimator,
) (*utxoSelection, error) {
	var total int64
	for i, u := range unspents {
		value, err := mathutil.ToSatoshis(u.Value)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithMessage(
				"invalid unspent value %s", u.Value,
			)
		}
		total += value
		numInputs := i + 1

		vsize, fee := e.estimate(numInputs, false)
		if total < amount+fee {
			continue
		}

		selection := &utxoSelection{
			inputs: unspents[:numInputs],
			amount: amount,
			fee:    total - amount,
			vsize:  vsize,
		}
		vsizeWithChange, feeWithChange := e.estimate(numInputs, true)
		if change := total - amount - feeWithChange; change >= DustThreshold {
			selection.fee = feeWithChange
			selection.change = change
			selection.vsize = vsizeWithChange
		}

		if selection.amount+selection.fee > available {
			break
		}
		return selection, nil
	}

	return nil, domain.ErrInsufficientFunds.WithMessage(
		"unspents do not cover amount %s plus fee",
		mathutil.FromSatoshis(amount),
	)
}

// selectAll spends every unspent sending the available balance net of fee,
// so that amount plus fee always equals the available balance
func selectAll(
	unspents []domain.Unspent, available int64, e feeEstimator,
) (*utxoSelection, error) {
	var total int64
	for _, u := range unspents {
		value, err := mathutil.ToSatoshis(u.Value)
		if err != nil {
			return nil, domain.ErrInvalidArgument.WithMessage(
				"invalid unspent value %s", u.Value,
			)
		}
		total += value
	}

	spendable := total
	if available < spendable {
		spendable = available
	}
	change := total - spendable
	withChange := change >= DustThreshold

	// A leftover below dust cannot be returned and goes to miners on top of
	// fee, it is never taken out of the available balance.
	vsize, fee := e.estimate(len(unspents), withChange)
	if !withChange {
		change = 0
	}
	amount := spendable - fee
	if len(unspents) <= 0 || amount <= 0 {
		return nil, domain.ErrInsufficientFunds.WithMessage(
			"available balance does not cover the fee",
		)
	}

	return &utxoSelection{
		inputs: unspents,
		amount: amount,
		fee:    fee,
		change: change,
		vsize:  vsize,
	}, nil
}
