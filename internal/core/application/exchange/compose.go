package exchange

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/application/composer"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/pkg/mathutil"
)

// ComposeExchangeOpts is the struct given to ComposeExchange.
// Amount is the debit amount and is ignored if SendMax is true.
type ComposeExchangeOpts struct {
	DebitAccountID  string
	CreditAccountID string
	Quote           domain.Quote
	Amount          decimal.Decimal
	SendMax         bool
}

// ComposeExchange prices the conversion of the debit amount with the given
// quote:
//
//	gross  = debit * price
//	fee    = gross * feeRate, rounded up at the credit currency precision
//	credit = gross - fee
//
// Debits from non custodial accounts carry a deposit transaction paying the
// quote deposit address, whose network fee is taken from the average fee
// rates.
func (s *Service) ComposeExchange(
	ctx context.Context, opts ComposeExchangeOpts,
) (*domain.ComposedExchange, error) {
	debit, err := s.accounts.GetAccountByID(opts.DebitAccountID)
	if err != nil {
		return nil, err
	}
	credit, err := s.accounts.GetAccountByID(opts.CreditAccountID)
	if err != nil {
		return nil, err
	}
	if debit.ID == credit.ID {
		return nil, domain.ErrInvalidArgument.WithMessage(
			"debit and credit accounts must differ",
		)
	}

	quote := opts.Quote
	if quote.FromCurrency != debit.CurrencyCode {
		return nil, domain.ErrCurrencyMismatch.WithMessage(
			"quote debits %s, account %s holds %s",
			quote.FromCurrency, debit.ID, debit.CurrencyCode,
		)
	}
	if quote.ToCurrency != credit.CurrencyCode {
		return nil, domain.ErrCurrencyMismatch.WithMessage(
			"quote credits %s, account %s holds %s",
			quote.ToCurrency, credit.ID, credit.CurrencyCode,
		)
	}
	if quote.IsExpired(s.clock.Now()) {
		return nil, domain.ErrQuoteExpired
	}
	if !quote.Price.IsPositive() || quote.FeeRate.IsNegative() {
		return nil, domain.ErrInvalidArgument.WithMessage(
			"quote %s has invalid price or fee rate", quote.ID,
		)
	}

	composed := domain.NewComposedExchange(debit.ID, credit.ID, quote)
	composed.DepositFee = decimal.Zero

	if debit.IsNonCustodialCrypto() {
		deposit, err := s.composeDeposit(ctx, debit, quote, opts)
		if err != nil {
			return nil, err
		}
		composed.Deposit = deposit
		composed.DebitAmount = deposit.Amount
		composed.DepositFee = deposit.Fee
	} else {
		amount := opts.Amount
		if opts.SendMax {
			amount = debit.AvailableBalance
		}
		if err := validateAmount(amount, debit.CurrencyCode); err != nil {
			return nil, err
		}
		if amount.GreaterThan(debit.AvailableBalance) {
			return nil, domain.ErrInsufficientFunds.WithMessage(
				"amount %s exceeds available balance %s",
				amount, debit.AvailableBalance,
			)
		}
		composed.DebitAmount = amount
	}

	if pair, ok := s.store.TradingPair(debit.CurrencyCode, credit.CurrencyCode); ok {
		if err := pair.CheckLimits(composed.DebitAmount); err != nil {
			return nil, err
		}
	}

	precision := credit.CurrencyCode.Precision()
	gross := mathutil.RoundDown(composed.DebitAmount.Mul(quote.Price), precision)
	composed.CreditAmount, composed.FeeAmount = mathutil.ApplyFeeRate(
		gross, quote.FeeRate, precision,
	)
	if !composed.CreditAmount.IsPositive() {
		return nil, domain.ErrInvalidAmount.WithMessage(
			"amount %s %s is too small to be exchanged",
			composed.DebitAmount, debit.CurrencyCode,
		)
	}

	return composed, nil
}

func (s *Service) composeDeposit(
	ctx context.Context, debit domain.Account, quote domain.Quote,
	opts ComposeExchangeOpts,
) (*domain.ComposedTransaction, error) {
	if len(quote.DepositAddress) <= 0 {
		return nil, domain.ErrInvalidArgument.WithMessage(
			"quote %s has no deposit address", quote.ID,
		)
	}
	rates, ok := s.store.FeeRates(debit.CurrencyCode)
	if !ok || !rates.Average.IsPositive() {
		return nil, domain.ErrInvalidArgument.WithMessage(
			"fee rates for %s are not available", debit.CurrencyCode,
		)
	}

	var (
		deposit *domain.ComposedTransaction
		err     error
	)
	switch debit.CurrencyCode {
	case domain.CurrencyETH:
		deposit, err = s.deposits.ComposeEthTransaction(composer.ComposeEthOpts{
			FromAccountID: debit.ID,
			Destination:   quote.DepositAddress,
			Amount:        opts.Amount,
			GasPrice:      rates.Average,
			GasLimit:      composer.DefaultEthGasLimit,
			SendMax:       opts.SendMax,
		})
	case domain.CurrencyBTC:
		deposit, err = s.deposits.ComposeBtcTransaction(ctx, composer.ComposeBtcOpts{
			FromAccountID: debit.ID,
			Destination:   quote.DepositAddress,
			Amount:        opts.Amount,
			FeeRate:       rates.Average,
			SendMax:       opts.SendMax,
		})
	default:
		err = domain.ErrUnsupportedCurrency
	}
	if err != nil {
		return nil, err
	}

	deposit.Type = domain.TransactionTypeExchange
	return deposit, nil
}

func validateAmount(amount decimal.Decimal, currency domain.CurrencyCode) error {
	if !amount.IsPositive() {
		return domain.ErrInvalidAmount
	}
	if _, err := mathutil.ToMinorUnits(amount, currency.Precision()); err != nil {
		return domain.ErrInvalidAmount.WithMessage(
			"amount %s has more than %d decimals", amount, currency.Precision(),
		)
	}
	return nil
}

func secondsToDuration(seconds int64) time.Duration {
	return time.Duration(seconds) * time.Second
}
