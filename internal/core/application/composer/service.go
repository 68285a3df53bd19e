package composer

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"github.com/zumo-network/zumokit-core/pkg/mathutil"
)

// AccountReader gives access to the accounts to spend from
type AccountReader interface {
	GetAccountByID(id string) (domain.Account, error)
	NextNonce(accountID string) (uint64, error)
}

// Service builds ComposedTransactions: unsigned, single use, transaction
// intents with fees computed locally. Composing never reserves funds nor
// contacts the backend, except for listing unspents of Bitcoin accounts.
type Service struct {
	accounts     AccountReader
	transactions ports.TransactionService
}

func NewService(
	accounts AccountReader, transactions ports.TransactionService,
) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("missing account reader")
	}
	if transactions == nil {
		return nil, fmt.Errorf("missing transaction backend service")
	}
	return &Service{accounts, transactions}, nil
}

func (s *Service) getAccount(
	id string, check func(domain.Account) bool, reason string,
) (domain.Account, error) {
	account, err := s.accounts.GetAccountByID(id)
	if err != nil {
		return domain.Account{}, err
	}
	if !check(account) {
		return domain.Account{}, domain.ErrInvalidArgument.WithMessage(
			"account %s %s", id, reason,
		)
	}
	return account, nil
}

// resolveAmount returns the amount to send so that amount plus fee can be
// covered by the available balance of the account. With sendMax the whole
// available balance net of fee is sent.
func resolveAmount(
	account domain.Account, amount, fee decimal.Decimal, sendMax bool,
) (decimal.Decimal, error) {
	available := account.AvailableBalance
	if sendMax {
		amount = available.Sub(fee)
		if !amount.IsPositive() {
			return decimal.Zero, domain.ErrInsufficientFunds.WithMessage(
				"available balance %s does not cover fee %s", available, fee,
			)
		}
		return amount, nil
	}

	if err := validateAmount(amount, account.CurrencyCode); err != nil {
		return decimal.Zero, err
	}
	if amount.Add(fee).GreaterThan(available) {
		return decimal.Zero, domain.ErrInsufficientFunds.WithMessage(
			"amount %s plus fee %s exceeds available balance %s",
			amount, fee, available,
		)
	}
	return amount, nil
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
