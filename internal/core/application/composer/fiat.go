package composer

import (
	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/application/wallet"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

// ComposeFiatOpts is the struct given to ComposeInternalFiatTransaction
type ComposeFiatOpts struct {
	FromAccountID string
	ToAccountID   string
	Amount        decimal.Decimal
	SendMax       bool
}

// ComposeInternalFiatTransaction composes a transfer between two fiat
// accounts of the same currency. Internal transfers carry no fee.
func (s *Service) ComposeInternalFiatTransaction(
	opts ComposeFiatOpts,
) (*domain.ComposedTransaction, error) {
	from, err := s.getAccount(opts.FromAccountID, domain.Account.IsFiat, "is not a fiat account")
	if err != nil {
		return nil, err
	}
	to, err := s.getAccount(opts.ToAccountID, domain.Account.IsFiat, "is not a fiat account")
	if err != nil {
		return nil, err
	}
	if from.ID == to.ID {
		return nil, domain.ErrInvalidArgument.WithMessage(
			"source and destination accounts must differ",
		)
	}
	if from.CurrencyCode != to.CurrencyCode {
		return nil, domain.ErrCurrencyMismatch.WithMessage(
			"cannot transfer %s to a %s account", from.CurrencyCode, to.CurrencyCode,
		)
	}

	amount, err := resolveAmount(from, opts.Amount, decimal.Zero, opts.SendMax)
	if err != nil {
		return nil, err
	}

	tx := domain.NewComposedTransaction(domain.TransactionTypeFiat, from)
	tx.ToAccountID = to.ID
	tx.Amount = amount
	tx.Fee = decimal.Zero
	return tx, nil
}

// ComposeNominatedOpts is the struct given to ComposeNominatedTransaction
type ComposeNominatedOpts struct {
	FromAccountID string
	Amount        decimal.Decimal
	SendMax       bool
}

// ComposeNominatedTransaction composes a withdrawal from a fiat account to
// its nominated bank account
func (s *Service) ComposeNominatedTransaction(
	opts ComposeNominatedOpts,
) (*domain.ComposedTransaction, error) {
	from, err := s.getAccount(opts.FromAccountID, domain.Account.IsFiat, "is not a fiat account")
	if err != nil {
		return nil, err
	}
	if !from.HasNominatedAccount {
		return nil, domain.ErrNominatedAccountNotFound
	}

	amount, err := resolveAmount(from, opts.Amount, decimal.Zero, opts.SendMax)
	if err != nil {
		return nil, err
	}

	tx := domain.NewComposedTransaction(domain.TransactionTypeNominated, from)
	tx.Amount = amount
	tx.Fee = decimal.Zero
	return tx, nil
}

// ComposeCustodyOpts is the struct given to ComposeCustodyWithdrawTransaction
type ComposeCustodyOpts struct {
	FromAccountID string
	Destination   string
	Amount        decimal.Decimal
	SendMax       bool
}

// ComposeCustodyWithdrawTransaction composes a withdrawal from a custodial
// crypto account. The backend signs and pays the network fee, so nothing is
// signed locally.
func (s *Service) ComposeCustodyWithdrawTransaction(
	opts ComposeCustodyOpts,
) (*domain.ComposedTransaction, error) {
	from, err := s.getAccount(
		opts.FromAccountID, func(a domain.Account) bool {
			return a.IsCrypto() && a.CustodyType == domain.CustodyTypeCustody
		}, "is not a custodial crypto account",
	)
	if err != nil {
		return nil, err
	}
	if !wallet.IsValidAddress(from.CurrencyCode, opts.Destination, from.Network) {
		return nil, domain.ErrInvalidAddress.WithMessage(
			"invalid %s address %s", from.CurrencyCode, opts.Destination,
		)
	}

	amount, err := resolveAmount(from, opts.Amount, decimal.Zero, opts.SendMax)
	if err != nil {
		return nil, err
	}

	tx := domain.NewComposedTransaction(domain.TransactionTypeCrypto, from)
	tx.Destination = opts.Destination
	tx.Amount = amount
	tx.Fee = decimal.Zero
	return tx, nil
}
