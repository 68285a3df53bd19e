package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type ExchangeStatus string

const (
	ExchangeStatusPending     ExchangeStatus = "PENDING"
	ExchangeStatusDeposited   ExchangeStatus = "DEPOSITED"
	ExchangeStatusConfirmed   ExchangeStatus = "CONFIRMED"
	ExchangeStatusFailed      ExchangeStatus = "FAILED"
	ExchangeStatusResubmitted ExchangeStatus = "RESUBMITTED"
	ExchangeStatusCancelled   ExchangeStatus = "CANCELLED"
	ExchangeStatusPaused      ExchangeStatus = "PAUSED"
	ExchangeStatusRejected    ExchangeStatus = "REJECTED"
)

var exchangeTransitions = map[ExchangeStatus][]ExchangeStatus{
	ExchangeStatusPending: {
		ExchangeStatusDeposited,
		ExchangeStatusFailed,
		ExchangeStatusRejected,
		ExchangeStatusCancelled,
		ExchangeStatusPaused,
		ExchangeStatusResubmitted,
	},
	ExchangeStatusDeposited: {
		ExchangeStatusConfirmed,
		ExchangeStatusFailed,
		ExchangeStatusPaused,
		ExchangeStatusResubmitted,
	},
	ExchangeStatusResubmitted: {ExchangeStatusPending},
	ExchangeStatusPaused: {
		ExchangeStatusPending,
		ExchangeStatusRejected,
		ExchangeStatusCancelled,
	},
}

// CanTransitionTo returns whether an exchange can move from the current
// status to next
func (s ExchangeStatus) CanTransitionTo(next ExchangeStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range exchangeTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Quote is a time bounded price commitment for converting FromCurrency into
// ToCurrency
type Quote struct {
	ID             string          `json:"id"`
	FromCurrency   CurrencyCode    `json:"fromCurrency"`
	ToCurrency     CurrencyCode    `json:"toCurrency"`
	DepositAddress string          `json:"depositAddress,omitempty"`
	Price          decimal.Decimal `json:"price"`
	FeeRate        decimal.Decimal `json:"feeRate"`
	DebitAmount    decimal.Decimal `json:"debitAmount"`
	FeeAmount      decimal.Decimal `json:"feeAmount"`
	CreditAmount   decimal.Decimal `json:"creditAmount"`
	ExpiresIn      int64           `json:"expiresIn"`
	ExpiresAt      time.Time       `json:"expiresAt"`
}

// IsExpired returns whether the quote can no longer be used at time now
func (q Quote) IsExpired(now time.Time) bool {
	return !now.Before(q.ExpiresAt)
}

// TradingPair defines the limits and fee of exchanges between two currencies
type TradingPair struct {
	From    CurrencyCode    `json:"fromCurrency"`
	To      CurrencyCode    `json:"toCurrency"`
	Min     decimal.Decimal `json:"min"`
	Max     decimal.Decimal `json:"max"`
	FeeRate decimal.Decimal `json:"feeRate"`
}

// CheckLimits returns ErrAmountOutOfLimits if the debit amount is not within
// the pair's limits. A zero Max means no upper bound.
func (p TradingPair) CheckLimits(amount decimal.Decimal) error {
	if amount.LessThan(p.Min) {
		return ErrAmountOutOfLimits.WithMessage(
			"amount %s is below minimum %s %s", amount, p.Min, p.From,
		)
	}
	if p.Max.IsPositive() && amount.GreaterThan(p.Max) {
		return ErrAmountOutOfLimits.WithMessage(
			"amount %s is above maximum %s %s", amount, p.Max, p.From,
		)
	}
	return nil
}

// Exchange is the persisted record of a currency conversion linking its
// debit and credit transactions
type Exchange struct {
	ID                  string          `json:"id"`
	Status              ExchangeStatus  `json:"status"`
	FromCurrency        CurrencyCode    `json:"fromCurrency"`
	ToCurrency          CurrencyCode    `json:"toCurrency"`
	DebitAccountID      string          `json:"debitAccountId"`
	CreditAccountID     string          `json:"creditAccountId"`
	DebitTransactionID  string          `json:"debitTransactionId,omitempty"`
	CreditTransactionID string          `json:"creditTransactionId,omitempty"`
	Quote               Quote           `json:"quote"`
	DebitAmount         decimal.Decimal `json:"debitAmount"`
	FeeAmount           decimal.Decimal `json:"feeAmount"`
	CreditAmount        decimal.Decimal `json:"creditAmount"`
	Nonce               string          `json:"nonce"`
	SubmittedAt         *time.Time      `json:"submittedAt,omitempty"`
	ConfirmedAt         *time.Time      `json:"confirmedAt,omitempty"`
}

// Copy returns a deep copy of the exchange
func (e Exchange) Copy() Exchange {
	c := e
	c.SubmittedAt = copyTime(e.SubmittedAt)
	c.ConfirmedAt = copyTime(e.ConfirmedAt)
	return c
}
