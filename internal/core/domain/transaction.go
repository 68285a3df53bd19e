package domain

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TransactionTypeCrypto    TransactionType = "CRYPTO"
	TransactionTypeExchange  TransactionType = "EXCHANGE"
	TransactionTypeFiat      TransactionType = "FIAT"
	TransactionTypeNominated TransactionType = "NOMINATED"
	TransactionTypeCard      TransactionType = "CARD"
)

type TransactionDirection string

const (
	DirectionIncoming TransactionDirection = "INCOMING"
	DirectionOutgoing TransactionDirection = "OUTGOING"
)

type TransactionStatus string

const (
	TransactionStatusPending     TransactionStatus = "PENDING"
	TransactionStatusConfirmed   TransactionStatus = "CONFIRMED"
	TransactionStatusFailed      TransactionStatus = "FAILED"
	TransactionStatusRejected    TransactionStatus = "REJECTED"
	TransactionStatusCancelled   TransactionStatus = "CANCELLED"
	TransactionStatusResubmitted TransactionStatus = "RESUBMITTED"
	TransactionStatusPaused      TransactionStatus = "PAUSED"
	TransactionStatusReversed    TransactionStatus = "REVERSED"
)

var transactionTransitions = map[TransactionStatus][]TransactionStatus{
	TransactionStatusPending: {
		TransactionStatusConfirmed,
		TransactionStatusFailed,
		TransactionStatusRejected,
		TransactionStatusCancelled,
		TransactionStatusResubmitted,
		TransactionStatusPaused,
	},
	TransactionStatusResubmitted: {TransactionStatusPending},
	TransactionStatusPaused: {
		TransactionStatusPending,
		TransactionStatusRejected,
		TransactionStatusCancelled,
	},
	TransactionStatusConfirmed: {TransactionStatusReversed},
}

// CanTransitionTo returns whether the backend can move a transaction from
// the current status to next. Re-applying the same status is always allowed.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	if s == next {
		return true
	}
	for _, allowed := range transactionTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsPending returns whether funds are still on hold for the transaction
func (s TransactionStatus) IsPending() bool {
	switch s {
	case TransactionStatusPending,
		TransactionStatusResubmitted,
		TransactionStatusPaused:
		return true
	}
	return false
}

type TransactionCryptoProperties struct {
	TxHash      string          `json:"txHash,omitempty"`
	Nonce       *uint64         `json:"nonce,omitempty"`
	FromAddress string          `json:"fromAddress,omitempty"`
	ToAddress   string          `json:"toAddress,omitempty"`
	Data        string          `json:"data,omitempty"`
	GasPrice    decimal.Decimal `json:"gasPrice,omitempty"`
	GasLimit    uint64          `json:"gasLimit,omitempty"`
}

type TransactionFiatProperties struct {
	FromFiatAccount *FiatProperties `json:"fromFiatAccount,omitempty"`
	ToFiatAccount   *FiatProperties `json:"toFiatAccount,omitempty"`
}

type TransactionCardProperties struct {
	CardID              string          `json:"cardId"`
	TransactionAmount   decimal.Decimal `json:"transactionAmount"`
	TransactionCurrency string          `json:"transactionCurrency"`
	BillingAmount       decimal.Decimal `json:"billingAmount"`
	BillingCurrency     string          `json:"billingCurrency"`
	ExchangeRateValue   decimal.Decimal `json:"exchangeRateValue"`
	MCC                 string          `json:"mcc,omitempty"`
	MerchantName        string          `json:"merchantName,omitempty"`
	MerchantCountry     string          `json:"merchantCountry,omitempty"`
}

type CustodyOrderType string

const (
	CustodyOrderTypeDeposit          CustodyOrderType = "DEPOSIT"
	CustodyOrderTypeWithdraw         CustodyOrderType = "WITHDRAW"
	CustodyOrderTypeInternalTransfer CustodyOrderType = "INTERNAL_TRANSFER"
)

type CustodyOrderStatus string

const (
	CustodyOrderStatusNew       CustodyOrderStatus = "NEW"
	CustodyOrderStatusPending   CustodyOrderStatus = "PENDING"
	CustodyOrderStatusConfirmed CustodyOrderStatus = "CONFIRMED"
	CustodyOrderStatusFailed    CustodyOrderStatus = "FAILED"
	CustodyOrderStatusCancelled CustodyOrderStatus = "CANCELLED"
)

// CustodyOrder is the order executed by the custodian behind a transaction
// of a custodial account. Amount and Fees are nil until known.
type CustodyOrder struct {
	ID                   string             `json:"id"`
	Type                 CustodyOrderType   `json:"type"`
	Status               CustodyOrderStatus `json:"status"`
	Amount               *decimal.Decimal   `json:"amount,omitempty"`
	FeeInAmount          bool               `json:"feeInAmount"`
	EstimatedFees        *decimal.Decimal   `json:"estimatedFees,omitempty"`
	Fees                 *decimal.Decimal   `json:"fees,omitempty"`
	FromAddresses        []string           `json:"fromAddresses,omitempty"`
	FromAccountID        string             `json:"fromAccountId,omitempty"`
	FromUserID           string             `json:"fromUserId,omitempty"`
	FromUserIntegratorID string             `json:"fromUserIntegratorId,omitempty"`
	ToAddress            string             `json:"toAddress,omitempty"`
	ToAccountID          string             `json:"toAccountId,omitempty"`
	ToUserID             string             `json:"toUserId,omitempty"`
	ToUserIntegratorID   string             `json:"toUserIntegratorId,omitempty"`
	CreatedAt            int64              `json:"createdAt"`
	UpdatedAt            int64              `json:"updatedAt"`
}

// UnmarshalJSON normalizes the status, the custodian reports it in mixed
// case
func (o *CustodyOrder) UnmarshalJSON(data []byte) error {
	type custodyOrder CustodyOrder
	order := custodyOrder{}
	if err := json.Unmarshal(data, &order); err != nil {
		return err
	}
	order.Status = CustodyOrderStatus(strings.ToUpper(string(order.Status)))
	*o = CustodyOrder(order)
	return nil
}

// Copy returns a deep copy of the order
func (o CustodyOrder) Copy() CustodyOrder {
	c := o
	c.Amount = copyDecimal(o.Amount)
	c.EstimatedFees = copyDecimal(o.EstimatedFees)
	c.Fees = copyDecimal(o.Fees)
	if o.FromAddresses != nil {
		c.FromAddresses = append([]string{}, o.FromAddresses...)
	}
	return c
}

// Transaction is the persisted record of a submitted transaction. It is only
// mutated by backend driven status transitions.
type Transaction struct {
	ID               string                       `json:"id"`
	Type             TransactionType              `json:"type"`
	Direction        TransactionDirection         `json:"direction"`
	Status           TransactionStatus            `json:"status"`
	CurrencyCode     CurrencyCode                 `json:"currencyCode"`
	Network          Network                      `json:"network"`
	FromAccountID    string                       `json:"fromAccountId,omitempty"`
	ToAccountID      string                       `json:"toAccountId,omitempty"`
	Amount           decimal.Decimal              `json:"amount"`
	Fee              decimal.Decimal              `json:"fee"`
	Nonce            string                       `json:"nonce,omitempty"`
	CryptoProperties *TransactionCryptoProperties `json:"cryptoProperties,omitempty"`
	FiatProperties   *TransactionFiatProperties   `json:"fiatProperties,omitempty"`
	CardProperties   *TransactionCardProperties   `json:"cardProperties,omitempty"`
	Exchange         *Exchange                    `json:"exchange,omitempty"`
	CustodyOrder     *CustodyOrder                `json:"custodyOrder,omitempty"`
	SubmittedAt      *time.Time                   `json:"submittedAt,omitempty"`
	ConfirmedAt      *time.Time                   `json:"confirmedAt,omitempty"`
	Timestamp        int64                        `json:"timestamp"`
}

// IsPendingDebitOf returns whether the transaction holds funds of the given
// account, ie. it spends from it and is not settled yet
func (t Transaction) IsPendingDebitOf(accountID string) bool {
	return t.FromAccountID == accountID && t.Status.IsPending()
}

// Debit returns the overall amount spent by the sender
func (t Transaction) Debit() decimal.Decimal {
	return t.Amount.Add(t.Fee)
}

// Copy returns a deep copy of the transaction
func (t Transaction) Copy() Transaction {
	c := t
	if t.CryptoProperties != nil {
		props := *t.CryptoProperties
		if t.CryptoProperties.Nonce != nil {
			nonce := *t.CryptoProperties.Nonce
			props.Nonce = &nonce
		}
		c.CryptoProperties = &props
	}
	if t.FiatProperties != nil {
		props := TransactionFiatProperties{}
		if t.FiatProperties.FromFiatAccount != nil {
			from := *t.FiatProperties.FromFiatAccount
			props.FromFiatAccount = &from
		}
		if t.FiatProperties.ToFiatAccount != nil {
			to := *t.FiatProperties.ToFiatAccount
			props.ToFiatAccount = &to
		}
		c.FiatProperties = &props
	}
	if t.CardProperties != nil {
		props := *t.CardProperties
		c.CardProperties = &props
	}
	if t.Exchange != nil {
		exchange := t.Exchange.Copy()
		c.Exchange = &exchange
	}
	if t.CustodyOrder != nil {
		order := t.CustodyOrder.Copy()
		c.CustodyOrder = &order
	}
	c.SubmittedAt = copyTime(t.SubmittedAt)
	c.ConfirmedAt = copyTime(t.ConfirmedAt)
	return c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func copyDecimal(d *decimal.Decimal) *decimal.Decimal {
	if d == nil {
		return nil
	}
	c := *d
	return &c
}
