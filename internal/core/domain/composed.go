package domain

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ComposedState string

const (
	ComposedStateDraft     ComposedState = "DRAFT"
	ComposedStateSubmitted ComposedState = "SUBMITTED"
)

// Unspent is a spendable output of a UTXO based account
type Unspent struct {
	TxID  string          `json:"txid"`
	Vout  uint32          `json:"vout"`
	Value decimal.Decimal `json:"value"`
}

// EthPayload holds the fields of an unsigned Ethereum transaction.
// GasPrice is expressed in gwei.
type EthPayload struct {
	ChainID  int64           `json:"chainId"`
	Nonce    uint64          `json:"nonce"`
	GasPrice decimal.Decimal `json:"gasPrice"`
	GasLimit uint64          `json:"gasLimit"`
	Data     []byte          `json:"data,omitempty"`
}

// BtcPayload holds the inputs and change of an unsigned Bitcoin
// transaction. FeeRate is expressed in sats/vbyte.
type BtcPayload struct {
	ChangeAccountID string          `json:"changeAccountId"`
	ChangeAddress   string          `json:"changeAddress"`
	Change          decimal.Decimal `json:"change"`
	FeeRate         decimal.Decimal `json:"feeRate"`
	VSize           int             `json:"vsize"`
	Inputs          []Unspent       `json:"inputs"`
}

// ComposedTransaction is a single-use transaction intent. It has no server
// side footprint until submitted and its Nonce can be submitted only once.
type ComposedTransaction struct {
	Type              TransactionType `json:"type"`
	AccountID         string          `json:"accountId"`
	CurrencyCode      CurrencyCode    `json:"currencyCode"`
	Network           Network         `json:"network"`
	AccountType       AccountType     `json:"accountType"`
	CustodyType       CustodyType     `json:"custodyType"`
	Destination       string          `json:"destination,omitempty"`
	ToAccountID       string          `json:"toAccountId,omitempty"`
	Amount            decimal.Decimal `json:"amount"`
	Fee               decimal.Decimal `json:"fee"`
	Nonce             string          `json:"nonce"`
	State             ComposedState   `json:"state"`
	SignedTransaction string          `json:"signedTransaction,omitempty"`
	Eth               *EthPayload     `json:"eth,omitempty"`
	Btc               *BtcPayload     `json:"btc,omitempty"`
}

// NewComposedTransaction returns a draft for the given account with a fresh
// anti-replay nonce
func NewComposedTransaction(
	txType TransactionType, account Account,
) *ComposedTransaction {
	return &ComposedTransaction{
		Type:         txType,
		AccountID:    account.ID,
		CurrencyCode: account.CurrencyCode,
		Network:      account.Network,
		AccountType:  account.Type,
		CustodyType:  account.CustodyType,
		Nonce:        uuid.New().String(),
		State:        ComposedStateDraft,
	}
}

// RequiresSigning returns whether the transaction must be signed locally
// before submission
func (c *ComposedTransaction) RequiresSigning() bool {
	return (c.Type == TransactionTypeCrypto || c.Type == TransactionTypeExchange) &&
		c.CurrencyCode.IsCrypto() &&
		c.CustodyType == CustodyTypeNonCustody
}

// IsSubmitted ...
func (c *ComposedTransaction) IsSubmitted() bool {
	return c.State == ComposedStateSubmitted
}

// MarkSubmitted moves the draft to its final state
func (c *ComposedTransaction) MarkSubmitted() {
	c.State = ComposedStateSubmitted
}

// Debit returns amount plus fee
func (c *ComposedTransaction) Debit() decimal.Decimal {
	return c.Amount.Add(c.Fee)
}

// ComposedExchange pairs a debit and a credit account with a quote. When the
// debit account is non custodial crypto, Deposit is the transaction paying
// the quote deposit address.
type ComposedExchange struct {
	DebitAccountID  string               `json:"debitAccountId"`
	CreditAccountID string               `json:"creditAccountId"`
	Quote           Quote                `json:"quote"`
	DebitAmount     decimal.Decimal      `json:"debitAmount"`
	FeeAmount       decimal.Decimal      `json:"feeAmount"`
	CreditAmount    decimal.Decimal      `json:"creditAmount"`
	DepositFee      decimal.Decimal      `json:"depositFee"`
	Nonce           string               `json:"nonce"`
	State           ComposedState        `json:"state"`
	Deposit         *ComposedTransaction `json:"deposit,omitempty"`
}

// NewComposedExchange returns a draft exchange with a fresh nonce
func NewComposedExchange(
	debitAccountID, creditAccountID string, quote Quote,
) *ComposedExchange {
	return &ComposedExchange{
		DebitAccountID:  debitAccountID,
		CreditAccountID: creditAccountID,
		Quote:           quote,
		Nonce:           uuid.New().String(),
		State:           ComposedStateDraft,
	}
}

// IsSubmitted ...
func (c *ComposedExchange) IsSubmitted() bool {
	return c.State == ComposedStateSubmitted
}

// MarkSubmitted ...
func (c *ComposedExchange) MarkSubmitted() {
	c.State = ComposedStateSubmitted
}
