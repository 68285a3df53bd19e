package ports

import (
	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

// WalletRecord is the wallet of a user as stored by the backend
type WalletRecord struct {
	EncryptedMnemonic string           `json:"encryptedMnemonic"`
	Accounts          []domain.Account `json:"accounts"`
}

// AccountRequest describes a locally derived crypto account to register
type AccountRequest struct {
	CurrencyCode domain.CurrencyCode `json:"currencyCode"`
	Network      domain.Network      `json:"network"`
	Type         domain.AccountType  `json:"type"`
	Address      string              `json:"address"`
	Path         string              `json:"path"`
}

type SubmitTransactionRequest struct {
	Nonce             string                 `json:"nonce"`
	Type              domain.TransactionType `json:"type"`
	AccountID         string                 `json:"accountId"`
	ToAccountID       string                 `json:"toAccountId,omitempty"`
	Destination       string                 `json:"destination,omitempty"`
	Amount            decimal.Decimal        `json:"amount"`
	Fee               decimal.Decimal        `json:"fee"`
	SignedTransaction string                 `json:"signedTransaction,omitempty"`
	ExchangeID        string                 `json:"exchangeId,omitempty"`
}

type CreateExchangeRequest struct {
	Nonce           string          `json:"nonce"`
	QuoteID         string          `json:"quoteId"`
	DebitAccountID  string          `json:"debitAccountId"`
	CreditAccountID string          `json:"creditAccountId"`
	DebitAmount     decimal.Decimal `json:"debitAmount"`
}
