package ports

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

// BackendService groups the capabilities of the remote services. Every
// method reports failures as domain errors: NetworkError for transport
// failures, DuplicateNonce for replayed nonces, ValidationError for
// rejected requests.
type BackendService interface {
	Account() AccountService
	Transaction() TransactionService
	Exchange() ExchangeService
	Card() CardService
	// SetAccessToken sets the bearer token presented on every request.
	SetAccessToken(token string)
	Close()
}

type AccountService interface {
	// GetWallet returns the wallet record of the signed in user or
	// domain.ErrWalletNotFound.
	GetWallet(ctx context.Context) (*WalletRecord, error)
	// CreateWallet stores the encrypted mnemonic and registers the
	// accounts derived from it.
	CreateWallet(
		ctx context.Context, encryptedMnemonic string, accounts []AccountRequest,
	) ([]domain.Account, error)
	// UpdateWallet replaces the encrypted mnemonic of an existing wallet,
	// either recovered or re-encrypted with a new passphrase.
	UpdateWallet(ctx context.Context, encryptedMnemonic string) error
	// RegisterAccounts registers locally derived accounts. Already
	// registered accounts are returned as they are.
	RegisterAccounts(
		ctx context.Context, accounts []AccountRequest,
	) ([]domain.Account, error)
	CreateFiatAccount(
		ctx context.Context, currency domain.CurrencyCode, network domain.Network,
	) (domain.Account, error)
	GetNominatedAccount(
		ctx context.Context, accountID string,
	) (domain.FiatProperties, error)
	FetchSnapshots(ctx context.Context) ([]domain.AccountDataSnapshot, error)
	// GetFiatCustomerNetworks returns the networks whose fiat rails the user
	// has been onboarded to.
	GetFiatCustomerNetworks(ctx context.Context) ([]domain.Network, error)
	MakeFiatCustomer(
		ctx context.Context, network domain.Network, data domain.FiatCustomerData,
	) error
}

type TransactionService interface {
	ListUnspents(ctx context.Context, accountID string) ([]domain.Unspent, error)
	GetFeeRates(ctx context.Context) (map[domain.CurrencyCode]domain.FeeRates, error)
	// SubmitTransaction is keyed by the request nonce. A nonce already
	// received by the backend is rejected with domain.ErrDuplicateNonce.
	SubmitTransaction(
		ctx context.Context, req SubmitTransactionRequest,
	) (domain.Transaction, error)
}

type ExchangeService interface {
	GetQuote(
		ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal,
	) (domain.Quote, error)
	GetTradingPairs(ctx context.Context) ([]domain.TradingPair, error)
	GetHistoricalExchangeRates(
		ctx context.Context,
	) (domain.HistoricalExchangeRates, error)
	CreateExchange(
		ctx context.Context, req CreateExchangeRequest,
	) (domain.Exchange, error)
	// SettleDebit settles the debit leg of an exchange whose funds are held
	// by the backend.
	SettleDebit(ctx context.Context, exchangeID string) (domain.Transaction, error)
	// SettleCredit settles the credit leg of an exchange.
	SettleCredit(ctx context.Context, exchangeID string) (domain.Transaction, error)
}

type CardService interface {
	CreateCard(
		ctx context.Context, accountID string, cardType domain.CardType,
	) (domain.Card, error)
	SetCardStatus(
		ctx context.Context, cardID string, status domain.CardStatus,
	) error
}
