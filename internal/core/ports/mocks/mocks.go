// Package mocks provides testify mocks of the ports interfaces.
package mocks

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
)

// **** Backend ****

type BackendService struct {
	AccessToken    string
	AccountSvc     *AccountService
	TransactionSvc *TransactionService
	ExchangeSvc    *ExchangeService
	CardSvc        *CardService
}

func NewBackendService() *BackendService {
	return &BackendService{
		AccountSvc:     &AccountService{},
		TransactionSvc: &TransactionService{},
		ExchangeSvc:    &ExchangeService{},
		CardSvc:        &CardService{},
	}
}

func (m *BackendService) Account() ports.AccountService {
	return m.AccountSvc
}

func (m *BackendService) Transaction() ports.TransactionService {
	return m.TransactionSvc
}

func (m *BackendService) Exchange() ports.ExchangeService {
	return m.ExchangeSvc
}

func (m *BackendService) Card() ports.CardService {
	return m.CardSvc
}

func (m *BackendService) SetAccessToken(token string) {
	m.AccessToken = token
}

func (m *BackendService) Close() {}

// **** Account ****

type AccountService struct {
	mock.Mock
}

func (m *AccountService) GetWallet(ctx context.Context) (*ports.WalletRecord, error) {
	args := m.Called(ctx)

	var res *ports.WalletRecord
	if a := args.Get(0); a != nil {
		res = a.(*ports.WalletRecord)
	}
	return res, args.Error(1)
}

func (m *AccountService) CreateWallet(
	ctx context.Context, encryptedMnemonic string,
	accounts []ports.AccountRequest,
) ([]domain.Account, error) {
	args := m.Called(ctx, encryptedMnemonic, accounts)

	var res []domain.Account
	if a := args.Get(0); a != nil {
		res = a.([]domain.Account)
	}
	return res, args.Error(1)
}

func (m *AccountService) UpdateWallet(
	ctx context.Context, encryptedMnemonic string,
) error {
	args := m.Called(ctx, encryptedMnemonic)
	return args.Error(0)
}

func (m *AccountService) RegisterAccounts(
	ctx context.Context, accounts []ports.AccountRequest,
) ([]domain.Account, error) {
	args := m.Called(ctx, accounts)

	var res []domain.Account
	if a := args.Get(0); a != nil {
		res = a.([]domain.Account)
	}
	return res, args.Error(1)
}

func (m *AccountService) CreateFiatAccount(
	ctx context.Context, currency domain.CurrencyCode, network domain.Network,
) (domain.Account, error) {
	args := m.Called(ctx, currency, network)

	var res domain.Account
	if a := args.Get(0); a != nil {
		res = a.(domain.Account)
	}
	return res, args.Error(1)
}

func (m *AccountService) GetNominatedAccount(
	ctx context.Context, accountID string,
) (domain.FiatProperties, error) {
	args := m.Called(ctx, accountID)

	var res domain.FiatProperties
	if a := args.Get(0); a != nil {
		res = a.(domain.FiatProperties)
	}
	return res, args.Error(1)
}

func (m *AccountService) FetchSnapshots(
	ctx context.Context,
) ([]domain.AccountDataSnapshot, error) {
	args := m.Called(ctx)

	var res []domain.AccountDataSnapshot
	if a := args.Get(0); a != nil {
		res = a.([]domain.AccountDataSnapshot)
	}
	return res, args.Error(1)
}

func (m *AccountService) GetFiatCustomerNetworks(
	ctx context.Context,
) ([]domain.Network, error) {
	args := m.Called(ctx)

	var res []domain.Network
	if a := args.Get(0); a != nil {
		res = a.([]domain.Network)
	}
	return res, args.Error(1)
}

func (m *AccountService) MakeFiatCustomer(
	ctx context.Context, network domain.Network, data domain.FiatCustomerData,
) error {
	args := m.Called(ctx, network, data)
	return args.Error(0)
}

// **** Transaction ****

type TransactionService struct {
	mock.Mock
}

func (m *TransactionService) ListUnspents(
	ctx context.Context, accountID string,
) ([]domain.Unspent, error) {
	args := m.Called(ctx, accountID)

	var res []domain.Unspent
	if a := args.Get(0); a != nil {
		res = a.([]domain.Unspent)
	}
	return res, args.Error(1)
}

func (m *TransactionService) GetFeeRates(
	ctx context.Context,
) (map[domain.CurrencyCode]domain.FeeRates, error) {
	args := m.Called(ctx)

	var res map[domain.CurrencyCode]domain.FeeRates
	if a := args.Get(0); a != nil {
		res = a.(map[domain.CurrencyCode]domain.FeeRates)
	}
	return res, args.Error(1)
}

func (m *TransactionService) SubmitTransaction(
	ctx context.Context, req ports.SubmitTransactionRequest,
) (domain.Transaction, error) {
	args := m.Called(ctx, req)

	var res domain.Transaction
	if a := args.Get(0); a != nil {
		res = a.(domain.Transaction)
	}
	return res, args.Error(1)
}

// **** Exchange ****

type ExchangeService struct {
	mock.Mock
}

func (m *ExchangeService) GetQuote(
	ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal,
) (domain.Quote, error) {
	args := m.Called(ctx, from, to, amount)

	var res domain.Quote
	if a := args.Get(0); a != nil {
		res = a.(domain.Quote)
	}
	return res, args.Error(1)
}

func (m *ExchangeService) GetTradingPairs(
	ctx context.Context,
) ([]domain.TradingPair, error) {
	args := m.Called(ctx)

	var res []domain.TradingPair
	if a := args.Get(0); a != nil {
		res = a.([]domain.TradingPair)
	}
	return res, args.Error(1)
}

func (m *ExchangeService) GetHistoricalExchangeRates(
	ctx context.Context,
) (domain.HistoricalExchangeRates, error) {
	args := m.Called(ctx)

	var res domain.HistoricalExchangeRates
	if a := args.Get(0); a != nil {
		res = a.(domain.HistoricalExchangeRates)
	}
	return res, args.Error(1)
}

func (m *ExchangeService) CreateExchange(
	ctx context.Context, req ports.CreateExchangeRequest,
) (domain.Exchange, error) {
	args := m.Called(ctx, req)

	var res domain.Exchange
	if a := args.Get(0); a != nil {
		res = a.(domain.Exchange)
	}
	return res, args.Error(1)
}

func (m *ExchangeService) SettleDebit(
	ctx context.Context, exchangeID string,
) (domain.Transaction, error) {
	args := m.Called(ctx, exchangeID)

	var res domain.Transaction
	if a := args.Get(0); a != nil {
		res = a.(domain.Transaction)
	}
	return res, args.Error(1)
}

func (m *ExchangeService) SettleCredit(
	ctx context.Context, exchangeID string,
) (domain.Transaction, error) {
	args := m.Called(ctx, exchangeID)

	var res domain.Transaction
	if a := args.Get(0); a != nil {
		res = a.(domain.Transaction)
	}
	return res, args.Error(1)
}

// **** Card ****

type CardService struct {
	mock.Mock
}

func (m *CardService) CreateCard(
	ctx context.Context, accountID string, cardType domain.CardType,
) (domain.Card, error) {
	args := m.Called(ctx, accountID, cardType)

	var res domain.Card
	if a := args.Get(0); a != nil {
		res = a.(domain.Card)
	}
	return res, args.Error(1)
}

func (m *CardService) SetCardStatus(
	ctx context.Context, cardID string, status domain.CardStatus,
) error {
	args := m.Called(ctx, cardID, status)
	return args.Error(0)
}

// **** Realtime ****

type RealtimeChannel struct {
	mock.Mock
}

func (m *RealtimeChannel) Connect(ctx context.Context, token string) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *RealtimeChannel) Disconnect() error {
	args := m.Called()
	return args.Error(0)
}

// **** Clock ****

// Clock is a manually driven ports.Clock
type Clock struct {
	now time.Time
}

func NewClock(now time.Time) *Clock {
	return &Clock{now}
}

func (c *Clock) Now() time.Time {
	return c.now
}

func (c *Clock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
