package httpbackend

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
)

type accountService struct {
	*service
}

func (s accountService) GetWallet(ctx context.Context) (*ports.WalletRecord, error) {
	record := &ports.WalletRecord{}
	if err := s.get(ctx, "/wallet", nil, record); err != nil {
		if isNotFound(err) {
			return nil, domain.ErrWalletNotFound
		}
		return nil, err
	}
	if len(record.EncryptedMnemonic) <= 0 {
		return nil, domain.ErrWalletNotFound
	}
	return record, nil
}

func (s accountService) CreateWallet(
	ctx context.Context, encryptedMnemonic string,
	accounts []ports.AccountRequest,
) ([]domain.Account, error) {
	body := walletRequest{
		EncryptedMnemonic: encryptedMnemonic,
		Accounts:          accounts,
	}
	record := &ports.WalletRecord{}
	if err := s.post(ctx, "/wallet", body, record); err != nil {
		return nil, err
	}
	return record.Accounts, nil
}

func (s accountService) UpdateWallet(
	ctx context.Context, encryptedMnemonic string,
) error {
	body := walletRequest{EncryptedMnemonic: encryptedMnemonic}
	return s.put(ctx, "/wallet", body, nil)
}

func (s accountService) RegisterAccounts(
	ctx context.Context, accounts []ports.AccountRequest,
) ([]domain.Account, error) {
	var registered []domain.Account
	body := accountsRequest{Accounts: accounts}
	if err := s.post(ctx, "/accounts", body, &registered); err != nil {
		return nil, err
	}
	return registered, nil
}

func (s accountService) CreateFiatAccount(
	ctx context.Context, currency domain.CurrencyCode, network domain.Network,
) (domain.Account, error) {
	var account domain.Account
	body := fiatAccountRequest{CurrencyCode: currency, Network: network}
	if err := s.post(ctx, "/fiat/accounts", body, &account); err != nil {
		return domain.Account{}, err
	}
	return account, nil
}

func (s accountService) GetNominatedAccount(
	ctx context.Context, accountID string,
) (domain.FiatProperties, error) {
	var props domain.FiatProperties
	path := fmt.Sprintf("/fiat/accounts/%s/nominated", url.PathEscape(accountID))
	if err := s.get(ctx, path, nil, &props); err != nil {
		if isNotFound(err) {
			return domain.FiatProperties{}, domain.ErrNominatedAccountNotFound
		}
		return domain.FiatProperties{}, err
	}
	return props, nil
}

func (s accountService) FetchSnapshots(
	ctx context.Context,
) ([]domain.AccountDataSnapshot, error) {
	var snapshots []domain.AccountDataSnapshot
	if err := s.get(ctx, "/accounts/snapshots", nil, &snapshots); err != nil {
		return nil, err
	}
	return snapshots, nil
}

func (s accountService) GetFiatCustomerNetworks(
	ctx context.Context,
) ([]domain.Network, error) {
	res := fiatCustomersResponse{}
	if err := s.get(ctx, "/fiat/customers", nil, &res); err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return res.Networks, nil
}

func (s accountService) MakeFiatCustomer(
	ctx context.Context, network domain.Network, data domain.FiatCustomerData,
) error {
	body := fiatCustomerRequest{Network: network, FiatCustomerData: data}
	return s.post(ctx, "/fiat/customers", body, nil)
}

type transactionService struct {
	*service
}

func (s transactionService) ListUnspents(
	ctx context.Context, accountID string,
) ([]domain.Unspent, error) {
	var unspents []domain.Unspent
	path := fmt.Sprintf("/accounts/%s/unspents", url.PathEscape(accountID))
	if err := s.get(ctx, path, nil, &unspents); err != nil {
		return nil, err
	}
	return unspents, nil
}

func (s transactionService) GetFeeRates(
	ctx context.Context,
) (map[domain.CurrencyCode]domain.FeeRates, error) {
	feeRates := make(map[domain.CurrencyCode]domain.FeeRates)
	if err := s.get(ctx, "/fee-rates", nil, &feeRates); err != nil {
		return nil, err
	}
	return feeRates, nil
}

func (s transactionService) SubmitTransaction(
	ctx context.Context, req ports.SubmitTransactionRequest,
) (domain.Transaction, error) {
	var tx domain.Transaction
	if err := s.post(ctx, "/transactions", req, &tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

type exchangeService struct {
	*service
}

func (s exchangeService) GetQuote(
	ctx context.Context, from, to domain.CurrencyCode, amount decimal.Decimal,
) (domain.Quote, error) {
	query := url.Values{}
	query.Set("from", string(from))
	query.Set("to", string(to))
	query.Set("amount", amount.String())

	var quote domain.Quote
	if err := s.get(ctx, "/exchange/quote", query, &quote); err != nil {
		return domain.Quote{}, err
	}
	return quote, nil
}

func (s exchangeService) GetTradingPairs(
	ctx context.Context,
) ([]domain.TradingPair, error) {
	var pairs []domain.TradingPair
	if err := s.get(ctx, "/exchange/trading-pairs", nil, &pairs); err != nil {
		return nil, err
	}
	return pairs, nil
}

func (s exchangeService) GetHistoricalExchangeRates(
	ctx context.Context,
) (domain.HistoricalExchangeRates, error) {
	rates := make(domain.HistoricalExchangeRates)
	if err := s.get(ctx, "/exchange/rates/historical", nil, &rates); err != nil {
		return nil, err
	}
	return rates, nil
}

func (s exchangeService) CreateExchange(
	ctx context.Context, req ports.CreateExchangeRequest,
) (domain.Exchange, error) {
	var exchange domain.Exchange
	if err := s.post(ctx, "/exchanges", req, &exchange); err != nil {
		return domain.Exchange{}, err
	}
	return exchange, nil
}

func (s exchangeService) SettleDebit(
	ctx context.Context, exchangeID string,
) (domain.Transaction, error) {
	return s.settle(ctx, exchangeID, "debit")
}

func (s exchangeService) SettleCredit(
	ctx context.Context, exchangeID string,
) (domain.Transaction, error) {
	return s.settle(ctx, exchangeID, "credit")
}

func (s exchangeService) settle(
	ctx context.Context, exchangeID, leg string,
) (domain.Transaction, error) {
	var tx domain.Transaction
	path := fmt.Sprintf("/exchanges/%s/%s", url.PathEscape(exchangeID), leg)
	if err := s.post(ctx, path, nil, &tx); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

type cardService struct {
	*service
}

func (s cardService) CreateCard(
	ctx context.Context, accountID string, cardType domain.CardType,
) (domain.Card, error) {
	var card domain.Card
	body := cardRequest{AccountID: accountID, CardType: cardType}
	if err := s.post(ctx, "/cards", body, &card); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

func (s cardService) SetCardStatus(
	ctx context.Context, cardID string, status domain.CardStatus,
) error {
	path := fmt.Sprintf("/cards/%s/status", url.PathEscape(cardID))
	return s.put(ctx, path, cardStatusRequest{Status: status}, nil)
}
