package exchange

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/application/composer"
	"github.com/zumo-network/zumokit-core/internal/core/application/submission"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
)

const (
	outcomeSuccess = "success"
	outcomePartial = "partial"
	outcomeFailure = "failure"
)

type AccountReader interface {
	GetAccountByID(id string) (domain.Account, error)
}

// DepositComposer composes the transaction paying the deposit address of a
// quote from a non custodial account
type DepositComposer interface {
	ComposeEthTransaction(
		opts composer.ComposeEthOpts,
	) (*domain.ComposedTransaction, error)
	ComposeBtcTransaction(
		ctx context.Context, opts composer.ComposeBtcOpts,
	) (*domain.ComposedTransaction, error)
}

// DepositSubmitter signs and submits deposit transactions
type DepositSubmitter interface {
	SubmitDeposit(
		ctx context.Context, tx *domain.ComposedTransaction, exchangeID string,
	) (domain.Transaction, error)
}

// MarketStore is the state the engine reads fee rates and trading pairs from
// and writes exchange transactions to
type MarketStore interface {
	FeeRates(currency domain.CurrencyCode) (domain.FeeRates, bool)
	TradingPair(from, to domain.CurrencyCode) (domain.TradingPair, bool)
	SetTradingPairs(pairs []domain.TradingPair)
	UpsertTransaction(tx domain.Transaction)
	Exchange(id string) (domain.Exchange, bool)
}

// Service composes and settles currency conversions priced by a Quote
type Service struct {
	accounts  AccountReader
	deposits  DepositComposer
	submitter DepositSubmitter
	store     MarketStore
	exchanges ports.ExchangeService
	clock     ports.Clock
	nonces    *submission.NonceRegistry
}

func NewService(
	accounts AccountReader,
	deposits DepositComposer,
	submitter DepositSubmitter,
	store MarketStore,
	exchanges ports.ExchangeService,
	clock ports.Clock,
) (*Service, error) {
	if accounts == nil {
		return nil, fmt.Errorf("missing account reader")
	}
	if deposits == nil {
		return nil, fmt.Errorf("missing deposit composer")
	}
	if submitter == nil {
		return nil, fmt.Errorf("missing deposit submitter")
	}
	if store == nil {
		return nil, fmt.Errorf("missing market store")
	}
	if exchanges == nil {
		return nil, fmt.Errorf("missing exchange backend service")
	}
	if clock == nil {
		return nil, fmt.Errorf("missing clock")
	}
	return &Service{
		accounts:  accounts,
		deposits:  deposits,
		submitter: submitter,
		store:     store,
		exchanges: exchanges,
		clock:     clock,
		nonces:    submission.NewNonceRegistry(),
	}, nil
}

// GetQuote fetches a fresh quote for converting debitAmount of from into to
func (s *Service) GetQuote(
	ctx context.Context, from, to domain.CurrencyCode, debitAmount decimal.Decimal,
) (domain.Quote, error) {
	if !from.IsValid() || !to.IsValid() {
		return domain.Quote{}, domain.ErrUnsupportedCurrency
	}
	if from == to {
		return domain.Quote{}, domain.ErrInvalidArgument.WithMessage(
			"cannot exchange %s for itself", from,
		)
	}
	if !debitAmount.IsPositive() {
		return domain.Quote{}, domain.ErrInvalidAmount
	}

	quote, err := s.exchanges.GetQuote(ctx, from, to, debitAmount)
	if err != nil {
		return domain.Quote{}, err
	}
	if quote.ExpiresAt.IsZero() && quote.ExpiresIn > 0 {
		quote.ExpiresAt = s.clock.Now().Add(secondsToDuration(quote.ExpiresIn))
	}
	return quote, nil
}

// TradingPairs fetches the trading pairs and their limits and caches them in
// the state store
func (s *Service) TradingPairs(ctx context.Context) ([]domain.TradingPair, error) {
	pairs, err := s.exchanges.GetTradingPairs(ctx)
	if err != nil {
		return nil, err
	}
	s.store.SetTradingPairs(pairs)
	return pairs, nil
}

// HistoricalExchangeRates fetches the indicative rates of every pair over
// the supported time intervals. Series of unknown intervals are dropped.
func (s *Service) HistoricalExchangeRates(
	ctx context.Context,
) (domain.HistoricalExchangeRates, error) {
	rates, err := s.exchanges.GetHistoricalExchangeRates(ctx)
	if err != nil {
		return nil, err
	}
	for interval := range rates {
		if !interval.IsValid() {
			log.Debugf("exchange: dropping rates of unknown interval %s", interval)
			delete(rates, interval)
		}
	}
	return rates, nil
}
