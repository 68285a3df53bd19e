package exchange

import (
	"context"

	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"github.com/zumo-network/zumokit-core/pkg/stats"
)

// SubmitExchange creates the exchange and settles its debit and credit legs
// in this order. The composed exchange is consumed as soon as the backend
// accepts it, so a failing debit leg requires composing a new exchange.
// If the credit leg fails after the debit settled, a PartialExchangeError is
// returned: the debit must not be retried, use ReconcileExchange instead.
func (s *Service) SubmitExchange(
	ctx context.Context, composed *domain.ComposedExchange,
) (domain.Exchange, error) {
	if composed == nil {
		return domain.Exchange{}, domain.ErrInvalidArgument.WithMessage(
			"missing composed exchange",
		)
	}
	if composed.IsSubmitted() {
		return domain.Exchange{}, domain.ErrDuplicateNonce.WithMessage(
			"exchange %s has already been submitted", composed.Nonce,
		)
	}
	if composed.Quote.IsExpired(s.clock.Now()) {
		return domain.Exchange{}, domain.ErrQuoteExpired
	}

	if err := s.nonces.Acquire(composed.Nonce); err != nil {
		return domain.Exchange{}, err
	}
	created := false
	defer func() {
		if created {
			s.nonces.Consume(composed.Nonce)
			return
		}
		s.nonces.Release(composed.Nonce)
	}()

	exchange, err := s.exchanges.CreateExchange(ctx, ports.CreateExchangeRequest{
		Nonce:           composed.Nonce,
		QuoteID:         composed.Quote.ID,
		DebitAccountID:  composed.DebitAccountID,
		CreditAccountID: composed.CreditAccountID,
		DebitAmount:     composed.DebitAmount,
	})
	if err != nil {
		stats.Exchanges.WithLabelValues(outcomeFailure).Inc()
		return domain.Exchange{}, err
	}
	created = true
	composed.MarkSubmitted()

	logger := log.WithFields(log.Fields{
		"exchange": exchange.ID,
		"quote":    composed.Quote.ID,
	})

	debitTx, err := s.settleDebit(ctx, composed, exchange.ID)
	if err != nil {
		stats.Exchanges.WithLabelValues(outcomeFailure).Inc()
		logger.WithError(err).Warn("failed to settle exchange debit")
		return exchange, err
	}
	exchange.DebitTransactionID = debitTx.ID

	creditTx, err := s.exchanges.SettleCredit(ctx, exchange.ID)
	if err != nil {
		stats.Exchanges.WithLabelValues(outcomePartial).Inc()
		logger.WithError(err).Warn("exchange debit settled but credit failed")
		s.record(debitTx, exchange)
		return exchange, &domain.PartialExchangeError{
			ExchangeID:         exchange.ID,
			DebitTransactionID: debitTx.ID,
			Err:                err,
		}
	}
	exchange.CreditTransactionID = creditTx.ID

	s.record(debitTx, exchange)
	s.record(creditTx, exchange)
	stats.Exchanges.WithLabelValues(outcomeSuccess).Inc()

	logger.Debug("exchange submitted")
	return exchange, nil
}

// ReconcileExchange settles the credit leg of an exchange whose debit leg
// already settled. It never touches the debit leg.
func (s *Service) ReconcileExchange(
	ctx context.Context, exchangeID string,
) (domain.Exchange, error) {
	exchange, ok := s.store.Exchange(exchangeID)
	if !ok {
		return domain.Exchange{}, domain.ErrInvalidArgument.WithMessage(
			"exchange %s not found", exchangeID,
		)
	}
	if len(exchange.CreditTransactionID) > 0 {
		return exchange, nil
	}
	if len(exchange.DebitTransactionID) <= 0 {
		return domain.Exchange{}, domain.ErrInvalidArgument.WithMessage(
			"debit leg of exchange %s is not settled", exchangeID,
		)
	}

	creditTx, err := s.exchanges.SettleCredit(ctx, exchangeID)
	if err != nil {
		return exchange, &domain.PartialExchangeError{
			ExchangeID:         exchange.ID,
			DebitTransactionID: exchange.DebitTransactionID,
			Err:                err,
		}
	}
	exchange.CreditTransactionID = creditTx.ID

	s.record(creditTx, exchange)
	stats.Exchanges.WithLabelValues(outcomeSuccess).Inc()
	return exchange, nil
}

func (s *Service) settleDebit(
	ctx context.Context, composed *domain.ComposedExchange, exchangeID string,
) (domain.Transaction, error) {
	if composed.Deposit != nil {
		return s.submitter.SubmitDeposit(ctx, composed.Deposit, exchangeID)
	}
	return s.exchanges.SettleDebit(ctx, exchangeID)
}

// record attaches the exchange to the transaction and stores it
func (s *Service) record(tx domain.Transaction, exchange domain.Exchange) {
	ex := exchange
	tx.Exchange = &ex
	s.store.UpsertTransaction(tx)
}
