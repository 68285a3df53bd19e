package submission

import (
	"context"
	"errors"
	"fmt"

	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"github.com/zumo-network/zumokit-core/pkg/stats"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

const (
	outcomeSuccess   = "success"
	outcomeFailure   = "failure"
	outcomeDuplicate = "duplicate"
)

// Signer signs composed transactions with the keys of the unlocked wallet
type Signer interface {
	SignTransaction(
		tx *domain.ComposedTransaction, account domain.Account,
	) (*hdwallet.SignedTransaction, error)
}

// AccountReader gives access to the spending accounts and records the
// Ethereum nonces consumed by submitted transactions
type AccountReader interface {
	GetAccountByID(id string) (domain.Account, error)
	ReserveNonce(accountID string, used uint64)
}

// TransactionStore receives the transactions returned by the backend
type TransactionStore interface {
	UpsertTransaction(tx domain.Transaction)
}

// Service commits composed transactions. Each composed transaction is
// submitted at most once: its nonce is in flight while the request is
// pending, consumed on success and released on failure.
type Service struct {
	signer       Signer
	accounts     AccountReader
	store        TransactionStore
	transactions ports.TransactionService
	nonces       *NonceRegistry
}

func NewService(
	signer Signer,
	accounts AccountReader,
	store TransactionStore,
	transactions ports.TransactionService,
) (*Service, error) {
	if signer == nil {
		return nil, fmt.Errorf("missing signer")
	}
	if accounts == nil {
		return nil, fmt.Errorf("missing account reader")
	}
	if store == nil {
		return nil, fmt.Errorf("missing transaction store")
	}
	if transactions == nil {
		return nil, fmt.Errorf("missing transaction backend service")
	}
	return &Service{
		signer:       signer,
		accounts:     accounts,
		store:        store,
		transactions: transactions,
		nonces:       NewNonceRegistry(),
	}, nil
}

// SubmitTransaction signs the composed transaction if it spends from a non
// custodial account and submits it to the backend
func (s *Service) SubmitTransaction(
	ctx context.Context, tx *domain.ComposedTransaction,
) (domain.Transaction, error) {
	return s.submit(ctx, tx, "")
}

// SubmitDeposit submits the deposit leg of the given exchange
func (s *Service) SubmitDeposit(
	ctx context.Context, tx *domain.ComposedTransaction, exchangeID string,
) (domain.Transaction, error) {
	if len(exchangeID) <= 0 {
		return domain.Transaction{}, domain.ErrInvalidArgument.WithMessage(
			"missing exchange id",
		)
	}
	return s.submit(ctx, tx, exchangeID)
}

func (s *Service) submit(
	ctx context.Context, tx *domain.ComposedTransaction, exchangeID string,
) (result domain.Transaction, err error) {
	if tx == nil {
		return domain.Transaction{}, domain.ErrInvalidArgument.WithMessage(
			"missing composed transaction",
		)
	}
	if tx.IsSubmitted() {
		stats.Submissions.WithLabelValues(string(tx.Type), outcomeDuplicate).Inc()
		return domain.Transaction{}, domain.ErrDuplicateNonce.WithMessage(
			"transaction %s has already been submitted", tx.Nonce,
		)
	}
	if err := s.nonces.Acquire(tx.Nonce); err != nil {
		stats.Submissions.WithLabelValues(string(tx.Type), outcomeDuplicate).Inc()
		return domain.Transaction{}, err
	}

	defer func() {
		if err == nil || errors.Is(err, domain.ErrDuplicateNonce) {
			s.nonces.Consume(tx.Nonce)
			return
		}
		s.nonces.Release(tx.Nonce)
	}()

	req := ports.SubmitTransactionRequest{
		Nonce:       tx.Nonce,
		Type:        tx.Type,
		AccountID:   tx.AccountID,
		ToAccountID: tx.ToAccountID,
		Destination: tx.Destination,
		Amount:      tx.Amount,
		Fee:         tx.Fee,
		ExchangeID:  exchangeID,
	}

	if tx.RequiresSigning() {
		account, err := s.accounts.GetAccountByID(tx.AccountID)
		if err != nil {
			return domain.Transaction{}, err
		}
		signed, err := s.signer.SignTransaction(tx, account)
		if err != nil {
			stats.Submissions.WithLabelValues(string(tx.Type), outcomeFailure).Inc()
			return domain.Transaction{}, err
		}
		tx.SignedTransaction = signed.TxHex
		req.SignedTransaction = signed.TxHex
	}

	result, err = s.transactions.SubmitTransaction(ctx, req)
	if err != nil {
		outcome := outcomeFailure
		if errors.Is(err, domain.ErrDuplicateNonce) {
			outcome = outcomeDuplicate
		}
		stats.Submissions.WithLabelValues(string(tx.Type), outcome).Inc()
		log.WithError(err).WithFields(log.Fields{
			"nonce":   tx.Nonce,
			"type":    tx.Type,
			"account": tx.AccountID,
		}).Warn("transaction submission failed")
		return domain.Transaction{}, err
	}

	tx.MarkSubmitted()
	if tx.Eth != nil {
		s.accounts.ReserveNonce(tx.AccountID, tx.Eth.Nonce)
	}
	s.store.UpsertTransaction(result)
	stats.Submissions.WithLabelValues(string(tx.Type), outcomeSuccess).Inc()

	log.Debugf("submitted transaction %s with nonce %s", result.ID, tx.Nonce)
	return result, nil
}
