package submission_test

import (
	"context"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zumo-network/zumokit-core/internal/core/application/state"
	"github.com/zumo-network/zumokit-core/internal/core/application/submission"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"github.com/zumo-network/zumokit-core/internal/core/ports/mocks"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

var ctx = context.Background()

type mockSigner struct {
	mock.Mock
}

func (m *mockSigner) SignTransaction(
	tx *domain.ComposedTransaction, account domain.Account,
) (*hdwallet.SignedTransaction, error) {
	args := m.Called(tx, account)

	var res *hdwallet.SignedTransaction
	if a := args.Get(0); a != nil {
		res = a.(*hdwallet.SignedTransaction)
	}
	return res, args.Error(1)
}

type accountReader struct {
	lock     sync.Mutex
	accounts map[string]domain.Account
	reserved map[string]uint64
}

func (r *accountReader) GetAccountByID(id string) (domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r *accountReader) ReserveNonce(accountID string, used uint64) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.reserved[accountID] = used
}

func TestSubmitFiatTransaction(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	tx := domain.NewComposedTransaction(domain.TransactionTypeFiat, deps.accounts.accounts["gbp"])
	tx.ToAccountID = "gbp2"
	tx.Amount = decimal.NewFromInt(10)
	tx.Fee = decimal.Zero

	deps.transactions.On("SubmitTransaction", mock.Anything, mock.MatchedBy(
		func(req ports.SubmitTransactionRequest) bool {
			return req.Nonce == tx.Nonce && req.ToAccountID == "gbp2" &&
				len(req.SignedTransaction) <= 0
		},
	)).Return(submittedTx("tx-1", "gbp", tx.Nonce), nil).Once()

	res, err := svc.SubmitTransaction(ctx, tx)
	require.NoError(t, err)
	require.Equal(t, "tx-1", res.ID)
	require.True(t, tx.IsSubmitted())

	stored, ok := deps.store.Transaction("tx-1")
	require.True(t, ok)
	require.Equal(t, domain.TransactionStatusPending, stored.Status)

	_, err = svc.SubmitTransaction(ctx, tx)
	require.ErrorIs(t, err, domain.ErrDuplicateNonce)

	deps.signer.AssertNotCalled(t, "SignTransaction", mock.Anything, mock.Anything)
	deps.transactions.AssertNumberOfCalls(t, "SubmitTransaction", 1)
}

func TestSubmitEthTransaction(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	account := deps.accounts.accounts["eth"]
	tx := domain.NewComposedTransaction(domain.TransactionTypeCrypto, account)
	tx.Destination = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	tx.Amount = decimal.RequireFromString("0.1")
	tx.Fee = decimal.RequireFromString("0.00042")
	tx.Eth = &domain.EthPayload{
		ChainID:  1,
		Nonce:    7,
		GasPrice: decimal.NewFromInt(20),
		GasLimit: 21000,
	}

	deps.signer.On("SignTransaction", tx, account).Return(
		&hdwallet.SignedTransaction{TxHex: "0xf86c07", TxHash: "0xabc"}, nil,
	)
	deps.transactions.On("SubmitTransaction", mock.Anything, mock.MatchedBy(
		func(req ports.SubmitTransactionRequest) bool {
			return req.SignedTransaction == "0xf86c07"
		},
	)).Return(submittedTx("tx-eth", "eth", tx.Nonce), nil)

	_, err := svc.SubmitTransaction(ctx, tx)
	require.NoError(t, err)
	require.Equal(t, "0xf86c07", tx.SignedTransaction)
	require.Equal(t, uint64(7), deps.accounts.reserved["eth"])

	// the signed transaction holds funds until settled
	available, ok := deps.store.Account("eth")
	require.True(t, ok)
	require.Equal(t, "0.89958", available.AvailableBalance.String())
}

func TestFailingSubmitReleasesNonce(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		signErr   error
		submitErr error
		err       error
	}{
		{
			name:    "wallet locked",
			signErr: domain.ErrWalletLocked,
			err:     domain.ErrWalletLocked,
		},
		{
			name:      "network error",
			submitErr: domain.ErrNetwork,
			err:       domain.ErrNetwork,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			svc, deps := newTestService(t)
			account := deps.accounts.accounts["eth"]
			tx := domain.NewComposedTransaction(domain.TransactionTypeCrypto, account)
			tx.Amount = decimal.RequireFromString("0.1")
			tx.Fee = decimal.RequireFromString("0.00042")
			tx.Eth = &domain.EthPayload{ChainID: 1, Nonce: 2}

			signed := &hdwallet.SignedTransaction{TxHex: "0x01"}
			if tt.signErr != nil {
				deps.signer.On("SignTransaction", tx, account).Return(nil, tt.signErr).Once()
			} else {
				deps.signer.On("SignTransaction", tx, account).Return(signed, nil).Once()
			}
			if tt.submitErr != nil {
				deps.transactions.On("SubmitTransaction", mock.Anything, mock.Anything).
					Return(nil, tt.submitErr).Once()
			}

			_, err := svc.SubmitTransaction(ctx, tx)
			require.ErrorIs(t, err, tt.err)
			require.False(t, tx.IsSubmitted())
			_, ok := deps.accounts.reserved["eth"]
			require.False(t, ok)

			// the same composed transaction can be submitted again
			deps.signer.On("SignTransaction", tx, account).Return(signed, nil).Once()
			deps.transactions.On("SubmitTransaction", mock.Anything, mock.Anything).
				Return(submittedTx("tx-retry", "eth", tx.Nonce), nil).Once()

			_, err = svc.SubmitTransaction(ctx, tx)
			require.NoError(t, err)
			require.True(t, tx.IsSubmitted())
		})
	}
}

func TestBackendDuplicateNonceConsumesNonce(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	tx := domain.NewComposedTransaction(domain.TransactionTypeFiat, deps.accounts.accounts["gbp"])
	tx.ToAccountID = "gbp2"
	tx.Amount = decimal.NewFromInt(1)

	deps.transactions.On("SubmitTransaction", mock.Anything, mock.Anything).
		Return(nil, domain.ErrDuplicateNonce).Once()

	_, err := svc.SubmitTransaction(ctx, tx)
	require.ErrorIs(t, err, domain.ErrDuplicateNonce)

	_, err = svc.SubmitTransaction(ctx, tx)
	require.ErrorIs(t, err, domain.ErrDuplicateNonce)
	deps.transactions.AssertNumberOfCalls(t, "SubmitTransaction", 1)
}

func TestSubmitDeposit(t *testing.T) {
	t.Parallel()

	svc, deps := newTestService(t)
	tx := domain.NewComposedTransaction(domain.TransactionTypeFiat, deps.accounts.accounts["gbp"])
	tx.Amount = decimal.NewFromInt(1)

	_, err := svc.SubmitDeposit(ctx, tx, "")
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	deps.transactions.On("SubmitTransaction", mock.Anything, mock.MatchedBy(
		func(req ports.SubmitTransactionRequest) bool {
			return req.ExchangeID == "exchange-1"
		},
	)).Return(submittedTx("tx-dep", "gbp", tx.Nonce), nil)

	_, err = svc.SubmitDeposit(ctx, tx, "exchange-1")
	require.NoError(t, err)
}

func TestNonceRegistry(t *testing.T) {
	t.Parallel()

	r := submission.NewNonceRegistry()
	require.ErrorIs(t, r.Acquire(""), domain.ErrInvalidArgument)

	require.NoError(t, r.Acquire("a"))
	require.ErrorIs(t, r.Acquire("a"), domain.ErrDuplicateNonce)

	r.Release("a")
	require.NoError(t, r.Acquire("a"))

	r.Consume("a")
	require.True(t, r.IsConsumed("a"))
	r.Release("a")
	require.ErrorIs(t, r.Acquire("a"), domain.ErrDuplicateNonce)
}

func TestConcurrentAcquire(t *testing.T) {
	t.Parallel()

	r := submission.NewNonceRegistry()
	results := make(chan error, 10)

	wg := &sync.WaitGroup{}
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- r.Acquire("nonce")
		}()
	}
	wg.Wait()
	close(results)

	acquired := 0
	for err := range results {
		if err == nil {
			acquired++
		}
	}
	require.Equal(t, 1, acquired)
}

type testDeps struct {
	signer       *mockSigner
	accounts     *accountReader
	store        *state.Store
	transactions *mocks.TransactionService
}

func newTestService(t *testing.T) (*submission.Service, testDeps) {
	ethAccount := domain.Account{
		ID:               "eth",
		CurrencyType:     domain.CurrencyTypeCrypto,
		CurrencyCode:     domain.CurrencyETH,
		Network:          domain.NetworkMainnet,
		Type:             domain.AccountTypeStandard,
		CustodyType:      domain.CustodyTypeNonCustody,
		LedgerBalance:    decimal.NewFromInt(1),
		AvailableBalance: decimal.NewFromInt(1),
	}
	gbpAccount := domain.Account{
		ID:               "gbp",
		CurrencyType:     domain.CurrencyTypeFiat,
		CurrencyCode:     domain.CurrencyGBP,
		Network:          domain.NetworkTestnet,
		Type:             domain.AccountTypeStandard,
		CustodyType:      domain.CustodyTypeCustody,
		LedgerBalance:    decimal.NewFromInt(100),
		AvailableBalance: decimal.NewFromInt(100),
	}

	deps := testDeps{
		signer: &mockSigner{},
		accounts: &accountReader{
			accounts: map[string]domain.Account{"eth": ethAccount, "gbp": gbpAccount},
			reserved: map[string]uint64{},
		},
		store:        state.NewStore(),
		transactions: &mocks.TransactionService{},
	}
	deps.store.AddAccount(ethAccount)
	deps.store.AddAccount(gbpAccount)

	svc, err := submission.NewService(
		deps.signer, deps.accounts, deps.store, deps.transactions,
	)
	require.NoError(t, err)
	return svc, deps
}

func submittedTx(id, accountID, nonce string) domain.Transaction {
	amount := decimal.NewFromInt(10)
	fee := decimal.Zero
	if accountID == "eth" {
		amount = decimal.RequireFromString("0.1")
		fee = decimal.RequireFromString("0.00042")
	}
	return domain.Transaction{
		ID:            id,
		Type:          domain.TransactionTypeFiat,
		Direction:     domain.DirectionOutgoing,
		Status:        domain.TransactionStatusPending,
		FromAccountID: accountID,
		Amount:        amount,
		Fee:           fee,
		Nonce:         nonce,
	}
}
