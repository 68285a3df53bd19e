package composer_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zumo-network/zumokit-core/internal/core/application/composer"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports/mocks"
)

const (
	ethDestination = "0x5aAeb6053F3E94C9b9A09f33669435E7Ef1BeAed"
	btcDestination = "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu"
)

var ctx = context.Background()

type accountReader struct {
	accounts map[string]domain.Account
	nonce    uint64
}

func (r accountReader) GetAccountByID(id string) (domain.Account, error) {
	account, ok := r.accounts[id]
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound
	}
	return account, nil
}

func (r accountReader) NextNonce(string) (uint64, error) {
	return r.nonce, nil
}

func TestComposeEthTransaction(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	override := uint64(1)

	tests := []struct {
		name           string
		opts           composer.ComposeEthOpts
		expectedAmount string
		expectedFee    string
		expectedNonce  uint64
	}{
		{
			name: "amount",
			opts: composer.ComposeEthOpts{
				FromAccountID: "eth",
				Destination:   ethDestination,
				Amount:        decimal.RequireFromString("0.1"),
				GasPrice:      decimal.NewFromInt(20),
				GasLimit:      composer.DefaultEthGasLimit,
			},
			expectedAmount: "0.1",
			expectedFee:    "0.00042",
			expectedNonce:  5,
		},
		{
			name: "send max",
			opts: composer.ComposeEthOpts{
				FromAccountID: "eth",
				Destination:   ethDestination,
				GasPrice:      decimal.NewFromInt(20),
				GasLimit:      composer.DefaultEthGasLimit,
				SendMax:       true,
			},
			expectedAmount: "0.99958",
			expectedFee:    "0.00042",
			expectedNonce:  5,
		},
		{
			name: "nonce override and data",
			opts: composer.ComposeEthOpts{
				FromAccountID: "eth",
				Destination:   ethDestination,
				Amount:        decimal.RequireFromString("0.5"),
				GasPrice:      decimal.RequireFromString("1.5"),
				GasLimit:      100000,
				Data:          "0xdeadbeef",
				Nonce:         &override,
			},
			expectedAmount: "0.5",
			expectedFee:    "0.00015",
			expectedNonce:  1,
		},
	}

	for _, tt := range tests {
		tx, err := svc.ComposeEthTransaction(tt.opts)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.expectedAmount, tx.Amount.String(), tt.name)
		require.Equal(t, tt.expectedFee, tx.Fee.String(), tt.name)
		require.Equal(t, tt.expectedNonce, tx.Eth.Nonce, tt.name)
		require.Equal(t, int64(3), tx.Eth.ChainID, tt.name)
		require.Equal(t, domain.ComposedStateDraft, tx.State, tt.name)
		require.NotEmpty(t, tx.Nonce, tt.name)
		require.True(t, tx.RequiresSigning(), tt.name)
		require.True(t, tx.Debit().LessThanOrEqual(decimal.NewFromInt(1)), tt.name)
	}

	tx1, _ := svc.ComposeEthTransaction(tests[0].opts)
	tx2, _ := svc.ComposeEthTransaction(tests[0].opts)
	require.NotEqual(t, tx1.Nonce, tx2.Nonce)
}

func TestFailingComposeEthTransaction(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)
	valid := func() composer.ComposeEthOpts {
		return composer.ComposeEthOpts{
			FromAccountID: "eth",
			Destination:   ethDestination,
			Amount:        decimal.RequireFromString("0.1"),
			GasPrice:      decimal.NewFromInt(20),
			GasLimit:      composer.DefaultEthGasLimit,
		}
	}

	tests := []struct {
		name  string
		apply func(*composer.ComposeEthOpts)
		err   error
	}{
		{"unknown account", func(o *composer.ComposeEthOpts) { o.FromAccountID = "unknown" }, domain.ErrAccountNotFound},
		{"wrong account", func(o *composer.ComposeEthOpts) { o.FromAccountID = "btc" }, domain.ErrInvalidArgument},
		{"invalid address", func(o *composer.ComposeEthOpts) { o.Destination = "0x1234" }, domain.ErrInvalidAddress},
		{"zero gas price", func(o *composer.ComposeEthOpts) { o.GasPrice = decimal.Zero }, domain.ErrInvalidArgument},
		{"zero gas limit", func(o *composer.ComposeEthOpts) { o.GasLimit = 0 }, domain.ErrInvalidArgument},
		{"invalid data", func(o *composer.ComposeEthOpts) { o.Data = "nothex" }, domain.ErrInvalidArgument},
		{"zero amount", func(o *composer.ComposeEthOpts) { o.Amount = decimal.Zero }, domain.ErrInvalidAmount},
		{"negative amount", func(o *composer.ComposeEthOpts) { o.Amount = decimal.NewFromInt(-1) }, domain.ErrInvalidAmount},
		{"amount plus fee exceeds balance", func(o *composer.ComposeEthOpts) { o.Amount = decimal.NewFromInt(1) }, domain.ErrInsufficientFunds},
		{"send max below fee", func(o *composer.ComposeEthOpts) {
			o.SendMax = true
			o.GasPrice = decimal.NewFromInt(1000000)
		}, domain.ErrInsufficientFunds},
	}

	for _, tt := range tests {
		opts := valid()
		tt.apply(&opts)
		_, err := svc.ComposeEthTransaction(opts)
		require.ErrorIs(t, err, tt.err, tt.name)
	}

	_, err := svc.ComposeEthTransaction(composer.ComposeEthOpts{
		FromAccountID: "eth",
		Destination:   ethDestination,
		Amount:        decimal.NewFromInt(2),
		GasPrice:      decimal.NewFromInt(20),
		GasLimit:      composer.DefaultEthGasLimit,
	})
	require.True(t, domain.IsType(err, domain.InsufficientFunds))
}

func TestComposeBtcTransaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		amount         string
		sendMax        bool
		expectedInputs int
		expectedAmount string
		expectedFee    string
		expectedChange string
		expectedVSize  int
	}{
		{
			name:           "single input with change",
			amount:         "0.005",
			expectedInputs: 1,
			expectedAmount: "0.005",
			expectedFee:    "0.0000141",
			expectedChange: "0.0009859",
			expectedVSize:  141,
		},
		{
			name:           "two inputs with change",
			amount:         "0.009",
			expectedInputs: 2,
			expectedAmount: "0.009",
			expectedFee:    "0.0000209",
			expectedChange: "0.0009791",
			expectedVSize:  209,
		},
		{
			name:           "dust change is left to miners",
			amount:         "0.005988",
			expectedInputs: 1,
			expectedAmount: "0.005988",
			expectedFee:    "0.000012",
			expectedChange: "0",
			expectedVSize:  110,
		},
		{
			name:           "send max",
			sendMax:        true,
			expectedInputs: 2,
			expectedAmount: "0.0099822",
			expectedFee:    "0.0000178",
			expectedChange: "0",
			expectedVSize:  178,
		},
	}

	for _, tt := range tests {
		svc, transactions := newTestService(t)
		transactions.On("ListUnspents", mock.Anything, "btc").Return(testUnspents(), nil)

		amount := decimal.Zero
		if len(tt.amount) > 0 {
			amount = decimal.RequireFromString(tt.amount)
		}
		tx, err := svc.ComposeBtcTransaction(ctx, composer.ComposeBtcOpts{
			FromAccountID: "btc",
			Destination:   btcDestination,
			Amount:        amount,
			FeeRate:       decimal.NewFromInt(10),
			SendMax:       tt.sendMax,
		})
		require.NoError(t, err, tt.name)
		require.Len(t, tx.Btc.Inputs, tt.expectedInputs, tt.name)
		require.Equal(t, tt.expectedAmount, tx.Amount.String(), tt.name)
		require.Equal(t, tt.expectedFee, tx.Fee.String(), tt.name)
		require.Equal(t, tt.expectedChange, tx.Btc.Change.String(), tt.name)
		require.Equal(t, tt.expectedVSize, tx.Btc.VSize, tt.name)
		require.Equal(t, "btc", tx.Btc.ChangeAccountID, tt.name)
		// inputs are fully spent by amount, fee and change
		spent := decimal.Zero
		for _, in := range tx.Btc.Inputs {
			spent = spent.Add(in.Value)
		}
		require.True(t, spent.Equal(tx.Debit().Add(tx.Btc.Change)), tt.name)
	}
}

func TestComposeBtcSendMaxWithPendingDebits(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		available      string
		expectedAmount string
		expectedFee    string
		expectedChange string
	}{
		{
			name:           "dust leftover",
			available:      "0.009998",
			expectedAmount: "0.0099802",
			expectedFee:    "0.0000178",
			expectedChange: "0",
		},
		{
			name:           "leftover returned as change",
			available:      "0.009",
			expectedAmount: "0.0089791",
			expectedFee:    "0.0000209",
			expectedChange: "0.001",
		},
	}

	for _, tt := range tests {
		svc, transactions := newTestServiceWithBtcBalance(t, tt.available)
		transactions.On("ListUnspents", mock.Anything, "btc").Return(testUnspents(), nil)

		tx, err := svc.ComposeBtcTransaction(ctx, composer.ComposeBtcOpts{
			FromAccountID: "btc",
			Destination:   btcDestination,
			FeeRate:       decimal.NewFromInt(10),
			SendMax:       true,
		})
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.expectedAmount, tx.Amount.String(), tt.name)
		require.Equal(t, tt.expectedFee, tx.Fee.String(), tt.name)
		require.Equal(t, tt.expectedChange, tx.Btc.Change.String(), tt.name)
		require.True(
			t, tx.Amount.Add(tx.Fee).Equal(decimal.RequireFromString(tt.available)),
			tt.name,
		)
	}
}

func TestFailingComposeBtcTransaction(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		opts      composer.ComposeBtcOpts
		available string
		err       error
	}{
		{
			name: "insufficient unspents",
			opts: composer.ComposeBtcOpts{
				FromAccountID: "btc", Destination: btcDestination,
				Amount: decimal.RequireFromString("0.00999"), FeeRate: decimal.NewFromInt(10),
			},
			err: domain.ErrInsufficientFunds,
		},
		{
			name: "pending debits reduce available balance",
			opts: composer.ComposeBtcOpts{
				FromAccountID: "btc", Destination: btcDestination,
				Amount: decimal.RequireFromString("0.005"), FeeRate: decimal.NewFromInt(10),
			},
			available: "0.005",
			err:       domain.ErrInsufficientFunds,
		},
		{
			name: "wrong network address",
			opts: composer.ComposeBtcOpts{
				FromAccountID: "btc", Destination: "2Mww8dCYPUpKHofjgcXcBCEGmniw9CoaiD2",
				Amount: decimal.RequireFromString("0.001"), FeeRate: decimal.NewFromInt(10),
			},
			err: domain.ErrInvalidAddress,
		},
		{
			name: "too precise amount",
			opts: composer.ComposeBtcOpts{
				FromAccountID: "btc", Destination: btcDestination,
				Amount: decimal.RequireFromString("0.000000001"), FeeRate: decimal.NewFromInt(10),
			},
			err: domain.ErrInvalidAmount,
		},
		{
			name: "zero fee rate",
			opts: composer.ComposeBtcOpts{
				FromAccountID: "btc", Destination: btcDestination,
				Amount: decimal.RequireFromString("0.001"),
			},
			err: domain.ErrInvalidArgument,
		},
		{
			name: "invalid change account",
			opts: composer.ComposeBtcOpts{
				FromAccountID: "btc", ChangeAccountID: "eth", Destination: btcDestination,
				Amount: decimal.RequireFromString("0.001"), FeeRate: decimal.NewFromInt(10),
			},
			err: domain.ErrInvalidArgument,
		},
	}

	for _, tt := range tests {
		svc, transactions := newTestServiceWithBtcBalance(t, tt.available)
		transactions.On("ListUnspents", mock.Anything, "btc").Return(testUnspents(), nil)

		_, err := svc.ComposeBtcTransaction(ctx, tt.opts)
		require.ErrorIs(t, err, tt.err, tt.name)
	}
}

func TestComposeFiatTransactions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	tx, err := svc.ComposeInternalFiatTransaction(composer.ComposeFiatOpts{
		FromAccountID: "gbp",
		ToAccountID:   "gbp2",
		Amount:        decimal.RequireFromString("10.5"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.TransactionTypeFiat, tx.Type)
	require.Equal(t, "gbp2", tx.ToAccountID)
	require.True(t, tx.Fee.IsZero())
	require.False(t, tx.RequiresSigning())

	tx, err = svc.ComposeNominatedTransaction(composer.ComposeNominatedOpts{
		FromAccountID: "gbp",
		SendMax:       true,
	})
	require.NoError(t, err)
	require.Equal(t, domain.TransactionTypeNominated, tx.Type)
	require.Equal(t, "100", tx.Amount.String())

	tx, err = svc.ComposeCustodyWithdrawTransaction(composer.ComposeCustodyOpts{
		FromAccountID: "custody-btc",
		Destination:   btcDestination,
		Amount:        decimal.RequireFromString("0.1"),
	})
	require.NoError(t, err)
	require.Equal(t, domain.TransactionTypeCrypto, tx.Type)
	require.False(t, tx.RequiresSigning())
}

func TestFailingComposeFiatTransactions(t *testing.T) {
	t.Parallel()

	svc, _ := newTestService(t)

	tests := []struct {
		name string
		opts composer.ComposeFiatOpts
		err  error
	}{
		{"same account", fiatOpts("gbp", "gbp", "1"), domain.ErrInvalidArgument},
		{"currency mismatch", fiatOpts("gbp", "eur", "1"), domain.ErrCurrencyMismatch},
		{"crypto account", fiatOpts("gbp", "eth", "1"), domain.ErrInvalidArgument},
		{"too precise", fiatOpts("gbp", "gbp2", "0.001"), domain.ErrInvalidAmount},
		{"insufficient funds", fiatOpts("gbp", "gbp2", "101"), domain.ErrInsufficientFunds},
	}
	for _, tt := range tests {
		_, err := svc.ComposeInternalFiatTransaction(tt.opts)
		require.ErrorIs(t, err, tt.err, tt.name)
	}

	_, err := svc.ComposeNominatedTransaction(composer.ComposeNominatedOpts{
		FromAccountID: "eur", Amount: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, domain.ErrNominatedAccountNotFound)

	_, err = svc.ComposeCustodyWithdrawTransaction(composer.ComposeCustodyOpts{
		FromAccountID: "btc", Destination: btcDestination, Amount: decimal.NewFromInt(1),
	})
	require.ErrorIs(t, err, domain.ErrInvalidArgument)
}

func fiatOpts(from, to, amount string) composer.ComposeFiatOpts {
	return composer.ComposeFiatOpts{
		FromAccountID: from,
		ToAccountID:   to,
		Amount:        decimal.RequireFromString(amount),
	}
}

func newTestService(t *testing.T) (*composer.Service, *mocks.TransactionService) {
	return newTestServiceWithBtcBalance(t, "")
}

func newTestServiceWithBtcBalance(
	t *testing.T, btcAvailable string,
) (*composer.Service, *mocks.TransactionService) {
	available := decimal.RequireFromString("0.01")
	if len(btcAvailable) > 0 {
		available = decimal.RequireFromString(btcAvailable)
	}

	reader := accountReader{
		nonce: 5,
		accounts: map[string]domain.Account{
			"eth": cryptoAccount(
				"eth", domain.CurrencyETH, domain.NetworkRopsten,
				domain.AccountTypeStandard, domain.CustodyTypeNonCustody,
				decimal.NewFromInt(1), ethDestination,
			),
			"btc": cryptoAccount(
				"btc", domain.CurrencyBTC, domain.NetworkMainnet,
				domain.AccountTypeSegwit, domain.CustodyTypeNonCustody,
				available, btcDestination,
			),
			"custody-btc": cryptoAccount(
				"custody-btc", domain.CurrencyBTC, domain.NetworkMainnet,
				domain.AccountTypeStandard, domain.CustodyTypeCustody,
				decimal.NewFromInt(1), "",
			),
			"gbp":  fiatAccount("gbp", domain.CurrencyGBP, true),
			"gbp2": fiatAccount("gbp2", domain.CurrencyGBP, false),
			"eur":  fiatAccount("eur", domain.CurrencyEUR, false),
		},
	}
	transactions := &mocks.TransactionService{}

	svc, err := composer.NewService(reader, transactions)
	require.NoError(t, err)
	return svc, transactions
}

func cryptoAccount(
	id string, currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType, custody domain.CustodyType,
	available decimal.Decimal, address string,
) domain.Account {
	return domain.Account{
		ID:               id,
		CurrencyType:     domain.CurrencyTypeCrypto,
		CurrencyCode:     currency,
		Network:          network,
		Type:             accountType,
		CustodyType:      custody,
		LedgerBalance:    available,
		AvailableBalance: available,
		CryptoProperties: &domain.CryptoProperties{Address: address},
	}
}

func fiatAccount(id string, currency domain.CurrencyCode, nominated bool) domain.Account {
	return domain.Account{
		ID:                  id,
		CurrencyType:        domain.CurrencyTypeFiat,
		CurrencyCode:        currency,
		Network:             domain.NetworkTestnet,
		Type:                domain.AccountTypeStandard,
		CustodyType:         domain.CustodyTypeCustody,
		LedgerBalance:       decimal.NewFromInt(100),
		AvailableBalance:    decimal.NewFromInt(100),
		HasNominatedAccount: nominated,
	}
}

func testUnspents() []domain.Unspent {
	return []domain.Unspent{
		{
			TxID:  "0b0a0f5ef7dc1ee33b9f42a0e19e4e8e8b8fc3b2bbf2e0f5fe0df24ba8bca2f4",
			Vout:  1,
			Value: decimal.RequireFromString("0.004"),
		},
		{
			TxID:  "9f96ade4b41d5433f4eda31e1738ec2b36f6e7d1420d94a6af99801a88f7f7ff",
			Vout:  0,
			Value: decimal.RequireFromString("0.006"),
		},
	}
}
