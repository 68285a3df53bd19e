package ledger_test

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/zumo-network/zumokit-core/internal/core/application/ledger"
	"github.com/zumo-network/zumokit-core/internal/core/application/state"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"github.com/zumo-network/zumokit-core/internal/core/ports/mocks"
)

var ctx = context.Background()

type mockDeriver struct {
	mock.Mock
}

func (m *mockDeriver) DeriveAccount(
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType,
) (ports.AccountRequest, error) {
	args := m.Called(currency, network, accountType)

	var res ports.AccountRequest
	if a := args.Get(0); a != nil {
		res = a.(ports.AccountRequest)
	}
	return res, args.Error(1)
}

func TestGetAccount(t *testing.T) {
	t.Parallel()

	store := state.NewStore()
	store.AddAccount(ethAccount(nil))
	svc := newTestService(t, store, &mocks.AccountService{}, &mockDeriver{})

	account, ok := svc.GetAccount(
		domain.CurrencyETH, domain.NetworkRopsten,
		domain.AccountTypeStandard, domain.CustodyTypeNonCustody,
	)
	require.True(t, ok)
	require.Equal(t, "eth", account.ID)

	_, ok = svc.GetAccount(
		domain.CurrencyETH, domain.NetworkRopsten,
		domain.AccountTypeStandard, domain.CustodyTypeCustody,
	)
	require.False(t, ok)

	_, err := svc.GetAccountByID("unknown")
	require.ErrorIs(t, err, domain.ErrAccountNotFound)
	require.Len(t, svc.Accounts(), 1)
}

func TestCreateCryptoAccount(t *testing.T) {
	t.Parallel()

	req := ports.AccountRequest{
		CurrencyCode: domain.CurrencyETH,
		Network:      domain.NetworkRopsten,
		Type:         domain.AccountTypeStandard,
		Address:      "0xaddress",
		Path:         "m/44'/60'/0'/0/0",
	}
	deriver := &mockDeriver{}
	deriver.On(
		"DeriveAccount",
		domain.CurrencyETH, domain.NetworkRopsten, domain.AccountTypeStandard,
	).Return(req, nil)
	backend := &mocks.AccountService{}
	backend.On("RegisterAccounts", mock.Anything, []ports.AccountRequest{req}).
		Return([]domain.Account{ethAccount(nil)}, nil).Once()

	store := state.NewStore()
	svc := newTestService(t, store, backend, deriver)

	account, err := svc.CreateAccount(
		ctx, domain.CurrencyETH, domain.NetworkRopsten, domain.AccountTypeStandard,
	)
	require.NoError(t, err)
	require.Equal(t, "eth", account.ID)

	// the existing account is returned without any remote call
	account, err = svc.CreateAccount(
		ctx, domain.CurrencyETH, domain.NetworkRopsten, domain.AccountTypeStandard,
	)
	require.NoError(t, err)
	require.Equal(t, "eth", account.ID)

	backend.AssertExpectations(t)
	deriver.AssertNumberOfCalls(t, "DeriveAccount", 1)
}

func TestCreateFiatAccount(t *testing.T) {
	t.Parallel()

	gbp := domain.Account{
		ID:           "gbp",
		CurrencyType: domain.CurrencyTypeFiat,
		CurrencyCode: domain.CurrencyGBP,
		Network:      domain.NetworkTestnet,
		Type:         domain.AccountTypeStandard,
		CustodyType:  domain.CustodyTypeCustody,
	}
	backend := &mocks.AccountService{}
	backend.On("CreateFiatAccount", mock.Anything, domain.CurrencyGBP, domain.NetworkTestnet).
		Return(gbp, nil).Once()

	store := state.NewStore()
	svc := newTestService(t, store, backend, &mockDeriver{})

	// fiat accounts can be opened by fiat customers only
	_, err := svc.CreateAccount(
		ctx, domain.CurrencyGBP, domain.NetworkTestnet, domain.AccountTypeStandard,
	)
	require.ErrorIs(t, err, domain.ErrNotFiatCustomer)
	backend.AssertNotCalled(t, "CreateFiatAccount", mock.Anything, mock.Anything, mock.Anything)

	store.AddFiatCustomer(domain.NetworkTestnet)
	account, err := svc.CreateAccount(
		ctx, domain.CurrencyGBP, domain.NetworkTestnet, domain.AccountTypeStandard,
	)
	require.NoError(t, err)
	require.Equal(t, gbp.ID, account.ID)

	_, ok := store.Account(gbp.ID)
	require.True(t, ok)

	_, err = svc.CreateAccount(
		ctx, domain.CurrencyGBP, domain.NetworkTestnet, domain.AccountTypeStandard,
	)
	require.NoError(t, err)
	backend.AssertExpectations(t)
}

func TestFailingCreateAccount(t *testing.T) {
	t.Parallel()

	deriver := &mockDeriver{}
	deriver.On("DeriveAccount", mock.Anything, mock.Anything, mock.Anything).
		Return(nil, domain.ErrWalletLocked)
	svc := newTestService(t, state.NewStore(), &mocks.AccountService{}, deriver)

	tests := []struct {
		name        string
		currency    domain.CurrencyCode
		network     domain.Network
		accountType domain.AccountType
		err         error
	}{
		{"unknown currency", domain.CurrencyCode("DOGE"), domain.NetworkMainnet, domain.AccountTypeStandard, domain.ErrUnsupportedCurrency},
		{"unsupported network", domain.CurrencyETH, domain.NetworkTestnet, domain.AccountTypeStandard, domain.ErrUnsupportedCurrency},
		{"invalid type", domain.CurrencyBTC, domain.NetworkMainnet, domain.AccountType("OTHER"), domain.ErrInvalidArgument},
		{"fiat segwit", domain.CurrencyGBP, domain.NetworkMainnet, domain.AccountTypeSegwit, domain.ErrInvalidArgument},
		{"wallet locked", domain.CurrencyBTC, domain.NetworkMainnet, domain.AccountTypeSegwit, domain.ErrWalletLocked},
	}
	for _, tt := range tests {
		_, err := svc.CreateAccount(ctx, tt.currency, tt.network, tt.accountType)
		require.ErrorIs(t, err, tt.err, tt.name)
	}
}

func TestMakeFiatCustomer(t *testing.T) {
	t.Parallel()

	data := domain.FiatCustomerData{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: "1990-02-01",
		Email:       "jane@example.com",
		Phone:       "+447700900000",
		Address: domain.Address{
			AddressLine1: "1 High Street",
			Country:      "GB",
			PostCode:     "SW1A 1AA",
			PostTown:     "London",
		},
	}
	backend := &mocks.AccountService{}
	backend.On("MakeFiatCustomer", mock.Anything, domain.NetworkTestnet, data).
		Return(nil).Once()

	store := state.NewStore()
	svc := newTestService(t, store, backend, &mockDeriver{})

	err := svc.MakeFiatCustomer(ctx, domain.NetworkRopsten, data)
	require.ErrorIs(t, err, domain.ErrUnsupportedCurrency)

	invalid := data
	invalid.Email = "jane"
	err = svc.MakeFiatCustomer(ctx, domain.NetworkTestnet, invalid)
	require.ErrorIs(t, err, domain.ErrInvalidArgument)

	require.False(t, svc.IsFiatCustomer(domain.NetworkTestnet))
	require.NoError(t, svc.MakeFiatCustomer(ctx, domain.NetworkTestnet, data))
	require.True(t, svc.IsFiatCustomer(domain.NetworkTestnet))

	// onboarding again does not hit the backend
	require.NoError(t, svc.MakeFiatCustomer(ctx, domain.NetworkTestnet, data))
	backend.AssertExpectations(t)
}

func TestFailingMakeFiatCustomer(t *testing.T) {
	t.Parallel()

	backend := &mocks.AccountService{}
	backend.On("MakeFiatCustomer", mock.Anything, mock.Anything, mock.Anything).
		Return(domain.ErrNetwork)

	store := state.NewStore()
	svc := newTestService(t, store, backend, &mockDeriver{})

	err := svc.MakeFiatCustomer(ctx, domain.NetworkMainnet, domain.FiatCustomerData{
		FirstName:   "Jane",
		LastName:    "Doe",
		DateOfBirth: "1990-02-01",
		Email:       "jane@example.com",
		Phone:       "+447700900000",
		Address: domain.Address{
			AddressLine1: "1 High Street", Country: "GB", PostCode: "SW1A 1AA", PostTown: "London",
		},
	})
	require.ErrorIs(t, err, domain.ErrNetwork)
	require.False(t, svc.IsFiatCustomer(domain.NetworkMainnet))
}

func TestGetNominatedAccountFiatProperties(t *testing.T) {
	t.Parallel()

	nominated := domain.FiatProperties{
		AccountNumber: "12345678", SortCode: "040004", CustomerName: "Jane Doe",
	}
	backend := &mocks.AccountService{}
	backend.On("GetNominatedAccount", mock.Anything, "gbp").Return(nominated, nil)

	store := state.NewStore()
	store.AddAccount(domain.Account{
		ID:                  "gbp",
		CurrencyType:        domain.CurrencyTypeFiat,
		CurrencyCode:        domain.CurrencyGBP,
		HasNominatedAccount: true,
	})
	store.AddAccount(domain.Account{
		ID:           "eur",
		CurrencyType: domain.CurrencyTypeFiat,
		CurrencyCode: domain.CurrencyEUR,
	})
	svc := newTestService(t, store, backend, &mockDeriver{})

	props, err := svc.GetNominatedAccountFiatProperties(ctx, "gbp")
	require.NoError(t, err)
	require.Equal(t, nominated, props)

	_, err = svc.GetNominatedAccountFiatProperties(ctx, "eur")
	require.ErrorIs(t, err, domain.ErrNominatedAccountNotFound)
}

func TestNonces(t *testing.T) {
	t.Parallel()

	nonce := uint64(5)
	store := state.NewStore()
	store.AddAccount(ethAccount(&nonce))
	svc := newTestService(t, store, &mocks.AccountService{}, &mockDeriver{})

	next, err := svc.NextNonce("eth")
	require.NoError(t, err)
	require.Equal(t, uint64(5), next)

	svc.ReserveNonce("eth", 5)
	next, _ = svc.NextNonce("eth")
	require.Equal(t, uint64(6), next)

	// reserving an older nonce doesn't move backwards
	svc.ReserveNonce("eth", 2)
	next, _ = svc.NextNonce("eth")
	require.Equal(t, uint64(6), next)

	// a snapshot reporting a greater nonce wins
	updated := ethAccount(nil)
	greater := uint64(9)
	updated.CryptoProperties.Nonce = &greater
	store.ApplySnapshot(domain.AccountDataSnapshot{Version: 1, Account: updated})
	next, _ = svc.NextNonce("eth")
	require.Equal(t, uint64(9), next)
}

func newTestService(
	t *testing.T, store *state.Store, backend ports.AccountService,
	deriver ledger.AccountDeriver,
) *ledger.Service {
	svc, err := ledger.NewService(store, backend, deriver)
	require.NoError(t, err)
	return svc
}

func ethAccount(nonce *uint64) domain.Account {
	return domain.Account{
		ID:            "eth",
		CurrencyType:  domain.CurrencyTypeCrypto,
		CurrencyCode:  domain.CurrencyETH,
		Network:       domain.NetworkRopsten,
		Type:          domain.AccountTypeStandard,
		CustodyType:   domain.CustodyTypeNonCustody,
		LedgerBalance: decimal.RequireFromString("1"),
		CryptoProperties: &domain.CryptoProperties{
			Address: "0xaddress",
			Path:    "m/44'/60'/0'/0/0",
			Nonce:   nonce,
		},
	}
}
