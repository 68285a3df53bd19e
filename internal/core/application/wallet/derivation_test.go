package wallet_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/zumo-network/zumokit-core/internal/core/application/wallet"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

func TestDeriveAccount(t *testing.T) {
	t.Parallel()

	w, err := hdwallet.NewWalletFromMnemonic(hdwallet.NewWalletFromMnemonicOpts{
		Mnemonic: testMnemonic,
	})
	require.NoError(t, err)

	tests := []struct {
		name            string
		currency        domain.CurrencyCode
		network         domain.Network
		accountType     domain.AccountType
		expectedAddress string
		expectedPath    string
	}{
		{
			name:            "btc standard",
			currency:        domain.CurrencyBTC,
			network:         domain.NetworkMainnet,
			accountType:     domain.AccountTypeStandard,
			expectedAddress: "1LqBGSKuX5yYUonjxT5qGfpUsXKYYWeabA",
			expectedPath:    "m/44'/0'/0'/0/0",
		},
		{
			name:            "btc compatibility testnet",
			currency:        domain.CurrencyBTC,
			network:         domain.NetworkTestnet,
			accountType:     domain.AccountTypeCompatibility,
			expectedAddress: "2Mww8dCYPUpKHofjgcXcBCEGmniw9CoaiD2",
			expectedPath:    "m/49'/1'/0'/0/0",
		},
		{
			name:            "btc segwit",
			currency:        domain.CurrencyBTC,
			network:         domain.NetworkMainnet,
			accountType:     domain.AccountTypeSegwit,
			expectedAddress: "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu",
			expectedPath:    "m/84'/0'/0'/0/0",
		},
		{
			name:            "eth",
			currency:        domain.CurrencyETH,
			network:         domain.NetworkRopsten,
			accountType:     domain.AccountTypeStandard,
			expectedAddress: testEthAddress,
			expectedPath:    "m/44'/60'/0'/0/0",
		},
	}

	for _, tt := range tests {
		req, err := wallet.DeriveAccount(w, tt.currency, tt.network, tt.accountType)
		require.NoError(t, err, tt.name)
		require.Equal(t, tt.expectedAddress, req.Address, tt.name)
		require.Equal(t, tt.expectedPath, req.Path, tt.name)
		require.True(t, wallet.IsValidAddress(tt.currency, req.Address, tt.network), tt.name)
	}
}

func TestFailingDeriveAccount(t *testing.T) {
	t.Parallel()

	w, err := hdwallet.NewWalletFromMnemonic(hdwallet.NewWalletFromMnemonicOpts{
		Mnemonic: testMnemonic,
	})
	require.NoError(t, err)

	tests := []struct {
		name        string
		currency    domain.CurrencyCode
		network     domain.Network
		accountType domain.AccountType
		err         error
	}{
		{"fiat currency", domain.CurrencyGBP, domain.NetworkMainnet, domain.AccountTypeStandard, domain.ErrUnsupportedCurrency},
		{"unsupported network", domain.CurrencyBTC, domain.NetworkRopsten, domain.AccountTypeSegwit, domain.ErrUnsupportedCurrency},
		{"eth segwit", domain.CurrencyETH, domain.NetworkMainnet, domain.AccountTypeSegwit, domain.ErrInvalidArgument},
	}

	for _, tt := range tests {
		_, err := wallet.DeriveAccount(w, tt.currency, tt.network, tt.accountType)
		require.ErrorIs(t, err, tt.err, tt.name)
	}
}

func TestIsValidAddress(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		currency domain.CurrencyCode
		address  string
		network  domain.Network
		expected bool
	}{
		{"btc mainnet", domain.CurrencyBTC, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", domain.NetworkMainnet, true},
		{"btc wrong network", domain.CurrencyBTC, "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", domain.NetworkTestnet, false},
		{"eth checksummed", domain.CurrencyETH, testEthAddress, domain.NetworkMainnet, true},
		{"eth bad checksum", domain.CurrencyETH, "0x9858efFD232B4033E47d90003D41EC34EcaEda94", domain.NetworkMainnet, false},
		{"fiat", domain.CurrencyGBP, testEthAddress, domain.NetworkMainnet, false},
	}

	for _, tt := range tests {
		require.Equal(
			t, tt.expected, wallet.IsValidAddress(tt.currency, tt.address, tt.network),
			tt.name,
		)
	}
}
