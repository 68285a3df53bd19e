package wallet

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon " +
	"abandon abandon abandon abandon abandon about"

func TestNewWallet(t *testing.T) {
	tests := []struct {
		name      string
		wordCount int
		expected  int
	}{
		{"default", 0, 12},
		{"15 words", 15, 15},
		{"18 words", 18, 18},
		{"21 words", 21, 21},
		{"24 words", 24, 24},
	}
	for _, tt := range tests {
		wallet, err := NewWallet(NewWalletOpts{WordCount: tt.wordCount})
		require.NoError(t, err, tt.name)

		mnemonic, err := wallet.Mnemonic()
		require.NoError(t, err, tt.name)
		assert.Len(t, mnemonic, tt.expected, tt.name)
		assert.True(t, IsMnemonicValid(mnemonic), tt.name)
	}
}

func TestFailingNewMnemonic(t *testing.T) {
	tests := []int{-1, 11, 13, 25, 128}
	for _, tt := range tests {
		_, err := NewMnemonic(NewMnemonicOpts{WordCount: tt})
		assert.Equal(t, ErrInvalidWordCount, err)
	}
}

func TestNewWalletFromMnemonic(t *testing.T) {
	wallet, err := NewWallet(NewWalletOpts{})
	require.NoError(t, err)

	mnemonic, _ := wallet.Mnemonic()
	otherWallet, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
	require.NoError(t, err)
	assert.Equal(t, wallet.seed, otherWallet.seed)
	assert.Equal(t, wallet.masterKey.String(), otherWallet.masterKey.String())
}

func TestFailingNewWalletFromMnemonic(t *testing.T) {
	tests := []struct {
		name string
		opts NewWalletFromMnemonicOpts
		err  error
	}{
		{
			name: "null mnemonic",
			opts: NewWalletFromMnemonicOpts{Mnemonic: nil},
			err:  ErrNullMnemonic,
		},
		{
			name: "bad checksum",
			opts: NewWalletFromMnemonicOpts{
				Mnemonic: strings.Split("legal winner thank year wave sausage worth useful legal winner thank yellow yellow", " "),
			},
			err: ErrInvalidMnemonic,
		},
		{
			name: "unknown word",
			opts: NewWalletFromMnemonicOpts{
				Mnemonic: strings.Split("abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon zumo", " "),
			},
			err: ErrInvalidMnemonic,
		},
	}
	for _, tt := range tests {
		_, err := NewWalletFromMnemonic(tt.opts)
		assert.Equal(t, tt.err, err, tt.name)
	}
}

func TestWipe(t *testing.T) {
	wallet := newTestWallet(t)
	seed := wallet.seed

	wallet.Wipe()

	require.True(t, wallet.IsWiped())
	for _, b := range seed {
		require.Zero(t, b)
	}
	_, err := wallet.Mnemonic()
	require.Equal(t, ErrWalletWiped, err)
	_, _, err = wallet.DeriveEthAddress(DeriveEthAddressOpts{})
	require.Equal(t, ErrWalletWiped, err)
}

func TestSplitMnemonic(t *testing.T) {
	words := SplitMnemonic("  abandon\tabandon \n about ")
	require.Equal(t, []string{"abandon", "abandon", "about"}, words)
}

func newTestWallet(t *testing.T) *Wallet {
	wallet, err := NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: SplitMnemonic(testMnemonic),
	})
	require.NoError(t, err)
	return wallet
}
