package domain

import (
	"strings"

	"github.com/zumo-network/zumokit-core/pkg/wallet"
)

// Vault holds the user mnemonic encrypted with the wallet passphrase. The
// plaintext mnemonic is never part of it.
type Vault struct {
	UserID            string
	EncryptedMnemonic string
	KeyCost           uint8
}

// NewVault encrypts the provided mnemonic with the passphrase and returns a
// new Vault for the user. The mnemonic is validated before being encrypted.
func NewVault(
	userID string, mnemonic []string, passphrase string, keyCost uint8,
) (*Vault, error) {
	if len(userID) <= 0 {
		return nil, ErrInvalidArgument.WithMessage("missing user id")
	}
	if len(passphrase) <= 0 {
		return nil, ErrInvalidPassphrase.WithMessage("passphrase must not be empty")
	}
	if !wallet.IsMnemonicValid(mnemonic) {
		return nil, ErrInvalidMnemonic
	}

	encryptedMnemonic, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  strings.Join(mnemonic, " "),
		Passphrase: passphrase,
		KeyCost:    keyCost,
	})
	if err != nil {
		return nil, err
	}

	return &Vault{
		UserID:            userID,
		EncryptedMnemonic: encryptedMnemonic,
		KeyCost:           keyCost,
	}, nil
}
