package domain

import (
	"strings"

	"github.com/zumo-network/zumokit-core/pkg/wallet"
)

// IsInitialized returns whether the Vault holds an encrypted mnemonic
func (v *Vault) IsInitialized() bool {
	return len(v.EncryptedMnemonic) > 0
}

// Unlock decrypts the mnemonic with the provided passphrase. The caller owns
// the returned plaintext and is responsible for discarding it.
func (v *Vault) Unlock(passphrase string) ([]string, error) {
	if !v.IsInitialized() {
		return nil, ErrWalletNotFound
	}
	if len(passphrase) <= 0 {
		return nil, ErrInvalidPassphrase
	}

	mnemonic, err := wallet.Decrypt(wallet.DecryptOpts{
		CypherText: v.EncryptedMnemonic,
		Passphrase: passphrase,
	})
	if err != nil {
		return nil, ErrInvalidPassphrase
	}
	return wallet.SplitMnemonic(mnemonic), nil
}

// ChangePassphrase re-encrypts the mnemonic with the new passphrase
func (v *Vault) ChangePassphrase(currentPassphrase, newPassphrase string) error {
	if len(newPassphrase) <= 0 {
		return ErrInvalidPassphrase.WithMessage("new passphrase must not be empty")
	}
	mnemonic, err := v.Unlock(currentPassphrase)
	if err != nil {
		return err
	}

	encryptedMnemonic, err := wallet.Encrypt(wallet.EncryptOpts{
		PlainText:  strings.Join(mnemonic, " "),
		Passphrase: newPassphrase,
		KeyCost:    v.KeyCost,
	})
	if err != nil {
		return err
	}

	v.EncryptedMnemonic = encryptedMnemonic
	return nil
}
