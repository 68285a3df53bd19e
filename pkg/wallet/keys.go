package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// ExtendedKeyOpts is the struct given to ExtendedPublicKey method
type ExtendedKeyOpts struct {
	Purpose  uint32
	CoinType uint32
	Account  uint32
}

func (o ExtendedKeyOpts) validate() error {
	if o.Account > MaxHardenedValue {
		return ErrOutOfRangeDerivationPathAccount
	}
	return nil
}

// ExtendedPublicKey returns the extended public key in base58 format of the
// account node m/purpose'/coinType'/account'
func (w *Wallet) ExtendedPublicKey(opts ExtendedKeyOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	path := DerivationPath{
		hdkeychain.HardenedKeyStart + opts.Purpose,
		hdkeychain.HardenedKeyStart + opts.CoinType,
		hdkeychain.HardenedKeyStart + opts.Account,
	}
	node, err := w.deriveNode(path)
	if err != nil {
		return "", err
	}

	xpub, err := node.Neuter()
	if err != nil {
		return "", err
	}
	return xpub.String(), nil
}

// DeriveSigningKeyPairOpts is the struct given to DeriveSigningKeyPair method
type DeriveSigningKeyPairOpts struct {
	DerivationPath string
}

func (o DeriveSigningKeyPairOpts) validate() error {
	_, err := ParseDerivationPath(o.DerivationPath)
	return err
}

// DeriveSigningKeyPair derives the key pair of the provided derivation path
func (w *Wallet) DeriveSigningKeyPair(opts DeriveSigningKeyPairOpts) (
	*btcec.PrivateKey,
	*btcec.PublicKey,
	error,
) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if err := w.validate(); err != nil {
		return nil, nil, err
	}

	derivationPath, _ := ParseDerivationPath(opts.DerivationPath)
	hdNode, err := w.deriveNode(derivationPath)
	if err != nil {
		return nil, nil, err
	}

	privateKey, err := hdNode.ECPrivKey()
	if err != nil {
		return nil, nil, err
	}
	publicKey, err := hdNode.ECPubKey()
	if err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

func (w *Wallet) deriveNode(path DerivationPath) (*hdkeychain.ExtendedKey, error) {
	hdNode := w.masterKey
	for _, step := range path {
		var err error
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			return nil, err
		}
	}
	return hdNode, nil
}
