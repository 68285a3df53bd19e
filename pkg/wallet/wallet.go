package wallet

import (
	"errors"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

var (
	// ErrNullNetwork ...
	ErrNullNetwork = errors.New("network params are null")
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic is null")
	// ErrNullSeed ...
	ErrNullSeed = errors.New("seed is null")
	// ErrNullPassphrase ...
	ErrNullPassphrase = errors.New("passphrase must not be null")
	// ErrNullPlainText ...
	ErrNullPlainText = errors.New("text to encrypt must not be null")
	// ErrNullCypherText ...
	ErrNullCypherText = errors.New("cypher to decrypt must not be null")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullPrivateKey ...
	ErrNullPrivateKey = errors.New("private key must not be null")
	// ErrNullChainID ...
	ErrNullChainID = errors.New("chain id must not be null")

	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidWordCount ...
	ErrInvalidWordCount = errors.New(
		"mnemonic word count must be one of 12, 15, 18, 21, 24",
	)
	// ErrInvalidCypherText ...
	ErrInvalidCypherText = errors.New("cypher must be in base64 format")
	// ErrInvalidDerivationPath ...
	ErrInvalidDerivationPath = errors.New("invalid derivation path")
	// ErrInvalidScriptType ...
	ErrInvalidScriptType = errors.New(
		"script type must be one of P2PKH, P2SH_P2WPKH, P2WPKH",
	)
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address is not valid for network")
	// ErrInvalidTxID ...
	ErrInvalidTxID = errors.New("input txid must be a 32 byte hash in hex format")
	// ErrOutOfRangeDerivationPathAccount ...
	ErrOutOfRangeDerivationPathAccount = errors.New(
		"account index must be in hardened range",
	)

	// ErrEmptyInputs ...
	ErrEmptyInputs = errors.New("input list must not be empty")
	// ErrEmptyOutputs ...
	ErrEmptyOutputs = errors.New("output list must not be empty")

	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
	// ErrZeroInputAmount ...
	ErrZeroInputAmount = errors.New("input amount must not be zero")
	// ErrZeroOutputAmount ...
	ErrZeroOutputAmount = errors.New("output amount must not be zero")
	// ErrWalletWiped ...
	ErrWalletWiped = errors.New("wallet key material has been wiped")
)

// Wallet holds the mnemonic and the BIP32 master node derived from its seed.
// All addresses and signing keys for every supported chain are derived from
// the same master node.
type Wallet struct {
	mnemonic  []string
	seed      []byte
	masterKey *hdkeychain.ExtendedKey
}

// NewWalletOpts is the struct given to the NewWallet method
type NewWalletOpts struct {
	WordCount int
}

// NewWallet creates a new wallet with a random mnemonic of the given length
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	mnemonic, err := NewMnemonic(NewMnemonicOpts{WordCount: opts.WordCount})
	if err != nil {
		return nil, err
	}
	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{Mnemonic: mnemonic})
}

// NewWalletFromMnemonicOpts is the struct given to the NewWalletFromMnemonic method
type NewWalletFromMnemonicOpts struct {
	Mnemonic []string
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if !IsMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	return nil
}

// NewWalletFromMnemonic validates the given mnemonic and generates the seed
// and master key out of it. The mnemonic checksum is verified before any key
// material is computed.
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := generateSeedFromMnemonic(opts.Mnemonic)
	masterKey, err := hdkeychain.NewMaster(seed, &chaincfg.MainNetParams)
	if err != nil {
		return nil, err
	}

	mnemonic := make([]string, len(opts.Mnemonic))
	copy(mnemonic, opts.Mnemonic)

	return &Wallet{
		mnemonic:  mnemonic,
		seed:      seed,
		masterKey: masterKey,
	}, nil
}

func (w *Wallet) validate() error {
	if w.masterKey == nil || len(w.seed) <= 0 {
		return ErrWalletWiped
	}
	return nil
}

// Mnemonic is getter for the wallet mnemonic
func (w *Wallet) Mnemonic() ([]string, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	mnemonic := make([]string, len(w.mnemonic))
	copy(mnemonic, w.mnemonic)
	return mnemonic, nil
}

// Wipe zeroes the seed and drops every reference to key material. The wallet
// is unusable afterwards.
func (w *Wallet) Wipe() {
	for i := range w.seed {
		w.seed[i] = 0
	}
	for i := range w.mnemonic {
		w.mnemonic[i] = ""
	}
	w.seed = nil
	w.mnemonic = nil
	w.masterKey = nil
}

// IsWiped returns whether Wipe has been called on the wallet
func (w *Wallet) IsWiped() bool {
	return w.validate() != nil
}
