package wallet

import (
	"strings"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/ethereum/go-ethereum/common"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// DeriveBtcAddressOpts is the struct given to DeriveBtcAddress method
type DeriveBtcAddressOpts struct {
	Network    *chaincfg.Params
	ScriptType int
	Account    uint32
	Index      uint32
}

func (o DeriveBtcAddressOpts) validate() error {
	if o.Network == nil {
		return ErrNullNetwork
	}
	if _, ok := purposeByScriptType[o.ScriptType]; !ok {
		return ErrInvalidScriptType
	}
	return nil
}

var purposeByScriptType = map[int]uint32{
	P2PKH:       PurposeBIP44,
	P2SH_P2WPKH: PurposeBIP49,
	P2WPKH:      PurposeBIP84,
}

// DeriveBtcAddress derives the key at the BIP44/49/84 path matching the
// given script type and returns its address for the given network along
// with the derivation path
func (w *Wallet) DeriveBtcAddress(
	opts DeriveBtcAddressOpts,
) (string, DerivationPath, error) {
	if err := opts.validate(); err != nil {
		return "", nil, err
	}
	if err := w.validate(); err != nil {
		return "", nil, err
	}

	coinType := CoinTypeBitcoin
	if opts.Network.Net != chaincfg.MainNetParams.Net {
		coinType = CoinTypeBitcoinTestnet
	}
	path, err := NewAccountPath(
		purposeByScriptType[opts.ScriptType], coinType, opts.Account, 0, opts.Index,
	)
	if err != nil {
		return "", nil, err
	}

	_, pubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: path.String(),
	})
	if err != nil {
		return "", nil, err
	}

	addr, err := BtcAddressFromPubKey(pubkey, opts.ScriptType, opts.Network)
	if err != nil {
		return "", nil, err
	}
	return addr.EncodeAddress(), path, nil
}

// DeriveEthAddressOpts is the struct given to DeriveEthAddress method
type DeriveEthAddressOpts struct {
	Account uint32
	Index   uint32
}

// DeriveEthAddress derives the key at path m/44'/60'/account'/0/index and
// returns its EIP-55 checksummed address along with the derivation path
func (w *Wallet) DeriveEthAddress(
	opts DeriveEthAddressOpts,
) (string, DerivationPath, error) {
	if err := w.validate(); err != nil {
		return "", nil, err
	}

	path, err := NewAccountPath(
		PurposeBIP44, CoinTypeEthereum, opts.Account, 0, opts.Index,
	)
	if err != nil {
		return "", nil, err
	}

	_, pubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: path.String(),
	})
	if err != nil {
		return "", nil, err
	}

	addr, err := EthAddressFromPubKey(pubkey)
	if err != nil {
		return "", nil, err
	}
	return addr.Hex(), path, nil
}

// BtcAddressFromPubKey returns the address of the given type for the pubkey
func BtcAddressFromPubKey(
	pubkey *btcec.PublicKey, scriptType int, net *chaincfg.Params,
) (btcutil.Address, error) {
	pubkeyHash := btcutil.Hash160(pubkey.SerializeCompressed())

	switch scriptType {
	case P2PKH:
		return btcutil.NewAddressPubKeyHash(pubkeyHash, net)
	case P2WPKH:
		return btcutil.NewAddressWitnessPubKeyHash(pubkeyHash, net)
	case P2SH_P2WPKH:
		redeemScript, err := p2wpkhScript(pubkey, net)
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressScriptHash(redeemScript, net)
	default:
		return nil, ErrInvalidScriptType
	}
}

// EthAddressFromPubKey returns the Ethereum address of the pubkey
func EthAddressFromPubKey(pubkey *btcec.PublicKey) (common.Address, error) {
	ecdsaPubkey, err := ethcrypto.DecompressPubkey(pubkey.SerializeCompressed())
	if err != nil {
		return common.Address{}, err
	}
	return ethcrypto.PubkeyToAddress(*ecdsaPubkey), nil
}

// IsValidBtcAddress returns whether the address decodes correctly (base58
// checksum or bech32 checksum) and belongs to the given network
func IsValidBtcAddress(address string, net *chaincfg.Params) bool {
	if net == nil || len(address) <= 0 {
		return false
	}
	addr, err := btcutil.DecodeAddress(address, net)
	if err != nil {
		return false
	}
	return addr.IsForNet(net)
}

// IsValidEthAddress returns whether the address is a 20 byte hex string
// prefixed by 0x. Mixed case addresses must match their EIP-55 checksum.
func IsValidEthAddress(address string) bool {
	if !strings.HasPrefix(address, "0x") && !strings.HasPrefix(address, "0X") {
		return false
	}
	if !common.IsHexAddress(address) {
		return false
	}
	hexPart := address[2:]
	if hexPart == strings.ToLower(hexPart) || hexPart == strings.ToUpper(hexPart) {
		return true
	}
	return common.HexToAddress(address).Hex() == address
}

func p2wpkhScript(pubkey *btcec.PublicKey, net *chaincfg.Params) ([]byte, error) {
	addr, err := btcutil.NewAddressWitnessPubKeyHash(
		btcutil.Hash160(pubkey.SerializeCompressed()), net,
	)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(addr)
}

// ScriptTypeOfAddress returns the script type of the output paying to the
// given address. Taproot outputs are reported as P2WSH since they share the
// same script size.
func ScriptTypeOfAddress(address string, net *chaincfg.Params) (int, error) {
	addr, err := btcutil.DecodeAddress(address, net)
	if err != nil {
		return -1, ErrInvalidAddress
	}
	switch addr.(type) {
	case *btcutil.AddressPubKeyHash:
		return P2PKH, nil
	case *btcutil.AddressScriptHash:
		return P2SH_P2WPKH, nil
	case *btcutil.AddressWitnessPubKeyHash:
		return P2WPKH, nil
	case *btcutil.AddressWitnessScriptHash, *btcutil.AddressTaproot:
		return P2WSH, nil
	default:
		return -1, ErrInvalidScriptType
	}
}
