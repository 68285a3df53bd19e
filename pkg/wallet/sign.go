package wallet

import (
	"bytes"
	"encoding/hex"
	"math/big"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// SignedTransaction is the result of a signing operation
type SignedTransaction struct {
	TxHex  string
	TxHash string
}

// BtcInput is an unspent output owned by the signing key
type BtcInput struct {
	TxID  string
	Vout  uint32
	Value int64
}

// BtcOutput is a transaction output paying Value satoshis to Address
type BtcOutput struct {
	Address string
	Value   int64
}

// SignBtcTransactionOpts is the struct given to SignBtcTransaction method
type SignBtcTransactionOpts struct {
	PrivateKey *btcec.PrivateKey
	Network    *chaincfg.Params
	ScriptType int
	Inputs     []BtcInput
	Outputs    []BtcOutput
}

func (o SignBtcTransactionOpts) validate() error {
	if o.PrivateKey == nil {
		return ErrNullPrivateKey
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	if _, ok := purposeByScriptType[o.ScriptType]; !ok {
		return ErrInvalidScriptType
	}
	if len(o.Inputs) <= 0 {
		return ErrEmptyInputs
	}
	if len(o.Outputs) <= 0 {
		return ErrEmptyOutputs
	}
	for _, in := range o.Inputs {
		if in.Value <= 0 {
			return ErrZeroInputAmount
		}
		if _, err := chainhash.NewHashFromStr(in.TxID); err != nil {
			return ErrInvalidTxID
		}
	}
	for _, out := range o.Outputs {
		if out.Value <= 0 {
			return ErrZeroOutputAmount
		}
		if !IsValidBtcAddress(out.Address, o.Network) {
			return ErrInvalidAddress
		}
	}
	return nil
}

// SignBtcTransaction builds a transaction spending all the given inputs,
// all locked by the script of the given type for the private key, to the
// given outputs and signs every input with SIGHASH_ALL
func SignBtcTransaction(opts SignBtcTransactionOpts) (*SignedTransaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	pubkey := opts.PrivateKey.PubKey()
	addr, err := BtcAddressFromPubKey(pubkey, opts.ScriptType, opts.Network)
	if err != nil {
		return nil, err
	}
	prevScript, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}

	tx := wire.NewMsgTx(wire.TxVersion)
	prevOutFetcher := txscript.NewMultiPrevOutFetcher(nil)
	for _, in := range opts.Inputs {
		hash, _ := chainhash.NewHashFromStr(in.TxID)
		outpoint := wire.NewOutPoint(hash, in.Vout)
		tx.AddTxIn(wire.NewTxIn(outpoint, nil, nil))
		prevOutFetcher.AddPrevOut(*outpoint, wire.NewTxOut(in.Value, prevScript))
	}
	for _, out := range opts.Outputs {
		outAddr, _ := btcutil.DecodeAddress(out.Address, opts.Network)
		script, err := txscript.PayToAddrScript(outAddr)
		if err != nil {
			return nil, err
		}
		tx.AddTxOut(wire.NewTxOut(out.Value, script))
	}

	sigHashes := txscript.NewTxSigHashes(tx, prevOutFetcher)
	for i, in := range opts.Inputs {
		if err := signBtcInput(
			tx, sigHashes, i, in.Value, prevScript, opts, pubkey,
		); err != nil {
			return nil, err
		}
	}

	var buf bytes.Buffer
	if err := tx.Serialize(&buf); err != nil {
		return nil, err
	}
	return &SignedTransaction{
		TxHex:  hex.EncodeToString(buf.Bytes()),
		TxHash: tx.TxHash().String(),
	}, nil
}

func signBtcInput(
	tx *wire.MsgTx, sigHashes *txscript.TxSigHashes, index int, value int64,
	prevScript []byte, opts SignBtcTransactionOpts, pubkey *btcec.PublicKey,
) error {
	switch opts.ScriptType {
	case P2PKH:
		sigScript, err := txscript.SignatureScript(
			tx, index, prevScript, txscript.SigHashAll, opts.PrivateKey, true,
		)
		if err != nil {
			return err
		}
		tx.TxIn[index].SignatureScript = sigScript
	case P2WPKH:
		witness, err := txscript.WitnessSignature(
			tx, sigHashes, index, value, prevScript,
			txscript.SigHashAll, opts.PrivateKey, true,
		)
		if err != nil {
			return err
		}
		tx.TxIn[index].Witness = witness
	case P2SH_P2WPKH:
		redeemScript, err := p2wpkhScript(pubkey, opts.Network)
		if err != nil {
			return err
		}
		witness, err := txscript.WitnessSignature(
			tx, sigHashes, index, value, redeemScript,
			txscript.SigHashAll, opts.PrivateKey, true,
		)
		if err != nil {
			return err
		}
		sigScript, err := txscript.NewScriptBuilder().
			AddData(redeemScript).Script()
		if err != nil {
			return err
		}
		tx.TxIn[index].Witness = witness
		tx.TxIn[index].SignatureScript = sigScript
	}
	return nil
}

// SignEthTransactionOpts is the struct given to SignEthTransaction method.
// Value and GasPrice are expressed in wei.
type SignEthTransactionOpts struct {
	PrivateKey *btcec.PrivateKey
	ChainID    *big.Int
	Nonce      uint64
	To         string
	Value      *big.Int
	GasPrice   *big.Int
	GasLimit   uint64
	Data       []byte
}

func (o SignEthTransactionOpts) validate() error {
	if o.PrivateKey == nil {
		return ErrNullPrivateKey
	}
	if o.ChainID == nil || o.ChainID.Sign() <= 0 {
		return ErrNullChainID
	}
	if !IsValidEthAddress(o.To) {
		return ErrInvalidAddress
	}
	return nil
}

// SignEthTransaction builds and signs a legacy EIP-155 transaction
func SignEthTransaction(opts SignEthTransactionOpts) (*SignedTransaction, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	key, err := ethcrypto.ToECDSA(opts.PrivateKey.Serialize())
	if err != nil {
		return nil, err
	}

	value := opts.Value
	if value == nil {
		value = big.NewInt(0)
	}
	gasPrice := opts.GasPrice
	if gasPrice == nil {
		gasPrice = big.NewInt(0)
	}
	to := common.HexToAddress(opts.To)

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    opts.Nonce,
		GasPrice: gasPrice,
		Gas:      opts.GasLimit,
		To:       &to,
		Value:    value,
		Data:     opts.Data,
	})
	signedTx, err := types.SignTx(tx, types.NewEIP155Signer(opts.ChainID), key)
	if err != nil {
		return nil, err
	}
	raw, err := signedTx.MarshalBinary()
	if err != nil {
		return nil, err
	}

	return &SignedTransaction{
		TxHex:  hexutil.Encode(raw),
		TxHash: signedTx.Hash().Hex(),
	}, nil
}
