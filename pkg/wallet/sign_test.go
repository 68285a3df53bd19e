package wallet

import (
	"bytes"
	"encoding/hex"
	"math/big"
	"strings"
	"testing"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/stretchr/testify/require"
)

const testTxID = "4a5e1e4baab89f3a32518a88c31bc87f618f76673e2cc77ab2127b7afdeda33b"

func TestSignBtcTransaction(t *testing.T) {
	t.Parallel()

	wallet := newTestWallet(t)
	net := &chaincfg.TestNet3Params

	tests := []struct {
		name       string
		scriptType int
	}{
		{"p2pkh", P2PKH},
		{"p2sh-p2wpkh", P2SH_P2WPKH},
		{"p2wpkh", P2WPKH},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			addr, path, err := wallet.DeriveBtcAddress(DeriveBtcAddressOpts{
				Network:    net,
				ScriptType: tt.scriptType,
			})
			require.NoError(t, err)
			prvkey, _, err := wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
				DerivationPath: path.String(),
			})
			require.NoError(t, err)

			inputs := []BtcInput{
				{TxID: testTxID, Vout: 0, Value: 60000},
				{TxID: testTxID, Vout: 1, Value: 40000},
			}
			signed, err := SignBtcTransaction(SignBtcTransactionOpts{
				PrivateKey: prvkey,
				Network:    net,
				ScriptType: tt.scriptType,
				Inputs:     inputs,
				Outputs: []BtcOutput{
					{Address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", Value: 90000},
					{Address: addr, Value: 9000},
				},
			})
			require.NoError(t, err)
			require.NotEmpty(t, signed.TxHash)

			rawTx, err := hex.DecodeString(signed.TxHex)
			require.NoError(t, err)
			tx := wire.NewMsgTx(wire.TxVersion)
			require.NoError(t, tx.Deserialize(bytes.NewReader(rawTx)))
			require.Len(t, tx.TxIn, 2)
			require.Len(t, tx.TxOut, 2)
			require.Equal(t, signed.TxHash, tx.TxHash().String())

			decodedAddr, err := btcutil.DecodeAddress(addr, net)
			require.NoError(t, err)
			prevScript, err := txscript.PayToAddrScript(decodedAddr)
			require.NoError(t, err)

			fetcher := txscript.NewMultiPrevOutFetcher(nil)
			for i, in := range inputs {
				fetcher.AddPrevOut(
					tx.TxIn[i].PreviousOutPoint, wire.NewTxOut(in.Value, prevScript),
				)
			}
			sigHashes := txscript.NewTxSigHashes(tx, fetcher)
			for i, in := range inputs {
				engine, err := txscript.NewEngine(
					prevScript, tx, i, txscript.StandardVerifyFlags, nil,
					sigHashes, in.Value, fetcher,
				)
				require.NoError(t, err)
				require.NoError(t, engine.Execute())
			}
		})
	}
}

func TestFailingSignBtcTransaction(t *testing.T) {
	t.Parallel()

	wallet := newTestWallet(t)
	prvkey, _, err := wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: "m/84'/1'/0'/0/0",
	})
	require.NoError(t, err)

	validIns := []BtcInput{{TxID: testTxID, Value: 1000}}
	validOuts := []BtcOutput{
		{Address: "tb1qw508d6qejxtdg4y5r3zarvary0c5xw7kxpjzsx", Value: 500},
	}

	tests := []struct {
		name string
		opts SignBtcTransactionOpts
		err  error
	}{
		{
			name: "missing key",
			opts: SignBtcTransactionOpts{Network: &chaincfg.TestNet3Params, ScriptType: P2WPKH, Inputs: validIns, Outputs: validOuts},
			err:  ErrNullPrivateKey,
		},
		{
			name: "no inputs",
			opts: SignBtcTransactionOpts{PrivateKey: prvkey, Network: &chaincfg.TestNet3Params, ScriptType: P2WPKH, Outputs: validOuts},
			err:  ErrEmptyInputs,
		},
		{
			name: "no outputs",
			opts: SignBtcTransactionOpts{PrivateKey: prvkey, Network: &chaincfg.TestNet3Params, ScriptType: P2WPKH, Inputs: validIns},
			err:  ErrEmptyOutputs,
		},
		{
			name: "bad txid",
			opts: SignBtcTransactionOpts{PrivateKey: prvkey, Network: &chaincfg.TestNet3Params, ScriptType: P2WPKH, Inputs: []BtcInput{{TxID: "zz", Value: 1}}, Outputs: validOuts},
			err:  ErrInvalidTxID,
		},
		{
			name: "wrong network output",
			opts: SignBtcTransactionOpts{PrivateKey: prvkey, Network: &chaincfg.TestNet3Params, ScriptType: P2WPKH, Inputs: validIns, Outputs: []BtcOutput{{Address: "bc1qcr8te4kr609gcawutmrza0j4xv80jy8z306fyu", Value: 1}}},
			err:  ErrInvalidAddress,
		},
		{
			name: "zero output",
			opts: SignBtcTransactionOpts{PrivateKey: prvkey, Network: &chaincfg.TestNet3Params, ScriptType: P2WPKH, Inputs: validIns, Outputs: []BtcOutput{{Address: validOuts[0].Address}}},
			err:  ErrZeroOutputAmount,
		},
	}
	for _, tt := range tests {
		_, err := SignBtcTransaction(tt.opts)
		require.Equal(t, tt.err, err, tt.name)
	}
}

func TestSignEthTransaction(t *testing.T) {
	t.Parallel()

	wallet := newTestWallet(t)
	addr, path, err := wallet.DeriveEthAddress(DeriveEthAddressOpts{})
	require.NoError(t, err)
	prvkey, _, err := wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: path.String(),
	})
	require.NoError(t, err)

	chainID := big.NewInt(5)
	signed, err := SignEthTransaction(SignEthTransactionOpts{
		PrivateKey: prvkey,
		ChainID:    chainID,
		Nonce:      7,
		To:         "0x9858effd232b4033e47d90003d41ec34ecaeda94",
		Value:      big.NewInt(10000000000000000),
		GasPrice:   big.NewInt(20000000000),
		GasLimit:   21000,
	})
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(signed.TxHex, "0x"))

	raw, err := hexutil.Decode(signed.TxHex)
	require.NoError(t, err)
	tx := new(types.Transaction)
	require.NoError(t, tx.UnmarshalBinary(raw))

	require.Equal(t, uint64(7), tx.Nonce())
	require.Equal(t, uint64(21000), tx.Gas())
	require.Equal(t, signed.TxHash, tx.Hash().Hex())

	sender, err := types.Sender(types.NewEIP155Signer(chainID), tx)
	require.NoError(t, err)
	require.Equal(t, addr, sender.Hex())
}

func TestFailingSignEthTransaction(t *testing.T) {
	t.Parallel()

	wallet := newTestWallet(t)
	prvkey, _, err := wallet.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: "m/44'/60'/0'/0/0",
	})
	require.NoError(t, err)

	tests := []struct {
		name string
		opts SignEthTransactionOpts
		err  error
	}{
		{"missing key", SignEthTransactionOpts{ChainID: big.NewInt(1), To: "0x9858effd232b4033e47d90003d41ec34ecaeda94"}, ErrNullPrivateKey},
		{"missing chain id", SignEthTransactionOpts{PrivateKey: prvkey, To: "0x9858effd232b4033e47d90003d41ec34ecaeda94"}, ErrNullChainID},
		{"bad destination", SignEthTransactionOpts{PrivateKey: prvkey, ChainID: big.NewInt(1), To: "0x1234"}, ErrInvalidAddress},
	}
	for _, tt := range tests {
		_, err := SignEthTransaction(tt.opts)
		require.Equal(t, tt.err, err, tt.name)
	}
}
