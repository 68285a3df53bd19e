package wallet

import (
	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/pkg/mathutil"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

// SignTransaction signs the composed transaction with the key of the
// account it spends from. The wallet must be unlocked.
func (s *Service) SignTransaction(
	tx *domain.ComposedTransaction, account domain.Account,
) (*hdwallet.SignedTransaction, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.session == nil {
		return nil, domain.ErrWalletLocked
	}
	if !account.IsNonCustodialCrypto() || account.ID != tx.AccountID {
		return nil, domain.ErrSigningFailed.WithMessage(
			"account %s cannot sign transaction", account.ID,
		)
	}

	privkey, _, err := s.session.DeriveSigningKeyPair(
		hdwallet.DeriveSigningKeyPairOpts{DerivationPath: account.Path()},
	)
	if err != nil {
		return nil, domain.ErrSigningFailed.Wrap(err)
	}

	var signed *hdwallet.SignedTransaction
	switch account.CurrencyCode {
	case domain.CurrencyETH:
		signed, err = signEthTransaction(tx, privkey)
	case domain.CurrencyBTC:
		signed, err = signBtcTransaction(tx, account, privkey)
	default:
		err = domain.ErrUnsupportedCurrency
	}
	if err != nil {
		return nil, domain.ErrSigningFailed.Wrap(err)
	}
	return signed, nil
}

func signEthTransaction(
	tx *domain.ComposedTransaction, privkey *btcec.PrivateKey,
) (*hdwallet.SignedTransaction, error) {
	if tx.Eth == nil {
		return nil, domain.ErrInvalidArgument.WithMessage("missing eth payload")
	}
	chainID, err := domain.EthChainID(tx.Network)
	if err != nil {
		return nil, err
	}
	return hdwallet.SignEthTransaction(hdwallet.SignEthTransactionOpts{
		PrivateKey: privkey,
		ChainID:    chainID,
		Nonce:      tx.Eth.Nonce,
		To:         tx.Destination,
		Value:      mathutil.EthToWei(tx.Amount),
		GasPrice:   mathutil.GweiToWei(tx.Eth.GasPrice),
		GasLimit:   tx.Eth.GasLimit,
		Data:       tx.Eth.Data,
	})
}

func signBtcTransaction(
	tx *domain.ComposedTransaction, account domain.Account, privkey *btcec.PrivateKey,
) (*hdwallet.SignedTransaction, error) {
	if tx.Btc == nil {
		return nil, domain.ErrInvalidArgument.WithMessage("missing btc payload")
	}
	params, err := domain.BtcNetworkParams(tx.Network)
	if err != nil {
		return nil, err
	}
	scriptType, err := BtcScriptType(account.Type)
	if err != nil {
		return nil, err
	}

	inputs := make([]hdwallet.BtcInput, 0, len(tx.Btc.Inputs))
	for _, in := range tx.Btc.Inputs {
		value, err := mathutil.ToSatoshis(in.Value)
		if err != nil {
			return nil, err
		}
		inputs = append(inputs, hdwallet.BtcInput{
			TxID: in.TxID, Vout: in.Vout, Value: value,
		})
	}

	amount, err := mathutil.ToSatoshis(tx.Amount)
	if err != nil {
		return nil, err
	}
	outputs := []hdwallet.BtcOutput{{Address: tx.Destination, Value: amount}}
	if tx.Btc.Change.IsPositive() {
		change, err := mathutil.ToSatoshis(tx.Btc.Change)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, hdwallet.BtcOutput{
			Address: tx.Btc.ChangeAddress, Value: change,
		})
	}

	return hdwallet.SignBtcTransaction(hdwallet.SignBtcTransactionOpts{
		PrivateKey: privkey,
		Network:    params,
		ScriptType: scriptType,
		Inputs:     inputs,
		Outputs:    outputs,
	})
}
