package wallet

import (
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

// defaultAccountIndex is the address index used for every account. Each
// account is bound to a single address.
const defaultAccountIndex = 0

var scriptTypeByAccountType = map[domain.AccountType]int{
	domain.AccountTypeStandard:      hdwallet.P2PKH,
	domain.AccountTypeCompatibility: hdwallet.P2SH_P2WPKH,
	domain.AccountTypeSegwit:        hdwallet.P2WPKH,
}

// BtcScriptType returns the script type of the addresses of a Bitcoin account
func BtcScriptType(accountType domain.AccountType) (int, error) {
	scriptType, ok := scriptTypeByAccountType[accountType]
	if !ok {
		return -1, domain.ErrInvalidArgument.WithMessage(
			"unknown account type %s", accountType,
		)
	}
	return scriptType, nil
}

// DeriveAccount derives the address and path of the non custodial account
// identified by currency, network and type
func DeriveAccount(
	w *hdwallet.Wallet,
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType,
) (ports.AccountRequest, error) {
	if !currency.IsCrypto() || !currency.SupportsNetwork(network) {
		return ports.AccountRequest{}, domain.ErrUnsupportedCurrency.WithMessage(
			"cannot derive %s account on %s", currency, network,
		)
	}

	var (
		address string
		path    hdwallet.DerivationPath
		err     error
	)
	switch currency {
	case domain.CurrencyBTC:
		var scriptType int
		if scriptType, err = BtcScriptType(accountType); err != nil {
			return ports.AccountRequest{}, err
		}
		params, _ := domain.BtcNetworkParams(network)
		address, path, err = w.DeriveBtcAddress(hdwallet.DeriveBtcAddressOpts{
			Network:    params,
			ScriptType: scriptType,
			Index:      defaultAccountIndex,
		})
	case domain.CurrencyETH:
		if accountType != domain.AccountTypeStandard {
			return ports.AccountRequest{}, domain.ErrInvalidArgument.WithMessage(
				"%s accounts must be of type %s", currency, domain.AccountTypeStandard,
			)
		}
		address, path, err = w.DeriveEthAddress(hdwallet.DeriveEthAddressOpts{
			Index: defaultAccountIndex,
		})
	}
	if err != nil {
		return ports.AccountRequest{}, err
	}

	return ports.AccountRequest{
		CurrencyCode: currency,
		Network:      network,
		Type:         accountType,
		Address:      address,
		Path:         path.String(),
	}, nil
}

// IsValidAddress returns whether address is a valid destination for the
// currency on the given network
func IsValidAddress(
	currency domain.CurrencyCode, address string, network domain.Network,
) bool {
	switch currency {
	case domain.CurrencyBTC:
		params, err := domain.BtcNetworkParams(network)
		if err != nil {
			return false
		}
		return hdwallet.IsValidBtcAddress(address, params)
	case domain.CurrencyETH:
		return hdwallet.IsValidEthAddress(address)
	default:
		return false
	}
}
