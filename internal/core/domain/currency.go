package domain

import (
	"math/big"

	"github.com/btcsuite/btcd/chaincfg"
)

type CurrencyCode string

const (
	CurrencyBTC CurrencyCode = "BTC"
	CurrencyETH CurrencyCode = "ETH"
	CurrencyUSD CurrencyCode = "USD"
	CurrencyGBP CurrencyCode = "GBP"
	CurrencyEUR CurrencyCode = "EUR"
)

type CurrencyType string

const (
	CurrencyTypeCrypto CurrencyType = "CRYPTO"
	CurrencyTypeFiat   CurrencyType = "FIAT"
)

type Network string

const (
	NetworkMainnet Network = "MAINNET"
	NetworkTestnet Network = "TESTNET"
	NetworkRinkeby Network = "RINKEBY"
	NetworkRopsten Network = "ROPSTEN"
	NetworkGoerli  Network = "GOERLI"
)

type AccountType string

const (
	AccountTypeStandard      AccountType = "STANDARD"
	AccountTypeCompatibility AccountType = "COMPATIBILITY"
	AccountTypeSegwit        AccountType = "SEGWIT"
)

type CustodyType string

const (
	CustodyTypeCustody    CustodyType = "CUSTODY"
	CustodyTypeNonCustody CustodyType = "NON_CUSTODY"
)

var (
	precisionByCurrency = map[CurrencyCode]int32{
		CurrencyBTC: 8,
		CurrencyETH: 18,
		CurrencyUSD: 2,
		CurrencyGBP: 2,
		CurrencyEUR: 2,
	}
	networksByCurrency = map[CurrencyCode][]Network{
		CurrencyBTC: {NetworkMainnet, NetworkTestnet},
		CurrencyETH: {NetworkMainnet, NetworkRopsten, NetworkRinkeby, NetworkGoerli},
		CurrencyUSD: {NetworkMainnet, NetworkTestnet},
		CurrencyGBP: {NetworkMainnet, NetworkTestnet},
		CurrencyEUR: {NetworkMainnet, NetworkTestnet},
	}
	ethChainIDByNetwork = map[Network]int64{
		NetworkMainnet: 1,
		NetworkRopsten: 3,
		NetworkRinkeby: 4,
		NetworkGoerli:  5,
	}
)

// IsValid returns whether the currency is supported
func (c CurrencyCode) IsValid() bool {
	_, ok := precisionByCurrency[c]
	return ok
}

// Type returns whether the currency is crypto or fiat
func (c CurrencyCode) Type() CurrencyType {
	if c == CurrencyBTC || c == CurrencyETH {
		return CurrencyTypeCrypto
	}
	return CurrencyTypeFiat
}

// IsCrypto ...
func (c CurrencyCode) IsCrypto() bool {
	return c.Type() == CurrencyTypeCrypto
}

// Precision returns the number of decimals of the currency minor unit
func (c CurrencyCode) Precision() int32 {
	return precisionByCurrency[c]
}

// SupportsNetwork returns whether the network is valid for the currency
func (c CurrencyCode) SupportsNetwork(network Network) bool {
	for _, n := range networksByCurrency[c] {
		if n == network {
			return true
		}
	}
	return false
}

// IsValid ...
func (t AccountType) IsValid() bool {
	switch t {
	case AccountTypeStandard, AccountTypeCompatibility, AccountTypeSegwit:
		return true
	}
	return false
}

// IsValid ...
func (c CustodyType) IsValid() bool {
	return c == CustodyTypeCustody || c == CustodyTypeNonCustody
}

// BtcNetworkParams returns the chain params of the Bitcoin network
func BtcNetworkParams(network Network) (*chaincfg.Params, error) {
	switch network {
	case NetworkMainnet:
		return &chaincfg.MainNetParams, nil
	case NetworkTestnet:
		return &chaincfg.TestNet3Params, nil
	default:
		return nil, ErrUnsupportedCurrency.WithMessage(
			"network %s not supported for %s", network, CurrencyBTC,
		)
	}
}

// EthChainID returns the EIP-155 chain id of the Ethereum network
func EthChainID(network Network) (*big.Int, error) {
	id, ok := ethChainIDByNetwork[network]
	if !ok {
		return nil, ErrUnsupportedCurrency.WithMessage(
			"network %s not supported for %s", network, CurrencyETH,
		)
	}
	return big.NewInt(id), nil
}
