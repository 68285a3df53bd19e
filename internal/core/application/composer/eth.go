package composer

import (
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/shopspring/decimal"
	"github.com/zumo-network/zumokit-core/internal/core/application/wallet"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/pkg/mathutil"
)

// DefaultEthGasLimit is the gas consumed by a plain ether transfer
const DefaultEthGasLimit = 21000

// ComposeEthOpts is the struct given to ComposeEthTransaction.
// GasPrice is expressed in gwei, Data is an optional 0x prefixed hex string
// and Nonce, if nil, defaults to the next nonce of the account.
type ComposeEthOpts struct {
	FromAccountID string
	Destination   string
	Amount        decimal.Decimal
	GasPrice      decimal.Decimal
	GasLimit      uint64
	Data          string
	Nonce         *uint64
	SendMax       bool
}

func (o ComposeEthOpts) validate() error {
	if !wallet.IsValidAddress(domain.CurrencyETH, o.Destination, "") {
		return domain.ErrInvalidAddress.WithMessage(
			"invalid ethereum address %s", o.Destination,
		)
	}
	if !o.GasPrice.IsPositive() {
		return domain.ErrInvalidArgument.WithMessage("gas price must be positive")
	}
	if o.GasLimit <= 0 {
		return domain.ErrInvalidArgument.WithMessage("gas limit must be positive")
	}
	return nil
}

// ComposeEthTransaction composes a transfer from a non custodial Ethereum
// account. The fee is gasPrice * gasLimit.
func (s *Service) ComposeEthTransaction(
	opts ComposeEthOpts,
) (*domain.ComposedTransaction, error) {
	account, err := s.getAccount(
		opts.FromAccountID, isNonCustodial(domain.CurrencyETH),
		"is not a non custodial ETH account",
	)
	if err != nil {
		return nil, err
	}
	if err := opts.validate(); err != nil {
		return nil, err
	}

	var data []byte
	if len(opts.Data) > 0 {
		if data, err = hexutil.Decode(opts.Data); err != nil {
			return nil, domain.ErrInvalidArgument.WithMessage(
				"data must be a 0x prefixed hex string",
			)
		}
	}
	chainID, err := domain.EthChainID(account.Network)
	if err != nil {
		return nil, err
	}

	fee := mathutil.EthFee(opts.GasPrice, opts.GasLimit)
	amount, err := resolveAmount(account, opts.Amount, fee, opts.SendMax)
	if err != nil {
		return nil, err
	}

	nonce, err := s.nonce(account.ID, opts.Nonce)
	if err != nil {
		return nil, err
	}

	tx := domain.NewComposedTransaction(domain.TransactionTypeCrypto, account)
	tx.Destination = opts.Destination
	tx.Amount = amount
	tx.Fee = fee
	tx.Eth = &domain.EthPayload{
		ChainID:  chainID.Int64(),
		Nonce:    nonce,
		GasPrice: opts.GasPrice,
		GasLimit: opts.GasLimit,
		Data:     data,
	}
	return tx, nil
}

func (s *Service) nonce(accountID string, override *uint64) (uint64, error) {
	if override != nil {
		return *override, nil
	}
	return s.accounts.NextNonce(accountID)
}

func isNonCustodial(currency domain.CurrencyCode) func(domain.Account) bool {
	return func(a domain.Account) bool {
		return a.CurrencyCode == currency && a.IsNonCustodialCrypto()
	}
}
