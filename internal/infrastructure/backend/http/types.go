package httpbackend

import (
	"errors"

	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
)

type walletRequest struct {
	EncryptedMnemonic string                 `json:"encryptedMnemonic"`
	Accounts          []ports.AccountRequest `json:"accounts,omitempty"`
}

type accountsRequest struct {
	Accounts []ports.AccountRequest `json:"accounts"`
}

type fiatAccountRequest struct {
	CurrencyCode domain.CurrencyCode `json:"currencyCode"`
	Network      domain.Network      `json:"network"`
}

type fiatCustomerRequest struct {
	Network domain.Network `json:"network"`
	domain.FiatCustomerData
}

type fiatCustomersResponse struct {
	Networks []domain.Network `json:"networks"`
}

type cardRequest struct {
	AccountID string          `json:"accountId"`
	CardType  domain.CardType `json:"cardType"`
}

type cardStatusRequest struct {
	Status domain.CardStatus `json:"cardStatus"`
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
