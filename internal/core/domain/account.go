package domain

import "github.com/shopspring/decimal"

// AccountKey is the tuple identifying an account among those of a user
type AccountKey struct {
	CurrencyCode CurrencyCode
	Network      Network
	Type         AccountType
	CustodyType  CustodyType
}

type CryptoProperties struct {
	Address string  `json:"address"`
	Path    string  `json:"path"`
	Nonce   *uint64 `json:"nonce,omitempty"`
}

type FiatProperties struct {
	AccountNumber string `json:"accountNumber,omitempty"`
	SortCode      string `json:"sortCode,omitempty"`
	BIC           string `json:"bic,omitempty"`
	IBAN          string `json:"iban,omitempty"`
	CustomerName  string `json:"customerName,omitempty"`
}

// Account is a crypto or fiat account owned by the signed in user.
// Balances are only refreshed from snapshots.
type Account struct {
	ID                  string            `json:"id"`
	CurrencyType        CurrencyType      `json:"currencyType"`
	CurrencyCode        CurrencyCode      `json:"currencyCode"`
	Network             Network           `json:"network"`
	Type                AccountType       `json:"type"`
	CustodyType         CustodyType       `json:"custodyType"`
	Balance             decimal.Decimal   `json:"balance"`
	LedgerBalance       decimal.Decimal   `json:"ledgerBalance"`
	AvailableBalance    decimal.Decimal   `json:"availableBalance"`
	HasNominatedAccount bool              `json:"hasNominatedAccount"`
	CryptoProperties    *CryptoProperties `json:"cryptoProperties,omitempty"`
	FiatProperties      *FiatProperties   `json:"fiatProperties,omitempty"`
	Cards               []Card            `json:"cards,omitempty"`
}

// Key returns the tuple identifying the account
func (a Account) Key() AccountKey {
	return AccountKey{
		CurrencyCode: a.CurrencyCode,
		Network:      a.Network,
		Type:         a.Type,
		CustodyType:  a.CustodyType,
	}
}

// IsCrypto ...
func (a Account) IsCrypto() bool {
	return a.CurrencyType == CurrencyTypeCrypto
}

// IsFiat ...
func (a Account) IsFiat() bool {
	return a.CurrencyType == CurrencyTypeFiat
}

// IsNonCustodialCrypto returns whether the account keys are held by the
// client. Only these accounts require local signing.
func (a Account) IsNonCustodialCrypto() bool {
	return a.IsCrypto() && a.CustodyType == CustodyTypeNonCustody
}

// Address returns the account address, if any
func (a Account) Address() string {
	if a.CryptoProperties == nil {
		return ""
	}
	return a.CryptoProperties.Address
}

// Path returns the account derivation path, if any
func (a Account) Path() string {
	if a.CryptoProperties == nil {
		return ""
	}
	return a.CryptoProperties.Path
}

// Nonce returns the next chain nonce known by the backend, if any
func (a Account) Nonce() (uint64, bool) {
	if a.CryptoProperties == nil || a.CryptoProperties.Nonce == nil {
		return 0, false
	}
	return *a.CryptoProperties.Nonce, true
}

// Copy returns a deep copy of the account
func (a Account) Copy() Account {
	c := a
	if a.CryptoProperties != nil {
		props := *a.CryptoProperties
		if a.CryptoProperties.Nonce != nil {
			nonce := *a.CryptoProperties.Nonce
			props.Nonce = &nonce
		}
		c.CryptoProperties = &props
	}
	if a.FiatProperties != nil {
		props := *a.FiatProperties
		c.FiatProperties = &props
	}
	if a.Cards != nil {
		c.Cards = make([]Card, len(a.Cards))
		copy(c.Cards, a.Cards)
	}
	return c
}
