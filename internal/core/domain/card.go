package domain

import "github.com/shopspring/decimal"

type CardType string

const (
	CardTypeVirtual  CardType = "VIRTUAL"
	CardTypePhysical CardType = "PHYSICAL"
)

type CardStatus string

const (
	CardStatusCreated   CardStatus = "CREATED"
	CardStatusActive    CardStatus = "ACTIVE"
	CardStatusFrozen    CardStatus = "FROZEN"
	CardStatusBlocked   CardStatus = "BLOCKED"
	CardStatusCancelled CardStatus = "CANCELLED"
)

// Card is a payment card linked to a fiat account
type Card struct {
	ID        string          `json:"id"`
	AccountID string          `json:"accountId"`
	Type      CardType        `json:"cardType"`
	Status    CardStatus      `json:"cardStatus"`
	Limit     decimal.Decimal `json:"limit"`
	MaskedPAN string          `json:"maskedPan"`
	Expiry    string          `json:"expiry"`
	SCA       bool            `json:"sca"`
}

// IsValid ...
func (t CardType) IsValid() bool {
	return t == CardTypeVirtual || t == CardTypePhysical
}

// CanBeSetTo returns whether a client can move the card to the given status.
// Cancelled and blocked cards are final.
func (s CardStatus) CanBeSetTo(next CardStatus) bool {
	switch s {
	case CardStatusCancelled, CardStatusBlocked:
		return false
	}
	switch next {
	case CardStatusActive, CardStatusFrozen, CardStatusBlocked, CardStatusCancelled:
		return true
	}
	return false
}
