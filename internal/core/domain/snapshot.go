package domain

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// AccountDataSnapshot is the authoritative state of an account at a given
// version, pushed by the backend
type AccountDataSnapshot struct {
	Version      int64         `json:"version"`
	Account      Account       `json:"account"`
	Transactions []Transaction `json:"transactions"`
}

// FeeRates are the network fee estimations of a crypto currency. Bitcoin
// rates are expressed in sats/vbyte, Ethereum rates in gwei. Times are in
// hours.
type FeeRates struct {
	Slow        decimal.Decimal `json:"slow"`
	Average     decimal.Decimal `json:"average"`
	Fast        decimal.Decimal `json:"fast"`
	SlowTime    float64         `json:"slowTime"`
	AverageTime float64         `json:"averageTime"`
	FastTime    float64         `json:"fastTime"`
	Source      string          `json:"source"`
}

type MessageType string

const (
	MessageAccountData MessageType = "ACCOUNT_DATA"
	MessageFeeRates    MessageType = "FEE_RATES"
)

// Message is the envelope of every frame pushed on the realtime channel
type Message struct {
	Type MessageType     `json:"type"`
	Data json.RawMessage `json:"data"`
}

// TokenSet is the opaque auth triple handed by the integrator
type TokenSet struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
	ExpiresIn    int64  `json:"expiresIn"`
}
