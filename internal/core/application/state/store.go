package state

import (
	"encoding/json"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/pkg/stats"
)

type ChangeKind string

const (
	ChangeAccountData  ChangeKind = "ACCOUNT_DATA"
	ChangeTransaction  ChangeKind = "TRANSACTION"
	ChangeFeeRates     ChangeKind = "FEE_RATES"
	ChangeTradingPairs ChangeKind = "TRADING_PAIRS"
	ChangeFiatCustomer ChangeKind = "FIAT_CUSTOMER"
)

// Change describes a committed mutation of the store. AccountID is set for
// account data and transaction changes.
type Change struct {
	Kind      ChangeKind
	AccountID string
}

// Listener is notified after every committed change
type Listener func(change Change)

// Store is the client side view of the user accounts, transactions and
// market data. Accounts are refreshed only by snapshots, while transactions
// can also be added locally right after submission.
//
// All reads return copies. Listeners are called synchronously, in the
// order they subscribed, outside of the store lock.
type Store struct {
	lock         *sync.RWMutex
	accounts     map[string]domain.Account
	accountIDs   []string
	versions     map[string]int64
	transactions map[string]domain.Transaction
	txIDs        []string
	exchanges    map[string]domain.Exchange
	feeRates     map[domain.CurrencyCode]domain.FeeRates
	tradingPairs []domain.TradingPair
	customerOf   map[domain.Network]struct{}

	listenersLock *sync.Mutex
	listeners     []*Subscription
	nextID        uint64
}

func NewStore() *Store {
	s := &Store{
		lock:          &sync.RWMutex{},
		listenersLock: &sync.Mutex{},
	}
	s.reset()
	return s
}

// Reset drops all the state. Listeners are kept.
func (s *Store) Reset() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.reset()
}

func (s *Store) reset() {
	s.accounts = make(map[string]domain.Account)
	s.accountIDs = nil
	s.versions = make(map[string]int64)
	s.transactions = make(map[string]domain.Transaction)
	s.txIDs = nil
	s.exchanges = make(map[string]domain.Exchange)
	s.feeRates = make(map[domain.CurrencyCode]domain.FeeRates)
	s.tradingPairs = nil
	s.customerOf = make(map[domain.Network]struct{})
}

// ApplySnapshot replaces the account and merges the transactions of the
// given snapshot. Snapshots with a version not greater than the last applied
// one for the same account are dropped and false is returned.
func (s *Store) ApplySnapshot(snapshot domain.AccountDataSnapshot) bool {
	accountID := snapshot.Account.ID
	if len(accountID) <= 0 {
		log.Warn("state: dropping snapshot with no account id")
		return false
	}

	s.lock.Lock()
	if version, ok := s.versions[accountID]; ok && snapshot.Version <= version {
		s.lock.Unlock()
		stats.SnapshotsDropped.Inc()
		log.Debugf(
			"state: dropping stale snapshot v%d for account %s (current v%d)",
			snapshot.Version, accountID, version,
		)
		return false
	}

	s.versions[accountID] = snapshot.Version
	s.putAccount(snapshot.Account)
	touched := map[string]struct{}{accountID: {}}
	for _, tx := range snapshot.Transactions {
		s.mergeTransaction(tx)
		if len(tx.FromAccountID) > 0 {
			touched[tx.FromAccountID] = struct{}{}
		}
	}
	for id := range touched {
		s.recomputeAvailableBalance(id)
	}
	s.lock.Unlock()

	stats.SnapshotsApplied.Inc()
	s.notify(Change{ChangeAccountData, accountID})
	return true
}

// ApplySnapshots applies every snapshot in order and returns how many were
// applied
func (s *Store) ApplySnapshots(snapshots []domain.AccountDataSnapshot) int {
	count := 0
	for _, snapshot := range snapshots {
		if s.ApplySnapshot(snapshot) {
			count++
		}
	}
	return count
}

// ApplyMessage decodes a frame received on the realtime channel and applies
// it. Malformed or unknown frames are logged and ignored.
func (s *Store) ApplyMessage(payload []byte) {
	var msg domain.Message
	if err := json.Unmarshal(payload, &msg); err != nil {
		log.WithError(err).Warn("state: malformed realtime message")
		return
	}

	switch msg.Type {
	case domain.MessageAccountData:
		var snapshot domain.AccountDataSnapshot
		if err := json.Unmarshal(msg.Data, &snapshot); err != nil {
			log.WithError(err).Warn("state: malformed account data message")
			return
		}
		s.ApplySnapshot(snapshot)
	case domain.MessageFeeRates:
		feeRates := make(map[domain.CurrencyCode]domain.FeeRates)
		if err := json.Unmarshal(msg.Data, &feeRates); err != nil {
			log.WithError(err).Warn("state: malformed fee rates message")
			return
		}
		s.SetFeeRates(feeRates)
	default:
		log.Debugf("state: ignoring realtime message of type %s", msg.Type)
	}
}

// AddAccount inserts an account not known yet. Known accounts are left
// untouched since they are refreshed by snapshots only.
func (s *Store) AddAccount(account domain.Account) {
	s.lock.Lock()
	if _, ok := s.accounts[account.ID]; ok {
		s.lock.Unlock()
		return
	}
	s.putAccount(account)
	s.recomputeAvailableBalance(account.ID)
	s.lock.Unlock()

	s.notify(Change{ChangeAccountData, account.ID})
}

// UpsertCard adds or replaces a card of a known account. It returns false if
// the account of the card is unknown.
func (s *Store) UpsertCard(card domain.Card) bool {
	s.lock.Lock()
	account, ok := s.accounts[card.AccountID]
	if !ok {
		s.lock.Unlock()
		return false
	}
	cards := make([]domain.Card, 0, len(account.Cards)+1)
	replaced := false
	for _, c := range account.Cards {
		if c.ID == card.ID {
			c = card
			replaced = true
		}
		cards = append(cards, c)
	}
	if !replaced {
		cards = append(cards, card)
	}
	account.Cards = cards
	s.accounts[account.ID] = account
	s.lock.Unlock()

	s.notify(Change{ChangeAccountData, account.ID})
	return true
}

// AddFiatCustomer records the user as customer of the fiat rails of the
// given networks
func (s *Store) AddFiatCustomer(networks ...domain.Network) {
	if len(networks) <= 0 {
		return
	}

	s.lock.Lock()
	for _, network := range networks {
		s.customerOf[network] = struct{}{}
	}
	s.lock.Unlock()

	s.notify(Change{Kind: ChangeFiatCustomer})
}

func (s *Store) IsFiatCustomer(network domain.Network) bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	_, ok := s.customerOf[network]
	return ok
}

// Card returns the card with the given id among those of all accounts
func (s *Store) Card(id string) (domain.Card, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, accountID := range s.accountIDs {
		for _, c := range s.accounts[accountID].Cards {
			if c.ID == id {
				return c, true
			}
		}
	}
	return domain.Card{}, false
}

// UpsertTransaction adds or updates a transaction, typically the record
// returned by the backend on submission
func (s *Store) UpsertTransaction(tx domain.Transaction) {
	s.lock.Lock()
	s.mergeTransaction(tx)
	accountID := s.transactions[tx.ID].FromAccountID
	if len(accountID) > 0 {
		s.recomputeAvailableBalance(accountID)
	}
	s.lock.Unlock()

	s.notify(Change{ChangeTransaction, accountID})
}

func (s *Store) SetFeeRates(feeRates map[domain.CurrencyCode]domain.FeeRates) {
	s.lock.Lock()
	for currency, rates := range feeRates {
		s.feeRates[currency] = rates
	}
	s.lock.Unlock()

	s.notify(Change{Kind: ChangeFeeRates})
}

func (s *Store) SetTradingPairs(pairs []domain.TradingPair) {
	s.lock.Lock()
	s.tradingPairs = append([]domain.TradingPair{}, pairs...)
	s.lock.Unlock()

	s.notify(Change{Kind: ChangeTradingPairs})
}

// Account returns a copy of the account with the given id
func (s *Store) Account(id string) (domain.Account, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	account, ok := s.accounts[id]
	if !ok {
		return domain.Account{}, false
	}
	return account.Copy(), true
}

// AccountByKey returns the account identified by the given tuple
func (s *Store) AccountByKey(key domain.AccountKey) (domain.Account, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, id := range s.accountIDs {
		if account := s.accounts[id]; account.Key() == key {
			return account.Copy(), true
		}
	}
	return domain.Account{}, false
}

// Accounts returns all accounts in insertion order
func (s *Store) Accounts() []domain.Account {
	s.lock.RLock()
	defer s.lock.RUnlock()

	accounts := make([]domain.Account, 0, len(s.accountIDs))
	for _, id := range s.accountIDs {
		accounts = append(accounts, s.accounts[id].Copy())
	}
	return accounts
}

// Version returns the version of the last snapshot applied for the account
func (s *Store) Version(accountID string) (int64, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	version, ok := s.versions[accountID]
	return version, ok
}

func (s *Store) Transaction(id string) (domain.Transaction, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	tx, ok := s.transactions[id]
	return tx.Copy(), ok
}

// Transactions returns the transactions involving the given account, or all
// of them if accountID is empty
func (s *Store) Transactions(accountID string) []domain.Transaction {
	s.lock.RLock()
	defer s.lock.RUnlock()

	txs := make([]domain.Transaction, 0)
	for _, id := range s.txIDs {
		tx := s.transactions[id]
		if len(accountID) > 0 &&
			tx.FromAccountID != accountID && tx.ToAccountID != accountID {
			continue
		}
		txs = append(txs, tx.Copy())
	}
	return txs
}

func (s *Store) Exchange(id string) (domain.Exchange, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	exchange, ok := s.exchanges[id]
	return exchange.Copy(), ok
}

func (s *Store) Exchanges() []domain.Exchange {
	s.lock.RLock()
	defer s.lock.RUnlock()

	exchanges := make([]domain.Exchange, 0, len(s.exchanges))
	seen := make(map[string]struct{})
	for _, id := range s.txIDs {
		tx := s.transactions[id]
		if tx.Exchange == nil {
			continue
		}
		if _, ok := seen[tx.Exchange.ID]; ok {
			continue
		}
		seen[tx.Exchange.ID] = struct{}{}
		exchanges = append(exchanges, s.exchanges[tx.Exchange.ID].Copy())
	}
	return exchanges
}

func (s *Store) FeeRates(currency domain.CurrencyCode) (domain.FeeRates, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	rates, ok := s.feeRates[currency]
	return rates, ok
}

func (s *Store) TradingPairs() []domain.TradingPair {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return append([]domain.TradingPair{}, s.tradingPairs...)
}

// TradingPair returns the pair for converting from into to
func (s *Store) TradingPair(from, to domain.CurrencyCode) (domain.TradingPair, bool) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	for _, pair := range s.tradingPairs {
		if pair.From == from && pair.To == to {
			return pair, true
		}
	}
	return domain.TradingPair{}, false
}

func (s *Store) putAccount(account domain.Account) {
	if _, ok := s.accounts[account.ID]; !ok {
		s.accountIDs = append(s.accountIDs, account.ID)
	}
	s.accounts[account.ID] = account.Copy()
}

// mergeTransaction stores tx enforcing the status machines. A transition
// not allowed by the machine is logged and the previous status is kept.
func (s *Store) mergeTransaction(tx domain.Transaction) {
	current, ok := s.transactions[tx.ID]
	if !ok {
		s.txIDs = append(s.txIDs, tx.ID)
	} else if !current.Status.CanTransitionTo(tx.Status) {
		log.Warnf(
			"state: invalid status transition %s -> %s for transaction %s",
			current.Status, tx.Status, tx.ID,
		)
		tx.Status = current.Status
	}

	tx = tx.Copy()
	if tx.Exchange != nil {
		exchange := *tx.Exchange
		if known, ok := s.exchanges[exchange.ID]; ok {
			if !known.Status.CanTransitionTo(exchange.Status) {
				log.Warnf(
					"state: invalid status transition %s -> %s for exchange %s",
					known.Status, exchange.Status, exchange.ID,
				)
				exchange.Status = known.Status
			}
			if len(exchange.DebitTransactionID) <= 0 {
				exchange.DebitTransactionID = known.DebitTransactionID
			}
			if len(exchange.CreditTransactionID) <= 0 {
				exchange.CreditTransactionID = known.CreditTransactionID
			}
		}
		s.exchanges[exchange.ID] = exchange.Copy()
		tx.Exchange = &exchange
	}

	s.transactions[tx.ID] = tx
}

// recomputeAvailableBalance enforces
// available = ledger - sum(amount + fee) of pending outgoing transactions.
func (s *Store) recomputeAvailableBalance(accountID string) {
	account, ok := s.accounts[accountID]
	if !ok {
		return
	}
	pending := decimal.Zero
	for _, tx := range s.transactions {
		if tx.IsPendingDebitOf(accountID) {
			pending = pending.Add(tx.Debit())
		}
	}
	account.AvailableBalance = account.LedgerBalance.Sub(pending)
	s.accounts[accountID] = account
}
