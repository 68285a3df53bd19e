package application

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/application/composer"
	"github.com/zumo-network/zumokit-core/internal/core/application/exchange"
	"github.com/zumo-network/zumokit-core/internal/core/application/ledger"
	"github.com/zumo-network/zumokit-core/internal/core/application/state"
	"github.com/zumo-network/zumokit-core/internal/core/application/submission"
	"github.com/zumo-network/zumokit-core/internal/core/application/wallet"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"golang.org/x/sync/errgroup"
)

// User is the signed in user. Composing and submitting are serialized,
// while reads go straight to the state store so that they are never blocked
// by a pending submission.
type User struct {
	id string

	lock       *sync.Mutex
	backend    ports.BackendService
	store      *state.Store
	wallet     *wallet.Service
	ledger     *ledger.Service
	composer   *composer.Service
	submission *submission.Service
	exchange   *exchange.Service
	realtime   ports.RealtimeChannel
}

func newUser(id string, cfg *Config) (*User, error) {
	backend := cfg.Backend
	store := state.NewStore()

	walletSvc, err := wallet.NewService(wallet.Config{
		BtcNetwork: cfg.BtcNetwork,
		EthNetwork: cfg.EthNetwork,
		KeyCost:    cfg.KeyCost,
	}, backend.Account(), cfg.RepoManager().VaultRepository())
	if err != nil {
		return nil, err
	}
	walletSvc.SetUser(id)

	ledgerSvc, err := ledger.NewService(store, backend.Account(), walletSvc)
	if err != nil {
		return nil, err
	}
	composerSvc, err := composer.NewService(ledgerSvc, backend.Transaction())
	if err != nil {
		return nil, err
	}
	submissionSvc, err := submission.NewService(
		walletSvc, ledgerSvc, store, backend.Transaction(),
	)
	if err != nil {
		return nil, err
	}
	exchangeSvc, err := exchange.NewService(
		ledgerSvc, composerSvc, submissionSvc, store, backend.Exchange(),
		cfg.clock(),
	)
	if err != nil {
		return nil, err
	}

	return &User{
		id:         id,
		lock:       &sync.Mutex{},
		backend:    backend,
		store:      store,
		wallet:     walletSvc,
		ledger:     ledgerSvc,
		composer:   composerSvc,
		submission: submissionSvc,
		exchange:   exchangeSvc,
		realtime:   cfg.Realtime(store.ApplyMessage),
	}, nil
}

// load fetches the initial state of the user concurrently
func (u *User) load(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		snapshots, err := u.backend.Account().FetchSnapshots(gctx)
		if err != nil {
			return err
		}
		u.store.ApplySnapshots(snapshots)
		return nil
	})
	g.Go(func() error {
		feeRates, err := u.backend.Transaction().GetFeeRates(gctx)
		if err != nil {
			return err
		}
		u.store.SetFeeRates(feeRates)
		return nil
	})
	g.Go(func() error {
		_, err := u.exchange.TradingPairs(gctx)
		return err
	})
	g.Go(func() error {
		networks, err := u.backend.Account().GetFiatCustomerNetworks(gctx)
		if err != nil {
			return err
		}
		u.store.AddFiatCustomer(networks...)
		return nil
	})

	return g.Wait()
}

func (u *User) close() {
	if err := u.realtime.Disconnect(); err != nil {
		log.WithError(err).Warn("failed to close realtime channel")
	}
	u.wallet.LockWallet()
}

func (u *User) ID() string {
	return u.id
}

// Subscribe registers a listener notified after every state change
func (u *User) Subscribe(listener state.Listener) *state.Subscription {
	return u.store.Subscribe(listener)
}

// **** Wallet ****

func (u *User) HasWallet(ctx context.Context) (bool, error) {
	return u.wallet.HasWallet(ctx)
}

// CreateWallet creates the wallet of the user from the given mnemonic and
// leaves it unlocked
func (u *User) CreateWallet(
	ctx context.Context, mnemonic []string, passphrase string,
) error {
	u.lock.Lock()
	defer u.lock.Unlock()

	accounts, err := u.wallet.CreateWallet(ctx, mnemonic, passphrase)
	if err != nil {
		return err
	}
	u.addAccounts(accounts)
	return nil
}

// RecoverWallet restores the wallet of the user from its mnemonic, encrypting
// it with a new passphrase
func (u *User) RecoverWallet(
	ctx context.Context, mnemonic []string, passphrase string,
) error {
	u.lock.Lock()
	defer u.lock.Unlock()

	accounts, err := u.wallet.RecoverWallet(ctx, mnemonic, passphrase)
	if err != nil {
		return err
	}
	u.addAccounts(accounts)
	return nil
}

func (u *User) UnlockWallet(ctx context.Context, passphrase string) error {
	return u.wallet.UnlockWallet(ctx, passphrase)
}

func (u *User) LockWallet() {
	u.wallet.LockWallet()
}

func (u *User) IsWalletUnlocked() bool {
	return u.wallet.IsUnlocked()
}

func (u *User) RevealMnemonic(
	ctx context.Context, passphrase string,
) ([]string, error) {
	return u.wallet.RevealMnemonic(ctx, passphrase)
}

func (u *User) IsRecoveryMnemonic(
	ctx context.Context, mnemonic []string,
) (bool, error) {
	return u.wallet.IsRecoveryMnemonic(ctx, mnemonic)
}

func (u *User) ChangePassphrase(
	ctx context.Context, currentPassphrase, newPassphrase string,
) error {
	return u.wallet.ChangePassphrase(ctx, currentPassphrase, newPassphrase)
}

// **** Accounts ****

func (u *User) GetAccount(
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType, custody domain.CustodyType,
) (domain.Account, bool) {
	return u.ledger.GetAccount(currency, network, accountType, custody)
}

func (u *User) GetAccountByID(id string) (domain.Account, error) {
	return u.ledger.GetAccountByID(id)
}

func (u *User) GetAccounts() []domain.Account {
	return u.ledger.Accounts()
}

func (u *User) CreateAccount(
	ctx context.Context, currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType,
) (domain.Account, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.ledger.CreateAccount(ctx, currency, network, accountType)
}

func (u *User) GetNominatedAccountFiatProperties(
	ctx context.Context, accountID string,
) (domain.FiatProperties, error) {
	return u.ledger.GetNominatedAccountFiatProperties(ctx, accountID)
}

// IsFiatCustomer returns whether the user can open fiat accounts on the
// given network
func (u *User) IsFiatCustomer(network domain.Network) bool {
	return u.ledger.IsFiatCustomer(network)
}

func (u *User) MakeFiatCustomer(
	ctx context.Context, network domain.Network, data domain.FiatCustomerData,
) error {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.ledger.MakeFiatCustomer(ctx, network, data)
}

// GetTransactions returns the transactions of the given account, or of all
// accounts if accountID is empty
func (u *User) GetTransactions(accountID string) []domain.Transaction {
	return u.store.Transactions(accountID)
}

func (u *User) GetTransaction(id string) (domain.Transaction, bool) {
	return u.store.Transaction(id)
}

func (u *User) GetExchanges() []domain.Exchange {
	return u.store.Exchanges()
}

func (u *User) GetExchange(id string) (domain.Exchange, bool) {
	return u.store.Exchange(id)
}

func (u *User) GetFeeRates(currency domain.CurrencyCode) (domain.FeeRates, bool) {
	return u.store.FeeRates(currency)
}

// RefreshFeeRates fetches the latest fee rates from the backend
func (u *User) RefreshFeeRates(
	ctx context.Context,
) (map[domain.CurrencyCode]domain.FeeRates, error) {
	feeRates, err := u.backend.Transaction().GetFeeRates(ctx)
	if err != nil {
		return nil, err
	}
	u.store.SetFeeRates(feeRates)
	return feeRates, nil
}

// **** Transactions ****

func (u *User) ComposeEthTransaction(
	opts composer.ComposeEthOpts,
) (*domain.ComposedTransaction, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.composer.ComposeEthTransaction(opts)
}

func (u *User) ComposeBtcTransaction(
	ctx context.Context, opts composer.ComposeBtcOpts,
) (*domain.ComposedTransaction, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.composer.ComposeBtcTransaction(ctx, opts)
}

func (u *User) ComposeInternalFiatTransaction(
	opts composer.ComposeFiatOpts,
) (*domain.ComposedTransaction, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.composer.ComposeInternalFiatTransaction(opts)
}

func (u *User) ComposeNominatedTransaction(
	opts composer.ComposeNominatedOpts,
) (*domain.ComposedTransaction, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.composer.ComposeNominatedTransaction(opts)
}

func (u *User) ComposeCustodyWithdrawTransaction(
	opts composer.ComposeCustodyOpts,
) (*domain.ComposedTransaction, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.composer.ComposeCustodyWithdrawTransaction(opts)
}

func (u *User) SubmitTransaction(
	ctx context.Context, tx *domain.ComposedTransaction,
) (domain.Transaction, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.submission.SubmitTransaction(ctx, tx)
}

// **** Exchanges ****

func (u *User) GetQuote(
	ctx context.Context, from, to domain.CurrencyCode, debitAmount decimal.Decimal,
) (domain.Quote, error) {
	return u.exchange.GetQuote(ctx, from, to, debitAmount)
}

func (u *User) GetTradingPairs() []domain.TradingPair {
	return u.store.TradingPairs()
}

func (u *User) RefreshTradingPairs(ctx context.Context) ([]domain.TradingPair, error) {
	return u.exchange.TradingPairs(ctx)
}

func (u *User) FetchHistoricalExchangeRates(
	ctx context.Context,
) (domain.HistoricalExchangeRates, error) {
	return u.exchange.HistoricalExchangeRates(ctx)
}

func (u *User) ComposeExchange(
	ctx context.Context, opts exchange.ComposeExchangeOpts,
) (*domain.ComposedExchange, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.exchange.ComposeExchange(ctx, opts)
}

func (u *User) SubmitExchange(
	ctx context.Context, composed *domain.ComposedExchange,
) (domain.Exchange, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.exchange.SubmitExchange(ctx, composed)
}

func (u *User) ReconcileExchange(
	ctx context.Context, exchangeID string,
) (domain.Exchange, error) {
	u.lock.Lock()
	defer u.lock.Unlock()

	return u.exchange.ReconcileExchange(ctx, exchangeID)
}

// **** Cards ****

// CreateCard issues a new card linked to the given fiat account
func (u *User) CreateCard(
	ctx context.Context, accountID string, cardType domain.CardType,
) (domain.Card, error) {
	if !cardType.IsValid() {
		return domain.Card{}, domain.ErrInvalidArgument.WithMessage(
			"invalid card type %s", cardType,
		)
	}
	account, err := u.ledger.GetAccountByID(accountID)
	if err != nil {
		return domain.Card{}, err
	}
	if !account.IsFiat() {
		return domain.Card{}, domain.ErrInvalidArgument.WithMessage(
			"cards can be linked to fiat accounts only",
		)
	}

	card, err := u.backend.Card().CreateCard(ctx, accountID, cardType)
	if err != nil {
		return domain.Card{}, err
	}
	u.store.UpsertCard(card)
	return card, nil
}

func (u *User) SetCardStatus(
	ctx context.Context, cardID string, status domain.CardStatus,
) error {
	card, ok := u.store.Card(cardID)
	if !ok {
		return domain.ErrInvalidArgument.WithMessage("card %s not found", cardID)
	}
	if !card.Status.CanBeSetTo(status) {
		return domain.ErrInvalidArgument.WithMessage(
			"card cannot be moved from %s to %s", card.Status, status,
		)
	}

	if err := u.backend.Card().SetCardStatus(ctx, cardID, status); err != nil {
		return err
	}
	card.Status = status
	u.store.UpsertCard(card)
	return nil
}

func (u *User) addAccounts(accounts []domain.Account) {
	for _, account := range accounts {
		u.store.AddAccount(account)
	}
}
