package ledger

import (
	"context"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
)

// AccountStore is the source of truth of the user accounts
type AccountStore interface {
	Account(id string) (domain.Account, bool)
	AccountByKey(key domain.AccountKey) (domain.Account, bool)
	Accounts() []domain.Account
	AddAccount(account domain.Account)
	IsFiatCustomer(network domain.Network) bool
	AddFiatCustomer(networks ...domain.Network)
}

// AccountDeriver derives non custodial accounts from the user wallet
type AccountDeriver interface {
	DeriveAccount(
		currency domain.CurrencyCode, network domain.Network,
		accountType domain.AccountType,
	) (ports.AccountRequest, error)
}

// Service gives access to the user accounts and keeps track of the
// Ethereum nonces consumed by submitted transactions not yet reflected by
// a snapshot.
type Service struct {
	store   AccountStore
	backend ports.AccountService
	deriver AccountDeriver

	lock           *sync.Mutex
	reservedNonces map[string]uint64
}

func NewService(
	store AccountStore, backend ports.AccountService, deriver AccountDeriver,
) (*Service, error) {
	if store == nil {
		return nil, fmt.Errorf("missing account store")
	}
	if backend == nil {
		return nil, fmt.Errorf("missing account backend service")
	}
	if deriver == nil {
		return nil, fmt.Errorf("missing account deriver")
	}

	return &Service{
		store:          store,
		backend:        backend,
		deriver:        deriver,
		lock:           &sync.Mutex{},
		reservedNonces: make(map[string]uint64),
	}, nil
}

// GetAccount returns the account identified by the given tuple
func (s *Service) GetAccount(
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType, custody domain.CustodyType,
) (domain.Account, bool) {
	return s.store.AccountByKey(domain.AccountKey{
		CurrencyCode: currency,
		Network:      network,
		Type:         accountType,
		CustodyType:  custody,
	})
}

func (s *Service) GetAccountByID(id string) (domain.Account, error) {
	account, ok := s.store.Account(id)
	if !ok {
		return domain.Account{}, domain.ErrAccountNotFound.WithMessage(
			"account %s not found", id,
		)
	}
	return account, nil
}

func (s *Service) Accounts() []domain.Account {
	return s.store.Accounts()
}

// CreateAccount creates the account identified by currency, network and
// type. Crypto accounts are derived locally and require the wallet to be
// unlocked, fiat accounts are opened by the backend. An already existing
// account is returned as is.
func (s *Service) CreateAccount(
	ctx context.Context,
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType,
) (domain.Account, error) {
	if !currency.IsValid() || !currency.SupportsNetwork(network) {
		return domain.Account{}, domain.ErrUnsupportedCurrency.WithMessage(
			"%s is not supported on %s", currency, network,
		)
	}
	if !accountType.IsValid() {
		return domain.Account{}, domain.ErrInvalidArgument.WithMessage(
			"invalid account type %s", accountType,
		)
	}

	if currency.IsCrypto() {
		return s.createCryptoAccount(ctx, currency, network, accountType)
	}
	return s.createFiatAccount(ctx, currency, network, accountType)
}

// GetNominatedAccountFiatProperties returns the details of the external
// bank account nominated for withdrawals from the given fiat account
func (s *Service) GetNominatedAccountFiatProperties(
	ctx context.Context, accountID string,
) (domain.FiatProperties, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return domain.FiatProperties{}, err
	}
	if !account.IsFiat() || !account.HasNominatedAccount {
		return domain.FiatProperties{}, domain.ErrNominatedAccountNotFound
	}
	return s.backend.GetNominatedAccount(ctx, accountID)
}

func (s *Service) IsFiatCustomer(network domain.Network) bool {
	return s.store.IsFiatCustomer(network)
}

// MakeFiatCustomer onboards the user to the fiat rails of the given network
// so that fiat accounts can be opened on it. It is a no-op for networks the
// user is already customer of.
func (s *Service) MakeFiatCustomer(
	ctx context.Context, network domain.Network, data domain.FiatCustomerData,
) error {
	if !domain.CurrencyGBP.SupportsNetwork(network) {
		return domain.ErrUnsupportedCurrency.WithMessage(
			"fiat is not supported on %s", network,
		)
	}
	if s.store.IsFiatCustomer(network) {
		return nil
	}
	if err := data.Validate(); err != nil {
		return err
	}

	if err := s.backend.MakeFiatCustomer(ctx, network, data); err != nil {
		return err
	}
	s.store.AddFiatCustomer(network)
	log.Debugf("user onboarded as fiat customer on %s", network)
	return nil
}

// NextNonce returns the nonce to use for the next Ethereum transaction of
// the account: the greatest between the last known one and the one
// following the last reserved.
func (s *Service) NextNonce(accountID string) (uint64, error) {
	account, err := s.GetAccountByID(accountID)
	if err != nil {
		return 0, err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	var nonce uint64
	if n, ok := account.Nonce(); ok {
		nonce = n
	}
	if reserved := s.reservedNonces[accountID]; reserved > nonce {
		nonce = reserved
	}
	return nonce, nil
}

// ReserveNonce marks the given nonce as consumed by a submitted transaction
func (s *Service) ReserveNonce(accountID string, used uint64) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if next := used + 1; next > s.reservedNonces[accountID] {
		s.reservedNonces[accountID] = next
	}
}

func (s *Service) createCryptoAccount(
	ctx context.Context,
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType,
) (domain.Account, error) {
	if account, ok := s.GetAccount(
		currency, network, accountType, domain.CustodyTypeNonCustody,
	); ok {
		return account, nil
	}

	req, err := s.deriver.DeriveAccount(currency, network, accountType)
	if err != nil {
		return domain.Account{}, err
	}
	accounts, err := s.backend.RegisterAccounts(ctx, []ports.AccountRequest{req})
	if err != nil {
		return domain.Account{}, err
	}

	for _, account := range accounts {
		if account.Address() == req.Address {
			s.store.AddAccount(account)
			log.Debugf("account %s created for %s on %s", account.ID, currency, network)
			return account, nil
		}
	}
	return domain.Account{}, domain.NewError(
		domain.UnknownError, "ACCOUNT_NOT_REGISTERED",
		fmt.Sprintf("account %s was not registered", req.Address),
	)
}

func (s *Service) createFiatAccount(
	ctx context.Context,
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType,
) (domain.Account, error) {
	if accountType != domain.AccountTypeStandard {
		return domain.Account{}, domain.ErrInvalidArgument.WithMessage(
			"fiat accounts must be of type %s", domain.AccountTypeStandard,
		)
	}
	if account, ok := s.GetAccount(
		currency, network, accountType, domain.CustodyTypeCustody,
	); ok {
		return account, nil
	}
	if !s.store.IsFiatCustomer(network) {
		return domain.Account{}, domain.ErrNotFiatCustomer.WithMessage(
			"user must be a fiat customer on %s to open %s accounts",
			network, currency,
		)
	}

	account, err := s.backend.CreateFiatAccount(ctx, currency, network)
	if err != nil {
		return domain.Account{}, err
	}
	s.store.AddAccount(account)
	return account, nil
}
