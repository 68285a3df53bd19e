package wallet

import (
	"context"
	"errors"
	"fmt"
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

// Config holds the networks of the default accounts derived at wallet
// creation and the cost of the passphrase key stretching.
type Config struct {
	BtcNetwork domain.Network
	EthNetwork domain.Network
	KeyCost    uint8
}

func (c Config) validate() error {
	if !domain.CurrencyBTC.SupportsNetwork(c.BtcNetwork) {
		return fmt.Errorf("unsupported btc network %s", c.BtcNetwork)
	}
	if !domain.CurrencyETH.SupportsNetwork(c.EthNetwork) {
		return fmt.Errorf("unsupported eth network %s", c.EthNetwork)
	}
	return nil
}

// Service manages the lifecycle of the user wallet: creation, recovery and
// the unlocked session that holds the keys used for signing.
type Service struct {
	cfg     Config
	backend ports.AccountService
	vaults  domain.VaultRepository

	lock    *sync.RWMutex
	userID  string
	session *hdwallet.Wallet
}

func NewService(
	cfg Config, backend ports.AccountService, vaults domain.VaultRepository,
) (*Service, error) {
	if backend == nil {
		return nil, fmt.Errorf("missing account backend service")
	}
	if vaults == nil {
		return nil, fmt.Errorf("missing vault repository")
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if cfg.KeyCost == 0 {
		cfg.KeyCost = hdwallet.DefaultKeyCost
	}

	return &Service{
		cfg:     cfg,
		backend: backend,
		vaults:  vaults,
		lock:    &sync.RWMutex{},
	}, nil
}

// SetUser binds the service to the signed in user. Any unlocked session of
// a previous user is wiped.
func (s *Service) SetUser(userID string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if s.userID != userID {
		s.wipe()
	}
	s.userID = userID
}

func (s *Service) GenerateMnemonic(wordCount int) ([]string, error) {
	mnemonic, err := hdwallet.NewMnemonic(hdwallet.NewMnemonicOpts{
		WordCount: wordCount,
	})
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithMessage("%s", err)
	}
	return mnemonic, nil
}

// HasWallet returns whether a wallet exists for the signed in user
func (s *Service) HasWallet(ctx context.Context) (bool, error) {
	if _, err := s.vaults.GetVault(ctx, s.user()); err == nil {
		return true, nil
	}
	if _, err := s.backend.GetWallet(ctx); err != nil {
		if errors.Is(err, domain.ErrWalletNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// CreateWallet encrypts the mnemonic with the passphrase and registers it
// along with the default accounts derived from it. The wallet is left
// unlocked.
func (s *Service) CreateWallet(
	ctx context.Context, mnemonic []string, passphrase string,
) ([]domain.Account, error) {
	w, err := newWallet(mnemonic)
	if err != nil {
		return nil, err
	}
	vault, err := domain.NewVault(s.user(), mnemonic, passphrase, s.cfg.KeyCost)
	if err != nil {
		return nil, err
	}

	if _, err := s.backend.GetWallet(ctx); err == nil {
		return nil, domain.ErrWalletAlreadyExists
	} else if !errors.Is(err, domain.ErrWalletNotFound) {
		return nil, err
	}

	requests, err := s.defaultAccounts(w)
	if err != nil {
		return nil, err
	}
	accounts, err := s.backend.CreateWallet(ctx, vault.EncryptedMnemonic, requests)
	if err != nil {
		return nil, err
	}

	if err := s.storeVault(ctx, vault); err != nil {
		return nil, err
	}
	s.setSession(w)

	log.Infof("wallet created with %d accounts", len(accounts))
	return accounts, nil
}

// RecoverWallet replaces the passphrase of an existing wallet proving the
// ownership of its mnemonic. The mnemonic is validated before any remote
// call.
func (s *Service) RecoverWallet(
	ctx context.Context, mnemonic []string, passphrase string,
) ([]domain.Account, error) {
	w, err := newWallet(mnemonic)
	if err != nil {
		return nil, err
	}
	vault, err := domain.NewVault(s.user(), mnemonic, passphrase, s.cfg.KeyCost)
	if err != nil {
		return nil, err
	}

	record, err := s.backend.GetWallet(ctx)
	if err != nil {
		return nil, err
	}
	if !matchesAccounts(w, record.Accounts) {
		return nil, domain.ErrNotRecoveryMnemonic
	}

	if err := s.backend.UpdateWallet(ctx, vault.EncryptedMnemonic); err != nil {
		return nil, err
	}
	requests, err := s.defaultAccounts(w)
	if err != nil {
		return nil, err
	}
	accounts, err := s.backend.RegisterAccounts(ctx, requests)
	if err != nil {
		return nil, err
	}

	if err := s.storeVault(ctx, vault); err != nil {
		return nil, err
	}
	s.setSession(w)

	log.Info("wallet recovered")
	return accounts, nil
}

// UnlockWallet decrypts the mnemonic and keeps the derived keys in memory
// until LockWallet is called
func (s *Service) UnlockWallet(ctx context.Context, passphrase string) error {
	vault, err := s.getVault(ctx)
	if err != nil {
		return err
	}
	mnemonic, err := vault.Unlock(passphrase)
	if err != nil {
		return err
	}
	w, err := newWallet(mnemonic)
	if err != nil {
		return err
	}
	s.setSession(w)
	return nil
}

// LockWallet wipes the in memory keys
func (s *Service) LockWallet() {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.wipe()
}

func (s *Service) IsUnlocked() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.session != nil
}

// RevealMnemonic returns the plaintext mnemonic. The passphrase is always
// required, even if the wallet is unlocked.
func (s *Service) RevealMnemonic(
	ctx context.Context, passphrase string,
) ([]string, error) {
	vault, err := s.getVault(ctx)
	if err != nil {
		return nil, err
	}
	return vault.Unlock(passphrase)
}

// IsRecoveryMnemonic returns whether the mnemonic derives the addresses of
// the user's non custodial accounts
func (s *Service) IsRecoveryMnemonic(
	ctx context.Context, mnemonic []string,
) (bool, error) {
	w, err := newWallet(mnemonic)
	if err != nil {
		return false, err
	}
	defer w.Wipe()

	record, err := s.backend.GetWallet(ctx)
	if err != nil {
		return false, err
	}
	return matchesAccounts(w, record.Accounts), nil
}

// ChangePassphrase re-encrypts the mnemonic with the new passphrase both
// locally and remotely
func (s *Service) ChangePassphrase(
	ctx context.Context, currentPassphrase, newPassphrase string,
) error {
	vault, err := s.getVault(ctx)
	if err != nil {
		return err
	}
	if err := vault.ChangePassphrase(currentPassphrase, newPassphrase); err != nil {
		return err
	}
	if err := s.backend.UpdateWallet(ctx, vault.EncryptedMnemonic); err != nil {
		return err
	}
	return s.storeVault(ctx, vault)
}

// DeriveAccount derives a new non custodial account from the unlocked
// wallet
func (s *Service) DeriveAccount(
	currency domain.CurrencyCode, network domain.Network,
	accountType domain.AccountType,
) (ports.AccountRequest, error) {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.session == nil {
		return ports.AccountRequest{}, domain.ErrWalletLocked
	}
	return DeriveAccount(s.session, currency, network, accountType)
}

func (s *Service) defaultAccounts(w *hdwallet.Wallet) ([]ports.AccountRequest, error) {
	requests := make([]ports.AccountRequest, 0, 4)
	for _, accountType := range []domain.AccountType{
		domain.AccountTypeSegwit,
		domain.AccountTypeCompatibility,
		domain.AccountTypeStandard,
	} {
		req, err := DeriveAccount(w, domain.CurrencyBTC, s.cfg.BtcNetwork, accountType)
		if err != nil {
			return nil, err
		}
		requests = append(requests, req)
	}
	req, err := DeriveAccount(
		w, domain.CurrencyETH, s.cfg.EthNetwork, domain.AccountTypeStandard,
	)
	if err != nil {
		return nil, err
	}
	return append(requests, req), nil
}

// getVault returns the locally stored vault, falling back to the encrypted
// mnemonic stored remotely
func (s *Service) getVault(ctx context.Context) (*domain.Vault, error) {
	userID := s.user()
	vault, err := s.vaults.GetVault(ctx, userID)
	if err == nil {
		return vault, nil
	}
	if !errors.Is(err, domain.ErrVaultNotFound) {
		return nil, err
	}

	record, err := s.backend.GetWallet(ctx)
	if err != nil {
		return nil, err
	}
	vault = &domain.Vault{
		UserID:            userID,
		EncryptedMnemonic: record.EncryptedMnemonic,
		KeyCost:           s.cfg.KeyCost,
	}
	if err := s.storeVault(ctx, vault); err != nil {
		log.WithError(err).Warn("failed to cache wallet vault")
	}
	return vault, nil
}

func (s *Service) storeVault(ctx context.Context, vault *domain.Vault) error {
	if err := s.vaults.AddVault(ctx, vault); err == nil {
		return nil
	}
	return s.vaults.UpdateVault(
		ctx, vault.UserID, func(_ *domain.Vault) (*domain.Vault, error) {
			return vault, nil
		},
	)
}

func (s *Service) setSession(w *hdwallet.Wallet) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.wipe()
	s.session = w
}

func (s *Service) wipe() {
	if s.session != nil {
		s.session.Wipe()
		s.session = nil
	}
}

func (s *Service) user() string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.userID
}

func newWallet(mnemonic []string) (*hdwallet.Wallet, error) {
	w, err := hdwallet.NewWalletFromMnemonic(hdwallet.NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
	})
	if err != nil {
		return nil, domain.ErrInvalidMnemonic
	}
	return w, nil
}

// matchesAccounts returns whether w derives the address of every non
// custodial crypto account. At least one such account must exist.
func matchesAccounts(w *hdwallet.Wallet, accounts []domain.Account) bool {
	matched := 0
	for _, account := range accounts {
		if !account.IsNonCustodialCrypto() {
			continue
		}
		req, err := DeriveAccount(w, account.CurrencyCode, account.Network, account.Type)
		if err != nil || req.Address != account.Address() {
			return false
		}
		matched++
	}
	return matched > 0
}
