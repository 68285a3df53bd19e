package inmemory

import (
	"context"
	"fmt"
	"sync"

	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

// VaultRepositoryImpl represents an in memory storage
type VaultRepositoryImpl struct {
	vaults map[string]domain.Vault
	locker *sync.Mutex
}

// NewVaultRepositoryImpl returns a new empty VaultRepositoryImpl
func NewVaultRepositoryImpl() domain.VaultRepository {
	return &VaultRepositoryImpl{
		vaults: map[string]domain.Vault{},
		locker: &sync.Mutex{},
	}
}

func (r *VaultRepositoryImpl) GetVault(
	_ context.Context, userID string,
) (*domain.Vault, error) {
	r.locker.Lock()
	defer r.locker.Unlock()

	return r.getVault(userID)
}

func (r *VaultRepositoryImpl) AddVault(_ context.Context, vault *domain.Vault) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	if vault == nil || len(vault.UserID) <= 0 {
		return fmt.Errorf("missing vault user id")
	}
	if _, ok := r.vaults[vault.UserID]; ok {
		return fmt.Errorf("vault already exists for user %s", vault.UserID)
	}
	r.vaults[vault.UserID] = *vault
	return nil
}

// UpdateVault updates data to the Vault passing an update function
func (r *VaultRepositoryImpl) UpdateVault(
	_ context.Context, userID string,
	updateFn func(*domain.Vault) (*domain.Vault, error),
) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	vault, err := r.getVault(userID)
	if err != nil {
		return err
	}

	updatedVault, err := updateFn(vault)
	if err != nil {
		return err
	}

	r.vaults[userID] = *updatedVault
	return nil
}

func (r *VaultRepositoryImpl) DeleteVault(_ context.Context, userID string) error {
	r.locker.Lock()
	defer r.locker.Unlock()

	delete(r.vaults, userID)
	return nil
}

func (r *VaultRepositoryImpl) getVault(userID string) (*domain.Vault, error) {
	vault, ok := r.vaults[userID]
	if !ok {
		return nil, domain.ErrVaultNotFound
	}
	return &vault, nil
}
