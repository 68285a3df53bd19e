package dbbadger

import (
	"context"
	"fmt"
	"sync"

	"github.com/timshannon/badgerhold/v4"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

// vault is the persisted form of domain.Vault
type vault struct {
	UserID            string
	EncryptedMnemonic string
	KeyCost           uint8
}

type vaultRepositoryImpl struct {
	store *badgerhold.Store
	lock  *sync.Mutex
}

func NewVaultRepositoryImpl(store *badgerhold.Store) domain.VaultRepository {
	return &vaultRepositoryImpl{store, &sync.Mutex{}}
}

func (r *vaultRepositoryImpl) GetVault(
	_ context.Context, userID string,
) (*domain.Vault, error) {
	return r.getVault(userID)
}

func (r *vaultRepositoryImpl) AddVault(_ context.Context, v *domain.Vault) error {
	if v == nil || len(v.UserID) <= 0 {
		return fmt.Errorf("missing vault user id")
	}

	if err := r.store.Insert(v.UserID, toVault(v)); err != nil {
		if err == badgerhold.ErrKeyExists {
			return fmt.Errorf("vault already exists for user %s", v.UserID)
		}
		return err
	}
	return nil
}

func (r *vaultRepositoryImpl) UpdateVault(
	_ context.Context, userID string,
	updateFn func(v *domain.Vault) (*domain.Vault, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	v, err := r.getVault(userID)
	if err != nil {
		return err
	}

	updatedVault, err := updateFn(v)
	if err != nil {
		return err
	}

	return r.store.Update(userID, toVault(updatedVault))
}

func (r *vaultRepositoryImpl) DeleteVault(_ context.Context, userID string) error {
	if err := r.store.Delete(userID, vault{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil
		}
		return err
	}
	return nil
}

func (r *vaultRepositoryImpl) getVault(userID string) (*domain.Vault, error) {
	var v vault
	if err := r.store.Get(userID, &v); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrVaultNotFound
		}
		return nil, err
	}

	return &domain.Vault{
		UserID:            v.UserID,
		EncryptedMnemonic: v.EncryptedMnemonic,
		KeyCost:           v.KeyCost,
	}, nil
}

func toVault(v *domain.Vault) vault {
	return vault{
		UserID:            v.UserID,
		EncryptedMnemonic: v.EncryptedMnemonic,
		KeyCost:           v.KeyCost,
	}
}
