package domain

import (
	"context"
	"errors"
)

var (
	// ErrVaultNotFound is returned by repositories when no vault is stored
	// for a user
	ErrVaultNotFound = errors.New("vault not found")
)

// VaultRepository is the abstraction for any kind of database intended to
// persist encrypted Vaults.
type VaultRepository interface {
	// GetVault returns the vault of the user or ErrVaultNotFound.
	GetVault(ctx context.Context, userID string) (*Vault, error)
	// AddVault stores a new vault, failing if one exists for the same user.
	AddVault(ctx context.Context, vault *Vault) error
	// UpdateVault allows to commit multiple changes to the same vault in a
	// transactional way.
	UpdateVault(
		ctx context.Context,
		userID string,
		updateFn func(v *Vault) (*Vault, error),
	) error
	// DeleteVault removes the vault of the user, if any.
	DeleteVault(ctx context.Context, userID string) error
}
