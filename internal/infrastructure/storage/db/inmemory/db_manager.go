package inmemory

import (
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
)

type RepoManager struct {
	vaultRepository domain.VaultRepository
}

func NewRepoManager() ports.RepoManager {
	return &RepoManager{
		vaultRepository: NewVaultRepositoryImpl(),
	}
}

func (d *RepoManager) VaultRepository() domain.VaultRepository {
	return d.vaultRepository
}

func (d *RepoManager) Close() {}
