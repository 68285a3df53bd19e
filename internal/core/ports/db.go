package ports

import "github.com/zumo-network/zumokit-core/internal/core/domain"

// RepoManager interface defines the repositories used for local storage.
type RepoManager interface {
	VaultRepository() domain.VaultRepository
	Close()
}
