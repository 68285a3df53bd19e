package dbbadger

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger/v3"
	"github.com/dgraph-io/badger/v3/options"
	log "github.com/sirupsen/logrus"
	"github.com/timshannon/badgerhold/v4"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
)

const gcInterval = 30 * time.Minute

type repoManager struct {
	store     *badgerhold.Store
	vaultRepo domain.VaultRepository
	quitGC    chan struct{}
}

// NewRepoManager opens (or creates if not exists) the badger store in the
// given directory. The store is kept in memory if baseDbDir is empty.
func NewRepoManager(baseDbDir string, logger badger.Logger) (ports.RepoManager, error) {
	var dbDir string
	if len(baseDbDir) > 0 {
		dbDir = filepath.Join(baseDbDir, "vault")
	}

	store, err := createDb(dbDir, logger)
	if err != nil {
		return nil, fmt.Errorf("opening vault db: %w", err)
	}

	quitGC := make(chan struct{})
	if len(dbDir) > 0 {
		go runValueLogGC(store, quitGC)
	}

	return &repoManager{
		store:     store,
		vaultRepo: NewVaultRepositoryImpl(store),
		quitGC:    quitGC,
	}, nil
}

func (m *repoManager) VaultRepository() domain.VaultRepository {
	return m.vaultRepo
}

func (m *repoManager) Close() {
	close(m.quitGC)
	m.store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	isInMemory := len(dbDir) <= 0

	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	if isInMemory {
		opts.InMemory = true
	} else {
		opts.Compression = options.ZSTD
	}

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}

func runValueLogGC(store *badgerhold.Store, quit chan struct{}) {
	ticker := time.NewTicker(gcInterval)
	defer ticker.Stop()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			if err := store.Badger().RunValueLogGC(0.5); err != nil &&
				err != badger.ErrNoRewrite {
				log.Error(err)
			}
		}
	}
}
