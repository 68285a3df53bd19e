package application

import (
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	dbbadger "github.com/zumo-network/zumokit-core/internal/infrastructure/storage/db/badger"
	"github.com/zumo-network/zumokit-core/internal/infrastructure/storage/db/inmemory"
)

const (
	DBInMemory = "inmemory"
	DBBadger   = "badger"
)

var (
	SupportedDBType = map[string]struct{}{
		DBInMemory: {},
		DBBadger:   {},
	}
)

// RealtimeFactory returns a realtime channel delivering every frame to the
// given handler
type RealtimeFactory func(handler ports.MessageHandler) ports.RealtimeChannel

type Config struct {
	// DBType is the local vault cache, one of SupportedDBType.
	DBType string
	// DBConfig is the data directory of the badger store.
	DBConfig interface{}

	BtcNetwork domain.Network
	EthNetwork domain.Network
	// KeyCost is the scrypt cost exponent of the vault encryption key.
	KeyCost uint8

	Backend  ports.BackendService
	Realtime RealtimeFactory
	Clock    ports.Clock

	repo ports.RepoManager
}

func (c *Config) Validate() error {
	if c.Backend == nil {
		return fmt.Errorf("missing backend service")
	}
	if c.Realtime == nil {
		return fmt.Errorf("missing realtime channel factory")
	}
	if _, ok := SupportedDBType[c.DBType]; !ok {
		return fmt.Errorf("db type %s not supported", c.DBType)
	}
	if !domain.CurrencyBTC.SupportsNetwork(c.BtcNetwork) {
		return fmt.Errorf("unsupported btc network %s", c.BtcNetwork)
	}
	if !domain.CurrencyETH.SupportsNetwork(c.EthNetwork) {
		return fmt.Errorf("unsupported eth network %s", c.EthNetwork)
	}
	if _, err := c.repoManager(); err != nil {
		return err
	}
	return nil
}

func (c *Config) RepoManager() ports.RepoManager {
	repo, _ := c.repoManager()
	return repo
}

func (c *Config) clock() ports.Clock {
	if c.Clock == nil {
		return systemClock{}
	}
	return c.Clock
}

func (c *Config) repoManager() (ports.RepoManager, error) {
	if c.repo == nil {
		switch c.DBType {
		case DBBadger:
			datadir, _ := c.DBConfig.(string)
			repoManager, err := dbbadger.NewRepoManager(datadir, log.New())
			if err != nil {
				return nil, err
			}
			c.repo = repoManager
		default:
			c.repo = inmemory.NewRepoManager()
		}
	}
	return c.repo, nil
}

type systemClock struct{}

func (systemClock) Now() time.Time {
	return time.Now()
}
