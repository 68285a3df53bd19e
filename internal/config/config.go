package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/spf13/viper"
	"github.com/zumo-network/zumokit-core/internal/core/application"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

const (
	// APIURLKey is the base url of the backend REST api
	APIURLKey = "API_URL"
	// WSURLKey is the url of the realtime WebSocket service
	WSURLKey = "WS_URL"
	// BtcNetworkKey is the Bitcoin network of the crypto accounts, either
	// MAINNET or TESTNET
	BtcNetworkKey = "BTC_NETWORK"
	// EthNetworkKey is the Ethereum network of the crypto accounts
	EthNetworkKey = "ETH_NETWORK"
	// LogLevelKey are the different logging levels. For reference on the values https://godoc.org/github.com/sirupsen/logrus#Level
	LogLevelKey = "LOG_LEVEL"
	// DBTypeKey is used to switch the local vault cache between those supported
	DBTypeKey = "DB_TYPE"
	// DatadirKey is the local data directory where the vault cache is stored
	DatadirKey = "DATA_DIR_PATH"
	// RequestTimeoutKey are the milliseconds to wait for backend responses before timeouts
	RequestTimeoutKey = "REQUEST_TIMEOUT"
	// RequestRateLimitKey is the max number of backend requests per second
	RequestRateLimitKey = "REQUEST_RATE_LIMIT"
	// ReconnectMinIntervalKey is the first delay in milliseconds before
	// re-establishing a dropped realtime connection
	ReconnectMinIntervalKey = "RECONNECT_MIN_INTERVAL"
	// ReconnectMaxIntervalKey caps the delay between reconnection attempts
	ReconnectMaxIntervalKey = "RECONNECT_MAX_INTERVAL"
	// PingIntervalKey is the interval in milliseconds between pings on the
	// realtime channel
	PingIntervalKey = "PING_INTERVAL"
	// MetricsAddressKey is the <host:port> address where Prometheus metrics are served
	MetricsAddressKey = "METRICS_ADDRESS"
	// AccessTokenKey is the access token used to sign in
	AccessTokenKey = "ACCESS_TOKEN"
	// RefreshTokenKey ...
	RefreshTokenKey = "REFRESH_TOKEN"
	// KeyCostKey is the scrypt cost exponent used to encrypt the vault
	KeyCostKey = "KEY_COST"
	// StatsIntervalKey defines the interval in seconds for printing memory
	// statistics, 0 disables them
	StatsIntervalKey = "STATS_INTERVAL"

	DbLocation = "db"

	minKeyCost = 10
	maxKeyCost = 20
)

var vip *viper.Viper
var defaultDatadir = btcutil.AppDataDir("zumokit", false)

func InitConfig() error {
	vip = viper.New()
	vip.SetEnvPrefix("ZUMOKIT")
	vip.AutomaticEnv()

	vip.SetDefault(BtcNetworkKey, string(domain.NetworkMainnet))
	vip.SetDefault(EthNetworkKey, string(domain.NetworkMainnet))
	vip.SetDefault(LogLevelKey, 4)
	vip.SetDefault(DBTypeKey, application.DBBadger)
	vip.SetDefault(DatadirKey, defaultDatadir)
	vip.SetDefault(RequestTimeoutKey, 15000)
	vip.SetDefault(RequestRateLimitKey, 20)
	vip.SetDefault(ReconnectMinIntervalKey, 1000)
	vip.SetDefault(ReconnectMaxIntervalKey, 60000)
	vip.SetDefault(PingIntervalKey, 30000)
	vip.SetDefault(MetricsAddressKey, "localhost:9100")
	vip.SetDefault(KeyCostKey, 20)
	vip.SetDefault(StatsIntervalKey, 600)

	if err := validate(); err != nil {
		return fmt.Errorf("error while validating config: %s", err)
	}

	if err := initDatadir(); err != nil {
		return fmt.Errorf("error while creating datadir: %s", err)
	}

	return nil
}

func GetString(key string) string {
	return vip.GetString(key)
}

func GetInt(key string) int {
	return vip.GetInt(key)
}

func GetBool(key string) bool {
	return vip.GetBool(key)
}

// GetMilliseconds returns the value of key, expressed in milliseconds, as a
// duration
func GetMilliseconds(key string) time.Duration {
	return time.Duration(vip.GetInt64(key)) * time.Millisecond
}

func GetDatadir() string {
	return GetString(DatadirKey)
}

func GetDBDir() string {
	return filepath.Join(GetDatadir(), DbLocation)
}

func GetBtcNetwork() domain.Network {
	return domain.Network(GetString(BtcNetworkKey))
}

func GetEthNetwork() domain.Network {
	return domain.Network(GetString(EthNetworkKey))
}

func GetTokenSet() domain.TokenSet {
	return domain.TokenSet{
		AccessToken:  GetString(AccessTokenKey),
		RefreshToken: GetString(RefreshTokenKey),
	}
}

func validate() error {
	for _, key := range []string{APIURLKey, WSURLKey} {
		endpoint := GetString(key)
		if len(endpoint) <= 0 {
			return fmt.Errorf("missing %s", key)
		}
		if _, err := url.ParseRequestURI(endpoint); err != nil {
			return fmt.Errorf("%s is not a valid url: %s", key, err)
		}
	}

	if network := GetBtcNetwork(); !domain.CurrencyBTC.SupportsNetwork(network) {
		return fmt.Errorf("unsupported btc network %s", network)
	}
	if network := GetEthNetwork(); !domain.CurrencyETH.SupportsNetwork(network) {
		return fmt.Errorf("unsupported eth network %s", network)
	}

	dbType := GetString(DBTypeKey)
	if _, ok := application.SupportedDBType[dbType]; !ok {
		return fmt.Errorf("db type %s not supported", dbType)
	}
	if dbType == application.DBBadger && len(GetDatadir()) <= 0 {
		return fmt.Errorf("missing datadir")
	}

	for _, key := range []string{
		RequestTimeoutKey, ReconnectMinIntervalKey, ReconnectMaxIntervalKey,
		PingIntervalKey,
	} {
		if GetInt(key) <= 0 {
			return fmt.Errorf("%s must be a positive number of milliseconds", key)
		}
	}
	if GetInt(ReconnectMinIntervalKey) > GetInt(ReconnectMaxIntervalKey) {
		return fmt.Errorf(
			"%s must not exceed %s", ReconnectMinIntervalKey, ReconnectMaxIntervalKey,
		)
	}
	if GetInt(StatsIntervalKey) < 0 {
		return fmt.Errorf("%s must not be negative", StatsIntervalKey)
	}
	if GetInt(RequestRateLimitKey) < 0 {
		return fmt.Errorf("%s must not be negative", RequestRateLimitKey)
	}

	keyCost := GetInt(KeyCostKey)
	if keyCost < minKeyCost || keyCost > maxKeyCost {
		return fmt.Errorf(
			"%s must be in range [%d, %d]", KeyCostKey, minKeyCost, maxKeyCost,
		)
	}

	return nil
}

func initDatadir() error {
	if GetString(DBTypeKey) != application.DBBadger {
		return nil
	}
	return makeDirectoryIfNotExists(GetDBDir())
}

func makeDirectoryIfNotExists(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return os.MkdirAll(path, os.ModeDir|0755)
	}
	return nil
}
