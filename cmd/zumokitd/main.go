package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/config"
	"github.com/zumo-network/zumokit-core/internal/core/application"
	"github.com/zumo-network/zumokit-core/internal/core/application/state"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	httpbackend "github.com/zumo-network/zumokit-core/internal/infrastructure/backend/http"
	wsrealtime "github.com/zumo-network/zumokit-core/internal/infrastructure/realtime/websocket"
	"github.com/zumo-network/zumokit-core/pkg/stats"
)

const signInTimeout = time.Minute

func main() {
	if err := config.InitConfig(); err != nil {
		log.WithError(err).Fatal("failed to initialize config")
	}
	log.SetLevel(log.Level(config.GetInt(config.LogLevelKey)))

	ctx, cancelStats := context.WithCancel(context.Background())
	defer cancelStats()
	if interval := config.GetInt(config.StatsIntervalKey); interval > 0 {
		stats.EnableMemoryStatistics(ctx, time.Duration(interval)*time.Second)
	}

	backend, err := httpbackend.NewService(httpbackend.Config{
		APIURL:         config.GetString(config.APIURLKey),
		RequestTimeout: config.GetMilliseconds(config.RequestTimeoutKey),
		RateLimit:      config.GetInt(config.RequestRateLimitKey),
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize backend service")
	}

	realtimeCfg := wsrealtime.Config{
		URL:                  config.GetString(config.WSURLKey),
		PingInterval:         config.GetMilliseconds(config.PingIntervalKey),
		MinReconnectInterval: config.GetMilliseconds(config.ReconnectMinIntervalKey),
		MaxReconnectInterval: config.GetMilliseconds(config.ReconnectMaxIntervalKey),
	}
	if err := realtimeCfg.Validate(); err != nil {
		log.WithError(err).Fatal("invalid realtime channel config")
	}

	zumokit, err := application.NewZumoKit(&application.Config{
		DBType:     config.GetString(config.DBTypeKey),
		DBConfig:   config.GetDBDir(),
		BtcNetwork: config.GetBtcNetwork(),
		EthNetwork: config.GetEthNetwork(),
		KeyCost:    uint8(config.GetInt(config.KeyCostKey)),
		Backend:    backend,
		Realtime: func(handler ports.MessageHandler) ports.RealtimeChannel {
			return wsrealtime.NewChannel(realtimeCfg, handler)
		},
	})
	if err != nil {
		log.WithError(err).Fatal("failed to initialize zumokit")
	}
	defer zumokit.Close()

	metricsServer := &http.Server{
		Addr:    config.GetString(config.MetricsAddressKey),
		Handler: newMetricsHandler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil &&
			!errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("failed to serve metrics")
		}
	}()
	log.Infof("metrics served on %s", metricsServer.Addr)

	signInCtx, cancel := context.WithTimeout(ctx, signInTimeout)
	user, err := zumokit.SignIn(signInCtx, config.GetTokenSet())
	cancel()
	if err != nil {
		log.WithError(err).Fatal("failed to sign in")
	}

	sub := user.Subscribe(func(change state.Change) {
		log.WithFields(log.Fields{
			"kind":    change.Kind,
			"account": change.AccountID,
		}).Debug("state updated")
	})
	defer sub.Close()

	log.Infof("user %s signed in with %d accounts", user.ID(), len(user.GetAccounts()))

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(
		context.Background(), 5*time.Second,
	)
	defer cancelShutdown()
	if err := metricsServer.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Warn("failed to stop metrics server")
	}
}

func newMetricsHandler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	return mux
}
