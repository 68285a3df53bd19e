package application

import (
	"context"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/internal/core/application/wallet"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/pkg/stats"
	hdwallet "github.com/zumo-network/zumokit-core/pkg/wallet"
)

var initOnce sync.Once

// Init registers the process wide metrics collectors. Only the first call
// has effect.
func Init() {
	initOnce.Do(func() {
		if err := stats.Register(prometheus.DefaultRegisterer); err != nil {
			log.WithError(err).Warn("failed to register metrics collectors")
		}
	})
}

// ZumoKit is the entry point of the library. It holds at most one signed in
// User at a time.
type ZumoKit struct {
	cfg *Config

	lock *sync.Mutex
	user *User
}

func NewZumoKit(cfg *Config) (*ZumoKit, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	Init()

	return &ZumoKit{
		cfg:  cfg,
		lock: &sync.Mutex{},
	}, nil
}

// SignIn authenticates the user identified by the access token, loads its
// accounts, fee rates and trading pairs and opens the realtime channel.
// Signing in the same user again only refreshes the access token of the
// backend and of the realtime channel.
func (z *ZumoKit) SignIn(ctx context.Context, tokens domain.TokenSet) (*User, error) {
	claims, err := parseAccessToken(tokens.AccessToken, z.cfg.clock().Now())
	if err != nil {
		return nil, err
	}

	z.lock.Lock()
	defer z.lock.Unlock()

	if z.user != nil {
		if z.user.ID() == claims.userID {
			z.cfg.Backend.SetAccessToken(tokens.AccessToken)
			if err := z.user.realtime.Connect(ctx, tokens.AccessToken); err != nil {
				return nil, err
			}
			return z.user, nil
		}
		z.signOut()
	}

	z.cfg.Backend.SetAccessToken(tokens.AccessToken)

	user, err := newUser(claims.userID, z.cfg)
	if err != nil {
		return nil, err
	}
	if err := user.load(ctx); err != nil {
		z.cfg.Backend.SetAccessToken("")
		return nil, err
	}
	if err := user.realtime.Connect(ctx, tokens.AccessToken); err != nil {
		z.cfg.Backend.SetAccessToken("")
		return nil, err
	}

	z.user = user
	log.WithField("user", claims.userID).Info("user signed in")
	return user, nil
}

// SignOut closes the realtime channel and locks the wallet of the signed in
// user, if any
func (z *ZumoKit) SignOut() {
	z.lock.Lock()
	defer z.lock.Unlock()

	z.signOut()
}

// CurrentUser returns the signed in user, if any
func (z *ZumoKit) CurrentUser() (*User, bool) {
	z.lock.Lock()
	defer z.lock.Unlock()

	return z.user, z.user != nil
}

// Close signs out and releases the local storage and backend resources
func (z *ZumoKit) Close() {
	z.SignOut()
	z.cfg.RepoManager().Close()
	z.cfg.Backend.Close()
}

// GenerateMnemonic returns a new random BIP39 mnemonic of wordCount words
func (z *ZumoKit) GenerateMnemonic(wordCount int) ([]string, error) {
	mnemonic, err := hdwallet.NewMnemonic(hdwallet.NewMnemonicOpts{
		WordCount: wordCount,
	})
	if err != nil {
		return nil, domain.ErrInvalidArgument.WithMessage("%s", err)
	}
	return mnemonic, nil
}

// IsValidAddress returns whether address is a valid destination for the
// given currency and network
func (z *ZumoKit) IsValidAddress(
	currency domain.CurrencyCode, address string, network domain.Network,
) bool {
	return wallet.IsValidAddress(currency, address, network)
}

func (z *ZumoKit) signOut() {
	if z.user == nil {
		return
	}
	z.user.close()
	z.cfg.Backend.SetAccessToken("")

	log.WithField("user", z.user.ID()).Info("user signed out")
	z.user = nil
}
