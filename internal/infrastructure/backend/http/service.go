package httpbackend

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"github.com/zumo-network/zumokit-core/internal/core/domain"
	"github.com/zumo-network/zumokit-core/internal/core/ports"
	"github.com/zumo-network/zumokit-core/pkg/circuitbreaker"
	"go.uber.org/ratelimit"
)

const (
	DefaultRequestTimeout = 15 * time.Second
	// DefaultRateLimit is the max number of requests per second
	DefaultRateLimit = 20
)

var (
	// ErrMissingAPIURL ...
	ErrMissingAPIURL = fmt.Errorf("missing backend api url")
	// ErrInvalidRateLimit ...
	ErrInvalidRateLimit = fmt.Errorf("rate limit must not be negative")
)

type Config struct {
	APIURL         string
	RequestTimeout time.Duration
	// RateLimit is the max number of requests per second, 0 means unlimited.
	RateLimit int
}

func (c Config) validate() error {
	if len(c.APIURL) <= 0 {
		return ErrMissingAPIURL
	}
	if _, err := url.ParseRequestURI(c.APIURL); err != nil {
		return fmt.Errorf("invalid backend api url: %s", err)
	}
	if c.RateLimit < 0 {
		return ErrInvalidRateLimit
	}
	return nil
}

type service struct {
	client  *client
	cb      *gobreaker.CircuitBreaker
	limiter ratelimit.Limiter

	lock  *sync.RWMutex
	token string
}

// NewService returns a ports.BackendService talking to the REST api at
// cfg.APIURL. Calls are rate limited and go through a circuit breaker that
// trips on network failures only.
func NewService(cfg Config) (ports.BackendService, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	limiter := ratelimit.NewUnlimited()
	if cfg.RateLimit > 0 {
		limiter = ratelimit.New(cfg.RateLimit)
	}

	return &service{
		client:  newHTTPClient(cfg.APIURL, timeout),
		cb:      circuitbreaker.NewCircuitBreaker("backend", isSuccessful),
		limiter: limiter,
		lock:    &sync.RWMutex{},
	}, nil
}

func (s *service) Account() ports.AccountService {
	return accountService{s}
}

func (s *service) Transaction() ports.TransactionService {
	return transactionService{s}
}

func (s *service) Exchange() ports.ExchangeService {
	return exchangeService{s}
}

func (s *service) Card() ports.CardService {
	return cardService{s}
}

func (s *service) SetAccessToken(token string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.token = token
}

func (s *service) Close() {
	s.client.CloseIdleConnections()
}

func (s *service) accessToken() string {
	s.lock.RLock()
	defer s.lock.RUnlock()

	return s.token
}

func (s *service) call(ctx context.Context, req request, out interface{}) error {
	s.limiter.Take()
	req.token = s.accessToken()

	_, err := s.cb.Execute(func() (interface{}, error) {
		return nil, s.client.do(ctx, req, out)
	})
	if err == nil {
		return nil
	}

	if errors.Is(err, gobreaker.ErrOpenState) ||
		errors.Is(err, gobreaker.ErrTooManyRequests) {
		return domain.ErrNetwork.Wrap(err)
	}

	log.WithError(err).WithFields(log.Fields{
		"method": req.method,
		"path":   req.path,
	}).Debug("backend request failed")
	return err
}

func (s *service) get(
	ctx context.Context, path string, query url.Values, out interface{},
) error {
	return s.call(ctx, request{method: "GET", path: path, query: query}, out)
}

func (s *service) post(
	ctx context.Context, path string, body, out interface{},
) error {
	return s.call(ctx, request{method: "POST", path: path, body: body}, out)
}

func (s *service) put(
	ctx context.Context, path string, body, out interface{},
) error {
	return s.call(ctx, request{method: "PUT", path: path, body: body}, out)
}

// isSuccessful tells the breaker to count only network failures, since any
// other rejection proves the backend is reachable.
func isSuccessful(err error) bool {
	return err == nil || !domain.IsType(err, domain.NetworkError)
}
