package submission

import (
	"sync"

	"github.com/zumo-network/zumokit-core/internal/core/domain"
)

type nonceState int

const (
	nonceInFlight nonceState = iota
	nonceConsumed
)

// NonceRegistry tracks the anti-replay nonces of composed transactions and
// exchanges. A nonce can be acquired only once unless released after a
// failed submission.
type NonceRegistry struct {
	lock   sync.Mutex
	nonces map[string]nonceState
}

func NewNonceRegistry() *NonceRegistry {
	return &NonceRegistry{nonces: make(map[string]nonceState)}
}

// Acquire marks the nonce as in flight, or returns ErrDuplicateNonce if it is
// already in flight or consumed
func (r *NonceRegistry) Acquire(nonce string) error {
	if len(nonce) <= 0 {
		return domain.ErrInvalidArgument.WithMessage("missing nonce")
	}

	r.lock.Lock()
	defer r.lock.Unlock()

	if state, ok := r.nonces[nonce]; ok {
		if state == nonceConsumed {
			return domain.ErrDuplicateNonce
		}
		return domain.ErrDuplicateNonce.WithMessage(
			"nonce %s is being submitted", nonce,
		)
	}
	r.nonces[nonce] = nonceInFlight
	return nil
}

// Consume marks the nonce as used for good
func (r *NonceRegistry) Consume(nonce string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	r.nonces[nonce] = nonceConsumed
}

// Release frees an in flight nonce so that it can be submitted again.
// Consumed nonces are never released.
func (r *NonceRegistry) Release(nonce string) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if state, ok := r.nonces[nonce]; ok && state == nonceInFlight {
		delete(r.nonces, nonce)
	}
}

// IsConsumed ...
func (r *NonceRegistry) IsConsumed(nonce string) bool {
	r.lock.Lock()
	defer r.lock.Unlock()

	state, ok := r.nonces[nonce]
	return ok && state == nonceConsumed
}
