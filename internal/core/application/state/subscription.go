package state

import (
	"sync"

	log "github.com/sirupsen/logrus"
	"github.com/zumo-network/zumokit-core/pkg/stats"
)

// Subscription is the handle returned by Subscribe. Closing it removes the
// listener; it's safe to close it more than once.
type Subscription struct {
	id       uint64
	listener Listener
	store    *Store
	once     sync.Once
}

func (s *Subscription) Close() {
	s.once.Do(func() {
		s.store.unsubscribe(s.id)
	})
}

// Subscribe registers a listener notified after every committed change
func (s *Store) Subscribe(listener Listener) *Subscription {
	s.listenersLock.Lock()
	defer s.listenersLock.Unlock()

	s.nextID++
	sub := &Subscription{id: s.nextID, listener: listener, store: s}
	s.listeners = append(s.listeners, sub)
	return sub
}

func (s *Store) unsubscribe(id uint64) {
	s.listenersLock.Lock()
	defer s.listenersLock.Unlock()

	for i, sub := range s.listeners {
		if sub.id == id {
			s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
			return
		}
	}
}

func (s *Store) notify(change Change) {
	s.listenersLock.Lock()
	listeners := make([]*Subscription, len(s.listeners))
	copy(listeners, s.listeners)
	s.listenersLock.Unlock()

	for _, sub := range listeners {
		callListener(sub.listener, change)
	}
}

// callListener isolates the store from a failing listener
func callListener(listener Listener, change Change) {
	defer func() {
		if r := recover(); r != nil {
			stats.ListenerPanics.Inc()
			log.Warnf("state: recovered from panic in listener: %v", r)
		}
	}()
	listener(change)
}
