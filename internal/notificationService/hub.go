package notification

import (
	"context"
	"sync"

	"github.com/smallnest/chanx"

	model "auction-manager/internal/models"
)

// Subscription is one live stream of a user's notifications. Slow readers
// never block the publisher: pending notifications queue up unbounded.
type Subscription struct {
	userID uint
	ch     *chanx.UnboundedChan[model.Notification]
	cancel context.CancelFunc
	hub    *Hub
	once   sync.Once
}

// C delivers the notifications; it is closed once the subscription ends
func (s *Subscription) C() <-chan model.Notification {
	return s.ch.Out
}

// Close detaches the subscription from the hub
func (s *Subscription) Close() {
	s.once.Do(func() {
		s.hub.remove(s)
		s.cancel()
	})
}

// Hub fans notifications out to the live subscriptions of each user
type Hub struct {
	mu     sync.RWMutex
	subs   map[uint]map[*Subscription]struct{}
	closed bool
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{subs: make(map[uint]map[*Subscription]struct{})}
}

// Subscribe opens a live stream for the given user
func (h *Hub) Subscribe(userID uint) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	sub := &Subscription{
		userID: userID,
		ch:     chanx.NewUnboundedChan[model.Notification](ctx, 16),
		cancel: cancel,
		hub:    h,
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		sub.once.Do(cancel)
		return sub
	}
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*Subscription]struct{})
	}
	h.subs[userID][sub] = struct{}{}
	return sub
}

// Publish delivers n to every subscription of its user and reports how many received it
func (h *Hub) Publish(n model.Notification) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for sub := range h.subs[n.UserID] {
		sub.ch.In <- n
	}
	return len(h.subs[n.UserID])
}

// Subscribers returns the number of open subscriptions of a user
func (h *Hub) Subscribers(userID uint) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// Close ends every subscription; later subscriptions are closed immediately
func (h *Hub) Close() {
	h.mu.Lock()
	var all []*Subscription
	for _, set := range h.subs {
		for sub := range set {
			all = append(all, sub)
		}
	}
	h.subs = make(map[uint]map[*Subscription]struct{})
	h.closed = true
	h.mu.Unlock()

	for _, sub := range all {
		sub.Close()
	}
}

func (h *Hub) remove(sub *Subscription) {
	h.mu.Lock()
	defer h.mu.Unlock()
	set := h.subs[sub.userID]
	delete(set, sub)
	if len(set) == 0 {
		delete(h.subs, sub.userID)
	}
}
