// Package notify delivers order events to outside channels. Delivery is
// best effort: failures are logged and counted, never returned to checkout.
package notify

import (
	"context"
	"sort"
	"sync"

	"streetkitchen/metrics"
	"streetkitchen/models"

	log "github.com/sirupsen/logrus"
)

// Notifier is one delivery channel.
type Notifier interface {
	OrderPlaced(ctx context.Context, ev models.OrderEvent) error
}

// selfGuarded channels keep their own circuit breakers, usually one per
// destination. Fanout calls them directly and reports their circuits.
type selfGuarded interface {
	Circuits() map[string]string
}

type channel struct {
	name string
	n    Notifier
	cb   *CircuitBreaker
}

// Fanout sends every event to all registered channels in parallel, each
// behind its own circuit breaker.
type Fanout struct {
	mu       sync.RWMutex
	channels []channel
}

func NewFanout() *Fanout {
	return &Fanout{}
}

// Add registers n under name. Nil notifiers are ignored so optional
// channels can be passed straight from config.
func (f *Fanout) Add(name string, n Notifier) {
	if n == nil {
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	ch := channel{name: name, n: n}
	if _, ok := n.(selfGuarded); !ok {
		ch.cb = NewCircuitBreaker("notify_" + name)
	}
	f.channels = append(f.channels, ch)
}

func (f *Fanout) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.channels)
}

// OrderPlaced always returns nil.
func (f *Fanout) OrderPlaced(ctx context.Context, ev models.OrderEvent) error {
	f.mu.RLock()
	channels := append([]channel(nil), f.channels...)
	f.mu.RUnlock()

	var wg sync.WaitGroup
	for _, ch := range channels {
		wg.Add(1)
		go func(ch channel) {
			defer wg.Done()
			var err error
			if ch.cb != nil {
				err = ch.cb.Run(func() error { return ch.n.OrderPlaced(ctx, ev) })
			} else {
				err = ch.n.OrderPlaced(ctx, ev)
			}
			if err != nil {
				metrics.NotificationsTotal.WithLabelValues(ch.name, "failed").Inc()
				log.WithError(err).WithFields(log.Fields{
					"channel":  ch.name,
					"order_id": ev.Order.ID,
				}).Warn("Notification failed")
				return
			}
			metrics.NotificationsTotal.WithLabelValues(ch.name, "sent").Inc()
		}(ch)
	}
	wg.Wait()
	return nil
}

// States returns the circuit state of every channel, keyed by channel name.
// Self-guarded channels contribute one entry per destination, keyed
// "<channel>:<destination>".
func (f *Fanout) States() map[string]string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	out := make(map[string]string, len(f.channels))
	for _, ch := range f.channels {
		if ch.cb != nil {
			out[ch.name] = ch.cb.StateName()
			continue
		}
		for dest, state := range ch.n.(selfGuarded).Circuits() {
			out[ch.name+":"+dest] = state
		}
	}
	return out
}

// Names lists the registered channels in sorted order.
func (f *Fanout) Names() []string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	names := make([]string, 0, len(f.channels))
	for _, ch := range f.channels {
		names = append(names, ch.name)
	}
	sort.Strings(names)
	return names
}
