package overlay

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/dshills/statusicons/internal/config/notify"
	"github.com/dshills/statusicons/internal/event"
	"github.com/dshills/statusicons/internal/metrics"
	"github.com/dshills/statusicons/internal/vcs"
)

// Redraw sources reported to metrics.
const (
	SourceStatus    = "status"
	SourceSettings  = "settings"
	SourceCoalesced = "coalesced"
)

// SettingsNotifier is the change stream of the settings store.
type SettingsNotifier interface {
	Subscribe(observer notify.Observer) *notify.Subscription
}

// Broker repaints every registered view when a status fetch completes or
// a setting changes. It is created once at startup and closed explicitly.
type Broker struct {
	mu       sync.Mutex
	views    []Repainter
	coalesce bool
	pending  bool // a repaint is out and not yet acknowledged
	dirty    bool // a notification arrived while pending
	closed   bool

	bus    event.Bus
	busSub event.Subscription
	cfgSub *notify.Subscription
	log    *zap.Logger
}

// BrokerOption configures a Broker.
type BrokerOption func(*Broker)

// WithCoalescing collapses notifications into a single repaint until the
// host calls FrameDone. Notifications arriving before FrameDone are owed
// one more repaint, issued by FrameDone.
func WithCoalescing() BrokerOption {
	return func(b *Broker) {
		b.coalesce = true
	}
}

// WithBrokerLogger sets the logger.
func WithBrokerLogger(l *zap.Logger) BrokerOption {
	return func(b *Broker) {
		if l != nil {
			b.log = l
		}
	}
}

// NewBroker subscribes to status events on bus and to settings changes.
// Either source may be nil.
func NewBroker(bus event.Bus, settings SettingsNotifier, views []Repainter, opts ...BrokerOption) (*Broker, error) {
	b := &Broker{
		views: append([]Repainter(nil), views...),
		bus:   bus,
		log:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}

	if bus != nil {
		sub, err := bus.SubscribeFunc(vcs.TopicStatusAll, func(context.Context, any) error {
			b.fire(SourceStatus)
			return nil
		})
		if err != nil {
			return nil, err
		}
		b.busSub = sub
	}
	if settings != nil {
		b.cfgSub = settings.Subscribe(func(notify.Change) {
			b.fire(SourceSettings)
		})
	}
	return b, nil
}

// Refresh repaints all views as if a notification had arrived.
func (b *Broker) Refresh() {
	b.fire(SourceSettings)
}

// FrameDone tells a coalescing broker that the last repaint was drawn.
// If anything was notified since that repaint was issued, the views are
// repainted once more.
func (b *Broker) FrameDone() {
	b.mu.Lock()
	if !b.dirty || b.closed {
		b.pending, b.dirty = false, false
		b.mu.Unlock()
		return
	}
	b.dirty = false
	views := b.views
	b.mu.Unlock()

	b.repaint(SourceCoalesced, views)
}

func (b *Broker) fire(source string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	if b.coalesce && b.pending {
		b.dirty = true
		b.mu.Unlock()
		return
	}
	b.pending = true
	views := b.views
	b.mu.Unlock()

	b.repaint(source, views)
}

func (b *Broker) repaint(source string, views []Repainter) {
	metrics.RecordRedraw(source)
	for _, v := range views {
		v.Repaint()
	}
}

// Close unsubscribes from both streams. Later notifications are ignored.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if b.cfgSub != nil {
		b.cfgSub.Unsubscribe()
	}
	var err error
	if b.busSub != nil {
		err = b.bus.Unsubscribe(b.busSub)
		if errors.Is(err, event.ErrSubscriptionNotFound) {
			err = nil
		}
	}
	b.log.Debug("refresh broker closed")
	return err
}
