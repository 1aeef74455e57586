package overlay

import (
	"context"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/statusicons/internal/config/notify"
	"github.com/dshills/statusicons/internal/event"
	"github.com/dshills/statusicons/internal/vcs"
)

type countingView struct {
	n atomic.Int32
}

func (v *countingView) Repaint() { v.n.Add(1) }

func (v *countingView) count() int { return int(v.n.Load()) }

func newBrokerFixture(t *testing.T, opts ...BrokerOption) (event.Bus, *notify.Notifier, *Broker, *countingView, *countingView) {
	t.Helper()
	bus := event.NewBus()
	settings := notify.New()
	project, hierarchy := &countingView{}, &countingView{}
	b, err := NewBroker(bus, settings, []Repainter{project, hierarchy}, opts...)
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = b.Close()
		settings.Close()
		bus.Close()
	})
	return bus, settings, b, project, hierarchy
}

func TestBrokerRepaintsOnStatusCompleted(t *testing.T) {
	bus, _, _, project, hierarchy := newBrokerFixture(t)

	err := bus.Publish(context.Background(), vcs.StatusCompleted{Tier: vcs.TierLocal, Paths: []string{"a"}})
	require.NoError(t, err)

	assert.Equal(t, 1, project.count())
	assert.Equal(t, 1, hierarchy.count())
}

func TestBrokerRepaintsOnInvalidation(t *testing.T) {
	bus, _, _, project, _ := newBrokerFixture(t)
	require.NoError(t, bus.Publish(context.Background(), vcs.StatusInvalidated{}))
	assert.Equal(t, 1, project.count())
}

func TestBrokerIgnoresOtherTopics(t *testing.T) {
	bus, _, _, project, _ := newBrokerFixture(t)
	require.NoError(t, bus.Publish(context.Background(), event.Envelope{Topic: "config.changed"}))
	assert.Zero(t, project.count())
}

func TestBrokerRepaintsOnSettingsChange(t *testing.T) {
	_, settings, _, project, hierarchy := newBrokerFixture(t)

	settings.NotifySet("enabled", true, false, "runtime")

	assert.Equal(t, 1, project.count())
	assert.Equal(t, 1, hierarchy.count())
}

func TestBrokerCoalescing(t *testing.T) {
	bus, settings, b, project, _ := newBrokerFixture(t, WithCoalescing())
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, bus.Publish(ctx, vcs.StatusCompleted{Tier: vcs.TierLocal}))
	}
	settings.NotifyReload("file")
	assert.Equal(t, 1, project.count())

	// The burst after the first repaint is owed one more.
	b.FrameDone()
	assert.Equal(t, 2, project.count())
	b.FrameDone()
	assert.Equal(t, 2, project.count())

	require.NoError(t, bus.Publish(ctx, vcs.StatusCompleted{Tier: vcs.TierRemote}))
	assert.Equal(t, 3, project.count())
}

func TestBrokerCoalescingCompletionDuringFrame(t *testing.T) {
	bus, _, b, project, hierarchy := newBrokerFixture(t, WithCoalescing())
	ctx := context.Background()

	require.NoError(t, bus.Publish(ctx, vcs.StatusCompleted{Tier: vcs.TierLocal, Paths: []string{"a.txt"}}))
	assert.Equal(t, 1, project.count())

	// Lands after the repaint was issued but before the frame is shown.
	require.NoError(t, bus.Publish(ctx, vcs.StatusCompleted{Tier: vcs.TierLocal, Paths: []string{"b.txt"}}))
	assert.Equal(t, 1, project.count())

	b.FrameDone()
	assert.Equal(t, 2, project.count())
	assert.Equal(t, 2, hierarchy.count())

	b.FrameDone()
	assert.Equal(t, 2, project.count())
}

func TestBrokerFrameDoneWithoutNotification(t *testing.T) {
	_, _, b, project, _ := newBrokerFixture(t, WithCoalescing())
	b.FrameDone()
	assert.Zero(t, project.count())
}

func TestBrokerWithoutCoalescingRepaintsEveryTime(t *testing.T) {
	bus, _, _, project, _ := newBrokerFixture(t)
	for i := 0; i < 3; i++ {
		require.NoError(t, bus.Publish(context.Background(), vcs.StatusCompleted{}))
	}
	assert.Equal(t, 3, project.count())
}

func TestBrokerRefresh(t *testing.T) {
	_, _, b, project, hierarchy := newBrokerFixture(t)
	b.Refresh()
	assert.Equal(t, 1, project.count())
	assert.Equal(t, 1, hierarchy.count())
}

func TestBrokerClose(t *testing.T) {
	bus, settings, b, project, _ := newBrokerFixture(t)

	require.NoError(t, b.Close())
	require.NoError(t, b.Close())

	require.NoError(t, bus.Publish(context.Background(), vcs.StatusCompleted{}))
	settings.NotifySet("enabled", true, false, "runtime")
	b.Refresh()
	assert.Zero(t, project.count())
}

func TestBrokerNilSources(t *testing.T) {
	view := &countingView{}
	b, err := NewBroker(nil, nil, []Repainter{view, RepainterFunc(func() {})})
	require.NoError(t, err)
	b.Refresh()
	assert.Equal(t, 1, view.count())
	assert.NoError(t, b.Close())
}
