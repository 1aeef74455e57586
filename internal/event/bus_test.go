package event

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTopicMatches(t *testing.T) {
	tests := []struct {
		topic   Topic
		pattern Topic
		want    bool
	}{
		{"vcs.status.completed", "vcs.status.completed", true},
		{"vcs.status.completed", "vcs.*.completed", true},
		{"vcs.status.completed", "vcs.**", true},
		{"vcs.status.completed", "vcs.*", false},
		{"vcs.status", "vcs.status.completed", false},
		{"config.changed", "vcs.**", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.topic)+"~"+string(tt.pattern), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.topic.Matches(tt.pattern))
		})
	}
}

func TestTopicIsValid(t *testing.T) {
	assert.True(t, Topic("a.b").IsValid())
	assert.False(t, Topic("").IsValid())
	assert.False(t, Topic("a..b").IsValid())
	assert.False(t, Topic(".a").IsValid())
}

func TestBusPublishSubscribe(t *testing.T) {
	b := NewBus()
	ctx := context.Background()

	var got []any
	sub, err := b.SubscribeFunc("vcs.**", func(_ context.Context, ev any) error {
		got = append(got, ev)
		return nil
	})
	require.NoError(t, err)
	assert.True(t, sub.IsActive())
	assert.NotEmpty(t, sub.ID())

	require.NoError(t, b.Publish(ctx, Envelope{Topic: "vcs.status.completed", Payload: 1}))
	require.NoError(t, b.Publish(ctx, Envelope{Topic: "config.changed"}))
	assert.Len(t, got, 1)

	require.NoError(t, b.Unsubscribe(sub))
	assert.False(t, sub.IsActive())
	require.NoError(t, b.Publish(ctx, Envelope{Topic: "vcs.status.completed"}))
	assert.Len(t, got, 1)

	assert.ErrorIs(t, b.Unsubscribe(sub), ErrSubscriptionNotFound)
}

func TestBusHandlerFailuresDoNotStopDelivery(t *testing.T) {
	b := NewBus()
	boom := errors.New("boom")

	calls := 0
	_, err := b.SubscribeFunc("a", func(context.Context, any) error { panic("bad handler") })
	require.NoError(t, err)
	_, err = b.SubscribeFunc("a", func(context.Context, any) error { return boom })
	require.NoError(t, err)
	_, err = b.SubscribeFunc("a", func(context.Context, any) error { calls++; return nil })
	require.NoError(t, err)

	err = b.Publish(context.Background(), Envelope{Topic: "a"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHandlerPanic)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, 1, calls)
}

func TestBusValidation(t *testing.T) {
	b := NewBus()

	_, err := b.Subscribe("a", nil)
	assert.ErrorIs(t, err, ErrNilHandler)

	_, err = b.SubscribeFunc("", func(context.Context, any) error { return nil })
	assert.ErrorIs(t, err, ErrInvalidTopic)

	assert.ErrorIs(t, b.Publish(context.Background(), "no topic"), ErrInvalidEvent)
	assert.ErrorIs(t, b.Unsubscribe(nil), ErrInvalidSubscription)
}

func TestBusClose(t *testing.T) {
	b := NewBus()
	sub, err := b.SubscribeFunc("a", func(context.Context, any) error { return nil })
	require.NoError(t, err)

	b.Close()
	assert.False(t, sub.IsActive())
	assert.ErrorIs(t, b.Publish(context.Background(), Envelope{Topic: "a"}), ErrBusClosed)

	_, err = b.SubscribeFunc("a", func(context.Context, any) error { return nil })
	assert.ErrorIs(t, err, ErrBusClosed)
}
