package usecase

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func eventPayload(t *testing.T, event ChangeEvent) []byte {
	t.Helper()
	data, err := json.Marshal(event)
	require.NoError(t, err)
	return data
}

func TestChangeListener_Handle_InvokesCallback(t *testing.T) {
	var received []ChangeEvent
	listener := NewChangeListener(new(MockConfigCache), func(event ChangeEvent) {
		received = append(received, event)
	})

	listener.handle(eventPayload(t, ChangeEvent{
		Action: "set", Sequence: 1, Section: "app", Key: "log_level", Version: 1,
	}))
	listener.handle(eventPayload(t, ChangeEvent{
		Action: "set", Sequence: 2, Section: "app", Key: "log_level", Version: 2,
	}))

	require.Len(t, received, 2)
	assert.Equal(t, int64(1), received[0].Sequence)
	assert.Equal(t, int64(2), received[1].Sequence)
}

func TestChangeListener_Handle_DropsRedeliveredEvents(t *testing.T) {
	var received []ChangeEvent
	listener := NewChangeListener(new(MockConfigCache), func(event ChangeEvent) {
		received = append(received, event)
	})

	payload := eventPayload(t, ChangeEvent{
		Action: "set", Sequence: 5, Section: "app", Key: "log_level", Version: 3,
	})
	listener.handle(payload)
	listener.handle(payload) // at-least-once の再配信
	listener.handle(eventPayload(t, ChangeEvent{
		Action: "set", Sequence: 4, Section: "app", Key: "log_level", Version: 2,
	})) // 追い越された古いイベント

	assert.Len(t, received, 1)
}

func TestChangeListener_Handle_TracksSequencePerIdentity(t *testing.T) {
	var received []ChangeEvent
	listener := NewChangeListener(new(MockConfigCache), func(event ChangeEvent) {
		received = append(received, event)
	})

	listener.handle(eventPayload(t, ChangeEvent{Action: "set", Sequence: 5, Section: "app", Key: "a"}))
	// 別識別子なら小さいシーケンスでも捨てない
	listener.handle(eventPayload(t, ChangeEvent{Action: "set", Sequence: 3, Section: "app", Key: "b"}))

	assert.Len(t, received, 2)
}

func TestChangeListener_Handle_MalformedPayloadIgnored(t *testing.T) {
	called := false
	listener := NewChangeListener(new(MockConfigCache), func(event ChangeEvent) {
		called = true
	})

	listener.handle([]byte(`{not json`))

	assert.False(t, called)
}

func TestChangeListener_Run_StopsOnContextCancel(t *testing.T) {
	mockCache := new(MockConfigCache)
	events := make(chan []byte)
	unsubscribed := false
	mockCache.On("Subscribe", mock.Anything).Return(events, func() { unsubscribed = true })

	var received []ChangeEvent
	listener := NewChangeListener(mockCache, func(event ChangeEvent) {
		received = append(received, event)
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		listener.Run(ctx)
		close(done)
	}()

	events <- eventPayload(t, ChangeEvent{Action: "set", Sequence: 1, Section: "app", Key: "a"})
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("listener did not stop after context cancellation")
	}
	assert.Len(t, received, 1)
	assert.True(t, unsubscribed)
}
