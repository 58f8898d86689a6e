package bridge_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alia5/viashift/internal/bridge"
	"github.com/Alia5/viashift/keys"
)

type sink struct {
	mu     sync.Mutex
	events []keys.Event
	active int
	maxAct int
}

func (s *sink) OnKeyObserved(ev keys.Event) {
	s.mu.Lock()
	s.active++
	if s.active > s.maxAct {
		s.maxAct = s.active
	}
	s.mu.Unlock()

	time.Sleep(time.Millisecond)

	s.mu.Lock()
	s.events = append(s.events, ev)
	s.active--
	s.mu.Unlock()
}

func (s *sink) snapshot() ([]keys.Event, int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]keys.Event(nil), s.events...), s.maxAct
}

func start(t *testing.T, s bridge.Sink) (*bridge.Bridge, context.CancelFunc, <-chan error) {
	t.Helper()
	b := bridge.New(s, nil)
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- b.Run(ctx) }()
	return b, cancel, errCh
}

func TestBridge_OneEventPerPress(t *testing.T) {
	s := &sink{}
	b, cancel, errCh := start(t, s)
	ctx := context.Background()
	sess := b.Open("test")

	a := keys.Plain(keys.KeyA)
	for _, tr := range []keys.Transition{
		keys.Press(keys.LeftShift),
		keys.Press(a),
		keys.Press(a), // repeat
		keys.Release(a),
		keys.Release(keys.LeftShift),
		keys.Press(a),
	} {
		require.NoError(t, sess.Submit(ctx, tr))
	}
	cancel()
	require.NoError(t, <-errCh)

	events, _ := s.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, keys.LeftShift, events[0].Key)
	assert.Equal(t, []keys.Key{keys.LeftShift, a}, events[1].Held)
	assert.Equal(t, []keys.Key{a}, events[2].Held)
}

func TestBridge_SerializesSources(t *testing.T) {
	s := &sink{}
	b, cancel, errCh := start(t, s)

	var wg sync.WaitGroup
	for src := 0; src < 4; src++ {
		wg.Add(1)
		go func(src int) {
			defer wg.Done()
			sess := b.Open(fmt.Sprintf("source %d", src))
			defer sess.Close()
			k := keys.Plain(keys.KeyA + keys.Code(src))
			for i := 0; i < 5; i++ {
				assert.NoError(t, sess.Submit(context.Background(), keys.Press(k)))
				assert.NoError(t, sess.Submit(context.Background(), keys.Release(k)))
			}
		}(src)
	}
	wg.Wait()
	cancel()
	require.NoError(t, <-errCh)

	events, maxActive := s.snapshot()
	assert.Len(t, events, 20)
	assert.Equal(t, 1, maxActive)
}

func TestBridge_ClosedSessionReleasesHeldKeys(t *testing.T) {
	s := &sink{}
	b, cancel, errCh := start(t, s)
	ctx := context.Background()
	a := keys.Plain(keys.KeyA)
	bk := keys.Plain(keys.KeyB)

	first := b.Open("disconnects mid-chord")
	require.NoError(t, first.Submit(ctx, keys.Press(keys.LeftCtrl)))
	require.NoError(t, first.Submit(ctx, keys.Press(a)))
	require.NoError(t, first.Close())

	second := b.Open("types afterwards")
	for _, tr := range []keys.Transition{keys.Press(a), keys.Release(a), keys.Press(bk), keys.Release(bk)} {
		require.NoError(t, second.Submit(ctx, tr))
	}
	cancel()
	require.NoError(t, <-errCh)

	events, _ := s.snapshot()
	require.Len(t, events, 4)
	assert.Equal(t, []keys.Key{keys.LeftCtrl, a}, events[1].Held)
	assert.Equal(t, a, events[2].Key)
	assert.Equal(t, []keys.Key{a}, events[2].Held)
	assert.Equal(t, []keys.Key{bk}, events[3].Held)
}

func TestBridge_SessionsDoNotShareModifiers(t *testing.T) {
	s := &sink{}
	b, cancel, errCh := start(t, s)
	ctx := context.Background()
	a := keys.Plain(keys.KeyA)

	kbd := b.Open("keyboard")
	api := b.Open("api")
	require.NoError(t, kbd.Submit(ctx, keys.Press(keys.LeftShift)))
	require.NoError(t, api.Submit(ctx, keys.Press(a)))
	require.NoError(t, kbd.Submit(ctx, keys.Press(a)))
	cancel()
	require.NoError(t, <-errCh)

	events, _ := s.snapshot()
	require.Len(t, events, 3)
	assert.Equal(t, []keys.Key{a}, events[1].Held)
	assert.Equal(t, []keys.Key{keys.LeftShift, a}, events[2].Held)
}

func TestSession_Close(t *testing.T) {
	b, cancel, errCh := start(t, &sink{})
	sess := b.Open("test")
	require.NoError(t, sess.Close())
	require.NoError(t, sess.Close())
	assert.ErrorIs(t, sess.Submit(context.Background(), keys.Press(keys.Plain(keys.KeyA))), bridge.ErrSessionClosed)

	late := b.Open("late")
	cancel()
	require.NoError(t, <-errCh)
	assert.NoError(t, late.Close(), "closing after the bridge stopped")
}

func TestBridge_SubmitAfterStop(t *testing.T) {
	b, cancel, errCh := start(t, &sink{})
	cancel()
	require.NoError(t, <-errCh)

	err := b.Open("test").Submit(context.Background(), keys.Press(keys.Plain(keys.KeyA)))
	assert.ErrorIs(t, err, bridge.ErrStopped)
}

func TestBridge_SubmitContextCancelled(t *testing.T) {
	b := bridge.New(&sink{}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := b.Open("test").Submit(ctx, keys.Press(keys.Plain(keys.KeyA)))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
