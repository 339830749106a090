package broadcast

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBroadcasterRaise(t *testing.T) {
	t.Parallel()

	b := New()
	assert.Equal(t, uint64(0), b.Seq())

	assert.Equal(t, uint64(1), b.Raise())
	assert.Equal(t, uint64(2), b.Raise())
	assert.Equal(t, uint64(2), b.Seq())
}

func TestSubscriberReceivesRaise(t *testing.T) {
	t.Parallel()

	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	b.Raise()

	select {
	case seq := <-sub.C():
		assert.Equal(t, uint64(1), seq)
	case <-time.After(time.Second):
		t.Fatal("expected a notification")
	}
}

func TestQuickRaisesCoalesce(t *testing.T) {
	t.Parallel()

	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	// Nobody drains between raises: only the latest survives.
	b.Raise()
	b.Raise()
	b.Raise()

	seq := <-sub.C()
	assert.Equal(t, uint64(3), seq)

	select {
	case extra, ok := <-sub.C():
		if ok {
			t.Fatalf("unexpected extra notification: %d", extra)
		}
	default:
	}
}

func TestRaiseNeverBlocks(t *testing.T) {
	t.Parallel()

	b := New()
	sub := b.Subscribe()
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		for range 100 {
			b.Raise()
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("raise blocked on an undrained subscriber")
	}
	assert.Equal(t, uint64(100), b.Seq())
}

func TestCloseUnregisters(t *testing.T) {
	t.Parallel()

	b := New()
	sub := b.Subscribe()
	sub.Close()
	sub.Close() // idempotent

	b.Raise()

	_, ok := <-sub.C()
	require.False(t, ok, "channel should be closed")
}

func TestConcurrentSubscribeAndRaise(t *testing.T) {
	t.Parallel()

	b := New()

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sub := b.Subscribe()
			b.Raise()
			sub.Close()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint64(8), b.Seq())
}
