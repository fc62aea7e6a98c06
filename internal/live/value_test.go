package live

import (
	"sync"
	"testing"
	"time"

	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func recv[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v, ok := <-ch:
		if !ok {
			t.Fatalf("channel closed")
		}
		return v
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for value")
	}
	var zero T
	return zero
}

func TestValue_SubscribeReceivesCurrentThenUpdates(t *testing.T) {
	v := NewValue(1)
	ch, cancel := v.Subscribe()
	defer cancel()

	if got := recv(t, ch); got != 1 {
		t.Fatalf("first value = %d; want 1", got)
	}
	v.Set(2)
	if got := recv(t, ch); got != 2 {
		t.Fatalf("second value = %d; want 2", got)
	}
	if got := v.Update(func(x int) int { return x * 10 }); got != 20 {
		t.Fatalf("Update returned %d; want 20", got)
	}
	if got := recv(t, ch); got != 20 {
		t.Fatalf("third value = %d; want 20", got)
	}
}

func TestValue_SlowSubscriberSeesLatestOnly(t *testing.T) {
	v := NewValue("a")
	ch, cancel := v.Subscribe()
	defer cancel()

	for _, s := range []string{"b", "c", "d"} {
		v.Set(s)
	}
	if got := recv(t, ch); got != "d" {
		t.Fatalf("got %q; want latest value %q", got, "d")
	}
	select {
	case extra := <-ch:
		t.Fatalf("unexpected extra value %q", extra)
	default:
	}
}

func TestValue_CancelClosesAndUnsubscribes(t *testing.T) {
	v := NewValue(0)
	ch, cancel := v.Subscribe()
	if v.Subscribers() != 1 {
		t.Fatalf("Subscribers() = %d; want 1", v.Subscribers())
	}
	cancel()
	cancel() // idempotent

	<-ch // buffered current value
	if _, ok := <-ch; ok {
		t.Fatalf("expected closed channel")
	}
	if v.Subscribers() != 0 {
		t.Fatalf("Subscribers() = %d; want 0", v.Subscribers())
	}
	v.Set(5) // must not panic on closed channel
	if v.Get() != 5 {
		t.Fatalf("Get() = %d; want 5", v.Get())
	}
}

func TestValue_ConcurrentWritersNeverBlock(t *testing.T) {
	v := NewValue(0)
	_, cancel := v.Subscribe() // never read
	defer cancel()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				v.Update(func(x int) int { return x + 1 })
			}
		}()
	}
	wg.Wait()
	if v.Get() != 800 {
		t.Fatalf("Get() = %d; want 800", v.Get())
	}
}
