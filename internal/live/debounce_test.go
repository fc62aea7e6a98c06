package live

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncer_OnlyLastTriggerRuns(t *testing.T) {
	d := NewDebouncer(30 * time.Millisecond)
	defer d.Stop()

	var runs atomic.Int32
	done := make(chan string, 4)
	for _, q := range []string{"a", "ab", "abc"} {
		q := q
		d.Trigger(func(Latest) {
			runs.Add(1)
			done <- q
		})
	}

	if got := recv(t, (<-chan string)(done)); got != "abc" {
		t.Fatalf("ran %q; want last trigger %q", got, "abc")
	}
	time.Sleep(60 * time.Millisecond)
	if n := runs.Load(); n != 1 {
		t.Fatalf("runs = %d; want 1", n)
	}
}

func TestDebouncer_SupersededRunCannotPublish(t *testing.T) {
	d := NewDebouncer(0)
	defer d.Stop()

	started := make(chan struct{})
	release := make(chan struct{})
	published := make(chan bool, 1)

	d.Trigger(func(latest Latest) {
		close(started)
		<-release
		published <- latest(func() {})
	})
	<-started
	d.Trigger(func(Latest) {})
	close(release)

	if recv(t, (<-chan bool)(published)) {
		t.Fatalf("superseded run must not publish")
	}
}

func TestDebouncer_LatestPublishes(t *testing.T) {
	d := NewDebouncer(time.Millisecond)
	defer d.Stop()

	v := NewValue("")
	ch, cancel := v.Subscribe()
	defer cancel()
	recv(t, ch)

	d.Trigger(func(latest Latest) {
		latest(func() { v.Set("done") })
	})
	if got := recv(t, ch); got != "done" {
		t.Fatalf("published %q; want %q", got, "done")
	}
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	d := NewDebouncer(20 * time.Millisecond)
	var ran atomic.Bool
	d.Trigger(func(Latest) { ran.Store(true) })
	d.Stop()
	d.Trigger(func(Latest) { ran.Store(true) })

	time.Sleep(50 * time.Millisecond)
	if ran.Load() {
		t.Fatalf("stopped debouncer must not run triggers")
	}
}
