package utils

import (
	"context"
	"sync"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestMailboxLatestWins(t *testing.T) {
	mb := NewMailbox[int]()
	_, ok := mb.Take()
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, mb.Put(1), test.ShouldBeFalse)
	test.That(t, mb.Put(2), test.ShouldBeTrue)
	test.That(t, mb.Put(3), test.ShouldBeTrue)

	v, ok := mb.Peek()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldEqual, 3)

	v, ok = mb.Take()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldEqual, 3)

	_, ok = mb.Take()
	test.That(t, ok, test.ShouldBeFalse)
}

func TestMailboxReadySignal(t *testing.T) {
	mb := NewMailbox[string]()
	mb.Put("a")
	mb.Put("b")

	select {
	case <-mb.Ready():
	case <-time.After(time.Second):
		t.Fatal("expected a ready signal")
	}
	v, ok := mb.Take()
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, v, test.ShouldEqual, "b")

	select {
	case <-mb.Ready():
		t.Fatal("a single signal is kept for any number of puts")
	default:
	}
}

func TestStoppableWorkers(t *testing.T) {
	var mu sync.Mutex
	count := 0
	workers := NewStoppableWorkers(func(ctx context.Context) {
		<-ctx.Done()
		mu.Lock()
		count++
		mu.Unlock()
	})
	started := workers.AddWorkers(func(ctx context.Context) {
		<-ctx.Done()
		mu.Lock()
		count++
		mu.Unlock()
	})
	test.That(t, started, test.ShouldBeTrue)
	workers.Stop()
	test.That(t, count, test.ShouldEqual, 2)

	started = workers.AddWorkers(func(ctx context.Context) {
		mu.Lock()
		count++
		mu.Unlock()
	})
	test.That(t, started, test.ShouldBeFalse)
	test.That(t, workers.Context().Err(), test.ShouldNotBeNil)
	test.That(t, count, test.ShouldEqual, 2)
}
