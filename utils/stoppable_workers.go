package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers runs goroutines that share one context and are stopped together.
type StoppableWorkers interface {
	// AddWorkers starts each function in its own goroutine. Once Stop has been called it starts
	// nothing and returns false.
	AddWorkers(...func(context.Context)) bool
	// Stop cancels the shared context and waits for every worker to return.
	Stop()
	Context() context.Context
}

type workers struct {
	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	stopped bool
	running sync.WaitGroup
}

// NewStoppableWorkers starts funcs, each in its own goroutine.
func NewStoppableWorkers(funcs ...func(context.Context)) StoppableWorkers {
	ctx, cancel := context.WithCancel(context.Background())
	w := &workers{ctx: ctx, cancel: cancel}
	w.AddWorkers(funcs...)
	return w
}

func (w *workers) AddWorkers(funcs ...func(context.Context)) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return false
	}
	w.running.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer w.running.Done()
			f(w.ctx)
		})
	}
	return true
}

func (w *workers) Stop() {
	w.mu.Lock()
	w.stopped = true
	w.mu.Unlock()
	w.cancel()
	w.running.Wait()
}

func (w *workers) Context() context.Context {
	return w.ctx
}
