package core

import (
	"context"
	"sync"

	"github.com/Lin-Jiong-HDU/shellgate/internal/logger"
)

type request struct {
	ev      Event
	deliver func(Reply)
}

// Dispatcher feeds events to an Engine from a single goroutine, so session
// changes happen in arrival order. Shell commands are handed to their own
// goroutine once accepted, so a slow command does not hold up other events.
type Dispatcher struct {
	engine   *Engine
	requests chan request
	inFlight sync.WaitGroup
}

// NewDispatcher creates a dispatcher with room for buffer pending events.
func NewDispatcher(engine *Engine, buffer int) *Dispatcher {
	if buffer < 0 {
		buffer = 0
	}
	return &Dispatcher{
		engine:   engine,
		requests: make(chan request, buffer),
	}
}

// Submit queues ev; deliver is called with the reply once it is ready, from
// whichever goroutine produced it.
func (d *Dispatcher) Submit(ctx context.Context, ev Event, deliver func(Reply)) error {
	select {
	case d.requests <- request{ev: ev, deliver: deliver}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Do submits ev and waits for its reply.
func (d *Dispatcher) Do(ctx context.Context, ev Event) (Reply, error) {
	replies := make(chan Reply, 1)
	if err := d.Submit(ctx, ev, func(r Reply) { replies <- r }); err != nil {
		return Reply{}, err
	}
	select {
	case r := <-replies:
		return r, nil
	case <-ctx.Done():
		return Reply{}, ctx.Err()
	}
}

// Run processes events until ctx is done, then waits for running commands
// to finish (they are cancelled through the same ctx).
func (d *Dispatcher) Run(ctx context.Context) error {
	logger.Info("dispatcher-started")
	defer d.inFlight.Wait()

	for {
		select {
		case <-ctx.Done():
			logger.Info("dispatcher-shutting-down")
			return ctx.Err()
		case req := <-d.requests:
			finish := d.engine.Prepare(ctx, req.ev)
			if req.ev.Kind == KindRawCommand {
				d.inFlight.Add(1)
				go func() {
					defer d.inFlight.Done()
					req.deliver(finish())
				}()
				continue
			}
			req.deliver(finish())
		}
	}
}
