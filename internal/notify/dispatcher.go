package notify

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"
)

// Dispatcher delivers events asynchronously with a per-event timeout.
type Dispatcher struct {
	notifier Notifier
	timeout  time.Duration
	loggerf  func(format string, args ...interface{})
	wg       sync.WaitGroup
}

func NewDispatcher(notifier Notifier, timeout time.Duration) *Dispatcher {
	return &Dispatcher{
		notifier: notifier,
		timeout:  timeout,
		loggerf:  log.Printf,
	}
}

func (d *Dispatcher) SetLogger(loggerf func(format string, args ...interface{})) {
	if loggerf != nil {
		d.loggerf = loggerf
	}
}

func (d *Dispatcher) Publish(evt Event) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		if err := d.notifier.Notify(ctx, evt); err != nil {
			d.loggerf("level=warn msg=\"notification failed\" event_id=%s type=%s resource=%s/%d err=%v",
				evt.ID, evt.Type, evt.ResourceType, evt.ResourceID, err)
		}
	}()
}

// Wait blocks until every published event has been handled.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

// Multi sends each event to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, evt Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, evt); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
