package watcher

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period used when none is given.
const DefaultDebounce = 100 * time.Millisecond

// Debounced holds back events from a Source until it has been quiet for
// the delay, then releases them in arrival order, one per path with the
// operations merged. Nothing is dropped.
type Debounced struct {
	src   Source
	delay time.Duration

	events chan Event
	errors chan error
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup
}

// Debounce wraps src.
func Debounce(src Source, delay time.Duration) *Debounced {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	d := &Debounced{
		src:    src,
		delay:  delay,
		events: make(chan Event, 64),
		errors: make(chan error, 16),
		done:   make(chan struct{}),
	}
	d.wg.Add(1)
	go d.loop()
	return d
}

func (d *Debounced) Add(path string) error     { return d.src.Add(path) }
func (d *Debounced) AddTree(path string) error { return d.src.AddTree(path) }
func (d *Debounced) Events() <-chan Event      { return d.events }
func (d *Debounced) Errors() <-chan error      { return d.errors }

// Close stops the debouncer and closes the wrapped source. Held events
// are discarded.
func (d *Debounced) Close() error {
	var err error
	d.once.Do(func() {
		close(d.done)
		d.wg.Wait()
		err = d.src.Close()
	})
	return err
}

func (d *Debounced) loop() {
	defer d.wg.Done()
	defer close(d.errors)
	defer close(d.events)

	var (
		held  = make(map[string]int)
		order []Event
		timer = time.NewTimer(d.delay)
		quiet <-chan time.Time
	)
	timer.Stop()
	defer timer.Stop()

	flush := func() bool {
		for _, ev := range order {
			select {
			case d.events <- ev:
			case <-d.done:
				return false
			}
		}
		clear(held)
		order = order[:0]
		return true
	}

	srcEvents, srcErrors := d.src.Events(), d.src.Errors()
	for {
		select {
		case <-d.done:
			return
		case ev, ok := <-srcEvents:
			if !ok {
				flush()
				return
			}
			if i, seen := held[ev.Path]; seen {
				order[i].Op |= ev.Op
			} else {
				held[ev.Path] = len(order)
				order = append(order, ev)
			}
			timer.Reset(d.delay)
			quiet = timer.C
		case err, ok := <-srcErrors:
			if !ok {
				srcErrors = nil
				continue
			}
			select {
			case d.errors <- err:
			default:
			}
		case <-quiet:
			quiet = nil
			if !flush() {
				return
			}
		}
	}
}

var _ Source = (*Debounced)(nil)
