package watcher

import (
	"context"
	"sync"
)

// Merge classifies the events of every source against scope and sends
// them on one channel until ctx is done. Events outside the scope are
// dropped. Merge closes each source when it stops reading it, and closes
// the returned channel once all sources are done.
func Merge(ctx context.Context, scope Scope, onError func(error), sources ...Source) <-chan Event {
	out := make(chan Event, 64)

	var wg sync.WaitGroup
	for _, src := range sources {
		wg.Add(1)
		go func(src Source) {
			defer wg.Done()
			defer src.Close()
			Run(ctx, src, func(ev Event) {
				ev, ok := scope.Classify(ev.Path, ev.Op)
				if !ok {
					return
				}
				select {
				case out <- ev:
				case <-ctx.Done():
				}
			}, onError)
		}(src)
	}
	go func() {
		wg.Wait()
		close(out)
	}()
	return out
}
