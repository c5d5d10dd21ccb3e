package journal

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/aretw0/vigil/pkg/domain"
	"github.com/aretw0/vigil/pkg/events"
	"github.com/aretw0/vigil/pkg/observer"
	"github.com/aretw0/vigil/pkg/ports"
)

// Recorder appends a domain.Change to a journal for every committed write.
type Recorder struct {
	ctx     context.Context
	obs     *observer.ObjectObserver
	journal ports.Journal
	handler *events.Handler
	count   atomic.Int64

	// now is replaced in tests.
	now func() time.Time
}

// Attach subscribes a Recorder to obs. Vetoed writes never reach the "set" phase and are not
// recorded. An Append failure is returned from the write that caused it.
func Attach(ctx context.Context, obs *observer.ObjectObserver, j ports.Journal) *Recorder {
	r := &Recorder{
		ctx:     ctx,
		obs:     obs,
		journal: j,
		now:     time.Now,
	}
	r.handler = obs.On(string(domain.EventSet), r.record, nil)
	return r
}

// args: target, name, value, oldValue
func (r *Recorder) record(args ...any) (any, error) {
	if len(args) < 4 {
		return nil, nil
	}
	name, _ := args[1].(string)
	change := domain.Change{
		Property:  name,
		Value:     args[2],
		OldValue:  args[3],
		Timestamp: r.now().UTC(),
	}
	if err := r.journal.Append(r.ctx, change); err != nil {
		return nil, fmt.Errorf("record %q: %w", name, err)
	}
	r.count.Add(1)
	return nil, nil
}

// Recorded returns how many changes were appended since Attach.
func (r *Recorder) Recorded() int64 { return r.count.Load() }

// Detach stops recording. It is safe to call more than once.
func (r *Recorder) Detach() {
	r.obs.Off("", r.handler, nil)
}
