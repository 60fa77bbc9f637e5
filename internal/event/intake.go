package event

import (
	"sync"
	"time"
)

// Intake is the single point where sequence numbers are assigned. All
// producers (feed workers, pollers, the API) submit through it so that
// allocation and delivery happen atomically; without that, two producers
// could publish their events out of sequence order and trip the gap halt.
type Intake struct {
	mu    sync.Mutex
	next  uint64
	inbox chan<- Event
}

// NewIntake creates an intake publishing to the given inbox.
func NewIntake(inbox chan<- Event) *Intake {
	return &Intake{next: 1, inbox: inbox}
}

// Submit stamps the next sequence number onto the event built by fn and
// delivers it. Blocks when the inbox is full; dropping a stamped event
// would halt the sequencer.
func (i *Intake) Submit(fn func(seq uint64, ts int64) Event) {
	i.mu.Lock()
	defer i.mu.Unlock()

	ev := fn(i.next, time.Now().UnixMicro())
	i.inbox <- ev
	i.next++
}
