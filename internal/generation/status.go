package generation

import (
	"sync"
	"time"
)

// Default self-clear delays for final status messages.
const (
	DefaultSuccessClearDelay = 3 * time.Second
	DefaultErrorClearDelay   = 5 * time.Second
)

// Status is the observable state of the current run.
type Status struct {
	Message   string    `json:"message"`
	Current   int       `json:"current,omitempty"`
	Total     int       `json:"total,omitempty"`
	ItemName  string    `json:"itemName,omitempty"`
	Running   bool      `json:"running"`
	Error     bool      `json:"error,omitempty"`
	TraceID   string    `json:"traceId,omitempty"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// statusBoard holds the latest Status. A final message is cleared after a
// delay unless a newer status replaced it first.
type statusBoard struct {
	mu       sync.RWMutex
	status   Status
	seq      uint64
	timer    *time.Timer
	listener func(Status)
	now      func() time.Time
}

func (b *statusBoard) get() Status {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.status
}

// set replaces the status. A positive clearAfter schedules a reset to the
// empty status.
func (b *statusBoard) set(s Status, clearAfter time.Duration) {
	b.mu.Lock()
	s.UpdatedAt = b.now()
	b.status = s
	b.seq++
	seq := b.seq
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
	if clearAfter > 0 {
		b.timer = time.AfterFunc(clearAfter, func() { b.clear(seq) })
	}
	listener := b.listener
	b.mu.Unlock()

	if listener != nil {
		listener(s)
	}
}

func (b *statusBoard) clear(seq uint64) {
	b.mu.Lock()
	if b.seq != seq {
		b.mu.Unlock()
		return
	}
	b.status = Status{UpdatedAt: b.now()}
	b.seq++
	b.timer = nil
	s := b.status
	listener := b.listener
	b.mu.Unlock()

	if listener != nil {
		listener(s)
	}
}

// stop cancels a pending clear.
func (b *statusBoard) stop() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}
