package sensor

import (
	"sync"
	"sync/atomic"
	"time"

	"sensorhub/clock"
	"sensorhub/drivers"
	"sensorhub/errcode"
	"sensorhub/iohw"
	"sensorhub/logx"
)


// Task is one cooperative worker per active sensor (spec.md §4.3): it
// owns its period, its driver Context, a reference to the shared driver
// v-table and I2C bus, the shared bus mutex, and its own SampleQueue.
// Scheduling is phase-stable (next wake = prev wake + period), not
// cumulative-drift, matching spec.md §4.3 step 1. The goroutine loop
// itself is grounded on devicecode-go's measureWorker.Start (worker.go):
// a manual timer reset every iteration rather than a ticker, so a period
// change takes effect on the very next wait.
type Task struct {
	addr7  byte
	drv    drivers.Driver
	ctx    drivers.Context
	bus    iohw.I2CBus
	busMu  *sync.Mutex
	clk    clock.Clock
	queue  SampleQueue
	periodMs atomic.Uint32

	stop     chan struct{}
	stopOnce sync.Once
	done     chan struct{}
}

// NewTask constructs a Task but does not start it; call Run in its own
// goroutine (see Manager.Add).
func NewTask(addr7 byte, drv drivers.Driver, ctx drivers.Context, bus iohw.I2CBus, busMu *sync.Mutex, clk clock.Clock, periodMs uint32) *Task {
	t := &Task{
		addr7: addr7,
		drv:   drv,
		ctx:   ctx,
		bus:   bus,
		busMu: busMu,
		clk:   clk,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	t.periodMs.Store(periodMs)
	return t
}

// Run executes the task loop until Destroy is called. It must run in its
// own goroutine. The first action, under the bus mutex, is exactly one
// call to driver.Init (spec.md §4.3).
func (t *Task) Run() {
	defer close(t.done)

	t.busMu.Lock()
	err := t.drv.Init(t.ctx, t.bus, t.addr7)
	t.busMu.Unlock()
	if err != nil {
		logx.Printf("sensor: addr7=0x%02x init failed: %s: %v", t.addr7, errcode.MapDriverErr(err), err)
	}

	prevWake := t.clk.NowMs()
	tmp := make([]byte, drivers.MaxPayload)

	for {
		period := t.periodMs.Load()
		nextWake := prevWake + period
		prevWake = nextWake

		t.busMu.Lock()
		n, rerr := t.drv.Read(t.ctx, t.bus, t.addr7, tmp)
		t.busMu.Unlock()

		if rerr == nil && n >= 0 && n <= drivers.MaxPayload {
			s := Sample{TickMs: t.clk.NowMs(), Len: uint8(n)}
			copy(s.Bytes[:], tmp[:n])
			t.queue.Push(s)
		}
		// Read failure or oversized payload: dropped silently (spec.md §4.3).

		if !t.sleepUntil(nextWake) {
			return
		}
	}
}

// sleepUntil blocks until the task's clock reaches wakeMs, or Destroy is
// called. Returns false if the task was destroyed mid-sleep. A worker
// never holds the bus mutex here (spec.md §5), so Destroy can always
// proceed without risking a use-after-free race with an in-flight read.
func (t *Task) sleepUntil(wakeMs uint32) bool {
	now := t.clk.NowMs()
	if now >= wakeMs {
		return true
	}
	remaining := time.Duration(wakeMs-now) * time.Millisecond
	select {
	case <-t.stop:
		return false
	case <-t.clk.After(remaining):
		return true
	}
}

// UpdatePeriod changes the polling interval. It takes effect on the next
// loop iteration, never interrupting one already in flight (spec.md
// §4.3: "no mid-cycle interrupt").
func (t *Task) UpdatePeriod(newMs uint32) {
	t.periodMs.Store(newMs)
}

// PeriodMs returns the current polling interval.
func (t *Task) PeriodMs() uint32 { return t.periodMs.Load() }

// SampleSize reports the driver's current payload size for this sensor's
// context (spec.md §4.3).
func (t *Task) SampleSize() int { return t.drv.SampleSize(t.ctx) }

// ReadSamples drains up to len(out) queued samples in FIFO order.
func (t *Task) ReadSamples(out []Sample) int { return t.queue.DrainInto(out) }

// Flush drops all queued samples (used by SET_PAYLOAD_MASK, spec.md §4.6,
// because a changed mask changes sample_size mid-stream).
func (t *Task) Flush() { t.queue.Flush() }

// QueueLen reports the number of queued samples.
func (t *Task) QueueLen() int { return t.queue.Len() }

// Destroy stops the task's goroutine and blocks until it has exited. It
// is safe to call once; later calls are no-ops. Destroy never holds the
// bus mutex, and the task never holds it across a sleep, so Destroy
// cannot deadlock against a concurrent I2C transaction (spec.md §5).
func (t *Task) Destroy() {
	t.stopOnce.Do(func() { close(t.stop) })
	<-t.done
}
