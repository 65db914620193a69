package sensor

import (
	"sync"
	"time"

	"sensorhub/drivers"
	"sensorhub/clock"
	"sensorhub/errcode"
	"sensorhub/iohw"
)

// MaxSensors is spec.md's MAX_SENSORS (§6): the manager's roster capacity.
const MaxSensors = 8

// PeriodUnitMs is spec.md's PERIOD_UNIT (§6): SET_PERIOD's param is in
// units of 100 ms.
const PeriodUnitMs = 100

// GetPeriodField is the field id the dispatcher maps GET_PERIOD onto
// (cmd 30, spec.md §4.4); the manager answers it itself rather than
// asking the driver.
const GetPeriodField = 30

// entry is one roster slot (spec.md's SensorEntry, §3). sensorID is
// kept purely as internal bookkeeping; the wire protocol and every
// exported Manager method key exclusively by addr7.
type entry struct {
	sensorID byte
	typeCode byte
	addr7    byte
	periodMs uint32
	info     drivers.Info
	ctx      drivers.Context
	task     *Task
}

// Manager is the roster owner (spec.md §4.4): a dense, addr7-unique
// array of active sensors bounded by MaxSensors, the shared I2C bus and
// its mutex, and the driver Registry used to resolve type_code on add.
// Grounded on the reference firmware's SensorManager (sensor_manager.h)
// and, for the Go ownership shape, devicecode-go's worker-roster pattern
// in services/hal/hal.go.
type Manager struct {
	mu       sync.Mutex
	bus      iohw.I2CBus
	busMu    *sync.Mutex
	clk      clock.Clock
	registry *drivers.Registry
	entries  []entry
}

// NewManager returns an empty manager. busMu is the shared bus mutex
// every SensorTask and Configure call must hold around an I2C
// transaction (spec.md §5).
func NewManager(bus iohw.I2CBus, busMu *sync.Mutex, clk clock.Clock, registry *drivers.Registry) *Manager {
	return &Manager{bus: bus, busMu: busMu, clk: clk, registry: registry}
}

// Add allocates a new sensor of typeCode at addr7, polling at periodMs
// (or the driver's default if periodMs == 0), and starts its task.
// Rejects a duplicate addr7 or a full roster; rolls back cleanly if the
// driver's Init fails is not itself fatal -- only task construction
// failure (which cannot happen in this implementation) would trigger a
// rollback, per spec.md §4.4.
func (m *Manager) Add(typeCode, addr7 byte, periodMs uint32) errcode.Code {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range m.entries {
		if e.addr7 == addr7 {
			return errcode.Error
		}
	}
	if len(m.entries) >= MaxSensors {
		return errcode.Busy
	}
	info, ok := m.registry.Find(typeCode)
	if !ok {
		// An unregistered type_code is a rejected request, not a missing
		// roster entry -- spec.md §8 scenario 2 expects STATUS(ERROR), and
		// only READ_SAMPLES's missing-addr7 case maps to STATUS(NOT_FOUND).
		return errcode.Error
	}
	if periodMs == 0 {
		periodMs = uint32(info.DefaultPeriodOrFallback() / time.Millisecond)
	}

	ctx := info.NewContext()
	task := NewTask(addr7, info.Driver(), ctx, m.bus, m.busMu, m.clk, periodMs)

	m.entries = append(m.entries, entry{
		sensorID: byte(len(m.entries)),
		typeCode: typeCode,
		addr7:    addr7,
		periodMs: periodMs,
		info:     info,
		ctx:      ctx,
		task:     task,
	})
	go task.Run()
	return errcode.OK
}

// Remove destroys addr7's task and shifts later entries down, renumbering
// sensorID so it again equals the slot index (spec.md §4.4). Destroy
// runs with the manager's own lock released, so it can never deadlock
// against a dispatcher call that is itself blocked waiting on the bus
// mutex a task only ever holds briefly.
func (m *Manager) Remove(addr7 byte) errcode.Code {
	m.mu.Lock()
	idx := m.indexOf(addr7)
	if idx < 0 {
		m.mu.Unlock()
		return errcode.NotFound
	}
	task := m.entries[idx].task
	m.entries = append(m.entries[:idx], m.entries[idx+1:]...)
	for i := idx; i < len(m.entries); i++ {
		m.entries[i].sensorID = byte(i)
	}
	m.mu.Unlock()

	task.Destroy()
	return errcode.OK
}

// Configure applies a driver-local field write, holding the bus mutex
// for the duration of the call (spec.md §9 fixes the reference
// firmware's missing lock here).
func (m *Manager) Configure(addr7, fieldID, param byte) errcode.Code {
	m.mu.Lock()
	idx := m.indexOf(addr7)
	if idx < 0 {
		m.mu.Unlock()
		return errcode.NotFound
	}
	e := m.entries[idx]
	m.mu.Unlock()

	m.busMu.Lock()
	ok := e.info.Driver().Configure(e.ctx, m.bus, addr7, fieldID, param)
	m.busMu.Unlock()
	if !ok {
		// Driver.Configure returns false for both an I2C write failure and
		// an unrecognised field id; the wire contract doesn't distinguish
		// them either (spec.md §4.8: "Driver-level failure (I2C NAK, bad
		// field id): STATUS(ERROR)").
		return errcode.Error
	}
	return errcode.OK
}

// GetConfigBytes encodes fieldID's current value into out, returning the
// number of bytes written. field == GetPeriodField is answered directly
// from the entry's period, in PERIOD_UNIT units, without consulting the
// driver (spec.md §4.4); every other field is read from the driver with
// the bus mutex held.
func (m *Manager) GetConfigBytes(addr7, fieldID byte, out []byte) (n int, code errcode.Code) {
	m.mu.Lock()
	idx := m.indexOf(addr7)
	if idx < 0 {
		m.mu.Unlock()
		return 0, errcode.NotFound
	}
	e := m.entries[idx]
	m.mu.Unlock()

	if fieldID == GetPeriodField {
		if len(out) < 1 {
			return 0, errcode.Error
		}
		out[0] = byte(e.periodMs / PeriodUnitMs)
		return 1, errcode.OK
	}

	m.busMu.Lock()
	n, ok := e.info.Driver().ReadConfigBytes(e.ctx, fieldID, out)
	m.busMu.Unlock()
	if !ok {
		return 0, errcode.Error
	}
	return n, errcode.OK
}

// ListFieldIDs enumerates addr7's driver-declared config fields, used by
// GET_CONFIG to know which getters to concatenate (spec.md §4.6).
func (m *Manager) ListFieldIDs(addr7 byte) ([]byte, errcode.Code) {
	m.mu.Lock()
	idx := m.indexOf(addr7)
	if idx < 0 {
		m.mu.Unlock()
		return nil, errcode.NotFound
	}
	e := m.entries[idx]
	m.mu.Unlock()
	return e.info.Driver().ListFieldIDs(), errcode.OK
}

// Read drains up to len(out) queued samples for addr7 in FIFO order.
func (m *Manager) Read(addr7 byte, out []Sample) (n int, code errcode.Code) {
	t, ok := m.GetTask(addr7)
	if !ok {
		return 0, errcode.NotFound
	}
	return t.ReadSamples(out), errcode.OK
}

// List copies up to len(out) (type_code, addr7) pairs into out, returning
// the count.
func (m *Manager) List(out [][2]byte) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := len(m.entries)
	if n > len(out) {
		n = len(out)
	}
	for i := 0; i < n; i++ {
		out[i] = [2]byte{m.entries[i].typeCode, m.entries[i].addr7}
	}
	return n
}

// Count reports the current roster size.
func (m *Manager) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// SetPeriod updates both the entry's stored period and its task's live
// period (spec.md §4.4).
func (m *Manager) SetPeriod(addr7 byte, newMs uint32) errcode.Code {
	m.mu.Lock()
	idx := m.indexOf(addr7)
	if idx < 0 {
		m.mu.Unlock()
		return errcode.NotFound
	}
	m.entries[idx].periodMs = newMs
	task := m.entries[idx].task
	m.mu.Unlock()

	task.UpdatePeriod(newMs)
	return errcode.OK
}

// GetTask returns addr7's SensorTask, used by the dispatcher to flush or
// read directly (spec.md §4.4).
func (m *Manager) GetTask(addr7 byte) (*Task, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(addr7)
	if idx < 0 {
		return nil, false
	}
	return m.entries[idx].task, true
}

// FindDriverByAddr returns addr7's driver metadata.
func (m *Manager) FindDriverByAddr(addr7 byte) (drivers.Info, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	idx := m.indexOf(addr7)
	if idx < 0 {
		return drivers.Info{}, false
	}
	return m.entries[idx].info, true
}

// Destroy stops every active task. Intended for orderly shutdown only;
// the reference firmware never calls its equivalent in practice.
func (m *Manager) Destroy() {
	m.mu.Lock()
	tasks := make([]*Task, len(m.entries))
	for i, e := range m.entries {
		tasks[i] = e.task
	}
	m.entries = nil
	m.mu.Unlock()

	for _, t := range tasks {
		t.Destroy()
	}
}

// indexOf returns the roster index of addr7, or -1. Caller must hold mu.
func (m *Manager) indexOf(addr7 byte) int {
	for i, e := range m.entries {
		if e.addr7 == addr7 {
			return i
		}
	}
	return -1
}
