package sensor

import (
	"sync"
	"testing"
	"time"

	"sensorhub/clock"
	"sensorhub/drivers"
	"sensorhub/errcode"
	"sensorhub/iohw"
)

const countingTypeCode = 0x7F

func newTestManager() (*Manager, *clock.Fake) {
	clk := clock.NewFake()
	bus := iohw.NewFakeBus()
	reg := drivers.NewRegistry()
	reg.Register(drivers.Info{
		TypeCode:      countingTypeCode,
		Name:          "counting",
		NewContext:    func() drivers.Context { return &countingCtx{} },
		Driver:        func() drivers.Driver { return countingDriver{} },
		DefaultPeriod: 200 * time.Millisecond,
	})
	return NewManager(bus, &sync.Mutex{}, clk, reg), clk
}

func TestManager_AddRejectsDuplicateAddr(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	if code := m.Add(countingTypeCode, 0x40, 100); code != errcode.OK {
		t.Fatalf("expected OK, got %v", code)
	}
	if code := m.Add(countingTypeCode, 0x40, 100); code != errcode.Error {
		t.Fatalf("expected Error on duplicate addr7, got %v", code)
	}
}

func TestManager_AddRejectsUnknownTypeCode(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	// spec.md §8 scenario 2: an unregistered type_code is STATUS(ERROR),
	// not STATUS(NOT_FOUND) -- NOT_FOUND is reserved for READ_SAMPLES.
	if code := m.Add(0xEE, 0x40, 100); code != errcode.Error {
		t.Fatalf("expected Error, got %v", code)
	}
}

func TestManager_AddRejectsFullRoster(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	for i := 0; i < MaxSensors; i++ {
		if code := m.Add(countingTypeCode, byte(0x10+i), 100); code != errcode.OK {
			t.Fatalf("add %d: expected OK, got %v", i, code)
		}
	}
	if code := m.Add(countingTypeCode, 0x50, 100); code != errcode.Busy {
		t.Fatalf("expected Busy at capacity, got %v", code)
	}
	if m.Count() != MaxSensors {
		t.Errorf("expected Count()==%d, got %d", MaxSensors, m.Count())
	}
}

func TestManager_AddUsesDriverDefaultWhenPeriodZero(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	m.Add(countingTypeCode, 0x40, 0)
	task, ok := m.GetTask(0x40)
	if !ok {
		t.Fatal("expected task to exist")
	}
	if task.PeriodMs() != 200 {
		t.Errorf("expected default period 200ms, got %d", task.PeriodMs())
	}
}

func TestManager_RemoveRenumbersAndDestroysTask(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	m.Add(countingTypeCode, 0x40, 100)
	m.Add(countingTypeCode, 0x41, 100)
	m.Add(countingTypeCode, 0x42, 100)

	if code := m.Remove(0x41); code != errcode.OK {
		t.Fatalf("expected OK, got %v", code)
	}
	if code := m.Remove(0x41); code != errcode.NotFound {
		t.Fatalf("expected NotFound on second remove, got %v", code)
	}
	if m.Count() != 2 {
		t.Errorf("expected 2 remaining, got %d", m.Count())
	}

	pairs := make([][2]byte, 4)
	n := m.List(pairs)
	if n != 2 {
		t.Fatalf("expected 2 listed, got %d", n)
	}
	if pairs[0][1] != 0x40 || pairs[1][1] != 0x42 {
		t.Errorf("expected addrs 0x40,0x42 after removal, got %#v", pairs[:n])
	}
}

func TestManager_ConfigureAndGetConfigBytes(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	m.Add(countingTypeCode, 0x40, 100)

	// countingDriver.Configure and ReadConfigBytes always report failure --
	// verify that surfaces as errcode.Error, and that an unknown addr7 is
	// NotFound.
	if code := m.Configure(0x40, 1, 5); code != errcode.Error {
		t.Fatalf("expected Error from always-false Configure, got %v", code)
	}
	if code := m.Configure(0x99, 1, 5); code != errcode.NotFound {
		t.Fatalf("expected NotFound, got %v", code)
	}
	if _, code := m.GetConfigBytes(0x40, 1, make([]byte, 4)); code != errcode.Error {
		t.Fatalf("expected Error from always-false ReadConfigBytes, got %v", code)
	}
	if _, code := m.GetConfigBytes(0x99, 1, make([]byte, 4)); code != errcode.NotFound {
		t.Fatalf("expected NotFound, got %v", code)
	}
}

func TestManager_GetConfigBytesAnswersPeriodWithoutDriver(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	m.Add(countingTypeCode, 0x40, 300)
	out := make([]byte, 4)
	n, code := m.GetConfigBytes(0x40, GetPeriodField, out)
	if code != errcode.OK {
		t.Fatalf("expected OK, got %v", code)
	}
	if n != 1 || out[0] != 3 {
		t.Errorf("expected 1 byte value 3 (300ms/100), got n=%d val=%d", n, out[0])
	}
}

func TestManager_SetPeriodUpdatesEntryAndTask(t *testing.T) {
	m, _ := newTestManager()
	defer m.Destroy()

	m.Add(countingTypeCode, 0x40, 100)
	if code := m.SetPeriod(0x40, 700); code != errcode.OK {
		t.Fatalf("expected OK, got %v", code)
	}
	task, _ := m.GetTask(0x40)
	if task.PeriodMs() != 700 {
		t.Errorf("expected task period 700, got %d", task.PeriodMs())
	}
	out := make([]byte, 1)
	n, _ := m.GetConfigBytes(0x40, GetPeriodField, out)
	if n != 1 || out[0] != 7 {
		t.Errorf("expected period field 7, got %d", out[0])
	}
}

func TestManager_ReadDrainsTaskQueue(t *testing.T) {
	m, clk := newTestManager()
	defer m.Destroy()

	m.Add(countingTypeCode, 0x40, 50)

	deadline := time.Now().Add(time.Second)
	for {
		// The task takes its first sample right after Init.
		if task, _ := m.GetTask(0x40); task.QueueLen() >= 1 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for task setup")
		}
	}
	clk.Advance(50 * time.Millisecond)

	task, _ := m.GetTask(0x40)
	deadline = time.Now().Add(time.Second)
	for task.QueueLen() < 2 {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting for a sample")
		}
		time.Sleep(time.Millisecond)
	}

	out := make([]Sample, 4)
	n, code := m.Read(0x40, out)
	if code != errcode.OK || n != 2 {
		t.Fatalf("expected OK/2, got %v/%d", code, n)
	}
}
