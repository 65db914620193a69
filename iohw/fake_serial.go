package iohw

import (
	"sync"
	"time"
)

// FakeSerial is an in-process loopback-free SerialLink for host tests
// and cmd/hubsim: bytes pushed with Feed are what RecvByte later
// delivers; Send appends to TX, inspectable with Sent/ResetSent.
// Grounded on the same scripted-fake pattern as FakeBus.
type FakeSerial struct {
	mu  sync.Mutex
	rx  []byte
	sent [][]byte
}

// NewFakeSerial returns an empty link.
func NewFakeSerial() *FakeSerial { return &FakeSerial{} }

// Feed appends bytes the "host" has sent, available to RecvByte.
func (f *FakeSerial) Feed(b []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rx = append(f.rx, b...)
}

// RecvByte pops the next fed byte, blocking (by short polling) until
// one is available or deadline passes.
func (f *FakeSerial) RecvByte(deadline time.Time) (byte, bool) {
	for {
		f.mu.Lock()
		if len(f.rx) > 0 {
			b := f.rx[0]
			f.rx = f.rx[1:]
			f.mu.Unlock()
			return b, true
		}
		f.mu.Unlock()
		if time.Now().After(deadline) {
			return 0, false
		}
		time.Sleep(time.Millisecond)
	}
}

// Send records one transmitted frame.
func (f *FakeSerial) Send(frame []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, append([]byte(nil), frame...))
	return nil
}

// Sent returns every frame transmitted so far, in order.
func (f *FakeSerial) Sent() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([][]byte, len(f.sent))
	copy(out, f.sent)
	return out
}

// ResetSent clears the recorded transmissions.
func (f *FakeSerial) ResetSent() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = nil
}
