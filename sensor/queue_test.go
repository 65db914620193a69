package sensor

import "testing"

func TestSampleQueue_PushDrain(t *testing.T) {
	var q SampleQueue
	for i := 0; i < 3; i++ {
		q.Push(Sample{TickMs: uint32(i)})
	}
	if q.Len() != 3 {
		t.Fatalf("expected len 3, got %d", q.Len())
	}
	out := make([]Sample, 3)
	n := q.DrainInto(out)
	if n != 3 {
		t.Fatalf("expected to drain 3, got %d", n)
	}
	for i, s := range out {
		if s.TickMs != uint32(i) {
			t.Errorf("expected FIFO order, index %d got tick %d", i, s.TickMs)
		}
	}
	if q.Len() != 0 {
		t.Errorf("expected empty queue after drain, got len %d", q.Len())
	}
}

func TestSampleQueue_DropsOldestOnFull(t *testing.T) {
	var q SampleQueue
	for i := 0; i < QueueDepth+3; i++ {
		q.Push(Sample{TickMs: uint32(i)})
	}
	if q.Len() != QueueDepth {
		t.Fatalf("expected len %d, got %d", QueueDepth, q.Len())
	}
	out := make([]Sample, QueueDepth)
	q.DrainInto(out)
	if out[0].TickMs != 3 {
		t.Errorf("expected oldest surviving tick 3, got %d", out[0].TickMs)
	}
	if out[QueueDepth-1].TickMs != uint32(QueueDepth+2) {
		t.Errorf("expected newest tick %d, got %d", QueueDepth+2, out[QueueDepth-1].TickMs)
	}
}

func TestSampleQueue_Flush(t *testing.T) {
	var q SampleQueue
	q.Push(Sample{})
	q.Push(Sample{})
	q.Flush()
	if q.Len() != 0 {
		t.Errorf("expected empty after flush, got %d", q.Len())
	}
}

func TestSampleQueue_DrainIntoSmallerBuffer(t *testing.T) {
	var q SampleQueue
	for i := 0; i < 5; i++ {
		q.Push(Sample{TickMs: uint32(i)})
	}
	out := make([]Sample, 2)
	n := q.DrainInto(out)
	if n != 2 {
		t.Fatalf("expected 2, got %d", n)
	}
	if q.Len() != 3 {
		t.Errorf("expected 3 remaining, got %d", q.Len())
	}
}
