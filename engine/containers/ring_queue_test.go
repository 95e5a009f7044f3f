package containers

import "testing"

func TestNewRingQueue(t *testing.T) {
	if _, err := NewRingQueue[int](0); err == nil {
		t.Error("NewRingQueue(0) returned no error")
	}
	if _, err := NewRingQueue[int](-3); err == nil {
		t.Error("NewRingQueue(-3) returned no error")
	}
	rq, err := NewRingQueue[int](4)
	if err != nil {
		t.Fatalf("NewRingQueue(4) error = %v", err)
	}
	if !rq.IsEmpty() || rq.Len() != 0 || rq.Cap() != 4 {
		t.Errorf("fresh queue: empty %v, len %d, cap %d", rq.IsEmpty(), rq.Len(), rq.Cap())
	}
}

func TestRingQueueFIFO(t *testing.T) {
	rq, _ := NewRingQueue[string](3)

	for _, v := range []string{"a", "b", "c"} {
		if err := rq.Enqueue(v); err != nil {
			t.Fatalf("Enqueue(%q) error = %v", v, err)
		}
	}
	if !rq.IsFull() {
		t.Error("queue with 3 of 3 elements is not full")
	}
	if err := rq.Enqueue("d"); err == nil {
		t.Error("Enqueue on a full queue returned no error")
	}

	if v, err := rq.Peek(); err != nil || v != "a" {
		t.Errorf("Peek() = %q, %v, want \"a\", nil", v, err)
	}

	for _, want := range []string{"a", "b", "c"} {
		v, err := rq.Dequeue()
		if err != nil {
			t.Fatalf("Dequeue() error = %v", err)
		}
		if v != want {
			t.Errorf("Dequeue() = %q, want %q", v, want)
		}
	}
	if _, err := rq.Dequeue(); err == nil {
		t.Error("Dequeue on an empty queue returned no error")
	}
}

// The queue must stay coherent when the write index wraps past the end of
// the backing slice.
func TestRingQueueWrapAround(t *testing.T) {
	rq, _ := NewRingQueue[int](3)

	for i := 1; i <= 3; i++ {
		rq.Enqueue(i)
	}
	rq.Dequeue()
	rq.Dequeue()
	rq.Enqueue(4)
	rq.Enqueue(5)

	values := rq.Values()
	want := []int{3, 4, 5}
	if len(values) != len(want) {
		t.Fatalf("Values() = %v, want %v", values, want)
	}
	for i := range want {
		if values[i] != want[i] {
			t.Errorf("Values()[%d] = %d, want %d", i, values[i], want[i])
		}
	}
}

func TestRingQueueValuesEmpty(t *testing.T) {
	rq, _ := NewRingQueue[int](2)
	if values := rq.Values(); len(values) != 0 {
		t.Errorf("Values() on empty queue = %v", values)
	}
}
