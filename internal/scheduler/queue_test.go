package scheduler

import "testing"

func TestQueueFIFO(t *testing.T) {
	q := newQueue()
	q.push("a")
	q.push("b")
	q.push("c")

	if got, _ := q.pop(); got != "a" {
		t.Fatalf("expected a, got %s", got)
	}
	if q.len() != 2 {
		t.Fatalf("expected len 2, got %d", q.len())
	}
}

func TestQueueRemove(t *testing.T) {
	q := newQueue()
	q.push("a")
	q.push("b")

	if !q.remove("a") {
		t.Fatalf("expected remove to find a")
	}
	if q.remove("a") {
		t.Fatalf("expected second remove to fail")
	}
	if got, _ := q.pop(); got != "b" {
		t.Fatalf("expected b, got %s", got)
	}
}

func TestQueuePopEmpty(t *testing.T) {
	q := newQueue()
	if _, ok := q.pop(); ok {
		t.Fatalf("expected pop on empty queue to fail")
	}
}
