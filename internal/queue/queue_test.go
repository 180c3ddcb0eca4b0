package queue

import (
	"testing"
	"time"

	"github.com/dpetrov/elevator-cab/internal/domain"
)

func TestCommandQueue_TryDequeueEmpty(t *testing.T) {
	q := NewCommandQueue(1)
	if _, ok := q.TryDequeue(); ok {
		t.Fatal("expected TryDequeue on empty queue to report false")
	}
}

func TestCommandQueue_EnqueueDequeueOrder(t *testing.T) {
	q := NewCommandQueue(4)
	q.Enqueue(domain.Command{Type: domain.CommandCallToFloorAndGoUp, TargetFloor: 2})
	q.Enqueue(domain.Command{Type: domain.CommandCallToFloorAndGoDown, TargetFloor: 3})

	c1, ok := q.TryDequeue()
	if !ok || c1.TargetFloor != 2 {
		t.Fatalf("expected first command floor 2, got %+v ok=%v", c1, ok)
	}
	c2, ok := q.TryDequeue()
	if !ok || c2.TargetFloor != 3 {
		t.Fatalf("expected second command floor 3, got %+v ok=%v", c2, ok)
	}
}

func TestCommandQueue_TryEnqueueFull(t *testing.T) {
	q := NewCommandQueue(1)
	if !q.TryEnqueue(domain.Command{}) {
		t.Fatal("expected first TryEnqueue to succeed")
	}
	if q.TryEnqueue(domain.Command{}) {
		t.Fatal("expected TryEnqueue on full queue to fail")
	}
}

func TestStateChangeQueue_EnqueueDequeue(t *testing.T) {
	q := NewStateChangeQueue()
	q.Enqueue(domain.StateChange{Type: domain.ChangeKeepAlive})

	sc, ok := q.Dequeue()
	if !ok || sc.Type != domain.ChangeKeepAlive {
		t.Fatalf("expected keep-alive change, got %+v ok=%v", sc, ok)
	}
}

func TestStateChangeQueue_DequeueBlocksThenDelivers(t *testing.T) {
	q := NewStateChangeQueue()
	done := make(chan domain.StateChange, 1)
	go func() {
		sc, _ := q.Dequeue()
		done <- sc
	}()

	time.Sleep(10 * time.Millisecond)
	q.Enqueue(domain.StateChange{Type: domain.ChangeOtherChange})

	select {
	case sc := <-done:
		if sc.Type != domain.ChangeOtherChange {
			t.Fatalf("unexpected change type %v", sc.Type)
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not unblock after Enqueue")
	}
}

func TestStateChangeQueue_CloseUnblocksDequeue(t *testing.T) {
	q := NewStateChangeQueue()
	done := make(chan bool, 1)
	go func() {
		_, ok := q.Dequeue()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	q.Close()

	select {
	case ok := <-done:
		if ok {
			t.Fatal("expected Dequeue to report false after Close on an empty queue")
		}
	case <-time.After(time.Second):
		t.Fatal("Dequeue did not unblock after Close")
	}
}
