package service

import (
	"fmt"
	"sync"
	"testing"
)

func TestKeyedQueuePreservesOrderPerKey(t *testing.T) {
	q := NewKeyedQueue()

	var mu sync.Mutex
	seen := map[string][]int{}

	for i := 0; i < 50; i++ {
		for _, key := range []string{"a", "b", "c"} {
			key, i := key, i
			q.Submit(key, func() {
				mu.Lock()
				seen[key] = append(seen[key], i)
				mu.Unlock()
			})
		}
	}
	q.Wait()

	for _, key := range []string{"a", "b", "c"} {
		got := seen[key]
		if len(got) != 50 {
			t.Fatalf("key %s ran %d jobs, want 50", key, len(got))
		}
		for i, v := range got {
			if v != i {
				t.Fatalf("key %s job %d ran at position %d", key, v, i)
			}
		}
	}
}

func TestKeyedQueueRejectsAfterClose(t *testing.T) {
	q := NewKeyedQueue()
	ran := 0
	q.Submit("k", func() { ran++ })
	q.Close()

	if q.Submit("k", func() { ran++ }) {
		t.Error("Submit after Close should report false")
	}
	q.Wait()
	if ran != 1 {
		t.Errorf("ran = %d, want 1", ran)
	}
}

func ExampleKeyedQueue() {
	q := NewKeyedQueue()
	q.Submit("user-1:translation", func() { fmt.Println("first") })
	q.Wait()
	q.Submit("user-1:translation", func() { fmt.Println("second") })
	q.Wait()
	// Output:
	// first
	// second
}

func TestKeyedQueueSurvivesPanickingJob(t *testing.T) {
	q := NewKeyedQueue()

	ran := false
	q.Submit("k", func() { panic("boom") })
	q.Submit("k", func() { ran = true })
	q.Wait()

	if !ran {
		t.Fatal("job after a panicking job did not run")
	}

	again := false
	if !q.Submit("k", func() { again = true }) {
		t.Fatal("Submit after a panic should still be accepted")
	}
	q.Wait()
	if !again {
		t.Error("lane did not drain after a panic")
	}
}
