package keylock

import (
	"sync"
	"testing"
)

func TestLockSerializesSameKey(t *testing.T) {
	registry := New()
	counter := 0

	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := registry.Lock("submission-1")
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 64 {
		t.Fatalf("expected 64 increments, got %d", counter)
	}
}

func TestLockReleasesEntries(t *testing.T) {
	registry := New()
	unlock := registry.Lock("user-1")
	unlock()

	registry.mu.Lock()
	defer registry.mu.Unlock()
	if len(registry.locks) != 0 {
		t.Fatalf("expected empty registry after unlock, got %d entries", len(registry.locks))
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	registry := New()
	unlockA := registry.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := registry.Lock("b")
		unlockB()
		close(done)
	}()
	<-done
}
