package cache

import (
	"runtime"
	"sync"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/seion-lab/kintai/pkg/domain/types"
)

func TestKeyedLocks_MutualExclusion(t *testing.T) {
	locks := newKeyedLocks()
	key := types.RecordID("u1_2025-04-15")

	const workers = 16
	var wg sync.WaitGroup
	var inside, counter int

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release := locks.acquire(key)
			defer release()

			inside++
			gt.Number(t, inside).Equal(1)
			counter++
			inside--
		}()
	}
	wg.Wait()

	gt.Number(t, counter).Equal(workers)
}

func TestKeyedLocks_IndependentKeys(t *testing.T) {
	locks := newKeyedLocks()

	releaseA := locks.acquire("a_2025-04-15")
	defer releaseA()

	// A different key must not block behind the held one
	done := make(chan struct{})
	go func() {
		release := locks.acquire("b_2025-04-15")
		release()
		close(done)
	}()
	<-done
}

func TestKeyedLocks_DropsUncontendedEntries(t *testing.T) {
	locks := newKeyedLocks()
	gt.Number(t, locks.size()).Equal(0)

	releaseA := locks.acquire("a_2025-04-15")
	releaseB := locks.acquire("b_2025-04-15")
	gt.Number(t, locks.size()).Equal(2)

	releaseA()
	gt.Number(t, locks.size()).Equal(1)
	releaseB()
	gt.Number(t, locks.size()).Equal(0)
}

func TestKeyedLocks_KeepsContendedEntry(t *testing.T) {
	locks := newKeyedLocks()
	key := types.RecordID("u1_2025-04-15")

	releaseFirst := locks.acquire(key)

	acquired := make(chan func())
	go func() {
		acquired <- locks.acquire(key)
	}()

	// Wait until the second holder is queued on the entry
	for {
		locks.mu.Lock()
		ref := locks.locks[key].ref
		locks.mu.Unlock()
		if ref == 2 {
			break
		}
		runtime.Gosched()
	}
	releaseFirst()
	gt.Number(t, locks.size()).Equal(1)

	releaseSecond := <-acquired
	releaseSecond()
	gt.Number(t, locks.size()).Equal(0)
}
