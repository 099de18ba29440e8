package connection

import (
	"sync"
	"testing"
)

func TestHandshakeSignalResolveOnce(t *testing.T) {
	sig := newHandshakeSignal()

	if !sig.resolve(signalSuccess) {
		t.Fatal("first resolve should win")
	}
	if sig.resolve(signalFailed) {
		t.Fatal("second resolve should lose")
	}

	if got := <-sig.outcome(); got != signalSuccess {
		t.Errorf("outcome = %v, want success", got)
	}
}

func TestHandshakeSignalConcurrentResolve(t *testing.T) {
	sig := newHandshakeSignal()

	const racers = 16
	var wg sync.WaitGroup
	var winners sync.Map

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(outcome signalOutcome) {
			defer wg.Done()
			if sig.resolve(outcome) {
				winners.Store(outcome, true)
			}
		}(signalOutcome(1 + uint8(i)%3))
	}
	wg.Wait()

	count := 0
	winners.Range(func(_, _ any) bool {
		count++
		return true
	})
	if count != 1 {
		t.Errorf("winners = %d, want exactly 1", count)
	}

	// The delivered outcome matches the winner.
	delivered := <-sig.outcome()
	if _, ok := winners.Load(delivered); !ok {
		t.Errorf("delivered outcome %v was not the winner", delivered)
	}
}
