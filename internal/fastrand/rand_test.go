package fastrand

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandPoolUsage(t *testing.T) {
	t.Parallel()

	s := NewRandPool()

	ok := false
	// seeing four zeroes in a row is very (1/(2^(8*4))) unlikely, and
	// indicates something is broken in our randomness pool
	for i := 0; i < 4; i++ {
		if s.Uint64() != 0 {
			ok = true
			break
		}
	}
	require.True(t, ok)
}

func TestGlobalUsage(t *testing.T) {
	t.Parallel()

	ok := false
	for i := 0; i < 4; i++ {
		if Uint64() != 0 {
			ok = true
			break
		}
	}
	require.True(t, ok)

	// a source that only produced 63-bit values would never set the
	// top bit
	top := false
	for i := 0; i < 64 && !top; i++ {
		top = Uint64()>>63 == 1
	}
	require.True(t, top)
}

func TestConcurrentUint64(t *testing.T) {
	t.Parallel()

	const workers = 8
	const draws = 1000

	results := make(chan uint64, workers*draws)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < draws; j++ {
				results <- Uint64()
			}
		}()
	}
	wg.Wait()
	close(results)

	seen := make(map[uint64]struct{}, workers*draws)
	for n := range results {
		_, dup := seen[n]
		require.False(t, dup, "drew %d twice", n)
		seen[n] = struct{}{}
	}
	require.Len(t, seen, workers*draws)
}
