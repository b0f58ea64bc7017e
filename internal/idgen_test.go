package internal

import (
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequentialIDs(t *testing.T) {
	ids := &SequentialIDs{Prefix: "conv"}
	assert.Equal(t, "conv-1", ids.NewID())
	assert.Equal(t, "conv-2", ids.NewID())
	assert.Equal(t, "conv-3", ids.NewID())
}

func TestSequentialIDs_Concurrent(t *testing.T) {
	ids := &SequentialIDs{Prefix: "id"}

	const workers, perWorker = 8, 50
	var mu sync.Mutex
	seen := make(map[string]bool, workers*perWorker)

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range perWorker {
				id := ids.NewID()
				mu.Lock()
				seen[id] = true
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Len(t, seen, workers*perWorker)
}

func TestIDFunc(t *testing.T) {
	var gen IDGenerator = IDFunc(func() string { return "fixed" })
	assert.Equal(t, "fixed", gen.NewID())
}

func TestUUIDGenerator(t *testing.T) {
	gen := UUIDGenerator{}
	a, b := gen.NewID(), gen.NewID()

	parsed, err := uuid.Parse(a)
	require.NoError(t, err)
	assert.Equal(t, uuid.Version(4), parsed.Version())
	assert.NotEqual(t, a, b)
}

func TestFixedClock(t *testing.T) {
	at := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	clock := FixedClock(at)
	assert.Equal(t, at, clock())
	assert.Equal(t, at, clock())
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	now := SystemClock()
	assert.False(t, now.Before(before))
}
