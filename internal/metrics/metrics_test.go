package metrics

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCounter(t *testing.T) {
	t.Run("Inc and Load", func(t *testing.T) {
		var c Counter
		c.Inc()
		c.Inc()
		c.Add(3)

		assert.Equal(t, uint64(5), c.Load())
	})

	t.Run("Concurrent increments", func(t *testing.T) {
		var c Counter
		var wg sync.WaitGroup

		for i := 0; i < 50; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				c.Inc()
			}()
		}
		wg.Wait()

		assert.Equal(t, uint64(50), c.Load())
	})
}

func TestTimer(t *testing.T) {
	timer := StartTimer()
	time.Sleep(5 * time.Millisecond)

	assert.GreaterOrEqual(t, timer.Duration(), 5*time.Millisecond)
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()

	p.Requests.Inc()
	p.Refreshes.Inc()

	assert.Equal(t, uint64(1), p.Requests.Load())
	assert.Equal(t, uint64(1), p.Refreshes.Load())
	assert.Equal(t, uint64(0), p.RefreshFailures.Load())
}
