package testfixtures

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestClockDefaultsToReferenceTime(t *testing.T) {
	t.Parallel()

	assert.Equal(t, ReferenceTime(), NewClock(time.Time{}).Now())
}

func TestClockAdvance(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, time.March, 14, 9, 26, 0, 0, time.UTC)
	clock := NewClock(start)
	now := clock.NowFunc()

	assert.Equal(t, start.Add(90*time.Minute), clock.Advance(90*time.Minute))
	assert.Equal(t, start.Add(90*time.Minute), now())

	clock.AdvanceDays(30)
	assert.Equal(t, "2024-04-13", clock.DateIn(0))
	assert.Equal(t, "2024-04-20", clock.DateIn(7))
}

func TestNilClockUsesWallTime(t *testing.T) {
	t.Parallel()

	var clock *Clock
	assert.WithinDuration(t, time.Now(), clock.NowFunc()(), time.Second)
}

func TestSequence(t *testing.T) {
	t.Parallel()

	seq := NewSequence("token")
	assert.Empty(t, seq.Last())

	var wg sync.WaitGroup
	for range 10 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			seq.Func()()
		}()
	}
	wg.Wait()

	issued := seq.Issued()
	assert.Len(t, issued, 10)
	assert.ElementsMatch(t, issued, []string{
		"token-1", "token-2", "token-3", "token-4", "token-5",
		"token-6", "token-7", "token-8", "token-9", "token-10",
	})
	assert.Equal(t, "token-11", seq.Next())
	assert.Equal(t, "token-11", seq.Last())
	assert.Equal(t, "seq-1", NewSequence("").Next())
}
