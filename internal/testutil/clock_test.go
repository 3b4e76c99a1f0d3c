package testutil

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFixedClock_ReturnsPinnedTime(t *testing.T) {
	clock := ClockAt(2024, time.March, 15)

	assert.Equal(t, time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), clock.Now())
	assert.Equal(t, clock.Now(), clock.Now())
}

func TestFixedClock_ConvertsToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	clock := NewFixedClock(time.Date(2023, time.December, 31, 22, 0, 0, 0, loc))

	// 22:00 at UTC-3 is already January 1st in UTC
	assert.Equal(t, 2024, clock.Now().Year())
	assert.Equal(t, time.January, clock.Now().Month())
	assert.Equal(t, time.UTC, clock.Now().Location())
}

func TestFixedClock_SetAndAdvance(t *testing.T) {
	clock := ClockAt(2024, time.January, 31)

	clock.Advance(24 * time.Hour)
	assert.Equal(t, time.February, clock.Now().Month())

	clock.Set(time.Date(2030, time.June, 1, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 2030, clock.Now().Year())
}

func TestFixedClock_ThreadSafe(t *testing.T) {
	clock := ClockAt(2024, time.January, 1)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				clock.Advance(time.Second)
				_ = clock.Now()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, time.Date(2024, time.January, 1, 0, 16, 40, 0, time.UTC), clock.Now())
}
