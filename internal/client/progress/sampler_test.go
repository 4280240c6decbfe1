package progress

import (
	"testing"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func TestNewSampler_RejectsNonPositiveTotal(t *testing.T) {
	for _, total := range []int64{0, -1} {
		s, err := NewSampler(total)
		require.ErrorIs(t, err, common.ErrInvalidTransferSize)
		require.Nil(t, s)
	}
}

func TestObserve_SpeedAndETAFromTwoSamples(t *testing.T) {
	s, err := NewSampler(10_000_000)
	require.NoError(t, err)

	first := s.Observe(0, t0)
	assert.Equal(t, 0, first.Percent)
	assert.False(t, first.ETAKnown(), "no speed yet, ETA must be unknown")

	second := s.Observe(1_000_000, t0.Add(time.Second))
	assert.InDelta(t, 1_000_000, second.SpeedBytesPerSec, 1e-6)
	assert.EqualValues(t, 9, second.ETASeconds)
	assert.Equal(t, 10, second.Percent)
}

func TestObserve_FirstDifferenceNotCumulative(t *testing.T) {
	s, _ := NewSampler(1000)

	s.Observe(0, t0)
	s.Observe(500, t0.Add(time.Second))
	stalled := s.Observe(500, t0.Add(2*time.Second))

	assert.Zero(t, stalled.SpeedBytesPerSec, "a stall must show zero speed, not the average")
	assert.False(t, stalled.ETAKnown())

	burst := s.Observe(900, t0.Add(2500*time.Millisecond))
	assert.InDelta(t, 800, burst.SpeedBytesPerSec, 1e-9)
	assert.EqualValues(t, 1, burst.ETASeconds)
}

func TestObserve_ZeroElapsedKeepsPreviousSpeed(t *testing.T) {
	s, _ := NewSampler(1000)

	s.Observe(0, t0)
	before := s.Observe(100, t0.Add(time.Second))
	same := s.Observe(200, t0.Add(time.Second))

	assert.Equal(t, before.SpeedBytesPerSec, same.SpeedBytesPerSec)
	assert.EqualValues(t, 8, same.ETASeconds, "ETA uses retained speed and new remaining bytes")
	assert.Equal(t, 20, same.Percent)
}

func TestObserve_PercentClampedAndMonotonic(t *testing.T) {
	s, _ := NewSampler(3)

	samples := []int64{0, 1, 1, 2, 3, 4}
	last := -1
	for i, b := range samples {
		est := s.Observe(b, t0.Add(time.Duration(i)*time.Second))
		assert.GreaterOrEqual(t, est.Percent, last)
		assert.GreaterOrEqual(t, est.Percent, 0)
		assert.LessOrEqual(t, est.Percent, 100)
		last = est.Percent
	}
	assert.Equal(t, 100, last)
}

func TestObserve_PercentRounding(t *testing.T) {
	s, _ := NewSampler(200)
	assert.Equal(t, 1, s.Observe(1, t0).Percent, "half a percent rounds up")
	assert.Equal(t, 33, s.Observe(66, t0.Add(time.Second)).Percent)
}

func TestObserve_CompleteTransferHasZeroETA(t *testing.T) {
	s, _ := NewSampler(100)
	s.Observe(0, t0)
	done := s.Observe(100, t0.Add(time.Second))
	require.True(t, done.ETAKnown())
	assert.Zero(t, done.ETASeconds)
}

func TestObserve_PropertyPercentNonDecreasing(t *testing.T) {
	for _, total := range []int64{1, 7, 1024, 10_000_000} {
		s, err := NewSampler(total)
		require.NoError(t, err)

		last := 0
		step := max(total/13, 1)
		for i, sent := 0, int64(0); sent <= total; i, sent = i+1, sent+step {
			est := s.Observe(sent, t0.Add(time.Duration(i)*time.Millisecond))
			require.GreaterOrEqual(t, est.Percent, last, "total=%d sent=%d", total, sent)
			require.LessOrEqual(t, est.Percent, 100)
			last = est.Percent
		}
	}
}
