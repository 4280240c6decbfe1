// Package progress turns raw (bytes, time) samples of a transfer into
// percentage, speed and ETA estimates.
package progress

import (
	"fmt"
	"math"
	"time"

	"github.com/dmitrijs2005/gophdrop/internal/common"
)

// ETAUnknown marks an estimate without a usable speed. It is not "0 seconds".
const ETAUnknown int64 = -1

// Estimate is the result of one observed sample.
type Estimate struct {
	Percent          int
	SpeedBytesPerSec float64
	ETASeconds       int64
}

// ETAKnown reports whether ETASeconds carries a real value.
func (e Estimate) ETAKnown() bool {
	return e.ETASeconds != ETAUnknown
}

// Sampler computes speed as a first difference against the previous sample
// only, so stalls and bursts show up immediately.
//
// A Sampler is not safe for concurrent use; the transfer controller feeds it
// from a single goroutine.
type Sampler struct {
	total    int64
	hasPrev  bool
	prevAt   time.Time
	prevSent int64
	speed    float64
}

// NewSampler returns a sampler for a transfer of totalBytes.
func NewSampler(totalBytes int64) (*Sampler, error) {
	if totalBytes <= 0 {
		return nil, fmt.Errorf("%w: total bytes %d", common.ErrInvalidTransferSize, totalBytes)
	}
	return &Sampler{total: totalBytes}, nil
}

// Observe records bytesTransferred at time at and returns the new estimate.
//
// When no time elapsed since the previous sample the previous speed is kept.
func (s *Sampler) Observe(bytesTransferred int64, at time.Time) Estimate {
	if s.hasPrev {
		if dt := at.Sub(s.prevAt).Seconds(); dt > 0 {
			s.speed = math.Max(0, float64(bytesTransferred-s.prevSent)/dt)
		}
	}
	s.hasPrev = true
	s.prevAt = at
	s.prevSent = bytesTransferred

	est := Estimate{
		Percent:          s.percent(bytesTransferred),
		SpeedBytesPerSec: s.speed,
		ETASeconds:       ETAUnknown,
	}

	if s.speed > 0 {
		remaining := max(s.total-bytesTransferred, 0)
		est.ETASeconds = int64(math.Ceil(float64(remaining) / s.speed))
	}

	return est
}

func (s *Sampler) percent(sent int64) int {
	p := math.Round(100 * float64(sent) / float64(s.total))
	return int(min(max(p, 0), 100))
}
