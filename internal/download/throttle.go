package download

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// throttledReader wraps an io.Reader, draining n tokens from a shared
// limiter for every n bytes read so aggregate throughput across every
// concurrent task stays under the configured bandwidth cap (spec.md §4.5
// "Bandwidth throttling" - a single global token bucket, not per-task).
type throttledReader struct {
	r       io.Reader
	limiter *rate.Limiter
	ctx     context.Context
}

func newThrottledReader(ctx context.Context, r io.Reader, limiter *rate.Limiter) *throttledReader {
	return &throttledReader{r: r, limiter: limiter, ctx: ctx}
}

func (t *throttledReader) Read(p []byte) (int, error) {
	n, err := t.r.Read(p)
	if n > 0 && t.limiter != nil {
		if waitErr := t.waitN(n); waitErr != nil {
			return n, waitErr
		}
	}
	return n, err
}

// waitN drains n tokens, splitting into burst-sized waits since WaitN
// rejects a request larger than the limiter's burst capacity.
func (t *throttledReader) waitN(n int) error {
	burst := t.limiter.Burst()
	for n > 0 {
		chunk := n
		if burst > 0 && chunk > burst {
			chunk = burst
		}
		if err := t.limiter.WaitN(t.ctx, chunk); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// newLimiter builds the global bandwidth limiter from config. A zero
// bytesPerSecond means unlimited (nil limiter, no throttling).
func newLimiter(bytesPerSecond, burst int64) *rate.Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = bytesPerSecond
	}
	return rate.NewLimiter(rate.Limit(bytesPerSecond), int(burst))
}
