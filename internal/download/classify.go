package download

import (
	"errors"
	"math/rand/v2"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// classification is the transient/permanent split from spec.md §4.5/§7: DNS,
// connect, read timeout, 5xx, and partial-close failures are retried;
// 4xx (except 408/429), validator mismatch after two restarts, and disk
// full are terminal.
type classification int

const (
	classifyTransient classification = iota
	classifyPermanent
)

// classifyError inspects a network/transport error and decides whether the
// task should retry or fail outright.
func classifyError(err error) classification {
	if err == nil {
		return classifyTransient
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return classifyTransient
	}
	if errors.Is(err, ErrValidatorMismatch) {
		return classifyPermanent
	}
	// Connection resets, EOF on a body read, and similar I/O errors surface
	// as plain errors wrapping os.SyscallError / io.ErrUnexpectedEOF; treat
	// anything not explicitly identified as disk-space exhaustion as
	// transient, matching the teacher's "retry unless proven permanent" bias.
	if isDiskFull(err) {
		return classifyPermanent
	}
	return classifyTransient
}

// classifyStatus maps an HTTP response status to a classification. 408 and
// 429 are retried despite being 4xx; 429 additionally respects Retry-After.
func classifyStatus(code int) classification {
	switch {
	case code == http.StatusRequestTimeout, code == http.StatusTooManyRequests:
		return classifyTransient
	case code >= 500:
		return classifyTransient
	case code >= 400:
		return classifyPermanent
	default:
		return classifyTransient
	}
}

func isDiskFull(err error) bool {
	return strings.Contains(err.Error(), "no space left on device")
}

// parseRetryAfter parses a Retry-After header (delta-seconds or HTTP-date),
// capped at max. Returns fallback if the header is absent or unparseable.
func parseRetryAfter(header string, max, fallback time.Duration) time.Duration {
	header = strings.TrimSpace(header)
	if header == "" {
		return fallback
	}
	if secs, err := strconv.Atoi(header); err == nil && secs >= 0 {
		d := time.Duration(secs) * time.Second
		if d > max {
			return max
		}
		return d
	}
	t, err := time.Parse(time.RFC1123, header)
	if err != nil {
		return fallback
	}
	until := time.Until(t)
	if until <= 0 {
		return 0
	}
	if until > max {
		return max
	}
	return until
}

// backoff computes an exponential delay with jitter for retry attempt
// (0-indexed), matching the teacher pack's httpclient.jitter convention.
func backoff(base time.Duration, attempt int) time.Duration {
	d := base * time.Duration(uint64(1)<<uint(attempt))
	return jitter(d)
}

func jitter(d time.Duration) time.Duration {
	if d <= 0 {
		return 0
	}
	frac := float64(d) * 0.25
	delta := time.Duration(rand.Float64()*frac*2) - time.Duration(frac)
	result := d + delta
	if result < 0 {
		return 0
	}
	return result
}
