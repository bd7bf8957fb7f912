package download

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"golang.org/x/crypto/blake2b"

	"github.com/DrTomLLC/StoryStream/internal/domain"
)

// runTask executes one DownloadTask end to end: probe, range-resume, stream,
// checkpoint, retry-on-transient-failure, until it reaches a terminal state
// or the task's context is cancelled (Cancel) or paused (Pause).
func (m *Manager) runTask(ctx context.Context, rt *runningTask) {
	t := rt.task
	t.State = domain.DownloadRunning
	t.UpdatedAt = time.Now()

	restarts := 0
	for attempt := 0; ; attempt++ {
		err := m.attempt(ctx, rt)
		if err == nil {
			t.MarkComplete()
			if m.resume != nil {
				_ = m.resume.Clear(ctx, t.SourceURL)
			}
			m.onEvent(t)
			return
		}

		if errors.Is(err, context.Canceled) {
			select {
			case <-rt.paused:
				t.State = domain.DownloadPaused
			default:
				t.State = domain.DownloadCancelled
			}
			m.onEvent(t)
			return
		}

		if errors.Is(err, ErrValidatorMismatch) && restarts < 2 {
			// The resource changed under us: drop the checkpoint so the next
			// attempt starts from byte zero and truncates the partial file.
			restarts++
			if m.resume != nil {
				_ = m.resume.Clear(ctx, t.SourceURL)
			}
			t.BytesDownloaded = 0
			continue
		}

		var herr *httpStatusError
		class := classifyTransient
		var retryAfter time.Duration
		if errors.As(err, &herr) {
			class = classifyStatus(herr.code)
			if herr.code == http.StatusTooManyRequests {
				retryAfter = parseRetryAfter(herr.retryAfter, 5*time.Minute, backoff(defaultBackoffBas, attempt))
			}
		} else {
			class = classifyError(err)
		}

		t.Attempts = attempt + 1
		if class == classifyPermanent || t.Attempts > m.cfg.RetryMaxAttempts {
			t.MarkFailed(err.Error())
			m.onEvent(t)
			return
		}

		delay := retryAfter
		if delay == 0 {
			delay = backoff(defaultBackoffBas, attempt)
		}
		select {
		case <-ctx.Done():
			t.State = domain.DownloadCancelled
			m.onEvent(t)
			return
		case <-time.After(delay):
		}
	}
}

type httpStatusError struct {
	code       int
	retryAfter string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("download: unexpected status %d", e.code)
}

// attempt runs a single probe+stream pass: consult C6 for a prior checkpoint,
// issue a conditional range request, and copy the body to disk.
func (m *Manager) attempt(ctx context.Context, rt *runningTask) error {
	t := rt.task

	var offset int64
	var etag, lastMod string
	if m.resume != nil {
		if rec, err := m.resume.Get(ctx, t.SourceURL); err == nil {
			offset = rec.BytesDownloaded
			etag, lastMod = rec.Validator()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, t.SourceURL, nil)
	if err != nil {
		return err
	}
	if offset > 0 {
		req.Header.Set("Range", fmt.Sprintf("bytes=%d-", offset))
		if etag != "" {
			req.Header.Set("If-Range", etag)
		} else if lastMod != "" {
			req.Header.Set("If-Range", lastMod)
		}
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		// Server ignored the range (or none was requested): start fresh.
		if offset > 0 {
			offset = 0
			t.BytesDownloaded = 0
			if f, ferr := os.Create(t.DestPath); ferr == nil {
				f.Close()
			}
		}
	case http.StatusPartialContent:
		respEtag := resp.Header.Get("ETag")
		respLastMod := resp.Header.Get("Last-Modified")
		if etag != "" && respEtag != "" && etag != respEtag {
			return ErrValidatorMismatch
		}
		if lastMod != "" && respLastMod != "" && lastMod != respLastMod {
			return ErrValidatorMismatch
		}
	case http.StatusRequestedRangeNotSatisfiable:
		return ErrValidatorMismatch
	default:
		return &httpStatusError{code: resp.StatusCode, retryAfter: resp.Header.Get("Retry-After")}
	}

	if total := resp.ContentLength; total >= 0 {
		sum := total + offset
		if resp.StatusCode == http.StatusOK {
			sum = total
		}
		t.TotalBytes = &sum
	}
	t.ETag = resp.Header.Get("ETag")
	t.LastModified = resp.Header.Get("Last-Modified")

	return m.stream(ctx, rt, resp.Body, offset)
}

// stream copies resp body to DestPath starting at offset, throttled through
// the shared bandwidth limiter, checkpointing to C6 roughly every 64KiB and
// invoking the progress callback at most every 100ms.
func (m *Manager) stream(ctx context.Context, rt *runningTask, body io.Reader, offset int64) error {
	t := rt.task

	flags := os.O_CREATE | os.O_WRONLY
	if offset > 0 {
		flags |= os.O_APPEND
	} else {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(t.DestPath, flags, 0o644)
	if err != nil {
		return err
	}
	defer f.Close()
	if offset > 0 {
		// Drop bytes written after the last checkpoint so the body lands at offset.
		if err := f.Truncate(offset); err != nil {
			return err
		}
	}

	t.BytesDownloaded = offset
	reader := newThrottledReader(ctx, body, m.limiter)

	var hasher = newChecksumWriter(t.ExpectedChecksum)
	if offset > 0 && hasher.enabled {
		// Hash the bytes already on disk so the checksum covers the whole file.
		prefix, err := os.Open(t.DestPath)
		if err != nil {
			return err
		}
		_, err = io.Copy(hasher.h, io.LimitReader(prefix, offset))
		prefix.Close()
		if err != nil {
			return err
		}
	}
	var sinceCheckpoint int64
	var lastProgress time.Time
	buf := make([]byte, 32*1024)

	for {
		select {
		case <-rt.paused:
			return context.Canceled
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		n, rerr := reader.Read(buf)
		if n > 0 {
			if _, werr := f.Write(buf[:n]); werr != nil {
				return werr
			}
			hasher.Write(buf[:n])
			t.BytesDownloaded += int64(n)
			sinceCheckpoint += int64(n)

			if sinceCheckpoint >= checkpointEvery && m.resume != nil {
				m.checkpoint(ctx, t)
				sinceCheckpoint = 0
			}
			if time.Since(lastProgress) >= progressInterval {
				m.onEvent(t)
				lastProgress = time.Now()
			}
		}
		if rerr != nil {
			if rerr == io.EOF {
				break
			}
			return rerr
		}
	}

	if m.resume != nil {
		m.checkpoint(ctx, t)
	}

	if t.ExpectedChecksum != "" {
		t.ActualChecksum = hasher.Sum()
		if t.ActualChecksum != t.ExpectedChecksum {
			return ErrChecksumMismatch
		}
	}
	return nil
}

func (m *Manager) checkpoint(ctx context.Context, t *domain.DownloadTask) {
	rec := domain.NewResumeRecord(t.SourceURL, t.DestPath)
	rec.ETag = t.ETag
	rec.LastModified = t.LastModified
	rec.BytesDownloaded = t.BytesDownloaded
	if t.TotalBytes != nil {
		rec.TotalBytes = *t.TotalBytes
	}
	if err := m.resume.Put(ctx, rec); err != nil && m.logger != nil {
		m.logger.Warn("download: checkpoint write failed", "task", t.ID, "err", err)
	}
}

// cleanupPartial deletes a cancelled task's partial file on disk.
func cleanupPartial(t *domain.DownloadTask) {
	if t.DestPath != "" {
		_ = os.Remove(t.DestPath)
	}
}

type checksumWriter struct {
	h interface {
		io.Writer
		Sum([]byte) []byte
	}
	enabled bool
}

func newChecksumWriter(expected string) *checksumWriter {
	if expected == "" {
		return &checksumWriter{enabled: false}
	}
	h, _ := blake2b.New256(nil)
	return &checksumWriter{h: h, enabled: true}
}

func (c *checksumWriter) Write(p []byte) {
	if c.enabled {
		c.h.Write(p)
	}
}

func (c *checksumWriter) Sum() string {
	if !c.enabled {
		return ""
	}
	return hex.EncodeToString(c.h.Sum(nil))
}
