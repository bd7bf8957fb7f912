package download

import (
	"net/http"
	"testing"
	"time"
)

func TestClassifyStatus(t *testing.T) {
	cases := map[int]classification{
		http.StatusRequestTimeout:      classifyTransient,
		http.StatusTooManyRequests:     classifyTransient,
		http.StatusInternalServerError: classifyTransient,
		http.StatusBadGateway:          classifyTransient,
		http.StatusNotFound:            classifyPermanent,
		http.StatusForbidden:           classifyPermanent,
	}
	for code, want := range cases {
		if got := classifyStatus(code); got != want {
			t.Errorf("classifyStatus(%d) = %v, want %v", code, got, want)
		}
	}
}

func TestParseRetryAfter(t *testing.T) {
	d := parseRetryAfter("5", time.Minute, time.Second)
	if d != 5*time.Second {
		t.Fatalf("expected 5s, got %v", d)
	}

	d = parseRetryAfter("", time.Minute, 7*time.Second)
	if d != 7*time.Second {
		t.Fatalf("expected fallback 7s, got %v", d)
	}

	d = parseRetryAfter("9999", 10*time.Second, time.Second)
	if d != 10*time.Second {
		t.Fatalf("expected cap at max 10s, got %v", d)
	}
}

func TestBackoffGrowsAndJitters(t *testing.T) {
	base := 100 * time.Millisecond
	d0 := backoff(base, 0)
	d3 := backoff(base, 3)
	if d3 <= d0 {
		t.Fatalf("expected later attempts to back off longer: d0=%v d3=%v", d0, d3)
	}
}

func TestIsDiskFull(t *testing.T) {
	err := &pathError{msg: "write /data/book.mp3: no space left on device"}
	if !isDiskFull(err) {
		t.Fatalf("expected disk-full error to be detected")
	}
}

type pathError struct{ msg string }

func (e *pathError) Error() string { return e.msg }
