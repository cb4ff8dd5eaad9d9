package httpx

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

type statusErr int

func (s statusErr) Error() string       { return fmt.Sprintf("status %d", int(s)) }
func (s statusErr) HTTPStatusCode() int { return int(s) }

func TestIsRetryableError(t *testing.T) {
	cases := []struct {
		err  error
		want bool
	}{
		{nil, false},
		{context.Canceled, false},
		{context.DeadlineExceeded, true},
		{fmt.Errorf("wrapped: %w", statusErr(429)), true},
		{statusErr(503), true},
		{statusErr(400), false},
		{errors.New("plain"), false},
	}
	for _, tc := range cases {
		if got := IsRetryableError(tc.err); got != tc.want {
			t.Fatalf("IsRetryableError(%v): got %v want %v", tc.err, got, tc.want)
		}
	}
}

func TestBackoff(t *testing.T) {
	if got := Backoff(0, time.Second, 10*time.Second); got != time.Second {
		t.Fatalf("attempt 0: %v", got)
	}
	if got := Backoff(2, time.Second, 10*time.Second); got != 4*time.Second {
		t.Fatalf("attempt 2: %v", got)
	}
	if got := Backoff(8, time.Second, 10*time.Second); got != 10*time.Second {
		t.Fatalf("capped: %v", got)
	}
}

func TestFirstForwardedFor(t *testing.T) {
	if got := FirstForwardedFor(" 203.0.113.9 , 10.0.0.1"); got != "203.0.113.9" {
		t.Fatalf("got %q", got)
	}
	if got := FirstForwardedFor(""); got != "" {
		t.Fatalf("empty: got %q", got)
	}
}
