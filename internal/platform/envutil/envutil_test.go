package envutil

import (
	"testing"
	"time"
)

func TestDuration(t *testing.T) {
	t.Setenv("QL_TEST_DURATION", "90s")
	if got := Duration("QL_TEST_DURATION", time.Hour); got != 90*time.Second {
		t.Fatalf("Duration: got %v", got)
	}
	t.Setenv("QL_TEST_DURATION", "30")
	if got := Duration("QL_TEST_DURATION", time.Hour); got != 30*time.Second {
		t.Fatalf("Duration seconds: got %v", got)
	}
	t.Setenv("QL_TEST_DURATION", "soon")
	if got := Duration("QL_TEST_DURATION", time.Hour); got != time.Hour {
		t.Fatalf("Duration fallback: got %v", got)
	}
}

func TestIntBoolList(t *testing.T) {
	t.Setenv("QL_TEST_INT", "x")
	if got := Int("QL_TEST_INT", 7); got != 7 {
		t.Fatalf("Int fallback: got %d", got)
	}
	t.Setenv("QL_TEST_BOOL", "off")
	if Bool("QL_TEST_BOOL", true) {
		t.Fatalf("Bool: expected false")
	}
	t.Setenv("QL_TEST_LIST", " a, ,b ")
	got := List("QL_TEST_LIST", nil)
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Fatalf("List: got %v", got)
	}
}
