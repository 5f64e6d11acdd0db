package plugin_test

import (
	"errors"
	"strings"
	"testing"
	"time"

	Rt "github.com/maroda/rlcscope/types"
)

// Helpers //

func mkSnapshots(start time.Time, n int) []*Rt.Snapshot {
	snaps := make([]*Rt.Snapshot, n)
	for i := range snaps {
		snaps[i] = &Rt.Snapshot{
			Timestamp: start.Add(time.Duration(i) * time.Second),
			Source:    "tui",
			Params:    Rt.CircuitParameters{R: float64(i), L: 0.1, C: 1e-4},
			Regime:    Rt.Regime(i % 3),
			Status:    "Status: test",
		}
	}
	return snaps
}

func assertError(t testing.TB, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("got error %q want %q", got, want)
	}
}

func assertGotError(t testing.TB, got error) {
	t.Helper()
	if got == nil {
		t.Errorf("Expected an error but got %q", got)
	}
}

func assertInt(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %d, want %d", got, want)
	}
}

func assertStringContains(t *testing.T, full, want string) {
	t.Helper()
	if !strings.Contains(full, want) {
		t.Errorf("Did not find %q, expected string contains %q", want, full)
	}
}
