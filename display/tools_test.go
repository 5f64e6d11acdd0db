package rlcscope_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	Rd "github.com/maroda/rlcscope/display"
	Rp "github.com/maroda/rlcscope/plugin"
	Rs "github.com/maroda/rlcscope/server"
)

func mkTestScreen(t *testing.T, charset string) tcell.SimulationScreen {
	s := tcell.NewSimulationScreen(charset)
	if s == nil {
		t.Fatalf("Failed to get SimulationScreen")
	}
	if err := s.Init(); err != nil {
		t.Fatalf("Failed to init screen: %v", err)
	}
	return s
}

// makeTestView is headless, as in web mode, with a memory archive
func makeTestView(t *testing.T) *Rd.View {
	t.Helper()
	c := Rs.NewCircuitFromConfig(Rs.DefaultConfig())
	c.Output = Rp.NewMemoryOutput(100)
	view, err := Rd.NewView(c, nil)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	return view
}

func makeTestViewWithScreen(t *testing.T, cf *Rs.ConfigFile) (*Rd.View, tcell.SimulationScreen) {
	t.Helper()
	s := mkTestScreen(t, "")
	t.Cleanup(s.Fini)

	view, err := Rd.NewView(Rs.NewCircuitFromConfig(cf), s)
	if err != nil {
		t.Fatalf("NewView: %v", err)
	}
	return view, s
}

// rowText reads one screen row back as a string
func rowText(s tcell.SimulationScreen, row int) string {
	cells, w, h := s.GetContents()
	if row < 0 || row >= h {
		return ""
	}
	var sb strings.Builder
	for x := 0; x < w; x++ {
		runes := cells[row*w+x].Runes
		if len(runes) == 0 {
			sb.WriteRune(' ')
			continue
		}
		sb.WriteRune(runes[0])
	}
	return sb.String()
}

func screenText(s tcell.SimulationScreen) string {
	_, _, h := s.GetContents()
	var sb strings.Builder
	for y := 0; y < h; y++ {
		sb.WriteString(rowText(s, y))
		sb.WriteByte('\n')
	}
	return sb.String()
}

func assertError(t testing.TB, got, want error) {
	t.Helper()
	if !errors.Is(got, want) {
		t.Errorf("got error %q want %q", got, want)
	}
}

func assertStatus(t testing.TB, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct status, got %d, want %d", got, want)
	}
}

func assertInt(t *testing.T, got, want int) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %d, want %d", got, want)
	}
}

func assertFloat(t *testing.T, got, want float64) {
	t.Helper()
	if got != want {
		t.Errorf("did not get correct value, got %g, want %g", got, want)
	}
}

func assertString(t *testing.T, got, want string) {
	t.Helper()
	if got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

func assertStringContains(t *testing.T, full, want string) {
	t.Helper()
	if !strings.Contains(full, want) {
		t.Errorf("Did not find %q, expected string contains %q", want, full)
	}
}
