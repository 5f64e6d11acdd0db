package rlcscope_test

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	Rd "github.com/maroda/rlcscope/display"
	Rs "github.com/maroda/rlcscope/server"
	Rt "github.com/maroda/rlcscope/types"
)

func TestScreen(t *testing.T) {
	s := mkTestScreen(t, "")
	defer s.Fini()
	s.Clear()

	t.Run("Check test screen", func(t *testing.T) {
		b, x, y := s.GetContents()
		if len(b) != x*y || x != 80 || y != 25 {
			t.Fatalf("Contents (%v, %v, %v) wrong", len(b), x, y)
		}
	})
}

func TestNewView(t *testing.T) {
	t.Run("Needs a Circuit", func(t *testing.T) {
		_, err := Rd.NewView(nil, nil)
		if err == nil {
			t.Error("expected an error for a nil circuit")
		}
	})

	t.Run("Headless view solves on start", func(t *testing.T) {
		view := makeTestView(t)
		res, err := view.Result()
		assertError(t, err, nil)
		if res == nil {
			t.Fatal("no initial result")
		}
		if res.Classification.Regime != Rt.Underdamped {
			t.Errorf("got %s, want Underdamped", res.Classification.Regime)
		}
	})

	t.Run("Draws the status line", func(t *testing.T) {
		_, s := makeTestViewWithScreen(t, Rs.DefaultConfig())
		assertStringContains(t, rowText(s, 1), "Status: Underdamped (R=20.0Ω, L=100.0mH, C=100.0µF, E=0.0V)")
	})

	t.Run("Draws legend, sliders and help", func(t *testing.T) {
		_, s := makeTestViewWithScreen(t, Rs.DefaultConfig())
		all := screenText(s)
		assertStringContains(t, all, "uC")
		assertStringContains(t, all, "> R ")
		assertStringContains(t, all, "ESC quit")
	})
}

func TestView_HandleKey(t *testing.T) {
	key := func(k tcell.Key) *tcell.EventKey {
		return tcell.NewEventKey(k, 0, tcell.ModNone)
	}

	t.Run("Right nudges the selected slider up one step", func(t *testing.T) {
		view, s := makeTestViewWithScreen(t, Rs.DefaultConfig())
		quit := view.HandleKey(key(tcell.KeyRight))
		if quit {
			t.Error("Right should not quit")
		}
		assertFloat(t, view.Circuit.Values().R, 20.5)

		view.UpdateScreen()
		assertStringContains(t, rowText(s, 1), "R=20.5Ω")
	})

	t.Run("PgDn moves ten steps", func(t *testing.T) {
		view, _ := makeTestViewWithScreen(t, Rs.DefaultConfig())
		view.HandleKey(key(tcell.KeyPgDn))
		assertFloat(t, view.Circuit.Values().R, 15)
	})

	t.Run("Down selects the next slider", func(t *testing.T) {
		view, s := makeTestViewWithScreen(t, Rs.DefaultConfig())
		view.HandleKey(key(tcell.KeyDown))
		assertInt(t, view.Selected, 1)

		view.HandleKey(key(tcell.KeyRight))
		assertFloat(t, view.Circuit.Values().L, 101)
		assertFloat(t, view.Circuit.Values().R, 20)

		view.UpdateScreen()
		assertStringContains(t, screenText(s), "> L ")
	})

	t.Run("Up wraps to the last slider", func(t *testing.T) {
		view, _ := makeTestViewWithScreen(t, Rs.DefaultConfig())
		view.HandleKey(key(tcell.KeyUp))
		assertInt(t, view.Selected, 3)
	})

	t.Run("Slider stops at its range", func(t *testing.T) {
		view, _ := makeTestViewWithScreen(t, Rs.DefaultConfig())
		for range 50 {
			view.HandleKey(key(tcell.KeyPgUp))
		}
		assertFloat(t, view.Circuit.Values().R, 200)
	})

	t.Run("r resets every slider", func(t *testing.T) {
		view, _ := makeTestViewWithScreen(t, Rs.DefaultConfig())
		view.HandleKey(key(tcell.KeyPgUp))
		view.HandleKey(tcell.NewEventKey(tcell.KeyRune, 'r', tcell.ModNone))
		assertFloat(t, view.Circuit.Values().R, 20)
	})

	t.Run("Recomputes on change", func(t *testing.T) {
		view, _ := makeTestViewWithScreen(t, Rs.DefaultConfig())
		// 20 + 100 steps of 0.5 is past critical damping at about 63 Ω
		for range 10 {
			view.HandleKey(key(tcell.KeyPgUp))
		}
		res, err := view.Result()
		assertError(t, err, nil)
		if res.Classification.Regime != Rt.Overdamped {
			t.Errorf("got %s, want Overdamped", res.Classification.Regime)
		}
	})

	t.Run("ESC and Ctrl-C quit", func(t *testing.T) {
		view, _ := makeTestViewWithScreen(t, Rs.DefaultConfig())
		if !view.HandleKey(key(tcell.KeyEscape)) {
			t.Error("ESC should quit")
		}
		if !view.HandleKey(key(tcell.KeyCtrlC)) {
			t.Error("Ctrl-C should quit")
		}
	})
}

func TestView_DrawScope(t *testing.T) {
	t.Run("Invalid values show a diagnostic", func(t *testing.T) {
		cf := Rs.DefaultConfig()
		cf.Sliders[1].Min = 0
		cf.Sliders[1].Value = 0
		view, s := makeTestViewWithScreen(t, cf)

		_, err := view.Result()
		assertError(t, err, Rs.ErrInvalidParameter)
		assertStringContains(t, rowText(s, 1), "Invalid: ")
	})

	t.Run("Previous plot stays after a bad value", func(t *testing.T) {
		cf := Rs.DefaultConfig()
		cf.Sliders[1].Min = 0
		view, s := makeTestViewWithScreen(t, cf)

		view.Circuit.Set("L", 0)
		view.Recompute(t.Context(), "tui")
		view.UpdateScreen()

		res, err := view.Result()
		if res == nil {
			t.Fatal("last good result was dropped")
		}
		assertError(t, err, Rs.ErrInvalidParameter)
		assertStringContains(t, rowText(s, 1), "Invalid: ")
		assertStringContains(t, screenText(s), "uC")
	})

	t.Run("Small terminal gets a notice", func(t *testing.T) {
		view, s := makeTestViewWithScreen(t, Rs.DefaultConfig())
		s.SetSize(30, 10)
		view.UpdateScreen()
		assertStringContains(t, screenText(s), "terminal too small")
	})
}
