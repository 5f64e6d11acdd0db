package rlcscope

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	Rs "github.com/maroda/rlcscope/server"
)

const defaultFlushInterval = 5 * time.Second

type FlushSupervisor struct {
	MU       sync.Mutex // guards Ticker, StopChan, Interval and closed
	View     *View
	Ticker   *time.Ticker
	StopChan chan struct{}
	WG       sync.WaitGroup
	Interval time.Duration
	closed   bool // set by Shutdown, Start is refused afterwards
}

// NewFlushSupervisor is a wrapper around the View that periodically
// pushes buffered snapshots out to the archive.
// They are strongly coupled, one knows about the other
func (v *View) NewFlushSupervisor(interval time.Duration) *FlushSupervisor {
	if interval <= 0 {
		interval = defaultFlushInterval
	}
	fs := &FlushSupervisor{
		View:     v,
		Interval: interval,
	}
	v.MU.Lock()
	v.Supervisor = fs
	v.MU.Unlock()
	return fs
}

func (v *View) flushSupervisor() *FlushSupervisor {
	v.MU.Lock()
	defer v.MU.Unlock()
	return v.Supervisor
}

// FlushArchive writes out anything the archive is holding
func (v *View) FlushArchive() {
	out := v.archive()
	if out == nil {
		return
	}
	err := out.Flush()
	if err != nil {
		slog.Error("Archive flush failed",
			slog.String("output", out.Type()),
			slog.Any("Error", err))
	}
	v.Stats.RecFlush(out.Type(), err)
}

// ReloadConfig swaps in new sliders, solver settings and flush interval.
// Pending snapshots are flushed under the old settings first.
// Server address, web dir and archive output need a restart.
// Safe to call from a signal handler while the scope is running,
// the screen is redrawn by its own event loop.
func (v *View) ReloadConfig(cf *Rs.ConfigFile) {
	v.reloadMU.Lock()
	defer v.reloadMU.Unlock()

	v.FlushArchive()
	v.Circuit.Apply(cf)

	v.MU.Lock()
	v.Selected = min(v.Selected, len(cf.Sliders)-1)
	v.MU.Unlock()

	v.Recompute(context.Background(), "reload")
	if v.Screen != nil {
		if err := v.Screen.PostEvent(tcell.NewEventInterrupt(nil)); err != nil {
			slog.Warn("Could not queue redraw", slog.Any("Error", err))
		}
	}

	if fs := v.flushSupervisor(); fs != nil {
		fs.Restart(time.Duration(cf.Archive.FlushSeconds) * time.Second)
	}
	slog.Info("Config reloaded", slog.Int("sliders", len(cf.Sliders)))
}

// Start the FlushSupervisor, a no-op when running or shut down
func (f *FlushSupervisor) Start() {
	f.MU.Lock()
	defer f.MU.Unlock()
	if f.closed || f.StopChan != nil {
		return
	}

	stop := make(chan struct{})
	ticker := time.NewTicker(f.Interval)
	f.StopChan = stop
	f.Ticker = ticker

	f.WG.Add(1)
	go func() {
		defer f.WG.Done()
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				f.View.FlushArchive()
			case <-stop:
				return
			}
		}
	}()
}

// Stop the FlushSupervisor and wait for the flush loop to end
func (f *FlushSupervisor) Stop() {
	f.MU.Lock()
	defer f.MU.Unlock()
	if f.StopChan != nil {
		close(f.StopChan)
		f.StopChan = nil
	}
	f.WG.Wait()
}

// Restart the FlushSupervisor at a new interval, zero keeps the current one.
// A shut down supervisor stays down.
func (f *FlushSupervisor) Restart(interval time.Duration) {
	f.Stop()
	if interval > 0 {
		f.MU.Lock()
		f.Interval = interval
		f.MU.Unlock()
	}
	f.Start()
}

// Shutdown stops the FlushSupervisor for good
func (f *FlushSupervisor) Shutdown() {
	f.MU.Lock()
	f.closed = true
	f.MU.Unlock()
	f.Stop()
}

// Running reports whether the flush loop is active
func (f *FlushSupervisor) Running() bool {
	f.MU.Lock()
	defer f.MU.Unlock()
	return f.StopChan != nil
}
