package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	Rd "github.com/maroda/rlcscope/display"
	Ro "github.com/maroda/rlcscope/obvy"
	Rp "github.com/maroda/rlcscope/plugin"
	Rs "github.com/maroda/rlcscope/server"
)

// Environment:
//
//	RLCSCOPE_CONFIG  config file, .json or .ini (built-in defaults when unset)
//	RLCSCOPE_MODE    "tui" (default) or "web"
//	RLCSCOPE_OTEL    "hny", "grf" or unset for no tracing
//	RLCSCOPE_LOG     log file used while the terminal is in use
//	RLCSCOPE_HISTORY snapshots kept by the memory archive
func main() {
	cfgFile := Rs.FillEnvVar("RLCSCOPE_CONFIG")
	mode := Rs.FillEnvVar("RLCSCOPE_MODE")

	if mode != "web" {
		logFile := Rs.FillEnvVar("RLCSCOPE_LOG")
		if logFile == "ENOENT" {
			logFile = "rlcscope.log"
		}
		f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "could not open log file: %v\n", err)
			os.Exit(1)
		}
		defer f.Close()
		// the screen owns stdout
		slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))
	}

	cf, err := loadConfig(cfgFile)
	if err != nil {
		slog.Error("Could not load config", slog.String("file", cfgFile), slog.Any("Error", err))
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	otelShutdown, err := Ro.InitOTel(Rs.FillEnvVar("RLCSCOPE_OTEL"))
	if err != nil {
		slog.Error("Could not start OTel", slog.Any("Error", err))
		otelShutdown = func() {}
	}
	defer otelShutdown()

	circuit := Rs.NewCircuitFromConfig(cf)
	if cf.Archive.Output != "" {
		out, err := Rp.OutputLookup(cf.Archive.Output, Rp.OutputConfig{
			Path:      cf.Archive.Path,
			BatchSize: cf.Archive.BatchSize,
			Capacity:  Rs.FillEnvVarInt("RLCSCOPE_HISTORY", Rp.DefaultMemoryCapacity),
		})
		if err != nil {
			slog.Error("Could not open archive", slog.String("output", cf.Archive.Output), slog.Any("Error", err))
			fmt.Fprintf(os.Stderr, "archive: %v\n", err)
			os.Exit(1)
		}
		defer func() {
			if err := out.Close(); err != nil {
				slog.Error("Could not close archive", slog.Any("Error", err))
			}
		}()
		circuit.Output = out
	}

	if mode == "web" {
		runWeb(circuit, cf, cfgFile)
		return
	}
	runTUI(circuit, cf, cfgFile)
}

func loadConfig(filename string) (*Rs.ConfigFile, error) {
	if filename == "ENOENT" {
		slog.Info("No config file, using defaults")
		return Rs.DefaultConfig(), nil
	}
	return Rs.LoadConfigFileName(filename)
}

// watchReload re-reads the config file on SIGHUP
func watchReload(view *Rd.View, filename string) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	go func() {
		for range hup {
			if filename == "ENOENT" {
				slog.Warn("SIGHUP without a config file, nothing to reload")
				continue
			}
			cf, err := Rs.LoadConfigFileName(filename)
			if err != nil {
				slog.Error("Reload failed, keeping current config", slog.Any("Error", err))
				continue
			}
			view.ReloadConfig(cf)
		}
	}()
}

func runTUI(circuit *Rs.Circuit, cf *Rs.ConfigFile, cfgFile string) {
	screen, err := Rd.NewTerminalScreen()
	if err != nil {
		fmt.Fprintf(os.Stderr, "terminal: %v\n", err)
		os.Exit(1)
	}

	view, err := Rd.NewView(circuit, screen)
	if err != nil {
		screen.Fini()
		slog.Error("Problem starting ScopeView", slog.Any("Error", err))
		os.Exit(1)
	}
	watchReload(view, cfgFile)

	if err := view.StartScopeView(cf); err != nil {
		slog.Error("ScopeView ended with error", slog.Any("Error", err))
	}
}

func runWeb(circuit *Rs.Circuit, cf *Rs.ConfigFile, cfgFile string) {
	view, err := Rd.NewView(circuit, nil)
	if err != nil {
		slog.Error("Problem starting web view", slog.Any("Error", err))
		os.Exit(1)
	}
	watchReload(view, cfgFile)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-stop
		slog.Info("Shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := view.Shutdown(ctx); err != nil {
			slog.Error("Shutdown failed", slog.Any("Error", err))
		}
	}()

	if err := view.StartWebNoTUI(cf); err != nil {
		slog.Error("Web server ended with error", slog.Any("Error", err))
	}
}
