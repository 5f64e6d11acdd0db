package rlcscope

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/ini.v1"
)

// SliderConfig is one user control. Value is the starting position.
type SliderConfig struct {
	Name  string  `json:"name"`
	Unit  string  `json:"unit"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
	Step  float64 `json:"step"`
	Value float64 `json:"value"`
}

// ArchiveConfig selects where snapshots go, see plugin.OutputLookup
type ArchiveConfig struct {
	Output       string `json:"output"` // "memory", "badger" or "" for none
	Path         string `json:"path"`
	BatchSize    int    `json:"batch"`
	FlushSeconds int    `json:"flush_seconds"`
}

type ConfigFile struct {
	Addr    string         `json:"addr"`
	WebDir  string         `json:"web_dir"`
	Solver  SolveOptions   `json:"solver"`
	Sliders []SliderConfig `json:"sliders"`
	Archive ArchiveConfig  `json:"archive"`
}

// DefaultSliders are the stock R, L, C, E controls
func DefaultSliders() []SliderConfig {
	return []SliderConfig{
		{Name: "R", Unit: "Ω", Min: 0, Max: 200, Step: 0.5, Value: 20},
		{Name: "L", Unit: "mH", Min: 1, Max: 1000, Step: 1, Value: 100},
		{Name: "C", Unit: "µF", Min: 1, Max: 1000, Step: 1, Value: 100},
		{Name: "E", Unit: "V", Min: -20, Max: 20, Step: 0.5, Value: 0},
	}
}

// DefaultConfig is used when no config file is given
func DefaultConfig() *ConfigFile {
	return &ConfigFile{
		Addr:    ":8090",
		WebDir:  "./web/",
		Solver:  DefaultSolveOptions(),
		Sliders: DefaultSliders(),
		Archive: ArchiveConfig{
			Output:       "memory",
			Path:         "./rlcscope_db",
			BatchSize:    10,
			FlushSeconds: 5,
		},
	}
}

// LoadConfigFileName pulls a given filename config off local disk
// Validation is performed on the file before opening.
// Files ending in .ini are read as INI, everything else as JSON.
func LoadConfigFileName(filename string) (*ConfigFile, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	// validation
	err = validateLoad(file)
	if err != nil {
		slog.Error("Validation failed", slog.Any("Error", err))
		return nil, err
	}

	if strings.EqualFold(filepath.Ext(filename), ".ini") {
		data, err := io.ReadAll(file)
		if err != nil {
			slog.Error("could not read file")
			return nil, err
		}
		return LoadConfigINI(data)
	}
	return LoadConfig(file)
}

func validateLoad(file *os.File) error {
	// validate file
	info, err := file.Stat()
	if err != nil {
		slog.Error("could not stat file")
		return err
	}

	// validate size
	if info.Size() == 0 {
		slog.Error("file is empty")
		return errors.New("file is empty")
	}

	return nil
}

// LoadConfig decodes a JSON config on top of the defaults
func LoadConfig(r io.Reader) (*ConfigFile, error) {
	config := DefaultConfig()
	config.Sliders = nil

	decoder := json.NewDecoder(r)
	if err := decoder.Decode(config); err != nil {
		slog.Error("could not decode file")
		return nil, err
	}
	if len(config.Sliders) == 0 {
		config.Sliders = DefaultSliders()
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// LoadConfigINI reads the INI layout:
//
//	[server]      addr, web_dir
//	[solver]      tolerance, samples, floor_window, min_window, max_window, series, slow_root
//	[slider.R]    unit, min, max, step, value   (one section per slider)
//	[archive]     output, path, batch, flush_seconds
func LoadConfigINI(data []byte) (*ConfigFile, error) {
	file, err := ini.Load(data)
	if err != nil {
		slog.Error("could not decode file")
		return nil, err
	}

	config := DefaultConfig()

	srv := file.Section("server")
	config.Addr = srv.Key("addr").MustString(config.Addr)
	config.WebDir = srv.Key("web_dir").MustString(config.WebDir)

	sol := file.Section("solver")
	config.Solver.Tolerance = sol.Key("tolerance").MustFloat64(config.Solver.Tolerance)
	config.Solver.SampleCount = sol.Key("samples").MustInt(config.Solver.SampleCount)
	config.Solver.FloorWindow = sol.Key("floor_window").MustFloat64(config.Solver.FloorWindow)
	config.Solver.MinWindow = sol.Key("min_window").MustFloat64(config.Solver.MinWindow)
	config.Solver.MaxWindow = sol.Key("max_window").MustFloat64(config.Solver.MaxWindow)
	config.Solver.SlowRoot = sol.Key("slow_root").MustBool(config.Solver.SlowRoot)
	if sol.HasKey("series") {
		config.Solver.Series = sol.Key("series").Strings(",")
	}

	var sliders []SliderConfig
	for _, sec := range file.Sections() {
		name, ok := strings.CutPrefix(sec.Name(), "slider.")
		if !ok {
			continue
		}
		sliders = append(sliders, SliderConfig{
			Name:  name,
			Unit:  sec.Key("unit").String(),
			Min:   sec.Key("min").MustFloat64(0),
			Max:   sec.Key("max").MustFloat64(0),
			Step:  sec.Key("step").MustFloat64(0),
			Value: sec.Key("value").MustFloat64(0),
		})
	}
	if len(sliders) > 0 {
		config.Sliders = sliders
	}

	arc := file.Section("archive")
	config.Archive.Output = arc.Key("output").MustString(config.Archive.Output)
	config.Archive.Path = arc.Key("path").MustString(config.Archive.Path)
	config.Archive.BatchSize = arc.Key("batch").MustInt(config.Archive.BatchSize)
	config.Archive.FlushSeconds = arc.Key("flush_seconds").MustInt(config.Archive.FlushSeconds)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks the solver tunables and that R, L, C, E each have a usable slider.
func (cf *ConfigFile) Validate() error {
	s := cf.Solver
	switch {
	case s.Tolerance <= 0 || s.Tolerance >= 1:
		return fmt.Errorf("%w: tolerance %g must be in (0, 1)", ErrInvalidConfig, s.Tolerance)
	case s.SampleCount < 2:
		return fmt.Errorf("%w: samples %d must be at least 2", ErrInvalidConfig, s.SampleCount)
	case s.MinWindow <= 0 || s.MaxWindow <= s.MinWindow:
		return fmt.Errorf("%w: window bounds [%g, %g]", ErrInvalidConfig, s.MinWindow, s.MaxWindow)
	case s.FloorWindow <= 0:
		return fmt.Errorf("%w: floor_window %g must be positive", ErrInvalidConfig, s.FloorWindow)
	}
	for _, k := range s.Series {
		if _, err := SeriesLookup(k); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
		}
	}

	seen := make(map[string]bool)
	for _, sl := range cf.Sliders {
		switch sl.Name {
		case "R", "L", "C", "E":
		default:
			return fmt.Errorf("%w: slider %q is not one of R, L, C, E", ErrInvalidConfig, sl.Name)
		}
		if seen[sl.Name] {
			return fmt.Errorf("%w: slider %q defined twice", ErrInvalidConfig, sl.Name)
		}
		seen[sl.Name] = true

		if sl.Min >= sl.Max || sl.Step <= 0 {
			return fmt.Errorf("%w: slider %q needs min < max and step > 0", ErrInvalidConfig, sl.Name)
		}
		if sl.Value < sl.Min || sl.Value > sl.Max {
			return fmt.Errorf("%w: slider %q value %g outside [%g, %g]", ErrInvalidConfig, sl.Name, sl.Value, sl.Min, sl.Max)
		}
		if (sl.Name == "L" || sl.Name == "C") && sl.Min <= 0 {
			return fmt.Errorf("%w: slider %q must stay positive", ErrInvalidConfig, sl.Name)
		}
		if sl.Name == "R" && sl.Min < 0 {
			return fmt.Errorf("%w: slider R must not go negative", ErrInvalidConfig)
		}
	}
	if len(seen) != 4 {
		return fmt.Errorf("%w: sliders R, L, C and E are all required", ErrInvalidConfig)
	}

	return nil
}
