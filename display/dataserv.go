package rlcscope

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	Rp "github.com/maroda/rlcscope/plugin"
	Rs "github.com/maroda/rlcscope/server"
	Rt "github.com/maroda/rlcscope/types"
)

const defaultHistory = 10 * time.Minute

// SetupMux handles all data serving:
// - Prometheus metric endpoint
// - Websocket for the browser scope
// - REST solve, plot, sliders, history and version
// - Static files for the browser UI
func (v *View) SetupMux() *mux.Router {
	r := mux.NewRouter()

	r.Handle("/metrics", v.Stats.Handler())
	r.HandleFunc("/ws", v.WebsocketHandler)

	api := r.PathPrefix("/api").Subrouter()
	api.Use(v.StatsMiddleware)
	api.HandleFunc("/solve", v.SolveHandler).Methods(http.MethodGet)
	api.HandleFunc("/plot.png", v.PlotHandler).Methods(http.MethodGet)
	api.HandleFunc("/sliders", v.SlidersHandler).Methods(http.MethodGet)
	api.HandleFunc("/history", v.HistoryHandler).Methods(http.MethodGet)
	api.HandleFunc("/version", v.VersionHandler).Methods(http.MethodGet)

	// Static files for the browser frontend
	r.PathPrefix("/").Handler(http.FileServer(http.Dir(v.WebDir)))

	return r
}

var Version = "dev"

func (v *View) VersionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"version": Version})
}

// QueryValues reads R, L[mH], C[µF] and E from the query string.
// Missing values fall back to the current slider positions.
func (v *View) QueryValues(r *http.Request) (Rt.SliderValues, error) {
	sv := v.Circuit.Values()
	q := r.URL.Query()

	fields := []struct {
		name string
		dst  *float64
	}{
		{"R", &sv.R},
		{"L", &sv.L},
		{"C", &sv.C},
		{"E", &sv.E},
	}
	for _, f := range fields {
		raw := q.Get(f.name)
		if raw == "" {
			continue
		}
		val, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return sv, &Rs.ParameterError{Name: f.name, Raw: raw, Reason: "not a number"}
		}
		*f.dst = val
	}
	return sv, nil
}

// solveQuery is shared by the JSON and PNG endpoints
func (v *View) solveQuery(r *http.Request) (*Rs.Result, error) {
	sv, err := v.QueryValues(r)
	if err != nil {
		v.Stats.RecInvalid()
		return nil, err
	}
	return v.TracedSolve(r.Context(), "api", func() (*Rs.Result, error) {
		return v.Circuit.SolveValues(sv, "api")
	})
}

func (v *View) SolveHandler(w http.ResponseWriter, r *http.Request) {
	res, err := v.solveQuery(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	writeJSON(w, http.StatusOK, res)
}

// PlotHandler renders the query as a PNG, optional width and height in pixels
func (v *View) PlotHandler(w http.ResponseWriter, r *http.Request) {
	res, err := v.solveQuery(r)
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return
	}

	width := queryInt(r, "width", DefaultPlotWidth, 100, 4000)
	height := queryInt(r, "height", DefaultPlotHeight, 100, 4000)

	// render first so a failure can still be reported as an error
	var buf bytes.Buffer
	if err := RenderPNG(res, width, height, &buf); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	if _, err := w.Write(buf.Bytes()); err != nil {
		slog.Error("Could not write plot", slog.Any("Error", err))
	}
}

func (v *View) SlidersHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, v.Circuit.SliderList())
}

// HistoryHandler lists archived snapshots, ?since=10m by default
func (v *View) HistoryHandler(w http.ResponseWriter, r *http.Request) {
	since := defaultHistory
	if raw := r.URL.Query().Get("since"); raw != "" {
		d, err := time.ParseDuration(raw)
		if err != nil || d <= 0 {
			writeJSONError(w, http.StatusBadRequest, fmt.Errorf("since: %q is not a positive duration", raw))
			return
		}
		since = d
	}

	out := v.archive()
	if out == nil {
		writeJSONError(w, http.StatusNotFound, fmt.Errorf("no archive configured"))
		return
	}

	// buffered snapshots are not visible until flushed
	if err := out.Flush(); err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}

	now := time.Now()
	snaps, err := out.QueryRange(now.Add(-since), now)
	if err != nil {
		writeJSONError(w, http.StatusInternalServerError, err)
		return
	}
	if snaps == nil {
		snaps = []*Rt.Snapshot{}
	}

	// bounded archives also report how much they hold in total
	var held *int
	if sized, ok := out.(interface{ Len() int }); ok {
		n := sized.Len()
		held = &n
	}

	writeJSON(w, http.StatusOK, struct {
		Output    string         `json:"output"`
		Held      *int           `json:"held,omitempty"`
		Snapshots []*Rt.Snapshot `json:"snapshots"`
	}{out.Type(), held, snaps})
}

// writeJSON encodes before writing the header, so an encoding
// failure still reaches the client as a 500
func writeJSON(w http.ResponseWriter, status int, body any) {
	b, err := json.Marshal(body)
	if err != nil {
		slog.Error("Could not encode response", slog.Any("Error", err))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusInternalServerError)
		b = []byte(`{"error":"could not encode response"}`)
	} else {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
	}
	if _, err := w.Write(append(b, '\n')); err != nil {
		slog.Error("Could not write response", slog.Any("Error", err))
	}
}

func writeJSONError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def, lo, hi int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return Rs.Clamp(n, lo, hi)
}

// archive is the Circuit's output, nil when none is configured
func (v *View) archive() Rp.OutputAdapter {
	v.Circuit.MU.RLock()
	defer v.Circuit.MU.RUnlock()
	return v.Circuit.Output
}
