package rlcscope

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"runtime/debug"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gdamore/tcell/v2"
	Ro "github.com/maroda/rlcscope/obvy"
	Rs "github.com/maroda/rlcscope/server"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	axisGutter   = 8  // columns left of the plot for y labels
	sliderRows   = 4  // R, L, C, E
	sliderBarLen = 20 // cells in a slider bar
	minWidth     = 40
	minHeight    = 14
)

var (
	textStyle   = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorLightSteelBlue)
	selectStyle = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorYellow).Bold(true)
	errorStyle  = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorRed)
	borderStyle = tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorPink)
)

// View is the scope: one Circuit, the last result drawn from it,
// and optionally a terminal screen and an HTTP server.
type View struct {
	MU         sync.Mutex        // State locks for display data
	Circuit    *Rs.Circuit       // slider session driven by the keyboard
	Screen     tcell.Screen      // the screen itself, nil in web mode
	Stats      *Ro.StatsInternal // Internal status for prometheus
	Supervisor *FlushSupervisor  // periodic archive flush
	WebDir     string            // static files for the browser UI
	Selected   int               // index of the highlighted slider
	result     *Rs.Result        // last good result
	lastErr    error             // last failed recompute, shown as a diagnostic
	server     *http.Server      // REST, websocket and metrics
	reloadMU   sync.Mutex        // one config reload at a time
}

// NewView attaches a Circuit to a screen and draws the first frame.
// A nil screen gives a headless View for web mode.
func NewView(c *Rs.Circuit, screen tcell.Screen) (*View, error) {
	if c == nil {
		slog.Error("Could not get a Circuit for display")
		return nil, errors.New("circuit not found")
	}

	view := &View{
		Circuit: c,
		Screen:  screen,
		Stats:   Ro.NewStatsInternal(),
		WebDir:  "./web/",
	}
	view.Recompute(context.Background(), "init")
	if screen != nil {
		view.UpdateScreen()
	}
	return view, nil
}

// NewTerminalScreen opens and configures the real terminal
func NewTerminalScreen() (tcell.Screen, error) {
	screen, err := tcell.NewScreen()
	if err != nil {
		slog.Error("Could not get new screen", slog.Any("Error", err))
		return nil, err
	}
	if err := screen.Init(); err != nil {
		slog.Error("Could not initialize screen", slog.Any("Error", err))
		return nil, err
	}
	screen.SetStyle(borderStyle)
	return screen, nil
}

// TracedSolve wraps one recomputation in a span and records its stats
func (v *View) TracedSolve(ctx context.Context, source string, solve func() (*Rs.Result, error)) (*Rs.Result, error) {
	_, span := Ro.Tracer().Start(ctx, "rlcscope.solve",
		trace.WithAttributes(attribute.String("rlcscope.source", source)))
	defer span.End()

	start := time.Now()
	res, err := solve()
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		v.Stats.RecInvalid()
		return nil, err
	}

	cls := res.Classification
	span.SetAttributes(
		attribute.String("rlcscope.regime", cls.Regime.String()),
		attribute.Float64("rlcscope.alpha", cls.Alpha),
		attribute.Float64("rlcscope.omega0", cls.Omega0),
		attribute.Float64("rlcscope.window_s", res.TimeBase.Duration),
	)
	v.Stats.RecSolve(strings.ToLower(cls.Regime.String()), time.Since(start))
	return res, nil
}

// Recompute solves the current slider positions.
// On failure the previous result stays on screen next to the diagnostic.
func (v *View) Recompute(ctx context.Context, source string) {
	res, err := v.TracedSolve(ctx, source, func() (*Rs.Result, error) {
		return v.Circuit.Solve(source)
	})

	v.MU.Lock()
	defer v.MU.Unlock()
	v.lastErr = err
	if err != nil {
		slog.Warn("Recompute refused", slog.Any("Error", err))
		return
	}
	v.result = res
}

// Result is the last successful result and the last error, if any
func (v *View) Result() (*Rs.Result, error) {
	v.MU.Lock()
	defer v.MU.Unlock()
	return v.result, v.lastErr
}

// DrawText displays the text string at the given (x1, y1) with box size (x2, y2)
func (v *View) DrawText(x1, y1, x2, y2 int, text string) {
	v.drawStyledText(x1, y1, x2, y2, text, textStyle)
}

func (v *View) drawStyledText(x1, y1, x2, y2 int, text string, style tcell.Style) {
	row := y1
	col := x1
	for _, r := range text {
		v.Screen.SetContent(col, row, r, nil, style)
		col++
		if col >= x2 {
			row++
			col = x1
		}
		if row > y2 {
			break
		}
	}
}

// DrawViewBorder displays the outline of the View
func (v *View) DrawViewBorder(width, height int) {
	v.Screen.SetContent(0, 0, tcell.RuneULCorner, nil, borderStyle)
	v.Screen.SetContent(width, 0, tcell.RuneURCorner, nil, borderStyle)
	v.Screen.SetContent(0, height, tcell.RuneLLCorner, nil, borderStyle)
	v.Screen.SetContent(width, height, tcell.RuneLRCorner, nil, borderStyle)
	for i := 1; i < width; i++ {
		v.Screen.SetContent(i, 0, tcell.RuneHLine, nil, borderStyle)
		v.Screen.SetContent(i, height, tcell.RuneHLine, nil, borderStyle)
	}
	for i := 1; i < height; i++ {
		v.Screen.SetContent(0, i, tcell.RuneVLine, nil, borderStyle)
		v.Screen.SetContent(width, i, tcell.RuneVLine, nil, borderStyle)
	}
}

// DrawScope draws the whole frame:
//
//	status / diagnostic
//	legend
//	plot with y labels, x axis
//	sliders
//	key help
func (v *View) DrawScope() {
	width, height := v.Screen.Size()
	right, bottom := width-1, height-1

	v.MU.Lock()
	res, lastErr, selected := v.result, v.lastErr, v.Selected
	v.MU.Unlock()

	v.DrawViewBorder(right, bottom)

	if width < minWidth || height < minHeight {
		v.drawStyledText(1, 1, right, bottom-1, "terminal too small for rlcscope", errorStyle)
		return
	}

	// status or diagnostic
	switch {
	case lastErr != nil:
		v.drawStyledText(1, 1, right, 1, "Invalid: "+lastErr.Error(), errorStyle)
	case res != nil:
		v.DrawText(1, 1, right, 1, res.Status)
	}

	plotTop := 3
	plotBottom := bottom - sliderRows - 3
	if res != nil {
		v.drawLegend(1, 2, right, res)
		v.drawPlot(1, plotTop, right-1, plotBottom, res)
	}

	v.drawSliders(1, bottom-sliderRows-1, right, selected)
	v.DrawText(1, bottom-1, right, bottom-1, "↑/↓ select | ←/→ adjust | PgUp/PgDn ×10 | r reset | ESC quit")
}

func (v *View) drawLegend(x, y, right int, res *Rs.Result) {
	col := x
	for _, s := range res.Series {
		v.drawStyledText(col, y, right, y, "• "+s.Name, SeriesStyle(s.Color))
		col += len([]rune(s.Name)) + 4
	}
}

// drawPlot fills the box (x1, y1)-(x2, y2), the last row is the x axis
func (v *View) drawPlot(x1, y1, x2, y2 int, res *Rs.Result) {
	cols := x2 - x1 - axisGutter + 1
	rows := y2 - y1
	if cols < 2 || rows < 2 {
		return
	}
	px := x1 + axisGutter

	yr := SharedRange(res.Series)
	v.DrawText(x1, y1, px, y1, fmt.Sprintf("%7.1f", yr.Max))
	v.DrawText(x1, y1+rows-1, px, y1+rows-1, fmt.Sprintf("%7.1f", yr.Min))

	// zero line when 0 V is on screen
	if yr.Min < 0 && yr.Max > 0 {
		zero := y1 + rows - 1 - scaleTo(0, yr.Min, yr.Max, rows)
		for c := 0; c < cols; c++ {
			v.Screen.SetContent(px+c, zero, '·', nil, borderStyle.Dim(true))
		}
	}

	grid := PlotGrid(res.Series, cols, rows)
	for r, line := range grid {
		for c, si := range line {
			if si == emptyCell {
				continue
			}
			v.Screen.SetContent(px+c, y1+r, '•', nil, SeriesStyle(res.Series[si].Color))
		}
	}

	// x axis
	for c := 0; c < cols; c++ {
		v.Screen.SetContent(px+c, y2, tcell.RuneHLine, nil, borderStyle)
	}
	v.DrawText(px, y2, x2, y2, "0")
	tEnd := fmt.Sprintf("%.4g %s", res.TimeBase.Duration*res.TimeBase.UnitScale, res.TimeBase.UnitLabel)
	v.DrawText(x2-len([]rune(tEnd))+1, y2, x2+1, y2, tEnd)
}

func (v *View) drawSliders(x, y, right, selected int) {
	for i, s := range v.Circuit.SliderList() {
		style := textStyle
		marker := "  "
		if i == selected {
			style = selectStyle
			marker = "> "
		}

		filled := 0
		if s.Max > s.Min {
			filled = int(math.Round((s.Value - s.Min) / (s.Max - s.Min) * sliderBarLen))
		}
		bar := strings.Repeat("█", filled) + strings.Repeat("░", sliderBarLen-filled)
		line := fmt.Sprintf("%s%-2s %9.2f %-3s %s", marker, s.Name, s.Value, s.Unit, bar)
		v.drawStyledText(x, y+i, right, y+i, line, style)
	}
}

// HandleKey applies one key press, returning true when the user asked to quit
func (v *View) HandleKey(ev *tcell.EventKey) bool {
	sliders := v.Circuit.SliderList()
	if len(sliders) == 0 {
		return ev.Key() == tcell.KeyEscape || ev.Key() == tcell.KeyCtrlC
	}

	v.MU.Lock()
	selected := min(v.Selected, len(sliders)-1)
	v.MU.Unlock()
	name := sliders[selected].Name

	var err error
	changed := true
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return true
	case tcell.KeyUp:
		v.selectSlider((selected - 1 + len(sliders)) % len(sliders))
		changed = false
	case tcell.KeyDown:
		v.selectSlider((selected + 1) % len(sliders))
		changed = false
	case tcell.KeyLeft:
		_, err = v.Circuit.Nudge(name, -1)
	case tcell.KeyRight:
		_, err = v.Circuit.Nudge(name, 1)
	case tcell.KeyPgDn:
		_, err = v.Circuit.Nudge(name, -10)
	case tcell.KeyPgUp:
		_, err = v.Circuit.Nudge(name, 10)
	case tcell.KeyRune:
		if ev.Rune() == 'r' {
			v.Circuit.Reset()
		} else {
			changed = false
		}
	default:
		changed = false
	}

	if err != nil {
		slog.Error("Slider update failed", slog.String("slider", name), slog.Any("Error", err))
	}
	if changed {
		v.Recompute(context.Background(), "tui")
	}
	return false
}

func (v *View) selectSlider(i int) {
	v.MU.Lock()
	defer v.MU.Unlock()
	v.Selected = i
}

func (v *View) exit() {
	v.Screen.Fini()
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := v.Shutdown(ctx); err != nil {
		slog.Error("Web endpoint shutdown failed", slog.Any("Error", err))
	}
}

// Running Loop to handle events
func (v *View) handleKeyBoardEvent() {
	for {
		ev := v.Screen.PollEvent()
		switch ev := ev.(type) {
		case nil:
			// screen finalized
			return
		case *tcell.EventResize:
			v.ResizeScreen()
		case *tcell.EventInterrupt:
			// posted after a config reload
			v.UpdateScreen()
		case *tcell.EventKey:
			if v.HandleKey(ev) {
				v.exit()
				return
			}
			v.UpdateScreen()
		}
	}
}

// ResizeScreen redraws after terminal changes
func (v *View) ResizeScreen() {
	v.Screen.Sync()
	v.UpdateScreen()
}

func (v *View) UpdateScreen() {
	v.Screen.Clear()
	v.DrawScope()
	v.Screen.Show()
}

// run is the event loop with panic recovery and logging,
// the screen is restored before the panic is reported
func (v *View) run() {
	defer func() {
		if r := recover(); r != nil {
			v.Screen.Fini()
			slog.Error("Panic in run loop", slog.Any("panic", r))
			slog.Error("Recovered from panic", slog.String("stack", string(debug.Stack())))
		}
	}()

	slog.Info("Starting ScopeView")
	v.handleKeyBoardEvent()
}

// RespWriter is a wrapper with StatsMiddleware, used for Prometheus
type RespWriter struct {
	http.ResponseWriter
	Status int
}

// WriteHeader is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) WriteHeader(status int) {
	w.Status = status
	w.ResponseWriter.WriteHeader(status)
}

// Write is a helper for StatsMiddleware, used for Prometheus
func (w *RespWriter) Write(b []byte) (int, error) {
	return w.ResponseWriter.Write(b)
}

func (v *View) StatsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		wrapped := &RespWriter{
			ResponseWriter: w,
			Status:         200,
		}
		next.ServeHTTP(wrapped, r)
		v.Stats.RecWWW(strconv.Itoa(wrapped.Status), r.Method)
	})
}

// newServer builds the HTTP server for a config, traced by otelhttp
func (v *View) newServer(cf *Rs.ConfigFile) *http.Server {
	v.WebDir = cf.WebDir
	return &http.Server{
		Addr:    cf.Addr,
		Handler: otelhttp.NewHandler(v.SetupMux(), "rlcscope"),
	}
}

// StartScopeView runs the terminal scope until the user quits.
// The HTTP endpoints are served alongside on the configured address.
func (v *View) StartScopeView(cf *Rs.ConfigFile) error {
	if v.Screen == nil {
		return errors.New("no screen for ScopeView")
	}

	srv := v.setServer(cf)
	go func() {
		slog.Info("Starting rlcscope web endpoint...", slog.String("Addr", cf.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Could not start web endpoint", slog.Any("Error", err))
		}
	}()

	fs := v.NewFlushSupervisor(time.Duration(cf.Archive.FlushSeconds) * time.Second)
	fs.Start()
	defer fs.Shutdown()

	v.UpdateScreen()
	v.run()
	return nil
}

// StartWebNoTUI serves the browser scope only, blocking until the server is shut down
func (v *View) StartWebNoTUI(cf *Rs.ConfigFile) error {
	srv := v.setServer(cf)
	fs := v.NewFlushSupervisor(time.Duration(cf.Archive.FlushSeconds) * time.Second)
	fs.Start()
	defer fs.Shutdown()

	slog.Info("Starting rlcscope web server...", slog.String("Addr", cf.Addr))
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Could not start web server", slog.Any("Error", err))
		return err
	}
	return nil
}

// Shutdown stops the HTTP server if one is running
func (v *View) Shutdown(ctx context.Context) error {
	v.MU.Lock()
	srv := v.server
	v.MU.Unlock()
	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}

func (v *View) setServer(cf *Rs.ConfigFile) *http.Server {
	srv := v.newServer(cf)
	v.MU.Lock()
	v.server = srv
	v.MU.Unlock()
	return srv
}
