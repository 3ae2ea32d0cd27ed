package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/pthm-cable/pivot/config"
	"github.com/pthm-cable/pivot/export"
	"github.com/pthm-cable/pivot/sim"
	"github.com/pthm-cable/pivot/telemetry"
)

func main() {
	// CLI flags
	configPath := flag.String("config", "", "Path to config.yaml (empty = use defaults)")
	outputDir := flag.String("output-dir", "", "Output directory for frames, CSV logs and config snapshot")
	endFrame := flag.Int("end-frame", 0, "Stop after N frames (0 = use config)")
	sceneName := flag.String("scene", "", "Scene to simulate (empty = use config)")
	scale := flag.Int("scale", 0, "Mask pixels per cell (0 = use config)")
	metricsAddr := flag.String("metrics-addr", "", "Serve Prometheus metrics on this address (empty = disabled)")
	window := flag.Bool("window", false, "Show a live view instead of running headless")
	logLevel := flag.String("log-level", "info", "Log level: debug, info, warn, error")
	snapshotDir := flag.String("snapshot-dir", "", "Directory for bookmark and final snapshots (empty = disabled)")
	resume := flag.String("resume", "", "Snapshot JSON to resume from")

	flag.Parse()

	// Set up slog (JSON to stdout for structured logging)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: parseLevel(*logLevel)}))
	slog.SetDefault(logger)

	if err := config.Init(*configPath); err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}
	cfg := config.Cfg()

	// CLI overrides
	if *sceneName != "" {
		cfg.Scene.Name = *sceneName
	}
	if *endFrame > 0 {
		cfg.Driver.EndFrame = *endFrame
	}
	if *scale > 0 {
		cfg.Driver.Supersample = *scale
	}

	if err := run(cfg, runOptions{
		outputDir:   *outputDir,
		metricsAddr: *metricsAddr,
		window:      *window,
		snapshotDir: *snapshotDir,
		resume:      *resume,
	}); err != nil {
		slog.Error("simulation failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	outputDir   string
	metricsAddr string
	window      bool
	snapshotDir string
	resume      string
}

func run(cfg *config.Config, ro runOptions) error {
	opts, err := sim.OptionsFromConfig(cfg)
	if err != nil {
		return err
	}
	perf := telemetry.NewPerfCollector(cfg.Telemetry.PerfWindow)
	opts.Perf = perf

	buildStart := time.Now()
	s, err := sim.Build(opts)
	if err != nil {
		return err
	}
	_, initVolume := s.Volume()
	slog.Info("scene built",
		"scene", s.Scene().String(),
		"resolution", opts.Resolution,
		"spacing", cfg.Derived.Spacing,
		"volume", initVolume,
		"elapsed", time.Since(buildStart).String(),
	)

	if ro.resume != "" {
		if err := resumeFrom(ro.resume, s, opts); err != nil {
			return err
		}
	}

	var metrics *telemetry.Metrics
	if ro.metricsAddr != "" {
		metrics = telemetry.NewMetrics()
		srv := telemetry.ServeMetrics(ro.metricsAddr, metrics)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(ctx)
		}()
	}

	driver, err := sim.NewDriver(cfg.Driver.FrameRate, cfg.Driver.Courant, metrics)
	if err != nil {
		return err
	}

	om, err := telemetry.NewOutputManager(ro.outputDir)
	if err != nil {
		return err
	}
	defer om.Close()
	if err := om.WriteConfig(cfg); err != nil {
		return err
	}

	r := &runner{
		cfg:       cfg,
		sim:       s,
		driver:    driver,
		perf:      perf,
		output:    om,
		bookmarks: telemetry.NewBookmarkDetector(10, 0),

		snapshotDir: ro.snapshotDir,
	}
	if ro.window {
		err = r.runWindow()
	} else {
		err = r.runHeadless()
	}
	if err != nil {
		return err
	}

	if err := om.WriteVolumePlot(); err != nil {
		return err
	}
	if err := r.saveSnapshot(nil); err != nil {
		return err
	}
	r.logTotals()
	return nil
}

// runner owns the per-frame export of one simulation run.
type runner struct {
	cfg    *config.Config
	sim    *sim.Simulation
	driver *sim.Driver
	perf   *telemetry.PerfCollector
	output *telemetry.OutputManager

	bookmarks   *telemetry.BookmarkDetector
	snapshotDir string
}

func (r *runner) runHeadless() error {
	slog.Info("starting headless simulation",
		"scene", r.sim.Scene().String(),
		"end_frame", r.cfg.Driver.EndFrame,
		"frame_rate", r.cfg.Driver.FrameRate,
	)
	if err := r.exportFrame(); err != nil {
		return err
	}
	for r.sim.Frame() < r.cfg.Driver.EndFrame {
		if err := r.step(); err != nil {
			return err
		}
	}
	slog.Info("end frame reached", "frame", r.sim.Frame())
	return nil
}

// step advances one frame and writes everything the run records for it.
func (r *runner) step() error {
	stats, err := r.driver.AdvanceFrame(r.sim)
	if err != nil {
		return err
	}
	r.perf.RecordFrame()
	for _, b := range r.bookmarks.Check(stats) {
		b.LogBookmark()
		if err := r.saveSnapshot(&b); err != nil {
			return err
		}
	}
	if err := r.output.WriteFrame(stats); err != nil {
		return err
	}
	if err := r.output.WritePerf(r.perf.Stats(), stats.Frame); err != nil {
		return err
	}
	return r.exportFrame()
}

// exportFrame writes the mask image and interface mesh of the current
// frame when output is enabled.
func (r *runner) exportFrame() error {
	if r.output == nil {
		return nil
	}
	frame := r.sim.Frame()
	png := r.output.FramePath(frame, "png")
	if err := export.WriteFramePNG(png, r.sim, r.cfg.Driver.Supersample, export.DefaultOverlay); err != nil {
		return err
	}
	return export.WriteMesh(r.output.FramePath(frame, "mesh"), r.sim.Mesh())
}

// saveSnapshot writes the current fields and their snapshot metadata to
// the snapshot directory, if one is set.
func (r *runner) saveSnapshot(b *telemetry.Bookmark) error {
	if r.snapshotDir == "" {
		return nil
	}
	cur, init := r.sim.Volume()
	snap := &telemetry.Snapshot{
		Scene:         r.sim.Scene().String(),
		Resolution:    r.cfg.Grid.Resolution,
		BoundaryWidth: r.cfg.Grid.BoundaryWidth,
		Length:        r.cfg.Grid.Length,
		Frame:         r.sim.Frame(),
		SimTime:       r.sim.Time(),
		Volume:        cur,
		InitVolume:    init,
		Bookmark:      b,
	}
	snap.Fields = snap.SnapshotName() + ".bin"
	if err := os.MkdirAll(r.snapshotDir, 0755); err != nil {
		return fmt.Errorf("creating snapshot dir: %w", err)
	}
	if err := export.SaveFields(filepath.Join(r.snapshotDir, snap.Fields), r.sim); err != nil {
		return err
	}
	path, err := telemetry.SaveSnapshot(snap, r.snapshotDir)
	if err != nil {
		return err
	}
	slog.Info("snapshot written", "path", path, "frame", snap.Frame)
	return nil
}

// resumeFrom restores s from a snapshot taken on the same grid.
func resumeFrom(path string, s *sim.Simulation, opts sim.BuildOptions) error {
	snap, err := telemetry.LoadSnapshot(path)
	if err != nil {
		return err
	}
	if err := snap.Matches(opts.Scene.String(), opts.Resolution, opts.BoundaryWidth, opts.Length); err != nil {
		return err
	}
	if err := export.LoadFields(snap.FieldsPath(path), s); err != nil {
		return err
	}
	if err := s.Resume(snap.Frame); err != nil {
		return err
	}
	slog.Info("resumed", "snapshot", path, "frame", snap.Frame, "sim_time", snap.SimTime)
	return nil
}

func (r *runner) logTotals() {
	totals, steps := r.perf.Totals()
	attrs := make([]any, 0, 2*len(totals)+2)
	attrs = append(attrs, "substeps", steps)
	for _, phase := range telemetry.Phases {
		attrs = append(attrs, phase, totals[phase].String())
	}
	slog.Info("run complete", attrs...)
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
