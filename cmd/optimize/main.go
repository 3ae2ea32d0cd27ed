// Package main tunes the volume controller and stepping parameters with
// CMA-ES, scoring each candidate by the volume drift of short runs.
package main

import (
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gocarina/gocsv"
	"gonum.org/v1/gonum/optimize"

	"github.com/pthm-cable/pivot/config"
	"github.com/pthm-cable/pivot/sim"
)

// formatDuration formats a duration as 1h02m03s, or 2m03s when under an hour.
func formatDuration(d time.Duration) string {
	d = d.Round(time.Second)
	h := d / time.Hour
	m := (d % time.Hour) / time.Minute
	s := (d % time.Minute) / time.Second
	if h > 0 {
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	}
	return fmt.Sprintf("%dm%02ds", m, s)
}

// evalRecord is one row of optimize_log.csv.
type evalRecord struct {
	Eval               int     `csv:"eval"`
	Fitness            float64 `csv:"fitness"`
	MaxDrift           float64 `csv:"max_drift"`
	VolumeGain         float64 `csv:"volume_gain"`
	Courant            float64 `csv:"courant"`
	ReinitSteps        float64 `csv:"reinit_steps"`
	ExtrapolationClear float64 `csv:"extrapolation_clear"`
}

// evalLog appends evaluation rows to a CSV file, flushing after each.
type evalLog struct {
	f             *os.File
	headerWritten bool
}

func newEvalLog(path string) (*evalLog, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating log file: %w", err)
	}
	return &evalLog{f: f}, nil
}

func (l *evalLog) Write(rec evalRecord) error {
	rows := []evalRecord{rec}
	if !l.headerWritten {
		l.headerWritten = true
		return gocsv.Marshal(&rows, l.f)
	}
	return gocsv.MarshalWithoutHeaders(&rows, l.f)
}

func (l *evalLog) Close() error { return l.f.Close() }

func parseScenes(list string) ([]sim.Scene, error) {
	var scenes []sim.Scene
	for _, name := range strings.Split(list, ",") {
		scene, err := sim.ParseScene(strings.TrimSpace(name))
		if err != nil {
			return nil, err
		}
		scenes = append(scenes, scene)
	}
	return scenes, nil
}

func main() {
	configPath := flag.String("config", "", "Base config YAML file (empty = use defaults)")
	frames := flag.Int("frames", 12, "Frames simulated per evaluation")
	resolution := flag.Int("resolution", 48, "Grid resolution used during evaluation")
	sceneList := flag.String("scenes", "box,droplet", "Comma-separated scenes run per evaluation")
	maxEvals := flag.Int("max-evals", 100, "Maximum number of evaluations")
	population := flag.Int("population", 0, "CMA-ES population size (0 = auto)")
	outputDir := flag.String("output", "", "Output directory for results")
	flag.Parse()

	if *outputDir == "" {
		log.Fatal("--output is required")
	}

	// Per-frame solver logs would drown the progress lines.
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})))

	if err := os.MkdirAll(*outputDir, 0755); err != nil {
		log.Fatalf("failed to create output directory: %v", err)
	}
	if err := config.Init(*configPath); err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	baseCfg := config.Cfg()

	scenes, err := parseScenes(*sceneList)
	if err != nil {
		log.Fatal(err)
	}

	params := NewParamVector()
	evaluator := NewFitnessEvaluator(params, *frames, *resolution, scenes, baseCfg)

	evals, err := newEvalLog(filepath.Join(*outputDir, "optimize_log.csv"))
	if err != nil {
		log.Fatal(err)
	}
	defer evals.Close()

	dim := params.Dim()
	popSize := *population
	if popSize == 0 {
		popSize = 4 + 3*dim/2
	}

	var (
		evalCount   int
		bestFitness = 1e9
		bestParams  []float64
		startTime   = time.Now()
	)
	problem := optimize.Problem{
		Func: func(x []float64) float64 {
			clamped := params.Clamp(params.Denormalize(x))
			fitness := evaluator.Evaluate(clamped)
			evalCount++
			if fitness < bestFitness {
				bestFitness = fitness
				bestParams = clamped
			}

			drift := evaluator.LastDrift()
			if err := evals.Write(evalRecord{
				Eval:               evalCount,
				Fitness:            fitness,
				MaxDrift:           drift,
				VolumeGain:         clamped[0],
				Courant:            clamped[1],
				ReinitSteps:        clamped[2],
				ExtrapolationClear: clamped[3],
			}); err != nil {
				log.Printf("failed to log evaluation: %v", err)
			}

			elapsed := time.Since(startTime)
			remaining := time.Duration(*maxEvals-evalCount) * (elapsed / time.Duration(evalCount))
			fmt.Printf("Eval %d/%d: fitness=%.4g drift=%.3f%% (best=%.4g) | elapsed: %s, ETA: %s\n",
				evalCount, *maxEvals, fitness, 100*drift, bestFitness,
				formatDuration(elapsed), formatDuration(remaining))
			return fitness
		},
	}

	fmt.Printf("CMA-ES over %d parameters, population=%d, max_evals=%d\n", dim, popSize, *maxEvals)
	fmt.Printf("Scenes: %s, %d frames at resolution %d\n", *sceneList, *frames, *resolution)

	// Start from the loaded config rather than the built-in defaults.
	initX := params.Normalize(params.ExtractFromConfig(baseCfg))
	result, err := optimize.Minimize(problem, initX,
		&optimize.Settings{FuncEvaluations: *maxEvals},
		&optimize.CmaEsChol{InitStepSize: 0.3, Population: popSize},
	)
	if err != nil {
		log.Printf("optimization ended: %v", err)
	}
	if bestParams == nil {
		bestParams = params.Clamp(params.Denormalize(result.X))
	}

	fmt.Printf("\nDone: %d evaluations in %s, best fitness %.4g\n",
		evalCount, formatDuration(time.Since(startTime)), bestFitness)
	for i, spec := range params.Specs {
		fmt.Printf("  %-20s %-28s %.6f\n", spec.Name, spec.Path, bestParams[i])
	}

	if err := writeResults(*outputDir, *configPath, params, bestParams, evaluator); err != nil {
		log.Fatal(err)
	}
}

// writeResults saves the best config and the frame stats of its best run.
func writeResults(dir, configPath string, params *ParamVector, best []float64, fe *FitnessEvaluator) error {
	bestCfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	params.ApplyToConfig(bestCfg, best)
	configOut := filepath.Join(dir, "best_config.yaml")
	if err := bestCfg.WriteYAML(configOut); err != nil {
		return err
	}
	fmt.Printf("\nBest config saved to: %s\n", configOut)

	frames := fe.BestFrames()
	if len(frames) == 0 {
		return nil
	}
	framesOut := filepath.Join(dir, "best_frames.csv")
	f, err := os.Create(framesOut)
	if err != nil {
		return fmt.Errorf("creating best frames file: %w", err)
	}
	defer f.Close()
	if err := gocsv.MarshalFile(&frames, f); err != nil {
		return fmt.Errorf("writing best frames: %w", err)
	}
	fmt.Printf("Best run frames saved to: %s\n", framesOut)
	return nil
}
