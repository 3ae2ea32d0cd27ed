package main

import (
	"log/slog"
	"math"
	"sync"

	"github.com/pthm-cable/pivot/config"
	"github.com/pthm-cable/pivot/sim"
	"github.com/pthm-cable/pivot/telemetry"
)

// Fitness weights.
const (
	// Penalty for a run that fails outright (solver error, NaN step).
	failurePenalty = 1.0
	// Cost per sub-step per frame, so a run that buys accuracy with tiny
	// steps does not win by default.
	substepCost = 1e-4
)

// FitnessEvaluator runs short headless simulations and scores how well
// the liquid volume is conserved.
type FitnessEvaluator struct {
	params     *ParamVector
	frames     int
	resolution int
	scenes     []sim.Scene
	baseConfig *config.Config

	// Best run tracking
	mu          sync.Mutex
	bestFitness float64
	bestFrames  []telemetry.FrameStats
	lastDrift   float64 // worst drift from the most recent Evaluate call
}

// NewFitnessEvaluator creates a new evaluator.
func NewFitnessEvaluator(params *ParamVector, frames, resolution int, scenes []sim.Scene, baseCfg *config.Config) *FitnessEvaluator {
	return &FitnessEvaluator{
		params:      params,
		frames:      frames,
		resolution:  resolution,
		scenes:      scenes,
		baseConfig:  baseCfg,
		bestFitness: math.Inf(1),
	}
}

// BestFrames returns the per-frame stats of the best scoring scene run.
func (fe *FitnessEvaluator) BestFrames() []telemetry.FrameStats {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.bestFrames
}

// LastDrift returns the worst relative drift from the most recent evaluation.
func (fe *FitnessEvaluator) LastDrift() float64 {
	fe.mu.Lock()
	defer fe.mu.Unlock()
	return fe.lastDrift
}

// runResult holds the results from a single simulation run.
type runResult struct {
	frames []telemetry.FrameStats
	err    error
}

// sceneResult holds the result from one scene evaluation.
type sceneResult struct {
	fitness float64
	drift   float64
	frames  []telemetry.FrameStats
}

// Evaluate computes fitness for a parameter vector (lower = better).
func (fe *FitnessEvaluator) Evaluate(x []float64) float64 {
	results := make([]sceneResult, len(fe.scenes))
	var wg sync.WaitGroup

	for i, scene := range fe.scenes {
		wg.Add(1)
		go func(idx int, sc sim.Scene) {
			defer wg.Done()
			r := fe.runSimulation(x, sc)
			results[idx] = sceneResult{
				fitness: computeFitness(r),
				drift:   telemetry.MaxAbsDrift(r.frames),
				frames:  r.frames,
			}
		}(i, scene)
	}
	wg.Wait()

	// Aggregate results
	var totalFitness, worstDrift float64
	bestSceneFitness := math.Inf(1)
	var bestSceneFrames []telemetry.FrameStats

	for _, r := range results {
		totalFitness += r.fitness
		worstDrift = math.Max(worstDrift, r.drift)
		if r.fitness < bestSceneFitness {
			bestSceneFitness = r.fitness
			bestSceneFrames = r.frames
		}
	}
	avgFitness := totalFitness / float64(len(fe.scenes))

	fe.mu.Lock()
	if avgFitness < fe.bestFitness {
		fe.bestFitness = avgFitness
		fe.bestFrames = bestSceneFrames
	}
	fe.lastDrift = worstDrift
	fe.mu.Unlock()

	return avgFitness
}

// runSimulation executes a single headless run of scene.
func (fe *FitnessEvaluator) runSimulation(x []float64, scene sim.Scene) *runResult {
	cfg := fe.copyConfig()
	fe.params.ApplyToConfig(cfg, x)
	cfg.Scene.Name = scene.String()
	cfg.Grid.Resolution = fe.resolution

	result := &runResult{}
	opts, err := sim.OptionsFromConfig(cfg)
	if err != nil {
		result.err = err
		return result
	}
	s, err := sim.Build(opts)
	if err != nil {
		result.err = err
		return result
	}
	driver, err := sim.NewDriver(cfg.Driver.FrameRate, cfg.Driver.Courant, nil)
	if err != nil {
		result.err = err
		return result
	}

	for s.Frame() < fe.frames {
		stats, err := driver.AdvanceFrame(s)
		if err != nil {
			slog.Debug("run failed", "scene", scene.String(), "frame", s.Frame(), "error", err)
			result.err = err
			return result
		}
		result.frames = append(result.frames, stats)
	}
	return result
}

// copyConfig creates a copy of the base config. Config holds only value
// fields, so a struct copy is deep.
func (fe *FitnessEvaluator) copyConfig() *config.Config {
	cfg := *fe.baseConfig
	return &cfg
}

// computeFitness calculates the scalar fitness (lower = better).
// Formula: max|drift| + substepCost × mean substeps per frame, plus
// failurePenalty if the run errored.
func computeFitness(r *runResult) float64 {
	fitness := telemetry.MaxAbsDrift(r.frames)
	if len(r.frames) > 0 {
		var substeps int
		for _, f := range r.frames {
			substeps += f.Substeps
		}
		fitness += substepCost * float64(substeps) / float64(len(r.frames))
	}
	if r.err != nil {
		fitness += failurePenalty
	}
	return fitness
}
