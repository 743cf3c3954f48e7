package main

import (
	"context"
	"fmt"
	"math"

	"golang.org/x/sync/errgroup"
)

// RunSpec is one independent simulation of a sweep.
type RunSpec struct {
	Name       string
	SpacingCM  float64
	TimeStepMS float64
	DurationMS float64
	SourceCM   []float64 // x, y, z; nil keeps the fallback index
	DisplayZCM float64
}

// RunResult is what a finished sweep run reports.
type RunResult struct {
	Spec      RunSpec
	Index     int
	Steps     int
	ElapsedMS float64
	Peak      float64
	Slice     string
}

// assignRuns deals run indices to workers round robin.
func assignRuns(workerCount, runCount int) [][]int {
	if workerCount < 1 {
		workerCount = 1
	}
	if workerCount > runCount {
		workerCount = runCount
	}
	queues := make([][]int, workerCount)
	for idx := 0; idx < runCount; idx++ {
		workerIdx := idx % workerCount
		queues[workerIdx] = append(queues[workerIdx], idx)
	}
	return queues
}

// Sweep executes runs on up to workers goroutines. Every run builds and owns
// its own Simulator, so no grid is ever touched by two goroutines. Results
// are returned in run order; the first failure cancels the remaining runs.
func Sweep(ctx context.Context, workers int, runs []RunSpec, onDone func(RunResult)) ([]RunResult, error) {
	results := make([]RunResult, len(runs))
	if len(runs) == 0 {
		return results, nil
	}
	done := make(chan RunResult)
	g, gctx := errgroup.WithContext(ctx)
	for _, queue := range assignRuns(workers, len(runs)) {
		queue := queue // per-iteration copy: go directive is 1.21 (pre-loopvar semantics)
		g.Go(func() error {
			for _, idx := range queue {
				res, err := runOne(gctx, runs[idx])
				if err != nil {
					return fmt.Errorf("run %d (%s): %w", idx, runs[idx].Name, err)
				}
				res.Index = idx
				select {
				case done <- res:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(done)
	}()
	for res := range done {
		results[res.Index] = res
		if onDone != nil {
			onDone(res)
		}
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// runOne configures, sources, and completes a single simulation.
func runOne(ctx context.Context, spec RunSpec) (RunResult, error) {
	sim := NewSimulator()
	defer sim.Close()
	cfg := sim.Config()
	if err := cfg.SetSpacingCM(spec.SpacingCM); err != nil {
		return RunResult{}, err
	}
	if err := cfg.SetTimeStepMS(spec.TimeStepMS); err != nil {
		return RunResult{}, err
	}
	cfg.SetMaxDurationMS(spec.DurationMS)
	if len(spec.SourceCM) == 3 {
		cfg.SetSourceLocationCM(spec.SourceCM[0], spec.SourceCM[1], spec.SourceCM[2])
	}
	if err := sim.Init(); err != nil {
		return RunResult{}, err
	}
	if err := sim.Source(); err != nil {
		return RunResult{}, err
	}
	steps := 0
	if err := sim.Run(ctx, func(*Simulator) error {
		steps++
		return nil
	}); err != nil {
		return RunResult{}, err
	}
	peak := 0.0
	sim.PressureGrid().Pressures(func(_, _, _ int, p float64) {
		peak = math.Max(peak, math.Abs(p))
	})
	return RunResult{
		Spec:      spec,
		Steps:     steps,
		ElapsedMS: sim.Elapsed() * msPerS,
		Peak:      peak,
		Slice:     sim.Text(sim.SliceIndex(spec.DisplayZCM)),
	}, nil
}
