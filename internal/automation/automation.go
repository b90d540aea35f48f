package automation

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/san-kum/grabsim/internal/config"
	"github.com/san-kum/grabsim/internal/experiment"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/stat"
	"gopkg.in/yaml.v3"
)

// Batch defines a sequence of runs. Scripts are scene script files
// registered before the runs start, so runs can name them.
type Batch struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Scripts     []string   `yaml:"scripts"`
	Runs        []BatchRun `yaml:"runs"`
}

// BatchRun is a single run in a batch
type BatchRun struct {
	Scenario string             `yaml:"scenario"`
	Preset   string             `yaml:"preset"`
	Duration float64            `yaml:"duration"`
	Seed     int64              `yaml:"seed"`
	Params   map[string]float64 `yaml:"params"`
	SaveAs   string             `yaml:"save_as"`
}

type RunOutcome struct {
	Name   string
	Config *config.Config
	Result *sim.Result
}

// LoadBatch loads a batch from a YAML file
func LoadBatch(path string) (*Batch, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var batch Batch
	if err := yaml.Unmarshal(data, &batch); err != nil {
		return nil, err
	}

	return &batch, nil
}

// RegisterScripts loads scene scripts and adds them to the registry.
func RegisterScripts(reg *experiment.Registry, paths ...string) error {
	for _, p := range paths {
		s, err := LoadSceneScript(p)
		if err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
		if err := reg.Register(s.Scenario()); err != nil {
			return fmt.Errorf("%s: %w", p, err)
		}
	}
	return nil
}

// RunConfig resolves the config for one batch run: preset first, then
// duration and seed overrides, then params.
func (r BatchRun) RunConfig(reg *experiment.Registry) (*config.Config, error) {
	s, err := reg.GetScenario(r.Scenario)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if r.Preset != "" {
		if cfg = config.GetPreset(r.Scenario, r.Preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset %s for scenario %s", r.Preset, r.Scenario)
		}
	}
	cfg.Scenario = r.Scenario
	cfg.Duration = s.Duration
	if r.Duration > 0 {
		cfg.Duration = r.Duration
	}
	cfg.Seed = r.Seed
	for k, v := range r.Params {
		if err := cfg.SetParam(k, v); err != nil {
			return nil, err
		}
	}
	return cfg, cfg.Validate()
}

// RunBatch executes all runs in a batch
func RunBatch(ctx context.Context, batch *Batch, reg *experiment.Registry, log *zap.Logger) ([]RunOutcome, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := RegisterScripts(reg, batch.Scripts...); err != nil {
		return nil, err
	}

	outcomes := make([]RunOutcome, 0, len(batch.Runs))
	for i, run := range batch.Runs {
		log.Info("running batch step",
			zap.Int("step", i+1), zap.Int("of", len(batch.Runs)), zap.String("scenario", run.Scenario))

		cfg, err := run.RunConfig(reg)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		exp := experiment.New(cfg, log)
		if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
			return outcomes, fmt.Errorf("run %d setup: %w", i+1, err)
		}

		result, err := exp.Run(ctx)
		if err != nil {
			return outcomes, fmt.Errorf("run %d: %w", i+1, err)
		}

		name := run.SaveAs
		if name == "" {
			name = fmt.Sprintf("%s-%d", run.Scenario, i+1)
		}
		outcomes = append(outcomes, RunOutcome{Name: name, Config: cfg, Result: result})
	}

	return outcomes, nil
}

// ParameterSweep runs a scenario across a range of one tunable.
type ParameterSweep struct {
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Grabs      int
	Releases   int
	Errors     int
	Metrics    map[string]float64
}

// RunSweep executes a parameter sweep on copies of base.
func RunSweep(ctx context.Context, base *config.Config, sweep *ParameterSweep, reg *experiment.Registry, log *zap.Logger) ([]SweepResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if sweep.NumSteps < 2 {
		return nil, fmt.Errorf("sweep needs at least 2 steps, got %d", sweep.NumSteps)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	paramStep := (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)

	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := *base
		if err := cfg.SetParam(sweep.ParamName, paramVal); err != nil {
			return nil, err
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("%s=%.4f: %w", sweep.ParamName, paramVal, err)
		}

		exp := experiment.New(&cfg, log)
		if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
			return nil, err
		}
		result, err := exp.Run(ctx)
		if err != nil {
			return nil, err
		}

		results = append(results, SweepResult{
			ParamValue: paramVal,
			Grabs:      result.Count(grab.EventGrabbed),
			Releases:   result.Count(grab.EventReleased),
			Errors:     len(result.Errors),
			Metrics:    result.Metrics,
		})

		log.Info("sweep step done",
			zap.Int("step", i+1), zap.Int("of", sweep.NumSteps),
			zap.String("param", sweep.ParamName), zap.Float64("value", paramVal))
	}

	return results, nil
}

// MonteCarloConfig runs the same scenario under different placement
// jitter seeds.
type MonteCarloConfig struct {
	NumTrials int
	Seed      int64
}

type MonteCarloResult struct {
	TrialID        int
	Seed           int64
	Grabbed        bool
	Errors         int
	PeakThrowSpeed float64
	HoldFraction   float64
}

// Succeeded reports whether the trial grabbed something and ran clean.
func (r MonteCarloResult) Succeeded() bool { return r.Grabbed && r.Errors == 0 }

// RunMonteCarlo runs the trials concurrently as an ensemble.
func RunMonteCarlo(ctx context.Context, base *config.Config, mc *MonteCarloConfig, reg *experiment.Registry, log *zap.Logger) ([]MonteCarloResult, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if mc.NumTrials < 1 {
		return nil, fmt.Errorf("monte carlo needs at least 1 trial")
	}

	seed := mc.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	ens := sim.NewEnsemble(reg.Builder(base, log, true), mc.NumTrials, seed)
	runs, err := ens.Run(ctx, base.SimConfig())
	if err != nil {
		return nil, err
	}

	results := make([]MonteCarloResult, len(runs))
	for i, r := range runs {
		results[i] = MonteCarloResult{
			TrialID:        i,
			Seed:           seed + int64(i),
			Grabbed:        r.Count(grab.EventGrabbed) > 0,
			Errors:         len(r.Errors),
			PeakThrowSpeed: r.Metrics["peak_throw_speed"],
			HoldFraction:   r.Metrics["hold_fraction"],
		}
	}

	ok, failed := MonteCarloStats(results)
	log.Info("monte carlo done", zap.Int("trials", len(results)), zap.Int("succeeded", ok), zap.Int("failed", failed))
	return results, nil
}

// MonteCarloStats counts succeeded and failed trials.
func MonteCarloStats(results []MonteCarloResult) (succeeded int, failed int) {
	for _, r := range results {
		if r.Succeeded() {
			succeeded++
		} else {
			failed++
		}
	}
	return
}

type MonteCarloSummary struct {
	Trials        int
	SuccessRate   float64
	PeakSpeedMean float64
	PeakSpeedStd  float64
	HoldMean      float64
}

// Summarize aggregates trial outcomes. Speed and hold statistics cover
// succeeded trials only.
func Summarize(results []MonteCarloResult) MonteCarloSummary {
	sum := MonteCarloSummary{Trials: len(results)}
	if len(results) == 0 {
		return sum
	}

	var speeds, holds []float64
	for _, r := range results {
		if r.Succeeded() {
			speeds = append(speeds, r.PeakThrowSpeed)
			holds = append(holds, r.HoldFraction)
		}
	}
	sum.SuccessRate = float64(len(speeds)) / float64(len(results))
	switch len(speeds) {
	case 0:
	case 1:
		sum.PeakSpeedMean = speeds[0]
		sum.HoldMean = holds[0]
	default:
		sum.PeakSpeedMean, sum.PeakSpeedStd = stat.MeanStdDev(speeds, nil)
		sum.HoldMean = stat.Mean(holds, nil)
	}
	return sum
}
