package main

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/automation"
	"github.com/san-kum/grabsim/internal/config"
	"github.com/san-kum/grabsim/internal/experiment"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/pose"
	"github.com/san-kum/grabsim/internal/storage"
	"github.com/san-kum/grabsim/internal/viz"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dataDir    string
	verbose    bool
	dt         float64
	physicsDt  float64
	duration   float64
	seed       int64
	configFile string
	preset     string
	scripts    []string
	runName    string
	theme      string
	// plot
	targetID string
	// export-csv
	events bool
	// sweep and monte carlo
	paramName string
	paramMin  float64
	paramMax  float64
	numSteps  int
	numTrials int
	// pose encode
	posePos   []float64
	poseYaw   float64
	poseCurls []float64
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
	okStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	badStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "grabsim",
		Short:         "vr hand grab interaction simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE:          pickAndRunLive,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".grabsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "development logging")
	rootCmd.PersistentFlags().StringSliceVar(&scripts, "script", nil, "yaml scene script to register (repeatable)")

	runCmd := &cobra.Command{
		Use:   "run [scenario]",
		Short: "run a scenario and save it",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runScenario,
	}
	addRunFlags(runCmd)
	runCmd.Flags().StringVar(&runName, "name", "", "label stored with the run")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart hand and object speeds of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&targetID, "target", "", "also chart this object")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "print run metadata as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "print run samples (or events) as csv",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().BoolVar(&events, "events", false, "export notifications instead of samples")

	liveCmd := &cobra.Command{
		Use:   "live [scenario]",
		Short: "play a scenario in the terminal",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().StringVar(&theme, "theme", "cyberpunk", "color theme")

	benchCmd := &cobra.Command{
		Use:   "bench [scenario]",
		Short: "time a scenario across frame rates",
		Args:  cobra.ExactArgs(1),
		RunE:  benchScenario,
	}

	scenariosCmd := &cobra.Command{
		Use:   "scenarios",
		Short: "list scenarios",
		RunE:  listScenarios,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets [scenario]",
		Short: "list available presets for a scenario",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			presets := config.ListPresets(args[0])
			if len(presets) == 0 {
				fmt.Printf("no presets for scenario: %s\n", args[0])
				return nil
			}
			fmt.Printf("presets for %s:\n", args[0])
			for _, p := range presets {
				fmt.Printf("  %s\n", p)
			}
			return nil
		},
	}

	validateCmd := &cobra.Command{
		Use:   "validate [file...]",
		Short: "validate config files and scene scripts",
		Args:  cobra.MinimumNArgs(1),
		RunE:  validateFiles,
	}

	batchCmd := &cobra.Command{
		Use:   "batch [file]",
		Short: "run a yaml batch and save every run",
		Args:  cobra.ExactArgs(1),
		RunE:  runBatch,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [scenario]",
		Short: "run a scenario across a range of one parameter",
		Args:  cobra.ExactArgs(1),
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&paramName, "param", "hand_grab_speed", fmt.Sprintf("parameter %v", config.ListParams()))
	sweepCmd.Flags().Float64Var(&paramMin, "min", 1, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 4, "last value")
	sweepCmd.Flags().IntVar(&numSteps, "steps", 4, "number of values")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo [scenario]",
		Short: "run a scenario under many placement seeds",
		Args:  cobra.ExactArgs(1),
		RunE:  runMonteCarlo,
	}
	addRunFlags(monteCarloCmd)
	monteCarloCmd.Flags().IntVar(&numTrials, "trials", 20, "number of trials")

	poseCmd := &cobra.Command{
		Use:   "pose",
		Short: "hand pose payload tools",
	}
	poseEncodeCmd := &cobra.Command{
		Use:   "encode",
		Short: "print the hex payload of a hand pose",
		RunE:  encodePose,
	}
	poseEncodeCmd.Flags().Float64SliceVar(&posePos, "pos", []float64{0, 0, 0}, "local position x,y,z")
	poseEncodeCmd.Flags().Float64Var(&poseYaw, "yaw", 0, "rotation about up in degrees")
	poseEncodeCmd.Flags().Float64SliceVar(&poseCurls, "curls", nil, "finger curls, thumb first")
	poseCmd.AddCommand(poseEncodeCmd)

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, exportCmd, exportCSVCmd, liveCmd, benchCmd, scenariosCmd,
		presetsCmd, validateCmd, batchCmd, sweepCmd, monteCarloCmd, poseCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, badStyle.Render("error: ")+err.Error())
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "frame time")
	cmd.Flags().Float64Var(&physicsDt, "physics-dt", config.DefaultPhysicsDt, "physics step")
	cmd.Flags().Float64Var(&duration, "time", 0, "duration (0 uses the scenario's)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "placement jitter seed (0 disables jitter)")
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
}

func newLogger() (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func newRegistry() (*experiment.Registry, error) {
	reg := experiment.NewRegistry()
	if err := automation.RegisterScripts(reg, scripts...); err != nil {
		return nil, err
	}
	return reg, nil
}

// resolveConfig layers the config: defaults or preset, then config file,
// then flags the user set.
func resolveConfig(cmd *cobra.Command, reg *experiment.Registry, scenario string) (*config.Config, error) {
	s, err := reg.GetScenario(scenario)
	if err != nil {
		return nil, err
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		if cfg = config.GetPreset(scenario, preset); cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(scenario))
		}
	}
	cfg.Scenario = scenario
	cfg.Duration = s.Duration

	if configFile != "" {
		if cfg, err = config.Load(configFile); err != nil {
			return nil, err
		}
		cfg.Scenario = scenario
	}

	if cmd.Flags().Changed("dt") {
		cfg.Dt = dt
	}
	if cmd.Flags().Changed("physics-dt") {
		cfg.PhysicsDt = physicsDt
	}
	if cmd.Flags().Changed("time") {
		cfg.Duration = duration
	}
	if cmd.Flags().Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, cfg.Validate()
}

func interruptContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runScenario(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	scenario := "pickup"
	if len(args) > 0 {
		scenario = args[0]
	}
	cfg, err := resolveConfig(cmd, reg, scenario)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp := experiment.New(cfg, log)
	if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	fmt.Printf("running %s...\n", titleStyle.Render(scenario))
	start := time.Now()
	result, err := exp.Run(ctx)
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	runID, err := st.Save(runName, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("frames: %d  physics steps: %d  events: %d\n", result.Frames, result.PhysicsSteps, len(result.Events))
	for _, e := range result.Errors {
		fmt.Println(badStyle.Render("  error: ") + e.Error())
	}
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)
	return nil
}

func printMetrics(m map[string]float64) {
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range sortedKeys(m) {
		fmt.Fprintf(w, "  %s\t%.6f\n", name, m[name])
	}
	w.Flush()
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}

	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSCENARIO\tNAME\tTIME\tDURATION\tDT\tSEED\tEVENTS\tERRORS")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%.2fs\t%.4fs\t%d\t%d\t%d\n",
			run.ID,
			run.Scenario,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Duration,
			run.Dt,
			run.Seed,
			run.Events,
			len(run.Errors),
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}

	samples, err := st.LoadSamples(runID)
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("scenario: %s\n", meta.Scenario)
	fmt.Printf("samples: %d\n\n", len(samples))

	var series []viz.Series
	for _, side := range []grab.Side{grab.Left, grab.Right} {
		_, speeds := storage.HandSpeeds(samples, side)
		series = append(series, viz.Series{Name: side.String() + " hand", Values: speeds})
	}
	if targetID != "" {
		_, speeds := storage.TargetSpeeds(samples, targetID)
		if len(speeds) == 0 {
			return fmt.Errorf("no samples for object %s", targetID)
		}
		series = append(series, viz.Series{Name: targetID, Values: speeds})
	}

	fmt.Println(viz.PlotSpeeds(series, 80, 10))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func exportCSV(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if events {
		evs, err := st.LoadEvents(args[0])
		if err != nil {
			return err
		}
		return storage.WriteEventsCSV(os.Stdout, evs)
	}

	samples, err := st.LoadSamples(args[0])
	if err != nil {
		return err
	}
	if len(samples) == 0 {
		return fmt.Errorf("no data to export")
	}
	return storage.WriteSamplesCSV(os.Stdout, samples)
}

func pickAndRunLive(cmd *cobra.Command, args []string) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}
	var choices []viz.Choice
	for _, name := range reg.ListScenarios() {
		s, _ := reg.GetScenario(name)
		choices = append(choices, viz.Choice{Name: name, Description: s.Description})
	}
	chosen, err := viz.Pick(choices)
	if err != nil || chosen == "" {
		return err
	}
	return runLive(cmd, []string{chosen})
}

func runLive(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return pickAndRunLive(cmd, args)
	}

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, reg, args[0])
	if err != nil {
		return err
	}

	// the terminal belongs to the view; only warnings reach the log
	log := zap.NewNop()
	if verbose {
		if log, err = zap.NewDevelopment(zap.IncreaseLevel(zap.WarnLevel)); err != nil {
			return err
		}
	}

	exp := experiment.New(cfg, log)
	if err := exp.Setup(reg, reg.DefaultMetrics()); err != nil {
		return err
	}

	viz.SetTheme(theme)
	return viz.RunLive(exp.GetSimulator(), cfg.SimConfig(), args[0])
}

func benchScenario(cmd *cobra.Command, args []string) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}
	s, err := reg.GetScenario(args[0])
	if err != nil {
		return err
	}

	rates := []float64{45, 72, 90, 120}
	fmt.Printf("benchmarking %s\n\n", args[0])
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "FPS\tFRAMES\tSTEPS\tGRABS\tTIME\tFRAMES/SEC")

	for _, fps := range rates {
		cfg := config.DefaultConfig()
		cfg.Scenario = s.Name
		cfg.Duration = s.Duration
		cfg.Dt = 1 / fps
		cfg.Seed = 42

		exp := experiment.New(cfg, nil)
		if err := exp.Setup(reg, nil); err != nil {
			return err
		}

		start := time.Now()
		result, err := exp.Run(context.Background())
		if err != nil {
			return err
		}
		elapsed := time.Since(start)

		fmt.Fprintf(w, "%.0f\t%d\t%d\t%d\t%v\t%.0f\n",
			fps, result.Frames, result.PhysicsSteps, result.Count(grab.EventGrabbed),
			elapsed, float64(result.Frames)/elapsed.Seconds())
	}

	return w.Flush()
}

func listScenarios(cmd *cobra.Command, args []string) error {
	reg, err := newRegistry()
	if err != nil {
		return err
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	for _, name := range reg.ListScenarios() {
		s, _ := reg.GetScenario(name)
		fmt.Fprintf(w, "%s\t%.1fs\t%s\n", titleStyle.Render(name), s.Duration, dimStyle.Render(s.Description))
	}
	return w.Flush()
}

// validateFiles accepts engine configs and scene scripts; a file passes if
// it loads as either.
func validateFiles(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		_, err := config.Load(path)
		if err == nil {
			fmt.Printf("%s %s (config)\n", okStyle.Render("ok  "), path)
			continue
		}
		_, serr := automation.LoadSceneScript(path)
		if serr == nil {
			fmt.Printf("%s %s (scene script)\n", okStyle.Render("ok  "), path)
			continue
		}
		fmt.Printf("%s %s\n      config: %v\n      script: %v\n", badStyle.Render("fail"), path, err, serr)
		failed++
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d files invalid", failed, len(args))
	}
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	batch, err := automation.LoadBatch(args[0])
	if err != nil {
		return err
	}
	reg, err := newRegistry()
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	outcomes, err := automation.RunBatch(ctx, batch, reg, log)
	for _, o := range outcomes {
		id, serr := st.Save(o.Name, o.Config, o.Result)
		if serr != nil {
			return serr
		}
		fmt.Printf("%s  %s  grabs=%d errors=%d\n", id, o.Name, o.Result.Count(grab.EventGrabbed), len(o.Result.Errors))
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, reg, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	sweep := &automation.ParameterSweep{ParamName: paramName, ParamMin: paramMin, ParamMax: paramMax, NumSteps: numSteps}
	results, err := automation.RunSweep(ctx, cfg, sweep, reg, log)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tGRABS\tRELEASES\tERRORS\tPULL\tPEAK THROW\n", paramName)
	for _, r := range results {
		fmt.Fprintf(w, "%.4f\t%d\t%d\t%d\t%.3fs\t%.3f\n",
			r.ParamValue, r.Grabs, r.Releases, r.Errors, r.Metrics["pull_duration"], r.Metrics["peak_throw_speed"])
	}
	return w.Flush()
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	log, err := newLogger()
	if err != nil {
		return err
	}
	defer log.Sync()

	reg, err := newRegistry()
	if err != nil {
		return err
	}
	cfg, err := resolveConfig(cmd, reg, args[0])
	if err != nil {
		return err
	}

	ctx, cancel := interruptContext()
	defer cancel()

	results, err := automation.RunMonteCarlo(ctx, cfg, &automation.MonteCarloConfig{NumTrials: numTrials, Seed: cfg.Seed}, reg, log)
	if err != nil {
		return err
	}

	ok, failed := automation.MonteCarloStats(results)
	fmt.Printf("%s %d  %s %d\n", okStyle.Render("succeeded"), ok, badStyle.Render("failed"), failed)
	if sum := automation.Summarize(results); ok > 0 {
		fmt.Printf("peak throw speed %.3f ± %.3f m/s, hold fraction %.3f\n", sum.PeakSpeedMean, sum.PeakSpeedStd, sum.HoldMean)
	}
	for _, r := range results {
		if !r.Succeeded() {
			fmt.Printf("  trial %d (seed %d): grabbed=%v errors=%d\n", r.TrialID, r.Seed, r.Grabbed, r.Errors)
		}
	}
	return nil
}

func encodePose(cmd *cobra.Command, args []string) error {
	if len(posePos) != 3 {
		return fmt.Errorf("--pos needs 3 values, got %d", len(posePos))
	}
	if len(poseCurls) > pose.FingerCount {
		return fmt.Errorf("--curls takes at most %d values", pose.FingerCount)
	}
	var curls [pose.FingerCount]float32
	for i, c := range poseCurls {
		curls[i] = float32(c)
	}

	rot := mgl64.QuatRotate(mgl64.DegToRad(poseYaw), mgl64.Vec3{0, 1, 0})
	p := pose.FromTransform(mgl64.Vec3{posePos[0], posePos[1], posePos[2]}, rot, curls)
	data, err := p.MarshalBinary()
	if err != nil {
		return err
	}
	fmt.Println(hex.EncodeToString(data))
	return nil
}
