package main

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/atomsim/internal/analysis"
	"github.com/san-kum/atomsim/internal/atomic"
	"github.com/san-kum/atomsim/internal/config"
	"github.com/san-kum/atomsim/internal/driver"
	"github.com/san-kum/atomsim/internal/export"
	"github.com/san-kum/atomsim/internal/gui"
	"github.com/san-kum/atomsim/internal/input"
	"github.com/san-kum/atomsim/internal/metrics"
	"github.com/san-kum/atomsim/internal/optim"
	"github.com/san-kum/atomsim/internal/storage"
	"github.com/san-kum/atomsim/internal/viz"
)

var (
	dataDir    string
	configFile string
	preset     string
	dt         float64
	ticks      int
	seed       int64
	particles  int
	burstEvery int
	frameRate  int
	idle       bool
	output     string
	braille    bool
	theme      string
	runs       int
	workers    int
	axes       []string
	metricName string
	maximize   bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "atomsim",
		Short: "interactive atom particle simulation",
		RunE:  runGUI,
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".atomsim", "data directory")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a headless simulation and record it",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)
	runCmd.Flags().BoolVar(&idle, "idle", false, "no pointer input")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run simulation in the terminal",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addWorldFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "tick rate")
	liveCmd.Flags().StringVar(&theme, "theme", "atomic", "color theme")

	guiCmd := &cobra.Command{
		Use:   "gui",
		Short: "run simulation in a window",
		Args:  cobra.NoArgs,
		RunE:  runGUI,
	}
	addWorldFlags(guiCmd)
	guiCmd.Flags().IntVar(&frameRate, "fps", config.DefaultFPS, "tick rate")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot",
		Short: "simulate and write the final frame as SVG",
		Args:  cobra.NoArgs,
		RunE:  snapshot,
	}
	addWorldFlags(snapshotCmd)
	snapshotCmd.Flags().StringVarP(&output, "output", "o", "atoms.svg", "output file")
	snapshotCmd.Flags().BoolVar(&braille, "braille", false, "render through the terminal canvas")

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "benchmark tick throughput",
		Args:  cobra.NoArgs,
		RunE:  bench,
	}
	addWorldFlags(benchCmd)

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available presets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Printf("  %-8s %4d atoms  vmax %-4g link %-4g\n", name, p.Particles, p.MaxSpeed, p.LinkDistance)
			}
			return nil
		},
	}

	initCmd := &cobra.Command{
		Use:   "init [path]",
		Short: "write a config file",
		Args:  cobra.MaximumNArgs(1),
		RunE:  initConfig,
	}
	initCmd.Flags().StringVar(&preset, "preset", "", "start from preset")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "summary and dominant period of run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run one configuration over many seeds in parallel",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addWorldFlags(ensembleCmd)
	addEnsembleFlags(ensembleCmd)

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "grid search over config keys",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addWorldFlags(sweepCmd)
	addEnsembleFlags(sweepCmd)
	sweepCmd.Flags().StringArrayVar(&axes, "param", nil, "axis as key=v1,v2,... (repeatable)")
	sweepCmd.Flags().StringVar(&metricName, "metric", "link_density", "metric to optimize")
	sweepCmd.Flags().BoolVar(&maximize, "max", false, "maximize instead of minimize")
	_ = sweepCmd.MarkFlagRequired("param")

	rootCmd.AddCommand(runCmd, liveCmd, guiCmd, listCmd, plotCmd, exportCmd, snapshotCmd, benchCmd, presetsCmd, initCmd, analyzeCmd, ensembleCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().Float64Var(&dt, "dt", config.DefaultDt, "timestep")
	cmd.Flags().IntVar(&ticks, "ticks", config.DefaultTicks, "number of ticks")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 picks one)")
	cmd.Flags().IntVar(&particles, "particles", 500, "number of atoms")
	cmd.Flags().IntVar(&burstEvery, "burst-every", 120, "scripted burst period in ticks (0 disables)")
}

func addEnsembleFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&runs, "runs", 8, "seeds per configuration")
	cmd.Flags().IntVar(&workers, "workers", 0, "parallel runs (0 = one per CPU)")
	cmd.Flags().BoolVar(&idle, "idle", false, "no pointer input")
}

// resolveConfig layers preset, config file and explicitly set flags, in
// that order, and returns the result with the name to record it under.
func resolveConfig(cmd *cobra.Command) (*config.Config, string, error) {
	cfg := config.DefaultConfig()
	name := "atomic"

	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, "", fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
		name = preset
	}

	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, "", fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if cfg.Preset != "" {
			name = cfg.Preset
		}
	}

	flags := cmd.Flags()
	if flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Changed("ticks") {
		cfg.Ticks = ticks
	}
	if flags.Changed("particles") {
		cfg.Particles = particles
	}
	if flags.Changed("burst-every") {
		cfg.BurstEvery = burstEvery
	}
	if flags.Changed("fps") {
		cfg.FPS = frameRate
	}
	if flags.Changed("seed") {
		cfg.Seed = seed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	if _, err := cfg.World(); err != nil {
		return nil, "", err
	}
	return cfg, name, nil
}

// newRunner builds a seeded world driven by the scripted pointer, or by
// no pointer at all when noPointer is set.
func newRunner(cfg *config.Config, noPointer bool) (*driver.Runner, error) {
	wc, err := cfg.World()
	if err != nil {
		return nil, err
	}
	w, err := atomic.New(wc, rand.New(rand.NewSource(cfg.Seed)))
	if err != nil {
		return nil, err
	}
	var src input.Source = input.Idle{}
	if !noPointer {
		src = input.NewScript(cfg.Width, cfg.Height, cfg.Seed, cfg.BurstEvery)
	}
	return driver.New(w, src), nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	runner, err := newRunner(cfg, idle)
	if err != nil {
		return err
	}
	for _, m := range metrics.Standard() {
		runner.AddMetric(m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s: %d atoms, %d ticks...\n", name, cfg.Particles, cfg.Ticks)
	start := time.Now()

	result, err := runner.Run(ctx, driver.Config{Dt: cfg.Dt, Ticks: cfg.Ticks})
	var stepErr *driver.StepError
	if errors.As(err, &stepErr) && errors.Is(err, context.Canceled) {
		fmt.Printf("interrupted at tick %d, saving partial run\n", stepErr.Tick)
	} else if err != nil {
		return err
	}

	elapsed := time.Since(start)

	runID, err := st.Save(name, cfg, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("ticks: %d\n", result.TicksTaken)
	fmt.Println("\nmetrics:")
	printMetrics(result.Metrics)

	return nil
}

func printMetrics(m map[string]float64) {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6f\n", name, m[name])
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	viz.SetTheme(theme)
	return viz.Run(cfg, name)
}

func runGUI(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	return gui.Run(cfg, name)
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tATOMS\tTICKS\tSEED")

	for _, run := range runs {
		atoms, runSeed := 0, int64(0)
		if run.Config != nil {
			atoms, runSeed = run.Config.Particles, run.Config.Seed
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			atoms,
			run.Ticks,
			runSeed,
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

	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}

	if len(stats) == 0 {
		return fmt.Errorf("no data to plot")
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(stats))

	links := make([]float64, len(stats))
	bursting := make([]float64, len(stats))
	for i, s := range stats {
		links[i] = float64(s.Links)
		bursting[i] = float64(s.Bursting)
	}

	series := []struct {
		caption string
		data    []float64
	}{
		{"mean speed", storage.MeanSpeeds(stats)},
		{"links", links},
		{"bursting atoms", bursting},
	}
	for _, s := range series {
		graph := asciigraph.Plot(s.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(s.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}

	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}

	result := &driver.Result{Stats: stats, Metrics: meta.Metrics, TicksTaken: meta.Ticks}
	if output == "" {
		return export.WriteJSON(os.Stdout, meta.Name, meta.Config, result)
	}
	if err := export.ExportJSON(output, meta.Name, meta.Config, result); err != nil {
		return err
	}
	fmt.Printf("exported %s to %s\n", runID, output)
	return nil
}

func snapshot(cmd *cobra.Command, args []string) error {
	cfg, _, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := newRunner(cfg, false)
	if err != nil {
		return err
	}

	n := max(cfg.Ticks, 1)
	var last []atomic.DrawCommand
	err = runner.RunWithCallback(context.Background(), driver.Config{Dt: cfg.Dt, Ticks: n},
		func(tick int, cmds []atomic.DrawCommand) bool {
			last = cmds
			return true
		})
	if err != nil {
		return err
	}

	var svg string
	if braille {
		canvas := viz.NewCanvas(80, 24)
		viz.NewSurface(canvas, cfg.Width, cfg.Height).Render(last)
		svg = export.CanvasToSVG(canvas, 4)
	} else {
		svg = export.CommandsToSVG(last, cfg.Width, cfg.Height, "")
	}

	if err := os.WriteFile(output, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote tick %d (%d commands) to %s\n", runner.Tick(), len(last), output)
	return nil
}

func bench(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	runner, err := newRunner(cfg, false)
	if err != nil {
		return err
	}

	fmt.Printf("benchmarking %s: %d atoms, %d ticks...\n", name, cfg.Particles, cfg.Ticks)
	start := time.Now()
	result, err := runner.Run(context.Background(), driver.Config{Dt: cfg.Dt, Ticks: cfg.Ticks})
	if err != nil {
		return err
	}
	elapsed := time.Since(start)

	perTick := elapsed / time.Duration(max(result.TicksTaken, 1))
	fmt.Printf("ticks: %d\n", result.TicksTaken)
	fmt.Printf("total: %v\n", elapsed)
	fmt.Printf("per tick: %v\n", perTick)
	fmt.Printf("ticks/sec: %.1f\n", float64(result.TicksTaken)/elapsed.Seconds())
	if cfg.FPS <= 0 {
		return nil
	}
	if budget := time.Second / time.Duration(cfg.FPS); perTick > budget {
		fmt.Printf("warning: slower than %d fps (%v per frame)\n", cfg.FPS, budget)
	}
	return nil
}

func initConfig(cmd *cobra.Command, args []string) error {
	path := "atomsim.yaml"
	if len(args) > 0 {
		path = args[0]
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}

	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
		}
	}
	if err := config.Save(path, cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", path)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(stats) == 0 {
		return fmt.Errorf("no data to analyze")
	}

	links := make([]float64, len(stats))
	collisions := make([]float64, len(stats))
	bursting := make([]float64, len(stats))
	for i, s := range stats {
		links[i] = float64(s.Links)
		collisions[i] = float64(s.Collisions)
		bursting[i] = float64(s.Bursting)
	}

	fmt.Printf("run: %s (%s, %d ticks)\n\n", meta.ID, meta.Name, len(stats))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SERIES\tMEAN\tSTDDEV\tMIN\tMAX\tPERIOD")
	for _, s := range []struct {
		name string
		data []float64
	}{
		{"mean_speed", storage.MeanSpeeds(stats)},
		{"links", links},
		{"collisions", collisions},
		{"bursting", bursting},
	} {
		sum := analysis.Summarize(s.data)
		period := "-"
		if p := analysis.DominantPeriod(s.data); p > 0 {
			period = fmt.Sprintf("%.1f ticks", p)
		}
		fmt.Fprintf(w, "%s\t%.3f\t%.3f\t%.3f\t%.3f\t%s\n", s.name, sum.Mean, sum.StdDev, sum.Min, sum.Max, period)
	}
	return w.Flush()
}

// ensembleFor runs cfg over the configured number of seeds, starting at
// the config seed.
func ensembleFor(ctx context.Context, cfg *config.Config) ([]*driver.Result, error) {
	if runs < 1 {
		return nil, fmt.Errorf("--runs must be at least 1, got %d", runs)
	}
	build := func(s int64) (*driver.Runner, error) {
		c := cfg.Clone()
		c.Seed = s
		r, err := newRunner(c, idle)
		if err != nil {
			return nil, err
		}
		for _, m := range metrics.Standard() {
			r.AddMetric(m)
		}
		return r, nil
	}
	e := driver.NewEnsemble(build, runs, cfg.Seed)
	e.Workers = workers
	return e.Run(ctx, driver.Config{Dt: cfg.Dt, Ticks: cfg.Ticks})
}

func runEnsemble(cmd *cobra.Command, args []string) error {
	cfg, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("running %s over %d seeds from %d...\n", name, runs, cfg.Seed)
	start := time.Now()
	results, err := ensembleFor(ctx, cfg)
	if err != nil {
		return err
	}
	fmt.Printf("completed in %v\n\n", time.Since(start))

	names := make([]string, 0)
	for k := range results[0].Metrics {
		names = append(names, k)
	}
	sort.Strings(names)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "METRIC\tMEAN\tSTDDEV\tMIN\tMAX")
	for _, n := range names {
		sum := analysis.Summarize(driver.MetricValues(results, n))
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\t%.4f\n", n, sum.Mean, sum.StdDev, sum.Min, sum.Max)
	}
	return w.Flush()
}

func runSweep(cmd *cobra.Command, args []string) error {
	base, name, err := resolveConfig(cmd)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(axes))
	ranges := make([][]float64, 0, len(axes))
	for _, a := range axes {
		n, values, err := optim.ParseAxis(a)
		if err != nil {
			return err
		}
		names = append(names, n)
		ranges = append(ranges, values)
	}

	objective := func(ctx context.Context, params map[string]float64) (float64, error) {
		cfg, err := base.With(params)
		if err != nil {
			return 0, err
		}
		if _, err := cfg.World(); err != nil {
			return 0, err
		}
		results, err := ensembleFor(ctx, cfg)
		if err != nil {
			return 0, err
		}
		values := driver.MetricValues(results, metricName)
		if len(values) == 0 {
			return 0, fmt.Errorf("unknown metric: %s", metricName)
		}
		return analysis.Summarize(values).Mean, nil
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fmt.Printf("sweeping %s over %v, %d seeds per point...\n\n", name, names, runs)
	points, best, err := optim.NewGridSearch(names, ranges).Search(ctx, objective, maximize)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, strings.ToUpper(strings.Join(names, "\t"))+"\t"+strings.ToUpper(metricName))
	for i, p := range points {
		cols := make([]string, 0, len(names)+1)
		for _, n := range names {
			cols = append(cols, strconv.FormatFloat(p.Params[n], 'g', -1, 64))
		}
		mark := ""
		if i == best {
			mark = "  *"
		}
		fmt.Fprintf(w, "%s\t%.4f%s\n", strings.Join(cols, "\t"), p.Value, mark)
	}
	return w.Flush()
}
