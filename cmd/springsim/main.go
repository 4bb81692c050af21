package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/guptarohit/asciigraph"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/springsim/internal/analysis"
	"github.com/san-kum/springsim/internal/config"
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/export"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/metrics"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/script"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/storage"
	"github.com/san-kum/springsim/internal/viz"
	"github.com/san-kum/springsim/internal/world"
)

const (
	envDataDir  = "SPRINGSIM_DATA"
	envLogLevel = "SPRINGSIM_LOG_LEVEL"
)

var (
	dataDir    string
	logLevel   string
	configFile string
	preset     string
	integrator string
	frames     int
	substeps   int
	halfLife   float64
	stiffness  float64
	segments   int
	scriptFile string
	// Live view
	theme    string
	watch    bool
	headless bool
	// Run inspection
	ball    int
	axis    string
	outFile string
	runID   string
	width   int
	height  int
	// Sweep
	halfLives []float64

	logger = NewLogger("info", os.Stderr)
)

func main() {
	// A missing .env is fine; it only supplies defaults.
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "springsim",
		Short:        "interactive mass-spring playground",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logger = NewLogger(logLevel, os.Stderr)
			viz.SetTheme(theme)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			// Default to the preset picker when no command given
			return viz.RunApp(viz.WithSnapshotDir(dataDir))
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", getEnv(envDataDir, ".springsim"), "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", getEnv(envLogLevel, "info"), "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&theme, "theme", "cyberpunk", fmt.Sprintf("color theme %v", viz.ThemeNames()))

	runCmd := &cobra.Command{
		Use:   "run [world]",
		Short: "run a world headless and store the result",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	addWorldFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live [world]",
		Short: "run a world in real time with mouse interaction",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runLive,
	}
	addWorldFlags(liveCmd)
	liveCmd.Flags().BoolVar(&watch, "watch", false, "rebuild the world when --config changes")
	liveCmd.Flags().BoolVar(&headless, "headless", false, "print status lines instead of drawing")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot energy and a ball trajectory",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().IntVar(&ball, "ball", -1, "ball index (default: last ball)")

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export a run as json",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "oscillation frequency and phase portrait of a ball",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().IntVar(&ball, "ball", -1, "ball index (default: last ball)")
	analyzeCmd.Flags().StringVar(&axis, "axis", "x", "coordinate to analyze (x or y)")

	snapshotCmd := &cobra.Command{
		Use:   "snapshot [world]",
		Short: "render a world, or the last frame of a run, as svg",
		Args:  cobra.MaximumNArgs(1),
		RunE:  snapshotScene,
	}
	addWorldFlags(snapshotCmd)
	snapshotCmd.Flags().StringVar(&runID, "run", "", "render the last frame of this run")
	snapshotCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	snapshotCmd.Flags().IntVar(&width, "width", 800, "image width")
	snapshotCmd.Flags().IntVar(&height, "height", 600, "image height")

	traceCmd := &cobra.Command{
		Use:   "trace [run_id]",
		Short: "render the path of a ball as svg",
		Args:  cobra.ExactArgs(1),
		RunE:  traceRun,
	}
	traceCmd.Flags().IntVar(&ball, "ball", -1, "ball index (default: last ball)")
	traceCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default: stdout)")
	traceCmd.Flags().IntVar(&width, "width", 800, "image width")
	traceCmd.Flags().IntVar(&height, "height", 600, "image height")

	sweepCmd := &cobra.Command{
		Use:   "sweep [world]",
		Short: "run a world once per damping half-life in parallel",
		Args:  cobra.MaximumNArgs(1),
		RunE:  sweepHalfLife,
	}
	addWorldFlags(sweepCmd)
	sweepCmd.Flags().Float64SliceVar(&halfLives, "half-lives", []float64{0, 0.5, 1, 2}, "half-lives to compare")

	presetsCmd := &cobra.Command{
		Use:   "presets [world]",
		Short: "list presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	initConfigCmd := &cobra.Command{
		Use:   "init-config [path]",
		Short: "write a config file",
		Args:  cobra.ExactArgs(1),
		RunE:  initConfig,
	}
	addWorldFlags(initConfigCmd)

	scriptsCmd := &cobra.Command{
		Use:   "scripts",
		Short: "list built-in interaction scripts",
		RunE:  listScripts,
	}

	rootCmd.AddCommand(runCmd, liveCmd, listCmd, plotCmd, exportCmd, analyzeCmd,
		snapshotCmd, traceCmd, sweepCmd, presetsCmd, initConfigCmd, scriptsCmd)
	return rootCmd
}

func addWorldFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset configuration")
	cmd.Flags().StringVar(&integrator, "integrator", integrators.Default, fmt.Sprintf("integrator %v", integrators.Names()))
	cmd.Flags().IntVar(&frames, "frames", config.DefaultFrames, "frames to run")
	cmd.Flags().IntVar(&substeps, "substeps", config.DefaultSubsteps, "integration steps per frame")
	cmd.Flags().Float64Var(&halfLife, "half-life", physics.DefaultHalfLife, "velocity half-life in seconds (0 disables damping)")
	cmd.Flags().Float64Var(&stiffness, "stiffness", config.DefaultStiffness, "spring stiffness")
	cmd.Flags().IntVar(&segments, "segments", config.DefaultSegments, "chain segments")
	cmd.Flags().StringVar(&scriptFile, "script", "", "interaction script (file or built-in name)")
}

// loadConfig resolves the world configuration. Presets are overridden by
// --config, which is overridden by explicitly set flags.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	return resolveConfig(cmd, args, configFile)
}

// resolveConfig layers the file at path, if any, over the preset and then
// applies the flags. The live view calls it again on every reload.
func resolveConfig(cmd *cobra.Command, args []string, path string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg.World = args[0]
	}

	if preset != "" {
		p := config.GetPreset(cfg.World, preset)
		if p == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets(cfg.World))
		}
		cfg = p
	}

	if path != "" {
		loaded, err := config.LoadOnto(path, cfg)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
		if len(args) > 0 {
			cfg.World = args[0]
		}
	}

	flags := cmd.Flags()
	if flags.Changed("integrator") {
		cfg.Integrator = integrator
	}
	if flags.Changed("frames") {
		cfg.Run.Frames = frames
	}
	if flags.Changed("substeps") {
		cfg.Timing.Substeps = substeps
	}
	if flags.Changed("half-life") {
		cfg.Damping.HalfLife = halfLife
	}
	if flags.Changed("stiffness") {
		cfg.Spring.Stiffness = stiffness
	}
	if flags.Changed("segments") {
		cfg.Chain.Segments = segments
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger.Debugf("config: world=%s integrator=%s substeps=%d dt=%g half_life=%g",
		cfg.World, cfg.Integrator, cfg.Timing.Substeps, cfg.Dt(), cfg.Damping.HalfLife)
	return cfg, nil
}

// scriptedInteractions returns the interactions of --script, or those of cfg
// when no script is given.
func scriptedInteractions(ctx context.Context, cfg *config.Config) ([]sim.Interaction, error) {
	if scriptFile == "" {
		return cfg.Interactions, nil
	}
	src, err := script.Load(scriptFile)
	if err != nil {
		return nil, err
	}
	s, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	env := script.Env{Frames: cfg.Run.Frames}
	for _, b := range s.Balls() {
		env.Balls = append(env.Balls, b.Pos)
	}
	out, err := script.Interactions(ctx, src, env)
	if err != nil {
		return nil, fmt.Errorf("script %s: %w", scriptFile, err)
	}
	logger.Debugf("script %s scheduled %d interactions", scriptFile, len(out))
	return out, nil
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	interactions, err := scriptedInteractions(ctx, cfg)
	if err != nil {
		return err
	}

	driver, err := cfg.NewDriver()
	if err != nil {
		return err
	}
	for _, m := range metrics.All() {
		driver.AddMetric(m)
	}

	var balls, springs int
	driver.View(func(s *physics.Simulation) {
		balls = len(s.Balls())
		springs = len(s.Springs())
	})

	logger.Infof("running %s: %d balls, %d springs, %d frames", cfg.World, balls, springs, cfg.Run.Frames)
	start := time.Now()
	result, err := driver.Run(ctx, cfg.Run.Frames, interactions)
	if err != nil {
		if result == nil {
			return err
		}
		logger.Warnf("run stopped early: %v", err)
	}
	elapsed := time.Since(start)
	for _, e := range result.Errors {
		logger.Errorf("%v", e)
	}

	st := storage.New(dataDir)
	id, err := st.Save(storage.RunMetadata{
		World:      cfg.World,
		Preset:     preset,
		Integrator: cfg.Integrator,
		Dt:         cfg.Dt(),
		Substeps:   cfg.Timing.Substeps,
		Balls:      balls,
		Springs:    springs,
	}, result)
	if err != nil {
		return err
	}
	if err := st.SaveConfig(id, cfg); err != nil {
		return err
	}

	fmt.Printf("run: %s\n", id)
	fmt.Printf("frames: %d (%d steps in %s)\n", len(result.Frames)-1, result.StepsTaken, elapsed.Round(time.Millisecond))
	fmt.Printf("energy drift: %.4g\n", result.EnergyDrift)
	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  %s: %.6g\n", name, result.Metrics[name])
	}
	if len(result.Errors) > 0 {
		return fmt.Errorf("run %s diverged: %w", id, result.Errors[0])
	}
	return nil
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	ctx := cmd.Context()

	interactions, err := scriptedInteractions(ctx, cfg)
	if err != nil {
		return err
	}

	if headless {
		return runHeadless(ctx, cfg, interactions)
	}

	opts := []viz.Option{viz.WithSnapshotDir(dataDir)}
	if scriptFile != "" {
		opts = append(opts, viz.WithScript(interactions))
	}
	if watch {
		if configFile == "" {
			return fmt.Errorf("--watch requires --config")
		}
		w, err := config.Watch(configFile)
		if err != nil {
			return err
		}
		defer w.Close()
		opts = append(opts, viz.WithWatcher(w), viz.WithLoader(func(path string) (*config.Config, error) {
			return resolveConfig(cmd, args, path)
		}))
	}
	return viz.Run(cfg, opts...)
}

// statusEvery is how often, in frames, the headless view prints a line.
const statusEvery = 50

func runHeadless(ctx context.Context, cfg *config.Config, interactions []sim.Interaction) error {
	driver, err := cfg.NewDriver()
	if err != nil {
		return err
	}

	pending := append([]sim.Interaction(nil), interactions...)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Frame < pending[j].Frame })
	applyDue := func(frame int) {
		for len(pending) > 0 && pending[0].Frame <= frame {
			logger.Debugf("frame %d: %s (%g, %g)", frame, pending[0].Action, pending[0].X, pending[0].Y)
			driver.Apply(pending[0])
			pending = pending[1:]
		}
	}
	applyDue(0)

	err = driver.RunRealtime(ctx, cfg.Run.Frames, func(snap sim.Snapshot) bool {
		applyDue(snap.Frame)
		if snap.Frame%statusEvery == 0 {
			fmt.Printf("frame %5d  t=%7.3fs  ke=%10.4g  pe=%10.4g  total=%10.4g\n",
				snap.Frame, snap.Time, snap.Energy.Kinetic, snap.Energy.Potential, snap.Energy.Total())
		}
		for _, b := range snap.Balls {
			if !b.Pos.IsValid() {
				logger.Errorf("frame %d: %v", snap.Frame, dynamo.ErrUnstable)
				return false
			}
		}
		return true
	})
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
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
	fmt.Fprintln(w, "ID\tWORLD\tTIME\tFRAMES\tBALLS\tINTEG\tDRIFT")

	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%s\t%.3g\n",
			run.ID,
			run.World,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Frames,
			run.Balls,
			run.Integrator,
			run.EnergyDrift,
		)
	}

	return w.Flush()
}

// loadRun returns a run's metadata, its frames and the resolved ball index.
func loadRun(id string) (*storage.RunMetadata, []sim.FrameRecord, int, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(id)
	if err != nil {
		return nil, nil, 0, err
	}
	recs, err := st.LoadFrames(id)
	if err != nil {
		return nil, nil, 0, err
	}
	if len(recs) == 0 {
		return nil, nil, 0, fmt.Errorf("run %s has no frames", id)
	}
	n := len(recs[0].Positions)
	idx := ball
	if idx < 0 {
		idx = n - 1
	}
	if idx < 0 || idx >= n {
		return nil, nil, 0, fmt.Errorf("ball %d out of range (run has %d balls)", idx, n)
	}
	return meta, recs, idx, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, recs, idx, err := loadRun(args[0])
	if err != nil {
		return err
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("world: %s\n", meta.World)
	fmt.Printf("samples: %d\n\n", len(recs))

	plots := []struct {
		caption string
		data    []float64
	}{
		{"total energy", analysis.TotalEnergy(recs)},
		{fmt.Sprintf("ball %d x", idx), analysis.Coordinate(recs, idx, analysis.AxisX)},
		{fmt.Sprintf("ball %d y", idx), analysis.Coordinate(recs, idx, analysis.AxisY)},
	}
	for _, p := range plots {
		graph := asciigraph.Plot(p.data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(p.caption),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	recs, err := st.LoadFrames(args[0])
	if err != nil {
		return err
	}

	if outFile == "" {
		return storage.ExportJSON(os.Stdout, *meta, recs)
	}
	f, err := os.Create(outFile)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := storage.ExportJSON(f, *meta, recs); err != nil {
		return err
	}
	fmt.Printf("exported %d frames to %s\n", len(recs), outFile)
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, recs, idx, err := loadRun(args[0])
	if err != nil {
		return err
	}

	ax := analysis.AxisX
	switch strings.ToLower(axis) {
	case "x":
	case "y":
		ax = analysis.AxisY
	default:
		return fmt.Errorf("unknown axis: %s (available: x, y)", axis)
	}

	samples := analysis.Coordinate(recs, idx, ax)
	dt := analysis.FrameInterval(recs)

	fmt.Printf("run: %s (%s, %d frames)\n", meta.ID, meta.World, len(recs))
	fmt.Printf("ball: %d, axis: %s\n", idx, ax)
	freq, err := analysis.DominantFrequency(samples, dt)
	if err != nil {
		fmt.Printf("dominant frequency: n/a (%v)\n", err)
	} else if freq > 0 {
		fmt.Printf("dominant frequency: %.4g Hz (period %.4g s)\n", freq, 1/freq)
	} else {
		fmt.Println("dominant frequency: none (ball at rest)")
	}
	fmt.Println()

	portrait := analysis.PhasePortrait(fmt.Sprintf("ball %d %s", idx, ax), samples, dt)
	fmt.Println(analysis.PhasePortraitToASCII(portrait, 60, 20))
	return nil
}

func snapshotScene(cmd *cobra.Command, args []string) error {
	var (
		cfg *config.Config
		err error
		pos []dynamo.Vec2
	)
	if runID != "" {
		st := storage.New(dataDir)
		if cfg, err = st.LoadConfig(runID); err != nil {
			return err
		}
		recs, err := st.LoadFrames(runID)
		if err != nil {
			return err
		}
		if len(recs) > 0 {
			pos = recs[len(recs)-1].Positions
		}
	} else if cfg, err = loadConfig(cmd, args); err != nil {
		return err
	}

	driver, err := cfg.NewDriver()
	if err != nil {
		return err
	}
	if pos != nil {
		driver.View(func(s *physics.Simulation) {
			for i, b := range s.Balls() {
				if i < len(pos) {
					b.Pos = pos[i]
				}
			}
		})
	}
	return writeOutput(export.SceneToSVG(driver.Snapshot(), width, height))
}

func traceRun(cmd *cobra.Command, args []string) error {
	_, recs, idx, err := loadRun(args[0])
	if err != nil {
		return err
	}
	color := viz.CurrentTheme.Primary
	return writeOutput(export.TrajectoryToSVG(analysis.Trajectory(recs, idx), width, height, string(color)))
}

func writeOutput(s string) error {
	if outFile == "" {
		_, err := fmt.Print(s)
		return err
	}
	if dir := filepath.Dir(outFile); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(outFile, []byte(s), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func sweepHalfLife(cmd *cobra.Command, args []string) error {
	base, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	if len(halfLives) == 0 {
		return fmt.Errorf("no half-lives given")
	}

	jobs := make([]sim.Job, len(halfLives))
	for i, h := range halfLives {
		cfg := *base
		cfg.Damping.HalfLife = h
		jobs[i] = sim.Job{
			Name: fmt.Sprintf("half-life %g", h),
			Build: func() (*sim.Driver, error) {
				d, err := cfg.NewDriver()
				if err != nil {
					return nil, err
				}
				for _, m := range metrics.All() {
					d.AddMetric(m)
				}
				return d, nil
			},
		}
	}

	logger.Infof("sweeping %d half-lives over %d frames", len(jobs), base.Run.Frames)
	results, err := sim.Sweep(cmd.Context(), jobs, base.Run.Frames)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "JOB\tFRAMES\tDRIFT\tMEAN ENERGY\tMAX STRAIN\tERRORS")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.4g\t%.4g\t%.4g\t%d\n",
			r.Name,
			len(r.Result.Frames)-1,
			r.Result.EnergyDrift,
			r.Result.Metrics["energy"],
			r.Result.Metrics["max_strain"],
			len(r.Result.Errors),
		)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	worlds := world.Names()
	if len(args) > 0 {
		worlds = args
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "WORLD\tPRESET\tFRAMES\tSTIFFNESS\tHALF-LIFE")
	for _, name := range worlds {
		presets := config.ListPresets(name)
		if len(presets) == 0 {
			return fmt.Errorf("unknown world: %s (available: %v)", name, world.Names())
		}
		for _, p := range presets {
			cfg := config.GetPreset(name, p)
			fmt.Fprintf(w, "%s\t%s\t%d\t%g\t%g\n", name, p, cfg.Run.Frames, cfg.Spring.Stiffness, cfg.Damping.HalfLife)
		}
	}
	return w.Flush()
}

func initConfig(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, nil)
	if err != nil {
		return err
	}
	if err := config.Save(args[0], cfg); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", args[0])
	return nil
}

func listScripts(cmd *cobra.Command, args []string) error {
	for _, name := range script.Builtins() {
		fmt.Println(name)
	}
	return nil
}
