package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/san-kum/dispsim/internal/analysis"
	"github.com/san-kum/dispsim/internal/automation"
	"github.com/san-kum/dispsim/internal/checkpoint"
	"github.com/san-kum/dispsim/internal/config"
	"github.com/san-kum/dispsim/internal/experiment"
	"github.com/san-kum/dispsim/internal/export"
	"github.com/san-kum/dispsim/internal/optim"
	"github.com/san-kum/dispsim/internal/sim"
	"github.com/san-kum/dispsim/internal/storage"
	"github.com/san-kum/dispsim/internal/susceptibility"
	"github.com/san-kum/dispsim/internal/viz"
)

var (
	dataDir     string
	verbose     bool
	configFile  string
	steps       int
	dt          float64
	seed        int64
	ensemble    int
	showPlot    bool
	ckptDir     string
	snapEvery   int
	resumeDir   string
	resumeFrom  string
	plotWidth   int
	plotHeight  int
	withSeries  bool
	omega0      float64
	gamma       float64
	dtMin       float64
	dtMax       float64
	sweepN      int
	sweepSteps  int
	sweepPoints int
	svgPath     string
	jsonPath    string
	paramName   string
	paramMin    float64
	paramMax    float64
	ranges      []string
	metricName  string
	maximize    bool
)

func main() {
	_ = godotenv.Load(".env")

	defaultData := os.Getenv("DISPSIM_DATA")
	if defaultData == "" {
		defaultData = ".dispsim"
	}

	rootCmd := &cobra.Command{
		Use:           "dispsim",
		Short:         "dispersive material polarization lab",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
		},
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", defaultData, "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run [family/preset]",
		Short: "run a material simulation",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSimulation,
	}
	runCmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	runCmd.Flags().IntVar(&steps, "steps", 0, "number of steps")
	runCmd.Flags().Float64Var(&dt, "dt", 0, "timestep")
	runCmd.Flags().Int64Var(&seed, "seed", 0, "noise seed")
	runCmd.Flags().IntVar(&ensemble, "ensemble", 0, "run N seeded copies and store their mean")
	runCmd.Flags().BoolVar(&showPlot, "plot", false, "plot P(t) after the run")
	runCmd.Flags().StringVar(&ckptDir, "checkpoint", "", "write parameter records and state snapshots to this directory")
	runCmd.Flags().IntVar(&snapEvery, "snapshot-every", 0, "snapshot states every N steps (0: only at the end)")
	runCmd.Flags().StringVar(&resumeDir, "resume", "", "continue from a state snapshot in this checkpoint directory")
	runCmd.Flags().StringVar(&resumeFrom, "resume-from", "final", "snapshot label to resume from (final or latest)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot probe series of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}

	phaseCmd := &cobra.Command{
		Use:   "phase [run_id]",
		Short: "phase portrait of P against dP/dt",
		Args:  cobra.ExactArgs(1),
		RunE:  phasePlot,
	}

	analyzeCmd := &cobra.Command{
		Use:     "analyze [run_id]",
		Aliases: []string{"spectrum"},
		Short:   "spectrum and growth rate of a run",
		Args:    cobra.ExactArgs(1),
		RunE:    analyzeRun,
	}

	for _, c := range []*cobra.Command{runCmd, plotCmd, phaseCmd, analyzeCmd} {
		c.Flags().IntVar(&plotWidth, "width", 80, "plot width")
		c.Flags().IntVar(&plotHeight, "height", 10, "plot height")
	}

	exportCmd := &cobra.Command{
		Use:   "export [run_id]",
		Short: "export run metadata as JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportRun,
	}
	exportCmd.Flags().BoolVar(&withSeries, "series", false, "include the probe samples")
	exportCmd.Flags().StringVar(&svgPath, "svg", "", "write a W/P plot as SVG to this path")
	exportCmd.Flags().StringVar(&jsonPath, "json", "", "write columnar JSON to this path")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a scripted sequence of runs",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [family/preset]",
		Short: "sweep one parameter and summarize the response",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runSweep,
	}
	sweepCmd.Flags().StringVar(&paramName, "param", "gamma", "parameter name (omega0, gamma, noise_amp, alpha, dt; @i selects a term)")
	sweepCmd.Flags().Float64Var(&paramMin, "min", 0.01, "first value")
	sweepCmd.Flags().Float64Var(&paramMax, "max", 0.5, "last value")
	sweepCmd.Flags().IntVar(&sweepPoints, "points", 8, "number of values")
	sweepCmd.Flags().IntVar(&steps, "steps", 0, "number of steps")

	tuneCmd := &cobra.Command{
		Use:   "tune [family/preset]",
		Short: "grid-search material parameters against a metric",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runTune,
	}
	tuneCmd.Flags().StringArrayVar(&ranges, "range", nil, "name=lo:hi:n, repeatable")
	tuneCmd.Flags().StringVar(&metricName, "metric", "peak_polarization", "metric to optimize")
	tuneCmd.Flags().BoolVar(&maximize, "maximize", false, "maximize instead of minimize")
	tuneCmd.Flags().IntVar(&steps, "steps", 0, "number of steps")

	stabilityCmd := &cobra.Command{
		Use:   "stability",
		Short: "sweep dt against the Lorentzian stability advisory",
		RunE:  stabilitySweep,
	}
	stabilityCmd.Flags().Float64Var(&omega0, "omega0", 1, "resonance frequency")
	stabilityCmd.Flags().Float64Var(&gamma, "gamma", 0.05, "damping rate")
	stabilityCmd.Flags().Float64Var(&dtMin, "dt-min", 0.01, "smallest timestep")
	stabilityCmd.Flags().Float64Var(&dtMax, "dt-max", 0.5, "largest timestep")
	stabilityCmd.Flags().IntVar(&sweepN, "points", 12, "number of timesteps")
	stabilityCmd.Flags().IntVar(&sweepSteps, "steps", 2000, "steps per timestep")

	paramsCmd := &cobra.Command{
		Use:   "params [family/preset]",
		Short: "show the parameter records of a material",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showParams,
	}
	paramsCmd.Flags().StringVar(&ckptDir, "checkpoint", "", "read records from a checkpoint directory")

	presetsCmd := &cobra.Command{
		Use:   "presets [family]",
		Short: "list available presets",
		Args:  cobra.MaximumNArgs(1),
		RunE:  listPresets,
	}

	benchCmd := &cobra.Command{
		Use:   "bench [family/preset]",
		Short: "measure step throughput",
		Args:  cobra.ExactArgs(1),
		RunE:  benchPreset,
	}

	rootCmd.AddCommand(runCmd, listCmd, plotCmd, phaseCmd, analyzeCmd, exportCmd, stabilityCmd, paramsCmd, presetsCmd, benchCmd, scenarioCmd, sweepCmd, tuneCmd)

	if err := rootCmd.Execute(); err != nil {
		slog.Error("command failed", "err", err)
		os.Exit(1)
	}
}

// loadConfig resolves a preset or config file, then applies flag overrides.
func loadConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.DefaultConfig()
	if len(args) > 0 {
		cfg = config.Lookup(args[0])
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (families: %s)", args[0], strings.Join(config.Families(), ", "))
		}
	}
	if configFile != "" {
		loaded, err := config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Lookup("steps") != nil && flags.Changed("steps") {
		cfg.Steps = steps
	}
	if flags.Lookup("dt") != nil && flags.Changed("dt") {
		cfg.Dt = dt
	}
	if flags.Lookup("seed") != nil && flags.Changed("seed") {
		cfg.Seed = seed
	}
	return cfg, nil
}

// snapshotter saves every term's state to a checkpoint store, along with
// the step the snapshot was taken after.
type snapshotter struct {
	store *checkpoint.Store
	chunk *sim.Chunk
	every int
	err   error
}

func (s *snapshotter) save(label string, step int) error {
	for i, st := range s.chunk.States {
		buf, err := st.MarshalBinary()
		if err != nil {
			return err
		}
		if err := s.store.SaveState(label, i, buf); err != nil {
			return err
		}
	}
	return s.store.SaveStep(label, step)
}

func (s *snapshotter) OnStep(step int, _ sim.Sample) {
	if s.err != nil || s.every <= 0 || (step+1)%s.every != 0 {
		return
	}
	s.err = s.save("latest", step)
}

// resume restores exp from the snapshot named by --resume-from. ckpt is
// reused when it is open on the same directory, since badger holds a
// directory lock.
func resume(exp *experiment.Experiment, ckpt *checkpoint.Store) error {
	if _, err := os.Stat(resumeDir); err != nil {
		return err
	}
	src := ckpt
	if src == nil || filepath.Clean(resumeDir) != filepath.Clean(ckptDir) {
		store, err := checkpoint.Open(checkpoint.Config{Path: resumeDir, Logger: slog.Default()})
		if err != nil {
			return err
		}
		defer store.Close()
		src = store
	}
	return exp.Resume(src, resumeFrom)
}

func runSimulation(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	exp, err := experiment.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer exp.Close()

	var (
		ckpt   *checkpoint.Store
		snap   *snapshotter
		params susceptibility.ParamWriter
	)
	if ckptDir != "" {
		ckpt, err = checkpoint.Open(checkpoint.Config{Path: ckptDir, SyncWrites: true, Logger: slog.Default()})
		if err != nil {
			return err
		}
		defer ckpt.Close()
	}
	if resumeDir != "" {
		if err := resume(exp, ckpt); err != nil {
			return fmt.Errorf("resume: %w", err)
		}
	}
	if ckpt != nil {
		// Records of an earlier run in the same directory are replaced.
		if err := ckpt.ResetParams(); err != nil {
			return err
		}
		params = ckpt
		if ensemble == 0 {
			snap = &snapshotter{store: ckpt, chunk: exp.Chunk(), every: snapEvery}
			exp.Simulator().AddObserver(snap)
		} else {
			start := 0
			if err := exp.Chunk().Material.DumpParams(ckpt, &start); err != nil {
				return err
			}
		}
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("running %s", cfg.Name)))
	start := time.Now()

	var result *sim.Result
	if ensemble > 0 {
		ens, err := exp.RunEnsemble(ctx, ensemble)
		if err != nil {
			return err
		}
		result = &sim.Result{Samples: ens.Mean, Metrics: ens.Members[0].Metrics, StepsTaken: len(ens.Mean)}
		for _, m := range ens.Members {
			result.Advisories = append(result.Advisories, m.Advisories...)
		}
	} else {
		result, err = exp.Run(ctx, params)
		var simErr *sim.SimulationError
		if errors.As(err, &simErr) && errors.Is(err, sim.ErrDiverged) && len(result.Samples) > 0 {
			fmt.Println(viz.Bad.Render(fmt.Sprintf("diverged at step %d (t=%g)", simErr.Step, simErr.Time)))
		} else if err != nil {
			return err
		}
	}
	elapsed := time.Since(start)

	if snap != nil {
		if snap.err != nil {
			return fmt.Errorf("snapshot: %w", snap.err)
		}
		if result.StepsTaken > 0 {
			if err := snap.save("final", exp.StartStep()+result.StepsTaken-1); err != nil {
				return fmt.Errorf("snapshot: %w", err)
			}
		}
	}

	meta := storage.RunMetadata{
		Name:      cfg.Name,
		Seed:      cfg.Seed,
		Dt:        cfg.Dt,
		Steps:     cfg.Steps,
		Field:     exp.Chunk().Type.String(),
		Materials: exp.MaterialNames(),
	}
	runID, err := st.Save(meta, result)
	if err != nil {
		return err
	}

	fmt.Printf("completed in %v\n", elapsed)
	fmt.Printf("run id: %s\n", runID)
	fmt.Printf("steps: %d\n", result.StepsTaken)
	for _, a := range result.Advisories {
		fmt.Println(viz.Warning.Render("advisory: " + a))
	}
	fmt.Println("\nmetrics:")
	fmt.Print(viz.MetricsTable(result.Metrics))

	if showPlot {
		fmt.Println()
		fmt.Println(viz.PlotSeries(result.Polarization(), plotWidth, plotHeight, "P(t) at probe"))
	}
	return nil
}

func listRuns(cmd *cobra.Command, args []string) error {
	runs, err := storage.New(dataDir).List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tTIME\tSTEPS\tDT\tFIELD\tMATERIALS")
	for _, run := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%.4g\t%s\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.StepsTaken,
			run.Dt,
			run.Field,
			strings.Join(run.Materials, "+"),
		)
	}
	return w.Flush()
}

func loadRun(runID string) (*storage.RunMetadata, []sim.Sample, error) {
	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return nil, nil, err
	}
	samples, err := st.LoadSeries(runID)
	if err != nil {
		return nil, nil, err
	}
	if len(samples) == 0 {
		return nil, nil, fmt.Errorf("run %s has no samples", runID)
	}
	return meta, samples, nil
}

func plotRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	res := &sim.Result{Samples: samples}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("name: %s\n", meta.Name)
	fmt.Printf("samples: %d\n\n", len(samples))

	series := []struct {
		caption string
		f       func(sim.Sample) float64
	}{
		{"drive W", func(s sim.Sample) float64 { return s.W }},
		{"polarization P", func(s sim.Sample) float64 { return s.P }},
		{"W - P", func(s sim.Sample) float64 { return s.Corrected }},
	}
	for _, s := range series {
		fmt.Println(viz.PlotSeries(res.Series(s.f), plotWidth, plotHeight, s.caption))
		fmt.Println()
	}
	return nil
}

func phasePlot(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	pts := analysis.PhasePortrait(samples, meta.Dt)
	fmt.Println(viz.Title.Render("P vs dP/dt"))
	fmt.Print(viz.Panel.Render(strings.TrimRight(viz.PhasePlot(pts, plotWidth/2, plotHeight), "\n")))
	fmt.Println()
	return nil
}

func analyzeRun(cmd *cobra.Command, args []string) error {
	meta, samples, err := loadRun(args[0])
	if err != nil {
		return err
	}
	res := &sim.Result{Samples: samples}
	p := res.Polarization()

	spec, err := analysis.PowerSpectrum(p, meta.Dt)
	if err != nil {
		return err
	}
	freq, power := spec.Peak(0)

	fmt.Println(viz.Title.Render("spectrum of P"))
	fmt.Println(viz.SpectrumPlot(spec.Power, plotWidth, plotHeight, "power (dB)"))
	fmt.Println(viz.Separator(plotWidth))

	out := map[string]float64{
		"peak_frequency": freq,
		"peak_power":     power,
		"growth_rate":    analysis.GrowthRate(p, meta.Dt, len(p)/4),
	}
	fmt.Print(viz.MetricsTable(out))
	return nil
}

func exportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}

	var samples []sim.Sample
	if withSeries || svgPath != "" || jsonPath != "" {
		if samples, err = st.LoadSeries(args[0]); err != nil {
			return err
		}
	}

	if svgPath != "" {
		if err := os.WriteFile(svgPath, []byte(export.SeriesToSVG(samples, 800, 400)), 0644); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", svgPath)
	}
	if jsonPath != "" {
		if err := export.ExportJSON(jsonPath, meta, samples); err != nil {
			return err
		}
		fmt.Printf("wrote %s\n", jsonPath)
	}
	if svgPath != "" || jsonPath != "" {
		return nil
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if !withSeries {
		return enc.Encode(meta)
	}
	return enc.Encode(struct {
		*storage.RunMetadata
		Samples []sim.Sample `json:"samples"`
	}{meta, samples})
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(sc.Name))
	if sc.Description != "" {
		fmt.Println(viz.Subtle.Render(sc.Description))
	}
	results, err := automation.RunScenario(cmd.Context(), sc, st, slog.Default())
	for _, r := range results {
		fmt.Printf("  %s  %s  peak=%.4g\n", r.RunID, r.Name, r.Result.Metrics["peak_polarization"])
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	results, err := automation.RunSweep(cmd.Context(), &automation.ParameterSweep{
		Base:      cfg,
		ParamName: paramName,
		ParamMin:  paramMin,
		ParamMax:  paramMax,
		NumSteps:  sweepPoints,
	}, slog.Default())
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("%s: sweep %s", cfg.Name, paramName)))
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tPEAK\tENERGY\tGROWTH\tPEAK_FREQ\tSTATUS\n", strings.ToUpper(paramName))
	for _, r := range results {
		status := viz.Good.Render("ok")
		if r.Diverged {
			status = viz.Bad.Render("diverged")
		}
		fmt.Fprintf(w, "%.4g\t%.4g\t%.4g\t%.4g\t%.4g\t%s\n", r.ParamValue, r.Peak, r.Energy, r.Growth, r.PeakFreq, status)
	}
	return w.Flush()
}

func runTune(cmd *cobra.Command, args []string) error {
	if len(ranges) == 0 {
		return errors.New("at least one --range is required")
	}
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}

	names := make([]string, 0, len(ranges))
	values := make([][]float64, 0, len(ranges))
	for _, r := range ranges {
		name, vals, err := optim.ParseRange(r)
		if err != nil {
			return err
		}
		names = append(names, name)
		values = append(values, vals)
	}

	g := optim.NewGridSearch(names, values)
	g.SetLogger(slog.Default())
	if maximize {
		g.Maximize()
	}
	best, trials, err := g.Search(cmd.Context(), cfg, metricName)
	if err != nil {
		return err
	}

	fmt.Printf("%d of %d grid points evaluated\n", len(trials), gridSize(values))
	fmt.Println(viz.Title.Render(fmt.Sprintf("best %s = %.6g", metricName, best.Value)))
	fmt.Print(viz.MetricsTable(best.Params))
	return nil
}

func gridSize(values [][]float64) int {
	n := 1
	for _, v := range values {
		n *= len(v)
	}
	return n
}

func stabilitySweep(cmd *cobra.Command, args []string) error {
	points, err := analysis.StabilitySweep(cmd.Context(), omega0, gamma, dtMin, dtMax, sweepN, sweepSteps)
	if err != nil {
		return err
	}

	fmt.Println(viz.Title.Render(fmt.Sprintf("omega0=%g gamma=%g", omega0, gamma)))
	fmt.Printf("max stable dt (undamped): %.4g\n\n", susceptibility.MaxStableDt(omega0))

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DT\tADVISORY\tRATE\tPEAK\tOBSERVED")
	for _, p := range points {
		advisory := viz.Good.Render("stable")
		if p.Predicted {
			advisory = viz.Warning.Render("unstable")
		}
		observed := viz.Good.Render("bounded")
		if p.Diverged {
			observed = viz.Bad.Render("diverged")
		}
		fmt.Fprintf(w, "%.4g\t%s\t%.4g\t%.4g\t%s\n", p.Dt, advisory, p.Rate, p.Peak, observed)
	}
	return w.Flush()
}

func showParams(cmd *cobra.Command, args []string) error {
	var data []float64
	if ckptDir != "" {
		store, err := checkpoint.Open(checkpoint.DefaultConfig(ckptDir))
		if err != nil {
			return err
		}
		defer store.Close()
		if data, err = store.ReadAll(); err != nil {
			return err
		}
	} else {
		cfg, err := loadConfig(cmd, args)
		if err != nil {
			return err
		}
		exp, err := experiment.New(cfg, slog.Default())
		if err != nil {
			return err
		}
		defer exp.Close()

		ds := checkpoint.NewDataset()
		start := 0
		if err := exp.Chunk().Material.DumpParams(ds, &start); err != nil {
			return err
		}
		if data, err = ds.ReadAll(); err != nil {
			return err
		}
	}

	recs, err := susceptibility.DecodeParams(data)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tID\tOMEGA0\tGAMMA\tNO_DC\tNOISE\tBIAS\tALPHA")
	for _, r := range recs {
		fmt.Fprintf(w, "%s\t%d\t%g\t%g\t%t\t%g\t%v\t%g\n",
			r.Kind, r.ID, r.Omega0, r.Gamma, r.NoOmega0Denominator, r.NoiseAmp, r.Bias, r.Alpha)
	}
	return w.Flush()
}

func listPresets(cmd *cobra.Command, args []string) error {
	families := config.Families()
	if len(args) > 0 {
		families = args
	}
	for _, family := range families {
		presets := config.ListPresets(family)
		if len(presets) == 0 {
			fmt.Printf("no presets for family: %s\n", family)
			continue
		}
		fmt.Println(viz.Title.Render(family))
		for _, p := range presets {
			fmt.Printf("  %s/%s\n", family, p)
		}
	}
	return nil
}

func benchPreset(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd, args)
	if err != nil {
		return err
	}
	exp, err := experiment.New(cfg, slog.Default())
	if err != nil {
		return err
	}
	defer exp.Close()

	n := 0
	start := time.Now()
	err = exp.RunWithCallback(cmd.Context(), func(int, sim.Sample) bool {
		n++
		return true
	})
	elapsed := time.Since(start)
	if err != nil && !errors.Is(err, sim.ErrDiverged) {
		return err
	}

	points := exp.Chunk().Volume.OwnedCount() * len(cfg.Materials)
	fmt.Printf("%s: %d steps in %v\n", cfg.Name, n, elapsed)
	fmt.Printf("  %.0f steps/s, %.3g point-updates/s\n",
		float64(n)/elapsed.Seconds(), float64(n*points)/elapsed.Seconds())
	return nil
}
