package main

import (
	"context"
	"fmt"
	"math"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/gearset/internal/config"
	"github.com/san-kum/gearset/internal/export"
	"github.com/san-kum/gearset/internal/gearset"
	"github.com/san-kum/gearset/internal/geometry"
	"github.com/san-kum/gearset/internal/search"
	"github.com/san-kum/gearset/internal/storage"
	"github.com/san-kum/gearset/internal/viz"
	"github.com/san-kum/gearset/internal/watch"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	settingsFile string
	settings     *config.Settings
	logger       = zap.NewNop()

	configFile string
	preset     string
	saveName   string
	save       bool

	module        float64
	pressureAngle float64
	helixAngle    float64
	doubleHelix   bool
	height        float64
	clearance     float64
	backlash      float64
	solveFor      string
	sunTeeth      int
	planetTeeth   int
	ringTeeth     int
	sunAngle      float64
	ringAngle     float64
	planetCount   int

	outFile   string
	svgSize   int
	svgHidden bool
	svgTop    bool

	sweepSteps int

	searchOpts = search.DefaultOptions()

	frameRate int
	theme     string
)

func main() {
	v := config.NewViper()

	rootCmd := &cobra.Command{
		Use:           "gearset",
		Short:         "planetary gear train solver and layout tool",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			s, err := config.LoadSettings(v, settingsFile)
			if err != nil {
				return fmt.Errorf("settings: %w", err)
			}
			settings = s
			logger, err = newLogger(s)
			return err
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = logger.Sync()
		},
	}

	rootCmd.PersistentFlags().String("data", ".gearset", "data directory")
	rootCmd.PersistentFlags().Bool("verbose", false, "debug logging")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level")
	rootCmd.PersistentFlags().StringVar(&settingsFile, "settings", "", "settings file (yaml, toml or json)")
	for key, name := range map[string]string{"data": "data", "verbose": "verbose", "log_level": "log-level"} {
		if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(name)); err != nil {
			panic(err)
		}
	}

	solveCmd := &cobra.Command{
		Use:   "solve",
		Short: "solve the dependent tooth count",
		RunE:  runSolve,
	}
	addTrainFlags(solveCmd)

	layoutCmd := &cobra.Command{
		Use:   "layout",
		Short: "solve and place the planets",
		RunE:  runLayout,
	}
	addTrainFlags(layoutCmd)
	layoutCmd.Flags().BoolVar(&save, "save", false, "save the layout to the data directory")
	layoutCmd.Flags().StringVar(&saveName, "name", "layout", "name for a saved layout")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list saved layouts",
		RunE:  listLayouts,
	}

	showCmd := &cobra.Command{
		Use:   "show [layout_id]",
		Short: "show a saved layout",
		Args:  cobra.ExactArgs(1),
		RunE:  showLayout,
	}

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [layout_id]",
		Short: "render a saved layout as SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgSize, "size", export.DefaultSVGOptions().Size, "image size in pixels")
	exportSVGCmd.Flags().BoolVar(&svgHidden, "hidden", false, "draw hidden planets")
	exportSVGCmd.Flags().BoolVar(&svgTop, "top-face", export.DefaultSVGOptions().TopFace, "outline the twisted top face of helical gears")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [layout_id]",
		Short: "export layout poses to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [layout_id]",
		Short: "export layout data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return storage.New(settings.DataDir).ExportJSON(os.Stdout, args[0])
		},
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "plot the first planet while the sun turns one revolution",
		RunE:  runSweep,
	}
	addTrainFlags(sweepCmd)
	sweepCmd.Flags().IntVar(&sweepSteps, "steps", 72, "samples per revolution")

	searchCmd := &cobra.Command{
		Use:   "search",
		Short: "search tooth counts for even planet spacing",
		RunE:  runSearch,
	}
	searchCmd.Flags().IntVar(&searchOpts.RingMin, "ring-min", searchOpts.RingMin, "smallest ring tooth count")
	searchCmd.Flags().IntVar(&searchOpts.RingMax, "ring-max", searchOpts.RingMax, "largest ring tooth count")
	searchCmd.Flags().IntVar(&searchOpts.PlanetCount, "planets", searchOpts.PlanetCount, "planet count")
	searchCmd.Flags().IntVar(&searchOpts.MinTeeth, "min-teeth", searchOpts.MinTeeth, "smallest sun or planet tooth count")
	searchCmd.Flags().BoolVar(&searchOpts.EvenOnly, "even", false, "only evenly spaced combinations")
	searchCmd.Flags().IntVar(&searchOpts.Workers, "workers", 0, "parallel workers (default GOMAXPROCS)")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "interactive layout view",
		RunE: func(cmd *cobra.Command, args []string) error {
			t, err := buildTrain(cmd)
			if err != nil {
				return err
			}
			// diagnostics are shown in the view; the terminal belongs to it
			sched := gearset.NewScheduler(gearset.WithFactory(geometry.OutlineFactory{}))
			return viz.Run(sched, t, frameRate, theme)
		},
	}
	addTrainFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().StringVar(&theme, "theme", viz.ThemeBrass.Name, "colour theme: brass, blueprint or retro")

	watchCmd := &cobra.Command{
		Use:   "watch [train.yaml]",
		Short: "recompute whenever a train file changes",
		Args:  cobra.ExactArgs(1),
		RunE:  runWatch,
	}

	presetsCmd := &cobra.Command{
		Use:   "presets",
		Short: "list available train presets",
		RunE: func(cmd *cobra.Command, args []string) error {
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "NAME\tSOLVE\tSUN\tPLANET\tRING\tPLANETS")
			for _, name := range config.ListPresets() {
				p := config.GetPreset(name)
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\t%d\n",
					name, p.SolveFor, p.SunTeeth, p.PlanetTeeth, p.RingTeeth, p.PlanetCount)
			}
			return w.Flush()
		},
	}

	rootCmd.AddCommand(solveCmd, layoutCmd, listCmd, showCmd, exportSVGCmd, exportCSVCmd, exportJSONCmd,
		sweepCmd, searchCmd, liveCmd, watchCmd, presetsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newLogger(s *config.Settings) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.Encoding = "console"
	cfg.DisableStacktrace = true
	level := s.LogLevel
	if s.Verbose {
		level = "debug"
	}
	lvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, fmt.Errorf("log level: %w", err)
	}
	cfg.Level = lvl
	return cfg.Build()
}

func newScheduler() *gearset.Scheduler {
	return gearset.NewScheduler(
		gearset.WithFactory(geometry.OutlineFactory{}),
		gearset.WithLogger(logger),
	)
}

func addTrainFlags(cmd *cobra.Command) {
	d := config.DefaultConfig()
	cmd.Flags().StringVar(&configFile, "config", "", "train file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", "", "use preset train")
	cmd.Flags().Float64Var(&module, "module", d.Module, "gear module")
	cmd.Flags().Float64Var(&pressureAngle, "pressure-angle", d.PressureAngle, "pressure angle in degrees")
	cmd.Flags().Float64Var(&helixAngle, "helix-angle", d.HelixAngle, "helix angle in degrees")
	cmd.Flags().BoolVar(&doubleHelix, "double-helix", d.DoubleHelix, "double helical (herringbone) gears")
	cmd.Flags().Float64Var(&height, "height", d.Height, "gear height")
	cmd.Flags().Float64Var(&clearance, "clearance", d.Clearance, "root clearance in modules")
	cmd.Flags().Float64Var(&backlash, "backlash", d.Backlash, "backlash")
	cmd.Flags().StringVar(&solveFor, "solve-for", d.SolveFor, "dependent gear: sun, planet or ring")
	cmd.Flags().IntVar(&sunTeeth, "sun", d.SunTeeth, "sun teeth")
	cmd.Flags().IntVar(&planetTeeth, "planet", d.PlanetTeeth, "planet teeth")
	cmd.Flags().IntVar(&ringTeeth, "ring", d.RingTeeth, "ring teeth")
	cmd.Flags().Float64Var(&sunAngle, "sun-angle", d.SunAngle, "sun angle in degrees")
	cmd.Flags().Float64Var(&ringAngle, "ring-angle", d.RingAngle, "ring angle in degrees")
	cmd.Flags().IntVarP(&planetCount, "planets", "n", d.PlanetCount, "planet count")
}

// buildTrain starts from a preset or the defaults, applies a train file on
// top, and finally any flag set on the command line.
func buildTrain(cmd *cobra.Command) (*gearset.Train, error) {
	cfg := config.DefaultConfig()
	if preset != "" {
		cfg = config.GetPreset(preset)
		if cfg == nil {
			return nil, fmt.Errorf("unknown preset: %s (available: %v)", preset, config.ListPresets())
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
	if flags.Changed("module") {
		cfg.Module = module
	}
	if flags.Changed("pressure-angle") {
		cfg.PressureAngle = pressureAngle
	}
	if flags.Changed("helix-angle") {
		cfg.HelixAngle = helixAngle
	}
	if flags.Changed("double-helix") {
		cfg.DoubleHelix = doubleHelix
	}
	if flags.Changed("height") {
		cfg.Height = height
	}
	if flags.Changed("clearance") {
		cfg.Clearance = clearance
	}
	if flags.Changed("backlash") {
		cfg.Backlash = backlash
	}
	if flags.Changed("solve-for") {
		cfg.SolveFor = solveFor
	}
	if flags.Changed("sun") {
		cfg.SunTeeth = sunTeeth
	}
	if flags.Changed("planet") {
		cfg.PlanetTeeth = planetTeeth
	}
	if flags.Changed("ring") {
		cfg.RingTeeth = ringTeeth
	}
	if flags.Changed("sun-angle") {
		cfg.SunAngle = sunAngle
	}
	if flags.Changed("ring-angle") {
		cfg.RingAngle = ringAngle
	}
	if flags.Changed("planets") {
		cfg.PlanetCount = planetCount
	}

	logger.Debug("train", zap.Any("config", cfg))
	return cfg.Train()
}

func runSolve(cmd *cobra.Command, args []string) error {
	t, err := buildTrain(cmd)
	if err != nil {
		return err
	}
	if err := t.Validate(); err != nil {
		return err
	}
	if err := gearset.Solve(t); err != nil {
		return err
	}
	fmt.Printf("solved %s\n", t.SolveFor)
	fmt.Printf("sun: %d  planet: %d  ring: %d\n", t.SunTeeth, t.PlanetTeeth, t.RingTeeth)
	fmt.Printf("pitch diameters: %.3f / %.3f / %.3f\n",
		t.SunPitchDiameter, t.PlanetPitchDiameter, t.RingPitchDiameter)
	fmt.Printf("carrier ratio (ring fixed): %.4f\n", float64(t.RingTeeth)/float64(t.SunTeeth)+1)
	return nil
}

func runLayout(cmd *cobra.Command, args []string) error {
	t, err := buildTrain(cmd)
	if err != nil {
		return err
	}
	layout, err := newScheduler().Execute(t)
	if err != nil {
		return err
	}

	printLayout(layout)

	if save {
		st := storage.New(settings.DataDir)
		if err := st.Init(); err != nil {
			return err
		}
		id, err := st.Save(saveName, layout)
		if err != nil {
			return err
		}
		fmt.Printf("\nlayout id: %s\n", id)
	}
	return nil
}

func printLayout(layout *gearset.Layout) {
	tr := layout.Triple
	fmt.Printf("teeth: sun %d  planet %d  ring %d\n", tr.Sun, tr.Planet, tr.Ring)
	fmt.Printf("center distance: %.4f\n", layout.Phase.CenterDistance)
	fmt.Printf("mesh phase: theta0 %.4f  theta %.4f\n\n", layout.Phase.Theta0, layout.Phase.Theta)

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "GEAR\tX\tY\tROTATION")
	for _, p := range append([]gearset.Pose{layout.Sun, layout.Ring}, layout.VisiblePlanets()...) {
		name := p.Role.String()
		if p.Role == gearset.RolePlanet {
			name = fmt.Sprintf("planet %d", p.Index)
		}
		fmt.Fprintf(w, "%s\t%.4f\t%.4f\t%.4f\n", name, p.Position.X, p.Position.Y, p.Rotation)
	}
	w.Flush()

	for _, d := range layout.Diagnostics {
		fmt.Printf("warning: %s\n", d.Message)
	}
}

func listLayouts(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	layouts, err := st.List()
	if err != nil {
		return err
	}

	if len(layouts) == 0 {
		fmt.Println("no layouts found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTIME\tSOLVE\tSUN\tPLANET\tRING\tPLANETS")
	for _, m := range layouts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			m.ID,
			m.Timestamp.Format("2006-01-02 15:04:05"),
			m.SolveFor,
			m.SunTeeth,
			m.PlanetTeeth,
			m.RingTeeth,
			m.PlanetCount,
		)
	}
	return w.Flush()
}

// loadLayout recomputes a saved layout from its train file.
func loadLayout(id string) (*gearset.Layout, error) {
	st := storage.New(settings.DataDir)
	cfg, err := st.LoadTrain(id)
	if err != nil {
		return nil, err
	}
	t, err := cfg.Train()
	if err != nil {
		return nil, err
	}
	return newScheduler().Execute(t)
}

func showLayout(cmd *cobra.Command, args []string) error {
	st := storage.New(settings.DataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	fmt.Printf("layout: %s\n", meta.ID)
	fmt.Printf("saved: %s\n", meta.Timestamp.Format("2006-01-02 15:04:05"))

	layout, err := loadLayout(args[0])
	if err != nil {
		return err
	}
	printLayout(layout)
	return nil
}

func exportSVG(cmd *cobra.Command, args []string) error {
	layout, err := loadLayout(args[0])
	if err != nil {
		return err
	}

	opts := export.DefaultSVGOptions()
	opts.Size = svgSize
	opts.Hidden = svgHidden
	opts.TopFace = svgTop
	svg, err := export.LayoutToSVG(layout, opts)
	if err != nil {
		return err
	}

	if outFile == "" {
		_, err = fmt.Print(svg)
		return err
	}
	if err := os.WriteFile(outFile, []byte(svg), 0644); err != nil {
		return err
	}
	fmt.Printf("wrote %s\n", outFile)
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	records, err := storage.New(settings.DataDir).LoadPoses(args[0])
	if err != nil {
		return err
	}
	return storage.WritePosesCSV(os.Stdout, records)
}

func runSweep(cmd *cobra.Command, args []string) error {
	if sweepSteps < 2 {
		return fmt.Errorf("%w: steps must be at least 2", gearset.ErrInvalidParameter)
	}
	t, err := buildTrain(cmd)
	if err != nil {
		return err
	}
	if t.PlanetCount < 1 {
		return fmt.Errorf("%w: sweep needs at least one planet", gearset.ErrInvalidParameter)
	}

	sched := newScheduler()
	start := t.SunAngle
	orbit := make([]float64, 0, sweepSteps+1)
	spin := make([]float64, 0, sweepSteps+1)
	for i := 0; i <= sweepSteps; i++ {
		t.SunAngle = start + 360*float64(i)/float64(sweepSteps)
		layout, err := sched.Execute(t)
		if err != nil {
			return err
		}
		orbit = append(orbit, math.Mod(t.Planets[0].Angle, 360))
		spin = append(spin, math.Mod(layout.Planets[0].Rotation, 360))
	}

	fmt.Println(asciigraph.Plot(orbit,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("planet 0 orbit angle vs sun angle"),
	))
	fmt.Println()
	fmt.Println(asciigraph.Plot(spin,
		asciigraph.Height(10),
		asciigraph.Width(80),
		asciigraph.Caption("planet 0 rotation vs sun angle"),
	))
	return nil
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	results, err := search.Run(ctx, searchOpts)
	if err != nil {
		return err
	}
	if len(results) == 0 {
		fmt.Println("no combinations found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "SUN\tPLANET\tRING\tRATIO\tSLOTS\tMAX DEV\tMEAN DEV")
	for _, c := range results {
		slots := make([]string, len(c.Slots))
		for i, s := range c.Slots {
			slots[i] = fmt.Sprint(s)
		}
		fmt.Fprintf(w, "%d\t%d\t%d\t%.3f\t%s\t%.3f\t%.3f\n",
			c.Triple.Sun, c.Triple.Planet, c.Triple.Ring,
			float64(c.Triple.Ring)/float64(c.Triple.Sun)+1,
			strings.Join(slots, ","),
			c.MaxDeviation, c.MeanDeviation,
		)
	}
	return w.Flush()
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	w, err := watch.New(args[0], newScheduler(), func(layout *gearset.Layout, err error) {
		if err != nil {
			fmt.Printf("error: %v\n", err)
			return
		}
		fmt.Println()
		printLayout(layout)
	}, watch.WithLogger(logger))
	if err != nil {
		return err
	}
	fmt.Printf("watching %s (ctrl-c to stop)\n", args[0])
	return w.Run(ctx)
}
