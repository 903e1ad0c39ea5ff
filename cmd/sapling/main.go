// ABOUTME: CLI entrypoint for sapling, the decision tree construction playback tool.
// ABOUTME: Dispatches to web server, terminal UI, replay, or batch export modes based on flags.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/2389-research/sapling/config"
	"github.com/2389-research/sapling/dataset"
	"github.com/2389-research/sapling/dtree"
	"github.com/2389-research/sapling/render"
	"github.com/2389-research/sapling/store"
	"github.com/2389-research/sapling/trainapi"
	"github.com/2389-research/sapling/tui"
	"github.com/2389-research/sapling/viz"
	"github.com/2389-research/sapling/web"
	tea "github.com/charmbracelet/bubbletea"
)

var version = "dev"

// cliConfig holds everything parsed from the command line.
type cliConfig struct {
	serverMode  bool
	tuiMode     bool
	showVersion bool
	exportDir   string
	replayID    string
	configPath  string

	addr        string
	allowRemote bool
	url         string
	dataDir     string
	interval    time.Duration
	dataset     string
	maxDepth    int
	minSamples  int
	criterion   string

	// set records which flags appeared on the command line so only those
	// override config file and environment values.
	set map[string]bool
}

func main() {
	loadDotEnvAuto()

	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if err := run(cfg, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func parseFlags(args []string) (cliConfig, error) {
	var cfg cliConfig
	fs := flag.NewFlagSet("sapling", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() { printHelp(os.Stderr, version) }

	fs.BoolVar(&cfg.serverMode, "server", false, "Start the web playback server")
	fs.BoolVar(&cfg.tuiMode, "tui", false, "Interactive terminal playback")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")
	fs.StringVar(&cfg.exportDir, "export", "", "Write every step of one training run to this directory")
	fs.StringVar(&cfg.replayID, "replay", "", "Replay an archived run by ID (requires -url)")
	fs.StringVar(&cfg.configPath, "config", "", "YAML config file")

	fs.StringVar(&cfg.addr, "addr", config.DefaultAddr, "Server listen address")
	fs.BoolVar(&cfg.allowRemote, "allow-remote", false, "Permit binding a non-loopback address")
	fs.StringVar(&cfg.url, "url", "", "Base URL of a sapling server to train against")
	fs.StringVar(&cfg.dataDir, "data-dir", "", "Run archive and log directory")
	fs.DurationVar(&cfg.interval, "interval", config.DefaultInterval, "Auto-play step interval")
	fs.StringVar(&cfg.dataset, "dataset", config.DefaultDataset, "Dataset: moons, circles, linear")
	fs.IntVar(&cfg.maxDepth, "max-depth", dtree.DefaultParams().MaxDepth, "Maximum tree depth")
	fs.IntVar(&cfg.minSamples, "min-samples", dtree.DefaultParams().MinSamplesSplit, "Minimum samples to split a node")
	fs.StringVar(&cfg.criterion, "criterion", string(dtree.DefaultParams().Criterion), "Split criterion: gini or entropy")

	if err := fs.Parse(args); err != nil {
		return cfg, err
	}
	if fs.NArg() > 0 {
		return cfg, fmt.Errorf("unexpected argument %q", fs.Arg(0))
	}

	cfg.set = make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { cfg.set[f.Name] = true })
	return cfg, nil
}

// resolveSettings layers config file, then environment, then explicit flags.
func resolveSettings(cfg cliConfig) (config.Config, error) {
	path := cfg.configPath
	if path == "" {
		path = defaultConfigPath()
	}
	settings, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}

	if cfg.set["addr"] {
		settings.Addr = cfg.addr
	}
	if cfg.set["allow-remote"] {
		settings.AllowRemote = cfg.allowRemote
	}
	if cfg.set["url"] {
		settings.TrainURL = cfg.url
	}
	if cfg.set["data-dir"] {
		settings.DataDir = cfg.dataDir
	}
	if cfg.set["interval"] {
		settings.PlayInterval = cfg.interval
	}
	if cfg.set["dataset"] {
		settings.Dataset = cfg.dataset
	}
	if cfg.set["max-depth"] {
		settings.Params.MaxDepth = cfg.maxDepth
	}
	if cfg.set["min-samples"] {
		settings.Params.MinSamplesSplit = cfg.minSamples
	}
	if cfg.set["criterion"] {
		c, err := dtree.ParseCriterion(cfg.criterion)
		if err != nil {
			return config.Config{}, err
		}
		settings.Params.Criterion = c
	}

	if err := settings.Validate(); err != nil {
		return config.Config{}, err
	}
	return settings, nil
}

func run(cfg cliConfig, stdout io.Writer) error {
	if cfg.showVersion {
		fmt.Fprintf(stdout, "sapling %s\n", version)
		return nil
	}
	if !cfg.serverMode && !cfg.tuiMode && cfg.exportDir == "" && cfg.replayID == "" {
		printHelp(stdout, version)
		return nil
	}

	settings, err := resolveSettings(cfg)
	if err != nil {
		return err
	}

	switch {
	case cfg.exportDir != "":
		return runExport(context.Background(), settings, cfg.exportDir, stdout)
	case cfg.serverMode:
		return runServer(settings)
	default:
		return runTUI(settings, cfg.replayID)
	}
}

func runServer(settings config.Config) error {
	dataDir, err := resolveDataDir(settings.DataDir)
	if err != nil {
		return err
	}
	archive, err := store.Open(filepath.Join(dataDir, "runs.db"))
	if err != nil {
		return fmt.Errorf("open run archive: %w", err)
	}
	defer archive.Close()

	srv, err := web.NewServer(web.ServerConfig{
		Addr:     settings.Addr,
		Archive:  archive,
		Samples:  settings.Samples,
		Interval: settings.PlayInterval,
		CacheTTL: settings.CacheTTL,
	})
	if err != nil {
		return fmt.Errorf("create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("component=cli action=server_start addr=%s data_dir=%s graphviz=%t", settings.Addr, dataDir, render.GraphvizAvailable())
	return srv.ListenAndServe(ctx)
}

func runTUI(settings config.Config, replayID string) error {
	if replayID != "" && settings.TrainURL == "" {
		return errors.New("-replay requires -url (or SAPLING_TRAIN_URL) pointing at a sapling server")
	}

	// The alternate screen owns stdout; send logs to a file instead.
	dataDir, err := resolveDataDir(settings.DataDir)
	if err != nil {
		return err
	}
	logFile, err := os.OpenFile(filepath.Join(dataDir, "sapling-tui.log"), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open tui log: %w", err)
	}
	defer logFile.Close()
	log.SetOutput(logFile)
	defer log.SetOutput(os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	opts := tui.Options{
		Context:  ctx,
		Request:  settings.Request(),
		Interval: settings.PlayInterval,
	}
	if settings.TrainURL != "" {
		client := trainapi.NewClient(settings.TrainURL, nil)
		opts.Trainer = client
		opts.Source = settings.TrainURL
		opts.Replay = client
		opts.ReplayID = replayID
	} else {
		opts.Trainer = trainapi.Local{Options: settingsDataset(settings)}
		opts.Source = "local"
	}

	model := tui.NewAppModel(opts)
	p := tea.NewProgram(model, tea.WithAltScreen())
	model.Bridge().Attach(p.Send)
	defer model.Controller().Close()

	log.Printf("component=cli action=tui_start source=%s replay=%s", opts.Source, replayID)
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui: %w", err)
	}
	return nil
}

// runExport trains once and writes every snapshot as DOT, a PNG decision
// space chart, and (with graphviz) an SVG tree, plus run.json.
func runExport(ctx context.Context, settings config.Config, dir string, stdout io.Writer) error {
	req := settings.Request()

	var (
		resp trainapi.Response
		err  error
	)
	if settings.TrainURL != "" {
		resp, err = trainapi.NewClient(settings.TrainURL, nil).TrainResponse(ctx, req)
	} else {
		resp, err = trainapi.Local{Options: settingsDataset(settings)}.Run(ctx, req)
	}
	if err != nil {
		return fmt.Errorf("train: %w", err)
	}
	if err := resp.Check(); err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create export dir: %w", err)
	}

	svg := render.GraphvizAvailable()
	surface := viz.Surface{Name: viz.SurfaceSpace, Width: viz.DefaultImageWidth, Height: viz.DefaultImageHeight}
	for i, snap := range resp.History {
		base := filepath.Join(dir, fmt.Sprintf("step-%03d", i))
		dot := render.ToDOT(snap)
		if err := os.WriteFile(base+".dot", []byte(dot), 0o644); err != nil {
			return fmt.Errorf("write step %d dot: %w", i, err)
		}
		if err := writeSpacePNG(base+".png", viz.BuildSpace(snap, surface)); err != nil {
			return fmt.Errorf("write step %d png: %w", i, err)
		}
		if svg {
			out, err := render.RenderDOTSource(ctx, dot, "svg")
			if err != nil {
				return fmt.Errorf("render step %d svg: %w", i, err)
			}
			if err := os.WriteFile(base+".svg", out, 0o644); err != nil {
				return fmt.Errorf("write step %d svg: %w", i, err)
			}
		}
	}

	data, err := json.MarshalIndent(resp, "", "  ")
	if err != nil {
		return fmt.Errorf("encode run: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, "run.json"), data, 0o644); err != nil {
		return fmt.Errorf("write run.json: %w", err)
	}

	last := resp.History[len(resp.History)-1]
	fmt.Fprintf(stdout, "exported %d steps to %s (dataset=%s depth=%d criterion=%s svg=%t)\n",
		len(resp.History), dir, req.Dataset, dtree.Flatten(last).MaxDepth(), req.Params.Criterion, svg)
	return nil
}

func writeSpacePNG(path string, c viz.SpaceChart) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := viz.RenderSpace(c, "png", f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// settingsDataset builds dataset options from the configured sample count.
func settingsDataset(settings config.Config) dataset.Options {
	return dataset.Options{Samples: settings.Samples}
}
