// Command lloyd is an interactive K-Means playground.
//
// Attached to a terminal it opens a REPL; otherwise, or with -batch, it
// generates (or loads) a dataset, runs to convergence and optionally writes a
// report to the configured sink.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"golang.org/x/term"

	"github.com/hupe1980/lloyd"
	"github.com/hupe1980/lloyd/export"
	"github.com/hupe1980/lloyd/internal/config"
	"github.com/hupe1980/lloyd/internal/shell"
	"github.com/hupe1980/lloyd/player"
)

const version = "0.1.0"

func main() {
	configPath := flag.String("config", "", "Config file path")
	initConfig := flag.Bool("init", false, "Write the default config to -config and exit")
	batch := flag.Bool("batch", false, "Run once without the REPL")
	exportReport := flag.Bool("export", false, "Write a report after a batch run")
	points := flag.Int("points", 0, "Override data.points")
	k := flag.Int("k", 0, "Override cluster.k")
	seed := flag.Int64("seed", 0, "Override data.seed")
	initMethod := flag.String("method", "", "Override cluster.init (uniform, kmeans++)")
	showVersion := flag.Bool("version", false, "Show version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("lloyd %s\n", version)
		return
	}

	if *initConfig {
		if *configPath == "" {
			fmt.Fprintln(os.Stderr, "-init requires -config")
			os.Exit(2)
		}
		if err := config.Default().Save(*configPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize config: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Config initialized at: %s\n", *configPath)
		return
	}

	cfg, err := config.LoadOrDefault(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "points":
			cfg.Data.Points = *points
		case "k":
			cfg.Cluster.K = *k
		case "seed":
			cfg.Data.Seed = *seed
		case "method":
			cfg.Cluster.Init = *initMethod
		}
	})
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, *batch || !term.IsTerminal(int(os.Stdin.Fd())), *exportReport); err != nil {
		if errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, "\nInterrupted.")
			os.Exit(130)
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, batch, exportReport bool) error {
	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	method, err := cfg.InitMethod()
	if err != nil {
		return err
	}

	metrics := &lloyd.BasicMetricsCollector{}
	session := lloyd.New(
		lloyd.WithK(cfg.Cluster.K),
		lloyd.WithSeed(cfg.Data.Seed),
		lloyd.WithInitMethod(method),
		lloyd.WithMaxIterations(cfg.Cluster.MaxIterations),
		lloyd.WithLogger(logger),
		lloyd.WithMetricsCollector(metrics),
	)

	if err := loadData(ctx, session, cfg); err != nil {
		return err
	}

	var exporter *export.Exporter
	if !batch || exportReport {
		if exporter, err = newExporter(ctx, cfg, logger, metrics); err != nil {
			return err
		}
	}

	if !batch {
		sh := shell.New(session, shell.Config{
			HistoryFile: historyFile(),
			Delay:       cfg.Player.Delay,
			Points:      cfg.Data.Points,
			Exporter:    exporter,
		})
		return sh.Run(ctx)
	}

	if err := session.Start(ctx); err != nil {
		return err
	}

	p := player.New(session, player.RenderFunc(printFrame), 0)
	res, err := p.Play(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("state=%s iterations=%d duration=%s\n", session.State(), res.Iterations, res.Duration)
	for c, centroid := range session.Centroids() {
		fmt.Printf("C%d %s size=%d\n", c+1, centroid, session.ClusterSizes()[c])
	}

	if exporter != nil {
		report, err := exporter.Export(ctx, session)
		if err != nil {
			return err
		}
		fmt.Printf("report: %d files, %d bytes under %s\n", len(report.Files), report.Bytes, report.Prefix)
	}

	stats := metrics.GetStats()
	logger.Debug("run stats",
		"steps", stats.StepCount,
		"avg_step_ns", stats.AvgStepNanos,
		"exports", stats.ExportCount,
	)
	return nil
}

func loadData(ctx context.Context, session *lloyd.Session, cfg *config.Config) error {
	if cfg.Data.File == "" {
		return session.Generate(cfg.Data.Points, cfg.Cluster.K, cfg.Data.Seed)
	}

	data, err := os.ReadFile(cfg.Data.File)
	if err != nil {
		return err
	}
	res, err := session.AddPoints(ctx, string(data))
	if err != nil {
		return err
	}
	if res.Errors > 0 {
		fmt.Fprintf(os.Stderr, "Skipped %d malformed lines in %s\n", res.Errors, cfg.Data.File)
	}
	return nil
}

func printFrame(_ context.Context, f player.Frame) error {
	if f.Phase != player.PhaseUpdate {
		return nil
	}
	fmt.Printf("iteration %3d  inertia %12.4f  changed=%t\n", f.Result.Iteration, f.Result.Inertia, f.Result.Changed)
	return nil
}

func newLogger(cfg *config.Config) (*lloyd.Logger, error) {
	level, err := cfg.LogLevel()
	if err != nil {
		return nil, err
	}
	if cfg.Log.Format == "json" {
		return lloyd.NewJSONLogger(level), nil
	}
	return lloyd.NewTextLogger(level), nil
}

func historyFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".lloyd_history")
}
