// slaprobe builds the spatial query structure for a model, samples
// candidate support points on its downward-facing surfaces, estimates
// their normals and clusters them.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"

	"go.uber.org/zap"

	"github.com/chazu/sla/internal/config"
	"github.com/chazu/sla/internal/logger"
)

func main() {
	fs := flag.NewFlagSet("slaprobe", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML config file")
	var src source
	fs.StringVar(&src.objPath, "model", "", "Load the model from a Wavefront OBJ file")
	fs.StringVar(&src.scriptPath, "script", "", "Evaluate the model from a Lisp script")
	fs.StringVar(&src.primitive, "primitive", "sphere", "Built-in model when no file is given (box, sphere, cylinder)")
	flags := config.RegisterFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: slaprobe [options]")
		fs.PrintDefaults()
	}
	_ = fs.Parse(os.Args[1:])

	cfg, err := config.Load(*configPath, flags)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Config error: %v\n", err)
		os.Exit(1)
	}

	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Logger error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Sugar.Debugf("Config: %+v", cfg)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rep, err := run(ctx, cfg, src)
	if err != nil {
		logger.Error("probe failed", zap.Error(err))
		logger.Sync()
		os.Exit(1)
	}

	logger.Info("probe finished",
		zap.String("model", src.String()),
		zap.Int("vertices", rep.Vertices),
		zap.Int("faces", rep.Faces),
		zap.Float64("ground", rep.Ground),
		zap.Int("points", len(rep.Points)),
		zap.Int("near_edge", rep.NearEdge),
		zap.Int("clusters", len(rep.Clusters)),
		zap.Int("largest_cluster", rep.Largest()),
	)
}
