package config

import "flag"

// Flags holds command-line overrides. Zero values leave the loaded
// configuration untouched.
type Flags struct {
	debug     *bool
	index     *string
	distance  *float64
	maxPoints *int
	step      *float64
	objOut    *string
	plotOut   *string
	pointsOut *string
	logFile   *string
}

// RegisterFlags defines the override flags on fs.
func RegisterFlags(fs *flag.FlagSet) *Flags {
	return &Flags{
		debug:     fs.Bool("debug", false, "Enable debug logging"),
		index:     fs.String("index", "", "Spatial index kind (aabb, linear)"),
		distance:  fs.Float64("cluster-dist", 0, "Clustering distance"),
		maxPoints: fs.Int("cluster-max", -1, "Max points per cluster (0 = unbounded)"),
		step:      fs.Float64("step", 0, "Sampling grid step"),
		objOut:    fs.String("obj-out", "", "Write the model as OBJ to this path"),
		plotOut:   fs.String("plot-out", "", "Write a cluster scatter PNG to this path"),
		pointsOut: fs.String("points-out", "", "Write sampled support points (msgpack) to this path"),
		logFile:   fs.String("log-file", "", "Also log to this file"),
	}
}

// apply applies CLI flag overrides to the config.
func (f *Flags) apply(cfg *Config) {
	if f == nil {
		return
	}
	if *f.debug {
		cfg.Logging.Level = "debug"
	}
	if *f.index != "" {
		cfg.Mesh.Index = *f.index
	}
	if *f.distance > 0 {
		cfg.Cluster.Distance = *f.distance
	}
	if *f.maxPoints >= 0 {
		cfg.Cluster.MaxPoints = *f.maxPoints
	}
	if *f.step > 0 {
		cfg.Sampling.Step = *f.step
	}
	if *f.objOut != "" {
		cfg.Output.OBJPath = *f.objOut
	}
	if *f.plotOut != "" {
		cfg.Output.PlotPath = *f.plotOut
	}
	if *f.pointsOut != "" {
		cfg.Output.PointsPath = *f.pointsOut
	}
	if *f.logFile != "" {
		cfg.Logging.LogFile = *f.logFile
	}
}
