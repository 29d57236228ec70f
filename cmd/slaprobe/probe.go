package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/internal/config"
	"github.com/chazu/sla/internal/logger"
	"github.com/chazu/sla/pkg/cluster"
	"github.com/chazu/sla/pkg/debugplot"
	"github.com/chazu/sla/pkg/engine"
	"github.com/chazu/sla/pkg/kernel"
	"github.com/chazu/sla/pkg/kernel/sdfx"
	"github.com/chazu/sla/pkg/sla"
	"github.com/chazu/sla/pkg/spatial"
)

// source selects where the model comes from. The OBJ path wins over the
// script path, which wins over the primitive.
type source struct {
	objPath    string
	scriptPath string
	primitive  string
}

func (s source) String() string {
	switch {
	case s.objPath != "":
		return s.objPath
	case s.scriptPath != "":
		return s.scriptPath
	}
	return s.primitive
}

// report summarises one probe run.
type report struct {
	Vertices int
	Faces    int
	Ground   float64
	Points   sla.SupportPoints
	Normals  sla.NormalsResult
	NearEdge int
	Clusters cluster.Clusters
}

// Largest returns the size of the biggest cluster.
func (r *report) Largest() int {
	n := 0
	for _, c := range r.Clusters {
		n = max(n, len(c))
	}
	return n
}

var down = r3.Vec{Z: -1}

func run(ctx context.Context, cfg *config.Config, src source) (*report, error) {
	m, err := loadMesh(src, cfg)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	sm, err := sla.NewSpatialMesh(m, meshOptions(cfg)...)
	if err != nil {
		return nil, fmt.Errorf("building spatial mesh: %w", err)
	}
	sm.SetGroundLevelOffset(cfg.Mesh.GroundOffset)
	logger.Info("spatial mesh ready",
		zap.String("index", cfg.Mesh.Index),
		zap.Int("faces", len(sm.Faces())),
		zap.Bool("consistent_winding", sm.Winding().Consistent()),
		zap.Duration("elapsed", time.Since(start)),
	)

	lo, hi := m.Bounds()
	if sd, ok := sm.SignedDistancer(); ok {
		center := r3.Scale(0.5, r3.Add(lo, hi))
		res := sd.SignedDistance(center)
		logger.Info("signed distance at bounds center",
			zap.Float64("value", res.Value),
			zap.Bool("inside", res.Value < 0),
		)
	}

	rep := &report{
		Vertices: len(sm.Vertices()),
		Faces:    len(sm.Faces()),
		Ground:   sm.GroundLevel(),
	}
	rep.Points = sample(sm, lo, hi, cfg.Sampling)

	pts := positions(rep.Points)
	ncfg := sla.DefaultNormalsConfig()
	ncfg.EdgeEpsilon = cfg.Normals.EdgeEpsilon
	if cfg.Normals.Workers > 0 {
		ncfg.Workers = cfg.Normals.Workers
	}
	rep.Normals, err = sla.Normals(ctx, pts, sm, ncfg)
	if err != nil {
		return nil, fmt.Errorf("estimating normals: %w", err)
	}
	for _, p := range rep.Normals.Proximity {
		if p != sla.Interior {
			rep.NearEdge++
		}
	}

	indices := make([]int, len(rep.Points))
	for i := range indices {
		indices[i] = i
	}
	rep.Clusters, err = cluster.ByDistance(ctx, indices, rep.Points.PointFunc(), cfg.Cluster.Distance, cfg.Cluster.MaxPoints)
	if err != nil {
		return nil, fmt.Errorf("clustering: %w", err)
	}

	if err := writeOutputs(cfg.Output, m, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func meshOptions(cfg *config.Config) []sla.MeshOption {
	var opts []sla.MeshOption
	if cfg.Mesh.Index == config.IndexLinear {
		opts = append(opts, sla.WithIndex(spatial.NewLinear))
	} else {
		opts = append(opts, sla.WithIndex(spatial.TreeBuilder(spatial.WithLeafSize(cfg.Mesh.LeafSize))))
	}
	if cfg.Mesh.SignedDistance {
		opts = append(opts, sla.WithSignedDistance())
	}
	return opts
}

func loadMesh(src source, cfg *config.Config) (*kernel.Mesh, error) {
	if src.objPath != "" {
		f, err := os.Open(src.objPath)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		im, err := sla.ReadOBJ(f)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", src.objPath, err)
		}
		m := im.ToTriangleMesh()
		m.Name = filepath.Base(src.objPath)
		return m, nil
	}

	k := sdfx.NewWithResolution(cfg.Mesh.Resolution)
	var solid kernel.Solid
	if src.scriptPath != "" {
		code, err := os.ReadFile(src.scriptPath)
		if err != nil {
			return nil, err
		}
		s, evalErrs, err := engine.NewEngine(k).Evaluate(string(code))
		if err != nil {
			return nil, fmt.Errorf("evaluating %s: %w", src.scriptPath, err)
		}
		if len(evalErrs) > 0 {
			errs := make([]error, len(evalErrs))
			for i, e := range evalErrs {
				errs[i] = e
			}
			return nil, fmt.Errorf("evaluating %s: %w", src.scriptPath, errors.Join(errs...))
		}
		if s == nil {
			return nil, fmt.Errorf("%s does not model a solid", src.scriptPath)
		}
		solid = s
	} else {
		var err error
		if solid, err = primitive(k, src.primitive); err != nil {
			return nil, err
		}
	}

	m, err := k.ToMesh(solid)
	if err != nil {
		return nil, err
	}
	m.Name = src.String()
	return m, nil
}

// primitive returns a demo solid lifted 5mm off the build plate, so its
// underside needs supports.
func primitive(k kernel.Kernel, name string) (kernel.Solid, error) {
	var s kernel.Solid
	switch name {
	case "box":
		s = k.Translate(k.Box(20, 20, 10), -10, -10, 5)
	case "sphere":
		s = k.Translate(k.Sphere(10), 0, 0, 15)
	case "cylinder":
		s = k.Translate(k.Cylinder(10, 8), 0, 0, 10)
	default:
		return nil, fmt.Errorf("unknown primitive %q", name)
	}
	return s, nil
}

// sample casts a downward ray through every cell centre of an XY grid over
// the bounds and keeps each hit on a downward-facing triangle as a
// candidate support point.
func sample(sm *sla.SpatialMesh, lo, hi r3.Vec, cfg config.SamplingConfig) sla.SupportPoints {
	var pts sla.SupportPoints
	top := hi.Z + 1
	for x := lo.X + cfg.Step/2; x < hi.X; x += cfg.Step {
		for y := lo.Y + cfg.Step/2; y < hi.Y; y += cfg.Step {
			for _, h := range sm.QueryRayHits(r3.Vec{X: x, Y: y, Z: top}, down) {
				n, ok := h.Normal()
				if !ok || r3.Dot(n, down) <= 0 {
					continue
				}
				pts = append(pts, sla.SupportPoint{
					Pos:             sla.Vec3fFrom(h.Position()),
					HeadFrontRadius: float32(cfg.HeadRadius),
				})
			}
		}
	}
	logger.Debug("support points sampled", zap.Int("points", len(pts)), zap.Float64("step", cfg.Step))
	return pts
}

func positions(ps sla.SupportPoints) *mat.Dense {
	if len(ps) == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(len(ps), 3, nil)
	for i, p := range ps {
		v := p.Pos.Vec()
		d.SetRow(i, []float64{v.X, v.Y, v.Z})
	}
	return d
}

func writeOutputs(out config.OutputConfig, m *kernel.Mesh, rep *report) error {
	if out.OBJPath != "" {
		if err := writeFile(out.OBJPath, func(f *os.File) error {
			return sla.NewIndexedMesh(m).WriteOBJ(f)
		}); err != nil {
			return fmt.Errorf("writing obj: %w", err)
		}
	}
	if out.PointsPath != "" {
		data, err := rep.Points.MarshalMsg(nil)
		if err != nil {
			return fmt.Errorf("encoding points: %w", err)
		}
		if err := os.WriteFile(out.PointsPath, data, 0644); err != nil {
			return fmt.Errorf("writing points: %w", err)
		}
	}
	if out.PlotPath != "" {
		if err := debugplot.Clusters(out.PlotPath, rep.Points.PointFunc(), rep.Clusters); err != nil {
			return err
		}
	}
	return nil
}

func writeFile(path string, write func(*os.File) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
