package sla

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/internal/meshtest"
)

func rowVec(m *mat.Dense, i int) r3.Vec {
	return r3.Vec{X: m.At(i, 0), Y: m.At(i, 1), Z: m.At(i, 2)}
}

func TestNormalsCube(t *testing.T) {
	sm := newCube(t)
	s2, s3 := 1/math.Sqrt2, 1/math.Sqrt(3)

	tests := []struct {
		name string
		p    r3.Vec
		want r3.Vec
		prox EdgeProximity
	}{
		{"top interior", r3.Vec{X: 0.3, Y: 0.6, Z: 1.2}, r3.Vec{Z: 1}, Interior},
		{"bottom interior", r3.Vec{X: 0.7, Y: 0.2, Z: -0.3}, r3.Vec{Z: -1}, Interior},
		{"side interior", r3.Vec{X: 1.4, Y: 0.2, Z: 0.7}, r3.Vec{X: 1}, Interior},
		{"top/back edge", r3.Vec{X: 0.5, Y: 1.2, Z: 1.2}, r3.Vec{Y: s2, Z: s2}, NearEdge},
		{"corner", r3.Vec{X: 1.1, Y: 1.1, Z: 1.1}, r3.Vec{X: s3, Y: s3, Z: s3}, NearVertex},
		// The diagonal splitting the top face is an edge, but both faces
		// share one normal.
		{"top diagonal", r3.Vec{X: 0.5, Y: 0.5, Z: 1.5}, r3.Vec{Z: 1}, NearEdge},
		{"inside near wall", r3.Vec{X: 0.5, Y: 0.3, Z: 0.9}, r3.Vec{Z: 1}, Interior},
	}

	pts := mat.NewDense(len(tests), 3, nil)
	for i, tt := range tests {
		pts.SetRow(i, []float64{tt.p.X, tt.p.Y, tt.p.Z})
	}
	res, err := Normals(context.Background(), pts, sm, DefaultNormalsConfig())
	require.NoError(t, err)
	r, c := res.Normals.Dims()
	require.Equal(t, len(tests), r)
	require.Equal(t, 3, c)

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := rowVec(res.Normals, i)
			assert.InDelta(t, 0, r3.Norm(r3.Sub(got, tt.want)), 1e-9, "got %v", got)
			assert.Equal(t, tt.prox, res.Proximity[i])
		})
	}
}

func TestNormalsSelection(t *testing.T) {
	sm := newCube(t)
	pts := mat.NewDense(3, 3, []float64{
		0.3, 0.6, 1.2,
		0.7, 0.2, -0.3,
		1.4, 0.2, 0.7,
	})
	cfg := DefaultNormalsConfig()
	cfg.Selected = []int{2, 0}

	res, err := Normals(context.Background(), pts, sm, cfg)
	require.NoError(t, err)
	r, _ := res.Normals.Dims()
	require.Equal(t, 2, r)
	assert.InDelta(t, 1, res.Normals.At(0, 0), 1e-12)
	assert.InDelta(t, 1, res.Normals.At(1, 2), 1e-12)

	cfg.Selected = []int{0, 3}
	_, err = Normals(context.Background(), pts, sm, cfg)
	assert.ErrorIs(t, err, ErrSelection)

	cfg.Selected = []int{-1}
	_, err = Normals(context.Background(), pts, sm, cfg)
	assert.ErrorIs(t, err, ErrSelection)
}

func TestNormalsEmpty(t *testing.T) {
	sm := newCube(t)
	res, err := Normals(context.Background(), &mat.Dense{}, sm, DefaultNormalsConfig())
	require.NoError(t, err)
	r, _ := res.Normals.Dims()
	assert.Equal(t, 0, r)
	assert.Empty(t, res.Proximity)
}

func TestNormalsBadShape(t *testing.T) {
	sm := newCube(t)
	_, err := Normals(context.Background(), mat.NewDense(2, 2, nil), sm, DefaultNormalsConfig())
	assert.Error(t, err)
}

func TestNormalsWorkersAgree(t *testing.T) {
	sm, err := NewSpatialMesh(meshtest.Soup(37, 100, 10))
	require.NoError(t, err)

	raw := meshtest.Points(41, 500, -2, 12)
	pts := mat.NewDense(len(raw), 3, nil)
	for i, p := range raw {
		pts.SetRow(i, []float64{p.X, p.Y, p.Z})
	}

	cfg := DefaultNormalsConfig()
	cfg.Workers = 1
	serial, err := Normals(context.Background(), pts, sm, cfg)
	require.NoError(t, err)

	cfg.Workers = 7
	cfg.CheckEvery = 3
	parallel, err := Normals(context.Background(), pts, sm, cfg)
	require.NoError(t, err)

	assert.True(t, mat.Equal(serial.Normals, parallel.Normals))
	assert.Equal(t, serial.Proximity, parallel.Proximity)

	for i := range raw {
		assert.InDelta(t, 1, r3.Norm(rowVec(serial.Normals, i)), 1e-9)
	}
}

func TestNormalsCancelled(t *testing.T) {
	sm := newCube(t)
	pts := mat.NewDense(100, 3, nil)
	for i := 0; i < 100; i++ {
		pts.SetRow(i, []float64{0.5, 0.3, 2})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err := Normals(ctx, pts, sm, DefaultNormalsConfig())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, res.Normals)
	assert.Nil(t, res.Proximity)
}

func TestEdgeProximityString(t *testing.T) {
	assert.Equal(t, "interior", Interior.String())
	assert.Equal(t, "edge", NearEdge.String())
	assert.Equal(t, "vertex", NearVertex.String())
	assert.Equal(t, "EdgeProximity(9)", EdgeProximity(9).String())
}
