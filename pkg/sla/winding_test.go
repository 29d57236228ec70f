package sla

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chazu/sla/internal/meshtest"
	"github.com/chazu/sla/pkg/kernel"
)

func TestCheckWinding(t *testing.T) {
	flipped := meshtest.UnitCube()
	f := flipped.Faces[2]
	flipped.Faces[2] = [3]int{f[0], f[2], f[1]}

	open := meshtest.UnitCube()
	open.Faces = open.Faces[1:]

	doubled := meshtest.UnitCube()
	doubled.Faces = append(doubled.Faces, doubled.Faces[0])

	collapsed := meshtest.UnitCube()
	collapsed.Faces = append(collapsed.Faces, [3]int{0, 0, 1})

	tests := []struct {
		name string
		mesh *kernel.Mesh
		want WindingReport
	}{
		{"closed cube", meshtest.UnitCube(), WindingReport{}},
		{"one face flipped", flipped, WindingReport{FlippedEdges: 3}},
		{"face removed", open, WindingReport{BoundaryEdges: 3}},
		{"face duplicated", doubled, WindingReport{NonManifoldEdges: 3}},
		{"collapsed face", collapsed, WindingReport{NonManifoldEdges: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CheckWinding(tt.mesh)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want == WindingReport{}, got.Consistent())
		})
	}
}
