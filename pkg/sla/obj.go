package sla

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"gonum.org/v1/gonum/spatial/r3"
)

// ErrOBJ is returned for malformed OBJ input.
var ErrOBJ = errors.New("malformed obj")

// WriteOBJ writes the mesh as Wavefront OBJ with 1-based indices. Quads
// are written as 4-index faces. Coordinates use the shortest exact
// representation so a read back is lossless.
func (im *IndexedMesh) WriteOBJ(w io.Writer) error {
	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "# %d vertices, %d triangles, %d quads\n", len(im.Points), len(im.Faces3), len(im.Faces4))
	for _, p := range im.Points {
		bw.WriteString("v ")
		bw.WriteString(strconv.FormatFloat(p.X, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Y, 'g', -1, 64))
		bw.WriteByte(' ')
		bw.WriteString(strconv.FormatFloat(p.Z, 'g', -1, 64))
		bw.WriteByte('\n')
	}
	for _, f := range im.Faces3 {
		fmt.Fprintf(bw, "f %d %d %d\n", f[0]+1, f[1]+1, f[2]+1)
	}
	for _, f := range im.Faces4 {
		fmt.Fprintf(bw, "f %d %d %d %d\n", f[0]+1, f[1]+1, f[2]+1, f[3]+1)
	}
	return bw.Flush()
}

// ReadOBJ parses vertices and faces from Wavefront OBJ. Face references
// may be 1-based or negative (relative to the last vertex) and may carry
// texture and normal indices, which are ignored. Triangles and quads are
// kept as such; larger polygons are fanned into triangles. Other
// statements are skipped.
func ReadOBJ(r io.Reader) (*IndexedMesh, error) {
	im := &IndexedMesh{}
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	line := 0
	for sc.Scan() {
		line++
		text := strings.TrimSpace(sc.Text())
		if text == "" || text[0] == '#' {
			continue
		}
		fields := strings.Fields(text)
		switch fields[0] {
		case "v":
			if len(fields) < 4 {
				return nil, fmt.Errorf("line %d: vertex needs 3 coordinates: %w", line, ErrOBJ)
			}
			var c [3]float64
			for k := range c {
				v, err := strconv.ParseFloat(fields[k+1], 64)
				if err != nil {
					return nil, fmt.Errorf("line %d: %v: %w", line, err, ErrOBJ)
				}
				c[k] = v
			}
			im.Points = append(im.Points, r3.Vec{X: c[0], Y: c[1], Z: c[2]})
		case "f":
			refs := fields[1:]
			if len(refs) < 3 {
				return nil, fmt.Errorf("line %d: face needs at least 3 vertices: %w", line, ErrOBJ)
			}
			idx := make([]int, len(refs))
			for k, ref := range refs {
				i, err := parseRef(ref, len(im.Points))
				if err != nil {
					return nil, fmt.Errorf("line %d: %v: %w", line, err, ErrOBJ)
				}
				idx[k] = i
			}
			switch len(idx) {
			case 3:
				im.Faces3 = append(im.Faces3, [3]int{idx[0], idx[1], idx[2]})
			case 4:
				im.Faces4 = append(im.Faces4, [4]int{idx[0], idx[1], idx[2], idx[3]})
			default:
				for k := 1; k+1 < len(idx); k++ {
					im.Faces3 = append(im.Faces3, [3]int{idx[0], idx[k], idx[k+1]})
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read obj: %w", err)
	}
	return im, nil
}

// parseRef converts one face reference such as "7", "-1" or "7/2/5" to a
// 0-based vertex index, given the number of vertices read so far.
func parseRef(ref string, n int) (int, error) {
	if i := strings.IndexByte(ref, '/'); i >= 0 {
		ref = ref[:i]
	}
	v, err := strconv.Atoi(ref)
	if err != nil {
		return 0, fmt.Errorf("bad vertex reference %q", ref)
	}
	switch {
	case v > 0:
		v--
	case v < 0:
		v += n
	default:
		return 0, errors.New("vertex reference 0")
	}
	if v < 0 || v >= n {
		return 0, fmt.Errorf("vertex reference %s out of range (%d vertices)", ref, n)
	}
	return v, nil
}
