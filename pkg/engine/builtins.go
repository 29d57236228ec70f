package engine

import (
	"errors"
	"fmt"
	"strings"

	zygo "github.com/glycerine/zygomys/zygo"
	"gonum.org/v1/gonum/spatial/r3"

	"github.com/chazu/sla/pkg/kernel"
)

// kwPrefix marks keyword strings produced by preprocessSource.
const kwPrefix = "__kw_"

// preprocessSource rewrites model source into something zygomys accepts:
//
//   - :keyword becomes the string "__kw_keyword", so keywords need no
//     global registration and cannot clash with user variables.
//   - kebab-case identifiers become snake_case; zygomys reads a hyphen as
//     subtraction.
//   - ; comments become // comments.
//
// String literals are copied untouched.
func preprocessSource(source string) string {
	b := []byte(source)
	out := make([]byte, 0, len(b)+len(b)/4)
	for i := 0; i < len(b); {
		switch c := b[i]; {
		case c == '"' || c == '`':
			end := stringEnd(b, i)
			out = append(out, b[i:end]...)
			i = end

		case c == ';':
			for i < len(b) && b[i] == ';' {
				i++
			}
			out = append(out, '/', '/')
			for i < len(b) && b[i] != '\n' {
				out = append(out, b[i])
				i++
			}

		case c == ':' && i+1 < len(b) && b[i+1] == '=':
			out = append(out, ':', '=')
			i += 2

		case c == ':' && i+1 < len(b) && isLetter(b[i+1]):
			j := i + 1
			for j < len(b) && isKWChar(b[j]) {
				j++
			}
			out = append(out, '"')
			out = append(out, kwPrefix...)
			out = append(out, b[i+1:j]...)
			out = append(out, '"')
			i = j

		case c == '-' && i > 0 && i+1 < len(b) && isIdentChar(b[i-1]) && isLetter(b[i+1]):
			out = append(out, '_')
			i++

		default:
			out = append(out, c)
			i++
		}
	}
	return string(out)
}

// stringEnd returns the index just past the string literal starting at
// b[start]. Double-quoted strings honour backslash escapes; backtick
// strings are raw. An unterminated literal runs to the end of input.
func stringEnd(b []byte, start int) int {
	quote := b[start]
	for i := start + 1; i < len(b); i++ {
		switch {
		case quote == '"' && b[i] == '\\':
			i++
		case b[i] == quote:
			return i + 1
		}
	}
	return len(b)
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isKWChar(c byte) bool {
	return isIdentChar(c) || c == '-'
}

func isIdentChar(c byte) bool {
	return isLetter(c) || (c >= '0' && c <= '9') || c == '_'
}

// sexpSolid carries a kernel solid between builtins.
type sexpSolid struct {
	solid kernel.Solid
	desc  string
}

func (s *sexpSolid) SexpString(ps *zygo.PrintState) string { return s.desc }
func (s *sexpSolid) Type() *zygo.RegisteredType            { return nil }

// sexpVec3 carries a vector between builtins.
type sexpVec3 struct {
	vec r3.Vec
}

func (v *sexpVec3) SexpString(ps *zygo.PrintState) string {
	return fmt.Sprintf("(vec3 %g %g %g)", v.vec.X, v.vec.Y, v.vec.Z)
}
func (v *sexpVec3) Type() *zygo.RegisteredType { return nil }

// kwArgs is an argument list split into keyword and positional values.
type kwArgs struct {
	kw         map[string]zygo.Sexp
	positional []zygo.Sexp
}

// parseArgs separates keyword arguments (marked by preprocessSource)
// from positional ones. A trailing keyword without a value maps to nil.
func parseArgs(args []zygo.Sexp) kwArgs {
	res := kwArgs{kw: make(map[string]zygo.Sexp)}
	for i := 0; i < len(args); i++ {
		str, ok := args[i].(*zygo.SexpStr)
		if !ok || !strings.HasPrefix(str.S, kwPrefix) {
			res.positional = append(res.positional, args[i])
			continue
		}
		name := str.S[len(kwPrefix):]
		if i+1 < len(args) {
			res.kw[name] = args[i+1]
			i++
		} else {
			res.kw[name] = zygo.SexpNull
		}
	}
	return res
}

// number returns the keyword value if present, otherwise the positional
// argument at pos.
func (a kwArgs) number(key string, pos int) (float64, error) {
	if v, ok := a.kw[key]; ok {
		return toFloat64(v)
	}
	if pos < len(a.positional) {
		return toFloat64(a.positional[pos])
	}
	return 0, fmt.Errorf("missing %s", key)
}

func toFloat64(s zygo.Sexp) (float64, error) {
	switch v := s.(type) {
	case *zygo.SexpInt:
		return float64(v.Val), nil
	case *zygo.SexpFloat:
		return v.Val, nil
	}
	return 0, fmt.Errorf("expected number, got %T (%s)", s, s.SexpString(nil))
}

func toVec3(s zygo.Sexp) (r3.Vec, error) {
	if v, ok := s.(*sexpVec3); ok {
		return v.vec, nil
	}
	return r3.Vec{}, fmt.Errorf("expected vec3, got %T (%s)", s, s.SexpString(nil))
}

func toSolid(s zygo.Sexp) (*sexpSolid, error) {
	if v, ok := s.(*sexpSolid); ok {
		return v, nil
	}
	return nil, fmt.Errorf("expected solid, got %T (%s)", s, s.SexpString(nil))
}

// positive reads a strictly positive dimension.
func positive(a kwArgs, key string, pos int) (float64, error) {
	v, err := a.number(key, pos)
	if err != nil {
		return 0, err
	}
	if v <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %g", key, v)
	}
	return v, nil
}

// scriptState collects what a script models during one evaluation.
type scriptState struct {
	kernel kernel.Kernel
	model  kernel.Solid
}

type builtin func(st *scriptState, args []zygo.Sexp) (zygo.Sexp, error)

var builtins = map[string]builtin{
	"box":          boxBuiltin,
	"cylinder":     cylinderBuiltin,
	"sphere":       sphereBuiltin,
	"vec3":         vec3Builtin,
	"translate":    transformBuiltin("translate"),
	"rotate":       transformBuiltin("rotate"),
	"union":        booleanBuiltin("union"),
	"difference":   booleanBuiltin("difference"),
	"intersection": booleanBuiltin("intersection"),
	"model":        modelBuiltin,
}

// registerBuiltins installs the modelling builtins into env. Errors are
// prefixed with the builtin's name.
func registerBuiltins(env *zygo.Zlisp, st *scriptState) {
	for name, fn := range builtins {
		env.AddFunction(name, func(env *zygo.Zlisp, _ string, args []zygo.Sexp) (zygo.Sexp, error) {
			res, err := fn(st, args)
			if err != nil {
				return zygo.SexpNull, fmt.Errorf("%s: %w", name, err)
			}
			return res, nil
		})
	}
}

// (box x y z) or (box :x 10 :y 20 :z 5); the min corner sits at the origin.
func boxBuiltin(st *scriptState, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs(args)
	var dims [3]float64
	for i, key := range []string{"x", "y", "z"} {
		v, err := positive(a, key, i)
		if err != nil {
			return nil, err
		}
		dims[i] = v
	}
	return &sexpSolid{
		solid: st.kernel.Box(dims[0], dims[1], dims[2]),
		desc:  fmt.Sprintf("(box %g %g %g)", dims[0], dims[1], dims[2]),
	}, nil
}

// (cylinder :height h :radius r), centred on the origin along Z.
func cylinderBuiltin(st *scriptState, args []zygo.Sexp) (zygo.Sexp, error) {
	a := parseArgs(args)
	h, err := positive(a, "height", 0)
	if err != nil {
		return nil, err
	}
	r, err := positive(a, "radius", 1)
	if err != nil {
		return nil, err
	}
	return &sexpSolid{
		solid: st.kernel.Cylinder(h, r),
		desc:  fmt.Sprintf("(cylinder :height %g :radius %g)", h, r),
	}, nil
}

// (sphere r) or (sphere :radius r), centred on the origin.
func sphereBuiltin(st *scriptState, args []zygo.Sexp) (zygo.Sexp, error) {
	r, err := positive(parseArgs(args), "radius", 0)
	if err != nil {
		return nil, err
	}
	return &sexpSolid{solid: st.kernel.Sphere(r), desc: fmt.Sprintf("(sphere %g)", r)}, nil
}

// (vec3 x y z)
func vec3Builtin(_ *scriptState, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 3 {
		return nil, fmt.Errorf("requires exactly 3 arguments, got %d", len(args))
	}
	var c [3]float64
	for i, arg := range args {
		v, err := toFloat64(arg)
		if err != nil {
			return nil, fmt.Errorf("%c: %w", "xyz"[i], err)
		}
		c[i] = v
	}
	return &sexpVec3{vec: r3.Vec{X: c[0], Y: c[1], Z: c[2]}}, nil
}

// (translate s (vec3 ...)) or (translate s :by (vec3 ...)); rotate takes
// Euler angles in degrees the same way.
func transformBuiltin(op string) builtin {
	return func(st *scriptState, args []zygo.Sexp) (zygo.Sexp, error) {
		a := parseArgs(args)
		if len(a.positional) < 1 {
			return nil, errors.New("requires a solid as first argument")
		}
		s, err := toSolid(a.positional[0])
		if err != nil {
			return nil, err
		}
		arg, ok := a.kw["by"]
		if !ok {
			if len(a.positional) < 2 {
				return nil, errors.New("requires a vec3 offset")
			}
			arg = a.positional[1]
		}
		v, err := toVec3(arg)
		if err != nil {
			return nil, err
		}

		var out kernel.Solid
		if op == "translate" {
			out = st.kernel.Translate(s.solid, v.X, v.Y, v.Z)
		} else {
			out = st.kernel.Rotate(s.solid, v.X, v.Y, v.Z)
		}
		return &sexpSolid{
			solid: out,
			desc:  fmt.Sprintf("(%s %s (vec3 %g %g %g))", op, s.desc, v.X, v.Y, v.Z),
		}, nil
	}
}

// (union a b ...), (difference a b ...) subtracting every later solid
// from the first, (intersection a b ...).
func booleanBuiltin(op string) builtin {
	return func(st *scriptState, args []zygo.Sexp) (zygo.Sexp, error) {
		if len(args) < 2 {
			return nil, fmt.Errorf("requires at least 2 solids, got %d", len(args))
		}
		solids := make([]*sexpSolid, len(args))
		descs := make([]string, len(args))
		for i, arg := range args {
			s, err := toSolid(arg)
			if err != nil {
				return nil, fmt.Errorf("argument %d: %w", i+1, err)
			}
			solids[i], descs[i] = s, s.desc
		}

		acc := solids[0].solid
		for _, s := range solids[1:] {
			switch op {
			case "union":
				acc = st.kernel.Union(acc, s.solid)
			case "difference":
				acc = st.kernel.Difference(acc, s.solid)
			default:
				acc = st.kernel.Intersection(acc, s.solid)
			}
		}
		return &sexpSolid{solid: acc, desc: fmt.Sprintf("(%s %s)", op, strings.Join(descs, " "))}, nil
	}
}

// (model s) selects s as the script's result and returns it.
func modelBuiltin(st *scriptState, args []zygo.Sexp) (zygo.Sexp, error) {
	if len(args) != 1 {
		return nil, fmt.Errorf("requires exactly 1 solid, got %d", len(args))
	}
	s, err := toSolid(args[0])
	if err != nil {
		return nil, err
	}
	st.model = s.solid
	return s, nil
}
