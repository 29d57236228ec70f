package engine

import (
	"strings"
	"testing"

	"github.com/chazu/sla/pkg/kernel"
)

func TestPreprocessSource(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		expect string
	}{
		{"simple keyword", `(sphere :radius 4)`, `(sphere "__kw_radius" 4)`},
		{"multiple keywords", `(cylinder :height 10 :radius 2)`, `(cylinder "__kw_height" 10 "__kw_radius" 2)`},
		{"keyword in string preserved", `"thing with :keyword inside"`, `"thing with :keyword inside"`},
		{"escaped quote in string", `"a \" :b" :c`, `"a \" :b" "__kw_c"`},
		{"raw string preserved", "`:x-y`", "`:x-y`"},
		{"assignment operator preserved", `(def x := 10)`, `(def x := 10)`},
		{"kebab-case identifier", `(def base-plate 1)`, `(def base_plate 1)`},
		{"minus operator preserved", `(- 10 5)`, `(- 10 5)`},
		{"negative literal preserved", `(vec3 -1 0 -2.5)`, `(vec3 -1 0 -2.5)`},
		{"comment converted", `;; comment with :keyword`, `// comment with :keyword`},
		{"single semicolon comment", `; simple comment`, `// simple comment`},
		{"hyphen in keyword preserved", `:head-dia`, `"__kw_head-dia"`},
		{"unterminated string", `"open :x`, `"open :x`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := preprocessSource(tt.input); got != tt.expect {
				t.Errorf("preprocessSource(%q) = %q, want %q", tt.input, got, tt.expect)
			}
		})
	}
}

func evalSolid(t *testing.T, source string) kernel.Solid {
	t.Helper()
	s, evalErrs, err := newTestEngine().Evaluate(source)
	if err != nil {
		t.Fatalf("fatal error: %v", err)
	}
	if len(evalErrs) > 0 {
		t.Fatalf("eval errors: %v", evalErrs)
	}
	if s == nil {
		t.Fatal("expected a solid")
	}
	return s
}

func checkBounds(t *testing.T, s kernel.Solid, wantMin, wantMax [3]float64) {
	t.Helper()
	lo, hi := s.BoundingBox()
	for i := 0; i < 3; i++ {
		if !near(lo[i], wantMin[i]) || !near(hi[i], wantMax[i]) {
			t.Fatalf("bounds = %v..%v, want %v..%v", lo, hi, wantMin, wantMax)
		}
	}
}

func TestBoxBuiltin(t *testing.T) {
	checkBounds(t, evalSolid(t, `(box 10 20 5)`), [3]float64{0, 0, 0}, [3]float64{10, 20, 5})
	checkBounds(t, evalSolid(t, `(box :x 1 :y 2 :z 3)`), [3]float64{0, 0, 0}, [3]float64{1, 2, 3})
}

func TestPrimitiveBuiltins(t *testing.T) {
	checkBounds(t, evalSolid(t, `(sphere 3)`), [3]float64{-3, -3, -3}, [3]float64{3, 3, 3})
	checkBounds(t, evalSolid(t, `(sphere :radius 2)`), [3]float64{-2, -2, -2}, [3]float64{2, 2, 2})
	checkBounds(t, evalSolid(t, `(cylinder :height 10 :radius 2)`), [3]float64{-2, -2, -5}, [3]float64{2, 2, 5})
	checkBounds(t, evalSolid(t, `(cylinder 4 1)`), [3]float64{-1, -1, -2}, [3]float64{1, 1, 2})
}

func TestTranslateBuiltin(t *testing.T) {
	checkBounds(t, evalSolid(t, `(translate (box 2 2 2) (vec3 1 -1 5))`),
		[3]float64{1, -1, 5}, [3]float64{3, 1, 7})
	checkBounds(t, evalSolid(t, `(translate (sphere 1) :by (vec3 0 0 1))`),
		[3]float64{-1, -1, 0}, [3]float64{1, 1, 2})
}

func TestRotateBuiltin(t *testing.T) {
	// A quarter turn about Z maps the X extent onto Y.
	s := evalSolid(t, `(rotate (translate (box 4 2 2) (vec3 -2 -1 -1)) (vec3 0 0 90))`)
	checkBounds(t, s, [3]float64{-1, -2, -1}, [3]float64{1, 2, 1})
}

func TestBooleanBuiltins(t *testing.T) {
	u := evalSolid(t, `(union (box 1 1 1) (translate (box 1 1 1) (vec3 3 0 0)) (sphere 0.5))`)
	checkBounds(t, u, [3]float64{-0.5, -0.5, -0.5}, [3]float64{4, 1, 1})

	d := evalSolid(t, `(difference (box 4 4 4) (sphere 1) (translate (sphere 1) (vec3 4 4 4)))`)
	checkBounds(t, d, [3]float64{0, 0, 0}, [3]float64{4, 4, 4})

	evalSolid(t, `(intersection (box 2 2 2) (sphere 1.5))`)
}

func TestModelSelectsResult(t *testing.T) {
	source := `
; the base is what gets printed
(def base-plate (box 10 10 2))
(model base-plate)
(sphere 100)
`
	checkBounds(t, evalSolid(t, source), [3]float64{0, 0, 0}, [3]float64{10, 10, 2})
}

func TestVariablesAndArithmetic(t *testing.T) {
	source := `
(def w 8)
(def h (* w 2))
(box w h (/ w 4))
`
	checkBounds(t, evalSolid(t, source), [3]float64{0, 0, 0}, [3]float64{8, 16, 2})
}

func TestBuiltinErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{"box missing dimension", `(box 1 2)`, "box"},
		{"box negative", `(box 1 -2 3)`, "positive"},
		{"sphere non-number", `(sphere "big")`, "expected number"},
		{"cylinder missing radius", `(cylinder :height 3)`, "radius"},
		{"vec3 arity", `(vec3 1 2)`, "exactly 3"},
		{"translate non-solid", `(translate 5 (vec3 0 0 0))`, "expected solid"},
		{"translate missing offset", `(translate (box 1 1 1))`, "vec3"},
		{"rotate bad offset", `(rotate (box 1 1 1) 90)`, "expected vec3"},
		{"union single", `(union (box 1 1 1))`, "at least 2"},
		{"difference bad arg", `(difference (box 1 1 1) 3)`, "argument 2"},
		{"model arity", `(model)`, "exactly 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, evalErrs, err := newTestEngine().Evaluate(tt.source)
			if err != nil {
				t.Fatalf("expected eval error, got fatal: %v", err)
			}
			if s != nil {
				t.Fatal("expected no solid")
			}
			if len(evalErrs) == 0 {
				t.Fatal("expected an eval error")
			}
			if !strings.Contains(evalErrs[0].Message, tt.want) {
				t.Errorf("message %q does not mention %q", evalErrs[0].Message, tt.want)
			}
		})
	}
}
