package anim

// CubicBezier evaluates a CSS-style cubic-bezier easing curve at time
// progress t in [0,1]. ctrl holds (x1, y1, x2, y2); the curve's endpoints
// are fixed at (0,0) and (1,1). The bezier is parametric, so the x
// coordinate is inverted numerically first (Newton iterations with a
// bisection fallback), then y is sampled at the found parameter.
func CubicBezier(ctrl [4]float64, t float64) float64 {
	if t <= 0 {
		return 0
	}
	if t >= 1 {
		return 1
	}

	x1, y1, x2, y2 := ctrl[0], ctrl[1], ctrl[2], ctrl[3]

	// A linear curve short-circuits exactly.
	if x1 == y1 && x2 == y2 {
		return t
	}

	u := solveCurveX(x1, x2, t)
	return sampleCurve(y1, y2, u)
}

// sampleCurve evaluates one axis of the bezier at parameter u, with
// endpoint coordinates 0 and 1 folded into the polynomial form.
func sampleCurve(p1, p2, u float64) float64 {
	// coefficients of the cubic in Horner form
	c := 3 * p1
	b := 3*(p2-p1) - c
	a := 1 - c - b
	return ((a*u+b)*u + c) * u
}

func sampleCurveDerivative(p1, p2, u float64) float64 {
	c := 3 * p1
	b := 3*(p2-p1) - c
	a := 1 - c - b
	return (3*a*u+2*b)*u + c
}

const (
	newtonIterations = 8
	solveEpsilon     = 1e-6
)

// solveCurveX finds the parameter u such that x(u) == x.
func solveCurveX(x1, x2, x float64) float64 {
	// Newton's method converges in a handful of steps for well-behaved
	// easing curves.
	u := x
	for i := 0; i < newtonIterations; i++ {
		err := sampleCurve(x1, x2, u) - x
		if err < solveEpsilon && err > -solveEpsilon {
			return u
		}
		d := sampleCurveDerivative(x1, x2, u)
		if d < 1e-6 && d > -1e-6 {
			break
		}
		u -= err / d
	}

	// Bisection fallback for flat-derivative regions.
	lo, hi := 0.0, 1.0
	u = x
	for hi-lo > solveEpsilon {
		v := sampleCurve(x1, x2, u)
		if v < x {
			lo = u
		} else {
			hi = u
		}
		u = (lo + hi) / 2
	}
	return u
}
