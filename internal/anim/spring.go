package anim

import "math"

// springValue evaluates a damped spring from start toward target at the
// given local frame. The solution is closed-form, evaluated directly at the
// requested frame rather than integrated step by step, so seeking backwards
// or sampling frames out of order yields exact, side-effect-free results.
//
// Intermediate keyframes are deliberately ignored in spring mode: the track
// is reduced to (first value, last value) and the spring supplies the
// trajectory between them.
func springValue(localFrame, startFrame, start, target float64, opts Options) float64 {
	if localFrame <= startFrame {
		return start
	}

	fps := float64(opts.FPS)
	if fps <= 0 {
		fps = defaultFPS
	}
	stiffness := opts.Stiffness
	if stiffness <= 0 {
		stiffness = defaultStiffness
	}
	damping := opts.Damping
	if damping <= 0 {
		damping = defaultDamping
	}
	mass := opts.Mass
	if mass <= 0 {
		mass = defaultMass
	}

	t := (localFrame - startFrame) / fps // seconds since the spring launched

	omega := math.Sqrt(stiffness / mass)         // natural frequency
	zeta := damping / (2 * math.Sqrt(stiffness*mass)) // damping ratio
	delta := start - target

	var displacement float64
	switch {
	case zeta < 1:
		// Underdamped: decaying oscillation around the target.
		omegaD := omega * math.Sqrt(1-zeta*zeta)
		envelope := math.Exp(-zeta * omega * t)
		displacement = envelope * delta * (math.Cos(omegaD*t) + (zeta*omega/omegaD)*math.Sin(omegaD*t))
	case zeta == 1:
		// Critically damped: fastest non-oscillating approach.
		displacement = delta * (1 + omega*t) * math.Exp(-omega*t)
	default:
		// Overdamped: sum of two decaying exponentials.
		s := omega * math.Sqrt(zeta*zeta-1)
		r1 := -zeta*omega + s
		r2 := -zeta*omega - s
		c2 := (r1 * delta) / (r1 - r2)
		c1 := delta - c2
		displacement = c1*math.Exp(r1*t) + c2*math.Exp(r2*t)
	}

	return target + displacement
}
