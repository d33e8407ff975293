// Package transform provides the coordinate frame machinery between the
// propagator and the observer: sidereal time, the TEME (True Equator Mean
// Equinox) to ECEF rotation, geodetic conversions, and topocentric look
// angles.
//
// The TEME→ECEF rotation uses GMST only, ignoring polar motion. That costs
// tens of metres at most, well under the error of the mean-element theory
// feeding it.
package transform

import "math"

// StateTEME is a satellite position and velocity in the TEME inertial frame.
type StateTEME struct {
	X, Y, Z    float64 // meters
	VX, VY, VZ float64 // m/s
}

// StateECEF is a satellite position and velocity in the Earth-fixed frame.
type StateECEF struct {
	X, Y, Z    float64 // meters
	VX, VY, VZ float64 // m/s
}

// TEMEToECEF rotates a TEME state into ECEF at the given UT1 Julian Date.
func TEMEToECEF(teme StateTEME, jd float64) StateECEF {
	return TEMEToECEFWithGMST(teme, GMST(jd))
}

// TEMEToECEFWithGMST rotates TEME to ECEF using a precomputed GMST angle in
// radians. When many satellites are propagated to the same instant, GMST is
// computed once and shared.
//
//	r_ECEF = R3(θ)·r_TEME
//	v_ECEF = R3(θ)·v_TEME − ω_⊕ × r_ECEF
func TEMEToECEFWithGMST(teme StateTEME, gmst float64) StateECEF {
	sinG := math.Sin(gmst)
	cosG := math.Cos(gmst)

	x := teme.X*cosG + teme.Y*sinG
	y := -teme.X*sinG + teme.Y*cosG
	z := teme.Z

	// ω_⊕ × r_ECEF = (−ω·y, ω·x, 0)
	vx := teme.VX*cosG + teme.VY*sinG + OmegaEarth*y
	vy := -teme.VX*sinG + teme.VY*cosG - OmegaEarth*x
	vz := teme.VZ

	return StateECEF{X: x, Y: y, Z: z, VX: vx, VY: vy, VZ: vz}
}

// ValidateECEF reports whether an ECEF position is physically plausible for
// an Earth-orbiting satellite: finite components and a geocentric distance
// between 6200 km and 50000 km.
func ValidateECEF(pos StateECEF) bool {
	for _, v := range [3]float64{pos.X, pos.Y, pos.Z} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	const (
		minRadius = 6200.0e3
		maxRadius = 50000.0e3
	)
	return mag >= minRadius && mag <= maxRadius
}
