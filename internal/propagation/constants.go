package propagation

import "math"

// WGS-72 constants, the gravity model NORAD mean elements are fitted against.
// The site ellipsoid in internal/transform is WGS-84; the two deliberately
// differ, matching the reference SGP4 formulation.
const (
	twoPi  = 2.0 * math.Pi
	halfPi = math.Pi / 2.0

	// xke is sqrt(GM) expressed in (Earth radii)^1.5 per minute.
	xke = 7.43669161331734132e-2

	// earthRadiusKm is the WGS-72 equatorial radius.
	earthRadiusKm = 6378.135
	earthRadiusM  = earthRadiusKm * 1000.0

	// earthRotRadPerMin is Earth's rotation rate in radians/minute.
	earthRotRadPerMin = 4.37526908801129966e-3

	j2    = 1.082616e-3
	j3    = -2.53881e-6
	j4    = -1.65597e-6
	j3oj2 = j3 / j2

	x2o3 = 2.0 / 3.0

	// vkmPerSec converts ER/min radial rates into km/s.
	vkmPerSec = earthRadiusKm * xke / 60.0

	// s0 is the default density-function altitude parameter: 78 km offset in
	// Earth radii from the geocenter.
	s0 = 78.0/earthRadiusKm + 1.0

	// qzms2t is ((120 − 78) km / R_⊕)⁴.
	q0 = 120.0
	qs = 78.0

	// Deep-space lunisolar constants: solar/lunar mean motions (rad/min) and
	// orbital eccentricities.
	zns = 1.19459e-5
	zes = 0.01675
	znl = 1.5835218e-4
	zel = 0.05490

	// deepSpacePeriodMinutes is the period threshold beyond which lunisolar
	// and resonance effects are modeled.
	deepSpacePeriodMinutes = 225.0
)

var qzms2t = math.Pow((q0-qs)/earthRadiusKm, 4.0)

// jd1950 is the Julian Date of 1950 January 0.0 (1949 December 31, 0h UT),
// the reference epoch of the lunisolar argument polynomials.
const jd1950 = 2433281.5
