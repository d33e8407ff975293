package transform

import (
	"math"

	"github.com/skytrack/passpredict/internal/timesys"
)

// OmegaEarth is Earth's rotation rate in rad/s (IAU value).
const OmegaEarth = 7.292115e-5

const twoPi = 2.0 * math.Pi

// GMST returns Greenwich Mean Sidereal Time in radians for the given UT1
// Julian Date, reduced to [0, 2π).
//
// The polynomial is the IAU-82 expression evaluated in days from J2000 at the
// preceding 0h UT, plus the fractional-day rotation at the sidereal rate
// (IERS Technical Note 21):
//
//	α = 100.460618375 + 0.98564736628633356·T + 2.90788e-13·T² − 5.3e-22·T³
//
// with T in days and α in degrees.
func GMST(jd float64) float64 {
	day, frac := splitAtMidnight(jd)

	dt := day - timesys.J2000
	gmst := (100.460618375 +
		0.98564736628633356*dt +
		2.90788e-13*dt*dt -
		5.3e-22*dt*dt*dt) * deg2rad

	tc := dt / 36525.0
	rate := 1.002737909350795 + 5.9006e-11*tc - 5.9e-15*tc*tc
	gmst += rate * frac * twoPi

	return wrapTwoPi(gmst)
}

// GAST returns Greenwich Apparent Sidereal Time in radians: GMST plus the
// equation-of-equinoxes approximation driven by the lunar ascending node.
func GAST(jd float64) float64 {
	gast := GMST(jd)

	t := (jd - timesys.J2000) / 36525.0
	omega := math.Mod(2.1824391966-33.7570446126362*t+3.62262478e-5*t*t, twoPi)
	if omega < 0.0 {
		omega += twoPi
	}
	gast += 1.279908e-8*math.Sin(omega) + 3.054326e-10*math.Sin(2.0*omega)

	return wrapTwoPi(gast)
}

// splitAtMidnight separates a Julian Date into the JD of the preceding 0h UT
// and the elapsed fraction of that day. Julian days begin at noon, so the
// 0.5-day offset moves in whichever direction keeps the fraction in [0, 1).
func splitAtMidnight(jd float64) (day, frac float64) {
	day = math.Trunc(jd)
	frac = jd - day
	if frac >= 0.5 {
		day += 0.5
		frac -= 0.5
	} else {
		day -= 0.5
		frac += 0.5
	}
	return day, frac
}

func wrapTwoPi(angle float64) float64 {
	angle = math.Mod(angle, twoPi)
	if angle < 0.0 {
		angle += twoPi
	}
	return angle
}
