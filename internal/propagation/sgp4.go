// Package propagation implements the SGP4/SDP4 analytic orbit propagator on
// NORAD mean elements, and the orchestration to run it across whole TLE
// datasets.
//
// A Propagator is initialized once per satellite. After initialization the
// only mutable state is the deep-space resonance integrator, so a Propagator
// must not be shared between goroutines; the worker pool hands each
// satellite to exactly one worker.
package propagation

import (
	"math"

	"github.com/skytrack/passpredict/internal/tle"
	"github.com/skytrack/passpredict/internal/transform"
)

// Regime classifies the propagation branches selected at initialization.
type Regime int

const (
	// RegimeNormal is the full near-Earth model with the D₂–D₄ drag
	// polynomial terms.
	RegimeNormal Regime = iota
	// RegimeLowPerigee (perigee below 220 km) truncates the drag polynomial.
	RegimeLowPerigee
	// RegimeDeepSpace (period ≥ 225 min) adds lunisolar and resonance terms.
	RegimeDeepSpace
)

func (r Regime) String() string {
	switch r {
	case RegimeLowPerigee:
		return "low-perigee"
	case RegimeDeepSpace:
		return "deep-space"
	default:
		return "normal"
	}
}

// Propagator holds the per-satellite state derived once from mean elements.
type Propagator struct {
	catalog int
	epochJD float64
	regime  Regime

	// Epoch elements; mean motion is the recovered (un-Kozai'd) value in
	// rad/min and the semi-major axis is in Earth radii.
	e0, i0, raan0, argp0, m0 float64
	no, ao, bstar            float64

	sinI0, cosI0, cosI0sq        float64
	con41, con42, x1mth2, x7thm1 float64

	// Secular rates and drag coefficients.
	mdot, argpdot, nodedot, xpidot float64
	omgcof, xmcof, nodecf          float64
	eta, cc1, cc4, cc5             float64
	d2, d3, d4                     float64
	t2cof, t3cof, t4cof, t5cof     float64
	delmo, sinmao                  float64
	xlcof, aycof                   float64

	// simple truncates the drag polynomial; set for low perigee and for
	// deep space.
	simple bool

	gsto float64
	deep *deepSpace
}

// NewFromElements initializes a propagator from parsed mean elements.
// Initialization fails on a perigee inside the Earth or an eccentricity
// outside [0, 0.999999].
func NewFromElements(m *tle.MeanElements) (*Propagator, error) {
	p := &Propagator{
		catalog: m.CatalogNumber,
		epochJD: m.EpochJD,
		e0:      m.Eccentricity,
		i0:      m.Inclination,
		raan0:   m.RAAN,
		argp0:   m.ArgPerigee,
		m0:      m.MeanAnomaly,
		bstar:   m.Bstar,
		no:      m.MeanMotion,
	}
	if err := p.initialize(); err != nil {
		return nil, err
	}
	return p, nil
}

// NewFromLines parses a single two-line record and initializes a propagator
// from it. Checksum mismatches are treated strictly.
func NewFromLines(line1, line2 string) (*Propagator, error) {
	var parser tle.Parser
	elem, err := parser.ParseRecord("", line1, line2)
	if err != nil {
		return nil, err
	}
	return NewFromElements(&elem)
}

// Catalog returns the NORAD catalog number.
func (p *Propagator) Catalog() int { return p.catalog }

// EpochJD returns the TLE epoch as a Julian Date.
func (p *Propagator) EpochJD() float64 { return p.epochJD }

// Regime returns the propagation regime chosen at initialization.
func (p *Propagator) Regime() Regime { return p.regime }

// PerigeeApogeeHeights returns the epoch perigee and apogee heights in
// meters above the WGS-72 equatorial radius.
func (p *Propagator) PerigeeApogeeHeights() (perigeeM, apogeeM float64) {
	return (p.ao*(1.0-p.e0) - 1.0) * earthRadiusM, (p.ao*(1.0+p.e0) - 1.0) * earthRadiusM
}

// MeanSemiMajorAxis returns the drag-adjusted mean semi-major axis at
// tsince minutes from epoch, in meters. Deep-space resonance contributions
// to the mean motion are not included; for drag-free elements the value is
// constant.
func (p *Propagator) MeanSemiMajorAxis(tsince float64) float64 {
	t2 := tsince * tsince
	tempa := 1.0 - p.cc1*tsince
	if !p.simple {
		tempa -= p.d2*t2 + p.d3*t2*tsince + p.d4*t2*t2
	}
	return p.ao * tempa * tempa * earthRadiusM
}

// Reset restores the deep-space resonance integrator to its epoch state.
// Near-Earth propagators carry no mutable state and Reset is a no-op.
// Callers that need per-call determinism for deep-space satellites should
// Reset before each propagation or always propagate monotonically.
func (p *Propagator) Reset() {
	if p.deep != nil {
		p.deep.resetIntegrator(p.no)
	}
}

func (p *Propagator) initialize() error {
	if p.e0 > 0.999999 || p.e0 < 0.0 {
		return &ModelError{Kind: FaultEccentricityOutOfRange, Catalog: p.catalog, Value: p.e0}
	}

	eccSq := p.e0 * p.e0
	omeosq := 1.0 - eccSq
	rteosq := math.Sqrt(omeosq)
	p.cosI0 = math.Cos(p.i0)
	p.cosI0sq = p.cosI0 * p.cosI0

	// Un-Kozai the mean motion.
	a1 := math.Pow(xke/p.no, x2o3)
	d1 := 0.75 * j2 * (3.0*p.cosI0sq - 1.0) / (rteosq * omeosq)
	del1 := d1 / (a1 * a1)
	a0 := a1 * (1.0 - del1*del1 - del1*(1.0/3.0+134.0*del1*del1/81.0))
	del0 := d1 / (a0 * a0)

	p.no /= 1.0 + del0
	p.ao = math.Pow(xke/p.no, x2o3)

	p.sinI0 = math.Sin(p.i0)
	po := p.ao * omeosq
	p.con42 = 1.0 - 5.0*p.cosI0sq
	p.con41 = -p.con42 - p.cosI0sq - p.cosI0sq
	posq := po * po
	rp := p.ao * (1.0 - p.e0) // perigee radius, ER

	if rp < 1.0 {
		return &ModelError{Kind: FaultPerigeeInsideEarth, Catalog: p.catalog, Value: rp}
	}

	p.gsto = transform.GMST(p.epochJD)

	perigeeKm := (rp - 1.0) * earthRadiusKm

	p.regime = RegimeNormal
	if perigeeKm < 220.0 {
		p.regime = RegimeLowPerigee
		p.simple = true
	}

	// Density-function fitting constants, lowered for low perigees.
	s4 := s0
	qzms24 := qzms2t
	if perigeeKm < 156.0 {
		s4 = perigeeKm - 78.0
		if perigeeKm < 98.0 {
			s4 = 20.0
		}
		qzms24 = math.Pow((q0-s4)/earthRadiusKm, 4.0)
		s4 = s4/earthRadiusKm + 1.0
	}

	pinvsq := 1.0 / posq
	tsi := 1.0 / (p.ao - s4)
	p.eta = p.ao * p.e0 * tsi
	etasq := p.eta * p.eta
	eeta := p.e0 * p.eta
	psisq := math.Abs(1.0 - etasq)
	coef := qzms24 * math.Pow(tsi, 4.0)
	coef1 := coef / math.Pow(psisq, 3.5)

	cc2 := coef1 * p.no * (p.ao*(1.0+1.5*etasq+eeta*(4.0+etasq)) +
		0.375*j2*tsi/psisq*p.con41*(8.0+3.0*etasq*(8.0+etasq)))
	p.cc1 = p.bstar * cc2

	cc3 := 0.0
	if p.e0 > 1.0e-4 {
		cc3 = -2.0 * coef * tsi * j3oj2 * p.no * p.sinI0 / p.e0
	}

	p.x1mth2 = 1.0 - p.cosI0sq
	p.cc4 = 2.0 * p.no * coef1 * p.ao * omeosq *
		(p.eta*(2.0+0.5*etasq) + p.e0*(0.5+2.0*etasq) -
			j2*tsi/(p.ao*psisq)*
				(-3.0*p.con41*(1.0-2.0*eeta+etasq*(1.5-0.5*eeta))+
					0.75*p.x1mth2*(2.0*etasq-eeta*(1.0+etasq))*math.Cos(2.0*p.argp0)))
	p.cc5 = 2.0 * coef1 * p.ao * omeosq * (1.0 + 2.75*(etasq+eeta) + eeta*etasq)

	cosI04 := p.cosI0sq * p.cosI0sq
	temp1 := 1.5 * j2 * pinvsq * p.no
	temp2 := 0.5 * temp1 * j2 * pinvsq
	temp3 := -0.46875 * j4 * pinvsq * pinvsq * p.no

	p.mdot = p.no + 0.5*temp1*rteosq*p.con41 +
		0.0625*temp2*rteosq*(13.0-78.0*p.cosI0sq+137.0*cosI04)
	p.argpdot = -0.5*temp1*p.con42 +
		0.0625*temp2*(7.0-114.0*p.cosI0sq+395.0*cosI04) +
		temp3*(3.0-36.0*p.cosI0sq+49.0*cosI04)
	xhdot1 := -temp1 * p.cosI0
	p.nodedot = xhdot1 + (0.5*temp2*(4.0-19.0*p.cosI0sq)+
		2.0*temp3*(3.0-7.0*p.cosI0sq))*p.cosI0
	p.xpidot = p.argpdot + p.nodedot

	p.omgcof = p.bstar * cc3 * math.Cos(p.argp0)
	p.xmcof = 0.0
	if p.e0 > 1.0e-4 {
		p.xmcof = -x2o3 * coef * p.bstar / eeta
	}
	p.nodecf = 3.5 * omeosq * xhdot1 * p.cc1

	p.t2cof = 1.5 * p.cc1
	p.xlcof, p.aycof = longPeriodCoefficients(p.sinI0, p.cosI0)
	p.delmo = math.Pow(1.0+p.eta*math.Cos(p.m0), 3.0)
	p.sinmao = math.Sin(p.m0)
	p.x7thm1 = 7.0*p.cosI0sq - 1.0

	if twoPi/p.no >= deepSpacePeriodMinutes {
		p.regime = RegimeDeepSpace
		p.simple = true
		p.deep = newDeepSpace(p)
	}

	if p.simple {
		return nil
	}

	cc1sq := p.cc1 * p.cc1
	p.d2 = 4.0 * p.ao * tsi * cc1sq
	temp := p.d2 * tsi * p.cc1 / 3.0
	p.d3 = (17.0*p.ao + s4) * temp
	p.d4 = 0.5 * temp * p.ao * tsi * (221.0*p.ao + 31.0*s4) * p.cc1

	p.t3cof = p.d2 + 2.0*cc1sq
	p.t4cof = 0.25 * (3.0*p.d3 + p.cc1*(12.0*p.d2+10.0*cc1sq))
	p.t5cof = 0.2 * (3.0*p.d4 + 12.0*p.cc1*p.d3 + 6.0*p.d2*p.d2 +
		15.0*cc1sq*(2.0*p.d2+cc1sq))

	return nil
}

// longPeriodCoefficients evaluates the J₃/J₂ long-period terms for the given
// inclination. The 1.5e-12 floor keeps the xlcof denominator finite for
// exactly retrograde equatorial orbits.
func longPeriodCoefficients(sinI, cosI float64) (xlcof, aycof float64) {
	den := 1.0 + cosI
	if math.Abs(den) < 1.5e-12 {
		den = 1.5e-12
	}
	xlcof = -0.25 * j3oj2 * sinI * (3.0 + 5.0*cosI) / den
	aycof = -0.5 * j3oj2 * sinI
	return xlcof, aycof
}

// PropagateJD propagates to an absolute UT1 Julian Date and returns the TEME
// state in meters and meters/second.
func (p *Propagator) PropagateJD(jd float64) (transform.StateTEME, error) {
	return p.Propagate((jd - p.epochJD) * 1440.0)
}

// Propagate advances the mean elements tsince minutes from the TLE epoch and
// returns the osculating TEME state in meters and meters/second.
func (p *Propagator) Propagate(tsince float64) (transform.StateTEME, error) {
	t := tsince
	t2 := t * t

	// Secular gravity.
	xmdf := p.m0 + p.mdot*t
	argpdf := p.argp0 + p.argpdot*t
	nodedf := p.raan0 + p.nodedot*t

	mm := xmdf
	argpm := argpdf
	nodem := nodedf + p.nodecf*t2

	// Secular drag.
	tempa := 1.0 - p.cc1*t
	tempe := p.bstar * p.cc4 * t
	templ := p.t2cof * t2

	if !p.simple {
		t3 := t2 * t
		t4 := t3 * t
		delomg := p.omgcof * t
		delm := p.xmcof * (math.Pow(1.0+p.eta*math.Cos(xmdf), 3.0) - p.delmo)
		temp := delomg + delm
		mm = xmdf + temp
		argpm = argpdf - temp
		tempa = tempa - p.d2*t2 - p.d3*t3 - p.d4*t4
		tempe += p.bstar * p.cc5 * (math.Sin(mm) - p.sinmao)
		templ += p.t3cof*t3 + t4*(p.t4cof+t*p.t5cof)
	}

	em := p.e0
	inclm := p.i0
	nm := p.no

	if p.deep != nil {
		p.deep.secular(t, &em, &inclm, &argpm, &nodem, &mm, &nm)
	}

	am := math.Pow(xke/nm, x2o3) * tempa * tempa
	nm = xke / math.Pow(am, 1.5)
	em -= tempe
	if em >= 1.0 || em < -1.0e-3 {
		return transform.StateTEME{}, &ModelError{
			Kind: FaultEccentricityOutOfRange, Catalog: p.catalog, TSince: t, Value: em,
		}
	}
	if em < 0.0 {
		em = 1.0e-6
	}
	mm += p.no * templ
	xlm := mm + argpm + nodem

	nodem = math.Mod(nodem, twoPi)
	argpm = math.Mod(argpm, twoPi)
	xlm = math.Mod(xlm, twoPi)
	mm = math.Mod(xlm-argpm-nodem, twoPi)

	// Lunar-solar periodics.
	ep := em
	xincp := inclm
	argpp := argpm
	nodep := nodem
	mp := mm

	if p.deep != nil {
		p.deep.periodic(t, &ep, &xincp, &nodep, &argpp, &mp)
		if xincp < 0.0 {
			xincp = -xincp
			nodep += math.Pi
			argpp -= math.Pi
		}
	}
	if ep < 0.0 || ep > 1.0 {
		return transform.StateTEME{}, &ModelError{
			Kind: FaultEccentricityOutOfRange, Catalog: p.catalog, TSince: t, Value: ep,
		}
	}

	// Long-period periodics. Deep-space inclinations move, so the J₃/J₂
	// coefficients follow the perturbed inclination.
	sinip := p.sinI0
	cosip := p.cosI0
	xlcof := p.xlcof
	aycof := p.aycof
	if p.deep != nil {
		sinip = math.Sin(xincp)
		cosip = math.Cos(xincp)
		xlcof, aycof = longPeriodCoefficients(sinip, cosip)
	}

	axnl := ep * math.Cos(argpp)
	temp := 1.0 / (am * (1.0 - ep*ep))
	aynl := ep*math.Sin(argpp) + temp*aycof
	xl := mp + argpp + nodep + temp*xlcof*axnl

	// Kepler's equation for the eccentric longitude.
	u := math.Mod(xl-nodep, twoPi)
	eo1 := u
	var sineo1, coseo1 float64
	tem5 := 1.0
	for iter := 0; iter < 10 && math.Abs(tem5) >= 1.0e-12; iter++ {
		sineo1 = math.Sin(eo1)
		coseo1 = math.Cos(eo1)
		tem5 = 1.0 - coseo1*axnl - sineo1*aynl
		tem5 = (u - aynl*coseo1 + axnl*sineo1 - eo1) / tem5
		eo1 += tem5
	}
	if math.Abs(tem5) >= 1.0e-12 {
		return transform.StateTEME{}, &ModelError{
			Kind: FaultConvergenceFailure, Catalog: p.catalog, TSince: t, Value: math.Abs(tem5),
		}
	}

	// Short-period preliminary quantities.
	ecose := axnl*coseo1 + aynl*sineo1
	esine := axnl*sineo1 - aynl*coseo1
	el2 := axnl*axnl + aynl*aynl
	pl := am * (1.0 - el2)
	if pl < 0.0 {
		return transform.StateTEME{}, &ModelError{
			Kind: FaultNegativeSemiLatusRectum, Catalog: p.catalog, TSince: t, Value: pl,
		}
	}

	rl := am * (1.0 - ecose)
	rdotl := math.Sqrt(am) * esine / rl
	rvdotl := math.Sqrt(pl) / rl
	betal := math.Sqrt(1.0 - el2)
	temp = esine / (1.0 + betal)
	sinu := am / rl * (sineo1 - aynl - axnl*temp)
	cosu := am / rl * (coseo1 - axnl + aynl*temp)
	su := math.Atan2(sinu, cosu)
	sin2u := (cosu + cosu) * sinu
	cos2u := 1.0 - 2.0*sinu*sinu
	temp = 1.0 / pl
	temp1 := 0.5 * j2 * temp
	temp2 := temp1 * temp

	// Short-period periodics.
	con41 := p.con41
	x1mth2 := p.x1mth2
	x7thm1 := p.x7thm1
	if p.deep != nil {
		cosisq := cosip * cosip
		con41 = 3.0*cosisq - 1.0
		x1mth2 = 1.0 - cosisq
		x7thm1 = 7.0*cosisq - 1.0
	}

	mrt := rl*(1.0-1.5*temp2*betal*con41) + 0.5*temp1*x1mth2*cos2u
	su -= 0.25 * temp2 * x7thm1 * sin2u
	xnode := nodep + 1.5*temp2*cosip*sin2u
	xinc := xincp + 1.5*temp2*cosip*sinip*cos2u
	mvt := rdotl - nm*temp1*x1mth2*sin2u/xke
	rvdot := rvdotl + nm*temp1*(x1mth2*cos2u+1.5*con41)/xke

	if mrt < 1.0 {
		return transform.StateTEME{}, &ModelError{
			Kind: FaultSatelliteDecayed, Catalog: p.catalog, TSince: t, Value: mrt,
		}
	}

	// Orientation vectors and the final state.
	sinsu := math.Sin(su)
	cossu := math.Cos(su)
	sinnode := math.Sin(xnode)
	cosnode := math.Cos(xnode)
	sini := math.Sin(xinc)
	cosi := math.Cos(xinc)

	xmx := -sinnode * cosi
	xmy := cosnode * cosi

	ux := xmx*sinsu + cosnode*cossu
	uy := xmy*sinsu + sinnode*cossu
	uz := sini * sinsu
	vx := xmx*cossu - cosnode*sinsu
	vy := xmy*cossu - sinnode*sinsu
	vz := sini * cossu

	return transform.StateTEME{
		X:  mrt * ux * earthRadiusM,
		Y:  mrt * uy * earthRadiusM,
		Z:  mrt * uz * earthRadiusM,
		VX: (mvt*ux + rvdot*vx) * vkmPerSec * 1000.0,
		VY: (mvt*uy + rvdot*vy) * vkmPerSec * 1000.0,
		VZ: (mvt*uz + rvdot*vz) * vkmPerSec * 1000.0,
	}, nil
}
