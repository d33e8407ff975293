package propagation

import "math"

// Resonance classification for deep-space orbits.
const (
	resonanceNone        = 0
	resonanceSynchronous = 1 // 24-hour band
	resonanceHalfDay     = 2 // 12-hour Molniya-class band
)

// deepSpace carries the lunisolar and resonance model for orbits with
// periods of 225 minutes or more. Everything is immutable after
// construction except the resonance integrator state.
type deepSpace struct {
	// Lunisolar secular rates (per minute).
	dedt, didt, dmdt, domdt, dnodt float64

	// Solar periodic coefficients.
	se2, se3, si2, si3, sl2, sl3, sl4 float64
	sgh2, sgh3, sgh4, sh2, sh3        float64

	// Lunar periodic coefficients.
	ee2, e3, xi2, xi3, xl2, xl3, xl4 float64
	xgh2, xgh3, xgh4, xh2, xh3       float64

	// Epoch phases of the solar and lunar mean anomalies.
	zmos, zmol float64

	irez int

	// Half-day resonance coefficients.
	d2201, d2211, d3210, d3222, d4410 float64
	d4422, d5220, d5232, d5421, d5433 float64
	// Synchronous resonance coefficients and phase offsets.
	del1, del2, del3    float64
	fasx2, fasx4, fasx6 float64

	xlamo, xfact float64

	// Epoch values the integrator and resonance terms reference.
	no, argp0, argpdot, gsto float64

	// Resonance integrator state; advanced across propagations.
	atime, xli, xni float64
}

// newDeepSpace evaluates the lunisolar geometry at the TLE epoch and, when
// the mean motion falls in a resonance band, the tesseral resonance
// coefficients and integrator starting state.
func newDeepSpace(p *Propagator) *deepSpace {
	ds := &deepSpace{
		no:      p.no,
		argp0:   p.argp0,
		argpdot: p.argpdot,
		gsto:    p.gsto,
	}

	sinim := p.sinI0
	cosim := p.cosI0
	emsq := p.e0 * p.e0
	betasq := 1.0 - emsq
	rtemsq := math.Sqrt(betasq)

	// Lunar-solar geometry at epoch: days from 1900 January 0.5, the lunar
	// node regression, and the Moon's orbit orientation.
	day := p.epochJD - jd1950 + 18261.5
	xnodce := math.Mod(4.5236020-9.2422029e-4*day, twoPi)
	stem := math.Sin(xnodce)
	ctem := math.Cos(xnodce)
	zcosil := 0.91375164 - 0.03568096*ctem
	zsinil := math.Sqrt(1.0 - zcosil*zcosil)
	zsinhl := 0.089683511 * stem / zsinil
	zcoshl := math.Sqrt(1.0 - zsinhl*zsinhl)
	gam := 5.8351514 + 0.0019443680*day

	zx := 0.39785416 * stem / zsinil
	zy := zcoshl*ctem + 0.91744867*zsinhl*stem
	zx = math.Atan2(zx, zy)
	zx = gam + zx - xnodce
	zcosgl := math.Cos(zx)
	zsingl := math.Sin(zx)

	ds.zmol = math.Mod(4.7199672+0.22997150*day-gam, twoPi)
	ds.zmos = math.Mod(6.2565837+0.017201977*day, twoPi)

	// Evaluate the same geometric template against the Sun's orbit, then the
	// Moon's. The loop's second pass leaves the lunar values in s*/z*.
	const (
		zcosis = 0.91744867
		zsinis = 0.39785416
		zcosgs = 0.1945905
		zsings = -0.98088458
		c1ss   = 2.9864797e-6
		c1l    = 4.7968065e-7
	)

	sinomm := math.Sin(p.raan0)
	cosomm := math.Cos(p.raan0)
	sinargp := math.Sin(p.argp0)
	cosargp := math.Cos(p.argp0)
	xnoi := 1.0 / p.no

	var (
		s1, s2, s3, s4, s5, s6, s7             float64
		ss1, ss2, ss3, ss4, ss5                float64
		sz1, sz2, sz3                          float64
		sz11, sz12, sz13, sz21, sz22, sz23     float64
		sz31, sz32, sz33                       float64
		z1, z2, z3                             float64
		z11, z12, z13, z21, z22, z23           float64
		z31, z32, z33                          float64
	)

	zcosg, zsing := zcosgs, zsings
	zcosi, zsini := zcosis, zsinis
	zcosh, zsinh := cosomm, sinomm
	cc := c1ss

	for body := 0; body < 2; body++ {
		a1 := zcosg*zcosh + zsing*zcosi*zsinh
		a3 := -zsing*zcosh + zcosg*zcosi*zsinh
		a7 := -zcosg*zsinh + zsing*zcosi*zcosh
		a8 := zsing * zsini
		a9 := zsing*zsinh + zcosg*zcosi*zcosh
		a10 := zcosg * zsini
		a2 := cosim*a7 + sinim*a8
		a4 := cosim*a9 + sinim*a10
		a5 := -sinim*a7 + cosim*a8
		a6 := -sinim*a9 + cosim*a10

		x1 := a1*cosargp + a2*sinargp
		x2 := a3*cosargp + a4*sinargp
		x3 := -a1*sinargp + a2*cosargp
		x4 := -a3*sinargp + a4*cosargp
		x5 := a5 * sinargp
		x6 := a6 * sinargp
		x7 := a5 * cosargp
		x8 := a6 * cosargp

		z31 = 12.0*x1*x1 - 3.0*x3*x3
		z32 = 24.0*x1*x2 - 6.0*x3*x4
		z33 = 12.0*x2*x2 - 3.0*x4*x4
		z1 = 3.0*(a1*a1+a2*a2) + z31*emsq
		z2 = 6.0*(a1*a3+a2*a4) + z32*emsq
		z3 = 3.0*(a3*a3+a4*a4) + z33*emsq
		z11 = -6.0*a1*a5 + emsq*(-24.0*x1*x7-6.0*x3*x5)
		z12 = -6.0*(a1*a6+a3*a5) + emsq*(-24.0*(x2*x7+x1*x8)-6.0*(x3*x6+x4*x5))
		z13 = -6.0*a3*a6 + emsq*(-24.0*x2*x8-6.0*x4*x6)
		z21 = 6.0*a2*a5 + emsq*(24.0*x1*x5-6.0*x3*x7)
		z22 = 6.0*(a4*a5+a2*a6) + emsq*(24.0*(x2*x5+x1*x6)-6.0*(x4*x7+x3*x8))
		z23 = 6.0*a4*a6 + emsq*(24.0*x2*x6-6.0*x4*x8)
		z1 = z1 + z1 + betasq*z31
		z2 = z2 + z2 + betasq*z32
		z3 = z3 + z3 + betasq*z33
		s3 = cc * xnoi
		s2 = -0.5 * s3 / rtemsq
		s4 = s3 * rtemsq
		s1 = -15.0 * p.e0 * s4
		s5 = x1*x3 + x2*x4
		s6 = x2*x3 + x1*x4
		s7 = x2*x4 - x1*x3

		if body == 0 {
			ss1, ss2, ss3, ss4, ss5 = s1, s2, s3, s4, s5
			sz1, sz2, sz3 = z1, z2, z3
			sz11, sz12, sz13 = z11, z12, z13
			sz21, sz22, sz23 = z21, z22, z23
			sz31, sz32, sz33 = z31, z32, z33

			ds.se2 = 2.0 * ss1 * s6
			ds.se3 = 2.0 * ss1 * s7

			zcosg, zsing = zcosgl, zsingl
			zcosi, zsini = zcosil, zsinil
			zcosh = zcoshl*cosomm + zsinhl*sinomm
			zsinh = sinomm*zcoshl - cosomm*zsinhl
			cc = c1l
		}
	}

	// Solar periodic coefficients.
	ds.si2 = 2.0 * ss2 * sz12
	ds.si3 = 2.0 * ss2 * (sz13 - sz11)
	ds.sl2 = -2.0 * ss3 * sz2
	ds.sl3 = -2.0 * ss3 * (sz3 - sz1)
	ds.sl4 = -2.0 * ss3 * (-21.0 - 9.0*emsq) * zes
	ds.sgh2 = 2.0 * ss4 * sz32
	ds.sgh3 = 2.0 * ss4 * (sz33 - sz31)
	ds.sgh4 = -18.0 * ss4 * zes
	ds.sh2 = -2.0 * ss2 * sz22
	ds.sh3 = -2.0 * ss2 * (sz23 - sz21)

	// Lunar periodic coefficients.
	ds.ee2 = 2.0 * s1 * s6
	ds.e3 = 2.0 * s1 * s7
	ds.xi2 = 2.0 * s2 * z12
	ds.xi3 = 2.0 * s2 * (z13 - z11)
	ds.xl2 = -2.0 * s3 * z2
	ds.xl3 = -2.0 * s3 * (z3 - z1)
	ds.xl4 = -2.0 * s3 * (-21.0 - 9.0*emsq) * zel
	ds.xgh2 = 2.0 * s4 * z32
	ds.xgh3 = 2.0 * s4 * (z33 - z31)
	ds.xgh4 = -18.0 * s4 * zel
	ds.xh2 = -2.0 * s2 * z22
	ds.xh3 = -2.0 * s2 * (z23 - z21)

	// Lunisolar secular rates.
	ses := ss1 * zns * ss5
	sis := ss2 * zns * (sz11 + sz13)
	sls := -zns * ss3 * (sz1 + sz3 - 14.0 - 6.0*emsq)
	sghs := ss4 * zns * (sz31 + sz33 - 6.0)
	shs := -zns * ss2 * (sz21 + sz23)
	if p.i0 < 5.2359877e-2 {
		shs = 0.0
	}
	if sinim != 0.0 {
		shs /= sinim
	}
	sgs := sghs - cosim*shs

	ds.dedt = ses + s1*znl*s5
	ds.didt = sis + s2*znl*(z11+z13)
	ds.dmdt = sls - znl*s3*(z1+z3-14.0-6.0*emsq)
	sghl := s4 * znl * (z31 + z33 - 6.0)
	shll := -znl * s2 * (z21 + z23)
	if p.i0 < 5.2359877e-2 {
		shll = 0.0
	}
	ds.domdt = sgs + sghl
	ds.dnodt = shs
	if sinim != 0.0 {
		ds.domdt -= cosim / sinim * shll
		ds.dnodt += shll / sinim
	}

	// Resonance detection: 24-hour synchronous band, then the 12-hour
	// high-eccentricity band.
	ds.irez = resonanceNone
	if p.no < 0.0052359877 && p.no > 0.0034906585 {
		ds.irez = resonanceSynchronous
	}
	if p.no >= 8.26e-3 && p.no <= 9.24e-3 && p.e0 >= 0.5 {
		ds.irez = resonanceHalfDay
	}

	switch ds.irez {
	case resonanceHalfDay:
		ds.initHalfDay(p, emsq, sinim, cosim)
	case resonanceSynchronous:
		ds.initSynchronous(p, emsq, sinim, cosim)
	}

	if ds.irez != resonanceNone {
		ds.resetIntegrator(p.no)
	}

	return ds
}

// Geopotential resonance coefficients for 12-hour orbits.
func (ds *deepSpace) initHalfDay(p *Propagator, emsq, sinim, cosim float64) {
	const (
		root22 = 1.7891679e-6
		root32 = 3.7393792e-7
		root44 = 7.3636953e-9
		root52 = 1.1428639e-7
		root54 = 2.1765803e-9
	)

	aonv := math.Pow(p.no/xke, x2o3)
	cosisq := cosim * cosim
	eoc := p.e0 * emsq

	g201 := -0.306 - (p.e0-0.64)*0.440

	var g211, g310, g322, g410, g422, g520 float64
	if p.e0 < 0.65 {
		g211 = 3.616 - 13.247*p.e0 + 16.290*emsq
		g310 = -19.302 + 117.390*p.e0 - 228.419*emsq + 156.591*eoc
		g322 = -18.9068 + 109.7927*p.e0 - 214.6334*emsq + 146.5816*eoc
		g410 = -41.122 + 242.694*p.e0 - 471.094*emsq + 313.953*eoc
		g422 = -146.407 + 841.880*p.e0 - 1629.014*emsq + 1083.435*eoc
		g520 = -532.114 + 3017.977*p.e0 - 5740.032*emsq + 3708.276*eoc
	} else {
		g211 = -72.099 + 331.819*p.e0 - 508.738*emsq + 266.724*eoc
		g310 = -346.844 + 1582.851*p.e0 - 2415.925*emsq + 1246.113*eoc
		g322 = -342.585 + 1554.908*p.e0 - 2366.899*emsq + 1215.972*eoc
		g410 = -1052.797 + 4758.686*p.e0 - 7193.992*emsq + 3651.957*eoc
		g422 = -3581.69 + 16178.11*p.e0 - 24462.77*emsq + 12422.52*eoc
		if p.e0 < 0.715 {
			g520 = 1464.74 - 4664.75*p.e0 + 3763.64*emsq
		} else {
			g520 = -5149.66 + 29936.92*p.e0 - 54087.36*emsq + 31324.56*eoc
		}
	}

	var g533, g521, g532 float64
	if p.e0 < 0.7 {
		g533 = -919.2277 + 4988.61*p.e0 - 9064.77*emsq + 5542.21*eoc
		g521 = -822.71072 + 4568.6173*p.e0 - 8491.4146*emsq + 5337.524*eoc
		g532 = -853.666 + 4690.25*p.e0 - 8624.77*emsq + 5341.4*eoc
	} else {
		g533 = -37995.78 + 161616.52*p.e0 - 229838.2*emsq + 109377.94*eoc
		g521 = -51752.104 + 218913.95*p.e0 - 309468.16*emsq + 146349.42*eoc
		g532 = -40023.88 + 170470.89*p.e0 - 242699.48*emsq + 115605.82*eoc
	}

	sini2 := sinim * sinim
	f220 := 0.75 * (1.0 + 2.0*cosim + cosisq)
	f221 := 1.5 * sini2
	f321 := 1.875 * sinim * (1.0 - 2.0*cosim - 3.0*cosisq)
	f322 := -1.875 * sinim * (1.0 + 2.0*cosim - 3.0*cosisq)
	f441 := 35.0 * sini2 * f220
	f442 := 39.375 * sini2 * sini2
	f522 := 9.84375 * sinim * (sini2*(1.0-2.0*cosim-5.0*cosisq) +
		0.33333333*(-2.0+4.0*cosim+6.0*cosisq))
	f523 := sinim * (4.92187512*sini2*(-2.0-4.0*cosim+10.0*cosisq) +
		6.56250012*(1.0+2.0*cosim-3.0*cosisq))
	f542 := 29.53125 * sinim *
		(2.0 - 8.0*cosim + cosisq*(-12.0+8.0*cosim+10.0*cosisq))
	f543 := 29.53125 * sinim *
		(-2.0 - 8.0*cosim + cosisq*(12.0+8.0*cosim-10.0*cosisq))

	xno2 := p.no * p.no
	ainv2 := aonv * aonv

	temp1 := 3.0 * xno2 * ainv2
	temp := temp1 * root22
	ds.d2201 = temp * f220 * g201
	ds.d2211 = temp * f221 * g211
	temp1 *= aonv
	temp = temp1 * root32
	ds.d3210 = temp * f321 * g310
	ds.d3222 = temp * f322 * g322
	temp1 *= aonv
	temp = 2.0 * temp1 * root44
	ds.d4410 = temp * f441 * g410
	ds.d4422 = temp * f442 * g422
	temp1 *= aonv
	temp = temp1 * root52
	ds.d5220 = temp * f522 * g520
	ds.d5232 = temp * f523 * g532
	temp = 2.0 * temp1 * root54
	ds.d5421 = temp * f542 * g521
	ds.d5433 = temp * f543 * g533

	ds.xlamo = math.Mod(p.m0+2.0*p.raan0-2.0*ds.gsto, twoPi)
	ds.xfact = p.mdot + ds.dmdt +
		2.0*(p.nodedot+ds.dnodt-earthRotRadPerMin) - p.no
}

// Synchronous resonance coefficients for 24-hour orbits.
func (ds *deepSpace) initSynchronous(p *Propagator, emsq, sinim, cosim float64) {
	const (
		q22 = 1.7891679e-6
		q31 = 2.1460748e-6
		q33 = 2.2123015e-7
	)

	aonv := math.Pow(p.no/xke, x2o3)

	g200 := 1.0 + emsq*(-2.5+0.8125*emsq)
	g310 := 1.0 + 2.0*emsq
	g300 := 1.0 + emsq*(-6.0+6.60937*emsq)
	f220 := 0.75 * (1.0 + cosim) * (1.0 + cosim)
	f311 := 0.9375*sinim*sinim*(1.0+3.0*cosim) - 0.75*(1.0+cosim)
	f330 := 1.0 + cosim
	f330 = 1.875 * f330 * f330 * f330

	ds.del1 = 3.0 * p.no * p.no * aonv * aonv
	ds.del2 = 2.0 * ds.del1 * f220 * g200 * q22
	ds.del3 = 3.0 * ds.del1 * f330 * g300 * q33 * aonv
	ds.del1 = ds.del1 * f311 * g310 * q31 * aonv

	ds.fasx2 = 0.13130908
	ds.fasx4 = 2.8843198
	ds.fasx6 = 0.37448087

	ds.xlamo = math.Mod(p.m0+p.raan0+p.argp0-ds.gsto, twoPi)
	ds.xfact = p.mdot + p.xpidot - earthRotRadPerMin +
		ds.dmdt + ds.domdt + ds.dnodt - p.no
}

// resetIntegrator restores the resonance integrator to the epoch state.
func (ds *deepSpace) resetIntegrator(no float64) {
	ds.atime = 0.0
	ds.xli = ds.xlamo
	ds.xni = no
}

// secular applies the lunisolar secular rates and, in a resonance band, the
// numerically integrated mean anomaly and mean motion at t minutes from
// epoch. The element pointers are updated in place.
func (ds *deepSpace) secular(t float64, em, inclm, argpm, nodem, mm, nm *float64) {
	theta := math.Mod(ds.gsto+t*earthRotRadPerMin, twoPi)

	*em += ds.dedt * t
	*inclm += ds.didt * t
	*argpm += ds.domdt * t
	*nodem += ds.dnodt * t
	*mm += ds.dmdt * t

	if *inclm < 0.0 {
		*inclm = -*inclm
		*argpm -= math.Pi
		*nodem += math.Pi
	}

	if ds.irez == resonanceNone {
		return
	}

	// Euler-Maclaurin integration in ±720-minute steps. The cached state is
	// reusable only when this call continues the previous one away from
	// zero in the same direction; otherwise restart from epoch.
	const (
		stepp = 720.0
		stepn = -720.0
		step2 = 259200.0 // stepp²/2
	)

	if ds.atime == 0.0 || t*ds.atime <= 0.0 || math.Abs(ds.atime) > math.Abs(t) {
		ds.resetIntegrator(ds.no)
	}

	delt := stepp
	if t < 0.0 {
		delt = stepn
	}

	for math.Abs(t-ds.atime) >= stepp {
		xndt, xnddt, xldot := ds.resonanceDots()
		ds.xli += xldot*delt + xndt*step2
		ds.xni += xndt*delt + xnddt*step2
		ds.atime += delt
	}

	ft := t - ds.atime
	xndt, xnddt, xldot := ds.resonanceDots()
	xn := ds.xni + xndt*ft + xnddt*ft*ft*0.5
	xl := ds.xli + xldot*ft + xndt*ft*ft*0.5

	if ds.irez == resonanceHalfDay {
		*mm = xl - 2.0**nodem + 2.0*theta
	} else {
		*mm = xl - *nodem - *argpm + theta
	}
	*nm = xn
}

// resonanceDots evaluates the resonance accelerations at the integrator's
// current state.
func (ds *deepSpace) resonanceDots() (xndt, xnddt, xldot float64) {
	const (
		g22 = 5.7686396
		g32 = 0.95240898
		g44 = 1.8014998
		g52 = 1.0508330
		g54 = 4.4108898
	)

	xldot = ds.xni + ds.xfact

	if ds.irez == resonanceSynchronous {
		xndt = ds.del1*math.Sin(ds.xli-ds.fasx2) +
			ds.del2*math.Sin(2.0*(ds.xli-ds.fasx4)) +
			ds.del3*math.Sin(3.0*(ds.xli-ds.fasx6))
		xnddt = ds.del1*math.Cos(ds.xli-ds.fasx2) +
			2.0*ds.del2*math.Cos(2.0*(ds.xli-ds.fasx4)) +
			3.0*ds.del3*math.Cos(3.0*(ds.xli-ds.fasx6))
		xnddt *= xldot
		return xndt, xnddt, xldot
	}

	xomi := ds.argp0 + ds.argpdot*ds.atime
	x2omi := xomi + xomi
	x2li := ds.xli + ds.xli

	xndt = ds.d2201*math.Sin(x2omi+ds.xli-g22) +
		ds.d2211*math.Sin(ds.xli-g22) +
		ds.d3210*math.Sin(xomi+ds.xli-g32) +
		ds.d3222*math.Sin(-xomi+ds.xli-g32) +
		ds.d4410*math.Sin(x2omi+x2li-g44) +
		ds.d4422*math.Sin(x2li-g44) +
		ds.d5220*math.Sin(xomi+ds.xli-g52) +
		ds.d5232*math.Sin(-xomi+ds.xli-g52) +
		ds.d5421*math.Sin(xomi+x2li-g54) +
		ds.d5433*math.Sin(-xomi+x2li-g54)
	xnddt = ds.d2201*math.Cos(x2omi+ds.xli-g22) +
		ds.d2211*math.Cos(ds.xli-g22) +
		ds.d3210*math.Cos(xomi+ds.xli-g32) +
		ds.d3222*math.Cos(-xomi+ds.xli-g32) +
		ds.d5220*math.Cos(xomi+ds.xli-g52) +
		ds.d5232*math.Cos(-xomi+ds.xli-g52) +
		2.0*(ds.d4410*math.Cos(x2omi+x2li-g44)+
			ds.d4422*math.Cos(x2li-g44)+
			ds.d5421*math.Cos(xomi+x2li-g54)+
			ds.d5433*math.Cos(-xomi+x2li-g54))
	xnddt *= xldot
	return xndt, xnddt, xldot
}

// periodic applies the Lyddane lunisolar periodic corrections at t minutes
// from epoch. Near the equator the corrections rotate in the
// (sin i sin Ω, sin i cos Ω) plane to avoid the 1/sin i singularity.
func (ds *deepSpace) periodic(t float64, ep, xincp, nodep, argpp, mp *float64) {
	// Solar terms.
	zm := ds.zmos + zns*t
	zf := zm + 2.0*zes*math.Sin(zm)
	sinzf := math.Sin(zf)
	f2 := 0.5*sinzf*sinzf - 0.25
	f3 := -0.5 * sinzf * math.Cos(zf)
	ses := ds.se2*f2 + ds.se3*f3
	sis := ds.si2*f2 + ds.si3*f3
	sls := ds.sl2*f2 + ds.sl3*f3 + ds.sl4*sinzf
	sghs := ds.sgh2*f2 + ds.sgh3*f3 + ds.sgh4*sinzf
	shs := ds.sh2*f2 + ds.sh3*f3

	// Lunar terms.
	zm = ds.zmol + znl*t
	zf = zm + 2.0*zel*math.Sin(zm)
	sinzf = math.Sin(zf)
	f2 = 0.5*sinzf*sinzf - 0.25
	f3 = -0.5 * sinzf * math.Cos(zf)
	sel := ds.ee2*f2 + ds.e3*f3
	sil := ds.xi2*f2 + ds.xi3*f3
	sll := ds.xl2*f2 + ds.xl3*f3 + ds.xl4*sinzf
	sghl := ds.xgh2*f2 + ds.xgh3*f3 + ds.xgh4*sinzf
	shll := ds.xh2*f2 + ds.xh3*f3

	pe := ses + sel
	pinc := sis + sil
	pl := sls + sll
	pgh := sghs + sghl
	ph := shs + shll

	*xincp += pinc
	*ep += pe
	sinip := math.Sin(*xincp)
	cosip := math.Cos(*xincp)

	if *xincp > 0.2 {
		// Apply periodics directly.
		ph /= sinip
		pgh -= cosip * ph
		*argpp += pgh
		*nodep += ph
		*mp += pl
		return
	}

	// Lyddane modification.
	sinop := math.Sin(*nodep)
	cosop := math.Cos(*nodep)
	alfdp := sinip*sinop + ph*cosop + pinc*cosip*sinop
	betdp := sinip*cosop - ph*sinop + pinc*cosip*cosop
	*nodep = math.Mod(*nodep, twoPi)
	xls := *mp + *argpp + cosip**nodep + pl + pgh - pinc**nodep*sinip
	xnoh := *nodep
	*nodep = math.Atan2(alfdp, betdp)
	if math.Abs(xnoh-*nodep) > math.Pi {
		if *nodep < xnoh {
			*nodep += twoPi
		} else {
			*nodep -= twoPi
		}
	}
	*mp += pl
	*argpp = xls - *mp - cosip**nodep
}
