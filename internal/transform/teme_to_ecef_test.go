package transform

import (
	"math"
	"testing"

	satellite "github.com/joshuaferrara/go-satellite"
)

// TestTEMEToECEFAgainstGoSatellite validates the position rotation against
// the go-satellite library with a shared GMST angle.
func TestTEMEToECEFAgainstGoSatellite(t *testing.T) {
	tests := []struct {
		name string
		teme StateTEME
		jd   float64
	}{
		{
			// Vallado "Fundamentals of Astrodynamics" Example 3-15 (km → m).
			name: "Vallado example 3-15",
			teme: StateTEME{
				X: 5094180.16, Y: 6127644.65, Z: 6380344.53,
				VX: -4746.131487, VY: 786.598499, VZ: 5531.931288,
			},
			jd: 2453101.8274074076,
		},
		{
			name: "LEO equatorial",
			teme: StateTEME{X: 6778000.0, VY: 7500.0},
			jd:   2460385.0,
		},
		{
			name: "LEO polar",
			teme: StateTEME{Z: 6978000.0, VX: 7400.0},
			jd:   2461000.25,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gmst := GMST(tt.jd)
			our := TEMEToECEFWithGMST(tt.teme, gmst)

			ref := satellite.ECIToECEF(
				satellite.Vector3{X: tt.teme.X / 1000.0, Y: tt.teme.Y / 1000.0, Z: tt.teme.Z / 1000.0},
				gmst,
			)

			const tol = 1e-3 // 1 mm: same rotation, different code paths
			if math.Abs(our.X-ref.X*1000.0) > tol ||
				math.Abs(our.Y-ref.Y*1000.0) > tol ||
				math.Abs(our.Z-ref.Z*1000.0) > tol {
				t.Errorf("position mismatch:\n  ours: [%.6f %.6f %.6f]\n  ref:  [%.6f %.6f %.6f]",
					our.X, our.Y, our.Z, ref.X*1000, ref.Y*1000, ref.Z*1000)
			}

			if !ValidateECEF(our) {
				t.Errorf("ECEF position failed validation: [%.1f %.1f %.1f]", our.X, our.Y, our.Z)
			}
		})
	}
}

// TestTEMEToECEFVelocity verifies the ω×r correction on the velocity.
func TestTEMEToECEFVelocity(t *testing.T) {
	// Prograde equatorial satellite with the TEME and ECEF axes aligned.
	teme := StateTEME{X: 6778000.0, VY: 7500.0}
	ecef := TEMEToECEFWithGMST(teme, 0.0)

	if math.Abs(ecef.X-6778000.0) > 1e-6 {
		t.Errorf("X = %.3f, want 6778000", ecef.X)
	}

	// Earth rotation removes ω·R from the inertial transverse velocity.
	wantVY := 7500.0 - OmegaEarth*6778000.0
	if math.Abs(ecef.VY-wantVY) > 1e-6 {
		t.Errorf("VY = %.6f, want %.6f", ecef.VY, wantVY)
	}
	if math.Abs(ecef.VX) > 1e-9 || math.Abs(ecef.VZ) > 1e-9 {
		t.Errorf("VX, VZ = %.9f, %.9f, want 0", ecef.VX, ecef.VZ)
	}
}

// TestTEMEToECEFRoundTripSpeed checks the transform preserves geocentric
// distance and that ECEF speed differs from TEME speed by the rotation term.
func TestTEMEToECEFRoundTripSpeed(t *testing.T) {
	teme := StateTEME{X: 5094180.16, Y: 6127644.65, Z: 6380344.53, VX: -4746.1, VY: 786.6, VZ: 5531.9}
	ecef := TEMEToECEF(teme, 2453101.8274074076)

	rTEME := math.Sqrt(teme.X*teme.X + teme.Y*teme.Y + teme.Z*teme.Z)
	rECEF := math.Sqrt(ecef.X*ecef.X + ecef.Y*ecef.Y + ecef.Z*ecef.Z)
	if math.Abs(rTEME-rECEF) > 1e-6 {
		t.Errorf("rotation changed radius: %.9f vs %.9f", rTEME, rECEF)
	}
}

func TestValidateECEF(t *testing.T) {
	tests := []struct {
		name  string
		pos   StateECEF
		valid bool
	}{
		{"LEO", StateECEF{X: 6778000}, true},
		{"GEO", StateECEF{X: 42164000}, true},
		{"too low", StateECEF{X: 5000000}, false},
		{"too high", StateECEF{X: 60000000}, false},
		{"NaN", StateECEF{X: math.NaN()}, false},
		{"Inf", StateECEF{X: math.Inf(1)}, false},
		{"zero", StateECEF{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ValidateECEF(tt.pos); got != tt.valid {
				t.Errorf("ValidateECEF(%v) = %v, want %v", tt.pos, got, tt.valid)
			}
		})
	}
}
