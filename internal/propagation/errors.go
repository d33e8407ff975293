package propagation

import "fmt"

// FaultKind classifies a propagator fault. Faults are fatal for the
// satellite they occur on but do not abort a batch.
type FaultKind string

const (
	// FaultPerigeeInsideEarth marks mean elements whose perigee radius is
	// below one Earth radius. Raised at initialization.
	FaultPerigeeInsideEarth FaultKind = "perigee_inside_earth"

	// FaultEccentricityOutOfRange marks an epoch eccentricity outside
	// [0, 0.999999], a propagated mean eccentricity outside [−10⁻³, 1), or
	// an eccentricity outside [0, 1] after the deep-space periodics.
	FaultEccentricityOutOfRange FaultKind = "eccentricity_out_of_range"

	// FaultNegativeSemiLatusRectum marks a perturbed semi-latus rectum below
	// zero during the short-period correction.
	FaultNegativeSemiLatusRectum FaultKind = "negative_semi_latus_rectum"

	// FaultConvergenceFailure marks a Kepler iteration that did not converge
	// within its bounded step count.
	FaultConvergenceFailure FaultKind = "convergence_failure"

	// FaultSatelliteDecayed marks a propagated radius below one Earth
	// radius: the model has run past the satellite's lifetime.
	FaultSatelliteDecayed FaultKind = "satellite_decayed"
)

// ModelError is a propagator fault with the satellite and the propagation
// offset it occurred at.
type ModelError struct {
	Kind    FaultKind
	Catalog int
	TSince  float64 // minutes from epoch; 0 for initialization faults
	Value   float64 // the offending quantity, where meaningful
}

func (e *ModelError) Error() string {
	switch e.Kind {
	case FaultPerigeeInsideEarth:
		return fmt.Sprintf("sgp4 init for catalog %d: perigee radius %.6f ER is inside the Earth", e.Catalog, e.Value)
	case FaultEccentricityOutOfRange:
		return fmt.Sprintf("sgp4 catalog %d at tsince %.2f min: eccentricity %.6e out of range", e.Catalog, e.TSince, e.Value)
	case FaultNegativeSemiLatusRectum:
		return fmt.Sprintf("sgp4 catalog %d at tsince %.2f min: semi-latus rectum %.6e < 0", e.Catalog, e.TSince, e.Value)
	case FaultConvergenceFailure:
		return fmt.Sprintf("sgp4 catalog %d at tsince %.2f min: Kepler iteration did not converge (residual %.3e)", e.Catalog, e.TSince, e.Value)
	case FaultSatelliteDecayed:
		return fmt.Sprintf("sgp4 catalog %d at tsince %.2f min: orbital radius %.4f ER, satellite has decayed", e.Catalog, e.TSince, e.Value)
	default:
		return fmt.Sprintf("sgp4 catalog %d at tsince %.2f min: fault %s", e.Catalog, e.TSince, e.Kind)
	}
}
