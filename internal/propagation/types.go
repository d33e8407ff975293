package propagation

import "time"

// Keyframe holds the positions of all satellites at a single point in time.
type Keyframe struct {
	Timestamp  time.Time
	JD         float64
	Satellites []SatelliteState
}

// SatelliteState holds a single satellite's ECEF state at a keyframe time.
type SatelliteState struct {
	Catalog      int
	PositionECEF [3]float64 // meters
	VelocityECEF [3]float64 // m/s
}

// Config holds batch-propagation configuration.
type Config struct {
	Workers int           // worker pool size (default: runtime.NumCPU())
	Step    time.Duration // keyframe interval
	Horizon time.Duration // propagation horizon
}
