package tle

import (
	"math"
	"time"
)

const (
	deg2rad = math.Pi / 180.0

	// revsPerDayToRadMin converts revolutions/day to radians/minute.
	revsPerDayToRadMin = 2.0 * math.Pi / 1440.0
)

// MeanElements is the mean orbital state extracted from one TLE record.
// Values are converted to the propagator's working units at parse time;
// the raw display-unit fields are kept so a record can be re-serialized.
// A MeanElements is never mutated after parsing.
type MeanElements struct {
	CatalogNumber  int
	Classification byte
	IntlDesignator string
	Name           string // optional preceding name line

	EpochYear int     // four-digit
	EpochDay  float64 // fractional day-of-year, 1.0 = Jan 1 0h
	EpochJD   float64

	MeanMotionDot  float64 // ṅ/2, revs/day²
	MeanMotionDDot float64 // n̈/6, revs/day³
	Bstar          float64 // 1/Earth radii

	Inclination  float64 // radians
	RAAN         float64 // radians
	Eccentricity float64
	ArgPerigee   float64 // radians
	MeanAnomaly  float64 // radians
	MeanMotion   float64 // radians/minute
	RevsPerDay   float64 // raw mean motion from line 2

	EphemerisType int
	ElementNumber int
	RevNumber     int

	Line1, Line2 string // raw lines as read
}

// Epoch returns the TLE epoch as a time.Time in UTC.
func (m *MeanElements) Epoch() time.Time {
	base := time.Date(m.EpochYear, 1, 1, 0, 0, 0, 0, time.UTC)
	nanos := int64(math.Round((m.EpochDay - 1.0) * 86400.0 * 1e9))
	return base.Add(time.Duration(nanos))
}

// PeriodMinutes returns the unperturbed orbital period implied by the mean
// motion.
func (m *MeanElements) PeriodMinutes() float64 {
	return 2.0 * math.Pi / m.MeanMotion
}

// EpochRange is the minimum and maximum epoch in a dataset.
type EpochRange struct {
	Min time.Time
	Max time.Time
}

// Dataset is a complete set of TLE records read from one source.
type Dataset struct {
	Source     string
	FetchedAt  time.Time
	EpochRange EpochRange
	Satellites []MeanElements
}

// ByCatalog returns the first record with the given catalog number, or nil.
func (d *Dataset) ByCatalog(catalog int) *MeanElements {
	for i := range d.Satellites {
		if d.Satellites[i].CatalogNumber == catalog {
			return &d.Satellites[i]
		}
	}
	return nil
}
