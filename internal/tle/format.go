package tle

import (
	"fmt"
	"math"
)

// FormatLine1 re-serializes line 1 from the parsed fields, including the
// trailing checksum digit.
func FormatLine1(m *MeanElements) string {
	yy := m.EpochYear % 100

	body := fmt.Sprintf("1 %05d%c %-8s %02d%012.8f %s %s %s %1d %4d",
		m.CatalogNumber,
		classification(m.Classification),
		m.IntlDesignator,
		yy, m.EpochDay,
		formatDotted(m.MeanMotionDot),
		formatExponential(m.MeanMotionDDot),
		formatExponential(m.Bstar),
		m.EphemerisType,
		m.ElementNumber,
	)
	return fmt.Sprintf("%s%d", body, Checksum(body))
}

// FormatLine2 re-serializes line 2 from the parsed fields, including the
// trailing checksum digit.
func FormatLine2(m *MeanElements) string {
	body := fmt.Sprintf("2 %05d %8.4f %8.4f %07d %8.4f %8.4f %11.8f%5d",
		m.CatalogNumber,
		m.Inclination/deg2rad,
		m.RAAN/deg2rad,
		int(math.Round(m.Eccentricity*1.0e7)),
		m.ArgPerigee/deg2rad,
		m.MeanAnomaly/deg2rad,
		m.RevsPerDay,
		m.RevNumber,
	)
	return fmt.Sprintf("%s%d", body, Checksum(body))
}

func classification(c byte) byte {
	if c == 0 {
		return 'U'
	}
	return c
}

// formatDotted writes the leading-zero-free decimal used by the ṅ/2 field,
// e.g. " .00002182" or "-.00000045".
func formatDotted(v float64) string {
	sign := byte(' ')
	if v < 0.0 {
		sign = '-'
		v = -v
	}
	return fmt.Sprintf("%c.%08d", sign, int(math.Round(v*1.0e8)))
}

// formatExponential writes the TLE mantissa+exponent encoding,
// e.g. " 40768-4" for 0.40768e-4. Zero is written " 00000-0".
func formatExponential(v float64) string {
	if v == 0.0 {
		return " 00000-0"
	}
	sign := byte(' ')
	if v < 0.0 {
		sign = '-'
		v = -v
	}
	exp := int(math.Floor(math.Log10(v))) + 1
	mant := int(math.Round(v / math.Pow(10.0, float64(exp)) * 1.0e5))
	if mant >= 100000 {
		mant /= 10
		exp++
	}
	return fmt.Sprintf("%c%05d%+d", sign, mant, exp)
}
