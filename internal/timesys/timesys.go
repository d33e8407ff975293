// Package timesys converts between calendar date/time, Julian Date, Modified
// Julian Date, and seconds from a fixed reference epoch.
//
// All conversions are pure functions. Multi-day arithmetic that must retain
// microsecond precision goes through TimeSplit, which keeps the integer and
// fractional parts of a Julian Date separate.
package timesys

import (
	"errors"
	"fmt"
	"math"
	"time"
)

const (
	// J2000 is the Julian Date of the J2000.0 epoch (2000 January 1, 12:00).
	J2000 = 2451545.0

	// MJDOffset converts between Julian Date and Modified Julian Date.
	MJDOffset = 2400000.5

	// ReferenceJD is the epoch used by JD↔seconds conversions.
	ReferenceJD = 2450000.0

	// SecondsPerDay is the number of SI seconds in a Julian day.
	SecondsPerDay = 86400.0
)

// ErrJulianDateOutOfRange marks a Julian Date outside the supported
// 1900–2100 window (|JD − J2000| > 36525 days).
var ErrJulianDateOutOfRange = errors.New("julian date out of range")

// DateTimeToJD converts a UTC calendar date and time to a Julian Date.
// Day 0 of a month is accepted and means the last day of the previous month,
// which is how TLE epochs (Jan 0 + fractional day-of-year) are anchored.
func DateTimeToJD(year, month, day, hour, minute int, second float64) float64 {
	jdn := 367*year -
		7*(year+(month+9)/12)/4 +
		275*month/9 + day + 1721013
	frac := float64(hour)/24.0 + float64(minute)/1440.0 + second/SecondsPerDay + 0.5
	return float64(jdn) + frac
}

// JDToDateTime converts a Julian Date to a UTC calendar date and time using
// the Fliegel/Van Flandern expressions. A seconds value within 1 ms of 59.999
// is rounded up and the carry cascades through minute, hour, and day.
func JDToDateTime(jd float64) (year, month, day, hour, minute int, second float64, err error) {
	if math.Abs(jd-J2000) > 36525.0 {
		return 0, 0, 0, 0, 0, 0, fmt.Errorf("JD %.6f: %w", jd, ErrJulianDateOutOfRange)
	}

	dateMJD := jd - MJDOffset

	t4 := math.Mod(dateMJD, 1.0)
	t1 := 1.0 + dateMJD - t4 + 2400000.0
	ih := int((t1 - 1867216.25) / 36524.0)
	t2 := t1 + 1.0 + float64(ih) - float64(ih/4)
	t3 := t2 - 1720995.0
	ih1 := int((t3 - 122.1) / 365.25)

	year = ih1
	t1 = 365.25*float64(ih1) - math.Mod(365.25*float64(ih1), 1.0)
	ih2 := int((t3 - t1) / 30.6001)
	dayReal := t3 - t1 - float64(int(30.6001*float64(ih2))) + t4

	month = ih2 - 1
	if ih2 > 13 {
		month = ih2 - 13
	}
	if month <= 2 {
		year++
	}

	day = int(dayReal)

	t1 = (dayReal - float64(day)) * 24.0
	hour = int(t1)
	t2 = (t1 - float64(hour)) * 60.0
	minute = int(t2)
	second = (t2 - float64(minute)) * 60.0

	if math.Abs(second-59.999) < 0.001 {
		second = 0.0
		minute++
	}
	if second < 0.0 {
		second = 0.0
	}
	if minute == 60 {
		minute = 0
		hour++
	}
	if hour == 24 {
		hour = 0
		day++
	}

	return year, month, day, hour, minute, second, nil
}

// JDToMJD converts a Julian Date to a Modified Julian Date.
func JDToMJD(jd float64) float64 { return jd - MJDOffset }

// MJDToJD converts a Modified Julian Date to a Julian Date.
func MJDToJD(mjd float64) float64 { return mjd + MJDOffset }

// DayOfYear returns the 1-based ordinal day for the given calendar date.
// The full Gregorian leap rule is applied, including the 100- and 400-year
// exceptions.
func DayOfYear(year, month, day int) int {
	days := [12]int{31, 28, 31, 30, 31, 30, 31, 31, 30, 31, 30, 31}
	doy := day
	for m := 1; m < month; m++ {
		doy += days[m-1]
	}
	if month > 2 && isLeapYear(year) {
		doy++
	}
	return doy
}

func isLeapYear(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%400 == 0)
}

// EpochJD converts a TLE epoch (four-digit year plus fractional day-of-year,
// where day 1.0 is January 1 at 0h) to a Julian Date.
func EpochJD(year int, dayOfYear float64) float64 {
	return DateTimeToJD(year, 1, 0, 0, 0, 0.0) + dayOfYear
}

// FromTime converts a time.Time to a Julian Date.
func FromTime(t time.Time) float64 {
	t = t.UTC()
	sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
	return DateTimeToJD(t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), sec)
}

// ToTime converts a Julian Date to a time.Time in UTC.
func ToTime(jd float64) (time.Time, error) {
	year, month, day, hour, minute, second, err := JDToDateTime(jd)
	if err != nil {
		return time.Time{}, err
	}
	sec := int(second)
	nsec := int(math.Round((second - float64(sec)) * 1e9))
	return time.Date(year, time.Month(month), day, hour, minute, sec, nsec, time.UTC), nil
}

// TimeSplit is a Julian Date held as separate integer-day and fractional-day
// parts so that multi-day offsets do not erode sub-second precision.
// The zero value is JD 0.0.
type TimeSplit struct {
	Days     int64
	Fraction float64
}

// SplitJD decomposes a Julian Date into a normalized TimeSplit.
func SplitJD(jd float64) TimeSplit {
	return TimeSplit{Days: int64(jd), Fraction: jd - math.Trunc(jd)}.Normalize()
}

// Normalize returns an equivalent TimeSplit with Fraction in [0, 1).
func (t TimeSplit) Normalize() TimeSplit {
	carry := math.Floor(t.Fraction)
	return TimeSplit{
		Days:     t.Days + int64(carry),
		Fraction: t.Fraction - carry,
	}
}

// JD returns the combined Julian Date.
func (t TimeSplit) JD() float64 { return float64(t.Days) + t.Fraction }

// AddDays returns the TimeSplit shifted by the given (possibly fractional)
// number of days, renormalized.
func (t TimeSplit) AddDays(days float64) TimeSplit {
	return TimeSplit{Days: t.Days, Fraction: t.Fraction + days}.Normalize()
}

// ToSeconds expresses the split as whole and fractional seconds elapsed since
// ReferenceJD.
func (t TimeSplit) ToSeconds() (seconds int64, fraction float64) {
	sec := (float64(t.Days) - ReferenceJD) * SecondsPerDay
	fracSec := t.Fraction * SecondsPerDay
	whole := math.Floor(fracSec)
	return int64(sec) + int64(whole), fracSec - whole
}

// FromSeconds rebuilds a TimeSplit from whole and fractional seconds since
// ReferenceJD.
func FromSeconds(seconds int64, fraction float64) TimeSplit {
	days := seconds / 86400
	rem := float64(seconds%86400) + fraction
	return TimeSplit{
		Days:     int64(ReferenceJD) + days,
		Fraction: rem / SecondsPerDay,
	}.Normalize()
}
