package timesys

import (
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soniakeys/meeus/v3/julian"
)

func TestDateTimeToJDKnownValues(t *testing.T) {
	tests := []struct {
		name string
		y    int
		mo   int
		d    int
		h    int
		mi   int
		s    float64
		want float64
	}{
		{"J2000.0 epoch", 2000, 1, 1, 12, 0, 0.0, 2451545.0},
		{"Unix epoch", 1970, 1, 1, 0, 0, 0.0, 2440587.5},
		{"reference epoch", 1995, 10, 9, 12, 0, 0.0, 2450000.0},
		{"Vallado example 3-15", 2004, 4, 6, 7, 51, 28.386009, 2453101.8274118751},
		{"TLE-style Jan 0", 1950, 1, 0, 0, 0, 0.0, 2433281.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DateTimeToJD(tt.y, tt.mo, tt.d, tt.h, tt.mi, tt.s)
			if diff := math.Abs(got - tt.want); diff > 1e-8 {
				t.Errorf("DateTimeToJD = %.10f, want %.10f (diff=%.2e)", got, tt.want, diff)
			}
		})
	}
}

// TestDateTimeToJDAgainstMeeus checks the integer formula against the meeus
// implementation of the standard calendar conversion.
func TestDateTimeToJDAgainstMeeus(t *testing.T) {
	dates := []struct{ y, mo, d int }{
		{1957, 10, 4},
		{1980, 8, 17},
		{2000, 2, 29},
		{2024, 3, 15},
		{2099, 12, 31},
	}

	for _, d := range dates {
		got := DateTimeToJD(d.y, d.mo, d.d, 0, 0, 0.0)
		want := julian.CalendarGregorianToJD(d.y, d.mo, float64(d.d))
		if diff := math.Abs(got - want); diff > 1e-8 {
			t.Errorf("DateTimeToJD(%d-%02d-%02d) = %.6f, meeus = %.6f", d.y, d.mo, d.d, got, want)
		}
	}
}

// TestJDDateTimeRoundTrip: forward then inverse conversion agrees to within
// 1 ms across the valid range.
func TestJDDateTimeRoundTrip(t *testing.T) {
	times := []struct {
		y, mo, d, h, mi int
		s               float64
	}{
		{1920, 6, 1, 23, 59, 58.5},
		{1999, 12, 31, 23, 59, 59.0},
		{2000, 2, 29, 0, 0, 0.25},
		{2024, 3, 15, 12, 0, 0.0},
		{2077, 7, 4, 6, 30, 30.125},
	}

	for _, in := range times {
		jd := DateTimeToJD(in.y, in.mo, in.d, in.h, in.mi, in.s)
		y, mo, d, h, mi, s, err := JDToDateTime(jd)
		if err != nil {
			t.Fatalf("JDToDateTime(%f): %v", jd, err)
		}
		if y != in.y || mo != in.mo || d != in.d || h != in.h || mi != in.mi {
			t.Errorf("round trip %v → %d-%02d-%02d %02d:%02d:%06.3f", in, y, mo, d, h, mi, s)
			continue
		}
		if math.Abs(s-in.s) > 1e-3 {
			t.Errorf("seconds %.6f, want %.6f", s, in.s)
		}
	}
}

// TestJDToDateTimeSecondCarry verifies that 59.999-second values round up
// and carry across minute, hour, and day boundaries.
func TestJDToDateTimeSecondCarry(t *testing.T) {
	// 1 ms before 2024-03-16 00:00:00.
	jd := DateTimeToJD(2024, 3, 15, 23, 59, 59.9995)
	y, mo, d, h, mi, s, err := JDToDateTime(jd)
	if err != nil {
		t.Fatal(err)
	}
	if y != 2024 || mo != 3 || d != 16 || h != 0 || mi != 0 || s != 0.0 {
		t.Errorf("carry: got %d-%02d-%02d %02d:%02d:%06.3f, want 2024-03-16 00:00:00.000",
			y, mo, d, h, mi, s)
	}
}

func TestJDToDateTimeOutOfRange(t *testing.T) {
	for _, jd := range []float64{J2000 + 36526.0, J2000 - 36526.0} {
		_, _, _, _, _, _, err := JDToDateTime(jd)
		if !errors.Is(err, ErrJulianDateOutOfRange) {
			t.Errorf("JDToDateTime(%f): err = %v, want ErrJulianDateOutOfRange", jd, err)
		}
	}
}

func TestMJDConversion(t *testing.T) {
	jd := 2460385.0
	mjd := JDToMJD(jd)
	if math.Abs(mjd-60384.5) > 1e-9 {
		t.Errorf("JDToMJD(%f) = %f, want 60384.5", jd, mjd)
	}
	if back := MJDToJD(mjd); math.Abs(back-jd) > 1e-9 {
		t.Errorf("MJDToJD(JDToMJD(%f)) = %f", jd, back)
	}
}

func TestDayOfYear(t *testing.T) {
	tests := []struct {
		y, mo, d, want int
	}{
		{2024, 1, 1, 1},
		{2024, 3, 15, 75},   // leap year
		{2023, 3, 15, 74},   // common year
		{2024, 12, 31, 366},
		{2023, 12, 31, 365},
		{1900, 3, 1, 60},    // century non-leap (full Gregorian rule)
		{2000, 3, 1, 61},    // 400-year exception, leap
	}

	for _, tt := range tests {
		if got := DayOfYear(tt.y, tt.mo, tt.d); got != tt.want {
			t.Errorf("DayOfYear(%d, %d, %d) = %d, want %d", tt.y, tt.mo, tt.d, got, tt.want)
		}
	}
}

func TestEpochJD(t *testing.T) {
	// ISS epoch 24075.50000000 is 2024-03-15 12:00:00 UTC.
	jd := EpochJD(2024, 75.5)
	if math.Abs(jd-2460385.0) > 1e-9 {
		t.Errorf("EpochJD(2024, 75.5) = %.9f, want 2460385.0", jd)
	}
}

func TestTimeConversions(t *testing.T) {
	in := time.Date(2024, 3, 15, 12, 0, 0, 0, time.UTC)
	jd := FromTime(in)
	if math.Abs(jd-2460385.0) > 1e-9 {
		t.Fatalf("FromTime = %.9f, want 2460385.0", jd)
	}
	out, err := ToTime(jd)
	if err != nil {
		t.Fatal(err)
	}
	if d := out.Sub(in); d < -time.Millisecond || d > time.Millisecond {
		t.Errorf("ToTime(FromTime(%v)) = %v (diff %v)", in, out, d)
	}
}

func TestTimeSplit(t *testing.T) {
	ts := SplitJD(2460385.75)
	if ts.Days != 2460385 || math.Abs(ts.Fraction-0.75) > 1e-12 {
		t.Fatalf("SplitJD = %+v", ts)
	}

	// AddDays keeps the fraction normalized across day boundaries.
	shifted := ts.AddDays(0.5)
	if shifted.Days != 2460386 || math.Abs(shifted.Fraction-0.25) > 1e-12 {
		t.Errorf("AddDays(0.5) = %+v", shifted)
	}
	if math.Abs(shifted.JD()-2460386.25) > 1e-9 {
		t.Errorf("JD() = %.9f", shifted.JD())
	}

	neg := ts.AddDays(-1.25)
	if neg.Days != 2460384 || math.Abs(neg.Fraction-0.5) > 1e-12 {
		t.Errorf("AddDays(-1.25) = %+v", neg)
	}
}

// TestTimeSplitSeconds verifies the seconds-from-reference split retains
// sub-microsecond precision over multi-day spans.
func TestTimeSplitSeconds(t *testing.T) {
	ts := TimeSplit{Days: 2460385, Fraction: 0.5000000001}
	sec, frac := ts.ToSeconds()

	back := FromSeconds(sec, frac)
	if back.Days != ts.Days {
		t.Fatalf("FromSeconds days = %d, want %d", back.Days, ts.Days)
	}
	// 1e-12 day is below 0.1 µs.
	if math.Abs(back.Fraction-ts.Fraction) > 1e-12 {
		t.Errorf("FromSeconds fraction = %.15f, want %.15f", back.Fraction, ts.Fraction)
	}

	// Whole-second split: 0.5 day past the integer day is 43200 s.
	wantSec := (int64(2460385)-int64(ReferenceJD))*86400 + 43200
	if sec != wantSec {
		t.Errorf("ToSeconds whole part = %d, want %d", sec, wantSec)
	}
}
