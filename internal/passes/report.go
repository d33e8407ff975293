package passes

import (
	"fmt"
	"io"
)

const rad2deg = 180.0 / 3.14159265358979

// WriteTable writes visible samples as whitespace-padded columns: Julian
// Date, UTC date/time components, elevation and azimuth in degrees.
func WriteTable(w io.Writer, samples []Sample) error {
	_, err := fmt.Fprintf(w, "%-20s %4s %2s %2s %2s %2s %8s  %10s  %10s\n",
		"JulianDate", "Year", "Mo", "Dy", "Hr", "Mi", "Second", "Elev(deg)", "Azim(deg)")
	if err != nil {
		return err
	}

	for _, s := range samples {
		t := s.Time
		sec := float64(t.Second()) + float64(t.Nanosecond())/1e9
		_, err := fmt.Fprintf(w, "%-20.10f %4d %2d %2d %2d %2d %8.3f  %10.4f  %10.4f\n",
			s.JD,
			t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), sec,
			s.ElevationRad*rad2deg,
			s.AzimuthRad*rad2deg,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

// WriteWindows writes a one-line summary per pass window.
func WriteWindows(w io.Writer, windows []Window) error {
	_, err := fmt.Fprintf(w, "%-4s %-20s %-20s %9s %10s %10s\n",
		"Pass", "Rise(UTC)", "Set(UTC)", "Dur(s)", "MaxEl(deg)", "AzMax(deg)")
	if err != nil {
		return err
	}

	const layout = "2006-01-02 15:04:05"
	for i, win := range windows {
		_, err := fmt.Fprintf(w, "%-4d %-20s %-20s %9.0f %10.4f %10.4f\n",
			i+1,
			win.Rise.Time.UTC().Format(layout),
			win.Set.Time.UTC().Format(layout),
			win.Duration().Seconds(),
			win.Culmination.ElevationRad*rad2deg,
			win.Culmination.AzimuthRad*rad2deg,
		)
		if err != nil {
			return err
		}
	}
	return nil
}
