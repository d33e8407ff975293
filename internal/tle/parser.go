// Package tle reads NORAD two-line element sets.
//
// Records are 2- or 3-line groups (optional name line, then the fixed-column
// element lines). Lines beginning with '#' are comments. Field extraction is
// strictly positional; a field that fails to convert fails the whole record
// rather than inventing a default.
package tle

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/skytrack/passpredict/internal/timesys"
)

// ChecksumPolicy controls how checksum mismatches are treated.
type ChecksumPolicy int

const (
	// ChecksumStrict fails the record on a checksum mismatch.
	ChecksumStrict ChecksumPolicy = iota
	// ChecksumWarn logs the mismatch and keeps the record. Useful for
	// field-collected TLEs with hand-edited fields.
	ChecksumWarn
)

// Parser reads TLE records from a text stream.
type Parser struct {
	Checksum ChecksumPolicy
	Logger   *slog.Logger
}

// ParseAll reads every record from r. Records that fail to parse are skipped
// with a warning; the per-record errors are returned alongside the good
// records so callers can report them.
func (p *Parser) ParseAll(r io.Reader) ([]MeanElements, []error, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}

	scanner := bufio.NewScanner(r)
	var (
		lines    []string
		lineNums []int
	)
	n := 0
	for scanner.Scan() {
		n++
		line := strings.TrimRight(scanner.Text(), "\r\n\t ")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		lines = append(lines, line)
		lineNums = append(lineNums, n)
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading TLE data: %w", err)
	}

	var (
		elements  []MeanElements
		parseErrs []error
	)
	record := 0
	for i := 0; i < len(lines); {
		record++

		name := ""
		if !strings.HasPrefix(lines[i], "1 ") {
			if strings.HasPrefix(lines[i], "2 ") {
				err := &ParseError{
					Kind:   KindUnexpectedRecord,
					Record: record,
					Line:   lineNums[i],
					Err:    fmt.Errorf("line 2 without a preceding line 1"),
				}
				parseErrs = append(parseErrs, err)
				logger.Warn("skipping TLE line", "line", lineNums[i], "error", err)
				i++
				continue
			}
			// Name line; must be followed by a line 1.
			name = strings.TrimSpace(lines[i])
			if len(name) > 24 {
				name = name[:24]
			}
			i++
			if i >= len(lines) || !strings.HasPrefix(lines[i], "1 ") {
				err := &ParseError{
					Kind:   KindUnexpectedRecord,
					Record: record,
					Line:   lineNums[i-1],
					Err:    fmt.Errorf("name line %q not followed by line 1", name),
				}
				parseErrs = append(parseErrs, err)
				logger.Warn("skipping TLE record", "name", name, "error", err)
				continue
			}
		}

		if i+1 >= len(lines) {
			err := &ParseError{
				Kind:   KindUnexpectedRecord,
				Record: record,
				Line:   lineNums[i],
				Err:    fmt.Errorf("line 1 at end of input without line 2"),
			}
			parseErrs = append(parseErrs, err)
			logger.Warn("skipping TLE record", "name", name, "error", err)
			break
		}

		elem, err := p.parseRecord(name, lines[i], lines[i+1], record, lineNums[i], lineNums[i+1], logger)
		if err != nil {
			parseErrs = append(parseErrs, err)
			logger.Warn("skipping malformed TLE record", "record", record, "name", name, "error", err)
			i += 2
			continue
		}
		elements = append(elements, elem)
		i += 2
	}

	return elements, parseErrs, nil
}

// ParseRecord parses a single two-line record with an optional name.
func (p *Parser) ParseRecord(name, line1, line2 string) (MeanElements, error) {
	logger := p.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return p.parseRecord(name, line1, line2, 1, 1, 2, logger)
}

func (p *Parser) parseRecord(name, line1, line2 string, record, lineNum1, lineNum2 int, logger *slog.Logger) (MeanElements, error) {
	if !strings.HasPrefix(line1, "1 ") {
		return MeanElements{}, &ParseError{
			Kind: KindUnexpectedRecord, Record: record, Line: lineNum1,
			Err: fmt.Errorf("line 1 must begin with %q", "1 "),
		}
	}
	if !strings.HasPrefix(line2, "2 ") {
		return MeanElements{}, &ParseError{
			Kind: KindUnexpectedRecord, Record: record, Line: lineNum2,
			Err: fmt.Errorf("line 2 must begin with %q", "2 "),
		}
	}

	for _, ln := range [2]struct {
		text string
		num  int
	}{{line1, lineNum1}, {line2, lineNum2}} {
		if err := verifyChecksum(ln.text); err != nil {
			perr := &ParseError{Kind: KindChecksumMismatch, Record: record, Line: ln.num, Err: err}
			if p.Checksum == ChecksumWarn {
				logger.Warn("TLE checksum mismatch", "record", record, "line", ln.num, "error", err)
			} else {
				return MeanElements{}, perr
			}
		}
	}

	f := &fieldReader{record: record}

	elem := MeanElements{Name: name, Line1: line1, Line2: line2}

	f.line, f.lineNum = line1, lineNum1
	elem.CatalogNumber = f.integer(3, 7, "catalog number")
	if len(line1) >= 8 {
		elem.Classification = line1[7]
	}
	if len(line1) >= 17 {
		elem.IntlDesignator = strings.TrimRight(line1[9:17], " ")
	}
	yy := f.integer(19, 20, "epoch year")
	elem.EpochDay = f.float(21, 32, "epoch day")
	elem.MeanMotionDot = f.float(34, 43, "first derivative of mean motion")
	elem.MeanMotionDDot = f.exponential(45, 52, "second derivative of mean motion")
	elem.Bstar = f.exponential(54, 61, "bstar drag term")
	elem.EphemerisType = f.integer(63, 63, "ephemeris type")
	elem.ElementNumber = f.integer(65, 68, "element set number")

	f.line, f.lineNum = line2, lineNum2
	catalog2 := f.integer(3, 7, "catalog number")
	inclDeg := f.float(9, 16, "inclination")
	raanDeg := f.float(18, 25, "right ascension of ascending node")
	eccRaw := f.integer(27, 33, "eccentricity")
	argpDeg := f.float(35, 42, "argument of perigee")
	maDeg := f.float(44, 51, "mean anomaly")
	elem.RevsPerDay = f.float(53, 63, "mean motion")
	elem.RevNumber = f.integer(64, 68, "revolution number")

	if f.err != nil {
		return MeanElements{}, f.err
	}

	if catalog2 != elem.CatalogNumber {
		return MeanElements{}, &ParseError{
			Kind: KindMalformedField, Record: record, Line: lineNum2,
			Field: "catalog number", Columns: "3-7",
			Err: fmt.Errorf("line 2 catalog %d does not match line 1 catalog %d", catalog2, elem.CatalogNumber),
		}
	}

	if yy < 57 {
		elem.EpochYear = 2000 + yy
	} else {
		elem.EpochYear = 1900 + yy
	}
	elem.EpochJD = timesys.EpochJD(elem.EpochYear, elem.EpochDay)

	elem.Inclination = inclDeg * deg2rad
	elem.RAAN = raanDeg * deg2rad
	elem.Eccentricity = float64(eccRaw) * 1.0e-7
	elem.ArgPerigee = argpDeg * deg2rad
	elem.MeanAnomaly = maDeg * deg2rad
	elem.MeanMotion = elem.RevsPerDay * revsPerDayToRadMin

	return elem, nil
}

// Checksum computes the modulo-10 line checksum over columns 1–68: digits
// count their value, a minus sign counts 1, everything else counts 0.
func Checksum(line string) int {
	sum := 0
	n := len(line)
	if n > 68 {
		n = 68
	}
	for i := 0; i < n; i++ {
		switch c := line[i]; {
		case c >= '0' && c <= '9':
			sum += int(c - '0')
		case c == '-':
			sum++
		}
	}
	return sum % 10
}

func verifyChecksum(line string) error {
	if len(line) < 69 {
		return fmt.Errorf("line length %d, expected 69", len(line))
	}
	digit := line[68]
	if digit < '0' || digit > '9' {
		return fmt.Errorf("checksum column holds %q, expected a digit", digit)
	}
	want := int(digit - '0')
	if got := Checksum(line); got != want {
		return fmt.Errorf("checksum %d does not match stated %d", got, want)
	}
	return nil
}

// fieldReader extracts positional fields, recording the first failure.
// Columns are 1-based and inclusive, matching the TLE format description.
type fieldReader struct {
	line    string
	lineNum int
	record  int
	err     error
}

func (f *fieldReader) slice(from, to int, field string) (string, bool) {
	if f.err != nil {
		return "", false
	}
	if len(f.line) < to {
		f.fail(from, to, field, fmt.Errorf("line length %d shorter than column %d", len(f.line), to))
		return "", false
	}
	return f.line[from-1 : to], true
}

func (f *fieldReader) fail(from, to int, field string, err error) {
	f.err = &ParseError{
		Kind:    KindMalformedField,
		Record:  f.record,
		Line:    f.lineNum,
		Field:   field,
		Columns: fmt.Sprintf("%d-%d", from, to),
		Err:     err,
	}
}

func (f *fieldReader) integer(from, to int, field string) int {
	s, ok := f.slice(from, to, field)
	if !ok {
		return 0
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		f.fail(from, to, field, err)
		return 0
	}
	return v
}

func (f *fieldReader) float(from, to int, field string) float64 {
	s, ok := f.slice(from, to, field)
	if !ok {
		return 0
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Fields like " .00002182" and "-.00000045" carry no leading zero.
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		f.fail(from, to, field, err)
		return 0
	}
	return v
}

// exponential reads the TLE mantissa+exponent encoding, e.g. " 40768-4" for
// 0.40768e-4 and " 00000-0" for zero.
func (f *fieldReader) exponential(from, to int, field string) float64 {
	s, ok := f.slice(from, to, field)
	if !ok {
		return 0
	}
	if len(s) != 8 {
		f.fail(from, to, field, fmt.Errorf("field width %d, expected 8", len(s)))
		return 0
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1.0
	case ' ', '+', '0':
	default:
		f.fail(from, to, field, fmt.Errorf("invalid sign character %q", s[0]))
		return 0
	}

	mant, err := strconv.Atoi(strings.TrimSpace(s[1:6]))
	if err != nil {
		f.fail(from, to, field, fmt.Errorf("mantissa: %w", err))
		return 0
	}

	exp, err := strconv.Atoi(strings.TrimSpace(s[6:8]))
	if err != nil {
		f.fail(from, to, field, fmt.Errorf("exponent: %w", err))
		return 0
	}

	return sign * float64(mant) * 1.0e-5 * math.Pow(10.0, float64(exp))
}
