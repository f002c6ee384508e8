package asn1binary

import (
	"strconv"
	"strings"
	"time"

	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1core"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1error"
	"github.com/davidjspooner/asn1kit/pkg/asn1/asn1go"
)

// digits parses a fixed width run of decimal digits.
func digits(s string, pos, width int) (int, bool) {
	if pos+width > len(s) {
		return 0, false
	}
	n := 0
	for _, c := range s[pos : pos+width] {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// parseZone reads "Z" or "+HHMM"/"-HHMM" (or "+HH" when allowShort is set)
// and must consume the rest of s.
func parseZone(s string, allowShort bool) (*time.Location, bool) {
	if s == "Z" {
		return time.UTC, true
	}
	if len(s) != 5 && !(allowShort && len(s) == 3) {
		return nil, false
	}
	sign := 1
	switch s[0] {
	case '+':
	case '-':
		sign = -1
	default:
		return nil, false
	}
	hh, ok := digits(s, 1, 2)
	if !ok || hh > 23 {
		return nil, false
	}
	mm := 0
	if len(s) == 5 {
		if mm, ok = digits(s, 3, 2); !ok || mm > 59 {
			return nil, false
		}
	}
	offset := sign * (hh*3600 + mm*60)
	if offset == 0 {
		return time.UTC, true
	}
	return time.FixedZone("", offset), true
}

// validDate builds a time and rejects field values that time.Date would
// otherwise normalise, such as February 30th.
func validDate(year, month, day, hour, min, sec, nsec int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 || hour > 23 || min > 59 || sec > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, time.Month(month), day, hour, min, sec, nsec, loc)
	if t.Day() != day || t.Month() != time.Month(month) {
		return time.Time{}, false
	}
	return t, true
}

func timeText(e asn1go.RawValue, universal uint32, typeName string) (string, error) {
	b, err := concatSegments(e, universal, typeName)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ParseUTCTime accepts exactly YYMMDDHHMMSS followed by Z or +HHMM/-HHMM.
// Two digit years below 50 are in the 2000s.
func ParseUTCTime(e asn1go.RawValue) (time.Time, error) {
	invalid := asn1error.New(asn1error.InvalidContent, "Invalid UTCTime")
	s, err := timeText(e, asn1core.TagUTCTime, "UTCTime")
	if err != nil {
		return time.Time{}, err
	}
	var fields [6]int
	for i := range fields {
		n, ok := digits(s, i*2, 2)
		if !ok {
			return time.Time{}, invalid
		}
		fields[i] = n
	}
	loc, ok := parseZone(s[12:], false)
	if !ok {
		return time.Time{}, invalid
	}
	year := 1900 + fields[0]
	if fields[0] < 50 {
		year = 2000 + fields[0]
	}
	t, ok := validDate(year, fields[1], fields[2], fields[3], fields[4], fields[5], 0, loc)
	if !ok {
		return time.Time{}, invalid
	}
	return t, nil
}

func UTCTimeContent(t time.Time) ([]byte, error) {
	if t.Year() < 1950 || t.Year() > 2049 {
		return nil, asn1error.New(asn1error.InvalidContent, "Invalid UTCTime")
	}
	return []byte(t.Format("060102150405") + zoneText(t)), nil
}

func zoneText(t time.Time) string {
	_, offset := t.Zone()
	if offset == 0 {
		return "Z"
	}
	return t.Format("-0700")
}

// ParseGeneralizedTime accepts YYYYMMDDHH[MM[SS]][(.|,)fraction][Z|+HH[MM]|-HH[MM]].
// The fraction applies to the last unit present. Without a zone the time is
// taken as UTC.
func ParseGeneralizedTime(e asn1go.RawValue) (time.Time, error) {
	invalid := asn1error.New(asn1error.InvalidContent, "Invalid GeneralizedTime")
	s, err := timeText(e, asn1core.TagGeneralizedTime, "GeneralizedTime")
	if err != nil {
		return time.Time{}, err
	}
	year, ok := digits(s, 0, 4)
	if !ok {
		return time.Time{}, invalid
	}
	var fields [5]int // month, day, hour, minute, second
	pos := 4
	count := 0
	for ; count < len(fields); count++ {
		n, ok := digits(s, pos, 2)
		if !ok {
			break
		}
		fields[count] = n
		pos += 2
	}
	if count < 3 {
		return time.Time{}, invalid
	}

	var frac time.Duration
	if pos < len(s) && (s[pos] == '.' || s[pos] == ',') {
		end := pos + 1
		for end < len(s) && s[end] >= '0' && s[end] <= '9' {
			end++
		}
		if end == pos+1 {
			return time.Time{}, invalid
		}
		f, err := strconv.ParseFloat("0."+s[pos+1:end], 64)
		if err != nil {
			return time.Time{}, invalid
		}
		unit := []time.Duration{time.Hour, time.Minute, time.Second}[count-3]
		frac = time.Duration(f * float64(unit))
		pos = end
	}

	loc := time.UTC
	if pos < len(s) {
		if loc, ok = parseZone(s[pos:], true); !ok {
			return time.Time{}, invalid
		}
	}
	t, ok := validDate(year, fields[0], fields[1], fields[2], fields[3], fields[4], 0, loc)
	if !ok {
		return time.Time{}, invalid
	}
	return t.Add(frac), nil
}

func GeneralizedTimeContent(t time.Time) []byte {
	s := t.Format("20060102150405")
	if ns := t.Nanosecond(); ns != 0 {
		s += "." + strings.TrimRight(strconv.FormatInt(int64(ns)+1e9, 10)[1:], "0")
	}
	return []byte(s + zoneText(t))
}
