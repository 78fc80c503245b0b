// -----------------------------------------------------------------------
// Cycle points - discrete time coordinates for task instances
// -----------------------------------------------------------------------

package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Cycling modes.
const (
	CyclingModeInteger   = "integer"
	CyclingModeGregorian = "gregorian"
)

// pointTimeLayouts are the accepted datetime point forms, tried in order.
var pointTimeLayouts = []string{
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04",
	"2006-01-02",
	"20060102T1504Z",
	"20060102T15Z",
	"20060102T1504",
	"20060102",
}

// IsIntegerPoint reports whether a point string is an integer point.
func IsIntegerPoint(point string) bool {
	_, err := strconv.ParseInt(point, 10, 64)
	return err == nil
}

// PointTime parses a datetime cycle point into wall-clock time (UTC when no
// zone is given).
func PointTime(point string) (time.Time, error) {
	for _, layout := range pointTimeLayouts {
		if t, err := time.Parse(layout, point); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid datetime cycle point %q", point)
}

// ComparePoints orders two cycle points: -1, 0 or 1. Integer points compare
// numerically, datetime points by instant, and mixed or unparsable points
// fall back to string order so ordering stays total.
func ComparePoints(a, b string) int {
	ai, aerr := strconv.ParseInt(a, 10, 64)
	bi, berr := strconv.ParseInt(b, 10, 64)
	if aerr == nil && berr == nil {
		switch {
		case ai < bi:
			return -1
		case ai > bi:
			return 1
		}
		return 0
	}
	at, aterr := PointTime(a)
	bt, bterr := PointTime(b)
	if aterr == nil && bterr == nil {
		switch {
		case at.Before(bt):
			return -1
		case at.After(bt):
			return 1
		}
		return 0
	}
	return strings.Compare(a, b)
}

// OffsetIntegerPoint applies a signed integer-cycling offset to a point.
func OffsetIntegerPoint(point string, offset int64) (string, error) {
	p, err := strconv.ParseInt(point, 10, 64)
	if err != nil {
		return "", fmt.Errorf("integer offset on non-integer point %q", point)
	}
	return strconv.FormatInt(p+offset, 10), nil
}

// ISODuration is a parsed ISO-8601 duration. Calendar components are kept
// separate from the clock component so offsets apply with calendar
// arithmetic rather than fixed-length approximations.
type ISODuration struct {
	Negative bool
	Years    int
	Months   int
	Weeks    int
	Days     int
	Clock    time.Duration
	// Integer carries the "Pn" integer-cycling shorthand magnitude.
	Integer int
}

// ParseISODuration parses durations of the form [-]P[nY][nM][nW][nD][T[nH][nM][nS]],
// plus the integer-cycling shorthand "[-]Pn".
func ParseISODuration(s string) (ISODuration, error) {
	d := ISODuration{}
	raw := s
	if strings.HasPrefix(s, "-") {
		d.Negative = true
		s = s[1:]
	} else if strings.HasPrefix(s, "+") {
		s = s[1:]
	}
	if !strings.HasPrefix(s, "P") {
		return d, fmt.Errorf("invalid ISO duration %q", raw)
	}
	s = s[1:]
	if s == "" {
		return d, fmt.Errorf("invalid ISO duration %q: empty body", raw)
	}
	// Integer-cycling shorthand: P1, P5, ...
	if n, err := strconv.Atoi(s); err == nil {
		d.Integer = n
		return d, nil
	}
	inTime := false
	parsedAny := false
	num := ""
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9' || r == '.':
			num += string(r)
		case r == 'T':
			if inTime {
				return d, fmt.Errorf("invalid ISO duration %q", raw)
			}
			inTime = true
		default:
			if num == "" {
				return d, fmt.Errorf("invalid ISO duration %q", raw)
			}
			n, err := strconv.ParseFloat(num, 64)
			if err != nil {
				return d, fmt.Errorf("invalid ISO duration %q: %w", raw, err)
			}
			num = ""
			parsedAny = true
			switch {
			case !inTime && r == 'Y':
				d.Years = int(n)
			case !inTime && r == 'M':
				d.Months = int(n)
			case !inTime && r == 'W':
				d.Weeks = int(n)
			case !inTime && r == 'D':
				d.Days = int(n)
			case inTime && r == 'H':
				d.Clock += time.Duration(n * float64(time.Hour))
			case inTime && r == 'M':
				d.Clock += time.Duration(n * float64(time.Minute))
			case inTime && r == 'S':
				d.Clock += time.Duration(n * float64(time.Second))
			default:
				return d, fmt.Errorf("invalid ISO duration designator %q in %q", string(r), raw)
			}
		}
	}
	if num != "" {
		return d, fmt.Errorf("invalid ISO duration %q: trailing number", raw)
	}
	if !parsedAny {
		return d, fmt.Errorf("invalid ISO duration %q: no components", raw)
	}
	return d, nil
}

// AddTo applies the duration to an instant.
func (d ISODuration) AddTo(t time.Time) time.Time {
	sign := 1
	if d.Negative {
		sign = -1
	}
	t = t.AddDate(sign*d.Years, sign*d.Months, sign*(d.Days+7*d.Weeks))
	return t.Add(time.Duration(sign) * d.Clock)
}

// IntegerOffset returns the signed integer-cycling offset for shorthand
// durations ("P1" => 1, "-P2" => -2); zero for calendar durations.
func (d ISODuration) IntegerOffset() int64 {
	if d.Negative {
		return -int64(d.Integer)
	}
	return int64(d.Integer)
}
