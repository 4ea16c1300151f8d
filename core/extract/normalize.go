package extract

import (
	"errors"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kilianp07/shiftplan/core/model"
)

var (
	dateLayouts = []string{"1/2/2006", "2006-01-02"}

	timePattern    = regexp.MustCompile(`^(\d{1,2}):(\d{2})(?::(\d{2}))?(?:\s*[A-Za-z]{1,4})?$`)
	minutesPattern = regexp.MustCompile(`^(\d+(?:\.\d+)?)\s*(?:m|min|mins|minutes)?$`)
	clockDuration  = regexp.MustCompile(`^(\d{1,2}):(\d{2})$`)

	numericNoise = strings.NewReplacer(",", "", "?", "", "$", "", " ", "")

	errEmpty = errors.New("empty token")

	minInt = decimal.NewFromInt(math.MinInt)
	maxInt = decimal.NewFromInt(math.MaxInt)
)

// Normalize converts raw into the value of the given kind. It returns a
// time.Time, model.TimeOfDay, float64, int or time.Duration respectively.
func Normalize(field string, kind FieldKind, raw string) (any, error) {
	switch kind {
	case KindDate:
		return ParseDate(field, raw)
	case KindTime:
		return ParseTime(field, raw)
	case KindDecimal:
		return ParseDecimal(field, raw)
	case KindInteger:
		return ParseInteger(field, raw)
	case KindMinutes:
		return ParseMinutes(field, raw)
	}
	return nil, &FieldParseError{Field: field, Kind: kind, Raw: raw, Err: errors.New("unsupported kind")}
}

// ParseDate accepts MM/DD/YYYY (with or without zero padding) and YYYY-MM-DD.
func ParseDate(field, raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, &FieldParseError{Field: field, Kind: KindDate, Raw: raw, Err: errEmpty}
	}
	var lastErr error
	for _, layout := range dateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, &FieldParseError{Field: field, Kind: KindDate, Raw: raw, Err: lastErr}
}

// ParseTime accepts HH:MM or HH:MM:SS with an optional zone label such as "ET".
// The label is dropped: schedules are read in their printed local time.
func ParseTime(field, raw string) (model.TimeOfDay, error) {
	m := timePattern.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		return 0, &FieldParseError{Field: field, Kind: KindTime, Raw: raw}
	}
	h, _ := strconv.Atoi(m[1])
	mi, _ := strconv.Atoi(m[2])
	sec := 0
	if m[3] != "" {
		sec, _ = strconv.Atoi(m[3])
	}
	if h > 23 || mi > 59 || sec > 59 {
		return 0, &FieldParseError{Field: field, Kind: KindTime, Raw: raw, Err: errors.New("out of range")}
	}
	return model.NewTimeOfDay(h, mi, sec), nil
}

func cleanNumber(raw string) string {
	return numericNoise.Replace(strings.TrimSpace(raw))
}

// ParseDecimal strips thousands separators and stray punctuation before
// converting. An unconvertible token is an error, never a silent zero.
func ParseDecimal(field, raw string) (float64, error) {
	s := cleanNumber(raw)
	if s == "" {
		return 0, &FieldParseError{Field: field, Kind: KindDecimal, Raw: raw, Err: errEmpty}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &FieldParseError{Field: field, Kind: KindDecimal, Raw: raw, Err: err}
	}
	f, _ := d.Float64()
	return f, nil
}

// ParseInteger is ParseDecimal restricted to integral values.
func ParseInteger(field, raw string) (int, error) {
	s := cleanNumber(raw)
	if s == "" {
		return 0, &FieldParseError{Field: field, Kind: KindInteger, Raw: raw, Err: errEmpty}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return 0, &FieldParseError{Field: field, Kind: KindInteger, Raw: raw, Err: err}
	}
	if !d.IsInteger() {
		return 0, &FieldParseError{Field: field, Kind: KindInteger, Raw: raw, Err: errors.New("not integral")}
	}
	if d.LessThan(minInt) || d.GreaterThan(maxInt) {
		return 0, &FieldParseError{Field: field, Kind: KindInteger, Raw: raw, Err: errors.New("out of range")}
	}
	return int(d.IntPart()), nil
}

// ParseMinutes reads load/unload durations written as "30 min", "30" or "1:15".
func ParseMinutes(field, raw string) (time.Duration, error) {
	s := strings.ToLower(strings.TrimSpace(raw))
	if m := clockDuration.FindStringSubmatch(s); m != nil {
		h, _ := strconv.Atoi(m[1])
		mi, _ := strconv.Atoi(m[2])
		return time.Duration(h)*time.Hour + time.Duration(mi)*time.Minute, nil
	}
	m := minutesPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, &FieldParseError{Field: field, Kind: KindMinutes, Raw: raw}
	}
	d, err := decimal.NewFromString(m[1])
	if err != nil {
		return 0, &FieldParseError{Field: field, Kind: KindMinutes, Raw: raw, Err: err}
	}
	secs := d.Mul(decimal.NewFromInt(60)).Round(0).IntPart()
	return time.Duration(secs) * time.Second, nil
}

// Text is the policy for non-load-bearing codes (NASS code, vehicle, class):
// a blank token becomes placeholder instead of an error.
func Text(raw, placeholder string) string {
	s := strings.TrimSpace(raw)
	if s == "" || strings.EqualFold(s, "nan") {
		return placeholder
	}
	return s
}
