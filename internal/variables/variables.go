package variables

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"

	"soundcraft/internal/services"
)

// Tier is the priority class of a variable. Tier I is mandatory; higher
// tiers are optional refinements.
type Tier int

const (
	TierI Tier = iota + 1
	TierII
	TierIII
	TierIV
	TierV
	TierVI
)

// String renders the tier as a roman numeral, matching catalog documentation.
func (t Tier) String() string {
	numerals := []string{"I", "II", "III", "IV", "V", "VI"}
	if t < TierI || int(t) > len(numerals) {
		return fmt.Sprintf("Tier(%d)", int(t))
	}
	return numerals[t-1]
}

// Kind describes the domain shape of a variable.
type Kind string

const (
	KindChoice Kind = "choice"
	KindInt    Kind = "int"
	KindLength Kind = "length"
	KindText   Kind = "text"
)

// Definition describes one variable: identifier, tier, and domain.
type Definition struct {
	ID      string
	Label   string
	Tier    Tier
	Kind    Kind
	Choices []string
	Min     int
	Max     int
	Default string
	Unit    string
}

// Required reports whether the variable must be fulfilled before consent.
func (d Definition) Required() bool {
	return d.Tier == TierI
}

var fold = cases.Fold()

// Validate checks a candidate value against the definition's domain and
// returns the canonical form. The returned error carries the
// services.ErrValidation marker.
func (d Definition) Validate(raw string) (string, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return "", services.Wrap(services.ErrValidation, "variables", d.ID, "value is empty", nil)
	}

	switch d.Kind {
	case KindChoice:
		folded := fold.String(value)
		for _, choice := range d.Choices {
			if fold.String(choice) == folded {
				return choice, nil
			}
		}
		return "", services.Wrap(services.ErrValidation, "variables", d.ID,
			fmt.Sprintf("%q is not one of [%s]", value, strings.Join(d.Choices, ", ")), nil)

	case KindInt:
		n, err := strconv.Atoi(value)
		if err != nil {
			return "", services.Wrap(services.ErrValidation, "variables", d.ID,
				fmt.Sprintf("%q is not an integer", value), nil)
		}
		if n < d.Min || n > d.Max {
			return "", services.Wrap(services.ErrValidation, "variables", d.ID,
				fmt.Sprintf("%d outside range [%d, %d]", n, d.Min, d.Max), nil)
		}
		return strconv.Itoa(n), nil

	case KindLength:
		if _, err := ParseLength(value); err != nil {
			return "", services.Wrap(services.ErrValidation, "variables", d.ID, err.Error(), nil)
		}
		return strings.ToLower(strings.Join(strings.Fields(value), " ")), nil

	case KindText:
		return value, nil

	default:
		return "", services.Wrap(services.ErrValidation, "variables", d.ID,
			fmt.Sprintf("unknown kind %q", d.Kind), nil)
	}
}

// Length is a resolved output length: either a bar count or absolute time.
type Length struct {
	Bars    int
	Seconds float64
}

// Absolute reports whether the length was given as absolute time. Absolute
// time overrides any bar count derived from tempo.
func (l Length) Absolute() bool { return l.Seconds > 0 }

// Duration resolves the length into wall time at the given tempo, assuming
// 4/4 (four beats per bar).
func (l Length) Duration(tempoBPM int) time.Duration {
	if l.Absolute() {
		return time.Duration(l.Seconds * float64(time.Second))
	}
	beats := float64(l.Bars) * 4.0
	seconds := beats * 60.0 / float64(tempoBPM)
	return time.Duration(seconds * float64(time.Second))
}

// ParseLength parses "8 bars", "16bars", "30s", "12.5 sec", or "2m".
func ParseLength(value string) (Length, error) {
	compact := strings.ToLower(strings.Join(strings.Fields(value), ""))
	switch {
	case strings.HasSuffix(compact, "bars"), strings.HasSuffix(compact, "bar"):
		digits := strings.TrimSuffix(strings.TrimSuffix(compact, "bars"), "bar")
		n, err := strconv.Atoi(digits)
		if err != nil || n <= 0 || n > 1024 {
			return Length{}, fmt.Errorf("bar count %q must be an integer in [1, 1024]", value)
		}
		return Length{Bars: n}, nil
	case strings.HasSuffix(compact, "sec"), strings.HasSuffix(compact, "s"),
		strings.HasSuffix(compact, "m"), strings.HasSuffix(compact, "min"):
		seconds, err := parseSeconds(compact)
		if err != nil {
			return Length{}, err
		}
		if seconds <= 0 || seconds > 3600 {
			return Length{}, fmt.Errorf("absolute length %q must be in (0s, 1h]", value)
		}
		return Length{Seconds: seconds}, nil
	default:
		return Length{}, fmt.Errorf("length %q must end in bars, s/sec, or m/min", value)
	}
}

func parseSeconds(compact string) (float64, error) {
	multiplier := 1.0
	for _, suffix := range []struct {
		text  string
		scale float64
	}{{"sec", 1}, {"min", 60}, {"s", 1}, {"m", 60}} {
		if strings.HasSuffix(compact, suffix.text) {
			compact = strings.TrimSuffix(compact, suffix.text)
			multiplier = suffix.scale
			break
		}
	}
	n, err := strconv.ParseFloat(compact, 64)
	if err != nil {
		return 0, fmt.Errorf("length %q is not numeric", compact)
	}
	return n * multiplier, nil
}
