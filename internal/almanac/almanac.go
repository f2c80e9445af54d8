// Package almanac computes the sidereal quantities behind the cosmic
// anchor derivation: Julian date, Greenwich and local sidereal time, and
// the galactic center's hour angle and altitude for an observer. All inputs
// are explicit; there are no network lookups.
package almanac

import (
	"math"
	"time"
)

// Galactic center (Sgr A*) equatorial coordinates, J2000.
const (
	RAGalacticCenterDeg  = 266.404988
	DecGalacticCenterDeg = -29.007807
)

// Sighting is the full derivation for one observer and instant.
type Sighting struct {
	JulianDate     float64
	LSTHours       float64
	HourAngleHours float64
	AltitudeDeg    float64
	PhaseWeight    float64
	AltitudeWeight float64
	// CompositeWeight is the product of the phase and altitude weights,
	// floored at 1e-12 so downstream frequency scaling never collapses to
	// zero.
	CompositeWeight float64
}

// JulianDate converts an instant to the Julian date. The time is taken in
// UTC; the algorithm is the standard Gregorian conversion.
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	year := t.Year()
	month := int(t.Month())
	day := float64(t.Day()) +
		(float64(t.Hour())+float64(t.Minute())/60+float64(t.Second())/3600)/24

	if month <= 2 {
		year--
		month += 12
	}
	a := year / 100
	b := 2 - a + a/4
	return math.Trunc(365.25*float64(year+4716)) +
		math.Trunc(30.6001*float64(month+1)) +
		day + float64(b) - 1524.5
}

// GMSTDegrees returns the Greenwich mean sidereal time in degrees.
func GMSTDegrees(jd float64) float64 {
	return wrapDegrees(280.46061837 + 360.98564736629*(jd-2451545.0))
}

// LSTHours returns the local sidereal time in hours for an east-positive
// longitude in degrees.
func LSTHours(jd, lonDeg float64) float64 {
	return wrapDegrees(GMSTDegrees(jd)+lonDeg) / 15
}

// HourAngleHours returns the hour angle of a body with right ascension
// raHours, in [0, 24).
func HourAngleHours(lstHours, raHours float64) float64 {
	h := math.Mod(lstHours-raHours, 24)
	if h < 0 {
		h += 24
	}
	return h
}

// AltitudeDegrees returns the altitude of a body above the horizon for an
// observer at latDeg, given the body's declination and hour angle.
func AltitudeDegrees(latDeg, decDeg, hourAngleHours float64) float64 {
	lat := latDeg * math.Pi / 180
	dec := decDeg * math.Pi / 180
	h := hourAngleHours * 15 * math.Pi / 180
	s := math.Sin(lat)*math.Sin(dec) + math.Cos(lat)*math.Cos(dec)*math.Cos(h)
	if s > 1 {
		s = 1
	}
	if s < -1 {
		s = -1
	}
	return math.Asin(s) * 180 / math.Pi
}

// GalacticCenter derives the full galactic center sighting for an observer
// at latDeg/lonDeg at instant t.
func GalacticCenter(t time.Time, latDeg, lonDeg float64) Sighting {
	jd := JulianDate(t)
	lst := LSTHours(jd, lonDeg)
	h := HourAngleHours(lst, RAGalacticCenterDeg/15)
	alt := AltitudeDegrees(latDeg, DecGalacticCenterDeg, h)

	phase := 0.5 * (1 + math.Cos(2*math.Pi*h/24))
	altWeight := (math.Sin(alt*math.Pi/180) + 1) * 0.5
	if altWeight < 0 {
		altWeight = 0
	}
	composite := phase * altWeight
	if composite < 1e-12 {
		composite = 1e-12
	}

	return Sighting{
		JulianDate:      jd,
		LSTHours:        lst,
		HourAngleHours:  h,
		AltitudeDeg:     alt,
		PhaseWeight:     phase,
		AltitudeWeight:  altWeight,
		CompositeWeight: composite,
	}
}

func wrapDegrees(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
