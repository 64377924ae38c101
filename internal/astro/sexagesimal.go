package astro

import (
	"fmt"
	"strconv"
	"strings"

	sexa "github.com/soniakeys/sexagesimal"
	"github.com/soniakeys/unit"
)

// ParseRADec converts sexagesimal right ascension ("HH MM SS.ss") and
// declination ("+DD MM SS.s") text into decimal hours and decimal degrees.
//
// The first character of the declination must be its sign. Both strings need
// at least three whitespace-separated numeric fields.
func ParseRADec(raText, decText string) (raHours, decDeg float64, err error) {
	h, m, s, err := parseTriple("ra", raText, raText)
	if err != nil {
		return 0, 0, err
	}
	raHours = h + m/60 + s/3600

	dec := strings.TrimSpace(decText)
	if dec == "" {
		return 0, 0, &FormatError{Field: "dec", Value: decText, Reason: "empty"}
	}
	sign := 1.0
	switch dec[0] {
	case '+':
		dec = dec[1:]
	case '-':
		sign = -1
		dec = dec[1:]
	default:
		return 0, 0, &FormatError{Field: "dec", Value: decText, Reason: "missing sign"}
	}

	d, m, s, err := parseTriple("dec", decText, dec)
	if err != nil {
		return 0, 0, err
	}
	decDeg = sign * (d + m/60 + s/3600)

	return raHours, decDeg, nil
}

// parseTriple reads the first three numeric fields of text.
func parseTriple(field, orig, text string) (a, b, c float64, err error) {
	fields := strings.Fields(text)
	if len(fields) < 3 {
		return 0, 0, 0, &FormatError{
			Field:  field,
			Value:  orig,
			Reason: fmt.Sprintf("need 3 fields, got %d", len(fields)),
		}
	}

	var vals [3]float64
	for i := 0; i < 3; i++ {
		v, perr := strconv.ParseFloat(fields[i], 64)
		if perr != nil {
			return 0, 0, 0, &FormatError{Field: field, Value: orig, Reason: "non-numeric field " + fields[i]}
		}
		vals[i] = v
	}
	return vals[0], vals[1], vals[2], nil
}

// horizonsSymbols separate sexagesimal fields with spaces, the layout of
// Horizons observer tables and of ParseRADec input.
var horizonsSymbols = &sexa.Symbols{
	DMSUnits: sexa.UnitSymbols{HrDeg: " ", Min: " "},
	HMSUnits: sexa.UnitSymbols{HrDeg: " ", Min: " "},
	DecSep:   ".",
}

// FormatRA renders decimal hours as "HH MM SS.ss", wrapped into [0, 24).
func FormatRA(raHours float64) string {
	ra := horizonsSymbols.FmtRA(unit.RAFromHour(raHours))
	return strings.TrimSpace(fmt.Sprintf("%02.2s", ra))
}

// FormatDec renders decimal degrees as "+DD MM SS.s".
func FormatDec(decDeg float64) string {
	return fmt.Sprintf("%+02.1s", horizonsSymbols.FmtAngle(unit.AngleFromDeg(decDeg)))
}
