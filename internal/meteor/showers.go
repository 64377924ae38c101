// Package meteor relates meteor showers to the close approach of their
// parent comets.
package meteor

import (
	"fmt"
	"strings"
	"time"
)

// MonthDay is a calendar day without a year.
type MonthDay struct {
	Month time.Month
	Day   int
}

// In returns the date in year, at UTC midnight.
func (md MonthDay) In(year int) time.Time {
	return time.Date(year, md.Month, md.Day, 0, 0, 0, 0, time.UTC)
}

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// Shower is a meteor shower produced by a periodic comet. Annual showers
// peak on fixed calendar days; the rest peak at a delay after the comet's
// passage.
type Shower struct {
	Name      string
	Comet     string
	Annual    bool
	PeakStart MonthDay // annual showers only
	PeakEnd   MonthDay

	// Radiant at peak, J2000 degrees.
	RadiantRAdeg  float64
	RadiantDecDeg float64
}

// Catalog lists the showers of the tracked comets.
var Catalog = []Shower{
	{"Eta Aquariid", "Halley", true, MonthDay{time.May, 2}, MonthDay{time.May, 6}, 338, -1},
	{"Orionid", "Halley", true, MonthDay{time.October, 19}, MonthDay{time.October, 23}, 95, 16},
	{"Ursid", "Tuttle", true, MonthDay{time.December, 21}, MonthDay{time.December, 24}, 217, 76},
	{"Perseid", "Swift-Tuttle", true, MonthDay{time.August, 11}, MonthDay{time.August, 14}, 48, 58},
	{"Draconid", "Giacobini-Zinner", false, MonthDay{}, MonthDay{}, 262, 54},
	{"Leonid", "Tempel-Tuttle", false, MonthDay{}, MonthDay{}, 152, 22},
	{"Tau Herculid", "Schwassmann-Wachmann", false, MonthDay{}, MonthDay{}, 209, 28},
}

// PeakOffsetDays is the typical delay from a comet's passage to the peak of
// its shower. Only non-annual showers use it to estimate a peak date.
var PeakOffsetDays = map[string]int{
	"Halley":               75,
	"Tuttle":               80,
	"Giacobini-Zinner":     40,
	"Tempel-Tuttle":        100,
	"Schwassmann-Wachmann": 60,
	"Swift-Tuttle":         70,
}

// EstimatedPeakHalfWidth spreads an estimated peak date into a period.
const EstimatedPeakHalfWidth = 2 * 24 * time.Hour

// ShowersFor returns the showers of a comet, ignoring case.
func ShowersFor(comet string) []Shower {
	var out []Shower
	for _, s := range Catalog {
		if strings.EqualFold(s.Comet, comet) {
			out = append(out, s)
		}
	}
	return out
}

// LookupShower finds a shower by name, ignoring case.
func LookupShower(name string) (Shower, bool) {
	for _, s := range Catalog {
		if strings.EqualFold(s.Name, name) {
			return s, true
		}
	}
	return Shower{}, false
}
