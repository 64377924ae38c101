package astro

import "strings"

// Constellation is a fixed target represented by the approximate centre of
// its figure. Coordinates are J2000 degrees.
type Constellation struct {
	Name   string
	Abbrev string // IAU three-letter abbreviation
	RAdeg  float64
	DecDeg float64
}

// Constellations is the catalog of constellations that can be queried by name.
// Ordered by right ascension.
var Constellations = []Constellation{
	{"Pisces", "Psc", 7.5, 13.0},
	{"Andromeda", "And", 12.0, 37.4},
	{"Cassiopeia", "Cas", 15.0, 62.2},
	{"Aries", "Ari", 39.0, 20.8},
	{"Perseus", "Per", 48.0, 45.0},
	{"Taurus", "Tau", 70.0, 14.9},
	{"Orion", "Ori", 83.0, 5.0},
	{"Auriga", "Aur", 90.0, 42.0},
	{"Canis Major", "CMa", 102.0, -22.1},
	{"Gemini", "Gem", 105.0, 22.6},
	{"Cancer", "Cnc", 129.0, 19.8},
	{"Leo", "Leo", 160.0, 13.1},
	{"Ursa Major", "UMa", 165.0, 56.0},
	{"Crux", "Cru", 187.0, -60.0},
	{"Virgo", "Vir", 200.0, -4.2},
	{"Bootes", "Boo", 221.0, 31.2},
	{"Ursa Minor", "UMi", 225.0, 77.7},
	{"Draco", "Dra", 227.0, 67.0},
	{"Libra", "Lib", 228.0, -15.2},
	{"Scorpius", "Sco", 253.0, -27.0},
	{"Hercules", "Her", 261.0, 27.5},
	{"Lyra", "Lyr", 283.0, 36.7},
	{"Sagittarius", "Sgr", 287.0, -25.0},
	{"Aquila", "Aql", 296.0, 3.4},
	{"Cygnus", "Cyg", 309.0, 42.0},
	{"Capricornus", "Cap", 315.0, -18.0},
	{"Aquarius", "Aqr", 334.0, -10.8},
	{"Pegasus", "Peg", 340.0, 19.5},
}

// constellationsByName maps lowercase names and abbreviations to catalog entries.
var constellationsByName = func() map[string]Constellation {
	m := make(map[string]Constellation, len(Constellations)*2)
	for _, c := range Constellations {
		m[strings.ToLower(c.Name)] = c
		m[strings.ToLower(c.Abbrev)] = c
	}
	return m
}()

// LookupConstellation finds a constellation by name or abbreviation,
// ignoring case.
func LookupConstellation(name string) (Constellation, bool) {
	c, ok := constellationsByName[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}
