package ephem

import "strings"

// Kind classifies a catalog body.
type Kind int

const (
	KindPlanet Kind = iota
	KindDwarfPlanet
	KindMoon
	KindAsteroid
	KindComet
	KindConstellation
)

// String returns the kind name used in API output.
func (k Kind) String() string {
	switch k {
	case KindPlanet:
		return "planet"
	case KindDwarfPlanet:
		return "dwarf_planet"
	case KindMoon:
		return "moon"
	case KindAsteroid:
		return "asteroid"
	case KindComet:
		return "comet"
	case KindConstellation:
		return "constellation"
	default:
		return "unknown"
	}
}

// Body is a solar-system body with a Horizons ephemeris. Constellations are fixed
// targets and live in astro.
type Body struct {
	Name    string   // canonical name, e.g. "Swift-Tuttle"
	Kind    Kind     // planet, comet, ...
	Command string   // Horizons COMMAND value
	Aliases []string // alternative names accepted by LookupBody
}

// Periodic comets are queried by designation, closest apparition, main body only.
func cometCommand(designation string) string {
	return "DES=" + designation + ";CAP;NOFRAG"
}

// Bodies is the canonical catalog of queryable bodies.
var Bodies = []Body{
	// Planets
	{Name: "Mercury", Kind: KindPlanet, Command: "199"},
	{Name: "Venus", Kind: KindPlanet, Command: "299"},
	{Name: "Mars", Kind: KindPlanet, Command: "499"},
	{Name: "Jupiter", Kind: KindPlanet, Command: "599"},
	{Name: "Saturn", Kind: KindPlanet, Command: "699"},
	{Name: "Uranus", Kind: KindPlanet, Command: "799"},
	{Name: "Neptune", Kind: KindPlanet, Command: "899"},
	{Name: "Pluto", Kind: KindDwarfPlanet, Command: "999"},

	// Moons
	{Name: "Moon", Kind: KindMoon, Command: "301", Aliases: []string{"Luna"}},
	{Name: "Phobos", Kind: KindMoon, Command: "401"},
	{Name: "Deimos", Kind: KindMoon, Command: "402"},
	{Name: "Io", Kind: KindMoon, Command: "501"},
	{Name: "Europa", Kind: KindMoon, Command: "502"},
	{Name: "Ganymede", Kind: KindMoon, Command: "503"},
	{Name: "Callisto", Kind: KindMoon, Command: "504"},
	{Name: "Mimas", Kind: KindMoon, Command: "601"},
	{Name: "Enceladus", Kind: KindMoon, Command: "602"},
	{Name: "Tethys", Kind: KindMoon, Command: "603"},
	{Name: "Dione", Kind: KindMoon, Command: "604"},
	{Name: "Rhea", Kind: KindMoon, Command: "605"},
	{Name: "Titan", Kind: KindMoon, Command: "606"},
	{Name: "Miranda", Kind: KindMoon, Command: "701"},
	{Name: "Ariel", Kind: KindMoon, Command: "702"},
	{Name: "Umbriel", Kind: KindMoon, Command: "703"},
	{Name: "Titania", Kind: KindMoon, Command: "704"},
	{Name: "Oberon", Kind: KindMoon, Command: "705"},
	{Name: "Triton", Kind: KindMoon, Command: "801"},
	{Name: "Nereid", Kind: KindMoon, Command: "802"},

	// Asteroids
	{Name: "Ceres", Kind: KindDwarfPlanet, Command: "1;"},
	{Name: "Pallas", Kind: KindAsteroid, Command: "2;"},
	{Name: "Vesta", Kind: KindAsteroid, Command: "3;"},

	// Periodic comets
	{Name: "Halley", Kind: KindComet, Command: cometCommand("1P"), Aliases: []string{"1P", "1P/Halley"}},
	{Name: "Encke", Kind: KindComet, Command: cometCommand("2P"), Aliases: []string{"2P"}},
	{Name: "Tuttle", Kind: KindComet, Command: cometCommand("8P"), Aliases: []string{"8P", "8P/Tuttle"}},
	{Name: "Giacobini-Zinner", Kind: KindComet, Command: cometCommand("21P"), Aliases: []string{"21P"}},
	{Name: "Tempel-Tuttle", Kind: KindComet, Command: cometCommand("55P"), Aliases: []string{"55P"}},
	{Name: "Schwassmann-Wachmann", Kind: KindComet, Command: cometCommand("73P"), Aliases: []string{"73P", "Schwassmann-Wachmann 3"}},
	{Name: "Swift-Tuttle", Kind: KindComet, Command: cometCommand("109P"), Aliases: []string{"109P"}},
}

// BodiesByName maps lowercase names and aliases to catalog entries.
var BodiesByName = func() map[string]Body {
	m := make(map[string]Body, len(Bodies)*2)
	for _, b := range Bodies {
		m[normalizeName(b.Name)] = b
		for _, alias := range b.Aliases {
			m[normalizeName(alias)] = b
		}
	}
	return m
}()

// normalizeName folds case and treats spaces, underscores and hyphens alike,
// so "swift_tuttle" and "Swift Tuttle" both match "Swift-Tuttle".
func normalizeName(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "-", "_", "-").Replace(name)
}

// LookupBody returns the catalog entry for a body name (case-insensitive).
func LookupBody(name string) (Body, bool) {
	b, ok := BodiesByName[normalizeName(name)]
	return b, ok
}

// BodiesOfKind returns catalog entries of kind in catalog order.
func BodiesOfKind(kind Kind) []Body {
	var out []Body
	for _, b := range Bodies {
		if b.Kind == kind {
			out = append(out, b)
		}
	}
	return out
}
