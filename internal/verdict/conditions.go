package verdict

import (
	"strings"
	"sync"

	"github.com/litescript/ls-skywatch/internal/ephem"
)

// Conditions are the thresholds a body must pass to be called visible.
//
// The per-comet values are hand-tuned observing limits, not physical
// constants; adjust them through configuration rather than in code.
type Conditions struct {
	MinAltitudeDeg   float64 `yaml:"min_altitude" json:"min_altitude_deg"`
	MinElongationDeg float64 `yaml:"min_elongation" json:"min_elongation_deg"`
	RequiresDark     bool    `yaml:"requires_dark" json:"requires_dark"`
}

// Tunable defaults.
var (
	DefaultCometConditions         = Conditions{MinAltitudeDeg: 15, MinElongationDeg: 0, RequiresDark: true}
	DefaultConstellationConditions = Conditions{MinAltitudeDeg: 15, MinElongationDeg: 0, RequiresDark: true}
	DefaultPlanetConditions        = Conditions{MinAltitudeDeg: 0, MinElongationDeg: 15, RequiresDark: true}
	LenientConditions              = Conditions{MinAltitudeDeg: 5, MinElongationDeg: 10, RequiresDark: true}
)

// cometConditions are the tuned limits for the catalog's periodic comets.
var cometConditions = map[string]Conditions{
	"Giacobini-Zinner":     {MinAltitudeDeg: 10, MinElongationDeg: 20, RequiresDark: true},
	"Halley":               {MinAltitudeDeg: 15, MinElongationDeg: 30, RequiresDark: true},
	"Tempel-Tuttle":        {MinAltitudeDeg: 12, MinElongationDeg: 25, RequiresDark: true},
	"Swift-Tuttle":         {MinAltitudeDeg: 18, MinElongationDeg: 35, RequiresDark: true},
	"Schwassmann-Wachmann": {MinAltitudeDeg: 10, MinElongationDeg: 20, RequiresDark: true},
	"Tuttle":               {MinAltitudeDeg: 14, MinElongationDeg: 25, RequiresDark: true},
}

// Table resolves the conditions for a body. It is safe for concurrent use.
type Table struct {
	mu     sync.RWMutex
	byName map[string]Conditions
}

// DefaultTable returns a table seeded with the tuned comet limits.
func DefaultTable() *Table {
	t := &Table{byName: make(map[string]Conditions, len(cometConditions))}
	for name, c := range cometConditions {
		t.byName[strings.ToLower(name)] = c
	}
	return t
}

// Override replaces the conditions for one body name.
func (t *Table) Override(name string, c Conditions) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.byName[strings.ToLower(name)] = c
}

// For returns the conditions for a body: its own entry if one exists,
// otherwise the default for its kind.
func (t *Table) For(name string, kind ephem.Kind) Conditions {
	t.mu.RLock()
	c, ok := t.byName[strings.ToLower(name)]
	t.mu.RUnlock()
	if ok {
		return c
	}

	switch kind {
	case ephem.KindComet:
		return DefaultCometConditions
	case ephem.KindConstellation:
		return DefaultConstellationConditions
	default:
		return DefaultPlanetConditions
	}
}

// ApproachThreshold holds the close-approach distances for a planet.
type ApproachThreshold struct {
	StrictAU  float64 // "big approach" at or inside this distance
	LenientAU float64 // "approach" at or inside this distance
}

var approachThresholds = map[string]ApproachThreshold{
	"Mercury": {0.56, 0.60},
	"Venus":   {0.30, 0.50},
	"Mars":    {0.643, 0.70},
	"Jupiter": {4.1, 4.4},
	"Saturn":  {8.33, 8.66},
	"Uranus":  {18.40, 18.60},
	"Neptune": {28.87, 28.90},
	"Pluto":   {34.1, 34.8},
}

// ThresholdFor returns the close-approach thresholds of a planet.
func ThresholdFor(planet string) (ApproachThreshold, bool) {
	th, ok := approachThresholds[planet]
	return th, ok
}

// Approach event labels.
const (
	EventBigApproach = "planet big approach"
	EventApproach    = "planet approach"
)

// ClassifyDistance labels a planet distance against its thresholds. The label
// is empty when the distance is outside both.
func ClassifyDistance(planet string, distanceAU float64) string {
	th, ok := approachThresholds[planet]
	switch {
	case !ok || distanceAU <= 0:
		return ""
	case distanceAU <= th.StrictAU:
		return EventBigApproach
	case distanceAU <= th.LenientAU:
		return EventApproach
	default:
		return ""
	}
}
