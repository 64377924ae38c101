package astro

import "math"

// Direction is one of the eight compass octants.
type Direction int

const (
	North Direction = iota
	Northeast
	East
	Southeast
	South
	Southwest
	West
	Northwest
)

var directionNames = [...]string{
	"North", "Northeast", "East", "Southeast",
	"South", "Southwest", "West", "Northwest",
}

// String returns the octant name.
func (d Direction) String() string {
	if d < North || d > Northwest {
		return "Unknown"
	}
	return directionNames[d]
}

// AzimuthToDirection maps an azimuth in degrees (clockwise from north) to an
// octant. Octants are 45° wide and centred on their bearing, so North covers
// [337.5, 22.5]. An azimuth exactly on a boundary belongs to the lower-index
// octant: 22.5 and 337.5 are North, 67.5 is Northeast.
func AzimuthToDirection(azDeg float64) Direction {
	az := normalizeAngle360(azDeg)
	if az <= 22.5 || az >= 337.5 {
		return North
	}
	idx := int(math.Ceil((az - 22.5) / 45))
	return Direction(idx % 8)
}

// MarshalText renders the octant name, so directions encode as JSON strings.
func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText parses an octant name.
func (d *Direction) UnmarshalText(text []byte) error {
	for i, name := range directionNames {
		if name == string(text) {
			*d = Direction(i)
			return nil
		}
	}
	return &FormatError{Field: "direction", Value: string(text), Reason: "unknown compass octant"}
}
