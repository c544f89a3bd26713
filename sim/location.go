package sim

import "fmt"

// LocationKind tags the variant of a Location.
type LocationKind int

const (
	KindPickupSite LocationKind = iota
	KindTerminal
	KindDepot
)

// String returns the human-readable kind name.
func (k LocationKind) String() string {
	switch k {
	case KindPickupSite:
		return "pickup site"
	case KindTerminal:
		return "terminal"
	case KindDepot:
		return "depot"
	default:
		return "unknown location"
	}
}

// Coordinates is a longitude/latitude pair in WGS84 degrees.
type Coordinates struct {
	Lon float64 `json:"lon" yaml:"lon"`
	Lat float64 `json:"lat" yaml:"lat"`
}

// Lerp linearly interpolates between c and to. f is not clamped.
func (c Coordinates) Lerp(to Coordinates, f float64) Coordinates {
	return Coordinates{
		Lon: c.Lon + (to.Lon-c.Lon)*f,
		Lat: c.Lat + (to.Lat-c.Lat)*f,
	}
}

// Location is one row of the location table.
type Location struct {
	Index     int          // position in the location table and the matrices
	Kind      LocationKind // variant tag
	KindIndex int          // position among locations of the same kind (site #, depot #)
	Coordinates
}

// LocationTable is the process-wide indexed table of places.
// Rows are ordered pickup sites, then terminals, then depots. The table is built
// once and never resized.
type LocationTable struct {
	locations []Location
	byKind    map[LocationKind][]int
}

// NewLocationTable builds the table from per-kind coordinate lists.
func NewLocationTable(sites, terminals, depots []Coordinates) *LocationTable {
	t := &LocationTable{
		locations: make([]Location, 0, len(sites)+len(terminals)+len(depots)),
		byKind:    make(map[LocationKind][]int, 3),
	}
	t.add(KindPickupSite, sites)
	t.add(KindTerminal, terminals)
	t.add(KindDepot, depots)
	return t
}

func (t *LocationTable) add(kind LocationKind, coords []Coordinates) {
	for i, c := range coords {
		idx := len(t.locations)
		t.locations = append(t.locations, Location{
			Index:       idx,
			Kind:        kind,
			KindIndex:   i,
			Coordinates: c,
		})
		t.byKind[kind] = append(t.byKind[kind], idx)
	}
}

// Len returns the total number of locations.
func (t *LocationTable) Len() int {
	return len(t.locations)
}

// Valid reports whether i is a location index of this table.
func (t *LocationTable) Valid(i int) bool {
	return i >= 0 && i < len(t.locations)
}

// At returns the location at index i. Panics if i is out of range.
func (t *LocationTable) At(i int) Location {
	return t.locations[i]
}

// IndexesOf returns the location indexes of the given kind, in kind order.
func (t *LocationTable) IndexesOf(kind LocationKind) []int {
	return append([]int(nil), t.byKind[kind]...)
}

// Count returns the number of locations of the given kind.
func (t *LocationTable) Count(kind LocationKind) int {
	return len(t.byKind[kind])
}

// Coordinates returns the coordinates of every location in table order.
func (t *LocationTable) Coordinates() []Coordinates {
	out := make([]Coordinates, len(t.locations))
	for i, l := range t.locations {
		out[i] = l.Coordinates
	}
	return out
}

// Describe returns e.g. "pickup site #3" for logging.
func (t *LocationTable) Describe(i int) string {
	if !t.Valid(i) {
		return fmt.Sprintf("unknown location #%d", i)
	}
	l := t.locations[i]
	return fmt.Sprintf("%s #%d", l.Kind, l.KindIndex)
}
