package engine

import "fmt"

// Color is one of the four disease colors.
type Color int

const (
	Blue Color = iota
	Yellow
	Black
	Red
)

// NumColors is the number of disease colors.
const NumColors = 4

var colorNames = [NumColors]string{"blue", "yellow", "black", "red"}

func (c Color) String() string {
	if c < 0 || int(c) >= NumColors {
		return "unknown"
	}
	return colorNames[c]
}

// Valid reports whether c names one of the four disease colors.
func (c Color) Valid() bool {
	return c >= 0 && int(c) < NumColors
}

// ParseColor maps a color name back to its Color.
func ParseColor(s string) (Color, error) {
	for i, n := range colorNames {
		if n == s {
			return Color(i), nil
		}
	}
	return 0, fmt.Errorf("unknown color %q", s)
}

func (c Color) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, fmt.Errorf("invalid color %d", int(c))
	}
	return []byte(c.String()), nil
}

func (c *Color) UnmarshalText(b []byte) error {
	v, err := ParseColor(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// AllColors returns the four colors in track order.
func AllColors() []Color {
	return []Color{Blue, Yellow, Black, Red}
}

// City is a static node of the world graph.
type City struct {
	ID        string   `json:"id"`
	Name      string   `json:"name"`
	Color     Color    `json:"color"`
	Neighbors []string `json:"neighbors"`
}

// World is the immutable city graph shared by every game.
type World struct {
	cities map[string]City
	order  []string
}

// StartCity is where every pawn begins and where the first research station stands.
const StartCity = "atlanta"

// CitiesPerColor is the size of each color group.
const CitiesPerColor = 12

// NewWorld builds a world from a city list. Adjacency must be symmetric.
func NewWorld(cities []City) (*World, error) {
	w := &World{cities: make(map[string]City, len(cities))}
	for _, c := range cities {
		if _, dup := w.cities[c.ID]; dup {
			return nil, fmt.Errorf("duplicate city %q", c.ID)
		}
		if !c.Color.Valid() {
			return nil, fmt.Errorf("city %q has invalid color", c.ID)
		}
		n := make([]string, len(c.Neighbors))
		copy(n, c.Neighbors)
		c.Neighbors = n
		w.cities[c.ID] = c
		w.order = append(w.order, c.ID)
	}
	for _, c := range w.cities {
		for _, n := range c.Neighbors {
			other, ok := w.cities[n]
			if !ok {
				return nil, fmt.Errorf("city %q links to unknown city %q", c.ID, n)
			}
			if !contains(other.Neighbors, c.ID) {
				return nil, fmt.Errorf("link %s-%s is not symmetric", c.ID, n)
			}
		}
	}
	return w, nil
}

// City returns the static record for id.
func (w *World) City(id string) (City, bool) {
	c, ok := w.cities[id]
	return c, ok
}

// Has reports whether id names a city.
func (w *World) Has(id string) bool {
	_, ok := w.cities[id]
	return ok
}

// Neighbors returns the ids adjacent to id. The slice must not be modified.
func (w *World) Neighbors(id string) []string {
	return w.cities[id].Neighbors
}

// ColorOf returns the native disease color of a city.
func (w *World) ColorOf(id string) Color {
	return w.cities[id].Color
}

// Adjacent reports whether a and b share an edge.
func (w *World) Adjacent(a, b string) bool {
	return contains(w.cities[a].Neighbors, b)
}

// IDs returns every city id in declaration order.
func (w *World) IDs() []string {
	out := make([]string, len(w.order))
	copy(out, w.order)
	return out
}

// Len returns the number of cities.
func (w *World) Len() int {
	return len(w.order)
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

var standardWorld = mustWorld(baseCities())

func mustWorld(cities []City) *World {
	w, err := NewWorld(cities)
	if err != nil {
		panic(err)
	}
	return w
}

// StandardWorld returns the shared 48-city board.
func StandardWorld() *World {
	return standardWorld
}

func baseCities() []City {
	var cities []City
	add := func(id, name string, color Color, neighbors ...string) {
		cities = append(cities, City{ID: id, Name: name, Color: color, Neighbors: neighbors})
	}

	// Blue (North America & Europe)
	add("san_francisco", "San Francisco", Blue, "tokyo", "manila", "los_angeles", "chicago")
	add("chicago", "Chicago", Blue, "san_francisco", "los_angeles", "mexico_city", "atlanta", "montreal")
	add("montreal", "Montreal", Blue, "chicago", "new_york", "washington")
	add("new_york", "New York", Blue, "montreal", "washington", "london", "madrid")
	add("washington", "Washington", Blue, "montreal", "new_york", "atlanta", "miami")
	add("atlanta", "Atlanta", Blue, "chicago", "washington", "miami")
	add("london", "London", Blue, "new_york", "madrid", "paris", "essen")
	add("madrid", "Madrid", Blue, "new_york", "london", "paris", "sao_paulo", "algiers")
	add("paris", "Paris", Blue, "london", "madrid", "essen", "milan", "algiers")
	add("essen", "Essen", Blue, "london", "paris", "milan", "st_petersburg")
	add("milan", "Milan", Blue, "paris", "essen", "istanbul")
	add("st_petersburg", "St. Petersburg", Blue, "essen", "moscow", "istanbul")

	// Yellow (South America & Africa)
	add("los_angeles", "Los Angeles", Yellow, "san_francisco", "chicago", "mexico_city", "sydney")
	add("mexico_city", "Mexico City", Yellow, "los_angeles", "chicago", "miami", "bogota", "lima")
	add("miami", "Miami", Yellow, "washington", "atlanta", "mexico_city", "bogota")
	add("bogota", "Bogota", Yellow, "miami", "mexico_city", "lima", "sao_paulo", "buenos_aires")
	add("lima", "Lima", Yellow, "mexico_city", "bogota", "santiago")
	add("santiago", "Santiago", Yellow, "lima")
	add("buenos_aires", "Buenos Aires", Yellow, "bogota", "sao_paulo")
	add("sao_paulo", "Sao Paulo", Yellow, "bogota", "buenos_aires", "madrid", "lagos")
	add("lagos", "Lagos", Yellow, "sao_paulo", "khartoum", "kinshasa")
	add("kinshasa", "Kinshasa", Yellow, "lagos", "khartoum", "johannesburg")
	add("johannesburg", "Johannesburg", Yellow, "kinshasa", "khartoum")
	add("khartoum", "Khartoum", Yellow, "lagos", "kinshasa", "johannesburg", "cairo")

	// Black (Middle East & South Asia)
	add("algiers", "Algiers", Black, "madrid", "paris", "istanbul", "cairo")
	add("cairo", "Cairo", Black, "algiers", "istanbul", "baghdad", "riyadh", "khartoum")
	add("istanbul", "Istanbul", Black, "milan", "st_petersburg", "algiers", "cairo", "baghdad", "moscow")
	add("moscow", "Moscow", Black, "st_petersburg", "istanbul", "tehran")
	add("baghdad", "Baghdad", Black, "istanbul", "cairo", "riyadh", "karachi", "tehran")
	add("riyadh", "Riyadh", Black, "cairo", "baghdad", "karachi")
	add("tehran", "Tehran", Black, "moscow", "baghdad", "karachi", "delhi")
	add("karachi", "Karachi", Black, "baghdad", "riyadh", "tehran", "delhi", "mumbai")
	add("mumbai", "Mumbai", Black, "karachi", "delhi", "chennai")
	add("delhi", "Delhi", Black, "tehran", "karachi", "mumbai", "chennai", "kolkata")
	add("chennai", "Chennai", Black, "mumbai", "delhi", "kolkata", "bangkok", "jakarta")
	add("kolkata", "Kolkata", Black, "delhi", "chennai", "bangkok", "hong_kong")

	// Red (East Asia & Oceania)
	add("bangkok", "Bangkok", Red, "chennai", "kolkata", "hong_kong", "ho_chi_minh", "jakarta")
	add("hong_kong", "Hong Kong", Red, "kolkata", "bangkok", "ho_chi_minh", "manila", "taipei", "shanghai")
	add("ho_chi_minh", "Ho Chi Minh", Red, "bangkok", "hong_kong", "manila", "jakarta")
	add("jakarta", "Jakarta", Red, "chennai", "bangkok", "ho_chi_minh", "sydney")
	add("manila", "Manila", Red, "san_francisco", "hong_kong", "ho_chi_minh", "sydney", "taipei")
	add("taipei", "Taipei", Red, "hong_kong", "manila", "shanghai", "osaka")
	add("shanghai", "Shanghai", Red, "hong_kong", "taipei", "beijing", "seoul", "tokyo")
	add("beijing", "Beijing", Red, "shanghai", "seoul")
	add("seoul", "Seoul", Red, "beijing", "shanghai", "tokyo")
	add("tokyo", "Tokyo", Red, "san_francisco", "shanghai", "seoul", "osaka")
	add("osaka", "Osaka", Red, "tokyo", "taipei")
	add("sydney", "Sydney", Red, "los_angeles", "jakarta", "manila")

	return cities
}
