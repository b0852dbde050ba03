package radio

// Station is a static catalog entry for an internet-radio stream.
// The catalog is immutable for the session; config may replace or
// extend the built-in list at startup, never after.
type Station struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	StreamURL string `json:"stream_url"`
	Genre     string `json:"genre,omitempty"`
}

// Catalog is an ordered, read-only set of stations. Order matters: the
// failover algorithm walks it with wraparound.
type Catalog struct {
	stations []Station
	byID     map[string]int
}

// NewCatalog builds a catalog from the given stations, preserving order.
// Duplicate ids keep the first occurrence.
func NewCatalog(stations []Station) *Catalog {
	c := &Catalog{
		stations: make([]Station, 0, len(stations)),
		byID:     make(map[string]int, len(stations)),
	}
	for _, s := range stations {
		if _, dup := c.byID[s.ID]; dup {
			continue
		}
		c.byID[s.ID] = len(c.stations)
		c.stations = append(c.stations, s)
	}
	return c
}

// DefaultStations is the built-in catalog used when config provides none.
func DefaultStations() []Station {
	return []Station{
		{ID: "groove-salad", Name: "SomaFM Groove Salad", StreamURL: "http://ice1.somafm.com/groovesalad-128-mp3", Genre: "ambient"},
		{ID: "drone-zone", Name: "SomaFM Drone Zone", StreamURL: "http://ice1.somafm.com/dronezone-128-mp3", Genre: "ambient"},
		{ID: "radio-paradise", Name: "Radio Paradise", StreamURL: "http://stream.radioparadise.com/mp3-128", Genre: "eclectic"},
		{ID: "secret-agent", Name: "SomaFM Secret Agent", StreamURL: "http://ice1.somafm.com/secretagent-128-mp3", Genre: "lounge"},
		{ID: "fip", Name: "FIP", StreamURL: "http://icecast.radiofrance.fr/fip-midfi.mp3", Genre: "eclectic"},
	}
}

// Lookup returns the station with the given id.
func (c *Catalog) Lookup(id string) (Station, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Station{}, false
	}
	return c.stations[i], true
}

// After returns the station following id in catalog order, wrapping
// around at the end. Returns false for an unknown id or a single-entry
// catalog (the only successor would be the station itself).
func (c *Catalog) After(id string) (Station, bool) {
	i, ok := c.byID[id]
	if !ok || len(c.stations) < 2 {
		return Station{}, false
	}
	return c.stations[(i+1)%len(c.stations)], true
}

// Stations returns a copy of the catalog in order.
func (c *Catalog) Stations() []Station {
	out := make([]Station, len(c.stations))
	copy(out, c.stations)
	return out
}

// Len returns the catalog size.
func (c *Catalog) Len() int {
	return len(c.stations)
}
