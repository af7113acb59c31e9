package models

// Location is a technical point of an object, e.g. a pole or a span.
type Location struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// Object is an inspection target such as an overhead power line.
type Object struct {
	ID        string     `json:"id" yaml:"id"`
	Name      string     `json:"name" yaml:"name"`
	Locations []Location `json:"locations" yaml:"locations"`
}

// Location returns the location with the given id.
func (o Object) Location(id string) (Location, bool) {
	for _, loc := range o.Locations {
		if loc.ID == id {
			return loc, true
		}
	}
	return Location{}, false
}
