package models

// Stop is a bus stop. Geohash is derived from Lat/Long by the service layer.
type Stop struct {
	ID      string
	Lat     float64
	Long    float64
	Name    string
	Geohash string `json:",omitempty"`
}
