package maps

import "github.com/shopspring/decimal"

// BrazilCenter is shown when there are no markers.
var BrazilCenter = Coordinates{Lat: -15.788497, Lng: -47.879873}

const (
	zoomCountry = 3
	zoomRegion  = 5
	zoomCity    = 10
)

var longTripKm = decimal.NewFromInt(500)

// View is the data behind the map panel: where to center, how far to zoom,
// and what to draw.
type View struct {
	Center  Coordinates   `json:"center"`
	Zoom    int           `json:"zoom"`
	Markers []Coordinates `json:"markers"`
	Path    []Coordinates `json:"path,omitempty"`
}

// ViewFor centers on the mean of the markers. A missing distance falls back to
// the straight line between the first two markers for the zoom choice.
func ViewFor(markers []Coordinates, distanceKm decimal.NullDecimal) View {
	v := View{Center: BrazilCenter, Zoom: zoomRegion, Markers: markers}
	if len(markers) == 0 {
		return v
	}

	var lat, lng float64
	for _, m := range markers {
		lat += m.Lat
		lng += m.Lng
	}
	n := float64(len(markers))
	v.Center = Coordinates{Lat: lat / n, Lng: lng / n}

	switch len(markers) {
	case 1:
		v.Zoom = zoomCity
	case 2:
		dist := distanceKm
		if !dist.Valid {
			dist = decimal.NewNullDecimal(decimal.NewFromFloat(haversineKm(markers[0], markers[1])))
		}
		if dist.Decimal.GreaterThan(longTripKm) {
			v.Zoom = zoomCountry
		}
	}
	return v
}
