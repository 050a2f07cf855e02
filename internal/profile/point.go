// Package profile resolves a WKT point against the loaded dataset into a
// vertical profile of temperature and wind.
package profile

import (
	"fmt"

	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/wkt"

	"edrisobaric/internal/edrerr"
	"edrisobaric/internal/grib"
)

// CoordsLoc is where the point text is read from in a request.
var CoordsLoc = []string{"query", "coords"}

// Point is a requested location.
type Point struct {
	Lon float64
	Lat float64
}

// ParsePoint parses WKT text such as "POINT(11.9384 60.1699)".
func ParsePoint(text string) (Point, error) {
	invalid := func() error {
		return &edrerr.ValidationError{
			Loc:   CoordsLoc,
			Msg:   fmt.Sprintf(`coords should be a Well Known Text, for example "POINT(11.0 59.0)". You gave %q`, text),
			Type:  "value_error",
			Input: text,
		}
	}

	g, err := wkt.Unmarshal(text)
	if err != nil {
		return Point{}, invalid()
	}
	p, ok := g.(*geom.Point)
	if !ok || p.Empty() {
		return Point{}, invalid()
	}
	return Point{Lon: p.X(), Lat: p.Y()}, nil
}

// CheckBounds verifies that p lies inside the dataset grid. Both ends of each
// axis are inclusive. Latitude is checked first.
func CheckBounds(ds *grib.Dataset, p Point) error {
	minLat, maxLat := ds.LatRange()
	if !(p.Lat >= minLat && p.Lat <= maxLat) {
		return &edrerr.BoundsError{Axis: "latitude", Value: p.Lat, Min: minLat, Max: maxLat}
	}
	minLon, maxLon := ds.LonRange()
	if !(p.Lon >= minLon && p.Lon <= maxLon) {
		return &edrerr.BoundsError{Axis: "longitude", Value: p.Lon, Min: minLon, Max: maxLon}
	}
	return nil
}
