package grib

import (
	"fmt"
	"math"
)

// Nearest returns the index of the axis value closest to target. Ties go to
// the smallest index. It returns -1 for an empty axis.
func Nearest(axis []float64, target float64) int {
	return nearestBy(axis, func(v float64) float64 { return math.Abs(v - target) })
}

// NearestLongitude is Nearest measuring distance around the globe, so 179.9
// and -179.9 are 0.2 degrees apart.
func NearestLongitude(axis []float64, target float64) int {
	return nearestBy(axis, func(v float64) float64 {
		d := math.Mod(math.Abs(v-target), 360)
		return math.Min(d, 360-d)
	})
}

func nearestBy(axis []float64, dist func(float64) float64) int {
	best := -1
	bestDist := math.Inf(1)
	for i, v := range axis {
		if d := dist(v); d < bestDist {
			best, bestDist = i, d
		}
	}
	return best
}

// Cell is a resolved horizontal grid position.
type Cell struct {
	LatIndex int
	LonIndex int
}

// NearestCell snaps a lon/lat pair to the closest grid cell by value.
func (ds *Dataset) NearestCell(lon, lat float64) (Cell, error) {
	latIdx := Nearest(ds.Latitudes, lat)
	lonIdx := NearestLongitude(ds.Longitudes, lon)
	if latIdx < 0 || lonIdx < 0 {
		return Cell{}, fmt.Errorf("dataset %s has an empty horizontal grid", ds.Source)
	}
	return Cell{LatIndex: latIdx, LonIndex: lonIdx}, nil
}

// ValueAt returns the named variable at the level closest to the given
// pressure and the given cell.
func (ds *Dataset) ValueAt(name string, level float64, cell Cell) (float64, error) {
	f := ds.Field(name)
	if f == nil {
		return 0, fmt.Errorf("variable %q not in dataset", name)
	}
	levelIdx := Nearest(ds.Levels, level)
	if levelIdx < 0 {
		return 0, fmt.Errorf("dataset %s has no isobaric levels", ds.Source)
	}
	return f.at(levelIdx, cell.LatIndex, cell.LonIndex)
}
