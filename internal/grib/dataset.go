// Package grib holds the in-memory isobaric dataset and the decoders that
// produce it from GRIB2 or NetCDF files.
package grib

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"
)

// Short names of the variables read from the file.
const (
	TemperatureLabel = "t"
	UWindLabel       = "u"
	VWindLabel       = "v"
)

// Field is one physical variable on the isobaric grid.
// Values are stored as [levelIndex][latIndex][lonIndex].
type Field struct {
	Name   string
	Units  string
	Values [][][]float64
}

// Dataset is the gridded isobaric forecast loaded at startup. It is never
// mutated after Open returns.
type Dataset struct {
	Source     string
	Latitudes  []float64
	Longitudes []float64
	Levels     []float64 // hPa, descending
	ValidTime  time.Time
	Fields     map[string]*Field
}

// Field returns the named variable, or nil.
func (ds *Dataset) Field(name string) *Field {
	if ds == nil || ds.Fields == nil {
		return nil
	}
	return ds.Fields[name]
}

// LatRange returns the minimum and maximum latitude of the grid.
func (ds *Dataset) LatRange() (float64, float64) {
	return minMax(ds.Latitudes)
}

// LonRange returns the minimum and maximum longitude of the grid.
func (ds *Dataset) LonRange() (float64, float64) {
	return minMax(ds.Longitudes)
}

// SpatialExtent returns the bounding box as minLon, minLat, maxLon, maxLat.
func (ds *Dataset) SpatialExtent() []float64 {
	minLat, maxLat := ds.LatRange()
	minLon, maxLon := ds.LonRange()
	return []float64{minLon, minLat, maxLon, maxLat}
}

// VerticalExtent returns the isobaric levels as strings, in axis order.
func (ds *Dataset) VerticalExtent() []string {
	levels := make([]string, len(ds.Levels))
	for i, l := range ds.Levels {
		levels[i] = strconv.FormatFloat(l, 'f', -1, 64)
	}
	return levels
}

// TemporalExtent returns the dataset's valid time in UTC.
func (ds *Dataset) TemporalExtent() time.Time {
	return ds.ValidTime.UTC()
}

// Summary returns key/value pairs describing the dataset, suitable for
// structured logging.
func (ds *Dataset) Summary() []any {
	names := make([]string, 0, len(ds.Fields))
	for name := range ds.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return []any{
		"source", ds.Source,
		"variables", names,
		"levels", len(ds.Levels),
		"latCnt", len(ds.Latitudes),
		"lonCnt", len(ds.Longitudes),
		"validTime", ds.TemporalExtent().Format(time.RFC3339),
	}
}

// sortLevelsDescending reorders the level axis, and every field with it, so
// that pressure decreases with index.
func (ds *Dataset) sortLevelsDescending() {
	order := make([]int, len(ds.Levels))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return ds.Levels[order[a]] > ds.Levels[order[b]]
	})

	levels := make([]float64, len(order))
	for i, idx := range order {
		levels[i] = ds.Levels[idx]
	}
	ds.Levels = levels

	for _, f := range ds.Fields {
		if len(f.Values) != len(order) {
			continue
		}
		values := make([][][]float64, len(order))
		for i, idx := range order {
			values[i] = f.Values[idx]
		}
		f.Values = values
	}
}

func (f *Field) at(level, lat, lon int) (float64, error) {
	if level < 0 || level >= len(f.Values) {
		return 0, fmt.Errorf("level index %d out of range for %s", level, f.Name)
	}
	if lat < 0 || lat >= len(f.Values[level]) {
		return 0, fmt.Errorf("latitude index %d out of range for %s", lat, f.Name)
	}
	if lon < 0 || lon >= len(f.Values[level][lat]) {
		return 0, fmt.Errorf("longitude index %d out of range for %s", lon, f.Name)
	}
	return f.Values[level][lat][lon], nil
}

func minMax(values []float64) (float64, float64) {
	if len(values) == 0 {
		return math.NaN(), math.NaN()
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
