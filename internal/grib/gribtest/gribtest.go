// Package gribtest builds small in-memory datasets for tests.
package gribtest

import (
	"time"

	"edrisobaric/internal/grib"
)

// Levels are the isobaric levels of the fixture, in hPa.
var Levels = []float64{850, 700, 500, 400, 300, 250, 200, 150, 100, 70}

// ValidTime is the fixture's forecast valid time.
var ValidTime = time.Date(2024, time.March, 10, 12, 0, 0, 0, time.UTC)

// Dataset returns a southern-Norway grid from 58N to 62N and 8E to 14E at
// 0.5 degree spacing. Temperature falls 6 K per level from 288.15 K at
// 850 hPa; u grows with level index and v with latitude index.
func Dataset() *grib.Dataset {
	lats := axis(58, 62, 0.5)
	lons := axis(8, 14, 0.5)

	ds := &grib.Dataset{
		Source:     "fixture.grib2",
		Latitudes:  lats,
		Longitudes: lons,
		Levels:     append([]float64(nil), Levels...),
		ValidTime:  ValidTime,
		Fields:     make(map[string]*grib.Field, 3),
	}
	ds.Fields[grib.TemperatureLabel] = field(grib.TemperatureLabel, "K", len(lats), len(lons), func(l, j, i int) float64 {
		return 288.15 - 6*float64(l)
	})
	ds.Fields[grib.UWindLabel] = field(grib.UWindLabel, "m s**-1", len(lats), len(lons), func(l, j, i int) float64 {
		return float64(l) + 0.01*float64(i)
	})
	ds.Fields[grib.VWindLabel] = field(grib.VWindLabel, "m s**-1", len(lats), len(lons), func(l, j, i int) float64 {
		return -2 + 0.1*float64(j)
	})
	return ds
}

func axis(first, last, step float64) []float64 {
	var out []float64
	for v := first; v <= last+step/2; v += step {
		out = append(out, v)
	}
	return out
}

func field(name, units string, nLat, nLon int, value func(l, j, i int) float64) *grib.Field {
	f := &grib.Field{Name: name, Units: units, Values: make([][][]float64, len(Levels))}
	for l := range Levels {
		f.Values[l] = make([][]float64, nLat)
		for j := 0; j < nLat; j++ {
			f.Values[l][j] = make([]float64, nLon)
			for i := 0; i < nLon; i++ {
				f.Values[l][j][i] = value(l, j, i)
			}
		}
	}
	return f
}
