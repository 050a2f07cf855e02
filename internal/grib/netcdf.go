package grib

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/batchatco/go-native-netcdf/netcdf"
	"github.com/batchatco/go-native-netcdf/netcdf/api"
)

// Axis names tried, in order, when reading NetCDF files written by cfgrib or
// grib_to_netcdf.
var (
	netcdfLatNames   = []string{"latitude", "lat"}
	netcdfLonNames   = []string{"longitude", "lon"}
	netcdfLevelNames = []string{"isobaricInhPa", "level", "plev"}
	netcdfTimeNames  = []string{"valid_time", "time"}
)

// NetCDFDecoder reads an isobaric dataset from a NetCDF file.
type NetCDFDecoder struct {
	Variables []string
}

// NewNetCDFDecoder returns a decoder reading temperature and both wind
// components.
func NewNetCDFDecoder() *NetCDFDecoder {
	return &NetCDFDecoder{Variables: []string{TemperatureLabel, UWindLabel, VWindLabel}}
}

// Decode opens the file and copies the requested variables into a Dataset.
func (d *NetCDFDecoder) Decode(_ context.Context, path string) (*Dataset, error) {
	nc, err := netcdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open NetCDF file %s: %w", path, err)
	}
	defer nc.Close()

	ds := &Dataset{Source: path, Fields: make(map[string]*Field, len(d.Variables))}

	latName, lat, err := firstAxis(nc, netcdfLatNames)
	if err != nil {
		return nil, err
	}
	lonName, lon, err := firstAxis(nc, netcdfLonNames)
	if err != nil {
		return nil, err
	}
	levelName, levels, err := firstAxis(nc, netcdfLevelNames)
	if err != nil {
		return nil, err
	}
	ds.Latitudes = lat
	ds.Longitudes = make([]float64, len(lon))
	for i, v := range lon {
		ds.Longitudes[i] = normalizeLongitude(v)
	}
	ds.Levels = levels

	if ds.ValidTime, err = netcdfValidTime(nc); err != nil {
		return nil, err
	}

	for _, name := range d.Variables {
		v, err := nc.GetVariable(name)
		if err != nil {
			// Absent variables are reported by the validator.
			continue
		}
		f, err := netcdfField(name, v, latName, lonName, levelName, len(lat), len(lon), len(levels))
		if err != nil {
			return nil, fmt.Errorf("variable %s in %s: %w", name, path, err)
		}
		ds.Fields[name] = f
	}

	ds.sortLevelsDescending()
	return ds, nil
}

func firstAxis(nc api.Group, names []string) (string, []float64, error) {
	for _, name := range names {
		v, err := nc.GetVariable(name)
		if err != nil {
			continue
		}
		values, _, err := flatten(v.Values)
		if err != nil {
			return "", nil, fmt.Errorf("axis %s: %w", name, err)
		}
		return name, values, nil
	}
	return "", nil, fmt.Errorf("none of the axes %s found", strings.Join(names, ", "))
}

func netcdfValidTime(nc api.Group) (time.Time, error) {
	for _, name := range netcdfTimeNames {
		v, err := nc.GetVariable(name)
		if err != nil {
			continue
		}
		values, _, err := flatten(v.Values)
		if err != nil || len(values) == 0 {
			return time.Time{}, fmt.Errorf("time axis %s is empty or not numeric", name)
		}
		units, _ := attrString(v.Attributes, "units")
		return parseCFTime(values[0], units)
	}
	return time.Time{}, fmt.Errorf("none of the time axes %s found", strings.Join(netcdfTimeNames, ", "))
}

func netcdfField(name string, v *api.Variable, latName, lonName, levelName string, nLat, nLon, nLevel int) (*Field, error) {
	flat, shape, err := flatten(v.Values)
	if err != nil {
		return nil, err
	}
	if len(shape) != len(v.Dimensions) {
		return nil, fmt.Errorf("values have %d dimensions, variable declares %d", len(shape), len(v.Dimensions))
	}

	latDim, lonDim, levelDim := -1, -1, -1
	for i, dim := range v.Dimensions {
		switch dim {
		case latName:
			latDim = i
		case lonName:
			lonDim = i
		case levelName:
			levelDim = i
		}
	}
	if latDim < 0 || lonDim < 0 || levelDim < 0 {
		return nil, fmt.Errorf("dimensions %v do not include %s, %s and %s", v.Dimensions, levelName, latName, lonName)
	}
	if shape[latDim] != nLat || shape[lonDim] != nLon || shape[levelDim] != nLevel {
		return nil, fmt.Errorf("shape %v does not match the %dx%dx%d grid", shape, nLevel, nLat, nLon)
	}

	strides := make([]int, len(shape))
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= shape[i]
	}

	scale, offset := 1.0, 0.0
	if s, ok := attrFloat(v.Attributes, "scale_factor"); ok {
		scale = s
	}
	if o, ok := attrFloat(v.Attributes, "add_offset"); ok {
		offset = o
	}
	fill, hasFill := attrFloat(v.Attributes, "_FillValue")

	units, _ := attrString(v.Attributes, "units")
	f := &Field{Name: name, Units: units, Values: make([][][]float64, nLevel)}
	for l := 0; l < nLevel; l++ {
		f.Values[l] = make([][]float64, nLat)
		for j := 0; j < nLat; j++ {
			row := make([]float64, nLon)
			for i := 0; i < nLon; i++ {
				// Any other dimension (a length-one time axis) is read at index 0.
				idx := l*strides[levelDim] + j*strides[latDim] + i*strides[lonDim]
				raw := flat[idx]
				if hasFill && raw == fill {
					row[i] = math.NaN()
					continue
				}
				row[i] = raw*scale + offset
			}
			f.Values[l][j] = row
		}
	}
	return f, nil
}

// flatten walks nested numeric slices and returns the values in row-major
// order together with the shape.
func flatten(values interface{}) ([]float64, []int, error) {
	var out []float64
	var shape []int
	var walk func(v reflect.Value, depth int) error
	walk = func(v reflect.Value, depth int) error {
		switch v.Kind() {
		case reflect.Slice, reflect.Array:
			if depth == len(shape) {
				shape = append(shape, v.Len())
			} else if shape[depth] != v.Len() {
				return fmt.Errorf("ragged array at dimension %d", depth)
			}
			for i := 0; i < v.Len(); i++ {
				if err := walk(v.Index(i), depth+1); err != nil {
					return err
				}
			}
		case reflect.Float32, reflect.Float64:
			out = append(out, v.Float())
		case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
			out = append(out, float64(v.Int()))
		case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
			out = append(out, float64(v.Uint()))
		case reflect.Interface:
			return walk(v.Elem(), depth)
		default:
			return fmt.Errorf("unsupported value type %s", v.Type())
		}
		return nil
	}
	if values == nil {
		return nil, nil, fmt.Errorf("no values")
	}
	if err := walk(reflect.ValueOf(values), 0); err != nil {
		return nil, nil, err
	}
	return out, shape, nil
}

func attrFloat(attrs api.AttributeMap, key string) (float64, bool) {
	if attrs == nil {
		return 0, false
	}
	raw, ok := attrs.Get(key)
	if !ok {
		return 0, false
	}
	values, _, err := flatten(raw)
	if err != nil || len(values) == 0 {
		return 0, false
	}
	return values[0], true
}

func attrString(attrs api.AttributeMap, key string) (string, bool) {
	if attrs == nil {
		return "", false
	}
	raw, ok := attrs.Get(key)
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// parseCFTime converts a CF-convention time value such as 36 with units
// "hours since 1900-01-01 00:00:00.0" into a UTC time.
func parseCFTime(value float64, units string) (time.Time, error) {
	unit, since, ok := strings.Cut(strings.TrimSpace(units), " since ")
	if !ok {
		return time.Time{}, fmt.Errorf("time units %q are not of the form '<unit> since <epoch>'", units)
	}

	since = strings.TrimSpace(since)
	if dot := strings.LastIndex(since, "."); dot > 0 && strings.Count(since, ":") == 2 {
		since = since[:dot]
	}
	since = strings.TrimSuffix(strings.TrimSuffix(since, "Z"), " UTC")

	var epoch time.Time
	var err error
	for _, layout := range []string{"2006-01-02 15:04:05", "2006-01-02T15:04:05", "2006-01-02 15:04", "2006-01-02"} {
		if epoch, err = time.ParseInLocation(layout, since, time.UTC); err == nil {
			break
		}
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("unable to parse time epoch %q: %w", since, err)
	}

	var step time.Duration
	switch strings.ToLower(strings.TrimSpace(unit)) {
	case "seconds", "second", "s":
		step = time.Second
	case "minutes", "minute", "min":
		step = time.Minute
	case "hours", "hour", "h":
		step = time.Hour
	case "days", "day", "d":
		step = 24 * time.Hour
	default:
		return time.Time{}, fmt.Errorf("unsupported time unit %q", unit)
	}
	return epoch.Add(time.Duration(value * float64(step))).UTC(), nil
}
