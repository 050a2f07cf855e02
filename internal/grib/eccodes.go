package grib

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// GribDumpCommand is the ecCodes tool used to decode GRIB2 messages. It is
// looked up in the system path on each decode.
var GribDumpCommand = "grib_dump"

// IsobaricLevelType is the GRIB typeOfLevel of constant-pressure surfaces.
const IsobaricLevelType = "isobaricInhPa"

// EccodesDecoder decodes GRIB2 files through the ecCodes command-line tools.
type EccodesDecoder struct {
	Variables []string
	Logger    *zap.Logger
}

// NewEccodesDecoder returns a decoder reading temperature and both wind
// components.
func NewEccodesDecoder(logger *zap.Logger) *EccodesDecoder {
	return &EccodesDecoder{
		Variables: []string{TemperatureLabel, UWindLabel, VWindLabel},
		Logger:    logger,
	}
}

// Decode dumps every variable concurrently and assembles one Dataset.
func (d *EccodesDecoder) Decode(ctx context.Context, path string) (*Dataset, error) {
	if _, err := exec.LookPath(GribDumpCommand); err != nil {
		return nil, fmt.Errorf("ecCodes tool %s not found, check the installation of ecCodes: %w", GribDumpCommand, err)
	}

	results := make([][]message, len(d.Variables))
	g, ctx := errgroup.WithContext(ctx)
	for i, name := range d.Variables {
		g.Go(func() error {
			msgs, err := d.dump(ctx, path, name)
			if err != nil {
				return err
			}
			results[i] = msgs
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	byName := make(map[string][]message, len(d.Variables))
	for i, name := range d.Variables {
		if len(results[i]) > 0 {
			byName[name] = results[i]
		}
	}
	ds, err := assemble(byName)
	if err != nil {
		return nil, fmt.Errorf("failed to assemble dataset from %s: %w", path, err)
	}
	ds.Source = path
	return ds, nil
}

func (d *EccodesDecoder) dump(ctx context.Context, path, shortName string) ([]message, error) {
	filter := fmt.Sprintf("shortName=%s,typeOfLevel=%s", shortName, IsobaricLevelType)
	cmd := exec.CommandContext(ctx, GribDumpCommand, "-j", "-w", filter, path)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if d.Logger != nil {
		d.Logger.Debug("Executing command", zap.String("cmd", cmd.String()))
	}
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("failed to execute %s for %s: %w. Output: %s", GribDumpCommand, shortName, err, strings.TrimSpace(stderr.String()))
	}

	msgs, err := parseDump(&stdout)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s output for %s: %w", GribDumpCommand, shortName, err)
	}
	if d.Logger != nil {
		d.Logger.Debug("Decoded variable", zap.String("variable", shortName), zap.Int("messages", len(msgs)))
	}
	return msgs, nil
}

// message is one GRIB message as key/value pairs from grib_dump -j.
type message map[string]json.RawMessage

type dumpEntry struct {
	Key   string          `json:"key"`
	Value json.RawMessage `json:"value"`
}

type dumpDocument struct {
	Messages [][]dumpEntry `json:"messages"`
}

func parseDump(r io.Reader) ([]message, error) {
	var doc dumpDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("fail to parse json: %w", err)
	}
	msgs := make([]message, 0, len(doc.Messages))
	for _, entries := range doc.Messages {
		m := make(message, len(entries))
		for _, e := range entries {
			m[e.Key] = e.Value
		}
		msgs = append(msgs, m)
	}
	return msgs, nil
}

func (m message) has(key string) bool {
	raw, ok := m[key]
	return ok && string(raw) != "null"
}

func (m message) float(key string) (float64, error) {
	raw, ok := m[key]
	if !ok {
		return 0, fmt.Errorf("key %s missing", key)
	}
	var v float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, fmt.Errorf("key %s is not numeric: %w", key, err)
	}
	return v, nil
}

func (m message) int(key string) (int, error) {
	v, err := m.float(key)
	if err != nil {
		return 0, err
	}
	return int(v), nil
}

func (m message) str(key string) string {
	var s string
	if err := json.Unmarshal(m[key], &s); err != nil {
		return ""
	}
	return s
}

func (m message) floats(key string) ([]float64, error) {
	raw, ok := m[key]
	if !ok {
		return nil, fmt.Errorf("key %s missing", key)
	}
	var v []float64
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil, fmt.Errorf("key %s is not a numeric array: %w", key, err)
	}
	return v, nil
}

type gridGeometry struct {
	ni, nj       int
	lats, lons   []float64
	jConsecutive bool
}

func geometryOf(m message) (gridGeometry, error) {
	var g gridGeometry
	if gridType := m.str("gridType"); gridType != "" && gridType != "regular_ll" {
		return g, fmt.Errorf("unsupported grid type %q", gridType)
	}

	var err error
	if g.ni, err = m.int("Ni"); err != nil {
		return g, err
	}
	if g.nj, err = m.int("Nj"); err != nil {
		return g, err
	}
	if g.ni < 1 || g.nj < 1 {
		return g, fmt.Errorf("invalid grid size %dx%d", g.ni, g.nj)
	}

	latFirst, err := m.float("latitudeOfFirstGridPointInDegrees")
	if err != nil {
		return g, err
	}
	latLast, err := m.float("latitudeOfLastGridPointInDegrees")
	if err != nil {
		return g, err
	}
	lonFirst, err := m.float("longitudeOfFirstGridPointInDegrees")
	if err != nil {
		return g, err
	}
	lonLast, err := m.float("longitudeOfLastGridPointInDegrees")
	if err != nil {
		return g, err
	}
	if m.has("iScansNegatively") {
		if neg, _ := m.int("iScansNegatively"); neg == 0 && lonLast < lonFirst {
			lonLast += 360
		}
	} else if lonLast < lonFirst {
		lonLast += 360
	}
	if m.has("jPointsAreConsecutive") {
		consecutive, _ := m.int("jPointsAreConsecutive")
		g.jConsecutive = consecutive == 1
	}

	g.lats = linspace(latFirst, latLast, g.nj)
	g.lons = linspace(lonFirst, lonLast, g.ni)
	for i, lon := range g.lons {
		g.lons[i] = normalizeLongitude(lon)
	}
	return g, nil
}

func (g gridGeometry) sameAs(o gridGeometry) bool {
	return g.ni == o.ni && g.nj == o.nj && g.jConsecutive == o.jConsecutive
}

func levelOf(m message) (float64, error) {
	if m.has("level") {
		return m.float("level")
	}
	// Fall back to the raw fixed-surface encoding, which is in Pa.
	value, err := m.float("scaledValueOfFirstFixedSurface")
	if err != nil {
		return 0, fmt.Errorf("no isobaric level in message: %w", err)
	}
	scale := 0
	if m.has("scaleFactorOfFirstFixedSurface") {
		scale, _ = m.int("scaleFactorOfFirstFixedSurface")
	}
	return value / math.Pow(10, float64(scale)) / 100, nil
}

func validTimeOf(m message) (time.Time, error) {
	if m.has("validityDate") && m.has("validityTime") {
		date, err := m.int("validityDate")
		if err != nil {
			return time.Time{}, err
		}
		hhmm, err := m.int("validityTime")
		if err != nil {
			return time.Time{}, err
		}
		return dateTime(date, hhmm), nil
	}

	date, err := m.int("dataDate")
	if err != nil {
		return time.Time{}, fmt.Errorf("no valid time in message: %w", err)
	}
	hhmm, err := m.int("dataTime")
	if err != nil {
		return time.Time{}, fmt.Errorf("no valid time in message: %w", err)
	}
	t := dateTime(date, hhmm)
	if m.has("forecastTime") {
		step, _ := m.int("forecastTime")
		t = t.Add(time.Duration(step) * time.Hour)
	}
	return t, nil
}

func dateTime(yyyymmdd, hhmm int) time.Time {
	return time.Date(yyyymmdd/10000, time.Month(yyyymmdd/100%100), yyyymmdd%100,
		hhmm/100, hhmm%100, 0, 0, time.UTC)
}

func valuesOf(m message, g gridGeometry) ([][]float64, error) {
	flat, err := m.floats("values")
	if err != nil {
		return nil, err
	}
	if len(flat) != g.ni*g.nj {
		return nil, fmt.Errorf("got %d values for a %dx%d grid", len(flat), g.ni, g.nj)
	}

	missing := math.NaN()
	bitmap := false
	if m.has("bitmapPresent") {
		present, _ := m.int("bitmapPresent")
		bitmap = present == 1
	}
	if bitmap {
		if missing, err = m.float("missingValue"); err != nil {
			missing = 9999
		}
	}

	grid := make([][]float64, g.nj)
	for j := range grid {
		grid[j] = make([]float64, g.ni)
		for i := range grid[j] {
			idx := j*g.ni + i
			if g.jConsecutive {
				idx = i*g.nj + j
			}
			v := flat[idx]
			if bitmap && v == missing {
				v = math.NaN()
			}
			grid[j][i] = v
		}
	}
	return grid, nil
}

// assemble builds a Dataset from decoded messages grouped by variable. The
// temperature field defines the grid, the level axis and the valid time.
func assemble(byName map[string][]message) (*Dataset, error) {
	base, ok := byName[TemperatureLabel]
	if !ok || len(base) == 0 {
		return nil, errors.New("no temperature messages on isobaric levels")
	}

	geom, err := geometryOf(base[0])
	if err != nil {
		return nil, err
	}
	validTime, err := validTimeOf(base[0])
	if err != nil {
		return nil, err
	}

	ds := &Dataset{
		Latitudes:  geom.lats,
		Longitudes: geom.lons,
		ValidTime:  validTime,
		Fields:     make(map[string]*Field, len(byName)),
	}

	seen := make(map[float64]bool)
	for _, m := range base {
		level, err := levelOf(m)
		if err != nil {
			return nil, err
		}
		if !seen[level] {
			seen[level] = true
			ds.Levels = append(ds.Levels, level)
		}
	}

	for name, msgs := range byName {
		grids := make(map[float64][][]float64, len(msgs))
		units := ""
		for _, m := range msgs {
			g, err := geometryOf(m)
			if err != nil {
				return nil, fmt.Errorf("variable %s: %w", name, err)
			}
			if !g.sameAs(geom) {
				return nil, fmt.Errorf("variable %s is on a %dx%d grid, temperature is on %dx%d", name, g.ni, g.nj, geom.ni, geom.nj)
			}
			level, err := levelOf(m)
			if err != nil {
				return nil, fmt.Errorf("variable %s: %w", name, err)
			}
			values, err := valuesOf(m, g)
			if err != nil {
				return nil, fmt.Errorf("variable %s at %v hPa: %w", name, level, err)
			}
			grids[level] = values
			if units == "" {
				units = m.str("units")
			}
		}

		f := &Field{Name: name, Units: units, Values: make([][][]float64, len(ds.Levels))}
		for i, level := range ds.Levels {
			f.Values[i] = grids[level]
		}
		ds.Fields[name] = f
	}

	ds.sortLevelsDescending()
	return ds, nil
}

func linspace(first, last float64, n int) []float64 {
	out := make([]float64, n)
	if n == 1 {
		out[0] = first
		return out
	}
	step := (last - first) / float64(n-1)
	for i := range out {
		out[i] = first + float64(i)*step
	}
	out[n-1] = last
	return out
}

func normalizeLongitude(lon float64) float64 {
	if lon >= 180 {
		lon -= 360
	}
	return lon
}
