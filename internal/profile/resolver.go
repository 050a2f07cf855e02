package profile

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"edrisobaric/internal/grib"
)

// DefaultCacheSize bounds the number of memoised profiles.
const DefaultCacheSize = 1024

// Profile is the data at one point for every isobaric level, in the order of
// the dataset's level axis. Profiles may be shared between requests and must
// not be modified.
type Profile struct {
	Point       Point
	Levels      []float64
	Temperature []float64
	UWind       []float64
	VWind       []float64
}

// Len returns the number of levels in the profile.
func (p *Profile) Len() int {
	return len(p.Levels)
}

// Resolver answers point queries against one dataset.
type Resolver struct {
	ds     *grib.Dataset
	cache  *lru.Cache[string, *Profile]
	logger *zap.Logger
}

// NewResolver returns a resolver memoising up to cacheSize profiles.
func NewResolver(ds *grib.Dataset, cacheSize int, logger *zap.Logger) (*Resolver, error) {
	if cacheSize <= 0 {
		cacheSize = DefaultCacheSize
	}
	cache, err := lru.New[string, *Profile](cacheSize)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &Resolver{ds: ds, cache: cache, logger: logger}, nil
}

// Dataset returns the dataset the resolver reads from.
func (r *Resolver) Dataset() *grib.Dataset {
	return r.ds
}

// Resolve parses text, checks bounds and extracts the profile from the
// loaded instance.
func (r *Resolver) Resolve(text string) (*Profile, error) {
	if p, ok := r.cache.Get(text); ok {
		return p, nil
	}

	point, err := ParsePoint(text)
	if err != nil {
		return nil, err
	}
	if err := CheckBounds(r.ds, point); err != nil {
		return nil, err
	}

	p, err := r.extract(point)
	if err != nil {
		return nil, err
	}
	r.logger.Debug("Resolved profile",
		zap.Float64("lon", point.Lon),
		zap.Float64("lat", point.Lat),
		zap.Int("levels", p.Len()),
	)
	r.cache.Add(text, p)
	return p, nil
}

// ResolveInstance is Resolve for a query naming an instance. Any id other
// than the loaded one is rejected, the empty id included.
func (r *Resolver) ResolveInstance(text, instance string) (*Profile, error) {
	if err := grib.CheckInstance(r.ds, instance); err != nil {
		return nil, err
	}
	return r.Resolve(text)
}

// extract reads temperature at each level of the dataset, then u and v at the
// level nearest to that same pressure, all at one grid cell.
func (r *Resolver) extract(point Point) (*Profile, error) {
	cell, err := r.ds.NearestCell(point.Lon, point.Lat)
	if err != nil {
		return nil, err
	}

	n := len(r.ds.Levels)
	p := &Profile{
		Point:       point,
		Levels:      make([]float64, n),
		Temperature: make([]float64, n),
		UWind:       make([]float64, n),
		VWind:       make([]float64, n),
	}
	for i, level := range r.ds.Levels {
		p.Levels[i] = level
		if p.Temperature[i], err = r.ds.ValueAt(grib.TemperatureLabel, level, cell); err != nil {
			return nil, err
		}
		if p.UWind[i], err = r.ds.ValueAt(grib.UWindLabel, level, cell); err != nil {
			return nil, err
		}
		if p.VWind[i], err = r.ds.ValueAt(grib.VWindLabel, level, cell); err != nil {
			return nil, err
		}
	}
	return p, nil
}
