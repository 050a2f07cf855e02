package profile_test

import (
	"errors"
	"math"
	"sync"
	"testing"

	"go.uber.org/zap"

	"edrisobaric/internal/edrerr"
	"edrisobaric/internal/grib"
	"edrisobaric/internal/grib/gribtest"
	"edrisobaric/internal/profile"
)

func newResolver(t *testing.T) *profile.Resolver {
	t.Helper()
	r, err := profile.NewResolver(gribtest.Dataset(), 16, zap.NewNop())
	if err != nil {
		t.Fatalf("NewResolver returned error: %v", err)
	}
	return r
}

func TestResolveOslo(t *testing.T) {
	r := newResolver(t)

	p, err := r.Resolve("POINT(11.9384 60.1699)")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if p.Len() != len(gribtest.Levels) {
		t.Fatalf("profile has %d levels, expected %d", p.Len(), len(gribtest.Levels))
	}
	for i, level := range gribtest.Levels {
		if p.Levels[i] != level {
			t.Errorf("level %d = %v, expected %v", i, p.Levels[i], level)
		}
		if want := 288.15 - 6*float64(i); p.Temperature[i] != want {
			t.Errorf("temperature at %v hPa = %v, expected %v", level, p.Temperature[i], want)
		}
		// Nearest cell is lon 12 (index 8), lat 60 (index 4).
		if want := float64(i) + 0.08; math.Abs(p.UWind[i]-want) > 1e-9 {
			t.Errorf("u at %v hPa = %v, expected %v", level, p.UWind[i], want)
		}
		if want := -2 + 0.4; math.Abs(p.VWind[i]-want) > 1e-9 {
			t.Errorf("v at %v hPa = %v, expected %v", level, p.VWind[i], want)
		}
		if math.IsNaN(p.Temperature[i]) || math.IsNaN(p.UWind[i]) || math.IsNaN(p.VWind[i]) {
			t.Errorf("NaN at level %v", level)
		}
	}
	if p.Point.Lon != 11.9384 || p.Point.Lat != 60.1699 {
		t.Errorf("profile point = %+v, expected the requested coordinates", p.Point)
	}
}

func TestResolveLengthEverywhere(t *testing.T) {
	r := newResolver(t)
	for _, text := range []string{"POINT(8 58)", "POINT(14 62)", "POINT(8.24 61.76)", "POINT(13.99 58.01)"} {
		p, err := r.Resolve(text)
		if err != nil {
			t.Errorf("Resolve(%q) returned error: %v", text, err)
			continue
		}
		if p.Len() != len(r.Dataset().Levels) {
			t.Errorf("Resolve(%q) has %d levels, expected %d", text, p.Len(), len(r.Dataset().Levels))
		}
	}
}

func TestResolveErrors(t *testing.T) {
	r := newResolver(t)

	_, err := r.Resolve("POINT(1160)")
	var valErr *edrerr.ValidationError
	if !errors.As(err, &valErr) || valErr.Input != "POINT(1160)" {
		t.Errorf("Resolve(POINT(1160)) error = %v, expected validation error with input verbatim", err)
	}

	_, err = r.Resolve("POINT(30 60)")
	var boundsErr *edrerr.BoundsError
	if !errors.As(err, &boundsErr) || boundsErr.Axis != "longitude" || boundsErr.Value != 30 {
		t.Errorf("Resolve(POINT(30 60)) error = %v, expected longitude bounds error", err)
	}
}

func TestResolveInstance(t *testing.T) {
	r := newResolver(t)
	loaded := grib.InstanceID(r.Dataset())

	testCases := []struct {
		name     string
		instance string
		wantErr  bool
	}{
		{name: "Loaded instance", instance: loaded},
		{name: "Unknown instance", instance: "1234567890", wantErr: true},
		{name: "Empty instance", instance: "", wantErr: true},
		{name: "Blank instance", instance: " ", wantErr: true},
		{name: "Date only", instance: loaded[:10], wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			// Warm the cache so a memoised profile cannot skip the check.
			if _, err := r.Resolve("POINT(11 60)"); err != nil {
				t.Fatalf("Resolve returned error: %v", err)
			}
			_, err := r.ResolveInstance("POINT(11 60)", tc.instance)
			if !tc.wantErr {
				if err != nil {
					t.Errorf("ResolveInstance(%q) returned error: %v", tc.instance, err)
				}
				return
			}
			var instErr *edrerr.InstanceError
			if !errors.As(err, &instErr) {
				t.Fatalf("ResolveInstance(%q) error = %v, expected instance error", tc.instance, err)
			}
			if instErr.Given != tc.instance || len(instErr.Valid) != 1 || instErr.Valid[0] != loaded {
				t.Errorf("instance error = %+v", instErr)
			}
		})
	}
}

func TestResolveMemoised(t *testing.T) {
	r := newResolver(t)

	first, err := r.Resolve("POINT(11 60)")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	second, err := r.Resolve("POINT(11 60)")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if first != second {
		t.Error("expected the second call to return the memoised profile")
	}

	other, err := r.Resolve("POINT(11.0 60.0)")
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if other == first {
		t.Error("different text should not share a cache entry")
	}
	for i := range first.Temperature {
		if other.Temperature[i] != first.Temperature[i] {
			t.Errorf("equivalent points differ at level %d", i)
		}
	}
}

func TestResolveConcurrent(t *testing.T) {
	r := newResolver(t)

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Resolve("POINT(11.9384 60.1699)"); err != nil {
				t.Errorf("Resolve returned error: %v", err)
			}
		}()
	}
	wg.Wait()
}
