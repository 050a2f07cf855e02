package profile_test

import (
	"errors"
	"math"
	"testing"

	"edrisobaric/internal/edrerr"
	"edrisobaric/internal/grib/gribtest"
	"edrisobaric/internal/profile"
)

func TestParsePoint(t *testing.T) {
	testCases := []struct {
		name     string
		text     string
		expected profile.Point
		wantErr  bool
	}{
		{name: "Oslo", text: "POINT(11.9384 60.1699)", expected: profile.Point{Lon: 11.9384, Lat: 60.1699}},
		{name: "Space after keyword", text: "POINT (11 60)", expected: profile.Point{Lon: 11, Lat: 60}},
		{name: "Trailing dot", text: "POINT(11. 60.)", expected: profile.Point{Lon: 11, Lat: 60}},
		{name: "Negative", text: "POINT(-3.5 -45.25)", expected: profile.Point{Lon: -3.5, Lat: -45.25}},
		{name: "Missing separator", text: "POINT(1160)", wantErr: true},
		{name: "Empty point", text: "POINT EMPTY", wantErr: true},
		{name: "Line string", text: "LINESTRING(0 0, 1 1)", wantErr: true},
		{name: "Empty string", text: "", wantErr: true},
		{name: "Plain numbers", text: "11 60", wantErr: true},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := profile.ParsePoint(tc.text)
			if !tc.wantErr {
				if err != nil {
					t.Fatalf("ParsePoint(%q) returned error: %v", tc.text, err)
				}
				if got != tc.expected {
					t.Errorf("ParsePoint(%q) = %+v, expected %+v", tc.text, got, tc.expected)
				}
				return
			}

			var valErr *edrerr.ValidationError
			if !errors.As(err, &valErr) {
				t.Fatalf("ParsePoint(%q) error = %v, expected *edrerr.ValidationError", tc.text, err)
			}
			if valErr.Input != tc.text {
				t.Errorf("ValidationError.Input = %q, expected %q", valErr.Input, tc.text)
			}
			if len(valErr.Loc) != 2 || valErr.Loc[0] != "query" || valErr.Loc[1] != "coords" {
				t.Errorf("ValidationError.Loc = %v, expected [query coords]", valErr.Loc)
			}
		})
	}
}

func TestCheckBounds(t *testing.T) {
	ds := gribtest.Dataset() // lon 8..14, lat 58..62

	testCases := []struct {
		name     string
		point    profile.Point
		wantAxis string
	}{
		{name: "Inside", point: profile.Point{Lon: 11, Lat: 60}},
		{name: "Lower corner inclusive", point: profile.Point{Lon: 8, Lat: 58}},
		{name: "Upper corner inclusive", point: profile.Point{Lon: 14, Lat: 62}},
		{name: "Just above max latitude", point: profile.Point{Lon: 11, Lat: math.Nextafter(62, 63)}, wantAxis: "latitude"},
		{name: "Just below min latitude", point: profile.Point{Lon: 11, Lat: math.Nextafter(58, 57)}, wantAxis: "latitude"},
		{name: "Just above max longitude", point: profile.Point{Lon: math.Nextafter(14, 15), Lat: 60}, wantAxis: "longitude"},
		{name: "Just below min longitude", point: profile.Point{Lon: math.Nextafter(8, 7), Lat: 60}, wantAxis: "longitude"},
		{name: "Both out reports latitude", point: profile.Point{Lon: 100, Lat: -80}, wantAxis: "latitude"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := profile.CheckBounds(ds, tc.point)
			if tc.wantAxis == "" {
				if err != nil {
					t.Errorf("CheckBounds(%+v) returned error: %v", tc.point, err)
				}
				return
			}
			var boundsErr *edrerr.BoundsError
			if !errors.As(err, &boundsErr) {
				t.Fatalf("CheckBounds(%+v) error = %v, expected *edrerr.BoundsError", tc.point, err)
			}
			if boundsErr.Axis != tc.wantAxis {
				t.Errorf("BoundsError.Axis = %q, expected %q", boundsErr.Axis, tc.wantAxis)
			}
		})
	}
}
