package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"go.uber.org/zap"

	"edrisobaric/internal/covjson"
	"edrisobaric/internal/grib"
	"edrisobaric/internal/grib/gribtest"
)

func testConfig() Config {
	return Config{
		Server:     ServerConfig{BaseURL: "http://localhost:5000/", RateLimit: 1000},
		Collection: CollectionConfig{ID: "isobaric", Title: "Isobaric", LicenseURL: "https://creativecommons.org/licenses/by/4.0/"},
		Provider:   ProviderConfig{Name: "Provider"},
		Response:   ResponseConfig{Shape: "derived", TemperatureUnit: "celsius"},
		Cache:      CacheConfig{Size: 8},
		CORS:       CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

func newTestServer(t *testing.T, cfg Config) (*edrService, http.Handler) {
	t.Helper()
	logger := zap.NewNop()
	svc, err := newEDRService(cfg, gribtest.Dataset(), logger)
	if err != nil {
		t.Fatalf("newEDRService returned error: %v", err)
	}
	return svc, newServer(svc, logger.Sugar())
}

func get(t *testing.T, h http.Handler, target string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func positionURL(prefix, coords string) string {
	return prefix + "/position?coords=" + url.QueryEscape(coords)
}

type detailBody struct {
	Detail []struct {
		Loc   []string `json:"loc"`
		Msg   string   `json:"msg"`
		Type  string   `json:"type"`
		Input any      `json:"input"`
	} `json:"detail"`
}

func decodeDetail(t *testing.T, rec *httptest.ResponseRecorder) detailBody {
	t.Helper()
	var body detailBody
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode error body %q: %v", rec.Body.String(), err)
	}
	if len(body.Detail) != 1 {
		t.Fatalf("expected 1 detail entry, got %d: %s", len(body.Detail), rec.Body.String())
	}
	return body
}

func TestPositionOslo(t *testing.T) {
	svc, h := newTestServer(t, testConfig())
	instance := grib.InstanceID(svc.ds)

	for _, prefix := range []string{"/collections/isobaric", "/collections/isobaric/instances/" + instance} {
		t.Run(prefix, func(t *testing.T) {
			rec := get(t, h, positionURL(prefix, "POINT(11.9384 60.1699)"))
			if rec.Code != http.StatusOK {
				t.Fatalf("status = %d, expected 200: %s", rec.Code, rec.Body.String())
			}
			if ct := rec.Header().Get("Content-Type"); !strings.HasPrefix(ct, covjson.MediaType) {
				t.Errorf("Content-Type = %q, expected %q", ct, covjson.MediaType)
			}

			var cov covjson.Coverage
			if err := json.Unmarshal(rec.Body.Bytes(), &cov); err != nil {
				t.Fatalf("failed to decode coverage: %v", err)
			}
			temp, ok := cov.Ranges[covjson.TemperatureKey]
			if !ok {
				t.Fatal("temperature range missing")
			}
			if len(temp.Values) != len(gribtest.Levels) {
				t.Errorf("temperature has %d values, expected %d", len(temp.Values), len(gribtest.Levels))
			}
			if temp.Values[0] != 15 {
				t.Errorf("temperature at 850 hPa = %v, expected 15", temp.Values[0])
			}
			if _, ok := cov.Ranges[covjson.WindSpeedKey]; !ok {
				t.Error("wind_speed range missing")
			}
			if got := cov.Domain.Axes.T.Values[0]; got != "2024-03-10T12:00:00Z" {
				t.Errorf("t axis = %q", got)
			}
		})
	}
}

func TestPositionComponentsShape(t *testing.T) {
	cfg := testConfig()
	cfg.Response.Shape = "components"
	cfg.Response.TemperatureUnit = "kelvin"
	_, h := newTestServer(t, cfg)

	rec := get(t, h, positionURL("/collections/isobaric", "POINT(11 60)"))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body.String())
	}
	var cov covjson.Coverage
	if err := json.Unmarshal(rec.Body.Bytes(), &cov); err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{covjson.UWindKey, covjson.VWindKey} {
		if _, ok := cov.Ranges[key]; !ok {
			t.Errorf("range %q missing", key)
		}
	}
	if _, ok := cov.Ranges[covjson.WindSpeedKey]; ok {
		t.Error("wind_speed should not be present for the components shape")
	}
	if got := cov.Ranges[covjson.TemperatureKey].Values[0]; got != 288.15 {
		t.Errorf("temperature = %v, expected 288.15 K", got)
	}
}

func TestPositionErrors(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	testCases := []struct {
		name      string
		target    string
		status    int
		wantType  string
		wantInput any
		wantMsg   string
	}{
		{
			name:      "Malformed point",
			target:    positionURL("/collections/isobaric", "POINT(1160)"),
			status:    http.StatusUnprocessableEntity,
			wantType:  "value_error",
			wantInput: "POINT(1160)",
		},
		{
			name:     "Missing coords",
			target:   "/collections/isobaric/position",
			status:   http.StatusUnprocessableEntity,
			wantType: "missing",
		},
		{
			name:      "Out of bounds",
			target:    positionURL("/collections/isobaric", "POINT(30 60)"),
			status:    http.StatusUnprocessableEntity,
			wantType:  "value_error",
			wantInput: "POINT(30 60)",
			wantMsg:   "out of bounds on longitude axis",
		},
		{
			name:     "Empty instance segment",
			target:   positionURL("/collections/isobaric/instances/", "POINT(11 60)"),
			status:   http.StatusBadRequest,
			wantType: "value_error",
			wantMsg:  "2024-03-10T12:00:00Z",
		},
		{
			name:      "Unknown instance",
			target:    positionURL("/collections/isobaric/instances/1234567890", "POINT(11 60)"),
			status:    http.StatusBadRequest,
			wantType:  "value_error",
			wantInput: "1234567890",
			wantMsg:   "2024-03-10T12:00:00Z",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			rec := get(t, h, tc.target)
			if rec.Code != tc.status {
				t.Fatalf("status = %d, expected %d: %s", rec.Code, tc.status, rec.Body.String())
			}
			body := decodeDetail(t, rec)
			d := body.Detail[0]
			if d.Type != tc.wantType {
				t.Errorf("type = %q, expected %q", d.Type, tc.wantType)
			}
			if tc.wantInput != nil && d.Input != tc.wantInput {
				t.Errorf("input = %v, expected %v", d.Input, tc.wantInput)
			}
			if tc.wantMsg != "" && !strings.Contains(d.Msg, tc.wantMsg) {
				t.Errorf("msg = %q, expected it to contain %q", d.Msg, tc.wantMsg)
			}
		})
	}
}

func TestUnknownCollection(t *testing.T) {
	_, h := newTestServer(t, testConfig())

	for _, target := range []string{
		"/collections/weather",
		"/collections/weather/instances",
		positionURL("/collections/weather", "POINT(11 60)"),
	} {
		if rec := get(t, h, target); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s status = %d, expected 404", target, rec.Code)
		}
	}
}

func TestMetadataDocuments(t *testing.T) {
	svc, h := newTestServer(t, testConfig())
	instance := grib.InstanceID(svc.ds)

	t.Run("Landing page", func(t *testing.T) {
		rec := get(t, h, "/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var page LandingPage
		if err := json.Unmarshal(rec.Body.Bytes(), &page); err != nil {
			t.Fatal(err)
		}
		if len(page.Links) == 0 || page.Links[0].Href != "http://localhost:5000/" {
			t.Errorf("links = %+v", page.Links)
		}
	})

	t.Run("Conformance", func(t *testing.T) {
		rec := get(t, h, "/conformance")
		var conf Conformance
		if err := json.Unmarshal(rec.Body.Bytes(), &conf); err != nil {
			t.Fatal(err)
		}
		if len(conf.ConformsTo) == 0 {
			t.Error("conformsTo is empty")
		}
	})

	t.Run("Collections", func(t *testing.T) {
		rec := get(t, h, "/collections")
		var cols Collections
		if err := json.Unmarshal(rec.Body.Bytes(), &cols); err != nil {
			t.Fatal(err)
		}
		if len(cols.Collections) != 1 || cols.Collections[0].ID != "isobaric" {
			t.Fatalf("collections = %+v", cols.Collections)
		}
		ext := cols.Collections[0].Extent
		if bbox := ext.Spatial.Bbox[0]; bbox[0] != 8 || bbox[1] != 58 || bbox[2] != 14 || bbox[3] != 62 {
			t.Errorf("bbox = %v", bbox)
		}
		if ext.Temporal.Interval[0][1] != "2024-03-11T00:00:00Z" {
			t.Errorf("temporal interval = %v", ext.Temporal.Interval)
		}
		if len(ext.Vertical.Values) != len(gribtest.Levels) {
			t.Errorf("vertical values = %v", ext.Vertical.Values)
		}
	})

	t.Run("Collection with trailing slash", func(t *testing.T) {
		rec := get(t, h, "/collections/isobaric/")
		if rec.Code != http.StatusOK {
			t.Fatalf("status = %d", rec.Code)
		}
		var col Collection
		if err := json.Unmarshal(rec.Body.Bytes(), &col); err != nil {
			t.Fatal(err)
		}
		if col.DataQueries.Position.Link.Href != "http://localhost:5000/collections/isobaric/position" {
			t.Errorf("position href = %q", col.DataQueries.Position.Link.Href)
		}
		if _, ok := col.ParameterNames[covjson.WindFromDirectionKey]; !ok {
			t.Errorf("parameter names = %v", col.ParameterNames)
		}
	})

	t.Run("Instances", func(t *testing.T) {
		rec := get(t, h, "/collections/isobaric/instances")
		var insts Instances
		if err := json.Unmarshal(rec.Body.Bytes(), &insts); err != nil {
			t.Fatal(err)
		}
		if len(insts.Instances) != 1 || insts.Instances[0].ID != instance {
			t.Errorf("instances = %+v", insts.Instances)
		}
	})

	t.Run("Instance", func(t *testing.T) {
		if rec := get(t, h, "/collections/isobaric/instances/"+instance); rec.Code != http.StatusOK {
			t.Errorf("status = %d", rec.Code)
		}
		if rec := get(t, h, "/collections/isobaric/instances/2020-01-01T00:00:00Z"); rec.Code != http.StatusBadRequest {
			t.Errorf("unknown instance status = %d, expected 400", rec.Code)
		}
	})

	t.Run("Health", func(t *testing.T) {
		rec := get(t, h, "/health")
		var health HealthStatus
		if err := json.Unmarshal(rec.Body.Bytes(), &health); err != nil {
			t.Fatal(err)
		}
		if health.Status != "OK" || health.Instance != instance {
			t.Errorf("health = %+v", health)
		}
	})
}
