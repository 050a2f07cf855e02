package main

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"edrisobaric/internal/covjson"
	"edrisobaric/internal/grib"
	"edrisobaric/internal/profile"
)

// temporalSpan is how long past the valid time a file is advertised for.
const temporalSpan = 12 * time.Hour

var conformanceClasses = []string{
	"http://www.opengis.net/spec/ogcapi-common-1/1.0/conf/core",
	"http://www.opengis.net/spec/ogcapi-common-2/1.0/conf/collections",
	"http://www.opengis.net/spec/ogcapi-edr-1/1.1/conf/core",
	"http://www.opengis.net/spec/ogcapi-edr-1/1.0/conf/covjson",
	"http://www.opengis.net/spec/ogcapi-edr-1/1.0/conf/queries",
	"https://rodeo-project.eu/rodeo-edr-profile",
}

// edrService holds everything the handlers read. None of it changes after
// startup.
type edrService struct {
	cfg      Config
	ds       *grib.Dataset
	resolver *profile.Resolver
	coverage covjson.Options
	logger   *zap.Logger
}

func newEDRService(cfg Config, ds *grib.Dataset, logger *zap.Logger) (*edrService, error) {
	coverage, err := cfg.CoverageOptions()
	if err != nil {
		return nil, err
	}
	resolver, err := profile.NewResolver(ds, cfg.Cache.Size, logger)
	if err != nil {
		return nil, err
	}
	return &edrService{
		cfg:      cfg,
		ds:       ds,
		resolver: resolver,
		coverage: coverage,
		logger:   logger,
	}, nil
}

func registerRoutes(e *echo.Echo, svc *edrService) {
	// Health check endpoint
	e.GET("/health", handleHealth(svc))

	e.GET("/", handleLandingPage(svc))
	e.GET("/conformance", handleConformance)
	e.GET("/collections", handleCollections(svc))

	col := e.Group("/collections/:collectionId", requireCollection(svc))
	col.GET("", handleCollection(svc))
	col.GET("/position", handlePosition(svc))
	col.GET("/instances", handleInstances(svc))
	col.GET("/instances/:instanceId", handleInstance(svc))
	col.GET("/instances/:instanceId/position", handleInstancePosition(svc))
}

// requireCollection rejects any collection other than the configured one.
func requireCollection(svc *edrService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if id := c.Param("collectionId"); id != svc.cfg.Collection.ID {
				return respondWithError(c, http.StatusNotFound,
					fmt.Sprintf("collection %q not found, only available collection is %s", id, svc.cfg.Collection.ID))
			}
			return next(c)
		}
	}
}

func handleHealth(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		return respondWithJSON(c, http.StatusOK, HealthStatus{
			Status:    "OK",
			Instance:  grib.InstanceID(svc.ds),
			Source:    svc.ds.Source,
			Levels:    len(svc.ds.Levels),
			ValidTime: svc.ds.TemporalExtent().Format(time.RFC3339),
		})
	}
}

func handleLandingPage(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		base := svc.cfg.Server.BaseURL
		return respondWithJSON(c, http.StatusOK, LandingPage{
			Title:       "EDR isobaric from Grib",
			Description: "An EDR API for isobaric data from Grib files",
			Links: []Link{
				{Href: base, Rel: "self", Type: "application/json", Title: "Landing Page"},
				{Href: base + "conformance", Rel: "conformance", Type: "application/json", Title: "Conformance document"},
				{Href: base + "collections", Rel: "data", Type: "application/json", Title: "Collections metadata in JSON"},
			},
			Provider: Provider{Name: svc.cfg.Provider.Name, URL: svc.cfg.Provider.URL},
			Contact: Contact{
				Email:      svc.cfg.Contact.Email,
				Phone:      svc.cfg.Contact.Phone,
				PostalCode: svc.cfg.Contact.PostalCode,
				City:       svc.cfg.Contact.City,
				Address:    svc.cfg.Contact.Address,
				Country:    svc.cfg.Contact.Country,
			},
		})
	}
}

func handleConformance(c echo.Context) error {
	return respondWithJSON(c, http.StatusOK, Conformance{ConformsTo: conformanceClasses})
}

func handleCollections(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		return respondWithJSON(c, http.StatusOK, Collections{
			Links: []Link{
				{Href: svc.cfg.Server.BaseURL + "collections", Rel: "self", Type: "application/json", Hreflang: "en"},
			},
			Collections: []Collection{svc.collection("data")},
		})
	}
}

func handleCollection(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		return respondWithJSON(c, http.StatusOK, svc.collection("self"))
	}
}

func handleInstances(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		ids := grib.InstanceIDs(svc.ds)
		instances := make([]Instance, 0, len(ids))
		for _, id := range ids {
			instances = append(instances, svc.instance(id))
		}
		return respondWithJSON(c, http.StatusOK, Instances{
			Links: []Link{
				{Href: svc.cfg.CollectionURL() + "instances/", Rel: "self", Type: "application/json", Hreflang: "en"},
			},
			Instances: instances,
		})
	}
}

func handleInstance(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Param("instanceId")
		if err := grib.CheckInstance(svc.ds, id); err != nil {
			return respondWithQueryError(c, err)
		}
		return respondWithJSON(c, http.StatusOK, svc.instance(id))
	}
}

// handlePosition answers a position query against the loaded instance.
func handlePosition(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		return svc.position(c, func(coords string) (*profile.Profile, error) {
			return svc.resolver.Resolve(coords)
		})
	}
}

// handleInstancePosition answers a position query naming an instance in the
// path. The id is always checked, even when the segment is empty.
func handleInstancePosition(svc *edrService) echo.HandlerFunc {
	return func(c echo.Context) error {
		instance := c.Param("instanceId")
		return svc.position(c, func(coords string) (*profile.Profile, error) {
			return svc.resolver.ResolveInstance(coords, instance)
		})
	}
}

func (svc *edrService) position(c echo.Context, resolve func(coords string) (*profile.Profile, error)) error {
	coords := c.QueryParam("coords")
	if coords == "" {
		return respondWithDetail(c, http.StatusUnprocessableEntity, errorDetail{
			Loc:   profile.CoordsLoc,
			Msg:   "Field required. Example: ?coords=POINT(11.9384 60.1699)",
			Type:  "missing",
			Input: nil,
		})
	}

	p, err := resolve(coords)
	if err != nil {
		svc.logger.Info("Rejected position query",
			zap.String("coords", coords),
			zap.String("path", c.Request().URL.Path),
			zap.Error(err),
		)
		return respondWithQueryError(c, err)
	}

	cov := covjson.Assemble(p, svc.ds.TemporalExtent(), svc.coverage)
	return respondWithMediaType(c, http.StatusOK, covjson.MediaType, cov)
}

func (svc *edrService) extent() Extent {
	validTime := svc.ds.TemporalExtent()
	vertical := svc.ds.VerticalExtent()
	var interval [][]string
	if len(vertical) > 0 {
		interval = [][]string{{vertical[0]}, {vertical[len(vertical)-1]}}
	}
	return Extent{
		Spatial: SpatialExtent{
			Bbox: [][]float64{svc.ds.SpatialExtent()},
			CRS:  covjson.CRS84Short,
		},
		Temporal: TemporalExtent{
			Interval: [][]string{{
				validTime.Format(time.RFC3339),
				validTime.Add(temporalSpan).Format(time.RFC3339),
			}},
			Values: []string{validTime.Format(time.RFC3339)},
			TRS:    "Gregorian",
		},
		Vertical: VerticalExtent{
			Interval: interval,
			Values:   vertical,
			VRS:      "Pressure level in hPa",
		},
	}
}

func (svc *edrService) positionQuery(href string) DataQueries {
	return DataQueries{Position: EDRQuery{Link: QueryLink{
		Href: href,
		Rel:  "data",
		Variables: QueryVariables{
			QueryType:           "position",
			Coords:              "Well Known Text POINT value i.e. POINT(10.9 60.1)",
			OutputFormats:       []string{"CoverageJSON"},
			DefaultOutputFormat: "CoverageJSON",
		},
	}}}
}

func (svc *edrService) collection(rel string) Collection {
	collectionURL := svc.cfg.CollectionURL()
	links := []Link{
		{Href: collectionURL, Rel: rel},
		{Href: svc.cfg.Collection.LicenseURL, Rel: "license", Type: "text/html"},
	}
	if svc.cfg.Collection.DocsURL != "" {
		links = append(links, Link{Href: svc.cfg.Collection.DocsURL, Rel: "service-doc", Type: "text/html"})
	}
	return Collection{
		ID:          svc.cfg.Collection.ID,
		Title:       svc.cfg.Collection.Title,
		Description: svc.cfg.Collection.Description,
		Keywords: []string{
			"position", "data", "api", "temperature", "wind", "forecast", "isobaric", svc.cfg.Collection.ID,
		},
		Links:          links,
		Extent:         svc.extent(),
		DataQueries:    svc.positionQuery(collectionURL + "position"),
		CRS:            []string{covjson.CRS84Short},
		OutputFormats:  []string{"CoverageJSON"},
		ParameterNames: svc.parameterNames(),
	}
}

func (svc *edrService) instance(id string) Instance {
	instanceURL := svc.cfg.InstanceURL(id)
	return Instance{
		ID:             id,
		Title:          id,
		Description:    fmt.Sprintf("Data from date %s, formatted as %s.", id, grib.InstanceFormat),
		Links:          []Link{{Href: instanceURL, Rel: "self", Type: "application/json", Hreflang: "en"}},
		Extent:         svc.extent(),
		DataQueries:    svc.positionQuery(instanceURL + "position"),
		ParameterNames: svc.parameterNames(),
	}
}

// parameterNames describes the ranges a position query returns.
func (svc *edrService) parameterNames() map[string]ParameterName {
	temperature := ParameterName{
		Type: "Parameter", ID: covjson.TemperatureKey, Label: "Air temperature", Description: "Air temperature",
		Unit:             ParameterUnit{Symbol: UnitSymbol{Value: covjson.CelsiusSymbol, Type: covjson.CelsiusID}},
		ObservedProperty: ObservedProperty{ID: covjson.AirTemperatureID, Label: "Air temperature"},
	}
	if svc.coverage.TemperatureUnit == covjson.Kelvin {
		temperature.Unit = ParameterUnit{Symbol: UnitSymbol{Value: covjson.KelvinSymbol, Type: covjson.KelvinID}}
	}

	all := map[string]ParameterName{
		covjson.TemperatureKey: temperature,
		covjson.WindFromDirectionKey: {
			Type: "Parameter", ID: covjson.WindFromDirectionKey, Label: "Wind from direction", Description: "Wind from direction",
			Unit:             ParameterUnit{Symbol: UnitSymbol{Value: covjson.DegreeSymbol, Type: covjson.DegreeID}},
			ObservedProperty: ObservedProperty{ID: covjson.WindFromDirID, Label: "Wind from direction"},
		},
		covjson.WindSpeedKey: {
			Type: "Parameter", ID: covjson.WindSpeedKey, Label: "Wind speed", Description: "Wind speed",
			Unit:             ParameterUnit{Symbol: UnitSymbol{Value: covjson.SpeedSymbol, Type: covjson.SpeedID}},
			ObservedProperty: ObservedProperty{ID: covjson.WindSpeedID, Label: "Wind speed"},
		},
		covjson.UWindKey: {
			Type: "Parameter", ID: covjson.UWindKey, Label: "U component of wind", Description: "U component of wind",
			Unit:             ParameterUnit{Symbol: UnitSymbol{Value: covjson.SpeedSymbol, Type: covjson.SpeedID}},
			ObservedProperty: ObservedProperty{ID: covjson.UWindID, Label: "u-component of wind"},
		},
		covjson.VWindKey: {
			Type: "Parameter", ID: covjson.VWindKey, Label: "V component of wind", Description: "V component of wind",
			Unit:             ParameterUnit{Symbol: UnitSymbol{Value: covjson.SpeedSymbol, Type: covjson.SpeedID}},
			ObservedProperty: ObservedProperty{ID: covjson.VWindID, Label: "v-component of wind"},
		},
	}

	names := make(map[string]ParameterName)
	for _, key := range svc.coverage.Shape.Keys() {
		names[key] = all[key]
	}
	return names
}
