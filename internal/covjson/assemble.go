package covjson

import (
	"fmt"
	"strings"
	"time"

	"edrisobaric/internal/profile"
	"edrisobaric/internal/wind"
)

// Shape selects which ranges a coverage carries.
type Shape string

const (
	// Derived carries temperature, wind direction and wind speed.
	Derived Shape = "derived"
	// Components carries temperature and the raw u and v wind.
	Components Shape = "components"
	// All carries every range.
	All Shape = "all"
)

// TemperatureUnit selects how temperature is reported.
type TemperatureUnit string

const (
	Celsius TemperatureUnit = "celsius"
	Kelvin  TemperatureUnit = "kelvin"
)

// ParseShape maps a configuration value onto a Shape.
func ParseShape(s string) (Shape, error) {
	switch Shape(strings.ToLower(strings.TrimSpace(s))) {
	case "", Derived:
		return Derived, nil
	case Components:
		return Components, nil
	case All:
		return All, nil
	}
	return "", fmt.Errorf("unknown response shape %q, expected one of %s, %s, %s", s, Derived, Components, All)
}

// ParseTemperatureUnit maps a configuration value onto a TemperatureUnit.
func ParseTemperatureUnit(s string) (TemperatureUnit, error) {
	switch TemperatureUnit(strings.ToLower(strings.TrimSpace(s))) {
	case "", Celsius:
		return Celsius, nil
	case Kelvin:
		return Kelvin, nil
	}
	return "", fmt.Errorf("unknown temperature unit %q, expected %s or %s", s, Celsius, Kelvin)
}

// Options controls coverage assembly.
type Options struct {
	ID              string
	Shape           Shape
	TemperatureUnit TemperatureUnit
}

// Keys lists the range keys produced for a shape.
func (s Shape) Keys() []string {
	switch s {
	case Components:
		return []string{TemperatureKey, UWindKey, VWindKey}
	case All:
		return []string{TemperatureKey, WindFromDirectionKey, WindSpeedKey, UWindKey, VWindKey}
	default:
		return []string{TemperatureKey, WindFromDirectionKey, WindSpeedKey}
	}
}

// Assemble builds the coverage for one profile valid at validTime.
func Assemble(p *profile.Profile, validTime time.Time, opts Options) *Coverage {
	n := p.Len()

	temperature := make([]float64, n)
	direction := make([]float64, n)
	speed := make([]float64, n)
	for i := 0; i < n; i++ {
		temperature[i] = p.Temperature[i]
		if opts.TemperatureUnit != Kelvin {
			temperature[i] = wind.Round(wind.KelvinToCelsius(p.Temperature[i]), 2)
		}
		direction[i] = wind.DirectionFrom(p.UWind[i], p.VWind[i])
		speed[i] = wind.Speed(p.UWind[i], p.VWind[i])
	}

	values := map[string][]float64{
		TemperatureKey:       temperature,
		WindFromDirectionKey: direction,
		WindSpeedKey:         speed,
		UWindKey:             append([]float64(nil), p.UWind...),
		VWindKey:             append([]float64(nil), p.VWind...),
	}
	params := map[string]Parameter{
		TemperatureKey:       temperatureParameter(opts.TemperatureUnit),
		WindFromDirectionKey: windFromDirectionParameter(),
		WindSpeedKey:         windSpeedParameter(),
		UWindKey:             windComponentParameter(UWindKey, UWindID, "u-component of wind"),
		VWindKey:             windComponentParameter(VWindKey, VWindID, "v-component of wind"),
	}

	cov := &Coverage{
		Type:       "Coverage",
		ID:         opts.ID,
		Domain:     verticalProfileDomain(p, validTime),
		Parameters: make(map[string]Parameter),
		Ranges:     make(map[string]NdArray),
	}
	for _, key := range opts.Shape.Keys() {
		cov.Parameters[key] = params[key]
		cov.Ranges[key] = NdArray{
			Type:      "NdArray",
			DataType:  "float",
			AxisNames: []string{"z"},
			Shape:     []int{n},
			Values:    values[key],
		}
	}
	return cov
}

func verticalProfileDomain(p *profile.Profile, validTime time.Time) Domain {
	return Domain{
		Type:       "Domain",
		DomainType: "VerticalProfile",
		Axes: Axes{
			X: ValuesAxis[float64]{Values: []float64{p.Point.Lon}},
			Y: ValuesAxis[float64]{Values: []float64{p.Point.Lat}},
			Z: ValuesAxis[float64]{Values: append([]float64(nil), p.Levels...)},
			T: ValuesAxis[string]{Values: []string{validTime.UTC().Format(time.RFC3339)}},
		},
		Referencing: []ReferenceSystemConnection{
			{
				Coordinates: []string{"x", "y"},
				System:      ReferenceSystem{Type: "GeographicCRS", ID: CRS84},
			},
			{
				Coordinates: []string{"z"},
				System: ReferenceSystem{
					Type: "VerticalCRS",
					CS: &CoordinateSystem{CSAxes: []CSAxis{{
						Name:      en("Pressure"),
						Direction: "down",
						Unit:      Unit{Symbol: "hPa"},
					}}},
				},
			},
			{
				Coordinates: []string{"t"},
				System:      ReferenceSystem{Type: "TemporalRS", Calendar: "Gregorian"},
			},
		},
	}
}
