package wind

import "math"

const kelvinOffset = 273.15

// Speed returns the magnitude of the (u, v) wind vector.
func Speed(u, v float64) float64 {
	return math.Sqrt(u*u + v*v)
}

// DirectionFrom returns the meteorological "wind from" bearing in degrees,
// in [0, 360). Calm wind has no direction and reports 0.
func DirectionFrom(u, v float64) float64 {
	if u == 0 && v == 0 {
		return 0.0
	}
	// atan2(u, v), not atan2(v, u): the result is a compass bearing.
	d := (180/math.Pi)*math.Atan2(u, v) + 180
	// atan2(+0, v<0) is +π, which would give 360 for a wind from the north.
	if d >= 360 {
		d -= 360
	}
	return d
}

// KelvinToCelsius converts a temperature in Kelvin to degrees Celsius.
func KelvinToCelsius(k float64) float64 {
	return k - kelvinOffset
}

// Round rounds x to the given number of decimal places.
func Round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
