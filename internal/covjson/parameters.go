package covjson

// Range keys, also used as parameter names.
const (
	TemperatureKey       = "temperature"
	WindFromDirectionKey = "wind_from_direction"
	WindSpeedKey         = "wind_speed"
	UWindKey             = "uwind"
	VWindKey             = "vwind"
)

// Vocabulary and unit identifiers.
const (
	CRS84            = "http://www.opengis.net/def/crs/OGC/1.3/CRS84"
	CRS84Short       = "OGC:CRS84"
	AirTemperatureID = "https://vocab.nerc.ac.uk/standard_name/air_temperature/"
	WindFromDirID    = "https://vocab.nerc.ac.uk/standard_name/wind_from_direction/"
	WindSpeedID      = "https://vocab.nerc.ac.uk/standard_name/wind_speed/"
	UWindID          = "https://codes.wmo.int/bufr4/b/11/_095"
	VWindID          = "https://codes.wmo.int/bufr4/b/11/_096"
	CelsiusID        = "https://qudt.org/vocab/unit/DEG_C"
	KelvinID         = "https://codes.wmo.int/common/unit/_K"
	DegreeID         = "https://qudt.org/vocab/unit/DEG"
	SpeedID          = "https://qudt.org/vocab/unit/M-PER-SEC"

	CelsiusSymbol = "˚C"
	KelvinSymbol  = "K"
	DegreeSymbol  = "˚"
	SpeedSymbol   = "m/s"
)

func en(s string) map[string]string {
	return map[string]string{"en": s}
}

func temperatureParameter(unit TemperatureUnit) Parameter {
	u := Unit{Label: en("Degree Celsius"), Symbol: Symbol{Value: CelsiusSymbol, Type: CelsiusID}}
	if unit == Kelvin {
		u = Unit{Label: en("Kelvin"), Symbol: Symbol{Value: KelvinSymbol, Type: KelvinID}}
	}
	return Parameter{
		Type:             "Parameter",
		ID:               TemperatureKey,
		Label:            en("Air temperature"),
		Unit:             u,
		ObservedProperty: ObservedProperty{ID: AirTemperatureID, Label: en("Air temperature")},
	}
}

func windFromDirectionParameter() Parameter {
	return Parameter{
		Type:             "Parameter",
		ID:               WindFromDirectionKey,
		Label:            en("Wind from direction"),
		Description:      en("Direction the wind is blowing from, clockwise from north"),
		Unit:             Unit{Label: en("Degree"), Symbol: Symbol{Value: DegreeSymbol, Type: DegreeID}},
		ObservedProperty: ObservedProperty{ID: WindFromDirID, Label: en("Wind from direction")},
	}
}

func windSpeedParameter() Parameter {
	return Parameter{
		Type:             "Parameter",
		ID:               WindSpeedKey,
		Label:            en("Wind speed"),
		Unit:             Unit{Label: en("Metre per second"), Symbol: Symbol{Value: SpeedSymbol, Type: SpeedID}},
		ObservedProperty: ObservedProperty{ID: WindSpeedID, Label: en("Wind speed")},
	}
}

func windComponentParameter(key, id, label string) Parameter {
	return Parameter{
		Type:             "Parameter",
		ID:               key,
		Label:            en(label),
		Unit:             Unit{Label: en("m/s"), Symbol: Symbol{Value: SpeedSymbol, Type: SpeedID}},
		ObservedProperty: ObservedProperty{ID: id, Label: en(label)},
	}
}
