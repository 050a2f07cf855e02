// Package covjson builds CoverageJSON documents for vertical profiles.
package covjson

// MediaType is the registered content type of CoverageJSON.
const MediaType = "application/prs.coverage+json"

// Coverage is a CoverageJSON document.
type Coverage struct {
	Type       string               `json:"type"`
	ID         string               `json:"id,omitempty"`
	Domain     Domain               `json:"domain"`
	Parameters map[string]Parameter `json:"parameters"`
	Ranges     map[string]NdArray   `json:"ranges"`
}

// Domain describes the axes a coverage is defined on.
type Domain struct {
	Type        string                      `json:"type"`
	DomainType  string                      `json:"domainType"`
	Axes        Axes                        `json:"axes"`
	Referencing []ReferenceSystemConnection `json:"referencing"`
}

// Axes of a vertical profile.
type Axes struct {
	X ValuesAxis[float64] `json:"x"`
	Y ValuesAxis[float64] `json:"y"`
	Z ValuesAxis[float64] `json:"z"`
	T ValuesAxis[string]  `json:"t"`
}

// ValuesAxis lists the coordinates along one axis.
type ValuesAxis[T any] struct {
	Values []T `json:"values"`
}

// ReferenceSystemConnection ties axes to a reference system.
type ReferenceSystemConnection struct {
	Coordinates []string        `json:"coordinates"`
	System      ReferenceSystem `json:"system"`
}

// ReferenceSystem is a geographic, vertical or temporal reference system.
type ReferenceSystem struct {
	Type     string            `json:"type"`
	ID       string            `json:"id,omitempty"`
	Calendar string            `json:"calendar,omitempty"`
	CS       *CoordinateSystem `json:"cs,omitempty"`
}

type CoordinateSystem struct {
	CSAxes []CSAxis `json:"csAxes"`
}

type CSAxis struct {
	Name      map[string]string `json:"name"`
	Direction string            `json:"direction"`
	Unit      Unit              `json:"unit"`
}

// Parameter describes one range.
type Parameter struct {
	Type             string            `json:"type"`
	ID               string            `json:"id,omitempty"`
	Label            map[string]string `json:"label,omitempty"`
	Description      map[string]string `json:"description,omitempty"`
	Unit             Unit              `json:"unit"`
	ObservedProperty ObservedProperty  `json:"observedProperty"`
}

// Unit of a parameter. Symbol is either a plain string or a Symbol.
type Unit struct {
	ID     string            `json:"id,omitempty"`
	Label  map[string]string `json:"label,omitempty"`
	Symbol any               `json:"symbol,omitempty"`
}

type Symbol struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type ObservedProperty struct {
	ID          string            `json:"id,omitempty"`
	Label       map[string]string `json:"label"`
	Description map[string]string `json:"description,omitempty"`
}

// NdArray holds the values of one range.
type NdArray struct {
	Type      string    `json:"type"`
	DataType  string    `json:"dataType"`
	AxisNames []string  `json:"axisNames"`
	Shape     []int     `json:"shape"`
	Values    []float64 `json:"values"`
}
