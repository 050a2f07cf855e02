package main

// EDR metadata documents served alongside position queries.

type Link struct {
	Href     string `json:"href"`
	Rel      string `json:"rel"`
	Type     string `json:"type,omitempty"`
	Title    string `json:"title,omitempty"`
	Hreflang string `json:"hreflang,omitempty"`
}

type Provider struct {
	Name string `json:"name"`
	URL  string `json:"url,omitempty"`
}

type Contact struct {
	Email      string `json:"email,omitempty"`
	Phone      string `json:"phone,omitempty"`
	PostalCode string `json:"postalCode,omitempty"`
	City       string `json:"city,omitempty"`
	Address    string `json:"address,omitempty"`
	Country    string `json:"country,omitempty"`
}

type LandingPage struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Links       []Link   `json:"links"`
	Provider    Provider `json:"provider"`
	Contact     Contact  `json:"contact"`
}

type Conformance struct {
	ConformsTo []string `json:"conformsTo"`
}

type SpatialExtent struct {
	Bbox [][]float64 `json:"bbox"`
	CRS  string      `json:"crs"`
}

type TemporalExtent struct {
	Interval [][]string `json:"interval"`
	Values   []string   `json:"values"`
	TRS      string     `json:"trs"`
}

type VerticalExtent struct {
	Interval [][]string `json:"interval"`
	Values   []string   `json:"values"`
	VRS      string     `json:"vrs"`
}

type Extent struct {
	Spatial  SpatialExtent  `json:"spatial"`
	Temporal TemporalExtent `json:"temporal"`
	Vertical VerticalExtent `json:"vertical"`
}

type QueryVariables struct {
	QueryType           string   `json:"query_type"`
	Coords              string   `json:"coords,omitempty"`
	OutputFormats       []string `json:"output_formats"`
	DefaultOutputFormat string   `json:"default_output_format,omitempty"`
}

type QueryLink struct {
	Href      string         `json:"href"`
	Rel       string         `json:"rel"`
	Variables QueryVariables `json:"variables"`
}

type EDRQuery struct {
	Link QueryLink `json:"link"`
}

type DataQueries struct {
	Position EDRQuery `json:"position"`
}

type UnitSymbol struct {
	Value string `json:"value"`
	Type  string `json:"type"`
}

type ParameterUnit struct {
	Symbol UnitSymbol `json:"symbol"`
}

type ObservedProperty struct {
	ID    string `json:"id,omitempty"`
	Label string `json:"label"`
}

type ParameterName struct {
	Type             string           `json:"type"`
	ID               string           `json:"id"`
	Label            string           `json:"label"`
	Description      string           `json:"description,omitempty"`
	Unit             ParameterUnit    `json:"unit"`
	ObservedProperty ObservedProperty `json:"observedProperty"`
}

type Collection struct {
	ID             string                   `json:"id"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Keywords       []string                 `json:"keywords"`
	Links          []Link                   `json:"links"`
	Extent         Extent                   `json:"extent"`
	DataQueries    DataQueries              `json:"data_queries"`
	CRS            []string                 `json:"crs"`
	OutputFormats  []string                 `json:"output_formats"`
	ParameterNames map[string]ParameterName `json:"parameter_names"`
}

type Collections struct {
	Links       []Link       `json:"links"`
	Collections []Collection `json:"collections"`
}

type Instance struct {
	ID             string                   `json:"id"`
	Title          string                   `json:"title"`
	Description    string                   `json:"description"`
	Links          []Link                   `json:"links"`
	Extent         Extent                   `json:"extent"`
	DataQueries    DataQueries              `json:"data_queries"`
	ParameterNames map[string]ParameterName `json:"parameter_names"`
}

type Instances struct {
	Links     []Link     `json:"links"`
	Instances []Instance `json:"instances"`
}

type HealthStatus struct {
	Status    string `json:"status"`
	Instance  string `json:"instance"`
	Source    string `json:"source"`
	Levels    int    `json:"levels"`
	ValidTime string `json:"valid_time"`
}
