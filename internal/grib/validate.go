package grib

import (
	"errors"
	"fmt"
	"math"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// MinIsobaricLevels is the smallest level count accepted as a complete file.
const MinIsobaricLevels = 10

// Check runs the structural sanity checks and returns every failure found.
func Check(ds *Dataset) error {
	if ds == nil {
		return errors.New("dataset is nil")
	}

	var err error
	if n := distinctCount(ds.Levels); n < MinIsobaricLevels {
		err = multierr.Append(err, fmt.Errorf("count of isobaric levels in file is unexpected: got %d, want at least %d", n, MinIsobaricLevels))
	}

	temperature := ds.Field(TemperatureLabel)
	if temperature == nil {
		err = multierr.Append(err, fmt.Errorf("temperature variable %q not found in file", TemperatureLabel))
	}

	for _, name := range []string{TemperatureLabel, UWindLabel, VWindLabel} {
		f := ds.Field(name)
		if f == nil {
			if name != TemperatureLabel {
				err = multierr.Append(err, fmt.Errorf("wind variable %q not found in file", name))
			}
			continue
		}
		if shapeErr := checkShape(ds, f); shapeErr != nil {
			err = multierr.Append(err, shapeErr)
			continue
		}
		if hasNaN(f) {
			err = multierr.Append(err, fmt.Errorf("variable %q has missing values", name))
		}
	}

	return err
}

// Validate reports whether the dataset is fit to serve, logging each failure.
func Validate(ds *Dataset, logger *zap.Logger) bool {
	err := Check(ds)
	if err == nil {
		return true
	}
	source := ""
	if ds != nil {
		source = ds.Source
	}
	for _, e := range multierr.Errors(err) {
		logger.Error("Dataset validation failed",
			zap.String("file", source),
			zap.Error(e),
		)
	}
	return false
}

func checkShape(ds *Dataset, f *Field) error {
	if len(f.Values) != len(ds.Levels) {
		return fmt.Errorf("variable %q has %d levels, grid has %d", f.Name, len(f.Values), len(ds.Levels))
	}
	for l, rows := range f.Values {
		if len(rows) != len(ds.Latitudes) {
			return fmt.Errorf("variable %q level %d has %d rows, grid has %d latitudes", f.Name, l, len(rows), len(ds.Latitudes))
		}
		for _, row := range rows {
			if len(row) != len(ds.Longitudes) {
				return fmt.Errorf("variable %q level %d has %d columns, grid has %d longitudes", f.Name, l, len(row), len(ds.Longitudes))
			}
		}
	}
	return nil
}

func hasNaN(f *Field) bool {
	for _, rows := range f.Values {
		for _, row := range rows {
			for _, v := range row {
				if math.IsNaN(v) {
					return true
				}
			}
		}
	}
	return false
}

func distinctCount(values []float64) int {
	seen := make(map[float64]struct{}, len(values))
	for _, v := range values {
		seen[v] = struct{}{}
	}
	return len(seen)
}
