package grib

import (
	"edrisobaric/internal/edrerr"
)

// InstanceFormat is the layout used to name the loaded instance.
const InstanceFormat = "2006-01-02T15:04:05Z"

// InstanceID returns the identifier of the single instance in the dataset.
func InstanceID(ds *Dataset) string {
	return ds.TemporalExtent().Format(InstanceFormat)
}

// InstanceIDs lists every valid instance identifier. There is always one.
func InstanceIDs(ds *Dataset) []string {
	return []string{InstanceID(ds)}
}

// CheckInstance rejects any identifier other than the loaded instance.
func CheckInstance(ds *Dataset, id string) error {
	valid := InstanceIDs(ds)
	for _, v := range valid {
		if v == id {
			return nil
		}
	}
	return &edrerr.InstanceError{Given: id, Valid: valid}
}
