// Package acquire resolves which data file the service loads: a local file,
// or a download from the forecast API selected by time.
package acquire

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"edrisobaric/internal/edrerr"
)

// Defaults for the met.no isobaric GRIB API.
const (
	DefaultAPIURL       = "https://api.met.no/weatherapi/isobaricgrib/1.0/grib2?area=southern_norway"
	DefaultAvailableURL = "https://api.met.no/weatherapi/isobaricgrib/1.0/available.json?type=grib2"
	DefaultDataPath     = "./data"
	DefaultTimeout      = 30 * time.Second
)

// TimeLayout is the accepted form of the --time option, e.g.
// 2024-01-24T18:00:00Z.
const TimeLayout = "2006-01-02T15:04:05Z"

// ProductionInterval is the spacing of forecast runs on the API.
const ProductionInterval = 3

// Options selects the data file.
type Options struct {
	File         string
	Time         string
	APIURL       string
	AvailableURL string
	DataPath     string
	Timeout      time.Duration
}

// CheckOptions validates the options without touching disk or network.
func CheckOptions(opts Options) error {
	if opts.File != "" && opts.Time != "" {
		return &edrerr.ConfigurationError{Msg: "options --file and --time are mutually exclusive"}
	}
	if opts.Time != "" {
		if err := ValidateTime(opts.Time); err != nil {
			return err
		}
	}
	return nil
}

// ValidateTime checks that t names a whole hour on a production boundary.
func ValidateTime(t string) error {
	parsed, err := time.Parse(TimeLayout, t)
	if err != nil || parsed.Minute() != 0 || parsed.Second() != 0 {
		return &edrerr.ValidationError{
			Loc:   []string{"option", "time"},
			Msg:   "time must be on format 2024-01-24T18:00:00Z",
			Type:  "value_error",
			Input: t,
		}
	}
	if parsed.Hour()%ProductionInterval != 0 {
		return &edrerr.ValidationError{
			Loc:   []string{"option", "time"},
			Msg:   "time must be a whole 3 hour interval (00, 03, 06, 09, 12, 15, 18, 21)",
			Type:  "value_error",
			Input: t,
		}
	}
	return nil
}

// Acquire returns the path of the file to load, downloading it when no local
// file is given. Every error is fatal to the caller.
func Acquire(ctx context.Context, opts Options, logger *zap.Logger) (string, error) {
	if err := CheckOptions(opts); err != nil {
		return "", err
	}

	if opts.File != "" {
		if _, err := os.Stat(opts.File); err != nil {
			return "", &edrerr.AcquisitionError{File: opts.File, Msg: "data file not readable", Err: err}
		}
		logger.Info("Using local data file", zap.String("file", opts.File))
		return opts.File, nil
	}

	if opts.APIURL == "" {
		opts.APIURL = DefaultAPIURL
	}
	if opts.DataPath == "" {
		opts.DataPath = DefaultDataPath
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}

	if strings.HasPrefix(opts.APIURL, gcsScheme) {
		return downloadGCS(ctx, opts, logger)
	}
	return downloadHTTP(ctx, opts, logger)
}

// DownloadURL appends the time selector to the API URL.
func DownloadURL(apiURL, t string) string {
	if t == "" {
		return apiURL
	}
	sep := "?"
	if strings.Contains(apiURL, "?") {
		sep = "&"
	}
	return fmt.Sprintf("%s%stime=%s", apiURL, sep, t)
}
