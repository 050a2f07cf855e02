package main

import (
	"fmt"
	"net"
	"time"

	"edrisobaric/internal/acquire"
	"edrisobaric/internal/covjson"
)

// ListenAddress returns host:port for the HTTP server.
func (c Config) ListenAddress() string {
	return net.JoinHostPort(c.Server.BindHost, c.Server.Port)
}

// DownloadTimeout parses dataset.download_timeout.
func (c Config) DownloadTimeout() (time.Duration, error) {
	if c.Dataset.DownloadTimeout == "" {
		return acquire.DefaultTimeout, nil
	}
	d, err := time.ParseDuration(c.Dataset.DownloadTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid dataset.download_timeout %q: %w", c.Dataset.DownloadTimeout, err)
	}
	return d, nil
}

// AcquireOptions returns the dataset selection for startup.
func (c Config) AcquireOptions() acquire.Options {
	timeout, err := c.DownloadTimeout()
	if err != nil {
		timeout = acquire.DefaultTimeout
	}
	return acquire.Options{
		File:         c.Dataset.File,
		Time:         c.Dataset.Time,
		APIURL:       c.Dataset.APIURL,
		AvailableURL: c.Dataset.AvailableURL,
		DataPath:     c.Dataset.DataPath,
		Timeout:      timeout,
	}
}

// CoverageOptions returns how position responses are shaped.
func (c Config) CoverageOptions() (covjson.Options, error) {
	shape, err := covjson.ParseShape(c.Response.Shape)
	if err != nil {
		return covjson.Options{}, err
	}
	unit, err := covjson.ParseTemperatureUnit(c.Response.TemperatureUnit)
	if err != nil {
		return covjson.Options{}, err
	}
	return covjson.Options{ID: c.Collection.ID, Shape: shape, TemperatureUnit: unit}, nil
}

// CollectionURL returns the URL of the collection, with a trailing slash.
func (c Config) CollectionURL() string {
	return c.Server.BaseURL + "collections/" + c.Collection.ID + "/"
}

// InstanceURL returns the URL of one instance, with a trailing slash.
func (c Config) InstanceURL(id string) string {
	return c.CollectionURL() + "instances/" + id + "/"
}
