package acquire

import (
	"context"
	"fmt"
	"path"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"

	"edrisobaric/internal/edrerr"
)

const gcsScheme = "gs://"

// parseGCSURL splits gs://bucket/path/to/object into bucket and object.
func parseGCSURL(url string) (string, string, error) {
	rest, ok := strings.CutPrefix(url, gcsScheme)
	if !ok {
		return "", "", fmt.Errorf("%q is not a %s URL", url, gcsScheme)
	}
	bucket, object, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" || strings.HasSuffix(object, "/") {
		return "", "", fmt.Errorf("%q does not name a bucket and an object", url)
	}
	return bucket, object, nil
}

// downloadGCS copies a GRIB object from Cloud Storage into the data path.
// Credentials come from the environment (gcloud auth or a service account).
func downloadGCS(ctx context.Context, opts Options, logger *zap.Logger) (string, error) {
	bucket, object, err := parseGCSURL(opts.APIURL)
	if err != nil {
		return "", &edrerr.AcquisitionError{File: opts.APIURL, Msg: "invalid storage URL", Err: err}
	}
	if opts.Time != "" {
		// Time selection is an API query parameter and has no storage equivalent.
		logger.Warn("Ignoring time for storage source", zap.String("time", opts.Time))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	client, err := storage.NewClient(ctx)
	if err != nil {
		return "", &edrerr.AcquisitionError{File: opts.APIURL, Msg: "fail to init GCS (check gcloud auth)", Err: err}
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn("Fail to close GCS client", zap.Error(err))
		}
	}()

	// Reads go through the context the reader was opened with, so the stall
	// timer covers opening the object as well.
	body := newStallReader(nil, opts.Timeout, cancel)
	defer body.Stop()
	reader, err := client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return "", &edrerr.AcquisitionError{File: opts.APIURL, Msg: "fail to open object", Err: err}
	}
	defer reader.Close()
	body.r = reader

	name := path.Base(object)
	logger.Warn("Downloading data file",
		zap.String("bucket", bucket),
		zap.String("object", object),
		zap.String("dir", opts.DataPath),
	)
	finalPath, err := store(opts.DataPath, name, body, logger)
	if err != nil {
		return "", &edrerr.AcquisitionError{File: name, Msg: "failed to save data file", Err: err}
	}
	logger.Info("Download done", zap.String("file", finalPath))
	return finalPath, nil
}
