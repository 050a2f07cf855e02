package grib

import (
	"context"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"edrisobaric/internal/edrerr"
)

// Decoder turns a data file into a Dataset.
type Decoder interface {
	Decode(ctx context.Context, path string) (*Dataset, error)
}

// DecoderFor picks the decoder matching the file's extension. NetCDF files
// are read natively, everything else goes through ecCodes.
func DecoderFor(path string, logger *zap.Logger) Decoder {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".nc", ".nc4", ".netcdf":
		return NewNetCDFDecoder()
	default:
		return NewEccodesDecoder(logger)
	}
}

// Open decodes and validates the file at path.
func Open(ctx context.Context, path string, logger *zap.Logger) (*Dataset, error) {
	return OpenWith(ctx, DecoderFor(path, logger), path, logger)
}

// OpenWith decodes the file with the given decoder, then validates it.
func OpenWith(ctx context.Context, dec Decoder, path string, logger *zap.Logger) (*Dataset, error) {
	logger.Info("Opening data file", zap.String("file", path))
	ds, err := dec.Decode(ctx, path)
	if err != nil {
		return nil, &edrerr.AcquisitionError{
			File: path,
			Msg:  "unable to decode file, check installation of ecCodes",
			Err:  err,
		}
	}
	if !Validate(ds, logger) {
		return nil, &edrerr.AcquisitionError{
			File: path,
			Msg:  "file failed validation",
			Err:  Check(ds),
		}
	}
	logger.Sugar().Infow("Dataset loaded", ds.Summary()...)
	return ds, nil
}
