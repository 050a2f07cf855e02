package acquire

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"edrisobaric/internal/edrerr"
)

func downloadHTTP(ctx context.Context, opts Options, logger *zap.Logger) (string, error) {
	url := DownloadURL(opts.APIURL, opts.Time)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return "", &edrerr.AcquisitionError{File: url, Msg: "failed to create download request", Err: err}
	}
	resp, err := newHTTPClient(opts.Timeout).Do(req)
	if err != nil {
		return "", &edrerr.AcquisitionError{File: url, Msg: "unable to download data file", Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg := fmt.Sprintf("unable to download data file. Status code %d", resp.StatusCode)
		if opts.Time != "" {
			available := opts.AvailableURL
			if available == "" {
				available = DefaultAvailableURL
			}
			msg += fmt.Sprintf(". Check if time %s exists in available data set at <%s>", opts.Time, available)
		}
		return "", &edrerr.AcquisitionError{File: url, Msg: msg}
	}

	name, err := filenameFrom(resp.Header.Get("Content-Disposition"))
	if err != nil {
		return "", &edrerr.AcquisitionError{File: url, Msg: "no usable file name in response", Err: err}
	}

	logger.Warn("Downloading data file",
		zap.String("url", url),
		zap.String("dir", opts.DataPath),
		zap.String("file", name),
	)
	body := newStallReader(resp.Body, opts.Timeout, cancel)
	defer body.Stop()
	path, err := store(opts.DataPath, name, body, logger)
	if err != nil {
		return "", &edrerr.AcquisitionError{File: name, Msg: "failed to save data file", Err: err}
	}
	logger.Info("Download done", zap.String("file", path))
	return path, nil
}

// newHTTPClient bounds connecting and waiting for the response headers by
// timeout. The body is bounded per read by a stallReader, so a large file on a
// slow link still completes.
func newHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Transport: &http.Transport{
			Proxy:                 http.ProxyFromEnvironment,
			DialContext:           (&net.Dialer{Timeout: timeout}).DialContext,
			TLSHandshakeTimeout:   timeout,
			ResponseHeaderTimeout: timeout,
		},
	}
}

// stallReader cancels the transfer when no data arrives for timeout.
type stallReader struct {
	r       io.Reader
	timeout time.Duration
	timer   *time.Timer
}

func newStallReader(r io.Reader, timeout time.Duration, cancel context.CancelFunc) *stallReader {
	return &stallReader{r: r, timeout: timeout, timer: time.AfterFunc(timeout, cancel)}
}

func (s *stallReader) Read(p []byte) (int, error) {
	n, err := s.r.Read(p)
	if n > 0 {
		s.timer.Reset(s.timeout)
	}
	return n, err
}

// Stop releases the timer.
func (s *stallReader) Stop() {
	s.timer.Stop()
}

// filenameFrom extracts the file name from a Content-Disposition header. Any
// directory part is discarded. Headers mime rejects, such as an unquoted name
// containing ':', fall back to the text after "filename=".
func filenameFrom(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("missing Content-Disposition header")
	}
	var raw string
	if _, params, err := mime.ParseMediaType(header); err == nil {
		raw = params["filename"]
	} else if _, rest, ok := strings.Cut(header, "filename="); ok {
		rest, _, _ = strings.Cut(rest, ";")
		raw = strings.TrimSpace(strings.ReplaceAll(rest, `"`, ""))
	} else {
		return "", fmt.Errorf("invalid Content-Disposition header %q: %w", header, err)
	}
	name := filepath.Base(filepath.Clean("/" + raw))
	if name == "/" || name == "." || name == "" {
		return "", fmt.Errorf("no filename in Content-Disposition header %q", header)
	}
	return name, nil
}
