// Package fetch retrieves one format variant of the dataset from the remote source.
package fetch

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"

	tonnageerrors "github.com/rearc-data/fred-truck-tonnage/errors"
	"github.com/rearc-data/fred-truck-tonnage/tonnagetypes"
)

const (
	// DefaultBaseURL is the FRED graph download endpoint the variant is appended to
	DefaultBaseURL = "https://fred.stlouisfed.org/graph/fredgraph"

	// DefaultSeriesID selects the truck tonnage index
	DefaultSeriesID = "TRUCKD11"

	userAgent = "fred-truck-tonnage"

	// maxDrain bounds how much of an error response is read before closing
	maxDrain = 64 * 1024
)

// Fetcher issues GET requests for dataset variants.
// It is safe for concurrent use.
type Fetcher struct {
	client   *http.Client
	baseURL  string
	seriesID string
}

// New creates a Fetcher. Empty baseURL or seriesID fall back to the defaults.
func New(client *http.Client, baseURL, seriesID string) *Fetcher {
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if seriesID == "" {
		seriesID = DefaultSeriesID
	}
	return &Fetcher{
		client:   client,
		baseURL:  baseURL,
		seriesID: seriesID,
	}
}

// URL returns the resource locator for variant: base URL, variant, then the
// series query.
func (f *Fetcher) URL(variant tonnagetypes.Variant) string {
	return f.baseURL + string(variant) + "?id=" + url.QueryEscape(f.seriesID)
}

// Open requests variant and returns the response body on a 2xx status.
// The caller must close the body.
//
// Failures are *errors.RetrievalError: RetrievalHTTP for a non-success status,
// RetrievalTransport when no response was received. Reading the returned body
// also reports a broken connection or an expired timeout as RetrievalTransport.
func (f *Fetcher) Open(ctx context.Context, variant tonnagetypes.Variant) (io.ReadCloser, error) {
	u := f.URL(variant)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, transportError(variant, u, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, transportError(variant, u, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxDrain))
		_ = resp.Body.Close()
		return nil, tonnageerrors.NewHTTPError(string(variant), u, resp.StatusCode)
	}

	return &body{ReadCloser: resp.Body, variant: variant, url: u}, nil
}

// body reports read failures as transport errors so callers can tell them
// apart from failures writing the content elsewhere.
type body struct {
	io.ReadCloser
	variant tonnagetypes.Variant
	url     string
}

func (b *body) Read(p []byte) (int, error) {
	n, err := b.ReadCloser.Read(p)
	if err != nil && !errors.Is(err, io.EOF) {
		return n, transportError(b.variant, b.url, err)
	}
	return n, err
}

// transportError reports the innermost cause as the reason; *url.Error
// repeats the method and URL, which the RetrievalError already carries.
func transportError(variant tonnagetypes.Variant, u string, err error) error {
	rerr := tonnageerrors.NewTransportError(string(variant), u, err)

	var urlErr *url.Error
	if errors.As(err, &urlErr) && urlErr.Err != nil {
		rerr.Reason = urlErr.Err.Error()
	}
	return rerr
}
