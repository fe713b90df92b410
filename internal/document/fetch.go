package document

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds one download.
	DefaultTimeout = 60 * time.Second

	// DefaultRate is how many downloads per second a Fetcher starts.
	DefaultRate = 2.0

	// DefaultUserAgent identifies the fetcher to document servers.
	DefaultUserAgent = "refextract"
)

// Fetcher downloads documents, at most a few per second so that a batch
// of URLs does not hammer one server.
type Fetcher struct {
	httpClient *http.Client
	limiter    *rate.Limiter
	userAgent  string
	maxPages   int
	log        *zap.Logger
}

// FetcherOption configures a Fetcher.
type FetcherOption func(*Fetcher)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(hc *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = hc
	}
}

// WithRateLimit sets the number of downloads started per second. A
// non-positive rate disables limiting.
func WithRateLimit(perSecond float64) FetcherOption {
	return func(f *Fetcher) {
		if perSecond <= 0 {
			f.limiter = rate.NewLimiter(rate.Inf, 1)
			return
		}
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) FetcherOption {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxPages limits how many PDF pages are converted.
func WithMaxPages(n int) FetcherOption {
	return func(f *Fetcher) {
		f.maxPages = n
	}
}

// WithFetchLogger sets the logger.
func WithFetchLogger(l *zap.Logger) FetcherOption {
	return func(f *Fetcher) {
		f.log = l
	}
}

// NewFetcher creates a Fetcher.
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		httpClient: &http.Client{Timeout: DefaultTimeout},
		limiter:    rate.NewLimiter(rate.Limit(DefaultRate), 1),
		userAgent:  DefaultUserAgent,
		log:        zap.NewNop(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Body downloads url to a temporary file and returns its lines as Body
// does. Non-2xx responses return ErrFullTextNotAvailable.
func (f *Fetcher) Body(ctx context.Context, url string) ([]string, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFullTextNotAvailable, err)
	}
	if f.userAgent != "" {
		req.Header.Set("User-Agent", f.userAgent)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFullTextNotAvailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("%w: URL not found: %q (status %d)", ErrFullTextNotAvailable, url, resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "refextract-*"+tempSuffix(req.URL.Path))
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("%w: downloading %q: %v", ErrFullTextNotAvailable, url, err)
	}
	f.log.Debug("downloaded document", zap.String("url", url), zap.Int64("bytes", n))

	return Body(tmp.Name(), f.maxPages)
}

// tempSuffix keeps the downloaded file's name recognisable.
func tempSuffix(urlPath string) string {
	base := path.Base(urlPath)
	if base == "." || strings.ContainsAny(base, `/\`) {
		return ""
	}
	return "_" + base
}
