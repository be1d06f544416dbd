package webfetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"syscall"
	"time"
)

const (
	PageUserAgent  = "Mozilla/5.0 (compatible; ProductInfoBot/1.0; +http://example.com/bot)"
	ImageUserAgent = "Mozilla/5.0 (compatible; AdCreator/1.0)"

	defaultMaxBytes      = 2 << 20
	defaultMaxImageBytes = 20 << 20
)

var (
	ErrInvalidURL = errors.New("invalid URL provided")
	ErrBlockedURL = errors.New("URL denied: cannot fetch internal/private addresses")
	ErrTooLarge   = errors.New("response body exceeds size limit")
)

// StatusError is a non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("failed to fetch %s: %s", e.URL, e.Status)
}

func (e *StatusError) HTTPStatus() int { return e.StatusCode }

type Options struct {
	HTTPClient *http.Client
	Logger     *slog.Logger
	// BlockPrivate refuses page fetches that target loopback, private or
	// metadata addresses, and refuses to connect to any such address
	// whatever hostname or redirect led there.
	BlockPrivate bool
	// PreferIPv4 applies to the guarded dialer used with BlockPrivate.
	PreferIPv4 bool
	// MaxBytes caps page bodies, MaxImageBytes caps FetchBytes bodies.
	MaxBytes      int64
	MaxImageBytes int64
}

type Fetcher struct {
	httpClient   *http.Client
	logger       *slog.Logger
	blockPrivate bool
	maxBytes     int64
	maxImage     int64
}

func New(opts Options) *Fetcher {
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.BlockPrivate {
		// Redirects are checked too, for pages and images alike.
		guarded := *client
		guarded.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return errors.New("stopped after 10 redirects")
			}
			if isPrivateTarget(req.URL.String()) {
				return ErrBlockedURL
			}
			return nil
		}
		guarded.Transport = guardedTransport(client.Transport, opts.PreferIPv4)
		client = &guarded
	}
	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = defaultMaxBytes
	}
	maxImage := opts.MaxImageBytes
	if maxImage <= 0 {
		maxImage = defaultMaxImageBytes
	}

	return &Fetcher{
		httpClient:   client,
		logger:       logger,
		blockPrivate: opts.BlockPrivate,
		maxBytes:     maxBytes,
		maxImage:     maxImage,
	}
}

// NormalizeURL prefixes https:// when no http(s) scheme is given and rejects
// anything that does not parse into a URL with a host.
func NormalizeURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrInvalidURL
	}

	lower := strings.ToLower(raw)
	if !strings.HasPrefix(lower, "http://") && !strings.HasPrefix(lower, "https://") {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || u.Hostname() == "" || strings.ContainsAny(u.Host, " \t") {
		return "", fmt.Errorf("%w: %q", ErrInvalidURL, raw)
	}
	return u.String(), nil
}

// Fetch returns the raw HTML of a product page.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) (string, error) {
	target, err := NormalizeURL(rawURL)
	if err != nil {
		return "", err
	}
	if f.blockPrivate && isPrivateTarget(target) {
		return "", ErrBlockedURL
	}

	// Pages are excerpted anyway, so an oversized page is truncated.
	body, _, err := f.get(ctx, target, PageUserAgent, "text/html,application/xhtml+xml,text/plain,*/*", f.maxBytes, true)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// FetchBytes downloads a binary resource such as a reference image and
// reports its content type.
func (f *Fetcher) FetchBytes(ctx context.Context, rawURL string) ([]byte, string, error) {
	return f.get(ctx, rawURL, ImageUserAgent, "image/*,*/*", f.maxImage, false)
}

// get reads at most limit bytes. Larger bodies are cut when truncate is
// set and rejected with ErrTooLarge otherwise.
func (f *Fetcher) get(ctx context.Context, target, userAgent, accept string, limit int64, truncate bool) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", accept)

	start := time.Now()
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("fetch %s: %w", target, err)
	}
	defer resp.Body.Close()

	f.logger.Debug("fetch", "url", target, "status", resp.StatusCode, "dur_ms", time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, "", &StatusError{StatusCode: resp.StatusCode, Status: resp.Status, URL: target}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, limit+1))
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", target, err)
	}
	if int64(len(body)) > limit {
		if !truncate {
			return nil, "", fmt.Errorf("%w: %s is over %d bytes", ErrTooLarge, target, limit)
		}
		body = body[:limit]
	}

	contentType := strings.TrimSpace(resp.Header.Get("Content-Type"))
	if i := strings.IndexByte(contentType, ';'); i >= 0 {
		contentType = strings.TrimSpace(contentType[:i])
	}
	if contentType == "" || contentType == "application/octet-stream" {
		contentType = http.DetectContentType(body)
	}
	return body, contentType, nil
}

// guardedTransport clones base, or the default transport when base is not
// an *http.Transport, and checks every dialed address after DNS resolution.
func guardedTransport(base http.RoundTripper, preferIPv4 bool) *http.Transport {
	t, ok := base.(*http.Transport)
	if !ok {
		t = http.DefaultTransport.(*http.Transport)
	}
	t = t.Clone()

	dialer := &net.Dialer{
		Timeout:   15 * time.Second,
		KeepAlive: 30 * time.Second,
		Control:   denyPrivateDial,
	}
	t.DialContext = func(ctx context.Context, network, addr string) (net.Conn, error) {
		if preferIPv4 {
			network = "tcp4"
		}
		return dialer.DialContext(ctx, network, addr)
	}
	return t
}

// denyPrivateDial runs just before connect, with the resolved address.
func denyPrivateDial(network, address string, _ syscall.RawConn) error {
	host, _, err := net.SplitHostPort(address)
	if err != nil {
		return fmt.Errorf("%w: %s", ErrBlockedURL, address)
	}
	ip := net.ParseIP(host)
	if ip == nil || isPrivateIP(ip) {
		return fmt.Errorf("%w: %s", ErrBlockedURL, address)
	}
	return nil
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

func isPrivateTarget(rawURL string) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return true
	}

	host := strings.ToLower(parsed.Hostname())
	switch host {
	case "localhost", "metadata.google.internal", "metadata.google":
		return true
	}

	if ip := net.ParseIP(host); ip != nil {
		return isPrivateIP(ip)
	}
	return false
}
