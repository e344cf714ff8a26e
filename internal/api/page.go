package api

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/net/publicsuffix"

	"github.com/thesavant42/formkeeper/internal/dom"
)

const (
	defaultTimeout   = 30 * time.Second
	defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
	maxPageBytes     = 10 << 20 // 10 MiB
	maxRedirects     = 10
)

// ErrPageTooLarge is returned for pages over the 10 MiB read limit
var ErrPageTooLarge = errors.New("page exceeds 10 MiB")

// FramePolicy decides which remote frames count as readable
type FramePolicy string

const (
	// PolicySameOrigin reads frames whose scheme, host and port match the parent
	PolicySameOrigin FramePolicy = "same-origin"
	// PolicySameSite reads frames whose registrable domain matches the parent
	PolicySameSite FramePolicy = "same-site"
	// PolicyNone never fetches remote frames
	PolicyNone FramePolicy = "none"
)

// ParseFramePolicy validates a policy name. Empty means same-origin.
func ParseFramePolicy(s string) (FramePolicy, error) {
	switch p := FramePolicy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicySameOrigin, nil
	case PolicySameOrigin, PolicySameSite, PolicyNone:
		return p, nil
	}
	return "", fmt.Errorf("unknown frame policy %q (want same-origin, same-site or none)", s)
}

// PageOptions configures a PageClient
type PageOptions struct {
	UserAgent string
	Timeout   time.Duration
	Policy    FramePolicy
}

// PageClient fetches pages and their frames over HTTP
type PageClient struct {
	httpClient *http.Client
	logger     *log.Logger
	userAgent  string
	policy     FramePolicy
}

// NewPageClient creates a page client; zero options fall back to defaults
func NewPageClient(logger *log.Logger, opts PageOptions) *PageClient {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.Policy == "" {
		opts.Policy = PolicySameOrigin
	}
	return &PageClient{
		httpClient: &http.Client{Timeout: opts.Timeout},
		logger:     logger,
		userAgent:  opts.UserAgent,
		policy:     opts.Policy,
	}
}

// Policy returns the frame policy in use
func (c *PageClient) Policy() FramePolicy {
	return c.policy
}

// IsRemote reports whether target is an http(s) URL rather than a file path
func IsRemote(target string) bool {
	lower := strings.ToLower(strings.TrimSpace(target))
	return strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://")
}

// OpenPage parses target, a local path or http(s) URL, and resolves its frames
func (c *PageClient) OpenPage(ctx context.Context, target string, maxDepth int) (*dom.Document, error) {
	var doc *dom.Document
	var err error
	if IsRemote(target) {
		doc, err = c.FetchDocument(ctx, target)
	} else {
		doc, err = dom.ParseFile(target)
	}
	if err != nil {
		return nil, err
	}

	if err := dom.ResolveFrames(ctx, doc, c, dom.ResolveOptions{MaxDepth: maxDepth, Logger: c.logger}); err != nil {
		return nil, fmt.Errorf("failed to resolve frames: %w", err)
	}
	return doc, nil
}

// FetchDocument downloads and parses an HTML page. The final URL after
// redirects becomes the document's base URL.
func (c *PageClient) FetchDocument(ctx context.Context, rawURL string) (*dom.Document, error) {
	return c.fetch(ctx, rawURL, nil)
}

// fetch downloads and parses rawURL. When allow is set, every redirect hop
// must pass it or the fetch fails with dom.ErrInaccessible.
func (c *PageClient) fetch(ctx context.Context, rawURL string, allow func(*url.URL) bool) (*dom.Document, error) {
	client := c.httpClient
	if allow != nil {
		restricted := *c.httpClient
		restricted.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			if len(via) >= maxRedirects {
				return fmt.Errorf("stopped after %d redirects", maxRedirects)
			}
			if !allow(req.URL) {
				return fmt.Errorf("%w: redirect to %s is outside the %s policy", dom.ErrInaccessible, req.URL.Redacted(), c.policy)
			}
			return nil
		}
		client = &restricted
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	// Set headers emulating a real browser
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")
	req.Header.Set("Accept-Encoding", "gzip")

	if c.logger != nil {
		c.logger.Debug("Fetching page", "url", rawURL)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s returned status %d", rawURL, resp.StatusCode)
	}

	contentType := strings.ToLower(resp.Header.Get("Content-Type"))
	if contentType != "" && !strings.Contains(contentType, "html") {
		return nil, fmt.Errorf("%s is not an HTML page (content type %q)", rawURL, contentType)
	}

	// Handle gzip-compressed responses
	var reader io.Reader = resp.Body
	if strings.Contains(strings.ToLower(resp.Header.Get("Content-Encoding")), "gzip") {
		gzReader, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer gzReader.Close()
		reader = gzReader
	}

	body, err := io.ReadAll(io.LimitReader(reader, maxPageBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", rawURL, err)
	}
	if len(body) > maxPageBytes {
		return nil, fmt.Errorf("%s: %w", rawURL, ErrPageTooLarge)
	}

	return dom.Parse(bytes.NewReader(body), resp.Request.URL)
}

// LoadFrame implements dom.FrameLoader. Frames of local pages are read from
// disk; remote frames are fetched when the policy allows them.
func (c *PageClient) LoadFrame(ctx context.Context, parent *dom.Document, src string) (*dom.Document, error) {
	if parent == nil || parent.URL == nil || parent.URL.Scheme == "file" {
		return dom.FileLoader{}.LoadFrame(ctx, parent, src)
	}

	ref, err := url.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("%w: invalid src %q", dom.ErrInaccessible, src)
	}
	target := parent.URL.ResolveReference(ref)

	if !c.Allowed(parent.URL, target) {
		return nil, fmt.Errorf("%w: %s is outside the %s policy", dom.ErrInaccessible, target.Redacted(), c.policy)
	}
	return c.fetch(ctx, target.String(), func(hop *url.URL) bool {
		return c.Allowed(parent.URL, hop)
	})
}

// Allowed reports whether a frame at target may be read from a page at parent
func (c *PageClient) Allowed(parent, target *url.URL) bool {
	if target.Scheme != "http" && target.Scheme != "https" {
		return false
	}
	switch c.policy {
	case PolicySameOrigin:
		return SameOrigin(parent, target)
	case PolicySameSite:
		return SameSite(parent, target)
	}
	return false
}

// SameOrigin compares scheme, host and effective port
func SameOrigin(a, b *url.URL) bool {
	return strings.EqualFold(a.Scheme, b.Scheme) &&
		strings.EqualFold(a.Hostname(), b.Hostname()) &&
		effectivePort(a) == effectivePort(b)
}

// SameSite compares registrable domains; hosts without one (IPs, localhost)
// must match exactly.
func SameSite(a, b *url.URL) bool {
	if net.ParseIP(a.Hostname()) != nil || net.ParseIP(b.Hostname()) != nil {
		return strings.EqualFold(a.Hostname(), b.Hostname())
	}
	ra, errA := RegistrableDomain(a.Hostname())
	rb, errB := RegistrableDomain(b.Hostname())
	if errA != nil || errB != nil {
		return strings.EqualFold(a.Hostname(), b.Hostname())
	}
	return ra == rb
}

// RegistrableDomain extracts the registrable domain from a URL or hostname.
// Uses publicsuffix to handle complex TLDs like .co.uk
// Examples:
//   - "https://playground.bfl.ai/" -> "bfl.ai"
//   - "test1.dev.pci.westcoast.acme.com" -> "acme.com"
func RegistrableDomain(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return "", fmt.Errorf("empty input")
	}

	if strings.Contains(input, "://") {
		parsed, err := url.Parse(input)
		if err != nil {
			return "", fmt.Errorf("invalid URL: %w", err)
		}
		input = parsed.Hostname()
	}

	input = strings.ToLower(strings.TrimSuffix(input, "."))

	domain, err := publicsuffix.EffectiveTLDPlusOne(input)
	if err != nil {
		return "", fmt.Errorf("failed to extract registrable domain: %w", err)
	}
	return domain, nil
}

func effectivePort(u *url.URL) string {
	if p := u.Port(); p != "" {
		return p
	}
	switch strings.ToLower(u.Scheme) {
	case "https":
		return "443"
	case "http":
		return "80"
	}
	return ""
}
