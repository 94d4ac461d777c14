// Package culler checks the links of a folder listing for dead targets.
package culler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/nikbrunner/bmr/internal/model"
)

// Status represents the health status of a URL.
type Status int

const (
	Healthy     Status = iota // 2xx or 3xx response
	Dead                      // 404 or 410 Gone
	Unreachable               // timeout, DNS failure, connection refused, etc.
)

func (s Status) String() string {
	switch s {
	case Healthy:
		return "ok"
	case Dead:
		return "dead"
	default:
		return "unreachable"
	}
}

// Result holds the check result for a single bookmark.
type Result struct {
	Bookmark   model.Bookmark
	Status     Status
	StatusCode int    // 0 if the connection failed
	Error      string // reason for unreachable URLs
}

// ProgressFunc is called after each URL is checked.
type ProgressFunc func(completed, total int)

// Params configures a check run.
type Params struct {
	Concurrency    int
	Timeout        time.Duration
	ExcludeDomains []string // 404s on these hosts count as possibly private
	OnProgress     ProgressFunc
	HTTPClient     *http.Client
}

// Check tests the URL of every node in items; folders are skipped. Results
// are returned in listing order. Cancelling ctx stops pending checks and
// returns the context error.
func Check(ctx context.Context, items model.Listing, params Params) ([]Result, error) {
	var nodes model.Listing
	for _, b := range items {
		if !b.IsFolder() && b.URL != "" {
			nodes = append(nodes, b)
		}
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	// Suppress noisy HTTP client logging (protocol errors, unsolicited responses, etc.)
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	excludeMap := make(map[string]bool)
	for _, domain := range params.ExcludeDomains {
		excludeMap[strings.ToLower(domain)] = true
	}

	client := params.HTTPClient
	if client == nil {
		client = newClient(params.Timeout)
	}
	concurrency := params.Concurrency
	if concurrency <= 0 {
		concurrency = 10
	}

	results := make([]Result, len(nodes))
	var progressMu sync.Mutex
	completed := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(concurrency)
	for i := range nodes {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			results[i] = checkURL(gctx, client, nodes[i], excludeMap)
			if params.OnProgress != nil {
				progressMu.Lock()
				completed++
				params.OnProgress(completed, len(nodes))
				progressMu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

func newClient(timeout time.Duration) *http.Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &http.Client{
		Timeout: timeout,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) >= 10 {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}
}

func checkURL(ctx context.Context, client *http.Client, bookmark model.Bookmark, excludeMap map[string]bool) Result {
	result := Result{Bookmark: bookmark}

	// HEAD first, GET for servers that don't support it
	resp, err := request(ctx, client, http.MethodHead, bookmark.URL)
	if err != nil && !errors.Is(err, context.Canceled) {
		resp, err = request(ctx, client, http.MethodGet, bookmark.URL)
	}
	if err != nil {
		result.Status = Unreachable
		result.Error = normalizeError(err.Error())
		return result
	}
	defer resp.Body.Close()

	result.StatusCode = resp.StatusCode

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 400:
		result.Status = Healthy
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		if isExcludedDomain(bookmark.URL, excludeMap) {
			result.Status = Unreachable
			result.Error = "Possibly private (auth required)"
		} else {
			result.Status = Dead
		}
	default:
		// 5xx, 403 and friends may be temporary or need a login
		result.Status = Unreachable
		result.Error = http.StatusText(resp.StatusCode)
	}

	return result
}

func request(ctx context.Context, client *http.Client, method, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return client.Do(req)
}

// isExcludedDomain checks if the URL's host is an excluded domain or one of
// its subdomains.
func isExcludedDomain(rawURL string, excludeMap map[string]bool) bool {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	host := strings.ToLower(parsed.Hostname())
	if excludeMap[host] {
		return true
	}
	for domain := range excludeMap {
		if strings.HasSuffix(host, "."+domain) {
			return true
		}
	}
	return false
}

// normalizeError simplifies verbose error messages into readable categories.
func normalizeError(errStr string) string {
	lower := strings.ToLower(errStr)

	switch {
	case strings.Contains(lower, "no such host"):
		return "DNS failure"
	case strings.Contains(lower, "context deadline exceeded"),
		strings.Contains(lower, "timeout"):
		return "Timeout"
	case strings.Contains(lower, "connection refused"):
		return "Connection refused"
	case strings.Contains(lower, "certificate"):
		return "TLS/certificate error"
	case strings.Contains(lower, "network is unreachable"):
		return "Network unreachable"
	case strings.Contains(lower, "tls:"):
		return "TLS error"
	default:
		return errStr
	}
}
