// Package api is the HTTP client for the bookmarks, core and MyDMS REST
// backends.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/nikbrunner/bmr/internal/apperr"
	"github.com/nikbrunner/bmr/internal/event"
	"github.com/nikbrunner/bmr/internal/model"
)

const (
	// DefaultTimeout is the ceiling for ordinary requests.
	DefaultTimeout = 1 * time.Minute
	// LongRunningTimeout is the ceiling for uploads.
	LongRunningTimeout = 10 * time.Minute

	bookmarksPrefix = "/api/v1/bookmarks"
	corePrefix      = "/api/v1/core"
	sitesPrefix     = "/api/v1/sites"
	mydmsPrefix     = "/api/v1"
)

// ClientParams configures a Client. Only BaseURL is required; CoreURL and
// MydmsURL default to it.
type ClientParams struct {
	BaseURL     string
	CoreURL     string
	MydmsURL    string
	Token       string
	Timeout     time.Duration
	LongTimeout time.Duration
	HTTPClient  *http.Client
	Bus         *event.Bus
	Logger      *zap.Logger
}

// Client talks to the REST backends.
type Client struct {
	bookmarksURL string
	coreURL      string
	sitesURL     string
	mydmsURL     string
	token        string
	timeout      time.Duration
	longTimeout  time.Duration
	httpClient   *http.Client
	bus          *event.Bus
	logger       *zap.Logger
}

// NewClient creates a new API client.
func NewClient(params ClientParams) *Client {
	base := strings.TrimSuffix(params.BaseURL, "/")
	core := strings.TrimSuffix(params.CoreURL, "/")
	if core == "" {
		core = base
	}
	mydms := strings.TrimSuffix(params.MydmsURL, "/")
	if mydms == "" {
		mydms = base
	}

	c := &Client{
		bookmarksURL: base + bookmarksPrefix,
		coreURL:      core + corePrefix,
		sitesURL:     core + sitesPrefix,
		mydmsURL:     mydms + mydmsPrefix,
		token:        params.Token,
		timeout:      params.Timeout,
		longTimeout:  params.LongTimeout,
		httpClient:   params.HTTPClient,
		bus:          params.Bus,
		logger:       params.Logger,
	}
	if c.timeout <= 0 {
		c.timeout = DefaultTimeout
	}
	if c.longTimeout <= 0 {
		c.longTimeout = LongRunningTimeout
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// request describes one call.
type request struct {
	method      string
	url         string
	body        any
	rawBody     io.Reader
	contentType string
	long        bool
}

// do sends req and decodes a 2xx JSON response into out. Non-2xx responses
// become *apperr.Error, transport failures are classified by
// apperr.FromTransport.
func (c *Client) do(ctx context.Context, req request, out any) error {
	ceiling := c.timeout
	if req.long {
		ceiling = c.longTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, ceiling)
	defer cancel()

	c.bus.Busy(true)
	defer c.bus.Busy(false)

	body := req.rawBody
	contentType := req.contentType
	if req.body != nil {
		data, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
		contentType = "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, req.url, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Cache-Control", "no-cache")
	httpReq.Header.Set("Pragma", "no-cache")
	httpReq.Header.Set("X-Request-ID", model.GenerateUUID())
	if c.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("request failed",
			zap.String("method", req.method),
			zap.String("url", req.url),
			zap.Error(err))
		return apperr.FromTransport(err)
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperr.FromTransport(fmt.Errorf("read response: %w", err))
	}

	c.logger.Debug("request",
		zap.String("method", req.method),
		zap.String("url", req.url),
		zap.Int("status", resp.StatusCode),
		zap.Duration("took", time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apperr.FromResponse(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &apperr.Error{
			Kind:    apperr.KindBackend,
			Status:  resp.StatusCode,
			Message: "invalid response",
			Err:     err,
		}
	}
	return nil
}
