// Package microsoft signs a user in with the Microsoft device-code flow and
// exchanges the result through Xbox Live and XSTS for a Minecraft access
// token and player profile.
package microsoft

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/PiotrWarzachowski/blue-launcher/internal/config"
	"github.com/PiotrWarzachowski/blue-launcher/internal/logging"
)

const (
	xboxLiveRelyingParty = "http://auth.xboxlive.com"
	xboxLiveSiteName     = "user.auth.xboxlive.com"
	xstsRelyingParty     = "rp://api.minecraftservices.com/"
	xstsSandbox          = "RETAIL"
	deviceCodeGrantType  = "urn:ietf:params:oauth:grant-type:device_code"
	userAgent            = "blue-launcher/0.1"
)

type Client struct {
	httpClient *http.Client
	clientID   string
	scope      string
	endpoints  config.Endpoints
	logger     *zap.Logger

	now func() time.Time
}

func NewClient(cfg *config.Config, httpClient *http.Client, logger *zap.Logger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.HTTPTimeout}
	}
	scope := cfg.Scope
	if scope == "" {
		scope = config.Default("").Scope
	}
	return &Client{
		httpClient: httpClient,
		clientID:   cfg.ClientID,
		scope:      scope,
		endpoints:  cfg.Endpoints,
		logger:     logging.OrNop(logger),
		now:        time.Now,
	}
}

// response is a fully read HTTP response. Bodies are small JSON documents.
type response struct {
	StatusCode int
	Body       []byte
}

func (r *response) decode(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("failed to parse response (status %d): %w", r.StatusCode, err)
	}
	return nil
}

func (c *Client) postForm(ctx context.Context, endpoint string, form url.Values) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")
	return c.do(req)
}

func (c *Client) postJSON(ctx context.Context, endpoint string, body any, bearer string) (*response, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return c.do(req)
}

func (c *Client) getJSON(ctx context.Context, endpoint, bearer string) (*response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+bearer)
	return c.do(req)
}

func (c *Client) do(req *http.Request) (*response, error) {
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", req.URL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response from %s: %w", req.URL.Host, err)
	}

	c.logger.Debug("auth response",
		zap.String("method", req.Method),
		zap.String("url", req.URL.Redacted()),
		zap.Int("status", resp.StatusCode),
	)

	return &response{StatusCode: resp.StatusCode, Body: body}, nil
}
