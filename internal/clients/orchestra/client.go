package orchestra

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/Kirkidoo/Qualipieces/internal/clients"
	"github.com/Kirkidoo/Qualipieces/internal/models"
)

// Config holds the connection parameters for the Orchestra ERP.
type Config struct {
	IdentityURL  string
	BaseURL      string
	ClientID     string
	ClientSecret string
	Timeout      time.Duration
}

// ItemQuery contains the optional filters for the items endpoint. Zero-valued
// fields are omitted from the request.
type ItemQuery struct {
	Filter     string
	PageNumber int
	PageSize   int
}

// Client talks to the Orchestra ERP. It owns the bearer token lifecycle:
// the token is either absent or cached, and is only discarded when the items
// endpoint rejects it with a 401. There is no proactive expiry tracking.
//
// The cached token is mutated in place on re-authentication, which is safe
// under the bridge's sequential call pattern only. The client is not meant
// for concurrent use.
type Client struct {
	httpClient   *http.Client
	identityURL  string
	baseURL      string
	clientID     string
	clientSecret string
	rateLimiter  *rate.Limiter
	logger       *zap.Logger

	accessToken string
}

// NewClient creates a new Orchestra ERP client
func NewClient(cfg Config, logger *zap.Logger) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		httpClient:   &http.Client{Timeout: timeout},
		identityURL:  cfg.IdentityURL,
		baseURL:      strings.TrimRight(cfg.BaseURL, "/"),
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		rateLimiter:  rate.NewLimiter(rate.Limit(5), 1),
		logger:       logger,
	}
}

// Authenticate exchanges the client credentials for a bearer token and caches
// it for subsequent item fetches.
func (c *Client) Authenticate(ctx context.Context) error {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.identityURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("identity request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &clients.AuthenticationError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var token models.TokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("failed to parse token response: %w", err)
	}

	c.accessToken = token.AccessToken
	c.logger.Debug("authenticated against identity endpoint",
		zap.String("tokenType", token.TokenType),
		zap.Int("expiresIn", token.ExpiresIn))
	return nil
}

// FetchItems retrieves catalog items. The token is obtained lazily on first
// use; a 401 triggers exactly one re-authentication followed by one retry of
// the identical request. A second 401 propagates as a FetchError. The retry
// budget is per call, not per session.
func (c *Client) FetchItems(ctx context.Context, query ItemQuery) ([]models.CatalogItem, error) {
	if c.accessToken == "" {
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
	}

	items, statusCode, err := c.fetchItemsOnce(ctx, query)
	if statusCode == http.StatusUnauthorized {
		c.logger.Info("cached token rejected, re-authenticating once")
		if err := c.Authenticate(ctx); err != nil {
			return nil, err
		}
		items, _, err = c.fetchItemsOnce(ctx, query)
	}
	if err != nil {
		return nil, err
	}
	return items, nil
}

// fetchItemsOnce performs a single authenticated GET against the items
// endpoint. The item list is passed through unmodified.
func (c *Client) fetchItemsOnce(ctx context.Context, query ItemQuery) ([]models.CatalogItem, int, error) {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return nil, 0, err
	}

	params := url.Values{}
	if query.Filter != "" {
		params.Set("Filter", query.Filter)
	}
	if query.PageNumber > 0 {
		params.Set("PageNumber", strconv.Itoa(query.PageNumber))
	}
	if query.PageSize > 0 {
		params.Set("PageSize", strconv.Itoa(query.PageSize))
	}

	fullURL := c.baseURL + "/api/Items"
	if len(params) > 0 {
		fullURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("items request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, resp.StatusCode, &clients.FetchError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	var items []models.CatalogItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("failed to parse items response: %w", err)
	}
	return items, resp.StatusCode, nil
}
