// Package api is the client for the PerFit avatar and try-on service.
package api

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

	"github.com/Marlvin12/perfit/internal/types"
	"golang.org/x/time/rate"
)

// DefaultBaseURL is the production API endpoint
const DefaultBaseURL = "https://api.perfit.ai/v1"

// Job deadlines
const (
	AvatarGenerationTimeout = 60 * time.Second
	TryOnTimeout            = 30 * time.Second
)

// TokenSource yields the bearer token for outgoing requests.
// An empty token means the request is sent unauthenticated.
type TokenSource interface {
	AuthToken(ctx context.Context) (string, error)
}

// Options configures a Client
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second, 0 disables limiting
	Burst     int
}

// Client talks to the PerFit API
type Client struct {
	httpClient  *http.Client
	baseURL     string
	tokens      TokenSource
	rateLimiter *rate.Limiter
	logger      types.Logger
}

// NewClient creates a new API client
func NewClient(opts Options, tokens TokenSource, logger types.Logger) *Client {
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL:     baseURL,
		tokens:      tokens,
		rateLimiter: limiter,
		logger:      logger,
	}
}

// AuthResponse is returned by login and registration
type AuthResponse struct {
	User         types.User `json:"user"`
	Token        string     `json:"token"`
	RefreshToken string     `json:"refreshToken"`
}

// Login signs in with email and password
func (c *Client) Login(ctx context.Context, email, password string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password}
	if err := c.do(ctx, http.MethodPost, "/auth/login", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account
func (c *Client) Register(ctx context.Context, email, password, name string) (*AuthResponse, error) {
	var resp AuthResponse
	body := map[string]string{"email": email, "password": password, "name": name}
	if err := c.do(ctx, http.MethodPost, "/auth/register", body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetAvatar fetches an avatar. Any failure yields a nil avatar and no error.
func (c *Client) GetAvatar(ctx context.Context, id string) *types.Avatar {
	var avatar types.Avatar
	if err := c.do(ctx, http.MethodGet, "/avatar/"+url.PathEscape(id), nil, &avatar); err != nil {
		c.logger.Debugf("Avatar %s unavailable: %v", id, err)
		return nil
	}
	return &avatar
}

// CreateAvatar starts avatar generation from a base64 photo and measurements
func (c *Client) CreateAvatar(ctx context.Context, photo string, measurements types.Measurements) (*types.Avatar, error) {
	var avatar types.Avatar
	body := struct {
		Photo        string             `json:"photo"`
		Measurements types.Measurements `json:"measurements"`
	}{photo, measurements}
	if err := c.do(ctx, http.MethodPost, "/avatar/create", body, &avatar); err != nil {
		return nil, err
	}
	return &avatar, nil
}

// AvatarStatus polls the generation state of an avatar
func (c *Client) AvatarStatus(ctx context.Context, id string) (*types.Avatar, error) {
	var avatar types.Avatar
	if err := c.do(ctx, http.MethodGet, "/avatar/"+url.PathEscape(id)+"/status", nil, &avatar); err != nil {
		return nil, err
	}
	return &avatar, nil
}

// TryOn renders a product on an avatar
func (c *Client) TryOn(ctx context.Context, req types.TryOnRequest) (*types.TryOnResult, error) {
	var result types.TryOnResult
	if err := c.do(ctx, http.MethodPost, "/try-on", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// TryOnStatus polls a try-on job
func (c *Client) TryOnStatus(ctx context.Context, jobID string) (*types.TryOnResult, error) {
	var result types.TryOnResult
	if err := c.do(ctx, http.MethodGet, "/try-on/"+url.PathEscape(jobID)+"/status", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SizeRecommendation asks which size of a brand's product fits an avatar
func (c *Client) SizeRecommendation(ctx context.Context, avatarID, productID, brand string) (*types.SizeSuggestion, error) {
	var suggestion types.SizeSuggestion
	body := map[string]string{"avatarId": avatarID, "productId": productID, "brand": brand}
	if err := c.do(ctx, http.MethodPost, "/recommend/size", body, &suggestion); err != nil {
		return nil, err
	}
	return &suggestion, nil
}

// do sends one JSON request and decodes a JSON response into out
func (c *Client) do(ctx context.Context, method, endpoint string, in, out any) error {
	if err := c.rateLimiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter error: %w", err)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.tokens != nil {
		token, err := c.tokens.AuthToken(ctx)
		if err != nil {
			return fmt.Errorf("failed to read auth token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request %s %s failed: %w", method, endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := newError(resp.StatusCode, data, json.Unmarshal)
		c.logger.Debugf("%s %s returned %d: %s", method, endpoint, resp.StatusCode, apiErr.Message)
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
