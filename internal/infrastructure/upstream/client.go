// Package upstream wraps the census backend's HTTP API. The gateway holds a
// single service-account session against it and re-authenticates on demand;
// dashboard users never see upstream credentials.
package upstream

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"sync"
	"time"

	"census-gateway/config"
	"census-gateway/internal/scope"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
)

var (
	ErrUpstreamAuth        = errors.New("upstream authentication failed")
	ErrUpstreamUnavailable = errors.New("upstream request failed")
)

// Client is the typed surface the rest of the gateway uses to reach the
// census backend. Responses come back as raw JSON; decoding and shape
// normalization live in the converter package.
type Client interface {
	Login(ctx context.Context) error
	GetPatients(ctx context.Context, params url.Values) ([]byte, error)
	GetEvents(ctx context.Context, sc scope.Scope, params url.Values) ([]byte, error)
	GetCoverage(ctx context.Context, patientID int) ([]byte, error)
	GetAdtRecords(ctx context.Context, patientID int) ([]byte, error)
	GetFacilities(ctx context.Context) ([]byte, error)
}

type client struct {
	http *resty.Client
	cfg  config.UpstreamConfig

	mu    sync.RWMutex
	token string
}

type loginResponse struct {
	Message  string `json:"message"`
	JwtToken string `json:"jwtToken"`
}

func NewClient(cfg config.UpstreamConfig) Client {
	c := &client{cfg: cfg}

	c.http = resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(2).
		SetRetryWaitTime(500 * time.Millisecond).
		SetRetryMaxWaitTime(3 * time.Second).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, req *resty.Request) error {
			if token := c.currentToken(); token != "" {
				req.SetHeader("Authorization", "Bearer "+token)
			}
			return nil
		})

	return c
}

func (c *client) currentToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Login authenticates the service account and stores the session token for
// all subsequent requests.
func (c *client) Login(ctx context.Context) error {
	var result loginResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetBody(map[string]string{
			"email":    c.cfg.Email,
			"password": c.cfg.Password,
		}).
		SetResult(&result).
		Post("/login")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	if resp.StatusCode() != http.StatusOK || result.JwtToken == "" {
		logrus.Warnf("Upstream login rejected: status=%d", resp.StatusCode())
		return ErrUpstreamAuth
	}

	c.mu.Lock()
	c.token = result.JwtToken
	c.mu.Unlock()

	logrus.Info("Authenticated against census upstream")
	return nil
}

// get issues a GET and retries exactly once with a fresh login when the
// session token has expired.
func (c *client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	body, status, err := c.doGet(ctx, path, params)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		if err := c.Login(ctx); err != nil {
			return nil, err
		}
		body, status, err = c.doGet(ctx, path, params)
		if err != nil {
			return nil, err
		}
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: %s returned status %d", ErrUpstreamUnavailable, path, status)
	}
	return body, nil
}

func (c *client) doGet(ctx context.Context, path string, params url.Values) ([]byte, int, error) {
	req := c.http.R().SetContext(ctx)
	for key, values := range params {
		for _, value := range values {
			req.SetQueryParam(key, value)
		}
	}
	resp, err := req.Get(path)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUpstreamUnavailable, err)
	}
	return resp.Body(), resp.StatusCode(), nil
}

func (c *client) GetPatients(ctx context.Context, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	return c.get(ctx, "/patients", params)
}

func (c *client) GetEvents(ctx context.Context, sc scope.Scope, params url.Values) ([]byte, error) {
	if params == nil {
		params = url.Values{}
	}
	sc.Apply(http.MethodGet, "/events", params)
	return c.get(ctx, "/events", params)
}

func (c *client) GetCoverage(ctx context.Context, patientID int) ([]byte, error) {
	params := url.Values{}
	params.Set("patientId", fmt.Sprintf("%d", patientID))
	return c.get(ctx, "/coverage", params)
}

func (c *client) GetAdtRecords(ctx context.Context, patientID int) ([]byte, error) {
	params := url.Values{}
	params.Set("patientId", fmt.Sprintf("%d", patientID))
	return c.get(ctx, "/adt", params)
}

func (c *client) GetFacilities(ctx context.Context) ([]byte, error) {
	return c.get(ctx, "/facilities", url.Values{})
}
