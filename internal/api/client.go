// Package api talks to the football-data service, serving cached documents when possible
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/iTrooz/footballdata/internal/cache"
	"github.com/iTrooz/footballdata/internal/cache/doccache"
	"github.com/iTrooz/footballdata/internal/config"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/singleflight"
)

// AuthHeader carries the API key on upstream requests
const AuthHeader = "X-Auth-Token"

const maxBodySize = 32 << 20

// DocumentStore persists upstream documents by request key
type DocumentStore interface {
	Read(key doccache.Key) (json.RawMessage, error)
	Write(key doccache.Key, doc json.RawMessage) error
	Age(key doccache.Key) (time.Duration, error)
}

// Client fetches documents from the upstream API through the document cache.
// It is safe for concurrent use.
type Client struct {
	baseURL    string
	apiKey     string
	ttl        time.Duration
	httpClient *http.Client
	store      DocumentStore
	group      singleflight.Group
	now        func() time.Time

	excluded              map[string]bool
	coefficients          []config.Coefficient
	scorersPerCompetition int
	goldenBootTop         int
	matchWindowDays       int
}

// New creates a client from the configuration
func New(cfg *config.Config, store DocumentStore) (*Client, error) {
	timeout, err := cfg.GetTimeout()
	if err != nil {
		return nil, fmt.Errorf("invalid upstream timeout: %w", err)
	}
	ttl, err := cfg.GetCacheTTL()
	if err != nil {
		return nil, fmt.Errorf("invalid cache TTL: %w", err)
	}
	httpClient, err := NewHTTPClient(timeout, cfg.Upstream.Proxy)
	if err != nil {
		return nil, err
	}

	excluded := make(map[string]bool, len(cfg.Competitions.Excluded))
	for _, code := range cfg.Competitions.Excluded {
		excluded[code] = true
	}

	return &Client{
		baseURL:               strings.TrimRight(cfg.Upstream.BaseURL, "/"),
		apiKey:                cfg.Upstream.APIKey,
		ttl:                   ttl,
		httpClient:            httpClient,
		store:                 store,
		now:                   time.Now,
		excluded:              excluded,
		coefficients:          cfg.GoldenBoot.Coefficients,
		scorersPerCompetition: cfg.GoldenBoot.ScorersPerCompetition,
		goldenBootTop:         cfg.GoldenBoot.Top,
		matchWindowDays:       cfg.Matches.WindowDays,
	}, nil
}

// NewHTTPClient builds an HTTP client with a request timeout, optionally going through a proxy
func NewHTTPClient(timeout time.Duration, proxy string) (*http.Client, error) {
	transport := http.DefaultTransport.(*http.Transport).Clone()
	if proxy != "" {
		proxyURL, err := url.Parse(proxy)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL: %w", err)
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// Fetch returns the document of endpoint with params.
// A fresh cached document is returned without any request. Otherwise the API is
// queried, and on failure any cached document is served regardless of its age.
func (c *Client) Fetch(ctx context.Context, endpoint string, params doccache.Params) Result[json.RawMessage] {
	return c.fetch(ctx, endpoint, params, nil)
}

// checkFunc rejects documents that are valid JSON but not of the expected shape
type checkFunc func(doc json.RawMessage) error

// fetchAs fetches a document that must decode into T. A document that does not is
// handled like a failed request: it is neither cached nor served from the cache.
func fetchAs[T any](ctx context.Context, c *Client, endpoint string, params doccache.Params) Result[T] {
	check := func(doc json.RawMessage) error {
		var v T
		return json.Unmarshal(doc, &v)
	}
	return decode[T](c.fetch(ctx, endpoint, params, check))
}

func (c *Client) fetch(ctx context.Context, endpoint string, params doccache.Params, check checkFunc) Result[json.RawMessage] {
	key := doccache.KeyFor(endpoint, params)

	if doc, ok := c.freshDocument(key, endpoint, check); ok {
		return Result[json.RawMessage]{Value: doc, Origin: OriginCache}
	}

	flight := string(key)
	if check != nil {
		flight += "|checked"
	}

	// The shared request must not die with the first caller's context;
	// the HTTP client timeout still bounds it.
	shared := context.WithoutCancel(ctx)
	ch := c.group.DoChan(flight, func() (any, error) {
		return c.fetchRemote(shared, key, endpoint, params, check), nil
	})

	select {
	case r := <-ch:
		return r.Val.(Result[json.RawMessage])
	case <-ctx.Done():
		logrus.Warnf("Request for %s abandoned: %v", endpoint, ctx.Err())
		return c.fallback(key, transportError(ctx.Err()), check)
	}
}

// freshDocument returns the cached document for key if it is younger than the TTL
func (c *Client) freshDocument(key doccache.Key, endpoint string, check checkFunc) (json.RawMessage, bool) {
	age, err := c.store.Age(key)
	if err != nil {
		if !errors.Is(err, cache.ErrNotFound) {
			logrus.Warnf("Failed to stat cached document %s: %v", key, err)
		}
		return nil, false
	}
	if age >= c.ttl {
		logrus.Debugf("Cached document for %s is stale (%s old), requesting API", endpoint, age.Round(time.Second))
		return nil, false
	}

	doc, err := c.readChecked(key, check)
	if err != nil {
		logrus.Warnf("Failed to read cached document %s: %v. Requesting API", key, err)
		return nil, false
	}

	logrus.Debugf("Cache hit for %s", endpoint)
	return doc, true
}

// readChecked reads the document under key, reporting an unexpected shape as corruption
func (c *Client) readChecked(key doccache.Key, check checkFunc) (json.RawMessage, error) {
	doc, err := c.store.Read(key)
	if err != nil {
		return nil, err
	}
	if check != nil {
		if err := check(doc); err != nil {
			return nil, &doccache.CorruptError{Key: key, Err: err}
		}
	}
	return doc, nil
}

func (c *Client) fetchRemote(ctx context.Context, key doccache.Key, endpoint string, params doccache.Params, check checkFunc) Result[json.RawMessage] {
	doc, apiErr := c.request(ctx, endpoint, params)
	if apiErr == nil && check != nil {
		if err := check(doc); err != nil {
			apiErr = invalidResponseError(fmt.Errorf("unexpected document for %s: %w", endpoint, err))
		}
	}
	if apiErr != nil {
		logrus.Errorf("API request for %s failed: %s", endpoint, apiErr.Message)
		return c.fallback(key, apiErr, check)
	}

	if err := c.store.Write(key, doc); err != nil {
		logrus.Errorf("Failed to cache document for %s: %v", endpoint, err)
	}
	return Result[json.RawMessage]{Value: doc, Origin: OriginNetwork}
}

// request performs one GET on the API and returns the JSON body
func (c *Client) request(ctx context.Context, endpoint string, params doccache.Params) (json.RawMessage, *Error) {
	targetURL := c.baseURL + endpoint
	if len(params) > 0 {
		query := url.Values{}
		for name, value := range params {
			query.Set(name, value)
		}
		targetURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, targetURL, nil)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: err.Error(), Cause: err}
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set(AuthHeader, c.apiKey)
	}

	logrus.Infof("API request: %s", targetURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, transportError(err)
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, rateLimitError(resp.StatusCode, parseRetryAfter(resp.Header.Get("Retry-After"), c.now()))
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, statusError(resp.StatusCode, upstreamMessage(body))
	}

	if !json.Valid(body) {
		return nil, invalidResponseError(fmt.Errorf("body of %s is not valid JSON", endpoint))
	}
	return body, nil
}

// fallback serves whatever document is cached for key, or reports apiErr
func (c *Client) fallback(key doccache.Key, apiErr *Error, check checkFunc) Result[json.RawMessage] {
	doc, err := c.readChecked(key, check)
	switch {
	case err == nil:
		logrus.Warnf("Using cached data (possibly stale) after error: %s", apiErr.Message)
		return Result[json.RawMessage]{Value: doc, Origin: OriginStale, Fallback: apiErr}
	case errors.Is(err, cache.ErrNotFound):
		return failed[json.RawMessage](apiErr)
	default:
		logrus.Warnf("Failed to read cached document %s during fallback: %v", key, err)
		withCache := *apiErr
		withCache.Message += " (cached copy unavailable)"
		return failed[json.RawMessage](&withCache)
	}
}

// parseRetryAfter reads a Retry-After header given in seconds or as an HTTP date
func parseRetryAfter(value string, now time.Time) time.Duration {
	value = strings.TrimSpace(value)
	if value == "" {
		return DefaultRetryAfter
	}
	if seconds, err := strconv.Atoi(value); err == nil && seconds >= 0 {
		return time.Duration(seconds) * time.Second
	}
	if at, err := http.ParseTime(value); err == nil {
		if d := at.Sub(now); d > 0 {
			return d
		}
		return 0
	}
	return DefaultRetryAfter
}

// upstreamMessage extracts the "message" field of an API error body, if any
func upstreamMessage(body []byte) string {
	var payload struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return ""
	}
	return payload.Message
}
