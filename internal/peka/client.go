// Package peka is an HTTP client for the PEKA Poznań customer API: login, the
// paginated transaction history and the card balances.
package peka

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"
)

// DefaultBaseURL is the production host of the provider API.
const DefaultBaseURL = "https://www.peka.poznan.pl"

const (
	authPath     = "/sop/authenticate?lang=pl"
	transitsPath = "/sop/transaction/point/list?lang=pl"
	cardsPath    = "/sop/account/cards?lang=pl"

	historyReferer = "/km/history"
	accountReferer = "/km/account"
)

// The provider rejects requests that do not look like they come from its web app.
var browserHeaders = map[string]string{
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:136.0) Gecko/20100101 Firefox/136.0",
	"Accept":          "*/*",
	"Accept-Language": "pl,en-US;q=0.7,en;q=0.3",
	"Priority":        "u=4",
	"Sec-Fetch-Dest":  "empty",
	"Sec-Fetch-Mode":  "cors",
	"Sec-Fetch-Site":  "same-origin",
	"DNT":             "1",
	"Sec-GPC":         "1",
}

// Client talks to the provider API with one account's credentials.
type Client struct {
	baseURL    string
	email      string
	password   string
	httpClient *http.Client
}

// NewClient creates a provider client. A nil httpClient gets a pooled client with
// dial and TLS timeouts but no overall request deadline.
func NewClient(baseURL, email, password string, httpClient *http.Client) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if httpClient == nil {
		httpClient = newHTTPClientWithPooling()
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		email:      email,
		password:   password,
		httpClient: httpClient,
	}
}

// newHTTPClientWithPooling keeps connections alive across the sequential page
// requests of one run.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}

	transport := &http.Transport{
		Proxy:       http.ProxyFromEnvironment,
		DialContext: dialer.DialContext,

		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 2,
		IdleConnTimeout:     90 * time.Second,

		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}

	return &http.Client{Transport: transport}
}

type request struct {
	method  string
	path    string
	referer string
	token   string
	body    any
	extra   map[string]string
}

// do sends req and decodes the JSON response into out. Any status >= 400 is an error.
func (c *Client) do(ctx context.Context, req request, out any) error {
	var body io.Reader
	if req.body != nil {
		payload, err := json.Marshal(req.body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.method, c.baseURL+req.path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	for k, v := range browserHeaders {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Referer", c.baseURL+req.referer)
	if req.body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
		httpReq.Header.Set("Origin", c.baseURL)
	}
	if req.token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+req.token)
	}
	for k, v := range req.extra {
		httpReq.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.method, req.path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &StatusError{StatusCode: resp.StatusCode, Path: req.path, Body: strings.TrimSpace(string(snippet))}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", req.path, err)
	}
	return nil
}

// StatusError is an HTTP error status returned by the provider.
type StatusError struct {
	StatusCode int
	Path       string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s: unexpected status %d", e.Path, e.StatusCode)
	}
	return fmt.Sprintf("%s: unexpected status %d: %s", e.Path, e.StatusCode, e.Body)
}
