package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/hashicorp/go-retryablehttp"
)

const (
	// DefaultBaseURL points at the production LeadHub backend.
	DefaultBaseURL = "https://hubbackend.desklago.com/api"

	userAgent = "leadhub-cli"
)

// TokenFunc returns the current bearer token, or "" when not logged in.
type TokenFunc func() string

// Client is the single chokepoint for all traffic to the remote API.
// It attaches the bearer credential and normalizes every failure into *Error.
type Client struct {
	BaseURL string
	tokenFn TokenFunc
	http    *retryablehttp.Client
}

// Option configures a Client.
type Option func(*Client)

// WithToken installs the credential source used for the Authorization header.
func WithToken(fn TokenFunc) Option {
	return func(c *Client) { c.tokenFn = fn }
}

// WithHTTPClient swaps the underlying retryable client (used by tests).
func WithHTTPClient(hc *retryablehttp.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	retryClient := retryablehttp.NewClient()
	retryClient.Logger = log.New(io.Discard, "", 0)
	retryClient.RetryMax = 2

	c := &Client{
		BaseURL: strings.TrimSuffix(baseURL, "/"),
		http:    retryClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetProxy routes all requests through the given HTTP proxy.
func (c *Client) SetProxy(proxy string) error {
	proxyURL, err := url.Parse(proxy)
	if err != nil {
		return fmt.Errorf("invalid proxy URL: %v", err)
	}
	c.http.HTTPClient.Transport = &http.Transport{
		Proxy:           http.ProxyURL(proxyURL),
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
	return nil
}

// Do issues a JSON request against the API and returns the raw response body.
// A nil body sends no payload. Any non-2xx status or transport failure comes
// back as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body any) ([]byte, error) {
	return c.DoQuery(ctx, method, path, nil, body)
}

// DoQuery is Do with extra query parameters appended to the path.
func (c *Client) DoQuery(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	var payload io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		payload = bytes.NewReader(raw)
	}

	fullURL := c.BaseURL + path
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, method, fullURL, payload)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	return c.send(req)
}

// File is a single multipart file attachment.
type File struct {
	Field string
	Path  string
}

// DoMultipart posts a multipart form (registration, lead uploads).
func (c *Client) DoMultipart(ctx context.Context, path string, fields map[string]string, files ...File) ([]byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := writer.WriteField(k, v); err != nil {
			return nil, err
		}
	}
	for _, f := range files {
		src, err := os.Open(f.Path)
		if err != nil {
			return nil, err
		}
		part, err := writer.CreateFormFile(f.Field, filepath.Base(f.Path))
		if err != nil {
			src.Close()
			return nil, err
		}
		if _, err := io.Copy(part, src); err != nil {
			src.Close()
			return nil, err
		}
		src.Close()
	}
	if err := writer.Close(); err != nil {
		return nil, err
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, buf.Bytes())
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.send(req)
}

func (c *Client) send(req *retryablehttp.Request) ([]byte, error) {
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if c.tokenFn != nil {
		if token := c.tokenFn(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "network error occurred, check your connection"}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: KindNetwork, Message: "reading response failed"}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, normalizeError(resp.StatusCode, raw)
	}
	return raw, nil
}
