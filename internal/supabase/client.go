// Package supabase implements the document, object and account stores on top
// of a Supabase project: PostgREST for documents, Storage for files and
// GoTrue for sign-up.
//
// A database ID selects the Postgres schema (sent as Accept-Profile and
// Content-Profile) and a collection ID names a table in it. Each table needs
// a text primary key column "id".
package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/johnwards/menuseed/internal/domain"
)

// Client is a Supabase REST API client.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	pageSize   int
}

// Config holds client configuration.
type Config struct {
	URL        string
	APIKey     string
	HTTPClient *http.Client
	// PageSize bounds the rows or objects fetched per list request.
	// Defaults to 1000, the PostgREST default max-rows.
	PageSize int
}

// New creates a new Supabase client.
func New(cfg Config) (*Client, error) {
	if cfg.URL == "" {
		return nil, fmt.Errorf("URL is required")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("APIKey is required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{
			Timeout: 30 * time.Second,
		}
	}
	pageSize := cfg.PageSize
	if pageSize <= 0 {
		pageSize = 1000
	}

	return &Client{
		baseURL:    strings.TrimSuffix(cfg.URL, "/"),
		apiKey:     cfg.APIKey,
		httpClient: httpClient,
		pageSize:   pageSize,
	}, nil
}

// Response is a raw API response.
type Response struct {
	StatusCode int
	Body       []byte
	Headers    http.Header
}

// JSON unmarshals the response body into v.
func (r *Response) JSON(v any) error {
	return json.Unmarshal(r.Body, v)
}

// Error returns an error if the response indicates failure. Not-found and
// conflict responses wrap the matching domain sentinel.
func (r *Response) Error() error {
	if r.StatusCode < 400 {
		return nil
	}

	var body struct {
		Message          string `json:"message"`
		Msg              string `json:"msg"`
		Error            string `json:"error"`
		ErrorCode        string `json:"error_code"`
		Code             string `json:"code"`
		ErrorDescription string `json:"error_description"`
		StatusCode       string `json:"statusCode"`
	}
	_ = json.Unmarshal(r.Body, &body)

	msg := firstNonEmpty(body.Message, body.Msg, body.ErrorDescription, body.Error)
	if msg == "" {
		msg = fmt.Sprintf("status %d", r.StatusCode)
	}

	switch {
	case r.StatusCode == http.StatusNotFound,
		body.StatusCode == "404",
		body.Error == "not_found":
		return fmt.Errorf("supabase error: %s: %w", msg, domain.ErrNotFound)
	case r.StatusCode == http.StatusConflict,
		body.Code == "23505",
		body.ErrorCode == "user_already_exists",
		body.ErrorCode == "email_exists",
		body.StatusCode == "409",
		strings.Contains(strings.ToLower(msg), "already registered"):
		return fmt.Errorf("supabase error: %s: %w", msg, domain.ErrConflict)
	}
	return fmt.Errorf("supabase error: %s", msg)
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func (c *Client) newRequest(ctx context.Context, method, url string, body any) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal body: %w", err)
		}
		r = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	c.setHeaders(req)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("apikey", c.apiKey)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
}

func (c *Client) do(req *http.Request) (*Response, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
		Headers:    resp.Header,
	}, nil
}

// send performs req and returns the response if it succeeded.
func (c *Client) send(req *http.Request) (*Response, error) {
	resp, err := c.do(req)
	if err != nil {
		return nil, err
	}
	if err := resp.Error(); err != nil {
		return nil, err
	}
	return resp, nil
}
