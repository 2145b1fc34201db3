// Package xapi talks to the X (Twitter) API.
package xapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/dghubble/oauth1"

	"github.com/mikequentel/mindfulpost/internal/model"
)

const createTweetURL = "https://api.twitter.com/2/tweets"

// Credentials are the four OAuth 1.0a user-context secrets.
type Credentials struct {
	AppKey       string
	AppSecret    string
	AccessToken  string
	AccessSecret string
}

// APIError is a non-2xx answer from X.
type APIError struct {
	StatusCode int
	Endpoint   string
	Detail     string
	Body       string
}

func (e *APIError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("%s -> HTTP %d", e.Endpoint, e.StatusCode)
	}
	return e.Detail
}

// NewHTTPClient returns an http.Client that signs every request.
func NewHTTPClient(ctx context.Context, c Credentials) *http.Client {
	config := oauth1.NewConfig(c.AppKey, c.AppSecret)
	token := oauth1.NewToken(c.AccessToken, c.AccessSecret)
	return config.Client(ctx, token)
}

// Client posts through the v2 create-tweet endpoint.
type Client struct {
	http *http.Client
}

func NewClient(httpClient *http.Client) *Client {
	return &Client{http: httpClient}
}

// CreatePost publishes text and returns the new post id.
func (c *Client) CreatePost(ctx context.Context, text string) (string, error) {
	const endpoint = "POST /2/tweets"

	payload, err := json.Marshal(model.TweetReq{Text: text})
	if err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, createTweetURL, bytes.NewReader(payload))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("%s: %w", endpoint, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%s: read body: %w", endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Detail:     DiagnoseHTTPError(resp, body, endpoint),
			Body:       string(body),
		}
	}

	var out model.TweetResp
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%s: decode response: %w", endpoint, err)
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("%s: response missing data.id: %s", endpoint, body)
	}
	return out.Data.ID, nil
}

// DiagnoseHTTPError renders an X error body as one readable line. It
// understands v2 problem bodies and v1.1 error lists, and falls back to the
// raw body.
func DiagnoseHTTPError(resp *http.Response, body []byte, endpoint string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s -> HTTP %d", endpoint, resp.StatusCode)
	if lvl := resp.Header.Get("X-Access-Level"); lvl != "" {
		fmt.Fprintf(&b, " (access level: %s)", lvl)
	}

	var p model.V2Problem
	if json.Unmarshal(body, &p) == nil && (p.Title != "" || p.Detail != "") {
		fmt.Fprintf(&b, ": %s", p.Title)
		if p.Detail != "" {
			fmt.Fprintf(&b, " - %s", p.Detail)
		}
		return b.String()
	}

	var v1 model.V1Errors
	if json.Unmarshal(body, &v1) == nil && len(v1.Errors) > 0 {
		for i, e := range v1.Errors {
			if i > 0 {
				b.WriteString(";")
			}
			fmt.Fprintf(&b, " [%d] %s", e.Code, e.Message)
		}
		return b.String()
	}

	if raw := strings.TrimSpace(string(body)); raw != "" {
		fmt.Fprintf(&b, ": %s", raw)
	}
	return b.String()
}
