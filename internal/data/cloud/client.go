// Package cloud syncs the reminder document with a remote store. The
// remote is a single JSON document fetched and replaced over HTTP with a
// bearer token; an expired token is refreshed once and the call retried.
package cloud

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/colonyops/remind/internal/core/reminder"
)

// ErrNotConfigured is returned when no cloud endpoint is set.
var ErrNotConfigured = errors.New("cloud sync not configured")

// errTokenExpired marks a 401 response so callers refresh and retry once.
var errTokenExpired = errors.New("access token expired")

// Document is the remote reminder document.
type Document struct {
	Pending   []reminder.Reminder `json:"pending"`
	Completed []reminder.Reminder `json:"completed"`
}

// Credentials holds the token state for the remote store.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	ClientID     string
	ClientSecret string
	TokenURL     string
}

// Client talks to the remote document store.
type Client struct {
	endpoint string
	http     *http.Client

	mu    sync.Mutex
	creds Credentials
}

// NewClient creates a client for the given endpoint. An empty endpoint
// yields a disabled client whose calls return ErrNotConfigured.
func NewClient(endpoint string, creds Credentials) *Client {
	return &Client{
		endpoint: endpoint,
		creds:    creds,
		http:     &http.Client{Timeout: 30 * time.Second},
	}
}

// Enabled reports whether the client has an endpoint configured.
func (c *Client) Enabled() bool {
	return c != nil && c.endpoint != ""
}

// Load fetches the remote document.
func (c *Client) Load(ctx context.Context) (Document, error) {
	if !c.Enabled() {
		return Document{}, ErrNotConfigured
	}

	doc, err := c.load(ctx)
	if errors.Is(err, errTokenExpired) {
		if err := c.refreshAccessToken(ctx); err != nil {
			return Document{}, fmt.Errorf("refresh access token: %w", err)
		}
		doc, err = c.load(ctx)
	}
	return doc, err
}

// Save replaces the remote document.
func (c *Client) Save(ctx context.Context, doc Document) error {
	if !c.Enabled() {
		return ErrNotConfigured
	}

	err := c.save(ctx, doc)
	if errors.Is(err, errTokenExpired) {
		if err := c.refreshAccessToken(ctx); err != nil {
			return fmt.Errorf("refresh access token: %w", err)
		}
		err = c.save(ctx, doc)
	}
	return err
}

func (c *Client) load(ctx context.Context) (Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return Document{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken())

	resp, err := c.http.Do(req)
	if err != nil {
		return Document{}, fmt.Errorf("fetch remote document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		return Document{}, errTokenExpired
	case resp.StatusCode == http.StatusNotFound:
		// No document yet; treat as empty.
		return Document{}, nil
	case resp.StatusCode != http.StatusOK:
		return Document{}, fmt.Errorf("remote returned %s", resp.Status)
	}

	var doc Document
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return Document{}, fmt.Errorf("decode remote document: %w", err)
	}
	return doc, nil
}

func (c *Client) save(ctx context.Context, doc Document) error {
	body, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("encode document: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.accessToken())
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("store remote document: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusUnauthorized {
		return errTokenExpired
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("remote returned %s", resp.Status)
	}
	return nil
}

// refreshAccessToken exchanges the refresh token for a new access token.
func (c *Client) refreshAccessToken(ctx context.Context) error {
	c.mu.Lock()
	creds := c.creds
	c.mu.Unlock()

	if creds.RefreshToken == "" || creds.TokenURL == "" {
		return errors.New("no refresh token configured")
	}

	form := url.Values{
		"grant_type":    {"refresh_token"},
		"refresh_token": {creds.RefreshToken},
		"client_id":     {creds.ClientID},
		"client_secret": {creds.ClientSecret},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, creds.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("build token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("token endpoint: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("token endpoint returned %s: %s", resp.Status, body)
	}

	var token struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if token.AccessToken == "" {
		return errors.New("token endpoint returned empty access token")
	}

	c.mu.Lock()
	c.creds.AccessToken = token.AccessToken
	c.mu.Unlock()
	return nil
}

func (c *Client) accessToken() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.creds.AccessToken
}
