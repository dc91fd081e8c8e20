// Package drive grants purchasers read access to hosted course files
// through the file-hosting provider's permissions API.
package drive

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
)

// RoleReader is the permission role granted to purchasers.
const RoleReader = "reader"

// Gateway is what the purchase service depends on.
type Gateway interface {
	GrantReader(ctx context.Context, fileID, email string) error
}

// Config carries the OAuth2 service credentials. Tokens are obtained
// from the refresh token and renewed by the token source, not per call.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	RefreshToken string
}

// Client is a long-lived gateway. The underlying authenticated HTTP
// client is built lazily on first use and then reused.
type Client struct {
	cfg Config

	once sync.Once
	http *http.Client
}

func NewClient(cfg Config) *Client {
	return &Client{cfg: cfg}
}

// httpClient initializes the OAuth2-backed client exactly once.
func (c *Client) httpClient(ctx context.Context) *http.Client {
	c.once.Do(func() {
		conf := &oauth2.Config{
			ClientID:     c.cfg.ClientID,
			ClientSecret: c.cfg.ClientSecret,
			Endpoint: oauth2.Endpoint{
				TokenURL: c.cfg.TokenURL,
			},
		}
		token := &oauth2.Token{RefreshToken: c.cfg.RefreshToken}
		// Detach from the request context: the token source outlives
		// any single request.
		src := conf.TokenSource(context.Background(), token)
		c.http = oauth2.NewClient(context.Background(), src)
		c.http.Timeout = 10 * time.Second
	})
	return c.http
}

type permissionRequest struct {
	Role         string `json:"role"`
	Type         string `json:"type"`
	EmailAddress string `json:"emailAddress"`
}

// GrantReader asks the provider to grant the email read access to the
// file. Any non-2xx answer is an upstream failure; the call is
// idempotent on the provider side, so callers may retry.
func (c *Client) GrantReader(ctx context.Context, fileID, email string) error {
	body, err := json.Marshal(permissionRequest{
		Role:         RoleReader,
		Type:         "user",
		EmailAddress: email,
	})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/drive/v3/files/%s/permissions?sendNotificationEmail=false", c.cfg.BaseURL, fileID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient(ctx).Do(req)
	if err != nil {
		return fmt.Errorf("permission grant call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("permission grant: provider returned %d: %s", resp.StatusCode, string(payload))
	}
	return nil
}
