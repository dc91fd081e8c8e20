// Package googleauth resolves a Google OAuth access token to the
// account profile behind it, for federated sign-in.
package googleauth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrUnverified means Google would not vouch for the token: the client
// should be answered 401, not 502.
var ErrUnverified = errors.New("google rejected the access token")

// UserInfo is the subset of the userinfo answer the sign-in flow needs.
type UserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Verifier is the Google-facing interface the auth service depends on.
type Verifier interface {
	FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error)
}

// HTTPClient implements Verifier against the userinfo endpoint.
type HTTPClient struct {
	userInfoURL string
	http        *http.Client
}

func NewHTTPClient(userInfoURL string) *HTTPClient {
	return &HTTPClient{
		userInfoURL: userInfoURL,
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *HTTPClient) FetchUserInfo(ctx context.Context, accessToken string) (*UserInfo, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.userInfoURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("userinfo call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnverified
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo: google returned %d", resp.StatusCode)
	}

	var info UserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo response: %w", err)
	}
	if info.Email == "" {
		return nil, fmt.Errorf("userinfo: answer carries no email")
	}
	return &info, nil
}
