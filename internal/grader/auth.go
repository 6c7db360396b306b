package grader

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
)

// exchangeToken performs the OAuth2 password-grant against the block's
// authentication endpoint and returns the bearer token. Client credentials go
// in as HTTP Basic auth, the resource-owner credentials as the form body. The
// attempt is never retried.
func (c *Client) exchangeToken(ctx context.Context, cfg Config) (string, error) {
	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("username", cfg.AuthenticationUsername)
	form.Set("password", cfg.AuthenticationPassword)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, cfg.AuthenticationEndpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("build auth request: %w", err)
	}

	req.SetBasicAuth(cfg.ClientID, cfg.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := c.authClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call auth endpoint: %w", err)
	}
	defer resp.Body.Close()

	var payload struct {
		AccessToken string `json:"access_token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("decode auth response: %w", err)
	}

	if payload.AccessToken == "" {
		return "", fmt.Errorf("auth response carried no access_token (status %d)", resp.StatusCode)
	}

	return payload.AccessToken, nil
}
