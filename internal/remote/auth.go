package remote

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int    `json:"expires_in"`
}

// isRetryableAuthError reports whether a token refresh failure is worth
// retrying. Only the auth collaborator retries: sync data operations
// never do.
func isRetryableAuthError(err error) bool {
	if err == nil {
		return false
	}

	errStr := err.Error()
	if strings.Contains(errStr, "connection refused") || strings.Contains(errStr, "i/o timeout") {
		return true
	}
	if strings.Contains(errStr, "response error 5") {
		return true
	}
	if strings.Contains(errStr, "response error 429") {
		return true
	}
	return false
}

// RefreshSession exchanges a refresh token for a new access token and
// installs it on the client. Transient failures are retried with backoff.
func (client *Client) RefreshSession(ctx context.Context, refreshToken string, maxAttempts uint) error {
	if refreshToken == "" {
		return fmt.Errorf("refresh token is empty > %w", ErrUnauthorized)
	}

	var token string
	if err := retry.Do(
		func() error {
			refreshed, err := client.refreshSession(ctx, refreshToken)
			if err != nil {
				if !isRetryableAuthError(err) {
					return retry.Unrecoverable(err)
				}
				return err
			}
			token = refreshed
			return nil
		},
		retry.Context(ctx),
		retry.Attempts(maxAttempts+1),
		retry.DelayType(func(n uint, err error, config *retry.Config) time.Duration {
			return retry.BackOffDelay(n, err, config)
		}),
	); err != nil {
		return err
	}

	client.httpClient.SetAuthToken(token)
	return nil
}

func (client *Client) refreshSession(ctx context.Context, refreshToken string) (string, error) {
	response, err := client.httpClient.R().
		SetContext(ctx).
		SetBody(refreshRequest{RefreshToken: refreshToken}).
		SetResult(&refreshResponse{}).
		Post("/auth/refresh")
	if err != nil {
		return "", fmt.Errorf("httpClient.Post(/auth/refresh) > %w", err)
	}
	if err := client.checkResponse(response); err != nil {
		return "", err
	}

	refreshed := response.Result().(*refreshResponse)
	if refreshed.AccessToken == "" {
		return "", fmt.Errorf("empty access token in refresh response > %w", ErrUnauthorized)
	}
	return refreshed.AccessToken, nil
}
