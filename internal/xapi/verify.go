package xapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/dghubble/go-twitter/twitter"
)

// VerifyCredentials asks v1.1 account/verify_credentials who the signed
// client is and returns the screen name.
func VerifyCredentials(ctx context.Context, httpClient *http.Client) (string, error) {
	const endpoint = "GET /1.1/account/verify_credentials.json"

	if err := ctx.Err(); err != nil {
		return "", err
	}
	client := twitter.NewClient(httpClient)
	user, resp, err := client.Accounts.VerifyCredentials(&twitter.AccountVerifyParams{
		SkipStatus:      twitter.Bool(true),
		IncludeEntities: twitter.Bool(false),
	})
	if err != nil {
		var apiErr twitter.APIError
		if errors.As(err, &apiErr) && resp != nil {
			return "", &APIError{
				StatusCode: resp.StatusCode,
				Endpoint:   endpoint,
				Detail:     apiErr.Error(),
			}
		}
		return "", fmt.Errorf("%s: %w", endpoint, err)
	}
	// an error status with an empty body decodes to no error at all
	if resp != nil && (resp.StatusCode < 200 || resp.StatusCode > 299) {
		return "", &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Detail:     fmt.Sprintf("%s -> HTTP %d", endpoint, resp.StatusCode),
		}
	}
	return user.ScreenName, nil
}
