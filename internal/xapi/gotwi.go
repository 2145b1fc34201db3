package xapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/michimani/gotwi"
	"github.com/michimani/gotwi/tweet/managetweet"
	"github.com/michimani/gotwi/tweet/managetweet/types"
)

// GotwiClient is the alternate poster built on michimani/gotwi.
type GotwiClient struct {
	c *gotwi.Client
}

// NewGotwiClient builds the gotwi poster. gotwi signs requests itself, so
// httpClient should be a plain client; nil uses gotwi's default.
func NewGotwiClient(c Credentials, httpClient *http.Client) (*GotwiClient, error) {
	in := &gotwi.NewClientInput{
		HTTPClient:           httpClient,
		AuthenticationMethod: gotwi.AuthenMethodOAuth1UserContext,
		OAuthToken:           c.AccessToken,
		OAuthTokenSecret:     c.AccessSecret,
		APIKey:               c.AppKey,
		APIKeySecret:         c.AppSecret,
	}
	client, err := gotwi.NewClient(in)
	if err != nil {
		return nil, fmt.Errorf("create gotwi client: %w", err)
	}
	return &GotwiClient{c: client}, nil
}

func (g *GotwiClient) CreatePost(ctx context.Context, text string) (string, error) {
	res, err := managetweet.Create(ctx, g.c, &types.CreateInput{
		Text: gotwi.String(text),
	})
	if err != nil {
		return "", fromGotwiError(err)
	}
	return gotwi.StringValue(res.Data.ID), nil
}

func fromGotwiError(err error) error {
	var gerr *gotwi.GotwiError
	if errors.As(err, &gerr) && gerr.StatusCode != 0 {
		return &APIError{
			StatusCode: gerr.StatusCode,
			Endpoint:   "POST /2/tweets",
			Detail:     gerr.Error(),
		}
	}
	return fmt.Errorf("POST /2/tweets: %w", err)
}
