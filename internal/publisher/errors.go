package publisher

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/mikequentel/mindfulpost/internal/xapi"
)

type Kind string

const (
	AuthError         Kind = "auth"
	PermissionError   Kind = "permission"
	UnclassifiedError Kind = "unclassified"
)

// PublishError is a rejected or failed post.
type PublishError struct {
	Kind       Kind
	StatusCode int // 0 when the request never got an answer
	Detail     string
	Err        error
}

func (e *PublishError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("publish (%s, HTTP %d): %v", e.Kind, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("publish (%s): %v", e.Kind, e.Err)
}

func (e *PublishError) Unwrap() error { return e.Err }

func classify(err error) *PublishError {
	pe := &PublishError{Kind: UnclassifiedError, Err: err}
	var apiErr *xapi.APIError
	if !errors.As(err, &apiErr) {
		return pe
	}
	pe.StatusCode = apiErr.StatusCode
	pe.Detail = apiErr.Detail
	switch apiErr.StatusCode {
	case http.StatusUnauthorized:
		pe.Kind = AuthError
	case http.StatusForbidden:
		pe.Kind = PermissionError
	}
	return pe
}

var remediation = map[Kind][]string{
	AuthError: {
		"🔑 Twitter API Authentication Error!",
		"Please verify your Twitter API credentials:",
		"1. Check that your API keys are correct in the .env file",
		"2. Ensure your Twitter app has Read and Write permissions",
		"3. Make sure you're using the correct API version (v2)",
		"4. Verify your app is not suspended or restricted",
	},
	PermissionError: {
		"🚫 Twitter API Permission Error!",
		"This could be an API access level issue. You may need Elevated access.",
	},
}

// Remediation returns the hint lines printed for a failure kind.
func Remediation(k Kind) []string {
	return remediation[k]
}
