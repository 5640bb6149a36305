package httpclient

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/rios0rios0/upd/internal/domain/entities"
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Code int
	URL  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP %d %s", e.Code, http.StatusText(e.Code))
}

// Unwrap maps 404 to entities.ErrPackageNotFound and everything else to
// entities.ErrRegistryUnavailable.
func (e *StatusError) Unwrap() error {
	if e.Code == http.StatusNotFound {
		return entities.ErrPackageNotFound
	}
	return entities.ErrRegistryUnavailable
}

func checkStatus(code int, url string) error {
	switch {
	case code >= http.StatusOK && code < http.StatusMultipleChoices:
		return nil
	case code >= http.StatusInternalServerError:
		return &RetryableError{Err: &StatusError{Code: code, URL: url}}
	default:
		return &StatusError{Code: code, URL: url}
	}
}

// DescribeStatus turns an HTTP status into an actionable message about an
// entity ("Package", "Crate", "Module"). hint is appended for authentication failures.
func DescribeStatus(code int, entity, name, hint string) string {
	switch {
	case code == http.StatusUnauthorized:
		msg := "Check your credentials or API token."
		if hint != "" {
			msg += " " + hint
		}
		return fmt.Sprintf("%s '%s' requires authentication (HTTP 401). %s", entity, name, msg)
	case code == http.StatusForbidden:
		return fmt.Sprintf(
			"Access denied for %s '%s' (HTTP 403). You may lack permission or the %s may be private.",
			entity, name, strings.ToLower(entity),
		)
	case code == http.StatusNotFound:
		return fmt.Sprintf(
			"%s '%s' not found (HTTP 404). Check the name for typos or verify it exists in the registry.",
			entity, name,
		)
	case code == http.StatusRequestTimeout || code == http.StatusGatewayTimeout:
		return fmt.Sprintf(
			"Request timed out for %s '%s' (HTTP %d). The registry may be slow or unreachable.",
			entity, name, code,
		)
	case code == http.StatusTooManyRequests:
		return fmt.Sprintf("Rate limited while fetching %s '%s' (HTTP 429). Wait a moment and try again.", entity, name)
	case code >= http.StatusInternalServerError:
		return fmt.Sprintf(
			"Registry server error for %s '%s' (HTTP %d). The registry may be experiencing issues.",
			entity, name, code,
		)
	default:
		return fmt.Sprintf("Failed to fetch %s '%s': HTTP %d %s", entity, name, code, http.StatusText(code))
	}
}

// Describe rewrites a StatusError into the message of DescribeStatus while
// keeping the original chain for errors.Is. Other errors pass through.
func Describe(err error, entity, name, hint string) error {
	var statusErr *StatusError
	if !errors.As(err, &statusErr) {
		return err
	}
	return &describedError{
		message: DescribeStatus(statusErr.Code, entity, name, hint),
		err:     err,
	}
}

type describedError struct {
	message string
	err     error
}

func (e *describedError) Error() string { return e.message }
func (e *describedError) Unwrap() error { return e.err }
