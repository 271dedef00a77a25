package service

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/tidwall/gjson"
)

// Error is a non-2xx answer from the backend.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("backend: %d %s", e.Status, http.StatusText(e.Status))
	}
	return fmt.Sprintf("backend: %d %s", e.Status, e.Message)
}

// PublicMessage is the text safe to show to the shopper.
func (e *Error) PublicMessage() string {
	return e.Message
}

// Unauthorized reports a 401 or 403.
func (e *Error) Unauthorized() bool {
	return e.Status == http.StatusUnauthorized || e.Status == http.StatusForbidden
}

func newError(status int, body []byte) *Error {
	return &Error{Status: status, Message: messageFromBody(body)}
}

// messageFromBody picks the first of message, error or detail from a JSON
// body, falling back to a short plain-text body.
func messageFromBody(body []byte) string {
	if gjson.ValidBytes(body) {
		res := gjson.GetManyBytes(body, "message", "error", "detail")
		for _, r := range res {
			if r.Type == gjson.String && r.Str != "" {
				return r.Str
			}
		}
		return ""
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}

func statusOf(err error) int {
	var be *Error
	if errors.As(err, &be) {
		return be.Status
	}
	return 0
}

// IsUnauthorized reports a 401 or 403 from the backend.
func IsUnauthorized(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Unauthorized()
}

func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsClientError reports a 4xx other than auth failures.
func IsClientError(err error) bool {
	s := statusOf(err)
	return s >= 400 && s < 500 && !IsUnauthorized(err)
}
