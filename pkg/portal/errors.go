package portal

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

const (
	networkErrorMessage      = "Unable to reach the server. Please check your connection and try again."
	unauthorizedErrorMessage = "Your session has expired. Please log in again."
)

var ErrUnauthorized = errors.New("unauthorized")

// NetworkError means the request was sent but no response came back.
type NetworkError struct {
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %v", e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// APIError is a non-2xx response from the backend.
type APIError struct {
	Status  int
	Message string
	Details string
	Errors  []string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("backend returned %d: %s", e.Status, e.UserMessage())
}

// UserMessage picks the most specific text the backend offered.
func (e *APIError) UserMessage() string {
	switch {
	case e.Message != "":
		return e.Message
	case e.Details != "":
		return e.Details
	case len(e.Errors) > 0:
		return strings.Join(e.Errors, ", ")
	default:
		return fmt.Sprintf("Request failed with status %d", e.Status)
	}
}

// UserMessage maps any error returned by this package, or a local validation error, to display text.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.UserMessage()
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return networkErrorMessage
	}
	if errors.Is(err, ErrUnauthorized) {
		return unauthorizedErrorMessage
	}
	return err.Error()
}

// StatusCode is the status a handler answers with when a backend call failed with err.
// Backend rejections keep their 4xx status; anything upstream of us is a bad gateway.
func StatusCode(err error) int {
	var apiErr *APIError
	var netErr *NetworkError
	switch {
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.As(err, &apiErr):
		if apiErr.Status >= 400 && apiErr.Status < 500 {
			return apiErr.Status
		}
		return http.StatusBadGateway
	case errors.As(err, &netErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func parseAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{Status: status}

	var payload struct {
		Message string          `json:"message"`
		Details json.RawMessage `json:"details"`
		Errors  json.RawMessage `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return apiErr
	}
	apiErr.Message = payload.Message
	apiErr.Details = rawText(payload.Details)
	apiErr.Errors = errorValues(payload.Errors)
	return apiErr
}

func rawText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// errorValues flattens the "errors" member, which is either a list or an object keyed by field.
func errorValues(raw json.RawMessage) []string {
	if len(raw) == 0 || string(raw) == "null" {
		return nil
	}

	var list []any
	if err := json.Unmarshal(raw, &list); err == nil {
		values := make([]string, 0, len(list))
		for _, v := range list {
			if s := errorText(v); s != "" {
				values = append(values, s)
			}
		}
		return values
	}

	var byField map[string]any
	if err := json.Unmarshal(raw, &byField); err == nil {
		keys := make([]string, 0, len(byField))
		for k := range byField {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		values := make([]string, 0, len(keys))
		for _, k := range keys {
			if s := errorText(byField[k]); s != "" {
				values = append(values, s)
			}
		}
		return values
	}
	return nil
}

func errorText(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case map[string]any:
		for _, key := range []string{"message", "msg"} {
			if s, ok := val[key].(string); ok {
				return s
			}
		}
	case nil:
		return ""
	}
	return fmt.Sprint(v)
}
