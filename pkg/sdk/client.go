package sdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"emperror.dev/errors"
)

// Client wraps calls to the flag dashboard backend
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client for the API served at baseURL
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// WithHTTPClient replaces the underlying HTTP client
func (c *Client) WithHTTPClient(httpClient *http.Client) *Client {
	c.httpClient = httpClient
	return c
}

// APIError is returned for every non-2xx response
type APIError struct {
	StatusCode int
	Code       ErrorCode
	Message    string
	Details    []ErrorDetail
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("[BACKEND]: %d %s: %s", e.StatusCode, e.Code, e.Message)
	for _, d := range e.Details {
		msg += fmt.Sprintf("; %s: %s", d.Field, d.Message)
	}
	return msg
}

// IsNotFound reports whether err is a NOT_FOUND API error
func IsNotFound(err error) bool {
	return hasCode(err, CodeNotFound)
}

// IsDuplicateKey reports whether err is a DUPLICATE_KEY API error
func IsDuplicateKey(err error) bool {
	return hasCode(err, CodeDuplicateKey)
}

// IsValidation reports whether err is a VALIDATION_ERROR API error
func IsValidation(err error) bool {
	return hasCode(err, CodeValidation)
}

func hasCode(err error, code ErrorCode) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == code
}

// doJSON is a helper to perform JSON requests to the backend
func (c *Client) doJSON(ctx context.Context, method, path string, in any, out any) error {
	// Create request body if input is provided
	var body io.Reader
	if in != nil {
		b, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewBuffer(b)
	}

	// Create the request
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	// Perform the request
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return decodeError(resp)
	}

	// If no output expected or nothing was sent, return early
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	// Decode the response body into the output struct
	dec := json.NewDecoder(resp.Body)
	return dec.Decode(out)
}

// decodeError reads an error envelope, falling back to the raw body
func decodeError(resp *http.Response) error {
	b, _ := io.ReadAll(resp.Body)

	var envelope ErrorResponse
	if err := json.Unmarshal(b, &envelope); err == nil && envelope.Error.Code != "" {
		return &APIError{
			StatusCode: resp.StatusCode,
			Code:       envelope.Error.Code,
			Message:    envelope.Error.Message,
			Details:    envelope.Error.Details,
		}
	}

	return &APIError{
		StatusCode: resp.StatusCode,
		Code:       ErrorCode(fmt.Sprintf("HTTP_%d", resp.StatusCode)),
		Message:    strings.TrimSpace(string(b)),
	}
}
