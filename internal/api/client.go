package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nhle/sendlite/internal/session"
)

// APIError is a non-2xx response from the campaign service, carrying
// the raw response body.
type APIError struct {
	Status int
	Body   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Status, e.Body)
}

// Client is the single chokepoint for calls to the SendGrid-Lite API.
// It attaches the static service key and, when a session token exists,
// a bearer authorization header. Failures are never retried; each
// caller decides its own policy.
type Client struct {
	baseURL    string
	apiKey     string
	tokenFn    func() string
	httpClient *http.Client
	log        *zap.Logger
}

// NewClient creates an API client for the service at baseURL. tokenFn
// supplies the current session token and may return "" when
// unauthenticated.
func NewClient(baseURL, apiKey string, tokenFn func() string, log *zap.Logger) *Client {
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		tokenFn: tokenFn,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		log: log,
	}
}

// get performs an HTTP GET request.
func (c *Client) get(ctx context.Context, path string, result interface{}) error {
	return c.do(ctx, http.MethodGet, path, nil, result)
}

// post performs an HTTP POST request with an optional JSON body.
func (c *Client) post(ctx context.Context, path string, body, result interface{}) error {
	return c.do(ctx, http.MethodPost, path, body, result)
}

// do is the core method that builds the request, attaches headers, and
// handles JSON (de)serialization. When the response does not declare a
// JSON content type the raw text is assigned to result, which must then
// be a *string.
func (c *Client) do(
	ctx context.Context,
	method string,
	path string,
	body interface{},
	result interface{},
) error {
	url := c.baseURL + path

	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshaling request body: %w", err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.send(req)
	if err != nil {
		return fmt.Errorf("executing request %s %s: %w", method, path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		c.log.Debug("request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
		)
		return err
	}

	if result == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.Contains(contentType, "application/json") {
		text, ok := result.(*string)
		if !ok {
			return fmt.Errorf(
				"unexpected content type %q from %s %s", contentType, method, path,
			)
		}
		*text = string(respBody)
		return nil
	}

	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from %s %s: %w", method, path, err)
	}
	return nil
}

// postMultipart uploads a single file as a multipart form. Used only by
// the CSV import endpoint.
func (c *Client) postMultipart(
	ctx context.Context,
	path string,
	fieldName string,
	fileName string,
	file io.Reader,
	result interface{},
) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	part, err := mw.CreateFormFile(fieldName, fileName)
	if err != nil {
		return fmt.Errorf("creating multipart field: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return fmt.Errorf("copying file into request: %w", err)
	}
	if err := mw.Close(); err != nil {
		return fmt.Errorf("finalizing multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.send(req)
	if err != nil {
		return fmt.Errorf("executing request POST %s: %w", path, err)
	}

	respBody, readErr := io.ReadAll(resp.Body)
	resp.Body.Close()
	if readErr != nil {
		return fmt.Errorf("reading response body: %w", readErr)
	}

	if err := checkStatus(resp.StatusCode, respBody); err != nil {
		return err
	}
	if result == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("unmarshaling response from POST %s: %w", path, err)
	}
	return nil
}

// send attaches the common headers and executes the request.
func (c *Client) send(req *http.Request) (*http.Response, error) {
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if token := c.tokenFn(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return c.httpClient.Do(req)
}

// checkStatus maps a non-2xx status to the error taxonomy: 401 is an
// auth error that forces re-login, everything else an APIError.
func checkStatus(status int, body []byte) error {
	if status >= 200 && status < 300 {
		return nil
	}
	if status == http.StatusUnauthorized {
		return &session.AuthError{
			Message: fmt.Sprintf("authentication failed (401): %s", string(body)),
		}
	}
	return &APIError{Status: status, Body: string(body)}
}
