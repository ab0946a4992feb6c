package instagram

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	errs "scanagram/pkg/errors"
	"scanagram/pkg/logger"
)

// Client talks to Instagram's web API. It performs single requests only;
// pacing and retries belong to the caller.
type Client struct {
	httpClient *http.Client
	headers    map[string]string
	baseURL    string
	logger     logger.Logger
}

// NewClient creates a new Instagram API client
func NewClient(timeout time.Duration, log logger.Logger) *Client {
	if log == nil {
		log = logger.GetLogger()
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		headers: map[string]string{
			"User-Agent":      "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			"Accept":          "*/*",
			"Accept-Language": "en-US,en;q=0.9",
			"X-IG-App-ID":     "936619743392459",
		},
		baseURL: BaseURL,
		logger:  log,
	}
}

// SetHeader sets a custom header for the client
func (c *Client) SetHeader(key, value string) {
	c.headers[key] = value
}

// SetHeaders sets multiple headers at once
func (c *Client) SetHeaders(headers map[string]string) {
	for key, value := range headers {
		c.headers[key] = value
	}
}

// SetBaseURL overrides the API base URL (used by tests)
func (c *Client) SetBaseURL(baseURL string) {
	c.baseURL = baseURL
}

// GetJSON fetches a URL and decodes the JSON response into target. HTTP
// failures are mapped onto the error taxonomy so retry classification works.
func (c *Client) GetJSON(requestURL string, target interface{}) error {
	req, err := http.NewRequest(http.MethodGet, requestURL, nil)
	if err != nil {
		return &errs.Error{Type: errs.ErrorTypeUnknown, Message: fmt.Sprintf("failed to create request: %v", err), Code: 0}
	}
	for key, value := range c.headers {
		req.Header.Set(key, value)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	duration := time.Since(start)

	if err != nil {
		c.logger.ErrorWithFields("HTTP request failed", map[string]interface{}{
			"url":      requestURL,
			"error":    err.Error(),
			"duration": duration,
		})
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: fmt.Sprintf("network error: %v", err), Code: 0}
	}
	defer resp.Body.Close()

	c.logger.DebugWithFields("HTTP request completed", map[string]interface{}{
		"url":      requestURL,
		"status":   resp.StatusCode,
		"duration": duration,
	})

	if resp.StatusCode != http.StatusOK {
		return statusError(resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return &errs.Error{Type: errs.ErrorTypeNetwork, Message: fmt.Sprintf("failed to read response: %v", err), Code: 0}
	}

	if err := json.Unmarshal(body, target); err != nil {
		return &errs.Error{Type: errs.ErrorTypeParsing, Message: fmt.Sprintf("failed to parse response: %v", err), Code: resp.StatusCode}
	}

	return nil
}

// statusError converts a non-200 status into a typed error
func statusError(statusCode int) *errs.Error {
	var message string
	switch statusCode {
	case http.StatusUnauthorized:
		message = "authentication required"
	case http.StatusForbidden:
		message = "access denied"
	case http.StatusNotFound:
		message = "resource not found"
	case http.StatusTooManyRequests:
		message = "rate limited by remote"
	default:
		message = fmt.Sprintf("unexpected status %d", statusCode)
	}
	return &errs.Error{Type: errs.TypeForStatusCode(statusCode), Message: message, Code: statusCode}
}

// FetchProfile fetches a user's profile metadata
func (c *Client) FetchProfile(username string) (*User, error) {
	username = SanitizeUsername(username)
	if !IsValidUsername(username) {
		return nil, &errs.Error{Type: errs.ErrorTypeNotFound, Message: fmt.Sprintf("invalid username: %s", username), Code: 0}
	}

	params := url.Values{}
	params.Set("username", username)

	var response ProfileResponse
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, ProfileEndpoint, params.Encode())
	if err := c.GetJSON(requestURL, &response); err != nil {
		return nil, err
	}

	if response.RequiresToLogin {
		return nil, &errs.Error{Type: errs.ErrorTypeAuth, Message: "login required to view this profile", Code: 401}
	}
	if response.Data.User.ID == "" {
		return nil, &errs.Error{Type: errs.ErrorTypeNotFound, Message: fmt.Sprintf("profile %q does not exist", username), Code: 404}
	}

	return &response.Data.User, nil
}

// FetchMedia fetches one page of a user's timeline media
func (c *Client) FetchMedia(userID string, after string, limit int) (*TimelineMedia, error) {
	if limit <= 0 {
		limit = DefaultMediaLimit
	} else if limit > MaxMediaLimit {
		limit = MaxMediaLimit
	}

	params := url.Values{}
	params.Set("query_hash", MediaQueryHash)
	params.Set("variables", fmt.Sprintf(`{"id":"%s","first":%d,"after":"%s"}`, userID, limit, after))

	var response MediaResponse
	requestURL := fmt.Sprintf("%s%s?%s", c.baseURL, MediaEndpoint, params.Encode())
	if err := c.GetJSON(requestURL, &response); err != nil {
		return nil, err
	}

	return &response.Data.User.EdgeOwnerToTimelineMedia, nil
}
