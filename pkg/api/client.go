package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	cblog "github.com/charmbracelet/log"
	appcontext "github.com/sessionaut/sessionaut/pkg/context"
	apperrors "github.com/sessionaut/sessionaut/pkg/errors"
	"github.com/sessionaut/sessionaut/pkg/model"
	"github.com/sessionaut/sessionaut/pkg/retry"
)

// Client is an HTTP client for the cluster manager API. All requests are
// signed with the configured keypair.
type Client struct {
	baseURL    string
	signer     *Signer
	domain     string
	group      string
	httpClient *http.Client
	insecure   bool
}

var customHTTPClient *http.Client

// SetHTTPClient sets a custom HTTP client to be used by all new Client instances
func SetHTTPClient(client *http.Client) {
	customHTTPClient = client
}

// NewClient creates a new manager API client for the given server.
func NewClient(server *model.Server) *Client {
	var httpClient *http.Client

	if customHTTPClient != nil {
		// Clone the custom client to avoid modifying the shared instance
		httpClient = &http.Client{
			Transport:     customHTTPClient.Transport,
			CheckRedirect: customHTTPClient.CheckRedirect,
			Jar:           customHTTPClient.Jar,
			Timeout:       customHTTPClient.Timeout,
		}

		if server.Insecure {
			if transport, ok := httpClient.Transport.(*http.Transport); ok {
				clonedTransport := transport.Clone()
				if clonedTransport.TLSClientConfig == nil {
					clonedTransport.TLSClientConfig = &tls.Config{}
				} else {
					clonedTransport.TLSClientConfig = clonedTransport.TLSClientConfig.Clone()
				}
				clonedTransport.TLSClientConfig.InsecureSkipVerify = true
				httpClient.Transport = clonedTransport
			}
		}
	} else {
		// Connection establishment should fail fast; request-specific
		// timing comes from context deadlines.
		transport := &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   2 * time.Second,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			TLSHandshakeTimeout:   3 * time.Second,
			ResponseHeaderTimeout: 5 * time.Second,
			IdleConnTimeout:       30 * time.Second,
			MaxIdleConns:          10,
			MaxIdleConnsPerHost:   2,
		}

		if server.Insecure {
			transport.TLSClientConfig = &tls.Config{
				InsecureSkipVerify: true,
			}
		}

		httpClient = &http.Client{
			Transport: transport,
			// No client timeout; contexts carry per-request deadlines.
		}
	}

	return &Client{
		baseURL:    strings.TrimRight(server.Endpoint, "/"),
		signer:     NewSigner(server.AccessKey, server.SecretKey, server.APIVersion),
		domain:     server.Domain,
		group:      server.Group,
		httpClient: httpClient,
		insecure:   server.Insecure,
	}
}

// Domain returns the domain name requests are scoped to.
func (c *Client) Domain() string { return c.domain }

// Group returns the project group requests are scoped to.
func (c *Client) Group() string { return c.group }

// APIVersion returns the manager API revision the client advertises.
func (c *Client) APIVersion() string { return c.signer.APIVersion }

func (c *Client) buildURL(path string) string {
	return c.baseURL + path
}

// Get performs a GET request with retry logic
func (c *Client) Get(ctx context.Context, path string) ([]byte, error) {
	ctx, cancel := appcontext.WithAPITimeout(ctx)
	defer cancel()

	var result []byte
	err := retry.NetworkOperation(ctx, fmt.Sprintf("GET %s", path), func(attempt int) error {
		var opErr error
		result, opErr = c.request(ctx, "GET", path, nil)
		return opErr
	})

	return result, err
}

// Post performs a POST request with retry logic
func (c *Client) Post(ctx context.Context, path string, body interface{}) ([]byte, error) {
	ctx, cancel := appcontext.WithAPITimeout(ctx)
	defer cancel()

	var result []byte
	err := retry.NetworkOperation(ctx, fmt.Sprintf("POST %s", path), func(attempt int) error {
		var opErr error
		result, opErr = c.request(ctx, "POST", path, body)
		return opErr
	})

	return result, err
}

// Put performs a PUT request with retry logic
func (c *Client) Put(ctx context.Context, path string, body interface{}) ([]byte, error) {
	ctx, cancel := appcontext.WithAPITimeout(ctx)
	defer cancel()

	var result []byte
	err := retry.NetworkOperation(ctx, fmt.Sprintf("PUT %s", path), func(attempt int) error {
		var opErr error
		result, opErr = c.request(ctx, "PUT", path, body)
		return opErr
	})

	return result, err
}

// Patch performs a PATCH request with retry logic
func (c *Client) Patch(ctx context.Context, path string, body interface{}) ([]byte, error) {
	ctx, cancel := appcontext.WithAPITimeout(ctx)
	defer cancel()

	var result []byte
	err := retry.NetworkOperation(ctx, fmt.Sprintf("PATCH %s", path), func(attempt int) error {
		var opErr error
		result, opErr = c.request(ctx, "PATCH", path, body)
		return opErr
	})

	return result, err
}

// Delete performs a DELETE request with retry logic. Some manager
// endpoints accept a JSON body on DELETE; pass nil when not needed.
func (c *Client) Delete(ctx context.Context, path string, body interface{}) ([]byte, error) {
	ctx, cancel := appcontext.WithAPITimeout(ctx)
	defer cancel()

	var result []byte
	err := retry.NetworkOperation(ctx, fmt.Sprintf("DELETE %s", path), func(attempt int) error {
		var opErr error
		result, opErr = c.request(ctx, "DELETE", path, body)
		return opErr
	})

	return result, err
}

// Stream performs a streaming GET request for Server-Sent Events.
// The stream has no deadline of its own; the caller's context governs it.
func (c *Client) Stream(ctx context.Context, path string) (*StreamResponse, error) {
	url := c.buildURL(path)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "REQUEST_CREATE_FAILED",
			"Failed to create stream request").
			WithContext("url", url).
			WithUserAction("Check the endpoint URL and try again")
	}

	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")
	c.setCommonHeaders(req)
	c.signer.Sign(req, nil)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if timeoutErr := appcontext.HandleTimeout(ctx, appcontext.OpLogs); timeoutErr != nil {
			return nil, timeoutErr.WithContext("url", url)
		}

		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "STREAM_REQUEST_FAILED",
			"Stream request failed").
			WithContext("url", url).
			AsRecoverable().
			WithUserAction("Check your network connection and the manager status")
	}

	if resp.StatusCode >= 400 {
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		return nil, c.createAPIError(resp.StatusCode, string(body), url).
			WithContext("method", "GET").
			WithContext("path", path)
	}

	return &StreamResponse{
		Body:    resp.Body,
		Headers: resp.Header,
	}, nil
}

func (c *Client) setCommonHeaders(req *http.Request) {
	if c.domain != "" {
		req.Header.Set("X-BackendAI-Domain", c.domain)
	}
}

// request performs the actual HTTP request
func (c *Client) request(ctx context.Context, method, path string, body interface{}) ([]byte, error) {
	url := c.buildURL(path)

	var jsonData []byte
	var reqBody io.Reader
	if body != nil {
		var err error
		jsonData, err = json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(err, apperrors.ErrorValidation, "JSON_MARSHAL_FAILED",
				"Failed to marshal request body").
				WithContext("method", method).
				WithContext("path", path).
				WithUserAction("Check the request data format")
		}
		reqBody = bytes.NewReader(jsonData)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reqBody)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "REQUEST_CREATE_FAILED",
			"Failed to create HTTP request").
			WithContext("method", method).
			WithContext("url", url).
			WithUserAction("Check the endpoint URL and try again")
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	c.setCommonHeaders(req)
	c.signer.Sign(req, jsonData)

	if jsonData != nil && cblog.GetLevel() <= cblog.DebugLevel {
		cblog.With("component", "api").Debug("request body",
			"method", method, "path", path, "body", ScrubSecrets(string(jsonData)))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		// Context errors take priority over transport errors.
		if ctx.Err() == context.DeadlineExceeded {
			return nil, apperrors.TimeoutError("REQUEST_TIMEOUT",
				"Request timed out - server may be unreachable").
				WithContext("method", method).
				WithContext("url", url).
				WithUserAction("Check your connection to the manager and try again")
		}

		if ctx.Err() == context.Canceled {
			return nil, apperrors.New(apperrors.ErrorInternal, "REQUEST_CANCELLED",
				"Request was cancelled").
				WithContext("method", method).
				WithContext("url", url)
		}

		if netErr, ok := err.(net.Error); ok && netErr.Timeout() {
			return nil, apperrors.TimeoutError("NETWORK_TIMEOUT",
				"Network connection timed out").
				WithContext("method", method).
				WithContext("url", url).
				WithUserAction("Server may be unreachable - check your connection")
		}

		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "HTTP_REQUEST_FAILED",
			"HTTP request failed").
			WithContext("method", method).
			WithContext("url", url).
			AsRecoverable().
			WithUserAction("Check your network connection and the manager status")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.ErrorNetwork, "RESPONSE_READ_FAILED",
			"Failed to read response body").
			WithContext("method", method).
			WithContext("url", url).
			WithUserAction("Try the request again")
	}

	if resp.StatusCode >= 400 {
		cblog.With("component", "api", "op", "http").Error("http error",
			"method", method,
			"url", url,
			"status", resp.StatusCode,
			"len", len(respBody),
		)
		// Body content may carry details; truncate to keep logs sane.
		bodyStr := string(respBody)
		const maxLen = 2048
		if len(bodyStr) > maxLen {
			bodyStr = bodyStr[:maxLen] + "…"
		}
		cblog.With("component", "api").Debug("response body", "body", bodyStr)

		return nil, c.createAPIError(resp.StatusCode, string(respBody), url).
			WithContext("method", method).
			WithContext("path", path)
	}

	return respBody, nil
}

// managerError is the problem-details shape the manager returns for
// failed requests.
type managerError struct {
	Type  string `json:"type"`
	Title string `json:"title"`
	Msg   string `json:"msg"`
}

// parseManagerError attempts to parse the manager's error body.
// Returns nil if the body is not in the expected shape.
func parseManagerError(responseBody string) *managerError {
	if responseBody == "" {
		return nil
	}
	var mgrErr managerError
	if err := json.Unmarshal([]byte(responseBody), &mgrErr); err != nil {
		return nil
	}
	if mgrErr.Title != "" || mgrErr.Msg != "" {
		return &mgrErr
	}
	return nil
}

// createAPIError creates a structured API error based on status code and response
func (c *Client) createAPIError(statusCode int, responseBody, url string) *apperrors.ConsoleError {
	var category apperrors.ErrorCategory
	var code string
	var message string
	var userAction string
	var recoverable bool

	mgrErr := parseManagerError(responseBody)

	switch statusCode {
	case 401:
		category = apperrors.ErrorAuth
		code = "UNAUTHORIZED"
		message = "Authentication required or keypair rejected"
		userAction = "Run 'sessionaut config' to update your keypair"
		recoverable = false

	case 403:
		category = apperrors.ErrorPermission
		code = "FORBIDDEN"
		message = "Insufficient permissions for this operation"
		userAction = "Check your keypair's resource policy and role"
		recoverable = false

	case 404:
		category = apperrors.ErrorAPI
		code = "NOT_FOUND"
		message = "Requested resource not found"
		userAction = "Verify the resource exists and the path is correct"
		recoverable = false

	case 409:
		category = apperrors.ErrorValidation
		code = "CONFLICT"
		message = "Request conflicts with current state"
		userAction = "Check the current state and adjust your request"
		recoverable = true

	case 412:
		category = apperrors.ErrorQuota
		code = "QUOTA_EXCEEDED"
		message = "Resource policy limit reached"
		userAction = "Terminate idle sessions or ask an admin to raise your quota"
		recoverable = false

	case 429:
		category = apperrors.ErrorAPI
		code = "RATE_LIMITED"
		message = "Too many requests - rate limited"
		userAction = "Wait a moment and try again"
		recoverable = true

	case 500, 502, 503, 504:
		category = apperrors.ErrorAPI
		code = "SERVER_ERROR"
		message = "Cluster manager error"
		userAction = "Check the manager status and try again"
		recoverable = true

	default:
		category = apperrors.ErrorAPI
		code = "API_ERROR"
		message = fmt.Sprintf("API request failed with status %d", statusCode)
		userAction = "Check the request and try again"
		recoverable = true
	}

	if mgrErr != nil {
		// Prefer the manager's own message; it is usually more specific.
		mgrMessage := mgrErr.Title
		if mgrErr.Msg != "" {
			mgrMessage = mgrErr.Msg
		}
		if mgrMessage != "" {
			message = mgrMessage
			cblog.With("component", "api").Debug("parsed manager error",
				"type", mgrErr.Type, "message", mgrMessage, "statusCode", statusCode)
		}
	} else if responseBody != "" && len(responseBody) < 500 {
		// Fallback: check for common error patterns in raw body
		lower := strings.ToLower(responseBody)
		if strings.Contains(lower, "unauthorized") ||
			strings.Contains(lower, "invalid signature") ||
			strings.Contains(lower, "authorization") {
			category = apperrors.ErrorAuth
			code = "AUTHENTICATION_FAILED"
			userAction = "Run 'sessionaut config' to update your keypair"
		}
	}

	err := apperrors.New(category, code, message).
		WithSeverity(apperrors.SeverityMedium).
		WithDetails(responseBody).
		WithContext("statusCode", statusCode).
		WithContext("url", url).
		WithUserAction(userAction)

	if recoverable {
		err.AsRecoverable()
	}

	return err
}
