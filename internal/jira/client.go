package jira

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/sprintreport/sprintreport/internal/debug"
	"github.com/sprintreport/sprintreport/internal/telemetry"
)

// DefaultMaxResults caps how many issues one sprint search returns.
const DefaultMaxResults = 1000

// searchPageSize is the page size requested per search call. Jira servers
// clamp larger values, so pagination is driven by the response.
const searchPageSize = 100

const retryMaxElapsed = 30 * time.Second

// APIError is a non-2xx response from the Jira REST API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira API returned %d: %s", e.StatusCode, e.Body)
}

// Client provides HTTP access to a Jira instance.
type Client struct {
	URL        string
	Username   string
	Password   string
	HTTPClient *http.Client

	newBackoff func() backoff.BackOff
}

// NewClient creates a new Jira client.
func NewClient(url, username, password string) *Client {
	return &Client{
		URL:      strings.TrimSuffix(url, "/"),
		Username: username,
		Password: password,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		newBackoff: defaultBackoff,
	}
}

func defaultBackoff() backoff.BackOff {
	// BackOff implementations are stateful; always return a fresh instance.
	bo := backoff.NewExponentialBackOff()
	bo.MaxElapsedTime = retryMaxElapsed
	return bo
}

// SearchIssues runs a JQL search and returns up to maxResults issues in the
// order Jira returned them. Only the named fields are requested; an empty
// list lets the server pick its default set.
func (c *Client) SearchIssues(ctx context.Context, jql string, fields []string, maxResults int) ([]Issue, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	ctx, span := telemetry.Tracer("").Start(ctx, "jira.search",
		trace.WithAttributes(attribute.String("jira.jql", jql), attribute.Int("jira.max_results", maxResults)))
	defer span.End()

	var allIssues []Issue
	startAt := 0
	for len(allIssues) < maxResults {
		params := url.Values{
			"jql":        {jql},
			"startAt":    {strconv.Itoa(startAt)},
			"maxResults": {strconv.Itoa(min(searchPageSize, maxResults-len(allIssues)))},
		}
		if len(fields) > 0 {
			params.Set("fields", strings.Join(fields, ","))
		}

		apiURL := fmt.Sprintf("%s/rest/api/2/search?%s", c.URL, params.Encode())

		body, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "search failed")
			return nil, fmt.Errorf("search issues: %w", err)
		}

		var result searchResult
		if err := json.Unmarshal(body, &result); err != nil {
			return nil, fmt.Errorf("parse search response: %w", err)
		}

		allIssues = append(allIssues, result.Issues...)
		debug.Logf("jira search: %d/%d issues\n", len(allIssues), result.Total)

		if len(result.Issues) == 0 || startAt+len(result.Issues) >= result.Total {
			break
		}
		startAt += len(result.Issues)
	}

	if len(allIssues) > maxResults {
		allIssues = allIssues[:maxResults]
	}
	span.SetAttributes(attribute.Int("jira.issues", len(allIssues)))
	telemetry.Count(ctx, "sprintreport.issues.fetched", int64(len(allIssues)))
	return allIssues, nil
}

// ProjectComponents lists the components defined for a project.
func (c *Client) ProjectComponents(ctx context.Context, project string) ([]ComponentField, error) {
	if project == "" {
		return nil, ErrMissingProject
	}
	apiURL := fmt.Sprintf("%s/rest/api/2/project/%s/components", c.URL, url.PathEscape(project))

	body, err := c.doRequest(ctx, http.MethodGet, apiURL, nil)
	if err != nil {
		return nil, fmt.Errorf("list components of %s: %w", project, err)
	}

	var components []ComponentField
	if err := json.Unmarshal(body, &components); err != nil {
		return nil, fmt.Errorf("parse components response: %w", err)
	}
	return components, nil
}

// doRequest executes an authenticated HTTP request and returns the response
// body. Rate limiting, gateway errors and transport failures are retried
// with exponential backoff; every other failure is returned immediately.
func (c *Client) doRequest(ctx context.Context, method, apiURL string, body []byte) ([]byte, error) {
	if c.URL == "" {
		return nil, fmt.Errorf("jira URL not configured")
	}
	if c.Password == "" {
		return nil, fmt.Errorf("jira password not configured")
	}

	newBackoff := c.newBackoff
	if newBackoff == nil {
		newBackoff = defaultBackoff
	}

	var respBody []byte
	op := func() error {
		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, apiURL, bodyReader)
		if err != nil {
			return backoff.Permanent(fmt.Errorf("create request: %w", err))
		}

		c.setAuth(req)
		req.Header.Set("Accept", "application/json")
		req.Header.Set("User-Agent", "sprintreport/1.0")
		if body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := c.HTTPClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return backoff.Permanent(err)
			}
			debug.Logf("jira request failed, retrying: %v\n", err)
			return err
		}
		defer func() { _ = resp.Body.Close() }()

		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return fmt.Errorf("read response: %w", err)
		}

		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
			if isRetryableStatus(resp.StatusCode) {
				debug.Logf("jira returned %d, retrying\n", resp.StatusCode)
				return apiErr
			}
			return backoff.Permanent(apiErr)
		}

		respBody = data
		return nil
	}

	if err := backoff.Retry(op, backoff.WithContext(newBackoff(), ctx)); err != nil {
		return nil, err
	}
	return respBody, nil
}

func isRetryableStatus(code int) bool {
	switch code {
	case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true
	}
	return false
}

// setAuth sets the appropriate authentication header on the request.
func (c *Client) setAuth(req *http.Request) {
	if c.Username != "" {
		auth := base64.StdEncoding.EncodeToString([]byte(c.Username + ":" + c.Password))
		req.Header.Set("Authorization", "Basic "+auth)
	} else {
		req.Header.Set("Authorization", "Bearer "+c.Password)
	}
}

// IsAuthError reports whether err is a 401/403 response from Jira.
func IsAuthError(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.StatusCode == http.StatusUnauthorized || apiErr.StatusCode == http.StatusForbidden
}
