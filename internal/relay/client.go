// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

// Package relay is the client side of the Jira relay service. Every call is a
// single round trip; failures surface as *Error with the relay status code.
package relay

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/pkg/errors"
)

// Client talks to a relay on behalf of one set of credentials.
type Client struct {
	baseURL     string
	credentials model.Credentials
	httpClient  *http.Client
}

// NewClient returns a relay client. A nil httpClient uses NewHTTPClient
// without cache or metrics.
func NewClient(baseURL string, credentials model.Credentials, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = NewHTTPClient(0, nil)
	}
	return &Client{
		baseURL:     strings.TrimSuffix(baseURL, "/"),
		credentials: credentials,
		httpClient:  httpClient,
	}
}

// Search runs jql through the relay and returns the raw issues of the page.
func (c *Client) Search(ctx context.Context, jql string, fields []string) ([]model.RawIssue, error) {
	body := model.SearchRequest{
		Credentials: c.credentials,
		JQL:         jql,
		Fields:      fields,
	}
	var result model.SearchResult
	if err := c.do(ctx, http.MethodPost, "/issues/search", body, &result); err != nil {
		return nil, errors.Wrap(err, "failed to search issues")
	}
	return result.Issues, nil
}

// Get fetches one issue by key.
func (c *Client) Get(ctx context.Context, key string) (*model.RawIssue, error) {
	var issue model.RawIssue
	if err := c.do(ctx, http.MethodGet, "/issues/"+url.PathEscape(key), nil, &issue); err != nil {
		return nil, errors.Wrapf(err, "failed to get issue %s", key)
	}
	return &issue, nil
}

// WhoAmI returns the profile of the authenticated user.
func (c *Client) WhoAmI(ctx context.Context) (*model.UserProfile, error) {
	var user model.RawUser
	if err := c.do(ctx, http.MethodGet, "/whoami", nil, &user); err != nil {
		return nil, errors.Wrap(err, "failed to get current user")
	}
	return model.UserProfileFromRaw(&user), nil
}

// TestConnection checks that the credentials are accepted by Jira.
func (c *Client) TestConnection(ctx context.Context) error {
	var result model.ConnectionTestResult
	if err := c.do(ctx, http.MethodPost, "/connection/test", c.credentials, &result); err != nil {
		return errors.Wrap(err, "connection test failed")
	}
	if !result.Success {
		return &Error{StatusCode: http.StatusOK, Message: "connection test was not successful"}
	}
	return nil
}

// IssueTypes lists the issue types of a project in display order.
func (c *Client) IssueTypes(ctx context.Context, projectKey string) ([]model.IssueTypeInfo, error) {
	var types []model.IssueTypeInfo
	path := fmt.Sprintf("/projects/%s/issue-types", url.PathEscape(projectKey))
	if err := c.do(ctx, http.MethodPost, path, c.credentials, &types); err != nil {
		return nil, errors.Wrapf(err, "failed to get issue types for %s", projectKey)
	}
	return types, nil
}

// Dashboard asks the relay to build the whole dashboard server side.
func (c *Client) Dashboard(ctx context.Context, request model.DashboardRequest) (*model.Dashboard, error) {
	request.Credentials = c.credentials
	var dashboard model.Dashboard
	if err := c.do(ctx, http.MethodPost, "/dashboard", request, &dashboard); err != nil {
		return nil, errors.Wrap(err, "failed to build dashboard")
	}
	return &dashboard, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload, out interface{}) error {
	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return errors.Wrap(err, "failed to encode request")
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "failed to create request")
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	} else {
		c.credentials.SetHeaders(req.Header)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, resp.Body)
	}

	// The body is read to EOF so the cache transport stores it.
	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read response")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to decode response")
	}
	return nil
}
