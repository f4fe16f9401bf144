// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/ioutil"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/pkg/errors"
	"golang.org/x/oauth2"
)

const searchExpand = "names,sprint,issuelinks"

//go:generate mockgen -destination=mocks/jira_client.go -package=mocks github.com/fugitivexyz/jira-bug-mointor/server JiraClient

// JiraClient is the upstream Jira REST API as used by the relay.
type JiraClient interface {
	Search(ctx context.Context, opts model.SearchOptions) (*model.SearchResult, error)
	GetIssue(ctx context.Context, key string) (*model.RawIssue, error)
	Myself(ctx context.Context, apiVersion int) (*model.RawUser, error)
	GetProject(ctx context.Context, key string) (*model.RawProjectMeta, error)
}

// JiraClientFactory returns a client acting with the given credentials.
type JiraClientFactory func(credentials *model.Credentials) JiraClient

// JiraError is a failed upstream response.
type JiraError struct {
	StatusCode int
	Message    string
}

func (e *JiraError) Error() string {
	return e.Message
}

func newJiraError(resp *http.Response) *JiraError {
	jiraErr := &JiraError{
		StatusCode: resp.StatusCode,
		Message:    fmt.Sprintf("Jira API error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode)),
	}
	var body model.JiraErrorBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&body); err == nil && len(body.ErrorMessages) > 0 && body.ErrorMessages[0] != "" {
		jiraErr.Message = body.ErrorMessages[0]
	}
	return jiraErr
}

// basicAuthTransport adds the email and API token of one user.
type basicAuthTransport struct {
	email    string
	apiToken string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req2 := req.Clone(req.Context())
	req2.SetBasicAuth(t.email, t.apiToken)
	return t.base.RoundTrip(req2)
}

// NewJiraClientFactory builds clients sharing the base transport. Bearer
// authentication is used when the credentials carry an access token.
func NewJiraClientFactory(base http.RoundTripper, timeoutSeconds int) JiraClientFactory {
	return func(credentials *model.Credentials) JiraClient {
		var transport http.RoundTripper
		if credentials.AccessToken != "" {
			transport = &oauth2.Transport{
				Source: oauth2.StaticTokenSource(&oauth2.Token{AccessToken: credentials.AccessToken}),
				Base:   base,
			}
		} else {
			transport = &basicAuthTransport{email: credentials.Email, apiToken: credentials.APIToken, base: base}
		}
		return &jiraClient{
			baseURL: credentials.BaseURL(),
			client:  &http.Client{Transport: transport, Timeout: timeoutDuration(timeoutSeconds)},
		}
	}
}

type jiraClient struct {
	baseURL string
	client  *http.Client
}

func (c *jiraClient) Search(ctx context.Context, opts model.SearchOptions) (*model.SearchResult, error) {
	params := url.Values{}
	params.Set("jql", opts.JQL)
	params.Set("expand", searchExpand)
	if len(opts.Fields) > 0 {
		params.Set("fields", strings.Join(opts.Fields, ","))
	}
	if opts.StartAt > 0 {
		params.Set("startAt", strconv.Itoa(opts.StartAt))
	}
	if opts.MaxResults > 0 {
		params.Set("maxResults", strconv.Itoa(opts.MaxResults))
	}

	var result model.SearchResult
	if err := c.get(ctx, "/rest/api/3/search?"+params.Encode(), &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *jiraClient) GetIssue(ctx context.Context, key string) (*model.RawIssue, error) {
	var issue model.RawIssue
	if err := c.get(ctx, "/rest/api/3/issue/"+url.PathEscape(key), &issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func (c *jiraClient) Myself(ctx context.Context, apiVersion int) (*model.RawUser, error) {
	var user model.RawUser
	if err := c.get(ctx, fmt.Sprintf("/rest/api/%d/myself", apiVersion), &user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (c *jiraClient) GetProject(ctx context.Context, key string) (*model.RawProjectMeta, error) {
	var project model.RawProjectMeta
	if err := c.get(ctx, "/rest/api/3/project/"+url.PathEscape(key), &project); err != nil {
		return nil, err
	}
	return &project, nil
}

func (c *jiraClient) get(ctx context.Context, path string, out interface{}) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return errors.Wrap(err, "failed to create upstream request")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "upstream request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newJiraError(resp)
	}

	data, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "failed to read upstream response")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrap(err, "failed to decode upstream response")
	}
	return nil
}
