// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package server

import (
	"context"
	"net/http"
	"testing"

	"github.com/fugitivexyz/jira-bug-mointor/model"
	"github.com/jarcoal/httpmock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jiraURL = "https://acme.atlassian.net"

func TestJiraClient(t *testing.T) {
	mock := httpmock.NewMockTransport()
	factory := NewJiraClientFactory(mock, 5)
	client := factory(&validCredentials)

	t.Run("Should search with expansions and basic auth", func(t *testing.T) {
		mock.RegisterResponder(http.MethodGet, jiraURL+"/rest/api/3/search",
			func(req *http.Request) (*http.Response, error) {
				user, pass, ok := req.BasicAuth()
				require.True(t, ok)
				assert.Equal(t, "dev@acme.io", user)
				assert.Equal(t, "secret", pass)

				query := req.URL.Query()
				assert.Equal(t, "type = Bug", query.Get("jql"))
				assert.Equal(t, searchExpand, query.Get("expand"))
				assert.Equal(t, "summary,issuelinks", query.Get("fields"))
				assert.Equal(t, "50", query.Get("maxResults"))
				assert.Empty(t, query.Get("startAt"))
				return httpmock.NewStringResponse(http.StatusOK, `{"total":1,"issues":[{"key":"WEB-1"}]}`), nil
			})

		result, err := client.Search(context.Background(), model.SearchOptions{
			JQL:        "type = Bug",
			Fields:     []string{"summary", "issuelinks"},
			MaxResults: 50,
		})
		require.NoError(t, err)
		assert.Equal(t, 1, result.Total)
		assert.Equal(t, "WEB-1", result.Issues[0].Key)
	})

	t.Run("Should extract the first Jira error message", func(t *testing.T) {
		mock.RegisterResponder(http.MethodGet, jiraURL+"/rest/api/3/issue/WEB-404",
			httpmock.NewStringResponder(http.StatusNotFound, `{"errorMessages":["Issue does not exist","second"],"errors":{}}`))

		_, err := client.GetIssue(context.Background(), "WEB-404")
		var jiraErr *JiraError
		require.True(t, errors.As(err, &jiraErr))
		assert.Equal(t, http.StatusNotFound, jiraErr.StatusCode)
		assert.Equal(t, "Issue does not exist", jiraErr.Message)
	})

	t.Run("Should fall back to the status when the body has no messages", func(t *testing.T) {
		mock.RegisterResponder(http.MethodGet, jiraURL+"/rest/api/2/myself",
			httpmock.NewStringResponder(http.StatusUnauthorized, `<html>Unauthorized</html>`))

		_, err := client.Myself(context.Background(), 2)
		var jiraErr *JiraError
		require.True(t, errors.As(err, &jiraErr))
		assert.Equal(t, "Jira API error: 401 Unauthorized", jiraErr.Message)

		mock.RegisterResponder(http.MethodGet, jiraURL+"/rest/api/3/project/WEB",
			httpmock.NewStringResponder(http.StatusForbidden, `{"errorMessages":[]}`))
		_, err = client.GetProject(context.Background(), "WEB")
		require.True(t, errors.As(err, &jiraErr))
		assert.Equal(t, "Jira API error: 403 Forbidden", jiraErr.Message)
	})

	t.Run("Should use bearer auth for access tokens", func(t *testing.T) {
		mock.RegisterResponder(http.MethodGet, jiraURL+"/rest/api/3/myself",
			func(req *http.Request) (*http.Response, error) {
				assert.Equal(t, "Bearer oauth-token", req.Header.Get("Authorization"))
				return httpmock.NewStringResponse(http.StatusOK, `{"accountId":"abc","displayName":"Dana Dev"}`), nil
			})

		bearer := factory(&model.Credentials{InstanceURL: jiraURL, AccessToken: "oauth-token"})
		user, err := bearer.Myself(context.Background(), 3)
		require.NoError(t, err)
		assert.Equal(t, "Dana Dev", user.DisplayName)
	})

	t.Run("Should report malformed documents", func(t *testing.T) {
		mock.RegisterResponder(http.MethodGet, jiraURL+"/rest/api/3/issue/WEB-2",
			httpmock.NewStringResponder(http.StatusOK, `{"key":`))

		_, err := client.GetIssue(context.Background(), "WEB-2")
		require.Error(t, err)
		var jiraErr *JiraError
		assert.False(t, errors.As(err, &jiraErr))
	})
}

func TestRateLimitTransport(t *testing.T) {
	mock := httpmock.NewMockTransport()
	mock.RegisterResponder(http.MethodGet, jiraURL+"/rest/api/3/myself", httpmock.NewStringResponder(http.StatusOK, `{}`))

	client := &http.Client{Transport: NewRateLimitTransport(1, 1, mock)}

	req, err := http.NewRequest(http.MethodGet, jiraURL+"/rest/api/3/myself", nil)
	require.NoError(t, err)
	resp, err := client.Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = client.Do(req.WithContext(ctx))
	require.Error(t, err)
	assert.Equal(t, 1, mock.GetTotalCallCount())
}
