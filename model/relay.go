// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

// SearchRequest is the body of a relay issue search.
type SearchRequest struct {
	Credentials
	JQL        string   `json:"jql"`
	Fields     []string `json:"fields,omitempty"`
	MaxResults int      `json:"maxResults,omitempty"`
	StartAt    int      `json:"startAt,omitempty"`
}

// SearchOptions are the upstream search parameters.
type SearchOptions struct {
	JQL        string
	Fields     []string
	StartAt    int
	MaxResults int
}

// DashboardRequest asks the relay to build a dashboard server side. JQL wins
// over IssueType when both are set.
type DashboardRequest struct {
	Credentials
	JQL       string `json:"jql,omitempty"`
	IssueType string `json:"issueType,omitempty"`
	Project   string `json:"project,omitempty"`
}

type ConnectionTestResult struct {
	Success bool `json:"success"`
}

type PingResponse struct {
	Version string `json:"version"`
}
