// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

import (
	"encoding/json"
	"io"
)

// Jira custom field ids used by the dashboard.
const (
	FieldSprint = "customfield_10020"
	FieldTeam   = "customfield_10014"
)

// RawIssue is an issue record as returned by the Jira REST API.
type RawIssue struct {
	ID     string    `json:"id,omitempty"`
	Key    string    `json:"key"`
	Self   string    `json:"self,omitempty"`
	Fields RawFields `json:"fields"`
}

// RawFields holds the subset of issue fields requested by the relay.
// Custom fields are kept raw because their shape differs between instances.
type RawFields struct {
	Summary     string          `json:"summary"`
	Description json.RawMessage `json:"description,omitempty"`
	Status      *RawNamed       `json:"status,omitempty"`
	Priority    *RawNamed       `json:"priority,omitempty"`
	Created     string          `json:"created,omitempty"`
	Updated     string          `json:"updated,omitempty"`
	Project     *RawProject     `json:"project,omitempty"`
	Sprints     json.RawMessage `json:"customfield_10020,omitempty"`
	Team        json.RawMessage `json:"customfield_10014,omitempty"`
	Assignee    *RawUser        `json:"assignee,omitempty"`
	Reporter    *RawUser        `json:"reporter,omitempty"`
	IssueLinks  []RawIssueLink  `json:"issuelinks,omitempty"`
	IssueType   *RawIssueType   `json:"issuetype,omitempty"`
}

type RawNamed struct {
	ID   string `json:"id,omitempty"`
	Name string `json:"name"`
}

type RawProject struct {
	ID   string `json:"id,omitempty"`
	Key  string `json:"key"`
	Name string `json:"name"`
}

type RawUser struct {
	AccountID    string            `json:"accountId,omitempty"`
	DisplayName  string            `json:"displayName"`
	EmailAddress string            `json:"emailAddress,omitempty"`
	AvatarURLs   map[string]string `json:"avatarUrls,omitempty"`
}

type RawIssueType struct {
	ID          string `json:"id,omitempty"`
	Name        string `json:"name"`
	IconURL     string `json:"iconUrl,omitempty"`
	Description string `json:"description,omitempty"`
	Subtask     bool   `json:"subtask,omitempty"`
}

// RawIssueLink is one entry of the issuelinks field. Exactly one of
// InwardIssue and OutwardIssue is set by Jira.
type RawIssueLink struct {
	ID           string       `json:"id,omitempty"`
	Type         RawLinkType  `json:"type"`
	InwardIssue  *RawIssueRef `json:"inwardIssue,omitempty"`
	OutwardIssue *RawIssueRef `json:"outwardIssue,omitempty"`
}

type RawLinkType struct {
	ID      string `json:"id,omitempty"`
	Name    string `json:"name"`
	Inward  string `json:"inward"`
	Outward string `json:"outward"`
}

type RawIssueRef struct {
	ID  string `json:"id,omitempty"`
	Key string `json:"key"`
}

type RawSprint struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	State string `json:"state"`
}

// SearchResult is the Jira JQL search response.
type SearchResult struct {
	StartAt    int        `json:"startAt"`
	MaxResults int        `json:"maxResults"`
	Total      int        `json:"total"`
	Issues     []RawIssue `json:"issues"`
}

// RawProjectMeta is the project metadata document that carries issue types.
type RawProjectMeta struct {
	ID         string         `json:"id,omitempty"`
	Key        string         `json:"key"`
	Name       string         `json:"name"`
	IssueTypes []RawIssueType `json:"issueTypes"`
}

// JiraErrorBody is the error document Jira returns on failures.
type JiraErrorBody struct {
	ErrorMessages []string          `json:"errorMessages"`
	Errors        map[string]string `json:"errors,omitempty"`
}

func RawIssueFromJSON(data io.Reader) (*RawIssue, error) {
	var issue RawIssue
	if err := json.NewDecoder(data).Decode(&issue); err != nil {
		return nil, err
	}
	return &issue, nil
}

func SearchResultFromJSON(data io.Reader) (*SearchResult, error) {
	var result SearchResult
	if err := json.NewDecoder(data).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}
