// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package model

import (
	"encoding/json"
	"io"
	"time"
)

const (
	DefaultTeamName      = "Unassigned"
	DefaultSprintName    = "Backlog"
	DefaultIssueTypeName = "Unknown"
	UnassignedName       = "Unassigned"
)

// Status and priority names the dashboard treats specially.
const (
	StatusDone     = "Done"
	StatusClosed   = "Closed"
	StatusResolved = "Resolved"

	PriorityHighest = "Highest"
	PriorityHigh    = "High"
)

type Person struct {
	Name      string `json:"name" yaml:"name"`
	Email     string `json:"email" yaml:"email"`
	AvatarURL string `json:"avatarUrl,omitempty" yaml:"avatarUrl,omitempty"`
}

// DisplayName returns the person's name, or "Unassigned" for a nil person.
func (p *Person) DisplayName() string {
	if p == nil || p.Name == "" {
		return UnassignedName
	}
	return p.Name
}

type IssueType struct {
	Name    string `json:"name" yaml:"name"`
	IconURL string `json:"iconUrl" yaml:"iconUrl"`
}

// Bug is the normalized dashboard record of one searched issue.
type Bug struct {
	Key          string        `json:"key" yaml:"key"`
	Summary      string        `json:"summary" yaml:"summary"`
	Description  string        `json:"description" yaml:"description"`
	Status       string        `json:"status" yaml:"status"`
	Priority     string        `json:"priority" yaml:"priority"`
	Created      time.Time     `json:"created" yaml:"created"`
	Updated      time.Time     `json:"updated" yaml:"updated"`
	ProjectKey   string        `json:"projectKey" yaml:"projectKey"`
	ProjectName  string        `json:"projectName" yaml:"projectName"`
	TeamName     string        `json:"teamName,omitempty" yaml:"teamName,omitempty"`
	SprintName   string        `json:"sprintName,omitempty" yaml:"sprintName,omitempty"`
	IssueType    IssueType     `json:"issueType" yaml:"issueType"`
	Assignee     *Person       `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	Reporter     *Person       `json:"reporter,omitempty" yaml:"reporter,omitempty"`
	LinkedIssues []LinkedIssue `json:"linkedIssues" yaml:"linkedIssues"`
}

// LinkedIssue is the reduced view of an issue reached through an issue link.
// LinkType is the label of the link as seen from the owning bug.
type LinkedIssue struct {
	Key        string    `json:"key" yaml:"key"`
	Summary    string    `json:"summary" yaml:"summary"`
	Status     string    `json:"status" yaml:"status"`
	Priority   string    `json:"priority" yaml:"priority"`
	TeamName   string    `json:"teamName,omitempty" yaml:"teamName,omitempty"`
	SprintName string    `json:"sprintName,omitempty" yaml:"sprintName,omitempty"`
	Updated    time.Time `json:"updated" yaml:"updated"`
	IssueType  IssueType `json:"issueType" yaml:"issueType"`
	Assignee   *Person   `json:"assignee,omitempty" yaml:"assignee,omitempty"`
	LinkType   string    `json:"linkType" yaml:"linkType"`
}

// IsTerminal reports whether the bug no longer counts as active work.
func (b *Bug) IsTerminal() bool {
	return b.Status == StatusDone || b.Status == StatusClosed
}

// IsResolved reports whether the bug counts towards the resolution time.
func (b *Bug) IsResolved() bool {
	return b.Status == StatusDone || b.Status == StatusResolved || b.Status == StatusClosed
}

func (b *Bug) IsCritical() bool {
	return b.Priority == PriorityHighest || b.Priority == PriorityHigh
}

func (b *Bug) ToJSON() (string, error) {
	data, err := json.Marshal(b)
	if err != nil {
		return "", err
	}

	return string(data), nil
}

func BugFromJSON(data io.Reader) (*Bug, error) {
	var bug Bug
	if err := json.NewDecoder(data).Decode(&bug); err != nil {
		return nil, err
	}
	if bug.LinkedIssues == nil {
		bug.LinkedIssues = []LinkedIssue{}
	}

	return &bug, nil
}
