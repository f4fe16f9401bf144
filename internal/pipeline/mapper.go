// Copyright (c) 2017-present Mattermost, Inc. All Rights Reserved.
// See License.txt for license information.

package pipeline

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/fugitivexyz/jira-bug-mointor/model"
)

const sprintStateActive = "active"

var timestampFormats = []string{
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05.000Z",
	"2006-01-02T15:04:05-0700",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
	time.RFC3339Nano,
}

// ParseTimestamp parses the timestamp formats Jira emits. An empty or
// unknown value yields the zero time.
func ParseTimestamp(ts string) time.Time {
	if ts == "" {
		return time.Time{}
	}
	for _, format := range timestampFormats {
		if t, err := time.Parse(format, ts); err == nil {
			return t
		}
	}
	return time.Time{}
}

func mapBug(raw *model.RawIssue, linked []model.LinkedIssue) model.Bug {
	f := &raw.Fields
	if linked == nil {
		linked = []model.LinkedIssue{}
	}

	bug := model.Bug{
		Key:          raw.Key,
		Summary:      f.Summary,
		Description:  descriptionText(f.Description),
		Status:       namedValue(f.Status),
		Priority:     namedValue(f.Priority),
		Created:      ParseTimestamp(f.Created),
		Updated:      ParseTimestamp(f.Updated),
		TeamName:     teamName(f.Team),
		SprintName:   sprintName(f.Sprints),
		IssueType:    issueType(f.IssueType),
		Assignee:     person(f.Assignee),
		Reporter:     person(f.Reporter),
		LinkedIssues: linked,
	}
	if f.Project != nil {
		bug.ProjectKey = f.Project.Key
		bug.ProjectName = f.Project.Name
	}

	return bug
}

// mapLinkedIssue keeps the key the link referenced rather than the key in
// the fetched record.
func mapLinkedIssue(key string, raw *model.RawIssue, linkType string) model.LinkedIssue {
	f := &raw.Fields
	return model.LinkedIssue{
		Key:        key,
		Summary:    f.Summary,
		Status:     namedValue(f.Status),
		Priority:   namedValue(f.Priority),
		TeamName:   teamName(f.Team),
		SprintName: sprintName(f.Sprints),
		Updated:    ParseTimestamp(f.Updated),
		IssueType:  issueType(f.IssueType),
		Assignee:   person(f.Assignee),
		LinkType:   linkType,
	}
}

func namedValue(n *model.RawNamed) string {
	if n == nil {
		return ""
	}
	return n.Name
}

func issueType(t *model.RawIssueType) model.IssueType {
	if t == nil || t.Name == "" {
		return model.IssueType{Name: model.DefaultIssueTypeName}
	}
	return model.IssueType{Name: t.Name, IconURL: t.IconURL}
}

func person(u *model.RawUser) *model.Person {
	if u == nil {
		return nil
	}
	return &model.Person{
		Name:      u.DisplayName,
		Email:     u.EmailAddress,
		AvatarURL: u.AvatarURLs[model.AvatarSize],
	}
}

// sprintName picks the active sprint, else the first one listed.
func sprintName(raw json.RawMessage) string {
	var sprints []model.RawSprint
	if len(raw) == 0 || json.Unmarshal(raw, &sprints) != nil || len(sprints) == 0 {
		return model.DefaultSprintName
	}

	chosen := sprints[0]
	for _, s := range sprints {
		if s.State == sprintStateActive {
			chosen = s
			break
		}
	}
	if chosen.Name == "" {
		return model.DefaultSprintName
	}
	return chosen.Name
}

func teamName(raw json.RawMessage) string {
	var team struct {
		Value string `json:"value"`
	}
	if len(raw) == 0 || json.Unmarshal(raw, &team) != nil || team.Value == "" {
		return model.DefaultTeamName
	}
	return team.Value
}

// descriptionText flattens an Atlassian Document Format body to plain
// text. Plain string descriptions are returned unchanged.
func descriptionText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}

	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}

	var doc adfNode
	if err := json.Unmarshal(raw, &doc); err != nil || doc.Type != "doc" {
		return string(raw)
	}

	var parts []string
	for _, block := range doc.Content {
		if text := block.text(); text != "" {
			parts = append(parts, text)
		}
	}
	return strings.Join(parts, "\n")
}

type adfNode struct {
	Type    string    `json:"type"`
	Text    string    `json:"text,omitempty"`
	Content []adfNode `json:"content,omitempty"`
}

func (n *adfNode) text() string {
	if n.Type == "text" {
		return n.Text
	}
	var b strings.Builder
	for i := range n.Content {
		b.WriteString(n.Content[i].text())
	}
	return b.String()
}
